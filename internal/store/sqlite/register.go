// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Kinship Contributors

package sqlite

import (
	"github.com/kinship-dev/kinship/internal/store"
	kinerr "github.com/kinship-dev/kinship/pkg/errors"
)

func init() {
	store.RegisterBackend("sqlite", func(cfg store.Config) (store.Store, error) {
		if cfg.Path == "" {
			return nil, kinerr.New(kinerr.CodeConfigValidateInvalidValue, "sqlite backend requires storage.path")
		}
		return New(cfg.Path)
	})
}
