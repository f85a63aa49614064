// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Kinship Contributors

package store

import (
	"sync"

	kinerr "github.com/kinship-dev/kinship/pkg/errors"
)

// Config selects and parameterizes a storage backend.
type Config struct {
	// Backend names a registered backend ("memory", "sqlite").
	Backend string
	// Path is the database location for file-backed backends.
	Path string
}

// Factory creates a store from a backend config.
type Factory func(cfg Config) (Store, error)

var (
	factories   = map[string]Factory{}
	factoriesMu sync.RWMutex
)

// RegisterBackend registers a factory for a named storage backend.
// Backend packages call this from init(). This function is goroutine-safe.
func RegisterBackend(name string, factory Factory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	factories[name] = factory
}

func init() {
	RegisterBackend("memory", func(Config) (Store, error) {
		return NewMemory(), nil
	})
}

// Open creates a store using the configured backend, defaulting to memory.
func Open(cfg Config) (Store, error) {
	backend := cfg.Backend
	if backend == "" {
		backend = "memory"
	}

	factoriesMu.RLock()
	factory, ok := factories[backend]
	factoriesMu.RUnlock()
	if !ok {
		return nil, kinerr.Errorf(kinerr.CodeStoreBackendUnsupported, "unsupported storage backend: %q", backend)
	}

	return factory(cfg)
}
