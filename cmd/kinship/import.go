// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Kinship Contributors

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kinship-dev/kinship/internal/config"
	"github.com/kinship-dev/kinship/internal/store"
	_ "github.com/kinship-dev/kinship/internal/store/sqlite"
	kinerr "github.com/kinship-dev/kinship/pkg/errors"
)

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <tree.yaml>",
		Short: "Import a tree file into the configured store",
		Args:  cobra.ExactArgs(1),
		RunE:  runImport,
	}
}

func runImport(cmd *cobra.Command, args []string) error {
	cfgPath, _ := cmd.Flags().GetString("config")

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	f, err := os.Open(args[0])
	if err != nil {
		return kinerr.Wrapf(err, kinerr.CodeStoreImportInvalid, "opening %s", args[0])
	}
	defer f.Close()

	seed, err := store.LoadSeed(f)
	if err != nil {
		return err
	}

	st, err := store.Open(store.Config{
		Backend: cfg.Storage.Backend,
		Path:    cfg.Storage.Path,
	})
	if err != nil {
		return err
	}
	defer st.Close()

	if err := seed.Apply(cmd.Context(), st); err != nil {
		return err
	}

	_, err = fmt.Fprintf(cmd.OutOrStdout(), "imported %d objects into %s\n", len(seed.Objects()), cfg.Storage.Backend)
	return err
}
