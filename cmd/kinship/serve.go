// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Kinship Contributors

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kinship-dev/kinship/internal/config"
	"github.com/kinship-dev/kinship/internal/query"
	"github.com/kinship-dev/kinship/internal/server"
	"github.com/kinship-dev/kinship/internal/store"
	_ "github.com/kinship-dev/kinship/internal/store/sqlite"
	kinerr "github.com/kinship-dev/kinship/pkg/errors"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the kinship API server",
		Long:  "Load configuration, open the tree store, and serve the REST API until interrupted.",
		RunE:  runServe,
	}

	cmd.Flags().String("listen", "", "override listen address (host:port)")
	_ = viper.BindPFlag("networking.listen", cmd.Flags().Lookup("listen"))

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfgPath, _ := cmd.Flags().GetString("config")

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	if listen := viper.GetString("networking.listen"); listen != "" {
		cfg.Networking.Listen = listen
	}

	st, err := store.Open(store.Config{
		Backend: cfg.Storage.Backend,
		Path:    cfg.Storage.Path,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(); err != nil {
			slog.Error("closing store", "err", err)
		}
	}()

	engine := query.NewEngine(st)
	if cfg.Storage.Seed != "" {
		if err := seedStore(cmd.Context(), st, engine, cfg.Storage.Seed); err != nil {
			return err
		}
	}

	srv, err := server.New(server.Config{
		ListenAddr:  cfg.Networking.Listen,
		CORSOrigins: cfg.Networking.CORSOrigins,
		Locale:      cfg.Query.Locale,
		Auth: server.AuthConfig{
			Secret:     cfg.Auth.Secret,
			AccessTTL:  cfg.Auth.AccessTTL,
			RefreshTTL: cfg.Auth.RefreshTTL,
			Users:      cfg.Auth.Users,
		},
	}, st, engine)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("serving", "listen", cfg.Networking.Listen, "backend", cfg.Storage.Backend)
	return srv.Start(ctx)
}

// seedStore imports a tree file into an empty store and registers its named
// filters with the engine. A store that already holds objects is left alone,
// but the filters still load.
func seedStore(ctx context.Context, st store.Store, engine *query.Engine, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return kinerr.Wrapf(err, kinerr.CodeStoreImportInvalid, "opening seed %s", path)
	}
	defer f.Close()

	seed, err := store.LoadSeed(f)
	if err != nil {
		return err
	}

	summary, err := st.Summary(ctx)
	if err != nil {
		return err
	}
	empty := true
	for _, n := range summary.Counts {
		if n > 0 {
			empty = false
			break
		}
	}
	if empty {
		if err := seed.Apply(ctx, st); err != nil {
			return err
		}
		slog.Info("seeded store", "path", path, "objects", len(seed.Objects()))
	}

	filters, err := query.CompileNamedFilters(seed.Filters)
	if err != nil {
		return err
	}
	for kind, byName := range filters {
		engine.WithNamedFilters(kind, byName)
	}
	return nil
}
