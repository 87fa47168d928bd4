package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ewilliams-labs/trackfinder/internal/adapters/sqlite"
	"github.com/ewilliams-labs/trackfinder/internal/config"
	"github.com/ewilliams-labs/trackfinder/internal/core/domain"
	"github.com/ewilliams-labs/trackfinder/internal/core/ports"
	"github.com/ewilliams-labs/trackfinder/internal/core/services"
	"github.com/ewilliams-labs/trackfinder/internal/core/similarity"
	"github.com/ewilliams-labs/trackfinder/internal/logging"
	"github.com/ewilliams-labs/trackfinder/internal/metrics"
)

type app struct {
	cfg     *config.Config
	catalog *sqlite.Catalog
	store   *sqlite.PlaylistStore
	svc     *services.Orchestrator
}

// newApp loads the catalog into memory and wires the service. Any malformed
// catalog row aborts startup.
func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	catalog, err := sqlite.OpenCatalog(cfg.Catalog.Path)
	if err != nil {
		return nil, err
	}

	index, err := loadIndex(ctx, catalog)
	if err != nil {
		catalog.Close()
		return nil, fmt.Errorf("load catalog %s: %w", cfg.Catalog.Path, err)
	}
	metrics.CatalogSongs.Set(float64(index.Len()))
	logging.Info().Str("path", cfg.Catalog.Path).Int("songs", index.Len()).Msg("catalog loaded")

	policy := domain.KeepCart
	if cfg.Session.ClearCartOnSave {
		policy = domain.ClearCartOnSave
	}

	store := sqlite.NewPlaylistStore(cfg.Store.Dir)
	svc := services.NewOrchestrator(index, catalog, store,
		services.WithClearPolicy(policy),
		services.WithExcludeSeeds(cfg.Search.ExcludeSeeds),
	)

	return &app{cfg: cfg, catalog: catalog, store: store, svc: svc}, nil
}

func loadIndex(ctx context.Context, src ports.CatalogSource) (*similarity.Index, error) {
	songs, err := src.LoadCatalog(ctx)
	if err != nil {
		return nil, err
	}
	return similarity.Build(songs)
}

func (a *app) Close() error {
	return a.catalog.Close()
}

// openApp loads config and the app for a subcommand.
func openApp(cmd *cobra.Command) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return newApp(cmd.Context(), cfg)
}
