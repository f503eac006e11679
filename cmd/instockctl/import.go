package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/nishat1/Instock/internal/adapters/geocoding"
	"github.com/nishat1/Instock/internal/adapters/postgres"
	"github.com/nishat1/Instock/internal/catalog"
	"github.com/nishat1/Instock/internal/pkg/config"
	"github.com/nishat1/Instock/internal/pkg/logging"
)

type importOptions struct {
	workers   int
	noGeocode bool
	timeout   time.Duration
}

func newImportCmd() *cobra.Command {
	opts := &importOptions{}
	cmd := &cobra.Command{
		Use:   "import <manifest.json>",
		Short: "Import the catalogs listed in a manifest",
		Long: `Fetch every catalog in the manifest, geocode stores that have no position,
and upsert items, stores and stock into PostgreSQL.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, args[0], opts)
		},
	}
	cmd.Flags().IntVarP(&opts.workers, "workers", "w", 4, "Concurrent geocoding requests")
	cmd.Flags().BoolVar(&opts.noGeocode, "no-geocode", false, "Skip stores without a position instead of geocoding them")
	cmd.Flags().DurationVar(&opts.timeout, "fetch-timeout", 60*time.Second, "Timeout for each catalog download")
	return cmd
}

func runImport(cmd *cobra.Command, manifestPath string, opts *importOptions) error {
	cfg, err := config.Load("instock-import")
	if err != nil {
		return err
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)
	if cfg.Storage.Driver != config.DriverPostgres {
		return fmt.Errorf("import needs storage.driver=%s, got %s", config.DriverPostgres, cfg.Storage.Driver)
	}

	manifest, err := catalog.LoadManifest(manifestPath)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	db, err := postgres.New(ctx, cfg.Database.DSN(), cfg.Database.MaxConns)
	if err != nil {
		return fmt.Errorf("db: %w", err)
	}
	defer db.Close()

	fetcher := catalog.NewFetcher(opts.timeout)
	geocoder := geocoding.New(cfg.Geocoding.BaseURL, cfg.Geocoding.APIKey, time.Duration(cfg.Geocoding.Timeout)*time.Second)
	importer := postgres.NewImporter(db)
	out := cmd.OutOrStdout()

	for _, entry := range manifest.Catalogs {
		start := time.Now()
		c, err := catalog.Load(ctx, fetcher, entry)
		if err != nil {
			slog.Error("load catalog", "catalog", entry.Slug, "error", err)
			continue
		}
		if !opts.noGeocode {
			resolved, failed := c.GeocodeMissing(ctx, geocoder, opts.workers)
			if resolved+failed > 0 {
				slog.Info("geocoded stores", "catalog", entry.Slug, "resolved", resolved, "failed", failed)
			}
		}
		stats, err := importer.Import(ctx, c)
		if err != nil {
			return fmt.Errorf("import %s: %w", entry.Slug, err)
		}
		fmt.Fprintf(out, "%-20s items=%d stores=%d stock=%d (%s)\n",
			entry.Slug, stats.Items, stats.Stores, stats.Stock, time.Since(start).Round(time.Millisecond))
	}
	return nil
}
