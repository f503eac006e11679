package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nishat1/Instock/internal/adapters/postgres"
	"github.com/nishat1/Instock/internal/pkg/config"
	"github.com/nishat1/Instock/migrations"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		Args:  cobra.NoArgs,
		RunE:  runMigrateUp,
	})
	return cmd
}

func runMigrateUp(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load("instock-migrate")
	if err != nil {
		return err
	}
	if cfg.Storage.Driver != config.DriverPostgres {
		return fmt.Errorf("migrate needs storage.driver=%s, got %s", config.DriverPostgres, cfg.Storage.Driver)
	}

	ctx := cmd.Context()
	db, err := postgres.New(ctx, cfg.Database.DSN(), cfg.Database.MaxConns)
	if err != nil {
		return fmt.Errorf("db: %w", err)
	}
	defer db.Close()

	applied, err := db.Migrate(ctx, migrations.FS)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, v := range applied {
		fmt.Fprintf(out, "OK  %s\n", v)
	}
	fmt.Fprintf(out, "%d migration(s) applied\n", len(applied))
	return nil
}
