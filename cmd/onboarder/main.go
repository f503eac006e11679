package main

import (
	"context"
	"log"
	"log/slog"
	"time"

	"go.temporal.io/sdk/client"
	tlog "go.temporal.io/sdk/log"
	"go.temporal.io/sdk/worker"

	"github.com/nishat1/Instock/internal/adapters/geocoding"
	natsadapter "github.com/nishat1/Instock/internal/adapters/nats"
	"github.com/nishat1/Instock/internal/adapters/postgres"
	"github.com/nishat1/Instock/internal/core/usecases"
	"github.com/nishat1/Instock/internal/pkg/config"
	"github.com/nishat1/Instock/internal/pkg/logging"
	"github.com/nishat1/Instock/internal/workflows"
)

func main() {
	cfg, err := config.Load("instock-onboarder")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	if cfg.Storage.Driver != config.DriverPostgres {
		log.Fatalf("onboarder needs storage.driver=%s, got %s", config.DriverPostgres, cfg.Storage.Driver)
	}

	ctx := context.Background()
	db, err := postgres.New(ctx, cfg.Database.DSN(), cfg.Database.MaxConns)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Announcing is the step the saga compensates, so the publisher is required.
	pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		log.Fatalf("nats: %v", err)
	}
	defer pub.Close()

	geocoder := geocoding.New(cfg.Geocoding.BaseURL, cfg.Geocoding.APIKey, time.Duration(cfg.Geocoding.Timeout)*time.Second)
	stores := usecases.NewStoreService(postgres.NewStoreRepo(db), geocoder, pub, nil)

	// Connect to Temporal
	c, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
		Logger:    tlog.NewStructuredLogger(slog.Default()),
	})
	if err != nil {
		log.Fatalf("temporal client: %v", err)
	}
	defer c.Close()

	w := worker.New(c, cfg.Temporal.TaskQueue, worker.Options{})
	workflows.Register(w, &workflows.OnboardingActivities{Stores: stores})

	slog.Info("onboarding worker started", "task_queue", cfg.Temporal.TaskQueue)
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatalf("worker: %v", err)
	}
}
