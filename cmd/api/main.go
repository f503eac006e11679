package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.temporal.io/sdk/client"
	tlog "go.temporal.io/sdk/log"

	"github.com/nishat1/Instock/internal/adapters/geocoding"
	"github.com/nishat1/Instock/internal/adapters/http"
	"github.com/nishat1/Instock/internal/adapters/memory"
	natsadapter "github.com/nishat1/Instock/internal/adapters/nats"
	"github.com/nishat1/Instock/internal/adapters/postgres"
	"github.com/nishat1/Instock/internal/adapters/valkey"
	"github.com/nishat1/Instock/internal/catalog"
	"github.com/nishat1/Instock/internal/core/domain"
	"github.com/nishat1/Instock/internal/core/ports"
	"github.com/nishat1/Instock/internal/core/usecases"
	"github.com/nishat1/Instock/internal/pkg/config"
	"github.com/nishat1/Instock/internal/pkg/logging"
	"github.com/nishat1/Instock/internal/pkg/metrics"
	"github.com/nishat1/Instock/internal/pkg/telemetry"
	"github.com/nishat1/Instock/internal/workflows"
)

type repositories struct {
	items  ports.ItemRepository
	stores ports.StoreRepository
	stock  ports.AvailabilityRepository
}

func main() {
	cfg, err := config.Load("instock-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Structured logging
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.OTLPEndpoint)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Geocoding
	geocoder := geocoding.New(cfg.Geocoding.BaseURL, cfg.Geocoding.APIKey, time.Duration(cfg.Geocoding.Timeout)*time.Second)

	deps := &http.Dependencies{
		Storage:        cfg.Storage.Driver,
		RequestTimeout: time.Duration(cfg.Server.RequestTimeout) * time.Second,
		RateLimit:      cfg.Server.RateLimit,
		Defaults: usecases.ShoppingDefaults{
			RadiusKm: cfg.Shopping.DefaultRadiusKm,
			Center:   domain.Coordinate{Lat: cfg.Shopping.DefaultLat, Lng: cfg.Shopping.DefaultLng},
		},
	}

	// Storage
	var repos repositories
	switch cfg.Storage.Driver {
	case config.DriverMemory:
		db := memory.New()
		if cfg.Storage.SeedManifest != "" {
			if err := seedMemory(ctx, db, cfg.Storage.SeedManifest, geocoder); err != nil {
				log.Fatalf("seed: %v", err)
			}
		}
		repos = repositories{
			items:  memory.NewItemRepo(db),
			stores: memory.NewStoreRepo(db),
			stock:  memory.NewAvailabilityRepo(db),
		}
	default:
		db, err := postgres.New(ctx, cfg.Database.DSN(), cfg.Database.MaxConns)
		if err != nil {
			log.Fatalf("database: %v", err)
		}
		defer db.Close()
		go reportPoolStats(ctx, db)

		deps.DB = db
		repos = repositories{
			items:  postgres.NewItemRepo(db),
			stores: postgres.NewStoreRepo(db),
			stock:  postgres.NewAvailabilityRepo(db),
		}
	}

	// Cache
	var cache ports.CacheService
	if cfg.Valkey.Enabled {
		vc, err := valkey.New(cfg.Valkey.Addr, cfg.Valkey.Prefix)
		if err != nil {
			slog.Warn("valkey unavailable", "error", err)
		} else {
			defer vc.Close()
			cache = vc
			deps.Cache = vc
		}
	}

	// NATS
	var events ports.EventPublisher
	if cfg.NATS.Enabled {
		pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
		if err != nil {
			slog.Warn("nats unavailable", "error", err)
		} else {
			defer pub.Close()
			events = pub
		}

		// Raw NATS connection for WebSocket relay
		natsConn, err := natsadapter.RawConn(cfg.NATS.URL)
		if err != nil {
			slog.Warn("nats ws conn unavailable", "error", err)
		} else {
			defer natsConn.Close()
			deps.NATS = natsConn
		}
	}

	// Use cases
	storeSvc := usecases.NewStoreService(repos.stores, geocoder, events, cache)
	deps.Stores = storeSvc
	deps.Items = usecases.NewItemService(repos.items, cache)
	deps.Availability = usecases.NewAvailabilityService(repos.stock, repos.stores, events)
	deps.Shopping = usecases.NewShoppingService(repos.items, repos.stores, repos.stock, deps.Defaults).
		WithCoverBudget(cfg.Shopping.CoverBudget)

	// Other instances announce store changes; drop our cached copies.
	if cfg.NATS.Enabled && cache != nil {
		sub, err := natsadapter.NewSubscriber(cfg.NATS.URL)
		if err != nil {
			slog.Warn("nats subscriber unavailable", "error", err)
		} else {
			defer sub.Close()
			err := sub.SubscribeStoreEvents(ctx, func(ctx context.Context, ev *domain.StoreEvent) error {
				storeSvc.Invalidate(ctx, ev.StoreID)
				return nil
			})
			if err != nil {
				slog.Warn("store event subscription failed", "error", err)
			}
		}
	}

	// Temporal
	if cfg.Temporal.Enabled {
		tc, err := client.Dial(client.Options{
			HostPort:  cfg.Temporal.HostPort,
			Namespace: cfg.Temporal.Namespace,
			Logger:    tlog.NewStructuredLogger(slog.Default()),
		})
		if err != nil {
			slog.Warn("temporal unavailable, async onboarding disabled", "error", err)
		} else {
			defer tc.Close()
			deps.Onboarding = workflows.NewStarter(tc, cfg.Temporal.TaskQueue)
		}
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    cfg.Server.BodyLimit,
		AppName:      "Instock API",
	})
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.CORSOrigins,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr, "storage", cfg.Storage.Driver)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	// Give in-flight requests up to 10s to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}

// seedMemory loads every catalog in the manifest into db.
func seedMemory(ctx context.Context, db *memory.DB, manifestPath string, geocoder ports.Geocoder) error {
	manifest, err := catalog.LoadManifest(manifestPath)
	if err != nil {
		return err
	}
	fetcher := catalog.NewFetcher(60 * time.Second)
	for _, entry := range manifest.Catalogs {
		c, err := catalog.Load(ctx, fetcher, entry)
		if err != nil {
			return fmt.Errorf("%s: %w", entry.Slug, err)
		}
		c.GeocodeMissing(ctx, geocoder, 4)
		if err := db.Seed(ctx, c); err != nil {
			return fmt.Errorf("%s: %w", entry.Slug, err)
		}
	}
	items, stores, stock := db.Counts()
	slog.Info("memory store seeded", "items", items, "stores", stores, "stock", stock)
	return nil
}

func reportPoolStats(ctx context.Context, db *postgres.DB) {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			metrics.UpdateDBPoolMetrics(db.Stat())
		}
	}
}
