package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"company-manager/core/loader"
	"company-manager/core/logger"
	"company-manager/core/middleware/auth"
	"company-manager/core/middleware/rayid"

	"company-manager/feature/companies"
	"company-manager/feature/integrity"
	"company-manager/feature/settings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	_ "company-manager/docs/swagger"
)

// @title Company Manager API
// @version 1.0
// @description API for the reconciled HR portal company catalogue.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the company manager server",
	Long:  `Starts the HTTP server and initializes all enabled features.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		// 1. Configuration and logger
		cfg, logg, err := loadRuntime()
		if err != nil {
			log.Fatal(err)
		}
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		// 2. Optional sinks
		db, repo := openRepository(ctx, cfg.Database, logg)
		store, exporter := openStorage(ctx, cfg.Storage, logg)

		// 3. Portal client
		portal, err := newPortal(cfg.Backend, logg)
		if err != nil {
			logg.Fatal("Failed to create portal client", zap.Error(err))
		}

		// 4. Metrics
		registry := prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		metrics := companies.NewMetrics(registry)

		// 5. Services and features
		companySvc := companies.NewService(portal, cfg.Reconcile, repo, exporter, metrics, logg)
		settingsSvc := settings.NewService(portal, companySvc, logg)

		mgr := loader.NewManager(logg)
		mgr.Register(companies.NewFeature(companySvc))
		mgr.Register(settings.NewFeature(settingsSvc))
		mgr.Register(integrity.NewFeature(store, cfg.Storage, db, logg))

		app := fiber.New(fiber.Config{
			DisableStartupMessage: true,
		})

		// RayID must be first to trace everything.
		app.Use(rayid.New())

		app.Use(func(c *fiber.Ctx) error {
			l := logger.WithRayID(logg, c)
			l.Info("Request started",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
			)
			err := c.Next()
			if err != nil {
				l.Error("Request error", zap.Error(err))
			}
			return err
		})

		// Public endpoints
		app.Get("/swagger/*", swagger.HandlerDefault)
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

		app.Use(auth.New(auth.Config{
			ApiKey: cfg.Server.ApiKey,
			Skip:   []string{"/swagger", "/metrics"},
		}))

		if err := mgr.LoadAll(app); err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}

		if cfg.Server.ReconcileOnStart {
			go func() {
				_, summary := companySvc.Reconcile(ctx, true)
				logg.Info("Initial reconciliation finished",
					zap.String("status", string(summary.Status)),
					zap.Int("loaded", summary.Loaded),
					zap.Int("expected", summary.Expected),
				)
			}()
		}

		go func() {
			logg.Info("Starting server", zap.String("port", cfg.Server.Port))
			if err := app.Listen(cfg.Server.Address()); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")
		if err := app.ShutdownWithTimeout(cfg.Server.ShutdownTimeout()); err != nil {
			logg.Warn("Graceful shutdown failed", zap.Error(err))
		}
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}
