package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	_ "github.com/jhoicas/aviation-inventory/docs"
	"github.com/jhoicas/aviation-inventory/internal/application/label"
	"github.com/jhoicas/aviation-inventory/internal/application/parts"
	"github.com/jhoicas/aviation-inventory/internal/application/scanflow"
	"github.com/jhoicas/aviation-inventory/internal/domain/location"
	"github.com/jhoicas/aviation-inventory/internal/domain/movement"
	"github.com/jhoicas/aviation-inventory/internal/infrastructure/events"
	"github.com/jhoicas/aviation-inventory/internal/infrastructure/locations"
	"github.com/jhoicas/aviation-inventory/internal/infrastructure/metrics"
	infrapdf "github.com/jhoicas/aviation-inventory/internal/infrastructure/pdf"
	"github.com/jhoicas/aviation-inventory/internal/infrastructure/postgres"
	"github.com/jhoicas/aviation-inventory/internal/infrastructure/printer"
	httpRouter "github.com/jhoicas/aviation-inventory/internal/interfaces/http"
	"github.com/jhoicas/aviation-inventory/pkg/config"
	"github.com/jhoicas/aviation-inventory/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	catalog, err := locations.Load(cfg.Locations.CatalogPath)
	if err != nil {
		log.Fatal().Err(err).Str("file", cfg.Locations.CatalogPath).Msg("catálogo de ubicaciones")
	}

	m := metrics.New(nil)

	// Etiquetas: render maroto → espera de QR/foto → spool PDF nombrado por el título.
	spool, err := printer.NewSpool(cfg.Label.SpoolDir)
	if err != nil {
		log.Fatal().Err(err).Msg("directorio de impresión")
	}
	trigger := label.NewTrigger(
		infrapdf.NewLabelRenderer(cfg.Scan.PublicBaseURL, nil),
		spool, spool, m,
		label.Config{
			AssetTimeout: cfg.Label.AssetTimeout,
			SettleDelay:  cfg.Label.SettleDelay,
			Locale:       cfg.Label.Locale,
		},
		log.Component("label"),
	)

	partsSvc := parts.NewService(
		postgres.NewPartRepository(pool),
		postgres.NewTxRunner(pool),
		catalog, trigger,
		log.Component("parts"),
	)

	var publisher scanflow.MovementPublisher
	if cfg.NATS.URL != "" {
		pub, err := events.Connect(cfg.NATS.URL, cfg.NATS.Subject)
		if err != nil {
			log.Fatal().Err(err).Str("url", cfg.NATS.URL).Msg("conexión a NATS")
		}
		defer pub.Close()
		publisher = pub
	}

	sessions := scanflow.NewRegistry(scanflow.Deps{
		Inventory:      partsSvc,
		Gateway:        partsSvc,
		Validator:      location.NewValidator(catalog),
		Builder:        movement.NewBuilder(),
		Printer:        trigger,
		Publisher:      publisher,
		Recorder:       m,
		Logger:         log.Component("scanflow"),
		PersistTimeout: cfg.Scan.PersistTimeout,
	}, cfg.Scan.IdleTTL).WithGauge(m)
	go sessions.Run(ctx, time.Minute)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: cfg.Scan.PersistTimeout + 10*time.Second,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Aviation Inventory API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "sessions": sessions.Len()})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	httpRouter.Router(app, httpRouter.RouterDeps{
		Parts:     partsSvc,
		Sessions:  sessions,
		JWTSecret: cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
