package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/Gestion-api/internal/application/ports"
	"github.com/jhoicas/Gestion-api/internal/bootstrap"
	"github.com/jhoicas/Gestion-api/internal/infrastructure/mailer"
	"github.com/jhoicas/Gestion-api/internal/infrastructure/metrics"
	"github.com/jhoicas/Gestion-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/Gestion-api/internal/interfaces/http"
	"github.com/jhoicas/Gestion-api/pkg/config"
	"github.com/jhoicas/Gestion-api/pkg/logger"
)

const swaggerFile = "./docs/swagger.json"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	if _, err := postgres.Migrate(ctx, pool, log.Component("migrate")); err != nil {
		log.Fatal().Err(err).Msg("migraciones")
	}

	policy, err := bootstrap.Policy(cfg.Lifecycle)
	if err != nil {
		log.Fatal().Err(err).Msg("política de transiciones")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.New(reg)

	var sender ports.Mailer
	if cfg.Email.SMTPEnabled() {
		sender = mailer.NewSMTPMailer(mailer.SMTPConfig{
			Host:     cfg.Email.SMTPHost,
			Port:     cfg.Email.SMTPPort,
			User:     cfg.Email.SMTPUser,
			Password: cfg.Email.SMTPPassword,
			From:     cfg.Email.From,
			FromName: cfg.Email.FromName,
		})
	} else {
		log.Warn().Msg("SMTP no configurado: los emails solo se registran en el log")
		sender = mailer.NewLogMailer(log.Component("mailer"))
	}

	svc := bootstrap.New(bootstrap.Deps{
		Repos:   postgres.NewStore(pool),
		Tx:      postgres.NewTxRunner(pool),
		Config:  cfg,
		Policy:  policy,
		Metrics: collector,
		Mailer:  sender,
		Log:     log,
	})

	app := fiber.New(httpRouter.AppConfig(cfg.App.Name, httpRouter.ErrorHandler(svc.Monitoring, log.Component("http"))))
	app.Use(recover.New())
	app.Use(httpRouter.RequestID())
	app.Use(httpRouter.RequestLogger(log.Component("http")))
	if cfg.Metrics.Enabled {
		app.Use(collector.Middleware())
		app.Get(cfg.Metrics.Path, adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	}

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(swaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: swaggerFile,
			Path:     "docs",
			Title:    "Gestion API",
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		if err := pool.Ping(c.UserContext()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded", "service": cfg.App.Name})
		}
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, svc.RouterDeps(cfg))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := svc.Worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("worker de emails finalizado")
		}
	}()

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}
	wg.Wait()

	log.Info().Msg("aplicación detenida")
}
