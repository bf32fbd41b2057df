package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"pantry/internal/app"
	"pantry/internal/config"
	handlers "pantry/internal/http/handler"
	"pantry/internal/http/middleware"
	"pantry/internal/logger"
	"pantry/internal/notify"
	"pantry/internal/otel"
	"pantry/internal/repository"
	"pantry/internal/scheduler"
	"pantry/internal/service"
)

func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()
	loc := cfg.Location()
	log := logger.New(os.Stdout, cfg.LogLevel, loc)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize tracing")
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			log.Error().Err(err).Msg("tracing shutdown")
		}
	}()

	blobs, closeStore, err := app.OpenStore(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Store.Driver).Msg("failed to open item store")
	}
	defer closeStore()

	notifier, err := app.NewNotifier(cfg.Notify, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize notifier")
	}
	perm := notify.EnsurePermission(ctx, notifier, log)
	log.Info().Str("driver", cfg.Notify.Driver).Str("permission", string(perm)).Msg("notifier ready")

	svc := service.NewItemService(
		repository.NewItemStore(blobs, log),
		app.NewExtractor(ctx, cfg.Extraction, log),
		notifier,
		service.WithClock(func() time.Time { return time.Now().In(loc) }),
		service.WithLogger(log),
		service.WithWarningDays(cfg.Notify.WarningDays),
	)

	// One session per process start, plus an optional daily scan.
	svc.StartSession(ctx)

	sched := scheduler.New(loc, log)
	if cfg.Notify.DailyAt != "" {
		id, err := sched.ScheduleDaily(cfg.Notify.DailyAt, func() {
			res := svc.StartSession(context.Background())
			log.Info().Int("items", len(res.Items)).Bool("notified", res.Notified != nil).Msg("daily expiry scan")
		})
		if err != nil {
			log.Fatal().Err(err).Msg("invalid NOTIFY_DAILY_AT")
		}
		sched.Start()
		defer sched.Stop()
		log.Info().Time("next_run", sched.Next(id)).Msg("daily expiry scan scheduled")
	}

	prom, err := middleware.NewPrometheusMiddleware(prometheus.DefaultRegisterer)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to register metrics")
	}

	server := fiber.New(fiber.Config{
		ErrorHandler:          handlers.ErrorHandler(),
		DisableStartupMessage: true,
	})

	// Register global middleware
	server.Use(otelfiber.Middleware())
	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	server.Use(middleware.RequestID())
	server.Use(middleware.Logger(log))
	server.Use(prom.Handler())

	server.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	handlers.RegisterRoutes(server, blobs, svc, loc)

	go func() {
		<-ctx.Done()
		log.Info().Msg("shutting down")
		if err := server.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Error().Err(err).Msg("server shutdown")
		}
	}()

	addr := ":" + cfg.Port
	log.Info().Str("addr", addr).Str("store", cfg.Store.Driver).Msg("listening")
	if err := server.Listen(addr); err != nil {
		log.Fatal().Err(err).Msg("failed to start server")
	}
}
