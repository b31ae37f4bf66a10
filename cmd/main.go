package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	// Drivers
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"

	// Instrumentation
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"

	// Interne
	"github.com/jdw0903/EasyLFG/config"
	"github.com/jdw0903/EasyLFG/internal/adapters/primary/events"
	httpadapter "github.com/jdw0903/EasyLFG/internal/adapters/primary/http"
	"github.com/jdw0903/EasyLFG/internal/adapters/secondary/eventbroker"
	"github.com/jdw0903/EasyLFG/internal/adapters/secondary/mailer"
	"github.com/jdw0903/EasyLFG/internal/adapters/secondary/ratelimit"
	"github.com/jdw0903/EasyLFG/internal/adapters/secondary/repository"
	"github.com/jdw0903/EasyLFG/internal/adapters/secondary/security"
	"github.com/jdw0903/EasyLFG/internal/core/ports"
	"github.com/jdw0903/EasyLFG/internal/core/services"
)

func main() {
	// 1. Config & Logger
	cfg := config.Load()
	initLogger(cfg)
	slog.Info("🚀 Starting EasyLFG API", "config", cfg.Redacted())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 2. Télémétrie (Tracing) : désactivée sans endpoint OTLP
	if cfg.OtelEndpoint != "" {
		tp, err := initTracer(ctx, cfg)
		if err != nil {
			slog.Error("Failed to init tracer", "error", err)
		} else {
			defer func() { _ = tp.Shutdown(context.Background()) }()
		}
	}

	// 3. Infrastructure: Event Broker NATS (optionnel)
	var publisher ports.EventPublisher = eventbroker.NoopPublisher{}
	if cfg.NatsUrl != "" {
		nc, err := nats.Connect(cfg.NatsUrl)
		if err != nil {
			slog.Error("Unable to connect to NATS", "error", err)
			os.Exit(1)
		}
		defer nc.Close()
		slog.Info("✅ Connected to NATS")
		publisher = eventbroker.NewNatsPublisher(nc)

		// Journal d'activité (Driving Adapter - Async)
		activity := events.NewActivityLog()
		if _, err := activity.Subscribe(nc); err != nil {
			slog.Error("Failed to subscribe to NATS", "error", err)
			os.Exit(1)
		}
		slog.Info("👂 Listening for events (NATS)", "subject", eventbroker.SubjectAll)
	}

	// 4. Infrastructure: Rate limiting (Redis si configuré, sinon mémoire)
	limits := initLimiters(ctx, cfg)

	// 5. Infrastructure: Email
	var mail ports.Mailer
	if cfg.ResendAPIKey != "" {
		mail = mailer.NewResendMailer(cfg.ResendAPIKey, cfg.FeedbackFromEmail, cfg.FeedbackToEmail)
	} else {
		slog.Warn("RESEND_API_KEY is not set; feedback will only be logged")
	}

	// 6. Initialisation du Core
	repo := repository.NewMemoryRepo()
	postService := services.NewPostService(repo, security.NewRandomTokenIssuer(16), publisher, time.Now)
	feedbackService := services.NewFeedbackService(mail, cfg.MailTimeout, time.Now)

	// 7. Sweeper en arrière-plan
	sweeper := services.NewSweeper(repo, cfg.SweepInterval, time.Now)
	go sweeper.Run(ctx)

	// 8. Serveur HTTP (Driving Adapter - Sync)
	api := httpadapter.NewServer(postService, feedbackService, limits)
	handler := httpadapter.Chain(
		httpadapter.Tracing("easylfg-api"),
		httpadapter.CORS(cfg.AllowedOrigins),
	)(api.Handler())

	srvHTTP := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("📡 API listening", "port", cfg.Port)
		if err := srvHTTP.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// 9. Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("🛑 Shutting down server...")

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srvHTTP.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}

	slog.Info("👋 Server exited")
}

// --- HELPERS ---

func initLimiters(ctx context.Context, cfg config.Config) httpadapter.Limiters {
	if cfg.RedisAddr == "" {
		return httpadapter.Limiters{
			General:  ratelimit.NewMemoryLimiter(cfg.RateGeneral, cfg.RateWindow),
			Create:   ratelimit.NewMemoryLimiter(cfg.RateCreate, cfg.RateWindow),
			Mutate:   ratelimit.NewMemoryLimiter(cfg.RateMutate, cfg.RateWindow),
			Feedback: ratelimit.NewMemoryLimiter(cfg.RateFeedback, cfg.RateWindow),
		}
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	// Instrumentation Redis
	if err := redisotel.InstrumentTracing(rdb); err != nil {
		slog.Warn("Redis tracing disabled", "error", err)
	}
	if err := rdb.Ping(ctx).Err(); err != nil {
		slog.Error("Unable to connect to Redis", "error", err)
		os.Exit(1)
	}
	slog.Info("✅ Connected to Redis")

	return httpadapter.Limiters{
		General:  ratelimit.NewRedisLimiter(rdb, "general", cfg.RateGeneral, cfg.RateWindow),
		Create:   ratelimit.NewRedisLimiter(rdb, "create", cfg.RateCreate, cfg.RateWindow),
		Mutate:   ratelimit.NewRedisLimiter(rdb, "mutate", cfg.RateMutate, cfg.RateWindow),
		Feedback: ratelimit.NewRedisLimiter(rdb, "feedback", cfg.RateFeedback, cfg.RateWindow),
	}
}

func initLogger(cfg config.Config) {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if cfg.Env == "local" {
		opts.Level = slog.LevelDebug
	}
	var handler slog.Handler
	if cfg.Env == "local" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}

func initTracer(ctx context.Context, cfg config.Config) (*sdktrace.TracerProvider, error) {
	exporter, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(cfg.OtelEndpoint),
		otlptracegrpc.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}

	res, _ := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceNameKey.String("easylfg-api"),
			semconv.DeploymentEnvironmentKey.String(cfg.Env),
		),
	)

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	return tp, nil
}
