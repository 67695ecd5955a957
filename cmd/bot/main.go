package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/getsentry/sentry-go"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/viper"

	"github.com/Proton-105/wasawasa-bot/internal/conversation"
	apperrors "github.com/Proton-105/wasawasa-bot/internal/errors"
	"github.com/Proton-105/wasawasa-bot/internal/events"
	"github.com/Proton-105/wasawasa-bot/internal/health"
	"github.com/Proton-105/wasawasa-bot/internal/idempotency"
	"github.com/Proton-105/wasawasa-bot/internal/jobs"
	"github.com/Proton-105/wasawasa-bot/internal/jobs/handlers"
	"github.com/Proton-105/wasawasa-bot/internal/lifecycle"
	"github.com/Proton-105/wasawasa-bot/internal/middleware"
	"github.com/Proton-105/wasawasa-bot/internal/notify"
	"github.com/Proton-105/wasawasa-bot/internal/state"
	"github.com/Proton-105/wasawasa-bot/internal/whatsapp"
	"github.com/Proton-105/wasawasa-bot/pkg/config"
	"github.com/Proton-105/wasawasa-bot/pkg/graceful"
	"github.com/Proton-105/wasawasa-bot/pkg/logger"
	"github.com/Proton-105/wasawasa-bot/pkg/metrics"
	appredis "github.com/Proton-105/wasawasa-bot/pkg/redis"
)

const (
	serviceName    = "WasaWasa WhatsApp Bot (Twilio)"
	serviceVersion = "2.0.0"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, v, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(*cfg)
	slog.SetDefault(log)

	if err := run(ctx, cfg, v, log); err != nil {
		log.Error("wasawasa bot stopped with error", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, v *viper.Viper, log *slog.Logger) error {
	shutdown := lifecycle.NewShutdown(log)

	if cfg.Sentry.Enabled {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.Sentry.DSN,
			Environment: cfg.Sentry.Environment,
			Release:     "wasawasa-bot@" + serviceVersion,
		}); err != nil {
			return fmt.Errorf("init sentry: %w", err)
		}
		shutdown.Register("sentry", func(context.Context) error {
			sentry.Flush(2 * time.Second)
			return nil
		})
	}

	checker := health.NewChecker(log)

	var redisClient *appredis.Client
	if cfg.UsesRedis() {
		client, err := appredis.New(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		redisClient = client
		shutdown.RegisterCloser("redis", client.Close)
		checker.AddCheck("redis", health.NewRedisChecker(client))
	}

	var (
		storage state.Storage = state.NewMemoryStorage()
		locker  state.Locker  = state.NewMemoryLocker()
	)
	if cfg.Session.Backend == "redis" {
		kv := appredis.NewMetricsClient(redisClient)
		storage = state.NewRedisStorage(kv, log, cfg.Session.TTL)
		locker = state.NewRedisLocker(kv, log)
	}
	log.Info("session storage ready", slog.String("backend", cfg.Session.Backend))

	sender := whatsapp.NewTwilioSender(cfg.Twilio, log)
	checker.AddCheck("twilio", health.NewTwilioChecker(sender.Configured))
	if !sender.Configured() {
		log.Warn("twilio credentials missing, outbound messages will fail")
	}

	var publisher notify.EventPublisher
	if cfg.Events.AMQPURL != "" {
		p, err := events.NewPublisher(cfg.Events.AMQPURL, cfg.Events.Exchange, cfg.Events.RoutingKey, log)
		if err != nil {
			log.Warn("event publisher unavailable, order events disabled", slog.Any("error", err))
		} else {
			publisher = p
			shutdown.RegisterCloser("events", p.Close)
		}
	}

	deliverer := notify.NewDeliverer(sender, publisher, log)

	var dispatcher notify.Dispatcher
	switch cfg.Jobs.Backend {
	case "asynq":
		redisOpt := asynq.RedisClientOpt{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}
		manager := jobs.NewManager(redisOpt, log)
		shutdown.RegisterCloser("jobs-client", manager.Close)

		worker := jobs.NewWorker(redisOpt, cfg.Jobs.Concurrency, log)
		worker.RegisterHandler(jobs.TaskTypeRestaurantNotify, handlers.NewRestaurantNotifyHandler(deliverer, log))
		go func() {
			if err := worker.Run(); err != nil {
				log.Error("jobs worker stopped", slog.Any("error", err))
			}
		}()
		shutdown.Register("jobs-worker", func(context.Context) error {
			worker.Shutdown()
			return nil
		})

		dispatcher = jobs.NewDispatcher(manager, log)
	default:
		local := notify.NewLocalDispatcher(deliverer, notify.LocalOptions{
			Workers:   cfg.Jobs.Concurrency,
			QueueSize: cfg.Jobs.QueueSize,
		}, log)
		shutdown.Register("notify-dispatcher", func(context.Context) error {
			local.Close()
			return nil
		})
		dispatcher = local
	}
	log.Info("notification dispatcher ready", slog.String("backend", cfg.Jobs.Backend))

	trigger := notify.NewTrigger(cfg.Restaurant.Phone, dispatcher, log)
	if trigger.Phone() == "" {
		log.Warn("restaurant phone not configured, order notifications disabled")
	}
	config.Watch(v, log, func(next *config.Config) {
		if next.Restaurant.Phone != trigger.Phone() {
			trigger.SetPhone(next.Restaurant.Phone)
			log.Info("restaurant phone updated")
		}
	})

	engine := conversation.NewEngine(storage, locker, trigger, log)

	opts := whatsapp.WebhookOptions{
		ClaimTTL: cfg.Dedupe.TTL,
		Errors:   apperrors.NewHandler(log, cfg.Sentry.Enabled),
	}
	if cfg.Dedupe.Enabled {
		if redisClient != nil {
			opts.Claims = idempotency.NewRedisStore(appredis.NewMetricsClient(redisClient), log)
		} else {
			claims := idempotency.NewMemoryStore()
			go idempotency.NewCleaner(claims, log, 0).Run(ctx)
			opts.Claims = claims
		}
	}
	if cfg.Twilio.ValidateSignatures {
		opts.Validator = whatsapp.NewSignatureValidator(cfg.Twilio.AuthToken, cfg.Twilio.WebhookURL)
	}
	webhook := whatsapp.NewWebhook(engine, opts, log)

	go metrics.NewSessionCollector(storage, log, 15*time.Second).Run(ctx)

	mux := http.NewServeMux()
	mux.Handle("GET /", middleware.Metrics("banner", health.Banner(serviceName, serviceVersion)))
	mux.Handle("POST /webhook", middleware.Metrics("webhook", webhook))
	mux.Handle("GET /healthz", middleware.Metrics("healthz", checker.Handler(5*time.Second)))
	mux.Handle("GET /metrics", promhttp.Handler())

	srv := graceful.NewServer(log, &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           middleware.Chain(mux, logger.Middleware, middleware.Logging(log), middleware.Recover(log)),
		ReadHeaderTimeout: 10 * time.Second,
	}, cfg.Server.ShutdownTimeout)

	log.Info("wasawasa bot is running",
		slog.String("port", cfg.Server.Port),
		slog.String("webhook", "/webhook"),
		slog.String("from_number", cfg.Twilio.WhatsAppNumber))

	serveErr := srv.ListenAndServe(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := shutdown.Execute(shutdownCtx); err != nil {
		log.Error("shutdown completed with errors", slog.Any("error", err))
	}

	log.Info("wasawasa bot shutting down")

	return serveErr
}
