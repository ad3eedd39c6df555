package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"crosscheck/internal/audit"
	auditmetrics "crosscheck/internal/audit/metrics"
	"crosscheck/internal/billing"
	"crosscheck/internal/platform/config"
	"crosscheck/internal/platform/httpserver"
	"crosscheck/internal/platform/logger"
	"crosscheck/internal/recon"
	"crosscheck/internal/recon/handler"
	reconmetrics "crosscheck/internal/recon/metrics"
	"crosscheck/internal/sales"
	"crosscheck/pkg/platform/middleware/requestid"
	"crosscheck/pkg/platform/middleware/requesttime"
)

// main wires dependencies and keeps the server lifecycle small. Business
// logic lives in the internal packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	salesStore := sales.NewInMemoryStore()
	billingStore := billing.NewInMemoryStore()
	if cfg.DatasetPath != "" {
		if err := loadDataset(cfg.DatasetPath, salesStore, billingStore); err != nil {
			log.Error("dataset load failed", "path", cfg.DatasetPath, "error", err)
			os.Exit(1)
		}
		log.Info("dataset loaded", "path", cfg.DatasetPath, "orders", salesStore.Count())
	}

	// Audit sink chain: in-memory store is always present; Postgres replaces
	// it when a DSN is configured, and Kafka forwards a copy of every event.
	auditMetrics := auditmetrics.New()
	var auditStore audit.Store = audit.NewInMemoryStore()
	var db *sql.DB
	if cfg.Audit.PostgresDSN != "" {
		var err error
		db, err = sql.Open("postgres", cfg.Audit.PostgresDSN)
		if err != nil {
			log.Error("audit postgres open failed", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		pgStore := audit.NewPostgresStore(db)
		if err := pgStore.Migrate(ctx); err != nil {
			log.Error("audit postgres migrate failed", "error", err)
			os.Exit(1)
		}
		auditStore = pgStore
		log.Info("audit store: postgres")
	}

	recorderOpts := []audit.RecorderOption{
		audit.WithLogger(log),
		audit.WithMetrics(auditMetrics),
		audit.WithRetryBuffer(cfg.Audit.BufferSize),
	}
	if len(cfg.Audit.KafkaBrokers) > 0 {
		forwarder, err := audit.NewKafkaForwarder(cfg.Audit.KafkaBrokers, cfg.Audit.KafkaTopic)
		if err != nil {
			log.Error("kafka forwarder init failed", "error", err)
			os.Exit(1)
		}
		defer forwarder.Close()
		recorderOpts = append(recorderOpts, audit.WithForwarders(forwarder))
		log.Info("audit forwarder: kafka", "topic", cfg.Audit.KafkaTopic)
	}
	recorder := audit.NewRecorder(auditStore, recorderOpts...)

	auditWorker := audit.NewWorker(recorder,
		audit.WithWorkerLogger(log),
		audit.WithWorkerMetrics(auditMetrics),
		audit.WithBackoff(cfg.Audit.RetryBackoff),
	)
	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		if err := auditWorker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("audit worker stopped", "error", err)
		}
	}()

	serviceOpts := []recon.Option{
		recon.WithLogger(log),
		recon.WithMetrics(reconmetrics.New()),
		recon.WithScanConcurrency(cfg.Scan.Concurrency),
		recon.WithFetchRetry(cfg.Scan.FetchRetries, cfg.Scan.RetryBackoff),
	}

	var redisStore *recon.RedisResultStore
	if cfg.Redis.URL != "" {
		store, err := recon.DialResultStore(ctx, cfg.Redis.URL, recon.RedisOptions{
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		})
		if err != nil {
			log.Error("redis init failed", "error", err)
			os.Exit(1)
		}
		redisStore = store
		defer redisStore.Close()
		serviceOpts = append(serviceOpts, recon.WithResultStore(redisStore))
		log.Info("result store: redis")
	}

	service := recon.NewService(salesStore, billingStore, recorder, serviceOpts...)

	router := chi.NewRouter()
	router.Use(requestid.Middleware)
	router.Use(requesttime.Middleware)
	router.Route("/api/v1", func(r chi.Router) {
		handler.New(service, recorder, log).Register(r)
	})
	router.Handle("/metrics", promhttp.Handler())
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if redisStore != nil {
			if err := redisStore.Ping(r.Context()); err != nil {
				http.Error(w, "redis unreachable", http.StatusServiceUnavailable)
				return
			}
		}
		if db != nil {
			if err := db.PingContext(r.Context()); err != nil {
				http.Error(w, "postgres unreachable", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
	})

	srv := httpserver.New(cfg.Server.Addr, router)

	recorder.Record(ctx, audit.Event{
		Type:    audit.EventSystemStartup,
		Message: "reconciliation engine started",
	})
	log.Info("starting crosscheck", "addr", cfg.Server.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	recorder.Record(shutdownCtx, audit.Event{
		Type:    audit.EventSystemShutdown,
		Message: "reconciliation engine stopping",
	})
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}

	select {
	case <-workerDone:
	case <-shutdownCtx.Done():
	}
}
