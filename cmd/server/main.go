package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	certmetrics "veilcredit/internal/certificate/metrics"
	certservice "veilcredit/internal/certificate/service"
	certstore "veilcredit/internal/certificate/store"
	certcache "veilcredit/internal/certificate/store/cache"
	"veilcredit/internal/events"
	eventskafka "veilcredit/internal/events/kafka"
	"veilcredit/internal/funds"
	listingmetrics "veilcredit/internal/listing/metrics"
	listingservice "veilcredit/internal/listing/service"
	listingstore "veilcredit/internal/listing/store"
	"veilcredit/internal/oracle"
	"veilcredit/internal/oracle/localoracle"
	"veilcredit/internal/platform/config"
	"veilcredit/internal/platform/httpserver"
	"veilcredit/internal/platform/logger"
	"veilcredit/internal/platform/postgres"
	platformredis "veilcredit/internal/platform/redis"
	"veilcredit/internal/registry"
	"veilcredit/internal/registry/handler"
	"veilcredit/internal/token"
)

// main wires stores, the oracle, the event pipeline, and the HTTP transport.
// Business logic lives in the internal services.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		certStore    certservice.Store
		listingStore listingservice.Store
	)
	if cfg.Postgres.URL != "" {
		db, err := postgres.Open(ctx, cfg.Postgres)
		if err != nil {
			log.Error("postgres connection failed", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		certPG := certstore.NewPostgres(db)
		listingPG := listingstore.NewPostgres(db)
		if err := certPG.EnsureSchema(ctx); err != nil {
			log.Error("schema setup failed", "error", err)
			os.Exit(1)
		}
		if err := listingPG.EnsureSchema(ctx); err != nil {
			log.Error("schema setup failed", "error", err)
			os.Exit(1)
		}
		certStore, listingStore = certPG, listingPG
		log.Info("using postgres stores")
	} else {
		certStore = certstore.NewInMemory()
		listingStore = listingstore.NewInMemory()
		log.Info("using in-memory stores")
	}

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("redis connection failed", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		certStore = certcache.New(certStore, redisClient.Client, cfg.Redis.CacheTTL)
		log.Info("certificate cache enabled", "ttl", cfg.Redis.CacheTTL)
	}

	// Events flow through a channel publisher into a worker that drains to the
	// configured sink, so emits never block request handling.
	var sink events.Publisher
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaPub, err := eventskafka.New(ctx, cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			log.Error("kafka connection failed", "error", err)
			os.Exit(1)
		}
		defer kafkaPub.Close()
		sink = kafkaPub
		log.Info("publishing events to kafka", "topic", cfg.Kafka.Topic)
	} else {
		sink = events.NewLogPublisher(log)
	}
	inbox := make(chan events.Event, 256)
	worker := events.NewWorker(sink, inbox, log)
	publisher := events.NewChannelPublisher(inbox)

	oracleSvc := localoracle.New([]byte(cfg.OracleSecret))
	verifier := oracle.NewBreakerVerifier(oracleSvc, log)

	certificates := certservice.New(certStore, verifier, oracleSvc,
		certservice.WithLogger(log),
		certservice.WithPublisher(publisher),
		certservice.WithMetrics(certmetrics.New()),
	)
	listings := listingservice.New(listingStore, funds.NewMemoryLedger(),
		listingservice.WithLogger(log),
		listingservice.WithPublisher(publisher),
		listingservice.WithMetrics(listingmetrics.New()),
	)
	reg := registry.New(certificates, listings)

	tokens := token.NewService(cfg.JWTSigningKey)
	h := handler.New(reg, log, tokens)

	router := chi.NewRouter()
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	router.Handle("/metrics", promhttp.Handler())
	h.Register(router)

	srv := httpserver.New(cfg.Addr, router)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return worker.Run(groupCtx)
	})
	group.Go(func() error {
		log.Info("starting veilcredit registry", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("shutdown with error", "error", err)
		os.Exit(1)
	}
	log.Info("shutdown complete")
}
