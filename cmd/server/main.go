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
	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"meterai/internal/audit"
	auditkafka "meterai/internal/audit/kafka"
	auditmemory "meterai/internal/audit/store/memory"
	auditpostgres "meterai/internal/audit/store/postgres"
	"meterai/internal/jwttoken"
	"meterai/internal/ledger"
	"meterai/internal/platform/config"
	"meterai/internal/platform/httpserver"
	"meterai/internal/platform/logger"
	"meterai/internal/platform/middleware"
	platformredis "meterai/internal/platform/redis"
	stamphandler "meterai/internal/stamp/handler"
	stampmetrics "meterai/internal/stamp/metrics"
	"meterai/internal/stamp/service"
	aclstore "meterai/internal/stamp/store/acl"
	tokenstore "meterai/internal/stamp/store/token"
	id "meterai/pkg/domain"
	"meterai/pkg/platform/tx"
)

// main wires high-level dependencies and keeps the server lifecycle small.
// Business logic lives in internal/stamp; backends default to in-memory and
// switch to Postgres/Redis/Kafka when configured.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ownership := ledger.NewInMemoryOwnership()
	bank := ledger.NewInMemoryBank()

	var tokens service.TokenStore
	var runner tx.Runner
	var auditStore audit.Store

	if cfg.DatabaseURL != "" {
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			log.Error("failed to open database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		tokens = tokenstore.NewPostgres(db)
		// The ownership ledger and bank live in process, outside the SQL
		// transaction, so writers take a process-wide lock around each
		// transaction and the ledger is rebuilt from the registry on boot.
		runner = tx.NewExclusiveRunner(tx.NewSQLRunner(db))
		auditStore = auditpostgres.New(db)
		if err := seedOwnership(context.Background(), tokens, ownership); err != nil {
			log.Error("failed to seed ownership ledger", "error", err)
			os.Exit(1)
		}
	} else {
		tokens = tokenstore.NewInMemory()
		runner = tx.NewSerialRunner()
		auditStore = auditmemory.NewInMemoryStore()
	}

	var acl service.ACLStore = aclstore.NewInMemory()
	if cfg.RedisURL != "" {
		redisClient, err := platformredis.New(cfg.RedisURL)
		if err != nil {
			log.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer redisClient.Close()
		acl = aclstore.NewRedisStore(redisClient.Client)
	}

	if len(cfg.KafkaBrokers) > 0 {
		kafkaPublisher, err := auditkafka.New(cfg.KafkaBrokers, cfg.AuditTopic)
		if err != nil {
			log.Error("failed to connect to kafka", "error", err)
			os.Exit(1)
		}
		defer kafkaPublisher.Close()
		auditStore = kafkaPublisher
	}

	inbox := make(chan audit.Event, 256)
	auditWorker := audit.NewWorker(auditStore, inbox, log)

	svc, err := service.New(
		tokens,
		acl,
		ownership,
		bank,
		cfg.Authority,
		service.WithLogger(log),
		service.WithMetrics(stampmetrics.New()),
		service.WithAuditPublisher(channelPublisher(inbox)),
		service.WithTxRunner(runner),
	)
	if err != nil {
		log.Error("failed to build stamp service", "error", err)
		os.Exit(1)
	}

	jwtService := jwttoken.NewService(cfg.JWTSigningKey, "meterai")
	h := stamphandler.New(svc, log)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Handle("/metrics", promhttp.Handler())
	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireCaller(jwtService, log))
		h.Register(r)
	})

	srv := httpserver.New(cfg.Addr, router)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		log.Info("starting meterai server", "addr", cfg.Addr, "authority", cfg.Authority)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		if err := auditWorker.Run(groupCtx); err != nil && !errors.Is(err, context.Canceled) {
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

	if err := group.Wait(); err != nil {
		log.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

// channelPublisher adapts the audit inbox channel to the service's
// AuditPublisher interface without blocking request handling on sink latency.
type channelPublisher chan<- audit.Event

func (p channelPublisher) Emit(ctx context.Context, event audit.Event) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	select {
	case p <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// seedOwnership mirrors the persisted registry into the in-memory ownership
// ledger so owners recorded before a restart stay transferable.
func seedOwnership(ctx context.Context, tokens service.TokenStore, ownership ledger.Ownership) error {
	supply, err := tokens.TotalSupply(ctx)
	if err != nil {
		return err
	}
	for i := uint64(0); i < supply; i++ {
		tokenID := id.TokenID(i)
		t, err := tokens.FindByID(ctx, tokenID)
		if err != nil {
			return err
		}
		if err := ownership.Register(ctx, tokenID, t.Owner); err != nil {
			return err
		}
	}
	return nil
}
