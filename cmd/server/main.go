package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.opentelemetry.io/otel"
	"golang.org/x/sync/errgroup"

	"cadastro/internal/audit"
	identityhandler "cadastro/internal/identity/handler"
	identityservice "cadastro/internal/identity/service"
	sessionstore "cadastro/internal/identity/store/session"
	userstore "cadastro/internal/identity/store/user"
	"cadastro/internal/identity/token"
	"cadastro/internal/platform/config"
	"cadastro/internal/platform/httpserver"
	"cadastro/internal/platform/logger"
	"cadastro/internal/platform/metrics"
	"cadastro/internal/platform/postgres"
	"cadastro/internal/platform/redis"
	"cadastro/internal/postal"
	postalhandler "cadastro/internal/postal/handler"
	recordshandler "cadastro/internal/records/handler"
	recordsservice "cadastro/internal/records/service"
	recordsstore "cadastro/internal/records/store"
	httptransport "cadastro/internal/transport/http"
	authmw "cadastro/pkg/platform/middleware/auth"
)

const (
	tokenAudience   = "cadastro"
	auditOutboxSize = 256
	auditPartitions = 3
	auditReplicas   = 1
	startupTimeout  = 15 * time.Second
)

// main wires the identity, records and CEP proxy services behind one router.
// Postgres, Redis and Kafka are optional; without them the server runs on
// in-memory stores.
func main() {
	config.LoadDotEnv()
	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

type infra struct {
	db     *sql.DB
	redis  *redis.Client
	sink   *audit.KafkaSink
	checks map[string]httptransport.HealthCheck
}

func (i *infra) close(log *slog.Logger) {
	if i.sink != nil {
		i.sink.Close()
	}
	if i.redis != nil {
		if err := i.redis.Close(); err != nil {
			log.Warn("failed to close redis", "error", err)
		}
	}
	if i.db != nil {
		if err := i.db.Close(); err != nil {
			log.Warn("failed to close postgres", "error", err)
		}
	}
}

func connect(ctx context.Context, cfg config.Server, log *slog.Logger) (*infra, error) {
	startCtx, cancel := context.WithTimeout(ctx, startupTimeout)
	defer cancel()

	in := &infra{checks: map[string]httptransport.HealthCheck{}}

	db, err := postgres.Open(startCtx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if db != nil {
		in.db = db
		if err := postgres.Migrate(startCtx, db); err != nil {
			in.close(log)
			return nil, err
		}
		in.checks["postgres"] = db.PingContext
		log.Info("using postgres stores")
	}

	rc, err := redis.New(startCtx, cfg.Redis)
	if err != nil {
		in.close(log)
		return nil, err
	}
	if rc != nil {
		in.redis = rc
		in.checks["redis"] = rc.Health
		log.Info("using redis sessions and CEP cache")
	}

	if len(cfg.Audit.Brokers) > 0 {
		sink, err := audit.NewKafkaSink(cfg.Audit.Brokers, cfg.Audit.Topic)
		if err != nil {
			in.close(log)
			return nil, err
		}
		in.sink = sink
		if err := sink.EnsureTopic(startCtx, auditPartitions, auditReplicas); err != nil {
			in.close(log)
			return nil, err
		}
		log.Info("forwarding audit events to kafka", "topic", cfg.Audit.Topic)
	}
	return in, nil
}

func run(ctx context.Context, cfg config.Server, log *slog.Logger) error {
	in, err := connect(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer in.close(log)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	var (
		users    identityservice.UserStore    = userstore.New()
		sessions identityservice.SessionStore = sessionstore.New()
		docs     recordsservice.Store         = recordsstore.New()
		cepCache postal.Cache                 = postal.NewMemoryCache()
	)
	if in.db != nil {
		users = userstore.NewPostgres(in.db)
		docs = recordsstore.NewPostgres(in.db)
	}
	if in.redis != nil {
		sessions = sessionstore.NewRedis(in.redis.Client)
		cepCache = postal.NewRedisCache(in.redis.Client)
	}

	g, gctx := errgroup.WithContext(ctx)

	auditOpts := []audit.Option{audit.WithLogger(log)}
	if in.sink != nil {
		outbox := make(chan audit.Event, auditOutboxSize)
		auditOpts = append(auditOpts, audit.WithOutbox(outbox))
		worker := audit.NewWorker(in.sink, outbox, log)
		g.Go(func() error { return worker.Run(gctx) })
	}
	auditor := audit.NewPublisher(audit.NewInMemoryStore(), auditOpts...)

	jwt := token.NewJWTService(cfg.JWTSigningKey, cfg.TokenIssuer, tokenAudience)
	identity := identityservice.New(users, sessions, jwt,
		identityservice.WithLogger(log),
		identityservice.WithMetrics(m),
		identityservice.WithAuditPublisher(auditor),
		identityservice.WithTokenTTL(cfg.TokenTTL),
	)
	requireAuth := authmw.RequireAuth(token.NewMiddlewareAdapter(jwt), identity, log)

	records := recordsservice.New(docs,
		recordsservice.WithLogger(log),
		recordsservice.WithMetrics(m),
		recordsservice.WithAuditPublisher(auditor),
		recordsservice.WithTracer(otel.Tracer("cadastro/records")),
	)

	viacep := postal.NewClient(cfg.Postal.BaseURL,
		postal.WithTimeout(cfg.Postal.Timeout),
		postal.WithLogger(log),
		postal.WithMetrics(m),
	)
	lookup := postal.NewCachedLookup(viacep, cepCache, cfg.Postal.CacheTTL,
		postal.WithCacheLogger(log),
		postal.WithCacheMetrics(m),
	)

	router := httptransport.NewRouter(httptransport.Deps{
		Logger:   log,
		Registry: reg,
		Handlers: []httptransport.Registrar{
			identityhandler.New(identity, log, requireAuth),
			recordshandler.New(records, log, requireAuth),
			postalhandler.New(lookup, log),
		},
		Checks: in.checks,
	})

	srv := httpserver.New(cfg.Addr, router)
	log.Info("starting cadastro server", "addr", cfg.Addr)
	g.Go(func() error { return httpserver.Run(gctx, srv, log) })

	return g.Wait()
}
