package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	adminService "hackportal/internal/admin/service"
	"hackportal/internal/audit"
	"hackportal/internal/authz"
	"hackportal/internal/identity/revocation"
	identityService "hackportal/internal/identity/service"
	jwttoken "hackportal/internal/jwt_token"
	"hackportal/internal/platform/config"
	"hackportal/internal/platform/httpserver"
	"hackportal/internal/platform/logger"
	"hackportal/internal/platform/metrics"
	"hackportal/internal/platform/postgres"
	"hackportal/internal/platform/redis"
	projectService "hackportal/internal/project/service"
	projectStore "hackportal/internal/project/store"
	"hackportal/internal/ratelimit"
	regService "hackportal/internal/registration/service"
	regStore "hackportal/internal/registration/store"
	httptransport "hackportal/internal/transport/http"
	userStore "hackportal/internal/user/store"
	"hackportal/pkg/platform/tx"
)

const (
	auditQueueSize      = 1024
	auditTopicPartition = 3
	auditTopicReplicas  = 1
)

type userStoreBackend interface {
	identityService.UserStore
	adminService.UserStore
}

type projectStoreBackend interface {
	projectService.Store
	regService.ProjectReader
	adminService.ProjectLister
}

type registrationStoreBackend interface {
	regService.Store
	projectService.RegistrationReader
	adminService.RegistrationLister
}

type stores struct {
	users         userStoreBackend
	projects      projectStoreBackend
	registrations registrationStoreBackend
	runner        tx.Runner
}

// main wires the stores, services and HTTP router, then runs the server and
// the audit worker until SIGINT or SIGTERM.
func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel)
	if err := run(cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	checks := map[string]httptransport.HealthCheck{}

	var db *sql.DB
	st := memoryStores()
	if cfg.Database.URL != "" {
		var err error
		db, err = postgres.Open(ctx, cfg.Database)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := postgres.Migrate(ctx, db); err != nil {
			return err
		}
		st = postgresStores(db)
		checks["postgres"] = db.PingContext
		log.Info("using postgres stores")
	} else {
		log.Warn("DATABASE_URL not set, using in-memory stores")
	}

	cache, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	if cache != nil {
		defer cache.Close()
		checks["redis"] = cache.Health
	}
	revocations := revocationList(ctx, cache, db, log)

	m := metrics.New(prometheus.DefaultRegisterer)

	sink, closeSink, err := auditSink(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeSink()
	worker := audit.NewWorker(sink, auditQueueSize, log)
	publisher := audit.NewPublisher(worker)

	tokens := jwttoken.NewJWTService(cfg.Auth.JWTSigningKey, cfg.Auth.AssertionSecret, cfg.Auth.Issuer, cfg.Auth.Issuer)
	identity := identityService.New(st.users, tokens, revocations,
		identityService.WithAllowedDomain(cfg.Auth.AllowedEmailDomain),
		identityService.WithTokenTTL(cfg.Auth.TokenTTL),
		identityService.WithMetrics(m),
		identityService.WithLogger(log),
		identityService.WithAuditPublisher(publisher),
	)
	projects := projectService.New(st.projects, st.registrations,
		projectService.WithTx(st.runner),
		projectService.WithMetrics(m),
		projectService.WithLogger(log),
		projectService.WithAuditPublisher(publisher),
	)
	registrations := regService.New(st.registrations, st.projects,
		regService.WithTx(st.runner),
		regService.WithPolicy(authz.Policy{AdminsMayRegisterOwn: cfg.Policy.AdminsMayRegisterOwn}),
		regService.WithCapacityEnforcement(cfg.Policy.EnforceCapacity),
		regService.WithMetrics(m),
		regService.WithLogger(log),
		regService.WithAuditPublisher(publisher),
	)
	admin := adminService.New(st.users, st.projects, st.registrations,
		adminService.WithSetupKeyHash(cfg.Admin.SetupKeyHash),
		adminService.WithMetrics(m),
		adminService.WithLogger(log),
		adminService.WithAuditPublisher(publisher),
	)
	if err := admin.EnsureBootstrapAdmins(ctx, cfg.Admin.BootstrapEmails); err != nil {
		return err
	}

	limiter, limits := rateLimiter(cfg.RateLimit, cache)
	router := httptransport.NewRouter(httptransport.Deps{
		Logger:            log,
		Metrics:           m,
		Tokens:            jwttoken.NewJWTServiceAdapter(tokens),
		Identity:          identity,
		Projects:          projects,
		Registrations:     registrations,
		Admin:             admin,
		HealthChecks:      checks,
		RateLimiter:       limiter,
		RateLimits:        limits,
		TrustProxyHeaders: cfg.Server.TrustProxyHeaders,
	})
	srv := httpserver.New(cfg.Server.Addr, router)

	// The worker outlives the server so events from draining requests are flushed.
	workerCtx, stopWorker := context.WithCancel(context.Background())
	defer stopWorker()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := worker.Run(workerCtx); !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		log.Info("starting hackportal", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		log.Info("shutting down")
		defer stopWorker()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func memoryStores() stores {
	return stores{
		users:         userStore.NewInMemory(),
		projects:      projectStore.NewInMemory(),
		registrations: regStore.NewInMemory(),
		runner:        tx.NewShardedLock(),
	}
}

func postgresStores(db *sql.DB) stores {
	return stores{
		users:         userStore.NewPostgres(db),
		projects:      projectStore.NewPostgres(db),
		registrations: regStore.NewPostgres(db),
		runner:        postgres.NewTxRunner(db),
	}
}

// revocationList prefers Redis, then PostgreSQL, then process memory.
func revocationList(ctx context.Context, cache *redis.Client, db *sql.DB, log *slog.Logger) identityService.RevocationList {
	if cache != nil {
		log.Info("token revocation list backed by redis")
		return revocation.NewRedisTRL(cache.Client)
	}
	if db != nil {
		trl := revocation.NewPostgresTRL(db, nil)
		go purgeRevocations(ctx, trl, log)
		return trl
	}
	return revocation.NewInMemoryTRL(nil)
}

// rateLimiter shares counters through Redis when available so every replica
// enforces the same budget.
func rateLimiter(cfg config.RateLimitConfig, cache *redis.Client) (ratelimit.Limiter, []ratelimit.Rule) {
	if cfg.Disabled {
		return nil, nil
	}
	rules := []ratelimit.Rule{
		{Method: http.MethodPost, Path: "/auth/sign-in", Limit: cfg.SignInPerMinute, Window: time.Minute},
		{Method: http.MethodPost, Path: "/setup/admin", Limit: cfg.SetupPerHour, Window: time.Hour},
	}
	if cache != nil {
		return ratelimit.NewRedis(cache.Client), rules
	}
	return ratelimit.NewInMemory(), rules
}

func purgeRevocations(ctx context.Context, trl *revocation.PostgresTRL, log *slog.Logger) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := trl.PurgeExpired(ctx)
			if err != nil {
				log.Warn("failed to purge expired revocations", "error", err)
				continue
			}
			log.Debug("purged expired revocations", "count", n)
		}
	}
}

// auditSink logs every event and, when brokers are configured, streams it to Kafka.
func auditSink(ctx context.Context, cfg config.Config, log *slog.Logger) (audit.Sink, func(), error) {
	logSink := audit.NewLogSink(log)
	if len(cfg.Kafka.Brokers) == 0 {
		return logSink, func() {}, nil
	}
	kafka, err := audit.NewKafkaSink(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	if err != nil {
		return nil, nil, err
	}
	if err := kafka.EnsureTopic(ctx, auditTopicPartition, auditTopicReplicas); err != nil {
		log.Warn("failed to ensure audit topic", "topic", cfg.Kafka.Topic, "error", err)
	}
	log.Info("streaming audit events to kafka", "topic", cfg.Kafka.Topic)
	return audit.Fanout{logSink, kafka}, kafka.Close, nil
}
