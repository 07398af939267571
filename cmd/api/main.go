package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"leadgate/internal/adapters"
	"leadgate/internal/audit"
	"leadgate/internal/compliance"
	"leadgate/internal/events"
	"leadgate/internal/evidence"
	apphttp "leadgate/internal/http"
	"leadgate/internal/http/router"
	"leadgate/internal/leads"
	"leadgate/internal/leads/scoring"
	"leadgate/internal/leads/service"
	"leadgate/internal/organizations"
	"leadgate/internal/partners"
	"leadgate/internal/ratelimit"
	"leadgate/internal/routing"
	"leadgate/internal/scheduler"
	"leadgate/platform/config"
	"leadgate/platform/db"
	"leadgate/platform/logger"
	"leadgate/platform/redis"
	"leadgate/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"
)

const (
	rateLimitKeyPrefix = "leadgate:rl:"
	counterSweepEvery  = time.Minute
	shutdownTimeout    = 10 * time.Second
)

type sweeper interface {
	ratelimit.Counter
	Sweep() int
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, pool)
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	// Shared validator instance for dependency injection
	val := validator.New(cfg.GetPhoneRegion())

	cache, err := redis.New(ctx, cfg)
	if err != nil {
		log.Warn("redis unavailable; admission counters are per instance", "error", err)
	}
	if cache != nil {
		defer func() { _ = cache.Close() }()
	}
	counter := initCounter(cache, log)

	archiver := initEvidenceArchiver(ctx, cfg, log)

	dispatchClient, closeDispatch := initDispatchClient(cfg, log)
	if closeDispatch != nil {
		defer closeDispatch()
	}

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	auditWriter := audit.NewWriter(audit.NewRepository(pool), log)
	defer auditWriter.Wait()

	organizationsModule := organizations.NewModule(pool, val, log)
	partnersModule := partners.NewModule(pool, organizationsModule.Repository(), auditWriter, val, cfg.GetDefaultPartnerHourlyLimit(), log)
	routingModule := routing.NewModule(pool, organizationsModule.Repository(), val, log)

	gates := compliance.NewChecker(auditWriter, log, compliance.WithEventBus(eventBus))
	log.Info("compliance gates configured", "gates", gates.Gates())

	leadsModule := leads.NewModule(pool, service.Deps{
		Admitter:  ratelimit.NewLimiter(counter, cfg.GetRateLimitWindow(), ratelimit.WithLogger(log)),
		Gates:     gates,
		Owners:    organizationsModule.Resolver(),
		Router:    routingModule.Resolver(),
		Scorer:    scoring.NewRuleScorer(),
		Audit:     auditWriter,
		Validator: val,
		Notifier:  adapters.NewLeadDispatchNotifier(dispatchClient),
		Evidence:  archiver,
		EventBus:  eventBus,
		Log:       log,
	}, service.Config{
		ConsentTextMinLength: cfg.GetConsentTextMinLength(),
		PhoneRegion:          cfg.GetPhoneRegion(),
	}, partnersModule.AuthMiddleware())
	defer leadsModule.Service().Wait()

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   db.NewPoolAdapter(pool),
		EventBus: eventBus,
		Modules: []apphttp.Module{
			organizationsModule,
			partnersModule,
			routingModule,
			leadsModule,
			audit.NewModule(auditWriter),
		},
	}
	if cache != nil {
		app.Cache = cache.Checker()
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router.New(app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		sweepCounters(gctx, counter)
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}

func initCounter(cache *redis.Client, log *logger.Logger) sweeper {
	if cache == nil {
		log.Warn("REDIS_URL not configured; using in-process admission counter")
		return ratelimit.NewMemoryCounter()
	}
	return ratelimit.NewFallbackCounter(ratelimit.NewRedisCounter(cache.Client, rateLimitKeyPrefix), log)
}

func sweepCounters(ctx context.Context, counter sweeper) {
	ticker := time.NewTicker(counterSweepEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			counter.Sweep()
		}
	}
}

func initEvidenceArchiver(ctx context.Context, cfg *config.Config, log *logger.Logger) service.EvidenceArchiver {
	if !cfg.IsMinIOEnabled() {
		log.Warn("MINIO_ENDPOINT not configured; consent evidence archiving disabled")
		return evidence.NopArchiver{}
	}

	archiver, err := evidence.NewMinIOArchiver(cfg)
	if err != nil {
		log.Error("failed to initialize evidence archiver", "error", err)
		panic("failed to initialize evidence archiver: " + err.Error())
	}
	if err := withRetry(ctx, log, "ensure consent-evidence bucket", 5, 2*time.Second, func() error {
		return archiver.EnsureBucketExists(ctx)
	}); err != nil {
		log.Error("failed to ensure storage bucket exists", "error", err, "bucket", cfg.GetMinioBucketConsentEvidence())
		panic("failed to ensure storage bucket exists: " + err.Error())
	}
	log.Info("evidence archiver initialized", "bucket", cfg.GetMinioBucketConsentEvidence())
	return archiver
}

func initDispatchClient(cfg config.SchedulerConfig, log *logger.Logger) (*scheduler.Client, func()) {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; dispatch notifications disabled")
		return nil, nil
	}

	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize dispatch client", "error", err)
		return nil, nil
	}

	return client, func() {
		_ = client.Close()
	}
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
