package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"leadgate/internal/events"
	"leadgate/internal/organizations"
	"leadgate/internal/scheduler"
	"leadgate/platform/config"
	"leadgate/platform/db"
	"leadgate/platform/logger"
	"leadgate/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting scheduler", "env", cfg.Env, "queue", cfg.GetAsynqQueueName())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

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

	eventBus := events.NewInMemoryBus(log)
	registerHandlers(eventBus, log)

	organizationsModule := organizations.NewModule(pool, validator.New(cfg.GetPhoneRegion()), log)

	worker, err := scheduler.NewWorker(cfg, organizationsModule.InvariantValidator(), eventBus, log)
	if err != nil {
		log.Error("failed to initialize scheduler worker", "error", err)
		panic("failed to initialize scheduler worker: " + err.Error())
	}

	periodic, err := scheduler.NewPeriodic(cfg, log)
	if err != nil {
		log.Error("failed to initialize periodic scheduler", "error", err)
		panic("failed to initialize periodic scheduler: " + err.Error())
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		worker.Run(gctx)
		return nil
	})
	g.Go(func() error {
		periodic.Run(gctx)
		return nil
	})
	_ = g.Wait()
	log.Info("scheduler stopped")
}

// registerHandlers subscribes the worker-side consumers. Follow-up
// automation listens for dispatched leads; ownership violations are
// escalated in the logs for operators.
func registerHandlers(bus events.Bus, log *logger.Logger) {
	bus.Subscribe(events.LeadDispatched{}.EventName(), events.HandlerFunc(func(ctx context.Context, e events.Event) error {
		ev, ok := e.(events.LeadDispatched)
		if !ok {
			return nil
		}
		log.WithContext(ctx).Info("lead dispatched",
			"leadId", ev.LeadID,
			"assignedSiteId", ev.AssignedSiteID,
			"targetOrganizationId", ev.TargetOrganizationID,
			"mechanism", ev.Mechanism,
		)
		return nil
	}))
	bus.Subscribe(events.OwnershipViolationsFound{}.EventName(), events.HandlerFunc(func(ctx context.Context, e events.Event) error {
		ev, ok := e.(events.OwnershipViolationsFound)
		if !ok {
			return nil
		}
		log.WithContext(ctx).Error("ownership audit found violations", "count", ev.Count, "scannedAt", ev.ScannedAt)
		return nil
	}))
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return errors.New(name + ": invalid retry attempts")
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
