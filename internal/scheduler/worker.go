package scheduler

import (
	"context"
	"fmt"
	"time"

	"leadgate/internal/events"
	"leadgate/internal/organizations"
	"leadgate/platform/config"
	"leadgate/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// OwnershipScanner re-checks persisted leads against the ownership rules.
type OwnershipScanner interface {
	Scan(ctx context.Context) ([]organizations.Violation, error)
}

type Worker struct {
	server  *asynq.Server
	mux     *asynq.ServeMux
	scanner OwnershipScanner
	bus     events.Bus
	log     *logger.Logger
	now     func() time.Time
}

func NewWorker(cfg config.SchedulerConfig, scanner OwnershipScanner, bus events.Bus, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queueName(cfg): 1,
		},
	})

	w := newWorker(scanner, bus, log)
	w.server = server
	return w, nil
}

func newWorker(scanner OwnershipScanner, bus events.Bus, log *logger.Logger) *Worker {
	w := &Worker{
		mux:     asynq.NewServeMux(),
		scanner: scanner,
		bus:     bus,
		log:     log,
		now:     time.Now,
	}
	w.mux.HandleFunc(TaskLeadDispatched, w.handleLeadDispatched)
	w.mux.HandleFunc(TaskOwnershipAudit, w.handleOwnershipAudit)
	return w
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}

func (w *Worker) handleLeadDispatched(ctx context.Context, task *asynq.Task) error {
	if w.bus == nil {
		return nil
	}

	payload, err := ParseLeadDispatchedPayload(task)
	if err != nil {
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}

	ids, err := parseIDs(payload.LeadID, payload.OrganizationID, payload.AssignedSiteID, payload.TargetOrganizationID)
	if err != nil {
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}

	return w.bus.PublishSync(ctx, events.LeadDispatched{
		BaseEvent:            events.NewBaseEvent(),
		LeadID:               ids[0],
		OrganizationID:       ids[1],
		AssignedSiteID:       ids[2],
		TargetOrganizationID: ids[3],
		Mechanism:            payload.Mechanism,
	})
}

func (w *Worker) handleOwnershipAudit(ctx context.Context, _ *asynq.Task) error {
	if w.scanner == nil {
		return nil
	}

	violations, err := w.scanner.Scan(ctx)
	if err != nil {
		return err
	}
	if len(violations) == 0 {
		w.log.Info("ownership audit clean")
		return nil
	}

	for _, v := range violations {
		w.log.Error("ownership invariant violated",
			"leadId", v.LeadID,
			"organizationId", v.OrganizationID,
			"reason", v.Reason,
		)
	}

	if w.bus == nil {
		return nil
	}
	return w.bus.PublishSync(ctx, events.OwnershipViolationsFound{
		BaseEvent: events.NewBaseEvent(),
		Count:     len(violations),
		ScannedAt: w.now().UTC(),
	})
}

func parseIDs(raw ...string) ([]uuid.UUID, error) {
	out := make([]uuid.UUID, 0, len(raw))
	for _, r := range raw {
		id, err := uuid.Parse(r)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}
