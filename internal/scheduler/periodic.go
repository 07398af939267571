package scheduler

import (
	"context"
	"fmt"

	"leadgate/platform/config"
	"leadgate/platform/logger"

	"github.com/hibiken/asynq"
)

// Periodic enqueues recurring tasks on a cron schedule.
type Periodic struct {
	scheduler *asynq.Scheduler
	log       *logger.Logger
}

func NewPeriodic(cfg config.SchedulerConfig, log *logger.Logger) (*Periodic, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	s := asynq.NewScheduler(opt, nil)
	if spec := cfg.GetOwnershipAuditCron(); spec != "" {
		entryID, err := s.Register(spec, NewOwnershipAuditTask(), asynq.Queue(queueName(cfg)), asynq.MaxRetry(0))
		if err != nil {
			return nil, fmt.Errorf("register ownership audit: %w", err)
		}
		log.Info("ownership audit scheduled", "cron", spec, "entryId", entryID)
	}

	return &Periodic{scheduler: s, log: log}, nil
}

func (p *Periodic) Run(ctx context.Context) {
	if p == nil || p.scheduler == nil {
		return
	}

	if err := p.scheduler.Start(); err != nil {
		p.log.Error("periodic scheduler stopped", "error", err)
		return
	}
	<-ctx.Done()
	p.scheduler.Shutdown()
}
