package scheduler

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"

	"leadgate/platform/config"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

const dispatchMaxRetry = 5

type Client struct {
	client *asynq.Client
	queue  string
}

// DispatchEnqueuer hands dispatched leads to the automation engine.
type DispatchEnqueuer interface {
	EnqueueLeadDispatched(ctx context.Context, payload LeadDispatchedPayload) error
}

func NewClient(cfg config.SchedulerConfig) (*Client, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	return &Client{
		client: asynq.NewClient(opt),
		queue:  queueName(cfg),
	}, nil
}

func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// EnqueueLeadDispatched is a no-op on a nil client so the API can run
// without Redis.
func (c *Client) EnqueueLeadDispatched(ctx context.Context, payload LeadDispatchedPayload) error {
	if c == nil || c.client == nil {
		return nil
	}

	task, err := NewLeadDispatchedTask(payload)
	if err != nil {
		return err
	}

	_, err = c.client.EnqueueContext(ctx, task,
		asynq.Queue(c.queue),
		asynq.MaxRetry(dispatchMaxRetry),
		asynq.TaskID(TaskLeadDispatched+":"+payload.LeadID),
	)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		return nil
	}
	return err
}

func queueName(cfg config.SchedulerConfig) string {
	if q := cfg.GetAsynqQueueName(); q != "" {
		return q
	}
	return "default"
}

func redisClientOpt(redisURL string, tlsInsecure bool) (asynq.RedisClientOpt, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return asynq.RedisClientOpt{}, err
	}

	var tlsConfig *tls.Config
	if opt.TLSConfig != nil {
		clone := opt.TLSConfig.Clone()
		if tlsInsecure {
			clone.InsecureSkipVerify = true
		}
		tlsConfig = clone
	} else if tlsInsecure {
		tlsConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return asynq.RedisClientOpt{
		Addr:      opt.Addr,
		Password:  opt.Password,
		DB:        opt.DB,
		TLSConfig: tlsConfig,
	}, nil
}
