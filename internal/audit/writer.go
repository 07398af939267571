package audit

import (
	"context"
	"errors"
	"sync"
	"time"

	"leadgate/platform/logger"

	"github.com/google/uuid"
)

const asyncWriteTimeout = 5 * time.Second

// Writer is the audit-log writer used by the pipeline and admin services.
type Writer struct {
	store Store
	log   *logger.Logger
	wg    sync.WaitGroup
}

// NewWriter creates a writer over store.
func NewWriter(store Store, log *logger.Logger) *Writer {
	return &Writer{store: store, log: log}
}

// Record appends entry and returns any persistence error.
func (w *Writer) Record(ctx context.Context, entry Entry) error {
	if entry.Action == "" {
		return errors.New("audit entry requires an action")
	}
	if entry.ActorID == nil {
		entry.ActorID = ActorFromContext(ctx)
	}
	_, err := w.store.Append(ctx, entry)
	return err
}

// RecordAsync appends entry on a background goroutine. It is detached from
// the caller's cancellation and never reports failure to the caller; errors
// are logged.
func (w *Writer) RecordAsync(ctx context.Context, entry Entry) {
	detached := context.WithoutCancel(ctx)
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				w.log.Error("audit write panicked", "action", entry.Action, "panic", r)
			}
		}()

		writeCtx, cancel := context.WithTimeout(detached, asyncWriteTimeout)
		defer cancel()
		if err := w.Record(writeCtx, entry); err != nil {
			w.log.WithContext(detached).Error("audit write failed", "action", entry.Action, "error", err)
		}
	}()
}

// Wait blocks until in-flight async writes finish. Used on shutdown.
func (w *Writer) Wait() {
	w.wg.Wait()
}

// List returns recent entries for a partner.
func (w *Writer) List(ctx context.Context, partnerID uuid.UUID, limit int) ([]Entry, error) {
	return w.store.ListByPartner(ctx, partnerID, limit)
}
