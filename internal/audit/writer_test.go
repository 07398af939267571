package audit

import (
	"context"
	"errors"
	"sync"
	"testing"

	"leadgate/platform/logger"

	"github.com/google/uuid"
)

type memoryStore struct {
	mu      sync.Mutex
	entries []Entry
	err     error
}

func (m *memoryStore) Append(_ context.Context, e Entry) (Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return Entry{}, m.err
	}
	e.ID = uuid.New()
	m.entries = append(m.entries, e)
	return e, nil
}

func (m *memoryStore) ListByPartner(_ context.Context, partnerID uuid.UUID, limit int) ([]Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Entry, 0)
	for _, e := range m.entries {
		if e.PartnerID != nil && *e.PartnerID == partnerID && len(out) < limit {
			out = append(out, e)
		}
	}
	return out, nil
}

func TestRecordRequiresAction(t *testing.T) {
	w := NewWriter(&memoryStore{}, logger.Nop())
	if err := w.Record(context.Background(), Entry{}); err == nil {
		t.Fatal("expected error for entry without action")
	}
}

func TestRecordAsyncSurvivesCallerCancellation(t *testing.T) {
	store := &memoryStore{}
	w := NewWriter(store, logger.Nop())
	partnerID := uuid.New()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	w.RecordAsync(ctx, Entry{PartnerID: &partnerID, Action: ActionComplianceRejected})
	w.Wait()

	items, _ := w.List(context.Background(), partnerID, 10)
	if len(items) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(items))
	}
}

func TestRecordAsyncSwallowsStoreErrors(t *testing.T) {
	w := NewWriter(&memoryStore{err: errors.New("db down")}, logger.Nop())
	w.RecordAsync(context.Background(), Entry{Action: ActionLeadIngested})
	w.Wait()
}

func TestSnapshot(t *testing.T) {
	if Snapshot(nil) != nil {
		t.Fatal("nil snapshot should stay nil")
	}
	got := string(Snapshot(map[string]int{"score": 72}))
	if got != `{"score":72}` {
		t.Fatalf("unexpected snapshot %s", got)
	}
	if string(Snapshot(make(chan int))) != "null" {
		t.Fatal("unmarshalable values should snapshot as null")
	}
}

func TestRecordTakesActorFromContext(t *testing.T) {
	store := &memoryStore{}
	w := NewWriter(store, logger.Nop())
	operator := uuid.New()

	if err := w.Record(WithActor(context.Background(), operator), Entry{Action: ActionPartnerSuspended}); err != nil {
		t.Fatalf("record: %v", err)
	}
	explicit := uuid.New()
	if err := w.Record(WithActor(context.Background(), operator), Entry{Action: ActionPartnerActivated, ActorID: &explicit}); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := w.Record(context.Background(), Entry{Action: ActionLeadIngested}); err != nil {
		t.Fatalf("record: %v", err)
	}

	if got := store.entries[0].ActorID; got == nil || *got != operator {
		t.Fatalf("expected actor %s, got %v", operator, got)
	}
	if got := store.entries[1].ActorID; got == nil || *got != explicit {
		t.Fatalf("explicit actor overwritten: %v", got)
	}
	if store.entries[2].ActorID != nil {
		t.Fatalf("pipeline entry should carry no actor")
	}
}
