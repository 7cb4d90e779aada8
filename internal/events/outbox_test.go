package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v4"

	"github.com/wolfman30/doorstep/pkg/logging"
)

func TestOutboxStoreFlow(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgx mock: %v", err)
	}
	defer mock.Close()

	store := newOutboxStoreWithDB(mock)

	env, err := NewEnvelope("", TypeAppointmentCreated, "appt-1", AppointmentCreatedV1{AppointmentID: "appt-1", Total: 1050})
	if err != nil {
		t.Fatalf("NewEnvelope() error = %v", err)
	}
	mock.ExpectExec("INSERT INTO outbox").
		WithArgs(pgxmock.AnyArg(), "appt-1", TypeAppointmentCreated, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	if err := store.Publish(context.Background(), env); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	now := time.Now().UTC()
	id := uuid.New()
	rows := pgxmock.NewRows([]string{"id", "aggregate_id", "type", "payload", "created_at"}).
		AddRow(id, "appt-1", TypeAppointmentCreated, []byte(`{"appointment_id":"appt-1"}`), now)
	mock.ExpectQuery("SELECT id").WithArgs(int32(10)).WillReturnRows(rows)

	entries, err := store.FetchPending(context.Background(), 10)
	if err != nil {
		t.Fatalf("fetch pending failed: %v", err)
	}
	if len(entries) != 1 || entries[0].ID != id || entries[0].AggregateID != "appt-1" {
		t.Fatalf("unexpected entries: %#v", entries)
	}

	mock.ExpectExec("UPDATE outbox").WithArgs(id).WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	ok, err := store.MarkDelivered(context.Background(), id)
	if err != nil || !ok {
		t.Fatalf("MarkDelivered() = (%v, %v), want (true, nil)", ok, err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

type memOutbox struct {
	pending   []OutboxEntry
	delivered []uuid.UUID
}

func (m *memOutbox) FetchPending(context.Context, int32) ([]OutboxEntry, error) {
	return m.pending, nil
}

func (m *memOutbox) MarkDelivered(_ context.Context, id uuid.UUID) (bool, error) {
	m.delivered = append(m.delivered, id)
	return true, nil
}

type flakyHandler struct {
	fail map[uuid.UUID]bool
	seen []uuid.UUID
}

func (h *flakyHandler) Handle(_ context.Context, e OutboxEntry) error {
	h.seen = append(h.seen, e.ID)
	if h.fail[e.ID] {
		return errors.New("broker down")
	}
	return nil
}

func TestDelivererLeavesFailedEntriesPending(t *testing.T) {
	good, bad := uuid.New(), uuid.New()
	store := &memOutbox{pending: []OutboxEntry{{ID: bad}, {ID: good}}}
	handler := &flakyHandler{fail: map[uuid.UUID]bool{bad: true}}

	d := &Deliverer{store: store, handler: handler, logger: logging.Discard(), batchSize: 10}
	if n := d.Drain(context.Background()); n != 1 {
		t.Fatalf("Drain() = %d, want 1", n)
	}
	if len(handler.seen) != 2 {
		t.Fatalf("handler saw %d entries, want 2", len(handler.seen))
	}
	if len(store.delivered) != 1 || store.delivered[0] != good {
		t.Fatalf("delivered = %v, want [%s]", store.delivered, good)
	}
}

func TestDelivererStartWithoutStoreReturns(t *testing.T) {
	d := NewDeliverer(nil, &flakyHandler{}, nil)
	done := make(chan struct{})
	go func() {
		d.Start(context.Background())
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Start should return immediately without a store")
	}
}
