package bootstrap

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/wolfman30/doorstep/internal/booking"
	"github.com/wolfman30/doorstep/internal/catalog"
	appconfig "github.com/wolfman30/doorstep/internal/config"
	"github.com/wolfman30/doorstep/internal/events"
	"github.com/wolfman30/doorstep/internal/sessions"
	"github.com/wolfman30/doorstep/pkg/logging"
)

func TestBuildRedisClientEmptyAddrReturnsNil(t *testing.T) {
	if client := BuildRedisClient(context.Background(), &appconfig.Config{}, logging.Discard(), true); client != nil {
		t.Fatalf("expected nil client for empty addr")
	}
}

func TestBuildRedisClientUnreachableReturnsNil(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	cfg := &appconfig.Config{RedisAddr: addr}
	if client := BuildRedisClient(context.Background(), cfg, logging.Discard(), true); client != nil {
		t.Fatalf("expected nil client when ping fails")
	}
}

func TestBuildSessionStore(t *testing.T) {
	mr := miniredis.RunT(t)
	base := appconfig.Config{RedisAddr: mr.Addr(), SessionTTL: time.Hour, SubmitLockTTL: time.Minute}

	cfg := base
	store, closeFn := BuildSessionStore(context.Background(), &cfg, logging.Discard())
	defer func() { _ = closeFn() }()
	if _, ok := store.(*sessions.RedisStore); !ok {
		t.Fatalf("expected redis store, got %T", store)
	}

	cfg = base
	cfg.UseMemorySessions = true
	store, _ = BuildSessionStore(context.Background(), &cfg, logging.Discard())
	if _, ok := store.(*sessions.MemoryStore); !ok {
		t.Fatalf("expected memory store, got %T", store)
	}

	cfg = base
	cfg.RedisAddr = ""
	store, _ = BuildSessionStore(context.Background(), &cfg, logging.Discard())
	if _, ok := store.(*sessions.MemoryStore); !ok {
		t.Fatalf("expected memory fallback, got %T", store)
	}
}

func TestBuildPostgresPoolEmptyURLReturnsNil(t *testing.T) {
	if pool := BuildPostgresPool(context.Background(), "", logging.Discard()); pool != nil {
		t.Fatalf("expected nil pool for empty URL")
	}
}

func TestBuildEventPipeline(t *testing.T) {
	cfg := &appconfig.Config{AppointmentsTopic: "appointment.created"}
	p := BuildEventPipeline(cfg, nil, logging.Discard())
	if _, ok := p.Publisher.(events.NopPublisher); !ok {
		t.Fatalf("expected nop publisher, got %T", p.Publisher)
	}
	if p.Deliverer != nil {
		t.Fatalf("expected no deliverer without postgres")
	}

	cfg.KafkaBrokers = []string{"localhost:9092"}
	p = BuildEventPipeline(cfg, nil, logging.Discard())
	defer func() { _ = p.Close() }()
	if _, ok := p.Publisher.(*events.KafkaPublisher); !ok {
		t.Fatalf("expected kafka publisher, got %T", p.Publisher)
	}
}

type captureService struct{ ids []string }

func (c *captureService) CreateAppointment(_ context.Context, req booking.Request) (json.RawMessage, error) {
	c.ids = append(c.ids, req.RequestID())
	return json.RawMessage(`{}`), nil
}

func TestBuildSubmitterIdempotencyKeys(t *testing.T) {
	c, err := catalog.NewStaticProvider().Catalog(catalog.CategoryGeneral)
	if err != nil {
		t.Fatalf("Catalog() error = %v", err)
	}
	sel := booking.NewSelection(c)
	_, _ = sel.Toggle(1)
	sched := booking.NewSchedule(catalog.SchedulePolicy{TimeMode: catalog.TimeModeFree})
	if err := sched.SetDate(time.Now().AddDate(0, 0, 1)); err != nil {
		t.Fatalf("SetDate() error = %v", err)
	}
	if err := sched.SetTime("10:00"); err != nil {
		t.Fatalf("SetTime() error = %v", err)
	}

	svc := &captureService{}
	BuildSubmitter(&appconfig.Config{}, svc, logging.Discard()).Submit(context.Background(), sel, sched)
	BuildSubmitter(&appconfig.Config{IdempotencyKeys: true}, svc, logging.Discard()).Submit(context.Background(), sel, sched)

	if len(svc.ids) != 2 {
		t.Fatalf("expected two calls, got %d", len(svc.ids))
	}
	if svc.ids[0] != "" {
		t.Fatalf("expected no key when disabled, got %q", svc.ids[0])
	}
	if len(svc.ids[1]) != 36 {
		t.Fatalf("expected uuid key when enabled, got %q", svc.ids[1])
	}
	if BuildBookingClient(&appconfig.Config{BookingServiceURL: "http://bookings.invalid"}, logging.Discard()) == nil {
		t.Fatalf("expected client")
	}
}
