package sessions

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/wolfman30/doorstep/internal/booking"
	"github.com/wolfman30/doorstep/internal/catalog"
	"github.com/wolfman30/doorstep/internal/observability/metrics"
	"github.com/wolfman30/doorstep/pkg/logging"
)

// ScheduleInput is a partial schedule update. Nil fields are left alone;
// an empty string clears the field.
type ScheduleInput struct {
	Date    *string `json:"date,omitempty"`
	Time    *string `json:"time,omitempty"`
	Address *string `json:"address,omitempty"`
}

// Config wires a Manager.
type Config struct {
	Store     Store
	Catalogs  catalog.Provider
	Submitter *booking.Submitter
	Metrics   *metrics.BookingMetrics
	Logger    *logging.Logger
	Location  *time.Location
	Clock     func() time.Time
	NewID     func() string
}

// Manager runs booking sessions on top of a Store.
type Manager struct {
	store     Store
	catalogs  catalog.Provider
	submitter *booking.Submitter
	metrics   *metrics.BookingMetrics
	logger    *logging.Logger
	loc       *time.Location
	now       func() time.Time
	newID     func() string
}

// NewManager validates cfg and fills defaults.
func NewManager(cfg Config) (*Manager, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("sessions: store required")
	}
	if cfg.Catalogs == nil {
		return nil, fmt.Errorf("sessions: catalog provider required")
	}
	if cfg.Submitter == nil {
		return nil, fmt.Errorf("sessions: submitter required")
	}
	m := &Manager{
		store:     cfg.Store,
		catalogs:  cfg.Catalogs,
		submitter: cfg.Submitter,
		metrics:   cfg.Metrics,
		logger:    cfg.Logger,
		loc:       cfg.Location,
		now:       cfg.Clock,
		newID:     cfg.NewID,
	}
	if m.logger == nil {
		m.logger = logging.Default()
	}
	if m.loc == nil {
		m.loc = time.UTC
	}
	if m.now == nil {
		m.now = time.Now
	}
	if m.newID == nil {
		m.newID = uuid.NewString
	}
	return m, nil
}

// Catalogs exposes the provider backing the manager.
func (m *Manager) Catalogs() catalog.Provider {
	return m.catalogs
}

// Create opens a session for a category.
func (m *Manager) Create(ctx context.Context, categoryID string) (*booking.Session, error) {
	cat, c, err := m.resolve(categoryID)
	if err != nil {
		return nil, err
	}
	sess := booking.NewSession(m.newID(), cat, c, m.now(), m.scheduleOpts()...)
	if err := m.store.Save(ctx, sess.Snapshot()); err != nil {
		return nil, err
	}
	m.metrics.SessionOpened()
	m.logger.Info("booking session created", "session_id", sess.ID, "category", categoryID)
	return sess, nil
}

// Get loads a session. The returned state reports Sending while a submit
// guard is held.
func (m *Manager) Get(ctx context.Context, id string) (*booking.Session, error) {
	sess, err := m.load(ctx, id)
	if err != nil {
		return nil, err
	}
	inFlight, err := m.store.SubmitInFlight(ctx, id)
	if err != nil {
		return nil, err
	}
	if inFlight {
		sess.State = booking.StateSending
	}
	return sess, nil
}

// Toggle flips one offering in the session selection.
func (m *Manager) Toggle(ctx context.Context, id string, offeringID int) (*booking.Session, bool, error) {
	sess, err := m.editable(ctx, id)
	if err != nil {
		return nil, false, err
	}
	selected, err := sess.Toggle(offeringID, m.now())
	if err != nil {
		return nil, false, err
	}
	if err := m.store.Update(ctx, sess.Snapshot(), ""); err != nil {
		return nil, false, err
	}
	m.metrics.ObserveToggle(sess.Category.ID, selected)
	return sess, selected, nil
}

// UpdateSchedule applies a partial schedule update. Validation errors leave
// the stored session unchanged.
func (m *Manager) UpdateSchedule(ctx context.Context, id string, in ScheduleInput) (*booking.Session, error) {
	sess, err := m.editable(ctx, id)
	if err != nil {
		return nil, err
	}
	sched := sess.Schedule

	if in.Date != nil {
		if *in.Date == "" {
			sched.ClearDate()
		} else {
			d, err := time.ParseInLocation("2006-01-02", *in.Date, m.loc)
			if err != nil {
				return nil, fmt.Errorf("%w: %q", ErrInvalidDate, *in.Date)
			}
			if err := sched.SetDate(d); err != nil {
				return nil, err
			}
		}
	}
	if in.Time != nil {
		if err := sched.SetTime(*in.Time); err != nil {
			return nil, err
		}
	}
	if in.Address != nil {
		sched.SetAddress(*in.Address)
	}

	sess.UpdatedAt = m.now()
	if err := m.store.Update(ctx, sess.Snapshot(), ""); err != nil {
		return nil, err
	}
	return sess, nil
}

// Submit runs one submission attempt. A concurrent attempt on the same
// session fails with booking.ErrSubmissionInFlight and sends nothing. An
// accepted session is destroyed; otherwise the outcome is stored with the
// session so the user can retry. The attempt is cut off when the submit
// guard would lapse, so no second attempt can start while one is still
// waiting on the booking service.
func (m *Manager) Submit(ctx context.Context, id string) (booking.Outcome, error) {
	token, acquired, err := m.store.AcquireSubmit(ctx, id)
	if err != nil {
		return booking.Outcome{}, err
	}
	if !acquired {
		return booking.Outcome{}, booking.ErrSubmissionInFlight
	}
	defer func() {
		if err := m.store.ReleaseSubmit(context.WithoutCancel(ctx), id, token); err != nil {
			m.logger.Error("failed to release submit guard", "session_id", id, "error", err)
		}
	}()
	if ttl := m.store.SubmitTTL(); ttl > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, ttl)
		defer cancel()
	}

	sess, err := m.load(ctx, id)
	if err != nil {
		return booking.Outcome{}, err
	}

	start := time.Now()
	out, err := sess.Submit(ctx, m.submitter, m.now)
	if err != nil {
		return booking.Outcome{}, err
	}
	m.metrics.ObserveSubmission(sess.Category.ID, string(out.Kind), time.Since(start).Seconds())

	// persist regardless of the request context so the outcome is not lost
	persistCtx := context.WithoutCancel(ctx)
	if out.Kind == booking.OutcomeAccepted {
		if err := m.store.Delete(persistCtx, id); err != nil {
			m.logger.Error("failed to delete accepted session", "session_id", id, "error", err)
		} else {
			m.metrics.SessionClosed()
		}
		m.logger.Info("booking session completed", "session_id", id, "category", sess.Category.ID)
		return out, nil
	}
	if err := m.store.Update(persistCtx, sess.Snapshot(), token); err != nil {
		m.logger.Error("failed to persist submission outcome", "session_id", id, "error", err)
	}
	return out, nil
}

// Close destroys a session.
func (m *Manager) Close(ctx context.Context, id string) error {
	if _, err := m.store.Load(ctx, id); err != nil {
		return err
	}
	if err := m.store.Delete(ctx, id); err != nil {
		return err
	}
	m.metrics.SessionClosed()
	m.logger.Info("booking session closed", "session_id", id)
	return nil
}

func (m *Manager) editable(ctx context.Context, id string) (*booking.Session, error) {
	inFlight, err := m.store.SubmitInFlight(ctx, id)
	if err != nil {
		return nil, err
	}
	if inFlight {
		return nil, booking.ErrSubmissionInFlight
	}
	return m.load(ctx, id)
}

func (m *Manager) load(ctx context.Context, id string) (*booking.Session, error) {
	st, err := m.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	cat, c, err := m.resolve(st.CategoryID)
	if err != nil {
		return nil, err
	}
	return booking.RestoreSession(st, cat, c, m.scheduleOpts()...)
}

func (m *Manager) resolve(categoryID string) (catalog.Category, *catalog.Catalog, error) {
	cat, err := m.catalogs.Category(categoryID)
	if err != nil {
		return catalog.Category{}, nil, err
	}
	c, err := m.catalogs.Catalog(categoryID)
	if err != nil {
		return catalog.Category{}, nil, err
	}
	return cat, c, nil
}

func (m *Manager) scheduleOpts() []booking.ScheduleOption {
	return []booking.ScheduleOption{booking.WithClock(m.now), booking.WithLocation(m.loc)}
}
