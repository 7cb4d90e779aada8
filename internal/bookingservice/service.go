package bookingservice

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/wolfman30/doorstep/internal/events"
	"github.com/wolfman30/doorstep/internal/observability/metrics"
	"github.com/wolfman30/doorstep/internal/technician"
	"github.com/wolfman30/doorstep/pkg/logging"
)

var serviceTracer = otel.Tracer("doorstep.internal.bookingservice")

const defaultTechnicianName = "New Technician"

// Option customises a Service.
type Option func(*Service)

// WithPublisher sets where domain events go. Defaults to a no-op.
func WithPublisher(p events.Publisher) Option {
	return func(s *Service) {
		if p != nil {
			s.publisher = p
		}
	}
}

// WithMetrics records appointment counters.
func WithMetrics(m *metrics.AppointmentMetrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithSlotCapacity refuses appointments once n are booked at the same instant.
// Zero disables the check.
func WithSlotCapacity(n int) Option {
	return func(s *Service) { s.slotCapacity = n }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// Service implements the Booking Service operations.
type Service struct {
	repo         Repository
	publisher    events.Publisher
	metrics      *metrics.AppointmentMetrics
	logger       *logging.Logger
	now          func() time.Time
	newID        func() string
	slotCapacity int
}

// NewService wires a Service over repo.
func NewService(repo Repository, logger *logging.Logger, opts ...Option) *Service {
	if repo == nil {
		panic("bookingservice: repository required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	s := &Service{
		repo:      repo,
		publisher: events.NopPublisher{},
		logger:    logger,
		now:       time.Now,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateAppointment validates and stores a booking. A request carrying an
// idempotency key that was already stored returns the original appointment
// with replay set.
func (s *Service) CreateAppointment(ctx context.Context, in AppointmentInput, idempotencyKey string) (*Appointment, bool, error) {
	ctx, span := serviceTracer.Start(ctx, "bookingservice.create_appointment")
	defer span.End()
	span.SetAttributes(
		attribute.Int("appointment.services", len(in.Services)),
		attribute.Bool("appointment.idempotent", idempotencyKey != ""),
	)

	if idempotencyKey != "" {
		existing, err := s.repo.AppointmentByIdempotencyKey(ctx, idempotencyKey)
		switch {
		case err == nil:
			s.metrics.ObserveReplay()
			span.SetAttributes(attribute.Bool("appointment.replay", true))
			return existing, true, nil
		case !errors.Is(err, ErrNotFound):
			span.RecordError(err)
			span.SetStatus(codes.Error, "idempotency lookup failed")
			return nil, false, err
		}
	}

	at, err := in.Validate(s.now())
	if err != nil {
		s.refused(err)
		return nil, false, err
	}

	if s.slotCapacity > 0 {
		n, err := s.repo.CountAppointmentsAt(ctx, at)
		if err != nil {
			span.RecordError(err)
			return nil, false, err
		}
		if n >= s.slotCapacity {
			s.refused(ErrSlotFull)
			return nil, false, ErrSlotFull
		}
	}

	appt := &Appointment{
		ID:             s.newID(),
		Services:       in.Services,
		Date:           at.UTC(),
		Total:          in.Total,
		Address:        in.Address,
		Status:         StatusConfirmed,
		IdempotencyKey: idempotencyKey,
		CreatedAt:      s.now().UTC(),
	}
	if err := s.repo.CreateAppointment(ctx, appt); err != nil {
		if errors.Is(err, ErrDuplicateKey) && idempotencyKey != "" {
			// lost a race with a concurrent retry of the same request
			existing, lookupErr := s.repo.AppointmentByIdempotencyKey(ctx, idempotencyKey)
			if lookupErr == nil {
				s.metrics.ObserveReplay()
				return existing, true, nil
			}
			err = lookupErr
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "store appointment failed")
		return nil, false, err
	}
	span.SetAttributes(attribute.String("appointment.id", appt.ID))
	s.metrics.ObserveCreated()
	s.logger.Info("appointment created",
		"appointment_id", appt.ID,
		"services", len(appt.Services),
		"total", appt.Total,
		"scheduled_at", appt.Date,
	)

	ids := make([]int, len(appt.Services))
	for i, o := range appt.Services {
		ids[i] = o.ID
	}
	eventID := s.newID()
	s.publish(ctx, eventID, events.TypeAppointmentCreated, appt.ID, events.AppointmentCreatedV1{
		EventID:        eventID,
		AppointmentID:  appt.ID,
		ServiceIDs:     ids,
		Total:          appt.Total,
		ScheduledAt:    appt.Date,
		HasAddress:     strings.TrimSpace(appt.Address) != "",
		IdempotencyKey: idempotencyKey,
		OccurredAt:     appt.CreatedAt,
	})
	return appt, false, nil
}

// EarningsHistory lists a technician's jobs, newest first.
func (s *Service) EarningsHistory(ctx context.Context, technicianID string) ([]technician.Job, error) {
	if strings.TrimSpace(technicianID) == "" {
		return nil, validation(technician.ErrMissingTechnician)
	}
	jobs, err := s.repo.ListEarnings(ctx, technicianID)
	if err != nil {
		return nil, err
	}
	if jobs == nil {
		jobs = []technician.Job{}
	}
	return jobs, nil
}

// AddEarning records a completed job.
func (s *Service) AddEarning(ctx context.Context, in EarningInput) (technician.Job, error) {
	ctx, span := serviceTracer.Start(ctx, "bookingservice.add_earning")
	defer span.End()

	job := technician.NewJob{TechnicianID: in.TechnicianID, Job: in.Job, Amount: in.Amount}
	if strings.TrimSpace(in.Date) != "" {
		day, err := technician.ParseDay(in.Date)
		if err != nil {
			return technician.Job{}, badRequest("date must be YYYY-MM-DD")
		}
		job.Date = day
	}
	if err := job.Validate(); err != nil {
		return technician.Job{}, validation(err)
	}

	saved := technician.Job{
		ID:           s.newID(),
		TechnicianID: strings.TrimSpace(job.TechnicianID),
		Job:          strings.TrimSpace(job.Job),
		Amount:       job.Amount,
		Date:         job.Date,
	}
	if err := s.repo.AddEarning(ctx, saved); err != nil {
		span.RecordError(err)
		return technician.Job{}, err
	}
	s.logger.Info("earning recorded", "technician_id", saved.TechnicianID, "amount", saved.Amount, "day", saved.Day())

	eventID := s.newID()
	s.publish(ctx, eventID, events.TypeEarningRecorded, saved.TechnicianID, events.EarningRecordedV1{
		EventID:      eventID,
		EarningID:    saved.ID,
		TechnicianID: saved.TechnicianID,
		Amount:       saved.Amount,
		Day:          saved.Day(),
		OccurredAt:   s.now().UTC(),
	})
	return saved, nil
}

// CreateOrFetchProfile returns the first stored profile, creating a default one when none exists.
func (s *Service) CreateOrFetchProfile(ctx context.Context) (technician.Profile, error) {
	p, err := s.repo.FirstProfile(ctx)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return technician.Profile{}, err
	}
	p = technician.Profile{
		ID:           s.newID(),
		Name:         defaultTechnicianName,
		Skills:       []string{},
		Availability: technician.Available,
	}
	if err := s.repo.CreateProfile(ctx, p); err != nil {
		return technician.Profile{}, err
	}
	s.logger.Info("technician profile created", "technician_id", p.ID)
	return p, nil
}

// UpdateProfile replaces the profile with the given id.
func (s *Service) UpdateProfile(ctx context.Context, id string, p technician.Profile) (technician.Profile, error) {
	p.ID = id
	if p.Skills == nil {
		p.Skills = []string{}
	}
	if err := p.Clean(); err != nil {
		return technician.Profile{}, validation(err)
	}
	if err := s.repo.UpdateProfile(ctx, p); err != nil {
		return technician.Profile{}, err
	}
	return p, nil
}

func (s *Service) publish(ctx context.Context, eventID, eventType, key string, payload any) {
	env, err := events.NewEnvelope(eventID, eventType, key, payload)
	if err == nil {
		err = s.publisher.Publish(ctx, env)
	}
	if err != nil {
		s.metrics.ObservePublishError()
		s.logger.Error("failed to publish event", "type", eventType, "key", key, "error", err)
	}
}

func (s *Service) refused(err error) {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		s.metrics.ObserveRejected(reqErr.Message)
	}
}

// validation turns a technician input error into a 400 refusal.
func validation(err error) *RequestError {
	msg := strings.TrimPrefix(err.Error(), technician.ErrValidation.Error()+": ")
	return &RequestError{Status: http.StatusBadRequest, Message: msg, Err: err}
}
