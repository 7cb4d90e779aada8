package booking

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/wolfman30/doorstep/pkg/logging"
)

var bookingTracer = otel.Tracer("doorstep.internal.booking")

// Service accepts booking requests. Implementations return a Rejection
// error for a definitive refusal; any other error is treated as a transport
// failure.
type Service interface {
	CreateAppointment(ctx context.Context, req Request) (json.RawMessage, error)
}

// SubmitterOption customises a Submitter.
type SubmitterOption func(*Submitter)

// WithLogger sets the submitter logger.
func WithLogger(logger *logging.Logger) SubmitterOption {
	return func(s *Submitter) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRequestIDs attaches a fresh uuid to every request as an idempotency key.
func WithRequestIDs() SubmitterOption {
	return func(s *Submitter) {
		s.newID = uuid.NewString
	}
}

// WithIDGenerator attaches ids from gen. Mostly for tests.
func WithIDGenerator(gen func() string) SubmitterOption {
	return func(s *Submitter) {
		s.newID = gen
	}
}

// WithStateHook registers a callback invoked on every state transition.
func WithStateHook(hook func(SubmitState)) SubmitterOption {
	return func(s *Submitter) {
		s.onState = hook
	}
}

// Submitter validates a selection and schedule, sends one request and maps
// the reply to an Outcome. It never mutates its inputs.
type Submitter struct {
	service Service
	logger  *logging.Logger
	newID   func() string
	onState func(SubmitState)
}

// NewSubmitter constructs a submitter over service.
func NewSubmitter(service Service, opts ...SubmitterOption) *Submitter {
	if service == nil {
		panic("booking: service required")
	}
	s := &Submitter{service: service, logger: logging.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit runs one attempt: Idle → Validating → Rejected, or
// Idle → Validating → Sending → Accepted | Rejected | TransportFailure.
// The Booking Service is called only when validation passes, and at most
// once. Clearing the selection and schedule on acceptance is the caller's job.
func (s *Submitter) Submit(ctx context.Context, sel *Selection, sched *Schedule) Outcome {
	ctx, span := bookingTracer.Start(ctx, "booking.submit")
	defer span.End()

	s.transition(StateIdle)
	s.transition(StateValidating)

	var requestID string
	if s.newID != nil {
		requestID = s.newID()
	}
	req, err := NewRequest(sel, sched, requestID)
	if err != nil {
		out := RejectedLocally(err)
		span.SetAttributes(attribute.String("doorstep.booking.outcome", string(out.Kind)))
		s.logger.Info("booking rejected locally", "reason", out.Reason, "error", err)
		s.transition(out.State())
		return out
	}

	span.SetAttributes(
		attribute.Int("doorstep.booking.items", len(req.items)),
		attribute.Int("doorstep.booking.total", req.total),
	)
	s.transition(StateSending)

	echo, err := s.service.CreateAppointment(ctx, req)
	var out Outcome
	switch {
	case err == nil:
		out = Accepted(req, echo)
		s.logger.Info("booking accepted", "total", req.total, "items", len(req.items), "request_id", requestID)
	default:
		var rej Rejection
		if errors.As(err, &rej) {
			out = Rejected(req, rej.RejectionReason())
			s.logger.Warn("booking rejected by service", "reason", out.Reason, "request_id", requestID)
		} else {
			out = TransportFailure(req, err)
			span.RecordError(err)
			span.SetStatus(codes.Error, "transport failure")
			s.logger.Error("booking transport failure", "error", err, "request_id", requestID)
		}
	}
	span.SetAttributes(attribute.String("doorstep.booking.outcome", string(out.Kind)))
	s.transition(out.State())
	return out
}

func (s *Submitter) transition(state SubmitState) {
	if s.onState != nil {
		s.onState(state)
	}
}
