package booking

import (
	"context"
	"time"

	"github.com/wolfman30/doorstep/internal/catalog"
)

// Session is one customer's booking flow within a category: the selection,
// the schedule and the state of the latest submission.
type Session struct {
	ID        string
	Category  catalog.Category
	Selection *Selection
	Schedule  *Schedule

	State       SubmitState
	LastOutcome *Outcome

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewSession starts an idle session over the category catalog.
func NewSession(id string, category catalog.Category, c *catalog.Catalog, now time.Time, opts ...ScheduleOption) *Session {
	return &Session{
		ID:        id,
		Category:  category,
		Selection: NewSelection(c),
		Schedule:  NewSchedule(category.Policy, opts...),
		State:     StateIdle,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Editable returns ErrSubmissionInFlight while a request is being sent.
func (s *Session) Editable() error {
	if s.State == StateSending {
		return ErrSubmissionInFlight
	}
	return nil
}

// Toggle flips one offering in the selection.
func (s *Session) Toggle(id int, now time.Time) (bool, error) {
	if err := s.Editable(); err != nil {
		return false, err
	}
	selected, err := s.Selection.Toggle(id)
	if err != nil {
		return false, err
	}
	s.UpdatedAt = now
	return selected, nil
}

// BeginSubmit marks the session as sending. A second call before Apply
// fails with ErrSubmissionInFlight.
func (s *Session) BeginSubmit(now time.Time) error {
	if err := s.Editable(); err != nil {
		return err
	}
	s.State = StateSending
	s.UpdatedAt = now
	return nil
}

// Apply records an outcome. Accepted clears the selection and schedule;
// Rejected and TransportFailure leave both untouched so the user can retry.
// The session returns to Idle afterwards.
func (s *Session) Apply(out Outcome, now time.Time) {
	if out.Kind == OutcomeAccepted {
		s.Selection.Clear()
		s.Schedule.Reset()
	}
	o := out
	s.LastOutcome = &o
	s.State = StateIdle
	s.UpdatedAt = now
}

// Submit runs one attempt through sub and applies the result.
func (s *Session) Submit(ctx context.Context, sub *Submitter, now func() time.Time) (Outcome, error) {
	if err := s.BeginSubmit(now()); err != nil {
		return Outcome{}, err
	}
	out := sub.Submit(ctx, s.Selection, s.Schedule)
	s.Apply(out, now())
	return out, nil
}
