package booking

import (
	"fmt"
	"time"

	"github.com/wolfman30/doorstep/internal/catalog"
)

// ScheduleState is the persisted form of a Schedule.
type ScheduleState struct {
	Date    string `json:"date,omitempty"`
	Time    string `json:"time,omitempty"`
	Address string `json:"address,omitempty"`
}

// OutcomeState is the persisted form of the last Outcome.
type OutcomeState struct {
	Kind    OutcomeKind `json:"kind"`
	Message string      `json:"message"`
	Local   bool        `json:"local,omitempty"`
	At      time.Time   `json:"at"`
}

// SessionState is the persisted form of a Session.
type SessionState struct {
	ID          string        `json:"id"`
	CategoryID  string        `json:"categoryId"`
	SelectedIDs []int         `json:"selectedIds"`
	Schedule    ScheduleState `json:"schedule"`
	State       SubmitState   `json:"state"`
	LastOutcome *OutcomeState `json:"lastOutcome,omitempty"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

// State snapshots the schedule.
func (s *Schedule) State() ScheduleState {
	st := ScheduleState{Time: s.timeLabel, Address: s.address}
	if s.hasDate {
		st.Date = s.date.Format(dateLayout)
	}
	return st
}

// RestoreSchedule rebuilds a schedule from persisted state. The past-date
// guard is skipped: a stored date was valid when it was set.
func RestoreSchedule(policy catalog.SchedulePolicy, st ScheduleState, opts ...ScheduleOption) (*Schedule, error) {
	s := NewSchedule(policy, opts...)
	if st.Date != "" {
		d, err := time.ParseInLocation(dateLayout, st.Date, s.loc)
		if err != nil {
			return nil, fmt.Errorf("booking: restore date %q: %w", st.Date, err)
		}
		s.date = d
		s.hasDate = true
	}
	if st.Time != "" {
		if err := s.SetTime(st.Time); err != nil {
			return nil, err
		}
	}
	s.address = st.Address
	return s, nil
}

// Snapshot captures the session in its persisted form.
func (s *Session) Snapshot() SessionState {
	st := SessionState{
		ID:          s.ID,
		CategoryID:  s.Category.ID,
		SelectedIDs: s.Selection.IDs(),
		Schedule:    s.Schedule.State(),
		State:       s.State,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
	if s.LastOutcome != nil {
		st.LastOutcome = &OutcomeState{
			Kind:    s.LastOutcome.Kind,
			Message: s.LastOutcome.Message(),
			Local:   s.LastOutcome.Local,
			At:      s.UpdatedAt,
		}
	}
	return st
}

// RestoreSession rebuilds a session from persisted state.
func RestoreSession(st SessionState, category catalog.Category, c *catalog.Catalog, opts ...ScheduleOption) (*Session, error) {
	sel, err := RestoreSelection(c, st.SelectedIDs)
	if err != nil {
		return nil, err
	}
	sched, err := RestoreSchedule(category.Policy, st.Schedule, opts...)
	if err != nil {
		return nil, err
	}
	state := st.State
	if state == "" {
		state = StateIdle
	}
	sess := &Session{
		ID:        st.ID,
		Category:  category,
		Selection: sel,
		Schedule:  sched,
		State:     state,
		CreatedAt: st.CreatedAt,
		UpdatedAt: st.UpdatedAt,
	}
	if st.LastOutcome != nil {
		out := Outcome{Kind: st.LastOutcome.Kind, Local: st.LastOutcome.Local}
		if out.Kind == OutcomeRejected {
			out.Reason = st.LastOutcome.Message
		}
		sess.LastOutcome = &out
	}
	return sess, nil
}
