package sessions

import (
	"encoding/json"

	"github.com/wolfman30/doorstep/internal/booking"
	"github.com/wolfman30/doorstep/internal/catalog"
)

// SessionView is the JSON shape of a session.
type SessionView struct {
	ID              string              `json:"id"`
	Category        string              `json:"category"`
	TimeMode        catalog.TimeMode    `json:"timeMode"`
	AddressRequired bool                `json:"addressRequired"`
	Slots           []catalog.Slot      `json:"slots,omitempty"`
	Items           []catalog.Offering  `json:"items"`
	SelectedIDs     []int               `json:"selectedIds"`
	Total           int                 `json:"total"`
	Date            string              `json:"date,omitempty"`
	Time            string              `json:"time,omitempty"`
	Address         string              `json:"address,omitempty"`
	Complete        bool                `json:"complete"`
	Missing         string              `json:"missing,omitempty"`
	State           booking.SubmitState `json:"state"`
	LastOutcome     *OutcomeView        `json:"lastOutcome,omitempty"`
}

// OutcomeView is the JSON shape of a submission outcome.
type OutcomeView struct {
	Outcome   booking.OutcomeKind `json:"outcome"`
	Message   string              `json:"message"`
	Reason    string              `json:"reason,omitempty"`
	Booking   json.RawMessage     `json:"booking,omitempty"`
	Retryable bool                `json:"retryable"`
}

// CatalogView is one category with its offerings.
type CatalogView struct {
	catalog.Category
	Offerings []catalog.Offering `json:"offerings"`
}

func newSessionView(s *booking.Session) SessionView {
	sched := s.Schedule.State()
	policy := s.Category.Policy
	v := SessionView{
		ID:              s.ID,
		Category:        s.Category.ID,
		TimeMode:        policy.TimeMode,
		AddressRequired: policy.AddressRequired,
		Slots:           policy.Slots,
		Items:           s.Selection.SelectedItems(),
		SelectedIDs:     s.Selection.IDs(),
		Total:           s.Selection.Total(),
		Date:            sched.Date,
		Time:            sched.Time,
		Address:         sched.Address,
		Complete:        s.Schedule.IsComplete(),
		State:           s.State,
	}
	if err := s.Schedule.Missing(); err != nil {
		v.Missing = booking.UserMessage(err)
	}
	if s.LastOutcome != nil {
		ov := newOutcomeView(*s.LastOutcome)
		v.LastOutcome = &ov
	}
	return v
}

func newOutcomeView(o booking.Outcome) OutcomeView {
	v := OutcomeView{
		Outcome:   o.Kind,
		Message:   o.Message(),
		Retryable: o.Retryable(),
	}
	switch o.Kind {
	case booking.OutcomeAccepted:
		if len(o.Echo) > 0 {
			v.Booking = o.Echo
		}
	case booking.OutcomeRejected:
		v.Reason = o.Reason
	}
	return v
}
