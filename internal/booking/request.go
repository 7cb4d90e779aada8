package booking

import (
	"time"

	"github.com/wolfman30/doorstep/internal/catalog"
)

// Request is the immutable snapshot sent to the Booking Service. It holds
// no reference to the selection or schedule it was built from.
type Request struct {
	items       []catalog.Offering
	total       int
	scheduledAt time.Time
	address     string
	requestID   string
}

// NewRequest validates the selection and schedule and snapshots them.
// requestID may be empty.
func NewRequest(sel *Selection, sched *Schedule, requestID string) (Request, error) {
	items := sel.SelectedItems()
	if len(items) == 0 {
		return Request{}, ErrEmptySelection
	}
	if err := sched.Missing(); err != nil {
		return Request{}, err
	}
	at, _ := sched.ScheduledAt()
	return Request{
		items:       items,
		total:       sumPrices(items),
		scheduledAt: at,
		address:     sched.Address(),
		requestID:   requestID,
	}, nil
}

// Items returns a copy of the booked offerings in catalog order.
func (r Request) Items() []catalog.Offering {
	out := make([]catalog.Offering, len(r.items))
	copy(out, r.items)
	return out
}

// Total is the sum of unit prices over Items.
func (r Request) Total() int { return r.total }

// ScheduledAt is the combined appointment date and time.
func (r Request) ScheduledAt() time.Time { return r.scheduledAt }

// Address is the raw address, possibly empty.
func (r Request) Address() string { return r.address }

// RequestID is the client-generated idempotency key, or "".
func (r Request) RequestID() string { return r.requestID }
