package booking

import (
	"fmt"
	"strings"
	"time"

	"github.com/wolfman30/doorstep/internal/catalog"
)

const dateLayout = "2006-01-02"

// ScheduleOption customises a Schedule.
type ScheduleOption func(*Schedule)

// WithClock overrides the clock used for the past-date guard.
func WithClock(now func() time.Time) ScheduleOption {
	return func(s *Schedule) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLocation sets the zone in which calendar dates and times are read.
func WithLocation(loc *time.Location) ScheduleOption {
	return func(s *Schedule) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// Schedule collects the date, time and address for one booking. How the
// time is entered depends on the category's SchedulePolicy.
type Schedule struct {
	policy catalog.SchedulePolicy
	now    func() time.Time
	loc    *time.Location

	date    time.Time
	hasDate bool

	timeLabel string
	hour      int
	minute    int
	hasTime   bool

	address string
}

// NewSchedule returns an empty schedule for the given policy.
func NewSchedule(policy catalog.SchedulePolicy, opts ...ScheduleOption) *Schedule {
	s := &Schedule{
		policy: policy,
		now:    time.Now,
		loc:    time.UTC,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetDate records the appointment day. Only the calendar date of d is kept;
// days before today are refused. This is a UI guard, the server validates
// again.
func (s *Schedule) SetDate(d time.Time) error {
	day := startOfDay(d.In(s.loc))
	today := startOfDay(s.now().In(s.loc))
	if day.Before(today) {
		return fmt.Errorf("%w: %s", ErrPastDate, day.Format(dateLayout))
	}
	s.date = day
	s.hasDate = true
	return nil
}

// ClearDate marks the date absent.
func (s *Schedule) ClearDate() {
	s.date = time.Time{}
	s.hasDate = false
}

// SetTime records the appointment time. In slot mode t is a slot label and
// a blank or placeholder label clears the time. In free mode t is HH:MM
// (seconds allowed) and is merged onto the date when the timestamp is built.
func (s *Schedule) SetTime(t string) error {
	t = strings.TrimSpace(t)

	if s.policy.TimeMode == catalog.TimeModeSlot {
		if t == "" || t == catalog.SlotPlaceholder {
			s.clearTime()
			return nil
		}
		slot, ok := s.policy.FindSlot(t)
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownSlot, t)
		}
		s.setTime(slot.Label, slot.StartHour, 0)
		return nil
	}

	if t == "" {
		s.clearTime()
		return nil
	}
	hour, minute, err := parseClock(t)
	if err != nil {
		return err
	}
	s.setTime(fmt.Sprintf("%02d:%02d", hour, minute), hour, minute)
	return nil
}

// SetAddress stores the address as given.
func (s *Schedule) SetAddress(address string) {
	s.address = address
}

// IsComplete reports whether the schedule can be submitted.
func (s *Schedule) IsComplete() bool {
	return s.Missing() == nil
}

// Missing returns the first validation error that keeps the schedule
// incomplete, or nil.
func (s *Schedule) Missing() error {
	switch {
	case !s.hasDate:
		return ErrMissingDate
	case !s.hasTime:
		return ErrMissingTime
	case s.policy.AddressRequired && strings.TrimSpace(s.address) == "":
		return ErrMissingAddress
	}
	return nil
}

// Reset clears date, time and address.
func (s *Schedule) Reset() {
	s.ClearDate()
	s.clearTime()
	s.address = ""
}

// ScheduledAt combines date and time into one timestamp.
func (s *Schedule) ScheduledAt() (time.Time, bool) {
	if !s.hasDate || !s.hasTime {
		return time.Time{}, false
	}
	y, m, d := s.date.Date()
	return time.Date(y, m, d, s.hour, s.minute, 0, 0, s.loc), true
}

// Date returns the chosen day, if any.
func (s *Schedule) Date() (time.Time, bool) {
	return s.date, s.hasDate
}

// Time returns the slot label or HH:MM value, or "" when absent.
func (s *Schedule) Time() string {
	return s.timeLabel
}

// Address returns the raw address.
func (s *Schedule) Address() string {
	return s.address
}

// Policy returns the category policy in force.
func (s *Schedule) Policy() catalog.SchedulePolicy {
	return s.policy
}

func (s *Schedule) setTime(label string, hour, minute int) {
	s.timeLabel = label
	s.hour = hour
	s.minute = minute
	s.hasTime = true
}

func (s *Schedule) clearTime() {
	s.timeLabel = ""
	s.hour, s.minute = 0, 0
	s.hasTime = false
}

func parseClock(v string) (int, int, error) {
	for _, layout := range []string{"15:04", "15:04:05"} {
		if t, err := time.Parse(layout, v); err == nil {
			return t.Hour(), t.Minute(), nil
		}
	}
	return 0, 0, fmt.Errorf("%w: %q", ErrInvalidTime, v)
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
