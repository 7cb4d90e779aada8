// Package bookingservice is a reference implementation of the Booking
// Service HTTP API used for local development and contract tests.
package bookingservice

import (
	"time"

	"github.com/wolfman30/doorstep/internal/catalog"
)

const StatusConfirmed = "confirmed"

// Appointment is a stored booking.
type Appointment struct {
	ID             string             `json:"_id"`
	Services       []catalog.Offering `json:"services"`
	Date           time.Time          `json:"date"`
	Total          int                `json:"total"`
	Address        string             `json:"address,omitempty"`
	Status         string             `json:"status"`
	IdempotencyKey string             `json:"-"`
	CreatedAt      time.Time          `json:"createdAt"`
}

// AppointmentInput is the POST /api/appointments body.
type AppointmentInput struct {
	Services []catalog.Offering `json:"services"`
	Date     string             `json:"date"`
	Total    int                `json:"total"`
	Address  string             `json:"address,omitempty"`
}

// Validate checks the request against the booking rules and returns the
// parsed appointment time. Days before today are refused, where today is
// taken in the timestamp's own UTC offset so a client booking in its local
// zone agrees with the server about the calendar day.
func (in AppointmentInput) Validate(now time.Time) (time.Time, error) {
	if len(in.Services) == 0 {
		return time.Time{}, ErrNoServices
	}
	if in.Date == "" {
		return time.Time{}, ErrMissingDate
	}
	at, err := time.Parse(time.RFC3339, in.Date)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	loc := at.Location()
	y, m, d := now.In(loc).Date()
	if at.Before(time.Date(y, m, d, 0, 0, 0, 0, loc)) {
		return time.Time{}, ErrPastDate
	}
	sum := 0
	for _, s := range in.Services {
		if s.UnitPrice < 0 {
			return time.Time{}, ErrInvalidPrice
		}
		sum += s.UnitPrice
	}
	if sum != in.Total {
		return time.Time{}, ErrTotalMismatch
	}
	return at, nil
}

// EarningInput is the POST /api/earnings/add body.
type EarningInput struct {
	TechnicianID string `json:"technicianId"`
	Job          string `json:"job"`
	Amount       int    `json:"amount"`
	Date         string `json:"date"`
}
