package bookingapi

import (
	"github.com/wolfman30/doorstep/internal/catalog"
)

// AppointmentPayload is the POST /api/appointments body.
type AppointmentPayload struct {
	Services []catalog.Offering `json:"services"`
	Date     string             `json:"date"`
	Total    int                `json:"total"`
	Address  string             `json:"address,omitempty"`
}

// EarningPayload is the POST /api/earnings/add body.
type EarningPayload struct {
	TechnicianID string `json:"technicianId"`
	Job          string `json:"job"`
	Amount       int    `json:"amount"`
	Date         string `json:"date"`
}

type errorBody struct {
	Error string `json:"error"`
}

// IdempotencyHeader carries the client request id on appointment creation.
const IdempotencyHeader = "Idempotency-Key"
