// Package events carries domain events from the Booking Service to Kafka.
package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	TypeAppointmentCreated = "appointment.created.v1"
	TypeEarningRecorded    = "earning.recorded.v1"
)

// AppointmentCreatedV1 is emitted after the Booking Service stores an appointment.
type AppointmentCreatedV1 struct {
	EventID        string    `json:"event_id"`
	AppointmentID  string    `json:"appointment_id"`
	ServiceIDs     []int     `json:"service_ids"`
	Total          int       `json:"total"`
	ScheduledAt    time.Time `json:"scheduled_at"`
	HasAddress     bool      `json:"has_address"`
	IdempotencyKey string    `json:"idempotency_key,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// EarningRecordedV1 is emitted when a technician job is recorded.
type EarningRecordedV1 struct {
	EventID      string    `json:"event_id"`
	EarningID    string    `json:"earning_id"`
	TechnicianID string    `json:"technician_id"`
	Amount       int       `json:"amount"`
	Day          string    `json:"day"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// Envelope is one event ready for transport. Key orders events per
// aggregate on partitioned transports.
type Envelope struct {
	ID      string
	Type    string
	Key     string
	Payload json.RawMessage
}

// NewEnvelope marshals payload under a fresh event id.
func NewEnvelope(eventID, eventType, key string, payload any) (Envelope, error) {
	if eventID == "" {
		eventID = uuid.NewString()
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("events: marshal %s: %w", eventType, err)
	}
	return Envelope{ID: eventID, Type: eventType, Key: key, Payload: data}, nil
}
