package bootstrap

import (
	"github.com/jackc/pgx/v5/pgxpool"

	appconfig "github.com/wolfman30/doorstep/internal/config"
	"github.com/wolfman30/doorstep/internal/events"
	"github.com/wolfman30/doorstep/pkg/logging"
)

// EventPipeline is the publisher the Booking Service writes to plus the
// optional outbox deliverer that forwards stored events to Kafka.
type EventPipeline struct {
	Publisher events.Publisher
	Deliverer *events.Deliverer
	close     []func() error
}

// Close releases the Kafka writer, if any.
func (p *EventPipeline) Close() error {
	var first error
	for _, fn := range p.close {
		if err := fn(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// BuildEventPipeline chooses how domain events leave the Booking Service.
// With Postgres the outbox is the publisher and, when brokers are set, a
// deliverer relays it to Kafka. Without Postgres events go to Kafka
// directly, or nowhere.
func BuildEventPipeline(cfg *appconfig.Config, pool *pgxpool.Pool, logger *logging.Logger) *EventPipeline {
	if logger == nil {
		logger = logging.Default()
	}
	p := &EventPipeline{Publisher: events.NopPublisher{}}

	var kafka *events.KafkaPublisher
	if len(cfg.KafkaBrokers) > 0 {
		kafka = events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.AppointmentsTopic, logger)
		p.close = append(p.close, kafka.Close)
	}

	switch {
	case pool != nil:
		store := events.NewOutboxStore(pool)
		p.Publisher = store
		if kafka != nil {
			p.Deliverer = events.NewDeliverer(store, kafka, logger).WithInterval(cfg.OutboxInterval)
		}
		logger.Info("events via outbox", "relay", kafka != nil, "topic", cfg.AppointmentsTopic)
	case kafka != nil:
		p.Publisher = kafka
		logger.Info("events direct to kafka", "topic", cfg.AppointmentsTopic)
	default:
		logger.Info("event publishing disabled")
	}
	return p
}
