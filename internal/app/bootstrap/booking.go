package bootstrap

import (
	"github.com/wolfman30/doorstep/internal/booking"
	"github.com/wolfman30/doorstep/internal/bookingapi"
	appconfig "github.com/wolfman30/doorstep/internal/config"
	"github.com/wolfman30/doorstep/pkg/logging"
)

// BuildBookingClient returns the Booking Service client for cfg.
func BuildBookingClient(cfg *appconfig.Config, logger *logging.Logger) *bookingapi.Client {
	return bookingapi.NewClient(cfg.BookingServiceURL,
		bookingapi.WithTimeout(cfg.BookingServiceTimeout),
		bookingapi.WithLogger(logger),
	)
}

// BuildSubmitter wires a Submitter over svc. Idempotency keys are attached
// only when enabled in cfg.
func BuildSubmitter(cfg *appconfig.Config, svc booking.Service, logger *logging.Logger) *booking.Submitter {
	opts := []booking.SubmitterOption{booking.WithLogger(logger)}
	if cfg.IdempotencyKeys {
		opts = append(opts, booking.WithRequestIDs())
	}
	return booking.NewSubmitter(svc, opts...)
}
