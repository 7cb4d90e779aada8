package technician

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/wolfman30/doorstep/pkg/logging"
)

// Backend is the remote store for profiles and earnings.
type Backend interface {
	CreateOrFetchProfile(ctx context.Context) (Profile, error)
	UpdateProfile(ctx context.Context, p Profile) (Profile, error)
	EarningsHistory(ctx context.Context, technicianID string) ([]Job, error)
	AddEarning(ctx context.Context, job NewJob) (Job, error)
}

// Service implements the technician panel operations.
type Service struct {
	backend Backend
	logger  *logging.Logger
	now     func() time.Time
}

// NewService wires a Service over backend.
func NewService(backend Backend, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{backend: backend, logger: logger, now: time.Now}
}

// Profile returns the technician profile, creating a default record on first use.
func (s *Service) Profile(ctx context.Context) (Profile, error) {
	p, err := s.backend.CreateOrFetchProfile(ctx)
	if err != nil {
		return Profile{}, fmt.Errorf("fetch profile: %w", err)
	}
	p.Availability = p.Availability.Normalize()
	return p, nil
}

// SaveProfile persists an edited profile.
func (s *Service) SaveProfile(ctx context.Context, p Profile) (Profile, error) {
	if strings.TrimSpace(p.ID) == "" {
		return Profile{}, ErrMissingTechnician
	}
	if err := p.Clean(); err != nil {
		return Profile{}, err
	}
	saved, err := s.backend.UpdateProfile(ctx, p)
	if err != nil {
		return Profile{}, fmt.Errorf("update profile: %w", err)
	}
	s.logger.Info("technician profile saved", "technician_id", saved.ID)
	return saved, nil
}

// ToggleAvailability flips the stored availability and saves it.
func (s *Service) ToggleAvailability(ctx context.Context) (Profile, error) {
	p, err := s.Profile(ctx)
	if err != nil {
		return Profile{}, err
	}
	p.ToggleAvailability()
	saved, err := s.backend.UpdateProfile(ctx, p)
	if err != nil {
		return Profile{}, fmt.Errorf("update availability: %w", err)
	}
	s.logger.Info("technician availability changed", "technician_id", saved.ID, "availability", saved.Availability)
	return saved, nil
}

// Ledger loads the earnings history of technicianID.
func (s *Service) Ledger(ctx context.Context, technicianID string) (*Ledger, error) {
	if strings.TrimSpace(technicianID) == "" {
		return nil, ErrMissingTechnician
	}
	jobs, err := s.backend.EarningsHistory(ctx, technicianID)
	if err != nil {
		return nil, fmt.Errorf("earnings history: %w", err)
	}
	return NewLedger(jobs), nil
}

// Summary loads the ledger and summarises it as of now.
func (s *Service) Summary(ctx context.Context, technicianID string) (Summary, error) {
	l, err := s.Ledger(ctx, technicianID)
	if err != nil {
		return Summary{}, err
	}
	return l.Summarize(s.now()), nil
}

// AddJob records a completed job. Invalid input is refused before any call.
func (s *Service) AddJob(ctx context.Context, job NewJob) (Job, error) {
	if err := job.Validate(); err != nil {
		return Job{}, err
	}
	saved, err := s.backend.AddEarning(ctx, job)
	if err != nil {
		return Job{}, fmt.Errorf("add earning: %w", err)
	}
	s.logger.Info("earning recorded", "technician_id", job.TechnicianID, "amount", saved.Amount)
	return saved, nil
}
