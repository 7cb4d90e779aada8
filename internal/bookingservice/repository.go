package bookingservice

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/wolfman30/doorstep/internal/technician"
)

// Repository persists appointments, earnings and technician profiles.
type Repository interface {
	CreateAppointment(ctx context.Context, a *Appointment) error
	AppointmentByIdempotencyKey(ctx context.Context, key string) (*Appointment, error)
	CountAppointmentsAt(ctx context.Context, at time.Time) (int, error)

	ListEarnings(ctx context.Context, technicianID string) ([]technician.Job, error)
	AddEarning(ctx context.Context, job technician.Job) error

	FirstProfile(ctx context.Context) (technician.Profile, error)
	CreateProfile(ctx context.Context, p technician.Profile) error
	UpdateProfile(ctx context.Context, p technician.Profile) error
}

// InMemoryRepository is a thread-safe in-memory implementation.
type InMemoryRepository struct {
	mu           sync.RWMutex
	appointments []*Appointment
	byKey        map[string]*Appointment
	earnings     []technician.Job
	profiles     []technician.Profile
}

// NewInMemoryRepository creates an empty repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{byKey: make(map[string]*Appointment)}
}

func (r *InMemoryRepository) CreateAppointment(_ context.Context, a *Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a.IdempotencyKey != "" {
		if _, ok := r.byKey[a.IdempotencyKey]; ok {
			return ErrDuplicateKey
		}
	}
	stored := copyAppointment(a)
	r.appointments = append(r.appointments, stored)
	if a.IdempotencyKey != "" {
		r.byKey[a.IdempotencyKey] = stored
	}
	return nil
}

func (r *InMemoryRepository) AppointmentByIdempotencyKey(_ context.Context, key string) (*Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.byKey[key]
	if !ok {
		return nil, ErrNotFound
	}
	return copyAppointment(a), nil
}

func (r *InMemoryRepository) CountAppointmentsAt(_ context.Context, at time.Time) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, a := range r.appointments {
		if a.Date.Equal(at) {
			n++
		}
	}
	return n, nil
}

func (r *InMemoryRepository) ListEarnings(_ context.Context, technicianID string) ([]technician.Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []technician.Job
	for i := len(r.earnings) - 1; i >= 0; i-- {
		if r.earnings[i].TechnicianID == technicianID {
			out = append(out, r.earnings[i])
		}
	}
	// newest date first; on equal dates the later insert wins
	sort.SliceStable(out, func(i, k int) bool { return out[i].Date.After(out[k].Date) })
	return out, nil
}

func (r *InMemoryRepository) AddEarning(_ context.Context, job technician.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.earnings = append(r.earnings, job)
	return nil
}

func (r *InMemoryRepository) FirstProfile(context.Context) (technician.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(r.profiles) == 0 {
		return technician.Profile{}, ErrNotFound
	}
	return copyProfile(r.profiles[0]), nil
}

func (r *InMemoryRepository) CreateProfile(_ context.Context, p technician.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.profiles = append(r.profiles, copyProfile(p))
	return nil
}

func (r *InMemoryRepository) UpdateProfile(_ context.Context, p technician.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.profiles {
		if r.profiles[i].ID == p.ID {
			r.profiles[i] = copyProfile(p)
			return nil
		}
	}
	return ErrNotFound
}

func copyAppointment(a *Appointment) *Appointment {
	cp := *a
	cp.Services = append(cp.Services[:0:0], a.Services...)
	return &cp
}

func copyProfile(p technician.Profile) technician.Profile {
	p.Skills = append([]string{}, p.Skills...)
	return p
}
