package sessions

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wolfman30/doorstep/internal/booking"
)

// Store persists booking sessions and guards submissions. At most one
// holder of the submit guard exists per session until it is released or
// its TTL lapses. A guard is identified by the token AcquireSubmit returns
// and only that token releases it.
type Store interface {
	// Save creates or overwrites a session.
	Save(ctx context.Context, st booking.SessionState) error
	// Update overwrites a session that still exists. With an empty guard it
	// fails with booking.ErrSubmissionInFlight while any submit guard is
	// held; otherwise the held guard, if any, must be guard. A deleted or
	// expired session yields ErrSessionNotFound.
	Update(ctx context.Context, st booking.SessionState, guard string) error
	Load(ctx context.Context, id string) (booking.SessionState, error)
	Delete(ctx context.Context, id string) error

	AcquireSubmit(ctx context.Context, id string) (token string, ok bool, err error)
	ReleaseSubmit(ctx context.Context, id, token string) error
	SubmitInFlight(ctx context.Context, id string) (bool, error)
	// SubmitTTL is how long a guard lives; zero means until released.
	SubmitTTL() time.Duration
}

type memoryEntry struct {
	state     booking.SessionState
	expiresAt time.Time
}

type memoryLock struct {
	token     string
	expiresAt time.Time
}

// MemoryStore keeps sessions in process. Used in development and tests.
type MemoryStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	lockTTL time.Duration
	now     func() time.Time

	sessions map[string]memoryEntry
	locks    map[string]memoryLock
}

// NewMemoryStore returns an empty store. Sessions expire ttl after their
// last save; submit guards expire after lockTTL.
func NewMemoryStore(ttl, lockTTL time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:      ttl,
		lockTTL:  lockTTL,
		now:      time.Now,
		sessions: make(map[string]memoryEntry),
		locks:    make(map[string]memoryLock),
	}
}

func (s *MemoryStore) Save(_ context.Context, st booking.SessionState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.put(st)
	return nil
}

func (s *MemoryStore) Update(_ context.Context, st booking.SessionState, guard string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l, held := s.heldLock(st.ID); held && l.token != guard {
		return booking.ErrSubmissionInFlight
	}
	e, ok := s.sessions[st.ID]
	if !ok || s.expired(e.expiresAt) {
		delete(s.sessions, st.ID)
		return ErrSessionNotFound
	}
	s.put(st)
	return nil
}

func (s *MemoryStore) Load(_ context.Context, id string) (booking.SessionState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[id]
	if !ok || s.expired(e.expiresAt) {
		delete(s.sessions, id)
		return booking.SessionState{}, ErrSessionNotFound
	}
	return cloneState(e.state), nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	delete(s.locks, id)
	return nil
}

func (s *MemoryStore) AcquireSubmit(_ context.Context, id string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, held := s.heldLock(id); held {
		return "", false, nil
	}
	token := uuid.NewString()
	s.locks[id] = memoryLock{token: token, expiresAt: s.expiry(s.lockTTL)}
	return token, true, nil
}

func (s *MemoryStore) ReleaseSubmit(_ context.Context, id, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l, ok := s.locks[id]; ok && l.token == token {
		delete(s.locks, id)
	}
	return nil
}

func (s *MemoryStore) SubmitInFlight(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, held := s.heldLock(id)
	return held, nil
}

func (s *MemoryStore) SubmitTTL() time.Duration {
	return s.lockTTL
}

// callers hold s.mu
func (s *MemoryStore) put(st booking.SessionState) {
	s.sessions[st.ID] = memoryEntry{state: cloneState(st), expiresAt: s.expiry(s.ttl)}
}

// callers hold s.mu
func (s *MemoryStore) heldLock(id string) (memoryLock, bool) {
	l, ok := s.locks[id]
	if !ok || s.expired(l.expiresAt) {
		return memoryLock{}, false
	}
	return l, true
}

func (s *MemoryStore) expiry(ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return s.now().Add(ttl)
}

func (s *MemoryStore) expired(at time.Time) bool {
	return !at.IsZero() && !s.now().Before(at)
}

func cloneState(st booking.SessionState) booking.SessionState {
	out := st
	out.SelectedIDs = append([]int(nil), st.SelectedIDs...)
	if st.LastOutcome != nil {
		o := *st.LastOutcome
		out.LastOutcome = &o
	}
	return out
}
