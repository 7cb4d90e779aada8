package sessions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/wolfman30/doorstep/internal/booking"
)

// releaseScript deletes the guard only while it still holds the caller's token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// updateScript writes the session only if it exists and the guard, when
// held, belongs to ARGV[3]. Returns -1 for a foreign guard, 0 for a missing
// session and 1 on write.
var updateScript = redis.NewScript(`
local holder = redis.call("GET", KEYS[2])
if holder and holder ~= ARGV[3] then
	return -1
end
if redis.call("EXISTS", KEYS[1]) == 0 then
	return 0
end
if tonumber(ARGV[2]) > 0 then
	redis.call("SET", KEYS[1], ARGV[1], "PX", ARGV[2])
else
	redis.call("SET", KEYS[1], ARGV[1])
end
return 1
`)

// RedisStore keeps each session as a JSON value with a sliding TTL and
// implements the submit guard with SET NX holding an owner token.
type RedisStore struct {
	redis   *redis.Client
	tracer  trace.Tracer
	ttl     time.Duration
	lockTTL time.Duration
}

// NewRedisStore wraps an existing client.
func NewRedisStore(client *redis.Client, ttl, lockTTL time.Duration) *RedisStore {
	if client == nil {
		panic("sessions: redis client cannot be nil")
	}
	return &RedisStore{
		redis:   client,
		tracer:  otel.Tracer("doorstep.internal.sessions"),
		ttl:     ttl,
		lockTTL: lockTTL,
	}
}

func (s *RedisStore) Save(ctx context.Context, st booking.SessionState) error {
	ctx, span := s.tracer.Start(ctx, "sessions.save")
	defer span.End()

	data, err := json.Marshal(st)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("sessions: marshal session: %w", err)
	}
	if err := s.redis.Set(ctx, sessionKey(st.ID), data, s.ttl).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("sessions: persist session: %w", err)
	}
	return nil
}

func (s *RedisStore) Update(ctx context.Context, st booking.SessionState, guard string) error {
	ctx, span := s.tracer.Start(ctx, "sessions.update")
	defer span.End()

	data, err := json.Marshal(st)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("sessions: marshal session: %w", err)
	}
	keys := []string{sessionKey(st.ID), submitLockKey(st.ID)}
	res, err := updateScript.Run(ctx, s.redis, keys, data, s.ttl.Milliseconds(), guard).Int()
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("sessions: update session: %w", err)
	}
	switch res {
	case -1:
		return booking.ErrSubmissionInFlight
	case 0:
		return ErrSessionNotFound
	}
	return nil
}

func (s *RedisStore) Load(ctx context.Context, id string) (booking.SessionState, error) {
	ctx, span := s.tracer.Start(ctx, "sessions.load")
	defer span.End()

	data, err := s.redis.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return booking.SessionState{}, ErrSessionNotFound
		}
		span.RecordError(err)
		return booking.SessionState{}, fmt.Errorf("sessions: load session: %w", err)
	}

	var st booking.SessionState
	if err := json.Unmarshal(data, &st); err != nil {
		span.RecordError(err)
		return booking.SessionState{}, fmt.Errorf("sessions: decode session: %w", err)
	}
	return st, nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.redis.Del(ctx, sessionKey(id), submitLockKey(id)).Err(); err != nil {
		return fmt.Errorf("sessions: delete session: %w", err)
	}
	return nil
}

func (s *RedisStore) AcquireSubmit(ctx context.Context, id string) (string, bool, error) {
	token := uuid.NewString()
	ok, err := s.redis.SetNX(ctx, submitLockKey(id), token, s.lockTTL).Result()
	if err != nil {
		return "", false, fmt.Errorf("sessions: acquire submit guard: %w", err)
	}
	if !ok {
		return "", false, nil
	}
	return token, true, nil
}

func (s *RedisStore) ReleaseSubmit(ctx context.Context, id, token string) error {
	if err := releaseScript.Run(ctx, s.redis, []string{submitLockKey(id)}, token).Err(); err != nil {
		return fmt.Errorf("sessions: release submit guard: %w", err)
	}
	return nil
}

func (s *RedisStore) SubmitInFlight(ctx context.Context, id string) (bool, error) {
	n, err := s.redis.Exists(ctx, submitLockKey(id)).Result()
	if err != nil {
		return false, fmt.Errorf("sessions: check submit guard: %w", err)
	}
	return n > 0, nil
}

func (s *RedisStore) SubmitTTL() time.Duration {
	return s.lockTTL
}

func sessionKey(id string) string {
	return fmt.Sprintf("booking_session:%s", id)
}

func submitLockKey(id string) string {
	return fmt.Sprintf("booking_submit:%s", id)
}
