package bookingservice

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/doorstep/internal/catalog"
	"github.com/wolfman30/doorstep/internal/events"
	"github.com/wolfman30/doorstep/internal/technician"
	"github.com/wolfman30/doorstep/pkg/logging"
)

var svcNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

type recordingPublisher struct {
	envelopes []events.Envelope
	err       error
}

func (p *recordingPublisher) Publish(_ context.Context, env events.Envelope) error {
	if p.err != nil {
		return p.err
	}
	p.envelopes = append(p.envelopes, env)
	return nil
}

func offerings(t *testing.T, ids ...int) []catalog.Offering {
	t.Helper()
	c, err := catalog.NewStaticProvider().Catalog(catalog.CategorySalon)
	require.NoError(t, err)
	byID := make(map[int]catalog.Offering)
	for _, o := range c.Offerings() {
		byID[o.ID] = o
	}
	out := make([]catalog.Offering, 0, len(ids))
	for _, id := range ids {
		o, ok := byID[id]
		require.True(t, ok, "offering %d", id)
		out = append(out, o)
	}
	return out
}

func newTestService(repo Repository, opts ...Option) *Service {
	n := 0
	s := NewService(repo, logging.Discard(), append([]Option{WithClock(func() time.Time { return svcNow })}, opts...)...)
	s.newID = func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
	return s
}

func validInput(t *testing.T) AppointmentInput {
	return AppointmentInput{
		Services: offerings(t, 1, 2),
		Date:     "2026-03-12T10:30:00Z",
		Total:    1050,
		Address:  "221B Baker Street",
	}
}

func TestCreateAppointment_Stores(t *testing.T) {
	repo := NewInMemoryRepository()
	pub := &recordingPublisher{}
	svc := newTestService(repo, WithPublisher(pub))

	appt, replay, err := svc.CreateAppointment(context.Background(), validInput(t), "")
	require.NoError(t, err)
	assert.False(t, replay)
	assert.Equal(t, "id-1", appt.ID)
	assert.Equal(t, StatusConfirmed, appt.Status)
	assert.Equal(t, time.Date(2026, 3, 12, 10, 30, 0, 0, time.UTC), appt.Date)
	assert.Equal(t, 1050, appt.Total)

	n, err := repo.CountAppointmentsAt(context.Background(), appt.Date)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.Len(t, pub.envelopes, 1)
	assert.Equal(t, events.TypeAppointmentCreated, pub.envelopes[0].Type)
	assert.Equal(t, "id-2", pub.envelopes[0].ID)
	assert.Equal(t, "id-1", pub.envelopes[0].Key)
	assert.JSONEq(t, `{
		"event_id": "id-2",
		"appointment_id": "id-1",
		"service_ids": [1, 2],
		"total": 1050,
		"scheduled_at": "2026-03-12T10:30:00Z",
		"has_address": true,
		"occurred_at": "2026-03-10T09:00:00Z"
	}`, string(pub.envelopes[0].Payload))
}

func TestCreateAppointment_Validation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*AppointmentInput)
		want   error
	}{
		{"no services", func(in *AppointmentInput) { in.Services = nil; in.Total = 0 }, ErrNoServices},
		{"missing date", func(in *AppointmentInput) { in.Date = "" }, ErrMissingDate},
		{"bad date", func(in *AppointmentInput) { in.Date = "12/03/2026" }, ErrInvalidDate},
		{"past date", func(in *AppointmentInput) { in.Date = "2026-03-09T23:00:00Z" }, ErrPastDate},
		{"total mismatch", func(in *AppointmentInput) { in.Total = 999 }, ErrTotalMismatch},
		{"negative price", func(in *AppointmentInput) { in.Services[0].UnitPrice = -250; in.Total = 550 }, ErrInvalidPrice},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := NewInMemoryRepository()
			svc := newTestService(repo)
			in := validInput(t)
			tc.mutate(&in)

			_, _, err := svc.CreateAppointment(context.Background(), in, "")
			require.ErrorIs(t, err, tc.want)

			var reqErr *RequestError
			require.ErrorAs(t, err, &reqErr)
			assert.Equal(t, http.StatusBadRequest, reqErr.Status)
		})
	}
}

func TestAppointmentInput_TodayInClientOffset(t *testing.T) {
	// 02:30 on the 11th in UTC+05:30, still the 10th in UTC
	now := time.Date(2026, 3, 10, 21, 0, 0, 0, time.UTC)
	in := validInput(t)

	in.Date = "2026-03-11T04:00:00+05:30"
	at, err := in.Validate(now)
	require.NoError(t, err)
	assert.True(t, at.Equal(time.Date(2026, 3, 10, 22, 30, 0, 0, time.UTC)))

	in.Date = "2026-03-10T23:00:00+05:30"
	_, err = in.Validate(now)
	assert.ErrorIs(t, err, ErrPastDate)

	// 04:00+05:30 falls on the 10th in UTC but is today for the client
	now = time.Date(2026, 3, 11, 1, 30, 0, 0, time.UTC)
	in.Date = "2026-03-11T04:00:00+05:30"
	_, err = in.Validate(now)
	assert.NoError(t, err)
}

func TestCreateAppointment_EarlierTodayAllowed(t *testing.T) {
	svc := newTestService(NewInMemoryRepository())
	in := validInput(t)
	in.Date = "2026-03-10T07:00:00Z"

	_, _, err := svc.CreateAppointment(context.Background(), in, "")
	assert.NoError(t, err)
}

func TestCreateAppointment_IdempotentReplay(t *testing.T) {
	repo := NewInMemoryRepository()
	pub := &recordingPublisher{}
	svc := newTestService(repo, WithPublisher(pub))

	first, replay, err := svc.CreateAppointment(context.Background(), validInput(t), "req-1")
	require.NoError(t, err)
	require.False(t, replay)

	second, replay, err := svc.CreateAppointment(context.Background(), validInput(t), "req-1")
	require.NoError(t, err)
	assert.True(t, replay)
	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, pub.envelopes, 1, "a replay publishes nothing")

	n, _ := repo.CountAppointmentsAt(context.Background(), first.Date)
	assert.Equal(t, 1, n)
}

// racingRepo misses the first key lookup, as if a concurrent request with the
// same key committed between lookup and insert.
type racingRepo struct {
	*InMemoryRepository
	missed bool
}

func (r *racingRepo) AppointmentByIdempotencyKey(ctx context.Context, key string) (*Appointment, error) {
	if !r.missed {
		r.missed = true
		return nil, ErrNotFound
	}
	return r.InMemoryRepository.AppointmentByIdempotencyKey(ctx, key)
}

func TestCreateAppointment_DuplicateKeyRace(t *testing.T) {
	inner := NewInMemoryRepository()
	require.NoError(t, inner.CreateAppointment(context.Background(), &Appointment{
		ID:             "winner",
		Date:           time.Date(2026, 3, 12, 10, 30, 0, 0, time.UTC),
		IdempotencyKey: "req-1",
	}))
	svc := newTestService(&racingRepo{InMemoryRepository: inner})

	appt, replay, err := svc.CreateAppointment(context.Background(), validInput(t), "req-1")
	require.NoError(t, err)
	assert.True(t, replay)
	assert.Equal(t, "winner", appt.ID)
}

func TestCreateAppointment_SlotFull(t *testing.T) {
	svc := newTestService(NewInMemoryRepository(), WithSlotCapacity(1))

	_, _, err := svc.CreateAppointment(context.Background(), validInput(t), "")
	require.NoError(t, err)

	_, _, err = svc.CreateAppointment(context.Background(), validInput(t), "")
	require.ErrorIs(t, err, ErrSlotFull)
	assert.Equal(t, "Slot full", err.Error())

	other := validInput(t)
	other.Date = "2026-03-12T11:30:00Z"
	_, _, err = svc.CreateAppointment(context.Background(), other, "")
	assert.NoError(t, err)
}

func TestCreateAppointment_PublishFailureIsNotFatal(t *testing.T) {
	svc := newTestService(NewInMemoryRepository(), WithPublisher(&recordingPublisher{err: errors.New("broker down")}))

	appt, _, err := svc.CreateAppointment(context.Background(), validInput(t), "")
	require.NoError(t, err)
	assert.NotEmpty(t, appt.ID)
}

func TestEarnings(t *testing.T) {
	repo := NewInMemoryRepository()
	pub := &recordingPublisher{}
	svc := newTestService(repo, WithPublisher(pub))
	ctx := context.Background()

	for _, in := range []EarningInput{
		{TechnicianID: "tech-1", Job: "Haircut", Amount: 250, Date: "2026-03-01"},
		{TechnicianID: "tech-1", Job: "Facial", Amount: 800, Date: "2026-03-05T00:00:00Z"},
		{TechnicianID: "tech-2", Job: "Waxing", Amount: 500, Date: "2026-03-06"},
	} {
		_, err := svc.AddEarning(ctx, in)
		require.NoError(t, err)
	}

	jobs, err := svc.EarningsHistory(ctx, "tech-1")
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, "Facial", jobs[0].Job)
	assert.Equal(t, "2026-03-05", jobs[0].Day())
	assert.Equal(t, "Haircut", jobs[1].Job)

	empty, err := svc.EarningsHistory(ctx, "nobody")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	require.Len(t, pub.envelopes, 3)
	assert.Equal(t, events.TypeEarningRecorded, pub.envelopes[0].Type)
	assert.Equal(t, "tech-1", pub.envelopes[0].Key)
}

func TestAddEarning_Validation(t *testing.T) {
	svc := newTestService(NewInMemoryRepository())
	ctx := context.Background()

	_, err := svc.AddEarning(ctx, EarningInput{TechnicianID: "tech-1", Amount: 100, Date: "2026-03-01"})
	require.ErrorIs(t, err, technician.ErrMissingJob)
	assert.Equal(t, "job name is required", err.Error())

	_, err = svc.AddEarning(ctx, EarningInput{TechnicianID: "tech-1", Job: "Haircut", Amount: 100, Date: "March"})
	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, http.StatusBadRequest, reqErr.Status)

	_, err = svc.AddEarning(ctx, EarningInput{TechnicianID: "tech-1", Job: "Haircut", Amount: 0, Date: "2026-03-01"})
	assert.ErrorIs(t, err, technician.ErrInvalidAmount)
}

func TestProfiles(t *testing.T) {
	svc := newTestService(NewInMemoryRepository())
	ctx := context.Background()

	first, err := svc.CreateOrFetchProfile(ctx)
	require.NoError(t, err)
	assert.Equal(t, defaultTechnicianName, first.Name)
	assert.Equal(t, technician.Available, first.Availability)

	again, err := svc.CreateOrFetchProfile(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID, "second call fetches")

	edit := first
	edit.Name = "Asha"
	edit.Skills = []string{"Facial", "  ", "Threading"}
	saved, err := svc.UpdateProfile(ctx, first.ID, edit)
	require.NoError(t, err)
	assert.Equal(t, []string{"Facial", "Threading"}, saved.Skills)

	fetched, err := svc.CreateOrFetchProfile(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Asha", fetched.Name)

	_, err = svc.UpdateProfile(ctx, "missing", edit)
	assert.ErrorIs(t, err, ErrNotFound)

	edit.Availability = "Busy"
	_, err = svc.UpdateProfile(ctx, first.ID, edit)
	assert.ErrorIs(t, err, technician.ErrInvalidAvailable)
}
