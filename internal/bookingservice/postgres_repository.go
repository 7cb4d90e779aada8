package bookingservice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wolfman30/doorstep/internal/technician"
)

const uniqueViolation = "23505"

type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores booking service records in Postgres.
type PostgresRepository struct {
	db dbtx
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("bookingservice: pgx pool required")
	}
	return &PostgresRepository{db: pool}
}

func newPostgresRepositoryWithDB(db dbtx) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) CreateAppointment(ctx context.Context, a *Appointment) error {
	services, err := json.Marshal(a.Services)
	if err != nil {
		return fmt.Errorf("bookingservice: marshal services: %w", err)
	}
	query := `
		INSERT INTO appointments (id, services, scheduled_at, total, address, idempotency_key, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err = r.db.Exec(ctx, query,
		a.ID,
		services,
		a.Date,
		a.Total,
		a.Address,
		nullable(a.IdempotencyKey),
		a.Status,
		a.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrDuplicateKey
		}
		return fmt.Errorf("bookingservice: insert appointment: %w", err)
	}
	return nil
}

func (r *PostgresRepository) AppointmentByIdempotencyKey(ctx context.Context, key string) (*Appointment, error) {
	query := `
		SELECT id, services, scheduled_at, total, address, status, created_at
		FROM appointments
		WHERE idempotency_key = $1
	`
	var (
		a        Appointment
		services []byte
	)
	err := r.db.QueryRow(ctx, query, key).Scan(
		&a.ID,
		&services,
		&a.Date,
		&a.Total,
		&a.Address,
		&a.Status,
		&a.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("bookingservice: appointment by key: %w", err)
	}
	if err := json.Unmarshal(services, &a.Services); err != nil {
		return nil, fmt.Errorf("bookingservice: decode services: %w", err)
	}
	a.IdempotencyKey = key
	return &a, nil
}

func (r *PostgresRepository) CountAppointmentsAt(ctx context.Context, at time.Time) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT count(*) FROM appointments WHERE scheduled_at = $1`, at).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("bookingservice: count appointments: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) ListEarnings(ctx context.Context, technicianID string) ([]technician.Job, error) {
	query := `
		SELECT id, technician_id, job, amount, day
		FROM earnings
		WHERE technician_id = $1
		ORDER BY day DESC, created_at DESC
	`
	rows, err := r.db.Query(ctx, query, technicianID)
	if err != nil {
		return nil, fmt.Errorf("bookingservice: list earnings: %w", err)
	}
	defer rows.Close()

	var jobs []technician.Job
	for rows.Next() {
		var j technician.Job
		if err := rows.Scan(&j.ID, &j.TechnicianID, &j.Job, &j.Amount, &j.Date); err != nil {
			return nil, fmt.Errorf("bookingservice: scan earning: %w", err)
		}
		jobs = append(jobs, j)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("bookingservice: list earnings: %w", err)
	}
	return jobs, nil
}

func (r *PostgresRepository) AddEarning(ctx context.Context, j technician.Job) error {
	query := `
		INSERT INTO earnings (id, technician_id, job, amount, day)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := r.db.Exec(ctx, query, j.ID, j.TechnicianID, j.Job, j.Amount, j.Date); err != nil {
		return fmt.Errorf("bookingservice: insert earning: %w", err)
	}
	return nil
}

func (r *PostgresRepository) FirstProfile(ctx context.Context) (technician.Profile, error) {
	query := `
		SELECT id, name, email, phone, address, id_proof, skills, availability, profile_img
		FROM technician_profiles
		ORDER BY created_at ASC
		LIMIT 1
	`
	var (
		p     technician.Profile
		avail string
	)
	err := r.db.QueryRow(ctx, query).Scan(
		&p.ID,
		&p.Name,
		&p.Email,
		&p.Phone,
		&p.Address,
		&p.IDProof,
		&p.Skills,
		&avail,
		&p.ProfileImg,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return technician.Profile{}, ErrNotFound
	}
	if err != nil {
		return technician.Profile{}, fmt.Errorf("bookingservice: first profile: %w", err)
	}
	p.Availability = technician.Availability(avail)
	if p.Skills == nil {
		p.Skills = []string{}
	}
	return p, nil
}

func (r *PostgresRepository) CreateProfile(ctx context.Context, p technician.Profile) error {
	query := `
		INSERT INTO technician_profiles (id, name, email, phone, address, id_proof, skills, availability, profile_img)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.Exec(ctx, query,
		p.ID, p.Name, p.Email, p.Phone, p.Address, p.IDProof, p.Skills, string(p.Availability), p.ProfileImg,
	)
	if err != nil {
		return fmt.Errorf("bookingservice: insert profile: %w", err)
	}
	return nil
}

func (r *PostgresRepository) UpdateProfile(ctx context.Context, p technician.Profile) error {
	query := `
		UPDATE technician_profiles
		SET name = $2, email = $3, phone = $4, address = $5, id_proof = $6,
		    skills = $7, availability = $8, profile_img = $9, updated_at = now()
		WHERE id = $1
	`
	tag, err := r.db.Exec(ctx, query,
		p.ID, p.Name, p.Email, p.Phone, p.Address, p.IDProof, p.Skills, string(p.Availability), p.ProfileImg,
	)
	if err != nil {
		return fmt.Errorf("bookingservice: update profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
