// Package repo contains all database access logic for the Tripfolio API.
// Each resource has its own file with an interface and a Postgres implementation.
// No business logic lives here — only SQL and type mapping.
//
// Every query that reads or mutates a single record filters by the owning
// user's id as well as the record id. A query that omits the owner filter is
// a correctness bug, not an optimization.
package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/jharmon/tripfolio/internal/domain"
)

// db is the minimal interface satisfied by *pgxpool.Pool and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows integration
// tests to pass a transaction that is rolled back after each test, giving free
// per-test isolation without any manual cleanup.
//
// Begin is included because plan creation, cascade deletion, and item traveler
// replacement span multiple statements. On pgx.Tx it opens a savepoint, so the
// rollback-isolation trick in tests keeps working.
type db interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	execer
	querier
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// execer and querier are the single-statement slices of db. Helpers that must
// run against either a pool or an open transaction accept these instead.
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// TravelerRepo defines the persistence operations for Travelers.
// The service layer depends on this interface, not the concrete Postgres
// implementation, which allows the service to be unit-tested with a mock.
type TravelerRepo interface {
	// Create inserts a new traveler and returns the persisted record (with
	// DB-generated id, created_at, and updated_at populated).
	Create(ctx context.Context, t domain.Traveler) (domain.Traveler, error)

	// GetByID retrieves a traveler by id, scoped to the owner.
	// Returns domain.ErrNotFound when no such record exists for that owner.
	GetByID(ctx context.Context, ownerID, id uuid.UUID) (domain.Traveler, error)

	// ListByOwner returns the owner's travelers ordered by created_at descending.
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Traveler, error)

	// Update overwrites the mutable fields of a traveler, scoped to the owner,
	// refreshing updated_at. Returns domain.ErrNotFound on an id+owner miss.
	Update(ctx context.Context, t domain.Traveler) (domain.Traveler, error)

	// Delete removes a traveler by id, scoped to the owner. It does not touch
	// plan_travelers or item_travelers rows referencing the traveler — readers
	// tolerate the dangling ids. Returns domain.ErrNotFound on a miss.
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
}

// pgTravelerRepo is the Postgres implementation of TravelerRepo.
type pgTravelerRepo struct {
	db db
}

// NewTravelerRepo constructs a TravelerRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewTravelerRepo(db db) TravelerRepo {
	return &pgTravelerRepo{db: db}
}

func (r *pgTravelerRepo) Create(ctx context.Context, t domain.Traveler) (domain.Traveler, error) {
	const q = `
		INSERT INTO travelers (owner_id, name, email, date_of_birth, passport_number, profile_picture)
		VALUES (@owner_id, @name, @email, @date_of_birth, @passport_number, @profile_picture)
		RETURNING id, owner_id, name, email, date_of_birth, passport_number, profile_picture, created_at, updated_at`

	args := pgx.NamedArgs{
		"owner_id":        t.OwnerID,
		"name":            t.Name,
		"email":           t.Email,
		"date_of_birth":   t.DateOfBirth, // nil becomes NULL
		"passport_number": t.PassportNumber,
		"profile_picture": t.ProfilePicture,
	}

	result, err := scanTraveler(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Traveler{}, fmt.Errorf("repo.TravelerRepo.Create: %w", err)
	}
	return result, nil
}

func (r *pgTravelerRepo) GetByID(ctx context.Context, ownerID, id uuid.UUID) (domain.Traveler, error) {
	const q = `
		SELECT id, owner_id, name, email, date_of_birth, passport_number, profile_picture, created_at, updated_at
		FROM travelers
		WHERE id = @id AND owner_id = @owner_id`

	result, err := scanTraveler(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id, "owner_id": ownerID}))
	if err != nil {
		return domain.Traveler{}, fmt.Errorf("repo.TravelerRepo.GetByID: %w", err)
	}
	return result, nil
}

func (r *pgTravelerRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Traveler, error) {
	const q = `
		SELECT id, owner_id, name, email, date_of_birth, passport_number, profile_picture, created_at, updated_at
		FROM travelers
		WHERE owner_id = @owner_id
		ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"owner_id": ownerID})
	if err != nil {
		return nil, fmt.Errorf("repo.TravelerRepo.ListByOwner: %w", err)
	}
	defer rows.Close()

	travelers := []domain.Traveler{}
	for rows.Next() {
		t, err := scanTraveler(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.TravelerRepo.ListByOwner: scan: %w", err)
		}
		travelers = append(travelers, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.TravelerRepo.ListByOwner: rows: %w", err)
	}
	return travelers, nil
}

func (r *pgTravelerRepo) Update(ctx context.Context, t domain.Traveler) (domain.Traveler, error) {
	const q = `
		UPDATE travelers
		SET name            = @name,
		    email           = @email,
		    date_of_birth   = @date_of_birth,
		    passport_number = @passport_number,
		    profile_picture = @profile_picture,
		    updated_at      = clock_timestamp()
		WHERE id = @id AND owner_id = @owner_id
		RETURNING id, owner_id, name, email, date_of_birth, passport_number, profile_picture, created_at, updated_at`

	args := pgx.NamedArgs{
		"id":              t.ID,
		"owner_id":        t.OwnerID,
		"name":            t.Name,
		"email":           t.Email,
		"date_of_birth":   t.DateOfBirth,
		"passport_number": t.PassportNumber,
		"profile_picture": t.ProfilePicture,
	}

	result, err := scanTraveler(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Traveler{}, fmt.Errorf("repo.TravelerRepo.Update: %w", err)
	}
	return result, nil
}

func (r *pgTravelerRepo) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	const q = `DELETE FROM travelers WHERE id = @id AND owner_id = @owner_id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id, "owner_id": ownerID})
	if err != nil {
		return fmt.Errorf("repo.TravelerRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.TravelerRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

// scanner is satisfied by both pgx.Row and pgx.Rows, allowing the scan helpers
// to be reused for both QueryRow and Query calls.
type scanner interface {
	Scan(dest ...any) error
}

// scanTraveler maps a single database row into a domain.Traveler.
func scanTraveler(s scanner) (domain.Traveler, error) {
	var (
		t       domain.Traveler
		id      pgtype.UUID
		ownerID pgtype.UUID
		dob     pgtype.Date
	)

	err := s.Scan(&id, &ownerID, &t.Name, &t.Email, &dob, &t.PassportNumber, &t.ProfilePicture, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Traveler{}, domain.ErrNotFound
		}
		return domain.Traveler{}, err
	}

	t.ID = uuid.UUID(id.Bytes)
	t.OwnerID = uuid.UUID(ownerID.Bytes)
	if dob.Valid {
		d := dob.Time
		t.DateOfBirth = &d
	}
	return t, nil
}

// uuidsFromPg converts a scanned uuid[] column into []uuid.UUID.
func uuidsFromPg(src []pgtype.UUID) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(src))
	for _, u := range src {
		if u.Valid {
			out = append(out, uuid.UUID(u.Bytes))
		}
	}
	return out
}
