package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/jharmon/tripfolio/internal/domain"
)

// planColumns is the SELECT list shared by every plan query. The travelers
// subquery folds the plan_travelers membership rows into a uuid[] in the order
// the travelers were added.
const planColumns = `
	p.id, p.owner_id, p.name, p.description,
	p.start_location, p.start_location_data, p.end_location, p.end_location_data,
	p.start_date, p.end_date, p.created_at, p.updated_at,
	COALESCE(
		(SELECT array_agg(pt.traveler_id ORDER BY pt.added_at)
		 FROM plan_travelers pt
		 WHERE pt.plan_id = p.id),
		'{}'::uuid[])`

// PlanRepo defines the persistence operations for TravelPlans and their
// traveler membership rows.
type PlanRepo interface {
	// Create inserts a new plan plus its initial traveler memberships and
	// returns the persisted record. Duplicate traveler ids in the input
	// collapse to a single membership.
	Create(ctx context.Context, p domain.TravelPlan) (domain.TravelPlan, error)

	// GetByID retrieves a plan by id, scoped to the owner.
	// Returns domain.ErrNotFound when no such plan exists for that owner.
	GetByID(ctx context.Context, ownerID, id uuid.UUID) (domain.TravelPlan, error)

	// ListByOwner returns the owner's plans ordered by created_at descending.
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.TravelPlan, error)

	// Update overwrites the plan's own mutable fields, scoped to the owner,
	// refreshing updated_at. Traveler membership is untouched.
	// Returns domain.ErrNotFound on an id+owner miss.
	Update(ctx context.Context, p domain.TravelPlan) (domain.TravelPlan, error)

	// DeleteCascade removes a plan and all of its items as one transaction:
	// items first, then the plan. Returns domain.ErrNotFound on an id+owner
	// miss (nothing is deleted in that case).
	DeleteCascade(ctx context.Context, ownerID, id uuid.UUID) error

	// AddTraveler links a traveler to a plan. Idempotent — linking an
	// already-present traveler is a no-op success.
	AddTraveler(ctx context.Context, planID, travelerID uuid.UUID) error

	// RemoveTraveler unlinks a traveler from a plan.
	// Returns domain.ErrNotFound when the traveler is not a member.
	RemoveTraveler(ctx context.Context, planID, travelerID uuid.UUID) error
}

// pgPlanRepo is the Postgres implementation of PlanRepo.
type pgPlanRepo struct {
	db db
}

// NewPlanRepo constructs a PlanRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewPlanRepo(db db) PlanRepo {
	return &pgPlanRepo{db: db}
}

func (r *pgPlanRepo) Create(ctx context.Context, p domain.TravelPlan) (domain.TravelPlan, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return domain.TravelPlan{}, fmt.Errorf("repo.PlanRepo.Create: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	const q = `
		INSERT INTO travel_plans (owner_id, name, description,
			start_location, start_location_data, end_location, end_location_data,
			start_date, end_date)
		VALUES (@owner_id, @name, @description,
			@start_location, @start_location_data, @end_location, @end_location_data,
			@start_date, @end_date)
		RETURNING id, owner_id, name, description,
			start_location, start_location_data, end_location, end_location_data,
			start_date, end_date, created_at, updated_at`

	args := pgx.NamedArgs{
		"owner_id":            p.OwnerID,
		"name":                p.Name,
		"description":         p.Description,
		"start_location":      p.StartLocation,
		"start_location_data": p.StartLocationData,
		"end_location":        p.EndLocation,
		"end_location_data":   p.EndLocationData,
		"start_date":          p.StartDate,
		"end_date":            p.EndDate,
	}

	created, err := scanPlanBase(tx.QueryRow(ctx, q, args))
	if err != nil {
		return domain.TravelPlan{}, fmt.Errorf("repo.PlanRepo.Create: %w", err)
	}

	// Duplicate ids in the input collapse to one membership row.
	seen := make(map[uuid.UUID]bool, len(p.Travelers))
	for _, travelerID := range p.Travelers {
		if seen[travelerID] {
			continue
		}
		seen[travelerID] = true
		if err := linkPlanTraveler(ctx, tx, created.ID, travelerID); err != nil {
			return domain.TravelPlan{}, fmt.Errorf("repo.PlanRepo.Create: %w", err)
		}
		created.Travelers = append(created.Travelers, travelerID)
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.TravelPlan{}, fmt.Errorf("repo.PlanRepo.Create: commit: %w", err)
	}
	return created, nil
}

func (r *pgPlanRepo) GetByID(ctx context.Context, ownerID, id uuid.UUID) (domain.TravelPlan, error) {
	q := `SELECT ` + planColumns + `
		FROM travel_plans p
		WHERE p.id = @id AND p.owner_id = @owner_id`

	result, err := scanPlan(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id, "owner_id": ownerID}))
	if err != nil {
		return domain.TravelPlan{}, fmt.Errorf("repo.PlanRepo.GetByID: %w", err)
	}
	return result, nil
}

func (r *pgPlanRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.TravelPlan, error) {
	q := `SELECT ` + planColumns + `
		FROM travel_plans p
		WHERE p.owner_id = @owner_id
		ORDER BY p.created_at DESC`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"owner_id": ownerID})
	if err != nil {
		return nil, fmt.Errorf("repo.PlanRepo.ListByOwner: %w", err)
	}
	defer rows.Close()

	plans := []domain.TravelPlan{}
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.PlanRepo.ListByOwner: scan: %w", err)
		}
		plans = append(plans, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.PlanRepo.ListByOwner: rows: %w", err)
	}
	return plans, nil
}

func (r *pgPlanRepo) Update(ctx context.Context, p domain.TravelPlan) (domain.TravelPlan, error) {
	const q = `
		UPDATE travel_plans
		SET name                = @name,
		    description         = @description,
		    start_location      = @start_location,
		    start_location_data = @start_location_data,
		    end_location        = @end_location,
		    end_location_data   = @end_location_data,
		    start_date          = @start_date,
		    end_date            = @end_date,
		    updated_at          = clock_timestamp()
		WHERE id = @id AND owner_id = @owner_id
		RETURNING id, owner_id, name, description,
			start_location, start_location_data, end_location, end_location_data,
			start_date, end_date, created_at, updated_at`

	args := pgx.NamedArgs{
		"id":                  p.ID,
		"owner_id":            p.OwnerID,
		"name":                p.Name,
		"description":         p.Description,
		"start_location":      p.StartLocation,
		"start_location_data": p.StartLocationData,
		"end_location":        p.EndLocation,
		"end_location_data":   p.EndLocationData,
		"start_date":          p.StartDate,
		"end_date":            p.EndDate,
	}

	updated, err := scanPlanBase(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.TravelPlan{}, fmt.Errorf("repo.PlanRepo.Update: %w", err)
	}

	updated.Travelers, err = listPlanTravelerIDs(ctx, r.db, updated.ID)
	if err != nil {
		return domain.TravelPlan{}, fmt.Errorf("repo.PlanRepo.Update: %w", err)
	}
	return updated, nil
}

// DeleteCascade deletes the plan's items and then the plan itself inside one
// transaction. The explicit items-first ordering matches the documented
// cascade contract; the transaction makes the two steps atomic, so a crash
// between them cannot strand orphaned items.
func (r *pgPlanRepo) DeleteCascade(ctx context.Context, ownerID, id uuid.UUID) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("repo.PlanRepo.DeleteCascade: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	const deleteItems = `DELETE FROM travel_items WHERE plan_id = @plan_id AND owner_id = @owner_id`
	if _, err := tx.Exec(ctx, deleteItems, pgx.NamedArgs{"plan_id": id, "owner_id": ownerID}); err != nil {
		return fmt.Errorf("repo.PlanRepo.DeleteCascade: items: %w", err)
	}

	const deletePlan = `DELETE FROM travel_plans WHERE id = @id AND owner_id = @owner_id`
	tag, err := tx.Exec(ctx, deletePlan, pgx.NamedArgs{"id": id, "owner_id": ownerID})
	if err != nil {
		return fmt.Errorf("repo.PlanRepo.DeleteCascade: plan: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Rolling back also undoes the item delete, which could otherwise
		// remove items under a plan the requester does not own.
		return fmt.Errorf("repo.PlanRepo.DeleteCascade: %w", domain.ErrNotFound)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("repo.PlanRepo.DeleteCascade: commit: %w", err)
	}
	return nil
}

func (r *pgPlanRepo) AddTraveler(ctx context.Context, planID, travelerID uuid.UUID) error {
	if err := linkPlanTraveler(ctx, r.db, planID, travelerID); err != nil {
		return fmt.Errorf("repo.PlanRepo.AddTraveler: %w", err)
	}
	return nil
}

func (r *pgPlanRepo) RemoveTraveler(ctx context.Context, planID, travelerID uuid.UUID) error {
	const q = `
		DELETE FROM plan_travelers
		WHERE plan_id = @plan_id AND traveler_id = @traveler_id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"plan_id": planID, "traveler_id": travelerID})
	if err != nil {
		return fmt.Errorf("repo.PlanRepo.RemoveTraveler: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.PlanRepo.RemoveTraveler: %w", domain.ErrNotFound)
	}
	return nil
}

// linkPlanTraveler inserts a membership row. Idempotent via ON CONFLICT DO NOTHING.
// db is the package-level interface, so this works on pools and transactions alike.
func linkPlanTraveler(ctx context.Context, db execer, planID, travelerID uuid.UUID) error {
	const q = `
		INSERT INTO plan_travelers (plan_id, traveler_id)
		VALUES (@plan_id, @traveler_id)
		ON CONFLICT (plan_id, traveler_id) DO NOTHING`

	_, err := db.Exec(ctx, q, pgx.NamedArgs{"plan_id": planID, "traveler_id": travelerID})
	return err
}

// listPlanTravelerIDs returns a plan's traveler ids in the order they were added.
func listPlanTravelerIDs(ctx context.Context, db querier, planID uuid.UUID) ([]uuid.UUID, error) {
	const q = `
		SELECT traveler_id
		FROM plan_travelers
		WHERE plan_id = @plan_id
		ORDER BY added_at`

	rows, err := db.Query(ctx, q, pgx.NamedArgs{"plan_id": planID})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []uuid.UUID{}
	for rows.Next() {
		var id pgtype.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, uuid.UUID(id.Bytes))
	}
	return ids, rows.Err()
}

// scanPlanBase maps a row without the travelers array (INSERT/UPDATE RETURNING).
func scanPlanBase(s scanner) (domain.TravelPlan, error) {
	var (
		p         domain.TravelPlan
		id, owner pgtype.UUID
	)

	err := s.Scan(&id, &owner, &p.Name, &p.Description,
		&p.StartLocation, &p.StartLocationData, &p.EndLocation, &p.EndLocationData,
		&p.StartDate, &p.EndDate, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.TravelPlan{}, domain.ErrNotFound
		}
		return domain.TravelPlan{}, err
	}

	p.ID = uuid.UUID(id.Bytes)
	p.OwnerID = uuid.UUID(owner.Bytes)
	p.Travelers = []uuid.UUID{}
	return p, nil
}

// scanPlan maps a row produced by the planColumns SELECT list, including the
// aggregated travelers array.
func scanPlan(s scanner) (domain.TravelPlan, error) {
	var (
		p         domain.TravelPlan
		id, owner pgtype.UUID
		travelers []pgtype.UUID
	)

	err := s.Scan(&id, &owner, &p.Name, &p.Description,
		&p.StartLocation, &p.StartLocationData, &p.EndLocation, &p.EndLocationData,
		&p.StartDate, &p.EndDate, &p.CreatedAt, &p.UpdatedAt, &travelers)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.TravelPlan{}, domain.ErrNotFound
		}
		return domain.TravelPlan{}, err
	}

	p.ID = uuid.UUID(id.Bytes)
	p.OwnerID = uuid.UUID(owner.Bytes)
	p.Travelers = uuidsFromPg(travelers)
	return p, nil
}
