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

// itemColumns is the SELECT list shared by every item query, including the
// aggregated traveler membership array.
const itemColumns = `
	i.id, i.plan_id, i.owner_id, i.item_type, i.name, i.description,
	i.location, i.location_data, i.date, i.check_in, i.check_out,
	i.price, i.notes, i.created_at, i.updated_at,
	COALESCE(
		(SELECT array_agg(it.traveler_id ORDER BY it.added_at)
		 FROM item_travelers it
		 WHERE it.item_id = i.id),
		'{}'::uuid[])`

// ItemRepo defines the persistence operations for TravelItems.
// Reads by plan are scoped only by plan id — callers must have verified plan
// ownership first. Single-record operations are additionally scoped by owner.
type ItemRepo interface {
	// Create inserts a new item plus its traveler memberships and returns the
	// persisted record.
	Create(ctx context.Context, item domain.TravelItem) (domain.TravelItem, error)

	// GetByID retrieves an item scoped by owner and parent plan.
	// Returns domain.ErrNotFound when no such item exists under that plan for
	// that owner.
	GetByID(ctx context.Context, ownerID, planID, itemID uuid.UUID) (domain.TravelItem, error)

	// ListByPlan returns a plan's items ordered by created_at ascending.
	ListByPlan(ctx context.Context, planID uuid.UUID) ([]domain.TravelItem, error)

	// Update overwrites the item's mutable fields and replaces its traveler
	// membership with item.Travelers, refreshing updated_at. The parent plan's
	// updated_at is deliberately left alone.
	// Returns domain.ErrNotFound on an id+plan+owner miss.
	Update(ctx context.Context, item domain.TravelItem) (domain.TravelItem, error)

	// Delete removes an item scoped by owner and parent plan.
	// Returns domain.ErrNotFound on a miss.
	Delete(ctx context.Context, ownerID, planID, itemID uuid.UUID) error

	// CountByTypeForOwner tallies the owner's items grouped by plan and type
	// in a single query, for annotating the plan list.
	CountByTypeForOwner(ctx context.Context, ownerID uuid.UUID) (map[uuid.UUID]map[domain.ItemType]int, error)
}

// pgItemRepo is the Postgres implementation of ItemRepo.
type pgItemRepo struct {
	db db
}

// NewItemRepo constructs an ItemRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewItemRepo(db db) ItemRepo {
	return &pgItemRepo{db: db}
}

func (r *pgItemRepo) Create(ctx context.Context, item domain.TravelItem) (domain.TravelItem, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return domain.TravelItem{}, fmt.Errorf("repo.ItemRepo.Create: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	const q = `
		INSERT INTO travel_items (plan_id, owner_id, item_type, name, description,
			location, location_data, date, check_in, check_out, price, notes)
		VALUES (@plan_id, @owner_id, @item_type, @name, @description,
			@location, @location_data, @date, @check_in, @check_out, @price, @notes)
		RETURNING id, plan_id, owner_id, item_type, name, description,
			location, location_data, date, check_in, check_out,
			price, notes, created_at, updated_at`

	args := pgx.NamedArgs{
		"plan_id":       item.PlanID,
		"owner_id":      item.OwnerID,
		"item_type":     item.Type,
		"name":          item.Name,
		"description":   item.Description,
		"location":      item.Location,
		"location_data": item.LocationData,
		"date":          item.Date,
		"check_in":      item.CheckIn,
		"check_out":     item.CheckOut,
		"price":         item.Price,
		"notes":         item.Notes,
	}

	created, err := scanItemBase(tx.QueryRow(ctx, q, args))
	if err != nil {
		return domain.TravelItem{}, fmt.Errorf("repo.ItemRepo.Create: %w", err)
	}

	created.Travelers, err = replaceItemTravelers(ctx, tx, created.ID, item.Travelers)
	if err != nil {
		return domain.TravelItem{}, fmt.Errorf("repo.ItemRepo.Create: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.TravelItem{}, fmt.Errorf("repo.ItemRepo.Create: commit: %w", err)
	}
	return created, nil
}

func (r *pgItemRepo) GetByID(ctx context.Context, ownerID, planID, itemID uuid.UUID) (domain.TravelItem, error) {
	q := `SELECT ` + itemColumns + `
		FROM travel_items i
		WHERE i.id = @id AND i.plan_id = @plan_id AND i.owner_id = @owner_id`

	args := pgx.NamedArgs{"id": itemID, "plan_id": planID, "owner_id": ownerID}
	result, err := scanItem(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.TravelItem{}, fmt.Errorf("repo.ItemRepo.GetByID: %w", err)
	}
	return result, nil
}

func (r *pgItemRepo) ListByPlan(ctx context.Context, planID uuid.UUID) ([]domain.TravelItem, error) {
	q := `SELECT ` + itemColumns + `
		FROM travel_items i
		WHERE i.plan_id = @plan_id
		ORDER BY i.created_at`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"plan_id": planID})
	if err != nil {
		return nil, fmt.Errorf("repo.ItemRepo.ListByPlan: %w", err)
	}
	defer rows.Close()

	items := []domain.TravelItem{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.ItemRepo.ListByPlan: scan: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.ItemRepo.ListByPlan: rows: %w", err)
	}
	return items, nil
}

func (r *pgItemRepo) Update(ctx context.Context, item domain.TravelItem) (domain.TravelItem, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return domain.TravelItem{}, fmt.Errorf("repo.ItemRepo.Update: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	const q = `
		UPDATE travel_items
		SET item_type     = @item_type,
		    name          = @name,
		    description   = @description,
		    location      = @location,
		    location_data = @location_data,
		    date          = @date,
		    check_in      = @check_in,
		    check_out     = @check_out,
		    price         = @price,
		    notes         = @notes,
		    updated_at    = clock_timestamp()
		WHERE id = @id AND plan_id = @plan_id AND owner_id = @owner_id
		RETURNING id, plan_id, owner_id, item_type, name, description,
			location, location_data, date, check_in, check_out,
			price, notes, created_at, updated_at`

	args := pgx.NamedArgs{
		"id":            item.ID,
		"plan_id":       item.PlanID,
		"owner_id":      item.OwnerID,
		"item_type":     item.Type,
		"name":          item.Name,
		"description":   item.Description,
		"location":      item.Location,
		"location_data": item.LocationData,
		"date":          item.Date,
		"check_in":      item.CheckIn,
		"check_out":     item.CheckOut,
		"price":         item.Price,
		"notes":         item.Notes,
	}

	updated, err := scanItemBase(tx.QueryRow(ctx, q, args))
	if err != nil {
		return domain.TravelItem{}, fmt.Errorf("repo.ItemRepo.Update: %w", err)
	}

	const clear = `DELETE FROM item_travelers WHERE item_id = @item_id`
	if _, err := tx.Exec(ctx, clear, pgx.NamedArgs{"item_id": updated.ID}); err != nil {
		return domain.TravelItem{}, fmt.Errorf("repo.ItemRepo.Update: clear travelers: %w", err)
	}

	updated.Travelers, err = replaceItemTravelers(ctx, tx, updated.ID, item.Travelers)
	if err != nil {
		return domain.TravelItem{}, fmt.Errorf("repo.ItemRepo.Update: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.TravelItem{}, fmt.Errorf("repo.ItemRepo.Update: commit: %w", err)
	}
	return updated, nil
}

func (r *pgItemRepo) Delete(ctx context.Context, ownerID, planID, itemID uuid.UUID) error {
	const q = `
		DELETE FROM travel_items
		WHERE id = @id AND plan_id = @plan_id AND owner_id = @owner_id`

	args := pgx.NamedArgs{"id": itemID, "plan_id": planID, "owner_id": ownerID}
	tag, err := r.db.Exec(ctx, q, args)
	if err != nil {
		return fmt.Errorf("repo.ItemRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.ItemRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

func (r *pgItemRepo) CountByTypeForOwner(ctx context.Context, ownerID uuid.UUID) (map[uuid.UUID]map[domain.ItemType]int, error) {
	const q = `
		SELECT plan_id, item_type, count(*)
		FROM travel_items
		WHERE owner_id = @owner_id
		GROUP BY plan_id, item_type`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"owner_id": ownerID})
	if err != nil {
		return nil, fmt.Errorf("repo.ItemRepo.CountByTypeForOwner: %w", err)
	}
	defer rows.Close()

	counts := map[uuid.UUID]map[domain.ItemType]int{}
	for rows.Next() {
		var (
			planID   pgtype.UUID
			itemType string
			n        int64
		)
		if err := rows.Scan(&planID, &itemType, &n); err != nil {
			return nil, fmt.Errorf("repo.ItemRepo.CountByTypeForOwner: scan: %w", err)
		}
		pid := uuid.UUID(planID.Bytes)
		if counts[pid] == nil {
			counts[pid] = map[domain.ItemType]int{}
		}
		counts[pid][domain.ItemType(itemType)] = int(n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.ItemRepo.CountByTypeForOwner: rows: %w", err)
	}
	return counts, nil
}

// replaceItemTravelers inserts membership rows for each traveler id and
// returns the resulting membership in insertion order. Duplicate input ids
// collapse via the composite primary key.
func replaceItemTravelers(ctx context.Context, tx pgx.Tx, itemID uuid.UUID, travelerIDs []uuid.UUID) ([]uuid.UUID, error) {
	const q = `
		INSERT INTO item_travelers (item_id, traveler_id)
		VALUES (@item_id, @traveler_id)
		ON CONFLICT (item_id, traveler_id) DO NOTHING`

	seen := make(map[uuid.UUID]bool, len(travelerIDs))
	members := []uuid.UUID{}
	for _, travelerID := range travelerIDs {
		if seen[travelerID] {
			continue
		}
		seen[travelerID] = true
		if _, err := tx.Exec(ctx, q, pgx.NamedArgs{"item_id": itemID, "traveler_id": travelerID}); err != nil {
			return nil, fmt.Errorf("link traveler: %w", err)
		}
		members = append(members, travelerID)
	}
	return members, nil
}

// scanItemBase maps a row without the travelers array (INSERT/UPDATE RETURNING).
func scanItemBase(s scanner) (domain.TravelItem, error) {
	var (
		item              domain.TravelItem
		id, planID, owner pgtype.UUID
		itemType          string
	)

	err := s.Scan(&id, &planID, &owner, &itemType, &item.Name, &item.Description,
		&item.Location, &item.LocationData, &item.Date, &item.CheckIn, &item.CheckOut,
		&item.Price, &item.Notes, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.TravelItem{}, domain.ErrNotFound
		}
		return domain.TravelItem{}, err
	}

	item.ID = uuid.UUID(id.Bytes)
	item.PlanID = uuid.UUID(planID.Bytes)
	item.OwnerID = uuid.UUID(owner.Bytes)
	item.Type = domain.ItemType(itemType)
	item.Travelers = []uuid.UUID{}
	return item, nil
}

// scanItem maps a row produced by the itemColumns SELECT list.
func scanItem(s scanner) (domain.TravelItem, error) {
	var (
		item              domain.TravelItem
		id, planID, owner pgtype.UUID
		itemType          string
		travelers         []pgtype.UUID
	)

	err := s.Scan(&id, &planID, &owner, &itemType, &item.Name, &item.Description,
		&item.Location, &item.LocationData, &item.Date, &item.CheckIn, &item.CheckOut,
		&item.Price, &item.Notes, &item.CreatedAt, &item.UpdatedAt, &travelers)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.TravelItem{}, domain.ErrNotFound
		}
		return domain.TravelItem{}, err
	}

	item.ID = uuid.UUID(id.Bytes)
	item.PlanID = uuid.UUID(planID.Bytes)
	item.OwnerID = uuid.UUID(owner.Bytes)
	item.Type = domain.ItemType(itemType)
	item.Travelers = uuidsFromPg(travelers)
	return item, nil
}
