package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/jharmon/tripfolio/internal/domain"
	"github.com/jharmon/tripfolio/internal/repo"
)

// ItemService implements business logic for TravelItem operations.
// It holds the plan repo as well: items are never read or written without
// first verifying that the parent plan belongs to the requesting owner.
type ItemService struct {
	plans repo.PlanRepo
	items repo.ItemRepo
}

// NewItemService constructs an ItemService backed by the provided repos.
func NewItemService(plans repo.PlanRepo, items repo.ItemRepo) *ItemService {
	return &ItemService{plans: plans, items: items}
}

// ListByPlan returns a plan's items in creation order. Ownership is checked
// through the parent plan; a plan the owner cannot see yields ErrNotFound.
// Always returns a non-nil slice.
func (s *ItemService) ListByPlan(ctx context.Context, ownerID, planID uuid.UUID) ([]domain.TravelItem, error) {
	if _, err := s.plans.GetByID(ctx, ownerID, planID); err != nil {
		return nil, fmt.Errorf("service.ItemService.ListByPlan: %w", err)
	}

	items, err := s.items.ListByPlan(ctx, planID)
	if err != nil {
		return nil, fmt.Errorf("service.ItemService.ListByPlan: %w", err)
	}
	if items == nil {
		return []domain.TravelItem{}, nil
	}
	return items, nil
}

// Create validates the item, verifies the parent plan belongs to the owner,
// then persists. The item inherits the plan's owner id. Item traveler ids are
// not required to be a subset of the plan's travelers — out-of-plan ids
// degrade to stale references that readers omit.
// The parent plan's update timestamp is deliberately not refreshed.
func (s *ItemService) Create(ctx context.Context, ownerID uuid.UUID, item domain.TravelItem) (domain.TravelItem, error) {
	if _, err := s.plans.GetByID(ctx, ownerID, item.PlanID); err != nil {
		return domain.TravelItem{}, fmt.Errorf("service.ItemService.Create: %w", err)
	}
	if err := validateItem(item); err != nil {
		return domain.TravelItem{}, err
	}

	item.OwnerID = ownerID
	result, err := s.items.Create(ctx, item)
	if err != nil {
		return domain.TravelItem{}, fmt.Errorf("service.ItemService.Create: %w", err)
	}
	return result, nil
}

// Update applies a partial update to the item identified by id+plan+owner,
// re-validates the merged record, and refreshes the item's update timestamp.
func (s *ItemService) Update(ctx context.Context, ownerID, planID, itemID uuid.UUID, u domain.ItemUpdate) (domain.TravelItem, error) {
	if _, err := s.plans.GetByID(ctx, ownerID, planID); err != nil {
		return domain.TravelItem{}, fmt.Errorf("service.ItemService.Update: %w", err)
	}

	existing, err := s.items.GetByID(ctx, ownerID, planID, itemID)
	if err != nil {
		return domain.TravelItem{}, fmt.Errorf("service.ItemService.Update: %w", err)
	}

	merged := u.Apply(existing)
	if err := validateItem(merged); err != nil {
		return domain.TravelItem{}, err
	}

	result, err := s.items.Update(ctx, merged)
	if err != nil {
		return domain.TravelItem{}, fmt.Errorf("service.ItemService.Update: %w", err)
	}
	return result, nil
}

// Delete removes the item identified by id+plan+owner.
func (s *ItemService) Delete(ctx context.Context, ownerID, planID, itemID uuid.UUID) error {
	if _, err := s.plans.GetByID(ctx, ownerID, planID); err != nil {
		return fmt.Errorf("service.ItemService.Delete: %w", err)
	}
	if err := s.items.Delete(ctx, ownerID, planID, itemID); err != nil {
		return fmt.Errorf("service.ItemService.Delete: %w", err)
	}
	return nil
}

// validateItem enforces rules common to Create and Update:
//   - Type must be one of the fixed enumeration.
//   - Name must be non-empty (whitespace-only names are rejected).
//
// Date versus check-in/check-out usage is a convention per type, not
// validated — the schema stores whichever the client supplies.
func validateItem(item domain.TravelItem) error {
	if !item.Type.Valid() {
		return fmt.Errorf("%w: invalid item type", domain.ErrValidation)
	}
	if strings.TrimSpace(item.Name) == "" {
		return fmt.Errorf("%w: item name is required", domain.ErrValidation)
	}
	return nil
}
