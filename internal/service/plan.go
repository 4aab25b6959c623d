package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/jharmon/tripfolio/internal/domain"
	"github.com/jharmon/tripfolio/internal/repo"
)

// PlanService implements business logic for TravelPlan operations.
// It holds the item repo as well because the plan list is annotated with
// per-type item counts and the plan detail embeds the grouped items.
type PlanService struct {
	plans repo.PlanRepo
	items repo.ItemRepo
}

// NewPlanService constructs a PlanService backed by the provided repos.
func NewPlanService(plans repo.PlanRepo, items repo.ItemRepo) *PlanService {
	return &PlanService{plans: plans, items: items}
}

// List returns the owner's plans newest-first, each annotated with per-type
// item counts. Every ItemType appears in the counts, zero or not.
// Always returns a non-nil slice.
func (s *PlanService) List(ctx context.Context, ownerID uuid.UUID) ([]domain.PlanSummary, error) {
	plans, err := s.plans.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("service.PlanService.List: %w", err)
	}

	counts, err := s.items.CountByTypeForOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("service.PlanService.List: %w", err)
	}

	summaries := make([]domain.PlanSummary, 0, len(plans))
	for _, p := range plans {
		itemCounts := make(map[domain.ItemType]int, len(domain.ItemTypes))
		for _, t := range domain.ItemTypes {
			itemCounts[t] = counts[p.ID][t]
		}
		summaries = append(summaries, domain.PlanSummary{TravelPlan: p, ItemCounts: itemCounts})
	}
	return summaries, nil
}

// Get returns a single plan by id+owner with its items grouped by type, in
// creation order within each group. Returns domain.ErrNotFound on a miss.
func (s *PlanService) Get(ctx context.Context, ownerID, id uuid.UUID) (domain.PlanDetail, error) {
	plan, err := s.plans.GetByID(ctx, ownerID, id)
	if err != nil {
		return domain.PlanDetail{}, fmt.Errorf("service.PlanService.Get: %w", err)
	}

	items, err := s.items.ListByPlan(ctx, plan.ID)
	if err != nil {
		return domain.PlanDetail{}, fmt.Errorf("service.PlanService.Get: %w", err)
	}

	return domain.PlanDetail{TravelPlan: plan, Items: domain.GroupItemsByType(items)}, nil
}

// Create validates and persists a new plan.
// The traveler list may be empty at creation time: the at-least-one-traveler
// invariant is enforced on removal only, matching the client flow of creating
// the plan first and attaching travelers afterwards.
func (s *PlanService) Create(ctx context.Context, p domain.TravelPlan) (domain.TravelPlan, error) {
	if err := validatePlan(p); err != nil {
		return domain.TravelPlan{}, err
	}
	result, err := s.plans.Create(ctx, p)
	if err != nil {
		return domain.TravelPlan{}, fmt.Errorf("service.PlanService.Create: %w", err)
	}
	return result, nil
}

// Update applies a partial update to the plan identified by id+owner,
// re-validates the merged record, and refreshes its update timestamp.
func (s *PlanService) Update(ctx context.Context, ownerID, id uuid.UUID, u domain.PlanUpdate) (domain.TravelPlan, error) {
	existing, err := s.plans.GetByID(ctx, ownerID, id)
	if err != nil {
		return domain.TravelPlan{}, fmt.Errorf("service.PlanService.Update: %w", err)
	}

	merged := u.Apply(existing)
	if err := validatePlan(merged); err != nil {
		return domain.TravelPlan{}, err
	}

	result, err := s.plans.Update(ctx, merged)
	if err != nil {
		return domain.TravelPlan{}, fmt.Errorf("service.PlanService.Update: %w", err)
	}
	return result, nil
}

// Delete removes the plan and all of its items as one logical unit.
// Returns domain.ErrNotFound on an id+owner miss.
func (s *PlanService) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	if err := s.plans.DeleteCascade(ctx, ownerID, id); err != nil {
		return fmt.Errorf("service.PlanService.Delete: %w", err)
	}
	return nil
}

// AddTraveler links a traveler to the plan and returns the refreshed plan.
// Adding an id that is already a member is a no-op success. The traveler id
// is not checked against the travelers table — an unknown id simply becomes
// a stale reference, which readers already tolerate.
func (s *PlanService) AddTraveler(ctx context.Context, ownerID, planID, travelerID uuid.UUID) (domain.TravelPlan, error) {
	if travelerID == uuid.Nil {
		return domain.TravelPlan{}, fmt.Errorf("%w: traveler id is required", domain.ErrValidation)
	}

	plan, err := s.plans.GetByID(ctx, ownerID, planID)
	if err != nil {
		return domain.TravelPlan{}, fmt.Errorf("service.PlanService.AddTraveler: %w", err)
	}
	if plan.HasTraveler(travelerID) {
		return plan, nil
	}

	if err := s.plans.AddTraveler(ctx, planID, travelerID); err != nil {
		return domain.TravelPlan{}, fmt.Errorf("service.PlanService.AddTraveler: %w", err)
	}

	plan, err = s.plans.GetByID(ctx, ownerID, planID)
	if err != nil {
		return domain.TravelPlan{}, fmt.Errorf("service.PlanService.AddTraveler: %w", err)
	}
	return plan, nil
}

// RemoveTraveler unlinks a traveler from the plan and returns the refreshed
// plan. The plan must keep at least one traveler: removing from a plan with
// exactly one member returns domain.ErrValidation.
func (s *PlanService) RemoveTraveler(ctx context.Context, ownerID, planID, travelerID uuid.UUID) (domain.TravelPlan, error) {
	if travelerID == uuid.Nil {
		return domain.TravelPlan{}, fmt.Errorf("%w: traveler id is required", domain.ErrValidation)
	}

	plan, err := s.plans.GetByID(ctx, ownerID, planID)
	if err != nil {
		return domain.TravelPlan{}, fmt.Errorf("service.PlanService.RemoveTraveler: %w", err)
	}

	if len(plan.Travelers) == 1 {
		return domain.TravelPlan{}, fmt.Errorf("%w: at least one traveler must remain in the travel plan", domain.ErrValidation)
	}

	if err := s.plans.RemoveTraveler(ctx, planID, travelerID); err != nil {
		return domain.TravelPlan{}, fmt.Errorf("service.PlanService.RemoveTraveler: %w", err)
	}

	plan, err = s.plans.GetByID(ctx, ownerID, planID)
	if err != nil {
		return domain.TravelPlan{}, fmt.Errorf("service.PlanService.RemoveTraveler: %w", err)
	}
	return plan, nil
}

// validatePlan enforces rules common to Create and Update:
// name, start location, and end location must all be non-empty.
func validatePlan(p domain.TravelPlan) error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: travel plan name is required", domain.ErrValidation)
	}
	if strings.TrimSpace(p.StartLocation) == "" {
		return fmt.Errorf("%w: start location is required", domain.ErrValidation)
	}
	if strings.TrimSpace(p.EndLocation) == "" {
		return fmt.Errorf("%w: end location is required", domain.ErrValidation)
	}
	return nil
}
