// Package service contains the business logic for the Tripfolio API.
// Services validate inputs, enforce invariants, and orchestrate repo calls.
// No SQL lives here — services depend on repo interfaces, not implementations.
package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/jharmon/tripfolio/internal/domain"
	"github.com/jharmon/tripfolio/internal/repo"
)

// emailPattern is the address check applied to non-empty traveler emails:
// one "@", at least one "." in the domain part, no whitespace.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// TravelerService implements business logic for Traveler operations.
type TravelerService struct {
	repo repo.TravelerRepo
}

// NewTravelerService constructs a TravelerService backed by the provided repo.
func NewTravelerService(r repo.TravelerRepo) *TravelerService {
	return &TravelerService{repo: r}
}

// List returns the owner's travelers, newest first.
// Always returns a non-nil slice so callers can safely range over it.
func (s *TravelerService) List(ctx context.Context, ownerID uuid.UUID) ([]domain.Traveler, error) {
	travelers, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("service.TravelerService.List: %w", err)
	}
	if travelers == nil {
		return []domain.Traveler{}, nil
	}
	return travelers, nil
}

// Create validates and persists a new traveler for the owner.
// Returns domain.ErrValidation when the name is missing or the email is malformed.
func (s *TravelerService) Create(ctx context.Context, t domain.Traveler) (domain.Traveler, error) {
	if err := validateTraveler(t); err != nil {
		return domain.Traveler{}, err
	}
	result, err := s.repo.Create(ctx, t)
	if err != nil {
		return domain.Traveler{}, fmt.Errorf("service.TravelerService.Create: %w", err)
	}
	return result, nil
}

// Update applies a partial update to the traveler identified by id+owner,
// re-validates the merged record, and refreshes its update timestamp.
// Returns domain.ErrNotFound on an id+owner miss.
func (s *TravelerService) Update(ctx context.Context, ownerID, id uuid.UUID, u domain.TravelerUpdate) (domain.Traveler, error) {
	existing, err := s.repo.GetByID(ctx, ownerID, id)
	if err != nil {
		return domain.Traveler{}, fmt.Errorf("service.TravelerService.Update: %w", err)
	}

	merged := u.Apply(existing)
	if err := validateTraveler(merged); err != nil {
		return domain.Traveler{}, err
	}

	result, err := s.repo.Update(ctx, merged)
	if err != nil {
		return domain.Traveler{}, fmt.Errorf("service.TravelerService.Update: %w", err)
	}
	return result, nil
}

// Delete removes the traveler identified by id+owner. Plans and items that
// reference the traveler keep their now-stale ids; readers omit them.
func (s *TravelerService) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, ownerID, id); err != nil {
		return fmt.Errorf("service.TravelerService.Delete: %w", err)
	}
	return nil
}

// validateTraveler enforces rules common to Create and Update:
//   - Name must be non-empty (whitespace-only names are rejected).
//   - Email, when non-empty, must match emailPattern. Empty is fine — the
//     field is optional. The raw value is checked, so a whitespace-only
//     email fails the pattern rather than slipping through as "blank".
func validateTraveler(t domain.Traveler) error {
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("%w: traveler name is required", domain.ErrValidation)
	}
	if t.Email != "" && !emailPattern.MatchString(t.Email) {
		return fmt.Errorf("%w: please provide a valid email address", domain.ErrValidation)
	}
	return nil
}
