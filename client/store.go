package client

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/jharmon/tripfolio/internal/domain"
)

// Store mirrors the server's plan and traveler collections for one user.
// Every mutation calls the API and then re-fetches both collections
// wholesale; the cache is never patched in place, so it cannot drift from
// the server. Construct with NewStore and share one instance per user
// session — it is safe for concurrent use.
type Store struct {
	api *Client

	mu        sync.RWMutex
	plans     []domain.PlanSummary
	travelers []domain.Traveler
}

// NewStore returns a Store backed by the given API client. Call Refresh to
// populate it before reading.
func NewStore(api *Client) *Store {
	return &Store{api: api}
}

// Refresh replaces both cached collections with the server's current state.
// On any error the previous cache is kept.
func (s *Store) Refresh(ctx context.Context) error {
	plans, err := s.api.ListPlans(ctx)
	if err != nil {
		return err
	}
	travelers, err := s.api.ListTravelers(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.plans = plans
	s.travelers = travelers
	s.mu.Unlock()
	return nil
}

// Plans returns the cached plan summaries, newest first.
func (s *Store) Plans() []domain.PlanSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.PlanSummary, len(s.plans))
	copy(out, s.plans)
	return out
}

// Travelers returns the cached travelers, newest first.
func (s *Store) Travelers() []domain.Traveler {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Traveler, len(s.travelers))
	copy(out, s.travelers)
	return out
}

// Traveler looks up a cached traveler by id.
func (s *Store) Traveler(id uuid.UUID) (domain.Traveler, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.travelers {
		if t.ID == id {
			return t, true
		}
	}
	return domain.Traveler{}, false
}

// ResolveTravelers maps traveler ids to cached records. Ids with no cached
// traveler — typically references left behind by a deletion — are omitted
// rather than surfaced as errors.
func (s *Store) ResolveTravelers(ids []uuid.UUID) []domain.Traveler {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byID := make(map[uuid.UUID]domain.Traveler, len(s.travelers))
	for _, t := range s.travelers {
		byID[t.ID] = t
	}

	resolved := make([]domain.Traveler, 0, len(ids))
	for _, id := range ids {
		if t, ok := byID[id]; ok {
			resolved = append(resolved, t)
		}
	}
	return resolved
}

// CreateTraveler creates a traveler and refreshes the cache.
func (s *Store) CreateTraveler(ctx context.Context, t domain.Traveler) (domain.Traveler, error) {
	created, err := s.api.CreateTraveler(ctx, t)
	if err != nil {
		return domain.Traveler{}, err
	}
	return created, s.Refresh(ctx)
}

// UpdateTraveler updates a traveler and refreshes the cache.
func (s *Store) UpdateTraveler(ctx context.Context, id uuid.UUID, u domain.TravelerUpdate) (domain.Traveler, error) {
	updated, err := s.api.UpdateTraveler(ctx, id, u)
	if err != nil {
		return domain.Traveler{}, err
	}
	return updated, s.Refresh(ctx)
}

// DeleteTraveler deletes a traveler and refreshes the cache. Plans and items
// that referenced the traveler keep a dangling id; ResolveTravelers hides it.
func (s *Store) DeleteTraveler(ctx context.Context, id uuid.UUID) error {
	if err := s.api.DeleteTraveler(ctx, id); err != nil {
		return err
	}
	return s.Refresh(ctx)
}

// CreatePlan creates a plan and refreshes the cache.
func (s *Store) CreatePlan(ctx context.Context, p domain.TravelPlan) (domain.TravelPlan, error) {
	created, err := s.api.CreatePlan(ctx, p)
	if err != nil {
		return domain.TravelPlan{}, err
	}
	return created, s.Refresh(ctx)
}

// UpdatePlan updates a plan and refreshes the cache.
func (s *Store) UpdatePlan(ctx context.Context, id uuid.UUID, u domain.PlanUpdate) (domain.TravelPlan, error) {
	updated, err := s.api.UpdatePlan(ctx, id, u)
	if err != nil {
		return domain.TravelPlan{}, err
	}
	return updated, s.Refresh(ctx)
}

// DeletePlan deletes a plan (and, server-side, all of its items) and
// refreshes the cache.
func (s *Store) DeletePlan(ctx context.Context, id uuid.UUID) error {
	if err := s.api.DeletePlan(ctx, id); err != nil {
		return err
	}
	return s.Refresh(ctx)
}

// AddPlanTraveler adds a traveler to a plan and refreshes the cache.
func (s *Store) AddPlanTraveler(ctx context.Context, planID, travelerID uuid.UUID) (domain.TravelPlan, error) {
	plan, err := s.api.AddPlanTraveler(ctx, planID, travelerID)
	if err != nil {
		return domain.TravelPlan{}, err
	}
	return plan, s.Refresh(ctx)
}

// RemovePlanTraveler removes a traveler from a plan and refreshes the cache.
func (s *Store) RemovePlanTraveler(ctx context.Context, planID, travelerID uuid.UUID) (domain.TravelPlan, error) {
	plan, err := s.api.RemovePlanTraveler(ctx, planID, travelerID)
	if err != nil {
		return domain.TravelPlan{}, err
	}
	return plan, s.Refresh(ctx)
}

// CreateItem creates an item and refreshes the cache (item counts on the
// parent plan's summary change).
func (s *Store) CreateItem(ctx context.Context, planID uuid.UUID, item domain.TravelItem) (domain.TravelItem, error) {
	created, err := s.api.CreateItem(ctx, planID, item)
	if err != nil {
		return domain.TravelItem{}, err
	}
	return created, s.Refresh(ctx)
}

// UpdateItem updates an item and refreshes the cache.
func (s *Store) UpdateItem(ctx context.Context, planID, itemID uuid.UUID, u domain.ItemUpdate) (domain.TravelItem, error) {
	updated, err := s.api.UpdateItem(ctx, planID, itemID, u)
	if err != nil {
		return domain.TravelItem{}, err
	}
	return updated, s.Refresh(ctx)
}

// DeleteItem deletes an item and refreshes the cache.
func (s *Store) DeleteItem(ctx context.Context, planID, itemID uuid.UUID) error {
	if err := s.api.DeleteItem(ctx, planID, itemID); err != nil {
		return err
	}
	return s.Refresh(ctx)
}
