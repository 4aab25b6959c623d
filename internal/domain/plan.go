package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// TravelPlan is the top-level trip record owned by a user.
// Travelers holds traveler ids with unique membership; ids may be stale
// (see Traveler). StartLocationData / EndLocationData are opaque structured
// geolocation blobs supplied by the places provider — the server stores and
// returns them without inspecting their shape.
type TravelPlan struct {
	ID                uuid.UUID       `json:"id"`
	OwnerID           uuid.UUID       `json:"-"`
	Name              string          `json:"name"`
	Description       string          `json:"description,omitempty"`
	StartLocation     string          `json:"startLocation"`
	StartLocationData json.RawMessage `json:"startLocationData,omitempty"`
	EndLocation       string          `json:"endLocation"`
	EndLocationData   json.RawMessage `json:"endLocationData,omitempty"`
	StartDate         *time.Time      `json:"startDate,omitempty"`
	EndDate           *time.Time      `json:"endDate,omitempty"`
	Travelers         []uuid.UUID     `json:"travelers"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}

// HasTraveler reports whether id is already a member of the plan.
func (p TravelPlan) HasTraveler(id uuid.UUID) bool {
	for _, t := range p.Travelers {
		if t == id {
			return true
		}
	}
	return false
}

// PlanUpdate carries a partial update to a plan's own fields.
// Traveler membership is changed through AddTraveler/RemoveTraveler, never here.
type PlanUpdate struct {
	Name              *string         `json:"name,omitempty"`
	Description       *string         `json:"description,omitempty"`
	StartLocation     *string         `json:"startLocation,omitempty"`
	StartLocationData json.RawMessage `json:"startLocationData,omitempty"`
	EndLocation       *string         `json:"endLocation,omitempty"`
	EndLocationData   json.RawMessage `json:"endLocationData,omitempty"`
	StartDate         *time.Time      `json:"startDate,omitempty"`
	EndDate           *time.Time      `json:"endDate,omitempty"`
}

// Apply overlays the update onto p and returns the result.
func (u PlanUpdate) Apply(p TravelPlan) TravelPlan {
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.Description != nil {
		p.Description = *u.Description
	}
	if u.StartLocation != nil {
		p.StartLocation = *u.StartLocation
	}
	if u.StartLocationData != nil {
		p.StartLocationData = u.StartLocationData
	}
	if u.EndLocation != nil {
		p.EndLocation = *u.EndLocation
	}
	if u.EndLocationData != nil {
		p.EndLocationData = u.EndLocationData
	}
	if u.StartDate != nil {
		p.StartDate = u.StartDate
	}
	if u.EndDate != nil {
		p.EndDate = u.EndDate
	}
	return p
}

// PlanSummary is a plan annotated with per-type item counts, as returned by
// the plan list endpoint. Every ItemType has a key, zero or not.
type PlanSummary struct {
	TravelPlan
	ItemCounts map[ItemType]int `json:"itemCounts"`
}

// PlanDetail is a plan with its items grouped by type, as returned by the
// plan get endpoint. Every ItemType has a key; groups preserve creation order.
type PlanDetail struct {
	TravelPlan
	Items map[ItemType][]TravelItem `json:"items"`
}
