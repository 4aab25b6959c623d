package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ItemType is the fixed enumeration of itinerary item kinds.
// The values are the plural wire strings used by the API and the database.
type ItemType string

const (
	TypeActivities     ItemType = "activities"
	TypeHotels         ItemType = "hotels"
	TypeRestaurants    ItemType = "restaurants"
	TypeAttractions    ItemType = "attractions"
	TypeTransportation ItemType = "transportation"
)

// ItemTypes lists every valid ItemType in display order.
var ItemTypes = []ItemType{
	TypeActivities,
	TypeHotels,
	TypeRestaurants,
	TypeAttractions,
	TypeTransportation,
}

// Valid reports whether t is one of the fixed enumeration values.
func (t ItemType) Valid() bool {
	switch t {
	case TypeActivities, TypeHotels, TypeRestaurants, TypeAttractions, TypeTransportation:
		return true
	}
	return false
}

// TravelItem is a single itinerary entry belonging to a plan. OwnerID
// duplicates the parent plan's owner so item queries can be owner-scoped
// without a join.
//
// Date is used by non-hotel types; CheckIn/CheckOut by hotels. The two
// patterns are mutually exclusive by convention, not validated by the schema.
// Price is free text ("~40", "120/night"), never parsed.
type TravelItem struct {
	ID           uuid.UUID       `json:"id"`
	PlanID       uuid.UUID       `json:"travelPlanId"`
	OwnerID      uuid.UUID       `json:"-"`
	Type         ItemType        `json:"itemType"`
	Name         string          `json:"name"`
	Description  string          `json:"description,omitempty"`
	Location     string          `json:"location,omitempty"`
	LocationData json.RawMessage `json:"locationData,omitempty"`
	Date         *time.Time      `json:"date,omitempty"`
	CheckIn      *time.Time      `json:"checkIn,omitempty"`
	CheckOut     *time.Time      `json:"checkOut,omitempty"`
	Price        string          `json:"price,omitempty"`
	Notes        string          `json:"notes,omitempty"`
	Travelers    []uuid.UUID     `json:"travelers"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// EffectiveDate returns the timeline sort key for the item: check-in when
// present (hotels), else the single date, else the creation timestamp for
// items with no user-supplied date.
func (i TravelItem) EffectiveDate() time.Time {
	if i.CheckIn != nil {
		return *i.CheckIn
	}
	if i.Date != nil {
		return *i.Date
	}
	return i.CreatedAt
}

// ItemUpdate carries a partial update. Nil fields are left unchanged.
// Travelers, when non-nil, replaces the whole membership list.
type ItemUpdate struct {
	Name         *string         `json:"name,omitempty"`
	Description  *string         `json:"description,omitempty"`
	Location     *string         `json:"location,omitempty"`
	LocationData json.RawMessage `json:"locationData,omitempty"`
	Date         *time.Time      `json:"date,omitempty"`
	CheckIn      *time.Time      `json:"checkIn,omitempty"`
	CheckOut     *time.Time      `json:"checkOut,omitempty"`
	Price        *string         `json:"price,omitempty"`
	Notes        *string         `json:"notes,omitempty"`
	Travelers    []uuid.UUID     `json:"travelers,omitempty"`
}

// Apply overlays the update onto i and returns the result.
func (u ItemUpdate) Apply(i TravelItem) TravelItem {
	if u.Name != nil {
		i.Name = *u.Name
	}
	if u.Description != nil {
		i.Description = *u.Description
	}
	if u.Location != nil {
		i.Location = *u.Location
	}
	if u.LocationData != nil {
		i.LocationData = u.LocationData
	}
	if u.Date != nil {
		i.Date = u.Date
	}
	if u.CheckIn != nil {
		i.CheckIn = u.CheckIn
	}
	if u.CheckOut != nil {
		i.CheckOut = u.CheckOut
	}
	if u.Price != nil {
		i.Price = *u.Price
	}
	if u.Notes != nil {
		i.Notes = *u.Notes
	}
	if u.Travelers != nil {
		i.Travelers = u.Travelers
	}
	return i
}

// GroupItemsByType buckets items into a map keyed by every ItemType.
// Absent types map to empty (non-nil) slices so consumers can range safely.
// Input order is preserved within each bucket.
func GroupItemsByType(items []TravelItem) map[ItemType][]TravelItem {
	grouped := make(map[ItemType][]TravelItem, len(ItemTypes))
	for _, t := range ItemTypes {
		grouped[t] = []TravelItem{}
	}
	for _, item := range items {
		grouped[item.Type] = append(grouped[item.Type], item)
	}
	return grouped
}
