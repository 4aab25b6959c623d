// Package domain contains the core data types for the Tripfolio API.
// This package has zero external dependencies beyond uuid and is imported by
// every other internal package (repo, service, handler) and the client.
//
// All types carry camelCase JSON tags because the wire format is consumed by
// the browser client directly.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Traveler is a person record owned by a user, reusable across plans and
// items. Deleting a traveler does not cascade: plans and items keep the id,
// and readers must omit ids that no longer resolve.
type Traveler struct {
	ID             uuid.UUID  `json:"id"`
	OwnerID        uuid.UUID  `json:"-"`
	Name           string     `json:"name"`
	Email          string     `json:"email,omitempty"`
	DateOfBirth    *time.Time `json:"dateOfBirth,omitempty"`
	PassportNumber string     `json:"passportNumber,omitempty"`
	ProfilePicture string     `json:"profilePicture,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// TravelerUpdate carries a partial update. Nil fields are left unchanged;
// non-nil fields replace the stored value (including replacing with "").
type TravelerUpdate struct {
	Name           *string    `json:"name,omitempty"`
	Email          *string    `json:"email,omitempty"`
	DateOfBirth    *time.Time `json:"dateOfBirth,omitempty"`
	PassportNumber *string    `json:"passportNumber,omitempty"`
	ProfilePicture *string    `json:"profilePicture,omitempty"`
}

// Apply overlays the update onto t and returns the result.
func (u TravelerUpdate) Apply(t Traveler) Traveler {
	if u.Name != nil {
		t.Name = *u.Name
	}
	if u.Email != nil {
		t.Email = *u.Email
	}
	if u.DateOfBirth != nil {
		t.DateOfBirth = u.DateOfBirth
	}
	if u.PassportNumber != nil {
		t.PassportNumber = *u.PassportNumber
	}
	if u.ProfilePicture != nil {
		t.ProfilePicture = *u.ProfilePicture
	}
	return t
}
