package handler

import (
	"net/http"

	"github.com/jharmon/tripfolio/internal/domain"
)

// travelerRequest is the body accepted by both create and update. Pointer
// fields distinguish "omitted" from "set to empty" so updates stay partial.
type travelerRequest struct {
	Name           *string `json:"name"`
	Email          *string `json:"email"`
	DateOfBirth    *string `json:"dateOfBirth"`
	PassportNumber *string `json:"passportNumber"`
	ProfilePicture *string `json:"profilePicture"`
}

// ListTravelers handles GET /api/travelers.
func (s *Server) ListTravelers(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := owner(r)
	if !ok {
		writeBadRequest(w, "missing owner identity")
		return
	}

	travelers, err := s.travelers.List(r.Context(), ownerID)
	if err != nil {
		writeError(w, err, "travelers not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"travelers": travelers,
	})
}

// CreateTraveler handles POST /api/travelers.
func (s *Server) CreateTraveler(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := owner(r)
	if !ok {
		writeBadRequest(w, "missing owner identity")
		return
	}

	var req travelerRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	traveler := domain.Traveler{OwnerID: ownerID}
	if req.Name != nil {
		traveler.Name = *req.Name
	}
	if req.Email != nil {
		traveler.Email = *req.Email
	}
	if req.PassportNumber != nil {
		traveler.PassportNumber = *req.PassportNumber
	}
	if req.ProfilePicture != nil {
		traveler.ProfilePicture = *req.ProfilePicture
	}
	dob, err := parseOptionalTime("dateOfBirth", req.DateOfBirth)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	traveler.DateOfBirth = dob

	created, err := s.travelers.Create(r.Context(), traveler)
	if err != nil {
		writeError(w, err, "traveler not found")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"success":  true,
		"traveler": created,
	})
}

// UpdateTraveler handles PUT /api/travelers/{id}.
func (s *Server) UpdateTraveler(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := owner(r)
	if !ok {
		writeBadRequest(w, "missing owner identity")
		return
	}

	id, err := pathUUID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "traveler not found"})
		return
	}

	var req travelerRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	dob, err := parseOptionalTime("dateOfBirth", req.DateOfBirth)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	update := domain.TravelerUpdate{
		Name:           req.Name,
		Email:          req.Email,
		DateOfBirth:    dob,
		PassportNumber: req.PassportNumber,
		ProfilePicture: req.ProfilePicture,
	}

	updated, err := s.travelers.Update(r.Context(), ownerID, id, update)
	if err != nil {
		writeError(w, err, "traveler not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"traveler": updated,
	})
}

// DeleteTraveler handles DELETE /api/travelers/{id}.
// Plans and items referencing the traveler are left untouched; their stale
// ids are filtered out on read.
func (s *Server) DeleteTraveler(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := owner(r)
	if !ok {
		writeBadRequest(w, "missing owner identity")
		return
	}

	id, err := pathUUID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "traveler not found"})
		return
	}

	if err := s.travelers.Delete(r.Context(), ownerID, id); err != nil {
		writeError(w, err, "traveler not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "traveler deleted successfully",
	})
}
