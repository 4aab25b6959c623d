package handler

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/jharmon/tripfolio/internal/domain"
)

// planRequest is the body accepted by both create and update. Pointer fields
// distinguish "omitted" from "set to empty" so updates stay partial.
// Location data blobs are stored and returned opaquely.
type planRequest struct {
	Name              *string         `json:"name"`
	Description       *string         `json:"description"`
	StartLocation     *string         `json:"startLocation"`
	StartLocationData json.RawMessage `json:"startLocationData"`
	EndLocation       *string         `json:"endLocation"`
	EndLocationData   json.RawMessage `json:"endLocationData"`
	StartDate         *string         `json:"startDate"`
	EndDate           *string         `json:"endDate"`
	Travelers         []uuid.UUID     `json:"travelers"`
}

// travelerMembershipRequest is the body for add/remove traveler operations.
type travelerMembershipRequest struct {
	TravelerID uuid.UUID `json:"travelerId"`
}

// ListPlans handles GET /api/travel-plans.
// Each plan is annotated with per-type item counts.
func (s *Server) ListPlans(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := owner(r)
	if !ok {
		writeBadRequest(w, "missing owner identity")
		return
	}

	plans, err := s.plans.List(r.Context(), ownerID)
	if err != nil {
		writeError(w, err, "travel plans not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"travelPlans": plans,
	})
}

// GetPlan handles GET /api/travel-plans/{id}.
// The response embeds the plan's items grouped by type.
func (s *Server) GetPlan(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := owner(r)
	if !ok {
		writeBadRequest(w, "missing owner identity")
		return
	}

	id, err := pathUUID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "travel plan not found"})
		return
	}

	detail, err := s.plans.Get(r.Context(), ownerID, id)
	if err != nil {
		writeError(w, err, "travel plan not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"travelPlan": detail,
	})
}

// CreatePlan handles POST /api/travel-plans.
func (s *Server) CreatePlan(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := owner(r)
	if !ok {
		writeBadRequest(w, "missing owner identity")
		return
	}

	var req planRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	plan, err := requestToPlan(ownerID, req)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	created, err := s.plans.Create(r.Context(), plan)
	if err != nil {
		writeError(w, err, "travel plan not found")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"success":    true,
		"travelPlan": created,
	})
}

// UpdatePlan handles PUT /api/travel-plans/{id}.
// Traveler membership is not updatable here — use the traveler sub-resource.
func (s *Server) UpdatePlan(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := owner(r)
	if !ok {
		writeBadRequest(w, "missing owner identity")
		return
	}

	id, err := pathUUID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "travel plan not found"})
		return
	}

	var req planRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	startDate, err := parseOptionalTime("startDate", req.StartDate)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	endDate, err := parseOptionalTime("endDate", req.EndDate)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	update := domain.PlanUpdate{
		Name:              req.Name,
		Description:       req.Description,
		StartLocation:     req.StartLocation,
		StartLocationData: req.StartLocationData,
		EndLocation:       req.EndLocation,
		EndLocationData:   req.EndLocationData,
		StartDate:         startDate,
		EndDate:           endDate,
	}

	updated, err := s.plans.Update(r.Context(), ownerID, id, update)
	if err != nil {
		writeError(w, err, "travel plan not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"travelPlan": updated,
	})
}

// DeletePlan handles DELETE /api/travel-plans/{id}.
// Deletion cascades to all of the plan's items.
func (s *Server) DeletePlan(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := owner(r)
	if !ok {
		writeBadRequest(w, "missing owner identity")
		return
	}

	id, err := pathUUID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "travel plan not found"})
		return
	}

	if err := s.plans.Delete(r.Context(), ownerID, id); err != nil {
		writeError(w, err, "travel plan not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "travel plan deleted successfully",
	})
}

// AddPlanTraveler handles POST /api/travel-plans/{id}/travelers.
// Adding an already-present traveler succeeds without changing the plan.
func (s *Server) AddPlanTraveler(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := owner(r)
	if !ok {
		writeBadRequest(w, "missing owner identity")
		return
	}

	id, err := pathUUID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "travel plan not found"})
		return
	}

	var req travelerMembershipRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	plan, err := s.plans.AddTraveler(r.Context(), ownerID, id, req.TravelerID)
	if err != nil {
		writeError(w, err, "travel plan not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"travelPlan": plan,
	})
}

// RemovePlanTraveler handles DELETE /api/travel-plans/{id}/travelers.
// Removing the last traveler is rejected with a validation error.
func (s *Server) RemovePlanTraveler(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := owner(r)
	if !ok {
		writeBadRequest(w, "missing owner identity")
		return
	}

	id, err := pathUUID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "travel plan not found"})
		return
	}

	var req travelerMembershipRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	plan, err := s.plans.RemoveTraveler(r.Context(), ownerID, id, req.TravelerID)
	if err != nil {
		writeError(w, err, "travel plan not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"travelPlan": plan,
	})
}

// requestToPlan converts a create body into a domain.TravelPlan.
func requestToPlan(ownerID uuid.UUID, req planRequest) (domain.TravelPlan, error) {
	p := domain.TravelPlan{
		OwnerID:           ownerID,
		StartLocationData: req.StartLocationData,
		EndLocationData:   req.EndLocationData,
		Travelers:         req.Travelers,
	}
	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.StartLocation != nil {
		p.StartLocation = *req.StartLocation
	}
	if req.EndLocation != nil {
		p.EndLocation = *req.EndLocation
	}
	if p.Travelers == nil {
		p.Travelers = []uuid.UUID{}
	}

	startDate, err := parseOptionalTime("startDate", req.StartDate)
	if err != nil {
		return domain.TravelPlan{}, err
	}
	endDate, err := parseOptionalTime("endDate", req.EndDate)
	if err != nil {
		return domain.TravelPlan{}, err
	}
	p.StartDate = startDate
	p.EndDate = endDate
	return p, nil
}
