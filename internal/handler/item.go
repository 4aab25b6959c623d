package handler

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/jharmon/tripfolio/internal/domain"
)

// itemRequest is the body accepted by both create and update. Pointer fields
// distinguish "omitted" from "set to empty" so updates stay partial.
// Travelers, when present, replaces the item's whole membership list.
type itemRequest struct {
	ItemType     *string         `json:"itemType"`
	Name         *string         `json:"name"`
	Description  *string         `json:"description"`
	Location     *string         `json:"location"`
	LocationData json.RawMessage `json:"locationData"`
	Date         *string         `json:"date"`
	CheckIn      *string         `json:"checkIn"`
	CheckOut     *string         `json:"checkOut"`
	Price        *string         `json:"price"`
	Notes        *string         `json:"notes"`
	Travelers    []uuid.UUID     `json:"travelers"`
}

// ListItems handles GET /api/travel-items/plan/{planId}.
// Ownership is verified through the parent plan.
func (s *Server) ListItems(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := owner(r)
	if !ok {
		writeBadRequest(w, "missing owner identity")
		return
	}

	planID, err := pathUUID(r, "planId")
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "travel plan not found"})
		return
	}

	items, err := s.items.ListByPlan(r.Context(), ownerID, planID)
	if err != nil {
		writeError(w, err, "travel plan not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"items":   items,
	})
}

// CreateItem handles POST /api/travel-items/plan/{planId}.
func (s *Server) CreateItem(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := owner(r)
	if !ok {
		writeBadRequest(w, "missing owner identity")
		return
	}

	planID, err := pathUUID(r, "planId")
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "travel plan not found"})
		return
	}

	var req itemRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	item, err := requestToItem(planID, req)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	created, err := s.items.Create(r.Context(), ownerID, item)
	if err != nil {
		writeError(w, err, "travel plan not found")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"item":    created,
	})
}

// UpdateItem handles PUT /api/travel-items/plan/{planId}/item/{itemId}.
func (s *Server) UpdateItem(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := owner(r)
	if !ok {
		writeBadRequest(w, "missing owner identity")
		return
	}

	planID, err := pathUUID(r, "planId")
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "travel plan not found"})
		return
	}
	itemID, err := pathUUID(r, "itemId")
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "travel item not found"})
		return
	}

	var req itemRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	date, err := parseOptionalTime("date", req.Date)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	checkIn, err := parseOptionalTime("checkIn", req.CheckIn)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	checkOut, err := parseOptionalTime("checkOut", req.CheckOut)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	update := domain.ItemUpdate{
		Name:         req.Name,
		Description:  req.Description,
		Location:     req.Location,
		LocationData: req.LocationData,
		Date:         date,
		CheckIn:      checkIn,
		CheckOut:     checkOut,
		Price:        req.Price,
		Notes:        req.Notes,
		Travelers:    req.Travelers,
	}

	updated, err := s.items.Update(r.Context(), ownerID, planID, itemID, update)
	if err != nil {
		writeError(w, err, "travel item not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"item":    updated,
	})
}

// DeleteItem handles DELETE /api/travel-items/plan/{planId}/item/{itemId}.
func (s *Server) DeleteItem(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := owner(r)
	if !ok {
		writeBadRequest(w, "missing owner identity")
		return
	}

	planID, err := pathUUID(r, "planId")
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "travel plan not found"})
		return
	}
	itemID, err := pathUUID(r, "itemId")
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "travel item not found"})
		return
	}

	if err := s.items.Delete(r.Context(), ownerID, planID, itemID); err != nil {
		writeError(w, err, "travel item not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "travel item deleted successfully",
	})
}

// requestToItem converts a create body into a domain.TravelItem.
// The owner id is attached by the service from the parent plan's owner.
func requestToItem(planID uuid.UUID, req itemRequest) (domain.TravelItem, error) {
	item := domain.TravelItem{
		PlanID:       planID,
		LocationData: req.LocationData,
		Travelers:    req.Travelers,
	}
	if req.ItemType != nil {
		item.Type = domain.ItemType(*req.ItemType)
	}
	if req.Name != nil {
		item.Name = *req.Name
	}
	if req.Description != nil {
		item.Description = *req.Description
	}
	if req.Location != nil {
		item.Location = *req.Location
	}
	if req.Price != nil {
		item.Price = *req.Price
	}
	if req.Notes != nil {
		item.Notes = *req.Notes
	}
	if item.Travelers == nil {
		item.Travelers = []uuid.UUID{}
	}

	date, err := parseOptionalTime("date", req.Date)
	if err != nil {
		return domain.TravelItem{}, err
	}
	checkIn, err := parseOptionalTime("checkIn", req.CheckIn)
	if err != nil {
		return domain.TravelItem{}, err
	}
	checkOut, err := parseOptionalTime("checkOut", req.CheckOut)
	if err != nil {
		return domain.TravelItem{}, err
	}
	item.Date = date
	item.CheckIn = checkIn
	item.CheckOut = checkOut
	return item, nil
}
