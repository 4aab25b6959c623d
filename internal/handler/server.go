// Package handler implements the HTTP handlers for the Tripfolio API.
// All handlers are methods on Server. Methods are split into resource-specific
// files (traveler.go, plan.go, item.go) but all share the same Server struct
// so they can access its dependencies.
package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/jharmon/tripfolio/internal/domain"
	"github.com/jharmon/tripfolio/internal/middleware"
	"github.com/jharmon/tripfolio/spec"
)

// TravelerServicer defines the business operations the traveler handlers
// depend on. Defining the interface here (in the consumer package) follows
// the Go convention: "accept interfaces, return concrete types". It lets
// handler tests inject a mock without touching the database or service layer.
type TravelerServicer interface {
	List(ctx context.Context, ownerID uuid.UUID) ([]domain.Traveler, error)
	Create(ctx context.Context, t domain.Traveler) (domain.Traveler, error)
	Update(ctx context.Context, ownerID, id uuid.UUID, u domain.TravelerUpdate) (domain.Traveler, error)
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
}

// PlanServicer defines the business operations the plan handlers depend on.
type PlanServicer interface {
	List(ctx context.Context, ownerID uuid.UUID) ([]domain.PlanSummary, error)
	Get(ctx context.Context, ownerID, id uuid.UUID) (domain.PlanDetail, error)
	Create(ctx context.Context, p domain.TravelPlan) (domain.TravelPlan, error)
	Update(ctx context.Context, ownerID, id uuid.UUID, u domain.PlanUpdate) (domain.TravelPlan, error)
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
	AddTraveler(ctx context.Context, ownerID, planID, travelerID uuid.UUID) (domain.TravelPlan, error)
	RemoveTraveler(ctx context.Context, ownerID, planID, travelerID uuid.UUID) (domain.TravelPlan, error)
}

// ItemServicer defines the business operations the item handlers depend on.
type ItemServicer interface {
	ListByPlan(ctx context.Context, ownerID, planID uuid.UUID) ([]domain.TravelItem, error)
	Create(ctx context.Context, ownerID uuid.UUID, item domain.TravelItem) (domain.TravelItem, error)
	Update(ctx context.Context, ownerID, planID, itemID uuid.UUID, u domain.ItemUpdate) (domain.TravelItem, error)
	Delete(ctx context.Context, ownerID, planID, itemID uuid.UUID) error
}

// Server holds the handlers' dependencies. Methods are in resource-specific
// files but all operate on this struct.
type Server struct {
	travelers TravelerServicer
	plans     PlanServicer
	items     ItemServicer
}

// NewServer constructs the Server with all its dependencies.
func NewServer(travelers TravelerServicer, plans PlanServicer, items ItemServicer) *Server {
	return &Server{travelers: travelers, plans: plans, items: items}
}

// Routes builds the API router. The auth middleware guards everything under
// /api except the health check; the OpenAPI document is public.
func (s *Server) Routes(auth func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/api/health", s.GetHealth)
	r.Get("/openapi.yaml", s.GetOpenAPI)

	r.Group(func(r chi.Router) {
		r.Use(auth)

		r.Route("/api/travelers", func(r chi.Router) {
			r.Get("/", s.ListTravelers)
			r.Post("/", s.CreateTraveler)
			r.Put("/{id}", s.UpdateTraveler)
			r.Delete("/{id}", s.DeleteTraveler)
		})

		r.Route("/api/travel-plans", func(r chi.Router) {
			r.Get("/", s.ListPlans)
			r.Post("/", s.CreatePlan)
			r.Get("/{id}", s.GetPlan)
			r.Put("/{id}", s.UpdatePlan)
			r.Delete("/{id}", s.DeletePlan)
			r.Post("/{id}/travelers", s.AddPlanTraveler)
			r.Delete("/{id}/travelers", s.RemovePlanTraveler)
		})

		r.Route("/api/travel-items/plan/{planId}", func(r chi.Router) {
			r.Get("/", s.ListItems)
			r.Post("/", s.CreateItem)
			r.Put("/item/{itemId}", s.UpdateItem)
			r.Delete("/item/{itemId}", s.DeleteItem)
		})
	})

	return r
}

// GetHealth handles GET /api/health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"status":  "ok",
	})
}

// GetOpenAPI handles GET /openapi.yaml, serving the embedded API contract.
func (s *Server) GetOpenAPI(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	w.WriteHeader(http.StatusOK)
	w.Write(spec.OpenAPI)
}

// owner returns the authenticated owner id placed in the context by the auth
// middleware. The boolean is false only when a route was wired without auth.
func owner(r *http.Request) (uuid.UUID, bool) {
	return middleware.OwnerFromContext(r.Context())
}

// pathUUID parses the named chi URL parameter as a UUID.
func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, name))
}
