// Package client provides a Go client for the Tripfolio API together with an
// in-memory store that mirrors the server's data and computes the timeline
// read-model for display.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/jharmon/tripfolio/internal/domain"
)

// APIError is a non-2xx response from the server, carrying the status code
// and the message from the error envelope.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (status %d): %s", e.Status, e.Message)
}

// Client calls the Tripfolio REST API. The zero value is not usable; construct
// with New. All methods send the configured bearer token and decode the
// server's response envelopes.
type Client struct {
	baseURL string
	token   string
	httpc   *http.Client
}

// New returns a Client for the API at baseURL (scheme + host, no trailing
// slash) authenticating with the given bearer token. Pass a nil httpc to use
// http.DefaultClient.
func New(baseURL, token string, httpc *http.Client) *Client {
	if httpc == nil {
		httpc = http.DefaultClient
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpc:   httpc,
	}
}

// envelope mirrors the server's response wrapper. Exactly one of the resource
// fields is populated per endpoint.
type envelope struct {
	Success   bool                 `json:"success"`
	Error     string               `json:"error"`
	Message   string               `json:"message"`
	Traveler  *domain.Traveler     `json:"traveler"`
	Travelers []domain.Traveler    `json:"travelers"`
	Plan      *domain.TravelPlan   `json:"travelPlan"`
	Plans     []domain.PlanSummary `json:"travelPlans"`
	Item      *domain.TravelItem   `json:"item"`
	Items     []domain.TravelItem  `json:"items"`
}

// planDetailEnvelope is separate because GET /api/travel-plans/{id} returns
// the plan with its items grouped by type, a different shape from the list.
type planDetailEnvelope struct {
	Success bool              `json:"success"`
	Error   string            `json:"error"`
	Plan    domain.PlanDetail `json:"travelPlan"`
}

// do issues the request and decodes the body into out. Non-2xx responses are
// returned as *APIError with the envelope's error message.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("client: encode request: %w", err)
		}
		reqBody = bytes.NewReader(raw)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("client: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("client: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var env envelope
		msg := http.StatusText(resp.StatusCode)
		if err := json.NewDecoder(resp.Body).Decode(&env); err == nil && env.Error != "" {
			msg = env.Error
		}
		return &APIError{Status: resp.StatusCode, Message: msg}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("client: decode response: %w", err)
	}
	return nil
}

// ListTravelers returns the owner's travelers, newest first.
func (c *Client) ListTravelers(ctx context.Context) ([]domain.Traveler, error) {
	var env envelope
	if err := c.do(ctx, http.MethodGet, "/api/travelers", nil, &env); err != nil {
		return nil, err
	}
	return env.Travelers, nil
}

// CreateTraveler creates a traveler and returns the stored record.
func (c *Client) CreateTraveler(ctx context.Context, t domain.Traveler) (domain.Traveler, error) {
	var env envelope
	if err := c.do(ctx, http.MethodPost, "/api/travelers", t, &env); err != nil {
		return domain.Traveler{}, err
	}
	return deref(env.Traveler), nil
}

// UpdateTraveler applies a partial update and returns the refreshed record.
func (c *Client) UpdateTraveler(ctx context.Context, id uuid.UUID, u domain.TravelerUpdate) (domain.Traveler, error) {
	var env envelope
	if err := c.do(ctx, http.MethodPut, "/api/travelers/"+id.String(), u, &env); err != nil {
		return domain.Traveler{}, err
	}
	return deref(env.Traveler), nil
}

// DeleteTraveler deletes a traveler. Plans and items keep any stale reference.
func (c *Client) DeleteTraveler(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/api/travelers/"+id.String(), nil, nil)
}

// ListPlans returns the owner's plans with per-type item counts, newest first.
func (c *Client) ListPlans(ctx context.Context) ([]domain.PlanSummary, error) {
	var env envelope
	if err := c.do(ctx, http.MethodGet, "/api/travel-plans", nil, &env); err != nil {
		return nil, err
	}
	return env.Plans, nil
}

// GetPlan returns one plan with its items grouped by type.
func (c *Client) GetPlan(ctx context.Context, id uuid.UUID) (domain.PlanDetail, error) {
	var env planDetailEnvelope
	if err := c.do(ctx, http.MethodGet, "/api/travel-plans/"+id.String(), nil, &env); err != nil {
		return domain.PlanDetail{}, err
	}
	return env.Plan, nil
}

// CreatePlan creates a plan and returns the stored record.
func (c *Client) CreatePlan(ctx context.Context, p domain.TravelPlan) (domain.TravelPlan, error) {
	var env envelope
	if err := c.do(ctx, http.MethodPost, "/api/travel-plans", p, &env); err != nil {
		return domain.TravelPlan{}, err
	}
	return deref(env.Plan), nil
}

// UpdatePlan applies a partial update and returns the refreshed record.
// Traveler membership is changed through AddPlanTraveler / RemovePlanTraveler.
func (c *Client) UpdatePlan(ctx context.Context, id uuid.UUID, u domain.PlanUpdate) (domain.TravelPlan, error) {
	var env envelope
	if err := c.do(ctx, http.MethodPut, "/api/travel-plans/"+id.String(), u, &env); err != nil {
		return domain.TravelPlan{}, err
	}
	return deref(env.Plan), nil
}

// DeletePlan deletes a plan and all of its items.
func (c *Client) DeletePlan(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/api/travel-plans/"+id.String(), nil, nil)
}

// membershipBody is the payload for traveler add/remove operations.
type membershipBody struct {
	TravelerID uuid.UUID `json:"travelerId"`
}

// AddPlanTraveler adds a traveler to a plan. Adding an already-present
// traveler succeeds and leaves the plan unchanged.
func (c *Client) AddPlanTraveler(ctx context.Context, planID, travelerID uuid.UUID) (domain.TravelPlan, error) {
	var env envelope
	path := "/api/travel-plans/" + planID.String() + "/travelers"
	if err := c.do(ctx, http.MethodPost, path, membershipBody{TravelerID: travelerID}, &env); err != nil {
		return domain.TravelPlan{}, err
	}
	return deref(env.Plan), nil
}

// RemovePlanTraveler removes a traveler from a plan. The server rejects
// removal of the last remaining traveler.
func (c *Client) RemovePlanTraveler(ctx context.Context, planID, travelerID uuid.UUID) (domain.TravelPlan, error) {
	var env envelope
	path := "/api/travel-plans/" + planID.String() + "/travelers"
	if err := c.do(ctx, http.MethodDelete, path, membershipBody{TravelerID: travelerID}, &env); err != nil {
		return domain.TravelPlan{}, err
	}
	return deref(env.Plan), nil
}

// ListItems returns a plan's items in creation order.
func (c *Client) ListItems(ctx context.Context, planID uuid.UUID) ([]domain.TravelItem, error) {
	var env envelope
	if err := c.do(ctx, http.MethodGet, "/api/travel-items/plan/"+planID.String(), nil, &env); err != nil {
		return nil, err
	}
	return env.Items, nil
}

// CreateItem creates an item under the plan and returns the stored record.
func (c *Client) CreateItem(ctx context.Context, planID uuid.UUID, item domain.TravelItem) (domain.TravelItem, error) {
	var env envelope
	if err := c.do(ctx, http.MethodPost, "/api/travel-items/plan/"+planID.String(), item, &env); err != nil {
		return domain.TravelItem{}, err
	}
	return deref(env.Item), nil
}

// UpdateItem applies a partial update and returns the refreshed record.
func (c *Client) UpdateItem(ctx context.Context, planID, itemID uuid.UUID, u domain.ItemUpdate) (domain.TravelItem, error) {
	var env envelope
	path := "/api/travel-items/plan/" + planID.String() + "/item/" + itemID.String()
	if err := c.do(ctx, http.MethodPut, path, u, &env); err != nil {
		return domain.TravelItem{}, err
	}
	return deref(env.Item), nil
}

// DeleteItem deletes an item.
func (c *Client) DeleteItem(ctx context.Context, planID, itemID uuid.UUID) error {
	path := "/api/travel-items/plan/" + planID.String() + "/item/" + itemID.String()
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// deref guards against a malformed success response missing its resource.
func deref[T any](p *T) T {
	if p == nil {
		var zero T
		return zero
	}
	return *p
}
