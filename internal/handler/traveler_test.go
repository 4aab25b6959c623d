package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jharmon/tripfolio/internal/domain"
	"github.com/jharmon/tripfolio/internal/handler"
	"github.com/jharmon/tripfolio/internal/middleware"
)

// mockTravelerServicer is a test double for handler.TravelerServicer.
// Set only the method fields your test needs.
type mockTravelerServicer struct {
	list   func(ctx context.Context, ownerID uuid.UUID) ([]domain.Traveler, error)
	create func(ctx context.Context, t domain.Traveler) (domain.Traveler, error)
	update func(ctx context.Context, ownerID, id uuid.UUID, u domain.TravelerUpdate) (domain.Traveler, error)
	delete func(ctx context.Context, ownerID, id uuid.UUID) error
}

func (m *mockTravelerServicer) List(ctx context.Context, ownerID uuid.UUID) ([]domain.Traveler, error) {
	return m.list(ctx, ownerID)
}
func (m *mockTravelerServicer) Create(ctx context.Context, t domain.Traveler) (domain.Traveler, error) {
	return m.create(ctx, t)
}
func (m *mockTravelerServicer) Update(ctx context.Context, ownerID, id uuid.UUID, u domain.TravelerUpdate) (domain.Traveler, error) {
	return m.update(ctx, ownerID, id, u)
}
func (m *mockTravelerServicer) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	return m.delete(ctx, ownerID, id)
}

// compile-time check: mockTravelerServicer must satisfy handler.TravelerServicer.
var _ handler.TravelerServicer = (*mockTravelerServicer)(nil)

// ---- shared helpers --------------------------------------------------------

// testOwner is the authenticated user for all handler tests.
var testOwner = uuid.MustParse("0d4de5f9-9b25-4e24-a1b4-51e0f6cfc6a9")

// injectOwner stands in for the JWT auth middleware: it stores the owner id
// in the context the way middleware.NewAuthHandler would after verifying a
// token, so handler tests don't need to mint tokens.
func injectOwner(ownerID uuid.UUID) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(middleware.WithOwner(r.Context(), ownerID)))
		})
	}
}

// newHTTPHandler wires a full router around the given service mocks. Pass nil
// for services the test never reaches.
func newHTTPHandler(travelers handler.TravelerServicer, plans handler.PlanServicer, items handler.ItemServicer) http.Handler {
	srv := handler.NewServer(travelers, plans, items)
	return srv.Routes(injectOwner(testOwner))
}

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

// decodeEnvelope parses the response body into a generic map for assertions
// on the envelope shape.
func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func travelerFixture() domain.Traveler {
	dob := time.Date(1990, 3, 14, 0, 0, 0, 0, time.UTC)
	return domain.Traveler{
		ID:             uuid.New(),
		OwnerID:        testOwner,
		Name:           "Ada Wanderer",
		Email:          "ada@example.com",
		DateOfBirth:    &dob,
		PassportNumber: "X1234567",
		CreatedAt:      time.Now().UTC(),
		UpdatedAt:      time.Now().UTC(),
	}
}

// ---- GET /api/travelers ----------------------------------------------------

func TestListTravelers_200(t *testing.T) {
	fixture := travelerFixture()
	svc := &mockTravelerServicer{
		list: func(_ context.Context, ownerID uuid.UUID) ([]domain.Traveler, error) {
			assert.Equal(t, testOwner, ownerID)
			return []domain.Traveler{fixture}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/travelers", nil)
	rec := httptest.NewRecorder()
	newHTTPHandler(svc, nil, nil).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, true, env["success"])
	travelers := env["travelers"].([]any)
	require.Len(t, travelers, 1)
	first := travelers[0].(map[string]any)
	assert.Equal(t, fixture.Name, first["name"])
	// The owner id is internal and must never appear on the wire.
	_, leaked := first["ownerId"]
	assert.False(t, leaked)
}

// ---- POST /api/travelers ---------------------------------------------------

func TestCreateTraveler_201(t *testing.T) {
	fixture := travelerFixture()
	svc := &mockTravelerServicer{
		create: func(_ context.Context, in domain.Traveler) (domain.Traveler, error) {
			assert.Equal(t, testOwner, in.OwnerID)
			assert.Equal(t, "Ada Wanderer", in.Name)
			return fixture, nil
		},
	}

	body := jsonBody(t, map[string]any{
		"name":        "Ada Wanderer",
		"email":       "ada@example.com",
		"dateOfBirth": "1990-03-14", // bare date from a date picker
	})
	req := httptest.NewRequest(http.MethodPost, "/api/travelers", body)
	rec := httptest.NewRecorder()
	newHTTPHandler(svc, nil, nil).ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, true, env["success"])
	assert.Equal(t, fixture.Name, env["traveler"].(map[string]any)["name"])
}

func TestCreateTraveler_400_Validation(t *testing.T) {
	svc := &mockTravelerServicer{
		create: func(_ context.Context, _ domain.Traveler) (domain.Traveler, error) {
			return domain.Traveler{}, domain.ErrValidation
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/travelers", jsonBody(t, map[string]any{}))
	rec := httptest.NewRecorder()
	newHTTPHandler(svc, nil, nil).ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, false, env["success"])
	assert.NotEmpty(t, env["error"])
}

func TestCreateTraveler_400_MalformedDate(t *testing.T) {
	body := jsonBody(t, map[string]any{
		"name":        "Ada Wanderer",
		"dateOfBirth": "yesterday-ish",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/travelers", body)
	rec := httptest.NewRecorder()
	// The service must not be reached — a nil mock would panic if it were.
	newHTTPHandler(&mockTravelerServicer{}, nil, nil).ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

// ---- PUT /api/travelers/{id} -----------------------------------------------

func TestUpdateTraveler_200(t *testing.T) {
	fixture := travelerFixture()
	svc := &mockTravelerServicer{
		update: func(_ context.Context, ownerID, id uuid.UUID, u domain.TravelerUpdate) (domain.Traveler, error) {
			assert.Equal(t, testOwner, ownerID)
			assert.Equal(t, fixture.ID, id)
			require.NotNil(t, u.Name)
			assert.Equal(t, "Ada Explorer", *u.Name)
			assert.Nil(t, u.Email) // omitted field must stay nil
			return fixture, nil
		},
	}

	body := jsonBody(t, map[string]any{"name": "Ada Explorer"})
	req := httptest.NewRequest(http.MethodPut, "/api/travelers/"+fixture.ID.String(), body)
	rec := httptest.NewRecorder()
	newHTTPHandler(svc, nil, nil).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
}

func TestUpdateTraveler_404(t *testing.T) {
	svc := &mockTravelerServicer{
		update: func(_ context.Context, _, _ uuid.UUID, _ domain.TravelerUpdate) (domain.Traveler, error) {
			return domain.Traveler{}, domain.ErrNotFound
		},
	}

	body := jsonBody(t, map[string]any{"name": "anyone"})
	req := httptest.NewRequest(http.MethodPut, "/api/travelers/"+uuid.NewString(), body)
	rec := httptest.NewRecorder()
	newHTTPHandler(svc, nil, nil).ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, "traveler not found", env["error"])
}

func TestUpdateTraveler_404_MalformedID(t *testing.T) {
	// A path id that isn't a uuid can't match any record: same 404 as a miss,
	// so enumeration attempts learn nothing from the status code.
	body := jsonBody(t, map[string]any{"name": "anyone"})
	req := httptest.NewRequest(http.MethodPut, "/api/travelers/not-a-uuid", body)
	rec := httptest.NewRecorder()
	newHTTPHandler(&mockTravelerServicer{}, nil, nil).ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}

// ---- DELETE /api/travelers/{id} ---------------------------------------------

func TestDeleteTraveler_200(t *testing.T) {
	id := uuid.New()
	svc := &mockTravelerServicer{
		delete: func(_ context.Context, ownerID, got uuid.UUID) error {
			assert.Equal(t, testOwner, ownerID)
			assert.Equal(t, id, got)
			return nil
		},
	}

	req := httptest.NewRequest(http.MethodDelete, "/api/travelers/"+id.String(), nil)
	rec := httptest.NewRecorder()
	newHTTPHandler(svc, nil, nil).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, true, env["success"])
	assert.Equal(t, "traveler deleted successfully", env["message"])
}

func TestDeleteTraveler_404(t *testing.T) {
	svc := &mockTravelerServicer{
		delete: func(_ context.Context, _, _ uuid.UUID) error {
			return domain.ErrNotFound
		},
	}

	req := httptest.NewRequest(http.MethodDelete, "/api/travelers/"+uuid.NewString(), nil)
	rec := httptest.NewRecorder()
	newHTTPHandler(svc, nil, nil).ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}

// ---- GET /api/health -------------------------------------------------------

func TestGetHealth_200(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	newHTTPHandler(nil, nil, nil).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, "ok", env["status"])
}

// ---- GET /openapi.yaml -----------------------------------------------------

func TestGetOpenAPI_200(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/openapi.yaml", nil)
	rec := httptest.NewRecorder()
	newHTTPHandler(nil, nil, nil).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/yaml", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "openapi:")
}
