package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jharmon/tripfolio/internal/domain"
	"github.com/jharmon/tripfolio/internal/repo"
	"github.com/jharmon/tripfolio/internal/service"
)

// mockTravelerRepo is a hand-written test double for repo.TravelerRepo.
// Each method is a function field — set only the ones your test needs.
// This is idiomatic Go: no mock generation library required for simple cases.
type mockTravelerRepo struct {
	create      func(ctx context.Context, t domain.Traveler) (domain.Traveler, error)
	getByID     func(ctx context.Context, ownerID, id uuid.UUID) (domain.Traveler, error)
	listByOwner func(ctx context.Context, ownerID uuid.UUID) ([]domain.Traveler, error)
	update      func(ctx context.Context, t domain.Traveler) (domain.Traveler, error)
	delete      func(ctx context.Context, ownerID, id uuid.UUID) error
}

func (m *mockTravelerRepo) Create(ctx context.Context, t domain.Traveler) (domain.Traveler, error) {
	return m.create(ctx, t)
}
func (m *mockTravelerRepo) GetByID(ctx context.Context, ownerID, id uuid.UUID) (domain.Traveler, error) {
	return m.getByID(ctx, ownerID, id)
}
func (m *mockTravelerRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Traveler, error) {
	return m.listByOwner(ctx, ownerID)
}
func (m *mockTravelerRepo) Update(ctx context.Context, t domain.Traveler) (domain.Traveler, error) {
	return m.update(ctx, t)
}
func (m *mockTravelerRepo) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	return m.delete(ctx, ownerID, id)
}

// compile-time check: mockTravelerRepo must satisfy repo.TravelerRepo.
var _ repo.TravelerRepo = (*mockTravelerRepo)(nil)

// ---- helpers ---------------------------------------------------------------

var testOwner = uuid.MustParse("5bfb7a51-4b63-46e4-9a25-94d0e2e1e6a0")

func validTraveler() domain.Traveler {
	return domain.Traveler{
		OwnerID: testOwner,
		Name:    "Ada Wanderer",
		Email:   "ada@example.com",
	}
}

func echoTravelerRepo() *mockTravelerRepo {
	// A repo that echoes whatever it receives back — useful for Create/Update
	// tests that only care about validation logic, not what the DB returns.
	return &mockTravelerRepo{
		create: func(_ context.Context, t domain.Traveler) (domain.Traveler, error) { return t, nil },
		update: func(_ context.Context, t domain.Traveler) (domain.Traveler, error) { return t, nil },
	}
}

// ---- Create tests ----------------------------------------------------------

func TestTravelerService_Create_Valid(t *testing.T) {
	svc := service.NewTravelerService(echoTravelerRepo())

	got, err := svc.Create(context.Background(), validTraveler())

	require.NoError(t, err)
	assert.Equal(t, "Ada Wanderer", got.Name)
}

func TestTravelerService_Create_MissingName(t *testing.T) {
	svc := service.NewTravelerService(echoTravelerRepo())

	traveler := validTraveler()
	traveler.Name = "   " // whitespace-only should be treated as empty

	_, err := svc.Create(context.Background(), traveler)

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestTravelerService_Create_EmailOptional(t *testing.T) {
	svc := service.NewTravelerService(echoTravelerRepo())

	traveler := validTraveler()
	traveler.Email = "" // email is optional — empty must be accepted

	_, err := svc.Create(context.Background(), traveler)

	assert.NoError(t, err)
}

func TestTravelerService_Create_EmailValidation(t *testing.T) {
	svc := service.NewTravelerService(echoTravelerRepo())

	cases := []struct {
		email string
		ok    bool
	}{
		{"a@b.co", true},
		{"first.last+tag@sub.example.org", true},
		{"not-an-email", false},
		{"missing@domain", false},
		{"two@@signs.com", false},
		{"spaces in@address.com", false},
		{" ", false}, // whitespace-only is not "empty", it is malformed
		{" ada@example.com", false},
	}

	for _, tc := range cases {
		t.Run(tc.email, func(t *testing.T) {
			traveler := validTraveler()
			traveler.Email = tc.email

			_, err := svc.Create(context.Background(), traveler)

			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, domain.ErrValidation)
			}
		})
	}
}

// ---- Update tests ----------------------------------------------------------

func TestTravelerService_Update_MergesPartialFields(t *testing.T) {
	existing := validTraveler()
	existing.ID = uuid.New()
	existing.PassportNumber = "X123"

	r := echoTravelerRepo()
	r.getByID = func(_ context.Context, ownerID, id uuid.UUID) (domain.Traveler, error) {
		assert.Equal(t, testOwner, ownerID)
		assert.Equal(t, existing.ID, id)
		return existing, nil
	}
	svc := service.NewTravelerService(r)

	newName := "Ada Explorer"
	got, err := svc.Update(context.Background(), testOwner, existing.ID, domain.TravelerUpdate{Name: &newName})

	require.NoError(t, err)
	assert.Equal(t, "Ada Explorer", got.Name)
	// Fields absent from the update keep their stored values.
	assert.Equal(t, "ada@example.com", got.Email)
	assert.Equal(t, "X123", got.PassportNumber)
}

func TestTravelerService_Update_RevalidatesMergedRecord(t *testing.T) {
	existing := validTraveler()
	existing.ID = uuid.New()

	r := echoTravelerRepo()
	r.getByID = func(_ context.Context, _, _ uuid.UUID) (domain.Traveler, error) {
		return existing, nil
	}
	svc := service.NewTravelerService(r)

	badEmail := "not-an-email"
	_, err := svc.Update(context.Background(), testOwner, existing.ID, domain.TravelerUpdate{Email: &badEmail})

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestTravelerService_Update_NotFound(t *testing.T) {
	r := echoTravelerRepo()
	r.getByID = func(_ context.Context, _, _ uuid.UUID) (domain.Traveler, error) {
		return domain.Traveler{}, domain.ErrNotFound
	}
	svc := service.NewTravelerService(r)

	name := "anyone"
	_, err := svc.Update(context.Background(), testOwner, uuid.New(), domain.TravelerUpdate{Name: &name})

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ---- List tests ------------------------------------------------------------

func TestTravelerService_List_NilBecomesEmptySlice(t *testing.T) {
	r := &mockTravelerRepo{
		listByOwner: func(_ context.Context, _ uuid.UUID) ([]domain.Traveler, error) {
			return nil, nil
		},
	}
	svc := service.NewTravelerService(r)

	got, err := svc.List(context.Background(), testOwner)

	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestTravelerService_List_PropagatesRepoError(t *testing.T) {
	boom := errors.New("connection refused")
	r := &mockTravelerRepo{
		listByOwner: func(_ context.Context, _ uuid.UUID) ([]domain.Traveler, error) {
			return nil, boom
		},
	}
	svc := service.NewTravelerService(r)

	_, err := svc.List(context.Background(), testOwner)

	assert.ErrorIs(t, err, boom)
}

// ---- Delete tests ----------------------------------------------------------

func TestTravelerService_Delete_NotFound(t *testing.T) {
	r := &mockTravelerRepo{
		delete: func(_ context.Context, _, _ uuid.UUID) error {
			return domain.ErrNotFound
		},
	}
	svc := service.NewTravelerService(r)

	err := svc.Delete(context.Background(), testOwner, uuid.New())

	assert.ErrorIs(t, err, domain.ErrNotFound)
}
