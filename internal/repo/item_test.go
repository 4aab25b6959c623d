package repo_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/google/uuid"

	"github.com/jharmon/tripfolio/internal/domain"
	"github.com/jharmon/tripfolio/internal/repo"
)

// mustCreatePlan inserts a parent plan and fails the test if it cannot.
func mustCreatePlan(t *testing.T, plans repo.PlanRepo, ownerID uuid.UUID) domain.TravelPlan {
	t.Helper()
	plan, err := plans.Create(context.Background(), planFixture(ownerID))
	require.NoError(t, err, "create parent plan")
	return plan
}

// itemFixture returns a TravelItem ready for insertion under the given plan.
func itemFixture(ownerID, planID uuid.UUID) domain.TravelItem {
	date := time.Date(2026, 6, 3, 18, 30, 0, 0, time.UTC)
	return domain.TravelItem{
		PlanID:       planID,
		OwnerID:      ownerID,
		Type:         domain.TypeRestaurants,
		Name:         "The Walrus and the Carpenter",
		Location:     "Seattle, WA",
		LocationData: []byte(`{"placeId":"xyz"}`),
		Date:         &date,
		Price:        "60",
		Notes:        "no reservations, arrive early",
		Travelers:    []uuid.UUID{uuid.New()},
	}
}

func TestItemRepo_Create(t *testing.T) {
	plans, items := newPlanRepos(t)
	ctx := context.Background()

	owner := uuid.New()
	parent := mustCreatePlan(t, plans, owner)
	input := itemFixture(owner, parent.ID)

	got, err := items.Create(ctx, input)

	require.NoError(t, err)
	assert.NotEqual(t, uuid.UUID{}, got.ID)
	assert.Equal(t, parent.ID, got.PlanID)
	assert.Equal(t, domain.TypeRestaurants, got.Type)
	assert.Equal(t, input.Name, got.Name)
	require.NotNil(t, got.Date)
	assert.True(t, got.Date.Equal(*input.Date))
	assert.Nil(t, got.CheckIn)
	assert.Nil(t, got.CheckOut)
	assert.ElementsMatch(t, input.Travelers, got.Travelers)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestItemRepo_Create_HotelDates(t *testing.T) {
	plans, items := newPlanRepos(t)
	ctx := context.Background()

	owner := uuid.New()
	parent := mustCreatePlan(t, plans, owner)

	checkIn := time.Date(2026, 6, 2, 15, 0, 0, 0, time.UTC)
	checkOut := time.Date(2026, 6, 4, 11, 0, 0, 0, time.UTC)
	input := itemFixture(owner, parent.ID)
	input.Type = domain.TypeHotels
	input.Name = "Hotel Cascadia"
	input.Date = nil
	input.CheckIn = &checkIn
	input.CheckOut = &checkOut

	got, err := items.Create(ctx, input)

	require.NoError(t, err)
	assert.Nil(t, got.Date)
	require.NotNil(t, got.CheckIn)
	require.NotNil(t, got.CheckOut)
	assert.True(t, got.CheckIn.Equal(checkIn))
	assert.True(t, got.CheckOut.Equal(checkOut))
}

func TestItemRepo_Create_InvalidTypeRejectedBySchema(t *testing.T) {
	plans, items := newPlanRepos(t)
	ctx := context.Background()

	owner := uuid.New()
	parent := mustCreatePlan(t, plans, owner)
	input := itemFixture(owner, parent.ID)
	input.Type = "museums"

	_, err := items.Create(ctx, input)

	// The CHECK constraint is the backstop behind service validation.
	assert.Error(t, err)
}

func TestItemRepo_GetByID_WrongPlan(t *testing.T) {
	plans, items := newPlanRepos(t)
	ctx := context.Background()

	owner := uuid.New()
	parent := mustCreatePlan(t, plans, owner)
	created, err := items.Create(ctx, itemFixture(owner, parent.ID))
	require.NoError(t, err)

	otherPlan := mustCreatePlan(t, plans, owner)
	_, err = items.GetByID(ctx, owner, otherPlan.ID, created.ID)

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestItemRepo_GetByID_WrongOwner(t *testing.T) {
	plans, items := newPlanRepos(t)
	ctx := context.Background()

	owner := uuid.New()
	parent := mustCreatePlan(t, plans, owner)
	created, err := items.Create(ctx, itemFixture(owner, parent.ID))
	require.NoError(t, err)

	_, err = items.GetByID(ctx, uuid.New(), parent.ID, created.ID)

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestItemRepo_ListByPlan_CreationOrder(t *testing.T) {
	plans, items := newPlanRepos(t)
	ctx := context.Background()

	owner := uuid.New()
	parent := mustCreatePlan(t, plans, owner)

	first, err := items.Create(ctx, itemFixture(owner, parent.ID))
	require.NoError(t, err)
	second, err := items.Create(ctx, itemFixture(owner, parent.ID))
	require.NoError(t, err)

	// An item under a different plan must not leak in.
	otherPlan := mustCreatePlan(t, plans, owner)
	_, err = items.Create(ctx, itemFixture(owner, otherPlan.ID))
	require.NoError(t, err)

	got, err := items.ListByPlan(ctx, parent.ID)

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, first.ID, got[0].ID)
	assert.Equal(t, second.ID, got[1].ID)
}

func TestItemRepo_Update_ReplacesTravelers(t *testing.T) {
	plans, items := newPlanRepos(t)
	ctx := context.Background()

	owner := uuid.New()
	parent := mustCreatePlan(t, plans, owner)
	created, err := items.Create(ctx, itemFixture(owner, parent.ID))
	require.NoError(t, err)

	replacement := []uuid.UUID{uuid.New(), uuid.New()}
	created.Name = "Renamed"
	created.Travelers = replacement

	got, err := items.Update(ctx, created)

	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Name)
	assert.ElementsMatch(t, replacement, got.Travelers)
}

func TestItemRepo_Update_ClearTravelers(t *testing.T) {
	plans, items := newPlanRepos(t)
	ctx := context.Background()

	owner := uuid.New()
	parent := mustCreatePlan(t, plans, owner)
	created, err := items.Create(ctx, itemFixture(owner, parent.ID))
	require.NoError(t, err)

	created.Travelers = []uuid.UUID{}

	got, err := items.Update(ctx, created)

	require.NoError(t, err)
	assert.Empty(t, got.Travelers)
}

func TestItemRepo_Update_WrongOwner(t *testing.T) {
	plans, items := newPlanRepos(t)
	ctx := context.Background()

	owner := uuid.New()
	parent := mustCreatePlan(t, plans, owner)
	created, err := items.Create(ctx, itemFixture(owner, parent.ID))
	require.NoError(t, err)

	created.OwnerID = uuid.New()

	_, err = items.Update(ctx, created)

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestItemRepo_Delete(t *testing.T) {
	plans, items := newPlanRepos(t)
	ctx := context.Background()

	owner := uuid.New()
	parent := mustCreatePlan(t, plans, owner)
	created, err := items.Create(ctx, itemFixture(owner, parent.ID))
	require.NoError(t, err)

	require.NoError(t, items.Delete(ctx, owner, parent.ID, created.ID))

	_, err = items.GetByID(ctx, owner, parent.ID, created.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestItemRepo_CountByTypeForOwner(t *testing.T) {
	plans, items := newPlanRepos(t)
	ctx := context.Background()

	owner := uuid.New()
	parent := mustCreatePlan(t, plans, owner)

	hotel := itemFixture(owner, parent.ID)
	hotel.Type = domain.TypeHotels
	hotel.Name = "Hotel Cascadia"
	for i := 0; i < 2; i++ {
		_, err := items.Create(ctx, hotel)
		require.NoError(t, err)
	}
	_, err := items.Create(ctx, itemFixture(owner, parent.ID)) // restaurants
	require.NoError(t, err)

	// Another owner's items must not be counted.
	foreignPlan := mustCreatePlan(t, plans, uuid.New())
	_, err = items.Create(ctx, itemFixture(foreignPlan.OwnerID, foreignPlan.ID))
	require.NoError(t, err)

	got, err := items.CountByTypeForOwner(ctx, owner)

	require.NoError(t, err)
	require.Contains(t, got, parent.ID)
	assert.Equal(t, 2, got[parent.ID][domain.TypeHotels])
	assert.Equal(t, 1, got[parent.ID][domain.TypeRestaurants])
	assert.NotContains(t, got, foreignPlan.ID)
}
