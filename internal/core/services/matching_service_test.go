package services

import (
	"context"
	"testing"
	"time"

	"helpbridge/internal/adapters/persistence/models"
	"helpbridge/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenMatchingFiltersByCategory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	groceries := f.seedCategory(t, "Groceries")
	medicine := f.seedCategory(t, "Medicine")
	kyiv := f.seedLocation(t, 50.4501, 30.5234, "Kyiv")
	creator := f.seedCustomer(t, models.RoleBeneficiary, true, nil, nil)
	volunteer := f.seedCustomer(t, models.RoleVolunteer, true, kyiv, []uint{groceries.ID})

	deadline := time.Now().Add(24 * time.Hour)
	wanted := f.seedApplication(t, creator.ID, groceries.ID, kyiv, deadline)
	f.seedApplication(t, creator.ID, medicine.ID, kyiv, deadline)

	matched, err := f.matching.FindEligible(ctx, volunteer, ListTypeOpen, 0)
	require.NoError(t, err)
	require.Len(t, matched, 1)
	assert.Equal(t, wanted.ID, matched[0].ID)
}

func TestOpenMatchingFiltersByRadius(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	groceries := f.seedCategory(t, "Groceries")
	kyiv := f.seedLocation(t, 50.4501, 30.5234, "Kyiv")
	nearby := f.seedLocation(t, 50.4547, 30.5038, "Kyiv, Podil")
	lviv := f.seedLocation(t, 49.8397, 24.0297, "Lviv")
	creator := f.seedCustomer(t, models.RoleBeneficiary, true, nil, nil)
	volunteer := f.seedCustomer(t, models.RoleVolunteer, true, kyiv, []uint{groceries.ID})

	deadline := time.Now().Add(24 * time.Hour)
	closeApp := f.seedApplication(t, creator.ID, groceries.ID, nearby, deadline)
	farApp := f.seedApplication(t, creator.ID, groceries.ID, lviv, deadline)

	// 10 km keeps only the Kyiv application
	matched, err := f.matching.FindEligible(ctx, volunteer, ListTypeOpen, 10)
	require.NoError(t, err)
	require.Len(t, matched, 1)
	assert.Equal(t, closeApp.ID, matched[0].ID)
	assert.Less(t, matched[0].DistanceKm, 10.0)

	// A country-wide radius sees both, nearest first
	matched, err = f.matching.FindEligible(ctx, volunteer, ListTypeOpen, 1000)
	require.NoError(t, err)
	require.Len(t, matched, 2)
	assert.Equal(t, closeApp.ID, matched[0].ID)
	assert.Equal(t, farApp.ID, matched[1].ID)
	assert.Less(t, matched[0].DistanceKm, matched[1].DistanceKm)
}

func TestOpenMatchingSkipsExpired(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	groceries := f.seedCategory(t, "Groceries")
	kyiv := f.seedLocation(t, 50.4501, 30.5234, "Kyiv")
	creator := f.seedCustomer(t, models.RoleBeneficiary, true, nil, nil)
	volunteer := f.seedCustomer(t, models.RoleVolunteer, true, kyiv, []uint{groceries.ID})

	f.seedApplication(t, creator.ID, groceries.ID, kyiv, time.Now().Add(-time.Minute))

	matched, err := f.matching.FindEligible(ctx, volunteer, ListTypeOpen, 0)
	require.NoError(t, err)
	assert.Empty(t, matched)
}

func TestEmptySubscriptionPolicy(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	groceries := f.seedCategory(t, "Groceries")
	kyiv := f.seedLocation(t, 50.4501, 30.5234, "Kyiv")
	creator := f.seedCustomer(t, models.RoleBeneficiary, true, nil, nil)
	volunteer := f.seedCustomer(t, models.RoleVolunteer, true, kyiv, nil)

	f.seedApplication(t, creator.ID, groceries.ID, kyiv, time.Now().Add(24*time.Hour))

	// Default policy: no subscriptions means no matches
	matched, err := f.matching.FindEligible(ctx, volunteer, ListTypeOpen, 0)
	require.NoError(t, err)
	assert.Empty(t, matched)

	// Opt-in policy: no subscriptions means every category
	matchAll := f.cfg.Matching
	matchAll.EmptySubscriptionMatchesAll = true
	open := NewMatchingService(f.store.Applications(), f.store.Customers(), f.store.Locations(), matchAll)
	matched, err = open.FindEligible(ctx, volunteer, ListTypeOpen, 0)
	require.NoError(t, err)
	assert.Len(t, matched, 1)
}

func TestExecutorListings(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	groceries := f.seedCategory(t, "Groceries")
	kyiv := f.seedLocation(t, 50.4501, 30.5234, "Kyiv")
	creator := f.seedCustomer(t, models.RoleBeneficiary, true, nil, nil)
	volunteer := f.seedCustomer(t, models.RoleVolunteer, true, kyiv, []uint{groceries.ID})

	deadline := time.Now().Add(24 * time.Hour)
	held := f.seedApplication(t, creator.ID, groceries.ID, kyiv, deadline)
	finishedUp := f.seedApplication(t, creator.ID, groceries.ID, kyiv, deadline)

	_, err := f.apps.Accept(ctx, volunteer, held.ID)
	require.NoError(t, err)
	_, err = f.apps.Accept(ctx, volunteer, finishedUp.ID)
	require.NoError(t, err)
	_, err = f.apps.Close(ctx, volunteer, finishedUp.ID, nil)
	require.NoError(t, err)

	inProgress, err := f.matching.FindEligible(ctx, volunteer, ListTypeInProgress, 0)
	require.NoError(t, err)
	require.Len(t, inProgress, 1)
	assert.Equal(t, held.ID, inProgress[0].ID)

	done, err := f.matching.FindEligible(ctx, volunteer, ListTypeDone, 0)
	require.NoError(t, err)
	require.Len(t, done, 1)
	assert.Equal(t, finishedUp.ID, done[0].ID)

	_, err = f.matching.FindEligible(ctx, volunteer, "bogus", 0)
	assert.ErrorIs(t, err, domain.ErrInvalidListType)
}

func TestRating(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	groceries := f.seedCategory(t, "Groceries")
	kyiv := f.seedLocation(t, 50.4501, 30.5234, "Kyiv")
	creator := f.seedCustomer(t, models.RoleBeneficiary, true, nil, nil)
	busy := f.seedCustomer(t, models.RoleVolunteer, true, kyiv, []uint{groceries.ID})
	casual := f.seedCustomer(t, models.RoleVolunteer, true, kyiv, []uint{groceries.ID})

	deadline := time.Now().Add(24 * time.Hour)
	for i := 0; i < 2; i++ {
		app := f.seedApplication(t, creator.ID, groceries.ID, kyiv, deadline)
		_, err := f.apps.Accept(ctx, busy, app.ID)
		require.NoError(t, err)
		_, err = f.apps.Close(ctx, busy, app.ID, nil)
		require.NoError(t, err)
	}
	app := f.seedApplication(t, creator.ID, groceries.ID, kyiv, deadline)
	_, err := f.apps.Accept(ctx, casual, app.ID)
	require.NoError(t, err)
	_, err = f.apps.Close(ctx, casual, app.ID, nil)
	require.NoError(t, err)

	rating, err := f.matching.Rating(ctx)
	require.NoError(t, err)
	require.Len(t, rating, 2)
	assert.Equal(t, int64(2), rating[0].ClosedAppCount)
	assert.Equal(t, int64(1), rating[1].ClosedAppCount)
}
