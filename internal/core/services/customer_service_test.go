package services

import (
	"context"
	"testing"

	"helpbridge/internal/adapters/persistence/models"
	"helpbridge/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateProfileCategoryRules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	groceries := f.seedCategory(t, "Groceries")
	location := f.seedLocation(t, 50.45, 30.52, "Kyiv")

	// Subscriptions drive volunteer matching only
	beneficiary := f.seedCustomer(t, models.RoleBeneficiary, true, nil, nil)
	_, err := f.customers.UpdateProfile(ctx, beneficiary, &UpdateProfileInput{
		CategoryIDs: []uint{groceries.ID},
	})
	assert.ErrorIs(t, err, domain.ErrCategoryForbidden)

	volunteer := f.seedCustomer(t, models.RoleVolunteer, true, location, nil)
	resp, err := f.customers.UpdateProfile(ctx, volunteer, &UpdateProfileInput{
		CategoryIDs: []uint{groceries.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, []uint{groceries.ID}, resp.Categories)
}

func TestUpdateProfileLocationRules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	beneficiary := f.seedCustomer(t, models.RoleBeneficiary, true, nil, nil)
	_, err := f.customers.UpdateProfile(ctx, beneficiary, &UpdateProfileInput{
		Address: "Khreshchatyk 1, Kyiv",
	})
	assert.ErrorIs(t, err, domain.ErrLocationForbidden)
}
