package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"helpbridge/internal/adapters/persistence/models"
	"helpbridge/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateApplication(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	category := f.seedCategory(t, "Groceries")
	beneficiary := f.seedCustomer(t, models.RoleBeneficiary, true, nil, nil)

	app, err := f.apps.Create(ctx, beneficiary, &CreateApplicationInput{
		CategoryID:  category.ID,
		Description: "need groceries delivered",
		ActiveTo:    time.Now().Add(48 * time.Hour).Format(time.RFC3339),
		Address:     "Khreshchatyk 1, Kyiv",
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusOpen, app.Status())
	assert.Equal(t, beneficiary.ID, app.CreatorID)
	require.NotNil(t, app.Location)
	assert.InDelta(t, 50.4501, app.Location.Latitude, 1e-9)
}

func TestCreateApplicationDeadlineValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	category := f.seedCategory(t, "Groceries")
	beneficiary := f.seedCustomer(t, models.RoleBeneficiary, true, nil, nil)

	_, err := f.apps.Create(ctx, beneficiary, &CreateApplicationInput{
		CategoryID:  category.ID,
		Description: "x",
		ActiveTo:    "not-a-date",
		Address:     "somewhere",
	})
	assert.ErrorIs(t, err, domain.ErrUnparseableDate)

	_, err = f.apps.Create(ctx, beneficiary, &CreateApplicationInput{
		CategoryID:  category.ID,
		Description: "x",
		ActiveTo:    time.Now().Add(-time.Hour).Format(time.RFC3339),
		Address:     "somewhere",
	})
	assert.ErrorIs(t, err, domain.ErrPastDeadline)
}

func TestCreateApplicationRequiresVerifiedBeneficiary(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	category := f.seedCategory(t, "Groceries")

	unverified := f.seedCustomer(t, models.RoleBeneficiary, false, nil, nil)
	_, err := f.apps.Create(ctx, unverified, &CreateApplicationInput{
		CategoryID:  category.ID,
		Description: "x",
		ActiveTo:    time.Now().Add(time.Hour).Format(time.RFC3339),
		Address:     "somewhere",
	})
	assert.ErrorIs(t, err, domain.ErrNotVerified)

	location := f.seedLocation(t, 50.45, 30.52, "Kyiv")
	volunteer := f.seedCustomer(t, models.RoleVolunteer, true, location, nil)
	_, err = f.apps.Create(ctx, volunteer, &CreateApplicationInput{
		CategoryID:  category.ID,
		Description: "x",
		ActiveTo:    time.Now().Add(time.Hour).Format(time.RFC3339),
		Address:     "somewhere",
	})
	assert.ErrorIs(t, err, domain.ErrWrongRole)
}

func TestAcceptSaturation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	category := f.seedCategory(t, "Groceries")
	location := f.seedLocation(t, 50.45, 30.52, "Kyiv")
	beneficiary := f.seedCustomer(t, models.RoleBeneficiary, true, nil, nil)
	volunteer := f.seedCustomer(t, models.RoleVolunteer, true, location, []uint{category.ID})

	deadline := time.Now().Add(24 * time.Hour)
	for i := 0; i < 3; i++ {
		app := f.seedApplication(t, beneficiary.ID, category.ID, location, deadline)
		_, err := f.apps.Accept(ctx, volunteer, app.ID)
		require.NoError(t, err)
	}

	fourth := f.seedApplication(t, beneficiary.ID, category.ID, location, deadline)
	_, err := f.apps.Accept(ctx, volunteer, fourth.ID)
	assert.ErrorIs(t, err, domain.ErrVolunteerSaturated)

	// Cancelling one frees a slot
	held, err := f.store.Applications().ListByExecutor(ctx, volunteer.ID, false, time.Now())
	require.NoError(t, err)
	require.NotEmpty(t, held)
	_, err = f.apps.Cancel(ctx, volunteer, held[0].ID)
	require.NoError(t, err)

	_, err = f.apps.Accept(ctx, volunteer, fourth.ID)
	assert.NoError(t, err)
}

func TestAcceptRace(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	category := f.seedCategory(t, "Groceries")
	location := f.seedLocation(t, 50.45, 30.52, "Kyiv")
	beneficiary := f.seedCustomer(t, models.RoleBeneficiary, true, nil, nil)
	first := f.seedCustomer(t, models.RoleVolunteer, true, location, []uint{category.ID})
	second := f.seedCustomer(t, models.RoleVolunteer, true, location, []uint{category.ID})

	app := f.seedApplication(t, beneficiary.ID, category.ID, location, time.Now().Add(24*time.Hour))

	errs := make([]error, 2)
	var wg sync.WaitGroup
	wg.Add(2)
	for i, volunteer := range []*models.Customer{first, second} {
		go func(i int, v *models.Customer) {
			defer wg.Done()
			_, errs[i] = f.apps.Accept(ctx, v, app.ID)
		}(i, volunteer)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
		} else {
			assert.ErrorIs(t, err, domain.ErrAlreadyAccepted)
		}
	}
	assert.Equal(t, 1, winners, "exactly one accept must win")

	loaded, err := f.store.Applications().GetByID(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, loaded.Status())
	require.NotNil(t, loaded.ExecutorID)
}

func TestAcceptCapRace(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	category := f.seedCategory(t, "Groceries")
	location := f.seedLocation(t, 50.45, 30.52, "Kyiv")
	beneficiary := f.seedCustomer(t, models.RoleBeneficiary, true, nil, nil)
	volunteer := f.seedCustomer(t, models.RoleVolunteer, true, location, []uint{category.ID})

	// One volunteer races itself on four distinct open applications. The
	// in-progress count must be taken under the same serialization as the
	// assignment, or all four accepts read a count below the cap and win.
	deadline := time.Now().Add(24 * time.Hour)
	apps := make([]*models.Application, 4)
	for i := range apps {
		apps[i] = f.seedApplication(t, beneficiary.ID, category.ID, location, deadline)
	}

	errs := make([]error, len(apps))
	var wg sync.WaitGroup
	wg.Add(len(apps))
	for i, app := range apps {
		go func(i int, appID uint) {
			defer wg.Done()
			_, errs[i] = f.apps.Accept(ctx, volunteer, appID)
		}(i, app.ID)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
		} else {
			assert.ErrorIs(t, err, domain.ErrVolunteerSaturated)
		}
	}
	assert.Equal(t, 3, winners, "the cap bounds concurrent accepts")

	count, err := f.store.Applications().CountInProgressByExecutor(ctx, volunteer.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

func TestAcceptExpiredApplication(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	category := f.seedCategory(t, "Groceries")
	location := f.seedLocation(t, 50.45, 30.52, "Kyiv")
	beneficiary := f.seedCustomer(t, models.RoleBeneficiary, true, nil, nil)
	volunteer := f.seedCustomer(t, models.RoleVolunteer, true, location, []uint{category.ID})

	app := f.seedApplication(t, beneficiary.ID, category.ID, location, time.Now().Add(-time.Hour))
	_, err := f.apps.Accept(ctx, volunteer, app.ID)
	assert.ErrorIs(t, err, domain.ErrNotOpen)
}

func TestCloseRecordsEvidence(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	category := f.seedCategory(t, "Groceries")
	location := f.seedLocation(t, 50.45, 30.52, "Kyiv")
	beneficiary := f.seedCustomer(t, models.RoleBeneficiary, true, nil, nil)
	volunteer := f.seedCustomer(t, models.RoleVolunteer, true, location, []uint{category.ID})

	app := f.seedApplication(t, beneficiary.ID, category.ID, location, time.Now().Add(24*time.Hour))
	_, err := f.apps.Accept(ctx, volunteer, app.ID)
	require.NoError(t, err)

	closed, err := f.apps.Close(ctx, volunteer, app.ID, []EvidenceInput{
		{Filename: "receipt.jpg", Data: []byte("jpeg")},
		{Filename: "door.jpg", Data: []byte("jpeg")},
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusDone, closed.Status())
	assert.NotNil(t, closed.DateDone)
	assert.Len(t, f.files.saved, 2)

	media, err := f.store.Media().ListByApplication(ctx, app.ID)
	require.NoError(t, err)
	assert.Len(t, media, 2)
}

func TestCloseOnlyByExecutor(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	category := f.seedCategory(t, "Groceries")
	location := f.seedLocation(t, 50.45, 30.52, "Kyiv")
	beneficiary := f.seedCustomer(t, models.RoleBeneficiary, true, nil, nil)
	executor := f.seedCustomer(t, models.RoleVolunteer, true, location, []uint{category.ID})
	other := f.seedCustomer(t, models.RoleVolunteer, true, location, []uint{category.ID})

	app := f.seedApplication(t, beneficiary.ID, category.ID, location, time.Now().Add(24*time.Hour))
	_, err := f.apps.Accept(ctx, executor, app.ID)
	require.NoError(t, err)

	_, err = f.apps.Close(ctx, other, app.ID, nil)
	assert.ErrorIs(t, err, domain.ErrNotExecutor)
}

func TestConfirmOnlyByCreator(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	category := f.seedCategory(t, "Groceries")
	location := f.seedLocation(t, 50.45, 30.52, "Kyiv")
	creator := f.seedCustomer(t, models.RoleBeneficiary, true, nil, nil)
	stranger := f.seedCustomer(t, models.RoleBeneficiary, true, nil, nil)
	volunteer := f.seedCustomer(t, models.RoleVolunteer, true, location, []uint{category.ID})

	app := f.seedApplication(t, creator.ID, category.ID, location, time.Now().Add(24*time.Hour))
	_, err := f.apps.Accept(ctx, volunteer, app.ID)
	require.NoError(t, err)

	// Confirm before close is rejected
	_, err = f.apps.Confirm(ctx, creator, app.ID)
	assert.ErrorIs(t, err, domain.ErrNotDoneYet)

	_, err = f.apps.Close(ctx, volunteer, app.ID, nil)
	require.NoError(t, err)

	_, err = f.apps.Confirm(ctx, stranger, app.ID)
	assert.ErrorIs(t, err, domain.ErrNotCreator)

	confirmed, err := f.apps.Confirm(ctx, creator, app.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusFinished, confirmed.Status())
}

func TestFinishedBlocksTransitions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	category := f.seedCategory(t, "Groceries")
	location := f.seedLocation(t, 50.45, 30.52, "Kyiv")
	creator := f.seedCustomer(t, models.RoleBeneficiary, true, nil, nil)
	volunteer := f.seedCustomer(t, models.RoleVolunteer, true, location, []uint{category.ID})
	other := f.seedCustomer(t, models.RoleVolunteer, true, location, []uint{category.ID})

	app := f.seedApplication(t, creator.ID, category.ID, location, time.Now().Add(24*time.Hour))
	_, err := f.apps.Accept(ctx, volunteer, app.ID)
	require.NoError(t, err)
	_, err = f.apps.Close(ctx, volunteer, app.ID, nil)
	require.NoError(t, err)
	_, err = f.apps.Confirm(ctx, creator, app.ID)
	require.NoError(t, err)

	_, err = f.apps.Accept(ctx, other, app.ID)
	assert.ErrorIs(t, err, domain.ErrNotOpen)
	_, err = f.apps.Close(ctx, volunteer, app.ID, nil)
	assert.ErrorIs(t, err, domain.ErrNotInProgress)
	_, err = f.apps.Cancel(ctx, volunteer, app.ID)
	assert.ErrorIs(t, err, domain.ErrNotInProgress)
	_, err = f.apps.Confirm(ctx, creator, app.ID)
	assert.ErrorIs(t, err, domain.ErrAlreadyFinished)

	// Deactivation stays available on finished applications
	err = f.apps.Deactivate(ctx, &Principal{Customer: creator}, app.ID)
	assert.NoError(t, err)
	err = f.apps.Deactivate(ctx, &Principal{Customer: creator}, app.ID)
	assert.ErrorIs(t, err, domain.ErrAlreadyInactive)
}

func TestDeactivatePermissions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	category := f.seedCategory(t, "Groceries")
	location := f.seedLocation(t, 50.45, 30.52, "Kyiv")
	creator := f.seedCustomer(t, models.RoleBeneficiary, true, nil, nil)
	stranger := f.seedCustomer(t, models.RoleBeneficiary, true, nil, nil)

	moderator := &models.Moderator{PhoneNumber: "+380991112233", PasswordHash: "x", ClientID: 1, RoleID: models.RoleModerator}
	require.NoError(t, f.store.Moderators().Create(ctx, moderator))

	app := f.seedApplication(t, creator.ID, category.ID, location, time.Now().Add(24*time.Hour))

	err := f.apps.Deactivate(ctx, &Principal{Customer: stranger}, app.ID)
	assert.ErrorIs(t, err, domain.ErrNotCreator)

	err = f.apps.Deactivate(ctx, &Principal{Moderator: moderator}, app.ID)
	assert.NoError(t, err)

	loaded, err := f.store.Applications().GetByID(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInactive, loaded.Status())
}

func TestModeratorDeactivateHidesFromOpenListing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	category := f.seedCategory(t, "Groceries")
	location := f.seedLocation(t, 50.45, 30.52, "Kyiv")
	creator := f.seedCustomer(t, models.RoleBeneficiary, true, nil, nil)
	volunteer := f.seedCustomer(t, models.RoleVolunteer, true, location, []uint{category.ID})

	moderator := &models.Moderator{PhoneNumber: "+380991112233", PasswordHash: "x", ClientID: 1, RoleID: models.RoleModerator}
	require.NoError(t, f.store.Moderators().Create(ctx, moderator))

	app := f.seedApplication(t, creator.ID, category.ID, location, time.Now().Add(24*time.Hour))

	matched, err := f.matching.FindEligible(ctx, volunteer, ListTypeOpen, 0)
	require.NoError(t, err)
	require.Len(t, matched, 1)
	assert.Equal(t, app.ID, matched[0].ID)

	require.NoError(t, f.apps.Deactivate(ctx, &Principal{Moderator: moderator}, app.ID))

	matched, err = f.matching.FindEligible(ctx, volunteer, ListTypeOpen, 0)
	require.NoError(t, err)
	assert.Empty(t, matched)
}
