package models

import (
	"testing"
	"time"

	"helpbridge/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openApplication() *Application {
	return &Application{
		ID:          1,
		CreatorID:   10,
		CategoryID:  3,
		LocationID:  1,
		Description: "deliver groceries",
		IsActive:    true,
		ActiveTo:    time.Now().Add(48 * time.Hour),
	}
}

func TestStatusDerivation(t *testing.T) {
	app := openApplication()
	assert.Equal(t, StatusOpen, app.Status())

	require.NoError(t, app.Accept(5))
	assert.Equal(t, StatusInProgress, app.Status())

	require.NoError(t, app.Close(5))
	assert.Equal(t, StatusDone, app.Status())

	require.NoError(t, app.Confirm())
	assert.Equal(t, StatusFinished, app.Status())

	require.NoError(t, app.Deactivate())
	assert.Equal(t, StatusInactive, app.Status())
}

func TestAcceptGuards(t *testing.T) {
	app := openApplication()
	require.NoError(t, app.Accept(5))

	// Second accept loses.
	err := app.Accept(6)
	assert.ErrorIs(t, err, domain.ErrAlreadyAccepted)
	assert.Equal(t, uint(5), *app.ExecutorID)

	// Accept on an inactive application.
	app = openApplication()
	require.NoError(t, app.Deactivate())
	assert.ErrorIs(t, app.Accept(5), domain.ErrAlreadyInactive)
}

func TestCloseRequiresExecutor(t *testing.T) {
	app := openApplication()
	assert.ErrorIs(t, app.Close(5), domain.ErrNotInProgress)

	require.NoError(t, app.Accept(5))
	assert.ErrorIs(t, app.Close(6), domain.ErrNotExecutor)

	require.NoError(t, app.Close(5))
	assert.True(t, app.IsDone)
	assert.False(t, app.IsInProgress)
	assert.NotNil(t, app.DateDone)
}

func TestCancelResetsToOpen(t *testing.T) {
	app := openApplication()
	require.NoError(t, app.Accept(5))

	assert.ErrorIs(t, app.Cancel(6), domain.ErrNotExecutor)

	require.NoError(t, app.Cancel(5))
	assert.Equal(t, StatusOpen, app.Status())
	assert.Nil(t, app.ExecutorID)

	// A cancelled application can be accepted again.
	require.NoError(t, app.Accept(7))
	assert.Equal(t, uint(7), *app.ExecutorID)
}

func TestConfirmGuards(t *testing.T) {
	app := openApplication()
	assert.ErrorIs(t, app.Confirm(), domain.ErrNoExecutor)

	require.NoError(t, app.Accept(5))
	assert.ErrorIs(t, app.Confirm(), domain.ErrNotDoneYet)

	require.NoError(t, app.Close(5))
	require.NoError(t, app.Confirm())
	assert.ErrorIs(t, app.Confirm(), domain.ErrAlreadyFinished)
}

func TestFinishedBlocksFurtherTransitions(t *testing.T) {
	app := openApplication()
	require.NoError(t, app.Accept(5))
	require.NoError(t, app.Close(5))
	require.NoError(t, app.Confirm())

	assert.ErrorIs(t, app.Accept(6), domain.ErrNotOpen)
	assert.ErrorIs(t, app.Close(5), domain.ErrNotInProgress)
	assert.ErrorIs(t, app.Cancel(5), domain.ErrNotInProgress)

	// Deactivation remains allowed from finished.
	require.NoError(t, app.Deactivate())
	assert.ErrorIs(t, app.Deactivate(), domain.ErrAlreadyInactive)
}

func TestCorruptFlagsAreRejected(t *testing.T) {
	exec := uint(5)
	cases := []*Application{
		{IsActive: true, IsFinished: true},                  // finished without done
		{IsActive: true, IsDone: true},                      // done without executor
		{IsActive: true, IsInProgress: true},                // in progress without executor
		{IsActive: true, ExecutorID: &exec},                 // executor without progress
		{IsActive: true, IsDone: true, IsInProgress: true, ExecutorID: &exec}, // both set
	}

	for _, app := range cases {
		assert.ErrorIs(t, app.CheckInvariants(), domain.ErrCorruptState)
		assert.Equal(t, StatusCorrupt, app.Status())
		assert.ErrorIs(t, app.Accept(9), domain.ErrCorruptState)
		assert.ErrorIs(t, app.Confirm(), domain.ErrCorruptState)
		assert.ErrorIs(t, app.Deactivate(), domain.ErrCorruptState)
	}
}
