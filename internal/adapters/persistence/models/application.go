package models

import (
	"time"

	"helpbridge/internal/core/domain"
)

// Status is the derived lifecycle state of an application. The table keeps
// the four historical boolean flags, but they are only ever written through
// the transition methods below, so contradictory combinations cannot be
// produced by this codebase.
type Status string

const (
	StatusOpen       Status = "open"
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
	StatusFinished   Status = "finished"
	StatusInactive   Status = "inactive"
	StatusCorrupt    Status = "corrupt"
)

// Application represents the applications table.
type Application struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	CreatorID    uint       `gorm:"not null;index" json:"creator_id"`
	CategoryID   uint       `gorm:"not null;index" json:"category_id"`
	LocationID   uint       `gorm:"not null" json:"location_id"`
	Description  string     `gorm:"type:text" json:"description"`
	ExecutorID   *uint      `gorm:"index" json:"executor_id"`
	IsInProgress bool       `gorm:"default:false" json:"is_in_progress"`
	IsDone       bool       `gorm:"default:false" json:"is_done"`
	IsFinished   bool       `gorm:"default:false" json:"is_finished"`
	IsActive     bool       `gorm:"default:true" json:"is_active"`
	DateAt       time.Time  `gorm:"autoCreateTime" json:"date_at"`
	DateDone     *time.Time `json:"date_done"`
	ActiveTo     time.Time  `gorm:"not null;index" json:"active_to"`

	Creator  *Customer `gorm:"foreignKey:CreatorID" json:"creator,omitempty"`
	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Location *Location `gorm:"foreignKey:LocationID" json:"location,omitempty"`
	Media    []Media   `gorm:"many2many:application_media" json:"media,omitempty"`
}

func (Application) TableName() string {
	return "applications"
}

// Status derives the lifecycle state from the persisted flags.
func (a *Application) Status() Status {
	if err := a.CheckInvariants(); err != nil {
		return StatusCorrupt
	}
	switch {
	case !a.IsActive:
		return StatusInactive
	case a.IsFinished:
		return StatusFinished
	case a.IsDone:
		return StatusDone
	case a.IsInProgress:
		return StatusInProgress
	default:
		return StatusOpen
	}
}

// CheckInvariants verifies the flag combination is one the lifecycle can
// produce: finished implies done, done or in-progress implies an executor,
// and done excludes in-progress. A violation is a data defect and callers
// must reject the record rather than repair it.
func (a *Application) CheckInvariants() error {
	if a.IsFinished && !a.IsDone {
		return domain.ErrCorruptState
	}
	if (a.IsDone || a.IsInProgress) && a.ExecutorID == nil {
		return domain.ErrCorruptState
	}
	if a.IsDone && a.IsInProgress {
		return domain.ErrCorruptState
	}
	if !a.IsDone && !a.IsInProgress && a.ExecutorID != nil {
		return domain.ErrCorruptState
	}
	return nil
}

// Accept moves an open application into progress under the given executor.
func (a *Application) Accept(volunteerID uint) error {
	if err := a.CheckInvariants(); err != nil {
		return err
	}
	switch a.Status() {
	case StatusOpen:
	case StatusInactive:
		return domain.ErrAlreadyInactive
	case StatusInProgress:
		return domain.ErrAlreadyAccepted
	default:
		return domain.ErrNotOpen
	}
	a.IsInProgress = true
	a.ExecutorID = &volunteerID
	return nil
}

// Close marks an in-progress application done by its executor.
func (a *Application) Close(volunteerID uint) error {
	if err := a.CheckInvariants(); err != nil {
		return err
	}
	if a.Status() != StatusInProgress {
		return domain.ErrNotInProgress
	}
	if *a.ExecutorID != volunteerID {
		return domain.ErrNotExecutor
	}
	now := time.Now()
	a.IsDone = true
	a.IsInProgress = false
	a.DateDone = &now
	return nil
}

// Cancel resets an in-progress application back to open, releasing the
// executor.
func (a *Application) Cancel(volunteerID uint) error {
	if err := a.CheckInvariants(); err != nil {
		return err
	}
	if a.Status() != StatusInProgress {
		return domain.ErrNotInProgress
	}
	if *a.ExecutorID != volunteerID {
		return domain.ErrNotExecutor
	}
	a.IsInProgress = false
	a.IsDone = false
	a.IsFinished = false
	a.ExecutorID = nil
	a.DateDone = nil
	return nil
}

// Confirm lets the creator acknowledge a done application as finished.
func (a *Application) Confirm() error {
	if err := a.CheckInvariants(); err != nil {
		return err
	}
	switch a.Status() {
	case StatusInactive:
		return domain.ErrAlreadyInactive
	case StatusFinished:
		return domain.ErrAlreadyFinished
	}
	if a.ExecutorID == nil {
		return domain.ErrNoExecutor
	}
	if !a.IsDone {
		return domain.ErrNotDoneYet
	}
	a.IsFinished = true
	return nil
}

// Deactivate soft-deletes the application. Allowed from any state including
// finished; a second deactivation is rejected since inactive is terminal.
func (a *Application) Deactivate() error {
	if err := a.CheckInvariants(); err != nil {
		return err
	}
	if !a.IsActive {
		return domain.ErrAlreadyInactive
	}
	a.IsActive = false
	return nil
}
