package repositories

import (
	"context"
	"time"

	"helpbridge/internal/adapters/persistence/models"
	"helpbridge/internal/core/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// applicationRepository implements ApplicationRepository interface
type applicationRepository struct {
	db *gorm.DB
}

// NewApplicationRepository creates a new application repository
func NewApplicationRepository(db *gorm.DB) ApplicationRepository {
	return &applicationRepository{db: db}
}

// Create creates a new application
func (r *applicationRepository) Create(ctx context.Context, app *models.Application) error {
	return r.db.WithContext(ctx).Create(app).Error
}

// GetByID gets an application by ID with location, category and media
func (r *applicationRepository) GetByID(ctx context.Context, id uint) (*models.Application, error) {
	var app models.Application
	err := r.db.WithContext(ctx).
		Preload("Location").
		Preload("Category").
		Preload("Media").
		Where("id = ?", id).
		First(&app).Error
	if err != nil {
		return nil, err
	}
	return &app, nil
}

// Accept assigns the application to the volunteer. Both the application row
// and the volunteer's customer row are locked for the duration of the
// transaction: the application lock makes racing accepts on the same
// application lose with the in-progress state observed, and the customer
// lock serializes accepts by the same volunteer on different applications so
// the in-progress cap cannot be overshot.
func (r *applicationRepository) Accept(ctx context.Context, appID, volunteerID uint, maxInProgress int) (*models.Application, error) {
	var accepted *models.Application

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var app models.Application
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", appID).
			First(&app).Error; err != nil {
			return err
		}

		var volunteer models.Customer
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", volunteerID).
			First(&volunteer).Error; err != nil {
			return err
		}

		var inProgress int64
		if err := tx.Model(&models.Application{}).
			Where("executor_id = ? AND is_in_progress = ?", volunteerID, true).
			Count(&inProgress).Error; err != nil {
			return err
		}
		if inProgress >= int64(maxInProgress) {
			return domain.ErrVolunteerSaturated
		}

		if err := app.Accept(volunteerID); err != nil {
			return err
		}
		if err := tx.Save(&app).Error; err != nil {
			return err
		}
		accepted = &app
		return nil
	})
	if err != nil {
		return nil, err
	}
	return accepted, nil
}

// Transition loads the application under a row lock, applies fn and saves
// the result. The whole state change commits atomically or not at all.
func (r *applicationRepository) Transition(ctx context.Context, appID uint, fn func(*models.Application) error) (*models.Application, error) {
	var updated *models.Application

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var app models.Application
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", appID).
			First(&app).Error; err != nil {
			return err
		}

		if err := fn(&app); err != nil {
			return err
		}
		if err := tx.Save(&app).Error; err != nil {
			return err
		}
		updated = &app
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// CountInProgressByExecutor counts applications a volunteer currently holds
func (r *applicationRepository) CountInProgressByExecutor(ctx context.Context, volunteerID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Application{}).
		Where("executor_id = ? AND is_in_progress = ?", volunteerID, true).
		Count(&count).Error
	return count, err
}

// ListOpenActive lists open, active applications whose deadline has not
// passed, with locations preloaded for distance filtering.
func (r *applicationRepository) ListOpenActive(ctx context.Context, now time.Time) ([]*models.Application, error) {
	var apps []*models.Application
	err := r.db.WithContext(ctx).
		Preload("Location").
		Where("is_done = ? AND is_in_progress = ? AND is_active = ? AND active_to > ?",
			false, false, true, now).
		Find(&apps).Error
	return apps, err
}

// ListByExecutor lists a volunteer's in-progress or done applications
func (r *applicationRepository) ListByExecutor(ctx context.Context, executorID uint, done bool, now time.Time) ([]*models.Application, error) {
	var apps []*models.Application
	query := r.db.WithContext(ctx).
		Preload("Location").
		Where("executor_id = ? AND is_active = ? AND active_to > ?", executorID, true, now)

	if done {
		query = query.Where("is_done = ?", true)
	} else {
		query = query.Where("is_in_progress = ? AND is_done = ?", true, false)
	}

	err := query.Find(&apps).Error
	return apps, err
}

// ListByCreator lists a beneficiary's applications, newest first
func (r *applicationRepository) ListByCreator(ctx context.Context, creatorID uint) ([]*models.Application, error) {
	var apps []*models.Application
	err := r.db.WithContext(ctx).
		Preload("Location").
		Preload("Category").
		Preload("Media").
		Where("creator_id = ?", creatorID).
		Order("id DESC").
		Find(&apps).Error
	return apps, err
}

// Rating returns volunteers ranked by the number of done applications
func (r *applicationRepository) Rating(ctx context.Context) ([]RatingEntry, error) {
	var entries []RatingEntry
	err := r.db.WithContext(ctx).Model(&models.Application{}).
		Select("CONCAT(customers.firstname, ' ', customers.lastname) AS volunteer_name, COUNT(applications.id) AS closed_app_count").
		Joins("JOIN customers ON customers.id = applications.executor_id").
		Where("applications.is_done = ?", true).
		Group("customers.id").
		Order("closed_app_count DESC").
		Scan(&entries).Error
	return entries, err
}

// DeactivateExpiredBefore soft-deletes open applications whose deadline
// passed before the cutoff. Held or completed applications are untouched.
func (r *applicationRepository) DeactivateExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.Application{}).
		Where("is_active = ? AND is_in_progress = ? AND is_done = ? AND active_to < ?",
			true, false, false, cutoff).
		Update("is_active", false)
	return result.RowsAffected, result.Error
}
