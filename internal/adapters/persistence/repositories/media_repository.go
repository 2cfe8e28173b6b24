package repositories

import (
	"context"

	"helpbridge/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// mediaRepository implements MediaRepository interface
type mediaRepository struct {
	db *gorm.DB
}

// NewMediaRepository creates a new media repository
func NewMediaRepository(db *gorm.DB) MediaRepository {
	return &mediaRepository{db: db}
}

// AttachToApplication records the evidence file and its association in one
// transaction.
func (r *mediaRepository) AttachToApplication(ctx context.Context, media *models.Media, applicationID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(media).Error; err != nil {
			return err
		}
		return tx.Model(&models.Application{ID: applicationID}).
			Association("Media").
			Append(media)
	})
}

// ListByApplication lists evidence files attached to an application
func (r *mediaRepository) ListByApplication(ctx context.Context, applicationID uint) ([]*models.Media, error) {
	var media []*models.Media
	err := r.db.WithContext(ctx).
		Joins("JOIN application_media ON application_media.media_id = media.id").
		Where("application_media.application_id = ?", applicationID).
		Find(&media).Error
	return media, err
}
