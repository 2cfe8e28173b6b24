package repositories

import (
	"context"

	"helpbridge/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// moderatorRepository implements ModeratorRepository interface
type moderatorRepository struct {
	db *gorm.DB
}

// NewModeratorRepository creates a new moderator repository
func NewModeratorRepository(db *gorm.DB) ModeratorRepository {
	return &moderatorRepository{db: db}
}

func (r *moderatorRepository) Create(ctx context.Context, moderator *models.Moderator) error {
	return r.db.WithContext(ctx).Create(moderator).Error
}

func (r *moderatorRepository) GetByID(ctx context.Context, id uint) (*models.Moderator, error) {
	var moderator models.Moderator
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&moderator).Error
	if err != nil {
		return nil, err
	}
	return &moderator, nil
}

func (r *moderatorRepository) GetByPhone(ctx context.Context, phone string) (*models.Moderator, error) {
	var moderator models.Moderator
	err := r.db.WithContext(ctx).Where("phone_number = ?", phone).First(&moderator).Error
	if err != nil {
		return nil, err
	}
	return &moderator, nil
}

// clientRepository implements ClientRepository interface
type clientRepository struct {
	db *gorm.DB
}

// NewClientRepository creates a new client repository
func NewClientRepository(db *gorm.DB) ClientRepository {
	return &clientRepository{db: db}
}

func (r *clientRepository) Create(ctx context.Context, client *models.Client) error {
	return r.db.WithContext(ctx).Create(client).Error
}

func (r *clientRepository) GetByName(ctx context.Context, name string) (*models.Client, error) {
	var client models.Client
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&client).Error
	if err != nil {
		return nil, err
	}
	return &client, nil
}

// categoryRepository implements CategoryRepository interface
type categoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository creates a new category repository
func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) Create(ctx context.Context, category *models.Category) error {
	return r.db.WithContext(ctx).Create(category).Error
}

func (r *categoryRepository) GetByID(ctx context.Context, id uint) (*models.Category, error) {
	var category models.Category
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&category).Error
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepository) ListActive(ctx context.Context) ([]*models.Category, error) {
	var categories []*models.Category
	err := r.db.WithContext(ctx).Where("is_active = ?", true).Order("id").Find(&categories).Error
	return categories, err
}

// ExistingIDs reports which of the given category IDs exist and are active
func (r *categoryRepository) ExistingIDs(ctx context.Context, ids []uint) (map[uint]bool, error) {
	existing := make(map[uint]bool, len(ids))
	if len(ids) == 0 {
		return existing, nil
	}
	var found []uint
	err := r.db.WithContext(ctx).Model(&models.Category{}).
		Where("id IN ? AND is_active = ?", ids, true).
		Pluck("id", &found).Error
	if err != nil {
		return nil, err
	}
	for _, id := range found {
		existing[id] = true
	}
	return existing, nil
}

func (r *categoryRepository) Deactivate(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Model(&models.Category{}).
		Where("id = ?", id).
		Update("is_active", false)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// locationRepository implements LocationRepository interface
type locationRepository struct {
	db *gorm.DB
}

// NewLocationRepository creates a new location repository
func NewLocationRepository(db *gorm.DB) LocationRepository {
	return &locationRepository{db: db}
}

// FindOrCreate returns the location matching the exact (lat, lon, address)
// triple, creating it when absent. Identical triples always share one row.
func (r *locationRepository) FindOrCreate(ctx context.Context, latitude, longitude float64, address string) (*models.Location, error) {
	var location models.Location
	err := r.db.WithContext(ctx).
		Where("latitude = ? AND longitude = ? AND address_name = ?", latitude, longitude, address).
		First(&location).Error
	if err == nil {
		return &location, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	location = models.Location{
		Latitude:    latitude,
		Longitude:   longitude,
		AddressName: address,
	}
	if err := r.db.WithContext(ctx).Create(&location).Error; err != nil {
		return nil, err
	}
	return &location, nil
}

func (r *locationRepository) GetByID(ctx context.Context, id uint) (*models.Location, error) {
	var location models.Location
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&location).Error
	if err != nil {
		return nil, err
	}
	return &location, nil
}
