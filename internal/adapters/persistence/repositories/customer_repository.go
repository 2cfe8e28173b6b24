package repositories

import (
	"context"

	"helpbridge/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// customerRepository implements CustomerRepository interface
type customerRepository struct {
	db *gorm.DB
}

// NewCustomerRepository creates a new customer repository
func NewCustomerRepository(db *gorm.DB) CustomerRepository {
	return &customerRepository{db: db}
}

// Create creates a new customer
func (r *customerRepository) Create(ctx context.Context, customer *models.Customer) error {
	return r.db.WithContext(ctx).Create(customer).Error
}

// GetByID gets a customer by ID with location and category subscriptions
func (r *customerRepository) GetByID(ctx context.Context, id uint) (*models.Customer, error) {
	var customer models.Customer
	err := r.db.WithContext(ctx).
		Preload("Location").
		Preload("Categories").
		Where("id = ?", id).
		First(&customer).Error
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

// GetByTgIDAndRole gets a customer by telegram ID within a role partition
func (r *customerRepository) GetByTgIDAndRole(ctx context.Context, tgID string, roleID uint) (*models.Customer, error) {
	var customer models.Customer
	err := r.db.WithContext(ctx).
		Preload("Location").
		Where("tg_id = ? AND role_id = ?", tgID, roleID).
		First(&customer).Error
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

// ExistsActiveByTgID checks for an active customer with this telegram ID and role
func (r *customerRepository) ExistsActiveByTgID(ctx context.Context, tgID string, roleID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Customer{}).
		Where("tg_id = ? AND role_id = ? AND is_active = ?", tgID, roleID, true).
		Count(&count).Error
	return count > 0, err
}

// ExistsActiveByPhone checks for an active customer with this phone and role
func (r *customerRepository) ExistsActiveByPhone(ctx context.Context, phone string, roleID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Customer{}).
		Where("phone_num = ? AND role_id = ? AND is_active = ?", phone, roleID, true).
		Count(&count).Error
	return count > 0, err
}

// Update updates a customer
func (r *customerRepository) Update(ctx context.Context, customer *models.Customer) error {
	return r.db.WithContext(ctx).Omit("Categories", "Location").Save(customer).Error
}

// SetVerified flips the verification flag and returns the updated record
func (r *customerRepository) SetVerified(ctx context.Context, id uint, verified bool) (*models.Customer, error) {
	result := r.db.WithContext(ctx).Model(&models.Customer{}).
		Where("id = ?", id).
		Update("is_verified", verified)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.GetByID(ctx, id)
}

// Deactivate soft deletes a customer profile
func (r *customerRepository) Deactivate(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Model(&models.Customer{}).
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

// ListUnverified lists active customers awaiting verification
func (r *customerRepository) ListUnverified(ctx context.Context, offset, limit int) ([]*models.Customer, int64, error) {
	var customers []*models.Customer
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Customer{}).
		Where("is_verified = ? AND is_active = ?", false, true)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("created_at ASC").Offset(offset).Limit(limit).Find(&customers).Error
	return customers, total, err
}

// CategoryIDs returns the category subscriptions of a customer
func (r *customerRepository) CategoryIDs(ctx context.Context, customerID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Table("customer_categories").
		Where("customer_id = ?", customerID).
		Pluck("category_id", &ids).Error
	return ids, err
}

// ReplaceCategories replaces the customer's category subscriptions
func (r *customerRepository) ReplaceCategories(ctx context.Context, customerID uint, categoryIDs []uint) error {
	categories := make([]models.Category, 0, len(categoryIDs))
	for _, id := range categoryIDs {
		categories = append(categories, models.Category{ID: id})
	}
	return r.db.WithContext(ctx).
		Model(&models.Customer{ID: customerID}).
		Association("Categories").
		Replace(categories)
}
