package services

import (
	"context"
	"errors"
	"log"

	"helpbridge/internal/adapters/persistence/models"
	"helpbridge/internal/adapters/persistence/repositories"
	"helpbridge/internal/core/domain"
	"helpbridge/internal/pkg/pagination"

	"gorm.io/gorm"
)

// ModerationService handles the verification gate and moderator-only
// maintenance of customers and categories
type ModerationService struct {
	customerRepo repositories.CustomerRepository
	categoryRepo repositories.CategoryRepository
}

// NewModerationService creates a new moderation service
func NewModerationService(
	customerRepo repositories.CustomerRepository,
	categoryRepo repositories.CategoryRepository,
) *ModerationService {
	return &ModerationService{
		customerRepo: customerRepo,
		categoryRepo: categoryRepo,
	}
}

// RequireVerified rejects customers that have not passed moderation. Every
// mutating operation calls this before touching an application.
func (s *ModerationService) RequireVerified(customer *models.Customer) error {
	if !customer.IsActive {
		return domain.ErrInactive
	}
	if !customer.IsVerified {
		return domain.ErrNotVerified
	}
	return nil
}

// ListUnverified lists active customers awaiting verification
func (s *ModerationService) ListUnverified(ctx context.Context, params *pagination.Params) ([]*models.CustomerResponse, int64, error) {
	customers, total, err := s.customerRepo.ListUnverified(ctx, params.Offset, params.Limit)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]*models.CustomerResponse, 0, len(customers))
	for _, customer := range customers {
		responses = append(responses, customer.ToResponse())
	}
	return responses, total, nil
}

// SetVerified grants or revokes a customer's verification
func (s *ModerationService) SetVerified(ctx context.Context, customerID uint, verified bool) (*models.CustomerResponse, error) {
	customer, err := s.customerRepo.SetVerified(ctx, customerID, verified)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}

	log.Printf("✅ Customer %d verification set to %t", customerID, verified)
	return customer.ToResponse(), nil
}

// DeactivateCustomer force-deactivates any customer
func (s *ModerationService) DeactivateCustomer(ctx context.Context, customerID uint) error {
	if err := s.customerRepo.Deactivate(ctx, customerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrUserNotFound
		}
		return err
	}

	log.Printf("✅ Customer %d deactivated by moderator", customerID)
	return nil
}

// CreateCategoryInput represents category creation input
type CreateCategoryInput struct {
	Name     string `json:"name" validate:"required"`
	ParentID *uint  `json:"parent_id"`
}

// CreateCategory creates a new help category
func (s *ModerationService) CreateCategory(ctx context.Context, input *CreateCategoryInput) (*models.Category, error) {
	if input.ParentID != nil {
		if _, err := s.categoryRepo.GetByID(ctx, *input.ParentID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, domain.ErrCategoryNotFound
			}
			return nil, err
		}
	}

	category := &models.Category{
		Name:     input.Name,
		ParentID: input.ParentID,
		IsActive: true,
	}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, err
	}

	log.Printf("✅ Category created: %s", category.Name)
	return category, nil
}

// ListCategories lists active categories
func (s *ModerationService) ListCategories(ctx context.Context) ([]*models.Category, error) {
	return s.categoryRepo.ListActive(ctx)
}

// DeactivateCategory soft-deletes a category. Existing applications keep
// their category reference; the category just stops being offered.
func (s *ModerationService) DeactivateCategory(ctx context.Context, categoryID uint) error {
	if err := s.categoryRepo.Deactivate(ctx, categoryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrCategoryNotFound
		}
		return err
	}

	log.Printf("✅ Category %d deactivated", categoryID)
	return nil
}
