package services

import (
	"context"
	"errors"
	"log"

	"helpbridge/internal/adapters/persistence/models"
	"helpbridge/internal/adapters/persistence/repositories"
	"helpbridge/internal/core/domain"

	"gorm.io/gorm"
)

// CustomerService handles profile self-management
type CustomerService struct {
	customerRepo repositories.CustomerRepository
	categoryRepo repositories.CategoryRepository
	locationRepo repositories.LocationRepository
	geocoder     Geocoder
}

// NewCustomerService creates a new customer service
func NewCustomerService(
	customerRepo repositories.CustomerRepository,
	categoryRepo repositories.CategoryRepository,
	locationRepo repositories.LocationRepository,
	geocoder Geocoder,
) *CustomerService {
	return &CustomerService{
		customerRepo: customerRepo,
		categoryRepo: categoryRepo,
		locationRepo: locationRepo,
		geocoder:     geocoder,
	}
}

// UpdateProfileInput represents profile update input. Nil fields keep their
// current value.
type UpdateProfileInput struct {
	Firstname   *string  `json:"firstname"`
	Lastname    *string  `json:"lastname"`
	Patronymic  *string  `json:"patronymic"`
	Address     string   `json:"address"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	CategoryIDs []uint   `json:"category_ids"`
}

// GetProfile loads the caller's profile with location and subscriptions
func (s *CustomerService) GetProfile(ctx context.Context, customerID uint) (*models.CustomerResponse, error) {
	customer, err := s.customerRepo.GetByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return customer.ToResponse(), nil
}

// UpdateProfile edits names, relocates the customer or replaces category
// subscriptions. Location changes go through geocoding and dedup like at
// registration; only volunteers carry a location.
func (s *CustomerService) UpdateProfile(ctx context.Context, customer *models.Customer, input *UpdateProfileInput) (*models.CustomerResponse, error) {
	if input.Firstname != nil {
		customer.Firstname = *input.Firstname
	}
	if input.Lastname != nil {
		customer.Lastname = *input.Lastname
	}
	if input.Patronymic != nil {
		customer.Patronymic = *input.Patronymic
	}

	hasLocation := input.Address != "" || input.Latitude != nil || input.Longitude != nil
	if hasLocation {
		if customer.RoleID != models.RoleVolunteer {
			return nil, domain.ErrLocationForbidden
		}
		location, err := ResolveLocation(ctx, s.geocoder, s.locationRepo, input.Address, input.Latitude, input.Longitude)
		if err != nil {
			return nil, err
		}
		customer.LocationID = &location.ID
	}

	if err := s.customerRepo.Update(ctx, customer); err != nil {
		return nil, err
	}

	if input.CategoryIDs != nil {
		if customer.RoleID != models.RoleVolunteer {
			return nil, domain.ErrCategoryForbidden
		}
		existing, err := s.categoryRepo.ExistingIDs(ctx, input.CategoryIDs)
		if err != nil {
			return nil, err
		}
		for _, id := range input.CategoryIDs {
			if !existing[id] {
				return nil, domain.ErrCategoryNotFound
			}
		}
		if err := s.customerRepo.ReplaceCategories(ctx, customer.ID, input.CategoryIDs); err != nil {
			return nil, err
		}
	}

	log.Printf("✅ Profile updated: customer %d", customer.ID)
	return s.GetProfile(ctx, customer.ID)
}

// Deactivate lets a customer retire their own profile
func (s *CustomerService) Deactivate(ctx context.Context, customerID uint) error {
	if err := s.customerRepo.Deactivate(ctx, customerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrUserNotFound
		}
		return err
	}
	log.Printf("✅ Customer %d self-deactivated", customerID)
	return nil
}
