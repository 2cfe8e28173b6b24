package services

import (
	"context"
	"errors"
	"log"
	"time"

	"helpbridge/internal/adapters/persistence/models"
	"helpbridge/internal/adapters/persistence/repositories"
	"helpbridge/internal/config"
	"helpbridge/internal/core/domain"
	"helpbridge/internal/pkg/storage"

	"gorm.io/gorm"
)

// Deadline formats accepted on application creation
var deadlineFormats = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ApplicationService drives the application lifecycle
type ApplicationService struct {
	applicationRepo repositories.ApplicationRepository
	mediaRepo       repositories.MediaRepository
	locationRepo    repositories.LocationRepository
	categoryRepo    repositories.CategoryRepository
	moderation      *ModerationService
	geocoder        Geocoder
	files           storage.FileStore
	cfg             config.MatchingConfig
}

// NewApplicationService creates a new application service
func NewApplicationService(
	applicationRepo repositories.ApplicationRepository,
	mediaRepo repositories.MediaRepository,
	locationRepo repositories.LocationRepository,
	categoryRepo repositories.CategoryRepository,
	moderation *ModerationService,
	geocoder Geocoder,
	files storage.FileStore,
	cfg config.MatchingConfig,
) *ApplicationService {
	return &ApplicationService{
		applicationRepo: applicationRepo,
		mediaRepo:       mediaRepo,
		locationRepo:    locationRepo,
		categoryRepo:    categoryRepo,
		moderation:      moderation,
		geocoder:        geocoder,
		files:           files,
		cfg:             cfg,
	}
}

// CreateApplicationInput represents application creation input
type CreateApplicationInput struct {
	CategoryID  uint     `json:"category_id" validate:"required"`
	Description string   `json:"description" validate:"required"`
	ActiveTo    string   `json:"active_to" validate:"required"`
	Address     string   `json:"address"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
}

// EvidenceInput is one uploaded evidence file
type EvidenceInput struct {
	Filename string
	Data     []byte
}

// Create opens a new application for a verified beneficiary
func (s *ApplicationService) Create(ctx context.Context, creator *models.Customer, input *CreateApplicationInput) (*models.Application, error) {
	// 1. Only verified beneficiaries create applications
	if creator.RoleID != models.RoleBeneficiary {
		return nil, domain.ErrWrongRole
	}
	if err := s.moderation.RequireVerified(creator); err != nil {
		return nil, err
	}

	// 2. Parse and check the deadline
	activeTo, err := parseDeadline(input.ActiveTo)
	if err != nil {
		return nil, err
	}
	if !activeTo.After(time.Now()) {
		return nil, domain.ErrPastDeadline
	}

	// 3. Category must exist and be active
	existing, err := s.categoryRepo.ExistingIDs(ctx, []uint{input.CategoryID})
	if err != nil {
		return nil, err
	}
	if !existing[input.CategoryID] {
		return nil, domain.ErrCategoryNotFound
	}

	// 4. Resolve and deduplicate the location
	location, err := ResolveLocation(ctx, s.geocoder, s.locationRepo, input.Address, input.Latitude, input.Longitude)
	if err != nil {
		return nil, err
	}

	// 5. Persist in the open state
	app := &models.Application{
		CreatorID:   creator.ID,
		CategoryID:  input.CategoryID,
		LocationID:  location.ID,
		Description: input.Description,
		IsActive:    true,
		ActiveTo:    activeTo,
	}
	if err := s.applicationRepo.Create(ctx, app); err != nil {
		return nil, err
	}

	log.Printf("✅ Application %d created by customer %d", app.ID, creator.ID)
	return s.applicationRepo.GetByID(ctx, app.ID)
}

// Accept assigns an open application to a verified volunteer. The repository
// serializes concurrent accepts on the row; whichever caller commits first
// wins and the rest observe the in-progress state.
func (s *ApplicationService) Accept(ctx context.Context, volunteer *models.Customer, appID uint) (*models.Application, error) {
	if volunteer.RoleID != models.RoleVolunteer {
		return nil, domain.ErrWrongRole
	}
	if err := s.moderation.RequireVerified(volunteer); err != nil {
		return nil, err
	}

	// The deadline never moves once set, so it can be checked outside the
	// accept transaction.
	app, err := s.getApplication(ctx, appID)
	if err != nil {
		return nil, err
	}
	if !app.ActiveTo.After(time.Now()) {
		return nil, domain.ErrNotOpen
	}

	accepted, err := s.applicationRepo.Accept(ctx, appID, volunteer.ID, s.cfg.MaxInProgress)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrApplicationNotFound
		}
		return nil, err
	}

	log.Printf("✅ Application %d accepted by volunteer %d", appID, volunteer.ID)
	return accepted, nil
}

// Close marks an in-progress application done by its executor, storing the
// uploaded evidence files and recording their metadata.
func (s *ApplicationService) Close(ctx context.Context, volunteer *models.Customer, appID uint, evidence []EvidenceInput) (*models.Application, error) {
	if volunteer.RoleID != models.RoleVolunteer {
		return nil, domain.ErrWrongRole
	}
	if err := s.moderation.RequireVerified(volunteer); err != nil {
		return nil, err
	}

	closed, err := s.applicationRepo.Transition(ctx, appID, func(app *models.Application) error {
		return app.Close(volunteer.ID)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrApplicationNotFound
		}
		return nil, err
	}

	for _, file := range evidence {
		path, err := s.files.Save(file.Filename, file.Data)
		if err != nil {
			return nil, err
		}
		media := &models.Media{Filepath: path, CreatorID: volunteer.ID}
		if err := s.mediaRepo.AttachToApplication(ctx, media, appID); err != nil {
			return nil, err
		}
	}

	log.Printf("✅ Application %d closed by volunteer %d (%d evidence files)", appID, volunteer.ID, len(evidence))
	return closed, nil
}

// Cancel releases an in-progress application back to open
func (s *ApplicationService) Cancel(ctx context.Context, volunteer *models.Customer, appID uint) (*models.Application, error) {
	if volunteer.RoleID != models.RoleVolunteer {
		return nil, domain.ErrWrongRole
	}
	if err := s.moderation.RequireVerified(volunteer); err != nil {
		return nil, err
	}

	cancelled, err := s.applicationRepo.Transition(ctx, appID, func(app *models.Application) error {
		return app.Cancel(volunteer.ID)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrApplicationNotFound
		}
		return nil, err
	}

	log.Printf("✅ Application %d cancelled by volunteer %d", appID, volunteer.ID)
	return cancelled, nil
}

// Confirm lets the creator acknowledge a done application as finished
func (s *ApplicationService) Confirm(ctx context.Context, creator *models.Customer, appID uint) (*models.Application, error) {
	if creator.RoleID != models.RoleBeneficiary {
		return nil, domain.ErrWrongRole
	}
	if err := s.moderation.RequireVerified(creator); err != nil {
		return nil, err
	}

	confirmed, err := s.applicationRepo.Transition(ctx, appID, func(app *models.Application) error {
		if app.CreatorID != creator.ID {
			return domain.ErrNotCreator
		}
		return app.Confirm()
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrApplicationNotFound
		}
		return nil, err
	}

	log.Printf("✅ Application %d confirmed by customer %d", appID, creator.ID)
	return confirmed, nil
}

// Deactivate soft-deletes an application. Allowed for the creator and for
// moderators; terminal in either case.
func (s *ApplicationService) Deactivate(ctx context.Context, principal *Principal, appID uint) error {
	if principal.Customer != nil {
		if err := s.moderation.RequireVerified(principal.Customer); err != nil {
			return err
		}
	}

	_, err := s.applicationRepo.Transition(ctx, appID, func(app *models.Application) error {
		if principal.Moderator == nil && app.CreatorID != principal.ID() {
			return domain.ErrNotCreator
		}
		return app.Deactivate()
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrApplicationNotFound
		}
		return err
	}

	log.Printf("✅ Application %d deactivated by principal %d", appID, principal.ID())
	return nil
}

// ListByCreator lists a beneficiary's own applications
func (s *ApplicationService) ListByCreator(ctx context.Context, creator *models.Customer) ([]*models.Application, error) {
	if creator.RoleID != models.RoleBeneficiary {
		return nil, domain.ErrWrongRole
	}
	return s.applicationRepo.ListByCreator(ctx, creator.ID)
}

// GetByID loads one application
func (s *ApplicationService) GetByID(ctx context.Context, appID uint) (*models.Application, error) {
	return s.getApplication(ctx, appID)
}

func (s *ApplicationService) getApplication(ctx context.Context, appID uint) (*models.Application, error) {
	app, err := s.applicationRepo.GetByID(ctx, appID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrApplicationNotFound
		}
		return nil, err
	}
	return app, nil
}

// parseDeadline accepts the supported deadline formats
func parseDeadline(value string) (time.Time, error) {
	for _, format := range deadlineFormats {
		if t, err := time.Parse(format, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, domain.ErrUnparseableDate
}
