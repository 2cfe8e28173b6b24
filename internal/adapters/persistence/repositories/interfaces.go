package repositories

import (
	"context"
	"time"

	"helpbridge/internal/adapters/persistence/models"
)

// CustomerRepository defines customer (beneficiary/volunteer) data access
type CustomerRepository interface {
	Create(ctx context.Context, customer *models.Customer) error
	GetByID(ctx context.Context, id uint) (*models.Customer, error)
	GetByTgIDAndRole(ctx context.Context, tgID string, roleID uint) (*models.Customer, error)
	ExistsActiveByTgID(ctx context.Context, tgID string, roleID uint) (bool, error)
	ExistsActiveByPhone(ctx context.Context, phone string, roleID uint) (bool, error)
	Update(ctx context.Context, customer *models.Customer) error
	SetVerified(ctx context.Context, id uint, verified bool) (*models.Customer, error)
	Deactivate(ctx context.Context, id uint) error
	ListUnverified(ctx context.Context, offset, limit int) ([]*models.Customer, int64, error)
	CategoryIDs(ctx context.Context, customerID uint) ([]uint, error)
	ReplaceCategories(ctx context.Context, customerID uint, categoryIDs []uint) error
}

// ModeratorRepository defines moderator data access
type ModeratorRepository interface {
	Create(ctx context.Context, moderator *models.Moderator) error
	GetByID(ctx context.Context, id uint) (*models.Moderator, error)
	GetByPhone(ctx context.Context, phone string) (*models.Moderator, error)
}

// ClientRepository defines channel client data access
type ClientRepository interface {
	Create(ctx context.Context, client *models.Client) error
	GetByName(ctx context.Context, name string) (*models.Client, error)
}

// CategoryRepository defines category data access
type CategoryRepository interface {
	Create(ctx context.Context, category *models.Category) error
	GetByID(ctx context.Context, id uint) (*models.Category, error)
	ListActive(ctx context.Context) ([]*models.Category, error)
	ExistingIDs(ctx context.Context, ids []uint) (map[uint]bool, error)
	Deactivate(ctx context.Context, id uint) error
}

// LocationRepository defines location data access. FindOrCreate is the only
// writer and deduplicates by the (latitude, longitude, address) triple.
type LocationRepository interface {
	FindOrCreate(ctx context.Context, latitude, longitude float64, address string) (*models.Location, error)
	GetByID(ctx context.Context, id uint) (*models.Location, error)
}

// RatingEntry is one row of the closed-application leaderboard.
type RatingEntry struct {
	VolunteerName  string `json:"volunteer_name"`
	ClosedAppCount int64  `json:"closed_app_count"`
}

// ApplicationRepository defines application data access. Accept and
// Transition execute the state change inside a single transaction with the
// application row locked, so concurrent transitions on one application are
// linearized and at most one accept can ever win.
type ApplicationRepository interface {
	Create(ctx context.Context, app *models.Application) error
	GetByID(ctx context.Context, id uint) (*models.Application, error)
	Accept(ctx context.Context, appID, volunteerID uint, maxInProgress int) (*models.Application, error)
	Transition(ctx context.Context, appID uint, fn func(*models.Application) error) (*models.Application, error)
	CountInProgressByExecutor(ctx context.Context, volunteerID uint) (int64, error)
	ListOpenActive(ctx context.Context, now time.Time) ([]*models.Application, error)
	ListByExecutor(ctx context.Context, executorID uint, done bool, now time.Time) ([]*models.Application, error)
	ListByCreator(ctx context.Context, creatorID uint) ([]*models.Application, error)
	Rating(ctx context.Context) ([]RatingEntry, error)
	DeactivateExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// MediaRepository defines evidence metadata access
type MediaRepository interface {
	AttachToApplication(ctx context.Context, media *models.Media, applicationID uint) error
	ListByApplication(ctx context.Context, applicationID uint) ([]*models.Media, error)
}

// RefreshTokenRepository defines refresh token data access
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *models.RefreshToken) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error)
	Revoke(ctx context.Context, id uint) error
	RevokeByTokenHash(ctx context.Context, tokenHash string) error
	RevokeAllByPrincipal(ctx context.Context, principalID, roleID uint) error
	DeleteExpired(ctx context.Context) error
}
