package services

import (
	"context"
	"testing"
	"time"

	"helpbridge/internal/adapters/persistence/models"
	"helpbridge/internal/adapters/persistence/repositories"
	"helpbridge/internal/config"
	"helpbridge/internal/pkg/password"

	"github.com/stretchr/testify/require"
)

// stubGeocoder returns a fixed result without network access
type stubGeocoder struct {
	result  *GeocodeResult
	reverse *GeocodeResult
	err     error
}

func (g *stubGeocoder) Forward(_ context.Context, _ string) (*GeocodeResult, error) {
	if g.err != nil {
		return nil, g.err
	}
	return g.result, nil
}

func (g *stubGeocoder) Reverse(_ context.Context, lat, lon float64) (*GeocodeResult, error) {
	if g.err != nil {
		return nil, g.err
	}
	if g.reverse != nil {
		return g.reverse, nil
	}
	return &GeocodeResult{Latitude: lat, Longitude: lon, DisplayName: g.result.DisplayName}, nil
}

// stubFileStore records saved filenames without touching the disk
type stubFileStore struct {
	saved []string
}

func (s *stubFileStore) Save(filename string, _ []byte) (string, error) {
	path := "media/" + filename
	s.saved = append(s.saved, path)
	return path, nil
}

type fixture struct {
	store      *repositories.MemoryStore
	cfg        *config.Config
	geocoder   *stubGeocoder
	files      *stubFileStore
	auth       *AuthService
	moderation *ModerationService
	matching   *MatchingService
	apps       *ApplicationService
	customers  *CustomerService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := repositories.NewMemoryStore()
	cfg := &config.Config{
		AppMode: "dev",
		JWT: config.JWTConfig{
			Secret:           "test-access-secret",
			RefreshSecret:    "test-refresh-secret",
			AccessTokenMins:  15,
			RefreshTokenDays: 7,
		},
		Matching: config.MatchingConfig{MaxInProgress: 3},
	}
	geocoder := &stubGeocoder{result: &GeocodeResult{
		Latitude:    50.4501,
		Longitude:   30.5234,
		DisplayName: "Kyiv, Ukraine",
	}}
	files := &stubFileStore{}

	moderation := NewModerationService(store.Customers(), store.Categories())

	f := &fixture{
		store:      store,
		cfg:        cfg,
		geocoder:   geocoder,
		files:      files,
		moderation: moderation,
		auth: NewAuthService(store.Customers(), store.Moderators(), store.Clients(),
			store.Categories(), store.Locations(), store.RefreshTokens(), geocoder, cfg),
		matching: NewMatchingService(store.Applications(), store.Customers(),
			store.Locations(), cfg.Matching),
		apps: NewApplicationService(store.Applications(), store.Media(), store.Locations(),
			store.Categories(), moderation, geocoder, files, cfg.Matching),
		customers: NewCustomerService(store.Customers(), store.Categories(),
			store.Locations(), geocoder),
	}

	f.seedClient(t, "telegram", "telegram-secret")
	return f
}

func (f *fixture) seedClient(t *testing.T, name, secret string) {
	t.Helper()
	hash, err := password.Hash(secret)
	require.NoError(t, err)
	require.NoError(t, f.store.Clients().Create(context.Background(), &models.Client{
		Name:       name,
		SecretHash: hash,
	}))
}

func (f *fixture) seedCategory(t *testing.T, name string) *models.Category {
	t.Helper()
	category := &models.Category{Name: name, IsActive: true}
	require.NoError(t, f.store.Categories().Create(context.Background(), category))
	return category
}

func (f *fixture) seedLocation(t *testing.T, lat, lon float64, address string) *models.Location {
	t.Helper()
	location, err := f.store.Locations().FindOrCreate(context.Background(), lat, lon, address)
	require.NoError(t, err)
	return location
}

// seedCustomer creates a customer directly in the store and returns the
// record as the repositories would load it
func (f *fixture) seedCustomer(t *testing.T, roleID uint, verified bool, location *models.Location, categoryIDs []uint) *models.Customer {
	t.Helper()
	ctx := context.Background()

	customer := &models.Customer{
		PhoneNum:   "+38000000000",
		TgID:       "tg-" + time.Now().Format("150405.000000000"),
		Firstname:  "Test",
		Lastname:   "Customer",
		RoleID:     roleID,
		ClientID:   1,
		IsVerified: verified,
		IsActive:   true,
	}
	if location != nil {
		customer.LocationID = &location.ID
	}
	require.NoError(t, f.store.Customers().Create(ctx, customer))
	if len(categoryIDs) > 0 {
		require.NoError(t, f.store.Customers().ReplaceCategories(ctx, customer.ID, categoryIDs))
	}

	loaded, err := f.store.Customers().GetByID(ctx, customer.ID)
	require.NoError(t, err)
	return loaded
}

// seedModerator creates a moderator with a real bcrypt password hash
func seedModerator(t *testing.T, f *fixture, phone, pass string) *models.Moderator {
	t.Helper()

	hash, err := password.Hash(pass)
	require.NoError(t, err)
	moderator := &models.Moderator{
		PhoneNumber:  phone,
		PasswordHash: hash,
		ClientID:     1,
		RoleID:       models.RoleModerator,
	}
	require.NoError(t, f.store.Moderators().Create(context.Background(), moderator))
	return moderator
}

// seedApplication creates an open application directly in the store
func (f *fixture) seedApplication(t *testing.T, creatorID, categoryID uint, location *models.Location, activeTo time.Time) *models.Application {
	t.Helper()

	app := &models.Application{
		CreatorID:   creatorID,
		CategoryID:  categoryID,
		LocationID:  location.ID,
		Description: "help needed",
		IsActive:    true,
		ActiveTo:    activeTo,
	}
	require.NoError(t, f.store.Applications().Create(context.Background(), app))
	return app
}
