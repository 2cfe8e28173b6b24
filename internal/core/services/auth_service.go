package services

import (
	"context"
	"errors"
	"log"

	"helpbridge/internal/adapters/persistence/models"
	"helpbridge/internal/adapters/persistence/repositories"
	"helpbridge/internal/config"
	"helpbridge/internal/core/domain"
	"helpbridge/internal/pkg/jwt"
	"helpbridge/internal/pkg/password"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AuthService handles registration, login and token lifecycle
type AuthService struct {
	customerRepo     repositories.CustomerRepository
	moderatorRepo    repositories.ModeratorRepository
	clientRepo       repositories.ClientRepository
	categoryRepo     repositories.CategoryRepository
	locationRepo     repositories.LocationRepository
	refreshTokenRepo repositories.RefreshTokenRepository
	geocoder         Geocoder
	cfg              *config.Config
}

// NewAuthService creates a new auth service
func NewAuthService(
	customerRepo repositories.CustomerRepository,
	moderatorRepo repositories.ModeratorRepository,
	clientRepo repositories.ClientRepository,
	categoryRepo repositories.CategoryRepository,
	locationRepo repositories.LocationRepository,
	refreshTokenRepo repositories.RefreshTokenRepository,
	geocoder Geocoder,
	cfg *config.Config,
) *AuthService {
	return &AuthService{
		customerRepo:     customerRepo,
		moderatorRepo:    moderatorRepo,
		clientRepo:       clientRepo,
		categoryRepo:     categoryRepo,
		locationRepo:     locationRepo,
		refreshTokenRepo: refreshTokenRepo,
		geocoder:         geocoder,
		cfg:              cfg,
	}
}

// Principal is the authenticated caller, resolved from token claims. Exactly
// one of Customer and Moderator is set.
type Principal struct {
	Customer  *models.Customer
	Moderator *models.Moderator
}

// ID returns the principal's ID within its partition
func (p *Principal) ID() uint {
	if p.Moderator != nil {
		return p.Moderator.ID
	}
	return p.Customer.ID
}

// RoleID returns the principal's numeric role
func (p *Principal) RoleID() uint {
	if p.Moderator != nil {
		return p.Moderator.RoleID
	}
	return p.Customer.RoleID
}

// RegisterInput represents registration input
type RegisterInput struct {
	PhoneNum     string   `json:"phone_num" validate:"required"`
	TgID         string   `json:"tg_id" validate:"required"`
	Firstname    string   `json:"firstname" validate:"required"`
	Lastname     string   `json:"lastname"`
	Patronymic   string   `json:"patronymic"`
	RoleID       uint     `json:"role_id" validate:"required"`
	ClientName   string   `json:"client_name" validate:"required"`
	ClientSecret string   `json:"client_secret" validate:"required"`
	Address      string   `json:"address"`
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
	CategoryIDs  []uint   `json:"category_ids"`
}

// LoginInput represents customer login input
type LoginInput struct {
	TgID         string `json:"tg_id" validate:"required"`
	RoleID       uint   `json:"role_id" validate:"required"`
	ClientName   string `json:"client_name" validate:"required"`
	ClientSecret string `json:"client_secret" validate:"required"`
}

// ModeratorLoginInput represents moderator login input
type ModeratorLoginInput struct {
	PhoneNumber  string `json:"phone_number" validate:"required"`
	Password     string `json:"password" validate:"required"`
	ClientName   string `json:"client_name" validate:"required"`
	ClientSecret string `json:"client_secret" validate:"required"`
}

// TokenPair represents access and refresh tokens
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// AuthResponse represents authentication response
type AuthResponse struct {
	Customer     *models.CustomerResponse `json:"customer,omitempty"`
	AccessToken  string                   `json:"access_token"`
	RefreshToken string                   `json:"refresh_token"`
}

// Register registers a new beneficiary or volunteer
func (s *AuthService) Register(ctx context.Context, input *RegisterInput) (*AuthResponse, error) {
	// 1. Only the customer roles may self-register
	if input.RoleID != models.RoleBeneficiary && input.RoleID != models.RoleVolunteer {
		return nil, domain.ErrWrongRole
	}

	// 2. Authenticate the calling channel
	client, err := s.authenticateClient(ctx, input.ClientName, input.ClientSecret)
	if err != nil {
		return nil, err
	}

	// 3. Reject duplicates among active customers of the same role
	exists, err := s.customerRepo.ExistsActiveByTgID(ctx, input.TgID, input.RoleID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrUserAlreadyExists
	}
	exists, err = s.customerRepo.ExistsActiveByPhone(ctx, input.PhoneNum, input.RoleID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrUserAlreadyExists
	}

	// 4. Resolve location. Volunteers need one for distance matching,
	// beneficiaries pin locations to applications instead.
	var locationID *uint
	hasLocation := input.Address != "" || input.Latitude != nil || input.Longitude != nil
	if input.RoleID == models.RoleVolunteer {
		location, err := s.resolveLocation(ctx, input.Address, input.Latitude, input.Longitude)
		if err != nil {
			return nil, err
		}
		locationID = &location.ID
	} else if hasLocation {
		return nil, domain.ErrLocationForbidden
	}

	// 5. Validate category subscriptions. They drive volunteer matching
	// only, so beneficiaries may not carry them.
	if len(input.CategoryIDs) > 0 {
		if input.RoleID != models.RoleVolunteer {
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
	}

	// 6. Create customer, unverified until a moderator approves
	customer := &models.Customer{
		PhoneNum:   input.PhoneNum,
		TgID:       input.TgID,
		Firstname:  input.Firstname,
		Lastname:   input.Lastname,
		Patronymic: input.Patronymic,
		RoleID:     input.RoleID,
		ClientID:   client.ID,
		LocationID: locationID,
		IsVerified: false,
		IsActive:   true,
	}
	if err := s.customerRepo.Create(ctx, customer); err != nil {
		return nil, err
	}

	if len(input.CategoryIDs) > 0 {
		if err := s.customerRepo.ReplaceCategories(ctx, customer.ID, input.CategoryIDs); err != nil {
			return nil, err
		}
	}

	// 7. Reload with location and subscriptions attached
	created, err := s.customerRepo.GetByID(ctx, customer.ID)
	if err != nil {
		return nil, err
	}

	// 8. Issue the token pair
	tokens, err := s.generateTokens(ctx, created.ID, created.RoleID, input.ClientName)
	if err != nil {
		return nil, err
	}

	log.Printf("✅ Customer registered: tg_id=%s role=%d", created.TgID, created.RoleID)

	return &AuthResponse{
		Customer:     created.ToResponse(),
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	}, nil
}

// Login authenticates a customer through a known channel
func (s *AuthService) Login(ctx context.Context, input *LoginInput) (*AuthResponse, error) {
	// 1. Authenticate the calling channel
	if _, err := s.authenticateClient(ctx, input.ClientName, input.ClientSecret); err != nil {
		return nil, err
	}

	// 2. Look up the customer in its role partition
	customer, err := s.customerRepo.GetByTgIDAndRole(ctx, input.TgID, input.RoleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	// 3. Inactive or unverified customers cannot open sessions
	if !customer.IsActive {
		return nil, domain.ErrInactive
	}
	if !customer.IsVerified {
		return nil, domain.ErrNotVerified
	}

	// 4. Issue the token pair
	tokens, err := s.generateTokens(ctx, customer.ID, customer.RoleID, input.ClientName)
	if err != nil {
		return nil, err
	}

	log.Printf("✅ Customer logged in: tg_id=%s role=%d", customer.TgID, customer.RoleID)

	return &AuthResponse{
		Customer:     customer.ToResponse(),
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	}, nil
}

// ModeratorLogin authenticates a moderator with phone and password
func (s *AuthService) ModeratorLogin(ctx context.Context, input *ModeratorLoginInput) (*AuthResponse, error) {
	// 1. Authenticate the calling channel
	if _, err := s.authenticateClient(ctx, input.ClientName, input.ClientSecret); err != nil {
		return nil, err
	}

	// 2. Look up the moderator
	moderator, err := s.moderatorRepo.GetByPhone(ctx, input.PhoneNumber)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	// 3. Verify password
	if !password.Verify(input.Password, moderator.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}

	// 4. Issue the token pair
	tokens, err := s.generateTokens(ctx, moderator.ID, moderator.RoleID, input.ClientName)
	if err != nil {
		return nil, err
	}

	log.Printf("✅ Moderator logged in: id=%d", moderator.ID)

	return &AuthResponse{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	}, nil
}

// Refresh exchanges a valid refresh token for a fresh pair. The old token is
// revoked before the new one is issued (rotation), and the principal behind
// the token must still exist, be active and be verified.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	// 1. Validate the refresh token signature and expiry
	claims, err := jwt.ValidateRefreshToken(refreshToken, s.cfg.JWT.RefreshSecret)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrTokenExpired
		}
		return nil, domain.ErrTokenInvalid
	}

	// 2. Find the stored token by its hash
	tokenHash := password.HashToken(refreshToken)
	storedToken, err := s.refreshTokenRepo.GetByTokenHash(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrTokenInvalid
		}
		return nil, err
	}
	if storedToken.IsRevoked() {
		return nil, domain.ErrTokenInvalid
	}
	if storedToken.IsExpired() {
		return nil, domain.ErrTokenExpired
	}

	// 3. Stale-token defense: the principal must still be usable
	if err := s.checkPrincipalAlive(ctx, claims.PrincipalID, claims.RoleID); err != nil {
		return nil, err
	}

	// 4. Rotate: revoke the old token, then issue and store a new pair
	if err := s.refreshTokenRepo.Revoke(ctx, storedToken.ID); err != nil {
		return nil, err
	}
	tokens, err := s.generateTokens(ctx, claims.PrincipalID, claims.RoleID, claims.Client)
	if err != nil {
		return nil, err
	}

	log.Printf("✅ Token refreshed: principal=%d role=%d", claims.PrincipalID, claims.RoleID)
	return tokens, nil
}

// Logout revokes the presented refresh token
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	tokenHash := password.HashToken(refreshToken)
	return s.refreshTokenRepo.RevokeByTokenHash(ctx, tokenHash)
}

// LogoutAll revokes every refresh token of a principal
func (s *AuthService) LogoutAll(ctx context.Context, principalID, roleID uint) error {
	if err := s.refreshTokenRepo.RevokeAllByPrincipal(ctx, principalID, roleID); err != nil {
		return err
	}
	log.Printf("✅ All sessions revoked: principal=%d role=%d", principalID, roleID)
	return nil
}

// ValidateAccessToken validates an access token
func (s *AuthService) ValidateAccessToken(accessToken string) (*jwt.Claims, error) {
	return jwt.ValidateAccessToken(accessToken, s.cfg.JWT.Secret)
}

// ResolvePrincipal loads the principal behind token claims. Moderator role
// resolves against the moderators table, customer roles against customers
// with the role claim cross-checked.
func (s *AuthService) ResolvePrincipal(ctx context.Context, principalID, roleID uint) (*Principal, error) {
	if roleID == models.RoleModerator {
		moderator, err := s.moderatorRepo.GetByID(ctx, principalID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, domain.ErrPrincipalGone
			}
			return nil, err
		}
		return &Principal{Moderator: moderator}, nil
	}

	customer, err := s.customerRepo.GetByID(ctx, principalID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrPrincipalGone
		}
		return nil, err
	}
	if customer.RoleID != roleID {
		return nil, domain.ErrWrongRole
	}
	if !customer.IsActive {
		return nil, domain.ErrInactive
	}
	return &Principal{Customer: customer}, nil
}

// authenticateClient verifies a channel's name and secret
func (s *AuthService) authenticateClient(ctx context.Context, name, secret string) (*models.Client, error) {
	client, err := s.clientRepo.GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrClientNotFound
		}
		return nil, err
	}
	if !password.Verify(secret, client.SecretHash) {
		return nil, domain.ErrInvalidCredentials
	}
	return client, nil
}

// resolveLocation turns registration input into a deduplicated location row
func (s *AuthService) resolveLocation(ctx context.Context, address string, latitude, longitude *float64) (*models.Location, error) {
	return ResolveLocation(ctx, s.geocoder, s.locationRepo, address, latitude, longitude)
}

// checkPrincipalAlive rejects refreshes whose principal disappeared or lost
// its standing since the token was issued
func (s *AuthService) checkPrincipalAlive(ctx context.Context, principalID, roleID uint) error {
	if roleID == models.RoleModerator {
		if _, err := s.moderatorRepo.GetByID(ctx, principalID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrPrincipalGone
			}
			return err
		}
		return nil
	}

	customer, err := s.customerRepo.GetByID(ctx, principalID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrPrincipalGone
		}
		return err
	}
	if !customer.IsActive {
		return domain.ErrPrincipalGone
	}
	if !customer.IsVerified {
		return domain.ErrNotVerified
	}
	return nil
}

// generateTokens issues an access/refresh pair and stores the refresh
// token's hash for rotation and revocation
func (s *AuthService) generateTokens(ctx context.Context, principalID, roleID uint, clientName string) (*TokenPair, error) {
	accessToken, err := jwt.GenerateAccessToken(principalID, roleID, clientName,
		s.cfg.JWT.Secret, s.cfg.JWT.AccessTokenMins)
	if err != nil {
		return nil, err
	}

	tokenID := uuid.NewString()
	refreshToken, err := jwt.GenerateRefreshToken(principalID, roleID, clientName, tokenID,
		s.cfg.JWT.RefreshSecret, s.cfg.JWT.RefreshTokenDays)
	if err != nil {
		return nil, err
	}

	stored := &models.RefreshToken{
		PrincipalID: principalID,
		RoleID:      roleID,
		TokenHash:   password.HashToken(refreshToken),
		ExpiresAt:   jwt.GetExpiryTime(s.cfg.JWT.RefreshTokenDays),
	}
	if err := s.refreshTokenRepo.Create(ctx, stored); err != nil {
		return nil, err
	}

	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}
