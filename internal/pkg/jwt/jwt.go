package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrTokenExpired = errors.New("token has expired")
	ErrTokenInvalid = errors.New("token is invalid")
)

// Claims carries the identity of an authenticated principal. RoleID uses the
// numeric taxonomy (1 beneficiary, 2 volunteer, 3 moderator) and Client names
// the calling channel ("frontend" or "telegram").
type Claims struct {
	PrincipalID uint   `json:"principal_id"`
	RoleID      uint   `json:"role_id"`
	Client      string `json:"client"`
	jwt.RegisteredClaims
}

// RefreshClaims carries the same identity plus a unique token ID so issued
// refresh tokens can be tracked and revoked individually.
type RefreshClaims struct {
	PrincipalID uint   `json:"principal_id"`
	RoleID      uint   `json:"role_id"`
	Client      string `json:"client"`
	TokenID     string `json:"token_id"`
	jwt.RegisteredClaims
}

// GenerateAccessToken signs a new access token with HS256.
func GenerateAccessToken(principalID, roleID uint, client, secret string, expiryMinutes int) (string, error) {
	claims := Claims{
		PrincipalID: principalID,
		RoleID:      roleID,
		Client:      client,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Duration(expiryMinutes) * time.Minute)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
			Issuer:    "helpbridge",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// GenerateRefreshToken signs a new refresh token with HS256.
func GenerateRefreshToken(principalID, roleID uint, client, tokenID, secret string, expiryDays int) (string, error) {
	claims := RefreshClaims{
		PrincipalID: principalID,
		RoleID:      roleID,
		Client:      client,
		TokenID:     tokenID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Duration(expiryDays) * 24 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
			Issuer:    "helpbridge",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ValidateAccessToken verifies signature and expiry and returns the claims.
// Tokens without a principal or role claim are rejected as invalid.
func ValidateAccessToken(tokenString, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return []byte(secret), nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}
	if claims.PrincipalID == 0 || claims.RoleID == 0 {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// ValidateRefreshToken verifies signature and expiry and returns the claims.
func ValidateRefreshToken(tokenString, secret string) (*RefreshClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &RefreshClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return []byte(secret), nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(*RefreshClaims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}
	if claims.PrincipalID == 0 || claims.RoleID == 0 {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// GetExpiryTime returns the expiry time for a refresh token issued now.
func GetExpiryTime(days int) time.Time {
	return time.Now().Add(time.Duration(days) * 24 * time.Hour)
}
