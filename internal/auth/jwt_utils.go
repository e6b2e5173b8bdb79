package auth

import (
	"errors"
	"time"

	"go-ticket-pos/internal/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	jwtKey   []byte
	tokenTTL = 24 * time.Hour
)

// Configure sets the signing secret and token lifetime. Call once at startup.
func Configure(settings config.AuthSettings) {
	jwtKey = []byte(settings.JWTSecret)
	if settings.TokenTTL > 0 {
		tokenTTL = settings.TokenTTL
	}
}

// Claims defines what is inside the token (The "ID Card")
type Claims struct {
	UserID   uint   `json:"user_id"`
	RoleID   uint   `json:"role_id"`
	TenantID uint   `json:"tenant_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// GenerateToken creates a signed JWT for a user. The returned claims carry the token ID
// needed to revoke it on logout.
func GenerateToken(userID, roleID, tenantID uint, username string) (string, *Claims, error) {
	if len(jwtKey) == 0 {
		return "", nil, errors.New("auth not configured")
	}

	now := time.Now()
	claims := &Claims{
		UserID:   userID,
		RoleID:   roleID,
		TenantID: tenantID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(jwtKey)
	if err != nil {
		return "", nil, err
	}
	return signed, claims, nil
}

// ValidateToken checks if a token is fake or expired
func ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return jwtKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	return claims, nil
}
