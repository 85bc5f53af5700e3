// Package auth issues and validates access tokens.
package auth

import (
	"errors"
	"time"

	"github.com/pharmacy/backend/internal/domain/identity"
	"github.com/pharmacy/backend/internal/infrastructure/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken  = errors.New("invalid token")
	ErrExpiredToken  = errors.New("token has expired")
	ErrInvalidClaims = errors.New("invalid token claims")
)

// Claims are the custom JWT claims carried by an access token
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

// JWTService signs and validates access tokens
type JWTService struct {
	secret     []byte
	expiration time.Duration
	issuer     string
}

// NewJWTService creates a JWT service from configuration
func NewJWTService(cfg config.JWTConfig) *JWTService {
	expiration := cfg.Expiration
	if expiration <= 0 {
		expiration = 24 * time.Hour
	}
	return &JWTService{
		secret:     []byte(cfg.Secret),
		expiration: expiration,
		issuer:     cfg.Issuer,
	}
}

// Generate signs an access token for the user
func (s *JWTService) Generate(userID uuid.UUID, role identity.Role) (string, error) {
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Issuer:    s.issuer,
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiration)),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		UserID: userID.String(),
		Role:   string(role),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Validate parses a token and returns the authenticated principal
func (s *JWTService) Validate(tokenString string) (uuid.UUID, identity.Role, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return uuid.Nil, "", ErrExpiredToken
		}
		return uuid.Nil, "", ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return uuid.Nil, "", ErrInvalidClaims
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return uuid.Nil, "", ErrInvalidClaims
	}
	role := identity.Role(claims.Role)
	if !role.IsValid() {
		return uuid.Nil, "", ErrInvalidClaims
	}
	return userID, role, nil
}
