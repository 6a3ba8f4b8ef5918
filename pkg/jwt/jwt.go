package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

// ParentalClaims are the claims carried by a parental-portal session token
type ParentalClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// RoleParent marks a token issued after a successful PIN unlock
const RoleParent = "parent"

// Service signs and validates parental session tokens
type Service struct {
	secretKey string
	expiry    time.Duration
}

// NewService creates a new JWT service
func NewService(secretKey string, expiry time.Duration) *Service {
	if expiry == 0 {
		expiry = 30 * time.Minute
	}
	return &Service{
		secretKey: secretKey,
		expiry:    expiry,
	}
}

// GenerateParentToken issues a short-lived token for the parental portal
func (s *Service) GenerateParentToken() (string, error) {
	now := time.Now()
	claims := &ParentalClaims{
		Role: RoleParent,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.secretKey))
}

// ValidateToken validates a parental session token and returns its claims
func (s *Service) ValidateToken(tokenString string) (*ParentalClaims, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&ParentalClaims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, ErrInvalidToken
			}
			return []byte(s.secretKey), nil
		},
	)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*ParentalClaims)
	if !ok || !token.Valid || claims.Role != RoleParent {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
