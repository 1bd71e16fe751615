package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

// TokenExpiry is the lifetime of a session credential.
const TokenExpiry = 7 * 24 * time.Hour

var (
	// ErrNoSecret is returned when issuing a token without a configured secret.
	ErrNoSecret = errors.New("jwt secret not configured")
	// ErrInvalidToken is returned for malformed, mis-signed or expired tokens.
	ErrInvalidToken = errors.New("invalid token")
)

// Claims carries the user identity inside a session token.
type Claims struct {
	UserID string `json:"id"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies HS256-signed session tokens. It is
// stateless: a signed token stays valid until expiry or secret rotation.
type TokenService struct {
	secret []byte
}

// NewTokenService creates a token service with the given signing secret.
func NewTokenService(secret string) *TokenService {
	return &TokenService{secret: []byte(secret)}
}

// Issue signs a session token for the given user id, valid for TokenExpiry.
func (s *TokenService) Issue(userID uuid.UUID) (string, error) {
	if len(s.secret) == 0 {
		return "", ErrNoSecret
	}
	now := time.Now()
	claims := &Claims{
		UserID: userID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenExpiry)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify checks signature and expiry and returns the embedded user id.
func (s *TokenService) Verify(tokenString string) (uuid.UUID, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return uuid.Nil, ErrInvalidToken
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}
	return userID, nil
}
