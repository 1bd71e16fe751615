package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestTokenService_IssueAndVerify(t *testing.T) {
	svc := NewTokenService("test-secret")
	userID := uuid.New()

	token, err := svc.Issue(userID)
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	got, err := svc.Verify(token)
	assert.NoError(t, err)
	assert.Equal(t, userID, got)
}

func TestTokenService_IssueWithoutSecret(t *testing.T) {
	svc := NewTokenService("")

	token, err := svc.Issue(uuid.New())
	assert.ErrorIs(t, err, ErrNoSecret)
	assert.Empty(t, token)
}

func TestTokenService_VerifyFailures(t *testing.T) {
	svc := NewTokenService("test-secret")
	userID := uuid.New()

	valid, err := svc.Issue(userID)
	assert.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{
			name:  "malformed token",
			token: "not-a-jwt",
		},
		{
			name: "tampered payload",
			token: func() string {
				parts := strings.Split(valid, ".")
				payload := []byte(parts[1])
				// flip one bit of the signed payload
				payload[len(payload)/2] ^= 0x01
				parts[1] = string(payload)
				return strings.Join(parts, ".")
			}(),
		},
		{
			name: "signed with a different secret",
			token: func() string {
				other := NewTokenService("other-secret")
				token, err := other.Issue(userID)
				assert.NoError(t, err)
				return token
			}(),
		},
		{
			name: "expired",
			token: func() string {
				claims := &Claims{
					UserID: userID.String(),
					RegisteredClaims: jwt.RegisteredClaims{
						IssuedAt:  jwt.NewNumericDate(time.Now().Add(-8 * 24 * time.Hour)),
						ExpiresAt: jwt.NewNumericDate(time.Now().Add(-24 * time.Hour)),
					},
				}
				token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
				assert.NoError(t, err)
				return token
			}(),
		},
		{
			name: "subject is not a uuid",
			token: func() string {
				claims := &Claims{
					UserID: "42",
					RegisteredClaims: jwt.RegisteredClaims{
						ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
					},
				}
				token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
				assert.NoError(t, err)
				return token
			}(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.Verify(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
			assert.Equal(t, uuid.Nil, got)
		})
	}
}
