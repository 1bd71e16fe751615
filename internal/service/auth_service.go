package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"cardealer/internal/auth"
	"cardealer/internal/errors"
	"cardealer/internal/mail"
	"cardealer/internal/model"
	"cardealer/internal/repository"
)

const (
	bcryptCost = 10
	otpExpiry  = 15 * time.Minute
)

// AuthService handles registration, login and the OTP flows.
type AuthService interface {
	Register(ctx context.Context, username, email, password, role string) (*model.User, string, error)
	Login(ctx context.Context, email, password string) (*model.User, string, error)
	Logout(ctx context.Context, userID string)
	VerifyEmail(ctx context.Context, email, otp string) (*model.User, string, error)
	ResendVerification(ctx context.Context, email string) error
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, email, otp, newPassword string) error
}

type authService struct {
	users    repository.UserRepository
	tokens   *auth.TokenService
	sessions *auth.SessionCache
	mailer   mail.Mailer
}

// NewAuthService creates a new authentication service.
func NewAuthService(users repository.UserRepository, tokens *auth.TokenService, sessions *auth.SessionCache, mailer mail.Mailer) AuthService {
	return &authService{
		users:    users,
		tokens:   tokens,
		sessions: sessions,
		mailer:   mailer,
	}
}

// Register creates an unverified user, mails a verification OTP and issues a
// session token. If the mail cannot be delivered the user is rolled back so
// the address can register again.
func (s *authService) Register(ctx context.Context, username, email, password, role string) (*model.User, string, error) {
	existing, err := s.users.FindByEmailOrUsername(ctx, email, username)
	if err == nil && existing != nil {
		return nil, "", errors.ErrUserAlreadyExists
	}
	if err != nil && err != gorm.ErrRecordNotFound {
		return nil, "", fmt.Errorf("check user existence: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	otp, err := mail.GenerateOTP()
	if err != nil {
		return nil, "", err
	}
	otpExpireAt := time.Now().Add(otpExpiry)

	if role != model.RoleAdmin {
		role = model.RoleClient
	}

	user := &model.User{
		Username:                username,
		Email:                   email,
		PasswordHash:            string(hashed),
		Role:                    role,
		IsActive:                true,
		IsVerified:              false,
		VerificationOtp:         otp,
		VerificationOtpExpireAt: &otpExpireAt,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, "", fmt.Errorf("create user: %w", err)
	}

	if err := s.mailer.SendVerificationOTP(email, username, otp); err != nil {
		log.Printf("[register] verification mail to %s failed: %v", email, err)
		if delErr := s.users.Delete(ctx, user); delErr != nil {
			log.Printf("[register] rollback of %s failed: %v", user.ID, delErr)
		}
		return nil, "", errors.ErrMailDelivery
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}
	return user, token, nil
}

// Login verifies credentials and issues a session token. Unverified accounts
// are rejected with ErrEmailNotVerified so the frontend can offer the OTP
// resend flow.
func (s *authService) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, "", errors.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", errors.ErrInvalidCredentials
	}

	if !user.IsVerified {
		return user, "", errors.ErrEmailNotVerified
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}
	return user, token, nil
}

// Logout purges the local session-cache entry for the user. The token itself
// stays cryptographically valid until expiry; the cookie is cleared at the
// handler layer.
func (s *authService) Logout(_ context.Context, userID string) {
	s.sessions.Invalidate(userID)
}

// VerifyEmail consumes a verification OTP, marks the account verified and
// issues a fresh session token.
func (s *authService) VerifyEmail(ctx context.Context, email, otp string) (*model.User, string, error) {
	user, err := s.users.FindByVerificationOTP(ctx, email, otp, time.Now())
	if err != nil {
		return nil, "", errors.ErrInvalidOTP
	}

	user.IsVerified = true
	user.VerificationOtp = ""
	user.VerificationOtpExpireAt = nil
	if err := s.users.Update(ctx, user); err != nil {
		return nil, "", fmt.Errorf("mark verified: %w", err)
	}
	s.sessions.Invalidate(user.ID.String())

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}
	return user, token, nil
}

// ResendVerification regenerates the verification OTP and resends the mail.
func (s *authService) ResendVerification(ctx context.Context, email string) error {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return errors.ErrUserNotFound
	}
	if user.IsVerified {
		return errors.ErrAlreadyVerified
	}

	otp, err := mail.GenerateOTP()
	if err != nil {
		return err
	}
	expireAt := time.Now().Add(otpExpiry)
	user.VerificationOtp = otp
	user.VerificationOtpExpireAt = &expireAt
	if err := s.users.Update(ctx, user); err != nil {
		return fmt.Errorf("store verification otp: %w", err)
	}

	if err := s.mailer.SendVerificationOTP(user.Email, user.Username, otp); err != nil {
		return errors.ErrMailDelivery
	}
	return nil
}

// RequestPasswordReset generates a reset OTP and mails it.
func (s *authService) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return errors.ErrUserNotFound
	}

	otp, err := mail.GenerateOTP()
	if err != nil {
		return err
	}
	expireAt := time.Now().Add(otpExpiry)
	user.ResetOtp = otp
	user.ResetOtpExpireAt = &expireAt
	if err := s.users.Update(ctx, user); err != nil {
		return fmt.Errorf("store reset otp: %w", err)
	}

	if err := s.mailer.SendPasswordResetOTP(user.Email, otp); err != nil {
		return errors.ErrMailDelivery
	}
	return nil
}

// ResetPassword consumes a reset OTP and replaces the password.
func (s *authService) ResetPassword(ctx context.Context, email, otp, newPassword string) error {
	user, err := s.users.FindByResetOTP(ctx, email, otp, time.Now())
	if err != nil {
		return errors.ErrInvalidOTP
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	user.PasswordHash = string(hashed)
	user.ResetOtp = ""
	user.ResetOtpExpireAt = nil
	if err := s.users.Update(ctx, user); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	s.sessions.Invalidate(user.ID.String())
	return nil
}
