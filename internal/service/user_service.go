package service

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"cardealer/internal/auth"
	"cardealer/internal/errors"
	"cardealer/internal/model"
	"cardealer/internal/repository"
)

// ProfileUpdate carries the optional fields of a profile update. Empty
// strings leave the current value untouched.
type ProfileUpdate struct {
	Username       string
	Email          string
	Password       string
	ProfilePicture string
}

// StatusSummary is the admin dashboard counter set.
type StatusSummary struct {
	UserCount  int64 `json:"userCount"`
	CarCount   int64 `json:"carCount"`
	AdminCount int64 `json:"adminCount"`
}

// UserService exposes profile and admin user management operations.
type UserService interface {
	GetProfile(ctx context.Context, id uuid.UUID) (*model.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, update ProfileUpdate) (*model.User, string, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	DeleteUser(ctx context.Context, id uuid.UUID) error
	PromoteUser(ctx context.Context, actorID, targetID uuid.UUID) (*model.User, error)
	DemoteUser(ctx context.Context, targetID uuid.UUID) (*model.User, error)
	StatusSummary(ctx context.Context) (*StatusSummary, error)
}

type userService struct {
	users    repository.UserRepository
	cars     repository.CarRepository
	tokens   *auth.TokenService
	sessions *auth.SessionCache
}

// NewUserService builds a UserService.
func NewUserService(users repository.UserRepository, cars repository.CarRepository, tokens *auth.TokenService, sessions *auth.SessionCache) UserService {
	return &userService{users: users, cars: cars, tokens: tokens, sessions: sessions}
}

func (s *userService) GetProfile(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, err := s.users.FindByIDSafe(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// UpdateProfile applies the given changes, invalidates the cached identity
// and re-issues a session token.
func (s *userService) UpdateProfile(ctx context.Context, id uuid.UUID, update ProfileUpdate) (*model.User, string, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, "", errors.ErrUserNotFound
		}
		return nil, "", err
	}

	if update.Username != "" {
		user.Username = update.Username
	}
	if update.Email != "" {
		user.Email = update.Email
	}
	if update.ProfilePicture != "" {
		user.ProfilePicture = update.ProfilePicture
	}
	if update.Password != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(update.Password), bcryptCost)
		if err != nil {
			return nil, "", fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = string(hashed)
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, "", fmt.Errorf("update profile: %w", err)
	}
	s.sessions.Invalidate(user.ID.String())

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}
	return user, token, nil
}

func (s *userService) ListUsers(ctx context.Context) ([]model.User, error) {
	return s.users.List(ctx)
}

// DeleteUser removes an account, refusing to delete the last admin.
func (s *userService) DeleteUser(ctx context.Context, id uuid.UUID) error {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return errors.ErrUserNotFound
		}
		return err
	}

	if user.IsAdmin() {
		adminCount, err := s.users.CountByRole(ctx, model.RoleAdmin)
		if err != nil {
			return fmt.Errorf("count admins: %w", err)
		}
		if adminCount <= 1 {
			return errors.ErrLastAdmin
		}
	}

	if err := s.users.Delete(ctx, user); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	s.sessions.Invalidate(user.ID.String())
	return nil
}

// PromoteUser raises target to admin. Promoting yourself or an existing
// admin is rejected.
func (s *userService) PromoteUser(ctx context.Context, actorID, targetID uuid.UUID) (*model.User, error) {
	if actorID == targetID {
		return nil, errors.ErrSelfPromotion
	}

	user, err := s.users.FindByID(ctx, targetID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrUserNotFound
		}
		return nil, err
	}
	if user.IsAdmin() {
		return user, errors.ErrAlreadyAdmin
	}

	user.Role = model.RoleAdmin
	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("promote user: %w", err)
	}
	s.sessions.Invalidate(user.ID.String())
	log.Printf("[audit] %s promoted user %s", actorID, user.ID)
	return user, nil
}

// DemoteUser lowers an admin back to client, never the last one.
func (s *userService) DemoteUser(ctx context.Context, targetID uuid.UUID) (*model.User, error) {
	user, err := s.users.FindByID(ctx, targetID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrUserNotFound
		}
		return nil, err
	}
	if !user.IsAdmin() {
		return nil, errors.ErrNotAdmin
	}

	adminCount, err := s.users.CountByRole(ctx, model.RoleAdmin)
	if err != nil {
		return nil, fmt.Errorf("count admins: %w", err)
	}
	if adminCount <= 1 {
		return nil, errors.ErrLastAdmin
	}

	user.Role = model.RoleClient
	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("demote user: %w", err)
	}
	s.sessions.Invalidate(user.ID.String())
	return user, nil
}

func (s *userService) StatusSummary(ctx context.Context) (*StatusSummary, error) {
	userCount, err := s.users.Count(ctx)
	if err != nil {
		return nil, err
	}
	carCount, err := s.cars.Count(ctx)
	if err != nil {
		return nil, err
	}
	adminCount, err := s.users.CountByRole(ctx, model.RoleAdmin)
	if err != nil {
		return nil, err
	}
	return &StatusSummary{UserCount: userCount, CarCount: carCount, AdminCount: adminCount}, nil
}
