package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"cardealer/internal/auth"
	apperrors "cardealer/internal/errors"
	"cardealer/internal/model"
)

// MockUserRepository is a mock implementation of repository.UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Update(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByIDSafe(ctx context.Context, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmailOrUsername(ctx context.Context, email, username string) (*model.User, error) {
	args := m.Called(ctx, email, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByVerificationOTP(ctx context.Context, email, otp string, now time.Time) (*model.User, error) {
	args := m.Called(ctx, email, otp, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByResetOTP(ctx context.Context, email, otp string, now time.Time) (*model.User, error) {
	args := m.Called(ctx, email, otp, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context) ([]model.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.User), args.Error(1)
}

func (m *MockUserRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) CountByRole(ctx context.Context, role string) (int64, error) {
	args := m.Called(ctx, role)
	return args.Get(0).(int64), args.Error(1)
}

// MockMailer is a mock implementation of mail.Mailer.
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) SendVerificationOTP(to, username, otp string) error {
	args := m.Called(to, username, otp)
	return args.Error(0)
}

func (m *MockMailer) SendPasswordResetOTP(to, otp string) error {
	args := m.Called(to, otp)
	return args.Error(0)
}

func newAuthFixture() (*MockUserRepository, *MockMailer, *auth.SessionCache, AuthService) {
	repo := new(MockUserRepository)
	mailer := new(MockMailer)
	sessions := auth.NewSessionCache(60*time.Second, 10)
	svc := NewAuthService(repo, auth.NewTokenService("test-secret"), sessions, mailer)
	return repo, mailer, sessions, svc
}

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	assert.NoError(t, err)
	return string(hashed)
}

func TestRegister_Success(t *testing.T) {
	repo, mailer, _, svc := newAuthFixture()

	repo.On("FindByEmailOrUsername", mock.Anything, "alice@example.com", "alice").
		Return(nil, gorm.ErrRecordNotFound)
	repo.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*model.User).ID = uuid.New()
		}).Return(nil)
	mailer.On("SendVerificationOTP", "alice@example.com", "alice", mock.AnythingOfType("string")).
		Return(nil)

	user, token, err := svc.Register(context.Background(), "alice", "alice@example.com", "secret123", "client")

	assert.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, model.RoleClient, user.Role)
	assert.False(t, user.IsVerified)
	assert.Len(t, user.VerificationOtp, 6)
	assert.NotNil(t, user.VerificationOtpExpireAt)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("secret123")))
	repo.AssertExpectations(t)
	mailer.AssertExpectations(t)
}

func TestRegister_UnknownRoleFallsBackToClient(t *testing.T) {
	repo, mailer, _, svc := newAuthFixture()

	repo.On("FindByEmailOrUsername", mock.Anything, "bob@example.com", "bob").
		Return(nil, gorm.ErrRecordNotFound)
	repo.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)
	mailer.On("SendVerificationOTP", "bob@example.com", "bob", mock.AnythingOfType("string")).
		Return(nil)

	user, _, err := svc.Register(context.Background(), "bob", "bob@example.com", "secret123", "superuser")

	assert.NoError(t, err)
	assert.Equal(t, model.RoleClient, user.Role)
}

func TestRegister_AlreadyExists(t *testing.T) {
	repo, mailer, _, svc := newAuthFixture()

	repo.On("FindByEmailOrUsername", mock.Anything, "alice@example.com", "alice").
		Return(&model.User{ID: uuid.New(), Email: "alice@example.com"}, nil)

	user, token, err := svc.Register(context.Background(), "alice", "alice@example.com", "secret123", "client")

	assert.ErrorIs(t, err, apperrors.ErrUserAlreadyExists)
	assert.Nil(t, user)
	assert.Empty(t, token)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	mailer.AssertNotCalled(t, "SendVerificationOTP", mock.Anything, mock.Anything, mock.Anything)
}

func TestRegister_MailFailureRollsBackUser(t *testing.T) {
	repo, mailer, _, svc := newAuthFixture()

	repo.On("FindByEmailOrUsername", mock.Anything, "alice@example.com", "alice").
		Return(nil, gorm.ErrRecordNotFound)
	repo.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)
	mailer.On("SendVerificationOTP", "alice@example.com", "alice", mock.AnythingOfType("string")).
		Return(assert.AnError)
	repo.On("Delete", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)

	user, token, err := svc.Register(context.Background(), "alice", "alice@example.com", "secret123", "client")

	assert.ErrorIs(t, err, apperrors.ErrMailDelivery)
	assert.Nil(t, user)
	assert.Empty(t, token)
	repo.AssertCalled(t, "Delete", mock.Anything, mock.AnythingOfType("*model.User"))
}

func TestLogin(t *testing.T) {
	verified := &model.User{
		ID:           uuid.New(),
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: "", // filled per test
		IsVerified:   true,
		Role:         model.RoleClient,
	}

	tests := []struct {
		name       string
		email      string
		password   string
		setup      func(t *testing.T, repo *MockUserRepository)
		wantErr    error
		wantToken  bool
		unverified bool
	}{
		{
			name:     "success",
			email:    "alice@example.com",
			password: "secret123",
			setup: func(t *testing.T, repo *MockUserRepository) {
				u := *verified
				u.PasswordHash = hashPassword(t, "secret123")
				repo.On("FindByEmail", mock.Anything, "alice@example.com").Return(&u, nil)
			},
			wantToken: true,
		},
		{
			name:     "unknown email",
			email:    "nobody@example.com",
			password: "secret123",
			setup: func(t *testing.T, repo *MockUserRepository) {
				repo.On("FindByEmail", mock.Anything, "nobody@example.com").
					Return(nil, gorm.ErrRecordNotFound)
			},
			wantErr: apperrors.ErrInvalidCredentials,
		},
		{
			name:     "wrong password",
			email:    "alice@example.com",
			password: "wrong",
			setup: func(t *testing.T, repo *MockUserRepository) {
				u := *verified
				u.PasswordHash = hashPassword(t, "secret123")
				repo.On("FindByEmail", mock.Anything, "alice@example.com").Return(&u, nil)
			},
			wantErr: apperrors.ErrInvalidCredentials,
		},
		{
			name:     "unverified account",
			email:    "alice@example.com",
			password: "secret123",
			setup: func(t *testing.T, repo *MockUserRepository) {
				u := *verified
				u.PasswordHash = hashPassword(t, "secret123")
				u.IsVerified = false
				repo.On("FindByEmail", mock.Anything, "alice@example.com").Return(&u, nil)
			},
			wantErr:    apperrors.ErrEmailNotVerified,
			unverified: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, _, _, svc := newAuthFixture()
			tt.setup(t, repo)

			user, token, err := svc.Login(context.Background(), tt.email, tt.password)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, token)
				if tt.unverified {
					// the handler needs the user to offer the resend flow
					assert.NotNil(t, user)
				}
				return
			}
			assert.NoError(t, err)
			assert.NotNil(t, user)
			if tt.wantToken {
				assert.NotEmpty(t, token)
			}
		})
	}
}

func TestLogout_InvalidatesSessionCache(t *testing.T) {
	_, _, sessions, svc := newAuthFixture()
	user := &model.User{ID: uuid.New(), Username: "alice"}
	sessions.Put(user.ID.String(), user)

	svc.Logout(context.Background(), user.ID.String())

	_, ok := sessions.Get(user.ID.String())
	assert.False(t, ok)
}

func TestVerifyEmail_Success(t *testing.T) {
	repo, _, sessions, svc := newAuthFixture()
	expireAt := time.Now().Add(10 * time.Minute)
	user := &model.User{
		ID:                      uuid.New(),
		Username:                "alice",
		Email:                   "alice@example.com",
		IsVerified:              false,
		VerificationOtp:         "123456",
		VerificationOtpExpireAt: &expireAt,
	}
	sessions.Put(user.ID.String(), user)

	repo.On("FindByVerificationOTP", mock.Anything, "alice@example.com", "123456", mock.AnythingOfType("time.Time")).
		Return(user, nil)
	repo.On("Update", mock.Anything, user).Return(nil)

	got, token, err := svc.VerifyEmail(context.Background(), "alice@example.com", "123456")

	assert.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.True(t, got.IsVerified)
	assert.Empty(t, got.VerificationOtp)
	assert.Nil(t, got.VerificationOtpExpireAt)

	_, ok := sessions.Get(user.ID.String())
	assert.False(t, ok, "stale cached snapshot is dropped on verification")
}

func TestVerifyEmail_InvalidOTP(t *testing.T) {
	repo, _, _, svc := newAuthFixture()

	repo.On("FindByVerificationOTP", mock.Anything, "alice@example.com", "000000", mock.AnythingOfType("time.Time")).
		Return(nil, gorm.ErrRecordNotFound)

	_, _, err := svc.VerifyEmail(context.Background(), "alice@example.com", "000000")
	assert.ErrorIs(t, err, apperrors.ErrInvalidOTP)
}

func TestResendVerification_AlreadyVerified(t *testing.T) {
	repo, mailer, _, svc := newAuthFixture()

	repo.On("FindByEmail", mock.Anything, "alice@example.com").
		Return(&model.User{ID: uuid.New(), Email: "alice@example.com", IsVerified: true}, nil)

	err := svc.ResendVerification(context.Background(), "alice@example.com")

	assert.ErrorIs(t, err, apperrors.ErrAlreadyVerified)
	mailer.AssertNotCalled(t, "SendVerificationOTP", mock.Anything, mock.Anything, mock.Anything)
}

func TestResendVerification_Success(t *testing.T) {
	repo, mailer, _, svc := newAuthFixture()
	user := &model.User{ID: uuid.New(), Username: "alice", Email: "alice@example.com", IsVerified: false}

	repo.On("FindByEmail", mock.Anything, "alice@example.com").Return(user, nil)
	repo.On("Update", mock.Anything, user).Return(nil)
	mailer.On("SendVerificationOTP", "alice@example.com", "alice", mock.AnythingOfType("string")).
		Return(nil)

	err := svc.ResendVerification(context.Background(), "alice@example.com")

	assert.NoError(t, err)
	assert.Len(t, user.VerificationOtp, 6)
	assert.NotNil(t, user.VerificationOtpExpireAt)
}

func TestRequestPasswordReset_UnknownUser(t *testing.T) {
	repo, mailer, _, svc := newAuthFixture()

	repo.On("FindByEmail", mock.Anything, "nobody@example.com").
		Return(nil, gorm.ErrRecordNotFound)

	err := svc.RequestPasswordReset(context.Background(), "nobody@example.com")

	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
	mailer.AssertNotCalled(t, "SendPasswordResetOTP", mock.Anything, mock.Anything)
}

func TestResetPassword_Success(t *testing.T) {
	repo, _, sessions, svc := newAuthFixture()
	expireAt := time.Now().Add(10 * time.Minute)
	user := &model.User{
		ID:               uuid.New(),
		Email:            "alice@example.com",
		PasswordHash:     hashPassword(t, "old-password"),
		ResetOtp:         "654321",
		ResetOtpExpireAt: &expireAt,
	}
	sessions.Put(user.ID.String(), user)

	repo.On("FindByResetOTP", mock.Anything, "alice@example.com", "654321", mock.AnythingOfType("time.Time")).
		Return(user, nil)
	repo.On("Update", mock.Anything, user).Return(nil)

	err := svc.ResetPassword(context.Background(), "alice@example.com", "654321", "new-password")

	assert.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("new-password")))
	assert.Empty(t, user.ResetOtp)
	assert.Nil(t, user.ResetOtpExpireAt)

	_, ok := sessions.Get(user.ID.String())
	assert.False(t, ok, "sessions issued before the reset are dropped from the cache")
}

func TestResetPassword_InvalidOTP(t *testing.T) {
	repo, _, _, svc := newAuthFixture()

	repo.On("FindByResetOTP", mock.Anything, "alice@example.com", "000000", mock.AnythingOfType("time.Time")).
		Return(nil, gorm.ErrRecordNotFound)

	err := svc.ResetPassword(context.Background(), "alice@example.com", "000000", "new-password")
	assert.ErrorIs(t, err, apperrors.ErrInvalidOTP)
}
