package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"cardealer/internal/auth"
	"cardealer/internal/errors"
	"cardealer/internal/middleware"
	"cardealer/internal/model"
	"cardealer/internal/service"
)

// AuthHandler handles registration, login and the OTP endpoints.
type AuthHandler struct {
	authService   service.AuthService
	secureCookies bool
}

// NewAuthHandler creates a new auth handler. secureCookies should be true in
// production so the session cookie carries the Secure flag.
func NewAuthHandler(authService service.AuthService, secureCookies bool) *AuthHandler {
	return &AuthHandler{authService: authService, secureCookies: secureCookies}
}

// RegisterRequest represents a user registration request.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role" validate:"omitempty,oneof=client admin"`
}

// LoginRequest represents a login request.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// VerifyEmailRequest carries a verification OTP.
type VerifyEmailRequest struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required,len=6"`
}

// EmailRequest carries just an email address.
type EmailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordRequest carries a reset OTP and the new password.
type ResetPasswordRequest struct {
	Email       string `json:"email" validate:"required,email"`
	OTP         string `json:"otp" validate:"required,len=6"`
	NewPassword string `json:"newPassword" validate:"required,min=6"`
}

// authView is the user payload returned by the auth endpoints, matching the
// shape the frontend consumes.
func authView(user *model.User, token string) echo.Map {
	view := echo.Map{
		"_id":        user.ID,
		"username":   user.Username,
		"email":      user.Email,
		"role":       user.Role,
		"isVerified": user.IsVerified,
		"token":      token, // also returned in the body for mobile clients
	}
	if user.ProfilePicture != "" {
		view["profilePicture"] = user.ProfilePicture
	}
	return view
}

// Register godoc
// @Summary Register a new user and send a verification OTP
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Registration data"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} errors.MessageResponse
// @Failure 500 {object} errors.MessageResponse
// @Router /users/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errors.MessageResponse{Message: "invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errors.MessageResponse{Message: err.Error()})
	}

	user, token, err := h.authService.Register(c.Request().Context(), req.Username, req.Email, req.Password, req.Role)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return c.JSON(httpErr.StatusCode, errors.MessageResponse{Message: httpErr.Message})
	}

	auth.SetTokenCookie(c, token, h.secureCookies)
	return c.JSON(http.StatusCreated, authView(user, token))
}

// Login godoc
// @Summary Log in with email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login credentials"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} errors.MessageResponse
// @Failure 401 {object} errors.MessageResponse
// @Router /users/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errors.MessageResponse{Message: "invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errors.MessageResponse{Message: err.Error()})
	}

	user, token, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		if err == errors.ErrEmailNotVerified {
			// Signal the frontend to offer the resend-OTP flow.
			return c.JSON(http.StatusUnauthorized, echo.Map{
				"message":              err.Error(),
				"requiresVerification": true,
				"email":                user.Email,
			})
		}
		httpErr := errors.MapErrorToHTTP(err)
		return c.JSON(httpErr.StatusCode, errors.MessageResponse{Message: httpErr.Message})
	}

	auth.SetTokenCookie(c, token, h.secureCookies)
	view := authView(user, token)
	view["createdAt"] = user.CreatedAt
	view["updatedAt"] = user.UpdatedAt
	return c.JSON(http.StatusOK, view)
}

// Logout godoc
// @Summary Log out and clear the session cookie
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} errors.MessageResponse
// @Failure 401 {object} errors.MessageResponse
// @Router /users/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	user := middleware.CurrentUser(c)
	h.authService.Logout(c.Request().Context(), user.ID.String())
	auth.ClearTokenCookie(c, h.secureCookies)
	return c.JSON(http.StatusOK, errors.MessageResponse{Message: "Logged out successfully"})
}

// VerifyEmail godoc
// @Summary Verify an email address with an OTP
// @Tags auth
// @Accept json
// @Produce json
// @Param request body VerifyEmailRequest true "Email and OTP"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} errors.MessageResponse
// @Router /users/verify-email [post]
func (h *AuthHandler) VerifyEmail(c echo.Context) error {
	var req VerifyEmailRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errors.MessageResponse{Message: "Email and OTP are required"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errors.MessageResponse{Message: err.Error()})
	}

	user, token, err := h.authService.VerifyEmail(c.Request().Context(), req.Email, req.OTP)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return c.JSON(httpErr.StatusCode, errors.MessageResponse{Message: httpErr.Message})
	}

	auth.SetTokenCookie(c, token, h.secureCookies)
	view := authView(user, token)
	view["message"] = "Email verified successfully"
	return c.JSON(http.StatusOK, view)
}

// ResendVerification godoc
// @Summary Resend the verification OTP
// @Tags auth
// @Accept json
// @Produce json
// @Param request body EmailRequest true "Email"
// @Success 200 {object} errors.MessageResponse
// @Failure 400 {object} errors.MessageResponse
// @Failure 404 {object} errors.MessageResponse
// @Router /users/resend-verification [post]
func (h *AuthHandler) ResendVerification(c echo.Context) error {
	var req EmailRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errors.MessageResponse{Message: "Email is required"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errors.MessageResponse{Message: err.Error()})
	}

	if err := h.authService.ResendVerification(c.Request().Context(), req.Email); err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return c.JSON(httpErr.StatusCode, errors.MessageResponse{Message: httpErr.Message})
	}
	return c.JSON(http.StatusOK, errors.MessageResponse{Message: "Verification OTP sent successfully"})
}

// RequestPasswordReset godoc
// @Summary Send a password reset OTP
// @Tags auth
// @Accept json
// @Produce json
// @Param request body EmailRequest true "Email"
// @Success 200 {object} errors.MessageResponse
// @Failure 400 {object} errors.MessageResponse
// @Failure 404 {object} errors.MessageResponse
// @Router /users/request-password-reset [post]
func (h *AuthHandler) RequestPasswordReset(c echo.Context) error {
	var req EmailRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errors.MessageResponse{Message: "Email is required"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errors.MessageResponse{Message: err.Error()})
	}

	if err := h.authService.RequestPasswordReset(c.Request().Context(), req.Email); err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return c.JSON(httpErr.StatusCode, errors.MessageResponse{Message: httpErr.Message})
	}
	return c.JSON(http.StatusOK, errors.MessageResponse{Message: "Password reset OTP sent successfully"})
}

// ResetPassword godoc
// @Summary Reset the password with an OTP
// @Tags auth
// @Accept json
// @Produce json
// @Param request body ResetPasswordRequest true "Email, OTP and new password"
// @Success 200 {object} errors.MessageResponse
// @Failure 400 {object} errors.MessageResponse
// @Router /users/reset-password [post]
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req ResetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errors.MessageResponse{Message: "Email, OTP and new password are required"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errors.MessageResponse{Message: err.Error()})
	}

	if err := h.authService.ResetPassword(c.Request().Context(), req.Email, req.OTP, req.NewPassword); err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return c.JSON(httpErr.StatusCode, errors.MessageResponse{Message: httpErr.Message})
	}
	return c.JSON(http.StatusOK, errors.MessageResponse{Message: "Password reset successfully"})
}
