package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"cardealer/internal/auth"
	"cardealer/internal/errors"
	"cardealer/internal/middleware"
	"cardealer/internal/service"
)

// UserHandler handles profile and admin user-management endpoints.
type UserHandler struct {
	userService   service.UserService
	secureCookies bool
}

// NewUserHandler creates a new user handler.
func NewUserHandler(userService service.UserService, secureCookies bool) *UserHandler {
	return &UserHandler{userService: userService, secureCookies: secureCookies}
}

// UpdateProfileRequest carries optional profile changes.
type UpdateProfileRequest struct {
	Username       string `json:"username" validate:"omitempty,min=3,max=50"`
	Email          string `json:"email" validate:"omitempty,email"`
	Password       string `json:"password" validate:"omitempty,min=6"`
	ProfilePicture string `json:"profilePicture" validate:"omitempty,url"`
}

// GetProfile godoc
// @Summary Get the current user's profile
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.User
// @Failure 401 {object} errors.MessageResponse
// @Failure 404 {object} errors.MessageResponse
// @Router /users/profile [get]
func (h *UserHandler) GetProfile(c echo.Context) error {
	current := middleware.CurrentUser(c)
	user, err := h.userService.GetProfile(c.Request().Context(), current.ID)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return c.JSON(httpErr.StatusCode, errors.MessageResponse{Message: httpErr.Message})
	}
	return c.JSON(http.StatusOK, user)
}

// UpdateProfile godoc
// @Summary Update the current user's profile
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body UpdateProfileRequest true "Profile changes"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} errors.MessageResponse
// @Failure 401 {object} errors.MessageResponse
// @Router /users/profile [put]
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	var req UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errors.MessageResponse{Message: "invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errors.MessageResponse{Message: err.Error()})
	}

	current := middleware.CurrentUser(c)
	user, token, err := h.userService.UpdateProfile(c.Request().Context(), current.ID, service.ProfileUpdate{
		Username:       req.Username,
		Email:          req.Email,
		Password:       req.Password,
		ProfilePicture: req.ProfilePicture,
	})
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return c.JSON(httpErr.StatusCode, errors.MessageResponse{Message: httpErr.Message})
	}

	auth.SetTokenCookie(c, token, h.secureCookies)
	view := authView(user, token)
	view["createdAt"] = user.CreatedAt
	view["updatedAt"] = user.UpdatedAt
	return c.JSON(http.StatusOK, view)
}

// ListUsers godoc
// @Summary List all users (admin)
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.User
// @Failure 401 {object} errors.MessageResponse
// @Router /users [get]
func (h *UserHandler) ListUsers(c echo.Context) error {
	users, err := h.userService.ListUsers(c.Request().Context())
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return c.JSON(httpErr.StatusCode, errors.MessageResponse{Message: httpErr.Message})
	}
	return c.JSON(http.StatusOK, users)
}

// DeleteUser godoc
// @Summary Delete a user (admin)
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} errors.MessageResponse
// @Failure 400 {object} errors.MessageResponse
// @Failure 404 {object} errors.MessageResponse
// @Router /users/{id} [delete]
func (h *UserHandler) DeleteUser(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, errors.MessageResponse{Message: "invalid user id"})
	}

	if err := h.userService.DeleteUser(c.Request().Context(), id); err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return c.JSON(httpErr.StatusCode, errors.MessageResponse{Message: httpErr.Message})
	}
	return c.JSON(http.StatusOK, errors.MessageResponse{Message: "User removed"})
}

// StatusSummary godoc
// @Summary System counters (admin)
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.StatusSummary
// @Failure 401 {object} errors.MessageResponse
// @Router /users/admin/status/summary [get]
func (h *UserHandler) StatusSummary(c echo.Context) error {
	summary, err := h.userService.StatusSummary(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, errors.MessageResponse{Message: "Failed to fetch status"})
	}
	return c.JSON(http.StatusOK, summary)
}

// PromoteUser godoc
// @Summary Promote a user to admin (admin)
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param userId path string true "User ID"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} errors.MessageResponse
// @Failure 404 {object} errors.MessageResponse
// @Router /users/admin/promote/{userId} [post]
func (h *UserHandler) PromoteUser(c echo.Context) error {
	targetID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, errors.MessageResponse{Message: "invalid user id"})
	}

	actor := middleware.CurrentUser(c)
	user, err := h.userService.PromoteUser(c.Request().Context(), actor.ID, targetID)
	if err != nil {
		if err == errors.ErrAlreadyAdmin {
			// Idempotent: promoting an admin is reported as success.
			return c.JSON(http.StatusOK, echo.Map{"message": err.Error(), "user": user})
		}
		httpErr := errors.MapErrorToHTTP(err)
		return c.JSON(httpErr.StatusCode, errors.MessageResponse{Message: httpErr.Message})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": "User promoted to admin",
		"user": echo.Map{
			"_id":      user.ID,
			"username": user.Username,
			"role":     user.Role,
		},
	})
}

// DemoteUser godoc
// @Summary Demote an admin to client (admin)
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param userId path string true "User ID"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} errors.MessageResponse
// @Failure 404 {object} errors.MessageResponse
// @Router /users/admin/demote/{userId} [post]
func (h *UserHandler) DemoteUser(c echo.Context) error {
	targetID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, errors.MessageResponse{Message: "invalid user id"})
	}

	user, err := h.userService.DemoteUser(c.Request().Context(), targetID)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return c.JSON(httpErr.StatusCode, errors.MessageResponse{Message: httpErr.Message})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": "User demoted to client",
		"user": echo.Map{
			"_id":      user.ID,
			"username": user.Username,
			"role":     user.Role,
		},
	})
}
