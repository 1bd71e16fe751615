package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"cardealer/internal/auth"
	"cardealer/internal/errors"
	"cardealer/internal/model"
	"cardealer/internal/repository"
)

// UserContextKey is the echo context key the resolved user is stored under.
const UserContextKey = "user"

// tokenExtractor pulls a credential out of the request, or returns "".
type tokenExtractor func(c echo.Context) string

// extractors are tried in order; the first non-empty result wins.
// Cookie takes precedence over the Authorization header.
var extractors = []tokenExtractor{
	fromCookie,
	fromBearerHeader,
}

func fromCookie(c echo.Context) string {
	cookie, err := c.Cookie(auth.CookieName)
	if err != nil || cookie.Value == "" {
		return ""
	}
	return cookie.Value
}

func fromBearerHeader(c echo.Context) string {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

// AuthGate verifies the session credential and attaches the resolved user to
// the request context. Resolution goes through the session cache first and
// falls back to a database lookup (without the password hash), which then
// refills the cache. All failures terminate the chain with a 401.
func AuthGate(tokens *auth.TokenService, sessions *auth.SessionCache, users repository.UserRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			var token string
			for _, extract := range extractors {
				if token = extract(c); token != "" {
					break
				}
			}
			if token == "" {
				return c.JSON(http.StatusUnauthorized, errors.MessageResponse{Message: "Not authorized, no token"})
			}

			userID, err := tokens.Verify(token)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, errors.MessageResponse{Message: "Not authorized, token failed"})
			}

			id := userID.String()
			user, ok := sessions.Get(id)
			if !ok {
				user, err = users.FindByIDSafe(c.Request().Context(), userID)
				if err != nil && err != gorm.ErrRecordNotFound {
					c.Logger().Errorf("auth gate user lookup: %v", err)
				}
				if user != nil {
					sessions.Put(id, user)
				}
			}

			if user == nil {
				return c.JSON(http.StatusUnauthorized, errors.MessageResponse{Message: "Not authorized, user not found"})
			}

			c.Set(UserContextKey, user)
			return next(c)
		}
	}
}

// AdminOnly runs after AuthGate and rejects non-admin users.
// The source API returns 401 here rather than the conventional 403; kept for
// wire compatibility with the existing frontend.
func AdminOnly() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user := CurrentUser(c)
			if user == nil || !user.IsAdmin() {
				return c.JSON(http.StatusUnauthorized, errors.MessageResponse{Message: "Not authorized as an admin"})
			}
			return next(c)
		}
	}
}

// CurrentUser returns the user attached by AuthGate, or nil.
func CurrentUser(c echo.Context) *model.User {
	user, _ := c.Get(UserContextKey).(*model.User)
	return user
}
