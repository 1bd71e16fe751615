package auth

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// CookieName is the session cookie carrying the JWT.
const CookieName = "jwt"

// SetTokenCookie attaches the session cookie to the response. The cookie is
// httpOnly and SameSite=Strict; Secure is set only in production so local
// development over plain HTTP keeps working.
func SetTokenCookie(c echo.Context, token string, secure bool) {
	c.SetCookie(&http.Cookie{
		Name:     CookieName,
		Value:    token,
		Expires:  time.Now().Add(TokenExpiry),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
	})
}

// ClearTokenCookie expires the session cookie immediately.
func ClearTokenCookie(c echo.Context, secure bool) {
	c.SetCookie(&http.Cookie{
		Name:     CookieName,
		Value:    "",
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
	})
}
