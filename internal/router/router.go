package router

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"cardealer/internal/config"
	"cardealer/internal/handler"
	"cardealer/internal/middleware"
)

// bodyLimit caps JSON request bodies; listings carry image URLs, not files.
const bodyLimit = "10K"

// Register wires middleware and routes. The chain mirrors the request
// pipeline: CORS, rate limit, body parsing limits, then per-route auth.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	authGate echo.MiddlewareFunc,
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	carHandler *handler.CarHandler,
) {
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderContentType, echo.HeaderAuthorization},
		ExposeHeaders:    []string{"Content-Range", "X-Content-Range"},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitWindow, cfg.RateLimitMax)
	e.Use(rateLimiter.Middleware())

	e.Use(echomw.BodyLimit(bodyLimit))
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())

	e.Validator = &CustomValidator{validator: validator.New()}

	adminGate := middleware.AdminOnly()

	api := e.Group("/api")

	api.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"message": "Car Dealership API is running"})
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	users := api.Group("/users")
	users.POST("/register", authHandler.Register)
	users.POST("/login", authHandler.Login)
	users.POST("/logout", authHandler.Logout, authGate)
	users.POST("/verify-email", authHandler.VerifyEmail)
	users.POST("/resend-verification", authHandler.ResendVerification)
	users.POST("/request-password-reset", authHandler.RequestPasswordReset)
	users.POST("/reset-password", authHandler.ResetPassword)

	users.GET("/profile", userHandler.GetProfile, authGate)
	users.PUT("/profile", userHandler.UpdateProfile, authGate)

	users.GET("", userHandler.ListUsers, authGate, adminGate)
	users.DELETE("/:id", userHandler.DeleteUser, authGate, adminGate)
	users.GET("/admin/status/summary", userHandler.StatusSummary, authGate, adminGate)
	users.POST("/admin/promote/:userId", userHandler.PromoteUser, authGate, adminGate)
	users.POST("/admin/demote/:userId", userHandler.DemoteUser, authGate, adminGate)

	cars := api.Group("/cars")
	cars.GET("", carHandler.ListCars)
	cars.GET("/featured", carHandler.FeaturedCars)
	cars.GET("/search", carHandler.SearchCars)
	cars.GET("/:id", carHandler.GetCar)
	cars.POST("", carHandler.CreateCar, authGate)
	cars.PUT("/:id", carHandler.UpdateCar, authGate)
	cars.DELETE("/:id", carHandler.DeleteCar, authGate)
	cars.DELETE("/:id/images", carHandler.RemoveImages, authGate)
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
