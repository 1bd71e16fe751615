package main

import (
	"log"
	"net/http"
	"os"

	_ "cardealer/docs" // swagger docs

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"cardealer/internal/auth"
	"cardealer/internal/cache"
	"cardealer/internal/config"
	"cardealer/internal/db"
	"cardealer/internal/handler"
	"cardealer/internal/mail"
	"cardealer/internal/middleware"
	"cardealer/internal/model"
	"cardealer/internal/repository"
	"cardealer/internal/router"
	"cardealer/internal/service"
)

// @title Car Dealership API
// @version 1.0
// @description Car dealership backend with listings, OTP email verification and JWT cookie authentication.
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token. A session cookie set on login works as well.
func main() {
	cfg := config.Load()

	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET must be set in production")
	}

	e := echo.New()
	e.Use(echomw.RequestID())

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}

	// Drop tables if RESET_DB environment variable is set
	if os.Getenv("RESET_DB") == "true" {
		log.Println("RESET_DB=true detected, dropping all tables...")
		for _, table := range []interface{}{&model.Car{}, &model.User{}} {
			if err := gormDB.Migrator().DropTable(table); err != nil {
				log.Printf("Warning: failed to drop table (may not exist): %v", err)
			}
		}
		log.Println("Tables dropped")
	}

	if err := gormDB.AutoMigrate(&model.User{}, &model.Car{}); err != nil {
		log.Fatalf("auto-migrate: %v", err)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)

	userRepo := repository.NewUserRepository(gormDB)
	carRepo := repository.NewCarRepository(gormDB)

	tokenService := auth.NewTokenService(cfg.JWTSecret)
	sessionCache := auth.NewSessionCache(cfg.SessionCacheTTL, cfg.SessionCacheSize)
	mailer := mail.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SenderEmail)

	authService := service.NewAuthService(userRepo, tokenService, sessionCache, mailer)
	userService := service.NewUserService(userRepo, carRepo, tokenService, sessionCache)
	carService := service.NewCarService(carRepo, cacheClient)

	secureCookies := cfg.Env == "production"
	authHandler := handler.NewAuthHandler(authService, secureCookies)
	userHandler := handler.NewUserHandler(userService, secureCookies)
	carHandler := handler.NewCarHandler(carService)

	authGate := middleware.AuthGate(tokenService, sessionCache, userRepo)

	router.Register(e, cfg, authGate, authHandler, userHandler, carHandler)

	if cfg.SwaggerHost != "" {
		log.Printf("Swagger documentation available at: %s/swagger/index.html", cfg.SwaggerHost)
	} else {
		log.Printf("Swagger documentation available at: http://localhost:%s/swagger/index.html", cfg.ServerPort)
	}

	addr := ":" + cfg.ServerPort
	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server start: %v", err)
	}
}
