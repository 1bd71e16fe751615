package main

import (
	"context"
	"log"
	"os"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"cardealer/internal/config"
	"cardealer/internal/db"
	"cardealer/internal/model"
	"cardealer/internal/repository"
)

// seedCar is one demo listing before price parsing.
type seedCar struct {
	Make, Model   string
	Year          int
	Price         string
	Mileage       int
	Color         string
	FuelType      string
	Transmission  string
	EngineSize    string
	BodyType      string
	Doors, Seats  int
	Description   string
	Condition     string
	Location      string
	ContactNumber string
	Featured      bool
}

var demoCars = []seedCar{
	{"Toyota", "Corolla", 2021, "18500", 24000, "White", "Petrol", "Automatic", "1.8L", "Sedan", 4, 5,
		"Well maintained single-owner Corolla with full service history.", "Excellent", "Springfield", "+1-555-0101", true},
	{"Volkswagen", "Golf", 2019, "15900", 41000, "Blue", "Diesel", "Manual", "2.0L", "Hatchback", 5, 5,
		"Economical diesel Golf, recent timing belt and fresh MOT.", "Good", "Springfield", "+1-555-0101", true},
	{"Tesla", "Model 3", 2022, "32900", 18000, "Red", "Electric", "Automatic", "N/A", "Sedan", 4, 5,
		"Long-range Model 3 with autopilot package and new tires.", "Excellent", "Shelbyville", "+1-555-0102", false},
	{"Ford", "Ranger", 2018, "21400", 78000, "Black", "Diesel", "Manual", "3.2L", "Pickup", 4, 5,
		"Workhorse Ranger with tow bar and load liner, ready for duty.", "Fair", "Shelbyville", "+1-555-0102", false},
}

func main() {
	log.Println("Starting seed script...")

	cfg := config.Load()

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Connected to database")

	if err := gormDB.AutoMigrate(&model.User{}, &model.Car{}); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	ctx := context.Background()
	userRepo := repository.NewUserRepository(gormDB)
	carRepo := repository.NewCarRepository(gormDB)

	admin, err := seedAdmin(ctx, userRepo)
	if err != nil {
		log.Fatalf("Failed to seed admin user: %v", err)
	}

	created, skipped, err := seedCars(ctx, carRepo, admin)
	if err != nil {
		log.Fatalf("Failed to seed cars: %v", err)
	}

	log.Printf("Seed completed successfully!")
	log.Printf("  - Admin user: %s", admin.Email)
	log.Printf("  - Cars created: %d, skipped (already present): %d", created, skipped)
}

// seedAdmin ensures a verified admin account exists, creating it with the
// ADMIN_EMAIL / ADMIN_PASSWORD environment variables on first run.
func seedAdmin(ctx context.Context, repo repository.UserRepository) (*model.User, error) {
	email := os.Getenv("ADMIN_EMAIL")
	if email == "" {
		email = "admin@cardealer.local"
	}
	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = "admin123"
		log.Println("ADMIN_PASSWORD not set, using the default development password")
	}

	existing, err := repo.FindByEmail(ctx, email)
	if err == nil {
		log.Printf("Admin user %s already exists", email)
		return existing, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), 10)
	if err != nil {
		return nil, err
	}

	admin := &model.User{
		Username:     "admin",
		Email:        email,
		PasswordHash: string(hashed),
		Role:         model.RoleAdmin,
		IsActive:     true,
		IsVerified:   true,
	}
	if err := repo.Create(ctx, admin); err != nil {
		return nil, err
	}
	log.Printf("Created admin user %s", email)
	return admin, nil
}

// seedCars inserts the demo listings under the admin's account, skipping
// make/model pairs that already exist.
func seedCars(ctx context.Context, repo repository.CarRepository, seller *model.User) (created, skipped int, err error) {
	for _, item := range demoCars {
		existing, err := repo.Search(ctx, item.Model)
		if err != nil {
			return created, skipped, err
		}
		if len(existing) > 0 {
			skipped++
			continue
		}

		price, err := decimal.NewFromString(item.Price)
		if err != nil {
			log.Printf("Skipping %s %s with invalid price: %s", item.Make, item.Model, item.Price)
			skipped++
			continue
		}

		car := &model.Car{
			Make:          item.Make,
			Model:         item.Model,
			Year:          item.Year,
			Price:         price,
			Mileage:       item.Mileage,
			Color:         item.Color,
			FuelType:      item.FuelType,
			Transmission:  item.Transmission,
			EngineSize:    item.EngineSize,
			BodyType:      item.BodyType,
			Doors:         item.Doors,
			Seats:         item.Seats,
			Images:        model.StringList{"https://placehold.co/800x600?text=" + item.Make + "+" + item.Model},
			Description:   item.Description,
			Condition:     item.Condition,
			IsAvailable:   true,
			IsFeatured:    item.Featured,
			Location:      item.Location,
			ContactNumber: item.ContactNumber,
			SellerID:      seller.ID,
		}
		if err := repo.Create(ctx, car); err != nil {
			return created, skipped, err
		}
		created++
	}
	return created, skipped, nil
}
