package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Enumerated car attributes. Validated at the request layer; mirrored here
// for seeding and tests.
var (
	FuelTypes     = []string{"Petrol", "Diesel", "Electric", "Hybrid", "LPG", "CNG"}
	Transmissions = []string{"Manual", "Automatic", "CVT", "Semi-Automatic"}
	BodyTypes     = []string{"Sedan", "SUV", "Hatchback", "Coupe", "Convertible", "Wagon", "Pickup", "Van"}
	Conditions    = []string{"Excellent", "Good", "Fair", "Poor"}
)

// Car represents a dealership listing.
type Car struct {
	ID            uuid.UUID       `json:"_id" gorm:"type:char(36);primaryKey"`
	Make          string          `json:"make" gorm:"size:255;not null;index:idx_make_model_year"`
	Model         string          `json:"model" gorm:"size:255;not null;index:idx_make_model_year"`
	Year          int             `json:"year" gorm:"not null;index:idx_make_model_year"`
	Price         decimal.Decimal `json:"price" gorm:"type:decimal(12,2);not null;index"`
	Mileage       int             `json:"mileage" gorm:"not null"`
	Color         string          `json:"color" gorm:"size:100;not null;index"`
	FuelType      string          `json:"fuelType" gorm:"size:50;not null;index"`
	Transmission  string          `json:"transmission" gorm:"size:50;not null"`
	EngineSize    string          `json:"engineSize" gorm:"size:50;not null"`
	BodyType      string          `json:"bodyType" gorm:"size:50;not null;index"`
	Doors         int             `json:"doors" gorm:"not null"`
	Seats         int             `json:"seats" gorm:"not null"`
	Images        StringList      `json:"images" gorm:"type:text;not null"`
	Description   string          `json:"description" gorm:"type:text;not null"`
	Features      StringList      `json:"features" gorm:"type:text"`
	Condition     string          `json:"condition" gorm:"size:50;not null"`
	IsAvailable   bool            `json:"isAvailable" gorm:"default:true;index"`
	IsFeatured    bool            `json:"isFeatured" gorm:"default:false;index"`
	Location      string          `json:"location" gorm:"size:255;not null"`
	ContactNumber string          `json:"contactNumber" gorm:"size:50;not null"`

	SellerID uuid.UUID `json:"-" gorm:"type:char(36);not null;index"`
	Seller   *User     `json:"seller,omitempty" gorm:"foreignKey:SellerID"`

	CreatedAt time.Time `json:"createdAt" gorm:"index"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BeforeCreate sets UUID before creating the record.
func (c *Car) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// OwnedBy reports whether the given user may modify this listing
// (the seller themselves, or any admin).
func (c *Car) OwnedBy(u *User) bool {
	return c.SellerID == u.ID || u.IsAdmin()
}
