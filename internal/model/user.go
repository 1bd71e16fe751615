package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User roles.
const (
	RoleClient = "client"
	RoleAdmin  = "admin"
)

// User represents a registered account. Password hash and OTP material are
// never serialized to JSON.
type User struct {
	ID             uuid.UUID `json:"_id" gorm:"type:char(36);primaryKey"`
	Username       string    `json:"username" gorm:"uniqueIndex;size:255;not null"`
	Email          string    `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash   string    `json:"-" gorm:"size:255;not null"`
	Role           string    `json:"role" gorm:"size:50;default:'client';index"`
	ProfilePicture string    `json:"profilePicture,omitempty" gorm:"size:512"`
	IsActive       bool      `json:"isActive" gorm:"default:true"`
	IsVerified     bool      `json:"isVerified" gorm:"default:false"`

	VerificationOtp         string     `json:"-" gorm:"size:10"`
	VerificationOtpExpireAt *time.Time `json:"-"`
	ResetOtp                string     `json:"-" gorm:"size:10"`
	ResetOtpExpireAt        *time.Time `json:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BeforeCreate sets UUID before creating the record.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
