package models

import (
	"time"

	"gorm.io/gorm"
)

// AdminUser is a console operator account. Passwords are stored as
// bcrypt hashes only.
type AdminUser struct {
	gorm.Model

	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`

	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}
