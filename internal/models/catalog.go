// Package models defines the GORM catalog models for the admin console:
// the stores, users, wallets and affiliation codes the console lists.
package models

import (
	"time"

	"gorm.io/gorm"
)

// Store is one tenant shop hosted on the platform.
type Store struct {
	gorm.Model

	UserID uint  `gorm:"index;not null" json:"user_id"`
	User   *User `gorm:"foreignKey:UserID" json:"user,omitempty"`

	Name        string `gorm:"index;not null" json:"name"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Slug        string `gorm:"uniqueIndex;not null" json:"slug"`
	DomainNames string `json:"domain_names"` // comma-separated

	// IsActive is the billing/administrative flag; IsRunning reflects the
	// deployed API instance as of the last sync.
	IsActive  bool   `gorm:"default:true" json:"is_active"`
	IsRunning bool   `gorm:"default:false" json:"is_running"`
	Status    string `gorm:"index;default:'active'" json:"status"`

	WalletID *uint   `gorm:"index" json:"wallet_id,omitempty"`
	Wallet   *Wallet `gorm:"foreignKey:WalletID" json:"wallet,omitempty"`
}

// User is a platform account (store owner or collaborator).
type User struct {
	gorm.Model

	FullName string `json:"full_name"`
	Email    string `gorm:"uniqueIndex;not null" json:"email"`
	Phone    string `json:"phone"`
	Status   string `gorm:"index;default:'active'" json:"status"`
	Roles    string `json:"roles"` // comma-separated

	EmailVerifiedAt *time.Time `json:"email_verified_at,omitempty"`

	Stores []Store `gorm:"foreignKey:UserID" json:"stores,omitempty"`
}

// Wallet holds one balance ledger head for a user, a store, or the
// platform itself. Ledger math is the platform's job; the console only
// reads these rows.
type Wallet struct {
	gorm.Model

	OwnerID    *uint  `gorm:"index" json:"owner_id,omitempty"`
	OwnerName  string `json:"owner_name"`
	EntityType string `gorm:"index;not null" json:"entity_type"` // user | store | platform
	Currency   string `gorm:"default:'XOF'" json:"currency"`

	Balance          float64 `json:"balance"`
	AvailableBalance float64 `json:"available_balance"`
	PendingBalance   float64 `json:"pending_balance"`
	ReservedBalance  float64 `json:"reserved_balance"`
}

// Transaction is one wallet ledger entry.
type Transaction struct {
	gorm.Model

	WalletID uint    `gorm:"index;not null" json:"wallet_id"`
	Amount   float64 `json:"amount"`
	Category string  `gorm:"index" json:"category"`
	Label    string  `json:"label"`
	Status   string  `gorm:"index;default:'completed'" json:"status"`
}

// AffiliationCode is a referral code and its accumulated stats.
type AffiliationCode struct {
	gorm.Model

	Code    string `gorm:"uniqueIndex;not null" json:"code"`
	OwnerID uint   `gorm:"index;not null" json:"owner_id"`
	Owner   *User  `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`

	Uses        int     `json:"uses"`
	EarnedTotal float64 `json:"earned_total"`
	IsActive    bool    `gorm:"default:true" json:"is_active"`
}
