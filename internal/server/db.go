// Package server manages the console database layer and REST API.
// The database is a local SQLite catalog of platform entities (stores,
// users, wallets, affiliation codes) plus the console's own admin
// accounts; fleet state lives in the in-memory snapshot store, never here.
package server

import (
	"fmt"
	"log"
	"time"

	"github.com/glebarez/sqlite"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/sublymus/sublyadmin/internal/config"
	"github.com/sublymus/sublyadmin/internal/models"
)

var DB *gorm.DB

// InitDB opens the database and runs AutoMigrate.
func InitDB(cfg *config.Config) error {
	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case "sqlite", "":
		dialector = sqlite.Open(cfg.DBPath)
	default:
		return fmt.Errorf("unsupported db_driver %q (use 'sqlite')", cfg.DBDriver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}

	if err := db.AutoMigrate(
		&models.AdminUser{},
		&models.User{},
		&models.Store{},
		&models.Wallet{},
		&models.Transaction{},
		&models.AffiliationCode{},
	); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}

	DB = db
	log.Printf("[db] opened %s/%s", cfg.DBDriver, cfg.DBPath)
	return nil
}

// SeedAdmin ensures a console operator account exists for the bootstrap
// credentials. Existing accounts are left untouched, so a changed
// config password never silently rewrites a live one.
func SeedAdmin(email, password string) error {
	var count int64
	if err := DB.Model(&models.AdminUser{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashing admin password: %w", err)
	}
	if err := DB.Create(&models.AdminUser{Email: email, PasswordHash: string(hash)}).Error; err != nil {
		return err
	}
	log.Printf("[db] seeded admin account %s", email)
	return nil
}

// Authenticate checks operator credentials and records the login time.
func Authenticate(email, password string) (*models.AdminUser, error) {
	var admin models.AdminUser
	if err := DB.Where("email = ?", email).First(&admin).Error; err != nil {
		return nil, fmt.Errorf("unknown account")
	}
	if bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)) != nil {
		return nil, fmt.Errorf("invalid credentials")
	}
	now := time.Now()
	DB.Model(&admin).Update("last_login_at", &now)
	return &admin, nil
}

// PageMeta describes one page of a catalog listing.
type PageMeta struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
}

// ListStores returns one page of stores, optionally filtered by a name
// or slug substring.
func ListStores(page, limit int, search string) ([]models.Store, PageMeta, error) {
	q := DB.Model(&models.Store{})
	if search != "" {
		like := "%" + search + "%"
		q = q.Where("name LIKE ? OR slug LIKE ?", like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, PageMeta{}, err
	}

	var stores []models.Store
	err := q.Preload("User").Order("id").
		Offset((page - 1) * limit).Limit(limit).
		Find(&stores).Error
	return stores, PageMeta{Total: total, Page: page, Limit: limit}, err
}

// GetStore loads one store with its owner and wallet.
func GetStore(id uint) (*models.Store, error) {
	var store models.Store
	err := DB.Preload("User").Preload("Wallet").First(&store, id).Error
	if err != nil {
		return nil, err
	}
	return &store, nil
}

// ListUsers returns one page of platform users.
func ListUsers(page, limit int, search string) ([]models.User, PageMeta, error) {
	q := DB.Model(&models.User{})
	if search != "" {
		like := "%" + search + "%"
		q = q.Where("full_name LIKE ? OR email LIKE ?", like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, PageMeta{}, err
	}

	var users []models.User
	err := q.Preload("Stores").Order("id").
		Offset((page - 1) * limit).Limit(limit).
		Find(&users).Error
	return users, PageMeta{Total: total, Page: page, Limit: limit}, err
}

// GetWallet loads one wallet.
func GetWallet(id uint) (*models.Wallet, error) {
	var w models.Wallet
	if err := DB.First(&w, id).Error; err != nil {
		return nil, err
	}
	return &w, nil
}

// PlatformWallet returns the platform's own wallet row.
func PlatformWallet() (*models.Wallet, error) {
	var w models.Wallet
	if err := DB.Where("entity_type = ?", "platform").First(&w).Error; err != nil {
		return nil, err
	}
	return &w, nil
}

// ListTransactions returns one page of a wallet's ledger, newest first.
func ListTransactions(walletID uint, limit, offset int) ([]models.Transaction, int64, error) {
	var total int64
	if err := DB.Model(&models.Transaction{}).Where("wallet_id = ?", walletID).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var txs []models.Transaction
	err := DB.Where("wallet_id = ?", walletID).
		Order("created_at desc").Offset(offset).Limit(limit).
		Find(&txs).Error
	return txs, total, err
}

// ListAffiliations returns all affiliation codes with their owners.
func ListAffiliations() ([]models.AffiliationCode, error) {
	var codes []models.AffiliationCode
	err := DB.Preload("Owner").Order("id").Find(&codes).Error
	return codes, err
}

// GlobalStatus aggregates the platform counters shown on the console home.
type GlobalStatus struct {
	Stores        int64 `json:"stores"`
	ActiveStores  int64 `json:"active_stores"`
	RunningStores int64 `json:"running_stores"`
	Users         int64 `json:"users"`
	Affiliations  int64 `json:"affiliations"`
}

// GetGlobalStatus computes the console home counters.
func GetGlobalStatus() (GlobalStatus, error) {
	var gs GlobalStatus
	if err := DB.Model(&models.Store{}).Count(&gs.Stores).Error; err != nil {
		return gs, err
	}
	if err := DB.Model(&models.Store{}).Where("is_active = ?", true).Count(&gs.ActiveStores).Error; err != nil {
		return gs, err
	}
	if err := DB.Model(&models.Store{}).Where("is_running = ?", true).Count(&gs.RunningStores).Error; err != nil {
		return gs, err
	}
	if err := DB.Model(&models.User{}).Count(&gs.Users).Error; err != nil {
		return gs, err
	}
	if err := DB.Model(&models.AffiliationCode{}).Count(&gs.Affiliations).Error; err != nil {
		return gs, err
	}
	return gs, nil
}
