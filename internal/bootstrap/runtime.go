// Package bootstrap wires up runtime dependencies for the commands.
package bootstrap

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"bookmarks/internal/cache"
	"bookmarks/internal/config"
	"bookmarks/internal/database"
	"bookmarks/internal/models"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// InitRuntime connects to DB and Redis and ensures the optional
// development staff account exists.
func InitRuntime(cfg *config.Config) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	// Init Redis (may result in nil client if unreachable)
	cache.InitRedis(cfg.RedisURL)
	r := cache.GetClient()

	if err := ensureDevStaffUser(cfg, db); err != nil {
		return nil, nil, fmt.Errorf("failed to bootstrap development staff user: %w", err)
	}

	return db, r, nil
}

func ensureDevStaffUser(cfg *config.Config, db *gorm.DB) error {
	if cfg == nil || db == nil {
		return nil
	}
	if !strings.EqualFold(cfg.Env, "development") || !cfg.DevBootstrapStaff {
		return nil
	}

	username := strings.TrimSpace(cfg.DevStaffUsername)
	if username == "" {
		username = "admin"
	}
	email := strings.TrimSpace(strings.ToLower(cfg.DevStaffEmail))
	if email == "" {
		email = "admin@bookmarks.local"
	}
	password := cfg.DevStaffPassword
	if password == "" {
		return fmt.Errorf("DEV_STAFF_PASSWORD must be set when DEV_BOOTSTRAP_STAFF is enabled")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash staff password: %w", err)
	}

	if err := db.Transaction(func(tx *gorm.DB) error {
		var staff models.User
		findErr := tx.Where("username = ?", username).First(&staff).Error
		switch {
		case errors.Is(findErr, gorm.ErrRecordNotFound):
			staff = models.User{
				Username: username,
				Email:    email,
				Password: string(hashedPassword),
				IsActive: true,
				IsStaff:  true,
			}
			if err := tx.Create(&staff).Error; err != nil {
				return err
			}
			return tx.Create(&models.Profile{UserID: staff.ID}).Error
		case findErr != nil:
			return findErr
		default:
			return tx.Model(&models.User{}).
				Where("id = ?", staff.ID).
				Updates(map[string]any{"is_active": true, "is_staff": true}).Error
		}
	}); err != nil {
		return err
	}

	log.Printf("development staff user bootstrap ensured (%s)", email)
	return nil
}
