package seed

import (
	"gentrack/config"
	"gentrack/internal/logger"
	. "gentrack/internal/models"

	"gorm.io/gorm"
)

// Seed creates the initial admin account from SEED_ADMIN_* config. It is
// idempotent: an existing username is left untouched.
func Seed(db *gorm.DB, config config.Config, log logger.Logger) error {
	log = log.Function("seed")
	log.Info("Seeding initial data")

	if config.SeedAdminUsername == "" || config.SeedAdminPassword == "" {
		log.Info("SEED_ADMIN_USERNAME or SEED_ADMIN_PASSWORD not set, skipping admin seed")
		return nil
	}

	var existing User
	if err := db.First(&existing, "username = ?", config.SeedAdminUsername).Error; err == nil {
		log.Info("Admin user already exists", "username", config.SeedAdminUsername)
		return nil
	}

	admin := User{
		Username: config.SeedAdminUsername,
		Email:    config.SeedAdminEmail,
		Role:     RoleAdmin,
		IsActive: true,
	}
	if err := admin.SetPassword(config.SeedAdminPassword); err != nil {
		return log.Err("failed to hash admin password", err)
	}

	if err := db.Create(&admin).Error; err != nil {
		return log.Err("failed to create admin user", err)
	}

	log.Info("Seeded admin user", "username", admin.Username)
	return nil
}
