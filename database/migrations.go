package database

import (
	"log"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// RunMigrations runs all database migrations
func RunMigrations(db *gorm.DB) error {
	log.Println("Running database migrations...")

	// AutoMigrate will create tables if they don't exist
	if err := db.AutoMigrate(
		&User{},
		&Project{},
		&AttackRecord{},
		&AuditLogEntry{},
	); err != nil {
		log.Printf("Migration failed: %v", err)
		return err
	}

	log.Println("Database migrations completed successfully")
	return nil
}

// SeedDefaultAdmin creates a default admin if none exists. The password must
// come from the environment; without one no account is created.
func SeedDefaultAdmin(db *gorm.DB, email, password string) {
	var count int64
	if err := db.Model(&User{}).Where("role = ?", RoleAdmin).Count(&count).Error; err != nil {
		log.Printf("Failed to check existing admin: %v", err)
		return
	}
	if count > 0 {
		log.Println("Admin user already exists.")
		return
	}

	if password == "" {
		log.Println("ADMIN_PASSWORD not set, skipping default admin creation.")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("Failed to hash admin password: %v", err)
		return
	}

	admin := User{
		Name:         "Site Admin",
		Email:        email,
		PasswordHash: string(hash),
		Role:         RoleAdmin,
	}

	if err := db.Create(&admin).Error; err != nil {
		log.Printf("Failed to create admin: %v", err)
	} else {
		log.Println("Default admin user created successfully.")
	}
}
