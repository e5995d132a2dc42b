// seed-admin creates or updates the bootstrap SUPER_ADMIN user so a fresh
// deployment has someone who can register buildings and assign technicians.
//
// Usage (from backend directory):
//   DB_USER=... DB_PASSWORD=... DB_HOST=... DB_PORT=... DB_NAME=... \
//   ADMIN_EMAIL=... ADMIN_PASSWORD=... go run ./cmd/seed-admin
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/basma-app/maintenance_backend/config"
	"github.com/basma-app/maintenance_backend/models"
	"github.com/basma-app/maintenance_backend/utils"
	"gorm.io/gorm"
)

const (
	defaultAdminEmail = "admin@basma.local"
	defaultAdminName  = "Basma Admin"
)

func main() {
	ctx := context.Background()
	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil). Set DB_* env vars.")
		os.Exit(1)
	}

	email := os.Getenv("ADMIN_EMAIL")
	if email == "" {
		email = defaultAdminEmail
	}
	if !utils.IsValidEmail(email) {
		fmt.Fprintf(os.Stderr, "ADMIN_EMAIL %q is not a valid email address\n", email)
		os.Exit(1)
	}
	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		fmt.Fprintln(os.Stderr, "ADMIN_PASSWORD is required")
		os.Exit(1)
	}

	hashed, err := utils.HashPassword(password)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to hash password: %v\n", err)
		os.Exit(1)
	}
	hashedStr := string(hashed)

	var existing models.User
	err = db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).First(&existing).Error
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			fmt.Fprintf(os.Stderr, "failed to lookup user: %v\n", err)
			os.Exit(1)
		}
		// Create new super admin user
		u := models.User{
			Name:     defaultAdminName,
			Email:    email,
			Password: hashedStr,
			Role:     models.UserRoleSuperAdmin,
			IsActive: utils.NewTrue(),
		}
		if err := db.WithContext(ctx).Create(&u).Error; err != nil {
			fmt.Fprintf(os.Stderr, "failed to create admin user: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("created super admin %s (id=%d)\n", email, u.ID)
		return
	}

	// Reset the existing account's password and role.
	err = db.WithContext(ctx).Model(&existing).Updates(map[string]interface{}{
		"Password": hashedStr,
		"Role":     models.UserRoleSuperAdmin,
		"IsActive": utils.NewTrue(),
	}).Error
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to update admin user: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("updated super admin %s (id=%d)\n", email, existing.ID)
}
