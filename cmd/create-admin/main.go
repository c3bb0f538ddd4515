// Bootstrap script to create or update an admin account
// cmd/create-admin/main.go
package main

import (
	"errors"
	"flag"
	"gp-intake-api/config"
	"gp-intake-api/models"
	"gp-intake-api/utils"
	"log"
	"time"

	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

func main() {
	email := flag.String("email", "", "admin email address")
	password := flag.String("password", "", "admin password")
	name := flag.String("name", "Admin", "display name")
	flag.Parse()

	if *email == "" || *password == "" {
		log.Fatal("Usage: create-admin -email admin@example.com -password secret")
	}
	if !utils.ValidateEmail(*email) {
		log.Fatal("Invalid email address")
	}

	// Load .env
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	// Initialize database
	config.InitDB()

	hashedPassword, err := utils.HashPassword(*password)
	if err != nil {
		log.Fatal("Failed to hash password:", err)
	}

	normalized := utils.NormalizeEmail(*email)
	now := time.Now()

	var user models.User
	err = config.DB.Where("email = ? AND delete_at IS NULL", normalized).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		user = models.User{
			Email:     normalized,
			UserFname: *name,
			Password:  hashedPassword,
			RoleID:    models.RoleAdmin,
			CreateAt:  &now,
			UpdateAt:  &now,
		}
		if err := config.DB.Create(&user).Error; err != nil {
			log.Fatal("Failed to create admin:", err)
		}
		log.Printf("Created admin account %s (user_id=%d)\n", normalized, user.UserID)
		return
	}
	if err != nil {
		log.Fatal("Failed to look up user:", err)
	}

	if err := config.DB.Model(&user).Updates(map[string]interface{}{
		"password":  hashedPassword,
		"role_id":   models.RoleAdmin,
		"update_at": now,
	}).Error; err != nil {
		log.Fatal("Failed to update admin:", err)
	}
	log.Printf("Updated %s to admin with a new password\n", normalized)
}
