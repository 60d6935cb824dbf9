//go:build ignore

package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/jonas/postflow/internal/auth"
	"github.com/jonas/postflow/internal/database"
	"github.com/jonas/postflow/internal/database/models"
	"github.com/jonas/postflow/pkg/config"
	"github.com/jonas/postflow/pkg/util"
	"gorm.io/gorm"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := util.NewLogger(cfg.Server.Env, cfg.Server.LogLevel)

	db, err := database.Connect(&cfg.Database, logger)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	email := os.Getenv("ADMIN_EMAIL")
	password := os.Getenv("ADMIN_PASSWORD")
	name := os.Getenv("ADMIN_NAME")

	if email == "" {
		email = "admin@example.com"
	}
	if password == "" {
		password = "admin123!"
	}
	if name == "" {
		name = "Admin"
	}

	var existing models.User
	if err := db.Where("email = ?", email).First(&existing).Error; err == nil {
		fmt.Printf("Admin user already exists: %s\n", email)
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Fatalf("failed to check admin user: %v", err)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	now := time.Now()
	admin := models.User{
		Email:           email,
		PasswordHash:    hash,
		Name:            name,
		Role:            models.RoleAdmin,
		EmailVerifiedAt: &now,
	}
	if err := db.Create(&admin).Error; err != nil {
		log.Fatalf("failed to create admin user: %v", err)
	}

	fmt.Printf("Admin user created successfully!\n")
	fmt.Printf("Email: %s\n", admin.Email)
	fmt.Printf("Password: %s\n", password)
}
