package database

import (
	"fmt"
	"log"

	config "github.com/earnhub/rewards-backend/configs"
	"github.com/earnhub/rewards-backend/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func ConnectDB() {
	var err error
	dsn := config.Config("DATABASE_URL")

	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	if err != nil {
		log.Fatalf("🔥 Failed to connect to database: %v", err)
	}

	fmt.Println("✅ Database connected successfully")
}

func Migrate() {
	err := DB.AutoMigrate(
		&models.Account{},
		&models.WithdrawalRequest{},
		&models.Reviewer{},
	)
	if err != nil {
		log.Fatalf("🔥 Failed to migrate database: %v", err)
	}
	fmt.Println("✅ Database migration successful")
}

// SeedReviewer creates the bootstrap reviewer operator from the environment
// so the review console is usable on a fresh deployment.
func SeedReviewer() {
	email := config.Config("REVIEWER_EMAIL")
	password := config.Config("REVIEWER_PASSWORD")
	if email == "" || password == "" {
		log.Println("⚠️ REVIEWER_EMAIL/REVIEWER_PASSWORD not set, skipping reviewer seed")
		return
	}

	var count int64
	if err := DB.Model(&models.Reviewer{}).Where("email = ?", email).Count(&count).Error; err != nil {
		log.Fatalf("🔥 Failed to check for reviewer: %v", err)
	}
	if count > 0 {
		log.Println("Reviewer already exists.")
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("🔥 Failed to hash reviewer password: %v", err)
	}

	reviewer := models.Reviewer{
		FullName: config.Config("REVIEWER_FULL_NAME"),
		Email:    email,
		Password: string(hashedPassword),
		IsActive: true,
	}
	if chatID := config.Config("REVIEWER_SEED_CHAT_ID"); chatID != "" {
		reviewer.ChatID = &chatID
	}

	if err := DB.Create(&reviewer).Error; err != nil {
		log.Fatalf("🔥 Failed to seed reviewer: %v", err)
	}

	log.Println("✅ Reviewer seeded successfully")
}
