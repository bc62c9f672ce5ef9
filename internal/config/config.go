package config

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/ystore/marketplace/internal/models"
)

type Config struct {
	PORT                string
	DB_HOST             string
	DB_PORT             string
	DB_USER             string
	DB_PASSWORD         string
	DB_NAME             string
	ES_URL              string
	ES_USER             string
	ES_PASSWORD         string
	JWT_SECRET          string
	REFRESH_SECRET      string
	KAFKA_ADDRESS       string
	ROZETKAPAY_URL      string
	ROZETKAPAY_LOGIN    string
	ROZETKAPAY_PASSWORD string
	PUBLIC_BASE_URL     string
	LOG_LEVEL           string
}

func LoadConfig() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Notice: .env file not found: %v. Using system environment variables", err)
	}

	config := &Config{
		PORT:                os.Getenv("PORT"),
		DB_HOST:             os.Getenv("DB_HOST"),
		DB_PORT:             os.Getenv("DB_PORT"),
		DB_USER:             os.Getenv("DB_USER"),
		DB_PASSWORD:         os.Getenv("DB_PASSWORD"),
		DB_NAME:             os.Getenv("DB_NAME"),
		ES_URL:              os.Getenv("ES_URL"),
		ES_USER:             os.Getenv("ES_USER"),
		ES_PASSWORD:         os.Getenv("ES_PASSWORD"),
		JWT_SECRET:          os.Getenv("JWT_SECRET"),
		REFRESH_SECRET:      os.Getenv("REFRESH_SECRET"),
		KAFKA_ADDRESS:       os.Getenv("KAFKA_ADDRESS"),
		ROZETKAPAY_URL:      os.Getenv("ROZETKAPAY_URL"),
		ROZETKAPAY_LOGIN:    os.Getenv("ROZETKAPAY_LOGIN"),
		ROZETKAPAY_PASSWORD: os.Getenv("ROZETKAPAY_PASSWORD"),
		PUBLIC_BASE_URL:     os.Getenv("PUBLIC_BASE_URL"),
		LOG_LEVEL:           os.Getenv("LOG_LEVEL"),
	}

	if config.PORT == "" {
		config.PORT = "8080"
	}

	return config, nil
}

func InitDB() (*gorm.DB, error) {
	configuration, _ := LoadConfig()

	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		configuration.DB_USER,
		configuration.DB_PASSWORD,
		configuration.DB_HOST,
		configuration.DB_PORT,
		configuration.DB_NAME,
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return db, nil
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.RefreshToken{},
		&models.Category{},
		&models.Product{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.Payment{},
		&models.HeroSlide{},
		&models.PopularCategory{},
		&models.ActualOffer{},
		&models.Promotion{},
		&models.CustomerNote{},
		&models.CRMTask{},
		&models.Lead{},
	)
}
