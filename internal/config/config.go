package config

import (
	"errors"
	"log"
	"os"

	"github.com/joho/godotenv"
)

// Config holds every environment-derived setting. It is loaded once in main
// and passed explicitly to the components that need it.
type Config struct {
	MongoURI      string
	MongoDatabase string
	APIPort       string

	JWTSecret string

	AdminEmail    string
	AdminPassword string

	RazorpayKeyID     string
	RazorpayKeySecret string
	Currency          string

	CloudinaryURL string

	TextbeltAPIKey string

	AllowedOrigins []string
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables.")
	}

	cfg := &Config{
		MongoURI:          os.Getenv("MONGO_URI"),
		MongoDatabase:     os.Getenv("MONGO_DATABASE"),
		APIPort:           os.Getenv("API_PORT"),
		JWTSecret:         os.Getenv("JWT_SECRET"),
		AdminEmail:        os.Getenv("ADMIN_EMAIL"),
		AdminPassword:     os.Getenv("ADMIN_PASSWORD"),
		RazorpayKeyID:     os.Getenv("RAZORPAY_KEY_ID"),
		RazorpayKeySecret: os.Getenv("RAZORPAY_KEY_SECRET"),
		Currency:          os.Getenv("CURRENCY"),
		CloudinaryURL:     os.Getenv("CLOUDINARY_URL"),
		TextbeltAPIKey:    os.Getenv("TEXTBELT_API_KEY"),
	}

	if cfg.APIPort == "" {
		cfg.APIPort = "8080"
	}
	if cfg.Currency == "" {
		cfg.Currency = "INR"
	}
	if origin := os.Getenv("ALLOWED_ORIGIN"); origin != "" {
		cfg.AllowedOrigins = []string{origin}
	} else {
		cfg.AllowedOrigins = []string{"http://localhost:5173"}
	}

	if cfg.MongoURI == "" {
		return nil, errors.New("MONGO_URI is not set")
	}
	if cfg.MongoDatabase == "" {
		return nil, errors.New("MONGO_DATABASE is not set")
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is not set")
	}

	return cfg, nil
}
