package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

var DB *gorm.DB

// ZohoConfig holds the four invoicing-provider secrets. All four must be
// present before any provider-backed operation is attempted.
type ZohoConfig struct {
	ClientID       string
	ClientSecret   string
	RefreshToken   string
	OrganizationID string
}

// Complete reports whether every required secret is set
func (z ZohoConfig) Complete() bool {
	return z.ClientID != "" && z.ClientSecret != "" && z.RefreshToken != "" && z.OrganizationID != ""
}

// Config holds all configuration for the application
type Config struct {
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	JWTSecret  string
	Port       string
	Env        string

	Zoho ZohoConfig

	RazorpayKey    string
	RazorpaySecret string

	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string

	SupportEmail string
	FrontendURL  string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("error loading .env file: %v", err)
	}

	config := &Config{
		DBHost:     os.Getenv("DB_HOST"),
		DBPort:     os.Getenv("DB_PORT"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
		JWTSecret:  os.Getenv("JWT_SECRET"),
		Port:       os.Getenv("PORT"),
		Env:        os.Getenv("ENV"),
		Zoho: ZohoConfig{
			ClientID:       os.Getenv("ZOHO_CLIENT_ID"),
			ClientSecret:   os.Getenv("ZOHO_CLIENT_SECRET"),
			RefreshToken:   os.Getenv("ZOHO_REFRESH_TOKEN"),
			OrganizationID: os.Getenv("ZOHO_ORGANIZATION_ID"),
		},
		RazorpayKey:    os.Getenv("RAZORPAY_KEY"),
		RazorpaySecret: os.Getenv("RAZORPAY_SECRET"),
		SMTPHost:       os.Getenv("SMTP_HOST"),
		SMTPPort:       os.Getenv("SMTP_PORT"),
		SMTPUsername:   os.Getenv("SMTP_USERNAME"),
		SMTPPassword:   os.Getenv("SMTP_PASSWORD"),
		SMTPFrom:       os.Getenv("SMTP_FROM"),
		SupportEmail:   os.Getenv("SUPPORT_EMAIL"),
		FrontendURL:    os.Getenv("FRONTEND_URL"),
	}

	if config.SupportEmail == "" {
		config.SupportEmail = "support@techcare.io"
	}
	if config.Port == "" {
		config.Port = "8080"
	}

	return config, nil
}
