// internal/infra/config/config.go
package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

// Config holds the process-wide environment configuration.
type Config struct {
	Port string

	FirestoreProjectID       string
	FirestoreCredentialsFile string
	FirebaseProjectID        string

	AllowedOrigin string

	// Postgres reporting mirror. Empty disables reporting.
	DatabaseURL string

	// Redis read cache. Empty disables caching.
	RedisAddr     string
	RedisPassword string

	// Hosted-checkout gateway.
	PaymentBaseURL       string
	PaymentAPIKey        string
	PaymentWebhookSecret string
	CheckoutSuccessURL   string
	CheckoutCancelURL    string

	// Confirmation mail. Empty key disables mail.
	SendGridAPIKey string
	MailFrom       string
}

// Load reads the environment (a local .env is applied first when
// present) and returns the configuration.
func Load() *Config {
	if err := godotenv.Load(); err == nil {
		log.Printf("[config] .env loaded")
	}

	defaultProject := getenvDefault("GCP_PROJECT_ID", "remarket-dev")

	return &Config{
		Port: getenvDefault("PORT", "8080"),

		FirestoreProjectID:       getenvDefault("FIRESTORE_PROJECT_ID", defaultProject),
		FirestoreCredentialsFile: os.Getenv("FIRESTORE_CREDENTIALS_FILE"),
		FirebaseProjectID:        getenvDefault("FIREBASE_PROJECT_ID", defaultProject),

		AllowedOrigin: os.Getenv("ALLOWED_ORIGIN"),

		DatabaseURL: os.Getenv("DATABASE_URL"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		PaymentBaseURL:       os.Getenv("PAYMENT_BASE_URL"),
		PaymentAPIKey:        os.Getenv("PAYMENT_API_KEY"),
		PaymentWebhookSecret: os.Getenv("PAYMENT_WEBHOOK_SECRET"),
		CheckoutSuccessURL:   os.Getenv("CHECKOUT_SUCCESS_URL"),
		CheckoutCancelURL:    os.Getenv("CHECKOUT_CANCEL_URL"),

		SendGridAPIKey: os.Getenv("SENDGRID_API_KEY"),
		MailFrom:       os.Getenv("MAIL_FROM"),
	}
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
