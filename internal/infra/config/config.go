package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

// Config holds the process-wide environment settings.
type Config struct {
	Port string

	FirestoreProjectID       string
	FirestoreCredentialsFile string
	FirebaseProjectID        string
	GCPCreds                 string

	// Identity Toolkit REST key for password and anonymous sign-in.
	IdentityAPIKey string

	// Optional custom token minted by an external provisioning step; the
	// session falls back to anonymous sign-in when it is absent or rejected.
	BootstrapToken       string
	BootstrapTokenSecret string

	AdminEmail string

	SendGridAPIKey string
	MailFrom       string
	StoreName      string

	ProductImageBucket string

	// Postgres archive target. Empty host disables order archiving.
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
}

// Load reads .env (best effort, local dev only) then the environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("[config] .env not loaded: %v", err)
	}

	defaultProject := getenvDefault("GCP_PROJECT_ID", "storefront-dev")

	cfg := &Config{
		Port: getenvDefault("PORT", "8080"),

		FirestoreProjectID:       getenvDefault("FIRESTORE_PROJECT_ID", defaultProject),
		FirestoreCredentialsFile: os.Getenv("FIRESTORE_CREDENTIALS_FILE"),
		FirebaseProjectID:        getenvDefault("FIREBASE_PROJECT_ID", defaultProject),
		GCPCreds:                 os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),

		IdentityAPIKey: os.Getenv("IDENTITY_API_KEY"),

		BootstrapToken:       os.Getenv("BOOTSTRAP_CUSTOM_TOKEN"),
		BootstrapTokenSecret: os.Getenv("BOOTSTRAP_TOKEN_SECRET"),

		AdminEmail: getenvDefault("ADMIN_EMAIL", "admin@example.com"),

		SendGridAPIKey: os.Getenv("SENDGRID_API_KEY"),
		MailFrom:       getenvDefault("MAIL_FROM", "no-reply@example.com"),
		StoreName:      getenvDefault("STORE_NAME", "Storefront"),

		ProductImageBucket: os.Getenv("PRODUCT_IMAGE_BUCKET"),

		PostgresHost:     os.Getenv("POSTGRES_HOST"),
		PostgresPort:     getenvDefault("POSTGRES_PORT", "5432"),
		PostgresUser:     getenvDefault("POSTGRES_USER", "postgres"),
		PostgresPassword: os.Getenv("POSTGRES_PASSWORD"),
		PostgresDB:       getenvDefault("POSTGRES_DB", "storefront"),
	}

	return cfg
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
