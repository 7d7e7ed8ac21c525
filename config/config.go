package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort  int
	FrontendURL string
	Database    DatabaseConfig
	Auth        AuthConfig
	Mail        MailConfig
	Storage     StorageConfig
	RateLimit   RateLimitConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	UseSSL   bool
}

// AuthConfig holds the two signing secrets. The email secret signs
// verification tokens only and the session secret signs session tokens
// only; they must differ so a leak of one does not compromise the other.
type AuthConfig struct {
	SessionSecret string
	EmailSecret   string
	SessionTTL    time.Duration
	VerifyTTL     time.Duration
}

type MailConfig struct {
	Provider       string // "sendgrid" or "log"
	SendGridAPIKey string
	FromAddress    string
}

type StorageConfig struct {
	Backend       string // "minio" or "gcs"
	PublicBaseURL string
	Minio         MinioConfig
	GCS           GCSConfig
}

type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

type GCSConfig struct {
	Bucket          string
	ProjectID       string
	CredentialsFile string
}

type RateLimitConfig struct {
	RPS   float64
	Burst int
}

func LoadConfig() Config {
	if os.Getenv("ENV") == "dev" {
		godotenv.Load()
	}

	dbConfig := DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnvInt("DB_PORT", 5432),
		User:     getEnv("DB_USER", "freefinder"),
		Password: getEnv("DB_PASSWORD", "password"),
		DBName:   getEnv("DB_NAME", "freefinder_db"),
		UseSSL:   getEnvBool("DB_USE_SSL", false),
	}

	authConfig := AuthConfig{
		SessionSecret: getEnv("TOKEN_SECRET", ""),
		EmailSecret:   getEnv("EMAIL_SECRET", ""),
		SessionTTL:    getEnvDuration("SESSION_TTL", 24*time.Hour),
		VerifyTTL:     getEnvDuration("VERIFY_TTL", time.Hour),
	}

	mailConfig := MailConfig{
		Provider:       getEnv("MAIL_PROVIDER", "log"),
		SendGridAPIKey: getEnv("SENDGRID_API_KEY", ""),
		FromAddress:    getEnv("EMAIL_USER", "no-reply@freefinder.app"),
	}

	storageConfig := StorageConfig{
		Backend:       getEnv("STORAGE_BACKEND", "minio"),
		PublicBaseURL: getEnv("STORAGE_PUBLIC_URL", ""),
		Minio: MinioConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", "freefinder-images"),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		GCS: GCSConfig{
			Bucket:          getEnv("GCS_BUCKET", ""),
			ProjectID:       getEnv("GCS_PROJECT_ID", ""),
			CredentialsFile: getEnv("GCS_CREDENTIALS_FILE", ""),
		},
	}

	return Config{
		ServerPort:  getEnvInt("SERVER_PORT", 8000),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:5173"),
		Database:    dbConfig,
		Auth:        authConfig,
		Mail:        mailConfig,
		Storage:     storageConfig,
		RateLimit: RateLimitConfig{
			RPS:   getEnvFloat("RATE_LIMIT_RPS", 1),
			Burst: getEnvInt("RATE_LIMIT_BURST", 5),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if valueStr, exists := os.LookupEnv(key); exists {
		var value int
		fmt.Sscanf(valueStr, "%d", &value)
		return value
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if valueStr, exists := os.LookupEnv(key); exists {
		var value float64
		fmt.Sscanf(valueStr, "%g", &value)
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if valueStr, exists := os.LookupEnv(key); exists {
		return valueStr == "true" || valueStr == "1"
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if valueStr, exists := os.LookupEnv(key); exists {
		if value, err := time.ParseDuration(valueStr); err == nil {
			return value
		}
	}
	return defaultValue
}
