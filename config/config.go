// file: config/config.go
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all the configuration variables for the application
type Config struct {
	Env  string
	Port string

	DBDriver    string
	DBHost      string
	DBUser      string
	DBPass      string
	DBName      string
	DBPort      string
	AutoMigrate bool

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// MembershipNotifier selects how busy-set changes fan out:
	// auto, postgres, redis or local.
	MembershipNotifier string

	JWTSecret   string
	JWTTTLHours int

	CORSOrigins   []string
	PublicBaseURL string

	StorageDriver   string
	UploadDir       string
	OSSEndpoint     string
	OSSAccessKey    string
	OSSAccessSecret string
	OSSBucketPrefix string

	SMTPHost     string
	SMTPPort     string
	SMTPUser     string
	SMTPPassword string
	MailFrom     string

	AdminEmail    string
	AdminPassword string
}

// Load reads the application configuration from environment variables
// and the .env file if it exists.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file found, using system environment variables")
	}

	return &Config{
		Env:  getEnvOrDefault("ENV", "development"),
		Port: getEnvOrDefault("PORT", "8080"),

		DBDriver:    strings.ToLower(getEnvOrDefault("DB_DRIVER", "postgres")),
		DBHost:      getEnvOrDefault("DB_HOST", "localhost"),
		DBUser:      getEnvOrDefault("DB_USER", "hackathon"),
		DBPass:      getEnvOrDefault("DB_PASSWORD", "hackathon"),
		DBName:      getEnvOrDefault("DB_NAME", "hackathon"),
		DBPort:      getEnvOrDefault("DB_PORT", "5432"),
		AutoMigrate: getEnvBool("AUTO_MIGRATE", true),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		MembershipNotifier: strings.ToLower(getEnvOrDefault("MEMBERSHIP_NOTIFIER", "auto")),

		JWTSecret:   os.Getenv("JWT_SECRET"),
		JWTTTLHours: getEnvInt("JWT_TTL_HOURS", 24*7),

		CORSOrigins:   splitList(getEnvOrDefault("CORS_ORIGINS", "http://localhost:5173")),
		PublicBaseURL: strings.TrimRight(getEnvOrDefault("PUBLIC_BASE_URL", "http://localhost:5173"), "/"),

		StorageDriver:   strings.ToLower(getEnvOrDefault("STORAGE_DRIVER", "local")),
		UploadDir:       getEnvOrDefault("UPLOAD_DIR", "./uploads"),
		OSSEndpoint:     os.Getenv("OSS_ENDPOINT"),
		OSSAccessKey:    os.Getenv("OSS_ACCESS_KEY_ID"),
		OSSAccessSecret: os.Getenv("OSS_ACCESS_KEY_SECRET"),
		OSSBucketPrefix: os.Getenv("OSS_BUCKET_PREFIX"),

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     getEnvOrDefault("SMTP_PORT", "587"),
		SMTPUser:     os.Getenv("SMTP_USER"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		MailFrom:     getEnvOrDefault("MAIL_FROM", "no-reply@hackathon.local"),

		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
	}
}

// IsProduction reports whether the service runs with production settings.
func (c *Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}

// Validate checks the combinations Load cannot default away.
func (c *Config) Validate() error {
	switch c.DBDriver {
	case "postgres", "mysql":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	switch c.StorageDriver {
	case "local":
	case "oss":
		if c.OSSEndpoint == "" || c.OSSAccessKey == "" || c.OSSAccessSecret == "" {
			return fmt.Errorf("STORAGE_DRIVER=oss requires OSS_ENDPOINT, OSS_ACCESS_KEY_ID and OSS_ACCESS_KEY_SECRET")
		}
	default:
		return fmt.Errorf("unsupported STORAGE_DRIVER %q", c.StorageDriver)
	}
	switch c.MembershipNotifier {
	case "auto", "local":
	case "postgres":
		if c.DBDriver != "postgres" {
			return fmt.Errorf("MEMBERSHIP_NOTIFIER=postgres requires DB_DRIVER=postgres")
		}
	case "redis":
		if c.RedisAddr == "" {
			return fmt.Errorf("MEMBERSHIP_NOTIFIER=redis requires REDIS_ADDR")
		}
	default:
		return fmt.Errorf("unsupported MEMBERSHIP_NOTIFIER %q", c.MembershipNotifier)
	}
	if c.IsProduction() && c.SMTPHost == "" {
		return fmt.Errorf("SMTP_HOST must be set in production")
	}
	if c.JWTSecret == "" {
		if c.IsProduction() {
			return fmt.Errorf("JWT_SECRET must be set in production")
		}
		c.JWTSecret = "dev-only-secret-change-me"
	}
	if c.JWTTTLHours <= 0 {
		return fmt.Errorf("JWT_TTL_HOURS must be positive")
	}
	return nil
}

// DSN builds the driver specific connection string.
func (c *Config) DSN() string {
	if c.DBDriver == "mysql" {
		return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			c.DBUser, c.DBPass, c.DBHost, c.DBPort, c.DBName)
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		c.DBHost, c.DBUser, c.DBPass, c.DBName, c.DBPort)
}

func getEnvOrDefault(key, fallback string) string {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return fallback
	}
	return value
}

func getEnvInt(key string, fallback int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	switch strings.ToLower(os.Getenv(key)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
