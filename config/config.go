package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	// DefaultResendCooldown is how long the admissions form waits before another OTP may be sent
	DefaultResendCooldown = 60 * time.Second
	// DefaultVerificationTTL is how long an unfinished phone verification session lives
	DefaultVerificationTTL = 30 * time.Minute
)

type Config struct {
	ServerPort  string
	DBPath      string
	Environment string
	UploadDir   string
	LogLevel    string
	LogFormat   string
	// Turso (optional, replaces the local SQLite file when set)
	TursoDatabaseURL string
	TursoAuthToken   string
	// Redis (optional, verification sessions are kept in memory when empty)
	RedisURL string
	// Email (Resend)
	ResendAPIKey        string
	EmailFrom           string
	EmailFromName       string
	EmailTestMode       bool // When true, emails are logged to console instead of sent
	AdmissionsTeamEmail string
	// MSG91 OTP
	MSG91AuthKey    string
	MSG91TemplateID string
	MSG91BaseURL    string
	ResendCooldown  time.Duration
	VerificationTTL time.Duration
	// Generative AI (server-side only)
	GenAIAPIKey  string
	GenAIModel   string
	GenAIBaseURL string
	// Cloudflare Turnstile
	TurnstileSecretKey string
	// Admin
	AdminUsername     string
	AdminPasswordHash string
	// Other
	AllowedOrigins []string
	AppURL         string
	// Cloudflare R2 Storage
	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2PublicURL       string
}

func Load() *Config {
	// Load .env file (ignore error if not present - use system env vars)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	environment := getEnv("ENVIRONMENT", "development")
	adminHash := getEnv("ADMIN_PASSWORD_HASH", "")
	ValidateAdminPasswordHash(adminHash, environment)

	logFormat := "console"
	if environment == "production" {
		logFormat = "json"
	}

	return &Config{
		ServerPort:          getEnv("SERVER_PORT", "8080"),
		DBPath:              getEnv("DB_PATH", "db/app.db"),
		Environment:         environment,
		UploadDir:           getEnv("UPLOAD_DIR", "static/exports"),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		LogFormat:           getEnv("LOG_FORMAT", logFormat),
		TursoDatabaseURL:    getEnv("TURSO_DATABASE_URL", ""),
		TursoAuthToken:      getEnv("TURSO_AUTH_TOKEN", ""),
		RedisURL:            getEnv("REDIS_URL", ""),
		ResendAPIKey:        getEnv("RESEND_API_KEY", ""),
		EmailFrom:           getEnv("EMAIL_FROM", "admissions@skywingsacademy.in"),
		EmailFromName:       getEnv("EMAIL_FROM_NAME", "SkyWings Academy"),
		EmailTestMode:       getEnvBool("EMAIL_TEST_MODE", true), // Default true for safety
		AdmissionsTeamEmail: getEnv("ADMISSIONS_TEAM_EMAIL", "admissions@skywingsacademy.in"),
		MSG91AuthKey:        getEnv("MSG91_AUTH_KEY", ""),
		MSG91TemplateID:     getEnv("MSG91_TEMPLATE_ID", ""),
		MSG91BaseURL:        getEnv("MSG91_BASE_URL", "https://control.msg91.com"),
		ResendCooldown:      getEnvDuration("OTP_RESEND_COOLDOWN", DefaultResendCooldown),
		VerificationTTL:     getEnvDuration("VERIFICATION_TTL", DefaultVerificationTTL),
		GenAIAPIKey:         getEnv("GENAI_API_KEY", ""),
		GenAIModel:          getEnv("GENAI_MODEL", "gemini-2.0-flash"),
		GenAIBaseURL:        getEnv("GENAI_BASE_URL", "https://generativelanguage.googleapis.com"),
		TurnstileSecretKey:  getEnv("TURNSTILE_SECRET_KEY", ""),
		AdminUsername:       getEnv("ADMIN_USERNAME", "admin"),
		AdminPasswordHash:   adminHash,
		AllowedOrigins:      strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
		AppURL:              getEnv("APP_URL", "http://localhost:3000"),
		R2AccountID:         getEnv("R2_ACCOUNT_ID", ""),
		R2AccessKeyID:       getEnv("R2_ACCESS_KEY_ID", ""),
		R2SecretAccessKey:   getEnv("R2_SECRET_ACCESS_KEY", ""),
		R2BucketName:        getEnv("R2_BUCKET_NAME", ""),
		R2PublicURL:         getEnv("R2_PUBLIC_URL", ""),
	}
}

// IsProduction reports whether the app runs with production safeguards
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	switch strings.ToLower(value) {
	case "true", "1", "yes", "on":
		return true
	case "false", "0", "no", "off":
		return false
	default:
		return defaultValue
	}
}

// getEnvDuration accepts Go duration strings ("90s") or a plain number of seconds
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	log.Printf("[WARNING] Invalid duration for %s: %q, using %s", key, value, defaultValue)
	return defaultValue
}

// ValidateAdminPasswordHash refuses to boot a production server without a bcrypt
// admin password hash.
func ValidateAdminPasswordHash(hash string, environment string) {
	if hash != "" {
		if !strings.HasPrefix(hash, "$2") {
			if environment == "production" {
				log.Fatal("[CRITICAL] ADMIN_PASSWORD_HASH is not a bcrypt hash. Generate one with: go run ./cmd/hash-password")
			}
			log.Println("[WARNING] ADMIN_PASSWORD_HASH is not a bcrypt hash; admin routes will reject every login.")
		}
		return
	}

	if environment == "production" {
		log.Fatal("[CRITICAL] ADMIN_PASSWORD_HASH must be set in production. Generate one with: go run ./cmd/hash-password")
	}
	log.Println("[INFO] ADMIN_PASSWORD_HASH not set; admin routes are disabled in development.")
}
