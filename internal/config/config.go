package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Payment  PaymentConfig
	Referral ReferralConfig
	SMTP     SMTPConfig
	Admin    AdminConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	ClientURL          string
	Environment        string
	LogFilePath        string
	CommissionLogPath  string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	OtelEnabled        bool
	// StorageDriver is "postgres" or "memory".
	StorageDriver string
}

func (a AppConfig) IsProduction() bool {
	return a.Environment == "production"
}

type DatabaseConfig struct {
	Connection string
}

type PaymentConfig struct {
	MidtransServerKey   string
	MidtransEnvironment string
	// GatewayWebhookSecret authenticates /webhooks/gateway deliveries.
	GatewayWebhookSecret string
}

type ReferralConfig struct {
	DefaultCommissionRate int
	UseCalculator         bool
	CalculatorType        string
	CustomerDiscountPct   int
	LevelCacheTTL         time.Duration
	ValidateRateLimit     int
	ValidateRateWindow    time.Duration
	CommissionTopic       string
}

type SMTPConfig struct {
	Host       string
	Port       int
	Email      string
	Password   string
	SenderName string
}

func (s SMTPConfig) Enabled() bool {
	return s.Host != ""
}

type AdminConfig struct {
	Email        string
	PasswordHash string
	JWTSecret    string
	TokenTTL     time.Duration
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			ClientURL:          getEnv("CLIENT_URL", "http://localhost:5173"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CommissionLogPath:  getEnv("COMMISSION_LOG_PATH", "commission.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", ""),
			RedisURL:           getEnv("REDIS_URL", ""),
			OtelEnabled:        getEnvAsBool("OTEL_ENABLED", false),
			StorageDriver:      strings.ToLower(getEnv("STORAGE_DRIVER", "postgres")),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Payment: PaymentConfig{
			MidtransServerKey:    getEnv("MIDTRANS_SERVER_KEY", ""),
			MidtransEnvironment:  getEnv("MIDTRANS_ENV", "sandbox"),
			GatewayWebhookSecret: getEnv("GATEWAY_WEBHOOK_SECRET", ""),
		},
		Referral: ReferralConfig{
			DefaultCommissionRate: getEnvAsInt("REFERRAL_DEFAULT_COMMISSION_RATE", 10),
			UseCalculator:         getEnvAsBool("REFERRAL_INITIAL_USE_CALCULATOR", false),
			CalculatorType:        getEnv("REFERRAL_CALCULATOR_TYPE", "standard"),
			CustomerDiscountPct:   getEnvAsInt("REFERRAL_CUSTOMER_DISCOUNT_PCT", 10),
			LevelCacheTTL:         getEnvAsDuration("REFERRAL_LEVEL_CACHE_TTL", 5*time.Minute),
			ValidateRateLimit:     getEnvAsInt("REFERRAL_VALIDATE_RATE_LIMIT", 20),
			ValidateRateWindow:    getEnvAsDuration("REFERRAL_VALIDATE_RATE_WINDOW", time.Minute),
			CommissionTopic:       getEnv("COMMISSION_TOPIC_NAME", "PROCESS_REFERRAL_COMMISSION"),
		},
		SMTP: SMTPConfig{
			Host:       getEnv("SMTP_HOST", ""),
			Port:       getEnvAsInt("SMTP_PORT", 587),
			Email:      getEnv("SMTP_EMAIL", ""),
			Password:   getEnv("SMTP_PASSWORD", ""),
			SenderName: getEnv("SMTP_SENDER_NAME", "Sparkle Cleaning"),
		},
		Admin: AdminConfig{
			Email:        getEnv("ADMIN_EMAIL", ""),
			PasswordHash: getEnv("ADMIN_PASSWORD_HASH", ""),
			JWTSecret:    getEnv("JWT_SECRET", ""),
			TokenTTL:     getEnvAsDuration("ADMIN_TOKEN_TTL", 12*time.Hour),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	if value, err := strconv.ParseBool(getEnv(key, "")); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	if value, err := time.ParseDuration(getEnv(key, "")); err == nil {
		return value
	}
	return fallback
}
