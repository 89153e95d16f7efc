package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database   DatabaseConfig
	Redis      RedisConfig
	JWT        JWTConfig
	CORS       CORSConfig
	Log        LogConfig
	Mail       MailConfig
	Storage    StorageConfig
	RecycleBin RecycleBinConfig
	Invoices   InvoicesConfig
	Gallery    GalleryConfig
	Library    LibraryConfig
	Donations  DonationsConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret            string
	Expiration        time.Duration
	RefreshExpiration time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// MailConfig selects and configures the outbound email backend.
type MailConfig struct {
	Backend     string // "sendgrid" or "console"
	SendgridKey string
	FromName    string
	FromEmail   string
}

// StorageConfig controls where uploaded media and rendered documents live.
type StorageConfig struct {
	BaseDir         string
	PublicBaseURL   string
	SignedURLSecret string
	SignedURLTTL    time.Duration
}

// RecycleBinConfig governs soft-delete retention.
type RecycleBinConfig struct {
	TTL           time.Duration
	SweepInterval time.Duration
}

// InvoicesConfig tunes invoice numbering and dispatch.
type InvoicesConfig struct {
	NumberPrefix      string
	WorkerConcurrency int
	WorkerRetries     int
	CompanyName       string
	CompanyEmail      string
	CompanyPhone      string
	CompanyAddress    string
}

// GalleryConfig governs cache behaviour for the public gallery listing.
type GalleryConfig struct {
	CacheTTL time.Duration
}

// LibraryConfig governs cache behaviour for library search results.
type LibraryConfig struct {
	CacheTTL time.Duration
}

// DonationsConfig configures the payment gateway boundary.
type DonationsConfig struct {
	Gateway         string // "offline" is the only built-in backend
	Currency        string
	MinAmountCents  int64
	WebhookSecret   string
	SuccessRedirect string
	CancelRedirect  string
}

// Load reads configuration from the environment (and an optional .env file).
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:            v.GetString("JWT_SECRET"),
		Expiration:        parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
		RefreshExpiration: parseDuration(v.GetString("REFRESH_TOKEN_EXPIRATION"), 7*24*time.Hour),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Mail = MailConfig{
		Backend:     v.GetString("MAIL_BACKEND"),
		SendgridKey: v.GetString("SENDGRID_API_KEY"),
		FromName:    v.GetString("MAIL_FROM_NAME"),
		FromEmail:   v.GetString("MAIL_FROM_EMAIL"),
	}

	cfg.Storage = StorageConfig{
		BaseDir:         v.GetString("STORAGE_DIR"),
		PublicBaseURL:   v.GetString("STORAGE_PUBLIC_BASE_URL"),
		SignedURLSecret: v.GetString("STORAGE_SIGNED_URL_SECRET"),
		SignedURLTTL:    parseDuration(v.GetString("STORAGE_SIGNED_URL_TTL"), 24*time.Hour),
	}

	cfg.RecycleBin = RecycleBinConfig{
		TTL:           parseDuration(v.GetString("RECYCLE_BIN_TTL"), 30*24*time.Hour),
		SweepInterval: parseDuration(v.GetString("RECYCLE_BIN_SWEEP_INTERVAL"), time.Hour),
	}

	cfg.Invoices = InvoicesConfig{
		NumberPrefix:      v.GetString("INVOICE_NUMBER_PREFIX"),
		WorkerConcurrency: v.GetInt("INVOICE_WORKER_CONCURRENCY"),
		WorkerRetries:     v.GetInt("INVOICE_WORKER_RETRIES"),
		CompanyName:       v.GetString("INVOICE_COMPANY_NAME"),
		CompanyEmail:      v.GetString("INVOICE_COMPANY_EMAIL"),
		CompanyPhone:      v.GetString("INVOICE_COMPANY_PHONE"),
		CompanyAddress:    v.GetString("INVOICE_COMPANY_ADDRESS"),
	}

	cfg.Gallery = GalleryConfig{
		CacheTTL: parseDuration(v.GetString("GALLERY_CACHE_TTL"), 5*time.Minute),
	}

	cfg.Library = LibraryConfig{
		CacheTTL: parseDuration(v.GetString("LIBRARY_CACHE_TTL"), 5*time.Minute),
	}

	minDonation := v.GetInt64("DONATION_MIN_AMOUNT_CENTS")
	if minDonation <= 0 {
		minDonation = 100
	}
	cfg.Donations = DonationsConfig{
		Gateway:         v.GetString("DONATION_GATEWAY"),
		Currency:        v.GetString("DONATION_CURRENCY"),
		MinAmountCents:  minDonation,
		WebhookSecret:   v.GetString("DONATION_WEBHOOK_SECRET"),
		SuccessRedirect: v.GetString("DONATION_SUCCESS_REDIRECT"),
		CancelRedirect:  v.GetString("DONATION_CANCEL_REDIRECT"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "lms")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 25)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("MAIL_BACKEND", "console")
	v.SetDefault("MAIL_FROM_NAME", "LMS")
	v.SetDefault("MAIL_FROM_EMAIL", "noreply@localhost")

	v.SetDefault("STORAGE_DIR", "./uploads")
	v.SetDefault("STORAGE_PUBLIC_BASE_URL", "/files")

	v.SetDefault("INVOICE_NUMBER_PREFIX", "INV")
	v.SetDefault("INVOICE_WORKER_CONCURRENCY", 2)
	v.SetDefault("INVOICE_WORKER_RETRIES", 3)

	v.SetDefault("DONATION_GATEWAY", "offline")
	v.SetDefault("DONATION_CURRENCY", "usd")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
