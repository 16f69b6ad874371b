package config

import (
	"errors"
	"strconv"
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

	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	CORS      CORSConfig
	Log       LogConfig
	Mail      MailConfig
	Letters   LettersConfig
	Reminders RemindersConfig
	Listings  ListingsConfig
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

// MailConfig configures the SMTP transport and the dispatch queue.
type MailConfig struct {
	Enabled      bool
	Host         string
	Port         int
	Username     string
	Password     string
	FromAddress  string
	FromName     string
	QueueWorkers int
	QueueRetries int
}

// LettersConfig controls recommendation letter generation and download links.
type LettersConfig struct {
	StorageDir      string
	SignedURLSecret string
	SignedURLTTL    time.Duration
	UniversityName  string
	SignatoryName   string
	SignatoryTitle  string
}

// RemindersConfig tunes the externally triggered reminder sweep.
type RemindersConfig struct {
	Enabled          bool
	DeadlineOffsets  []int
	StaleReviewDays  []int
	MaxNoticesPerRun int
}

// ListingsConfig governs cache behaviour for public internship listings.
type ListingsConfig struct {
	CacheEnabled bool
	CacheTTL     time.Duration
}

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
		Enabled:      v.GetBool("MAIL_ENABLED"),
		Host:         v.GetString("MAIL_HOST"),
		Port:         v.GetInt("MAIL_PORT"),
		Username:     v.GetString("MAIL_USERNAME"),
		Password:     v.GetString("MAIL_PASSWORD"),
		FromAddress:  v.GetString("MAIL_FROM_ADDRESS"),
		FromName:     v.GetString("MAIL_FROM_NAME"),
		QueueWorkers: v.GetInt("MAIL_QUEUE_WORKERS"),
		QueueRetries: v.GetInt("MAIL_QUEUE_RETRIES"),
	}

	cfg.Letters = LettersConfig{
		StorageDir:      v.GetString("LETTERS_STORAGE_DIR"),
		SignedURLSecret: v.GetString("LETTERS_SIGNED_URL_SECRET"),
		SignedURLTTL:    parseDuration(v.GetString("LETTERS_SIGNED_URL_TTL"), 24*time.Hour),
		UniversityName:  v.GetString("LETTERS_UNIVERSITY_NAME"),
		SignatoryName:   v.GetString("LETTERS_SIGNATORY_NAME"),
		SignatoryTitle:  v.GetString("LETTERS_SIGNATORY_TITLE"),
	}

	cfg.Reminders = RemindersConfig{
		Enabled:          v.GetBool("ENABLE_REMINDERS"),
		DeadlineOffsets:  splitAndTrimInts(v.GetString("REMINDER_DEADLINE_OFFSETS"), []int{7, 3, 1}),
		StaleReviewDays:  splitAndTrimInts(v.GetString("REMINDER_STALE_REVIEW_DAYS"), []int{7, 14}),
		MaxNoticesPerRun: v.GetInt("REMINDER_MAX_NOTICES_PER_RUN"),
	}

	cfg.Listings = ListingsConfig{
		CacheEnabled: v.GetBool("ENABLE_LISTING_CACHE"),
		CacheTTL:     parseDuration(v.GetString("LISTING_CACHE_TTL"), 5*time.Minute),
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
	v.SetDefault("DB_NAME", "internship_office")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "24h")
	v.SetDefault("REFRESH_TOKEN_EXPIRATION", "168h")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("MAIL_ENABLED", false)
	v.SetDefault("MAIL_HOST", "localhost")
	v.SetDefault("MAIL_PORT", 587)
	v.SetDefault("MAIL_USERNAME", "")
	v.SetDefault("MAIL_PASSWORD", "")
	v.SetDefault("MAIL_FROM_ADDRESS", "internship-office@university.edu")
	v.SetDefault("MAIL_FROM_NAME", "Internship Office")
	v.SetDefault("MAIL_QUEUE_WORKERS", 1)
	v.SetDefault("MAIL_QUEUE_RETRIES", 3)

	v.SetDefault("LETTERS_STORAGE_DIR", "./letters")
	v.SetDefault("LETTERS_SIGNED_URL_SECRET", "dev_letters_secret")
	v.SetDefault("LETTERS_SIGNED_URL_TTL", "24h")
	v.SetDefault("LETTERS_UNIVERSITY_NAME", "University Internship Office")
	v.SetDefault("LETTERS_SIGNATORY_NAME", "Director of Career Services")
	v.SetDefault("LETTERS_SIGNATORY_TITLE", "Director")

	v.SetDefault("ENABLE_REMINDERS", false)
	v.SetDefault("REMINDER_DEADLINE_OFFSETS", "7,3,1")
	v.SetDefault("REMINDER_STALE_REVIEW_DAYS", "7,14")
	v.SetDefault("REMINDER_MAX_NOTICES_PER_RUN", 500)

	v.SetDefault("ENABLE_LISTING_CACHE", false)
	v.SetDefault("LISTING_CACHE_TTL", "5m")
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
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

func splitAndTrimInts(raw string, fallback []int) []int {
	parts := splitAndTrim(raw)
	if len(parts) == 0 {
		return fallback
	}

	result := make([]int, 0, len(parts))
	for _, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n <= 0 {
			continue
		}
		result = append(result, n)
	}
	if len(result) == 0 {
		return fallback
	}

	return result
}
