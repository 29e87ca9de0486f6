// Package config loads server settings from the environment.
//
// An optional .env file in the working directory is read first; variables
// already set in the environment win over it. Every key has a default except
// JWT_SECRET, which Validate requires.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

type DB struct {
	Driver string // "sqlite" or "postgres"
	DSN    string
}

// MinIO configures club image storage. Storage is disabled when Endpoint is
// empty.
type MinIO struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	PublicURL string // base URL images are served from; derived from Endpoint when empty
}

func (m MinIO) Enabled() bool { return m.Endpoint != "" }

type GitHub struct {
	ClientID     string
	ClientSecret string
	CallbackURL  string
}

func (g GitHub) Enabled() bool { return g.ClientID != "" && g.ClientSecret != "" }

type Config struct {
	Port      int
	LogLevel  slog.Level
	LogFormat string // "text" or "json"

	DB    DB
	MinIO MinIO

	JWTSecret      string
	AccessTokenTTL time.Duration
	BcryptCost     int
	GitHub         GitHub

	AuthRateLimit float64 // requests per second per client IP on /auth/*
	AuthRateBurst int
	MaxUploadSize int64
}

// Load reads .env (if present) and the environment. It fails only when a
// value is present but cannot be parsed; semantic checks live in Validate.
func Load() (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	var errs []error
	cfg := &Config{
		Port:      getEnvAsInt("PORT", 8080, &errs),
		LogLevel:  getEnvAsLevel("LOG_LEVEL", slog.LevelInfo, &errs),
		LogFormat: strings.ToLower(getEnv("LOG_FORMAT", "text")),
		DB: DB{
			Driver: strings.ToLower(getEnv("DB_DRIVER", "sqlite")),
			DSN:    getEnv("DB_DSN", "data/college-board.db"),
		},
		MinIO: MinIO{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", "club-images"),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false, &errs),
			PublicURL: getEnv("MINIO_PUBLIC_URL", ""),
		},
		JWTSecret:      getEnv("JWT_SECRET", ""),
		AccessTokenTTL: getEnvAsDuration("ACCESS_TOKEN_TTL", 2*time.Hour, &errs),
		BcryptCost:     getEnvAsInt("BCRYPT_COST", bcrypt.DefaultCost+2, &errs),
		GitHub: GitHub{
			ClientID:     getEnv("GITHUB_CLIENT_ID", ""),
			ClientSecret: getEnv("GITHUB_CLIENT_SECRET", ""),
		},
		AuthRateLimit: getEnvAsFloat("AUTH_RATE_LIMIT", 5, &errs),
		AuthRateBurst: getEnvAsInt("AUTH_RATE_BURST", 10, &errs),
		MaxUploadSize: int64(getEnvAsInt("MAX_UPLOAD_SIZE", 10<<20, &errs)),
	}
	cfg.GitHub.CallbackURL = getEnv("GITHUB_CALLBACK_URL",
		fmt.Sprintf("http://localhost:%d/auth/github/callback", cfg.Port))

	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// Validate rejects configurations the server cannot start with.
func (c *Config) Validate() error {
	var errs []error
	if len(c.JWTSecret) < 16 {
		errs = append(errs, errors.New("JWT_SECRET must be set to at least 16 characters"))
	}
	if c.DB.Driver != "sqlite" && c.DB.Driver != "postgres" {
		errs = append(errs, fmt.Errorf("DB_DRIVER must be sqlite or postgres, got %q", c.DB.Driver))
	}
	if c.DB.DSN == "" {
		errs = append(errs, errors.New("DB_DSN must not be empty"))
	}
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT out of range: %d", c.Port))
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		errs = append(errs, fmt.Errorf("LOG_FORMAT must be text or json, got %q", c.LogFormat))
	}
	if c.AccessTokenTTL <= 0 {
		errs = append(errs, errors.New("ACCESS_TOKEN_TTL must be positive"))
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		errs = append(errs, fmt.Errorf("BCRYPT_COST must be between %d and %d, got %d", bcrypt.MinCost, bcrypt.MaxCost, c.BcryptCost))
	}
	if c.AuthRateLimit <= 0 || c.AuthRateBurst <= 0 {
		errs = append(errs, errors.New("AUTH_RATE_LIMIT and AUTH_RATE_BURST must be positive"))
	}
	if c.MaxUploadSize <= 0 {
		errs = append(errs, errors.New("MAX_UPLOAD_SIZE must be positive"))
	}
	if c.MinIO.Enabled() && (c.MinIO.AccessKey == "" || c.MinIO.SecretKey == "") {
		errs = append(errs, errors.New("MINIO_ACCESS_KEY and MINIO_SECRET_KEY are required with MINIO_ENDPOINT"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int, errs *[]error) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: invalid integer %q", key, value))
		return defaultValue
	}
	return n
}

func getEnvAsFloat(key string, defaultValue float64, errs *[]error) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: invalid number %q", key, value))
		return defaultValue
	}
	return f
}

func getEnvBool(key string, defaultValue bool, errs *[]error) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: invalid boolean %q", key, value))
		return defaultValue
	}
	return b
}

func getEnvAsDuration(key string, defaultValue time.Duration, errs *[]error) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: invalid duration %q", key, value))
		return defaultValue
	}
	return d
}

func getEnvAsLevel(key string, defaultValue slog.Level, errs *[]error) slog.Level {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(value)); err != nil {
		*errs = append(*errs, fmt.Errorf("%s: invalid level %q", key, value))
		return defaultValue
	}
	return level
}
