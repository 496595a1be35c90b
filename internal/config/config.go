package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"admin-console/internal/credstore"
	"admin-console/internal/resource"
	"admin-console/internal/transport"

	"github.com/joho/godotenv"
)

const (
	CredBackendMemory = "memory"
	CredBackendFile   = "file"
	CredBackendRedis  = "redis"
)

type AppConfig struct {
	// Server
	HTTPAddr    string
	CORSOrigins []string
	// AccessToken is the bearer credential every HTTP client of the console
	// server must present. The server refuses to start without one.
	AccessToken string

	// Upstream admin API
	APIBaseURL     string
	RequestTimeout time.Duration
	RateLimitRPS   float64
	RateLimitBurst int

	// Session
	SessionTTL  time.Duration
	CredBackend string
	CredFile    string
	StoreSecret string
	RedisAddr   string
	RedisPass   string
	RedisDB     int

	// Screens
	SearchDebounce time.Duration

	// Mutation journal, enabled when set
	DatabaseURL string

	Debug bool
}

// Load reads a .env file when present, then the environment.
func Load(envFiles ...string) (AppConfig, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return AppConfig{}, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}

	var errs []error
	cfg := AppConfig{
		HTTPAddr:    getEnv("HTTP_ADDR", "127.0.0.1:8080"),
		CORSOrigins: getEnvSlice("CONSOLE_CORS_ORIGINS", []string{"http://localhost:5173"}),
		AccessToken: getEnv("CONSOLE_ACCESS_TOKEN", ""),

		APIBaseURL:     getEnv("CONSOLE_API_BASE_URL", "http://localhost:8000/api"),
		RequestTimeout: getEnvDuration("CONSOLE_REQUEST_TIMEOUT", transport.DefaultTimeout, &errs),
		RateLimitRPS:   getEnvFloat("CONSOLE_RATE_LIMIT_RPS", 0, &errs),
		RateLimitBurst: getEnvInt("CONSOLE_RATE_LIMIT_BURST", 5, &errs),

		SessionTTL:  credstore.ExpiresInDays(getEnvInt("CONSOLE_SESSION_TTL_DAYS", 7, &errs)),
		CredBackend: strings.ToLower(getEnv("CONSOLE_CRED_BACKEND", CredBackendFile)),
		CredFile:    getEnv("CONSOLE_CRED_FILE", ""),
		StoreSecret: getEnv("CONSOLE_STORE_SECRET", ""),
		RedisAddr:   getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPass:   getEnv("REDIS_PASS", ""),
		RedisDB:     getEnvInt("REDIS_DB", 0, &errs),

		SearchDebounce: getEnvDuration("CONSOLE_SEARCH_DEBOUNCE", resource.DefaultSearchDebounce, &errs),

		DatabaseURL: getEnv("DATABASE_URL", ""),
		Debug:       strings.ToLower(getEnv("CONSOLE_DEBUG", "false")) == "true",
	}

	if err := cfg.Validate(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return AppConfig{}, errors.Join(errs...)
	}
	return cfg, nil
}

// Validate checks the values that cannot be defaulted.
func (c AppConfig) Validate() error {
	var errs []error
	if c.APIBaseURL == "" {
		errs = append(errs, errors.New("CONSOLE_API_BASE_URL is required"))
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, errors.New("CONSOLE_REQUEST_TIMEOUT must be positive"))
	}
	if c.SessionTTL <= 0 {
		errs = append(errs, errors.New("CONSOLE_SESSION_TTL_DAYS must be positive"))
	}
	if c.SearchDebounce < 0 {
		errs = append(errs, errors.New("CONSOLE_SEARCH_DEBOUNCE must not be negative"))
	}
	switch c.CredBackend {
	case CredBackendMemory, CredBackendRedis:
	case CredBackendFile:
		if c.StoreSecret == "" {
			errs = append(errs, errors.New("CONSOLE_STORE_SECRET is required for the file credential store"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown CONSOLE_CRED_BACKEND %q", c.CredBackend))
	}
	return errors.Join(errs...)
}

// MinAccessTokenLength is the shortest CONSOLE_ACCESS_TOKEN the server accepts.
const MinAccessTokenLength = 16

// ValidateServe checks what only the HTTP server needs.
func (c AppConfig) ValidateServe() error {
	var errs []error
	if c.HTTPAddr == "" {
		errs = append(errs, errors.New("HTTP_ADDR is required"))
	}
	if len(c.AccessToken) < MinAccessTokenLength {
		errs = append(errs, fmt.Errorf("CONSOLE_ACCESS_TOKEN must be at least %d characters to serve", MinAccessTokenLength))
	}
	return errors.Join(errs...)
}

// --- Helper functions ---

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		return strings.Split(value, ",")
	}
	return defaultValue
}

func getEnvInt(key string, fallback int, errs *[]error) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return n
}

func getEnvFloat(key string, fallback float64, errs *[]error) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return f
}

func getEnvDuration(key string, fallback time.Duration, errs *[]error) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return d
}
