package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Database
	Database DatabaseConfig

	// Redis
	Redis RedisConfig

	// Exchange feed
	Exchange ExchangeConfig

	// Analysis run defaults
	Analysis AnalysisConfig

	// Ledger / snapshot cache backend
	Storage StorageConfig

	// Logging
	LogLevel  string
	LogFormat string
	LogFile   string // append-only audit log, empty = stdout only

	// Monitoring
	MetricsEnabled bool

	// Scheduler
	Schedule string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	URL      string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// ExchangeConfig holds market feed configuration
type ExchangeConfig struct {
	Name           string // twse, tpex
	TWSEBaseURL    string
	TWSEFormat     string // csv, html
	TPExBaseURL    string
	FetchTimeout   time.Duration
	RateLimit      float64 // requests per second
	BreakerEnabled bool
}

// AnalysisConfig holds the default analysis run
type AnalysisConfig struct {
	Mode          string // low, high
	LowPolicy     string // fixed, ratchet
	HighPolicy    string // fixed, ratchet
	BaseStart     string
	BaseEnd       string
	CompareStart  string
	CompareEnd    string
	Calendar      string // weekday, exchange
	Workers       int
	OutputDir     string
	OutputFormats []string
	ProfilePath   string
}

// StorageConfig holds ledger and snapshot cache configuration
type StorageConfig struct {
	Backend    string // file, redis, postgres
	LedgerPath string // empty = derived from OutputDir and exchange
	CacheDir   string // empty = derived from OutputDir and exchange
}

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	// Try multiple paths for .env file
	loadEnvFile()

	cfg := &Config{
		// Server
		Port: getEnv("PORT", "8089"),
		Env:  getEnv("ENV", "development"),

		// Database
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			Name:            getEnv("DB_NAME", "extremes"),
			User:            getEnv("DB_USER", "extremes"),
			Password:        getEnv("DB_PASSWORD", ""),
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 2),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		// Redis
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		Exchange: ExchangeConfig{
			Name:           strings.ToLower(getEnv("EXCHANGE", "twse")),
			TWSEBaseURL:    getEnv("TWSE_BASE_URL", "https://www.twse.com.tw"),
			TWSEFormat:     strings.ToLower(getEnv("TWSE_FORMAT", "csv")),
			TPExBaseURL:    getEnv("TPEX_BASE_URL", "https://www.tpex.org.tw"),
			FetchTimeout:   getEnvAsDuration("FETCH_TIMEOUT", "10s"),
			RateLimit:      getEnvAsFloat("FETCH_RATE_LIMIT", 2),
			BreakerEnabled: getEnvAsBool("BREAKER_ENABLED", true),
		},

		Analysis: AnalysisConfig{
			Mode:          strings.ToLower(getEnv("MODE", "low")),
			LowPolicy:     strings.ToLower(getEnv("LOW_THRESHOLD_POLICY", "fixed")),
			HighPolicy:    strings.ToLower(getEnv("HIGH_THRESHOLD_POLICY", "ratchet")),
			BaseStart:     getEnv("BASE_START", "20250407"),
			BaseEnd:       getEnv("BASE_END", "20250525"),
			CompareStart:  getEnv("COMPARE_START", "20250526"),
			CompareEnd:    getEnv("COMPARE_END", "20250620"),
			Calendar:      strings.ToLower(getEnv("CALENDAR", "weekday")),
			Workers:       getEnvAsInt("FETCH_WORKERS", 1),
			OutputDir:     getEnv("OUTPUT_DIR", "output"),
			OutputFormats: getEnvAsList("OUTPUT_FORMATS", "xlsx"),
			ProfilePath:   getEnv("PROFILE_PATH", ""),
		},

		Storage: StorageConfig{
			Backend:    strings.ToLower(getEnv("STORAGE", "file")),
			LedgerPath: getEnv("LEDGER_PATH", ""),
			CacheDir:   getEnv("CACHE_DIR", ""),
		},

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),
		LogFile:   getEnv("LOG_FILE", filepath.Join("output", "analyzer.log")),

		// Monitoring
		MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),

		Schedule: getEnv("SCHEDULE", "0 0 15 * * MON-FRI"),
	}

	// Validate configuration
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate re-checks the config after callers override fields (profiles, flags)
func (c *Config) Validate() error {
	return c.validate()
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	// Validate environment
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.Exchange.Name != "twse" && c.Exchange.Name != "tpex" {
		return fmt.Errorf("EXCHANGE must be one of: twse, tpex")
	}

	if c.Exchange.TWSEFormat != "csv" && c.Exchange.TWSEFormat != "html" {
		return fmt.Errorf("TWSE_FORMAT must be one of: csv, html")
	}

	switch c.Analysis.Mode {
	case "low", "min", "high", "max":
	default:
		return fmt.Errorf("MODE must be one of: low, high")
	}

	for _, p := range []string{c.Analysis.LowPolicy, c.Analysis.HighPolicy} {
		if p != "fixed" && p != "ratchet" {
			return fmt.Errorf("threshold policy must be one of: fixed, ratchet (got %q)", p)
		}
	}

	if c.Analysis.Calendar != "weekday" && c.Analysis.Calendar != "exchange" {
		return fmt.Errorf("CALENDAR must be one of: weekday, exchange")
	}

	for _, d := range []string{c.Analysis.BaseStart, c.Analysis.BaseEnd, c.Analysis.CompareStart, c.Analysis.CompareEnd} {
		if _, err := time.Parse("20060102", d); err != nil || len(d) != 8 {
			return fmt.Errorf("period dates must be YYYYMMDD (got %q)", d)
		}
	}

	if c.Analysis.Workers < 1 {
		return fmt.Errorf("FETCH_WORKERS must be at least 1")
	}

	// Storage backend requirements
	switch c.Storage.Backend {
	case "file":
	case "postgres":
		if c.Database.URL == "" {
			return fmt.Errorf("DATABASE_URL is required when STORAGE=postgres")
		}
	case "redis":
		if !c.Redis.Enabled {
			return fmt.Errorf("REDIS_ENABLED must be true when STORAGE=redis")
		}
	default:
		return fmt.Errorf("STORAGE must be one of: file, redis, postgres")
	}

	return nil
}

// LedgerPath returns the ledger file for an exchange
func (c *Config) LedgerPath(exchange string) string {
	if c.Storage.LedgerPath != "" {
		return c.Storage.LedgerPath
	}
	return filepath.Join(c.Analysis.OutputDir, exchange, "downloaded_dates.txt")
}

// CacheDir returns the snapshot cache directory for an exchange
func (c *Config) CacheDir(exchange string) string {
	if c.Storage.CacheDir != "" {
		return c.Storage.CacheDir
	}
	return filepath.Join(c.Analysis.OutputDir, exchange, "cache")
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	// Try paths in order of priority
	paths := []string{
		".env", // Current directory
	}

	// Also try relative to executable
	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		// Fallback to default
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}

// getEnvAsList splits a comma separated value, dropping blanks
func getEnvAsList(key string, defaultValue string) []string {
	valueStr := getEnv(key, defaultValue)

	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
