package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig    `json:"server"`
	Redis     RedisConfig     `json:"redis"`
	Drive     DriveConfig     `json:"drive"`
	Reconcile ReconcileConfig `json:"reconcile"`
	Log       LogConfig       `json:"log"`
	Security  SecurityConfig  `json:"security"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port         int    `json:"port"`
	Environment  string `json:"environment"`
	ReadTimeout  int    `json:"read_timeout"`
	WriteTimeout int    `json:"write_timeout"`
	IdleTimeout  int    `json:"idle_timeout"`
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host         string        `json:"host"`
	Port         int           `json:"port"`
	Password     string        `json:"password"`
	DB           int           `json:"db"`
	PoolSize     int           `json:"pool_size"`
	DialTimeout  time.Duration `json:"dial_timeout"`
	ReadTimeout  time.Duration `json:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout"`
}

// DriveConfig holds configuration for the remote file index client
type DriveConfig struct {
	BaseURL           string        `json:"base_url"`
	APIToken          string        `json:"api_token"`
	PageSize          int           `json:"page_size"`
	Timeout           time.Duration `json:"timeout"`
	RequestsPerSecond float64       `json:"requests_per_second"`
	Burst             int           `json:"burst"`
}

// ReconcileConfig holds configuration for the reconciliation engine
type ReconcileConfig struct {
	ExclusionSuffixes []string      `json:"exclusion_suffixes"`
	DownloadFolder    string        `json:"download_folder"`
	ReportFolder      string        `json:"report_folder"`
	StorePath         string        `json:"store_path"`
	CacheTTL          time.Duration `json:"cache_ttl"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `json:"level"`
	Format string `json:"format"`
}

// SecurityConfig holds security configuration
type SecurityConfig struct {
	RateLimit RateLimitConfig `json:"rate_limit"`
	CORS      CORSConfig      `json:"cors"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	RequestsPerMinute int           `json:"requests_per_minute"`
	BurstSize         int           `json:"burst_size"`
	CleanupInterval   time.Duration `json:"cleanup_interval"`
}

// CORSConfig holds CORS configuration
type CORSConfig struct {
	AllowedOrigins   []string `json:"allowed_origins"`
	AllowedMethods   []string `json:"allowed_methods"`
	AllowedHeaders   []string `json:"allowed_headers"`
	AllowCredentials bool     `json:"allow_credentials"`
}

// Load loads configuration from environment variables. When CONFIG_FILE is
// set, the YAML file it points to is applied on top of the environment
// values for the reconcile and drive sections.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:         getEnvAsInt("PORT", 8080),
			Environment:  getEnv("ENVIRONMENT", "development"),
			ReadTimeout:  getEnvAsInt("READ_TIMEOUT", 30),
			WriteTimeout: getEnvAsInt("WRITE_TIMEOUT", 30),
			IdleTimeout:  getEnvAsInt("IDLE_TIMEOUT", 60),
		},
		Redis: RedisConfig{
			Host:         getEnv("REDIS_HOST", "localhost"),
			Port:         getEnvAsInt("REDIS_PORT", 6379),
			Password:     getEnv("REDIS_PASSWORD", ""),
			DB:           getEnvAsInt("REDIS_DB", 0),
			PoolSize:     getEnvAsInt("REDIS_POOL_SIZE", 10),
			DialTimeout:  time.Duration(getEnvAsInt("REDIS_DIAL_TIMEOUT", 5)) * time.Second,
			ReadTimeout:  time.Duration(getEnvAsInt("REDIS_READ_TIMEOUT", 3)) * time.Second,
			WriteTimeout: time.Duration(getEnvAsInt("REDIS_WRITE_TIMEOUT", 3)) * time.Second,
		},
		Drive: DriveConfig{
			BaseURL:           getEnv("DRIVE_BASE_URL", "https://www.googleapis.com/drive/v3"),
			APIToken:          getEnv("DRIVE_API_TOKEN", ""),
			PageSize:          getEnvAsInt("DRIVE_PAGE_SIZE", 20),
			Timeout:           time.Duration(getEnvAsInt("DRIVE_TIMEOUT", 30)) * time.Second,
			RequestsPerSecond: getEnvAsFloat("DRIVE_REQUESTS_PER_SECOND", 5),
			Burst:             getEnvAsInt("DRIVE_BURST", 10),
		},
		Reconcile: ReconcileConfig{
			ExclusionSuffixes: getEnvAsSlice("EXCLUSION_SUFFIXES", []string{"_backup", "_copy", "_old"}),
			DownloadFolder:    getEnv("DOWNLOAD_FOLDER", "./downloads"),
			ReportFolder:      getEnv("REPORT_FOLDER", "./reports"),
			StorePath:         getEnv("STORE_PATH", "./reconcile.db"),
			CacheTTL:          time.Duration(getEnvAsInt("SEARCH_CACHE_TTL", 3600)) * time.Second,
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Security: SecurityConfig{
			RateLimit: RateLimitConfig{
				RequestsPerMinute: getEnvAsInt("RATE_LIMIT_RPM", 100),
				BurstSize:         getEnvAsInt("RATE_LIMIT_BURST", 10),
				CleanupInterval:   time.Duration(getEnvAsInt("RATE_LIMIT_CLEANUP", 60)) * time.Second,
			},
			CORS: CORSConfig{
				AllowedOrigins:   []string{"*"},
				AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
				AllowedHeaders:   []string{"*"},
				AllowCredentials: false,
			},
		},
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, fmt.Errorf("failed to apply config file %s: %w", path, err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Drive.BaseURL == "" {
		return fmt.Errorf("DRIVE_BASE_URL is required")
	}
	if c.Drive.PageSize <= 0 {
		return fmt.Errorf("DRIVE_PAGE_SIZE must be positive")
	}
	if c.Reconcile.DownloadFolder == "" {
		return fmt.Errorf("DOWNLOAD_FOLDER is required")
	}
	if c.Reconcile.ReportFolder == "" {
		return fmt.Errorf("REPORT_FOLDER is required")
	}
	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			result = append(result, p)
		}
	}
	if len(result) == 0 {
		return defaultValue
	}
	return result
}
