package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

// Config holds all configuration for the console agent
type Config struct {
	AppMode   string
	Port      string
	StaticDir string
	API       APIConfig
	Tokens    TokenConfig
	Database  DatabaseConfig
	Keepalive KeepaliveConfig
}

// APIConfig holds the retail backend settings
type APIConfig struct {
	BaseURL string
	Timeout time.Duration
}

// TokenConfig selects where the operator's tokens are kept
type TokenConfig struct {
	Store      string // memory, file or db
	File       string
	Secret     string
	TerminalID string
}

// DatabaseConfig holds database configuration (TOKEN_STORE=db only)
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

// KeepaliveConfig holds the token keepalive schedule
type KeepaliveConfig struct {
	Spec   string
	Window time.Duration
}

// Load reads configuration from .env file and environment variables
func Load() (*Config, error) {
	// Load .env file (ignore error if file doesn't exist in production)
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	// Get APP_MODE (default to "dev") - trim spaces for Windows compatibility
	appMode := strings.TrimSpace(getEnv("APP_MODE", "dev"))
	if appMode != "dev" && appMode != "prod" {
		return nil, fmt.Errorf("invalid APP_MODE: '%s' (must be 'dev' or 'prod')", appMode)
	}

	tokens := loadTokenConfig()
	switch tokens.Store {
	case "memory", "file", "db":
	default:
		return nil, fmt.Errorf("invalid TOKEN_STORE: '%s' (must be 'memory', 'file' or 'db')", tokens.Store)
	}
	if tokens.Store == "file" && appMode == "prod" && tokens.Secret == "default_token_secret" {
		return nil, fmt.Errorf("TOKEN_SECRET must be set in prod mode")
	}

	api, err := loadAPIConfig()
	if err != nil {
		return nil, err
	}
	keepalive, err := loadKeepaliveConfig()
	if err != nil {
		return nil, err
	}

	config := &Config{
		AppMode:   appMode,
		Port:      getEnv("PORT", "3000"),
		StaticDir: getEnv("STATIC_DIR", "./web"),
		API:       api,
		Tokens:    tokens,
		Database:  loadDatabaseConfig(appMode),
		Keepalive: keepalive,
	}

	log.Printf("✅ Configuration loaded successfully [MODE: %s]", appMode)
	return config, nil
}

func loadAPIConfig() (APIConfig, error) {
	timeout, err := time.ParseDuration(getEnv("API_TIMEOUT", "30s"))
	if err != nil {
		return APIConfig{}, fmt.Errorf("invalid API_TIMEOUT: %w", err)
	}
	return APIConfig{
		BaseURL: getEnv("API_BASE_URL", "http://localhost:8000/api/v1/"),
		Timeout: timeout,
	}, nil
}

func loadTokenConfig() TokenConfig {
	return TokenConfig{
		Store:      strings.TrimSpace(getEnv("TOKEN_STORE", "file")),
		File:       getEnv("TOKEN_FILE", "./data/tokens.bin"),
		Secret:     getEnv("TOKEN_SECRET", "default_token_secret"),
		TerminalID: getEnv("TERMINAL_ID", defaultTerminalID()),
	}
}

// loadDatabaseConfig loads database config based on mode
func loadDatabaseConfig(mode string) DatabaseConfig {
	prefix := "DEV_"
	if mode == "prod" {
		prefix = "PROD_"
	}

	return DatabaseConfig{
		Host:     getEnv(prefix+"DB_HOST", "localhost"),
		Port:     getEnv(prefix+"DB_PORT", "3306"),
		User:     getEnv(prefix+"DB_USER", "root"),
		Password: getEnv(prefix+"DB_PASS", ""),
		DBName:   getEnv(prefix+"DB_NAME", "retail_console"),
	}
}

func loadKeepaliveConfig() (KeepaliveConfig, error) {
	window, err := time.ParseDuration(getEnv("KEEPALIVE_WINDOW", "2m"))
	if err != nil {
		return KeepaliveConfig{}, fmt.Errorf("invalid KEEPALIVE_WINDOW: %w", err)
	}
	return KeepaliveConfig{
		Spec:   getEnv("KEEPALIVE_SPEC", "@every 1m"),
		Window: window,
	}, nil
}

// defaultTerminalID uses the hostname, or a random id on hosts without one
func defaultTerminalID() string {
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return uuid.NewString()
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// IsDev returns true if running in development mode
func (c *Config) IsDev() bool {
	return c.AppMode == "dev"
}

// GetAllowedOrigins returns allowed origins for CORS
func (c *Config) GetAllowedOrigins() string {
	origins := getEnv("ALLOWED_ORIGINS", "")
	if origins == "" {
		if c.IsDev() {
			return "*"
		}
		return "http://localhost:" + c.Port
	}
	return origins
}
