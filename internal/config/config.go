package config

import (
	"fmt"
	"os"
	"strconv"
)

// Ledger backend names accepted in LEDGER_BACKEND.
const (
	LedgerBackendSheets   = "sheets"
	LedgerBackendPostgres = "postgres"
)

// Config holds all application configuration
type Config struct {
	// Slack credentials. SigningSecret is only needed for HTTP event
	// delivery; Socket Mode authenticates with AppToken instead, but we
	// keep loading it so switching delivery modes is a config-only change.
	BotToken      string
	AppToken      string
	UserToken     string
	SigningSecret string

	// Fixed channels
	MentorChannel  string
	HoldingChannel string

	// Removal ledger backend
	LedgerBackend   string
	SheetsID        string
	CredentialsFile string
	DatabaseURL     string

	// Admin API
	AdminPort  string
	AdminToken string

	// When set, the deporting mentor must themselves be a current
	// holding-channel member. Both behaviors exist in the wild; we
	// make it a switch instead of picking one.
	RequireDeporteeExperience bool
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		BotToken:      os.Getenv("SLACK_BOT_TOKEN"),
		AppToken:      os.Getenv("SLACK_APP_TOKEN"),
		UserToken:     os.Getenv("SLACK_USER_TOKEN"),
		SigningSecret: os.Getenv("SLACK_SIGNING_SECRET"),

		MentorChannel:  os.Getenv("MENTOR_CHANNEL"),
		HoldingChannel: os.Getenv("MEXICO_CHANNEL"),

		LedgerBackend:   getEnv("LEDGER_BACKEND", LedgerBackendSheets),
		SheetsID:        os.Getenv("GOOGLE_SHEETS_ID"),
		CredentialsFile: getEnv("GOOGLE_CREDENTIALS_FILE", "credentials.json"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),

		AdminPort:  getEnv("ADMIN_PORT", "8080"),
		AdminToken: os.Getenv("ADMIN_TOKEN"),

		RequireDeporteeExperience: getEnvBool("REQUIRE_DEPORTEE_EXPERIENCE", false),
	}

	if cfg.BotToken == "" {
		return nil, fmt.Errorf("SLACK_BOT_TOKEN is required")
	}
	if cfg.AppToken == "" {
		return nil, fmt.Errorf("SLACK_APP_TOKEN is required")
	}
	if cfg.MentorChannel == "" {
		return nil, fmt.Errorf("MENTOR_CHANNEL is required")
	}
	if cfg.HoldingChannel == "" {
		return nil, fmt.Errorf("MEXICO_CHANNEL is required")
	}

	switch cfg.LedgerBackend {
	case LedgerBackendSheets:
		if cfg.SheetsID == "" {
			return nil, fmt.Errorf("GOOGLE_SHEETS_ID is required for the sheets ledger backend")
		}
	case LedgerBackendPostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required for the postgres ledger backend")
		}
	default:
		return nil, fmt.Errorf("unknown LEDGER_BACKEND %q", cfg.LedgerBackend)
	}

	return cfg, nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvBool retrieves a boolean environment variable or returns a default value
func getEnvBool(key string, defaultValue bool) bool {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}
