package config

import (
	"fmt"
	"net/url"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// FileEnv names the variable pointing at an optional TOML config file.
const FileEnv = "FINCHAT_CONFIG"

const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendSheets = "sheets"
)

type Config struct {
	// HTTP Server
	Port               string        `toml:"port"`
	LogLevel           string        `toml:"log_level"`
	RequestTimeout     time.Duration `toml:"request_timeout"`
	RateLimitPerMinute int           `toml:"rate_limit_per_minute"`
	CORSAllowedOrigins string        `toml:"cors_allowed_origins"`

	// Ledger backend selection
	DataBackend string `toml:"data_backend"`
	DataDir     string `toml:"data_dir"`

	// Database
	SQLiteDBPath string `toml:"sqlite_db_path"`

	// Google Sheets
	GoogleSpreadsheetID      string `toml:"google_spreadsheet_id"`
	GoogleServiceAccountJSON string `toml:"google_service_account_json"`
	GoogleServiceAccountFile string `toml:"google_service_account_file"`
	LedgerBudgetsSheet       string `toml:"ledger_budgets_sheet"`
	LedgerTransactionsSheet  string `toml:"ledger_transactions_sheet"`

	// LLM
	LLMProvider string        `toml:"llm_provider"`
	LLMAPIKey   string        `toml:"llm_api_key"`
	LLMModel    string        `toml:"llm_model"`
	OpenAIURL   string        `toml:"openai_url"`
	GeminiURL   string        `toml:"gemini_url"`
	LLMTimeout  time.Duration `toml:"llm_timeout"`

	// Answers
	CurrencySymbol string `toml:"currency_symbol"`
	Timezone       string `toml:"timezone"`

	// AMQP (empty URL disables the audit trail)
	AMQPURL      string `toml:"amqp_url"`
	AMQPExchange string `toml:"amqp_exchange"`
	AMQPQueue    string `toml:"amqp_queue"`
}

func Defaults() *Config {
	return &Config{
		Port:               "3000",
		LogLevel:           "info",
		RequestTimeout:     45 * time.Second,
		RateLimitPerMinute: 60,
		CORSAllowedOrigins: "*",

		DataBackend:  BackendMemory,
		DataDir:      "data",
		SQLiteDBPath: "./data/finchat.db",

		LedgerBudgetsSheet:      "Budgets",
		LedgerTransactionsSheet: "Transactions",

		LLMProvider: "openai",
		LLMModel:    "gpt-4o-mini",
		LLMTimeout:  30 * time.Second,

		CurrencySymbol: "₹",

		AMQPExchange: "finchat",
		AMQPQueue:    "chat_events",
	}
}

// Load builds the configuration from defaults, then the TOML file named by
// FINCHAT_CONFIG (when set), then environment variables.
func Load() (*Config, error) {
	cfg := Defaults()

	if path := os.Getenv(FileEnv); path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.RequestTimeout = getEnvDuration("REQUEST_TIMEOUT", cfg.RequestTimeout)
	cfg.RateLimitPerMinute = getEnvInt("RATE_LIMIT_PER_MINUTE", cfg.RateLimitPerMinute)
	cfg.CORSAllowedOrigins = getEnv("CORS_ALLOWED_ORIGINS", cfg.CORSAllowedOrigins)

	cfg.DataBackend = getEnv("DATA_BACKEND", cfg.DataBackend)
	cfg.DataDir = getEnv("DATA_DIR", cfg.DataDir)
	cfg.SQLiteDBPath = getEnv("SQLITE_DB_PATH", cfg.SQLiteDBPath)

	cfg.GoogleSpreadsheetID = getEnv("GOOGLE_SPREADSHEET_ID", cfg.GoogleSpreadsheetID)
	cfg.GoogleServiceAccountJSON = getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", cfg.GoogleServiceAccountJSON)
	cfg.GoogleServiceAccountFile = getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", cfg.GoogleServiceAccountFile)
	cfg.LedgerBudgetsSheet = getEnv("LEDGER_BUDGETS_SHEET", cfg.LedgerBudgetsSheet)
	cfg.LedgerTransactionsSheet = getEnv("LEDGER_TRANSACTIONS_SHEET", cfg.LedgerTransactionsSheet)

	cfg.LLMProvider = strings.ToLower(getEnv("LLM_PROVIDER", cfg.LLMProvider))
	cfg.LLMAPIKey = getEnv("LLM_API_KEY", cfg.LLMAPIKey)
	cfg.LLMModel = getEnv("LLM_MODEL", cfg.LLMModel)
	cfg.OpenAIURL = getEnv("OPENAI_URL", cfg.OpenAIURL)
	cfg.GeminiURL = getEnv("GEMINI_URL", cfg.GeminiURL)
	cfg.LLMTimeout = getEnvDuration("LLM_TIMEOUT", cfg.LLMTimeout)

	cfg.CurrencySymbol = getEnv("CURRENCY_SYMBOL", cfg.CurrencySymbol)
	cfg.Timezone = getEnv("TIMEZONE", cfg.Timezone)

	cfg.AMQPURL = getEnv("AMQP_URL", cfg.AMQPURL)
	cfg.AMQPExchange = getEnv("AMQP_EXCHANGE", cfg.AMQPExchange)
	cfg.AMQPQueue = getEnv("AMQP_QUEUE", cfg.AMQPQueue)

	return cfg, nil
}

// Location resolves Timezone. Empty means the server's local zone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

// LLMEndpoint returns the endpoint override of the selected provider only.
// Empty means the vendor default.
func (c *Config) LLMEndpoint() string {
	switch strings.ToLower(strings.TrimSpace(c.LLMProvider)) {
	case "openai":
		return c.OpenAIURL
	case "gemini":
		return c.GeminiURL
	default:
		return ""
	}
}

// AllowedOrigins splits CORSAllowedOrigins on commas.
func (c *Config) AllowedOrigins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSAllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// Validate reports every configuration problem at once. The LLM provider
// and key are not checked here: deterministic answers must keep working
// without them.
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	validBackends := []string{BackendMemory, BackendSheets, BackendSQLite}
	if !slices.Contains(validBackends, c.DataBackend) {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	switch c.DataBackend {
	case BackendSQLite:
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		}
	case BackendSheets:
		if c.GoogleSpreadsheetID == "" {
			errors = append(errors, "Google Spreadsheet ID is required when using sheets backend")
		}
		if c.GoogleServiceAccountFile != "" {
			if _, err := os.Stat(c.GoogleServiceAccountFile); os.IsNotExist(err) {
				errors = append(errors, fmt.Sprintf("Google service account file does not exist: %s", c.GoogleServiceAccountFile))
			}
		}
	}

	if c.RequestTimeout < time.Second {
		errors = append(errors, fmt.Sprintf("invalid request timeout %v: must be at least 1 second", c.RequestTimeout))
	}
	if c.LLMTimeout < time.Second {
		errors = append(errors, fmt.Sprintf("invalid LLM timeout %v: must be at least 1 second", c.LLMTimeout))
	}
	if c.RateLimitPerMinute < 1 {
		errors = append(errors, fmt.Sprintf("invalid rate limit %d: must be at least 1 request per minute", c.RateLimitPerMinute))
	}

	if _, err := c.Location(); err != nil {
		errors = append(errors, fmt.Sprintf("invalid timezone '%s': %v", c.Timezone, err))
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
