package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"ledgerview/internal/sources"
)

type Config struct {
	// HTTP Server
	Port string

	// Logging
	LogLevel  string
	LogFormat string

	// Backend selection
	DataBackend string

	// PostgreSQL: DatabaseURL wins over the discrete settings
	DatabaseURL  string
	DBHost       string
	DBPort       string
	DBUser       string
	DBPassword   string
	DBName       string
	DBSSLMode    string
	DBMaxRetries int

	// SQLite
	SQLiteDBPath string

	// Memory (CSV files)
	DataDir string

	// Google Sheets
	GoogleSpreadsheetID      string
	GoogleServiceAccountFile string
	GoogleServiceAccountJSON string
	// OAuth user credentials, used instead of the service account when a
	// token file is set. See ledgerctl authorize.
	GoogleOAuthClientFile string
	GoogleOAuthClientJSON string
	GoogleOAuthTokenFile  string
	OAuthRedirectPort     string

	// Relation and column names
	Schema sources.Schema

	// Reporting
	ReportingYear string
	Currency      string

	// Snapshot cache
	SnapshotTTL   time.Duration
	CacheBackend  string
	RedisAddr     string
	RedisPassword string

	// AMQP refresh events, disabled when AMQPURL is empty
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

var (
	validBackends     = []string{"memory", "postgres", "sheets", "sqlite"}
	validCaches       = []string{"memory", "redis"}
	validLogLevels    = []string{"debug", "info", "warn", "error"}
	validLogFormats   = []string{"text", "json"}
	yearPattern       = regexp.MustCompile(`^\d{4}$`)
	currencyPattern   = regexp.MustCompile(`^[A-Z]{3}$`)
	minSnapshotTTL    = time.Second
	maxSnapshotTTL    = 24 * time.Hour
	defaultSnapshotTT = 10 * time.Minute
)

func Load() *Config {
	def := sources.DefaultSchema()
	cfg := &Config{
		Port: getEnv("PORT", "8080"),

		LogLevel:  strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFormat: strings.ToLower(getEnv("LOG_FORMAT", "text")),

		DataBackend: getEnv("DATA_BACKEND", "memory"),

		DatabaseURL:  getEnv("DATABASE_URL", ""),
		DBHost:       getEnv("DB_HOST", "localhost"),
		DBPort:       getEnv("DB_PORT", "5432"),
		DBUser:       getEnv("DB_USER", ""),
		DBPassword:   getEnv("DB_PASSWORD", ""),
		DBName:       getEnv("DB_NAME", ""),
		DBSSLMode:    getEnv("DB_SSLMODE", "disable"),
		DBMaxRetries: getEnvInt("DB_MAX_RETRIES", 5),

		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/ledgerview.db"),
		DataDir:      getEnv("DATA_DIR", "./data"),

		GoogleSpreadsheetID:      getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleServiceAccountFile: getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", ""),
		GoogleServiceAccountJSON: getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),
		GoogleOAuthClientFile:    getEnv("GOOGLE_OAUTH_CLIENT_FILE", ""),
		GoogleOAuthClientJSON:    getEnv("GOOGLE_OAUTH_CLIENT_JSON", ""),
		GoogleOAuthTokenFile:     getEnv("GOOGLE_OAUTH_TOKEN_FILE", ""),
		OAuthRedirectPort:        getEnv("OAUTH_REDIRECT_PORT", "8085"),

		Schema: sources.Schema{
			LedgerTable:    getEnv("LEDGER_TABLE", def.LedgerTable),
			BalanceTable:   getEnv("BALANCE_SHEET_TABLE", def.BalanceTable),
			IncomeTable:    getEnv("INCOME_STATEMENT_TABLE", def.IncomeTable),
			AccountsTable:  getEnv("ACCOUNTS_TABLE", def.AccountsTable),
			LedgerAccount:  getEnv("LEDGER_ACCOUNT_COLUMN", def.LedgerAccount),
			LedgerDate:     getEnv("LEDGER_DATE_COLUMN", def.LedgerDate),
			LedgerDebit:    getEnv("LEDGER_DEBIT_COLUMN", def.LedgerDebit),
			LedgerCredit:   getEnv("LEDGER_CREDIT_COLUMN", def.LedgerCredit),
			LedgerText:     getEnv("LEDGER_TEXT_COLUMN", def.LedgerText),
			AccountNumber:  getEnv("ACCOUNT_NUMBER_COLUMN", def.AccountNumber),
			AccountName:    getEnv("ACCOUNT_NAME_COLUMN", def.AccountName),
			StatementNum:   getEnv("STATEMENT_NUMBER_COLUMN", def.StatementNum),
			StatementLabel: getEnv("STATEMENT_NAME_COLUMN", def.StatementLabel),
		},

		ReportingYear: getEnv("REPORTING_YEAR", "2025"),
		Currency:      strings.ToUpper(getEnv("CURRENCY", "CHF")),

		SnapshotTTL:   getEnvDuration("SNAPSHOT_TTL", defaultSnapshotTT),
		CacheBackend:  getEnv("CACHE_BACKEND", "memory"),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "ledgerview"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "ledger_refresh"),
	}

	return cfg
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if !slices.Contains(validLogLevels, c.LogLevel) {
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be one of %v", c.LogLevel, validLogLevels))
	}
	if !slices.Contains(validLogFormats, c.LogFormat) {
		errors = append(errors, fmt.Sprintf("invalid log format '%s': must be one of %v", c.LogFormat, validLogFormats))
	}

	if !slices.Contains(validBackends, c.DataBackend) {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	switch c.DataBackend {
	case "postgres":
		if c.DatabaseURL != "" {
			if u, err := url.Parse(c.DatabaseURL); err != nil {
				errors = append(errors, fmt.Sprintf("invalid DATABASE_URL: %v", err))
			} else if u.Scheme != "postgres" && u.Scheme != "postgresql" {
				errors = append(errors, fmt.Sprintf("invalid DATABASE_URL scheme '%s': must be 'postgres' or 'postgresql'", u.Scheme))
			}
		} else {
			if c.DBHost == "" {
				errors = append(errors, "DB_HOST is required when using postgres backend without DATABASE_URL")
			}
			if c.DBName == "" {
				errors = append(errors, "DB_NAME is required when using postgres backend without DATABASE_URL")
			}
			if c.DBUser == "" {
				errors = append(errors, "DB_USER is required when using postgres backend without DATABASE_URL")
			}
			if _, err := strconv.Atoi(c.DBPort); err != nil {
				errors = append(errors, fmt.Sprintf("invalid DB_PORT '%s': must be a number", c.DBPort))
			}
		}
		if c.DBMaxRetries < 1 {
			errors = append(errors, fmt.Sprintf("invalid DB_MAX_RETRIES %d: must be at least 1", c.DBMaxRetries))
		}

	case "sqlite":
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else {
			dir := filepath.Dir(c.SQLiteDBPath)
			if dir != "." && dir != "" {
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					if err := os.MkdirAll(dir, 0755); err != nil {
						errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
					}
				}
			}
		}

	case "memory":
		if c.DataDir == "" {
			errors = append(errors, "data directory cannot be empty when using memory backend")
		} else if info, err := os.Stat(c.DataDir); err != nil || !info.IsDir() {
			errors = append(errors, fmt.Sprintf("data directory does not exist: %s", c.DataDir))
		}

	case "sheets":
		if c.GoogleSpreadsheetID == "" {
			errors = append(errors, "Google Spreadsheet ID is required when using sheets backend")
		}
		if c.GoogleOAuthTokenFile != "" {
			if c.GoogleOAuthClientFile == "" && c.GoogleOAuthClientJSON == "" {
				errors = append(errors, "either GOOGLE_OAUTH_CLIENT_FILE or GOOGLE_OAUTH_CLIENT_JSON must be provided with GOOGLE_OAUTH_TOKEN_FILE")
			}
			if _, err := os.Stat(c.GoogleOAuthTokenFile); os.IsNotExist(err) {
				errors = append(errors, fmt.Sprintf("Google OAuth token file does not exist: %s (run ledgerctl authorize)", c.GoogleOAuthTokenFile))
			}
			break
		}
		hasFile := c.GoogleServiceAccountFile != ""
		if !hasFile && c.GoogleServiceAccountJSON == "" {
			errors = append(errors, "either GOOGLE_SERVICE_ACCOUNT_FILE or GOOGLE_SERVICE_ACCOUNT_JSON must be provided for sheets backend")
		}
		if hasFile {
			if _, err := os.Stat(c.GoogleServiceAccountFile); os.IsNotExist(err) {
				errors = append(errors, fmt.Sprintf("Google service account file does not exist: %s", c.GoogleServiceAccountFile))
			}
		}
	}

	for name, v := range map[string]string{
		"LEDGER_TABLE":           c.Schema.LedgerTable,
		"BALANCE_SHEET_TABLE":    c.Schema.BalanceTable,
		"INCOME_STATEMENT_TABLE": c.Schema.IncomeTable,
		"ACCOUNTS_TABLE":         c.Schema.AccountsTable,
	} {
		if strings.TrimSpace(v) == "" {
			errors = append(errors, fmt.Sprintf("%s cannot be empty", name))
		}
	}

	if !yearPattern.MatchString(c.ReportingYear) {
		errors = append(errors, fmt.Sprintf("invalid reporting year '%s': must be four digits", c.ReportingYear))
	}
	if !currencyPattern.MatchString(c.Currency) {
		errors = append(errors, fmt.Sprintf("invalid currency '%s': must be a three letter ISO code", c.Currency))
	}

	if c.SnapshotTTL < minSnapshotTTL {
		errors = append(errors, fmt.Sprintf("invalid snapshot TTL %v: must be at least 1 second", c.SnapshotTTL))
	} else if c.SnapshotTTL > maxSnapshotTTL {
		errors = append(errors, fmt.Sprintf("invalid snapshot TTL %v: must be at most 24 hours", c.SnapshotTTL))
	}

	if !slices.Contains(validCaches, c.CacheBackend) {
		errors = append(errors, fmt.Sprintf("invalid cache backend '%s': must be one of %v", c.CacheBackend, validCaches))
	}
	if c.CacheBackend == "redis" && c.RedisAddr == "" {
		errors = append(errors, "REDIS_ADDR cannot be empty when using redis cache backend")
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
		slices.Sort(errors)
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// AMQPEnabled reports whether refresh events are configured.
func (c *Config) AMQPEnabled() bool {
	return c.AMQPURL != ""
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
