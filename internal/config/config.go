package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
)

// DefaultEndpoint is the Apps Script web app that aggregates the spreadsheet.
const DefaultEndpoint = "https://script.google.com/macros/s/AKfycbwrdsRtwjVrJp0rC3oRwVkawlIewVH2kROFLfankPy837RWPLG3evAHSjFPhxD8UThi/exec"

// Data backends for the aggregation endpoint.
const (
	BackendNone   = "none"
	BackendMemory = "memory"
	BackendSheets = "sheets"
	BackendSQLite = "sqlite"
)

type Config struct {
	// HTTP Server
	Port               string
	RateLimitPerMinute int

	// Dashboard fetcher
	Endpoint        string
	DefaultLimit    int
	PrimaryTimeout  time.Duration
	FallbackTimeout time.Duration

	// Aggregation endpoint
	DataBackend  string
	DataDir      string
	SQLiteDBPath string

	// Google Sheets
	GoogleSpreadsheetID      string
	GoogleSheetName          string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string

	// AMQP
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Logging
	LogLevel  string
	LogFormat string
}

func Load() *Config {
	return &Config{
		Port:               getEnv("PORT", "8081"),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 60),

		Endpoint:        getEnv("DASHBOARD_ENDPOINT", DefaultEndpoint),
		DefaultLimit:    getEnvInt("DASHBOARD_LIMIT", 25),
		PrimaryTimeout:  getEnvDuration("PRIMARY_TIMEOUT", 10*time.Second),
		FallbackTimeout: getEnvDuration("FALLBACK_TIMEOUT", 20*time.Second),

		DataBackend:  getEnv("DATA_BACKEND", BackendNone),
		DataDir:      getEnv("DATA_DIR", "data"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/painel.db"),

		GoogleSpreadsheetID:      getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetName:          getEnv("GOOGLE_SHEET_NAME", "Transacoes"),
		GoogleServiceAccountJSON: getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),
		GoogleServiceAccountFile: getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", getEnv("GOOGLE_APPLICATION_CREDENTIALS", "")),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "painel"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "transactions"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
	}
}

// Validate validates the configuration and returns every problem found.
func (c *Config) Validate() error {
	var result *multierror.Error

	if port, err := strconv.Atoi(c.Port); err != nil {
		result = multierror.Append(result, fmt.Errorf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		result = multierror.Append(result, fmt.Errorf("invalid port %d: must be between 1 and 65535", port))
	}

	if u, err := url.Parse(c.Endpoint); err != nil || c.Endpoint == "" {
		result = multierror.Append(result, fmt.Errorf("invalid dashboard endpoint '%s'", c.Endpoint))
	} else if u.Scheme != "http" && u.Scheme != "https" {
		result = multierror.Append(result, fmt.Errorf("invalid dashboard endpoint scheme '%s': must be 'http' or 'https'", u.Scheme))
	}

	if c.DefaultLimit < 1 || c.DefaultLimit > 1000 {
		result = multierror.Append(result, fmt.Errorf("invalid dashboard limit %d: must be between 1 and 1000", c.DefaultLimit))
	}
	if c.PrimaryTimeout <= 0 {
		result = multierror.Append(result, fmt.Errorf("invalid primary timeout %v: must be positive", c.PrimaryTimeout))
	}
	if c.FallbackTimeout <= 0 {
		result = multierror.Append(result, fmt.Errorf("invalid fallback timeout %v: must be positive", c.FallbackTimeout))
	}
	if c.RateLimitPerMinute < 1 {
		result = multierror.Append(result, fmt.Errorf("invalid rate limit %d: must be at least 1", c.RateLimitPerMinute))
	}

	switch c.DataBackend {
	case BackendNone, BackendMemory:
	case BackendSQLite:
		if c.SQLiteDBPath == "" {
			result = multierror.Append(result, errors.New("SQLite database path cannot be empty when using sqlite backend"))
		}
	case BackendSheets:
		if c.GoogleSpreadsheetID == "" {
			result = multierror.Append(result, errors.New("Google Spreadsheet ID is required when using sheets backend"))
		}
		if c.GoogleSheetName == "" {
			result = multierror.Append(result, errors.New("Google Sheet name is required when using sheets backend"))
		}
		if c.GoogleServiceAccountJSON == "" && c.GoogleServiceAccountFile == "" {
			result = multierror.Append(result, errors.New("either GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE must be provided for sheets backend"))
		} else if c.GoogleServiceAccountJSON == "" {
			if _, err := os.Stat(c.GoogleServiceAccountFile); os.IsNotExist(err) {
				result = multierror.Append(result, fmt.Errorf("Google service account file does not exist: %s", c.GoogleServiceAccountFile))
			}
		}
	default:
		result = multierror.Append(result, fmt.Errorf("invalid data backend '%s': must be one of %v",
			c.DataBackend, []string{BackendNone, BackendMemory, BackendSheets, BackendSQLite}))
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			result = multierror.Append(result, fmt.Errorf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			result = multierror.Append(result, fmt.Errorf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			result = multierror.Append(result, errors.New("AMQP exchange name cannot be empty when AMQP URL is provided"))
		}
		if c.AMQPQueue == "" {
			result = multierror.Append(result, errors.New("AMQP queue name cannot be empty when AMQP URL is provided"))
		}
	}

	if result == nil {
		return nil
	}
	result.ErrorFormat = func(errs []error) string {
		msgs := make([]string, len(errs))
		for i, err := range errs {
			msgs[i] = err.Error()
		}
		return "configuration validation failed:\n- " + strings.Join(msgs, "\n- ")
	}
	return result
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
