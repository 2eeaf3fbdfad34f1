package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/Rhymond/go-money"

	"daybook/internal/backend"
)

// DefaultAPIBaseURL is the tracking service the dashboard talks to unless overridden.
const DefaultAPIBaseURL = "https://to-do-server-jd4c.onrender.com/api"

type Config struct {
	// HTTP Server
	Port string

	// Remote tracking service
	APIBaseURL     string
	APIToken       string
	RequestTimeout time.Duration

	// Client state
	SQLiteDBPath string

	// Rendering
	Currency string

	// AMQP activity feed (optional)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// HTTP limits
	RateLimitPerMinute int

	LogLevel string

	// Backend selection
	DataBackend string
}

func Load() *Config {
	return &Config{
		Port: getEnv("PORT", "8081"),

		APIBaseURL:     strings.TrimRight(getEnv("API_BASE_URL", DefaultAPIBaseURL), "/"),
		APIToken:       getEnv("API_TOKEN", ""),
		RequestTimeout: getEnvDuration("REQUEST_TIMEOUT", 0),

		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/daybook.db"),

		Currency: strings.ToUpper(getEnv("CURRENCY", money.USD)),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "daybook"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "activity"),

		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 60),

		LogLevel: getEnv("LOG_LEVEL", "info"),

		DataBackend: getEnv("DATA_BACKEND", string(backend.RemoteBackend)),
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if !backend.Type(c.DataBackend).IsValid() {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, backend.Types))
	}

	if backend.Type(c.DataBackend) == backend.RemoteBackend {
		if c.APIBaseURL == "" {
			errors = append(errors, "API base URL cannot be empty when using remote backend")
		} else if parsedURL, err := url.Parse(c.APIBaseURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid API base URL '%s': %v", c.APIBaseURL, err))
		} else if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
			errors = append(errors, fmt.Sprintf("invalid API base URL scheme '%s': must be 'http' or 'https'", parsedURL.Scheme))
		}
	}

	if c.RequestTimeout < 0 {
		errors = append(errors, fmt.Sprintf("invalid request timeout %v: must not be negative", c.RequestTimeout))
	}

	if c.SQLiteDBPath == "" {
		errors = append(errors, "SQLite database path cannot be empty")
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

	if money.GetCurrency(c.Currency) == nil {
		errors = append(errors, fmt.Sprintf("unknown currency '%s': must be an ISO 4217 code", c.Currency))
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

	if c.RateLimitPerMinute < 1 {
		errors = append(errors, fmt.Sprintf("invalid rate limit %d: must be at least 1", c.RateLimitPerMinute))
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
