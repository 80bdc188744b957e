package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// HTTP Server
	Port string

	// Storage
	DataBackend  string
	SQLiteDBPath string

	// AMQP (activity events; optional)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Auth. The identity provider lives outside this service: either a
	// fronting proxy asserts identity headers, or a static bearer token is
	// bound to the configured identity (single-user deployments).
	AuthToken      string
	AuthUserID     string
	AuthUserName   string
	AuthUserEmail  string
	TrustProxyAuth bool
	SessionTTL     time.Duration

	// Activity feed
	ActivityLimit int
}

func Load() *Config {
	return &Config{
		Port: getEnv("PORT", "8082"),

		DataBackend:  getEnv("DATA_BACKEND", "memory"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/tempo.db"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "tempo"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "activity_events"),

		AuthToken:      getEnv("AUTH_TOKEN", ""),
		AuthUserID:     getEnv("AUTH_USER_ID", ""),
		AuthUserName:   getEnv("AUTH_USER_NAME", ""),
		AuthUserEmail:  getEnv("AUTH_USER_EMAIL", ""),
		TrustProxyAuth: getEnvBool("TRUST_PROXY_AUTH", false),
		SessionTTL:     getEnvDuration("SESSION_TTL", 12*time.Hour),

		ActivityLimit: getEnvInt("ACTIVITY_LIMIT", 100),
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

	switch c.DataBackend {
	case "memory", "sqlite":
	default:
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of [memory sqlite]", c.DataBackend))
	}

	if c.DataBackend == "sqlite" {
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

	if c.AuthToken == "" && !c.TrustProxyAuth {
		errors = append(errors, "no identity source configured: set AUTH_TOKEN or TRUST_PROXY_AUTH")
	}
	if c.AuthToken != "" {
		if len(c.AuthToken) < 16 {
			errors = append(errors, "AUTH_TOKEN must be at least 16 characters")
		}
		if c.AuthUserID == "" {
			errors = append(errors, "AUTH_USER_ID is required when AUTH_TOKEN is set")
		}
	}

	if c.SessionTTL < time.Minute {
		errors = append(errors, fmt.Sprintf("invalid session TTL %v: must be at least 1 minute", c.SessionTTL))
	}

	if c.ActivityLimit < 1 {
		errors = append(errors, fmt.Sprintf("invalid activity limit %d: must be at least 1", c.ActivityLimit))
	} else if c.ActivityLimit > 1000 {
		errors = append(errors, fmt.Sprintf("invalid activity limit %d: must be at most 1000", c.ActivityLimit))
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

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
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
