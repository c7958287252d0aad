// Package config loads process configuration from the environment.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

type Config struct {
	// HTTP server
	Port string

	// Ledger store
	SQLiteDBPath string

	// Frozen classifier artifact
	ModelPath string

	// OCR
	OCRLanguage string

	// Event publishing; empty URL disables it
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Shared-goal mirror; empty spreadsheet ID disables it
	GoalSpreadsheetID string
}

func Load() *Config {
	return &Config{
		Port:         getEnv("PORT", "8082"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/moodledger.db"),
		ModelPath:    getEnv("MODEL_PATH", "./model/category_predictor.gob"),
		OCRLanguage:  getEnv("OCR_LANGUAGE", "eng"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "moodledger"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "ledger_events"),

		GoalSpreadsheetID: getEnv("GOAL_SPREADSHEET_ID", ""),
	}
}

// Validate reports every problem at once so a misconfigured deployment
// fails with one readable message.
func (c *Config) Validate() error {
	var problems []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		problems = append(problems, fmt.Sprintf("invalid port %q: must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.SQLiteDBPath == "" {
		problems = append(problems, "SQLite database path cannot be empty")
	} else if dir := filepath.Dir(c.SQLiteDBPath); dir != "." && dir != "" {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			if err := os.MkdirAll(dir, 0755); err != nil {
				problems = append(problems, fmt.Sprintf("cannot create database directory %q: %v", dir, err))
			}
		}
	}

	if c.ModelPath == "" {
		problems = append(problems, "classifier model path cannot be empty")
	} else if _, err := os.Stat(c.ModelPath); os.IsNotExist(err) {
		problems = append(problems, fmt.Sprintf("classifier model does not exist: %s", c.ModelPath))
	}

	if c.AMQPURL != "" {
		if parsed, err := url.Parse(c.AMQPURL); err != nil {
			problems = append(problems, fmt.Sprintf("invalid AMQP URL %q: %v", c.AMQPURL, err))
		} else if parsed.Scheme != "amqp" && parsed.Scheme != "amqps" {
			problems = append(problems, fmt.Sprintf("invalid AMQP URL scheme %q: must be amqp or amqps", parsed.Scheme))
		}
		if c.AMQPExchange == "" {
			problems = append(problems, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			problems = append(problems, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(problems, "\n- "))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
