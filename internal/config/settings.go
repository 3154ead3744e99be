// Package config provides phraser settings loaded from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"harshagw/phraser/internal/analysis"
)

// Environment variables read by New.
const (
	EnvDir          = "PHRASER_DIR"
	EnvLogLevel     = "PHRASER_LOG_LEVEL"
	EnvDestutterMax = "PHRASER_DESTUTTER_MAX"
	EnvHTMLEntities = "PHRASER_HTML_ENTITIES"
	EnvHistoryLimit = "PHRASER_HISTORY_LIMIT"
)

// Settings holds all application configuration.
type Settings struct {
	// Dir is the library workspace directory.
	Dir          string
	LogLevel     string
	HistoryLimit int
	// Analysis holds the default per-request options.
	Analysis analysis.Options
}

// New loads settings from the environment, applying defaults for unset
// variables. Returns an error naming the variable on an invalid value.
func New() (Settings, error) {
	defaults := analysis.DefaultOptions()

	destutter, err := getEnvInt(EnvDestutterMax, defaults.DestutterMaxConsecutive)
	if err != nil {
		return Settings{}, err
	}
	if destutter < 0 {
		return Settings{}, fmt.Errorf("invalid value for %s: %d: must be >= 0", EnvDestutterMax, destutter)
	}

	entities, err := getEnvBool(EnvHTMLEntities, defaults.ReplaceHTMLEntities)
	if err != nil {
		return Settings{}, err
	}

	historyLimit, err := getEnvInt(EnvHistoryLimit, 1000)
	if err != nil {
		return Settings{}, err
	}
	if historyLimit < 0 {
		return Settings{}, fmt.Errorf("invalid value for %s: %d: must be >= 0", EnvHistoryLimit, historyLimit)
	}

	level := strings.ToLower(getEnv(EnvLogLevel, "info"))
	switch level {
	case "error", "warn", "info", "debug", "trace":
	default:
		return Settings{}, fmt.Errorf("invalid value for %s: %q", EnvLogLevel, level)
	}

	return Settings{
		Dir:          getEnv(EnvDir, "./phraser_data"),
		LogLevel:     level,
		HistoryLimit: historyLimit,
		Analysis: analysis.Options{
			DestutterMaxConsecutive: destutter,
			ReplaceHTMLEntities:     entities,
		},
	}, nil
}

// MustNew is like New but panics on error.
func MustNew() Settings {
	s, err := New()
	if err != nil {
		panic(err)
	}
	return s
}

func getEnv(key, defaultVal string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) (int, error) {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return defaultVal, nil
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %q: %w", key, val, err)
	}
	return i, nil
}

func getEnvBool(key string, defaultVal bool) (bool, error) {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return defaultVal, nil
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return false, fmt.Errorf("invalid value for %s: %q: %w", key, val, err)
	}
	return b, nil
}
