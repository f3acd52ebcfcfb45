package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all runtime configuration for the GBCE tool.
type Config struct {
	LogLevel   string
	VWAPWindow time.Duration
	Sample     bool
}

// Load reads configuration from environment variables, applies defaults,
// and validates values. It returns an error for any invalid value.
func Load() (*Config, error) {
	logLevel := getStr("LOG_LEVEL", "info")
	if !isValidLogLevel(logLevel) {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %q, must be one of: debug, info, warn, error", logLevel)
	}

	vwapWindow, err := getDuration("VWAP_WINDOW", 5*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("invalid VWAP_WINDOW: %w", err)
	}
	if vwapWindow <= 0 {
		return nil, fmt.Errorf("invalid VWAP_WINDOW: %v, must be positive", vwapWindow)
	}

	sample, err := getBool("GBCE_SAMPLE", false)
	if err != nil {
		return nil, fmt.Errorf("invalid GBCE_SAMPLE: %w", err)
	}

	return &Config{
		LogLevel:   logLevel,
		VWAPWindow: vwapWindow,
		Sample:     sample,
	}, nil
}

func getStr(key, defaultVal string) string {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	return v
}

func getBool(key string, defaultVal bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	return strconv.ParseBool(v)
}

func getDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	return time.ParseDuration(v)
}

func isValidLogLevel(level string) bool {
	switch level {
	case "debug", "info", "warn", "error":
		return true
	}
	return false
}
