// Package utils holds the env-var parsing helpers config is built from.
package utils

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// GetEnvAsBool parses a boolean env var, accepting 1/true/yes and 0/false/no.
func GetEnvAsBool(key string, defaultVal bool) bool {
	switch strings.ToLower(os.Getenv(key)) {
	case "1", "true", "yes":
		return true
	case "0", "false", "no":
		return false
	default:
		return defaultVal
	}
}

// GetEnvAsInt parses an integer env var, keeping the default on absence or
// garbage.
func GetEnvAsInt(name string, defaultVal int) int {
	if valStr := os.Getenv(name); valStr != "" {
		if val, err := strconv.Atoi(valStr); err == nil {
			return val
		}
	}
	return defaultVal
}

// GetEnvAsFloat parses a float env var, keeping the default on absence or
// garbage.
func GetEnvAsFloat(name string, defaultVal float64) float64 {
	if valStr := os.Getenv(name); valStr != "" {
		if val, err := strconv.ParseFloat(valStr, 64); err == nil {
			return val
		}
	}
	return defaultVal
}

// GetEnvAsDurationMS parses a millisecond-valued env var into a Duration.
// Cache TTLs and timeouts are all configured in milliseconds.
func GetEnvAsDurationMS(name string, defaultMS int) time.Duration {
	return time.Duration(GetEnvAsInt(name, defaultMS)) * time.Millisecond
}
