package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Environment variables read by parseEnv.
const (
	EnvHTTPAddr           = "HTTP_ADDR"
	EnvDatabaseDSN        = "DATABASE_URL"
	EnvRecommenderURL     = "RECOMMENDER_URL"
	EnvRecommenderTimeout = "RECOMMENDER_TIMEOUT"
	EnvBcryptCost         = "BCRYPT_COST"
	EnvAuthRatePerMin     = "AUTH_RATE_LIMIT"
	EnvAuthRateBurst      = "AUTH_RATE_BURST"
	EnvCORSOrigins        = "CORS_ALLOWED_ORIGINS"
	EnvLogLevel           = "LOG_LEVEL"
	EnvShutdownTimeout    = "SHUTDOWN_TIMEOUT"
)

// ErrNonPositiveTimeout rejects a recommender timeout that would leave
// engine calls unbounded.
var ErrNonPositiveTimeout = errors.New("timeout must be positive")

// parseEnv overlays values found through lookup. Blank variables are ignored.
func parseEnv(config *Config, lookup func(string) (string, bool)) error {
	get := func(key string) (string, bool) {
		v, ok := lookup(key)
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}

	if v, ok := get(EnvHTTPAddr); ok {
		config.HTTPAddr = v
	}
	if v, ok := get(EnvDatabaseDSN); ok {
		config.DatabaseDSN = v
	}
	if v, ok := get(EnvRecommenderURL); ok {
		config.RecommenderURL = v
	}
	if v, ok := get(EnvLogLevel); ok {
		config.LogLevel = v
	}
	if v, ok := get(EnvCORSOrigins); ok {
		config.CORSOrigins = parseCSV(v)
	}

	if v, ok := get(EnvRecommenderTimeout); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvRecommenderTimeout, err)
		}
		if d <= 0 {
			return fmt.Errorf("%s: %w", EnvRecommenderTimeout, ErrNonPositiveTimeout)
		}
		config.RecommenderTimeout = d
	}
	if v, ok := get(EnvShutdownTimeout); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvShutdownTimeout, err)
		}
		config.ShutdownTimeout = d
	}
	if v, ok := get(EnvBcryptCost); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvBcryptCost, err)
		}
		config.BcryptCost = n
	}
	if v, ok := get(EnvAuthRatePerMin); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvAuthRatePerMin, err)
		}
		config.AuthRatePerMin = f
	}
	if v, ok := get(EnvAuthRateBurst); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvAuthRateBurst, err)
		}
		config.AuthRateBurst = n
	}
	return nil
}

func parseCSV(input string) []string {
	var out []string
	for _, part := range strings.Split(input, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
