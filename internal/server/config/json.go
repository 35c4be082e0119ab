package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/fintrack/internal/flagx"
	"github.com/dmitrijs2005/fintrack/internal/timex"
)

// JsonConfig is the on-disk form of Config. Durations accept both strings
// such as "30s" and integer nanoseconds. Absent or zero fields leave the
// current value untouched.
type JsonConfig struct {
	HTTPAddr           string         `json:"http_addr"`
	DatabaseDSN        string         `json:"database_dsn"`
	RecommenderURL     string         `json:"recommender_url"`
	RecommenderTimeout timex.Duration `json:"recommender_timeout"`
	BcryptCost         int            `json:"bcrypt_cost"`
	AuthRatePerMin     float64        `json:"auth_rate_per_min"`
	AuthRateBurst      int            `json:"auth_rate_burst"`
	CORSOrigins        []string       `json:"cors_origins"`
	LogLevel           string         `json:"log_level"`
	ShutdownTimeout    timex.Duration `json:"shutdown_timeout"`
}

// parseJson overlays values from the JSON file given by -c / -config in args.
// Without that flag nothing is loaded.
func parseJson(config *Config, args []string) error {
	path := flagx.ConfigFilePath(args)
	if path == "" {
		return nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	setString(&config.HTTPAddr, c.HTTPAddr)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.RecommenderURL, c.RecommenderURL)
	setString(&config.LogLevel, c.LogLevel)
	if c.RecommenderTimeout.Duration > 0 {
		config.RecommenderTimeout = c.RecommenderTimeout.Duration
	}
	if c.ShutdownTimeout.Duration > 0 {
		config.ShutdownTimeout = c.ShutdownTimeout.Duration
	}
	if c.BcryptCost > 0 {
		config.BcryptCost = c.BcryptCost
	}
	if c.AuthRatePerMin > 0 {
		config.AuthRatePerMin = c.AuthRatePerMin
	}
	if c.AuthRateBurst > 0 {
		config.AuthRateBurst = c.AuthRateBurst
	}
	if len(c.CORSOrigins) > 0 {
		config.CORSOrigins = c.CORSOrigins
	}
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
