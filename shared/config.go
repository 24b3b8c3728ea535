// Copyright (C) 2026 l3montree GmbH
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package shared

import (
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Config is the runtime configuration of the analysis server.
// Every field maps to an environment variable of the same name.
type Config struct {
	Port        string `mapstructure:"PORT" validate:"required"`
	Environment string `mapstructure:"ENVIRONMENT"`
	LogLevel    string `mapstructure:"LOG_LEVEL" validate:"omitempty,oneof=debug info warn warning error"`

	ErrorTrackingDSN string `mapstructure:"ERROR_TRACKING_DSN"`

	OSVAPIURL      string        `mapstructure:"OSV_API_URL" validate:"required,url"`
	OSVRateLimit   float64       `mapstructure:"OSV_RATE_LIMIT" validate:"gt=0"`
	OSVTimeout     time.Duration `mapstructure:"OSV_TIMEOUT" validate:"gt=0"`
	OSVMaxAttempts int           `mapstructure:"OSV_MAX_ATTEMPTS" validate:"min=1,max=10"`
	OSVCacheTTL    time.Duration `mapstructure:"OSV_CACHE_TTL" validate:"gte=0"`
	OSVCacheSize   int           `mapstructure:"OSV_CACHE_SIZE" validate:"gte=0"`

	SeverityPrecedence string `mapstructure:"SEVERITY_PRECEDENCE" validate:"oneof=canonical-first database-specific-first"`

	CorrelationConcurrency     int           `mapstructure:"CORRELATION_CONCURRENCY" validate:"min=1,max=64"`
	CorrelationMaxFailureRatio float64       `mapstructure:"CORRELATION_MAX_FAILURE_RATIO" validate:"gte=0,lte=1"`
	PipelineTimeout            time.Duration `mapstructure:"PIPELINE_TIMEOUT" validate:"gt=0"`

	DefaultTier    string        `mapstructure:"DEFAULT_TIER" validate:"required"`
	TierServiceURL string        `mapstructure:"TIER_SERVICE_URL" validate:"omitempty,url"`
	TierCacheTTL   time.Duration `mapstructure:"TIER_CACHE_TTL" validate:"gte=0"`

	ReaperInterval time.Duration `mapstructure:"REAPER_INTERVAL" validate:"gt=0"`
}

var configDefaults = map[string]any{
	"PORT":                          "8080",
	"ENVIRONMENT":                   "dev",
	"LOG_LEVEL":                     "debug",
	"ERROR_TRACKING_DSN":            "",
	"OSV_API_URL":                   "https://api.osv.dev",
	"OSV_RATE_LIMIT":                10.0,
	"OSV_TIMEOUT":                   "10s",
	"OSV_MAX_ATTEMPTS":              3,
	"OSV_CACHE_TTL":                 "1h",
	"OSV_CACHE_SIZE":                10_000,
	"SEVERITY_PRECEDENCE":           "canonical-first",
	"CORRELATION_CONCURRENCY":       8,
	"CORRELATION_MAX_FAILURE_RATIO": 0.5,
	"PIPELINE_TIMEOUT":              "10m",
	"DEFAULT_TIER":                  "free",
	"TIER_SERVICE_URL":              "",
	"TIER_CACHE_TTL":                "1m",
	"REAPER_INTERVAL":               "5m",
}

// ConfigFromEnv reads the configuration from the process environment.
// Call LoadConfig before to pick up a .env file.
func ConfigFromEnv() (Config, error) {
	v := viper.New()
	for key, value := range configDefaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))); err != nil {
		return Config{}, errors.Wrap(err, "could not decode configuration")
	}

	if err := V.Struct(cfg); err != nil {
		return Config{}, errors.Wrap(err, "invalid configuration")
	}

	return cfg, nil
}
