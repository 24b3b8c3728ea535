// Copyright (C) 2025 l3montree GmbH
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

package database

import (
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/l3montree-dev/sbomguard/shared"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// PoolConfig holds database connection pool configuration
// This is used by both GORM and pgx pools to ensure consistent connection management
type PoolConfig struct {
	User     string `mapstructure:"POSTGRES_USER" validate:"required"`
	Password string `mapstructure:"POSTGRES_PASSWORD"`
	Host     string `mapstructure:"POSTGRES_HOST" validate:"required"`
	Port     string `mapstructure:"POSTGRES_PORT" validate:"required"`
	DBName   string `mapstructure:"POSTGRES_DB" validate:"required"`

	MaxOpenConns    int32         `mapstructure:"DB_MAX_OPEN_CONNS" validate:"gt=0"`
	MinConns        int32         `mapstructure:"DB_MIN_CONNS" validate:"gte=0,ltefield=MaxOpenConns"`
	ConnMaxLifetime time.Duration `mapstructure:"DB_CONN_MAX_LIFETIME"`
	ConnMaxIdleTime time.Duration `mapstructure:"DB_CONN_MAX_IDLE_TIME"`
}

// GetPoolConfigFromEnv reads pool configuration from environment variables
//
// Environment variables:
// - POSTGRES_USER, POSTGRES_PASSWORD, POSTGRES_HOST, POSTGRES_PORT (default: 5432), POSTGRES_DB
// - DB_MAX_OPEN_CONNS: Maximum number of open connections (default: 25)
// - DB_MIN_CONNS: Minimum number of idle connections (default: 5)
// - DB_CONN_MAX_LIFETIME: Maximum connection lifetime, e.g. "5m" (default: 4 hours)
// - DB_CONN_MAX_IDLE_TIME: Maximum idle time before closing, e.g. "1m" (default: 15 minutes)
func GetPoolConfigFromEnv() (PoolConfig, error) {
	v := viper.New()
	v.SetDefault("POSTGRES_USER", "")
	v.SetDefault("POSTGRES_PASSWORD", "")
	v.SetDefault("POSTGRES_HOST", "localhost")
	v.SetDefault("POSTGRES_PORT", "5432")
	v.SetDefault("POSTGRES_DB", "")
	v.SetDefault("DB_MAX_OPEN_CONNS", 25)
	v.SetDefault("DB_MIN_CONNS", 5)
	v.SetDefault("DB_CONN_MAX_LIFETIME", "4h")
	v.SetDefault("DB_CONN_MAX_IDLE_TIME", "15m")
	v.AutomaticEnv()

	var cfg PoolConfig
	if err := v.Unmarshal(&cfg, viper.DecodeHook(mapstructure.StringToTimeDurationHookFunc())); err != nil {
		return PoolConfig{}, errors.Wrap(err, "could not decode database configuration")
	}
	if err := shared.V.Struct(cfg); err != nil {
		return PoolConfig{}, errors.Wrap(err, "invalid database configuration")
	}
	return cfg, nil
}
