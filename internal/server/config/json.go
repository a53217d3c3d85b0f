package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/gophidentity/internal/flagx"
	"github.com/dmitrijs2005/gophidentity/internal/timex"
)

// JsonConfig is the on-disk shape of the configuration file. Duration fields
// accept "5m"-style strings or integer nanoseconds via timex.Duration.
// Absent keys leave the corresponding Config value untouched.
type JsonConfig struct {
	EndpointAddrGRPC            string          `json:"endpoint_addr_grpc"`
	MetricsAddr                 string          `json:"metrics_addr"`
	DatabaseDSN                 string          `json:"database_dsn"`
	LogLevel                    string          `json:"log_level"`
	PasswordHashIterations      int             `json:"password_hash_iterations"`
	SecretKey                   string          `json:"secret_key"`
	UserTokenLifespan           *timex.Duration `json:"user_token_lifespan"`
	MaxFailedAccessAttempts     int             `json:"max_failed_access_attempts"`
	DefaultLockoutTimeSpan      *timex.Duration `json:"default_lockout_time_span"`
	UserLockoutEnabledByDefault *bool           `json:"user_lockout_enabled_by_default"`
	AdminRoleName               string          `json:"admin_role_name"`
	AdminEmail                  string          `json:"admin_email"`
	AdminPassword               string          `json:"admin_password"`
}

// parseJson overlays values from the JSON file named by -c/-config in args.
// Nothing happens when no file is given.
func parseJson(config *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("decode config %s: %w", path, err)
	}

	c.apply(config)
	return nil
}

func (c *JsonConfig) apply(config *Config) {
	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.MetricsAddr, c.MetricsAddr)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.AdminRoleName, c.AdminRoleName)
	setString(&config.AdminEmail, c.AdminEmail)
	setString(&config.AdminPassword, c.AdminPassword)

	if c.PasswordHashIterations > 0 {
		config.PasswordHashIterations = c.PasswordHashIterations
	}
	if c.MaxFailedAccessAttempts > 0 {
		config.MaxFailedAccessAttempts = c.MaxFailedAccessAttempts
	}
	if c.UserTokenLifespan != nil {
		config.UserTokenLifespan = c.UserTokenLifespan.Duration
	}
	if c.DefaultLockoutTimeSpan != nil {
		config.DefaultLockoutTimeSpan = c.DefaultLockoutTimeSpan.Duration
	}
	if c.UserLockoutEnabledByDefault != nil {
		config.UserLockoutEnabledByDefault = *c.UserLockoutEnabledByDefault
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
