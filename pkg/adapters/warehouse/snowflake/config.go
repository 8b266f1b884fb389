// Package snowflake connects the warehouse layer to Snowflake through gosnowflake.
package snowflake

import (
	"time"

	"github.com/snowflakedb/gosnowflake"

	"github.com/ekaya-inc/fraudwatch/pkg/adapters/warehouse"
)

// Config identifies the session target. Credentials come from warehouse.Credential.
type Config struct {
	Account      string
	Warehouse    string
	Database     string
	Schema       string
	Role         string
	Host         string // Only sent for OAuth sessions, where the platform provides it
	LoginTimeout time.Duration
}

// Application is reported to Snowflake for query-history attribution.
const Application = "fraudwatch"

// driverConfig builds the gosnowflake config for one credential.
func (c *Config) driverConfig(cred warehouse.Credential) *gosnowflake.Config {
	cfg := &gosnowflake.Config{
		Account:      c.Account,
		Warehouse:    c.Warehouse,
		Database:     c.Database,
		Schema:       c.Schema,
		Role:         c.Role,
		LoginTimeout: c.LoginTimeout,
		Application:  Application,
	}

	if cred.IsOAuth() {
		cfg.Authenticator = gosnowflake.AuthTypeOAuth
		cfg.Token = cred.Token
		cfg.Host = c.Host
		return cfg
	}

	cfg.User = cred.User
	cfg.Password = cred.Password
	return cfg
}
