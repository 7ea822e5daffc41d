// Package config provides configuration management for the suiteql CLI.
//
// Settings are layered with koanf: built-in defaults, then a YAML config
// file, then a .env file, then the process environment, then command-line
// flags that were explicitly set.
package config

import (
	"time"

	"github.com/leapstack-labs/suiteql/internal/suiteql"
)

// Default values.
const (
	DefaultTimeout     = suiteql.DefaultTimeout
	DefaultHistoryFile = "~/.suiteql_history"
	DefaultEnvFile     = ".env"
)

// Environment variable prefixes. NETSUITE_ carries credentials, SUITEQL_
// carries everything else.
const (
	CredentialEnvPrefix = "NETSUITE_"
	SettingsEnvPrefix   = "SUITEQL_"
)

// Config holds all CLI configuration options.
type Config struct {
	AccountID      string `koanf:"account_id"`
	ConsumerKey    string `koanf:"consumer_key"`
	ConsumerSecret string `koanf:"consumer_secret"`
	Token          string `koanf:"token"`
	TokenSecret    string `koanf:"token_secret"`

	BaseURL string        `koanf:"base_url"`
	Timeout time.Duration `koanf:"timeout"`

	Limit  *int `koanf:"limit"`
	Offset *int `koanf:"offset"`
	JSON   bool `koanf:"json"`

	HistoryFile string `koanf:"history_file"`
	Editor      string `koanf:"editor"`
	Verbose     bool   `koanf:"verbose"`
}

// Credentials returns the NetSuite token-based authentication settings.
func (c *Config) Credentials() suiteql.Credentials {
	return suiteql.Credentials{
		AccountID:      c.AccountID,
		ConsumerKey:    c.ConsumerKey,
		ConsumerSecret: c.ConsumerSecret,
		Token:          c.Token,
		TokenSecret:    c.TokenSecret,
	}
}

// credentialKeys maps credential environment variables to config keys.
var credentialKeys = map[string]string{
	suiteql.EnvAccountID:      "account_id",
	suiteql.EnvConsumerKey:    "consumer_key",
	suiteql.EnvConsumerSecret: "consumer_secret",
	suiteql.EnvToken:          "token",
	suiteql.EnvTokenSecret:    "token_secret",
}

// settingKeys lists the keys accepted with the SUITEQL_ prefix.
var settingKeys = map[string]bool{
	"base_url":     true,
	"timeout":      true,
	"limit":        true,
	"offset":       true,
	"json":         true,
	"history_file": true,
	"editor":       true,
	"verbose":      true,
}
