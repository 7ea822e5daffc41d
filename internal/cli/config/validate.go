package config

import (
	"fmt"
	"net/url"
)

// Validate checks settings that do not depend on credentials. Missing
// credentials are reported separately, when a command needs them.
func (c *Config) Validate() error {
	if c.Limit != nil && *c.Limit < 0 {
		return fmt.Errorf("limit must not be negative, got %d", *c.Limit)
	}
	if c.Offset != nil && *c.Offset < 0 {
		return fmt.Errorf("offset must not be negative, got %d", *c.Offset)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	if c.BaseURL != "" {
		u, err := url.Parse(c.BaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("base_url must be an absolute URL, got %q", c.BaseURL)
		}
	}
	return nil
}

// ValidateCredentials checks that every credential is present.
func (c *Config) ValidateCredentials() error {
	if err := c.Credentials().Validate(); err != nil {
		return fmt.Errorf("%w\nHint: set them in the environment or in a .env file", err)
	}
	return nil
}
