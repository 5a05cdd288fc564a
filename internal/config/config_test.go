package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfig_Validate(t *testing.T) {
	base := func() *Config {
		return &Config{
			JWTSecret:     "secure-secret-at-least-32-chars-long",
			JWTIssuer:     "ripple-api",
			JWTAudience:   "ripple-clients",
			JWTExpiryMins: 60,
			Port:          "8430",
			DBPassword:    "secure-password",
			DBSSLMode:     "require",
			Env:           "development",
		}
	}

	tests := []struct {
		name        string
		mutate      func(*Config)
		expectError bool
	}{
		{"valid development config", func(c *Config) {}, false},
		{"missing port", func(c *Config) { c.Port = "" }, true},
		{"missing jwt secret", func(c *Config) { c.JWTSecret = "" }, true},
		{"zero token expiry", func(c *Config) { c.JWTExpiryMins = 0 }, true},
		{"short secret allowed in development", func(c *Config) { c.JWTSecret = "short" }, false},
		{"default secret rejected in production", func(c *Config) {
			c.Env = "production"
			c.JWTSecret = "your-secret-key-change-in-production"
		}, true},
		{"short secret rejected in production", func(c *Config) {
			c.Env = "production"
			c.JWTSecret = "short"
		}, true},
		{"weak db password rejected in production", func(c *Config) {
			c.Env = "prod"
			c.DBPassword = "password"
		}, true},
		{"strong production config", func(c *Config) { c.Env = "production" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base()
			tt.mutate(c)

			err := c.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
