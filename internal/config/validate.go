package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateCredentials(); err != nil {
		return err
	}
	if err := c.validateAnalysis(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

// MissingCredentials lists the environment variable names for every backend
// credential that is still empty.
func (c *Config) MissingCredentials() []string {
	var missing []string
	if c.Riot.APIKey == "" {
		missing = append(missing, riotAPIKeyEnv)
	}
	if c.Twitch.ClientID == "" {
		missing = append(missing, twitchClientIDEnv)
	}
	if c.Twitch.ClientSecret == "" {
		missing = append(missing, twitchClientSecretEnv)
	}
	return missing
}

func (c *Config) validateCredentials() error {
	missing := c.MissingCredentials()
	if len(missing) == 0 {
		return nil
	}
	defaultPath, err := DefaultConfigPath()
	if err != nil {
		defaultPath = defaultConfigPath
	}
	return fmt.Errorf("missing env vars: %s. Set them in the environment, a .env file, or %s (create with 'streamcheck config init')",
		strings.Join(missing, ", "), defaultPath)
}

func (c *Config) validateAnalysis() error {
	if c.Analysis.Days <= 0 {
		return errors.New("analysis.days must be positive")
	}
	if c.Analysis.Threshold < 0 || c.Analysis.Threshold > 1 {
		return errors.New("analysis.threshold must be between 0 and 1")
	}
	if c.Analysis.BufferHours < 0 {
		return errors.New("analysis.buffer_hours must not be negative")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
