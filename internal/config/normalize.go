package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	c.normalizeRiot()
	c.normalizeTwitch()
	if err := c.normalizeCache(); err != nil {
		return err
	}
	c.normalizeHTTP()
	c.normalizeAnalysis()
	if err := c.normalizeLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) normalizeRiot() {
	c.Riot.APIKey = envFallback(c.Riot.APIKey, riotAPIKeyEnv)
	c.Riot.BaseURLTemplate = strings.TrimRight(strings.TrimSpace(c.Riot.BaseURLTemplate), "/")
	if c.Riot.BaseURLTemplate == "" {
		c.Riot.BaseURLTemplate = defaultRiotBaseURL
	}
	switch {
	case c.Riot.PageSize <= 0:
		c.Riot.PageSize = defaultRiotPageSize
	case c.Riot.PageSize > maxRiotPageSize:
		c.Riot.PageSize = maxRiotPageSize
	}
}

func (c *Config) normalizeTwitch() {
	c.Twitch.ClientID = envFallback(c.Twitch.ClientID, twitchClientIDEnv)
	c.Twitch.ClientSecret = envFallback(c.Twitch.ClientSecret, twitchClientSecretEnv)
	c.Twitch.AuthURL = strings.TrimSpace(c.Twitch.AuthURL)
	if c.Twitch.AuthURL == "" {
		c.Twitch.AuthURL = defaultTwitchAuthURL
	}
	c.Twitch.APIURL = strings.TrimRight(strings.TrimSpace(c.Twitch.APIURL), "/")
	if c.Twitch.APIURL == "" {
		c.Twitch.APIURL = defaultTwitchAPIURL
	}
}

func (c *Config) normalizeCache() error {
	if strings.TrimSpace(c.Cache.Dir) == "" {
		c.Cache.Dir = defaultCacheDir()
	}
	var err error
	if c.Cache.Dir, err = expandPath(c.Cache.Dir); err != nil {
		return fmt.Errorf("cache.dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeHTTP() {
	if c.HTTP.MaxRetries < 1 {
		c.HTTP.MaxRetries = 1
	}
	if c.HTTP.BackoffMS < 1 {
		c.HTTP.BackoffMS = 1
	}
	if c.HTTP.TimeoutSeconds <= 0 {
		c.HTTP.TimeoutSeconds = defaultTimeoutSeconds
	}
}

func (c *Config) normalizeAnalysis() {
	if c.Analysis.Concurrency < 1 {
		c.Analysis.Concurrency = 1
	}
	if c.Analysis.MaxMatches < 0 {
		c.Analysis.MaxMatches = 0
	}
	c.Analysis.OutputCSV = strings.TrimSpace(c.Analysis.OutputCSV)
}

func (c *Config) normalizeLogging() error {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if strings.TrimSpace(c.Logging.File) != "" {
		var err error
		if c.Logging.File, err = expandPath(c.Logging.File); err != nil {
			return fmt.Errorf("logging.file: %w", err)
		}
	}
	return nil
}

func envFallback(value, key string) string {
	value = strings.TrimSpace(value)
	if value != "" {
		return value
	}
	if env, ok := os.LookupEnv(key); ok {
		return strings.TrimSpace(env)
	}
	return ""
}
