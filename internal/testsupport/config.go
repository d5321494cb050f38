package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"streamcheck/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config pointed at backends with credentials set, a
// private cache directory, fast retries and quiet logging.
func NewConfig(t testing.TB, backends *Backends, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Riot.APIKey = "test-riot-key"
	cfgVal.Twitch.ClientID = "test-client"
	cfgVal.Twitch.ClientSecret = "test-secret"
	if backends != nil {
		cfgVal.Riot.BaseURLTemplate = backends.RiotBaseURL()
		cfgVal.Twitch.AuthURL = backends.TwitchAuthURL()
		cfgVal.Twitch.APIURL = backends.TwitchAPIURL()
	}
	cfgVal.Cache.Dir = filepath.Join(base, "cache")
	cfgVal.HTTP.MaxRetries = 1
	cfgVal.HTTP.BackoffMS = 1
	cfgVal.Analysis.OutputCSV = filepath.Join(base, "output", "stream-check.csv")
	cfgVal.Logging.Level = "error"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithoutCache disables the response cache.
func WithoutCache() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Cache.Enabled = false
	}
}

// WithThreshold overrides the pass threshold.
func WithThreshold(threshold float64) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Analysis.Threshold = threshold
	}
}

// WriteConfig encodes cfg as TOML in a temp file and returns its path.
func WriteConfig(t testing.TB, cfg *config.Config) string {
	t.Helper()
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("encode config: %v", err)
	}
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}
