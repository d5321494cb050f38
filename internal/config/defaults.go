package config

const (
	defaultConfigPath     = "~/.config/streamcheck/config.toml"
	defaultRiotBaseURL    = "https://{region}.api.riotgames.com"
	defaultRiotPageSize   = 200
	defaultTwitchAuthURL  = "https://id.twitch.tv/oauth2/token"
	defaultTwitchAPIURL   = "https://api.twitch.tv/helix"
	defaultMaxRetries     = 5
	defaultBackoffMS      = 1000
	defaultTimeoutSeconds = 30
	defaultAnalysisDays   = 30
	defaultThreshold      = 0.5
	defaultConcurrency    = 1
	defaultOutputCSV      = "output/stream-check.csv"
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"
	riotAPIKeyEnv         = "RIOT_API_KEY"
	twitchClientIDEnv     = "TWITCH_CLIENT_ID"
	twitchClientSecretEnv = "TWITCH_CLIENT_SECRET"
	maxRiotPageSize       = 200
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Riot: Riot{
			BaseURLTemplate: defaultRiotBaseURL,
			PageSize:        defaultRiotPageSize,
		},
		Twitch: Twitch{
			AuthURL: defaultTwitchAuthURL,
			APIURL:  defaultTwitchAPIURL,
		},
		Cache: Cache{
			Enabled: true,
			Dir:     defaultCacheDir(),
		},
		HTTP: HTTP{
			MaxRetries:     defaultMaxRetries,
			BackoffMS:      defaultBackoffMS,
			TimeoutSeconds: defaultTimeoutSeconds,
		},
		Analysis: Analysis{
			Days:        defaultAnalysisDays,
			Threshold:   defaultThreshold,
			Concurrency: defaultConcurrency,
			OutputCSV:   defaultOutputCSV,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
