package main

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"streamcheck/internal/blobcache"
	"streamcheck/internal/checker"
	"streamcheck/internal/config"
	"streamcheck/internal/httpretry"
	"streamcheck/internal/logging"
	"streamcheck/internal/riot"
	"streamcheck/internal/services"
	"streamcheck/internal/twitch"
)

type commandContext struct {
	configFlag  *string
	verboseFlag *bool

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string, verboseFlag *bool) *commandContext {
	return &commandContext{
		configFlag:  configFlag,
		verboseFlag: verboseFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) verbose() bool {
	return c.verboseFlag != nil && *c.verboseFlag
}

// session bundles everything one command invocation needs.
type session struct {
	logger  *slog.Logger
	checker *checker.Checker
}

// newSession builds the logger, transport, cache and backend clients from cfg.
// The returned context carries a fresh run id.
func (c *commandContext) newSession(ctx context.Context, cfg *config.Config, noCache bool) (context.Context, *session, error) {
	logger, err := logging.NewFromConfig(cfg, c.verbose())
	if err != nil {
		return ctx, nil, err
	}
	ctx = services.WithRunID(ctx, uuid.NewString())

	transport := httpretry.New(
		httpretry.WithHTTPClient(httpretry.NewHTTPClient(time.Duration(cfg.HTTP.TimeoutSeconds)*time.Second)),
		httpretry.WithMaxRetries(cfg.HTTP.MaxRetries),
		httpretry.WithBackoff(time.Duration(cfg.HTTP.BackoffMS)*time.Millisecond),
		httpretry.WithLogger(logger),
	)

	var store *blobcache.Store
	if cfg.Cache.Enabled && !noCache {
		store, err = blobcache.New(cfg.Cache.Dir, logger)
		if err != nil {
			return ctx, nil, err
		}
	} else {
		logging.WithContext(ctx, logger).Debug("response cache disabled")
	}

	riotClient, err := riot.New(cfg.Riot.APIKey,
		riot.WithTransport(transport),
		riot.WithCache(store),
		riot.WithBaseURLTemplate(cfg.Riot.BaseURLTemplate),
		riot.WithPageSize(cfg.Riot.PageSize),
		riot.WithLogger(logger),
	)
	if err != nil {
		return ctx, nil, err
	}
	twitchClient, err := twitch.New(cfg.Twitch.ClientID, cfg.Twitch.ClientSecret,
		twitch.WithTransport(transport),
		twitch.WithCache(store),
		twitch.WithAuthURL(cfg.Twitch.AuthURL),
		twitch.WithAPIURL(cfg.Twitch.APIURL),
		twitch.WithLogger(logger),
	)
	if err != nil {
		return ctx, nil, err
	}

	chk := checker.New(riotClient, twitchClient, checker.Settings{
		Threshold:   cfg.Analysis.Threshold,
		BufferHours: cfg.Analysis.BufferHours,
		MaxMatches:  cfg.Analysis.MaxMatches,
		Concurrency: cfg.Analysis.Concurrency,
	}, logger)
	return ctx, &session{logger: logger, checker: chk}, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
