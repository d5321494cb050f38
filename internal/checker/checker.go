// Package checker runs the per-contestant analysis: resolve the account,
// gather matches through a bounded worker pool, gather broadcasts, classify.
package checker

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"streamcheck/internal/classify"
	"streamcheck/internal/logging"
	"streamcheck/internal/riot"
	"streamcheck/internal/services"
	"streamcheck/internal/twitch"
	"streamcheck/internal/window"
)

// MatchSource is the match-history backend.
type MatchSource interface {
	ResolveAccountID(ctx context.Context, identity riot.Identity) (string, error)
	ListMatchIDs(ctx context.Context, puuid string, region riot.Region, w window.TimeWindow, maxMatches int) ([]string, error)
	GetMatchDetail(ctx context.Context, matchID string, region riot.Region) (*riot.MatchDetail, error)
}

// StreamSource is the broadcast archive backend.
type StreamSource interface {
	ResolveUser(ctx context.Context, login string) (twitch.User, error)
	ListBroadcastIntervals(ctx context.Context, userID string, w window.TimeWindow, bufferHours float64) ([]twitch.BroadcastInterval, error)
}

// Settings tunes one analysis pass.
type Settings struct {
	Threshold   float64
	BufferHours float64
	MaxMatches  int
	Concurrency int
}

// Target names the contestant to analyze.
type Target struct {
	Name     string
	Identity riot.Identity
	Twitch   string
}

// Report is the outcome of one analysis pass.
type Report struct {
	Target    Target
	Window    window.TimeWindow
	PUUID     string
	User      twitch.User
	Matches   []riot.MatchRecord
	Intervals []twitch.BroadcastInterval
	Result    classify.Result
	Threshold float64
}

// Checker wires the backends into the analysis pipeline.
type Checker struct {
	matches  MatchSource
	streams  StreamSource
	settings Settings
	logger   *slog.Logger
}

// New constructs a Checker.
func New(matches MatchSource, streams StreamSource, settings Settings, logger *slog.Logger) *Checker {
	if settings.Concurrency < 1 {
		settings.Concurrency = 1
	}
	if settings.MaxMatches < 0 {
		settings.MaxMatches = 0
	}
	return &Checker{
		matches:  matches,
		streams:  streams,
		settings: settings,
		logger:   logging.NewComponentLogger(logger, "checker"),
	}
}

// Analyze classifies the target's matches inside w against their broadcasts.
func (c *Checker) Analyze(ctx context.Context, target Target, w window.TimeWindow) (Report, error) {
	if w.EndMs <= w.StartMs {
		return Report{}, services.Wrap(services.ErrInvalidWindow, "checker", "analyze", w.String(), nil)
	}
	login := strings.TrimSpace(target.Twitch)
	if login == "" {
		return Report{}, services.Wrap(services.ErrFormat, "checker", "analyze", "twitch login required", nil)
	}
	if name := strings.TrimSpace(target.Name); name != "" {
		ctx = services.WithContestant(ctx, name)
	} else {
		ctx = services.WithContestant(ctx, target.Identity.String())
	}
	logger := logging.WithContext(ctx, c.logger)
	started := time.Now()
	logger.Info("analysis started",
		logging.String(logging.FieldEventType, "analysis_start"),
		logging.String("riot_id", target.Identity.String()),
		logging.String("region", string(target.Identity.Region)),
		logging.String("twitch", login),
		logging.String("window", w.String()),
		logging.Int64("window_start_ms", w.StartMs),
		logging.Int64("window_end_ms", w.EndMs),
	)

	report := Report{Target: target, Window: w, Threshold: c.settings.Threshold}

	matchCtx := services.WithStage(ctx, "matches")
	puuid, err := c.matches.ResolveAccountID(matchCtx, target.Identity)
	if err != nil {
		return Report{}, fmt.Errorf("resolve %s: %w", target.Identity, err)
	}
	report.PUUID = puuid

	ids, err := c.matches.ListMatchIDs(matchCtx, puuid, target.Identity.Region, w, c.settings.MaxMatches)
	if err != nil {
		return Report{}, fmt.Errorf("list matches for %s: %w", target.Identity, err)
	}
	details, err := c.fetchDetails(matchCtx, ids, target.Identity.Region)
	if err != nil {
		return Report{}, err
	}
	report.Matches = normalizeAll(ids, details)
	matchLogger := logging.WithContext(matchCtx, c.logger)
	matchLogger.Debug("matches collected",
		logging.Int("match_ids", len(ids)),
		logging.Int("matches", len(report.Matches)),
		logging.Bool("capped", c.settings.MaxMatches > 0 && len(ids) >= c.settings.MaxMatches),
	)
	if dropped := len(ids) - len(report.Matches); dropped > 0 {
		logging.WarnWithContext(matchLogger, "match details unavailable", "matches_dropped",
			logging.Alert("incomplete_history"),
			logging.Int("dropped", dropped),
			logging.String(logging.FieldImpact, "missing matches are excluded from the totals"),
			logging.String(logging.FieldErrorHint, "rerun with --no-cache if the matches should exist"),
		)
	}

	streamCtx := services.WithStage(ctx, "broadcasts")
	user, err := c.streams.ResolveUser(streamCtx, login)
	if err != nil {
		return Report{}, fmt.Errorf("resolve twitch %s: %w", login, err)
	}
	report.User = user
	intervals, err := c.streams.ListBroadcastIntervals(streamCtx, user.ID, w, c.settings.BufferHours)
	if err != nil {
		return Report{}, fmt.Errorf("list broadcasts for %s: %w", login, err)
	}
	report.Intervals = intervals

	report.Result = classify.Classify(report.Matches, intervals, c.settings.BufferHours, c.settings.Threshold)
	logger.Info("analysis completed",
		logging.String(logging.FieldEventType, "analysis_complete"),
		logging.Int("matches_total", report.Result.Total),
		logging.Int("on_stream", report.Result.OnStream),
		logging.Int("off_stream", report.Result.OffStream),
		logging.Float64("pct_total", report.Result.PctTotal),
		logging.String("result", ResultLabel(report.Result.Pass)),
		logging.Duration("elapsed", time.Since(started)),
	)
	return report, nil
}

// fetchDetails loads match details with at most Concurrency requests in
// flight. Results are stored by input index; absent details stay nil.
func (c *Checker) fetchDetails(ctx context.Context, ids []string, region riot.Region) ([]*riot.MatchDetail, error) {
	details := make([]*riot.MatchDetail, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.settings.Concurrency)
	for i, id := range ids {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			detail, err := c.matches.GetMatchDetail(gctx, id, region)
			if err != nil {
				return fmt.Errorf("match %s: %w", id, err)
			}
			details[i] = detail
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return details, nil
}

func normalizeAll(ids []string, details []*riot.MatchDetail) []riot.MatchRecord {
	records := make([]riot.MatchRecord, 0, len(ids))
	for i, detail := range details {
		if rec, ok := riot.Normalize(ids[i], detail); ok {
			records = append(records, rec)
		}
	}
	return records
}

// ResultLabel renders a verdict.
func ResultLabel(pass bool) string {
	if pass {
		return "PASS"
	}
	return "FAIL"
}
