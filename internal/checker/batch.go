package checker

import (
	"context"
	"errors"
	"strings"

	"streamcheck/internal/logging"
	"streamcheck/internal/participants"
	"streamcheck/internal/riot"
	"streamcheck/internal/services"
	"streamcheck/internal/window"
)

// Outcome is the per-contestant result of a batch run. Exactly one of Report
// or SkipReason is meaningful.
type Outcome struct {
	Participant participants.Participant
	Identity    riot.Identity
	Twitch      string
	Report      *Report
	SkipReason  string
}

// Skipped reports whether the contestant was excluded from analysis.
func (o Outcome) Skipped() bool {
	return o.Report == nil
}

// Summary counts batch outcomes.
type Summary struct {
	Processed int
	Passed    int
	Failed    int
	Skipped   int
}

// Sink receives each outcome as soon as it is known.
type Sink func(Outcome) error

// RunBatch analyzes contestants one after another inside the event window.
// Per-contestant failures become skips; cancellation, configuration errors
// and sink errors stop the run.
func (c *Checker) RunBatch(ctx context.Context, list []participants.Participant, aw window.AnalysisWindow, sink Sink) (Summary, error) {
	var summary Summary
	for _, p := range list {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		outcome, err := c.runOne(ctx, p, aw)
		if err != nil {
			return summary, err
		}
		if outcome.Skipped() {
			summary.Skipped++
		} else {
			summary.Processed++
			if outcome.Report.Result.Pass {
				summary.Passed++
			} else {
				summary.Failed++
			}
		}
		if sink != nil {
			if err := sink(outcome); err != nil {
				return summary, err
			}
		}
	}

	logging.WithContext(ctx, c.logger).Info("batch completed",
		logging.String(logging.FieldEventType, "batch_complete"),
		logging.Int("processed", summary.Processed),
		logging.Int("passed", summary.Passed),
		logging.Int("failed", summary.Failed),
		logging.Int("skipped", summary.Skipped),
	)
	return summary, nil
}

func (c *Checker) runOne(ctx context.Context, p participants.Participant, aw window.AnalysisWindow) (Outcome, error) {
	outcome := Outcome{Participant: p}
	name := strings.TrimSpace(p.Name)
	ctx = services.WithContestant(ctx, name)
	logger := logging.WithContext(ctx, c.logger)

	skip := func(reason string) (Outcome, error) {
		outcome.SkipReason = reason
		logger.Info("contestant skipped",
			logging.String(logging.FieldEventType, "contestant_skipped"),
			logging.String("reason", reason),
		)
		return outcome, nil
	}

	identity, err := riot.ParseRiotID(name)
	if err != nil {
		return skip(services.SkipReason(err))
	}
	outcome.Identity = identity

	login, ok := p.TwitchLogin()
	if !ok {
		return skip("no twitch link")
	}
	outcome.Twitch = login

	day, _ := p.EliminatedDay()
	w, ok := aw.Narrow(day)
	if !ok {
		return skip("eliminated before window")
	}

	report, err := c.Analyze(ctx, Target{Name: name, Identity: identity, Twitch: login}, w)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Outcome{}, ctxErr
		}
		if !services.IsSkippable(err) {
			return Outcome{}, err
		}
		logging.WarnWithContext(logger, "contestant analysis failed", "contestant_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "contestant recorded as skipped"),
			logging.String(logging.FieldErrorHint, hintFor(err)),
		)
		return skip(services.SkipReason(err))
	}
	outcome.Report = &report
	return outcome, nil
}

func hintFor(err error) string {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return "check the riot id and twitch link in the participant list"
	case errors.Is(err, services.ErrTransientNetwork):
		return "rerun later; cached lookups are reused"
	default:
		return "rerun with --verbose for request details"
	}
}
