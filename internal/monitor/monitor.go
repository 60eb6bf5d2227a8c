// Package monitor drives one polling run: for each target, fetch the
// page, extract its signature, classify against the persisted one,
// persist, and notify. Targets are processed strictly sequentially; a
// failure on one target never stops the rest of the run.
package monitor

import (
	"context"
	"errors"
	"time"

	"pagewatch/internal/diff"
	"pagewatch/internal/extract"
	"pagewatch/internal/notify"
	"pagewatch/internal/state"
	logx "pagewatch/pkg/logx"
)

// Fetcher retrieves a page and reports the canonical post-redirect URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (body []byte, finalURL string, err error)
}

// Notifier pushes one text message to the notification channel.
type Notifier interface {
	Notify(ctx context.Context, text string) error
}

type Outcome string

const (
	OutcomeBootstrap Outcome = "bootstrap"
	OutcomeUnchanged Outcome = "unchanged"
	OutcomeChanged   Outcome = "changed"
	OutcomeFailed    Outcome = "failed"
)

// RunResult is the structured per-run tally. The process still exits
// zero after a started run; programmatic callers and tests read failures
// from here instead of the exit status.
type RunResult struct {
	Targets      int
	Bootstrapped int
	Unchanged    int
	Changed      int
	Failed       int
}

type Monitor struct {
	fetcher  Fetcher
	notifier Notifier
	store    *state.Store
	vocab    []string
	log      logx.Logger

	now func() time.Time
}

func New(fetcher Fetcher, notifier Notifier, store *state.Store, vocab []string, log logx.Logger) *Monitor {
	if log.IsZero() {
		log = logx.Nop()
	}
	if len(vocab) == 0 {
		vocab = extract.DefaultVocabulary
	}
	return &Monitor{
		fetcher:  fetcher,
		notifier: notifier,
		store:    store,
		vocab:    vocab,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Run processes every target in order, then rebuilds the consolidated
// summary. It never returns an error: per-target failures are counted in
// the result and surfaced through notifications and logs, so an outside
// scheduler's retry policy is unaffected by transient page errors.
func (m *Monitor) Run(ctx context.Context, targets []state.Target) RunResult {
	started := m.now()
	var res RunResult
	res.Targets = len(targets)

	for _, t := range targets {
		switch m.processTarget(ctx, t) {
		case OutcomeBootstrap:
			res.Bootstrapped++
		case OutcomeUnchanged:
			res.Unchanged++
		case OutcomeChanged:
			res.Changed++
		default:
			res.Failed++
		}
	}

	if err := m.store.WriteSummary(targets); err != nil {
		m.log.Error("summary rebuild failed", logx.Err(err))
	}

	m.log.Info("run complete",
		logx.Int("targets", res.Targets),
		logx.Int("changed", res.Changed),
		logx.Int("bootstrapped", res.Bootstrapped),
		logx.Int("unchanged", res.Unchanged),
		logx.Int("failed", res.Failed),
		logx.Duration("took", m.now().Sub(started)),
	)
	return res
}

func (m *Monitor) processTarget(ctx context.Context, t state.Target) Outcome {
	log := m.log.With(logx.String("slug", t.Slug))

	body, finalURL, err := m.fetcher.Fetch(ctx, t.URL)
	if err != nil {
		// Terminal for this target only. The previously persisted
		// signature stays untouched across the outage.
		log.Warn("fetch failed", logx.String("url", t.URL), logx.Err(err))
		m.notifyBestEffort(ctx, log, RenderFetchWarning(t, err))
		return OutcomeFailed
	}

	sig := extract.Extract(body, finalURL, m.vocab)
	sig.CapturedAt = m.now()

	old := m.store.Read(t)
	result := diff.Classify(old, sig)

	switch result.Kind {
	case diff.Bootstrap:
		if err := m.store.Write(t, sig); err != nil {
			log.Error("persist failed", logx.Err(err))
			return OutcomeFailed
		}
		log.Info("target bootstrapped", logx.Int("links", len(sig.Links)))
		m.notifyBestEffort(ctx, log, RenderActivation(t, sig))
		return OutcomeBootstrap

	case diff.Unchanged:
		log.Debug("no change")
		return OutcomeUnchanged

	default:
		// Notify first, then persist unconditionally: a delivery failure
		// must not leave the target re-alerting forever, at the accepted
		// cost that a permanently failing transport can lose an alert.
		text := RenderChange(t, result.Report)
		if err := m.notifier.Notify(ctx, text); err != nil {
			var derr *notify.DeliveryError
			if errors.As(err, &derr) {
				log.Error("change notification undelivered", logx.Err(derr.Err))
			} else {
				log.Error("change notification undelivered", logx.Err(err))
			}
		}
		if err := m.store.Write(t, sig); err != nil {
			log.Error("persist failed", logx.Err(err))
			return OutcomeFailed
		}
		log.Info("change detected",
			logx.Int("added_links", len(result.Report.AddedLinks)),
			logx.Int("removed_links", len(result.Report.RemovedLinks)),
			logx.Int("new_keywords", len(result.Report.NewKeywords)),
			logx.Bool("hash_only", result.Report.HashOnly),
		)
		return OutcomeChanged
	}
}

// notifyBestEffort sends informational messages whose own failure is
// only logged (activation acks, fetch warnings).
func (m *Monitor) notifyBestEffort(ctx context.Context, log logx.Logger, text string) {
	if err := m.notifier.Notify(ctx, text); err != nil {
		log.Warn("best-effort notification failed", logx.Err(err))
	}
}
