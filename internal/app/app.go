// Package app wires config, logging, fetcher, notifier, state store and
// monitor into a runnable application. It supports two modes: one-shot
// (an outside scheduler invokes the process per run) and a cron daemon
// that triggers runs in-process.
package app

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/robfig/cron/v3"

	"pagewatch/internal/config"
	"pagewatch/internal/fetch"
	"pagewatch/internal/monitor"
	"pagewatch/internal/notify"
	"pagewatch/internal/state"
	logx "pagewatch/pkg/logx"
)

type App struct {
	mgr       *config.Manager
	log       logx.Logger
	logCloser io.Closer

	schedule string

	// mu guards the component snapshot, which is rebuilt when the config
	// file changes in daemon mode. Runs are sequential, so a snapshot is
	// only swapped between runs.
	mu      sync.Mutex
	mon     *monitor.Monitor
	targets []state.Target
}

// New loads and validates the config, sets up logging, and builds the
// component graph. Any error here is a configuration error and fatal:
// nothing has been fetched or persisted yet.
func New(cfgPath, scheduleOverride string) (*App, error) {
	mgr := config.NewManager(cfgPath)
	cfg, err := mgr.Load()
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", cfgPath, err)
	}

	log, closer, err := logx.New(logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.ConsoleEnabled(),
		File: logx.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
	})
	if err != nil {
		return nil, err
	}
	mgr.SetLogger(log.With(logx.String("comp", "config")))

	schedule := scheduleOverride
	if schedule == "" {
		schedule = cfg.Schedule
	}
	if schedule != "" {
		if _, err := cron.ParseStandard(schedule); err != nil {
			_ = closer.Close()
			return nil, fmt.Errorf("schedule: invalid cron spec %q: %w", schedule, err)
		}
	}

	a := &App{mgr: mgr, log: log, logCloser: closer, schedule: schedule}
	if err := a.rebuild(cfg); err != nil {
		_ = closer.Close()
		return nil, err
	}
	return a, nil
}

// rebuild constructs the per-config component snapshot. The logger is
// deliberately excluded: log sinks only change on restart.
func (a *App) rebuild(cfg *config.Config) error {
	sender, err := notify.NewTelegram(notify.TelegramConfig{
		Token:    cfg.Telegram.Token,
		ChatID:   cfg.Telegram.ChatID,
		ThreadID: cfg.Telegram.ThreadID,
		Timeout:  cfg.NotifyTimeoutDuration(),
	})
	if err != nil {
		return fmt.Errorf("telegram: %w", err)
	}

	notifier := notify.NewService(sender, cfg.NotifyRatePerSec, a.log.With(logx.String("comp", "notify")))
	fetcher := fetch.NewClient(cfg.FetchTimeoutDuration())
	store := state.NewStore(cfg.StateDir, a.log.With(logx.String("comp", "state")))

	targets := make([]state.Target, 0, len(cfg.Targets))
	for _, u := range cfg.Targets {
		targets = append(targets, state.NewTarget(u))
	}

	a.mu.Lock()
	a.mon = monitor.New(fetcher, notifier, store, cfg.Keywords, a.log.With(logx.String("comp", "monitor")))
	a.targets = targets
	a.mu.Unlock()
	return nil
}

func (a *App) Schedule() string { return a.schedule }

// RunOnce executes a single polling run over the current targets.
func (a *App) RunOnce(ctx context.Context) monitor.RunResult {
	a.mu.Lock()
	mon := a.mon
	targets := a.targets
	a.mu.Unlock()
	return mon.Run(ctx, targets)
}

// RunScheduled blocks until ctx is cancelled, triggering runs on the cron
// schedule. Jobs are dispatched with SkipIfStillRunning, so runs never
// overlap: the single-run exclusivity the state store assumes is
// guaranteed structurally here. The config file is watched so target and
// keyword edits apply between runs.
func (a *App) RunScheduled(ctx context.Context) error {
	clog := cronLogger{log: a.log.With(logx.String("comp", "cron"))}
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(clog)))

	if _, err := c.AddFunc(a.schedule, func() {
		a.RunOnce(ctx)
	}); err != nil {
		return fmt.Errorf("schedule %q: %w", a.schedule, err)
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := a.mgr.Watch(ctx, func(cfg *config.Config) {
			if err := a.rebuild(cfg); err != nil {
				a.log.Warn("config change not applied", logx.Err(err))
			}
		}); err != nil {
			a.log.Warn("config watch stopped", logx.Err(err))
		}
	}()

	a.log.Info("scheduler started", logx.String("spec", a.schedule))
	c.Start()
	<-ctx.Done()

	// Let an in-flight run finish before returning.
	<-c.Stop().Done()
	wg.Wait()
	a.log.Info("scheduler stopped")
	return nil
}

func (a *App) Close() error {
	if a.logCloser != nil {
		return a.logCloser.Close()
	}
	return nil
}

// cronLogger adapts logx to cron's logging interface.
type cronLogger struct{ log logx.Logger }

func (c cronLogger) Info(msg string, kv ...interface{}) {
	c.log.Debug(msg, kvFields(kv)...)
}

func (c cronLogger) Error(err error, msg string, kv ...interface{}) {
	c.log.Error(msg, append(kvFields(kv), logx.Err(err))...)
}

func kvFields(kv []interface{}) []logx.Field {
	fields := make([]logx.Field, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		k := fmt.Sprint(kv[i])
		fields = append(fields, logx.Any(k, kv[i+1]))
	}
	return fields
}
