package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"pagewatch/internal/app"
)

func main() {
	var cfgPath string
	var schedule string
	flag.StringVar(&cfgPath, "config", "./config.yaml", "path to config file (yaml or json)")
	flag.StringVar(&schedule, "schedule", "", "cron spec for daemon mode (overrides config; empty = run once)")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a, err := app.New(cfgPath, schedule)
	if err != nil {
		// The only non-zero exit: configuration problems before any
		// target is processed.
		fmt.Fprintln(os.Stderr, "fatal:", err)
		os.Exit(1)
	}
	defer a.Close()

	if a.Schedule() == "" {
		// One-shot mode always reports success to the invoker; per-target
		// failures surface via notifications and logs only.
		a.RunOnce(ctx)
		return
	}

	if err := a.RunScheduled(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "fatal:", err)
		os.Exit(1)
	}
}
