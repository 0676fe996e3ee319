// Command xrbridge runs the AR device demo against a simulated or recorded
// tracking bridge, in a window or headless.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"golang.org/x/sync/errgroup"

	"xrbridge/app"
	"xrbridge/hal"
	"xrbridge/internal/buildinfo"
	"xrbridge/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	flag.BoolVar(&cfg.Headless, "headless", cfg.Headless, "Run without a window.")
	flag.IntVar(&cfg.Hz, "hz", cfg.Hz, "Tick rate.")
	flag.Uint64Var(&cfg.Ticks, "ticks", cfg.Ticks, "Stop after N ticks in headless mode (0 = run forever).")
	flag.StringVar(&cfg.TracePath, "trace", cfg.TracePath, "Replay a recorded pose trace instead of the simulated orbit.")
	flag.StringVar(&cfg.Mode, "mode", cfg.Mode, "Session mode to request.")
	flag.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug|info|warn|error.")
	flag.Parse()

	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	level, _ := cfg.Level()
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("exit", "err", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	a, err := app.New(cfg, log)
	if err != nil {
		return err
	}
	defer a.Device().Close()
	log.Info("starting", buildinfo.Attr(), "headless", cfg.Headless, "hz", cfg.Hz)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.Run(gctx)
	})

	// ebiten needs the main goroutine, so the runner stays here and the
	// session loop stops when it returns.
	var runErr error
	if cfg.Headless {
		runErr = hal.RunHeadless(gctx, a, hal.HeadlessConfig{Hz: cfg.Hz, Ticks: cfg.Ticks})
	} else {
		runErr = hal.RunWindow(gctx, a, hal.WindowConfig{Width: cfg.Width, Height: cfg.Height, Hz: cfg.Hz})
	}
	cancel()
	err = errors.Join(ignoreCanceled(runErr), ignoreCanceled(g.Wait()))
	log.Info("stopped", "frames", a.Frames())
	return err
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
