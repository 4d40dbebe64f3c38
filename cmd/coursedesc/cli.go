package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	coursedesc "github.com/cartabinaria/course-description-merged"
)

// Sentinel errors for CLI operations.
var (
	ErrUnknownCommand = errors.New("unknown command")
)

// run dispatches the requested command.
func run(flags *cliFlags, args []string) error {
	command := "run"
	if len(args) > 0 {
		command = args[0]
	}

	switch command {
	case "version":
		fmt.Println(Version)
		return nil
	case "help":
		printUsage(os.Stdout)
		return nil
	case "run", "scrape", "convert", "publish":
		// handled below
	default:
		printUsage(os.Stderr)
		return fmt.Errorf("%w: %q", ErrUnknownCommand, command)
	}

	cfg, err := buildConfig(flags)
	if err != nil {
		return err
	}

	svc, err := coursedesc.NewService(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = svc.Close() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch command {
	case "run":
		err = svc.Run(ctx)
	case "scrape":
		err = svc.Scrape(ctx)
	case "convert":
		err = svc.Convert(ctx)
	case "publish":
		err = svc.Publish(ctx)
	}
	if err != nil {
		return err
	}

	fmt.Printf("%s: done\n", command)
	return nil
}

// buildConfig loads the configuration and applies flag overrides.
// Flags take precedence over the config file, which takes precedence over
// the defaults.
func buildConfig(flags *cliFlags) (*coursedesc.Config, error) {
	var cfg *coursedesc.Config
	var err error

	if flags.config != "" {
		cfg, err = coursedesc.LoadConfig(flags.config)
		if err != nil {
			return nil, err
		}
	} else {
		cfg = coursedesc.DefaultConfig()
	}

	if flags.degrees != "" {
		cfg.Degrees = flags.degrees
	}
	if flags.workDir != "" {
		cfg.WorkDir = flags.workDir
	}
	if flags.workers > 0 {
		cfg.Convert.Workers = flags.workers
	}
	if flags.timeout != "" {
		cfg.Convert.Timeout = flags.timeout
	}
	if flags.htmlOnly {
		cfg.Convert.HTMLOnly = true
	}
	if flags.ref != "" {
		cfg.Publish.Ref = flags.ref
	}
	if flags.target != "" {
		cfg.Publish.TargetDir = flags.target
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setupLogger installs the default slog handler according to verbosity.
func setupLogger(flags *cliFlags) {
	level := slog.LevelInfo
	if flags.verbose {
		level = slog.LevelDebug
	}
	if flags.quiet {
		level = slog.LevelError
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))
}
