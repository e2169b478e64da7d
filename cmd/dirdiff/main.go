// Package main is the dirdiff CLI entry point.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/hyperjump/dirdiff/internal/cli"
	"github.com/hyperjump/dirdiff/internal/config"
	"github.com/hyperjump/dirdiff/internal/pipeline"
	"github.com/hyperjump/dirdiff/internal/storage"
	"github.com/hyperjump/dirdiff/pkg/utils"
	"go.uber.org/zap"
)

var version = "dev"

const (
	exitOK    = 0
	exitFatal = 1
	exitUsage = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	printer := cli.NewPrinter(stdout, stderr)

	// A bad environment must not get in the way of --help or --version, so its
	// error is reported only once the flags say a run was requested.
	cfg, envErr := config.Load()
	if envErr != nil {
		cfg = &config.Config{}
		config.ApplyDefaults(cfg)
	}

	fs := flag.NewFlagSet("dirdiff", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Usage = func() {}
	cfg.RegisterFlags(fs)
	showVersion := fs.Bool("version", false, "print the version and exit")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			printUsage(fs, stdout)
			return exitOK
		}
		printer.Errorf("%v", err)
		printUsage(fs, stderr)
		return exitUsage
	}
	if *showVersion {
		fmt.Fprintf(stdout, "dirdiff version %s\n", version)
		return exitOK
	}
	if fs.NArg() != 3 {
		printer.Errorf("invalid number of arguments")
		fmt.Fprintln(stderr, cli.Usage)
		return exitUsage
	}
	if envErr != nil {
		printer.Errorf("%v", envErr)
		return exitFatal
	}
	cfg.SetDirs(fs.Arg(0), fs.Arg(1), fs.Arg(2))

	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		printer.Errorf("failed to create logger: %v", err)
		return exitFatal
	}
	defer func() { _ = logger.Sync() }()
	logger.Debug("config loaded",
		zap.String("reference", cfg.ReferenceDir),
		zap.String("source", cfg.SourceDir),
		zap.String("output", cfg.OutputDir),
		zap.String("algorithm", cfg.Algorithm),
		zap.Int("workers", cfg.Workers),
		zap.Bool("dry_run", cfg.DryRun),
	)

	opts := []pipeline.PipelineOption{}
	if cfg.Debug {
		opts = append(opts, pipeline.WithLogger(logger))
	}
	if cfg.LedgerPath != "" {
		// Validate first so a bad directory is reported before a ledger file is created.
		if err := cfg.Validate(); err != nil {
			printer.Errorf("%v", err)
			return exitFatal
		}
		store, err := storage.NewSQLiteStorage(cfg.LedgerPath)
		if err != nil {
			printer.Errorf("failed to open ledger: %v", err)
			return exitFatal
		}
		defer store.Close()
		opts = append(opts, pipeline.WithStorage(store))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if _, err := pipeline.New(cfg, printer, opts...).Run(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			printer.Errorf("interrupted")
		} else {
			printer.Errorf("%v", err)
		}
		return exitFatal
	}
	return exitOK
}

func printUsage(fs *flag.FlagSet, w io.Writer) {
	fs.SetOutput(w)
	cli.PrintUsage(w, fs.PrintDefaults)
	fs.SetOutput(io.Discard)
}
