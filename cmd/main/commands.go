package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Houeta/gold-flow/internal/api"
	"github.com/Houeta/gold-flow/internal/config"
	"github.com/Houeta/gold-flow/internal/services/checker"
	"github.com/sourcegraph/conc"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// Output formats of the check command.
const (
	formatJSON = "json"
	formatYAML = "yaml"
)

var errUnknownFormat = errors.New("unknown output format: expected json or yaml")

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "goldflow",
		Short: "Gold price monitor",
		Long: `goldflow extracts gold prices from a web page, compares them with the
last captured snapshot and notifies subscribers about changes.

Configuration is read from GF_* environment variables, an optional .env
file and an optional YAML file named by GF_CONFIG.`,
		SilenceUsage: true,
	}

	root.AddCommand(newCheckCmd(), newWatchCmd())

	return root
}

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Run a single check and print the report",
		RunE:  runCheck,
	}

	cmd.Flags().Bool("dry-run", false, "skip notifications (the baseline is still stored)")
	cmd.Flags().StringP("format", "f", formatJSON, "output format: json or yaml")

	return cmd
}

func newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Check periodically, serve the HTTP API and run the Telegram bot",
		RunE:  runWatch,
	}

	cmd.Flags().Duration("interval", 0, "check interval (default GF_CHECK_INTERVAL)")

	return cmd
}

func runCheck(cmd *cobra.Command, _ []string) error {
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	format, _ := cmd.Flags().GetString("format")
	if format != formatJSON && format != formatYAML {
		return fmt.Errorf("%w: %q", errUnknownFormat, format)
	}

	cfg := config.MustLoad()
	// stdout carries the report.
	logger := setupLogger(cfg.Env, cmd.ErrOrStderr())
	ctx := cmd.Context()

	goldApp, err := newApp(ctx, logger, cfg)
	if err != nil {
		return err
	}
	defer goldApp.close()

	report, err := goldApp.checker.CheckForUpdates(ctx, checker.Options{DryRun: dryRun})
	if err != nil {
		return err
	}

	return writeReport(cmd.OutOrStdout(), format, report)
}

func writeReport(w io.Writer, format string, report *checker.Report) error {
	switch format {
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(report); err != nil {
			return fmt.Errorf("failed to encode report: %w", err)
		}
		return enc.Close()
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return fmt.Errorf("failed to encode report: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("%w: %q", errUnknownFormat, format)
	}
}

func runWatch(cmd *cobra.Command, _ []string) error {
	cfg := config.MustLoad()
	logger := setupLogger(cfg.Env, os.Stdout)

	interval, _ := cmd.Flags().GetDuration("interval")
	if interval <= 0 {
		interval = cfg.CheckInterval
	}

	// Create a context that will be canceled when an interrupt signal is received.
	// This allows for graceful shutdown.
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	goldApp, err := newApp(ctx, logger, cfg)
	if err != nil {
		return err
	}
	defer goldApp.close()

	var wg conc.WaitGroup

	if goldApp.bot != nil {
		// Start the bot in a goroutine to allow main to listen for signals.
		wg.Go(goldApp.bot.Start)
	}

	if cfg.HTTPAddr != "" {
		server := api.NewServer(logger, goldApp.checker, cfg.HTTPAddr)
		wg.Go(func() {
			if err := server.Run(ctx); err != nil {
				logger.ErrorContext(ctx, "HTTP API failed", "error", err)
			}
		})
	}

	logger.InfoContext(ctx, "Application started. Press Ctrl+C to stop.", "interval", interval)

	watch(ctx, logger, goldApp.checker, interval)

	logger.InfoContext(ctx, "Shutdown signal received. Stopping application...")

	// Stop the bot gracefully.
	if goldApp.bot != nil {
		goldApp.bot.Stop()
	}
	wg.Wait()

	logger.InfoContext(ctx, "Application stopped gracefully.")

	return nil
}

// watch runs a check immediately and then on every tick until ctx is done.
// A failed check is logged and the loop goes on.
func watch(ctx context.Context, log *slog.Logger, chk checker.Interface, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		report, err := chk.CheckForUpdates(ctx, checker.Options{})
		switch {
		case err != nil:
			log.ErrorContext(ctx, "Check failed", "error", err)
		case report.Comparison != nil:
			log.InfoContext(ctx, "Check finished",
				"changed", report.Comparison.HasChanged,
				"changes", report.Comparison.ChangeCount,
				"notified", report.Notified,
			)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
