package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Houeta/gold-flow/internal/bot"
	"github.com/Houeta/gold-flow/internal/config"
	"github.com/Houeta/gold-flow/internal/extractor"
	"github.com/Houeta/gold-flow/internal/fetcher"
	"github.com/Houeta/gold-flow/internal/notifier"
	"github.com/Houeta/gold-flow/internal/repository"
	"github.com/Houeta/gold-flow/internal/repository/redis"
	"github.com/Houeta/gold-flow/internal/repository/sqlite"
	"github.com/Houeta/gold-flow/internal/services/checker"
)

// app holds the wired components of one process.
type app struct {
	log     *slog.Logger
	repo    repository.Repository
	checker *checker.Checker
	bot     *bot.Bot // nil when no Telegram token is configured
}

func newApp(ctx context.Context, log *slog.Logger, cfg *config.Config) (*app, error) {
	repo, err := openRepository(ctx, log, cfg.Storage)
	if err != nil {
		return nil, err
	}

	htmlFetcher, err := fetcher.New(log, cfg.Fetch.Mode, cfg.URL, cfg.Fetch.Timeout)
	if err != nil {
		return nil, errors.Join(err, repo.Close())
	}

	var tgBot *bot.Bot
	if cfg.Tg.Token != "" {
		if tgBot, err = bot.NewBot(log, cfg.Tg.Token, cfg.Tg.Timeout, repo, repo); err != nil {
			return nil, errors.Join(err, repo.Close())
		}
	}

	pipeline := extractor.NewPipeline(cfg.SourceID, cfg.URL, cfg.Validator)
	chk := checker.NewChecker(log, htmlFetcher, pipeline, repo, buildNotifier(log, cfg.Webhook, tgBot))

	return &app{log: log, repo: repo, checker: chk, bot: tgBot}, nil
}

// close releases the storage connection.
func (a *app) close() {
	if err := a.repo.Close(); err != nil {
		a.log.Error("Failed to close repository", "error", err)
	}
}

func openRepository(ctx context.Context, log *slog.Logger, st config.Storage) (repository.Repository, error) {
	switch st.Driver {
	case config.DriverRedis:
		repo, err := redis.NewRepository(ctx, log, st.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("failed to init redis storage: %w", err)
		}
		return repo, nil
	case config.DriverSQLite:
		if dir := filepath.Dir(st.Path); dir != "" {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return nil, fmt.Errorf("failed to create storage directory: %w", err)
			}
		}
		repo, err := sqlite.NewRepository(ctx, log, st.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to init sqlite storage: %w", err)
		}
		return repo, nil
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownDriver, st.Driver)
	}
}

// buildNotifier combines the configured destinations. It returns nil when there are none.
func buildNotifier(log *slog.Logger, wh config.Webhook, tgBot *bot.Bot) notifier.Notifier {
	var targets notifier.Multi
	if wh.URL != "" {
		targets = append(targets, notifier.NewWebhook(log, wh.URL, wh.Timeout))
	}
	if tgBot != nil {
		targets = append(targets, tgBot)
	}

	switch len(targets) {
	case 0:
		return nil
	case 1:
		return targets[0]
	default:
		return targets
	}
}
