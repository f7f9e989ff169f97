package checker

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Houeta/gold-flow/internal/differ"
	"github.com/Houeta/gold-flow/internal/extractor"
	"github.com/Houeta/gold-flow/internal/fetcher"
	"github.com/Houeta/gold-flow/internal/models"
	"github.com/Houeta/gold-flow/internal/notifier"
	"github.com/Houeta/gold-flow/internal/repository"
)

// Checker is an orchestrator that performs a full verification cycle.
type Checker struct {
	mu       sync.Mutex // serialises checks between fetch and baseline update
	log      *slog.Logger
	fetcher  fetcher.HTMLFetcher
	pipeline *extractor.Pipeline
	repo     repository.StateRepository
	notifier notifier.Notifier
	now      func() time.Time
}

// Options tune a single check.
type Options struct {
	// DryRun skips notification. The new baseline is still stored.
	DryRun bool
}

// Report is the outcome of one check.
type Report struct {
	Snapshot      *models.Snapshot         `json:"snapshot"                yaml:"snapshot"`
	Comparison    *models.ComparisonResult `json:"comparison"              yaml:"comparison"`
	Payload       *notifier.Payload        `json:"payload,omitempty"       yaml:"payload,omitempty"`
	PageUnchanged bool                     `json:"pageUnchanged"           yaml:"pageUnchanged"`
	Notified      bool                     `json:"notified"                yaml:"notified"`
	Failures      []string                 `json:"strategyFailures,omitempty" yaml:"strategyFailures,omitempty"`
}

type Interface interface {
	// CheckForUpdates performs the full change checking algorithm.
	CheckForUpdates(ctx context.Context, opts Options) (*Report, error)
	// LatestSnapshot returns the stored baseline.
	LatestSnapshot(ctx context.Context) (*models.Snapshot, error)
}

// Option configures a Checker.
type Option func(*Checker)

// WithClock replaces the time source.
func WithClock(now func() time.Time) Option {
	return func(c *Checker) { c.now = now }
}

// NewChecker creates a new Checker instance. A nil notifier disables delivery.
func NewChecker(
	log *slog.Logger,
	fetcher fetcher.HTMLFetcher,
	pipeline *extractor.Pipeline,
	repo repository.StateRepository,
	notifier notifier.Notifier,
	opts ...Option,
) *Checker {
	c := &Checker{
		log:      log,
		fetcher:  fetcher,
		pipeline: pipeline,
		repo:     repo,
		notifier: notifier,
		now:      time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// CheckForUpdates performs the full change checking algorithm.
// Concurrent calls run one at a time, so a change is announced once.
func (c *Checker) CheckForUpdates(ctx context.Context, opts Options) (*Report, error) {
	const opn = "checker.CheckForUpdates"
	log := c.log.With("op", opn)

	c.mu.Lock()
	defer c.mu.Unlock()

	// 1. Retrieving HTML and calculating a new hash
	log.InfoContext(ctx, "Fetching HTML page to check for updates")
	body, err := c.fetcher.FetchHTML(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to fetch page: %w", opn, err)
	}

	newPageHash := calculateHash(body)
	log.DebugContext(ctx, "Calculated new page hash", "hash", newPageHash)

	// 2. Getting the old state from the database
	oldState, err := c.repo.GetState(ctx)
	if err != nil && !errors.Is(err, repository.ErrStateNotFound) {
		return nil, fmt.Errorf("%s: failed to get old state: %w", opn, err)
	}

	var oldSnap *models.Snapshot
	if err == nil {
		oldSnap = oldState.Snapshot
	}

	// 3. Hash comparison
	if oldSnap != nil && oldState.PageHash == newPageHash {
		log.InfoContext(ctx, "Page hash has not changed. No updates.")
		return &Report{
			Snapshot:      oldSnap,
			Comparison:    &models.ComparisonResult{Changes: []models.ChangeRecord{}, Message: differ.MessageNoChange},
			PageUnchanged: true,
		}, nil
	}
	log.InfoContext(ctx, "Page hash differs or first run. Starting full analysis...")

	// 4. Extraction
	res, err := c.pipeline.Run(string(body), c.now())
	report := &Report{}
	if res != nil {
		for _, f := range res.Failures {
			log.WarnContext(ctx, "Extraction strategy failed", "error", f)
			report.Failures = append(report.Failures, f.Error())
		}
	}
	if err != nil {
		return nil, fmt.Errorf("%s: failed to extract prices: %w", opn, err)
	}
	report.Snapshot = res.Snapshot
	log.InfoContext(ctx, "Successfully extracted prices", "count", len(res.Snapshot.Records))

	// 5. Comparison with the baseline
	report.Comparison, err = differ.Compare(res.Snapshot, oldSnap)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", opn, err)
	}
	log.InfoContext(ctx, "Change detection complete",
		"first_run", report.Comparison.IsFirstRun,
		"changes", report.Comparison.ChangeCount,
	)

	// 6. Notification
	if report.Comparison.HasChanged {
		report.Payload = notifier.FormatPayload(res.Snapshot, report.Comparison, c.now())
		report.Notified = c.notify(ctx, log, report.Payload, opts)
	}

	// 7. Updating the database and returning the result
	newState := &models.State{PageHash: newPageHash, Snapshot: res.Snapshot}
	if err = c.repo.UpdateState(ctx, newState); err != nil {
		return nil, fmt.Errorf("%s: failed to update state in repository: %w", opn, err)
	}
	log.InfoContext(ctx, "Successfully updated state in repository")

	return report, nil
}

// notify delivers the payload and reports whether it went out.
// Delivery failures are logged only.
func (c *Checker) notify(ctx context.Context, log *slog.Logger, payload *notifier.Payload, opts Options) bool {
	switch {
	case opts.DryRun:
		log.InfoContext(ctx, "Dry run: notification skipped", "payload_id", payload.ID)
		return false
	case c.notifier == nil:
		log.InfoContext(ctx, "No notifier configured")
		return false
	}

	if err := c.notifier.Notify(ctx, payload); err != nil {
		if errors.Is(err, notifier.ErrNoWebhookURL) {
			log.WarnContext(ctx, "Webhook URL is not set, notification skipped")
		} else {
			log.ErrorContext(ctx, "Failed to deliver notification", "error", err)
		}
		return false
	}

	return true
}

// LatestSnapshot returns the stored baseline or repository.ErrStateNotFound.
func (c *Checker) LatestSnapshot(ctx context.Context) (*models.Snapshot, error) {
	state, err := c.repo.GetState(ctx)
	if err != nil {
		return nil, fmt.Errorf("checker.LatestSnapshot: %w", err)
	}

	return state.Snapshot, nil
}

// calculateHash calculates the SHA256 hash for a slice of bytes.
func calculateHash(data []byte) string {
	return fmt.Sprintf("%x", sha256.Sum256(data))
}
