package checker_test

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Houeta/gold-flow/internal/differ"
	"github.com/Houeta/gold-flow/internal/extractor"
	"github.com/Houeta/gold-flow/internal/models"
	"github.com/Houeta/gold-flow/internal/notifier"
	"github.com/Houeta/gold-flow/internal/repository"
	"github.com/Houeta/gold-flow/internal/services/checker"
	"github.com/Houeta/gold-flow/test/mocks"
	"github.com/sourcegraph/conc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const newHTML = `<html><body><table>
<tr><td>1000 gram</td><td>Rp 3.050.000.000</td></tr>
<tr><td>1 gram</td><td>Rp 3.019.000</td></tr>
</table></body></html>`

var checkedAt = time.Date(2026, time.January, 28, 5, 30, 0, 0, time.UTC)

func hashOf(s string) string {
	return fmt.Sprintf("%x", sha256.Sum256([]byte(s)))
}

func baseline() *models.State {
	return &models.State{
		PageHash: "d7531c3b8364299905267349982070a9b5894b9ee25b8798158a1f87912f2c83",
		Snapshot: &models.Snapshot{
			SourceID:   "harga-emas.org",
			CapturedAt: checkedAt.Add(-time.Hour),
			Buyback:    &models.BuybackRecord{Label: "Buyback per gram", SellPrice: 2_850_000},
			Records: []models.PriceRecord{
				{Weight: 1000, Label: "Antam 1000g", SellPrice: 3_000_000_000, OriginStrategy: models.OriginTable},
				{Weight: 1, Label: "Antam 1g", SellPrice: 3_019_000, OriginStrategy: models.OriginTable},
			},
		},
	}
}

func stateWith(hash string) any {
	return mock.MatchedBy(func(s *models.State) bool {
		return s.PageHash == hash && s.Snapshot != nil && len(s.Snapshot.Records) == 2
	})
}

func TestChecker_CheckForUpdates(t *testing.T) {
	ctx := t.Context()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	pipeline := extractor.NewPipeline("harga-emas.org", "https://harga-emas.org", extractor.DefaultValidator())

	testCases := []struct {
		name        string
		opts        checker.Options
		setupMocks  func(mFetcher *mocks.HTMLFetcher, mRepo *mocks.StateRepository, mNotifier *mocks.Notifier)
		check       func(t *testing.T, report *checker.Report)
		expectError error
	}{
		{
			name: "Success: price change is notified and stored",
			setupMocks: func(mFetcher *mocks.HTMLFetcher, mRepo *mocks.StateRepository, mNotifier *mocks.Notifier) {
				mFetcher.On("FetchHTML", ctx).Return([]byte(newHTML), nil).Once()
				mRepo.On("GetState", ctx).Return(baseline(), nil).Once()
				mNotifier.On("Notify", ctx, mock.MatchedBy(func(p *notifier.Payload) bool {
					return p.HasChanged && p.ChangeCount == 1 && p.Source == "harga-emas.org"
				})).Return(nil).Once()
				mRepo.On("UpdateState", ctx, stateWith(hashOf(newHTML))).Return(nil).Once()
			},
			check: func(t *testing.T, report *checker.Report) {
				require.Equal(t, 1, report.Comparison.ChangeCount)
				change := report.Comparison.Changes[0]
				assert.Equal(t, models.ChangePrice, change.Kind)
				assert.Equal(t, int64(50_000_000), *change.Difference)
				assert.True(t, report.Notified)
				assert.Equal(t, checkedAt, report.Snapshot.CapturedAt)
				require.NotNil(t, report.Payload)
			},
		},
		{
			name: "No change: the page hash has not changed",
			setupMocks: func(mFetcher *mocks.HTMLFetcher, mRepo *mocks.StateRepository, _ *mocks.Notifier) {
				mFetcher.On("FetchHTML", ctx).Return([]byte(newHTML), nil).Once()
				state := baseline()
				state.PageHash = hashOf(newHTML)
				mRepo.On("GetState", ctx).Return(state, nil).Once()
			},
			check: func(t *testing.T, report *checker.Report) {
				assert.True(t, report.PageUnchanged)
				assert.False(t, report.Comparison.HasChanged)
				assert.Empty(t, report.Comparison.Changes)
				assert.Nil(t, report.Payload)
			},
		},
		{
			name: "No change: page differs but prices are equal",
			setupMocks: func(mFetcher *mocks.HTMLFetcher, mRepo *mocks.StateRepository, _ *mocks.Notifier) {
				mFetcher.On("FetchHTML", ctx).Return([]byte(newHTML), nil).Once()
				state := baseline()
				state.Snapshot.Records[0].SellPrice = 3_050_000_000
				mRepo.On("GetState", ctx).Return(state, nil).Once()
				mRepo.On("UpdateState", ctx, stateWith(hashOf(newHTML))).Return(nil).Once()
			},
			check: func(t *testing.T, report *checker.Report) {
				assert.False(t, report.PageUnchanged)
				assert.False(t, report.Comparison.HasChanged)
				assert.False(t, report.Notified)
			},
		},
		{
			name: "First launch: monitor activation is notified",
			setupMocks: func(mFetcher *mocks.HTMLFetcher, mRepo *mocks.StateRepository, mNotifier *mocks.Notifier) {
				mFetcher.On("FetchHTML", ctx).Return([]byte(newHTML), nil).Once()
				mRepo.On("GetState", ctx).Return(nil, repository.ErrStateNotFound).Once()
				mNotifier.On("Notify", ctx, mock.MatchedBy(func(p *notifier.Payload) bool {
					return p.IsFirstRun && len(p.CurrentPrices) == 2
				})).Return(nil).Once()
				mRepo.On("UpdateState", ctx, stateWith(hashOf(newHTML))).Return(nil).Once()
			},
			check: func(t *testing.T, report *checker.Report) {
				assert.True(t, report.Comparison.IsFirstRun)
				assert.True(t, report.Notified)
				assert.Len(t, report.Snapshot.Records, 2)
			},
		},
		{
			name: "Dry run: nothing sent, baseline still stored",
			opts: checker.Options{DryRun: true},
			setupMocks: func(mFetcher *mocks.HTMLFetcher, mRepo *mocks.StateRepository, _ *mocks.Notifier) {
				mFetcher.On("FetchHTML", ctx).Return([]byte(newHTML), nil).Once()
				mRepo.On("GetState", ctx).Return(nil, repository.ErrStateNotFound).Once()
				mRepo.On("UpdateState", ctx, stateWith(hashOf(newHTML))).Return(nil).Once()
			},
			check: func(t *testing.T, report *checker.Report) {
				assert.False(t, report.Notified)
				require.NotNil(t, report.Payload)
			},
		},
		{
			name: "Delivery failure does not block the baseline",
			setupMocks: func(mFetcher *mocks.HTMLFetcher, mRepo *mocks.StateRepository, mNotifier *mocks.Notifier) {
				mFetcher.On("FetchHTML", ctx).Return([]byte(newHTML), nil).Once()
				mRepo.On("GetState", ctx).Return(baseline(), nil).Once()
				mNotifier.On("Notify", ctx, mock.Anything).Return(errors.New("receiver down")).Once()
				mRepo.On("UpdateState", ctx, mock.Anything).Return(nil).Once()
			},
			check: func(t *testing.T, report *checker.Report) {
				assert.False(t, report.Notified)
			},
		},
		{
			name: "Error: nothing could be extracted",
			setupMocks: func(mFetcher *mocks.HTMLFetcher, mRepo *mocks.StateRepository, _ *mocks.Notifier) {
				mFetcher.On("FetchHTML", ctx).Return([]byte(`<html><body>maintenance</body></html>`), nil).Once()
				mRepo.On("GetState", ctx).Return(baseline(), nil).Once()
			},
			expectError: extractor.ErrExtractionExhausted,
		},
		{
			name: "Error: stored baseline is malformed",
			setupMocks: func(mFetcher *mocks.HTMLFetcher, mRepo *mocks.StateRepository, _ *mocks.Notifier) {
				mFetcher.On("FetchHTML", ctx).Return([]byte(newHTML), nil).Once()
				state := baseline()
				state.Snapshot.SourceID = ""
				mRepo.On("GetState", ctx).Return(state, nil).Once()
			},
			expectError: differ.ErrComparisonImpossible,
		},
		{
			name: "Error: fetcher cannot retrieve page",
			setupMocks: func(mFetcher *mocks.HTMLFetcher, _ *mocks.StateRepository, _ *mocks.Notifier) {
				mFetcher.On("FetchHTML", ctx).Return(nil, assert.AnError).Once()
			},
			expectError: assert.AnError,
		},
		{
			name: "Error: repository cannot get state",
			setupMocks: func(mFetcher *mocks.HTMLFetcher, mRepo *mocks.StateRepository, _ *mocks.Notifier) {
				mFetcher.On("FetchHTML", ctx).Return([]byte(newHTML), nil).Once()
				mRepo.On("GetState", ctx).Return(nil, assert.AnError).Once()
			},
			expectError: assert.AnError,
		},
		{
			name: "Error: repository cannot update state",
			setupMocks: func(mFetcher *mocks.HTMLFetcher, mRepo *mocks.StateRepository, mNotifier *mocks.Notifier) {
				mFetcher.On("FetchHTML", ctx).Return([]byte(newHTML), nil).Once()
				mRepo.On("GetState", ctx).Return(baseline(), nil).Once()
				mNotifier.On("Notify", ctx, mock.Anything).Return(nil).Once()
				mRepo.On("UpdateState", ctx, mock.Anything).Return(assert.AnError).Once()
			},
			expectError: assert.AnError,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mockFetcher := mocks.NewHTMLFetcher(t)
			mockRepo := mocks.NewStateRepository(t)
			mockNotifier := mocks.NewNotifier(t)
			tc.setupMocks(mockFetcher, mockRepo, mockNotifier)

			updateChecker := checker.NewChecker(logger, mockFetcher, pipeline, mockRepo, mockNotifier,
				checker.WithClock(func() time.Time { return checkedAt }))

			report, err := updateChecker.CheckForUpdates(ctx, tc.opts)

			if tc.expectError != nil {
				require.ErrorIs(t, err, tc.expectError)
				assert.Nil(t, report)
				return
			}

			require.NoError(t, err)
			tc.check(t, report)
		})
	}
}

func TestChecker_WithoutNotifier(t *testing.T) {
	ctx := t.Context()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	pipeline := extractor.NewPipeline("harga-emas.org", "", extractor.DefaultValidator())

	mockFetcher := mocks.NewHTMLFetcher(t)
	mockRepo := mocks.NewStateRepository(t)
	mockFetcher.On("FetchHTML", ctx).Return([]byte(newHTML), nil).Once()
	mockRepo.On("GetState", ctx).Return(nil, repository.ErrStateNotFound).Once()
	mockRepo.On("UpdateState", ctx, mock.Anything).Return(nil).Once()

	report, err := checker.NewChecker(logger, mockFetcher, pipeline, mockRepo, nil).CheckForUpdates(ctx, checker.Options{})

	require.NoError(t, err)
	assert.False(t, report.Notified)
}

func TestChecker_ConcurrentChecksNotifyOnce(t *testing.T) {
	ctx := t.Context()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	pipeline := extractor.NewPipeline("harga-emas.org", "", extractor.DefaultValidator())

	var (
		mu       sync.Mutex
		stored   *models.State
		notified atomic.Int32
	)

	mockFetcher := mocks.NewHTMLFetcher(t)
	mockRepo := mocks.NewStateRepository(t)
	mockNotifier := mocks.NewNotifier(t)

	mockFetcher.On("FetchHTML", ctx).
		Run(func(_ mock.Arguments) { time.Sleep(20 * time.Millisecond) }).
		Return([]byte(newHTML), nil).Twice()
	mockRepo.On("GetState", ctx).Return(func(context.Context) (*models.State, error) {
		mu.Lock()
		defer mu.Unlock()
		if stored == nil {
			return nil, repository.ErrStateNotFound
		}
		return stored, nil
	}).Twice()
	mockRepo.On("UpdateState", ctx, mock.Anything).Run(func(args mock.Arguments) {
		mu.Lock()
		defer mu.Unlock()
		stored = args.Get(1).(*models.State)
	}).Return(nil).Once()
	mockNotifier.On("Notify", ctx, mock.Anything).
		Run(func(_ mock.Arguments) { notified.Add(1) }).
		Return(nil)

	updateChecker := checker.NewChecker(logger, mockFetcher, pipeline, mockRepo, mockNotifier)

	reports := make([]*checker.Report, 2)
	errs := make([]error, 2)
	var wg conc.WaitGroup
	for i := range reports {
		wg.Go(func() {
			reports[i], errs[i] = updateChecker.CheckForUpdates(ctx, checker.Options{})
		})
	}
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
	assert.Equal(t, int32(1), notified.Load())
	assert.True(t, reports[0].PageUnchanged != reports[1].PageUnchanged)
}

func TestChecker_LatestSnapshot(t *testing.T) {
	ctx := t.Context()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("stored", func(t *testing.T) {
		mockRepo := mocks.NewStateRepository(t)
		state := baseline()
		mockRepo.On("GetState", ctx).Return(state, nil).Once()

		snap, err := checker.NewChecker(logger, nil, nil, mockRepo, nil).LatestSnapshot(ctx)

		require.NoError(t, err)
		assert.Equal(t, state.Snapshot, snap)
	})

	t.Run("missing", func(t *testing.T) {
		mockRepo := mocks.NewStateRepository(t)
		mockRepo.On("GetState", ctx).Return(nil, repository.ErrStateNotFound).Once()

		_, err := checker.NewChecker(logger, nil, nil, mockRepo, nil).LatestSnapshot(ctx)

		require.ErrorIs(t, err, repository.ErrStateNotFound)
	})
}
