package notifier_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Houeta/gold-flow/internal/models"
	"github.com/Houeta/gold-flow/internal/notifier"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var logger = slog.New(slog.NewTextHandler(io.Discard, nil))

func testPayload() *notifier.Payload {
	return notifier.FormatPayload(testSnapshot(), &models.ComparisonResult{HasChanged: true, IsFirstRun: true}, now)
}

func TestWebhook_Notify(t *testing.T) {
	t.Run("posts JSON", func(t *testing.T) {
		var received notifier.Payload
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "GoldPriceMonitor/1.0", r.Header.Get("User-Agent"))
			assert.Contains(t, r.Header.Get("Content-Type"), "application/json")
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&received))
			w.WriteHeader(http.StatusOK)
		}))
		t.Cleanup(srv.Close)

		payload := testPayload()
		err := notifier.NewWebhook(logger, srv.URL, 5*time.Second).Notify(t.Context(), payload)

		require.NoError(t, err)
		assert.Equal(t, payload.ID, received.ID)
		assert.Equal(t, notifier.EventPriceUpdate, received.Event)
		assert.Equal(t, payload.CurrentPrices, received.CurrentPrices)
	})

	t.Run("receiver error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		t.Cleanup(srv.Close)

		err := notifier.NewWebhook(logger, srv.URL, 5*time.Second).Notify(t.Context(), testPayload())

		require.ErrorIs(t, err, notifier.ErrWebhookStatus)
		assert.Contains(t, err.Error(), "[500]")
	})

	t.Run("no url", func(t *testing.T) {
		err := notifier.NewWebhook(logger, "", time.Second).Notify(t.Context(), testPayload())

		require.ErrorIs(t, err, notifier.ErrNoWebhookURL)
	})
}

type notifyFunc func(ctx context.Context, payload *notifier.Payload) error

func (f notifyFunc) Notify(ctx context.Context, payload *notifier.Payload) error { return f(ctx, payload) }

func TestMulti_Notify(t *testing.T) {
	var calls atomic.Int32
	ok := notifyFunc(func(context.Context, *notifier.Payload) error {
		calls.Add(1)
		return nil
	})
	errFirst := errors.New("first down")
	errSecond := errors.New("second down")

	t.Run("all delivered", func(t *testing.T) {
		calls.Store(0)

		require.NoError(t, notifier.Multi{ok, ok, ok}.Notify(t.Context(), testPayload()))
		assert.Equal(t, int32(3), calls.Load())
	})

	t.Run("errors joined, others still delivered", func(t *testing.T) {
		calls.Store(0)
		failing := func(err error) notifier.Notifier {
			return notifyFunc(func(context.Context, *notifier.Payload) error { return err })
		}

		err := notifier.Multi{failing(errFirst), ok, failing(errSecond)}.Notify(t.Context(), testPayload())

		require.ErrorIs(t, err, errFirst)
		require.ErrorIs(t, err, errSecond)
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("empty", func(t *testing.T) {
		require.NoError(t, notifier.Multi{}.Notify(t.Context(), testPayload()))
	})
}
