package sqlite_test

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/Houeta/gold-flow/internal/repository"
	"github.com/Houeta/gold-flow/internal/repository/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ repository.Repository = (*sqlite.Repository)(nil)

func TestNewRepository(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("success", func(t *testing.T) {
		repo, err := sqlite.NewRepository(t.Context(), logger, filepath.Join(t.TempDir(), "gold.sqlite"))
		require.NoError(t, err)
		require.NotNil(t, repo)
		require.NoError(t, repo.Close())
	})

	t.Run("invalid path", func(t *testing.T) {
		_, err := sqlite.NewRepository(t.Context(), logger, "/invalid/path/to/db.sqlite")
		require.Error(t, err)
	})
}

func TestSchemaInitialization(t *testing.T) {
	repo := newTestDB(t)

	rows, err := repo.DB().QueryContext(t.Context(), "SELECT name FROM sqlite_master WHERE type='table'")
	require.NoError(t, err)
	defer rows.Close()

	found := make(map[string]bool)
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		found[name] = true
	}
	require.NoError(t, rows.Err())

	for _, table := range []string{"page_state", "buyback", "price_records", "subscriptions"} {
		assert.True(t, found[table], "table %s is missing", table)
	}
}

func TestMigrationIsIdempotent(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	path := filepath.Join(t.TempDir(), "gold.sqlite")

	first, err := sqlite.NewRepository(t.Context(), logger, path)
	require.NoError(t, err)
	require.NoError(t, first.SubscribeChat(t.Context(), 42))
	require.NoError(t, first.Close())

	second, err := sqlite.NewRepository(t.Context(), logger, path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = second.Close() })

	chats, err := second.GetSubscribedChats(t.Context())
	require.NoError(t, err)
	assert.Equal(t, []int64{42}, chats)
}
