package snapshot_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/searchkit/pkg/docstore"
	"github.com/dmitrymomot/searchkit/pkg/opensearch"
	"github.com/dmitrymomot/searchkit/pkg/opensearchtest"
	"github.com/dmitrymomot/searchkit/pkg/snapshot"
)

type article struct {
	ID    string `json:"id,omitempty"`
	Title string `json:"title"`
}

func newRepo(t *testing.T, srv *opensearchtest.Server) *docstore.Repository[article] {
	t.Helper()
	store, err := docstore.New(context.Background(), opensearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return docstore.NewRepository[article](store)
}

type failingSink struct{}

func (failingSink) Put(context.Context, string, io.Reader, int64) (string, error) {
	return "", errors.New("disk full")
}

func TestExportToFile(t *testing.T) {
	ctx := context.Background()

	t.Run("writes one document per line with identifiers", func(t *testing.T) {
		srv := opensearchtest.New(t)
		for i := range 3 {
			srv.Put("articles", fmt.Sprintf("a-%d", i), map[string]any{"title": fmt.Sprintf("<title %d>", i)})
		}
		path := filepath.Join(t.TempDir(), "nested", "articles.ndjson")

		res, err := snapshot.Export(ctx, newRepo(t, srv), "articles", snapshot.NewFileSink(path))
		require.NoError(t, err)
		assert.Equal(t, "articles", res.Index)
		assert.Equal(t, 3, res.Count)
		assert.Equal(t, path, res.Location)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		lines := strings.Split(strings.TrimSpace(string(data)), "\n")
		require.Len(t, lines, 3)

		var first article
		require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
		assert.Equal(t, article{ID: "a-0", Title: "<title 0>"}, first)
		assert.Contains(t, lines[0], "<title 0>")
	})

	t.Run("empty index gives empty snapshot", func(t *testing.T) {
		srv := opensearchtest.New(t)
		srv.CreateIndex("articles")
		path := filepath.Join(t.TempDir(), "empty.ndjson")

		res, err := snapshot.Export(ctx, newRepo(t, srv), "articles", snapshot.NewFileSink(path))
		require.NoError(t, err)
		assert.Zero(t, res.Count)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Empty(t, data)
	})

	t.Run("missing index", func(t *testing.T) {
		srv := opensearchtest.New(t)
		path := filepath.Join(t.TempDir(), "missing.ndjson")

		_, err := snapshot.Export(ctx, newRepo(t, srv), "articles", snapshot.NewFileSink(path))
		assert.ErrorIs(t, err, snapshot.ErrExportFailed)
		assert.ErrorIs(t, err, docstore.ErrQueryFailed)
		assert.NoFileExists(t, path)
	})

	t.Run("sink failure", func(t *testing.T) {
		srv := opensearchtest.New(t)
		srv.Put("articles", "a-1", map[string]any{"title": "one"})

		_, err := snapshot.Export(ctx, newRepo(t, srv), "articles", failingSink{})
		assert.ErrorIs(t, err, snapshot.ErrExportFailed)
		assert.ErrorContains(t, err, "disk full")
	})
}

func TestFileSink(t *testing.T) {
	t.Run("replaces previous content", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out.ndjson")
		require.NoError(t, os.WriteFile(path, []byte("old content that is longer\n"), 0o600))

		loc, err := snapshot.NewFileSink(path).Put(context.Background(), "idx", strings.NewReader("{}\n"), 3)
		require.NoError(t, err)
		assert.Equal(t, path, loc)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "{}\n", string(data))
	})

	t.Run("canceled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := snapshot.NewFileSink(filepath.Join(t.TempDir(), "out.ndjson")).Put(ctx, "idx", strings.NewReader(""), 0)
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("unwritable location", func(t *testing.T) {
		dir := t.TempDir()
		blocker := filepath.Join(dir, "file")
		require.NoError(t, os.WriteFile(blocker, nil, 0o600))

		_, err := snapshot.NewFileSink(filepath.Join(blocker, "out.ndjson")).Put(context.Background(), "idx", strings.NewReader(""), 0)
		assert.ErrorIs(t, err, snapshot.ErrWriteFailed)
	})
}
