package docstore_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/searchkit/pkg/docstore"
	"github.com/dmitrymomot/searchkit/pkg/logger"
	"github.com/dmitrymomot/searchkit/pkg/opensearch"
	"github.com/dmitrymomot/searchkit/pkg/opensearchtest"
)

type product struct {
	ID    string  `json:"id,omitempty"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// tagged manages its identifier itself and keeps it out of the source.
type tagged struct {
	key  string
	Name string `json:"name"`
}

func (t *tagged) GetID() string   { return t.key }
func (t *tagged) SetID(id string) { t.key = id }

const index = "products"

func newStore(t *testing.T, srv *opensearchtest.Server, opts ...docstore.Option) *docstore.Store {
	t.Helper()
	store, err := docstore.New(context.Background(), opensearch.Config{Addresses: []string{srv.URL}}, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func seed(srv *opensearchtest.Server, n int) {
	for i := range n {
		srv.Put(index, fmt.Sprintf("p-%04d", i), map[string]any{
			"name":  fmt.Sprintf("product %d", i),
			"price": float64(i),
		})
	}
}

func TestNew(t *testing.T) {
	t.Run("connects and pings", func(t *testing.T) {
		srv := opensearchtest.New(t)
		store := newStore(t, srv)
		assert.Equal(t, opensearch.PoolSingleNode, store.Client().Pool())
		assert.Equal(t, 1, srv.CountRequests("HEAD", "/"))
	})

	t.Run("failed ping aborts construction", func(t *testing.T) {
		srv := opensearchtest.New(t, opensearchtest.WithUnhealthy())
		store, err := docstore.New(context.Background(), opensearch.Config{Addresses: []string{srv.URL}})
		require.Error(t, err)
		assert.Nil(t, store)
		assert.ErrorIs(t, err, opensearch.ErrConnectionFailed)
		assert.ErrorIs(t, err, opensearch.ErrHealthcheckFailed)
	})

	t.Run("no addresses", func(t *testing.T) {
		store, err := docstore.New(context.Background(), opensearch.Config{})
		assert.Nil(t, store)
		assert.ErrorIs(t, err, opensearch.ErrConnectionFailed)
		assert.ErrorIs(t, err, opensearch.ErrNoAddresses)
	})

	t.Run("invalid refresh policy", func(t *testing.T) {
		srv := opensearchtest.New(t)
		_, err := docstore.New(context.Background(), opensearch.Config{Addresses: []string{srv.URL}}, docstore.WithRefresh("later"))
		assert.ErrorIs(t, err, docstore.ErrInvalidRefreshPolicy)
	})

	t.Run("basic auth", func(t *testing.T) {
		srv := opensearchtest.New(t, opensearchtest.WithBasicAuth("admin", "secret"))

		_, err := docstore.New(context.Background(), opensearch.Config{
			Addresses: []string{srv.URL},
			Username:  "admin",
			Password:  "wrong",
		})
		assert.ErrorIs(t, err, opensearch.ErrConnectionFailed)

		store, err := docstore.New(context.Background(), opensearch.Config{
			Addresses: []string{srv.URL},
			Username:  "admin",
			Password:  "secret",
		})
		require.NoError(t, err)
		require.NoError(t, store.Close())
	})

	t.Run("https without authority accepts any certificate", func(t *testing.T) {
		srv := opensearchtest.New(t, opensearchtest.WithTLS())
		store := newStore(t, srv)

		srv.Put(index, "p-1", product{Name: "desk"})
		docs, err := docstore.NewRepository[product](store).FindAll(context.Background(), index)
		require.NoError(t, err)
		assert.Len(t, docs, 1)
	})
}

// slowServer answers pings at once and stalls every other request for delay.
func slowServer(t *testing.T, delay time.Duration) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" {
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]any{
				"version": map[string]any{"distribution": "opensearch", "number": "2.11.0"},
			})
			return
		}
		select {
		case <-time.After(delay):
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"took":1,"errors":false,"items":[]}`))
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRequestTimeout(t *testing.T) {
	const timeout = 100 * time.Millisecond
	ctx := context.Background()

	srv := slowServer(t, 5*timeout)
	store, err := docstore.New(ctx, opensearch.Config{Addresses: []string{srv.URL}, Timeout: timeout})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	repo := docstore.NewRepository[product](store)

	t.Run("mutation turns invalid", func(t *testing.T) {
		start := time.Now()
		resp := repo.InsertMany(ctx, index, []product{{ID: "p-1", Name: "desk"}})
		elapsed := time.Since(start)

		assert.False(t, resp.Valid)
		assert.Contains(t, resp.Message, "unsuccessful low level call on POST /products/_bulk")
		assert.GreaterOrEqual(t, elapsed, timeout)
		assert.Less(t, elapsed, 4*timeout)
	})

	t.Run("query fails", func(t *testing.T) {
		start := time.Now()
		_, err := repo.FindByID(ctx, index, "p-1")
		elapsed := time.Since(start)

		assert.ErrorIs(t, err, docstore.ErrQueryFailed)
		assert.Less(t, elapsed, 4*timeout)
	})
}

func TestPointOperationsLogDocumentID(t *testing.T) {
	ctx := context.Background()
	srv := opensearchtest.New(t)
	srv.Put(index, "sku/42", product{Name: "lamp"})

	var buf bytes.Buffer
	log := logger.New(logger.WithJSONFormatter(), logger.WithLevel(slog.LevelDebug), logger.WithOutput(&buf))
	repo := docstore.NewRepository[product](newStore(t, srv, docstore.WithLogger(log)))
	buf.Reset()

	records := func() []map[string]any {
		var out []map[string]any
		for _, line := range bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n")) {
			var rec map[string]any
			require.NoError(t, json.Unmarshal(line, &rec))
			out = append(out, rec)
		}
		buf.Reset()
		return out
	}

	t.Run("find by id", func(t *testing.T) {
		_, err := repo.FindByID(ctx, index, "sku/42")
		require.NoError(t, err)

		recs := records()
		require.Len(t, recs, 1)
		assert.Equal(t, "find_by_id", recs[0]["operation"])
		assert.Equal(t, "sku/42", recs[0]["document_id"])
	})

	t.Run("delete by id", func(t *testing.T) {
		require.True(t, repo.DeleteByID(ctx, index, "sku/42").Valid)
		require.False(t, repo.DeleteByID(ctx, index, "sku/42").Valid)

		recs := records()
		require.Len(t, recs, 2)
		assert.Equal(t, "DEBUG", recs[0]["level"])
		assert.Equal(t, "WARN", recs[1]["level"])
		for _, rec := range recs {
			assert.Equal(t, "delete_by_id", rec["operation"])
			assert.Equal(t, "sku/42", rec["document_id"])
		}
	})
}
