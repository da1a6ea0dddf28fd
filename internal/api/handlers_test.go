package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clewlabs/memoria/internal/capture"
	"github.com/clewlabs/memoria/internal/githubctx"
	"github.com/clewlabs/memoria/internal/patterns"
	"github.com/clewlabs/memoria/internal/ratelimit"
	"github.com/clewlabs/memoria/internal/recall"
	"github.com/clewlabs/memoria/internal/storage"
	"github.com/clewlabs/memoria/pkg/types"
)

var apiNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

// newTestServer wires a full server over an in-memory database with no
// LLM provider configured.
func newTestServer(t *testing.T) (*Server, storage.Store) {
	t.Helper()

	store, err := storage.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	clock := func() time.Time { return apiNow }
	cache := recall.NewSnapshotCache(store.ListRecentItems, recall.CacheConfig{Clock: clock}, nil)
	engine := recall.NewEngine(cache, clock, nil)
	capSvc := capture.NewService(store, nil, cache, clock, nil)
	ghSvc := githubctx.NewService(store, clock, nil)
	patSvc := patterns.NewService(store, nil, clock, nil)
	limiter := ratelimit.New(nil)

	srv := NewServer(Config{Addr: ":0", GitHubUsername: "octocat"},
		store, engine, capSvc, ghSvc, patSvc, limiter, nil)
	return srv, store
}

func doJSON(t *testing.T, srv *Server, method, path string, body any, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.RemoteAddr = "192.0.2.1:1234"
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w
}

func seedItem(t *testing.T, store storage.Store, userID string, item *types.ArchiveItem) {
	t.Helper()
	require.NoError(t, store.InsertItem(context.Background(), userID, item))
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)

	w := doJSON(t, srv, http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestCaptureEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	t.Run("missing content", func(t *testing.T) {
		w := doJSON(t, srv, http.MethodPost, "/api/capture", map[string]any{}, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Content required")
	})

	t.Run("manual text capture", func(t *testing.T) {
		w := doJSON(t, srv, http.MethodPost, "/api/capture",
			map[string]any{"url": "notes about sqlite WAL mode"}, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Success bool   `json:"success"`
			Message string `json:"message"`
			Data    struct {
				ID     string `json:"id"`
				Title  string `json:"title"`
				Source string `json:"source"`
			} `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		assert.Equal(t, "Content captured and archived", resp.Message)
		assert.Equal(t, "Manual Capture", resp.Data.Title)
		assert.Equal(t, "manual", resp.Data.Source)
		assert.NotEmpty(t, resp.Data.ID)
	})

	t.Run("rate limited after burst", func(t *testing.T) {
		srv, _ := newTestServer(t)
		var last *httptest.ResponseRecorder
		for i := 0; i < 21; i++ {
			last = doJSON(t, srv, http.MethodPost, "/api/capture",
				map[string]any{"url": "note"}, nil)
		}
		assert.Equal(t, http.StatusTooManyRequests, last.Code)
		assert.Contains(t, last.Body.String(), "Rate limit exceeded")
		assert.Contains(t, last.Body.String(), "resetSeconds")
	})
}

func TestArchiveEndpoint(t *testing.T) {
	srv, store := newTestServer(t)

	seedItem(t, store, "192.0.2.1", &types.ArchiveItem{
		ID: "a", Title: "Stored item", Summary: "s",
		Source: types.SourceManual, Timestamp: 100,
		Origin: types.ManualOrigin{Content: "x"},
	})

	w := doJSON(t, srv, http.MethodGet, "/api/archive", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool              `json:"success"`
		Data    []json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Len(t, resp.Data, 1)
}

func TestRecallEndpoint(t *testing.T) {
	t.Run("shape validation", func(t *testing.T) {
		srv, _ := newTestServer(t)

		w := doJSON(t, srv, http.MethodPost, "/api/recall",
			map[string]any{"tags": "not-an-array"}, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "tags must be an array")

		w = doJSON(t, srv, http.MethodPost, "/api/recall",
			map[string]any{"description": 42}, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "description must be a string")

		w = doJSON(t, srv, http.MethodPost, "/api/recall",
			map[string]any{"query": []string{"x"}}, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "query must be a string")
	})

	t.Run("recall with matches", func(t *testing.T) {
		srv, store := newTestServer(t)
		seedItem(t, store, "u1", &types.ArchiveItem{
			ID: "react-item", Title: "React hooks", Summary: "All about hooks",
			Tags: []string{"react", "javascript"},
			Source: types.SourceManual, Timestamp: apiNow.UnixMilli(),
			Origin: types.ManualOrigin{Content: "x"},
		})

		w := doJSON(t, srv, http.MethodPost, "/api/recall",
			map[string]any{"userId": "u1", "tags": []string{"react", "javascript"}}, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Success bool   `json:"success"`
			Message string `json:"message"`
			Data    struct {
				Matches     []types.RecallMatch `json:"matches"`
				Explanation string              `json:"explanation"`
				Timestamp   int64               `json:"timestamp"`
			} `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		require.NotEmpty(t, resp.Data.Matches)
		assert.Equal(t, "react-item", resp.Data.Matches[0].ArchiveItemID)
		assert.Equal(t, "Found 1 relevant items", resp.Message)
		assert.Equal(t, apiNow.UnixMilli(), resp.Data.Timestamp)
	})

	t.Run("empty body defaults", func(t *testing.T) {
		srv, _ := newTestServer(t)
		w := doJSON(t, srv, http.MethodPost, "/api/recall", map[string]any{}, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "No relevant items found")
	})
}

func TestPatternsEndpoint(t *testing.T) {
	srv, store := newTestServer(t)

	t.Run("missing user header", func(t *testing.T) {
		w := doJSON(t, srv, http.MethodGet, "/api/patterns", nil, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "x-user-id header required")
	})

	t.Run("fallback analysis without provider", func(t *testing.T) {
		seedItem(t, store, "u1", &types.ArchiveItem{
			ID: "a", Title: "Go notes", Summary: "s",
			Tags:   []string{"go"},
			Source: types.SourceManual, Timestamp: 100,
			Origin: types.ManualOrigin{Content: "x"},
		})

		w := doJSON(t, srv, http.MethodGet, "/api/patterns", nil,
			map[string]string{"x-user-id": "u1"})
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Success bool              `json:"success"`
			Data    patterns.Analysis `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		assert.Equal(t, []string{"go"}, resp.Data.Themes)
	})
}

func TestContextEndpointUnseeded(t *testing.T) {
	srv, _ := newTestServer(t)

	w := doJSON(t, srv, http.MethodGet, "/api/context", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "No cached context found")
	assert.Contains(t, w.Body.String(), "Run /api/context/sync first")
}

func TestParseRecallBody(t *testing.T) {
	t.Run("defaults user id", func(t *testing.T) {
		req, errMsg := parseRecallBody(bytes.NewReader(nil), "10.0.0.1")
		require.Empty(t, errMsg)
		assert.Equal(t, "10.0.0.1", req.UserID)
	})

	t.Run("explicit user id wins", func(t *testing.T) {
		body := bytes.NewBufferString(`{"userId":"u9","tags":["go"]}`)
		req, errMsg := parseRecallBody(body, "10.0.0.1")
		require.Empty(t, errMsg)
		assert.Equal(t, "u9", req.UserID)
		assert.Equal(t, []string{"go"}, req.ContextTags)
	})

	t.Run("null fields tolerated", func(t *testing.T) {
		body := bytes.NewBufferString(`{"tags":null,"query":null}`)
		req, errMsg := parseRecallBody(body, "ip")
		require.Empty(t, errMsg)
		assert.Empty(t, req.ContextTags)
		assert.Empty(t, req.Query)
	})

	t.Run("invalid json", func(t *testing.T) {
		body := bytes.NewBufferString(`{not json`)
		_, errMsg := parseRecallBody(body, "ip")
		assert.Equal(t, "invalid JSON body", errMsg)
	})
}
