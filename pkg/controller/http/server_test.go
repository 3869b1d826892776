package http_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/gt"
	controller "github.com/secmon-lab/scantrend/pkg/controller/http"
	"github.com/secmon-lab/scantrend/pkg/domain/interfaces"
	"github.com/secmon-lab/scantrend/pkg/domain/model"
	"github.com/secmon-lab/scantrend/pkg/domain/types"
	"github.com/secmon-lab/scantrend/pkg/repository"
)

const testCommit = "a1b2c3d4e5f60718293a4b5c6d7e8f901a2b3c4d"

func newTestServer(t *testing.T, repo interfaces.Repository) *httptest.Server {
	t.Helper()
	ctx := ctxlog.With(context.Background(), slog.New(slog.NewTextHandler(os.Stdout, nil)))
	server := controller.NewServer(ctx, ":0", repo)
	ts := httptest.NewServer(server.Handler)
	t.Cleanup(ts.Close)
	return ts
}

func seededRepo(t *testing.T) interfaces.Repository {
	t.Helper()
	repo := repository.NewMemory()
	created := time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)

	for i, runID := range []string{"run-old", "run-new"} {
		gt.NoError(t, repo.PutDataset(context.Background(), &model.Dataset{
			RunID:        types.RunID(runID),
			CreatedAt:    created.Add(time.Duration(i) * time.Hour),
			CountColumns: []string{"zap_High", "zap_total"},
			Rows: []model.DatasetRow{
				{
					Commit:       testCommit,
					Date:         time.Date(2025, 11, 10, 0, 0, 0, 0, time.UTC),
					DaysDiff:     1,
					Label:        "2025-11-09 to 2025-11-22",
					SequentialID: 1,
					Counts:       map[string]int{"zap_High": i + 1, "zap_total": i + 1},
				},
			},
		}))
	}
	return repo
}

func get(t *testing.T, ts *httptest.Server, path string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.Get(ts.URL + path)
	gt.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	var body map[string]any
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		gt.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	}
	return resp, body
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, repository.NewMemory())

	resp, body := get(t, ts, "/health")
	gt.Equal(t, http.StatusOK, resp.StatusCode)
	gt.Equal(t, "healthy", body["status"])
}

func TestDatasetAPI(t *testing.T) {
	ts := newTestServer(t, seededRepo(t))

	t.Run("latest dataset", func(t *testing.T) {
		resp, body := get(t, ts, "/api/datasets/latest")
		gt.Equal(t, http.StatusOK, resp.StatusCode)
		gt.Equal(t, "run-new", body["run_id"])
		gt.Equal(t, 1, len(body["rows"].([]any)))
	})

	t.Run("dataset by run ID", func(t *testing.T) {
		resp, body := get(t, ts, "/api/datasets/run-old")
		gt.Equal(t, http.StatusOK, resp.StatusCode)
		gt.Equal(t, "run-old", body["run_id"])
	})

	t.Run("list datasets", func(t *testing.T) {
		resp, body := get(t, ts, "/api/datasets/?limit=1")
		gt.Equal(t, http.StatusOK, resp.StatusCode)
		gt.Equal(t, 1, len(body["datasets"].([]any)))
	})

	t.Run("invalid limit", func(t *testing.T) {
		resp, _ := get(t, ts, "/api/datasets/?limit=abc")
		gt.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("unknown run", func(t *testing.T) {
		resp, body := get(t, ts, "/api/datasets/run-missing")
		gt.Equal(t, http.StatusNotFound, resp.StatusCode)
		gt.V(t, body["error"]).NotNil()
	})

	t.Run("commit of latest dataset", func(t *testing.T) {
		resp, body := get(t, ts, "/api/datasets/latest/commits/"+testCommit)
		gt.Equal(t, http.StatusOK, resp.StatusCode)
		row := body["row"].(map[string]any)
		counts := row["counts"].(map[string]any)
		gt.V(t, counts["zap_High"]).Equal(float64(2))
	})

	t.Run("commit of a run", func(t *testing.T) {
		resp, body := get(t, ts, "/api/datasets/run-old/commits/"+testCommit)
		gt.Equal(t, http.StatusOK, resp.StatusCode)
		row := body["row"].(map[string]any)
		counts := row["counts"].(map[string]any)
		gt.V(t, counts["zap_High"]).Equal(float64(1))
	})

	t.Run("unknown commit", func(t *testing.T) {
		resp, _ := get(t, ts, "/api/datasets/latest/commits/ffffffffffffffffffffffffffffffffffffffff")
		gt.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("malformed commit", func(t *testing.T) {
		resp, _ := get(t, ts, "/api/datasets/latest/commits/not-a-hash")
		gt.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("csv export", func(t *testing.T) {
		resp, _ := get(t, ts, "/api/datasets/run-new/csv")
		gt.Equal(t, http.StatusOK, resp.StatusCode)
		gt.S(t, resp.Header.Get("Content-Type")).Contains("text/csv")
	})
}

func TestDatasetAPIEmptyRepository(t *testing.T) {
	ts := newTestServer(t, repository.NewMemory())

	resp, _ := get(t, ts, "/api/datasets/latest")
	gt.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body := get(t, ts, "/api/datasets/")
	gt.Equal(t, http.StatusOK, resp.StatusCode)
	gt.Equal(t, 0, len(body["datasets"].([]any)))
}
