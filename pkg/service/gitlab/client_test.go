package gitlab_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/scantrend/pkg/domain/model"
	"github.com/secmon-lab/scantrend/pkg/service/gitlab"
)

func TestListPipelines(t *testing.T) {
	var queries []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gt.Equal(t, r.Header.Get("PRIVATE-TOKEN"), "secret")
		gt.Equal(t, r.URL.EscapedPath(), "/api/v4/projects/group%2Fapp/pipelines")
		queries = append(queries, r.URL.RawQuery)

		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		var out []model.Pipeline
		switch page {
		case 1:
			out = []model.Pipeline{{ID: 30, Ref: "main"}, {ID: 29, Ref: "main"}}
		case 2:
			out = []model.Pipeline{{ID: 28, Ref: "main"}}
		}
		gt.NoError(t, json.NewEncoder(w).Encode(out))
	}))
	defer srv.Close()

	client := gitlab.New(srv.URL+"/api/v4/", "secret", "group/app")
	after := time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC)
	pipelines, err := client.ListPipelines(context.Background(), "main", after)
	gt.NoError(t, err)
	gt.Equal(t, len(pipelines), 3)
	gt.Equal(t, pipelines[2].ID, int64(28))

	// stops at the first empty page
	gt.Equal(t, len(queries), 3)
	q := queries[0]
	gt.S(t, q).Contains("per_page=100")
	gt.S(t, q).Contains("order_by=id")
	gt.S(t, q).Contains("sort=desc")
	gt.S(t, q).Contains("ref=main")
	gt.S(t, q).Contains("created_after=2025-11-01T00%3A00%3A00Z")
}

func TestListPipelinesError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"401 Unauthorized"}`))
	}))
	defer srv.Close()

	client := gitlab.New(srv.URL, "bad", "42")
	_, err := client.ListPipelines(context.Background(), "main", time.Now())
	gt.Error(t, err)
}

func TestListJobs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/projects/42/pipelines/7/jobs":
			if r.URL.Query().Get("page") == "1" {
				gt.NoError(t, json.NewEncoder(w).Encode([]model.Job{{ID: 1, Name: "brakeman"}, {ID: 2, Name: "trivy"}}))
				return
			}
			_, _ = w.Write([]byte("[]"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	client := gitlab.New(srv.URL, "secret", "42")

	t.Run("paginates", func(t *testing.T) {
		jobs, err := client.ListJobs(context.Background(), 7)
		gt.NoError(t, err)
		gt.Equal(t, len(jobs), 2)
		gt.Equal(t, jobs[1].Name, "trivy")
	})

	t.Run("not found is tagged", func(t *testing.T) {
		_, err := client.ListJobs(context.Background(), 8)
		gt.Error(t, err)
		gt.B(t, goerr.HasTag(err, gitlab.ErrTagNotFound)).True()
	})
}
