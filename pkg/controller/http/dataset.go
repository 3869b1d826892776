package http

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/scantrend/pkg/domain/interfaces"
	"github.com/secmon-lab/scantrend/pkg/domain/model"
	"github.com/secmon-lab/scantrend/pkg/domain/types"
	"github.com/secmon-lab/scantrend/pkg/service/tabular"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

type datasetHandler struct {
	repo interfaces.Repository
}

func (h *datasetHandler) list(w http.ResponseWriter, r *http.Request) {
	limit := defaultListLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, r, goerr.New("invalid limit", goerr.V("limit", v)), http.StatusBadRequest)
			return
		}
		limit = min(n, maxListLimit)
	}

	datasets, err := h.repo.ListDatasets(r.Context(), limit)
	if err != nil {
		writeError(w, r, err, 0)
		return
	}
	if datasets == nil {
		datasets = []*model.Dataset{}
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"datasets": datasets})
}

func (h *datasetHandler) latest(w http.ResponseWriter, r *http.Request) {
	ds, err := h.repo.GetLatestDataset(r.Context())
	if err != nil {
		writeError(w, r, err, 0)
		return
	}
	writeJSON(w, r, http.StatusOK, ds)
}

func (h *datasetHandler) get(w http.ResponseWriter, r *http.Request) {
	ds, err := h.repo.GetDataset(r.Context(), types.RunID(chi.URLParam(r, "runID")))
	if err != nil {
		writeError(w, r, err, 0)
		return
	}
	writeJSON(w, r, http.StatusOK, ds)
}

func (h *datasetHandler) csv(w http.ResponseWriter, r *http.Request) {
	ds, err := h.repo.GetDataset(r.Context(), types.RunID(chi.URLParam(r, "runID")))
	if err != nil {
		writeError(w, r, err, 0)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+ds.RunID.String()+`.csv"`)
	w.WriteHeader(http.StatusOK)
	if err := tabular.WriteDataset(w, ds); err != nil {
		ctxlog.From(r.Context()).Error("Failed to write CSV response", "error", err)
	}
}

func (h *datasetHandler) latestCommit(w http.ResponseWriter, r *http.Request) {
	commit, ok := commitParam(w, r)
	if !ok {
		return
	}
	ds, err := h.repo.GetLatestDataset(r.Context())
	if err != nil {
		writeError(w, r, err, 0)
		return
	}
	writeRow(w, r, ds, commit)
}

func (h *datasetHandler) commit(w http.ResponseWriter, r *http.Request) {
	commit, ok := commitParam(w, r)
	if !ok {
		return
	}
	ds, err := h.repo.GetDataset(r.Context(), types.RunID(chi.URLParam(r, "runID")))
	if err != nil {
		writeError(w, r, err, 0)
		return
	}
	writeRow(w, r, ds, commit)
}

func commitParam(w http.ResponseWriter, r *http.Request) (types.CommitHash, bool) {
	commit := types.CommitHash(chi.URLParam(r, "commit"))
	if err := commit.Validate(); err != nil {
		writeError(w, r, err, http.StatusBadRequest)
		return "", false
	}
	return commit, true
}

func writeRow(w http.ResponseWriter, r *http.Request, ds *model.Dataset, commit types.CommitHash) {
	row, ok := ds.Row(commit)
	if !ok {
		writeError(w, r, goerr.New("commit not in dataset",
			goerr.V("commit", commit),
			goerr.V("run_id", ds.RunID)), http.StatusNotFound)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{
		"run_id":  ds.RunID,
		"columns": ds.CountColumns,
		"row":     row,
	})
}
