package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/manav03panchal/studylog/internal/errors"
	"github.com/manav03panchal/studylog/internal/model"
	"github.com/manav03panchal/studylog/internal/storage"
	"github.com/manav03panchal/studylog/internal/validate"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
	Op    string `json:"op,omitempty"`
}

// RecordHandler serves the records collection.
type RecordHandler struct {
	repo storage.Repository
}

// NewRecordHandler creates a RecordHandler.
func NewRecordHandler(repo storage.Repository) *RecordHandler {
	return &RecordHandler{repo: repo}
}

// List handles GET /records
func (h *RecordHandler) List(w http.ResponseWriter, r *http.Request) {
	records, err := h.repo.List(r.Context())
	if err != nil {
		writeRepoError(w, err)
		return
	}
	if records == nil {
		records = []model.Record{}
	}
	writeJSON(w, http.StatusOK, records)
}

// Create handles POST /records
func (h *RecordHandler) Create(w http.ResponseWriter, r *http.Request) {
	var fields model.RecordFields
	if err := decodeJSON(w, r, &fields); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error(), "")
		return
	}
	if err := h.repo.Create(r.Context(), fields); err != nil {
		writeRepoError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

// Update handles PUT /records/{id}
func (h *RecordHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := validate.RecordID(id); err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), errors.OpUpdate)
		return
	}

	var fields model.RecordFields
	if err := decodeJSON(w, r, &fields); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error(), "")
		return
	}
	if err := h.repo.Update(r.Context(), id, fields); err != nil {
		writeRepoError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Delete handles DELETE /records/{id}
func (h *RecordHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := validate.RecordID(id); err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), errors.OpDelete)
		return
	}
	if err := h.repo.Delete(r.Context(), id); err != nil {
		writeRepoError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HealthHandler reports whether the backing repository is reachable.
type HealthHandler struct {
	repo storage.Repository
}

// NewHealthHandler creates a HealthHandler.
func NewHealthHandler(repo storage.Repository) *HealthHandler {
	return &HealthHandler{repo: repo}
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	if err := ping(r.Context(), h.repo); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "error", "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func ping(ctx context.Context, repo storage.Repository) error {
	if p, ok := repo.(storage.Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

func writeRepoError(w http.ResponseWriter, err error) {
	op := ""
	msg := err.Error()
	if re, ok := errors.AsRepositoryError(err); ok {
		op = re.Op
		msg = re.Message
	}
	status := http.StatusInternalServerError
	if errors.Is(err, errors.ErrRecordNotFound) {
		status = http.StatusNotFound
	}
	writeError(w, status, msg, op)
}

func writeError(w http.ResponseWriter, status int, msg, op string) {
	writeJSON(w, status, ErrorResponse{Error: msg, Op: op})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
