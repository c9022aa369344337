package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/cloo-solutions/searchbench/internal/api"
	"github.com/cloo-solutions/searchbench/internal/bench"
	"github.com/cloo-solutions/searchbench/internal/pagination"
	"github.com/cloo-solutions/searchbench/internal/service"
	"github.com/cloo-solutions/searchbench/internal/sink"
	"github.com/cloo-solutions/searchbench/internal/storage"
)

type BenchmarkService interface {
	Run(ctx context.Context, input service.RunInput) (*service.Snapshot, error)
	Latest(ctx context.Context) (*service.Snapshot, error)
	Render(ctx context.Context, format string) ([]byte, string, error)
}

type BenchmarkHandler struct {
	svc BenchmarkService
}

func NewBenchmarkHandler(svc BenchmarkService) *BenchmarkHandler {
	return &BenchmarkHandler{svc: svc}
}

type CreateBenchmarkRequest struct {
	Count     int    `json:"count,omitempty"`
	MinLength int    `json:"min_length,omitempty"`
	MaxLength int    `json:"max_length,omitempty"`
	Seed      uint64 `json:"seed,omitempty"`
}

type BenchmarkResponse struct {
	ID         string              `json:"id"`
	Config     bench.Config        `json:"config"`
	StartedAt  string              `json:"started_at"`
	FinishedAt string              `json:"finished_at"`
	UnitCount  int                 `json:"unit_count"`
	Summary    []bench.Summary     `json:"summary"`
	Artifacts  []storage.Published `json:"artifacts,omitempty"`
	Units      []bench.Unit        `json:"units,omitempty"`
}

func snapshotToResponse(s *service.Snapshot, withUnits bool) *BenchmarkResponse {
	resp := &BenchmarkResponse{
		ID:         s.Batch.ID,
		Config:     s.Batch.Config,
		StartedAt:  s.Batch.StartedAt.Format(time.RFC3339Nano),
		FinishedAt: s.Batch.FinishedAt.Format(time.RFC3339Nano),
		UnitCount:  len(s.Batch.Units),
		Summary:    s.Summary,
		Artifacts:  s.Artifacts,
	}
	if withUnits {
		resp.Units = s.Batch.Units
	}
	return resp
}

func (h *BenchmarkHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateBenchmarkRequest
	// An empty body runs with the defaults.
	if !decodeBody(w, r, &req, true) {
		return
	}

	snap, err := h.svc.Run(r.Context(), service.RunInput{
		Count:     req.Count,
		MinLength: req.MinLength,
		MaxLength: req.MaxLength,
		Seed:      req.Seed,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusCreated, snapshotToResponse(snap, true))
}

func (h *BenchmarkHandler) Latest(w http.ResponseWriter, r *http.Request) {
	snap, err := h.svc.Latest(r.Context())
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, snapshotToResponse(snap, false))
}

func (h *BenchmarkHandler) Units(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			api.Error(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	cursor, err := pagination.DecodeCursor(r.URL.Query().Get("cursor"))
	if err != nil {
		api.HandleError(w, err)
		return
	}

	snap, err := h.svc.Latest(r.Context())
	if err != nil {
		api.HandleError(w, err)
		return
	}

	page, err := pagination.Page(snap.Batch.Units, snap.Batch.ID, cursor, limit)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, page)
}

func (h *BenchmarkHandler) Chart(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, sink.FormatSVG)
}

func (h *BenchmarkHandler) CSV(w http.ResponseWriter, r *http.Request) {
	format := sink.FormatCSV
	if r.URL.Query().Get("layout") == "long" {
		format = sink.FormatCSVLong
	}
	h.render(w, r, format)
}

func (h *BenchmarkHandler) render(w http.ResponseWriter, r *http.Request, format string) {
	body, contentType, err := h.svc.Render(r.Context(), format)
	if err != nil {
		api.HandleError(w, err)
		return
	}
	api.Raw(w, http.StatusOK, contentType, body)
}
