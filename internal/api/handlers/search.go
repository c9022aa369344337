package handlers

import (
	"context"
	"net/http"

	"github.com/cloo-solutions/searchbench/internal/api"
	"github.com/cloo-solutions/searchbench/internal/search"
	"github.com/cloo-solutions/searchbench/internal/service"
)

type SearchService interface {
	Search(ctx context.Context, input service.SearchInput) ([]search.Outcome, error)
}

type SearchHandler struct {
	svc SearchService
}

func NewSearchHandler(svc SearchService) *SearchHandler {
	return &SearchHandler{svc: svc}
}

type SearchRequest struct {
	Algorithm string   `json:"algorithm,omitempty"`
	Sequence  []uint64 `json:"sequence"`
	Target    *uint64  `json:"target"`
}

type SearchResponse struct {
	Target   uint64           `json:"target"`
	Length   int              `json:"length"`
	Outcomes []search.Outcome `json:"outcomes"`
}

type AlgorithmResponse struct {
	Name  string `json:"name"`
	Label string `json:"label"`
}

func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if !decodeBody(w, r, &req, false) {
		return
	}

	if req.Target == nil {
		api.Error(w, http.StatusBadRequest, "target is required")
		return
	}

	outcomes, err := h.svc.Search(r.Context(), service.SearchInput{
		Algorithm: req.Algorithm,
		Sequence:  req.Sequence,
		Target:    *req.Target,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, SearchResponse{
		Target:   *req.Target,
		Length:   len(req.Sequence),
		Outcomes: outcomes,
	})
}

func (h *SearchHandler) Algorithms(w http.ResponseWriter, r *http.Request) {
	algs := search.Algorithms()
	resp := make([]AlgorithmResponse, 0, len(algs))
	for _, alg := range algs {
		resp = append(resp, AlgorithmResponse{Name: string(alg), Label: alg.Label()})
	}
	api.Success(w, http.StatusOK, resp)
}
