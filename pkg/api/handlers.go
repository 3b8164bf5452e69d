package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/pgatlas/pgatlas/pkg/buildinfo"
	pgerrors "github.com/pgatlas/pgatlas/pkg/errors"
	"github.com/pgatlas/pgatlas/pkg/gate"
	"github.com/pgatlas/pgatlas/pkg/pipeline"
	"github.com/pgatlas/pgatlas/pkg/render"
	"github.com/pgatlas/pgatlas/pkg/score"
	"github.com/pgatlas/pgatlas/pkg/snapshot"
	"github.com/pgatlas/pgatlas/pkg/surface"
)

// =============================================================================
// Response Types
// =============================================================================

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status     string         `json:"status"`
	Ready      bool           `json:"ready"`
	SnapshotID string         `json:"snapshot_id,omitempty"`
	Build      buildinfo.Info `json:"build"`
}

// GateListResponse is the body of GET /gate.
type GateListResponse struct {
	Results []gate.Result `json:"results"`
	Summary gate.Summary  `json:"summary"`
}

// CriticalityResponse is the body of GET /scores/criticality.
type CriticalityResponse struct {
	Results []pipeline.CriticalityRow `json:"results"`
	Total   int                       `json:"total"`
}

// ConcentrationResponse is the body of GET /scores/concentration.
type ConcentrationResponse struct {
	Results []score.Risk `json:"results"`
	Total   int          `json:"total"`
}

// DebtResponse is the body of GET /maintenance-debt.
type DebtResponse struct {
	Surface []surface.DebtEntry `json:"surface"`
	Summary surface.DebtSummary `json:"summary"`
}

// KeystoneResponse is the body of GET /keystone-contributors.
type KeystoneResponse struct {
	Contributors []surface.KeystoneEntry `json:"contributors"`
	Total        int                     `json:"total"`
}

// FundingResponse is the body of GET /funding-efficiency.
type FundingResponse struct {
	Results          []surface.FundingEntry `json:"results"`
	UnderfundedCount int                    `json:"underfunded_count"`
	Summary          surface.FundingSummary `json:"summary"`
}

// SnapshotRequest is the optional body of POST /snapshots.
type SnapshotRequest struct {
	Round string `json:"round"`
}

// SnapshotResponse is the body of POST /snapshots.
type SnapshotResponse struct {
	Snapshot *snapshot.Snapshot `json:"snapshot"`
	Path     string             `json:"path,omitempty"`
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{Status: "ok", Build: buildinfo.Current()}
	if res, err := s.Result(); err == nil {
		resp.Ready = true
		resp.SnapshotID = res.Snapshot.ID
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGateList(w http.ResponseWriter, r *http.Request) {
	res, ok := s.ready(w)
	if !ok {
		return
	}
	results := res.Gate
	if f := r.URL.Query().Get("passed"); f != "" {
		want, err := strconv.ParseBool(f)
		if err != nil {
			writeError(w, pgerrors.New(pgerrors.ErrCodeInvalidInput, "passed must be true or false, got %q", f))
			return
		}
		results = filterGate(results, want)
	}
	writeJSON(w, http.StatusOK, GateListResponse{Results: nonNil(results), Summary: res.GateSummary})
}

func (s *Server) handleGate(w http.ResponseWriter, r *http.Request) {
	res, ok := s.ready(w)
	if !ok {
		return
	}
	id := chi.URLParam(r, "*")
	if err := pgerrors.ValidateNodeID(id); err != nil {
		writeError(w, err)
		return
	}
	result, found := gate.Find(res.Gate, id)
	if !found {
		writeError(w, pgerrors.New(pgerrors.ErrCodeEntityNotFound, "%q not found in the active subgraph", id))
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleCriticality(w http.ResponseWriter, r *http.Request) {
	res, ok := s.ready(w)
	if !ok {
		return
	}
	rows := res.CriticalityRows()
	writeJSON(w, http.StatusOK, CriticalityResponse{Results: rows, Total: len(rows)})
}

func (s *Server) handleConcentration(w http.ResponseWriter, r *http.Request) {
	res, ok := s.ready(w)
	if !ok {
		return
	}
	rows := res.ConcentrationRows()
	writeJSON(w, http.StatusOK, ConcentrationResponse{Results: rows, Total: len(rows)})
}

func (s *Server) handleDebt(w http.ResponseWriter, r *http.Request) {
	res, ok := s.ready(w)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, DebtResponse{
		Surface: nonNil(res.Debt),
		Summary: surface.SummarizeDebt(res.Debt, 5),
	})
}

func (s *Server) handleKeystone(w http.ResponseWriter, r *http.Request) {
	res, ok := s.ready(w)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, KeystoneResponse{Contributors: nonNil(res.Keystone), Total: len(res.Keystone)})
}

func (s *Server) handleFunding(w http.ResponseWriter, r *http.Request) {
	res, ok := s.ready(w)
	if !ok {
		return
	}
	under := 0
	for _, e := range res.Funding {
		if e.Tier == surface.TierCriticallyUnderfunded || e.Tier == surface.TierUnderfunded {
			under++
		}
	}
	writeJSON(w, http.StatusOK, FundingResponse{
		Results:          nonNil(res.Funding),
		UnderfundedCount: under,
		Summary:          res.FundingSummary,
	})
}

func (s *Server) handleLatestSnapshot(w http.ResponseWriter, r *http.Request) {
	res, ok := s.ready(w)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, res.Snapshot)
}

func (s *Server) handleCreateSnapshot(w http.ResponseWriter, r *http.Request) {
	var req SnapshotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, pgerrors.Wrap(pgerrors.ErrCodeInvalidInput, err, "decode request body"))
		return
	}
	if err := pgerrors.ValidateRoundLabel(req.Round); err != nil {
		writeError(w, err)
		return
	}

	res, err := s.Refresh(r.Context(), req.Round)
	if err != nil {
		writeError(w, err)
		return
	}
	path, err := s.export(res.Snapshot)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, SnapshotResponse{Snapshot: res.Snapshot, Path: path})
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	res, ok := s.ready(w)
	if !ok {
		return
	}
	q := r.URL.Query()
	format := q.Get("format")
	if format == "" {
		format = render.FormatSVG
	}
	detailed, _ := strconv.ParseBool(q.Get("detailed"))

	data, _, err := s.runner.Render(r.Context(), res, format, render.Options{
		Detailed:  detailed,
		Ecosystem: q.Get("ecosystem"),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	contentType := "image/svg+xml"
	if format == render.FormatDOT {
		contentType = "text/vnd.graphviz; charset=utf-8"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// ready returns the current result or writes the NOT_READY error.
func (s *Server) ready(w http.ResponseWriter) (*pipeline.Result, bool) {
	res, err := s.Result()
	if err != nil {
		writeError(w, err)
		return nil, false
	}
	return res, true
}

func filterGate(results []gate.Result, passed bool) []gate.Result {
	var out []gate.Result
	for _, r := range results {
		if r.Passed == passed {
			out = append(out, r)
		}
	}
	return out
}

// nonNil keeps empty lists as [] rather than null in JSON.
func nonNil[T any](xs []T) []T {
	if xs == nil {
		return []T{}
	}
	return xs
}
