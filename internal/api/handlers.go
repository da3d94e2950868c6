// Package api exposes the analysis pipeline over HTTP: dependency
// detection, normal-form assessment, and plan generation on JSON datasets.
package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"normalizer/internal/analysis"
	"normalizer/internal/discover"
	"normalizer/internal/normalize"
	jsonparser "normalizer/internal/parser/json"
	"normalizer/internal/relation"
	"normalizer/internal/render"
)

type Handler struct {
	Log *logrus.Logger
}

func NewHandler(log *logrus.Logger) *Handler {
	if log == nil {
		log = logrus.New()
	}
	return &Handler{Log: log}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/health", h.HealthCheck)
	r.Post("/api/detect", h.Detect)
	r.Post("/api/assess", h.Assess)
	r.Post("/api/plan", h.Plan)
}

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("OK"))
}

type detectRequest struct {
	// Records is a JSON array of flat objects, one per row.
	Records json.RawMessage `json:"records"`

	MaxArity        int `json:"max_arity,omitempty"`
	SampleThreshold int `json:"sample_threshold,omitempty"`
}

// Detect runs the full analysis over an inline dataset.
func (h *Handler) Detect(w http.ResponseWriter, r *http.Request) {
	var req detectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, err)
		return
	}

	ds, err := h.dataset(req.Records)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err)
		return
	}

	res, err := analysis.Analyze(ds, discover.Options{
		MaxArity:        req.MaxArity,
		SampleThreshold: req.SampleThreshold,
	})
	if err != nil {
		h.respondError(w, statusFor(err), err)
		return
	}
	h.respondJSON(w, http.StatusOK, res)
}

type assessRequest struct {
	Columns []string           `json:"columns"`
	FDs     []relation.FD      `json:"fds"`
	Keys    []relation.AttrSet `json:"keys,omitempty"`
}

// Assess classifies a relation given its columns and dependencies, without
// needing the data itself.
func (h *Handler) Assess(w http.ResponseWriter, r *http.Request) {
	var req assessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, err)
		return
	}
	if len(req.Columns) == 0 {
		h.respondError(w, http.StatusBadRequest, errors.New("columns are required"))
		return
	}

	all := relation.NewAttrSet(req.Columns...)
	if err := relation.ValidateFDs(all, req.FDs); err != nil {
		h.respondError(w, http.StatusBadRequest, err)
		return
	}

	keys := req.Keys
	if keys == nil {
		inferred, err := normalize.InferKeys(all, req.FDs)
		if err != nil {
			h.respondError(w, statusFor(err), err)
			return
		}
		keys = inferred
	}

	h.respondJSON(w, http.StatusOK, normalize.Assess(all, req.FDs, keys))
}

type planRequest struct {
	Records   json.RawMessage     `json:"records"`
	FDs       []relation.FD       `json:"fds"`
	Decisions []analysis.Decision `json:"decisions,omitempty"`
	Target    string              `json:"target,omitempty"` // "3NF" (default) or "BCNF"
}

type planResponse struct {
	Plan    *normalize.Plan `json:"plan"`
	SQL     string          `json:"sql"`
	Mermaid string          `json:"mermaid"`
}

// Plan applies decisions, minimizes the dependency set, and decomposes the
// inline dataset to the requested target form.
func (h *Handler) Plan(w http.ResponseWriter, r *http.Request) {
	var req planRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, err)
		return
	}

	ds, err := h.dataset(req.Records)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err)
		return
	}

	fds, err := analysis.ApplyDecisions(req.FDs, req.Decisions)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err)
		return
	}

	all := ds.AttrSet()
	cover, err := normalize.MinimalCover(relation.Accepted(fds))
	if err != nil {
		h.respondError(w, statusFor(err), err)
		return
	}

	var plan *normalize.Plan
	switch req.Target {
	case "", normalize.Target3NF:
		keys, kerr := normalize.InferKeys(all, cover)
		if kerr != nil {
			h.respondError(w, statusFor(kerr), kerr)
			return
		}
		plan, err = normalize.Synthesize3NF(cover, keys, all)
	case normalize.TargetBCNF:
		plan, err = normalize.DecomposeBCNF(all, cover)
	default:
		h.respondError(w, http.StatusBadRequest, errors.New("target must be 3NF or BCNF"))
		return
	}
	if err != nil {
		h.respondError(w, statusFor(err), err)
		return
	}

	sql, err := render.SQLDDL(plan, ds)
	if err != nil {
		h.respondError(w, statusFor(err), err)
		return
	}

	h.respondJSON(w, http.StatusOK, planResponse{
		Plan:    plan,
		SQL:     sql,
		Mermaid: render.MermaidERD(plan, ds),
	})
}

// dataset parses the inline records array through the JSON datasource, so
// API payloads get identical typing to file loads.
func (h *Handler) dataset(records json.RawMessage) (*relation.Dataset, error) {
	if len(records) == 0 {
		return nil, errors.New("records are required")
	}
	return jsonparser.ReadDataset(bytes.NewReader(records))
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.Log.WithError(err).Error("encode response")
	}
}

func (h *Handler) respondError(w http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError {
		h.Log.WithError(err).Error("request failed")
	}
	h.respondJSON(w, status, map[string]string{"error": err.Error()})
}

// statusFor maps the typed pipeline errors onto HTTP statuses: bad inputs
// are the client's fault, broken invariants are ours.
func statusFor(err error) int {
	var invalid *relation.InvalidDependencySetError
	var mismatch *relation.SchemaMismatchError
	var orphan *relation.OrphanForeignKeyError
	switch {
	case errors.As(err, &invalid), errors.As(err, &mismatch), errors.As(err, &orphan):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
