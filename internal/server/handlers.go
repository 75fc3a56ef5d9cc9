package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/leapstack-labs/leapgrade/internal/grader"
	"github.com/leapstack-labs/leapgrade/pkg/filter"
	"github.com/leapstack-labs/leapgrade/pkg/parser"
	"github.com/leapstack-labs/leapgrade/pkg/result"
	"github.com/leapstack-labs/leapgrade/pkg/rubric"
)

type handlers struct {
	evaluator Evaluator
	filter    *filter.Filter
	scorer    *rubric.Scorer
	logger    *slog.Logger
}

type sanitizeRequest struct {
	SQL     string `json:"sql"`
	Dialect string `json:"dialect,omitempty"`
}

type sanitizeResponse struct {
	SQL      string   `json:"sql"`
	Modified bool     `json:"modified"`
	Warnings []string `json:"warnings"`
}

// scoreRequest carries two executed queries and their results.
type scoreRequest struct {
	StudentQuery string            `json:"student_query"`
	Student      *result.ResultSet `json:"student"`
	GraderQuery  string            `json:"grader_query"`
	Grader       *result.ResultSet `json:"grader"`
	Scale        any               `json:"scale"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *handlers) health(w http.ResponseWriter, r *http.Request) {
	if h.evaluator == nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		return
	}
	if err := h.evaluator.Status(r.Context()); err != nil {
		h.logger.Warn("health check failed", slog.Any("error", err))
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handlers) sanitize(w http.ResponseWriter, r *http.Request) {
	var req sanitizeRequest
	if !decode(w, r, &req) {
		return
	}

	f := h.filter
	if req.Dialect != "" {
		if _, ok := parser.LookupDialect(req.Dialect); !ok {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("unknown dialect %q", req.Dialect)})
			return
		}
		f = f.ForDialect(req.Dialect)
	}

	res := f.Sanitize(req.SQL)
	warnings := res.Warnings
	if warnings == nil {
		warnings = []string{}
	}
	writeJSON(w, http.StatusOK, sanitizeResponse{SQL: res.SQL, Modified: res.Modified, Warnings: warnings})
}

func (h *handlers) score(w http.ResponseWriter, r *http.Request) {
	var req scoreRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Student == nil || req.Grader == nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "student and grader results are required"})
		return
	}

	student := result.New(req.Student.Columns, req.Student.Rows...)
	expected := result.New(req.Grader.Columns, req.Grader.Rows...)
	res := h.scorer.Score(req.StudentQuery, student, req.GraderQuery, expected, rubric.ResolveScale(req.Scale))
	if res.Hints == nil {
		res.Hints = []string{}
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *handlers) grade(w http.ResponseWriter, r *http.Request) {
	if h.evaluator == nil {
		writeJSON(w, http.StatusNotImplemented, errorResponse{Error: "grading is not configured"})
		return
	}

	var sub grader.Submission
	if !decode(w, r, &sub) {
		return
	}

	resp, err := h.evaluator.Evaluate(r.Context(), sub)
	if err != nil {
		h.logger.Error("grading failed", slog.Any("error", err))
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		status := http.StatusBadRequest
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		writeJSON(w, status, errorResponse{Error: "invalid request body: " + err.Error()})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
