package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/bornholm/fieldwork/internal/advice"
	"github.com/bornholm/fieldwork/internal/calendar"
	"github.com/bornholm/fieldwork/internal/engine"
	"github.com/bornholm/fieldwork/internal/format"
	"github.com/bornholm/fieldwork/internal/model"
	"github.com/bornholm/fieldwork/internal/pricing"
	"github.com/bornholm/fieldwork/internal/refdata"
	"github.com/bornholm/fieldwork/internal/store"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// EstimateRequest is the body of the estimate and history routes
type EstimateRequest struct {
	model.ProjectInput
	// StartDate overrides the embedded field to accept YYYY-MM-DD
	StartDate  string   `json:"startDate,omitempty"`
	Disable    []string `json:"disable,omitempty"`
	ExpertDays int      `json:"expertDays,omitempty"`
	Note       string   `json:"note,omitempty"`
}

func (req EstimateRequest) request(defaults engine.FactorToggles, quick bool) (format.Request, error) {
	input := req.ProjectInput

	date, err := calendar.ParseDate(req.StartDate)
	if err != nil {
		return format.Request{}, err
	}
	input.StartDate = date

	toggles, err := defaults.Disable(req.Disable...)
	if err != nil {
		return format.Request{}, err
	}

	return format.Request{
		Input:      input,
		Toggles:    toggles,
		Quick:      quick,
		ExpertDays: req.ExpertDays,
	}, nil
}

// CompareRequest is the body of the compare route
type CompareRequest struct {
	ExpertDays int `json:"expertDays"`
	Min        int `json:"min"`
	Max        int `json:"max"`
}

// SaveResponse is returned when a calculation is saved
type SaveResponse struct {
	ID     string         `json:"id"`
	Report *format.Output `json:"report"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) toggles() engine.FactorToggles {
	return engine.TogglesFromConfig(s.config.Factors)
}

// report decodes an estimate request and builds its report. It writes the
// error answer and returns nil when the request is unusable.
func (s *Server) report(w http.ResponseWriter, r *http.Request, quick bool) (*format.Report, *EstimateRequest) {
	var body EstimateRequest
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return nil, nil
	}

	req, err := body.request(s.toggles(), quick)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return nil, nil
	}

	return format.NewReport(s.engine(r.Context()), req), &body
}

func (s *Server) handleEstimate(quick bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report, _ := s.report(w, r, quick)
		if report == nil {
			return
		}

		output := format.NewJSONFormatter().BuildOutput(report)
		if !report.HasResult() {
			zap.L().Debug("no estimate for request", zap.Strings("problems", report.Problems))
			writeJSON(w, http.StatusUnprocessableEntity, output)
			return
		}

		writeJSON(w, http.StatusOK, output)
	}
}

func (s *Server) handleCPI(w http.ResponseWriter, r *http.Request) {
	var input model.ProjectInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	input.Normalize()

	writeJSON(w, http.StatusOK, pricing.EstimateCPI(input))
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	var body CompareRequest
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if body.Max < body.Min {
		writeError(w, http.StatusBadRequest, "max must not be lower than min")
		return
	}

	writeJSON(w, http.StatusOK, advice.Compare(body.ExpertDays, engine.Range{Min: body.Min, Max: body.Max}))
}

func (s *Server) handleTiming(w http.ResponseWriter, r *http.Request) {
	start, ok := startDate(w, r)
	if !ok {
		return
	}

	days := 7
	if raw := r.URL.Query().Get("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 || n > calendar.MaxWindowDays {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("days must be a whole number between 0 and %d", calendar.MaxWindowDays))
			return
		}
		days = n
	}

	writeJSON(w, http.StatusOK, s.engine(r.Context()).Calendar().TimingFactor(*start, days))
}

func (s *Server) handleTimingCheck(w http.ResponseWriter, r *http.Request) {
	start, ok := startDate(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, s.engine(r.Context()).Calendar().QuickCheck(*start))
}

func startDate(w http.ResponseWriter, r *http.Request) (*time.Time, bool) {
	date, err := calendar.ParseDate(r.URL.Query().Get("start"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	if date == nil {
		writeError(w, http.StatusBadRequest, "start is required")
		return nil, false
	}
	return date, true
}

func (s *Server) handleListHistory(w http.ResponseWriter, r *http.Request) {
	if !s.requireHistory(w) {
		return
	}

	limit := store.DefaultRecentLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive whole number")
			return
		}
		limit = min(n, s.config.GetHistoryLimit())
	}

	records, err := s.history.RecentHistory(r.Context(), limit)
	if err != nil {
		zap.L().Error("failed to list history", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list history")
		return
	}

	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleSaveHistory(w http.ResponseWriter, r *http.Request) {
	if !s.requireHistory(w) {
		return
	}

	quick := r.URL.Query().Get("quick") == "true"

	report, body := s.report(w, r, quick)
	if report == nil {
		return
	}

	output := format.NewJSONFormatter().BuildOutput(report)

	record := report.HistoryRecord(body.ExpertDays, strings.TrimSpace(body.Note))
	if record == nil {
		writeJSON(w, http.StatusUnprocessableEntity, output)
		return
	}

	id, err := s.history.SaveCalculation(r.Context(), record)
	if err != nil {
		zap.L().Error("failed to save calculation", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to save calculation")
		return
	}

	zap.L().Info("calculation saved", zap.String("id", id), zap.String("project", record.ProjectName))

	writeJSON(w, http.StatusCreated, SaveResponse{ID: id, Report: output})
}

func (s *Server) handleDeleteHistory(w http.ResponseWriter, r *http.Request) {
	if !s.requireHistory(w) {
		return
	}

	id := chi.URLParam(r, "id")

	err := s.history.DeleteHistory(r.Context(), id)
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "calculation '"+id+"' not found")
		return
	case err != nil:
		zap.L().Error("failed to delete calculation", zap.String("id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to delete calculation")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) requireHistory(w http.ResponseWriter) bool {
	if s.history == nil {
		writeError(w, http.StatusServiceUnavailable, "calculation history is not configured")
		return false
	}
	return true
}

func (s *Server) handleReference(w http.ResponseWriter, r *http.Request) {
	ref := s.catalog.Snapshot(r.Context())

	table := r.URL.Query().Get("table")
	if table == "" {
		writeJSON(w, http.StatusOK, ref)
		return
	}

	data, err := refdata.Table(ref, table)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, data)
}

func (s *Server) handleInvalidateReference(w http.ResponseWriter, r *http.Request) {
	s.catalog.Invalidate()
	zap.L().Info("reference data invalidated")
	w.WriteHeader(http.StatusNoContent)
}
