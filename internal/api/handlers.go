package api

import (
	"encoding/json"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/wxkit/dewpoint/internal/meteo"
	"github.com/wxkit/dewpoint/internal/storage"
	"github.com/wxkit/dewpoint/pkg/version"
)

// Response helpers

type errorResponse struct {
	Error   string `json:"error"`
	Code    int    `json:"code"`
	Message string `json:"message,omitempty"`
}

type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

type dewPointResponse struct {
	Temperature     float64 `json:"temperature"`
	Humidity        float64 `json:"humidity"`
	Unit            string  `json:"unit"`
	DewPoint        float64 `json:"dew_point"`
	DewPointRounded int     `json:"dew_point_rounded"`
}

type historyResponse struct {
	Computations []storage.Computation `json:"computations"`
	Meta         struct {
		Total  int `json:"total"`
		Limit  int `json:"limit"`
		Offset int `json:"offset"`
	} `json:"meta"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("Failed to encode JSON response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, errorResponse{
		Error:   http.StatusText(status),
		Code:    status,
		Message: message,
	})
}

// Handlers

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, healthResponse{
		Status:  "ok",
		Version: version.GetShortVersion(),
	})
}

// handleDewPoint computes a dew point from query parameters.
// GET /api/v1/dewpoint?temperature=20&humidity=50&unit=c
func (s *Server) handleDewPoint(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	unit := s.defaultUnit
	if u := q.Get("unit"); u != "" {
		parsed, ok := meteo.UnitFromSymbol(strings.ToLower(u))
		if !ok {
			RecordComputationError("unit")
			s.writeError(w, http.StatusBadRequest, "unknown unit "+strconv.Quote(u))
			return
		}
		unit = parsed
	}

	temperature, err := strconv.ParseFloat(q.Get("temperature"), 64)
	if err != nil {
		RecordComputationError("temperature")
		s.writeError(w, http.StatusBadRequest, "invalid temperature "+strconv.Quote(q.Get("temperature")))
		return
	}

	humidity, err := strconv.ParseFloat(q.Get("humidity"), 64)
	if err != nil || humidity <= 0 {
		RecordComputationError("humidity")
		s.writeError(w, http.StatusBadRequest, "invalid humidity "+strconv.Quote(q.Get("humidity")))
		return
	}

	dewPoint := meteo.DewPointIn(unit, temperature, humidity)

	comp := storage.NewComputation(unit, temperature, humidity, dewPoint, storage.SourceAPI)
	RecordComputation(comp)

	if s.config.History.Enabled && s.storage != nil {
		if err := s.storage.SaveComputation(r.Context(), comp); err != nil {
			s.logger.Warn("Failed to save computation", zap.Error(err))
		}
	}

	if s.exporter != nil {
		if err := s.exporter.Export(r.Context(), comp); err != nil {
			s.logger.Warn("Failed to export computation", zap.Error(err))
		}
	}

	s.writeJSON(w, http.StatusOK, dewPointResponse{
		Temperature:     temperature,
		Humidity:        humidity,
		Unit:            unit.Symbol(),
		DewPoint:        dewPoint,
		DewPointRounded: int(math.Round(dewPoint)),
	})
}

// handleGetHistory returns stored computations with optional filtering.
func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	filter := storage.Filter{}

	if u := r.URL.Query().Get("unit"); u != "" {
		if parsed, ok := meteo.UnitFromSymbol(strings.ToLower(u)); ok {
			filter.Unit = parsed.Symbol()
		}
	}

	if src := r.URL.Query().Get("source"); src != "" {
		filter.Source = src
	}

	if since := r.URL.Query().Get("since"); since != "" {
		if t, err := time.Parse(time.RFC3339, since); err == nil {
			filter.Since = t
		} else if d, err := time.ParseDuration(since); err == nil {
			filter.Since = time.Now().Add(-d)
		}
	}

	if until := r.URL.Query().Get("until"); until != "" {
		if t, err := time.Parse(time.RFC3339, until); err == nil {
			filter.Until = t
		}
	}

	filter.Limit = 100 // Default limit; unparsable values keep it
	if limit := r.URL.Query().Get("limit"); limit != "" {
		if l, err := strconv.Atoi(limit); err == nil && l > 0 {
			filter.Limit = l
		}
	}

	if offset := r.URL.Query().Get("offset"); offset != "" {
		if o, err := strconv.Atoi(offset); err == nil && o >= 0 {
			filter.Offset = o
		}
	}

	comps, err := s.storage.GetComputations(r.Context(), filter)
	if err != nil {
		s.logger.Error("Failed to get computations", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "failed to retrieve history")
		return
	}

	resp := historyResponse{Computations: comps}
	if resp.Computations == nil {
		resp.Computations = []storage.Computation{}
	}
	resp.Meta.Total = len(comps)
	resp.Meta.Limit = filter.Limit
	resp.Meta.Offset = filter.Offset

	s.writeJSON(w, http.StatusOK, resp)
}

// handleGetComputation returns a single stored computation by ID.
func (s *Server) handleGetComputation(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid id "+strconv.Quote(idStr))
		return
	}

	comp, err := s.storage.GetComputation(r.Context(), id)
	if err != nil {
		s.writeError(w, http.StatusNotFound, err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, comp)
}

// handleGetStats returns aggregated statistics over a period.
// GET /api/v1/history/stats?period=24h
func (s *Server) handleGetStats(w http.ResponseWriter, r *http.Request) {
	period := 24 * time.Hour
	if p := r.URL.Query().Get("period"); p != "" {
		d, err := time.ParseDuration(p)
		if err != nil || d <= 0 {
			s.writeError(w, http.StatusBadRequest, "invalid period "+strconv.Quote(p))
			return
		}
		period = d
	}

	stats, err := s.storage.GetStats(r.Context(), period)
	if err != nil {
		s.logger.Error("Failed to get stats", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "failed to retrieve stats")
		return
	}

	s.writeJSON(w, http.StatusOK, stats)
}
