// Package httpapi serves stored backtest results as a read-only JSON API.
package httpapi

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"gomentum/internal/store"
)

// Server exposes the run store over HTTP.
type Server struct {
	runs *store.RunStore
	log  *slog.Logger
}

// NewServer creates a Server reading from the given run store.
func NewServer(runs *store.RunStore) *Server {
	return &Server{
		runs: runs,
		log:  slog.Default().With("component", "httpapi"),
	}
}

// RegisterRoutes registers all API routes on the given mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/runs", s.handleListRuns)
	mux.HandleFunc("GET /api/runs/{id}", s.handleGetRun)
	mux.HandleFunc("GET /api/runs/{id}/values", s.handleRunValues)
	mux.HandleFunc("GET /api/runs/{id}/trades", s.handleRunTrades)
}

// Handler returns an http.Handler with CORS middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)
	return corsMiddleware(mux)
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := s.runs.ListRuns(r.Context())
	if err != nil {
		s.log.Error("listing runs", "error", err)
		writeError(w, http.StatusInternalServerError, "listing runs failed")
		return
	}

	resp := RunsResponse{Runs: make([]RunJSON, 0, len(runs))}
	for _, run := range runs {
		resp.Runs = append(resp.Runs, toRunJSON(run))
	}
	writeJSON(w, resp)
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	id, ok := runID(w, r)
	if !ok {
		return
	}

	run, err := s.runs.GetRun(r.Context(), id)
	if errors.Is(err, sql.ErrNoRows) {
		writeError(w, http.StatusNotFound, "run not found")
		return
	}
	if err != nil {
		s.log.Error("reading run", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "reading run failed")
		return
	}
	writeJSON(w, toRunJSON(run))
}

func (s *Server) handleRunValues(w http.ResponseWriter, r *http.Request) {
	id, ok := runID(w, r)
	if !ok {
		return
	}

	series := r.URL.Query().Get("series")
	if series == "" {
		series = store.SeriesPortfolio
	}
	if series != store.SeriesPortfolio && series != store.SeriesBenchmark {
		writeError(w, http.StatusBadRequest, "unknown series "+series)
		return
	}

	points, err := s.runs.RunValues(r.Context(), id, series)
	if err != nil {
		s.log.Error("reading run values", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "reading values failed")
		return
	}

	resp := ValuesResponse{RunID: id, Series: series, Points: make([]ValuePointJSON, 0, len(points))}
	for _, p := range points {
		resp.Points = append(resp.Points, ValuePointJSON{
			Date:  p.Date.Format(time.DateOnly),
			Value: p.Value,
		})
	}
	writeJSON(w, resp)
}

func (s *Server) handleRunTrades(w http.ResponseWriter, r *http.Request) {
	id, ok := runID(w, r)
	if !ok {
		return
	}

	trades, err := s.runs.RunTrades(r.Context(), id)
	if err != nil {
		s.log.Error("reading run trades", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "reading trades failed")
		return
	}

	resp := TradesResponse{RunID: id, Trades: make([]TradeJSON, 0, len(trades))}
	for _, t := range trades {
		resp.Trades = append(resp.Trades, TradeJSON{
			Date:     t.Date.Format(time.DateOnly),
			Symbol:   t.Symbol,
			Action:   string(t.Action),
			Quantity: t.Quantity,
			Price:    t.Price,
			Costs:    t.Costs,
		})
	}
	writeJSON(w, resp)
}

func toRunJSON(r store.RunSummary) RunJSON {
	j := RunJSON{
		ID:             r.ID,
		CreatedAt:      r.CreatedAt.Format(time.RFC3339),
		StartDate:      r.StartDate.Format(time.DateOnly),
		EndDate:        r.EndDate.Format(time.DateOnly),
		InitialCapital: r.InitialCapital,
		FinalValue:     r.FinalValue,
		TotalReturn:    r.TotalReturn,
		MaxDrawdown:    r.MaxDrawdown,
		TradeCount:     r.TradeCount,
	}
	if r.SharpeDefined {
		sharpe := r.Sharpe
		j.Sharpe = &sharpe
	}
	return j
}

// runID parses the {id} path value, writing a 400 on failure.
func runID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid run id")
		return 0, false
	}
	return id, true
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encoding JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
