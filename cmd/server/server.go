package main

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/moznion/go-optional"
	"github.com/quantvis/strata/internal/calendar"
	"github.com/quantvis/strata/internal/engine"
	"github.com/quantvis/strata/internal/history"
	"github.com/quantvis/strata/internal/indicator"
	"github.com/quantvis/strata/internal/logger"
	"github.com/quantvis/strata/internal/marketdata"
	"github.com/quantvis/strata/internal/metrics"
	"github.com/quantvis/strata/internal/store"
	"github.com/quantvis/strata/internal/types"
	"github.com/quantvis/strata/pkg/errors"
	"go.uber.org/zap"
)

// Server exposes the backtest engine and strategy storage over HTTP for the
// dashboard.
type Server struct {
	backtest   *engine.Backtest
	provider   marketdata.Provider
	strategies store.StrategyStore
	history    history.Store
	logger     *logger.Logger
}

// NewServer wires a server over its collaborators.
func NewServer(provider marketdata.Provider, registry indicator.Registry, cal calendar.Calendar, strategies store.StrategyStore, runs history.Store, logger *logger.Logger) *Server {
	return &Server{
		backtest:   engine.NewBacktest(provider, registry, cal, runs, logger),
		provider:   provider,
		strategies: strategies,
		history:    runs,
		logger:     logger,
	}
}

// Router builds the HTTP route table.
func (s *Server) Router() *mux.Router {
	router := mux.NewRouter()

	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/backtest", s.handleRunBacktest).Methods(http.MethodPost)
	api.HandleFunc("/strategies", s.handleListStrategies).Methods(http.MethodGet)
	api.HandleFunc("/strategies", s.handleSaveStrategy).Methods(http.MethodPost)
	api.HandleFunc("/strategies/schema", s.handleSchema).Methods(http.MethodGet)
	api.HandleFunc("/strategies/{id}", s.handleGetStrategy).Methods(http.MethodGet)
	api.HandleFunc("/strategies/{id}", s.handleDeleteStrategy).Methods(http.MethodDelete)
	api.HandleFunc("/strategies/{id}/runs", s.handleListRuns).Methods(http.MethodGet)
	api.HandleFunc("/runs/{id}", s.handleGetRun).Methods(http.MethodGet)
	api.HandleFunc("/assets", s.handleListAssets).Methods(http.MethodGet)
	api.HandleFunc("/assets/{asset}/range", s.handleAssetRange).Methods(http.MethodGet)

	router.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	return router
}

// backtestRequest is the POST /backtest payload: a full strategy document
// plus the run parameters.
type backtestRequest struct {
	Strategy json.RawMessage  `json:"strategy"`
	Config   engine.RunConfig `json:"config"`
}

func (s *Server) handleRunBacktest(w http.ResponseWriter, r *http.Request) {
	var request backtestRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidParameter, "invalid request body", err))
		return
	}

	strategy, err := types.ParseVisualStrategy(request.Strategy)
	if err != nil {
		s.writeError(w, err)
		return
	}

	if request.Config.InitialCapital == 0 {
		request.Config = engine.DefaultConfig()
	}

	result, err := s.backtest.Run(r.Context(), strategy, request.Config, optional.None[engine.ProgressCallback]())
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleSaveStrategy(w http.ResponseWriter, r *http.Request) {
	var payload json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidParameter, "invalid request body", err))
		return
	}

	strategy, err := types.ParseVisualStrategy(payload)
	if err != nil {
		s.writeError(w, err)
		return
	}

	if err := s.strategies.SaveStrategy(r.Context(), strategy); err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, strategy)
}

func (s *Server) handleListStrategies(w http.ResponseWriter, r *http.Request) {
	strategies, err := s.strategies.ListStrategies(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}

	if strategies == nil {
		strategies = []types.VisualStrategy{}
	}

	s.writeJSON(w, http.StatusOK, strategies)
}

func (s *Server) handleGetStrategy(w http.ResponseWriter, r *http.Request) {
	strategy, err := s.strategies.GetStrategy(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, strategy)
}

func (s *Server) handleDeleteStrategy(w http.ResponseWriter, r *http.Request) {
	if err := s.strategies.DeleteStrategy(r.Context(), mux.Vars(r)["id"]); err != nil {
		s.writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSchema(w http.ResponseWriter, _ *http.Request) {
	schema := (&types.VisualStrategy{}).GenerateSchema()
	s.writeJSON(w, http.StatusOK, schema)
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := s.history.ListRuns(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, err)
		return
	}

	if runs == nil {
		runs = []types.BacktestResult{}
	}

	s.writeJSON(w, http.StatusOK, runs)
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	run, err := s.history.GetRun(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, run)
}

func (s *Server) handleListAssets(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, types.AllAssets())
}

func (s *Server) handleAssetRange(w http.ResponseWriter, r *http.Request) {
	asset := types.Asset(mux.Vars(r)["asset"])
	if !asset.IsValid() {
		s.writeError(w, errors.Newf(errors.ErrCodeInvalidParameter, "unknown asset %s", asset))
		return
	}

	dateRange, err := s.provider.GetDateRange(r.Context(), asset)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, dateRange)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Warn("failed to write response", zap.Error(err))
	}
}

// writeError maps the error taxonomy onto HTTP statuses: validation errors
// are the client's fault, missing data is 404, everything else is a 500.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError

	switch {
	case errors.HasCode(err, errors.ErrCodeStrategyNotFound),
		errors.HasCode(err, errors.ErrCodeDataNotFound):
		status = http.StatusNotFound
	case errors.IsValidation(err):
		status = http.StatusBadRequest
	case errors.HasCode(err, errors.ErrCodeBacktestCancelled):
		status = http.StatusRequestTimeout
	}

	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", zap.Error(err))
	}

	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}
