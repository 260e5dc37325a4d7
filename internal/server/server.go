package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/iwvelando/carcost/internal/comparison"
	"github.com/iwvelando/carcost/internal/config"
	"github.com/iwvelando/carcost/internal/metrics"
	"github.com/iwvelando/carcost/internal/optimizer"
	"github.com/iwvelando/carcost/internal/state"
	"github.com/iwvelando/carcost/internal/tracing"
	"github.com/iwvelando/carcost/pkg/constants"
	"github.com/iwvelando/carcost/pkg/finance"
	"github.com/iwvelando/carcost/pkg/loans"
	"github.com/iwvelando/carcost/pkg/optimization"
	"github.com/iwvelando/carcost/pkg/output"
	"github.com/iwvelando/carcost/pkg/tax"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type handler struct {
	logger        *zap.Logger
	store         *state.Store
	metrics       *metrics.Metrics
	maxUploadSize int64
	version       string
}

// NewHandler constructs the HTTP handler serving the calculator API. A nil
// store starts from the default state and nil metrics get a fresh registry.
func NewHandler(logger *zap.Logger, store *state.Store, m *metrics.Metrics, maxUploadSize int64, version string) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if store == nil {
		store = state.NewStore(nil)
	}
	if m == nil {
		m = metrics.New()
	}
	if maxUploadSize <= 0 {
		maxUploadSize = constants.DefaultMaxUploadSizeBytes
	}

	trimmedVersion := strings.TrimSpace(version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	h := &handler{
		logger:        logger,
		store:         store,
		metrics:       m,
		maxUploadSize: maxUploadSize,
		version:       trimmedVersion,
	}

	mux := http.NewServeMux()

	// Stateless calculations over a posted configuration
	h.route(mux, "POST /api/compare", h.handleCompare)
	h.route(mux, "POST /api/optimize", h.handleOptimize)
	h.route(mux, "POST /api/schedule", h.handleSchedule)
	h.route(mux, "POST /api/export", h.handleExport)

	// Share links
	h.route(mux, "POST /api/share/encode", h.handleShareEncode)
	h.route(mux, "POST /api/share/decode", h.handleShareDecode)

	// Saved state
	h.route(mux, "GET /api/state", h.handleGetState)
	h.route(mux, "PUT /api/state", h.handlePutState)
	h.route(mux, "POST /api/state/cars", h.handleAddCar)
	h.route(mux, "POST /api/state/cars/undo", h.handleUndoRemoveCar)
	h.route(mux, "DELETE /api/state/cars/{id}", h.handleRemoveCar)

	// Metadata
	h.route(mux, "GET /api/provinces", h.handleProvinces)
	h.route(mux, "GET /api/version", h.handleVersion)

	mux.Handle("GET /metrics", promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{}))

	return mux
}

// route registers fn under pattern wrapped in a request span and metrics.
func (h *handler) route(mux *http.ServeMux, pattern string, fn http.HandlerFunc) {
	mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx, span := tracing.Tracer().Start(r.Context(), pattern,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.method", r.Method),
				attribute.String("http.target", r.URL.Path),
			),
		)
		defer span.End()

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		fn(rec, r.WithContext(ctx))

		span.SetAttributes(attribute.Int("http.status_code", rec.status))
		if rec.status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(rec.status))
		}
		h.metrics.Requests.WithLabelValues(pattern, strconv.Itoa(rec.status)).Inc()
		h.metrics.RequestDuration.WithLabelValues(pattern).Observe(time.Since(start).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

type compareResponse struct {
	Rows          []comparison.Row       `json:"rows"`
	Cheapest      *cheapestRow           `json:"cheapest,omitempty"`
	CSV           string                 `json:"csv"`
	Warnings      []string               `json:"warnings,omitempty"`
	Duration      string                 `json:"duration"`
	Config        json.RawMessage        `json:"config,omitempty"`
	Optimizations []optimization.Summary `json:"optimizations,omitempty"`
}

type cheapestRow struct {
	CarID       string  `json:"carId"`
	ScenarioID  string  `json:"scenarioId"`
	CostPerYear float64 `json:"costPerYear"`
}

type optimizeRequest struct {
	Config  json.RawMessage `json:"config"`
	Options struct {
		CarID     string `json:"carId"`
		Objective string `json:"objective"`
	} `json:"options"`
}

type scheduleRequest struct {
	Config     json.RawMessage `json:"config"`
	CarID      string          `json:"carId"`
	ScenarioID string          `json:"scenarioId"`
}

type scheduleResponse struct {
	Financing  loans.Financing            `json:"financing"`
	Payments   []loans.Payment            `json:"payments"`
	Investment []finance.InvestmentPeriod `json:"investment,omitempty"`
}

type shareTokenPayload struct {
	Token string `json:"token"`
}

type provinceResponse struct {
	tax.ProvinceTaxInfo
	CombinedRate float64 `json:"combinedRate"`
}

func (h *handler) handleCompare(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleCompare"
	start := time.Now()

	body, ok := h.readBody(w, r, op)
	if !ok {
		return
	}
	cfg, err := config.LoadConfigurationFromBytes(body)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	h.respondComparison(w, cfg, nil, start, op)
}

func (h *handler) handleOptimize(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleOptimize"
	start := time.Now()

	var payload optimizeRequest
	if !h.decodeJSON(w, r, &payload, op) {
		return
	}
	cfg, ok := h.loadEmbeddedConfig(w, payload.Config, op)
	if !ok {
		return
	}

	cfg.Optimizer.CarID = payload.Options.CarID
	if payload.Options.Objective != "" {
		cfg.Optimizer.Objective = payload.Options.Objective
	}

	runner, err := optimizer.NewRunner(h.logger, cfg)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, fmt.Sprintf("failed to initialize optimizer: %v", err), op)
		return
	}
	result, err := runner.Run()
	h.metrics.ObserveCalculation("optimize", err)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, fmt.Sprintf("optimizer execution failed: %v", err), op)
		return
	}
	for _, summaries := range result.Summaries {
		for _, summary := range summaries {
			h.metrics.OptimizerEvaluations.Observe(float64(summary.Evaluations))
		}
	}

	h.respondComparison(w, cfg, result, start, op)
}

func (h *handler) respondComparison(w http.ResponseWriter, cfg *config.Configuration, result *optimizer.Result, start time.Time, op string) {
	warnings := cfg.ValidateConfiguration()

	rows, err := comparison.GetComparison(h.logger, *cfg)
	h.metrics.ObserveCalculation("compare", err)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, fmt.Sprintf("failed to compare cars: %v", err), op)
		return
	}

	response := compareResponse{Rows: rows, Warnings: warnings}
	if response.Rows == nil {
		response.Rows = []comparison.Row{}
	}

	if result != nil && !result.Empty() {
		result.Apply(rows)
		for _, summaries := range result.Summaries {
			response.Optimizations = append(response.Optimizations, summaries...)
		}
		updated, err := json.Marshal(cfg)
		if err != nil {
			h.logger.Warn("failed to marshal optimized configuration",
				zap.String("op", op),
				zap.Error(err),
			)
		} else {
			response.Config = updated
		}
	}

	if best, ok := comparison.Cheapest(rows); ok {
		response.Cheapest = &cheapestRow{
			CarID:       best.CarID,
			ScenarioID:  best.ScenarioID,
			CostPerYear: best.Lifetime.CostPerYear,
		}
	}

	var csvBuf bytes.Buffer
	if err := output.CsvFormat(&csvBuf, rows); err != nil {
		h.logger.Warn("failed to render CSV",
			zap.String("op", op),
			zap.Error(err),
		)
	}
	response.CSV = csvBuf.String()

	elapsed := time.Since(start)
	response.Duration = elapsed.String()

	h.logger.Info("comparison computed",
		zap.String("op", op),
		zap.Int("cars", len(cfg.Cars)),
		zap.Int("rows", len(rows)),
		zap.Duration("duration", elapsed),
	)

	h.writeJSON(w, http.StatusOK, response)
}

func (h *handler) handleSchedule(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleSchedule"

	var payload scheduleRequest
	if !h.decodeJSON(w, r, &payload, op) {
		return
	}
	cfg, ok := h.loadEmbeddedConfig(w, payload.Config, op)
	if !ok {
		return
	}

	financing, payments, err := comparison.Schedule(h.logger, *cfg, payload.CarID, payload.ScenarioID)
	h.metrics.ObserveCalculation("schedule", err)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error(), op)
		return
	}
	if payments == nil {
		payments = []loans.Payment{}
	}

	investment, err := comparison.Investment(h.logger, *cfg, payload.CarID, financing)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	h.writeJSON(w, http.StatusOK, scheduleResponse{Financing: financing, Payments: payments, Investment: investment})
}

func (h *handler) handleExport(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleExport"

	body, ok := h.readBody(w, r, op)
	if !ok {
		return
	}
	cfg, err := config.LoadConfigurationFromBytes(body)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	yamlBytes, err := yaml.Marshal(cfg)
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, fmt.Sprintf("failed to encode configuration: %v", err), op)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"configYaml": string(yamlBytes),
	})
}

func (h *handler) handleShareEncode(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleShareEncode"

	body, ok := h.readBody(w, r, op)
	if !ok {
		return
	}

	var cfg *config.Configuration
	if len(bytes.TrimSpace(body)) == 0 {
		snapshot := h.store.Snapshot()
		cfg = &snapshot
	} else {
		decoded, err := state.Unmarshal(body)
		if err != nil {
			h.respondError(w, http.StatusBadRequest, err.Error(), op)
			return
		}
		cfg = decoded
	}

	token, err := state.EncodeShareToken(cfg)
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, err.Error(), op)
		return
	}
	h.writeJSON(w, http.StatusOK, shareTokenPayload{Token: token})
}

func (h *handler) handleShareDecode(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleShareDecode"

	var payload shareTokenPayload
	if !h.decodeJSON(w, r, &payload, op) {
		return
	}

	cfg, err := state.DecodeShareToken(payload.Token)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error(), op)
		return
	}
	h.writeJSON(w, http.StatusOK, cfg)
}

func (h *handler) handleGetState(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, h.store.Snapshot())
}

func (h *handler) handlePutState(w http.ResponseWriter, r *http.Request) {
	const op = "server.handlePutState"

	body, ok := h.readBody(w, r, op)
	if !ok {
		return
	}
	cfg, err := state.Unmarshal(body)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	h.store.Replace(cfg)
	h.writeJSON(w, http.StatusOK, h.store.Snapshot())
}

func (h *handler) handleAddCar(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleAddCar"

	if source := strings.TrimSpace(r.URL.Query().Get("duplicate")); source != "" {
		car, err := h.store.DuplicateCar(source)
		if err != nil {
			h.respondStoreError(w, err, op)
			return
		}
		h.writeJSON(w, http.StatusCreated, car)
		return
	}

	h.writeJSON(w, http.StatusCreated, h.store.AddCar())
}

func (h *handler) handleRemoveCar(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleRemoveCar"

	if err := h.store.RemoveCar(r.PathValue("id")); err != nil {
		h.respondStoreError(w, err, op)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) handleUndoRemoveCar(w http.ResponseWriter, _ *http.Request) {
	car, ok := h.store.UndoRemoveCar()
	if !ok {
		h.respondError(w, http.StatusNotFound, "no removed car to restore", "server.handleUndoRemoveCar")
		return
	}
	h.writeJSON(w, http.StatusOK, car)
}

func (h *handler) handleProvinces(w http.ResponseWriter, _ *http.Request) {
	list := tax.Provinces()
	response := make([]provinceResponse, 0, len(list))
	for _, info := range list {
		response = append(response, provinceResponse{ProvinceTaxInfo: info, CombinedRate: info.CombinedRate()})
	}
	h.writeJSON(w, http.StatusOK, response)
}

func (h *handler) handleVersion(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

func (h *handler) readBody(w http.ResponseWriter, r *http.Request, op string) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxUploadSize))
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("request exceeds limit of %d bytes", h.maxUploadSize), op)
			return nil, false
		}
		h.respondError(w, http.StatusBadRequest, fmt.Sprintf("failed to read request: %v", err), op)
		return nil, false
	}
	return body, true
}

func (h *handler) decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}, op string) bool {
	body, ok := h.readBody(w, r, op)
	if !ok {
		return false
	}
	if err := json.Unmarshal(body, v); err != nil {
		h.respondError(w, http.StatusBadRequest, fmt.Sprintf("failed to decode request: %v", err), op)
		return false
	}
	return true
}

func (h *handler) loadEmbeddedConfig(w http.ResponseWriter, raw json.RawMessage, op string) (*config.Configuration, bool) {
	if len(bytes.TrimSpace(raw)) == 0 || string(raw) == "null" {
		h.respondError(w, http.StatusBadRequest, "missing configuration", op)
		return nil, false
	}
	cfg, err := config.LoadConfigurationFromBytes(raw)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error(), op)
		return nil, false
	}
	return cfg, true
}

func (h *handler) respondStoreError(w http.ResponseWriter, err error, op string) {
	status := http.StatusBadRequest
	if errors.Is(err, state.ErrNotFound) {
		status = http.StatusNotFound
	}
	h.respondError(w, status, err.Error(), op)
}

func (h *handler) respondError(w http.ResponseWriter, status int, msg string, op string) {
	h.logger.Error("request failed",
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}
