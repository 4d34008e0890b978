// Package server exposes the evaluation engine, break-even solver and
// snapshot store over HTTP.
package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/iwvelando/project-finance/internal/charts"
	"github.com/iwvelando/project-finance/internal/config"
	"github.com/iwvelando/project-finance/internal/forecast"
	"github.com/iwvelando/project-finance/internal/optimizer"
	"github.com/iwvelando/project-finance/internal/snapshot"
	"github.com/iwvelando/project-finance/pkg/constants"
	"github.com/iwvelando/project-finance/pkg/format"
	"github.com/iwvelando/project-finance/pkg/optimization"
	"github.com/iwvelando/project-finance/pkg/output"
	"github.com/iwvelando/project-finance/pkg/validation"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type handler struct {
	logger        *zap.Logger
	maxUploadSize int64
	version       string
	store         snapshot.Store
	metrics       *metrics
}

type metrics struct {
	requests    *prometheus.CounterVec
	evaluations prometheus.Counter
	breakEvens  *prometheus.CounterVec
	duration    prometheus.Histogram
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "project_finance_requests_total",
			Help: "API requests by endpoint and status code.",
		}, []string{"endpoint", "code"}),
		evaluations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "project_finance_evaluations_total",
			Help: "Completed forecast evaluations.",
		}),
		breakEvens: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "project_finance_breakeven_solves_total",
			Help: "Break-even solves by convergence.",
		}, []string{"converged"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "project_finance_evaluation_duration_seconds",
			Help:    "Time spent projecting and aggregating components.",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
	}
	reg.MustRegister(m.requests, m.evaluations, m.breakEvens, m.duration)
	return m
}

// NewHandler constructs the HTTP handler that serves the evaluation API. A
// nil store disables the snapshot endpoints.
func NewHandler(logger *zap.Logger, maxUploadSize int64, version string, store snapshot.Store) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	if maxUploadSize <= 0 {
		maxUploadSize = constants.DefaultMaxUploadSizeBytes
	}

	trimmedVersion := strings.TrimSpace(version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	registry := prometheus.NewRegistry()
	h := &handler{
		logger:        logger,
		maxUploadSize: maxUploadSize,
		version:       trimmedVersion,
		store:         store,
		metrics:       newMetrics(registry),
	}

	mux := http.NewServeMux()

	// Evaluation of an edited assumption set
	mux.HandleFunc("/api/evaluate", h.handleEvaluate)

	// Config serialization endpoint for editor downloads
	mux.HandleFunc("/api/editor/export", h.handleConfigExport)

	// Break-even revenue for one component
	mux.HandleFunc("/api/breakeven", h.handleBreakEven)

	// Named snapshots
	mux.HandleFunc("GET /api/snapshots", h.handleSnapshotList)
	mux.HandleFunc("GET /api/snapshots/{name}", h.handleSnapshotGet)
	mux.HandleFunc("PUT /api/snapshots/{name}", h.handleSnapshotPut)
	mux.HandleFunc("DELETE /api/snapshots/{name}", h.handleSnapshotDelete)

	// Version endpoint for UI metadata
	mux.HandleFunc("/api/version", h.handleVersion)

	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	return mux
}

type evaluateRequest struct {
	Config  map[string]interface{} `json:"config"`
	Options evaluateOptions        `json:"options"`
}

type evaluateOptions struct {
	Currency string `json:"currency"`
}

type evaluateResponse struct {
	Currency   string                     `json:"currency"`
	FXRate     float64                    `json:"fxRate"`
	Components []output.KPI               `json:"components"`
	Combined   output.KPI                 `json:"combined"`
	Datasets   map[string]charts.Datasets `json:"datasets"`
	BreakEven  []optimization.Summary     `json:"breakEven,omitempty"`
	CSV        string                     `json:"csv"`
	Warnings   []string                   `json:"warnings,omitempty"`
	Duration   string                     `json:"duration"`
	ConfigYAML string                     `json:"configYaml,omitempty"`
}

type breakEvenRequest struct {
	Config    map[string]interface{} `json:"config"`
	Component string                 `json:"component"`
	Metric    string                 `json:"metric"`
	Target    *float64               `json:"target"`
	Max       *float64               `json:"max"`
}

type breakEvenResponse struct {
	Summary  optimization.Summary `json:"summary"`
	Warnings []string             `json:"warnings,omitempty"`
}

func (h *handler) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleEvaluate"
	if r.Method != http.MethodPost {
		h.methodNotAllowed(w, op)
		return
	}

	start := time.Now()

	var req evaluateRequest
	if !h.decodeBody(w, r, &req, op) {
		return
	}
	if err := validation.ValidateCurrency(req.Options.Currency); err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	cfg, configBytes, warnings, err := h.loadConfig(req.Config)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	currency := cfg.Output.Currency
	if req.Options.Currency != "" {
		currency = req.Options.Currency
	}
	fx, err := format.NewFXPresenter(currency, cfg.Common.FXRate)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	computeStart := time.Now()
	result, err := forecast.GetForecast(h.logger, *cfg)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to compute forecast: %v", err), op)
		return
	}
	h.metrics.duration.Observe(time.Since(computeStart).Seconds())
	h.metrics.evaluations.Inc()

	var summaries []optimization.Summary
	if len(cfg.BreakEven) > 0 {
		runner, err := optimizer.NewRunner(h.logger, cfg)
		if err != nil {
			h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to initialize break-even solver: %v", err), op)
			return
		}
		breakEven, err := runner.Run()
		if err != nil {
			h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("break-even execution failed: %v", err), op)
			return
		}
		summaries = breakEven.Summaries
		for _, s := range summaries {
			h.metrics.breakEvens.WithLabelValues(fmt.Sprint(s.Converged)).Inc()
		}
	}

	csv, err := output.CsvString(output.ScheduleRows(result, fx))
	if err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, fmt.Sprintf("failed to render csv: %v", err), op)
		return
	}

	datasets := charts.All(result)
	for key, d := range datasets {
		datasets[key] = d.Convert(fx.Convert)
	}

	components, combined := output.KPIs(result, fx)
	elapsed := time.Since(start)
	response := evaluateResponse{
		Currency:   fx.Currency(),
		FXRate:     fx.Rate(),
		Components: components,
		Combined:   combined,
		Datasets:   datasets,
		BreakEven:  summaries,
		CSV:        csv,
		Warnings:   warnings,
		Duration:   elapsed.String(),
		ConfigYAML: string(configBytes),
	}

	h.logger.Info("evaluation computed",
		zap.String("op", op),
		zap.Int("components", len(components)),
		zap.Int("horizon", result.Horizon()),
		zap.Int("breakEven", len(summaries)),
		zap.Duration("duration", elapsed),
	)

	h.writeJSON(w, http.StatusOK, "evaluate", response)
}

func (h *handler) handleBreakEven(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleBreakEven"
	if r.Method != http.MethodPost {
		h.methodNotAllowed(w, op)
		return
	}

	var req breakEvenRequest
	if !h.decodeBody(w, r, &req, op) {
		return
	}

	cfg, _, warnings, err := h.loadConfig(req.Config)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	runner, err := optimizer.NewRunner(h.logger, cfg)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to initialize break-even solver: %v", err), op)
		return
	}
	summary, err := runner.Solve(config.BreakEvenConfig{
		Component: req.Component,
		Metric:    req.Metric,
		Target:    req.Target,
		Max:       req.Max,
	})
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, config.ErrInvalidComponent) {
			status = http.StatusNotFound
		}
		h.respondErrorWithOp(w, status, err.Error(), op)
		return
	}
	h.metrics.breakEvens.WithLabelValues(fmt.Sprint(summary.Converged)).Inc()

	h.writeJSON(w, http.StatusOK, "breakeven", breakEvenResponse{Summary: summary, Warnings: warnings})
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.methodNotAllowed(w, "server.handleVersion")
		return
	}

	h.writeJSON(w, http.StatusOK, "version", map[string]string{
		"version": h.version,
	})
}

func (h *handler) handleConfigExport(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleConfigExport"
	if r.Method != http.MethodPost {
		h.methodNotAllowed(w, op)
		return
	}

	var payload map[string]interface{}
	if !h.decodeBody(w, r, &payload, op) {
		return
	}
	if payload == nil {
		payload = make(map[string]interface{})
	}

	yamlBytes, err := marshalOrderedConfigYAML(payload)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to encode configuration: %v", err), op)
		return
	}

	h.writeJSON(w, http.StatusOK, "export", map[string]string{
		"configYaml": string(yamlBytes),
	})
}

func (h *handler) handleSnapshotList(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleSnapshotList"
	if !h.requireStore(w, op) {
		return
	}

	infos, err := h.store.List(r.Context())
	if err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, err.Error(), op)
		return
	}
	if infos == nil {
		infos = []snapshot.Info{}
	}
	h.writeJSON(w, http.StatusOK, "snapshots", map[string]interface{}{"snapshots": infos})
}

func (h *handler) handleSnapshotGet(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleSnapshotGet"
	if !h.requireStore(w, op) {
		return
	}

	snap, err := h.store.Load(r.Context(), r.PathValue("name"))
	if err != nil {
		h.respondStoreError(w, err, op)
		return
	}
	h.writeJSON(w, http.StatusOK, "snapshots", snap)
}

func (h *handler) handleSnapshotPut(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleSnapshotPut"
	if !h.requireStore(w, op) {
		return
	}

	name := r.PathValue("name")
	if err := validation.ValidateSnapshotName(name); err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	var req evaluateRequest
	if !h.decodeBody(w, r, &req, op) {
		return
	}
	cfg, _, warnings, err := h.loadConfig(req.Config)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	info, err := h.store.Save(r.Context(), name, *cfg)
	if err != nil {
		h.respondStoreError(w, err, op)
		return
	}
	h.writeJSON(w, http.StatusOK, "snapshots", map[string]interface{}{
		"snapshot": info,
		"warnings": warnings,
	})
}

func (h *handler) handleSnapshotDelete(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleSnapshotDelete"
	if !h.requireStore(w, op) {
		return
	}

	if err := h.store.Delete(r.Context(), r.PathValue("name")); err != nil {
		h.respondStoreError(w, err, op)
		return
	}
	h.metrics.requests.WithLabelValues("snapshots", fmt.Sprint(http.StatusNoContent)).Inc()
	w.WriteHeader(http.StatusNoContent)
}

// loadConfig turns an editor payload into a clamped configuration. Missing
// values fall back to the baseline defaults.
func (h *handler) loadConfig(payload map[string]interface{}) (*config.Configuration, []byte, []string, error) {
	if payload == nil {
		payload = make(map[string]interface{})
	}
	configBytes, err := yaml.Marshal(payload)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to encode configuration: %w", err)
	}

	cfg, err := config.LoadConfigurationFromReader(bytes.NewReader(configBytes))
	if err != nil {
		return nil, nil, nil, err
	}

	warnings := cfg.ClampAssumptions()
	warnings = append(warnings, cfg.ValidateConfiguration()...)
	return cfg, configBytes, warnings, nil
}

func (h *handler) decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}, op string) bool {
	body := http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		var maxBytesErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxBytesErr):
			h.respondErrorWithOp(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("request exceeds limit of %d bytes", h.maxUploadSize), op)
		case errors.Is(err, io.EOF):
			h.respondErrorWithOp(w, http.StatusBadRequest, "request body is empty", op)
		default:
			h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to decode request: %v", err), op)
		}
		return false
	}
	return true
}

func (h *handler) requireStore(w http.ResponseWriter, op string) bool {
	if h.store == nil {
		h.respondErrorWithOp(w, http.StatusServiceUnavailable, "snapshot store is not configured", op)
		return false
	}
	return true
}

func (h *handler) respondStoreError(w http.ResponseWriter, err error, op string) {
	if errors.Is(err, snapshot.ErrNotFound) {
		h.respondErrorWithOp(w, http.StatusNotFound, err.Error(), op)
		return
	}
	h.respondErrorWithOp(w, http.StatusInternalServerError, err.Error(), op)
}

func (h *handler) methodNotAllowed(w http.ResponseWriter, op string) {
	h.respondErrorWithOp(w, http.StatusMethodNotAllowed, http.StatusText(http.StatusMethodNotAllowed), op)
}

func marshalOrderedConfigYAML(payload map[string]interface{}) ([]byte, error) {
	items := make([]orderedItem, 0, len(payload))
	seen := make(map[string]struct{})

	for _, key := range []string{"common", "components", "breakEven", "output", "logging"} {
		if value, ok := payload[key]; ok {
			items = append(items, orderedItem{key: key, value: value})
			seen[key] = struct{}{}
		}
	}

	remainingKeys := make([]string, 0, len(payload))
	for key := range payload {
		if _, already := seen[key]; already {
			continue
		}
		remainingKeys = append(remainingKeys, key)
	}
	sort.Strings(remainingKeys)
	for _, key := range remainingKeys {
		items = append(items, orderedItem{key: key, value: payload[key]})
	}

	return yaml.Marshal(orderedConfig{items: items})
}

type orderedConfig struct {
	items []orderedItem
}

type orderedItem struct {
	key   string
	value interface{}
}

func (o orderedConfig) MarshalYAML() (interface{}, error) {
	mapNode := &yaml.Node{
		Kind: yaml.MappingNode,
		Tag:  "!!map",
	}

	for _, item := range o.items {
		keyNode := &yaml.Node{
			Kind:  yaml.ScalarNode,
			Tag:   "!!str",
			Value: item.key,
		}
		valueNode := &yaml.Node{}
		if err := valueNode.Encode(item.value); err != nil {
			return nil, err
		}
		mapNode.Content = append(mapNode.Content, keyNode, valueNode)
	}

	return mapNode, nil
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, status int, msg string, op string) {
	h.logger.Error("request failed",
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	endpoint := strings.TrimPrefix(op, "server.handle")
	h.writeJSON(w, status, strings.ToLower(endpoint), map[string]string{"error": msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, endpoint string, payload interface{}) {
	h.metrics.requests.WithLabelValues(endpoint, fmt.Sprint(status)).Inc()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.String("op", "server.writeJSON"), zap.Error(err))
	}
}
