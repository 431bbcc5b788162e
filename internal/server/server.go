// Package server exposes the mortgage simulator over HTTP.
package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/iwvelando/mortgage-simulator/internal/config"
	"github.com/iwvelando/mortgage-simulator/internal/simulation"
	"github.com/iwvelando/mortgage-simulator/pkg/constants"
	"github.com/iwvelando/mortgage-simulator/pkg/ledger"
	"github.com/iwvelando/mortgage-simulator/pkg/mortgage"
	"github.com/iwvelando/mortgage-simulator/pkg/output"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type handler struct {
	logger        *zap.Logger
	maxUploadSize int64
	maxPeriods    int
	version       string
}

// Options configures NewHandler.
type Options struct {
	MaxUploadSize  int64
	MaxPeriods     int
	AllowedOrigins []string
	Version        string
}

// NewHandler constructs the HTTP handler that serves the simulation API.
func NewHandler(logger *zap.Logger, opts Options) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.MaxUploadSize <= 0 {
		opts.MaxUploadSize = constants.DefaultMaxUploadSizeBytes
	}
	if opts.MaxPeriods <= 0 {
		opts.MaxPeriods = constants.DefaultMaxPeriods
	}
	version := strings.TrimSpace(opts.Version)
	if version == "" {
		version = "dev"
	}

	h := &handler{
		logger:        logger,
		maxUploadSize: opts.MaxUploadSize,
		maxPeriods:    opts.MaxPeriods,
		version:       version,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(h.logRequests)
	if len(opts.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: opts.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type"},
		}))
	}

	r.Route("/api", func(r chi.Router) {
		// YAML configuration file upload
		r.Post("/simulate", h.handleSimulate)
		// JSON configuration from an editor
		r.Post("/editor/simulate", h.handleSimulateEditor)
		r.Get("/version", h.handleVersion)
	})

	return r
}

type simulateResponse struct {
	Simulations []simulationResult `json:"simulations"`
	CSV         string             `json:"csv"`
	Warnings    []string           `json:"warnings,omitempty"`
	Duration    string             `json:"duration"`
	ConfigYAML  string             `json:"configYaml,omitempty"`
}

type simulationResult struct {
	RunID   string           `json:"runId"`
	Summary mortgage.Summary `json:"summary"`
	Rows    []ledger.Record  `json:"rows"`
	Ledger  string           `json:"ledger"`
}

func (h *handler) handleSimulate(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleSimulate"
	start := time.Now()

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("upload exceeds limit of %d bytes", h.maxUploadSize), op)
			return
		}
		h.respondError(w, http.StatusBadRequest, fmt.Sprintf("failed to parse upload: %v", err), op)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "missing configuration file", op)
		return
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			h.logger.Warn("failed to close uploaded file",
				zap.String("op", op),
				zap.Error(closeErr),
			)
		}
	}()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, file); err != nil {
		h.respondError(w, http.StatusInternalServerError, fmt.Sprintf("failed to read configuration: %v", err), op)
		return
	}

	h.runSimulations(w, buf.Bytes(), start, op)
}

func (h *handler) handleSimulateEditor(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleSimulateEditor"
	start := time.Now()

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	var payload map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.respondError(w, http.StatusBadRequest, fmt.Sprintf("failed to decode configuration: %v", err), op)
		return
	}

	configPayload := payload
	if rawConfig, ok := payload["config"]; ok {
		cfgMap, ok := rawConfig.(map[string]interface{})
		if !ok {
			h.respondError(w, http.StatusBadRequest, "invalid config payload: expected object", op)
			return
		}
		configPayload = cfgMap
	}

	configBytes, err := yaml.Marshal(configPayload)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, fmt.Sprintf("failed to encode configuration: %v", err), op)
		return
	}

	h.runSimulations(w, configBytes, start, op)
}

func (h *handler) handleVersion(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"version": h.version})
}

func (h *handler) runSimulations(w http.ResponseWriter, configBytes []byte, start time.Time, op string) {
	cfg, err := config.LoadConfigurationFromReader(bytes.NewReader(configBytes))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	active := cfg.ActiveSimulations()
	if len(active) == 0 {
		h.respondError(w, http.StatusBadRequest, "no active simulations configured", op)
		return
	}
	for _, sim := range active {
		if sim.Periods > h.maxPeriods {
			h.respondError(w, http.StatusBadRequest,
				fmt.Sprintf("simulation %s: periods %d exceeds the limit of %d", sim.Name, sim.Periods, h.maxPeriods), op)
			return
		}
	}

	response := simulateResponse{
		Warnings: cfg.ValidateConfiguration(),
	}

	var results []simulation.Result
	for _, sim := range active {
		var text bytes.Buffer
		textSink, err := ledger.NewWriterSink(&text)
		if err != nil {
			h.respondError(w, http.StatusInternalServerError, err.Error(), op)
			return
		}
		memory := &ledger.MemorySink{}

		result, err := simulation.RunSimulation(h.logger, sim, ledger.Tee(memory, textSink), io.Discard)
		if err != nil {
			status := http.StatusBadRequest
			if errors.Is(err, mortgage.ErrIOFailure) {
				status = http.StatusInternalServerError
			}
			h.respondError(w, status, err.Error(), op)
			return
		}

		results = append(results, result)
		response.Simulations = append(response.Simulations, simulationResult{
			RunID:   result.RunID,
			Summary: result.Summary,
			Rows:    memory.Records,
			Ledger:  text.String(),
		})
	}

	if normalized, err := yaml.Marshal(cfg); err == nil {
		response.ConfigYAML = string(normalized)
	} else {
		h.logger.Warn("failed to marshal normalized configuration",
			zap.String("op", op),
			zap.Error(err),
		)
	}

	elapsed := time.Since(start)
	response.CSV = output.CsvString(results)
	response.Duration = elapsed.String()

	h.logger.Info("simulations computed",
		zap.String("op", op),
		zap.Int("simulations", len(response.Simulations)),
		zap.Duration("duration", elapsed),
	)

	h.writeJSON(w, http.StatusOK, response)
}

func (h *handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		h.logger.Debug("request served",
			zap.String("op", "server.logRequests"),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

func (h *handler) respondError(w http.ResponseWriter, status int, msg string, op string) {
	h.logger.Error("simulation request failed",
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
