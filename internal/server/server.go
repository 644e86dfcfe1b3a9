// Package server serves the calculator web UI and its JSON API.
package server

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/iwvelando/mortgage-calculator/internal/cache"
	"github.com/iwvelando/mortgage-calculator/internal/estimator"
	"github.com/iwvelando/mortgage-calculator/internal/report"
	"github.com/iwvelando/mortgage-calculator/pkg/constants"
	"github.com/iwvelando/mortgage-calculator/pkg/mortgage"
	"github.com/iwvelando/mortgage-calculator/pkg/validation"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

//go:embed static/*
var staticFiles embed.FS

// Handler serves the web UI and calculation API.
type Handler struct {
	logger      *zap.Logger
	maxBodySize int64
	version     string
	locale      string
	delay       time.Duration
	cache       cache.Cache
	limiter     *RateLimiter
	root        http.Handler
}

// NewHandler constructs the HTTP handler that serves the web UI and
// calculation API. resultCache may be nil. Call Close to release the rate
// limiter's background sweep.
func NewHandler(logger *zap.Logger, cfg *Config, version string, resultCache cache.Cache) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}

	trimmedVersion := strings.TrimSpace(version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	h := &Handler{
		logger:      logger,
		maxBodySize: cfg.BodySizeBytes(),
		version:     trimmedVersion,
		locale:      cfg.Locale,
		delay:       cfg.CalculationDelay,
		cache:       resultCache,
	}

	router := mux.NewRouter()
	api := router.PathPrefix("/api").Subrouter()

	var calculate http.Handler = http.HandlerFunc(h.handleCalculate)
	if cfg.RateLimit.Requests > 0 {
		h.limiter = NewRateLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window)
		calculate = h.limiter.Middleware(calculate)
	}
	api.Handle("/calculate", calculate).Methods(http.MethodPost)
	api.HandleFunc("/options", h.handleOptions).Methods(http.MethodGet)
	api.HandleFunc("/version", h.handleVersion).Methods(http.MethodGet)

	// Static assets (web UI)
	sub, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(fmt.Sprintf("failed to prepare embedded static files: %v", err))
	}
	router.NotFoundHandler = staticHandler(http.FileServer(http.FS(sub)))

	var root http.Handler = router
	if len(cfg.AllowedOrigins) > 0 {
		root = cors.New(cors.Options{
			AllowedOrigins: cfg.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost},
			AllowedHeaders: []string{"Content-Type"},
		}).Handler(root)
	}
	h.root = h.logRequests(root)

	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.root.ServeHTTP(w, r)
}

// Close stops background work owned by the handler.
func (h *Handler) Close() {
	if h.limiter != nil {
		h.limiter.Stop()
	}
}

type calculateResponse struct {
	Report   report.Report `json:"report"`
	Cached   bool          `json:"cached"`
	Duration string        `json:"duration"`
}

type optionsResponse struct {
	Terms              []int  `json:"terms"`
	DefaultTerm        int    `json:"defaultTerm"`
	CalculationDelayMs int64  `json:"calculationDelayMs"`
	Locale             string `json:"locale"`
}

func (h *Handler) handleCalculate(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleCalculate"
	start := time.Now()

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBodySize))
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("request exceeds limit of %d bytes", h.maxBodySize), op)
			return
		}
		h.respondError(w, http.StatusBadRequest, fmt.Sprintf("failed to read request: %v", err), op)
		return
	}

	inputs, err := decodeInputs(body)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, fmt.Sprintf("failed to decode inputs: %v", err), op)
		return
	}

	if !validation.CanCalculate(inputs) {
		h.respondError(w, http.StatusBadRequest, estimator.ErrInvalidInputs.Error(), op)
		return
	}
	if err := validation.ValidateTerm(inputs.LoanTermYears); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	breakdown, cached := cache.Lookup(r.Context(), h.cache, h.logger, inputs)
	if err := validation.ValidateResult(breakdown); err != nil {
		h.respondError(w, http.StatusUnprocessableEntity, err.Error(), op)
		return
	}
	elapsed := time.Since(start)

	h.logger.Info("payment computed",
		zap.String("op", op),
		zap.Float64("principal", inputs.Principal()),
		zap.Int("termYears", inputs.LoanTermYears),
		zap.Float64("monthlyPayment", breakdown.MonthlyPayment),
		zap.Bool("cached", cached),
		zap.Duration("duration", elapsed),
	)

	h.writeJSON(w, http.StatusOK, calculateResponse{
		Report:   report.BuildLocalized(h.locale, inputs, breakdown),
		Cached:   cached,
		Duration: elapsed.String(),
	})
}

func (h *Handler) handleOptions(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, optionsResponse{
		Terms:              mortgage.AllowedTerms(),
		DefaultTerm:        constants.DefaultLoanTermYears,
		CalculationDelayMs: h.delay.Milliseconds(),
		Locale:             h.locale,
	})
}

func (h *Handler) handleVersion(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

// decodeInputs reads the four calculator fields. Each may be a JSON number or
// the text a user typed; text is coerced the same way the form does. A missing
// term selects the default; a fractional or out-of-range term is an error.
func decodeInputs(body []byte) (mortgage.LoanInputs, error) {
	in := mortgage.LoanInputs{LoanTermYears: constants.DefaultLoanTermYears}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return in, errors.New("empty request body")
	}

	decoder := json.NewDecoder(bytes.NewReader(trimmed))
	decoder.UseNumber()

	var payload map[string]interface{}
	if err := decoder.Decode(&payload); err != nil {
		return in, err
	}
	if payload == nil {
		return in, errors.New("expected a JSON object")
	}

	in.LoanAmount = coerceFloat(payload[estimator.FieldLoanAmount])
	in.DownPayment = coerceFloat(payload[estimator.FieldDownPayment])
	in.InterestRate = coerceFloat(payload[estimator.FieldInterestRate])
	if term, ok := payload[estimator.FieldLoanTerm]; ok {
		years, err := wholeYears(coerceFloat(term))
		if err != nil {
			return in, err
		}
		in.LoanTermYears = years
	}
	return in, nil
}

// maxTermYears bounds terms before the int conversion; the allowed-term check
// rejects anything past the offered set later.
const maxTermYears = 1000

func wholeYears(value float64) (int, error) {
	if value != math.Trunc(value) {
		return 0, fmt.Errorf("%s must be a whole number of years, got %v", estimator.FieldLoanTerm, value)
	}
	if math.Abs(value) > maxTermYears {
		return 0, fmt.Errorf("%s %v is out of range", estimator.FieldLoanTerm, value)
	}
	return int(value), nil
}

func coerceFloat(value interface{}) float64 {
	switch v := value.(type) {
	case json.Number:
		parsed, err := strconv.ParseFloat(v.String(), 64)
		if err != nil || math.IsInf(parsed, 0) {
			return 0
		}
		return parsed
	case float64:
		return v
	case string:
		return estimator.ParseAmount(v)
	case bool:
		if v {
			return 1
		}
	}
	return 0
}

func (h *Handler) respondError(w http.ResponseWriter, status int, msg string, op string) {
	h.logger.Warn("calculation request failed",
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	writeJSON(w, status, payload, h.logger)
}

// writeJSON encodes payload before committing status, so an unencodable
// payload becomes a 500 with an error body instead of an empty success.
func writeJSON(w http.ResponseWriter, status int, payload interface{}, logger *zap.Logger) {
	data, err := json.Marshal(payload)
	if err != nil {
		if logger != nil {
			logger.Error("failed to encode JSON response",
				zap.String("op", "server.writeJSON"),
				zap.Error(err),
			)
		}
		status = http.StatusInternalServerError
		data = []byte(`{"error":"failed to encode response"}`)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(append(data, '\n')); err != nil && logger != nil {
		logger.Error("failed to write JSON response",
			zap.String("op", "server.writeJSON"),
			zap.Error(err),
		)
	}
}

func retryAfterSeconds(window time.Duration) string {
	seconds := int64(math.Ceil(window.Seconds()))
	if seconds < 1 {
		seconds = 1
	}
	return strconv.FormatInt(seconds, 10)
}

// staticHandler serves the UI for any path no API route claims.
func staticHandler(files http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}
		files.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(status int) {
	s.status = status
	s.ResponseWriter.WriteHeader(status)
}

func (h *Handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)
		h.logger.Debug("request served",
			zap.String("op", "server.logRequests"),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", recorder.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}
