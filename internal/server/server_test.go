package server

import (
	"bytes"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/iwvelando/mortgage-calculator/internal/cache"
	"github.com/iwvelando/mortgage-calculator/pkg/mathutil"
	"github.com/iwvelando/mortgage-calculator/pkg/testutil"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T, mutate func(*Config), resultCache cache.Cache) *Handler {
	t.Helper()
	cfg := DefaultConfig()
	cfg.RateLimit.Requests = 0
	if mutate != nil {
		mutate(cfg)
	}
	h := NewHandler(zap.NewNop(), cfg, "1.2.3", resultCache)
	t.Cleanup(h.Close)
	return h
}

func postCalculate(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/calculate", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = "192.0.2.1:4321"
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeCalculate(t *testing.T, rr *httptest.ResponseRecorder) calculateResponse {
	t.Helper()
	var resp calculateResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return resp
}

func TestHandleCalculateSuccess(t *testing.T) {
	h := newTestHandler(t, nil, nil)

	rr := postCalculate(t, h, `{"loanAmount": 300000, "downPayment": 60000, "interestRate": 6, "loanTerm": 30}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	resp := decodeCalculate(t, rr)
	if !mathutil.WithinTolerance(resp.Report.Breakdown.MonthlyPayment, 1438.92, 0.01) {
		t.Errorf("MonthlyPayment = %v, expected about 1438.92", resp.Report.Breakdown.MonthlyPayment)
	}
	if resp.Report.MonthlyPayment != "$1,438.92" {
		t.Errorf("formatted monthly payment = %q", resp.Report.MonthlyPayment)
	}
	if resp.Report.LoanToValue != "80.0%" {
		t.Errorf("LoanToValue = %q, expected 80.0%%", resp.Report.LoanToValue)
	}
	if len(resp.Report.Chart) != 2 {
		t.Fatalf("expected two chart segments, got %d", len(resp.Report.Chart))
	}
	if resp.Cached {
		t.Error("expected an uncached result without a cache")
	}
	if resp.Duration == "" {
		t.Error("expected duration in response")
	}
}

func TestHandleCalculateReferenceScenarios(t *testing.T) {
	h := newTestHandler(t, nil, nil)

	for _, sc := range testutil.ReferenceScenarios() {
		t.Run(sc.Name, func(t *testing.T) {
			body, err := json.Marshal(sc.Inputs)
			if err != nil {
				t.Fatalf("failed to encode inputs: %v", err)
			}

			rr := postCalculate(t, h, string(body))
			if rr.Code != http.StatusOK {
				t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
			}

			got := decodeCalculate(t, rr).Report.Breakdown
			if !mathutil.WithinTolerance(got.MonthlyPayment, sc.MonthlyPayment, 0.01) {
				t.Errorf("MonthlyPayment = %.4f, expected %.2f", got.MonthlyPayment, sc.MonthlyPayment)
			}
			if !mathutil.WithinTolerance(got.TotalInterest, sc.TotalInterest, sc.Tolerance) {
				t.Errorf("TotalInterest = %.4f, expected %.2f", got.TotalInterest, sc.TotalInterest)
			}
		})
	}
}

func TestHandleCalculateCoercesText(t *testing.T) {
	h := newTestHandler(t, nil, nil)

	rr := postCalculate(t, h, `{"loanAmount": "100000", "downPayment": "oops", "interestRate": "0", "loanTerm": "15"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	resp := decodeCalculate(t, rr)
	if resp.Report.Inputs.DownPayment != 0 {
		t.Errorf("DownPayment = %v, expected malformed text to become 0", resp.Report.Inputs.DownPayment)
	}
	if resp.Report.Breakdown.TotalInterest != 0 || resp.Report.Breakdown.TotalPayment != 100000 {
		t.Errorf("unexpected zero-rate breakdown: %+v", resp.Report.Breakdown)
	}
	if resp.Report.LoanToValue != "" {
		t.Errorf("LoanToValue = %q, expected it hidden without a down payment", resp.Report.LoanToValue)
	}
}

func TestHandleCalculateDefaultsTerm(t *testing.T) {
	h := newTestHandler(t, nil, nil)

	rr := postCalculate(t, h, `{"loanAmount": 200000, "interestRate": 5}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if got := decodeCalculate(t, rr).Report.Inputs.LoanTermYears; got != 30 {
		t.Errorf("LoanTermYears = %d, expected default 30", got)
	}
}

func TestHandleCalculateRejectsInvalidInputs(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"Empty body", ``},
		{"Malformed JSON", `{"loanAmount": `},
		{"Not an object", `null`},
		{"Zero loan amount", `{"loanAmount": 0, "interestRate": 6, "loanTerm": 30}`},
		{"Typo becomes zero amount", `{"loanAmount": "abc", "interestRate": 6, "loanTerm": 30}`},
		{"Negative rate", `{"loanAmount": 1000, "interestRate": -1, "loanTerm": 30}`},
		{"Zero term", `{"loanAmount": 1000, "interestRate": 6, "loanTerm": 0}`},
		{"Term outside allowed set", `{"loanAmount": 1000, "interestRate": 6, "loanTerm": 40}`},
		{"Fractional term", `{"loanAmount": 1000, "interestRate": 6, "loanTerm": 30.9}`},
		{"Fractional term as text", `{"loanAmount": 1000, "interestRate": 6, "loanTerm": "15.5"}`},
		{"Huge term", `{"loanAmount": 1000, "interestRate": 6, "loanTerm": 1e20}`},
	}

	h := newTestHandler(t, nil, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := postCalculate(t, h, tt.body)
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("expected status 400, got %d: %s", rr.Code, rr.Body.String())
			}
			var resp map[string]string
			if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
				t.Fatalf("failed to decode error response: %v", err)
			}
			if resp["error"] == "" {
				t.Error("expected error message in response")
			}
		})
	}
}

func TestHandleCalculateNonFiniteResult(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"Rate overflows compounding", `{"loanAmount": 100000, "interestRate": 1e6, "loanTerm": 30}`},
		{"Rate vanishes in compounding", `{"loanAmount": 100000, "interestRate": 1e-14, "loanTerm": 30}`},
		{"Total payment overflows", `{"loanAmount": 1e308, "interestRate": 6, "loanTerm": 30}`},
	}

	memory := cache.NewMemory(time.Minute, 0)
	h := newTestHandler(t, nil, memory)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := postCalculate(t, h, tt.body)
			if rr.Code != http.StatusUnprocessableEntity {
				t.Fatalf("expected status 422, got %d: %s", rr.Code, rr.Body.String())
			}
			var resp map[string]string
			if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
				t.Fatalf("failed to decode error response %q: %v", rr.Body.String(), err)
			}
			if resp["error"] != "result is not a finite number" {
				t.Errorf("error = %q, expected the non-finite message", resp["error"])
			}
		})
	}

	if memory.Size() != 0 {
		t.Errorf("cache holds %d entries, expected non-finite results to be skipped", memory.Size())
	}
}

func TestWriteJSONUnencodablePayload(t *testing.T) {
	rr := httptest.NewRecorder()
	writeJSON(rr, http.StatusOK, map[string]float64{"value": math.NaN()}, zap.NewNop())

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", rr.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode error response %q: %v", rr.Body.String(), err)
	}
	if resp["error"] == "" {
		t.Error("expected error message in response")
	}
}

func TestWholeYears(t *testing.T) {
	tests := []struct {
		value    float64
		expected int
		wantErr  bool
	}{
		{30, 30, false},
		{0, 0, false},
		{-15, -15, false},
		{30.9, 0, true},
		{1e20, 0, true},
		{math.NaN(), 0, true},
	}

	for _, tt := range tests {
		got, err := wholeYears(tt.value)
		if (err != nil) != tt.wantErr {
			t.Errorf("wholeYears(%v) error = %v, wantErr %v", tt.value, err, tt.wantErr)
			continue
		}
		if got != tt.expected {
			t.Errorf("wholeYears(%v) = %d, expected %d", tt.value, got, tt.expected)
		}
	}
}

func TestHandleCalculateNegativePrincipalIsPreserved(t *testing.T) {
	h := newTestHandler(t, nil, nil)

	rr := postCalculate(t, h, `{"loanAmount": 100000, "downPayment": 150000, "interestRate": 5, "loanTerm": 15}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	resp := decodeCalculate(t, rr)
	if resp.Report.Breakdown.MonthlyPayment >= 0 {
		t.Errorf("MonthlyPayment = %v, expected negative", resp.Report.Breakdown.MonthlyPayment)
	}
	if len(resp.Report.Warnings) == 0 {
		t.Error("expected a warning about the down payment")
	}
}

func TestHandleCalculateBodyTooLarge(t *testing.T) {
	h := newTestHandler(t, func(cfg *Config) { cfg.SetBodySizeBytes(32) }, nil)

	body := `{"loanAmount": 300000, "downPayment": 60000, "interestRate": 6, "loanTerm": 30}`
	rr := postCalculate(t, h, body)
	if rr.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected status 413, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestHandleCalculateUsesCache(t *testing.T) {
	h := newTestHandler(t, nil, cache.NewMemory(time.Minute, 0))
	body := `{"loanAmount": 300000, "downPayment": 60000, "interestRate": 6, "loanTerm": 30}`

	first := decodeCalculate(t, postCalculate(t, h, body))
	second := decodeCalculate(t, postCalculate(t, h, body))

	if first.Cached {
		t.Error("expected first request to miss the cache")
	}
	if !second.Cached {
		t.Error("expected second request to hit the cache")
	}
	if first.Report.Breakdown != second.Report.Breakdown {
		t.Errorf("cached breakdown %+v differs from computed %+v", second.Report.Breakdown, first.Report.Breakdown)
	}
}

func TestHandleCalculateRateLimited(t *testing.T) {
	h := newTestHandler(t, func(cfg *Config) {
		cfg.RateLimit = RateLimitConfig{Requests: 2, Window: time.Hour}
	}, nil)
	body := `{"loanAmount": 1000, "interestRate": 1, "loanTerm": 15}`

	for i := 0; i < 2; i++ {
		if rr := postCalculate(t, h, body); rr.Code != http.StatusOK {
			t.Fatalf("request %d: expected status 200, got %d", i+1, rr.Code)
		}
	}

	rr := postCalculate(t, h, body)
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("expected status 429, got %d", rr.Code)
	}
	if rr.Header().Get("Retry-After") != "3600" {
		t.Errorf("Retry-After = %q, expected 3600", rr.Header().Get("Retry-After"))
	}
}

func TestHandleCalculateMethodNotAllowed(t *testing.T) {
	h := newTestHandler(t, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/calculate", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected status 405, got %d", rr.Code)
	}
}

func TestHandleOptions(t *testing.T) {
	h := newTestHandler(t, func(cfg *Config) { cfg.CalculationDelay = 250 * time.Millisecond }, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/options", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}

	var resp optionsResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Terms) != 4 || resp.Terms[0] != 15 || resp.Terms[3] != 30 {
		t.Errorf("Terms = %v, expected [15 20 25 30]", resp.Terms)
	}
	if resp.DefaultTerm != 30 {
		t.Errorf("DefaultTerm = %d, expected 30", resp.DefaultTerm)
	}
	if resp.CalculationDelayMs != 250 {
		t.Errorf("CalculationDelayMs = %d, expected 250", resp.CalculationDelayMs)
	}
}

func TestHandleVersion(t *testing.T) {
	h := newTestHandler(t, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/version", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	var resp map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["version"] != "1.2.3" {
		t.Errorf("version = %q, expected 1.2.3", resp["version"])
	}
}

func TestVersionDefaultsToDev(t *testing.T) {
	h := NewHandler(nil, nil, "  ", nil)
	defer h.Close()

	req := httptest.NewRequest(http.MethodGet, "/api/version", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if !strings.Contains(rr.Body.String(), `"dev"`) {
		t.Errorf("expected dev version, got %s", rr.Body.String())
	}
}

func TestStaticIndexServed(t *testing.T) {
	h := newTestHandler(t, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if !bytes.Contains(rr.Body.Bytes(), []byte("Mortgage Calculator")) {
		t.Error("expected the calculator page")
	}
}

func TestCORSPreflight(t *testing.T) {
	h := newTestHandler(t, func(cfg *Config) {
		cfg.AllowedOrigins = []string{"https://example.com"}
	}, nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/calculate", nil)
	req.Header.Set("Origin", "https://example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "https://example.com" {
		t.Errorf("Access-Control-Allow-Origin = %q, expected https://example.com", got)
	}
}

func TestCoerceFloat(t *testing.T) {
	tests := []struct {
		name     string
		value    interface{}
		expected float64
	}{
		{"JSON number", json.Number("6.5"), 6.5},
		{"Float", 12.0, 12},
		{"Text", " 300000 ", 300000},
		{"Malformed text", "abc", 0},
		{"Nil", nil, 0},
		{"True", true, 1},
		{"Object", map[string]interface{}{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := coerceFloat(tt.value); got != tt.expected {
				t.Errorf("coerceFloat(%v) = %v, expected %v", tt.value, got, tt.expected)
			}
		})
	}
}
