package estimator

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/iwvelando/mortgage-calculator/pkg/constants"
	"github.com/iwvelando/mortgage-calculator/pkg/mortgage"
	"github.com/iwvelando/mortgage-calculator/pkg/validation"
	"go.uber.org/zap"
)

var (
	// ErrBusy is returned when a calculation is already in flight.
	ErrBusy = errors.New("calculation already in progress")

	// ErrInvalidInputs is returned when the inputs do not pass the calculate gate.
	ErrInvalidInputs = errors.New("loan amount must be positive, interest rate non-negative and term positive")
)

// Session is the state owned by one calculator interface: the inputs being
// edited and the latest result. At most one calculation runs at a time.
type Session struct {
	logger *zap.Logger
	delay  time.Duration

	mu     sync.Mutex
	inputs mortgage.LoanInputs
	result *mortgage.PaymentBreakdown
	busy   bool
}

// NewSession creates a session with the default term preselected. A
// non-positive delay computes immediately.
func NewSession(logger *zap.Logger, delay time.Duration) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	if delay < 0 {
		delay = 0
	}
	return &Session{
		logger: logger,
		delay:  delay,
		inputs: mortgage.LoanInputs{LoanTermYears: constants.DefaultLoanTermYears},
	}
}

// SetField parses text into the named input field.
func (s *Session) SetField(field, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch field {
	case FieldLoanAmount:
		s.inputs.LoanAmount = ParseAmount(text)
	case FieldDownPayment:
		s.inputs.DownPayment = ParseAmount(text)
	case FieldInterestRate:
		s.inputs.InterestRate = ParseAmount(text)
	case FieldLoanTerm:
		s.inputs.LoanTermYears = ParseTerm(text)
	default:
		return fieldError(field)
	}
	return nil
}

// SetInputs replaces all inputs at once.
func (s *Session) SetInputs(in mortgage.LoanInputs) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inputs = in
}

// Inputs returns the current inputs.
func (s *Session) Inputs() mortgage.LoanInputs {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inputs
}

// Result returns the latest breakdown, or nil before the first calculation.
func (s *Session) Result() *mortgage.PaymentBreakdown {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result == nil {
		return nil
	}
	result := *s.result
	return &result
}

// Busy reports whether a calculation is in flight.
func (s *Session) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

// CanCalculate reports whether the calculate action is enabled.
func (s *Session) CanCalculate() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.busy && validation.CanCalculate(s.inputs)
}

// Calculate computes a breakdown for the current inputs and publishes it as
// the session result. The busy flag is held for the configured delay; if ctx
// is done first nothing is published.
func (s *Session) Calculate(ctx context.Context) (mortgage.PaymentBreakdown, error) {
	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return mortgage.PaymentBreakdown{}, ErrBusy
	}
	if !validation.CanCalculate(s.inputs) {
		s.mu.Unlock()
		return mortgage.PaymentBreakdown{}, ErrInvalidInputs
	}
	s.busy = true
	inputs := s.inputs
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.busy = false
		s.mu.Unlock()
	}()

	if s.delay > 0 {
		timer := time.NewTimer(s.delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			s.logger.Debug("calculation abandoned",
				zap.String("op", "estimator.Calculate"),
				zap.Error(ctx.Err()),
			)
			return mortgage.PaymentBreakdown{}, ctx.Err()
		}
	}

	result := inputs.Compute()

	s.mu.Lock()
	s.result = &result
	s.mu.Unlock()

	s.logger.Debug("calculation published",
		zap.String("op", "estimator.Calculate"),
		zap.Float64("principal", inputs.Principal()),
		zap.Float64("monthlyPayment", result.MonthlyPayment),
		zap.Float64("totalInterest", result.TotalInterest),
	)

	return result, nil
}
