package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/iwvelando/mortgage-calculator/internal/config"
	"github.com/iwvelando/mortgage-calculator/internal/estimator"
	"github.com/iwvelando/mortgage-calculator/internal/report"
	"github.com/iwvelando/mortgage-calculator/pkg/constants"
	"github.com/iwvelando/mortgage-calculator/pkg/output"
	"github.com/iwvelando/mortgage-calculator/pkg/validation"
	"go.uber.org/zap"
)

func main() {
	// Process command line flags first to get config location
	configLocation := flag.String("config", constants.DefaultConfigFile, "path to configuration file")
	loanAmount := flag.String("loan-amount", "", "loan amount override")
	downPayment := flag.String("down-payment", "", "down payment override")
	interestRate := flag.String("interest-rate", "", "annual interest rate override, in percent")
	loanTerm := flag.String("loan-term", "", "loan term override in years (15, 20, 25, 30)")
	outputFormatFlag := flag.String("output-format", "", "type of output override: pretty, csv, json")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	delayFlag := flag.String("delay", "", "pause before calculating, e.g. 500ms; 0 disables")
	flag.Parse()

	conf, err := config.LoadConfigurationOrDefault(*configLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		os.Exit(1)
	}

	logger, err := config.NewLogger(conf.Logging, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	// CLI override takes precedence over config
	outputFormat := conf.Output.Format
	if *outputFormatFlag != "" {
		outputFormat = *outputFormatFlag
	}
	if outputFormat == "" {
		outputFormat = constants.OutputFormatPretty
	}
	if err := validation.ValidateOutputFormat(outputFormat); err != nil {
		logger.Fatal(err.Error(),
			zap.String("op", "main"),
		)
	}

	for _, warning := range conf.ValidateConfiguration() {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}

	delay := conf.Calculation.Delay
	if *delayFlag != "" {
		delay, err = parseDelay(*delayFlag)
		if err != nil {
			logger.Fatal("invalid delay",
				zap.String("op", "main"),
				zap.String("delay", *delayFlag),
				zap.Error(err),
			)
		}
	}

	session := estimator.NewSession(logger, delay)
	session.SetInputs(conf.Defaults.Inputs())

	overrides := []struct {
		field string
		value string
	}{
		{estimator.FieldLoanAmount, *loanAmount},
		{estimator.FieldDownPayment, *downPayment},
		{estimator.FieldInterestRate, *interestRate},
		{estimator.FieldLoanTerm, *loanTerm},
	}
	for _, o := range overrides {
		if o.value == "" {
			continue
		}
		if err := session.SetField(o.field, o.value); err != nil {
			logger.Fatal("failed to set input",
				zap.String("op", "main"),
				zap.String("field", o.field),
				zap.Error(err),
			)
		}
	}

	inputs := session.Inputs()
	if err := validation.ValidateTerm(inputs.LoanTermYears); err != nil {
		logger.Fatal("unsupported loan term",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	breakdown, err := session.Calculate(context.Background())
	if err != nil {
		logger.Fatal("failed to calculate payment",
			zap.String("op", "main"),
			zap.Float64("loanAmount", inputs.LoanAmount),
			zap.Float64("interestRate", inputs.InterestRate),
			zap.Int("loanTerm", inputs.LoanTermYears),
			zap.Error(err),
		)
	}

	if err := validation.ValidateResult(breakdown); err != nil {
		logger.Error("inputs are too extreme to calculate",
			zap.String("op", "main"),
			zap.Float64("loanAmount", inputs.LoanAmount),
			zap.Float64("interestRate", inputs.InterestRate),
			zap.Int("loanTerm", inputs.LoanTermYears),
			zap.Error(err),
		)
		_ = logger.Sync()
		os.Exit(1)
	}

	r := report.BuildLocalized(conf.Locale, inputs, breakdown)
	if err := output.Write(os.Stdout, outputFormat, r); err != nil {
		logger.Fatal("failed to write output",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
}

// parseDelay accepts a Go duration or a bare number of milliseconds.
func parseDelay(value string) (time.Duration, error) {
	if ms, err := strconv.Atoi(value); err == nil {
		return time.Duration(ms) * time.Millisecond, nil
	}
	return time.ParseDuration(value)
}
