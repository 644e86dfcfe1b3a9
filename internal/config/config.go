// Package config defines the data structures related to configuration and
// includes functions for loading and validating the config.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/iwvelando/mortgage-calculator/pkg/constants"
	"github.com/iwvelando/mortgage-calculator/pkg/mortgage"
	"github.com/iwvelando/mortgage-calculator/pkg/validation"
	"github.com/spf13/viper"
)

// Configuration holds all configuration for mortgage-calculator.
type Configuration struct {
	Logging     LoggingConfig     `yaml:"logging,omitempty" mapstructure:"logging"`
	Output      OutputConfig      `yaml:"output,omitempty" mapstructure:"output"`
	Defaults    LoanDefaults      `yaml:"defaults,omitempty" mapstructure:"defaults"`
	Calculation CalculationConfig `yaml:"calculation,omitempty" mapstructure:"calculation"`
	Locale      string            `yaml:"locale,omitempty" mapstructure:"locale"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty" mapstructure:"level"`           // debug, info, warn, error
	Format     string `yaml:"format,omitempty" mapstructure:"format"`         // json, console
	OutputFile string `yaml:"outputFile,omitempty" mapstructure:"outputFile"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty" mapstructure:"format"` // pretty, csv, json
}

// LoanDefaults prefills the calculator inputs when no flag overrides them.
type LoanDefaults struct {
	LoanAmount   float64 `yaml:"loanAmount,omitempty" mapstructure:"loanAmount"`
	DownPayment  float64 `yaml:"downPayment,omitempty" mapstructure:"downPayment"`
	InterestRate float64 `yaml:"interestRate,omitempty" mapstructure:"interestRate"`
	LoanTerm     int     `yaml:"loanTerm,omitempty" mapstructure:"loanTerm"` // years
}

// CalculationConfig controls how a calculation is run.
type CalculationConfig struct {
	// Delay is the pause before computing; zero disables it.
	Delay time.Duration `yaml:"delay,omitempty" mapstructure:"delay"`
}

// Inputs converts the defaults into calculator inputs.
func (d LoanDefaults) Inputs() mortgage.LoanInputs {
	return mortgage.LoanInputs{
		LoanAmount:    d.LoanAmount,
		DownPayment:   d.DownPayment,
		InterestRate:  d.InterestRate,
		LoanTermYears: d.LoanTerm,
	}
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yml")
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.outputFile", "")
	v.SetDefault("output.format", constants.OutputFormatPretty)
	v.SetDefault("defaults.loanAmount", 0)
	v.SetDefault("defaults.downPayment", 0)
	v.SetDefault("defaults.interestRate", 0)
	v.SetDefault("defaults.loanTerm", constants.DefaultLoanTermYears)
	v.SetDefault("calculation.delay", constants.DefaultCalculationDelay)
	v.SetDefault("locale", constants.DefaultLocale)
	return v
}

func decode(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %w", err)
	}
	return &configuration, nil
}

// Default returns the configuration used when no file is present, with
// environment overrides applied.
func Default() (*Configuration, error) {
	return decode(newViper())
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %w", err)
	}
	return decode(v)
}

// LoadConfigurationFromReader loads a YAML-formatted configuration from r.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := newViper()
	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config data, %w", err)
	}
	return decode(v)
}

// LoadConfigurationOrDefault behaves like LoadConfiguration but falls back to
// Default when the file does not exist.
func LoadConfigurationOrDefault(configPath string) (*Configuration, error) {
	if _, err := os.Stat(configPath); errors.Is(err, fs.ErrNotExist) {
		return Default()
	}
	return LoadConfiguration(configPath)
}

// ValidateConfiguration performs general validation of the configuration and returns warnings
func (c *Configuration) ValidateConfiguration() []string {
	var warnings []string

	if c.Output.Format != "" {
		if err := validation.ValidateOutputFormat(c.Output.Format); err != nil {
			warnings = append(warnings, err.Error())
		}
	}

	if c.Calculation.Delay < 0 {
		warnings = append(warnings, fmt.Sprintf("Calculation delay %s is negative - it will be ignored", c.Calculation.Delay))
	}

	// Defaults are a partial prefill; only check them once a loan amount is set.
	if c.Defaults.LoanAmount != 0 {
		for _, warning := range validation.ValidateLoanInputs(c.Defaults.Inputs()) {
			warnings = append(warnings, "Default inputs: "+warning)
		}
	} else if c.Defaults.LoanTerm != 0 {
		if err := validation.ValidateTerm(c.Defaults.LoanTerm); err != nil {
			warnings = append(warnings, "Default inputs: "+err.Error())
		}
	}

	return warnings
}
