// Package constants provides shared constants for the mortgage-calculator application.
package constants

import "time"

// Financial constants
const (
	// MonthsPerYear is the number of months in a year
	MonthsPerYear = 12

	// DecimalPrecision is the precision for currency rounding (2 decimal places)
	DecimalPrecision = 100

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0

	// ShareDecimals is the number of decimals shown for chart percentages
	ShareDecimals = 1
)

// Loan term constants
const (
	// DefaultLoanTermYears is the term preselected before the user picks one
	DefaultLoanTermYears = 30
)

// AllowedLoanTermsYears lists the terms offered by the calculator.
var AllowedLoanTermsYears = []int{15, 20, 25, 30}

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"

	// OutputFormatJSON is the JSON output format
	OutputFormatJSON = "json"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// ExampleConfigFile is the example configuration file name
	ExampleConfigFile = "config.yaml.example"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"

	// EnvPrefix is the prefix for environment overrides of config keys
	EnvPrefix = "MORTGAGE"
)

// Calculation defaults
const (
	// DefaultCalculationDelay is the pause before computing so the interface can show progress
	DefaultCalculationDelay = 500 * time.Millisecond

	// DefaultLocale is the BCP 47 tag used for localized currency text
	DefaultLocale = "en-US"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the web UI
	DefaultServerAddress = ":8080"

	// DefaultMaxBodySizeBytes is the default maximum request body size (64 KB)
	DefaultMaxBodySizeBytes int64 = 64 * 1024

	// DefaultRateLimitRequests is the number of calculations a client may request per window
	DefaultRateLimitRequests = 60

	// DefaultRateLimitWindow is the refill window for the rate limiter
	DefaultRateLimitWindow = time.Minute

	// DefaultCacheTTL is how long a memoized breakdown is kept
	DefaultCacheTTL = 10 * time.Minute

	// CacheBackendNone disables the result memo
	CacheBackendNone = "none"

	// CacheBackendMemory keeps memoized results in process
	CacheBackendMemory = "memory"

	// CacheBackendRedis keeps memoized results in Redis
	CacheBackendRedis = "redis"
)
