// Package constants provides shared constants for the mortgage-simulator application.
package constants

// Ledger constants
const (
	// LedgerHeader is the first line of every ledger file. Field order is fixed.
	LedgerHeader = "month;monthly_interest;amortized_loan;pending_loan;interest;monthly_payment;accumulated_interest"

	// LedgerSeparator separates the fields of a ledger line.
	LedgerSeparator = ";"

	// LedgerFileExtension is appended to a simulation name when no output file is configured.
	LedgerFileExtension = ".txt"

	// DefaultOutputDirectory is where ledger files are written unless configured otherwise.
	DefaultOutputDirectory = "simulations"
)

// Financial constants
const (
	// MonthsPerYear is the number of months in a year
	MonthsPerYear = 12

	// DefaultPeriods is the default loan term in months (30 years).
	DefaultPeriods = 30 * MonthsPerYear

	// CurrencyTolerance is the tolerance for currency comparisons (1 cent)
	CurrencyTolerance = 0.01

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0
)

// Rate policy defaults, used when a variable-rate loan has no policy configured.
const (
	DefaultPolicyInitialValue    = 0.0
	DefaultPolicyYearlyIncrement = 0.001
)

// Loan types
const (
	LoanTypeFixed    = "fixed"
	LoanTypeVariable = "variable"
)

// Rate policy types
const (
	RatePolicyLinear = "linear"
	RatePolicySeries = "series"
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// ExampleConfigFile is the example configuration file name
	ExampleConfigFile = "config.yaml.example"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the API
	DefaultServerAddress = ":8080"

	// DefaultMaxUploadSizeBytes is the default maximum upload size for YAML configs (256 KB)
	DefaultMaxUploadSizeBytes int64 = 256 * 1024

	// DefaultMaxPeriods is the longest term, in months, the API will simulate (500 years)
	DefaultMaxPeriods = 500 * MonthsPerYear
)
