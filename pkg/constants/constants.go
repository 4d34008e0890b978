// Package constants provides shared constants for the project-finance application.
package constants

// Calendar constants used by the revenue drivers.
const (
	// DaysPerYear is the number of operating days assumed for daily volumes.
	DaysPerYear = 365

	// HoursPerYear is the number of operating hours assumed for power sales.
	HoursPerYear = 8760

	// KWPerMW converts megawatts of capacity into kilowatts.
	KWPerMW = 1000
)

// Financial constants
const (
	// DecimalPrecision is the precision for currency rounding (2 decimal places)
	DecimalPrecision = 100

	// IRRLowerBound is the lowest discount rate searched by the IRR solver.
	IRRLowerBound = -0.95

	// IRRUpperBound is the highest discount rate searched by the IRR solver.
	IRRUpperBound = 5.0

	// IRRMaxIterations caps the number of bisection steps.
	IRRMaxIterations = 200

	// IRRTolerance is the absolute NPV below which a rate is accepted as the root.
	IRRTolerance = 1e-8
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"

	// OutputFormatJSON is the machine-readable JSON output format
	OutputFormatJSON = "json"
)

// Currency constants
const (
	// CurrencyUSD is the base currency every computation runs in.
	CurrencyUSD = "USD"

	// CurrencyMXN is the optional display currency.
	CurrencyMXN = "MXN"

	// DefaultFXRate is the default number of MXN per USD.
	DefaultFXRate = 18.0
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// ExampleConfigFile is the example configuration file name
	ExampleConfigFile = "config.yaml.example"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"

	// EnvPrefix is the prefix for environment variable overrides.
	EnvPrefix = "PROJECT_FINANCE"

	// DefaultSnapshotDir is where the file snapshot store keeps its records.
	DefaultSnapshotDir = "snapshots"

	// DefaultsSnapshotName is the snapshot that overrides the baseline assumptions.
	DefaultsSnapshotName = "defaults"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the API
	DefaultServerAddress = ":8080"

	// DefaultMaxUploadSizeBytes is the default maximum request body size (256 KB)
	DefaultMaxUploadSizeBytes int64 = 256 * 1024
)

// Validation constants
const (
	// CurrencyTolerance is the tolerance for currency comparisons (1 cent)
	CurrencyTolerance = 0.01

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0
)
