// Package constants provides shared constants for the carcost application.
package constants

// Financial constants
const (
	// MonthsPerYear is the number of months in a year
	MonthsPerYear = 12

	// DecimalPrecision is the precision for currency rounding (2 decimal places)
	DecimalPrecision = 100

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0

	// CurrencyTolerance is the tolerance for currency comparisons (1 cent)
	CurrencyTolerance = 0.01

	// ToleranceForComparison is the tolerance for financial comparisons
	ToleranceForComparison = 1.0

	// KilometresPerFuelUnit is the distance that fuel consumption is quoted against (L/100km)
	KilometresPerFuelUnit = 100.0
)

// Payment frequency identifiers and the number of payments each implies per year.
const (
	FrequencyMonthly     = "monthly"
	FrequencyBiweekly    = "biweekly"
	FrequencySemimonthly = "semimonthly"
	FrequencyWeekly      = "weekly"

	PeriodsMonthly     = 12
	PeriodsBiweekly    = 26
	PeriodsSemimonthly = 24
	PeriodsWeekly      = 52
)

// Lifetime projection limits
const (
	LimitYears   = "years"
	LimitMileage = "mileage"

	// LowUsageFactor and HighUsageFactor bound the annual distance range
	// shown next to the expected lifetime cost.
	LowUsageFactor  = 0.8
	HighUsageFactor = 1.2
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"

	// OutputFormatXLSX is the spreadsheet output format
	OutputFormatXLSX = "xlsx"

	// OutputFormatPDF is the printable report output format
	OutputFormatPDF = "pdf"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "carcost.yaml"

	// ExampleConfigFile is the example configuration file name
	ExampleConfigFile = "carcost.yaml.example"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"

	// DefaultStateFile is where the server persists state when Redis is not configured
	DefaultStateFile = "carcost-state.json"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address
	DefaultServerAddress = ":8080"

	// DefaultMaxUploadSizeBytes is the default maximum request body size (256 KB)
	DefaultMaxUploadSizeBytes int64 = 256 * 1024

	// DefaultRedisKey is the key the persisted state blob is stored under
	DefaultRedisKey = "carcost:state"

	// DefaultServiceName identifies the service in traces
	DefaultServiceName = "carcost"
)

// Default settings and car values
const (
	DefaultProvince         = "ON"
	DefaultFreightPDI       = 1800.0
	DefaultAirConditioning  = 100.0
	DefaultTireLevy         = 15.0
	DefaultDealerFee        = 500.0
	DefaultMaxCarAge        = 15
	DefaultMileageCap       = 300000.0
	DefaultAnnualKm         = 15000.0
	DefaultIncludeFuel      = true
	DefaultFuelConsumption  = 8.5
	DefaultFuelPrice        = 1.65
	DefaultCarPrice         = 35000.0
	DefaultInterestRate     = 6.99
	DefaultLoanTermMonths   = 60
	DefaultPaymentFrequency = FrequencyMonthly
)

// Optimizer defaults
const (
	// DefaultOptimizerTolerance is the convergence width of the down payment search in dollars
	DefaultOptimizerTolerance = 1.0

	// DefaultOptimizerMaxIterations caps refinement steps after the initial grid
	DefaultOptimizerMaxIterations = 100

	// DefaultOptimizerSamples is the number of grid segments evaluated before refinement
	DefaultOptimizerSamples = 32
)
