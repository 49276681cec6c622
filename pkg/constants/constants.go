// Package constants provides shared constants for the mortgage-calculator application.
package constants

// Financial constants
const (
	// MonthsPerYear is the number of months in a year
	MonthsPerYear = 12

	// DecimalPlaces is the number of decimal places currency is rounded to
	DecimalPlaces = 2

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0

	// CurrencySymbol is the fixed display currency sign
	CurrencySymbol = "£"
)

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
	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the web UI
	DefaultServerAddress = ":8080"

	// DefaultMaxBodySizeBytes is the default maximum request body size (64 KB)
	DefaultMaxBodySizeBytes int64 = 64 * 1024

	// DefaultSessionTTL is how long an idle form session is kept
	DefaultSessionTTL = "30m"

	// SessionCookieName names the cookie carrying the form session id
	SessionCookieName = "mortgage_session"

	// SessionStoreMemory keeps sessions in process memory
	SessionStoreMemory = "memory"

	// SessionStoreRedis keeps sessions in redis
	SessionStoreRedis = "redis"

	// DefaultRedisKeyPrefix namespaces session keys in redis
	DefaultRedisKeyPrefix = "mortgage:session:"
)
