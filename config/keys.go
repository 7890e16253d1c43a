package config

const (
	delimiter = "."

	LogPrefix = "log"
	LogLevel  = LogPrefix + delimiter + "level"

	MetricsPrefix    = "metrics"
	MetricsEnabled   = MetricsPrefix + delimiter + "enabled"
	MetricsMeterName = MetricsPrefix + delimiter + "meter_name"

	DescribePrefix    = "describe"
	DescribeSignature = DescribePrefix + delimiter + "signature"
)

// EnvPrefix prefixes environment overrides, e.g. MEMOIZED_LOG_LEVEL.
const EnvPrefix = "MEMOIZED"
