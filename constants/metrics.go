package constants

// Metric keys for the shared job-store counter set.
const (
	MetricSubmitted = "submitted"
	MetricSucceeded = "succeeded"
	MetricFailed    = "failed"
	MetricRetried   = "retried"
	MetricDLQ       = "dlq"
)
