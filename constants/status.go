package constants

// JobStatus is the canonical status for persisted job records.
type JobStatus string

// Stable values (store these exact strings on disk).
const (
	JobStatusSubmitted JobStatus = "submitted" // record created, no attempt finished yet
	JobStatusRetrying  JobStatus = "retrying"  // at least one attempt failed, more remain
	JobStatusCompleted JobStatus = "completed" // terminal success
	JobStatusFailed    JobStatus = "failed"    // terminal failure, always paired with a DLQ snapshot
)

// ValidationStatus is the outcome of a single finding or a whole summary.
type ValidationStatus string

const (
	ValidationPassed ValidationStatus = "PASSED"
	ValidationFailed ValidationStatus = "FAILED"
)

// Severity ranks validation findings.
type Severity string

const (
	SeverityHigh   Severity = "HIGH"
	SeverityMedium Severity = "MEDIUM"
)

// ParseStatus describes how an amount string was interpreted.
type ParseStatus string

const (
	ParseBlank   ParseStatus = "blank"
	ParseParsed  ParseStatus = "parsed"
	ParseInvalid ParseStatus = "invalid"
)
