package domain

// DiagnosticCode classifies non-fatal configuration findings reported once
// at run start.
type DiagnosticCode string

// DiagnosticCode constants
const (
	// DiagWeightSumMismatch: declared indicator weights do not sum to 1.0
	// within tolerance. The run continues with the declared weights.
	DiagWeightSumMismatch DiagnosticCode = "WeightSumMismatch"
	// DiagDegenerateIndicatorRange: an indicator had identical raw values
	// across all experiments; its normalized value is fixed at 1.0.
	DiagDegenerateIndicatorRange DiagnosticCode = "DegenerateIndicatorRange"
	// DiagThresholdViolations: per-indicator count of experiments violating
	// the threshold.
	DiagThresholdViolations DiagnosticCode = "ThresholdViolations"
	// DiagMissingRawValues: per-indicator count of experiments lacking a
	// raw value. Those experiments were not threshold-checked for the
	// indicator.
	DiagMissingRawValues DiagnosticCode = "MissingRawValues"
	// DiagSkippedRecords: records skipped in best-effort mode.
	DiagSkippedRecords DiagnosticCode = "SkippedRecords"
)

// Diagnostic is one non-fatal finding surfaced to the caller.
type Diagnostic struct {
	Code    DiagnosticCode
	Message string
}
