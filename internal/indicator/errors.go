package indicator

import "errors"

// Calculation errors. Record-level failures are fatal in strict mode and
// counted per definition in best-effort mode.
var (
	// ErrMissingAttribute is returned when a record lacks a lookup the
	// formula requires. Absence is surfaced, never zero-filled.
	ErrMissingAttribute = errors.New("missing attribute")

	// ErrNoMatchingQualityBand is returned when a quality value matches
	// zero or more than one declared band. More than one match is a
	// configuration defect, not a tie to break.
	ErrNoMatchingQualityBand = errors.New("no matching quality band")

	// ErrCircularDependency is returned when indicator formulas reference
	// each other in a cycle.
	ErrCircularDependency = errors.New("circular indicator dependency")

	// ErrUnknownIndicator is returned when a configured metric or
	// reference names no known indicator or value definition.
	ErrUnknownIndicator = errors.New("unknown indicator")
)
