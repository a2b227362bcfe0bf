package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
)

// ComputeExperimentID computes a deterministic experiment_id using SHA256.
// Formula: SHA256(system_id|portfolio_id|automation_id|automation_fraction)
// Returns hex-encoded hash (64 characters).
func ComputeExperimentID(
	systemID string,
	portfolioID string,
	automationID string,
	automationFraction float64,
) string {
	data := fmt.Sprintf("%s|%s|%s|%s",
		systemID,
		portfolioID,
		automationID,
		strconv.FormatFloat(automationFraction, 'f', -1, 64),
	)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
