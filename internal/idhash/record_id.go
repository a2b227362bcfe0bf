package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ComputeRecordID computes a deterministic record_id using SHA256.
// Formula: SHA256(experiment_id|product_id|component_id|step_id)
// Returns hex-encoded hash (64 characters).
func ComputeRecordID(
	experimentID string,
	productID string,
	componentID string,
	stepID string,
) string {
	data := fmt.Sprintf("%s|%s|%s|%s",
		experimentID,
		productID,
		componentID,
		stepID,
	)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
