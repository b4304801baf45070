package model

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Fingerprint derives a stable cache key from an organ and its metric
// payload. The payload is marshalled, decoded into a generic map, and
// re-marshalled: encoding/json emits map keys in sorted order, so two
// logically identical snapshots fingerprint identically regardless of field
// declaration order. Capture time and provenance are deliberately excluded.
func Fingerprint(organ Organ, metrics Metrics) string {
	canonical := canonicalJSON(metrics)
	sum := sha256.Sum256([]byte(string(organ) + "|" + canonical))
	return hex.EncodeToString(sum[:])
}

func canonicalJSON(metrics Metrics) string {
	raw, err := json.Marshal(metrics)
	if err != nil {
		// Metric payloads are plain structs of numbers; marshal cannot fail
		// for them. Fall back to the fmt rendering just in case.
		return fmt.Sprintf("%+v", metrics)
	}

	var generic map[string]any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return string(raw)
	}

	sorted, err := json.Marshal(generic)
	if err != nil {
		return string(raw)
	}
	return string(sorted)
}
