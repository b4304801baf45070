package model

import "time"

// Status is the categorical outcome of a diagnosis.
type Status string

const (
	StatusInflamed Status = "INFLAMED"
	StatusHealthy  Status = "HEALTHY"
)

// Valid reports whether s is one of the two permitted status values.
func (s Status) Valid() bool {
	return s == StatusInflamed || s == StatusHealthy
}

// Severity is an optional tier attached to inflamed diagnoses.
type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityHigh     Severity = "HIGH"
	SeverityModerate Severity = "MODERATE"
	// SeverityNone is the zero value for healthy diagnoses.
	SeverityNone Severity = ""
)

// Provenance records which path produced a diagnosis.
type Provenance string

const (
	ProvenanceAI    Provenance = "ai"
	ProvenanceRules Provenance = "rules"
)

// DiagnosisResult is the uniform output of the diagnostic core regardless of
// whether the AI path or the rule-based engine produced it. Immutable,
// returned by value.
type DiagnosisResult struct {
	ID          string     `json:"id"`
	Organ       Organ      `json:"organ"`
	Diagnosis   string     `json:"diagnosis"`
	Status      Status     `json:"status"`
	Severity    Severity   `json:"severity,omitempty"`
	Provenance  Provenance `json:"provenance"`
	GeneratedAt time.Time  `json:"generated_at"`
}
