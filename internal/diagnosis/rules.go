package diagnosis

import (
	_ "embed"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/terrapulse/vitals-cli/internal/model"
)

//go:embed thresholds.yaml
var thresholdsYAML []byte

type ruleTier struct {
	Threshold float64        `yaml:"threshold"`
	Severity  model.Severity `yaml:"severity"`
	Diagnosis string         `yaml:"diagnosis"`
}

type organRules struct {
	Direction string     `yaml:"direction"`
	Healthy   string     `yaml:"healthy"`
	Tiers     []ruleTier `yaml:"tiers"`
}

// ruleTable is parsed once at startup; the thresholds are part of the
// binary, not runtime configuration.
var ruleTable = mustLoadRules()

func mustLoadRules() map[model.Organ]organRules {
	var raw map[string]organRules
	if err := yaml.Unmarshal(thresholdsYAML, &raw); err != nil {
		panic(fmt.Sprintf("diagnosis: embedded thresholds are invalid: %v", err))
	}
	table := make(map[model.Organ]organRules, len(raw))
	for name, rules := range raw {
		organ, err := model.ParseOrgan(name)
		if err != nil {
			panic(fmt.Sprintf("diagnosis: embedded thresholds name organ %q", name))
		}
		table[organ] = rules
	}
	return table
}

// RuleBased produces a deterministic diagnosis from the snapshot alone, with
// no network access. Its output shape is identical to the AI path so callers
// never care which produced it. Tiers are evaluated most-severe-first; the
// first match wins.
func RuleBased(snapshot model.MetricSnapshot, now time.Time) model.DiagnosisResult {
	rules := ruleTable[snapshot.Organ]
	value := drivingValue(snapshot)

	for _, tier := range rules.Tiers {
		matched := false
		switch rules.Direction {
		case "under":
			matched = value < tier.Threshold
		default:
			matched = value > tier.Threshold
		}
		if matched {
			return model.DiagnosisResult{
				ID:          uuid.NewString(),
				Organ:       snapshot.Organ,
				Diagnosis:   interpolate(tier.Diagnosis, snapshot.Organ, value),
				Status:      model.StatusInflamed,
				Severity:    tier.Severity,
				Provenance:  model.ProvenanceRules,
				GeneratedAt: now,
			}
		}
	}

	return model.DiagnosisResult{
		ID:          uuid.NewString(),
		Organ:       snapshot.Organ,
		Diagnosis:   interpolate(rules.Healthy, snapshot.Organ, value),
		Status:      model.StatusHealthy,
		Provenance:  model.ProvenanceRules,
		GeneratedAt: now,
	}
}

// drivingValue picks the metric each organ's thresholds are written
// against: alert counts for lungs, surface pH for heart, AQI for skin.
func drivingValue(snapshot model.MetricSnapshot) float64 {
	switch m := snapshot.Metrics.(type) {
	case model.LungsMetrics:
		return float64(m.AlertCount)
	case model.HeartMetrics:
		return m.PH
	case model.SkinMetrics:
		return float64(m.AQI)
	default:
		return 0
	}
}

func interpolate(template string, organ model.Organ, value float64) string {
	var rendered string
	if organ == model.OrganHeart {
		rendered = fmt.Sprintf("%.2f", value)
	} else {
		rendered = fmt.Sprintf("%.0f", value)
	}
	return strings.ReplaceAll(template, "{value}", rendered)
}
