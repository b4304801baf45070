package diagnosis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/terrapulse/vitals-cli/internal/model"
	"github.com/terrapulse/vitals-cli/pkg/anthropic"
)

// genericDiagnosis is substituted whenever the provider's reply cannot be
// parsed into the expected shape. Status is conservatively INFLAMED: an
// unreadable answer about a stressed ecosystem should not read as healthy.
const genericDiagnosis = "Environmental stress detected. Monitoring data suggests this system needs attention."

const systemPrompt = "You are a planetary health physician. You diagnose Earth's ecosystems as if they were organs of a living body. Respond only with the JSON object requested."

// AIDiagnoser turns a metric snapshot into a diagnosis via the inference
// provider. It may only be invoked after the quota governor grants a
// reservation; the reservation is consumed whether or not the call works.
type AIDiagnoser struct {
	client      anthropic.Client
	model       string
	maxTokens   int64
	temperature float64

	nowFunc func() time.Time
}

// NewAIDiagnoser creates the AI path with explicit generation parameters.
func NewAIDiagnoser(client anthropic.Client, modelName string, maxTokens int64, temperature float64) *AIDiagnoser {
	if maxTokens <= 0 {
		maxTokens = 512
	}
	return &AIDiagnoser{
		client:      client,
		model:       modelName,
		maxTokens:   maxTokens,
		temperature: temperature,
		nowFunc:     time.Now,
	}
}

// WithNow fixes the diagnoser's clock for tests.
func (d *AIDiagnoser) WithNow(now func() time.Time) *AIDiagnoser {
	d.nowFunc = now
	return d
}

// aiReply is the structured object the prompt demands.
type aiReply struct {
	Diagnosis string `json:"diagnosis"`
	Status    string `json:"status"`
}

// Diagnose returns an error only for transport-level failures (the call
// itself did not complete). A reply that completes but cannot be parsed, or
// that names a status outside {INFLAMED, HEALTHY}, is absorbed into the
// generic substitution and is not an error.
func (d *AIDiagnoser) Diagnose(ctx context.Context, snapshot model.MetricSnapshot) (model.DiagnosisResult, error) {
	resp, err := d.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:       d.model,
		MaxTokens:   d.maxTokens,
		System:      systemPrompt,
		Prompt:      buildPrompt(snapshot),
		Temperature: &d.temperature,
	})
	if err != nil {
		return model.DiagnosisResult{}, eris.Wrap(err, "diagnosis: inference call")
	}
	resp.Usage.Log(resp.Model, snapshot.Organ.String())

	reply, ok := parseReply(resp.Text)
	now := d.nowFunc()
	if !ok {
		zap.L().Warn("unparseable inference reply, substituting generic diagnosis",
			zap.String("organ", snapshot.Organ.String()),
			zap.Int("reply_len", len(resp.Text)),
		)
		return model.DiagnosisResult{
			ID:          uuid.NewString(),
			Organ:       snapshot.Organ,
			Diagnosis:   genericDiagnosis,
			Status:      model.StatusInflamed,
			Provenance:  model.ProvenanceAI,
			GeneratedAt: now,
		}, nil
	}

	return model.DiagnosisResult{
		ID:          uuid.NewString(),
		Organ:       snapshot.Organ,
		Diagnosis:   reply.Diagnosis,
		Status:      model.Status(reply.Status),
		Severity:    severityFor(snapshot, model.Status(reply.Status)),
		Provenance:  model.ProvenanceAI,
		GeneratedAt: now,
	}, nil
}

// buildPrompt embeds the snapshot as JSON so the provider sees exactly the
// fields the adapters produced.
func buildPrompt(snapshot model.MetricSnapshot) string {
	metricsJSON, err := json.Marshal(snapshot.Metrics)
	if err != nil {
		metricsJSON = []byte(fmt.Sprintf("%+v", snapshot.Metrics))
	}
	return fmt.Sprintf(
		`Diagnose the health of Earth's %s based on %s readings for %s:

%s

Reply with exactly one JSON object of the form {"diagnosis": "<2-3 sentence diagnosis in the voice of a physician>", "status": "INFLAMED" or "HEALTHY"}.`,
		snapshot.Organ, snapshot.Organ.Domain(), snapshot.Locator, metricsJSON,
	)
}

// parseReply extracts the first well-formed JSON object from the raw reply,
// tolerating surrounding prose, and validates its fields.
func parseReply(text string) (aiReply, bool) {
	obj, ok := firstJSONObject(text)
	if !ok {
		return aiReply{}, false
	}
	var reply aiReply
	if err := json.Unmarshal([]byte(obj), &reply); err != nil {
		return aiReply{}, false
	}
	if reply.Diagnosis == "" || !model.Status(reply.Status).Valid() {
		return aiReply{}, false
	}
	return reply, true
}

// firstJSONObject scans for the first balanced {...} region that is valid
// JSON. Brace counting respects string literals and escapes so prose like
// "ratio {x}" before the object does not derail extraction.
func firstJSONObject(text string) (string, bool) {
	for start := 0; start < len(text); start++ {
		if text[start] != '{' {
			continue
		}
		depth := 0
		inString := false
		escaped := false
		for i := start; i < len(text); i++ {
			ch := text[i]
			switch {
			case escaped:
				escaped = false
			case inString && ch == '\\':
				escaped = true
			case ch == '"':
				inString = !inString
			case inString:
			case ch == '{':
				depth++
			case ch == '}':
				depth--
				if depth == 0 {
					candidate := text[start : i+1]
					if json.Valid([]byte(candidate)) {
						return candidate, true
					}
					i = len(text) // abandon this start position
				}
			}
		}
	}
	return "", false
}

// severityFor attaches the rule table's tier to an inflamed AI diagnosis so
// both paths expose the same optional field. The provider is not asked for
// a tier; deriving it locally keeps the two permitted status values the
// only vocabulary it must honor.
func severityFor(snapshot model.MetricSnapshot, status model.Status) model.Severity {
	if status != model.StatusInflamed {
		return model.SeverityNone
	}
	return RuleBased(snapshot, time.Time{}).Severity
}
