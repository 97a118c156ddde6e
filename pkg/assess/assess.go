// Package assess enriches generated vulnerabilities with a contextual
// severity assessment via structured completion.
//
// Assessment is best-effort enrichment, not a blocking requirement for
// scan completion: the stage fans out one completion call per item and
// tolerates individual failures, retaining failed items with their
// original severity and no justification.
package assess

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/vigilante-ai/vigilante/pkg/completion"
	"github.com/vigilante-ai/vigilante/pkg/vuln"
	"github.com/vigilante-ai/vigilante/pkg/workerpool"
)

// DefaultConcurrency caps the assessment fan-out. Expected list sizes
// are 3-5 but generated lists are not bounded by contract.
const DefaultConcurrency = 8

const promptTemplate = completion.Template(`You are a senior application security engineer reviewing a single vulnerability finding. Re-assess its severity in the context where it was found and justify the verdict in one or two sentences.

**Vulnerability (JSON):**
{{vulnerability}}

**Context:**
{{context}}

Respond with a JSON object containing 'assessedSeverity' (one of 'Critical', 'High', 'Medium', 'Low') and 'assessmentJustification'.
`)

const outputSchemaJSON = `{
	"type": "object",
	"required": ["assessedSeverity", "assessmentJustification"],
	"properties": {
		"assessedSeverity": {"type": "string", "enum": ["Critical", "High", "Medium", "Low"]},
		"assessmentJustification": {"type": "string", "minLength": 1}
	}
}`

var outputSchema = completion.MustCompileSchema("severity-assessment", outputSchemaJSON)

// Assessment is the enrichment produced for one vulnerability.
type Assessment struct {
	AssessedSeverity        vuln.Severity `json:"assessedSeverity"`
	AssessmentJustification string        `json:"assessmentJustification"`
}

// Assessor runs severity assessments with bounded concurrency.
type Assessor struct {
	client *completion.Client
	pool   *workerpool.Pool
	logger *slog.Logger
}

// NewAssessor creates an assessor. Concurrency below 1 uses
// DefaultConcurrency; a nil logger falls back to slog.Default().
func NewAssessor(client *completion.Client, concurrency int, logger *slog.Logger) *Assessor {
	if concurrency < 1 {
		concurrency = DefaultConcurrency
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Assessor{
		client: client,
		pool:   workerpool.New(concurrency),
		logger: logger,
	}
}

// Assess runs one severity assessment.
func (a *Assessor) Assess(ctx context.Context, v vuln.Vulnerability, targetContext string) (*Assessment, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	var result Assessment
	err = a.client.CompleteInto(ctx, completion.Request{
		Template: promptTemplate,
		Input: map[string]string{
			"vulnerability": string(raw),
			"context":       targetContext,
		},
		OutputSchema: outputSchema,
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// AssessAll assesses every vulnerability concurrently and returns a new
// slice with the same items in the same order. It waits for all calls
// to settle; a failed assessment leaves that item unchanged: original
// severity kept, no justification. It never fails the stage.
// Cancellation mid-stage likewise degrades: items already settled keep
// their assessments, items not yet started stay unassessed.
func (a *Assessor) AssessAll(ctx context.Context, vulns []vuln.Vulnerability, targetContext string) []vuln.Vulnerability {
	if len(vulns) == 0 {
		return nil
	}

	results, errs := workerpool.Map(ctx, a.pool, vulns, func(ctx context.Context, v vuln.Vulnerability) (*Assessment, error) {
		return a.Assess(ctx, v, targetContext)
	})

	out := make([]vuln.Vulnerability, len(vulns))
	copy(out, vulns)
	for i := range out {
		if errs[i] != nil {
			a.logger.Warn("severity assessment degraded",
				"vulnerability", out[i].Name,
				"error", errs[i])
			continue
		}
		out[i].AssessedSeverity = results[i].AssessedSeverity
		out[i].AssessmentJustification = results[i].AssessmentJustification
	}
	return out
}
