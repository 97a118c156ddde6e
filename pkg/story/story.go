// Package story reconstructs a plausible attack narrative from a
// completed scan record via structured completion.
package story

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/vigilante-ai/vigilante/pkg/completion"
	"github.com/vigilante-ai/vigilante/pkg/vuln"
)

const promptTemplate = completion.Template(`You are a creative security analyst tasked with creating a plausible attack narrative. Based on the provided scan results (including OSINT and vulnerabilities), construct a step-by-step story of how an attacker might compromise the target.

The story should be a logical sequence of 3-5 steps. Start with reconnaissance and pivot based on the findings.

**Scan Details (JSON):**
{{scanDetails}}

**Instructions:**
1. Create a sequence of 3-5 steps.
2. For each step, provide a clear 'title' and a 'description'.
3. The description should explain the attacker's action and goal for that step.
4. Connect the steps logically. For example, if an open database port is exposed, a later step might attempt to exploit the database; if a critical XSS vulnerability exists, a step should involve session hijacking.
5. Be creative but ground the story in the provided data.

Respond with a JSON object: {"attackStory": [{"step": 1, "title": "...", "description": "..."}]}
`)

const outputSchemaJSON = `{
	"type": "object",
	"required": ["attackStory"],
	"properties": {
		"attackStory": {
			"type": "array",
			"minItems": 3,
			"maxItems": 5,
			"items": {
				"type": "object",
				"required": ["step", "title", "description"],
				"properties": {
					"step": {"type": "integer", "minimum": 1},
					"title": {"type": "string", "minLength": 1},
					"description": {"type": "string", "minLength": 1}
				}
			}
		}
	}
}`

var outputSchema = completion.MustCompileSchema("attack-story", outputSchemaJSON)

// Generator produces attack narratives.
type Generator struct {
	client *completion.Client
	logger *slog.Logger
}

// NewGenerator creates an attack story generator. A nil logger falls
// back to slog.Default().
func NewGenerator(client *completion.Client, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{client: client, logger: logger}
}

// ScanDetails is the input handed to the narrative prompt: the full
// scan record plus whatever OSINT data is available.
type ScanDetails struct {
	Scan  *vuln.Scan `json:"scan"`
	Osint any        `json:"osint,omitempty"`
}

// Generate produces an ordered attack narrative for the given scan
// details. Step numbers must come back contiguous starting at 1; a
// renumbered sequence is a schema failure, never silently repaired.
func (g *Generator) Generate(ctx context.Context, details ScanDetails) (*vuln.AttackStory, error) {
	raw, err := json.Marshal(details)
	if err != nil {
		return nil, err
	}

	var result vuln.AttackStory
	err = g.client.CompleteInto(ctx, completion.Request{
		Template:     promptTemplate,
		Input:        map[string]string{"scanDetails": string(raw)},
		OutputSchema: outputSchema,
	}, &result)
	if err != nil {
		return nil, err
	}

	if err := result.Validate(); err != nil {
		return nil, &completion.SchemaValidationError{Stage: "output", Err: err}
	}

	g.logger.Debug("attack story generated", "steps", len(result.Steps))
	return &result, nil
}
