// Package generate turns a raw scan-log artifact into a list of
// candidate vulnerabilities via structured completion.
package generate

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vigilante-ai/vigilante/pkg/completion"
	"github.com/vigilante-ai/vigilante/pkg/vuln"
)

// GenerationError means the vulnerability list could not be produced:
// the completion call failed or its result failed schema validation.
// It is fatal to the whole scan; there is no meaningful partial
// vulnerability list.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generate: vulnerability generation failed: %v", e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

const promptTemplate = completion.Template(`You are an AI-powered security analyst. Your task is to analyze the output of a web vulnerability scan and provide the findings as a JSON array.

Convert the raw scan alerts into a structured JSON array of vulnerability objects. Each object must contain the following fields: 'name', 'description', 'severity' (one of 'Critical', 'High', 'Medium', 'Low'), 'cwe', and 'remediation'.

Here is the scan output:
{{scanOutput}}
`)

const outputSchemaJSON = `{
	"type": "array",
	"items": {
		"type": "object",
		"required": ["name", "description", "severity", "cwe", "remediation"],
		"properties": {
			"name": {"type": "string", "minLength": 1},
			"description": {"type": "string", "minLength": 1},
			"severity": {"type": "string", "enum": ["Critical", "High", "Medium", "Low"]},
			"cwe": {"type": "string"},
			"remediation": {"type": "string"},
			"evidence": {"type": "string"}
		}
	}
}`

var outputSchema = completion.MustCompileSchema("vulnerability-list", outputSchemaJSON)

// Generator produces candidate vulnerabilities from raw scanner output.
type Generator struct {
	client *completion.Client
	logger *slog.Logger
}

// NewGenerator creates a vulnerability generator. A nil logger falls
// back to slog.Default().
func NewGenerator(client *completion.Client, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{client: client, logger: logger}
}

// Generate converts a raw scan artifact into candidate vulnerabilities.
// The returned items carry no IDs and no assessment fields; both are
// added by later stages. Any failure is wrapped in *GenerationError
// with the cause preserved, so callers can still distinguish transient
// provider failures from schema violations.
func (g *Generator) Generate(ctx context.Context, rawScanArtifact string) ([]vuln.Vulnerability, error) {
	var items []struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Severity    string `json:"severity"`
		CWE         string `json:"cwe"`
		Remediation string `json:"remediation"`
		Evidence    string `json:"evidence"`
	}
	err := g.client.CompleteInto(ctx, completion.Request{
		Template:     promptTemplate,
		Input:        map[string]string{"scanOutput": rawScanArtifact},
		OutputSchema: outputSchema,
	}, &items)
	if err != nil {
		return nil, &GenerationError{Err: err}
	}

	vulns := make([]vuln.Vulnerability, 0, len(items))
	for _, item := range items {
		vulns = append(vulns, vuln.Vulnerability{
			Name:        item.Name,
			Description: item.Description,
			Severity:    vuln.Severity(item.Severity),
			CWE:         item.CWE,
			Remediation: item.Remediation,
			Evidence:    item.Evidence,
		})
	}

	g.logger.Info("vulnerability generation complete", "count", len(vulns))
	return vulns, nil
}
