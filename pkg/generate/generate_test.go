package generate

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vigilante-ai/vigilante/pkg/completion"
	"github.com/vigilante-ai/vigilante/pkg/vuln"
)

type fakeProvider struct {
	response string
	err      error
}

func (f *fakeProvider) Name() string    { return "fake" }
func (f *fakeProvider) Validate() error { return nil }

func (f *fakeProvider) Invoke(_ context.Context, _ string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

const validResponse = `[
	{"name": "SQL Injection", "description": "Login form is injectable.", "severity": "Critical", "cwe": "CWE-89", "remediation": "Use parameterized queries."},
	{"name": "Missing Header", "description": "X-Content-Type-Options missing.", "severity": "Low", "cwe": "CWE-693", "remediation": "Set nosniff."}
]`

func newGenerator(p completion.Provider) *Generator {
	return NewGenerator(completion.NewClient(p, nil), nil)
}

func TestGenerate(t *testing.T) {
	g := newGenerator(&fakeProvider{response: validResponse})

	vulns, err := g.Generate(context.Background(), DefaultRawArtifact)
	require.NoError(t, err)
	require.Len(t, vulns, 2)

	assert.Equal(t, "SQL Injection", vulns[0].Name)
	assert.Equal(t, vuln.Critical, vulns[0].Severity)
	assert.Equal(t, "CWE-89", vulns[0].CWE)
	assert.Empty(t, vulns[0].ID, "IDs are assigned by the orchestrator, not the generator")
	assert.Empty(t, vulns[0].AssessedSeverity, "assessment fields are added by a later stage")
}

func TestGenerateRejectsInvalidSeverity(t *testing.T) {
	g := newGenerator(&fakeProvider{response: `[{"name": "x", "description": "y", "severity": "Catastrophic", "cwe": "", "remediation": "z"}]`})

	_, err := g.Generate(context.Background(), "raw")
	var ge *GenerationError
	require.ErrorAs(t, err, &ge)

	var sve *completion.SchemaValidationError
	assert.ErrorAs(t, err, &sve, "schema cause must be preserved through GenerationError")
	assert.False(t, completion.IsRetryable(err))
}

func TestGenerateRejectsMissingFields(t *testing.T) {
	g := newGenerator(&fakeProvider{response: `[{"name": "x"}]`})

	_, err := g.Generate(context.Background(), "raw")
	var ge *GenerationError
	require.ErrorAs(t, err, &ge)
}

func TestGenerateProviderFailure(t *testing.T) {
	g := newGenerator(&fakeProvider{err: &completion.ProviderError{Provider: "fake", Err: errors.New("timeout")}})

	_, err := g.Generate(context.Background(), "raw")
	var ge *GenerationError
	require.ErrorAs(t, err, &ge)
	assert.True(t, completion.IsRetryable(err), "provider cause must stay visible for retry policy")
}

func TestGenerateEmptyList(t *testing.T) {
	g := newGenerator(&fakeProvider{response: `[]`})

	vulns, err := g.Generate(context.Background(), "raw")
	require.NoError(t, err)
	assert.Empty(t, vulns)
}
