package assess

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vigilante-ai/vigilante/pkg/completion"
	"github.com/vigilante-ai/vigilante/pkg/vuln"
)

// scriptedProvider fails calls whose prompt mentions a named
// vulnerability, and otherwise returns a fixed assessment.
type scriptedProvider struct {
	mu       sync.Mutex
	failFor  []string
	calls    int
	severity string
}

func (p *scriptedProvider) Name() string    { return "scripted" }
func (p *scriptedProvider) Validate() error { return nil }

func (p *scriptedProvider) Invoke(_ context.Context, prompt string) (string, error) {
	p.mu.Lock()
	p.calls++
	p.mu.Unlock()
	for _, name := range p.failFor {
		if strings.Contains(prompt, name) {
			return "", &completion.ProviderError{Provider: "scripted", Err: fmt.Errorf("simulated outage")}
		}
	}
	sev := p.severity
	if sev == "" {
		sev = "High"
	}
	out, _ := json.Marshal(map[string]string{
		"assessedSeverity":        sev,
		"assessmentJustification": "Context indicates elevated exposure.",
	})
	return string(out), nil
}

func testVulns(n int) []vuln.Vulnerability {
	vulns := make([]vuln.Vulnerability, n)
	for i := range vulns {
		vulns[i] = vuln.Vulnerability{
			ID:       fmt.Sprintf("vuln-%d", i),
			Name:     fmt.Sprintf("Finding %d", i),
			Severity: vuln.Medium,
		}
	}
	return vulns
}

func newAssessor(p completion.Provider) *Assessor {
	return NewAssessor(completion.NewClient(p, nil), 0, nil)
}

func TestAssessAllSuccess(t *testing.T) {
	a := newAssessor(&scriptedProvider{severity: "High"})
	out := a.AssessAll(context.Background(), testVulns(3), "found on https://example.com")

	require.Len(t, out, 3)
	for i, v := range out {
		assert.Equal(t, vuln.High, v.AssessedSeverity, "item %d", i)
		assert.NotEmpty(t, v.AssessmentJustification, "item %d", i)
		assert.Equal(t, vuln.Medium, v.Severity, "raw severity must never be mutated")
	}
}

func TestAssessAllPartialFailure(t *testing.T) {
	// Item 1 fails; the stage still succeeds with N items.
	a := newAssessor(&scriptedProvider{failFor: []string{"Finding 1"}})
	vulns := testVulns(4)
	out := a.AssessAll(context.Background(), vulns, "ctx")

	require.Len(t, out, 4)
	assert.Empty(t, out[1].AssessedSeverity, "failed item keeps no assessment")
	assert.Empty(t, out[1].AssessmentJustification)
	assert.Equal(t, vuln.Medium, out[1].Severity)
	for _, i := range []int{0, 2, 3} {
		assert.NotEmpty(t, out[i].AssessedSeverity, "item %d should be assessed", i)
	}

	// Order and identity preserved.
	for i := range out {
		assert.Equal(t, vulns[i].ID, out[i].ID)
	}
}

func TestAssessAllSchemaFailureDegrades(t *testing.T) {
	// A provider that returns garbage: every item degrades, none error.
	bad := &scriptedProvider{severity: "Informational"} // not in the enum
	a := newAssessor(bad)
	out := a.AssessAll(context.Background(), testVulns(2), "ctx")

	require.Len(t, out, 2)
	for _, v := range out {
		assert.Empty(t, v.AssessedSeverity)
		assert.Equal(t, vuln.Medium, v.Severity)
	}
}

func TestAssessAllEmptyInput(t *testing.T) {
	p := &scriptedProvider{}
	a := newAssessor(p)
	out := a.AssessAll(context.Background(), nil, "ctx")
	assert.Empty(t, out)
	assert.Zero(t, p.calls, "no provider calls for an empty list")
}

func TestAssessSingle(t *testing.T) {
	a := newAssessor(&scriptedProvider{severity: "Critical"})
	result, err := a.Assess(context.Background(), vuln.Vulnerability{Name: "XSS", Severity: vuln.Medium}, "public login page")
	require.NoError(t, err)
	assert.Equal(t, vuln.Critical, result.AssessedSeverity)
}
