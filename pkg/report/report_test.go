package report

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vigilante-ai/vigilante/pkg/completion"
	"github.com/vigilante-ai/vigilante/pkg/story"
	"github.com/vigilante-ai/vigilante/pkg/vuln"
)

const storyResponse = `{"attackStory": [
	{"step": 1, "title": "Reconnaissance", "description": "Map the exposed surface."},
	{"step": 2, "title": "Exploit header weakness", "description": "Abuse missing security headers."},
	{"step": 3, "title": "Exfiltrate", "description": "Harvest leaked error details."}
]}`

// sectionProvider answers the summary and story prompts separately so
// tests can fail one section at a time.
type sectionProvider struct {
	summary    func() (string, error)
	storyReply func() (string, error)
}

func (p *sectionProvider) Name() string    { return "section-fake" }
func (p *sectionProvider) Validate() error { return nil }

func (p *sectionProvider) Invoke(_ context.Context, prompt string) (string, error) {
	if strings.Contains(prompt, "attack narrative") {
		if p.storyReply != nil {
			return p.storyReply()
		}
		return storyResponse, nil
	}
	if p.summary != nil {
		return p.summary()
	}
	return `{"summary": "The target carries a moderate risk profile driven by configuration weaknesses."}`, nil
}

func completedScan() *vuln.Scan {
	done := time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC)
	return &vuln.Scan{
		ID:          "scan-abc",
		OwnerID:     "user-1",
		URL:         "https://example.com",
		Status:      vuln.StatusCompleted,
		CreatedAt:   done.Add(-2 * time.Minute),
		CompletedAt: &done,
		Vulnerabilities: []vuln.Vulnerability{
			{
				ID:          "vuln-scan-abc-0",
				Name:        "Missing X-Content-Type-Options Header",
				Description: "MIME sniffing possible.",
				Severity:    vuln.Low,
				CWE:         "CWE-693",
				Remediation: "Set nosniff.",
			},
			{
				ID:                      "vuln-scan-abc-1",
				Name:                    "Application Error Disclosure",
				Description:             "Stack traces leak internals.",
				Severity:                vuln.Medium,
				CWE:                     "CWE-209",
				Remediation:             "Generic error pages.",
				AssessedSeverity:        vuln.High,
				AssessmentJustification: "Errors expose framework versions.",
			},
		},
		ChainOfCustody: &vuln.ChainOfCustody{
			UserID:    "user-1",
			UserIP:    "203.0.113.7",
			UserAgent: "vigilante-cli/1.0",
			Timestamp: done.Add(-2 * time.Minute),
		},
	}
}

func newAssembler(provider completion.Provider) *Assembler {
	logger := slog.New(slog.DiscardHandler)
	client := completion.NewClient(provider, logger)
	return NewAssembler(client, nil, story.NewGenerator(client, logger), logger)
}

func TestAssembleGathersAllSections(t *testing.T) {
	a := newAssembler(&sectionProvider{})

	rep, err := a.Assemble(context.Background(), completedScan())
	require.NoError(t, err)

	assert.True(t, rep.HasSection(SectionSummary))
	assert.Contains(t, rep.ExecutiveSummary, "moderate risk")

	require.True(t, rep.HasSection(SectionAttackPath))
	assert.Len(t, rep.AttackStory.Steps, 3)

	// No aggregator wired: OSINT degrades but the report still lands.
	assert.False(t, rep.HasSection(SectionOsint))
	assert.Contains(t, rep.Unavailable[SectionOsint], "osint")
}

func TestAssembleDegradesFailedSummary(t *testing.T) {
	a := newAssembler(&sectionProvider{
		summary: func() (string, error) {
			return "", &completion.ProviderError{Provider: "fake", StatusCode: 500, Err: errors.New("boom")}
		},
	})

	rep, err := a.Assemble(context.Background(), completedScan())
	require.NoError(t, err, "a failed section must not fail the report")
	assert.False(t, rep.HasSection(SectionSummary))
	assert.NotEmpty(t, rep.Unavailable[SectionSummary])
	assert.True(t, rep.HasSection(SectionAttackPath), "other sections are unaffected")
}

func TestAssembleOmitsAttackPathForCleanScan(t *testing.T) {
	a := newAssembler(&sectionProvider{})
	s := completedScan()
	s.Vulnerabilities = nil

	rep, err := a.Assemble(context.Background(), s)
	require.NoError(t, err)
	assert.False(t, rep.HasSection(SectionAttackPath))
	_, degraded := rep.Unavailable[SectionAttackPath]
	assert.False(t, degraded, "a clean scan omits the section instead of degrading it")
}

func TestAssembleRejectsUnfinishedScan(t *testing.T) {
	a := newAssembler(&sectionProvider{})
	s := completedScan()
	s.Status = vuln.StatusScanning

	_, err := a.Assemble(context.Background(), s)
	require.Error(t, err)
}

func TestWritePDFProducesDocument(t *testing.T) {
	a := newAssembler(&sectionProvider{})
	rep, err := a.Assemble(context.Background(), completedScan())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WritePDF(&buf, rep))
	raw := buf.Bytes()
	require.Greater(t, len(raw), 1000)
	assert.True(t, bytes.HasPrefix(raw, []byte("%PDF")), "output must start with a PDF header")
}

func TestWritePDFHandlesFailedScan(t *testing.T) {
	s := completedScan()
	s.Status = vuln.StatusFailed
	s.Vulnerabilities = nil

	rep := &Report{
		Scan:        s,
		GeneratedAt: time.Now().UTC(),
		Unavailable: map[Section]string{
			SectionSummary: "generation failed",
			SectionOsint:   "no osint aggregator configured",
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WritePDF(&buf, rep))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
}
