// Package report assembles a finished scan into a client-facing report
// and exports it as PDF or CSV.
//
// Assembly is a tolerant join: the executive summary, OSINT snapshot,
// and attack narrative are gathered concurrently and a failed section
// degrades to an explicit unavailable marker instead of failing the
// report. A scan record always yields a report.
package report

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/vigilante-ai/vigilante/pkg/completion"
	"github.com/vigilante-ai/vigilante/pkg/osint"
	"github.com/vigilante-ai/vigilante/pkg/story"
	"github.com/vigilante-ai/vigilante/pkg/vuln"
)

// Section names the independently-sourced report sections.
type Section string

const (
	SectionSummary    Section = "executive-summary"
	SectionAttackPath Section = "attack-path"
	SectionOsint      Section = "osint"
)

// Report is the assembled output. Fields for degraded sections are
// zero; Unavailable records why. The attack-path section is omitted
// entirely, not marked unavailable, when the scan found nothing.
type Report struct {
	Scan        *vuln.Scan `json:"scan"`
	GeneratedAt time.Time  `json:"generatedAt"`
	PreparedFor string     `json:"preparedFor,omitempty"`

	ExecutiveSummary string            `json:"executiveSummary,omitempty"`
	AttackStory      *vuln.AttackStory `json:"attackStory,omitempty"`
	Osint            *osint.Record     `json:"osint,omitempty"`

	Unavailable map[Section]string `json:"unavailable,omitempty"`
}

// HasSection reports whether the section produced content.
func (r *Report) HasSection(s Section) bool {
	switch s {
	case SectionSummary:
		return r.ExecutiveSummary != ""
	case SectionAttackPath:
		return r.AttackStory != nil && len(r.AttackStory.Steps) > 0
	case SectionOsint:
		return r.Osint != nil
	}
	return false
}

const summaryPromptTemplate = completion.Template(`You are a security consultant writing the executive summary of a vulnerability scan report. Summarize the scan findings below for a non-technical executive audience in two to four paragraphs: overall risk posture, the most important findings, and the recommended next steps.

**Scan findings (JSON):**
{{findings}}

Respond with a JSON object containing a single 'summary' field.
`)

const summarySchemaJSON = `{
	"type": "object",
	"required": ["summary"],
	"properties": {
		"summary": {"type": "string", "minLength": 1}
	}
}`

var summarySchema = completion.MustCompileSchema("executive-summary", summarySchemaJSON)

// Assembler gathers report sections.
type Assembler struct {
	client  *completion.Client
	osint   *osint.Aggregator
	stories *story.Generator
	logger  *slog.Logger
}

// NewAssembler creates an assembler. The OSINT aggregator and story
// generator are optional; a nil collaborator marks its section
// unavailable. A nil logger falls back to slog.Default().
func NewAssembler(client *completion.Client, agg *osint.Aggregator, stories *story.Generator, logger *slog.Logger) *Assembler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Assembler{client: client, osint: agg, stories: stories, logger: logger}
}

// Assemble builds a report for a terminal scan. The three enrichment
// sections are gathered concurrently and each failure is recorded in
// Unavailable rather than propagated; the only error cases are a nil
// or non-terminal scan.
func (a *Assembler) Assemble(ctx context.Context, s *vuln.Scan) (*Report, error) {
	if s == nil {
		return nil, errors.New("report: scan is nil")
	}
	if !s.Status.Terminal() {
		return nil, errors.New("report: scan has not finished")
	}

	rep := &Report{
		Scan:        s,
		GeneratedAt: time.Now().UTC(),
		Unavailable: make(map[Section]string),
	}

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	unavailable := func(sec Section, err error) {
		a.logger.Warn("report section degraded", "section", string(sec), "error", err)
		mu.Lock()
		rep.Unavailable[sec] = err.Error()
		mu.Unlock()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		summary, err := a.summarize(ctx, s)
		if err != nil {
			unavailable(SectionSummary, err)
			return
		}
		rep.ExecutiveSummary = summary
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		rec, err := a.enrich(ctx, s.URL)
		if err != nil {
			unavailable(SectionOsint, err)
			return
		}
		rep.Osint = rec
	}()

	// No findings means no attack path: the section is skipped, not
	// degraded.
	if len(s.Vulnerabilities) > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			st, err := a.narrate(ctx, s)
			if err != nil {
				unavailable(SectionAttackPath, err)
				return
			}
			rep.AttackStory = st
		}()
	}

	wg.Wait()
	if len(rep.Unavailable) == 0 {
		rep.Unavailable = nil
	}
	return rep, nil
}

func (a *Assembler) summarize(ctx context.Context, s *vuln.Scan) (string, error) {
	if a.client == nil {
		return "", errors.New("no completion provider configured")
	}
	findings, err := json.Marshal(s.Vulnerabilities)
	if err != nil {
		return "", err
	}
	var out struct {
		Summary string `json:"summary"`
	}
	err = a.client.CompleteInto(ctx, completion.Request{
		Template:     summaryPromptTemplate,
		Input:        map[string]string{"findings": string(findings)},
		OutputSchema: summarySchema,
	}, &out)
	if err != nil {
		return "", err
	}
	return out.Summary, nil
}

func (a *Assembler) enrich(ctx context.Context, rawURL string) (*osint.Record, error) {
	if a.osint == nil {
		return nil, errors.New("no osint aggregator configured")
	}
	domain, err := osint.ExtractDomain(rawURL)
	if err != nil {
		return nil, err
	}
	return a.osint.Enrich(ctx, domain)
}

func (a *Assembler) narrate(ctx context.Context, s *vuln.Scan) (*vuln.AttackStory, error) {
	if a.stories == nil {
		return nil, errors.New("no story generator configured")
	}
	details := story.ScanDetails{Scan: s}
	return a.stories.Generate(ctx, details)
}
