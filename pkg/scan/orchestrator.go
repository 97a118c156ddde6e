// Package scan runs the vulnerability-scan pipeline: it drives the
// scan lifecycle state machine, persists each transition before any
// dependent stage runs, and publishes progress, log, and status events
// to subscribed sinks.
//
// The orchestrator is the only writer of a scan's status. Readers (the
// CLI, report assembly) treat the store as read-only and may observe
// any persisted transition, so each stage's write is durable before the
// next stage starts.
package scan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/vigilante-ai/vigilante/pkg/assess"
	"github.com/vigilante-ai/vigilante/pkg/completion"
	"github.com/vigilante-ai/vigilante/pkg/generate"
	"github.com/vigilante-ai/vigilante/pkg/retry"
	"github.com/vigilante-ai/vigilante/pkg/store"
	"github.com/vigilante-ai/vigilante/pkg/vuln"
)

// stageLogs is the ordered stage narration emitted over a run. The
// first reconStages entries describe the simulated reconnaissance
// phase; the remaining entries bracket the AI stages.
var stageLogs = []string{
	"Target confirmed. Initializing scanners...",
	"Checking for open ports (Nmap)...",
	"Analyzing web server configuration...",
	"Scanning for SQL injection vectors...",
	"Probing for Cross-Site Scripting (XSS)...",
	"Checking for insecure headers...",
	"Analyzing robots.txt and sitemap.xml...",
	"Compiling results...",
	"Running AI-powered vulnerability generation...",
	"Running AI-powered severity assessment...",
	"Scan complete.",
}

const reconStages = 8

// Options configures an Orchestrator.
type Options struct {
	// Store persists scan documents. Required.
	Store store.DocumentStore

	// Generator produces the vulnerability list. Required.
	Generator *generate.Generator

	// Assessor enriches vulnerabilities with severity assessments.
	// Optional; when nil the assessment stage is skipped and items
	// keep their generated severity.
	Assessor *assess.Assessor

	// Retry controls retries of the generation stage. Zero value uses
	// retry.DefaultConfig().
	Retry retry.Config

	// StepDelay paces the simulated reconnaissance stages. Zero means
	// no pacing, which is what tests want.
	StepDelay time.Duration

	// Logger receives pipeline diagnostics. Nil falls back to
	// slog.Default().
	Logger *slog.Logger
}

// Orchestrator runs scans end to end.
type Orchestrator struct {
	store     store.DocumentStore
	generator *generate.Generator
	assessor  *assess.Assessor
	retryCfg  retry.Config
	stepDelay time.Duration
	logger    *slog.Logger
	emitter   *Emitter
	now       func() time.Time
}

// New creates an orchestrator.
func New(opts Options) (*Orchestrator, error) {
	if opts.Store == nil {
		return nil, errors.New("scan: Options.Store is required")
	}
	if opts.Generator == nil {
		return nil, errors.New("scan: Options.Generator is required")
	}
	if opts.Retry == (retry.Config{}) {
		opts.Retry = retry.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Orchestrator{
		store:     opts.Store,
		generator: opts.Generator,
		assessor:  opts.Assessor,
		retryCfg:  opts.Retry,
		stepDelay: opts.StepDelay,
		logger:    opts.Logger,
		emitter:   NewEmitter(),
		now:       time.Now,
	}, nil
}

// Events returns the orchestrator's event emitter for subscription.
func (o *Orchestrator) Events() *Emitter { return o.emitter }

// Request describes one scan to run.
type Request struct {
	// OwnerID is the user the scan belongs to. Required.
	OwnerID string

	// URL is the target. Must be absolute http or https.
	URL string

	// UserIP and UserAgent are recorded in the chain of custody.
	UserIP    string
	UserAgent string

	// RawArtifact is the raw scanner output fed to generation. Empty
	// uses generate.DefaultRawArtifact.
	RawArtifact string
}

func (r *Request) validate() error {
	if r.OwnerID == "" {
		return errors.New("scan: owner id is required")
	}
	u, err := url.Parse(r.URL)
	if err != nil {
		return fmt.Errorf("scan: invalid target URL: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("scan: target must be an absolute http(s) URL, got %q", r.URL)
	}
	return nil
}

// Run executes the full pipeline for one scan and returns the final
// persisted scan. A generation failure still returns the scan, marked
// Failed, alongside the error; callers get a record either way once
// creation succeeded. Errors before the record exists return a nil
// scan.
//
// Cancellation mid-assessment does not fail the scan: assessments that
// already settled are committed and the scan completes degraded. The
// terminal write itself ignores cancellation so a scan that reached
// Scanning always reaches a terminal state.
func (o *Orchestrator) Run(ctx context.Context, req Request) (*vuln.Scan, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	now := o.now().UTC()
	s := &vuln.Scan{
		OwnerID:         req.OwnerID,
		URL:             req.URL,
		Status:          vuln.StatusQueued,
		CreatedAt:       now,
		Vulnerabilities: []vuln.Vulnerability{},
	}

	doc, err := scanToDocument(s)
	if err != nil {
		return nil, fmt.Errorf("scan: encode scan record: %w", err)
	}
	id, err := o.store.Create(ctx, req.OwnerID, doc)
	if err != nil {
		return nil, fmt.Errorf("scan: create scan record: %w", err)
	}
	s.ID = id
	o.emitter.EmitStatus(id, vuln.StatusQueued)
	o.logger.Info("scan created", "scanId", id, "url", req.URL)

	custody := &vuln.ChainOfCustody{
		UserID:    req.OwnerID,
		UserIP:    req.UserIP,
		UserAgent: req.UserAgent,
		Timestamp: now,
	}
	if err := o.transition(ctx, s, vuln.StatusScanning, store.Document{
		"status": string(vuln.StatusScanning),
		"chainOfCustody": store.Document{
			"userId":    custody.UserID,
			"userIp":    custody.UserIP,
			"userAgent": custody.UserAgent,
			"timestamp": custody.Timestamp.Format(time.RFC3339Nano),
		},
	}); err != nil {
		return s, err
	}
	s.ChainOfCustody = custody

	if err := o.recon(ctx, s.ID); err != nil {
		return s, o.fail(ctx, s, err)
	}

	o.advance(s.ID, reconStages)
	artifact := req.RawArtifact
	if artifact == "" {
		artifact = generate.DefaultRawArtifact
	}
	var found []vuln.Vulnerability
	err = retry.Do(ctx, o.retryCfg, completion.IsRetryable, func() error {
		var genErr error
		found, genErr = o.generator.Generate(ctx, artifact)
		return genErr
	})
	if err != nil {
		return s, o.fail(ctx, s, err)
	}
	for i := range found {
		found[i].ID = fmt.Sprintf("vuln-%s-%d", s.ID, i)
	}

	o.advance(s.ID, reconStages+1)
	if o.assessor != nil && len(found) > 0 {
		targetContext := fmt.Sprintf("The vulnerability was found on the %s website.", s.URL)
		found = o.assessor.AssessAll(ctx, found, targetContext)
	}

	completedAt := o.now().UTC()
	vulnsValue, err := vulnsToValue(found)
	if err != nil {
		return s, o.fail(ctx, s, fmt.Errorf("scan: encode vulnerabilities: %w", err))
	}
	if err := o.transition(context.WithoutCancel(ctx), s, vuln.StatusCompleted, store.Document{
		"status":          string(vuln.StatusCompleted),
		"completedAt":     completedAt.Format(time.RFC3339Nano),
		"vulnerabilities": vulnsValue,
	}); err != nil {
		return s, err
	}
	s.CompletedAt = &completedAt
	s.Vulnerabilities = found

	o.advance(s.ID, len(stageLogs))
	o.emitter.EmitProgress(s.ID, 100)
	o.logger.Info("scan completed",
		"scanId", s.ID,
		"vulnerabilities", len(found),
		"duration", completedAt.Sub(s.CreatedAt))
	return s, nil
}

// recon walks the simulated reconnaissance stages, honouring
// cancellation between steps.
func (o *Orchestrator) recon(ctx context.Context, scanID string) error {
	for i := 0; i < reconStages; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		o.emitter.EmitLog(scanID, stageLogs[i])
		o.emitter.EmitProgress(scanID, (i+1)*90/len(stageLogs))
		if o.stepDelay > 0 {
			timer := time.NewTimer(o.stepDelay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}
	}
	return nil
}

// advance emits the stage log at index and the matching progress step.
func (o *Orchestrator) advance(scanID string, index int) {
	if index >= len(stageLogs) {
		index = len(stageLogs) - 1
	}
	o.emitter.EmitLog(scanID, stageLogs[index])
	o.emitter.EmitProgress(scanID, (index+1)*90/len(stageLogs))
}

// transition persists a status change after checking it is legal, then
// publishes it. Callers update in-memory state on success.
func (o *Orchestrator) transition(ctx context.Context, s *vuln.Scan, next vuln.ScanStatus, patch store.Document) error {
	if !s.Status.CanTransition(next) {
		return fmt.Errorf("scan: illegal status transition %s -> %s", s.Status, next)
	}
	if err := o.store.Patch(ctx, s.OwnerID, s.ID, patch); err != nil {
		return fmt.Errorf("scan: persist %s transition: %w", next, err)
	}
	s.Status = next
	o.emitter.EmitStatus(s.ID, next)
	return nil
}

// fail marks the scan Failed with an empty vulnerability list and
// returns cause. The write ignores cancellation: a cancelled scan must
// still land in a terminal state.
func (o *Orchestrator) fail(ctx context.Context, s *vuln.Scan, cause error) error {
	completedAt := o.now().UTC()
	err := o.transition(context.WithoutCancel(ctx), s, vuln.StatusFailed, store.Document{
		"status":          string(vuln.StatusFailed),
		"completedAt":     completedAt.Format(time.RFC3339Nano),
		"vulnerabilities": []any{},
	})
	if err != nil {
		o.logger.Error("failed to persist scan failure", "scanId", s.ID, "error", err)
	} else {
		s.CompletedAt = &completedAt
		s.Vulnerabilities = []vuln.Vulnerability{}
	}
	o.logger.Error("scan failed", "scanId", s.ID, "error", cause)
	return cause
}

// Load reads one persisted scan.
func (o *Orchestrator) Load(ctx context.Context, ownerID, id string) (*vuln.Scan, error) {
	doc, err := o.store.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	return DocumentToScan(doc)
}

// History returns the owner's scans, newest first. A limit of 0 means
// all.
func (o *Orchestrator) History(ctx context.Context, ownerID string, limit int) ([]*vuln.Scan, error) {
	docs, err := o.store.List(ctx, ownerID, limit)
	if err != nil {
		return nil, err
	}
	scans := make([]*vuln.Scan, 0, len(docs))
	for _, doc := range docs {
		s, err := DocumentToScan(doc)
		if err != nil {
			return nil, err
		}
		scans = append(scans, s)
	}
	return scans, nil
}
