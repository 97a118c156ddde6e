// Package vuln provides the shared vulnerability and scan record types
// used across the pipeline packages.
//
// The Scan aggregate is created once, mutated in place by the orchestrator
// through each pipeline stage, and never deleted by the core. Vulnerability
// entries are created in bulk by the generator stage and enriched in place
// by the assessor stage; they are never re-ordered or removed once created.
package vuln
