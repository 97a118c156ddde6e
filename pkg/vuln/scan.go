package vuln

import "time"

// ScanStatus is the lifecycle state of a scan.
type ScanStatus string

const (
	// StatusQueued is the initial state set at creation.
	StatusQueued ScanStatus = "Queued"
	// StatusScanning means the pipeline is running.
	StatusScanning ScanStatus = "Scanning"
	// StatusCompleted is terminal: the pipeline finished with results.
	StatusCompleted ScanStatus = "Completed"
	// StatusFailed is terminal: vulnerability generation failed.
	StatusFailed ScanStatus = "Failed"
)

// Terminal reports whether no further status transitions are allowed.
func (s ScanStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// CanTransition reports whether moving from s to next is a legal,
// monotonic transition. Terminal states allow nothing.
func (s ScanStatus) CanTransition(next ScanStatus) bool {
	switch s {
	case StatusQueued:
		return next == StatusScanning
	case StatusScanning:
		return next == StatusCompleted || next == StatusFailed
	}
	return false
}

// ChainOfCustody records who initiated a scan, from where, and when.
// It is attached at scan creation and never mutated.
type ChainOfCustody struct {
	UserID    string    `json:"userId"`
	UserIP    string    `json:"userIp"`
	UserAgent string    `json:"userAgent"`
	Timestamp time.Time `json:"timestamp"`
}

// Scan is the root record tracking one vulnerability-assessment run for
// one target URL.
//
// Invariants maintained by the orchestrator:
//   - status transitions are monotonic (see CanTransition)
//   - Vulnerabilities is empty until the generator stage completes
//   - CompletedAt is set iff status is Completed or Failed
type Scan struct {
	ID              string          `json:"id"`
	OwnerID         string          `json:"ownerId"`
	URL             string          `json:"url"`
	Status          ScanStatus      `json:"status"`
	CreatedAt       time.Time       `json:"createdAt"`
	CompletedAt     *time.Time      `json:"completedAt,omitempty"`
	Vulnerabilities []Vulnerability `json:"vulnerabilities"`
	Summary         string          `json:"summary,omitempty"`
	ChainOfCustody  *ChainOfCustody `json:"chainOfCustody,omitempty"`
}
