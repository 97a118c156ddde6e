package vuln

// Vulnerability is a single finding within a scan.
//
// Severity is the as-generated severity and is retained unmodified for
// audit. AssessedSeverity, when set by the assessor stage, is the
// authoritative severity for reporting and counting.
type Vulnerability struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Severity    Severity `json:"severity"`
	CWE         string   `json:"cwe,omitempty"`
	Remediation string   `json:"remediation"`
	Evidence    string   `json:"evidence,omitempty"`

	// Assessment enrichment, absent until the assessor stage succeeds
	// for this item. An item whose assessment failed keeps both fields
	// empty; that is an expected degraded outcome, not an error.
	AssessedSeverity        Severity `json:"assessedSeverity,omitempty"`
	AssessmentJustification string   `json:"assessmentJustification,omitempty"`
}

// EffectiveSeverity returns the severity to use for reporting: the
// assessed severity when present, otherwise the raw generated severity.
func (v *Vulnerability) EffectiveSeverity() Severity {
	if v.AssessedSeverity != "" {
		return v.AssessedSeverity
	}
	return v.Severity
}

// Assessed reports whether the assessor stage enriched this item.
func (v *Vulnerability) Assessed() bool {
	return v.AssessedSeverity != ""
}

// SeverityCounts tallies vulnerabilities by effective severity.
func SeverityCounts(vulns []Vulnerability) map[Severity]int {
	counts := make(map[Severity]int, len(Severities))
	for i := range vulns {
		counts[vulns[i].EffectiveSeverity()]++
	}
	return counts
}
