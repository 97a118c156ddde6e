package vuln

import "testing"

func TestSeverityIsValid(t *testing.T) {
	for _, s := range Severities {
		if !s.IsValid() {
			t.Errorf("%s should be valid", s)
		}
	}
	for _, s := range []Severity{"", "critical", "Informational", "HIGH"} {
		if s.IsValid() {
			t.Errorf("%q should be invalid", s)
		}
	}
}

func TestSeverityScoreOrdering(t *testing.T) {
	if Critical.Score() <= High.Score() {
		t.Error("Critical should outrank High")
	}
	if High.Score() <= Medium.Score() {
		t.Error("High should outrank Medium")
	}
	if Medium.Score() <= Low.Score() {
		t.Error("Medium should outrank Low")
	}
	if got := Severity("bogus").Score(); got != 0 {
		t.Errorf("unknown severity score = %d, want 0", got)
	}
}

func TestEffectiveSeverity(t *testing.T) {
	v := Vulnerability{Severity: Medium}
	if got := v.EffectiveSeverity(); got != Medium {
		t.Errorf("unassessed effective severity = %s, want %s", got, Medium)
	}
	if v.Assessed() {
		t.Error("unassessed item reported as assessed")
	}

	v.AssessedSeverity = High
	if got := v.EffectiveSeverity(); got != High {
		t.Errorf("assessed effective severity = %s, want %s", got, High)
	}
	// Raw severity is retained for audit.
	if v.Severity != Medium {
		t.Errorf("raw severity mutated to %s", v.Severity)
	}
}

func TestSeverityCounts(t *testing.T) {
	vulns := []Vulnerability{
		{Severity: Low},
		{Severity: Low, AssessedSeverity: Critical},
		{Severity: Medium},
	}
	counts := SeverityCounts(vulns)
	if counts[Low] != 1 || counts[Critical] != 1 || counts[Medium] != 1 {
		t.Errorf("unexpected counts: %v", counts)
	}
}
