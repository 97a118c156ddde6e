package vuln

// Severity represents the severity level of a reported vulnerability.
// Values are title-case strings matching the generation contract used
// by the completion prompts and the export formats.
type Severity string

const (
	// Critical represents immediate system compromise (RCE, auth bypass).
	Critical Severity = "Critical"

	// High represents significant impact requiring prompt fix (SQLi, stored XSS).
	High Severity = "High"

	// Medium represents moderate impact (reflected XSS, CSRF).
	Medium Severity = "Medium"

	// Low represents limited impact (verbose errors, minor info leak).
	Low Severity = "Low"
)

// Severities lists all valid severity values from most to least severe.
var Severities = []Severity{Critical, High, Medium, Low}

// IsValid reports whether s is a recognized severity level.
func (s Severity) IsValid() bool {
	switch s {
	case Critical, High, Medium, Low:
		return true
	}
	return false
}

// Score returns a numeric score for sorting and comparison.
// Critical=4, High=3, Medium=2, Low=1, unknown=0.
func (s Severity) Score() int {
	switch s {
	case Critical:
		return 4
	case High:
		return 3
	case Medium:
		return 2
	case Low:
		return 1
	default:
		return 0
	}
}

// String returns the severity as a string.
func (s Severity) String() string {
	return string(s)
}
