package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	gofpdf "github.com/go-pdf/fpdf"

	"github.com/vigilante-ai/vigilante/pkg/osint"
	"github.com/vigilante-ai/vigilante/pkg/vuln"
)

// pdfSeverityColors maps severities to RGB text colors.
var pdfSeverityColors = map[vuln.Severity][]int{
	vuln.Critical: {220, 38, 38},
	vuln.High:     {234, 88, 12},
	vuln.Medium:   {202, 138, 4},
	vuln.Low:      {22, 163, 74},
}

const (
	pdfMargin = 20.0
	headFillR = 30
	headFillG = 144
	headFillB = 255
)

// PDFWriter renders an assembled report as a paginated PDF.
type PDFWriter struct {
	// Brand is the product name on the title page and footer.
	// Empty uses "VigilanteAI".
	Brand string

	section int
}

// WritePDF renders the report with default branding.
func WritePDF(w io.Writer, rep *Report) error {
	return (&PDFWriter{}).Write(w, rep)
}

// Write renders the full report: title page, executive summary, attack
// path, OSINT findings, vulnerability table, per-vulnerability detail
// pages, chain of custody, and the legal disclaimer. Sections follow
// that order; degraded sections render an unavailable note and the
// attack-path section is absent entirely for a clean scan.
func (pw *PDFWriter) Write(w io.Writer, rep *Report) error {
	if rep == nil || rep.Scan == nil {
		return fmt.Errorf("report: nothing to render")
	}
	brand := pw.Brand
	if brand == "" {
		brand = "VigilanteAI"
	}
	pw.section = 0

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.SetTextColor(120, 120, 120)
		pdf.CellFormat(0, 5,
			fmt.Sprintf("© %d %s. All rights reserved.", rep.GeneratedAt.Year(), brand),
			"", 0, "C", false, 0, "")
		pdf.SetX(-40)
		pdf.CellFormat(0, 5,
			fmt.Sprintf("Page %d of {nb}", pdf.PageNo()),
			"", 0, "R", false, 0, "")
	})

	pw.addTitlePage(pdf, rep, brand)
	pw.addExecutiveSummary(pdf, rep)
	pw.addAttackPath(pdf, rep)
	pw.addOsintFindings(pdf, rep)
	pw.addVulnerabilityTable(pdf, rep.Scan)
	pw.addVulnerabilityDetails(pdf, rep.Scan)
	pw.addChainOfCustody(pdf, rep.Scan)
	pw.addLegalDisclaimer(pdf)

	return pdf.Output(w)
}

func (pw *PDFWriter) addSectionHeader(pdf *gofpdf.Fpdf, title string) {
	pw.section++
	pdf.SetFont("Helvetica", "B", 18)
	pdf.SetTextColor(15, 23, 42)
	pdf.CellFormat(0, 10, fmt.Sprintf("%d. %s", pw.section, title), "", 1, "L", false, 0, "")
	pdf.Ln(4)
}

func (pw *PDFWriter) addUnavailableNote(pdf *gofpdf.Fpdf, reason string) {
	pdf.SetFont("Helvetica", "I", 11)
	pdf.SetTextColor(120, 120, 120)
	pdf.MultiCell(0, 6, "This section is unavailable: "+reason, "", "L", false)
}

func (pw *PDFWriter) addTitlePage(pdf *gofpdf.Fpdf, rep *Report, brand string) {
	pdf.AddPage()
	pageW, _ := pdf.GetPageSize()

	pdf.SetY(40)
	pdf.SetFont("Helvetica", "B", 24)
	pdf.SetTextColor(15, 23, 42)
	pdf.CellFormat(0, 12, brand, "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, "Vulnerability Scan Report", "", 1, "C", false, 0, "")

	pdf.Ln(10)
	pdf.SetFont("Helvetica", "", 12)
	pdf.CellFormat(0, 8, "Target URL: "+rep.Scan.URL, "", 1, "C", false, 0, "")
	completed := "N/A"
	if rep.Scan.CompletedAt != nil {
		completed = rep.Scan.CompletedAt.Format(time.RFC1123)
	}
	pdf.CellFormat(0, 8, "Date: "+completed, "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 8, "Status: "+string(rep.Scan.Status), "", 1, "C", false, 0, "")

	pdf.SetLineWidth(0.5)
	pdf.Line(pdfMargin, 100, pageW-pdfMargin, 100)

	if rep.PreparedFor != "" {
		pdf.SetY(115)
		pdf.SetFont("Helvetica", "B", 12)
		pdf.CellFormat(0, 8, "Report Prepared For:", "", 1, "C", false, 0, "")
		pdf.SetFont("Helvetica", "", 12)
		pdf.CellFormat(0, 8, rep.PreparedFor, "", 1, "C", false, 0, "")
	}

	counts := vuln.SeverityCounts(rep.Scan.Vulnerabilities)
	pdf.SetY(150)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, fmt.Sprintf("Findings: %d", len(rep.Scan.Vulnerabilities)), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	for _, sev := range []vuln.Severity{vuln.Critical, vuln.High, vuln.Medium, vuln.Low} {
		if counts[sev] == 0 {
			continue
		}
		c := pdfSeverityColors[sev]
		pdf.SetTextColor(c[0], c[1], c[2])
		pdf.CellFormat(0, 6, fmt.Sprintf("%s: %d", sev, counts[sev]), "", 1, "C", false, 0, "")
	}
}

func (pw *PDFWriter) addExecutiveSummary(pdf *gofpdf.Fpdf, rep *Report) {
	pdf.AddPage()
	pw.addSectionHeader(pdf, "Executive Summary")
	if !rep.HasSection(SectionSummary) {
		pw.addUnavailableNote(pdf, rep.Unavailable[SectionSummary])
		return
	}
	pdf.SetFont("Helvetica", "", 12)
	pdf.SetTextColor(40, 40, 40)
	pdf.MultiCell(0, 6, rep.ExecutiveSummary, "", "L", false)
}

func (pw *PDFWriter) addAttackPath(pdf *gofpdf.Fpdf, rep *Report) {
	if len(rep.Scan.Vulnerabilities) == 0 {
		return
	}
	pdf.AddPage()
	pw.addSectionHeader(pdf, "Probable Attack Path")
	if !rep.HasSection(SectionAttackPath) {
		pw.addUnavailableNote(pdf, rep.Unavailable[SectionAttackPath])
		return
	}
	for _, step := range rep.AttackStory.Steps {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.SetTextColor(15, 23, 42)
		pdf.CellFormat(0, 7, fmt.Sprintf("Step %d: %s", step.Step, step.Title), "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
		pdf.SetTextColor(60, 60, 60)
		pdf.MultiCell(0, 5, step.Description, "", "L", false)
		pdf.Ln(3)
	}
}

func (pw *PDFWriter) addOsintFindings(pdf *gofpdf.Fpdf, rep *Report) {
	pdf.AddPage()
	pw.addSectionHeader(pdf, "OSINT Findings")
	if !rep.HasSection(SectionOsint) {
		pw.addUnavailableNote(pdf, rep.Unavailable[SectionOsint])
		return
	}
	rec := rep.Osint

	keyVal := func(key, val string) {
		if val == "" {
			return
		}
		pdf.SetFont("Helvetica", "B", 10)
		pdf.SetTextColor(60, 60, 60)
		pdf.CellFormat(50, 6, key, "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.MultiCell(0, 6, val, "", "L", false)
	}

	keyVal("Domain", rec.Domain)
	if rec.Reputation != nil {
		st := rec.Reputation.LastAnalysisStats
		keyVal("Reputation", fmt.Sprintf("%d malicious, %d suspicious, %d harmless verdicts",
			st.Malicious, st.Suspicious, st.Harmless))
	}
	if rec.Registration != nil {
		keyVal("Registrar", rec.Registration.Registrar)
		keyVal("Registered", rec.Registration.CreatedDate)
		keyVal("Expires", rec.Registration.ExpiresDate)
		keyVal("Registrant Org", rec.Registration.RegistrantOrg)
	}
	if rec.Host != nil {
		keyVal("Host IP", rec.Host.IP)
		keyVal("Open Ports", joinPorts(rec.Host.Ports))
		keyVal("Organization", rec.Host.Org)
	}
	if len(rec.Certificates) > 0 {
		keyVal("Certificates", fmt.Sprintf("%d recent issuances on record", len(rec.Certificates)))
	}

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "I", 9)
	pdf.SetTextColor(120, 120, 120)
	for _, src := range []osint.Source{osint.SourceVirusTotal, osint.SourceWhoisXML, osint.SourceShodan, osint.SourceCertSpotter} {
		if status, ok := rec.Sources[src]; ok && status != osint.StatusOK {
			pdf.CellFormat(0, 5, fmt.Sprintf("%s: %s", src, status), "", 1, "L", false, 0, "")
		}
	}
}

func (pw *PDFWriter) addVulnerabilityTable(pdf *gofpdf.Fpdf, s *vuln.Scan) {
	pdf.AddPage()
	pw.addSectionHeader(pdf, "Vulnerability Details")
	if len(s.Vulnerabilities) == 0 {
		pdf.SetFont("Helvetica", "", 11)
		pdf.SetTextColor(60, 60, 60)
		pdf.MultiCell(0, 6, "No vulnerabilities were identified during this scan.", "", "L", false)
		return
	}

	pageW, _ := pdf.GetPageSize()
	usable := pageW - 2*pdfMargin
	sevW, cweW := 28.0, 32.0
	nameW := usable - sevW - cweW

	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(headFillR, headFillG, headFillB)
	pdf.SetTextColor(255, 255, 255)
	pdf.CellFormat(sevW, 8, "Severity", "1", 0, "C", true, 0, "")
	pdf.CellFormat(nameW, 8, "Vulnerability", "1", 0, "L", true, 0, "")
	pdf.CellFormat(cweW, 8, "CWE", "1", 1, "C", true, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	for i, v := range s.Vulnerabilities {
		if i%2 == 1 {
			pdf.SetFillColor(241, 245, 249)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}
		sev := v.EffectiveSeverity()
		c := pdfSeverityColors[sev]
		if c == nil {
			c = []int{128, 128, 128}
		}
		pdf.SetTextColor(c[0], c[1], c[2])
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(sevW, 7, string(sev), "1", 0, "C", true, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.SetTextColor(40, 40, 40)
		pdf.CellFormat(nameW, 7, truncate(v.Name, 70), "1", 0, "L", true, 0, "")
		pdf.CellFormat(cweW, 7, v.CWE, "1", 1, "C", true, 0, "")
	}
}

func (pw *PDFWriter) addVulnerabilityDetails(pdf *gofpdf.Fpdf, s *vuln.Scan) {
	for i, v := range s.Vulnerabilities {
		pdf.AddPage()
		pdf.SetFont("Helvetica", "B", 16)
		pdf.SetTextColor(15, 23, 42)
		pdf.MultiCell(0, 8, fmt.Sprintf("%d. %s", i+1, v.Name), "", "L", false)
		pdf.Ln(2)

		field := func(label, value string) {
			if value == "" {
				return
			}
			pdf.SetFont("Helvetica", "B", 12)
			pdf.SetTextColor(60, 60, 60)
			pdf.CellFormat(0, 7, label, "", 1, "L", false, 0, "")
			pdf.SetFont("Helvetica", "", 11)
			pdf.SetTextColor(40, 40, 40)
			pdf.MultiCell(0, 5, value, "", "L", false)
			pdf.Ln(2)
		}

		sev := v.EffectiveSeverity()
		c := pdfSeverityColors[sev]
		if c == nil {
			c = []int{128, 128, 128}
		}
		pdf.SetFont("Helvetica", "B", 12)
		pdf.SetTextColor(60, 60, 60)
		pdf.CellFormat(25, 7, "Severity:", "", 0, "L", false, 0, "")
		pdf.SetTextColor(c[0], c[1], c[2])
		pdf.CellFormat(0, 7, string(sev), "", 1, "L", false, 0, "")
		pdf.Ln(2)

		field("Description", v.Description)
		field("Evidence", v.Evidence)
		field("CWE", v.CWE)
		field("Remediation", v.Remediation)
		if v.Assessed() {
			field("AI Severity Assessment", fmt.Sprintf("%s - %s", v.AssessedSeverity, v.AssessmentJustification))
		}
	}
}

func (pw *PDFWriter) addChainOfCustody(pdf *gofpdf.Fpdf, s *vuln.Scan) {
	if s.ChainOfCustody == nil {
		return
	}
	pdf.AddPage()
	pw.addSectionHeader(pdf, "Chain of Custody")
	pdf.SetFont("Helvetica", "", 11)
	pdf.SetTextColor(40, 40, 40)
	rows := [][2]string{
		{"Initiated By", s.ChainOfCustody.UserID},
		{"Source IP", s.ChainOfCustody.UserIP},
		{"User Agent", s.ChainOfCustody.UserAgent},
		{"Timestamp", s.ChainOfCustody.Timestamp.Format(time.RFC1123)},
	}
	for _, row := range rows {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(45, 7, row[0], "1", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
		pdf.CellFormat(0, 7, row[1], "1", 1, "L", false, 0, "")
	}
}

func (pw *PDFWriter) addLegalDisclaimer(pdf *gofpdf.Fpdf) {
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 18)
	pdf.SetTextColor(15, 23, 42)
	pdf.CellFormat(0, 10, "LEGAL DISCLAIMER & NOTICE", "", 1, "L", false, 0, "")
	pdf.Ln(4)

	heading := func(title string) {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.SetTextColor(15, 23, 42)
		pdf.CellFormat(0, 7, title, "", 1, "L", false, 0, "")
	}
	body := func(text string) {
		pdf.SetFont("Helvetica", "", 10)
		pdf.SetTextColor(40, 40, 40)
		pdf.MultiCell(0, 5, text, "", "L", false)
		pdf.Ln(3)
	}
	bullets := func(items []string) {
		pdf.SetFont("Helvetica", "", 10)
		pdf.SetTextColor(40, 40, 40)
		for _, item := range items {
			pdf.CellFormat(5, 5, "-", "", 0, "L", false, 0, "")
			pdf.MultiCell(0, 5, item, "", "L", false)
			pdf.Ln(1)
		}
		pdf.Ln(2)
	}

	heading("Disclaimer")
	body("VigilanteAI is a cybersecurity research and educational tool designed to assist users in identifying potential vulnerabilities on systems they own or have explicit authorization to test. It is intended solely for lawful and ethical use in compliance with applicable cybersecurity and data protection laws.")

	heading("Notice of Authorized Use")
	body("By using VigilanteAI, you acknowledge and agree that:")
	bullets([]string{
		"You will only scan systems, websites, or networks that you personally own or for which you have explicit, written consent from the owner.",
		"You understand that unauthorized vulnerability scanning, penetration testing, or exploitation of third-party systems may violate laws such as the Indian IT Act 2000, the Computer Misuse Act, or other regional cybersecurity regulations.",
		"The developers, contributors, and maintainers of VigilanteAI assume no liability for misuse, damages, or legal consequences arising from unauthorized or unethical use of this software.",
	})

	body("This tool should be used for defensive and educational cybersecurity purposes only, such as:")
	bullets([]string{
		"Security auditing of authorized assets",
		"Academic research and learning",
		"Internal organization security assessments",
	})

	heading("Warning")
	body("Engaging in unauthorized scanning or data probing activities on systems without permission is illegal and may lead to civil or criminal penalties. Always obtain proper authorization before running any scan.")

	heading("Ethical Usage")
	body("VigilanteAI supports responsible disclosure practices. If vulnerabilities are discovered, users are encouraged to notify affected parties responsibly and in good faith.")
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}

func joinPorts(ports []int) string {
	if len(ports) == 0 {
		return ""
	}
	parts := make([]string, len(ports))
	for i, p := range ports {
		parts[i] = fmt.Sprintf("%d", p)
	}
	return strings.Join(parts, ", ")
}
