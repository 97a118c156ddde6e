// Command vigilante runs an AI-driven vulnerability scan against a
// target URL and exports the findings as PDF and CSV reports.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"os/user"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/lmittmann/tint"

	"github.com/vigilante-ai/vigilante/pkg/assess"
	"github.com/vigilante-ai/vigilante/pkg/completion"
	"github.com/vigilante-ai/vigilante/pkg/config"
	"github.com/vigilante-ai/vigilante/pkg/generate"
	"github.com/vigilante-ai/vigilante/pkg/osint"
	"github.com/vigilante-ai/vigilante/pkg/report"
	"github.com/vigilante-ai/vigilante/pkg/scan"
	"github.com/vigilante-ai/vigilante/pkg/store"
	"github.com/vigilante-ai/vigilante/pkg/story"
	"github.com/vigilante-ai/vigilante/pkg/vuln"
)

const userAgent = "vigilante-cli/1.0"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		targetURL = flag.String("url", "", "target URL to scan (required unless -list)")
		outDir    = flag.String("out", ".", "directory for generated reports")
		noPDF     = flag.Bool("no-pdf", false, "skip the PDF report")
		noCSV     = flag.Bool("no-csv", false, "skip the CSV export")
		listScans = flag.Bool("list", false, "list previous scans and exit")
		showScan  = flag.String("show", "", "print a previous scan by id and exit")
		owner     = flag.String("owner", "", "owner id for stored scans (default: current user)")
		quiet     = flag.Bool("quiet", false, "suppress progress output")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	initLogger(cfg.LogLevel)
	logger := slog.Default()

	ownerID := *owner
	if ownerID == "" {
		ownerID = currentUser()
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}

	provider := completion.NewChatProvider(cfg.CompletionAPIKey, cfg.CompletionModel, cfg.CompletionBaseURL)
	client := completion.NewClient(provider, logger)

	orch, err := scan.New(scan.Options{
		Store:     st,
		Generator: generate.NewGenerator(client, logger),
		Assessor:  assess.NewAssessor(client, cfg.AssessConcurrency, logger),
		StepDelay: 400 * time.Millisecond,
		Logger:    logger,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch {
	case *listScans:
		return printHistory(ctx, orch, ownerID)
	case *showScan != "":
		return printScan(ctx, orch, ownerID, *showScan)
	}

	if *targetURL == "" {
		flag.Usage()
		return fmt.Errorf("-url is required")
	}
	if err := provider.Validate(); err != nil {
		return err
	}

	if !*quiet {
		orch.Events().Subscribe(scan.SinkFunc(renderEvent))
	}

	s, err := orch.Run(ctx, scan.Request{
		OwnerID:   ownerID,
		URL:       *targetURL,
		UserIP:    localIP(),
		UserAgent: userAgent,
	})
	if err != nil {
		if s != nil {
			fmt.Fprintf(os.Stderr, "scan %s failed: %v\n", s.ID, err)
		}
		return err
	}

	fmt.Printf("scan %s completed: %d finding(s)\n", s.ID, len(s.Vulnerabilities))

	assembler := report.NewAssembler(client, osint.NewAggregator(osint.Config{
		VirusTotalAPIKey:  cfg.VirusTotalAPIKey,
		WhoisXMLAPIKey:    cfg.WhoisXMLAPIKey,
		ShodanAPIKey:      cfg.ShodanAPIKey,
		CertSpotterAPIKey: cfg.CertSpotterAPIKey,
		Logger:            logger,
	}), story.NewGenerator(client, logger), logger)

	rep, err := assembler.Assemble(ctx, s)
	if err != nil {
		return err
	}
	for section, reason := range rep.Unavailable {
		logger.Warn("report section unavailable", "section", string(section), "reason", reason)
	}

	base := reportBaseName(s)
	if !*noPDF {
		path := filepath.Join(*outDir, base+".pdf")
		if err := writePDF(path, rep); err != nil {
			return err
		}
		fmt.Println("wrote", path)
	}
	if !*noCSV {
		path := filepath.Join(*outDir, base+".csv")
		if err := writeCSV(path, s); err != nil {
			return err
		}
		fmt.Println("wrote", path)
	}
	return nil
}

func initLogger(level slog.Level) {
	slog.SetDefault(slog.New(
		tint.NewHandler(os.Stderr, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		}),
	))
}

func openStore(cfg *config.Config) (store.DocumentStore, error) {
	switch cfg.StoreBackend {
	case config.StoreValkey:
		return store.NewValkeyStore(cfg.ValkeyAddr)
	default:
		return store.NewMemoryStore(), nil
	}
}

// renderEvent prints pipeline events as they arrive.
func renderEvent(e scan.Event) {
	switch e.Type {
	case scan.EventTypeLog:
		fmt.Fprintf(os.Stderr, "  %s\n", e.Message)
	case scan.EventTypeProgress:
		fmt.Fprintf(os.Stderr, "  [%3d%%]\n", e.Percent)
	case scan.EventTypeStatus:
		fmt.Fprintf(os.Stderr, "status: %s\n", e.Status)
	}
}

func printHistory(ctx context.Context, orch *scan.Orchestrator, ownerID string) error {
	scans, err := orch.History(ctx, ownerID, 0)
	if err != nil {
		return err
	}
	if len(scans) == 0 {
		fmt.Println("no scans recorded")
		return nil
	}
	for _, s := range scans {
		fmt.Printf("%-36s  %-9s  %3d finding(s)  %s  %s\n",
			s.ID, s.Status, len(s.Vulnerabilities),
			s.CreatedAt.Local().Format(time.DateTime), s.URL)
	}
	return nil
}

func printScan(ctx context.Context, orch *scan.Orchestrator, ownerID, id string) error {
	s, err := orch.Load(ctx, ownerID, id)
	if err != nil {
		return err
	}
	fmt.Printf("Scan %s\n  URL:     %s\n  Status:  %s\n  Created: %s\n",
		s.ID, s.URL, s.Status, s.CreatedAt.Local().Format(time.DateTime))
	if s.CompletedAt != nil {
		fmt.Printf("  Done:    %s\n", s.CompletedAt.Local().Format(time.DateTime))
	}
	for _, v := range s.Vulnerabilities {
		fmt.Printf("  [%s] %s (%s)\n", v.EffectiveSeverity(), v.Name, v.CWE)
	}
	return nil
}

func writePDF(path string, rep *report.Report) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := report.WritePDF(f, rep); err != nil {
		return err
	}
	return f.Close()
}

func writeCSV(path string, s *vuln.Scan) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := report.WriteCSV(f, s, report.CSVOptions{ExcelCompatible: true}); err != nil {
		return err
	}
	return f.Close()
}

// reportBaseName mirrors the export naming used by the web UI:
// VigilanteAI-Report-<host>.
func reportBaseName(s *vuln.Scan) string {
	host := strings.TrimPrefix(strings.TrimPrefix(s.URL, "https://"), "http://")
	host = strings.ReplaceAll(strings.Trim(host, "/"), "/", "-")
	return "VigilanteAI-Report-" + host
}

func currentUser() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	return "local"
}

// localIP best-effort resolves the outbound interface address for the
// chain of custody. UDP dial does not send any packets.
func localIP() string {
	conn, err := net.Dial("udp", "203.0.113.1:80")
	if err != nil {
		return "127.0.0.1"
	}
	defer conn.Close()
	if addr, ok := conn.LocalAddr().(*net.UDPAddr); ok {
		return addr.IP.String()
	}
	return "127.0.0.1"
}
