// Package osint aggregates open-source intelligence about a scan target
// from independent providers: domain reputation, registration records,
// host exposure, and certificate transparency.
//
// Every provider is independently optional. A provider-level failure,
// whether a missing credential or a failed query, degrades to "field
// absent" in the aggregate record; partial OSINT
// data is an expected, non-error outcome. The aggregator itself fails
// only on malformed input.
package osint

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"time"
)

// Source identifies an OSINT provider.
type Source string

const (
	SourceVirusTotal  Source = "virustotal"
	SourceWhoisXML    Source = "whoisxml"
	SourceShodan      Source = "shodan"
	SourceCertSpotter Source = "certspotter"
)

// ProviderStatus is the tri-state outcome of one provider query.
// "No credential" and "provider errored" are deliberately distinct
// states, never conflated.
type ProviderStatus string

const (
	// StatusOK means the provider returned data.
	StatusOK ProviderStatus = "ok"
	// StatusUnconfigured means the provider has no credential and was
	// not queried.
	StatusUnconfigured ProviderStatus = "unconfigured"
	// StatusError means the query was attempted and failed.
	StatusError ProviderStatus = "error"
)

// Record is the sparse aggregate of independently-sourced sub-records.
// Each field is absent when its provider was unconfigured or errored;
// Sources records why.
type Record struct {
	Domain       string              `json:"domain"`
	Reputation   *ReputationReport   `json:"reputation,omitempty"`
	Registration *RegistrationRecord `json:"registration,omitempty"`
	Host         *HostReport         `json:"host,omitempty"`
	Certificates []CertIssuance      `json:"certificates,omitempty"`

	Sources   map[Source]ProviderStatus `json:"sources"`
	FetchedAt time.Time                 `json:"fetchedAt"`
}

// Aggregator queries all configured providers concurrently and merges
// their results into one Record.
type Aggregator struct {
	virusTotal  *VirusTotalClient
	whoisXML    *WhoisXMLClient
	shodan      *ShodanClient
	certSpotter *CertSpotterClient
	resolver    *net.Resolver
	logger      *slog.Logger
}

// Config holds one credential per provider. An empty key leaves that
// provider unconfigured, which is legal.
type Config struct {
	VirusTotalAPIKey  string
	WhoisXMLAPIKey    string
	ShodanAPIKey      string
	CertSpotterAPIKey string

	// Logger for degraded-provider logging (default: slog.Default()).
	Logger *slog.Logger
}

// NewAggregator creates an aggregator with one client per provider.
func NewAggregator(cfg Config) *Aggregator {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{
		virusTotal:  NewVirusTotalClient(cfg.VirusTotalAPIKey),
		whoisXML:    NewWhoisXMLClient(cfg.WhoisXMLAPIKey),
		shodan:      NewShodanClient(cfg.ShodanAPIKey),
		certSpotter: NewCertSpotterClient(cfg.CertSpotterAPIKey),
		resolver:    net.DefaultResolver,
		logger:      logger,
	}
}

// Enrich queries every provider for the given domain concurrently and
// merges the results. Provider failures are logged and recorded in
// Sources, never propagated. The only error case is invalid input.
func (a *Aggregator) Enrich(ctx context.Context, domain string) (*Record, error) {
	domain = strings.TrimSpace(domain)
	if !IsValidDomain(domain) {
		return nil, fmt.Errorf("osint: invalid domain %q", domain)
	}

	rec := &Record{
		Domain:    domain,
		Sources:   make(map[Source]ProviderStatus, 4),
		FetchedAt: time.Now().UTC(),
	}

	var mu sync.Mutex
	setStatus := func(s Source, status ProviderStatus, err error) {
		mu.Lock()
		rec.Sources[s] = status
		mu.Unlock()
		if err != nil {
			a.logger.Warn("osint provider degraded", "source", string(s), "error", err)
		}
	}

	var wg sync.WaitGroup
	wg.Add(4)

	go func() {
		defer wg.Done()
		if !a.virusTotal.Configured() {
			setStatus(SourceVirusTotal, StatusUnconfigured, nil)
			return
		}
		rep, err := a.virusTotal.DomainReport(ctx, domain)
		if err != nil {
			setStatus(SourceVirusTotal, StatusError, err)
			return
		}
		rec.Reputation = rep
		setStatus(SourceVirusTotal, StatusOK, nil)
	}()

	go func() {
		defer wg.Done()
		if !a.whoisXML.Configured() {
			setStatus(SourceWhoisXML, StatusUnconfigured, nil)
			return
		}
		reg, err := a.whoisXML.Lookup(ctx, domain)
		if err != nil {
			setStatus(SourceWhoisXML, StatusError, err)
			return
		}
		rec.Registration = reg
		setStatus(SourceWhoisXML, StatusOK, nil)
	}()

	go func() {
		defer wg.Done()
		if !a.shodan.Configured() {
			setStatus(SourceShodan, StatusUnconfigured, nil)
			return
		}
		ip, err := a.resolveIP(ctx, domain)
		if err != nil {
			setStatus(SourceShodan, StatusError, err)
			return
		}
		host, err := a.shodan.HostReport(ctx, ip)
		if err != nil {
			setStatus(SourceShodan, StatusError, err)
			return
		}
		rec.Host = host
		setStatus(SourceShodan, StatusOK, nil)
	}()

	go func() {
		defer wg.Done()
		if !a.certSpotter.Configured() {
			setStatus(SourceCertSpotter, StatusUnconfigured, nil)
			return
		}
		certs, err := a.certSpotter.Issuances(ctx, domain)
		if err != nil {
			setStatus(SourceCertSpotter, StatusError, err)
			return
		}
		rec.Certificates = certs
		setStatus(SourceCertSpotter, StatusOK, nil)
	}()

	wg.Wait()
	return rec, nil
}

// resolveIP resolves a domain to its first IPv4 address, falling back to
// the first address of any family.
func (a *Aggregator) resolveIP(ctx context.Context, domain string) (string, error) {
	addrs, err := a.resolver.LookupIP(ctx, "ip", domain)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", domain, err)
	}
	if len(addrs) == 0 {
		return "", fmt.Errorf("resolve %s: no addresses", domain)
	}
	for _, addr := range addrs {
		if v4 := addr.To4(); v4 != nil {
			return v4.String(), nil
		}
	}
	return addrs[0].String(), nil
}

// ExtractDomain extracts the hostname from a URL, accepting bare domains.
func ExtractDomain(rawURL string) (string, error) {
	if !strings.Contains(rawURL, "://") {
		rawURL = "https://" + rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	host := u.Hostname()
	if host == "" {
		return "", fmt.Errorf("osint: no hostname in %q", rawURL)
	}
	return host, nil
}

var validDomainRegex = regexp.MustCompile(`^([a-zA-Z0-9]([a-zA-Z0-9\-]{0,61}[a-zA-Z0-9])?\.)+[a-zA-Z]{2,}$`)

// IsValidDomain checks if a string is a valid domain.
func IsValidDomain(domain string) bool {
	return validDomainRegex.MatchString(domain)
}
