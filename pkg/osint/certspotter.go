package osint

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// CertIssuance is one certificate issuance from certificate transparency
// logs, as reported by the SSLMate Cert Spotter API.
type CertIssuance struct {
	ID        string   `json:"id"`
	DNSNames  []string `json:"dns_names"`
	Issuer    string   `json:"issuer"`
	NotBefore string   `json:"not_before"`
	NotAfter  string   `json:"not_after"`
}

// CertSpotterClient queries the SSLMate Cert Spotter issuances API.
type CertSpotterClient struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
}

// NewCertSpotterClient creates a Cert Spotter client.
func NewCertSpotterClient(apiKey string) *CertSpotterClient {
	return &CertSpotterClient{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    "https://api.certspotter.com/v1",
	}
}

// Configured reports whether an API key is present.
func (c *CertSpotterClient) Configured() bool { return c.apiKey != "" }

// Issuances fetches certificate issuances for a domain, including
// subdomains.
func (c *CertSpotterClient) Issuances(ctx context.Context, domain string) ([]CertIssuance, error) {
	q := url.Values{}
	q.Set("domain", domain)
	q.Set("include_subdomains", "true")
	q.Add("expand", "dns_names")
	q.Add("expand", "issuer")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/issuances?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("certspotter API error: %d", resp.StatusCode)
	}

	var data []struct {
		ID       string   `json:"id"`
		DNSNames []string `json:"dns_names"`
		Issuer   struct {
			FriendlyName string `json:"friendly_name"`
			Name         string `json:"name"`
		} `json:"issuer"`
		NotBefore string `json:"not_before"`
		NotAfter  string `json:"not_after"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, err
	}

	issuances := make([]CertIssuance, 0, len(data))
	for _, d := range data {
		issuer := d.Issuer.FriendlyName
		if issuer == "" {
			issuer = d.Issuer.Name
		}
		issuances = append(issuances, CertIssuance{
			ID:        d.ID,
			DNSNames:  d.DNSNames,
			Issuer:    issuer,
			NotBefore: d.NotBefore,
			NotAfter:  d.NotAfter,
		})
	}
	return issuances, nil
}
