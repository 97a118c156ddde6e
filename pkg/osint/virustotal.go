package osint

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// ReputationReport holds VirusTotal's analysis of a domain.
type ReputationReport struct {
	LastAnalysisStats AnalysisStats `json:"last_analysis_stats"`
	Reputation        int           `json:"reputation"`
	LastModified      int64         `json:"last_modification_date"`
	Whois             string        `json:"whois,omitempty"`
}

// AnalysisStats is the engine-verdict breakdown for a domain.
type AnalysisStats struct {
	Harmless   int `json:"harmless"`
	Malicious  int `json:"malicious"`
	Suspicious int `json:"suspicious"`
	Undetected int `json:"undetected"`
	Timeout    int `json:"timeout"`
}

// VirusTotalClient queries the VirusTotal v3 domain API.
type VirusTotalClient struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
}

// NewVirusTotalClient creates a VirusTotal client.
func NewVirusTotalClient(apiKey string) *VirusTotalClient {
	return &VirusTotalClient{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    "https://www.virustotal.com/api/v3",
	}
}

// Configured reports whether an API key is present.
func (c *VirusTotalClient) Configured() bool { return c.apiKey != "" }

// DomainReport fetches the reputation report for a domain.
func (c *VirusTotalClient) DomainReport(ctx context.Context, domain string) (*ReputationReport, error) {
	url := fmt.Sprintf("%s/domains/%s", c.baseURL, domain)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("x-apikey", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("virustotal API error: %d", resp.StatusCode)
	}

	var data struct {
		Data struct {
			Attributes ReputationReport `json:"attributes"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, err
	}

	return &data.Data.Attributes, nil
}
