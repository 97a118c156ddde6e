package osint

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// HostReport is Shodan's view of a single host.
type HostReport struct {
	IP        string   `json:"ip"`
	Ports     []int    `json:"ports"`
	Hostnames []string `json:"hostnames,omitempty"`
	Org       string   `json:"org,omitempty"`
	ISP       string   `json:"isp,omitempty"`
	OS        string   `json:"os,omitempty"`
	Country   string   `json:"country,omitempty"`
	LastSeen  string   `json:"lastSeen,omitempty"`
}

// ShodanClient queries the Shodan host API.
type ShodanClient struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
}

// NewShodanClient creates a Shodan client.
func NewShodanClient(apiKey string) *ShodanClient {
	return &ShodanClient{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    "https://api.shodan.io",
	}
}

// Configured reports whether an API key is present.
func (c *ShodanClient) Configured() bool { return c.apiKey != "" }

// redactAPIKey removes the API key from error messages to prevent leakage in logs.
func redactAPIKey(err error, key string) error {
	if err == nil || key == "" {
		return err
	}
	return fmt.Errorf("%s", strings.ReplaceAll(err.Error(), key, "[REDACTED]"))
}

// HostReport fetches exposure data for an IP address.
func (c *ShodanClient) HostReport(ctx context.Context, ip string) (*HostReport, error) {
	url := fmt.Sprintf("%s/shodan/host/%s?key=%s", c.baseURL, ip, c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, redactAPIKey(err, c.apiKey)
	}
	defer resp.Body.Close()

	// Shodan returns 404 when it has no data for the IP.
	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("shodan: no information for %s", ip)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("shodan API error: %d", resp.StatusCode)
	}

	var data struct {
		IPStr     string   `json:"ip_str"`
		Ports     []int    `json:"ports"`
		Hostnames []string `json:"hostnames"`
		Org       string   `json:"org"`
		ISP       string   `json:"isp"`
		OS        string   `json:"os"`
		Country   string   `json:"country_name"`
		LastSeen  string   `json:"last_update"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, err
	}

	return &HostReport{
		IP:        data.IPStr,
		Ports:     data.Ports,
		Hostnames: data.Hostnames,
		Org:       data.Org,
		ISP:       data.ISP,
		OS:        data.OS,
		Country:   data.Country,
		LastSeen:  data.LastSeen,
	}, nil
}
