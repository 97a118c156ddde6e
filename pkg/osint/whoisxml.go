package osint

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// RegistrationRecord is a condensed domain registration (WHOIS) record.
type RegistrationRecord struct {
	DomainName        string `json:"domainName"`
	Registrar         string `json:"registrar,omitempty"`
	CreatedDate       string `json:"createdDate,omitempty"`
	UpdatedDate       string `json:"updatedDate,omitempty"`
	ExpiresDate       string `json:"expiresDate,omitempty"`
	RegistrantOrg     string `json:"registrantOrg,omitempty"`
	RegistrantCountry string `json:"registrantCountry,omitempty"`
}

// WhoisXMLClient queries the WhoisXML API for registration records.
type WhoisXMLClient struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
}

// NewWhoisXMLClient creates a WhoisXML client.
func NewWhoisXMLClient(apiKey string) *WhoisXMLClient {
	return &WhoisXMLClient{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    "https://www.whoisxmlapi.com/whoisserver/WhoisService",
	}
}

// Configured reports whether an API key is present.
func (c *WhoisXMLClient) Configured() bool { return c.apiKey != "" }

// Lookup fetches the registration record for a domain.
func (c *WhoisXMLClient) Lookup(ctx context.Context, domain string) (*RegistrationRecord, error) {
	q := url.Values{}
	q.Set("apiKey", c.apiKey)
	q.Set("domainName", domain)
	q.Set("outputFormat", "JSON")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, redactAPIKey(err, c.apiKey)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("whoisxml API error: %d", resp.StatusCode)
	}

	var data struct {
		WhoisRecord struct {
			DomainName    string `json:"domainName"`
			RegistrarName string `json:"registrarName"`
			CreatedDate   string `json:"createdDate"`
			UpdatedDate   string `json:"updatedDate"`
			ExpiresDate   string `json:"expiresDate"`
			Registrant    struct {
				Organization string `json:"organization"`
				Country      string `json:"country"`
			} `json:"registrant"`
			DataError string `json:"dataError"`
		} `json:"WhoisRecord"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, err
	}
	if data.WhoisRecord.DataError != "" {
		return nil, fmt.Errorf("whoisxml: %s", data.WhoisRecord.DataError)
	}

	return &RegistrationRecord{
		DomainName:        data.WhoisRecord.DomainName,
		Registrar:         data.WhoisRecord.RegistrarName,
		CreatedDate:       data.WhoisRecord.CreatedDate,
		UpdatedDate:       data.WhoisRecord.UpdatedDate,
		ExpiresDate:       data.WhoisRecord.ExpiresDate,
		RegistrantOrg:     data.WhoisRecord.Registrant.Organization,
		RegistrantCountry: data.WhoisRecord.Registrant.Country,
	}, nil
}
