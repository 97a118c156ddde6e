package completion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// Provider is the opaque structured completion service: it takes a fully
// rendered prompt and returns the model's raw textual response.
type Provider interface {
	// Name returns the provider name for logs and error messages.
	Name() string

	// Invoke sends the prompt and returns the raw response text.
	Invoke(ctx context.Context, prompt string) (string, error)

	// Validate checks if credentials are present.
	Validate() error
}

// ChatProvider calls an OpenAI-compatible chat completions endpoint.
type ChatProvider struct {
	APIKey     string
	Model      string
	BaseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewChatProvider creates a chat completions provider. An empty model
// defaults to gpt-4o-mini.
func NewChatProvider(apiKey, model, baseURL string) *ChatProvider {
	if model == "" {
		model = "gpt-4o-mini"
	}
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	return &ChatProvider{
		APIKey:  apiKey,
		Model:   model,
		BaseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Every(time.Minute/30), 5), // 30 requests per minute
	}
}

func (p *ChatProvider) Name() string { return "chat:" + p.Model }

func (p *ChatProvider) Validate() error {
	if p.APIKey == "" {
		return fmt.Errorf("missing completion API key")
	}
	return nil
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Invoke sends a single-turn chat request. All failure modes surface as
// *ProviderError so callers can distinguish them from schema failures.
func (p *ChatProvider) Invoke(ctx context.Context, prompt string) (string, error) {
	if err := p.Validate(); err != nil {
		return "", &ProviderError{Provider: p.Name(), Err: err}
	}
	if err := p.limiter.Wait(ctx); err != nil {
		return "", &ProviderError{Provider: p.Name(), Err: err}
	}

	body, err := json.Marshal(chatRequest{
		Model:    p.Model,
		Messages: []chatMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", &ProviderError{Provider: p.Name(), Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", &ProviderError{Provider: p.Name(), Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.APIKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", &ProviderError{Provider: p.Name(), Err: err}
	}
	defer func() {
		io.Copy(io.Discard, resp.Body) //nolint:errcheck
		resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return "", &ProviderError{
			Provider:   p.Name(),
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("completion API error"),
		}
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", &ProviderError{Provider: p.Name(), Err: err}
	}
	if parsed.Error != nil {
		return "", &ProviderError{Provider: p.Name(), Err: fmt.Errorf("%s", parsed.Error.Message)}
	}
	if len(parsed.Choices) == 0 {
		return "", &ProviderError{Provider: p.Name(), Err: fmt.Errorf("empty choices in response")}
	}
	return parsed.Choices[0].Message.Content, nil
}
