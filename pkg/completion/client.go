package completion

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Request bundles one structured completion call: a prompt template, the
// input values it is rendered from, and the schema contracts on both
// sides of the call.
type Request struct {
	Template     Template
	Input        map[string]string
	InputSchema  *Schema // optional; validates Input when set
	OutputSchema *Schema // required; validates the model response
}

// Client performs structured completion calls against a Provider.
type Client struct {
	provider Provider
	logger   *slog.Logger
}

// NewClient creates a structured completion client. A nil logger falls
// back to slog.Default().
func NewClient(provider Provider, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{provider: provider, logger: logger}
}

// Complete renders the template, invokes the provider, and returns the
// decoded JSON value after output schema validation. Errors are either
// *SchemaValidationError or *ProviderError, never both.
func (c *Client) Complete(ctx context.Context, req Request) (any, error) {
	if req.OutputSchema == nil {
		return nil, fmt.Errorf("completion: output schema is required")
	}
	if req.InputSchema != nil {
		if err := req.InputSchema.ValidateValue(req.Input); err != nil {
			return nil, &SchemaValidationError{Stage: "input", Err: err}
		}
	}

	prompt, err := req.Template.Render(req.Input)
	if err != nil {
		return nil, &SchemaValidationError{Stage: "input", Err: err}
	}

	raw, err := c.provider.Invoke(ctx, prompt)
	if err != nil {
		return nil, err
	}

	payload := extractJSON(raw)
	decoded, err := jsonschema.UnmarshalJSON(strings.NewReader(payload))
	if err != nil {
		return nil, &SchemaValidationError{Stage: "output", Raw: raw, Err: fmt.Errorf("malformed JSON: %w", err)}
	}
	if err := req.OutputSchema.Validate(decoded); err != nil {
		return nil, &SchemaValidationError{Stage: "output", Raw: raw, Err: err}
	}

	c.logger.Debug("structured completion ok",
		"provider", c.provider.Name(),
		"schema", req.OutputSchema.Name())
	return decoded, nil
}

// CompleteInto runs Complete and decodes the validated value into out.
func (c *Client) CompleteInto(ctx context.Context, req Request, out any) error {
	decoded, err := c.Complete(ctx, req)
	if err != nil {
		return err
	}
	data, err := json.Marshal(decoded)
	if err != nil {
		return &SchemaValidationError{Stage: "output", Err: err}
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &SchemaValidationError{Stage: "output", Err: err}
	}
	return nil
}

// extractJSON strips the markdown fences and surrounding prose that chat
// models wrap around JSON payloads. It returns the span from the first
// opening brace or bracket to the matching final one; if no JSON-looking
// span exists, the raw text is returned and left to schema validation.
func extractJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if i := strings.LastIndex(s, "```"); i >= 0 {
			s = s[:i]
		}
		s = strings.TrimSpace(s)
	}

	start := strings.IndexAny(s, "{[")
	if start < 0 {
		return s
	}
	var end int
	if s[start] == '{' {
		end = strings.LastIndex(s, "}")
	} else {
		end = strings.LastIndex(s, "]")
	}
	if end <= start {
		return s
	}
	return s[start : end+1]
}
