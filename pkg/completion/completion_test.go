package completion

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeProvider returns canned responses without a network.
type fakeProvider struct {
	response string
	err      error
	prompts  []string
}

func (f *fakeProvider) Name() string    { return "fake" }
func (f *fakeProvider) Validate() error { return nil }

func (f *fakeProvider) Invoke(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

const testOutputSchema = `{
	"type": "object",
	"required": ["name", "count"],
	"properties": {
		"name": {"type": "string"},
		"count": {"type": "integer"}
	}
}`

func TestTemplateRender(t *testing.T) {
	tpl := Template("Analyze {{target}} using {{{context}}}.")
	out, err := tpl.Render(map[string]string{"target": "example.com", "context": "logs"})
	require.NoError(t, err)
	assert.Equal(t, "Analyze example.com using logs.", out)
}

func TestTemplateRenderMissingPlaceholder(t *testing.T) {
	tpl := Template("Analyze {{target}}.")
	_, err := tpl.Render(map[string]string{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "target")
}

func TestTemplatePlaceholders(t *testing.T) {
	tpl := Template("{{a}} {{b}} {{a}}")
	assert.Equal(t, []string{"a", "b"}, tpl.Placeholders())
}

func TestCompleteValidOutput(t *testing.T) {
	provider := &fakeProvider{response: `{"name": "xss", "count": 3}`}
	client := NewClient(provider, nil)

	out, err := client.Complete(context.Background(), Request{
		Template:     "analyze {{input}}",
		Input:        map[string]string{"input": "raw"},
		OutputSchema: MustCompileSchema("test", testOutputSchema),
	})
	require.NoError(t, err)
	m, ok := out.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "xss", m["name"])
}

func TestCompleteStripsCodeFences(t *testing.T) {
	provider := &fakeProvider{response: "Here you go:\n```json\n{\"name\": \"a\", \"count\": 1}\n```\n"}
	client := NewClient(provider, nil)

	var got struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}
	err := client.CompleteInto(context.Background(), Request{
		Template:     "{{x}}",
		Input:        map[string]string{"x": "y"},
		OutputSchema: MustCompileSchema("test", testOutputSchema),
	}, &got)
	require.NoError(t, err)
	assert.Equal(t, "a", got.Name)
	assert.Equal(t, 1, got.Count)
}

func TestCompleteSchemaViolation(t *testing.T) {
	// count is required but missing - must fail, never silently coerced.
	provider := &fakeProvider{response: `{"name": "xss"}`}
	client := NewClient(provider, nil)

	_, err := client.Complete(context.Background(), Request{
		Template:     "{{x}}",
		Input:        map[string]string{"x": "y"},
		OutputSchema: MustCompileSchema("test", testOutputSchema),
	})
	var sve *SchemaValidationError
	require.ErrorAs(t, err, &sve)
	assert.Equal(t, "output", sve.Stage)
	assert.False(t, IsRetryable(err), "schema failures must not be retryable")
}

func TestCompleteMalformedJSON(t *testing.T) {
	provider := &fakeProvider{response: "sorry, I cannot do that"}
	client := NewClient(provider, nil)

	_, err := client.Complete(context.Background(), Request{
		Template:     "{{x}}",
		Input:        map[string]string{"x": "y"},
		OutputSchema: MustCompileSchema("test", testOutputSchema),
	})
	var sve *SchemaValidationError
	require.ErrorAs(t, err, &sve)
	assert.Equal(t, "sorry, I cannot do that", sve.Raw)
}

func TestCompleteProviderErrorPassthrough(t *testing.T) {
	provider := &fakeProvider{err: &ProviderError{Provider: "fake", StatusCode: 429, Err: errors.New("rate limited")}}
	client := NewClient(provider, nil)

	_, err := client.Complete(context.Background(), Request{
		Template:     "{{x}}",
		Input:        map[string]string{"x": "y"},
		OutputSchema: MustCompileSchema("test", testOutputSchema),
	})
	var pe *ProviderError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 429, pe.StatusCode)
	assert.True(t, IsRetryable(err))
}

func TestCompleteInputSchemaViolation(t *testing.T) {
	provider := &fakeProvider{response: `{"name": "a", "count": 1}`}
	client := NewClient(provider, nil)

	inputSchema := MustCompileSchema("in", `{
		"type": "object",
		"required": ["url"],
		"properties": {"url": {"type": "string", "minLength": 1}}
	}`)

	_, err := client.Complete(context.Background(), Request{
		Template:     "scan {{other}}",
		Input:        map[string]string{"other": "value"},
		InputSchema:  inputSchema,
		OutputSchema: MustCompileSchema("test", testOutputSchema),
	})
	var sve *SchemaValidationError
	require.ErrorAs(t, err, &sve)
	assert.Equal(t, "input", sve.Stage)
	assert.Empty(t, provider.prompts, "provider must not be invoked on input failure")
}

func TestChatProviderInvoke(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices": [{"message": {"role": "assistant", "content": "{\"ok\": true}"}}]}`)) //nolint:errcheck
	}))
	defer srv.Close()

	p := NewChatProvider("test-key", "test-model", srv.URL)
	out, err := p.Invoke(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, `{"ok": true}`, out)
}

func TestChatProviderHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	p := NewChatProvider("test-key", "", srv.URL)
	_, err := p.Invoke(context.Background(), "hello")
	var pe *ProviderError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, http.StatusServiceUnavailable, pe.StatusCode)
}

func TestChatProviderMissingKey(t *testing.T) {
	p := NewChatProvider("", "", "http://unused.invalid")
	_, err := p.Invoke(context.Background(), "hello")
	var pe *ProviderError
	require.ErrorAs(t, err, &pe)
}

func TestExtractJSON(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{`{"a": 1}`, `{"a": 1}`},
		{"prefix text {\"a\": 1} suffix", `{"a": 1}`},
		{"```json\n[1, 2]\n```", "[1, 2]"},
		{"no json here", "no json here"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, extractJSON(c.in), "input: %q", c.in)
	}
}
