package completion

import (
	"errors"
	"fmt"
)

// SchemaValidationError means a value did not conform to its declared
// schema: either the caller's input, or the model's response (malformed
// JSON, missing required field). It is never retried automatically and
// is always fatal to the call site.
type SchemaValidationError struct {
	// Stage is "input" or "output".
	Stage string
	// Raw is the offending raw text, kept for diagnostics. Empty for
	// input-stage failures.
	Raw string
	Err error
}

func (e *SchemaValidationError) Error() string {
	return fmt.Sprintf("completion: %s schema validation failed: %v", e.Stage, e.Err)
}

func (e *SchemaValidationError) Unwrap() error { return e.Err }

// ProviderError means the underlying completion call itself failed:
// timeout, auth failure, rate limit, non-2xx status. Callers may choose
// to retry these.
type ProviderError struct {
	Provider   string
	StatusCode int // 0 when the failure happened before a response
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("completion: provider %s returned status %d: %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("completion: provider %s: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// IsRetryable reports whether err is a transient provider failure that
// callers may retry. Schema validation failures are never retryable.
func IsRetryable(err error) bool {
	var pe *ProviderError
	return errors.As(err, &pe)
}
