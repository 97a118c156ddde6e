// Package completion provides the structured completion client: a prompt
// template plus declared input and output JSON Schemas wrapped into one
// call against a generative model provider.
//
// The client validates the input before the call and the provider's raw
// textual response after the call. A response that cannot be coerced to
// the output schema fails with SchemaValidationError; a failed provider
// call fails with ProviderError. The distinction matters because callers
// may retry only on ProviderError. No retries happen inside this package;
// retry policy belongs to callers.
package completion
