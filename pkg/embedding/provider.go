package embedding

import (
	"context"
	"errors"
	"fmt"
)

// EmbeddingProvider defines the interface for generating text embeddings
type EmbeddingProvider interface {
	Generate(ctx context.Context, text string, taskType string) (*EmbeddingResponse, error)
}

// ProviderError wraps a provider failure with enough context to decide
// whether retrying can help. Rate limits, timeouts and 5xx responses are
// transient; malformed requests and auth failures are not.
type ProviderError struct {
	Provider  string
	Transient bool
	Err       error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s embedding: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// IsTransient reports whether err is a provider failure worth retrying
func IsTransient(err error) bool {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Transient
	}
	return false
}

// transientStatus classifies HTTP status codes returned by embedding APIs
func transientStatus(code int) bool {
	return code == 429 || code >= 500
}
