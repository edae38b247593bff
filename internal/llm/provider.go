package llm

import (
	"context"
	"fmt"

	"dev.helix.promptcache/internal/models"
)

// Provider is the consumed inference interface. The caching layer drives it
// on misses and never implements it; anything satisfying this contract
// (hosted API client, local runtime, test stub) plugs in.
type Provider interface {
	Complete(ctx context.Context, req *models.CompletionRequest) (*models.Completion, error)
}

// ProviderError wraps an upstream inference failure. It is always propagated
// to the caller and never cached.
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Provider == "" {
		return fmt.Sprintf("provider error: %v", e.Err)
	}
	return fmt.Sprintf("provider %s: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// ProviderFunc adapts a plain function to the Provider interface.
type ProviderFunc func(ctx context.Context, req *models.CompletionRequest) (*models.Completion, error)

func (f ProviderFunc) Complete(ctx context.Context, req *models.CompletionRequest) (*models.Completion, error) {
	return f(ctx, req)
}
