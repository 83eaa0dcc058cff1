package llm

import (
	"context"

	"github.com/cnmzsjbz199328/LazyDog/internal/config"
	"github.com/cnmzsjbz199328/LazyDog/pkg/api"
)

// GenericFailureMessage is the user-safe text substituted when a provider
// reports an in-band error. The technical detail travels separately.
const GenericFailureMessage = "Sorry, something went wrong while processing your request. Please try again later."

// Provider is one AI text-generation backend. Expected failures (HTTP
// errors, empty content, in-band provider errors) come back as a typed
// *ProviderFailure, never as a panic or an untyped error, so the cascade can
// tell them apart from programming mistakes.
type Provider interface {
	// Type is the unique lowercase registry key, e.g. "openrouter".
	Type() string

	// Name is the display label.
	Name() string

	// SupportsFallback reports whether the backend carries an internal
	// model cascade of its own.
	SupportsFallback() bool

	// Models returns the configured model cascade, primary first. Backends
	// without model selection return nil.
	Models() []string

	// Call issues one request. opts.Model overrides the configured model.
	Call(ctx context.Context, prompt string, opts api.CallOptions) (*api.RawResponse, error)

	// Format extracts the assistant text from the backend envelope. An
	// in-band provider error yields a soft-failure Completion (nil error);
	// an unrecognizable envelope yields a *ProviderFailure.
	Format(raw *api.RawResponse) (*api.Completion, error)
}

// Factory constructs a provider from its configuration.
type Factory func(cfg config.ProviderConfig) (Provider, error)
