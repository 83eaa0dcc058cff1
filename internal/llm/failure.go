package llm

import (
	"errors"
	"fmt"

	"github.com/cnmzsjbz199328/LazyDog/internal/httpclient"
)

// FailureKind classifies an expected provider failure.
type FailureKind string

const (
	FailureHTTP      FailureKind = "http_error"
	FailureNetwork   FailureKind = "network_error"
	FailureEmpty     FailureKind = "empty_content"
	FailureInBand    FailureKind = "provider_error"
	FailureMalformed FailureKind = "malformed_response"
	FailureConfig    FailureKind = "config_error"
)

// ProviderFailure is the single error shape every adapter reports expected
// failures with. The orchestrator folds these into the cascade; anything
// else propagates as a programming error.
type ProviderFailure struct {
	APIType string
	Model   string
	Kind    FailureKind
	Detail  string
	Err     error
}

func (f *ProviderFailure) Error() string {
	if f.Model != "" {
		return fmt.Sprintf("%s (%s): %s: %s", f.APIType, f.Model, f.Kind, f.Detail)
	}
	return fmt.Sprintf("%s: %s: %s", f.APIType, f.Kind, f.Detail)
}

func (f *ProviderFailure) Unwrap() error {
	return f.Err
}

// WrapCallError normalizes a transport-level error from an adapter's Call
// into a ProviderFailure. UpstreamError keeps its status and body excerpt.
func WrapCallError(apiType, model string, err error) *ProviderFailure {
	var pf *ProviderFailure
	if errors.As(err, &pf) {
		return pf
	}

	var upstream *httpclient.UpstreamError
	if errors.As(err, &upstream) {
		detail := fmt.Sprintf("status %d", upstream.StatusCode)
		if len(upstream.Body) > 0 {
			body := upstream.Body
			if len(body) > 512 {
				body = body[:512]
			}
			detail = fmt.Sprintf("status %d: %s", upstream.StatusCode, body)
		}
		return &ProviderFailure{
			APIType: apiType,
			Model:   model,
			Kind:    FailureHTTP,
			Detail:  detail,
			Err:     err,
		}
	}

	return &ProviderFailure{
		APIType: apiType,
		Model:   model,
		Kind:    FailureNetwork,
		Detail:  err.Error(),
		Err:     err,
	}
}

// ErrAllProvidersExhausted marks total cascade exhaustion, the only provider
// condition allowed to surface as a hard error.
var ErrAllProvidersExhausted = errors.New("all providers exhausted")

// ExhaustedError aggregates every attempt of a failed cascade.
type ExhaustedError struct {
	Attempts []*ProviderFailure
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("all providers exhausted after %d attempts", len(e.Attempts))
}

func (e *ExhaustedError) Unwrap() error {
	return ErrAllProvidersExhausted
}
