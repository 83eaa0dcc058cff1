package api

import "encoding/json"

// CallOptions carries per-call overrides merged on top of a provider's
// configured default parameters.
type CallOptions struct {
	// Model overrides the provider's configured model for this call.
	Model string

	MaxTokens   int
	Temperature *float64

	// Extra is merged verbatim into the outgoing payload, last-write-wins
	// over defaults. Keys are wire-format parameter names.
	Extra map[string]interface{}
}

// RawResponse is one backend's reply, envelope untouched. Format dispatches
// on APIType to pick the parsing rule.
type RawResponse struct {
	APIType    string          `json:"api_type"`
	Model      string          `json:"model,omitempty"`
	StatusCode int             `json:"status_code"`
	Body       json.RawMessage `json:"body"`
}

// Completion is the normalized result every provider response is reduced to.
type Completion struct {
	Text            string       `json:"text"`
	APIType         string       `json:"api_type"`
	UsedModel       string       `json:"used_model,omitempty"`
	FallbackUsed    bool         `json:"fallback_used,omitempty"`
	OriginalAPIType string       `json:"original_api_type,omitempty"`
	Raw             *RawResponse `json:"-"`

	// Err carries the technical detail of a soft failure. Text then holds a
	// user-safe generic message instead of model output.
	Err string `json:"error,omitempty"`
}

// SoftFailure reports whether this completion carries a provider-reported
// error instead of usable text.
func (c *Completion) SoftFailure() bool {
	return c.Err != ""
}

// ChildNode is one generated child label for a mind-map node expansion.
type ChildNode struct {
	Text string `json:"text"`
}
