package api

import "time"

// MindMapResponse is the persisted diagram document plus call metadata.
type MindMapResponse struct {
	Title       string     `json:"title"`
	Code        string     `json:"code"`
	CreatedAt   time.Time  `json:"created_at"`
	LastUpdated *time.Time `json:"last_updated,omitempty"`

	// Degraded is set when the diagram is the fixed error placeholder
	// substituted after a generation or validation failure.
	Degraded bool `json:"degraded,omitempty"`

	APIType      string `json:"api_type,omitempty"`
	UsedModel    string `json:"used_model,omitempty"`
	FallbackUsed bool   `json:"fallback_used,omitempty"`
}

// ExpandNodeResponse carries the generated children and the spliced code.
type ExpandNodeResponse struct {
	Children []ChildNode `json:"children"`
	Code     string      `json:"code"`

	// Spliced is false when the target node could not be located and the
	// diagram was left unchanged.
	Spliced bool `json:"spliced"`
}

// HistoryRecordResponse is one stored history entry.
type HistoryRecordResponse struct {
	ID        int64     `json:"id"`
	MainPoint string    `json:"main_point"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// CleanHistoryResponse reports a validity sweep.
type CleanHistoryResponse struct {
	Removed int64 `json:"removed"`
}

// ProviderInfo describes one registered backend.
type ProviderInfo struct {
	Type             string   `json:"type"`
	Name             string   `json:"name"`
	Configured       bool     `json:"configured"`
	SupportsFallback bool     `json:"supports_fallback"`
	Models           []string `json:"models,omitempty"`
}

// BackgroundResponse wraps the background context string.
type BackgroundResponse struct {
	Background string `json:"background"`
}

// APITypeResponse wraps the selected backend identifier.
type APITypeResponse struct {
	APIType string `json:"api_type"`
}

// HealthResponse is the liveness payload.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}
