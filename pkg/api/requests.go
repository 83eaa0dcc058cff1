package api

// GenerateMindMapRequest asks for a fresh mind map built from transcript text.
type GenerateMindMapRequest struct {
	// Topic becomes the root node label, verbatim.
	Topic string `json:"topic" binding:"required"`

	// Content is the accumulated transcript the map is derived from.
	Content string `json:"content" binding:"required"`
}

// ExpandNodeRequest asks for generated children under an existing node.
type ExpandNodeRequest struct {
	NodeID   string `json:"node_id" binding:"required"`
	NodeText string `json:"node_text" binding:"required"`

	// NodeHierarchy is the breadcrumb of ancestor labels, root first.
	NodeHierarchy []string `json:"node_hierarchy,omitempty"`
}

// SaveHistoryRequest appends one summarized record to the history list.
type SaveHistoryRequest struct {
	MainPoint string `json:"main_point" binding:"required"`
	Content   string `json:"content" binding:"required"`
}

// SetBackgroundRequest replaces the background context string. An empty
// value clears it.
type SetBackgroundRequest struct {
	Background string `json:"background"`
}

// SetAPITypeRequest selects the primary AI backend.
type SetAPITypeRequest struct {
	APIType string `json:"api_type" binding:"required"`
}
