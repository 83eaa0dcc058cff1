package model

import (
	"strings"
	"time"
)

// HistoryRecord is one summarized transcript segment.
type HistoryRecord struct {
	ID        int64     `db:"id" json:"id"`
	MainPoint string    `db:"main_point" json:"main_point"`
	Content   string    `db:"content" json:"content"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Sentinel placeholder values the upstream summarizer emits when it has
// nothing to say. Records carrying them are invalid and get swept.
var (
	invalidMainPoints = map[string]bool{
		"Mind Map":      true,
		"No main point": true,
	}
	invalidContents = map[string]bool{
		"No Content": true,
	}
)

// Valid reports whether the record carries real data rather than blanks or
// sentinel placeholders.
func (r HistoryRecord) Valid() bool {
	mp := strings.TrimSpace(r.MainPoint)
	content := strings.TrimSpace(r.Content)

	if mp == "" || content == "" {
		return false
	}
	if invalidMainPoints[r.MainPoint] || invalidContents[r.Content] {
		return false
	}
	return true
}

// InvalidMainPoints exposes the sentinel list for SQL sweeps.
func InvalidMainPoints() []string {
	out := make([]string, 0, len(invalidMainPoints))
	for v := range invalidMainPoints {
		out = append(out, v)
	}
	return out
}

// InvalidContents exposes the sentinel list for SQL sweeps.
func InvalidContents() []string {
	out := make([]string, 0, len(invalidContents))
	for v := range invalidContents {
		out = append(out, v)
	}
	return out
}

// MindMapDocument is the single persisted diagram. There is one per
// application instance; generation overwrites it, expansion updates it.
type MindMapDocument struct {
	ID          int64      `db:"id" json:"id"`
	Title       string     `db:"title" json:"title"`
	Code        string     `db:"code" json:"code"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	LastUpdated *time.Time `db:"last_updated" json:"last_updated,omitempty"`
}

// Setting is one key-value preference, e.g. the selected backend.
type Setting struct {
	Key       string    `db:"key" json:"key"`
	Value     string    `db:"value" json:"value"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
