package store

import (
	"context"

	"github.com/cnmzsjbz199328/LazyDog/internal/store/model"
)

// Canonical keys for the persisted logical documents, used in change
// notifications and the settings table.
const (
	KeyBackground = "background"
	KeyHistory    = "history"
	KeyMindMap    = "mindmap"
	KeyAPIType    = "current_api_type"
)

// Repository is the main contract for the data layer.
type Repository interface {
	Background() BackgroundRepository
	History() HistoryRepository
	MindMaps() MindMapRepository
	Settings() SettingsRepository

	// transaction support
	WithTx(ctx context.Context, fn func(repo Repository) error) error

	Close() error
}

// BackgroundRepository holds the free-text background context string.
type BackgroundRepository interface {
	Get(ctx context.Context) (string, error)
	Set(ctx context.Context, value string) error
	Clear(ctx context.Context) error
}

type HistoryRepository interface {
	// Append stores one record. Validity is the caller's concern; the
	// periodic sweep catches anything that slips through.
	Append(ctx context.Context, rec *model.HistoryRecord) error
	// List returns all records in insertion order.
	List(ctx context.Context) ([]model.HistoryRecord, error)
	// MainPoints returns the main points of valid records, oldest first.
	MainPoints(ctx context.Context) ([]string, error)
	Clear(ctx context.Context) error
	// DeleteInvalid removes sentinel/blank records and reports the count.
	DeleteInvalid(ctx context.Context) (int64, error)
}

type MindMapRepository interface {
	// Save upserts the single current document.
	Save(ctx context.Context, doc *model.MindMapDocument) error
	// Get returns the current document, or nil when none exists yet.
	Get(ctx context.Context) (*model.MindMapDocument, error)
}

type SettingsRepository interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}
