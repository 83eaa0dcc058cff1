package notes

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cnmzsjbz199328/LazyDog/internal/config"
	"github.com/cnmzsjbz199328/LazyDog/internal/llm"
	"github.com/cnmzsjbz199328/LazyDog/internal/store"
	"github.com/cnmzsjbz199328/LazyDog/internal/store/cache/memory"
	"github.com/cnmzsjbz199328/LazyDog/internal/store/sqlite"
	"github.com/cnmzsjbz199328/LazyDog/pkg/api"
)

type stubProvider struct {
	typ   string
	text  string
	calls int
}

func (p *stubProvider) Type() string           { return p.typ }
func (p *stubProvider) Name() string           { return p.typ }
func (p *stubProvider) SupportsFallback() bool { return false }
func (p *stubProvider) Models() []string       { return nil }

func (p *stubProvider) Call(_ context.Context, _ string, _ api.CallOptions) (*api.RawResponse, error) {
	p.calls++
	return &api.RawResponse{APIType: p.typ, StatusCode: 200}, nil
}

func (p *stubProvider) Format(raw *api.RawResponse) (*api.Completion, error) {
	return &api.Completion{Text: p.text, APIType: p.typ, UsedModel: "stub-model"}, nil
}

type fixture struct {
	service  *Service
	provider *stubProvider
	notifier *store.Notifier
	changes  *[]store.Change
}

var dbSeq atomic.Int64

func newFixture(t *testing.T, responseText string) fixture {
	t.Helper()

	dsn := fmt.Sprintf("file:notes_test_%d?mode=memory&cache=shared&_busy_timeout=5000", dbSeq.Add(1))
	repo, err := sqlite.NewSQLiteStorage(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	provider := &stubProvider{typ: "openrouter", text: responseText}
	orch := llm.NewOrchestrator([]string{"gemini", "mistral"}, time.Second, zap.NewNop())
	orch.RegisterProvider(provider)

	notifier := store.NewNotifier()
	changes := &[]store.Change{}
	notifier.Subscribe(func(c store.Change) { *changes = append(*changes, c) })

	svc := NewService(repo, notifier, orch, memory.NewMemoryCache(), config.AIConfig{
		DefaultAPIType: "openrouter",
		CacheTTL:       time.Hour,
	}, zap.NewNop())

	return fixture{service: svc, provider: provider, notifier: notifier, changes: changes}
}

func TestGenerateMindMapPersistsDocument(t *testing.T) {
	f := newFixture(t, "mindmap\n  root((Go Basics))\n    Syntax\n    Tooling")
	ctx := context.Background()

	resp, err := f.service.GenerateMindMap(ctx, "Go Basics", "notes about go")
	require.NoError(t, err)
	assert.False(t, resp.Degraded)
	assert.Equal(t, "openrouter", resp.APIType)
	assert.Equal(t, "stub-model", resp.UsedModel)

	doc, err := f.service.CurrentMindMap(ctx)
	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.Equal(t, "Go Basics", doc.Title)
	assert.Equal(t, resp.Code, doc.Code)

	require.NotEmpty(t, *f.changes)
	assert.Equal(t, store.Change{Key: store.KeyMindMap, Action: store.ActionSaved}, (*f.changes)[0])
}

func TestGenerateMindMapDegradesOnBadOutput(t *testing.T) {
	f := newFixture(t, "not a diagram at all")

	resp, err := f.service.GenerateMindMap(context.Background(), "My Topic", "content")
	require.NoError(t, err)
	assert.True(t, resp.Degraded)
	assert.Contains(t, resp.Code, "root((My Topic))")
	assert.Contains(t, resp.Code, "Unable to process")
}

func TestGenerateMindMapKeepsDocumentOnDegradedResult(t *testing.T) {
	f := newFixture(t, "mindmap\n  root((Solid Topic))\n    Good node")
	ctx := context.Background()

	_, err := f.service.GenerateMindMap(ctx, "Solid Topic", "first content")
	require.NoError(t, err)
	saves := len(*f.changes)

	f.provider.text = "garbage the model made up"

	resp, err := f.service.GenerateMindMap(ctx, "Other Topic", "second content")
	require.NoError(t, err)
	assert.True(t, resp.Degraded)
	assert.Contains(t, resp.Code, "Unable to process")

	// the previously saved document survives the failed generation
	doc, err := f.service.CurrentMindMap(ctx)
	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.Equal(t, "Solid Topic", doc.Title)
	assert.Contains(t, doc.Code, "Good node")
	assert.NotContains(t, doc.Code, "Unable to process")

	assert.Len(t, *f.changes, saves)
}

func TestGenerateMindMapCacheHitDoesNotRewriteDocument(t *testing.T) {
	f := newFixture(t, "mindmap\n  root((Stable))\n    Branch")
	ctx := context.Background()

	first, err := f.service.GenerateMindMap(ctx, "Stable", "same content")
	require.NoError(t, err)
	saves := len(*f.changes)

	second, err := f.service.GenerateMindMap(ctx, "Stable", "same content")
	require.NoError(t, err)

	assert.Equal(t, 1, f.provider.calls)
	assert.Equal(t, first.Code, second.Code)
	assert.WithinDuration(t, first.CreatedAt, second.CreatedAt, time.Second)
	assert.Len(t, *f.changes, saves)
}

func TestExpandNodeSplicesIntoDocument(t *testing.T) {
	f := newFixture(t, "mindmap\n  root((Go))\n    Concurrency\n      old detail")
	ctx := context.Background()

	_, err := f.service.GenerateMindMap(ctx, "Go", "content")
	require.NoError(t, err)

	f.provider.text = `[{"text": "Goroutines"}, {"text": "Channels"}]`

	resp, err := f.service.ExpandNode(ctx, api.ExpandNodeRequest{
		NodeID:   "node1",
		NodeText: "Concurrency",
	})
	require.NoError(t, err)
	require.True(t, resp.Spliced)
	require.Len(t, resp.Children, 2)
	assert.Contains(t, resp.Code, "      Goroutines")
	assert.Contains(t, resp.Code, "      Channels")
	assert.NotContains(t, resp.Code, "old detail")

	doc, err := f.service.CurrentMindMap(ctx)
	require.NoError(t, err)
	assert.Equal(t, resp.Code, doc.Code)
	assert.NotNil(t, doc.LastUpdated)
}

func TestExpandNodeMissingTargetIsNoOp(t *testing.T) {
	f := newFixture(t, "mindmap\n  root((Go))\n    Concurrency")
	ctx := context.Background()

	_, err := f.service.GenerateMindMap(ctx, "Go", "content")
	require.NoError(t, err)

	f.provider.text = `[{"text": "A"}]`

	resp, err := f.service.ExpandNode(ctx, api.ExpandNodeRequest{
		NodeID:   "node9",
		NodeText: "Nonexistent",
	})
	require.NoError(t, err)
	assert.False(t, resp.Spliced)
	assert.Contains(t, resp.Code, "Concurrency")
}

func TestSaveHistoryRecordRejectsPlaceholders(t *testing.T) {
	f := newFixture(t, "")
	ctx := context.Background()

	_, err := f.service.SaveHistoryRecord(ctx, "Mind Map", "anything")
	assert.ErrorIs(t, err, ErrInvalidRecord)

	_, err = f.service.SaveHistoryRecord(ctx, "Real point", "   ")
	assert.ErrorIs(t, err, ErrInvalidRecord)

	rec, err := f.service.SaveHistoryRecord(ctx, "Real point", "real content")
	require.NoError(t, err)
	assert.NotZero(t, rec.ID)
}

func TestCleanInvalidRecords(t *testing.T) {
	f := newFixture(t, "")
	ctx := context.Background()

	_, err := f.service.SaveHistoryRecord(ctx, "Keep me", "content")
	require.NoError(t, err)

	removed, err := f.service.CleanInvalidRecords(ctx)
	require.NoError(t, err)
	assert.Zero(t, removed)

	records, err := f.service.History(ctx)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestAPITypeSelection(t *testing.T) {
	f := newFixture(t, "")
	ctx := context.Background()

	current, err := f.service.CurrentAPIType(ctx)
	require.NoError(t, err)
	assert.Equal(t, "openrouter", current)

	err = f.service.SetAPIType(ctx, "no-such-backend")
	assert.ErrorIs(t, err, ErrUnknownProvider)

	require.NoError(t, f.service.SetAPIType(ctx, "OpenRouter"))
	current, err = f.service.CurrentAPIType(ctx)
	require.NoError(t, err)
	assert.Equal(t, "openrouter", current)
}

func TestBackgroundLifecycle(t *testing.T) {
	f := newFixture(t, "")
	ctx := context.Background()

	require.NoError(t, f.service.SetBackground(ctx, "  biology lecture  "))
	value, err := f.service.Background(ctx)
	require.NoError(t, err)
	assert.Equal(t, "biology lecture", value)

	require.NoError(t, f.service.ClearBackground(ctx))
	value, err = f.service.Background(ctx)
	require.NoError(t, err)
	assert.Empty(t, value)
}

func TestFlowchartCodeDefaultsWhenEmpty(t *testing.T) {
	f := newFixture(t, "")

	code, err := f.service.FlowchartCode(context.Background())
	require.NoError(t, err)
	assert.Contains(t, code, "flowchart TD")
}

func TestProvidersListing(t *testing.T) {
	f := newFixture(t, "")

	providers := f.service.Providers()
	require.Len(t, providers, 1)
	assert.Equal(t, "openrouter", providers[0].Type)
	assert.True(t, providers[0].Configured)
}
