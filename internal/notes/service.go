// Package notes is the application service layer: it owns the persisted
// documents (background, history, diagram, settings), wires the diagram
// generator and expander to the provider cascade, and publishes change
// notifications on every mutation.
package notes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/cnmzsjbz199328/LazyDog/internal/config"
	"github.com/cnmzsjbz199328/LazyDog/internal/llm"
	"github.com/cnmzsjbz199328/LazyDog/internal/mindmap"
	"github.com/cnmzsjbz199328/LazyDog/internal/store"
	"github.com/cnmzsjbz199328/LazyDog/internal/store/cache"
	"github.com/cnmzsjbz199328/LazyDog/internal/store/model"
	"github.com/cnmzsjbz199328/LazyDog/pkg/api"
)

// ErrInvalidRecord rejects history writes carrying blanks or sentinel
// placeholders.
var ErrInvalidRecord = errors.New("history record is blank or a placeholder")

// ErrUnknownProvider rejects selecting a backend that is not registered.
var ErrUnknownProvider = errors.New("unknown provider type")

type Service struct {
	repo         store.Repository
	notifier     *store.Notifier
	orchestrator *llm.Orchestrator
	generator    *mindmap.Generator
	expander     *mindmap.Expander
	defaultAPI   string
	logger       *zap.Logger
}

func NewService(repo store.Repository, notifier *store.Notifier, orch *llm.Orchestrator, c cache.CacheService, aiCfg config.AIConfig, logger *zap.Logger) *Service {
	return &Service{
		repo:         repo,
		notifier:     notifier,
		orchestrator: orch,
		generator:    mindmap.NewGenerator(orch, c, aiCfg.CacheTTL, logger),
		expander:     mindmap.NewExpander(orch, c, aiCfg.CacheTTL, logger),
		defaultAPI:   aiCfg.DefaultAPIType,
		logger:       logger,
	}
}

// GenerateMindMap builds a diagram for the given content and topic and, on
// success, persists it as the current document with provider attribution.
// Failures degrade to a placeholder diagram in the response rather than an
// error, leaving the stored document untouched; only storage problems
// surface.
func (s *Service) GenerateMindMap(ctx context.Context, topic, content string) (*api.MindMapResponse, error) {
	background, err := s.repo.Background().Get(ctx)
	if err != nil {
		s.logger.Warn("failed to load background, generating without it", zap.Error(err))
	}

	history, err := s.repo.History().MainPoints(ctx)
	if err != nil {
		s.logger.Warn("failed to load history topics, generating without them", zap.Error(err))
	}

	primary, err := s.CurrentAPIType(ctx)
	if err != nil {
		primary = s.defaultAPI
	}

	result := s.generator.Generate(ctx, primary, content, topic, background, history)

	resp := &api.MindMapResponse{
		Title:     topic,
		Code:      result.Code,
		CreatedAt: time.Now().UTC(),
		Degraded:  result.Degraded,
	}
	if result.Completion != nil {
		resp.APIType = result.Completion.APIType
		resp.UsedModel = result.Completion.UsedModel
		resp.FallbackUsed = result.Completion.FallbackUsed
	}

	// The placeholder diagram is response-only: the last good document
	// stays persisted so a transient failure cannot wipe it.
	if result.Degraded {
		return resp, nil
	}

	// A cache hit for the already-persisted code changes nothing; re-saving
	// would only churn timestamps and fire spurious notifications.
	if result.Cached {
		existing, err := s.repo.MindMaps().Get(ctx)
		if err == nil && existing != nil && existing.Code == result.Code {
			resp.Title = existing.Title
			resp.CreatedAt = existing.CreatedAt
			resp.LastUpdated = existing.LastUpdated
			return resp, nil
		}
	}

	doc := &model.MindMapDocument{
		Title:     topic,
		Code:      result.Code,
		CreatedAt: resp.CreatedAt,
	}
	if err := s.repo.MindMaps().Save(ctx, doc); err != nil {
		return nil, fmt.Errorf("failed to persist mindmap document: %w", err)
	}
	s.notifier.Publish(store.Change{Key: store.KeyMindMap, Action: store.ActionSaved})

	return resp, nil
}

// CurrentMindMap returns the persisted document, or nil when none exists.
func (s *Service) CurrentMindMap(ctx context.Context) (*model.MindMapDocument, error) {
	return s.repo.MindMaps().Get(ctx)
}

// FlowchartCode returns the current diagram converted to the flowchart
// dialect, or the default placeholder when nothing has been generated yet.
func (s *Service) FlowchartCode(ctx context.Context) (string, error) {
	doc, err := s.repo.MindMaps().Get(ctx)
	if err != nil {
		return "", err
	}
	if doc == nil {
		return mindmap.DefaultContent(), nil
	}
	return mindmap.EnsureFlowchart(doc.Code, doc.Title), nil
}

// ExpandNode generates child labels for a diagram node and splices them into
// the persisted document. The splice is a logged no-op when the node text no
// longer appears in the diagram.
func (s *Service) ExpandNode(ctx context.Context, req api.ExpandNodeRequest) (*api.ExpandNodeResponse, error) {
	doc, err := s.repo.MindMaps().Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load mindmap document: %w", err)
	}

	background, err := s.repo.Background().Get(ctx)
	if err != nil {
		s.logger.Warn("failed to load background for expansion", zap.Error(err))
	}
	mainPoints, err := s.repo.History().MainPoints(ctx)
	if err != nil {
		s.logger.Warn("failed to load history for expansion", zap.Error(err))
	}

	code := ""
	if doc != nil {
		code = doc.Code
	}

	primary, err := s.CurrentAPIType(ctx)
	if err != nil {
		primary = s.defaultAPI
	}

	children, err := s.expander.ExpandNode(ctx, primary, req.NodeID, mindmap.ExpansionContext{
		NodeText:   req.NodeText,
		Background: background,
		MainPoints: mainPoints,
		Hierarchy:  req.NodeHierarchy,
		Code:       code,
	})
	if err != nil {
		return nil, err
	}

	resp := &api.ExpandNodeResponse{Children: children}

	if doc == nil {
		return resp, nil
	}

	labels := make([]string, 0, len(children))
	for _, child := range children {
		labels = append(labels, mindmap.CleanText(child.Text))
	}

	updated, spliced := mindmap.Splice(doc.Code, req.NodeText, labels)
	if !spliced {
		s.logger.Warn("expansion target not found in diagram", zap.String("node_text", req.NodeText))
		resp.Code = doc.Code
		return resp, nil
	}

	now := time.Now().UTC()
	doc.Code = updated
	doc.LastUpdated = &now
	if err := s.repo.MindMaps().Save(ctx, doc); err != nil {
		return nil, fmt.Errorf("failed to persist expanded mindmap: %w", err)
	}
	s.notifier.Publish(store.Change{Key: store.KeyMindMap, Action: store.ActionUpdated})

	resp.Code = updated
	resp.Spliced = true
	return resp, nil
}

// Background returns the persisted context string, empty when unset.
func (s *Service) Background(ctx context.Context) (string, error) {
	return s.repo.Background().Get(ctx)
}

func (s *Service) SetBackground(ctx context.Context, value string) error {
	if err := s.repo.Background().Set(ctx, strings.TrimSpace(value)); err != nil {
		return err
	}
	s.notifier.Publish(store.Change{Key: store.KeyBackground, Action: store.ActionSaved})
	return nil
}

func (s *Service) ClearBackground(ctx context.Context) error {
	if err := s.repo.Background().Clear(ctx); err != nil {
		return err
	}
	s.notifier.Publish(store.Change{Key: store.KeyBackground, Action: store.ActionCleared})
	return nil
}

// SaveHistoryRecord appends one record, rejecting blanks and sentinel
// placeholders up front. The periodic sweep still catches anything that
// reaches storage through other paths.
func (s *Service) SaveHistoryRecord(ctx context.Context, mainPoint, content string) (*model.HistoryRecord, error) {
	rec := &model.HistoryRecord{MainPoint: mainPoint, Content: content}
	if !rec.Valid() {
		return nil, ErrInvalidRecord
	}

	if err := s.repo.History().Append(ctx, rec); err != nil {
		return nil, err
	}
	s.notifier.Publish(store.Change{Key: store.KeyHistory, Action: store.ActionAdded})
	return rec, nil
}

func (s *Service) History(ctx context.Context) ([]model.HistoryRecord, error) {
	return s.repo.History().List(ctx)
}

func (s *Service) ClearHistory(ctx context.Context) error {
	if err := s.repo.History().Clear(ctx); err != nil {
		return err
	}
	s.notifier.Publish(store.Change{Key: store.KeyHistory, Action: store.ActionCleared})
	return nil
}

// CleanInvalidRecords purges sentinel and blank history rows, reporting how
// many were removed.
func (s *Service) CleanInvalidRecords(ctx context.Context) (int64, error) {
	removed, err := s.repo.History().DeleteInvalid(ctx)
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		s.logger.Info("purged invalid history records", zap.Int64("removed", removed))
		s.notifier.Publish(store.Change{Key: store.KeyHistory, Action: store.ActionCleaned})
	}
	return removed, nil
}

// StartSweeper runs CleanInvalidRecords on the interval until ctx is done.
func (s *Service) StartSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := s.CleanInvalidRecords(ctx); err != nil && ctx.Err() == nil {
					s.logger.Error("history sweep failed", zap.Error(err))
				}
			}
		}
	}()
}

// CurrentAPIType returns the selected backend, falling back to the
// configured default when nothing is persisted or the persisted value no
// longer matches a registered provider.
func (s *Service) CurrentAPIType(ctx context.Context) (string, error) {
	value, err := s.repo.Settings().Get(ctx, store.KeyAPIType)
	if err != nil {
		return s.defaultAPI, err
	}
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return s.defaultAPI, nil
	}
	if _, ok := s.orchestrator.Provider(value); !ok {
		s.logger.Warn("persisted backend is not registered, using default",
			zap.String("api_type", value), zap.String("default", s.defaultAPI))
		return s.defaultAPI, nil
	}
	return value, nil
}

// SetAPIType persists the selected backend after checking it is registered.
func (s *Service) SetAPIType(ctx context.Context, apiType string) error {
	apiType = strings.ToLower(strings.TrimSpace(apiType))
	if _, ok := s.orchestrator.Provider(apiType); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownProvider, apiType)
	}

	if err := s.repo.Settings().Set(ctx, store.KeyAPIType, apiType); err != nil {
		return err
	}
	s.notifier.Publish(store.Change{Key: store.KeyAPIType, Action: store.ActionSaved})
	return nil
}

// Providers lists the registered backends in cascade priority order.
func (s *Service) Providers() []api.ProviderInfo {
	providers := s.orchestrator.Providers()
	out := make([]api.ProviderInfo, 0, len(providers))
	for _, p := range providers {
		out = append(out, api.ProviderInfo{
			Type:             p.Type(),
			Name:             p.Name(),
			Configured:       true,
			SupportsFallback: p.SupportsFallback(),
			Models:           p.Models(),
		})
	}
	return out
}
