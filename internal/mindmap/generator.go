package mindmap

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/cnmzsjbz199328/LazyDog/internal/store/cache"
	"github.com/cnmzsjbz199328/LazyDog/pkg/api"
)

const (
	// FirstLine is the mandatory opening token of generated diagram source.
	FirstLine = "mindmap"

	// DefaultRootLabel replaces an empty topic in the degraded diagram.
	DefaultRootLabel = "Content Overview"

	generationKeyPrefix = "mindmap_cache_"
	cacheKeyContentLen  = 100
)

// Caller runs one prompt through the provider cascade. Satisfied by
// llm.Orchestrator.
type Caller interface {
	Execute(ctx context.Context, primaryType, prompt string, opts api.CallOptions) (*api.Completion, error)
}

var fencedDiagram = regexp.MustCompile("(?s)```(?:mermaid)?\\s*(" + FirstLine + ".+?)```")

// Generator produces validated diagram source, caching results so repeated
// requests for the same content and topic make a single upstream call.
type Generator struct {
	caller Caller
	cache  cache.CacheService
	ttl    time.Duration
	logger *zap.Logger
}

func NewGenerator(caller Caller, c cache.CacheService, ttl time.Duration, logger *zap.Logger) *Generator {
	return &Generator{caller: caller, cache: c, ttl: ttl, logger: logger}
}

// Result is the outcome of one generation request.
type Result struct {
	Code string
	// Degraded marks the fixed placeholder diagram substituted when
	// generation or validation failed.
	Degraded bool
	// Cached marks a cache hit; no upstream call was made.
	Cached bool
	// Completion carries provider attribution when an upstream call ran.
	Completion *api.Completion
}

// Generate builds the prompt from topic, background and history, runs the
// cascade, and validates the returned diagram source. Any failure degrades to
// the fixed error diagram instead of propagating; the diagram surface is
// never left blank.
func (g *Generator) Generate(ctx context.Context, primaryType, content, topic, background string, historyTopics []string) Result {
	key := GenerationCacheKey(content, topic)

	var cached string
	if err := g.cache.Get(ctx, key, &cached); err == nil && cached != "" {
		g.logger.Debug("mindmap cache hit", zap.String("topic", topic))
		return Result{Code: cached, Cached: true}
	} else if err != nil && !errors.Is(err, cache.ErrCacheMiss) {
		g.logger.Warn("mindmap cache read failed", zap.Error(err))
	}

	prompt := GenerationPrompt(topic, background, historyTopics)

	completion, err := g.caller.Execute(ctx, primaryType, prompt, api.CallOptions{})
	if err != nil {
		g.logger.Error("mindmap generation failed, substituting error diagram",
			zap.String("topic", topic), zap.Error(err))
		return Result{Code: ErrorDiagram(topic), Degraded: true}
	}

	code, err := ValidateDiagram(completion.Text)
	if err != nil {
		g.logger.Warn("generated text is not valid diagram source",
			zap.String("topic", topic), zap.Error(err))
		return Result{Code: ErrorDiagram(topic), Degraded: true, Completion: completion}
	}

	if err := g.cache.Set(ctx, key, code, g.ttl); err != nil {
		g.logger.Warn("mindmap cache write failed", zap.Error(err))
	}

	return Result{Code: code, Completion: completion}
}

// GenerationCacheKey derives the cache key from a content prefix plus the
// topic, base64-encoded with padding stripped.
func GenerationCacheKey(content, topic string) string {
	prefix := content
	if len(prefix) > cacheKeyContentLen {
		prefix = prefix[:cacheKeyContentLen]
	}
	encoded := base64.StdEncoding.EncodeToString([]byte(prefix + topic))
	return generationKeyPrefix + strings.ReplaceAll(encoded, "=", "")
}

// ValidateDiagram checks that text is diagram source starting with the
// mandatory first line, recovering it from a fenced code block when the model
// wrapped its answer in Markdown.
func ValidateDiagram(text string) (string, error) {
	code := strings.TrimSpace(text)
	if strings.HasPrefix(code, FirstLine) {
		return code, nil
	}

	if m := fencedDiagram.FindStringSubmatch(code); m != nil {
		return strings.TrimSpace(m[1]), nil
	}

	return "", fmt.Errorf("response does not start with %q and contains no recoverable code block", FirstLine)
}

// ErrorDiagram is the fixed two-level placeholder substituted on failure.
func ErrorDiagram(topic string) string {
	label := CleanText(topic)
	if label == "" {
		label = DefaultRootLabel
	}
	return fmt.Sprintf("mindmap\n  root((%s))\n    Unable to process\n      Please try again later", label)
}
