package mindmap

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/cnmzsjbz199328/LazyDog/internal/store/cache"
	"github.com/cnmzsjbz199328/LazyDog/pkg/api"
)

const expansionKeyPrefix = "node_expansion_"

var (
	jsonArrayPattern = regexp.MustCompile(`(?s)\[\s*\{.*\}\s*\]`)
	codeFencePattern = regexp.MustCompile("```(?:json)?|```")
)

// Expander generates child node labels for a diagram node, caching results
// per node id.
type Expander struct {
	caller Caller
	cache  cache.CacheService
	ttl    time.Duration
	logger *zap.Logger
}

func NewExpander(caller Caller, c cache.CacheService, ttl time.Duration, logger *zap.Logger) *Expander {
	return &Expander{caller: caller, cache: c, ttl: ttl, logger: logger}
}

type cachedExpansion struct {
	NodeID     string          `json:"node_id"`
	NodeText   string          `json:"node_text"`
	ChildNodes []api.ChildNode `json:"child_nodes"`
	Timestamp  time.Time       `json:"timestamp"`
}

// ExpandNode returns 3-5 child labels for the node, consulting the per-node
// cache first. Only total cascade exhaustion is returned as an error; a
// malformed model answer degrades to the fixed fallback pair.
func (e *Expander) ExpandNode(ctx context.Context, primaryType, nodeID string, ec ExpansionContext) ([]api.ChildNode, error) {
	key := expansionKeyPrefix + nodeID

	var cached cachedExpansion
	if err := e.cache.Get(ctx, key, &cached); err == nil && len(cached.ChildNodes) > 0 {
		e.logger.Debug("node expansion cache hit", zap.String("node_id", nodeID))
		return cached.ChildNodes, nil
	} else if err != nil && !errors.Is(err, cache.ErrCacheMiss) {
		e.logger.Warn("node expansion cache read failed", zap.Error(err))
	}

	if ec.NodeText == "" {
		ec.NodeText = "Unknown Node"
	}

	prompt := ExpansionPrompt(ec)

	completion, err := e.caller.Execute(ctx, primaryType, prompt, api.CallOptions{})
	if err != nil {
		return nil, fmt.Errorf("node expansion failed for %q: %w", ec.NodeText, err)
	}

	children := ParseChildNodes(completion.Text, e.logger)

	entry := cachedExpansion{
		NodeID:     nodeID,
		NodeText:   ec.NodeText,
		ChildNodes: children,
		Timestamp:  time.Now().UTC(),
	}
	if err := e.cache.Set(ctx, key, entry, e.ttl); err != nil {
		e.logger.Warn("node expansion cache write failed", zap.Error(err))
	}

	return children, nil
}

// ParseChildNodes extracts a JSON array of {"text": ...} objects from model
// output, tolerating code fences and surrounding prose. Any parse failure
// yields the fixed fallback pair rather than an error.
func ParseChildNodes(text string, logger *zap.Logger) []api.ChildNode {
	raw := text
	if m := jsonArrayPattern.FindString(raw); m != "" {
		raw = m
	}
	raw = strings.TrimSpace(codeFencePattern.ReplaceAllString(raw, ""))

	var nodes []api.ChildNode
	if err := json.Unmarshal([]byte(raw), &nodes); err != nil {
		logger.Warn("failed to parse expansion response", zap.Error(err))
		return []api.ChildNode{{Text: "Parse failed"}, {Text: "Please retry"}}
	}

	out := make([]api.ChildNode, 0, len(nodes))
	for i, node := range nodes {
		trimmed := strings.TrimSpace(node.Text)
		if trimmed == "" {
			trimmed = fmt.Sprintf("Child node %d", i+1)
		}
		out = append(out, api.ChildNode{Text: trimmed})
	}
	return out
}
