package llm

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cnmzsjbz199328/LazyDog/pkg/api"
	"go.uber.org/zap"
)

// Orchestrator runs the cascade: primary provider first (walking its model
// list when it has one), then the configured cross-provider priority order.
// Attempts are strictly sequential; the first success wins.
type Orchestrator struct {
	mu             sync.RWMutex
	providers      map[string]Provider
	order          []string
	attemptTimeout time.Duration
	logger         *zap.Logger
}

// NewOrchestrator builds an orchestrator with the given cross-provider
// fallback order. attemptTimeout bounds each individual call; zero disables
// the per-attempt timeout.
func NewOrchestrator(order []string, attemptTimeout time.Duration, log *zap.Logger) *Orchestrator {
	return &Orchestrator{
		providers:      make(map[string]Provider),
		order:          order,
		attemptTimeout: attemptTimeout,
		logger:         log,
	}
}

// RegisterProvider adds a provider instance, keyed by its lowercase type.
// Last write wins.
func (o *Orchestrator) RegisterProvider(p Provider) {
	key := strings.ToLower(p.Type())

	o.mu.Lock()
	defer o.mu.Unlock()

	if _, exists := o.providers[key]; exists {
		o.logger.Warn("provider already registered, overwriting", zap.String("type", key))
	}
	o.providers[key] = p
}

// Provider returns the registered instance for a type, case-insensitively.
func (o *Orchestrator) Provider(providerType string) (Provider, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()

	p, ok := o.providers[strings.ToLower(providerType)]
	return p, ok
}

// Providers returns the registered instances in fallback-priority order,
// with any providers outside the configured order appended after, sorted by
// type for a stable result.
func (o *Orchestrator) Providers() []Provider {
	o.mu.RLock()
	defer o.mu.RUnlock()

	seen := make(map[string]bool, len(o.providers))
	out := make([]Provider, 0, len(o.providers))

	for _, t := range o.order {
		key := strings.ToLower(t)
		if p, ok := o.providers[key]; ok && !seen[key] {
			out = append(out, p)
			seen[key] = true
		}
	}

	rest := make([]string, 0, len(o.providers))
	for key := range o.providers {
		if !seen[key] {
			rest = append(rest, key)
		}
	}
	sort.Strings(rest)
	for _, key := range rest {
		out = append(out, o.providers[key])
	}
	return out
}

// FormatResponse dispatches a raw response to the parser of the provider
// that produced it.
func (o *Orchestrator) FormatResponse(raw *api.RawResponse) (*api.Completion, error) {
	p, ok := o.Provider(raw.APIType)
	if !ok {
		return nil, &ProviderFailure{
			APIType: raw.APIType,
			Kind:    FailureConfig,
			Detail:  "no provider registered for response type",
		}
	}
	return p.Format(raw)
}

// Execute runs the full cascade for prompt, starting from the primary
// backend type. On total exhaustion it returns an *ExhaustedError wrapping
// ErrAllProvidersExhausted.
func (o *Orchestrator) Execute(ctx context.Context, primaryType, prompt string, opts api.CallOptions) (*api.Completion, error) {
	primary := strings.ToLower(primaryType)
	var attempts []*ProviderFailure

	if p, ok := o.Provider(primary); ok {
		comp, fails := o.tryProvider(ctx, p, prompt, opts)
		if comp != nil {
			return comp, nil
		}
		attempts = append(attempts, fails...)
		o.logger.Warn("primary provider exhausted, falling back",
			zap.String("primary", primary),
			zap.Int("attempts", len(fails)),
		)
	} else {
		attempts = append(attempts, &ProviderFailure{
			APIType: primary,
			Kind:    FailureConfig,
			Detail:  "primary provider not registered",
		})
		o.logger.Warn("primary provider not registered, falling back", zap.String("primary", primary))
	}

	// Every other registered provider gets a turn: the configured order
	// first, then whatever is registered outside it.
	for _, p := range o.Providers() {
		if strings.EqualFold(p.Type(), primary) {
			continue
		}

		comp, fails := o.tryProvider(ctx, p, prompt, opts)
		if comp != nil {
			comp.FallbackUsed = true
			comp.OriginalAPIType = primary
			o.logger.Info("fallback provider succeeded",
				zap.String("provider", p.Type()),
				zap.String("original", primary),
			)
			return comp, nil
		}
		attempts = append(attempts, fails...)
	}

	o.logger.Error("cascade exhausted", zap.Int("attempts", len(attempts)))
	return nil, &ExhaustedError{Attempts: attempts}
}

// tryProvider walks one provider's model list (or makes a single untargeted
// call), returning the first successful completion or the failures of every
// attempt. Success means non-empty text with no in-band error.
func (o *Orchestrator) tryProvider(ctx context.Context, p Provider, prompt string, opts api.CallOptions) (*api.Completion, []*ProviderFailure) {
	models := p.Models()
	if !p.SupportsFallback() && len(models) > 1 {
		models = models[:1]
	}
	if len(models) == 0 {
		models = []string{""}
	}

	var failures []*ProviderFailure

	for _, model := range models {
		attemptOpts := opts
		attemptOpts.Model = model

		comp, err := o.attempt(ctx, p, prompt, attemptOpts)
		if err != nil {
			pf := WrapCallError(p.Type(), model, err)
			failures = append(failures, pf)
			o.logger.Warn("provider attempt failed",
				zap.String("provider", p.Type()),
				zap.String("model", model),
				zap.String("kind", string(pf.Kind)),
				zap.String("detail", pf.Detail),
			)
			continue
		}

		if comp.SoftFailure() {
			failures = append(failures, &ProviderFailure{
				APIType: p.Type(),
				Model:   model,
				Kind:    FailureInBand,
				Detail:  comp.Err,
			})
			o.logger.Warn("provider reported in-band error",
				zap.String("provider", p.Type()),
				zap.String("model", model),
				zap.String("detail", comp.Err),
			)
			continue
		}

		return comp, nil
	}

	return nil, failures
}

func (o *Orchestrator) attempt(ctx context.Context, p Provider, prompt string, opts api.CallOptions) (*api.Completion, error) {
	if o.attemptTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.attemptTimeout)
		defer cancel()
	}

	raw, err := p.Call(ctx, prompt, opts)
	if err != nil {
		return nil, err
	}
	return p.Format(raw)
}
