package openrouter

import (
	"context"
	"net/http"
	"time"

	"github.com/cnmzsjbz199328/LazyDog/internal/config"
	"github.com/cnmzsjbz199328/LazyDog/internal/httpclient"
	"github.com/cnmzsjbz199328/LazyDog/internal/llm"
	"github.com/cnmzsjbz199328/LazyDog/pkg/api"
)

const apiType = "openrouter"

func init() {
	llm.Register(apiType, NewAdapter)
}

// Adapter talks to OpenRouter's OpenAI-compatible endpoint. It is the one
// backend with an internal model cascade: the configured primary model plus
// an ordered fallback list.
type Adapter struct {
	cfg    config.ProviderConfig
	client *http.Client
}

func NewAdapter(cfg config.ProviderConfig) (llm.Provider, error) {
	if cfg.Endpoint == "" {
		cfg.Endpoint = "https://openrouter.ai/api/v1/chat/completions"
	}
	if cfg.Name == "" {
		cfg.Name = "OpenRouter"
	}
	return &Adapter{
		cfg:    cfg,
		client: &http.Client{Timeout: 60 * time.Second},
	}, nil
}

func (a *Adapter) Type() string { return apiType }
func (a *Adapter) Name() string { return a.cfg.Name }

func (a *Adapter) SupportsFallback() bool { return true }

// Models returns the cascade order: primary first, then the fallback list
// with any duplicate of the primary dropped.
func (a *Adapter) Models() []string {
	models := []string{a.cfg.Model}
	for _, m := range a.cfg.FallbackModels {
		if m != a.cfg.Model {
			models = append(models, m)
		}
	}
	return models
}

func (a *Adapter) Call(ctx context.Context, prompt string, opts api.CallOptions) (*api.RawResponse, error) {
	model := opts.Model
	if model == "" {
		model = a.cfg.Model
	}

	headers := map[string]string{
		"Authorization": "Bearer " + a.cfg.APIKey,
	}
	// client-identifying headers OpenRouter uses for attribution
	if a.cfg.SiteURL != "" {
		headers["HTTP-Referer"] = a.cfg.SiteURL
	}
	if a.cfg.SiteName != "" {
		headers["X-Title"] = a.cfg.SiteName
	}

	payload := llm.ChatPayload(model, prompt, a.cfg, opts)

	body, status, err := httpclient.PostJSON(ctx, a.client, a.cfg.Endpoint, headers, payload)
	if err != nil {
		return nil, llm.WrapCallError(apiType, model, err)
	}

	return &api.RawResponse{
		APIType:    apiType,
		Model:      model,
		StatusCode: status,
		Body:       body,
	}, nil
}

func (a *Adapter) Format(raw *api.RawResponse) (*api.Completion, error) {
	return llm.FormatOpenAIEnvelope(raw)
}
