package mistral

import (
	"context"
	"net/http"
	"time"

	"github.com/cnmzsjbz199328/LazyDog/internal/config"
	"github.com/cnmzsjbz199328/LazyDog/internal/httpclient"
	"github.com/cnmzsjbz199328/LazyDog/internal/llm"
	"github.com/cnmzsjbz199328/LazyDog/pkg/api"
)

const apiType = "mistral"

// PixtralOption selects the multimodal pixtral model instead of the
// configured default. Set it as a truthy value under opts.Extra.
const PixtralOption = "use_pixtral"

func init() {
	llm.Register(apiType, NewAdapter)
}

type Adapter struct {
	cfg     config.ProviderConfig
	pixtral string
	client  *http.Client
}

func NewAdapter(cfg config.ProviderConfig) (llm.Provider, error) {
	if cfg.Endpoint == "" {
		cfg.Endpoint = "https://api.mistral.ai/v1/chat/completions"
	}
	if cfg.Model == "" {
		cfg.Model = "mistral-small-latest"
	}
	if cfg.Name == "" {
		cfg.Name = "Mistral"
	}
	pixtral := cfg.Extra["pixtral_model"]
	if pixtral == "" {
		pixtral = "pixtral-12b-2409"
	}
	return &Adapter{
		cfg:     cfg,
		pixtral: pixtral,
		client:  &http.Client{Timeout: 60 * time.Second},
	}, nil
}

func (a *Adapter) Type() string { return apiType }
func (a *Adapter) Name() string { return a.cfg.Name }

func (a *Adapter) SupportsFallback() bool { return false }

func (a *Adapter) Models() []string { return []string{a.cfg.Model} }

func (a *Adapter) Call(ctx context.Context, prompt string, opts api.CallOptions) (*api.RawResponse, error) {
	model := opts.Model
	if model == "" {
		model = a.cfg.Model
	}
	if usePixtral, ok := opts.Extra[PixtralOption].(bool); ok && usePixtral {
		model = a.pixtral
		opts.Extra = cloneWithout(opts.Extra, PixtralOption)
	}

	headers := map[string]string{
		"Authorization": "Bearer " + a.cfg.APIKey,
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

func cloneWithout(extra map[string]interface{}, key string) map[string]interface{} {
	out := make(map[string]interface{}, len(extra))
	for k, v := range extra {
		if k != key {
			out[k] = v
		}
	}
	return out
}
