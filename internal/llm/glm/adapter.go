package glm

import (
	"context"
	"net/http"
	"time"

	"github.com/cnmzsjbz199328/LazyDog/internal/config"
	"github.com/cnmzsjbz199328/LazyDog/internal/httpclient"
	"github.com/cnmzsjbz199328/LazyDog/internal/llm"
	"github.com/cnmzsjbz199328/LazyDog/pkg/api"
)

const apiType = "glm"

func init() {
	llm.Register(apiType, NewAdapter)
}

type Adapter struct {
	cfg    config.ProviderConfig
	client *http.Client
}

func NewAdapter(cfg config.ProviderConfig) (llm.Provider, error) {
	if cfg.Endpoint == "" {
		cfg.Endpoint = "https://open.bigmodel.cn/api/paas/v4/chat/completions"
	}
	if cfg.Model == "" {
		cfg.Model = "glm-4-flash"
	}
	if cfg.Name == "" {
		cfg.Name = "GLM"
	}
	return &Adapter{
		cfg:    cfg,
		client: &http.Client{Timeout: 60 * time.Second},
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
