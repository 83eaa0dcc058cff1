package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/cnmzsjbz199328/LazyDog/internal/config"
	"github.com/cnmzsjbz199328/LazyDog/internal/httpclient"
	"github.com/cnmzsjbz199328/LazyDog/internal/llm"
	"github.com/cnmzsjbz199328/LazyDog/pkg/api"
)

const apiType = "gemini"

func init() {
	llm.Register(apiType, NewAdapter)
}

// Adapter talks to the Google Generative Language API. The envelope differs
// from the OpenAI-compatible backends: candidates/content/parts, and the
// key travels as a query parameter rather than a header.
type Adapter struct {
	cfg    config.ProviderConfig
	client *http.Client
}

func NewAdapter(cfg config.ProviderConfig) (llm.Provider, error) {
	if cfg.Endpoint == "" {
		cfg.Endpoint = "https://generativelanguage.googleapis.com/v1beta/models/gemini-1.5-flash-8b:generateContent"
	}
	if cfg.Name == "" {
		cfg.Name = "Google Gemini"
	}
	return &Adapter{
		cfg:    cfg,
		client: &http.Client{Timeout: 60 * time.Second},
	}, nil
}

func (a *Adapter) Type() string { return apiType }
func (a *Adapter) Name() string { return a.cfg.Name }

func (a *Adapter) SupportsFallback() bool { return false }

// Models is nil: the model is baked into the endpoint path.
func (a *Adapter) Models() []string { return nil }

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (a *Adapter) Call(ctx context.Context, prompt string, opts api.CallOptions) (*api.RawResponse, error) {
	url := a.cfg.Endpoint
	if !strings.Contains(url, "key=") {
		sep := "?"
		if strings.Contains(url, "?") {
			sep = "&"
		}
		url = fmt.Sprintf("%s%skey=%s", url, sep, a.cfg.APIKey)
	}

	payload := geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
	}

	body, status, err := httpclient.PostJSON(ctx, a.client, url, nil, payload)
	if err != nil {
		return nil, llm.WrapCallError(apiType, "", err)
	}

	return &api.RawResponse{
		APIType:    apiType,
		StatusCode: status,
		Body:       body,
	}, nil
}

func (a *Adapter) Format(raw *api.RawResponse) (*api.Completion, error) {
	var resp geminiResponse
	if err := json.Unmarshal(raw.Body, &resp); err != nil {
		return nil, &llm.ProviderFailure{
			APIType: apiType,
			Kind:    llm.FailureMalformed,
			Detail:  "response is not valid JSON",
			Err:     err,
		}
	}

	if resp.Error != nil {
		return &api.Completion{
			Text:    llm.GenericFailureMessage,
			Err:     resp.Error.Message,
			APIType: apiType,
			Raw:     raw,
		}, nil
	}

	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, &llm.ProviderFailure{
			APIType: apiType,
			Kind:    llm.FailureMalformed,
			Detail:  "no candidates in response",
		}
	}

	text := strings.TrimSpace(resp.Candidates[0].Content.Parts[0].Text)
	if text == "" {
		return nil, &llm.ProviderFailure{
			APIType: apiType,
			Kind:    llm.FailureEmpty,
			Detail:  "provider returned empty content",
		}
	}

	return &api.Completion{
		Text:    text,
		APIType: apiType,
		Raw:     raw,
	}, nil
}
