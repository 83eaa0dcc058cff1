package llm

import (
	"encoding/json"
	"strings"

	"github.com/cnmzsjbz199328/LazyDog/internal/config"
	"github.com/cnmzsjbz199328/LazyDog/pkg/api"
)

// ChatPayload builds the chat-completion request body shared by the
// OpenAI-compatible backends: a single user-role message carrying the
// prompt, provider defaults underneath, caller options on top.
func ChatPayload(model, prompt string, cfg config.ProviderConfig, opts api.CallOptions) map[string]interface{} {
	payload := map[string]interface{}{
		"model": model,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
	}

	if cfg.MaxTokens > 0 {
		payload["max_tokens"] = cfg.MaxTokens
	}
	if cfg.Temperature != nil {
		payload["temperature"] = *cfg.Temperature
	}

	if opts.MaxTokens > 0 {
		payload["max_tokens"] = opts.MaxTokens
	}
	if opts.Temperature != nil {
		payload["temperature"] = *opts.Temperature
	}
	for k, v := range opts.Extra {
		payload[k] = v
	}

	return payload
}

// openAIEnvelope is the shared chat-completion reply shape, including the
// two observed alternates: a bare content field on the choice, and an
// in-band error object.
type openAIEnvelope struct {
	Choices []struct {
		Message *struct {
			Content string `json:"content"`
		} `json:"message"`
		Content string `json:"content"`
		Error   *struct {
			Message string `json:"message"`
		} `json:"error"`
	} `json:"choices"`
}

// FormatOpenAIEnvelope extracts assistant text from an OpenAI-compatible
// reply. An in-band error yields a soft-failure Completion; a reply with
// neither text nor error yields a malformed-response failure.
func FormatOpenAIEnvelope(raw *api.RawResponse) (*api.Completion, error) {
	var env openAIEnvelope
	if err := json.Unmarshal(raw.Body, &env); err != nil {
		return nil, &ProviderFailure{
			APIType: raw.APIType,
			Model:   raw.Model,
			Kind:    FailureMalformed,
			Detail:  "response is not valid JSON",
			Err:     err,
		}
	}

	if len(env.Choices) == 0 {
		return nil, &ProviderFailure{
			APIType: raw.APIType,
			Model:   raw.Model,
			Kind:    FailureMalformed,
			Detail:  "no choices in response",
		}
	}

	choice := env.Choices[0]

	if choice.Error != nil {
		msg := choice.Error.Message
		if msg == "" {
			msg = "unknown provider error"
		}
		return &api.Completion{
			Text:      GenericFailureMessage,
			Err:       msg,
			APIType:   raw.APIType,
			UsedModel: raw.Model,
			Raw:       raw,
		}, nil
	}

	text := ""
	if choice.Message != nil {
		text = choice.Message.Content
	}
	if text == "" {
		text = choice.Content
	}
	text = strings.TrimSpace(text)

	if text == "" {
		return nil, &ProviderFailure{
			APIType: raw.APIType,
			Model:   raw.Model,
			Kind:    FailureEmpty,
			Detail:  "provider returned empty content",
		}
	}

	return &api.Completion{
		Text:      text,
		APIType:   raw.APIType,
		UsedModel: raw.Model,
		Raw:       raw,
	}, nil
}
