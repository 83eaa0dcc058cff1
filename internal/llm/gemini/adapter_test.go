package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cnmzsjbz199328/LazyDog/internal/config"
	"github.com/cnmzsjbz199328/LazyDog/internal/llm"
	"github.com/cnmzsjbz199328/LazyDog/pkg/api"
)

func TestCallSendsKeyAsQueryParam(t *testing.T) {
	var gotURL string
	var gotBody geminiRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotURL = r.URL.String()
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"pong"}]}}]}`))
	}))
	defer server.Close()

	a, err := NewAdapter(config.ProviderConfig{APIKey: "g-key", Endpoint: server.URL})
	require.NoError(t, err)
	assert.False(t, a.SupportsFallback())
	assert.Nil(t, a.Models())

	raw, err := a.Call(context.Background(), "ping", api.CallOptions{})
	require.NoError(t, err)

	assert.Contains(t, gotURL, "key=g-key")
	require.Len(t, gotBody.Contents, 1)
	require.Len(t, gotBody.Contents[0].Parts, 1)
	assert.Equal(t, "ping", gotBody.Contents[0].Parts[0].Text)

	comp, err := a.Format(raw)
	require.NoError(t, err)
	assert.Equal(t, "pong", comp.Text)
	assert.Equal(t, "gemini", comp.APIType)
}

func TestFormatInBandErrorIsSoftFailure(t *testing.T) {
	a, err := NewAdapter(config.ProviderConfig{APIKey: "k"})
	require.NoError(t, err)

	comp, err := a.Format(&api.RawResponse{
		APIType: "gemini",
		Body:    []byte(`{"error":{"message":"API key not valid"}}`),
	})
	require.NoError(t, err)
	assert.True(t, comp.SoftFailure())
	assert.Equal(t, "API key not valid", comp.Err)
	assert.Equal(t, llm.GenericFailureMessage, comp.Text)
}

func TestFormatRejectsEmptyCandidates(t *testing.T) {
	a, err := NewAdapter(config.ProviderConfig{APIKey: "k"})
	require.NoError(t, err)

	_, err = a.Format(&api.RawResponse{APIType: "gemini", Body: []byte(`{"candidates":[]}`)})
	var pf *llm.ProviderFailure
	require.ErrorAs(t, err, &pf)
	assert.Equal(t, llm.FailureMalformed, pf.Kind)

	_, err = a.Format(&api.RawResponse{
		APIType: "gemini",
		Body:    []byte(`{"candidates":[{"content":{"parts":[{"text":"  "}]}}]}`),
	})
	require.ErrorAs(t, err, &pf)
	assert.Equal(t, llm.FailureEmpty, pf.Kind)
}
