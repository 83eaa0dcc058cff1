package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// HTTPClient is the subset of http.Client the helpers need.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// PostJSON marshals body, issues the request, and returns the raw response
// bytes. Non-2xx statuses return an *UpstreamError carrying the body so the
// caller can fold the failure into its own error taxonomy.
func PostJSON(ctx context.Context, client HTTPClient, url string, headers map[string]string, body interface{}) ([]byte, int, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bodyReader)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, resp.StatusCode, &UpstreamError{
			StatusCode: resp.StatusCode,
			Body:       respBody,
			URL:        url,
		}
	}

	return respBody, resp.StatusCode, nil
}

// SendRequest posts body and decodes the JSON reply into response when it is
// non-nil.
func SendRequest(ctx context.Context, client HTTPClient, url string, headers map[string]string, body, response interface{}) error {
	respBody, _, err := PostJSON(ctx, client, url, headers, body)
	if err != nil {
		return err
	}

	if response != nil {
		if err := json.Unmarshal(respBody, response); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}
