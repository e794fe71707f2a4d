package extract

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/goccy/go-json"
)

// HTTPClient talks to the extraction service over HTTP. One POST per image;
// the service answers with a classification and the raw field maps.
type HTTPClient struct {
	endpoint string
	client   *http.Client
}

// NewHTTPClient creates a client for the given extraction endpoint. Pass a
// nil http.Client to use http.DefaultClient; deadlines come from the caller's
// context (see WithTimeout).
func NewHTTPClient(endpoint string, client *http.Client) *HTTPClient {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPClient{endpoint: endpoint, client: client}
}

type extractRequest struct {
	ImageURL string `json:"image_url"`
}

func (h *HTTPClient) Extract(ctx context.Context, imageURL string) (*Result, error) {
	body, err := json.Marshal(extractRequest{ImageURL: imageURL})
	if err != nil {
		return nil, fmt.Errorf("failed to encode extract request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build extract request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("extract request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Drain a bounded amount for the error message; extraction services
		// tend to return short JSON errors.
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("extract service returned %d: %s", resp.StatusCode, msg)
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode extract response: %w", err)
	}
	if result.Kind == "" {
		result.Kind = KindInvalid
	}
	return &result, nil
}
