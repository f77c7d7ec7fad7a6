package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	apperrors "github.com/tuanng17/coinfolio/internal/errors"
	"github.com/tuanng17/coinfolio/internal/models"
)

// UpstreamClient talks to the external multi-agent portfolio backend over
// HTTP. The backend is treated as an opaque collaborator: any non-success
// status or transport failure is normalized to a displayable error.
type UpstreamClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewUpstreamClient creates a client for the portfolio backend at baseURL.
func NewUpstreamClient(baseURL string, timeout time.Duration, logger *zap.Logger) *UpstreamClient {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UpstreamClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// FetchHoldings retrieves the raw per-segment holding records.
func (c *UpstreamClient) FetchHoldings(ctx context.Context) (*models.RawSegments, error) {
	data, err := c.post(ctx, "/api/portfolio/holdings", nil)
	if err != nil {
		return nil, err
	}

	segments := &models.RawSegments{}
	if err := json.Unmarshal(data, segments); err != nil {
		return nil, fmt.Errorf("failed to decode holdings payload: %w", err)
	}
	return segments, nil
}

// Query forwards a natural-language question and returns the textual answer.
func (c *UpstreamClient) Query(ctx context.Context, text string) (string, error) {
	body, err := json.Marshal(models.QueryRequest{Text: text})
	if err != nil {
		return "", fmt.Errorf("failed to encode query: %w", err)
	}

	data, err := c.post(ctx, "/api/portfolio/query", body)
	if err != nil {
		return "", err
	}

	var payload models.QueryData
	if err := json.Unmarshal(data, &payload); err != nil {
		return "", fmt.Errorf("failed to decode query payload: %w", err)
	}
	if payload.Answer() == "" {
		return "", &apperrors.ErrUpstream{Message: "backend returned an empty response"}
	}
	return payload.Answer(), nil
}

// post performs one envelope round trip and returns the data payload of a
// successful response.
func (c *UpstreamClient) post(ctx context.Context, path string, body []byte) (json.RawMessage, error) {
	if body == nil {
		body = []byte("{}")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build upstream request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &apperrors.ErrUpstream{Message: "portfolio backend unreachable: " + err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("upstream returned non-OK status",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode))
		return nil, &apperrors.ErrUpstream{
			Message: fmt.Sprintf("portfolio backend returned HTTP %d", resp.StatusCode),
		}
	}

	var envelope models.UpstreamEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("failed to decode upstream envelope: %w", err)
	}

	if !envelope.Success() {
		var errData models.UpstreamErrorData
		_ = json.Unmarshal(envelope.Data, &errData)
		reason := errData.Reason()
		if reason == "" {
			reason = "portfolio backend reported an error"
		}
		return nil, &apperrors.ErrUpstream{Message: reason}
	}

	return envelope.Data, nil
}
