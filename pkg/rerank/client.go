// Package rerank provides a client for the pairwise relevance model used to
// rescore retrieval candidates.
package rerank

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"smart-tutor-go/internal/config"
	"smart-tutor-go/pkg/log"
)

// Client scores (query, passage) pairs. Higher means more relevant.
type Client interface {
	Score(ctx context.Context, query string, passages []string) ([]float64, error)
}

type httpClient struct {
	cfg    config.RerankConfig
	client *http.Client
}

// NewClient creates a rerank client for a /rerank style endpoint.
func NewClient(cfg config.RerankConfig) Client {
	return &httpClient{
		cfg:    cfg,
		client: &http.Client{},
	}
}

type rerankRequest struct {
	Model     string   `json:"model"`
	Query     string   `json:"query"`
	Documents []string `json:"documents"`
}

type rerankResponse struct {
	Results []struct {
		Index          int     `json:"index"`
		RelevanceScore float64 `json:"relevance_score"`
	} `json:"results"`
}

// Score scores each passage against the query, preserving passage order.
func (c *httpClient) Score(ctx context.Context, query string, passages []string) ([]float64, error) {
	if len(passages) == 0 {
		return nil, nil
	}
	log.Infof("[RerankClient] calling rerank API, model: %s, passages: %d", c.cfg.Model, len(passages))
	reqBody := rerankRequest{
		Model:     c.cfg.Model,
		Query:     query,
		Documents: passages,
	}

	reqBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal rerank request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.cfg.BaseURL+"/rerank", bytes.NewReader(reqBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to create rerank request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.client.Do(req)
	if err != nil {
		log.Errorf("[RerankClient] rerank API call failed: %v", err)
		return nil, fmt.Errorf("failed to call rerank api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Errorf("[RerankClient] rerank API returned non-200 status: %s", resp.Status)
		return nil, fmt.Errorf("rerank api returned non-200 status: %s", resp.Status)
	}

	var rerankResp rerankResponse
	if err := json.NewDecoder(resp.Body).Decode(&rerankResp); err != nil {
		return nil, fmt.Errorf("failed to decode rerank response: %w", err)
	}

	scores := make([]float64, len(passages))
	for _, r := range rerankResp.Results {
		if r.Index < 0 || r.Index >= len(scores) {
			return nil, fmt.Errorf("rerank api returned out-of-range index %d", r.Index)
		}
		scores[r.Index] = r.RelevanceScore
	}
	return scores, nil
}
