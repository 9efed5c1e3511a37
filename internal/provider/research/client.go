// Package research implements the keyword/competitor research client used to
// enrich article drafts with search data.
package research

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/draftmill/draftmill/internal/provider"
)

const serviceName = "research"

// Client calls the search-research API.
type Client struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

// NewClient returns a client for the given endpoint.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		APIKey:  strings.TrimSpace(apiKey),
	}
}

// Keyword is one ranked search term.
type Keyword struct {
	Term       string  `json:"term"`
	Volume     int     `json:"volume"`
	Difficulty float64 `json:"difficulty"`
}

// Report aggregates the research data for one query.
type Report struct {
	Query       string    `json:"query"`
	Keywords    []Keyword `json:"keywords"`
	Competitors []string  `json:"competitors"`
}

// KeywordReport fetches keyword and competitor data for a query.
func (c *Client) KeywordReport(ctx context.Context, query string, limit int) (*Report, error) {
	if c == nil || c.BaseURL == "" {
		return nil, fmt.Errorf("research client not configured")
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("query is required")
	}
	if limit <= 0 {
		limit = 10
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("limit", strconv.Itoa(limit))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/v1/keywords?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if c.APIKey != "" {
		httpReq.Header.Set("X-Api-Key", c.APIKey)
	}
	httpReq.Header.Set("Accept", "application/json")

	client := c.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close() // nolint:errcheck // best-effort cleanup

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &provider.Error{Service: serviceName, StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(respBody)), RawResponse: respBody}
	}

	var report Report
	if err := json.Unmarshal(respBody, &report); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if report.Query == "" {
		report.Query = query
	}

	return &report, nil
}
