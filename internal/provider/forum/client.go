// Package forum implements the discussion-forum search client. Thread titles
// seed the FAQ section of drafted articles.
package forum

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

const serviceName = "forum"

// Client calls the discussion-forum search API.
type Client struct {
	BaseURL    string
	UserAgent  string
	HTTPClient *http.Client
}

// NewClient returns a client for the given endpoint.
func NewClient(baseURL, userAgent string) *Client {
	return &Client{
		BaseURL:   strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		UserAgent: strings.TrimSpace(userAgent),
	}
}

// Thread is one forum discussion matching a topic search.
type Thread struct {
	Title     string `json:"title"`
	Permalink string `json:"permalink"`
	Score     int    `json:"score"`
	Replies   int    `json:"replies"`
}

type searchResponse struct {
	Threads []Thread `json:"threads"`
}

// SearchThreads returns up to limit threads discussing the topic.
func (c *Client) SearchThreads(ctx context.Context, topic string, limit int) ([]Thread, error) {
	if c == nil || c.BaseURL == "" {
		return nil, fmt.Errorf("forum client not configured")
	}
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, fmt.Errorf("topic is required")
	}
	if limit <= 0 {
		limit = 5
	}

	params := url.Values{}
	params.Set("q", topic)
	params.Set("limit", strconv.Itoa(limit))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/v1/search?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if c.UserAgent != "" {
		httpReq.Header.Set("User-Agent", c.UserAgent)
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

	var parsed searchResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return parsed.Threads, nil
}
