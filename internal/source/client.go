package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	requestTimeout = 30 * time.Second
	maxRetries     = 5
)

// Client fetches the JSON export feed over HTTP, retrying transient
// failures with exponential backoff. Auth rejections and malformed payloads
// stop the retry loop immediately.
type Client struct {
	url    string
	token  string
	client *http.Client
}

func NewClient(url, token string) *Client {
	return &Client{
		url:    url,
		token:  token,
		client: &http.Client{Timeout: requestTimeout},
	}
}

func (c *Client) Fetch(ctx context.Context) ([]Record, error) {
	if c.url == "" {
		return nil, errors.New("source_url is not configured")
	}

	var records []Record
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("build request: %w", err))
		}
		if c.token != "" {
			req.Header.Set("Authorization", "Bearer "+c.token)
		}

		resp, err := c.client.Do(req)
		if err != nil {
			return fmt.Errorf("request feed: %w", err)
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
			return backoff.Permanent(fmt.Errorf("feed rejected credentials: %s", resp.Status))
		case resp.StatusCode != http.StatusOK:
			return fmt.Errorf("feed returned %s", resp.Status)
		}

		records = records[:0]
		if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
			return backoff.Permanent(fmt.Errorf("decode feed: %w", err))
		}
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), maxRetries), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return nil, fmt.Errorf("fetch export feed: %w", err)
	}

	slog.InfoContext(ctx, "Fetched export feed", "url", c.url, "records", len(records))
	return records, nil
}
