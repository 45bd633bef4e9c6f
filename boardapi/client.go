// Package boardapi fetches raw item records from a remote work-tracking
// board over its cursor-paginated GraphQL endpoint.
//
// The client keeps no state between calls: every fetch walks the board from
// the first page. Transient failures (rate limit, 5xx, network timeout)
// retry the same page with exponential backoff; once the per-page budget is
// exhausted the whole fetch fails with *SourceUnavailableError carrying the
// pages that did complete.
package boardapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"net/http"
	"strconv"
	"time"
)

const (
	queryFirstPage = `query($boardId: ID!, $limit: Int!) {
  boards(ids: [$boardId]) {
    items_page(limit: $limit) {
      cursor
      items { id name column_values { id title text } }
    }
  }
}`
	queryNextPage = `query($boardId: ID!, $limit: Int!, $cursor: String!) {
  boards(ids: [$boardId]) {
    items_page(limit: $limit, cursor: $cursor) {
      cursor
      items { id name column_values { id title text } }
    }
  }
}`
)

// Config configures the board client.
type Config struct {
	// PageSize is items per page. Default 500, which is also the protocol cap.
	PageSize int
	// PageTimeout bounds a single page request, independent of the retry
	// budget. Default: 15s.
	PageTimeout time.Duration
	// MaxAttempts is the per-page attempt bound. Default: 4.
	MaxAttempts int
	// BaseBackoff is the first retry delay, doubled per attempt. Default: 1s.
	BaseBackoff time.Duration
}

func (c *Config) defaults() {
	if c.PageSize <= 0 || c.PageSize > 500 {
		c.PageSize = 500
	}
	if c.PageTimeout <= 0 {
		c.PageTimeout = 15 * time.Second
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 4
	}
	if c.BaseBackoff <= 0 {
		c.BaseBackoff = time.Second
	}
}

// Client queries a board endpoint with bearer auth. Safe for concurrent use.
type Client struct {
	apiURL string
	token  string
	client *http.Client
	config Config
	logger *slog.Logger
}

// New creates a Client. The http.Client timeout is left unset; per-page
// deadlines come from Config.PageTimeout via the request context.
func New(apiURL, token string, cfg Config, logger *slog.Logger) *Client {
	cfg.defaults()
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		apiURL: apiURL,
		token:  token,
		client: &http.Client{},
		config: cfg,
		logger: logger,
	}
}

// FetchAll retrieves every item on the board, page by page. On retry
// exhaustion it returns *SourceUnavailableError holding the items fetched
// from completed pages.
func (c *Client) FetchAll(ctx context.Context, boardID string) ([]RawItem, error) {
	var all []RawItem
	cursor := ""
	page := 0

	for {
		page++
		items, next, err := c.fetchPage(ctx, boardID, cursor)
		if err != nil {
			return all, &SourceUnavailableError{BoardID: boardID, Page: page, Fetched: all, Err: err}
		}
		all = append(all, items...)

		c.logger.DebugContext(ctx, "fetched board page",
			"board_id", boardID, "page", page, "items", len(items), "more", next != "")

		if next == "" {
			c.logger.InfoContext(ctx, "board fetch complete",
				"board_id", boardID, "pages", page, "items", len(all))
			return all, nil
		}
		cursor = next
	}
}

// Items returns a lazy, restartable walk over the board: each range
// statement starts a fresh fetch from the first page. Iteration stops at the
// first page-level failure, yielded as a non-nil error.
func (c *Client) Items(ctx context.Context, boardID string) iter.Seq2[RawItem, error] {
	return func(yield func(RawItem, error) bool) {
		cursor := ""
		for {
			items, next, err := c.fetchPage(ctx, boardID, cursor)
			if err != nil {
				yield(RawItem{}, err)
				return
			}
			for _, it := range items {
				if !yield(it, nil) {
					return
				}
			}
			if next == "" {
				return
			}
			cursor = next
		}
	}
}

// fetchPage retrieves one page, retrying the same page on transient failure.
func (c *Client) fetchPage(ctx context.Context, boardID, cursor string) ([]RawItem, string, error) {
	query := queryFirstPage
	vars := map[string]any{"boardId": boardID, "limit": c.config.PageSize}
	if cursor != "" {
		query = queryNextPage
		vars["cursor"] = cursor
	}

	body, err := json.Marshal(gqlRequest{Query: query, Variables: vars})
	if err != nil {
		return nil, "", fmt.Errorf("boardapi: marshal query: %w", err)
	}

	state := newRetryState(c.config.MaxAttempts, c.config.BaseBackoff)
	var lastErr error

	for {
		items, next, retryAfter, err := c.doRequest(ctx, body)
		if err == nil {
			return items, next, nil
		}
		if !retryable(err) || ctx.Err() != nil {
			return nil, "", err
		}
		lastErr = err
		state.retryAfter = retryAfter

		if !state.failed() {
			return nil, "", fmt.Errorf("boardapi: %d attempts exhausted: %w", state.attempt, lastErr)
		}
		c.logger.WarnContext(ctx, "retrying board page",
			"board_id", boardID,
			"attempt", state.attempt,
			"max_attempts", c.config.MaxAttempts,
			"error", err)
		if err := state.wait(ctx); err != nil {
			return nil, "", lastErr
		}
	}
}

// doRequest performs a single HTTP attempt. retryAfter is non-zero only for
// 429 responses that carried a Retry-After header.
func (c *Client) doRequest(ctx context.Context, body []byte) (items []RawItem, next string, retryAfter time.Duration, err error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.PageTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(body))
	if err != nil {
		return nil, "", 0, fmt.Errorf("boardapi: new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("API-Version", "2024-01")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, "", 0, fmt.Errorf("boardapi: post: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return nil, "", 0, fmt.Errorf("boardapi: read body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet := string(raw)
		if len(snippet) > 512 {
			snippet = snippet[:512]
		}
		if resp.StatusCode == http.StatusTooManyRequests {
			if secs, convErr := strconv.Atoi(resp.Header.Get("Retry-After")); convErr == nil && secs > 0 {
				retryAfter = time.Duration(secs) * time.Second
			}
		}
		return nil, "", retryAfter, &APIError{StatusCode: resp.StatusCode, Body: snippet}
	}

	var gr gqlResponse
	if err := json.Unmarshal(raw, &gr); err != nil {
		return nil, "", 0, fmt.Errorf("boardapi: decode response: %w", err)
	}
	if len(gr.Errors) > 0 {
		msgs := make([]string, len(gr.Errors))
		for i, e := range gr.Errors {
			msgs[i] = e.Message
		}
		return nil, "", 0, &GraphQLError{Messages: msgs}
	}
	if len(gr.Data.Boards) == 0 {
		return nil, "", 0, nil
	}

	page := gr.Data.Boards[0].ItemsPage
	items = make([]RawItem, 0, len(page.Items))
	for _, it := range page.Items {
		items = append(items, it.toRawItem())
	}
	return items, page.Cursor, 0, nil
}

// retryable reports whether err is a transient condition worth another
// attempt at the same page.
func retryable(err error) bool {
	if apiErr, ok := err.(*APIError); ok {
		return apiErr.StatusCode == http.StatusTooManyRequests || apiErr.StatusCode >= 500
	}
	if _, ok := err.(*GraphQLError); ok {
		return false
	}
	// Network-level failures (timeouts, refused connections) come wrapped
	// from http.Client.Do.
	return true
}
