// Package remote is a client for the Meelo HTTP API. Its paginated queries
// implement queue.Source so they can back an infinite queue.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/llehouerou/meeloq/internal/queue"
)

const defaultTimeout = 30 * time.Second

// Option configures a Client.
type Option func(*Client)

// WithPageSize sets the default page size of queries.
func WithPageSize(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.pageSize = n
		}
	}
}

// WithTimeout sets the HTTP request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithCache keeps up to size fetched pages in memory. Pages fetched with
// NoCache bypass it.
func WithCache(size int) Option {
	return func(c *Client) {
		if size <= 0 {
			return
		}
		cache, err := lru.New[string, queue.Page](size)
		if err == nil {
			c.cache = cache
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// Client provides access to the Meelo API.
type Client struct {
	baseURL    string
	token      string
	pageSize   int
	httpClient *http.Client
	cache      *lru.Cache[string, queue.Page]
	logger     *zap.Logger
}

// NewClient creates a new Meelo API client. baseURL is the API root, e.g.
// "http://localhost:5000/api".
func NewClient(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		pageSize:   queue.DefaultPageSize,
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// PageSize returns the default page size of queries.
func (c *Client) PageSize() int {
	return c.pageSize
}

// PurgeCache drops every cached page.
func (c *Client) PurgeCache() {
	if c.cache != nil {
		c.cache.Purge()
	}
}

// ReorderPlaylist stores a new order for the entries of a playlist.
// entryIDs must list every entry of the playlist.
func (c *Client) ReorderPlaylist(ctx context.Context, playlistID int64, entryIDs []int64) error {
	body := map[string][]int64{"entryIds": entryIDs}
	path := fmt.Sprintf("/playlists/%d/entries/reorder", playlistID)
	if err := c.do(ctx, http.MethodPut, path, nil, body, nil); err != nil {
		return err
	}
	c.logger.Debug("playlist reordered", zap.Int64("playlist", playlistID), zap.Int("entries", len(entryIDs)))
	return nil
}

// PlaylistEntryIDs returns the entry ids of a playlist in playlist order.
// It reads every page, bypassing the cache.
func (c *Client) PlaylistEntryIDs(ctx context.Context, playlistID int64) ([]int64, error) {
	q := c.PlaylistEntries(playlistID)
	var ids []int64
	params := queue.PageParams{PageSize: c.pageSize, NoCache: true}
	for {
		page, err := q.FetchPage(ctx, params)
		if err != nil {
			return nil, fmt.Errorf("list playlist %d entries: %w", playlistID, err)
		}
		ids = append(ids, queue.IDs(page.Entries)...)
		last := page.Last()
		if page.Next == nil || last == nil {
			return ids, nil
		}
		after := last.ID
		params.AfterID = &after
	}
}

// do sends a request and decodes the JSON response into out if non-nil.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	body := io.Reader(http.NoBody)
	if in != nil {
		jsonBody, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	c.setHeaders(req, in != nil)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()
	c.logger.Debug("api request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return readAPIError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) setHeaders(req *http.Request, hasBody bool) {
	req.Header.Set("Accept", "application/json")
	if hasBody {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

func readAPIError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	apiErr := &APIError{Status: resp.StatusCode}
	var body errorBody
	if json.Unmarshal(data, &body) == nil && body.Message != "" {
		apiErr.Message = body.Message
	} else {
		apiErr.Message = strings.TrimSpace(string(data))
	}
	return apiErr
}
