package remote

import (
	"context"
	"fmt"
	"maps"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/llehouerou/meeloq/internal/queue"
)

// Query is a paginated list endpoint whose items map to queue entries.
// It implements queue.Source.
type Query[R any] struct {
	client    *Client
	route     string
	params    url.Values
	key       []string
	transform func(R) queue.Entry
}

var _ queue.Source = (*Query[Song])(nil)

func newQuery[R any](c *Client, route string, params url.Values, transform func(R) queue.Entry) *Query[R] {
	key := []string{strings.TrimPrefix(route, "/")}
	for _, name := range slices.Sorted(maps.Keys(params)) {
		key = append(key, name+"="+params.Get(name))
	}
	return &Query[R]{client: c, route: route, params: params, key: key, transform: transform}
}

// Key identifies the query: its route followed by its sorted parameters.
func (q *Query[R]) Key() []string {
	return slices.Clone(q.key)
}

// FetchPage fetches one page and maps its items to entries.
func (q *Query[R]) FetchPage(ctx context.Context, p queue.PageParams) (queue.Page, error) {
	params := q.pageValues(p)
	cacheKey := q.route + "?" + params.Encode()
	if !p.NoCache && q.client.cache != nil {
		if page, ok := q.client.cache.Get(cacheKey); ok {
			q.client.logger.Debug("page cache hit", zap.String("key", cacheKey))
			return page, nil
		}
	}

	var resp PaginatedResponse[R]
	if err := q.client.do(ctx, http.MethodGet, q.route, params, nil, &resp); err != nil {
		return queue.Page{}, fmt.Errorf("fetch %s: %w", q.route, err)
	}

	page := queue.Page{
		Entries: make([]queue.Entry, len(resp.Items)),
		Next:    resp.Metadata.Next,
	}
	for i, item := range resp.Items {
		page.Entries[i] = q.transform(item)
	}
	if !p.NoCache && q.client.cache != nil {
		q.client.cache.Add(cacheKey, page)
	}
	return page, nil
}

func (q *Query[R]) pageValues(p queue.PageParams) url.Values {
	params := make(url.Values, len(q.params)+2)
	for k, v := range q.params {
		params[k] = slices.Clone(v)
	}
	if p.AfterID != nil {
		params.Set("afterId", strconv.FormatInt(*p.AfterID, 10))
	}
	take := p.PageSize
	if take <= 0 {
		take = q.client.pageSize
	}
	params.Set("take", strconv.Itoa(take))
	return params
}

// SongFilter selects songs. Identifiers are ids or slugs; empty fields are
// not sent.
type SongFilter struct {
	Library string
	Artist  string
	Genre   string
	Type    string
	Query   string
	// Random makes the server shuffle the songs with the given seed.
	// Paging through a shuffled query with the same seed is stable.
	Random *int64
	SortBy string
	Order  string // "asc" or "desc"
}

func (f SongFilter) values() url.Values {
	v := url.Values{}
	setIf(v, "library", f.Library)
	setIf(v, "artist", f.Artist)
	setIf(v, "genre", f.Genre)
	setIf(v, "type", f.Type)
	setIf(v, "query", f.Query)
	setIf(v, "sortBy", f.SortBy)
	setIf(v, "order", f.Order)
	if f.Random != nil {
		v.Set("random", strconv.FormatInt(*f.Random, 10))
	}
	return v
}

// TrackFilter selects tracks.
type TrackFilter struct {
	Song    string
	Release string
	SortBy  string
	Order   string
}

func (f TrackFilter) values() url.Values {
	v := url.Values{}
	setIf(v, "song", f.Song)
	setIf(v, "release", f.Release)
	setIf(v, "sortBy", f.SortBy)
	setIf(v, "order", f.Order)
	return v
}

func setIf(v url.Values, key, value string) {
	if value != "" {
		v.Set(key, value)
	}
}

// Songs queries /songs. Entries are keyed by song id and play the master
// track of each song.
func (c *Client) Songs(f SongFilter) *Query[Song] {
	v := f.values()
	v.Set("with", "artist,featuring,master,illustration")
	return newQuery(c, "/songs", v, songEntry)
}

// Tracks queries /tracks. Entries are keyed by track id.
func (c *Client) Tracks(f TrackFilter) *Query[Track] {
	v := f.values()
	v.Set("with", "song,release,illustration")
	return newQuery(c, "/tracks", v, trackEntry)
}

// PlaylistEntries queries the entries of a playlist in playlist order.
// Entries are keyed by playlist entry id.
func (c *Client) PlaylistEntries(playlistID int64) *Query[PlaylistEntry] {
	v := url.Values{}
	v.Set("with", "artist,featuring,master,illustration")
	return newQuery(c, fmt.Sprintf("/playlists/%d/entries", playlistID), v, playlistEntry)
}
