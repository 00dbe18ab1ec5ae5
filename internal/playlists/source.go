package playlists

import (
	"context"
	"fmt"
	"strconv"

	"github.com/llehouerou/meeloq/internal/queue"
)

// Source pages through the entries of a local playlist. It implements
// queue.Source with playlist entry ids as the pagination key, so a playlist
// can back an infinite queue the same way a remote query does.
type Source struct {
	p          *Playlists
	playlistID int64
}

var _ queue.Source = (*Source)(nil)

// Source returns a paged source over the entries of a playlist.
func (p *Playlists) Source(playlistID int64) *Source {
	return &Source{p: p, playlistID: playlistID}
}

// Key identifies the playlist.
func (s *Source) Key() []string {
	return []string{"playlists", strconv.FormatInt(s.playlistID, 10), "entries"}
}

// FetchPage returns the entries following params.AfterID in playlist order.
// Next is set when more entries follow the page.
func (s *Source) FetchPage(ctx context.Context, params queue.PageParams) (queue.Page, error) {
	size := params.PageSize
	if size <= 0 {
		size = queue.DefaultPageSize
	}
	// One extra row tells whether another page follows.
	entries, err := s.p.entriesAfter(ctx, s.playlistID, params.AfterID, size+1)
	if err != nil {
		return queue.Page{}, fmt.Errorf("page playlist %d: %w", s.playlistID, err)
	}

	page := queue.Page{Entries: entries}
	if len(entries) > size {
		page.Entries = entries[:size]
		next := fmt.Sprintf("afterId=%d", page.Entries[size-1].ID)
		page.Next = &next
	}
	return page, nil
}
