package remote

import (
	"time"

	"github.com/llehouerou/meeloq/internal/queue"
)

// PaginationMetadata is the metadata block of a paginated response.
type PaginationMetadata struct {
	Count    int     `json:"count"`
	This     string  `json:"this"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Page     *int    `json:"page"`
}

// PaginatedResponse is the envelope of every list endpoint.
type PaginatedResponse[T any] struct {
	Items    []T                `json:"items"`
	Metadata PaginationMetadata `json:"metadata"`
}

// Artist is an artist resource.
type Artist struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Track is a track resource.
type Track struct {
	ID           int64  `json:"id"`
	SongID       *int64 `json:"songId"`
	VideoID      *int64 `json:"videoId"`
	ReleaseID    *int64 `json:"releaseId"`
	Name         string `json:"name"`
	Type         string `json:"type"`
	Duration     *int64 `json:"duration"` // seconds
	SourceFileID int64  `json:"sourceFileId"`

	// Relations, present when requested with "with".
	Song *Song `json:"song,omitempty"`
}

// Song is a song resource with the relations the queue needs.
type Song struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Slug     string `json:"slug"`
	ArtistID int64  `json:"artistId"`
	Type     string `json:"type"`

	Artist    *Artist  `json:"artist,omitempty"`
	Featuring []Artist `json:"featuring,omitempty"`
	Master    *Track   `json:"master,omitempty"`
}

// PlaylistEntry is a song as it appears in a playlist.
type PlaylistEntry struct {
	Song
	EntryID int64 `json:"entryId"`
}

func (t Track) toQueue() queue.Track {
	qt := queue.Track{
		ID:           t.ID,
		Name:         t.Name,
		Type:         queue.TrackType(t.Type),
		SourceFileID: t.SourceFileID,
	}
	if t.Duration != nil {
		qt.Duration = time.Duration(*t.Duration) * time.Second
	}
	if t.SongID != nil {
		qt.SongID = *t.SongID
	}
	if t.ReleaseID != nil {
		qt.ReleaseID = *t.ReleaseID
	}
	return qt
}

func (a *Artist) toQueue(fallbackID int64) queue.Artist {
	if a == nil {
		return queue.Artist{ID: fallbackID}
	}
	return queue.Artist{ID: a.ID, Name: a.Name, Slug: a.Slug}
}

func featuring(artists []Artist, loaded bool) []queue.Artist {
	if !loaded {
		return nil
	}
	out := make([]queue.Artist, len(artists))
	for i := range artists {
		out[i] = artists[i].toQueue(0)
	}
	return out
}

// songEntry maps a song to a queue entry keyed by song id. The master track
// is what gets played; a song without one is kept with a track carrying only
// its name so the page stays contiguous for pagination.
func songEntry(s Song) queue.Entry {
	return queue.NewEntry(s.ID, s.playable(), s.Artist.toQueue(s.ArtistID), featuring(s.Featuring, true))
}

// playlistEntry maps a playlist entry to a queue entry keyed by entry id.
func playlistEntry(e PlaylistEntry) queue.Entry {
	return queue.NewEntry(e.EntryID, e.playable(), e.Artist.toQueue(e.ArtistID), featuring(e.Featuring, true))
}

// trackEntry maps a track to a queue entry keyed by track id.
func trackEntry(t Track) queue.Entry {
	var artist queue.Artist
	var feat []queue.Artist
	if t.Song != nil {
		artist = t.Song.Artist.toQueue(t.Song.ArtistID)
		feat = featuring(t.Song.Featuring, t.Song.Featuring != nil)
	}
	return queue.NewEntry(t.ID, t.toQueue(), artist, feat)
}

func (s Song) playable() queue.Track {
	if s.Master != nil {
		return s.Master.toQueue()
	}
	return queue.Track{Name: s.Name, Type: queue.TrackAudio, SongID: s.ID}
}
