package queue

import (
	"slices"
	"time"
)

// TrackType is the kind of media a track carries.
type TrackType string

const (
	TrackAudio TrackType = "Audio"
	TrackVideo TrackType = "Video"
)

// Track is the playable part of a queue entry.
type Track struct {
	ID           int64
	Name         string
	Type         TrackType
	Duration     time.Duration
	SourceFileID int64 // media reference handed to the player
	SongID       int64 // 0 if the track has no parent song
	ReleaseID    int64 // 0 if unknown
}

// Artist is an artist attribution.
type Artist struct {
	ID   int64
	Name string
	Slug string
}

// Entry is one playable unit of the queue.
//
// ID is the identifier of the resource the entry was built from (a song, a
// track or a playlist entry). It is the pagination key used as afterId when
// the queue is backed by a remote query, so it is not necessarily the track ID.
//
// Entries are values: once placed in a queue they are never modified.
type Entry struct {
	ID        int64
	Track     Track
	Artist    Artist
	Featuring []Artist // nil until featured artists are loaded
}

// NewEntry builds an entry, copying featuring so the caller keeps no alias.
// A nil featuring slice is kept nil ("not loaded").
func NewEntry(id int64, track Track, artist Artist, featuring []Artist) Entry {
	return Entry{
		ID:        id,
		Track:     track,
		Artist:    artist,
		Featuring: slices.Clone(featuring),
	}
}

// FeaturingLoaded reports whether the featured artists are known.
// An entry with no featured artists and loaded relations has an empty,
// non-nil Featuring slice.
func (e Entry) FeaturingLoaded() bool {
	return e.Featuring != nil
}

// IDs returns the resource identifiers of entries, in order.
func IDs(entries []Entry) []int64 {
	ids := make([]int64, len(entries))
	for i := range entries {
		ids[i] = entries[i].ID
	}
	return ids
}
