// package models defines the data model for collection reconciliation and track acquisition
package models

import (
	"fmt"
	"strconv"
)

// Track is a single track record from either the remote collection or the local library.
//
// Empty strings mean "absent". Duration is nil when unknown.
type Track struct {
	Artist    string
	Title     string
	SourceURL string   // Remote identity link, or origin link recovered from local tags
	StableID  string   // Provider track id (remote only)
	Duration  *float64 // Seconds
	LocalPath string   // Present only for local tracks
}

// Display renders a track for human-readable listings.
func (t Track) Display() string {
	switch {
	case t.Artist != "" && t.Title != "":
		return fmt.Sprintf("%s - %s", t.Artist, t.Title)
	case t.Title != "":
		return t.Title
	case t.SourceURL != "":
		return t.SourceURL
	default:
		return "<unknown track>"
	}
}

// DurationString formats the duration in seconds using the shortest representation, or "" when absent.
func (t Track) DurationString() string {
	if t.Duration == nil {
		return ""
	}
	return strconv.FormatFloat(*t.Duration, 'f', -1, 64)
}

// Seconds returns a pointer to s, for building tracks with a known duration.
func Seconds(s float64) *float64 {
	return &s
}

// TrackInfo is the full detail record for a remote track.
type TrackInfo struct {
	Track          Track
	NativeDownload bool // First-party download reported by the provider
}

// ListOptions controls how much metadata a collection listing resolves.
type ListOptions struct {
	// Flat skips per-entry resolution. Flat entries may lack artist and duration.
	Flat bool
}

// MatchMethod names how a remote track was classified.
type MatchMethod string

const (
	MatchURL         MatchMethod = "url"
	MatchTokens      MatchMethod = "tokens"
	MatchUnmatchable MatchMethod = "unmatchable"
	MatchMissing     MatchMethod = "missing"
)

// Matched reports whether the method found a local candidate.
func (m MatchMethod) Matched() bool {
	return m == MatchURL || m == MatchTokens
}

// MatchResult is the classification of one remote track.
type MatchResult struct {
	Method     MatchMethod
	Remote     Track
	LocalIndex int    // Index into the local arena, -1 when unmatched
	Local      *Track // Copy of the matched local track, nil when unmatched
}
