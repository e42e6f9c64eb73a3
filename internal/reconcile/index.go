package reconcile

import (
	"github.com/desertthunder/scsync/internal/models"
)

// Index holds inverted indices over an arena of local tracks.
//
// Posting lists hold positions into the arena in input order. The index is read-only once built.
type Index struct {
	tracks  []models.Track
	artist  map[string][]int
	title   map[string][]int
	url     map[string][]int
	skipped int
}

// BuildIndex indexes local tracks by artist token, title token and normalized origin link.
//
// A track missing artist or title tokens is counted as skipped and left out of the token
// indices, but is still indexed by its origin link when it has one.
func BuildIndex(local []models.Track) *Index {
	idx := &Index{
		tracks: local,
		artist: make(map[string][]int),
		title:  make(map[string][]int),
		url:    make(map[string][]int),
	}

	for i, t := range local {
		if link, ok := NormalizeIdentityLink(t.SourceURL); ok {
			idx.url[link] = append(idx.url[link], i)
		}

		artistTokens := Tokenize(t.Artist)
		titleTokens := Tokenize(t.Title)
		if artistTokens.Empty() || titleTokens.Empty() {
			idx.skipped++
			continue
		}
		for tok := range artistTokens {
			idx.artist[tok] = append(idx.artist[tok], i)
		}
		for tok := range titleTokens {
			idx.title[tok] = append(idx.title[tok], i)
		}
	}

	return idx
}

// Skipped returns how many local tracks lacked artist or title tokens.
func (idx *Index) Skipped() int { return idx.skipped }

// Len returns the number of local tracks in the arena.
func (idx *Index) Len() int { return len(idx.tracks) }

// Track returns the local track at position i.
func (idx *Index) Track(i int) models.Track { return idx.tracks[i] }

// Tracks returns the arena.
func (idx *Index) Tracks() []models.Track { return idx.tracks }

// lookupURL returns the arena positions whose origin link normalizes to link.
func (idx *Index) lookupURL(link string) []int {
	return idx.url[link]
}

// candidates returns the sorted positions sharing at least one artist token and at least one
// title token with the query.
func (idx *Index) candidates(artistTokens, titleTokens TokenSet) []int {
	byArtist := make(map[int]struct{})
	for tok := range artistTokens {
		for _, i := range idx.artist[tok] {
			byArtist[i] = struct{}{}
		}
	}
	if len(byArtist) == 0 {
		return nil
	}

	seen := make(map[int]struct{})
	for tok := range titleTokens {
		for _, i := range idx.title[tok] {
			if _, ok := byArtist[i]; ok {
				seen[i] = struct{}{}
			}
		}
	}

	return sortedPositions(seen)
}
