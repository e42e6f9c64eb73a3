package reconcile

import (
	"sort"
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
	"github.com/desertthunder/scsync/internal/models"
)

// TieBreak selects among several qualifying local candidates.
type TieBreak string

const (
	// TieBreakSimilarity keeps the candidate whose "artist title" is closest to the remote
	// track's by Jaro-Winkler; equal scores fall back to the lowest position.
	TieBreakSimilarity TieBreak = "similarity"
	// TieBreakLowest keeps the candidate with the lowest position in the local slice.
	TieBreakLowest TieBreak = "lowest"
)

// Options configures a [Reconciler].
type Options struct {
	TieBreak TieBreak
}

// Reconciler classifies remote tracks against a local [Index].
type Reconciler struct {
	tieBreak TieBreak
	metric   *metrics.JaroWinkler
}

// NewReconciler creates a Reconciler. An empty tie break defaults to [TieBreakSimilarity].
func NewReconciler(opts Options) *Reconciler {
	tb := opts.TieBreak
	if tb == "" {
		tb = TieBreakSimilarity
	}
	return &Reconciler{tieBreak: tb, metric: metrics.NewJaroWinkler()}
}

// Reconcile returns exactly one [models.MatchResult] per remote track, in input order, and the
// missing subset (unmatchable and unmatched tracks, in input order).
func (r *Reconciler) Reconcile(remote []models.Track, idx *Index) ([]models.MatchResult, []models.Track) {
	results := make([]models.MatchResult, 0, len(remote))
	var missing []models.Track

	for _, t := range remote {
		res := r.Classify(t, idx)
		results = append(results, res)
		if !res.Method.Matched() {
			missing = append(missing, t)
		}
	}

	return results, missing
}

// Classify returns the [models.MatchResult] for a single remote track.
func (r *Reconciler) Classify(t models.Track, idx *Index) models.MatchResult {
	if link, ok := NormalizeIdentityLink(t.SourceURL); ok {
		if hits := idx.lookupURL(link); len(hits) > 0 {
			return matched(models.MatchURL, t, idx, hits[0])
		}
	}

	artistTokens := Tokenize(t.Artist)
	titleTokens := Tokenize(t.Title)
	if artistTokens.Empty() || titleTokens.Empty() {
		return unmatched(models.MatchUnmatchable, t)
	}

	candidates := idx.candidates(artistTokens, titleTokens)
	if len(candidates) == 0 {
		return unmatched(models.MatchMissing, t)
	}

	return matched(models.MatchTokens, t, idx, r.pick(t, idx, candidates))
}

// pick chooses one member of candidates, which is sorted ascending and non-empty.
func (r *Reconciler) pick(t models.Track, idx *Index, candidates []int) int {
	if r.tieBreak == TieBreakLowest || len(candidates) == 1 {
		return candidates[0]
	}

	query := matchKey(t)
	best, bestScore := candidates[0], -1.0
	for _, i := range candidates {
		score := strutil.Similarity(query, matchKey(idx.Track(i)), r.metric)
		if score > bestScore {
			best, bestScore = i, score
		}
	}
	return best
}

func matchKey(t models.Track) string {
	return fold(strings.TrimSpace(t.Artist + " " + t.Title))
}

func matched(method models.MatchMethod, t models.Track, idx *Index, i int) models.MatchResult {
	local := idx.Track(i)
	return models.MatchResult{Method: method, Remote: t, LocalIndex: i, Local: &local}
}

func unmatched(method models.MatchMethod, t models.Track) models.MatchResult {
	return models.MatchResult{Method: method, Remote: t, LocalIndex: -1}
}

func sortedPositions(set map[int]struct{}) []int {
	if len(set) == 0 {
		return nil
	}
	out := make([]int, 0, len(set))
	for i := range set {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}
