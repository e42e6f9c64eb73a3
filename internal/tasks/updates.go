package tasks

import (
	"fmt"

	"github.com/desertthunder/scsync/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	ListCollection Phase = iota
	ScanLocal
	Reconcile
	WriteArtifacts
	InspectTrack
	FetchTrack
	RecordTrack
	PaceTrack
)

func (p Phase) String() string {
	switch p {
	case ListCollection:
		return "list_collection"
	case ScanLocal:
		return "scan_local"
	case Reconcile:
		return "reconcile"
	case WriteArtifacts:
		return "write_artifacts"
	case InspectTrack:
		return "inspect_track"
	case FetchTrack:
		return "fetch_track"
	case RecordTrack:
		return "record_track"
	case PaceTrack:
		return "pace_track"
	default:
		return ""
	}
}

// sendProgress sends a progress update through the channel without blocking.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

func listingUpdate(url string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ListCollection,
		Message: fmt.Sprintf("Listing collection %s...", url),
	}
}

func listedUpdate(provider string, tracks []models.Track) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ListCollection,
		Step:    len(tracks),
		Total:   len(tracks),
		Message: fmt.Sprintf("Found %d tracks on %s", len(tracks), provider),
		Data:    tracks,
	}
}

func scanningUpdate(folder string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ScanLocal,
		Message: fmt.Sprintf("Scanning %s for MP3 files...", folder),
	}
}

func scannedUpdate(count, skipped int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ScanLocal,
		Step:    count,
		Total:   count,
		Message: fmt.Sprintf("Read %d local files (%d without usable artist/title tags)", count, skipped),
	}
}

func reconciledUpdate(matches []models.MatchResult, missing int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Reconcile,
		Step:    len(matches) - missing,
		Total:   len(matches),
		Message: fmt.Sprintf("Matched %d of %d tracks, %d missing", len(matches)-missing, len(matches), missing),
		Data:    matches,
	}
}

func artifactUpdate(path string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WriteArtifacts,
		Message: fmt.Sprintf("Wrote %s", path),
		Data:    path,
	}
}

func inspectUpdate(step, total int, t models.Track) ProgressUpdate {
	return ProgressUpdate{
		Phase:   InspectTrack,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s", step, total, t.Display()),
		Data:    t,
	}
}

func fetchUpdate(step, total int, t models.Track) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchTrack,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Downloading %s...", step, total, t.Display()),
		Data:    t,
	}
}

func recordUpdate(step, total int, rec models.AcquisitionRecord) ProgressUpdate {
	var msg string
	switch {
	case rec.Decision.Kind == models.DecisionSkippedNative:
		msg = fmt.Sprintf("[%d/%d] ● %s: native download available", step, total, rec.TrackTitle)
	case rec.FetchSucceeded():
		msg = fmt.Sprintf("[%d/%d] ✓ %s", step, total, rec.TrackTitle)
	default:
		msg = fmt.Sprintf("[%d/%d] ✗ %s: %s", step, total, rec.TrackTitle, rec.FetchError)
	}
	return ProgressUpdate{
		Phase:   RecordTrack,
		Step:    step,
		Total:   total,
		Message: msg,
		Data:    rec,
	}
}

func paceUpdate(step, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   PaceTrack,
		Step:    step,
		Total:   total,
		Message: "Pausing after track...",
	}
}
