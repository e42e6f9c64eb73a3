package models

import "strings"

// OutcomeStatus tags the result of a collaborator call.
type OutcomeStatus int

const (
	OutcomeOK OutcomeStatus = iota
	OutcomeUnavailable
	OutcomeFailed
)

func (s OutcomeStatus) String() string {
	switch s {
	case OutcomeOK:
		return "ok"
	case OutcomeUnavailable:
		return "unavailable"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Outcome is the value every fallible collaborator call returns in place of a raised error.
type Outcome struct {
	Status OutcomeStatus
	Reason string // Set for OutcomeFailed, optional otherwise
}

// OK builds a successful [Outcome].
func OK() Outcome { return Outcome{Status: OutcomeOK} }

// Unavailable builds an [Outcome] for a recognised "nothing there" answer.
func Unavailable(reason string) Outcome {
	return Outcome{Status: OutcomeUnavailable, Reason: reason}
}

// Failed builds a failed [Outcome] carrying the collaborator's message.
func Failed(reason string) Outcome {
	return Outcome{Status: OutcomeFailed, Reason: reason}
}

// IsOK reports whether the call succeeded.
func (o Outcome) IsOK() bool { return o.Status == OutcomeOK }

// InfoResult is returned by a per-track detail lookup.
type InfoResult struct {
	Outcome
	Info TrackInfo
}

// LinkResult is returned by the external purchase-link probe.
type LinkResult struct {
	Outcome
	Link string
}

// DecisionKind is the irrevocable per-track acquisition choice.
type DecisionKind int

const (
	DecisionNone            DecisionKind = iota // No decision reached (lookup failed)
	DecisionSkippedNative                       // Native download available, fetch not invoked
	DecisionFetchedFallback                     // Generic fetch attempted
)

func (k DecisionKind) String() string {
	switch k {
	case DecisionSkippedNative:
		return "skipped_native_available"
	case DecisionFetchedFallback:
		return "fetched_fallback"
	default:
		return "none"
	}
}

// Decision pairs the decision kind with the fetch result when one was attempted.
type Decision struct {
	Kind    DecisionKind
	Success bool
	Error   string
}

// FetchError markers for failures that happen before a fetch decision.
const (
	MarkerPlaylistError   = "playlist_error: "
	MarkerInfoError       = "info_error: "
	MarkerUnexpectedError = "unexpected_error: "
)

// HasFailureMarker reports whether msg starts with one of the pre-decision failure markers.
func HasFailureMarker(msg string) bool {
	for _, m := range []string{MarkerPlaylistError, MarkerInfoError, MarkerUnexpectedError} {
		if strings.HasPrefix(msg, m) {
			return true
		}
	}
	return false
}

// AcquisitionRecord is one row of the acquisition log.
//
// ExternalLinkAvailable and ExternalLink are informational and never influence Decision.
type AcquisitionRecord struct {
	TrackTitle              string
	TrackURL                string
	NativeDownloadAvailable bool
	ExternalLinkAvailable   bool
	ExternalLink            string
	FetchAttempted          bool
	FetchError              string
	Decision                Decision
}

// FetchSucceeded reports whether a fetch was attempted and returned without error.
func (r AcquisitionRecord) FetchSucceeded() bool {
	return r.FetchAttempted && r.FetchError == ""
}
