package tasks

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/scsync/internal/models"
	"github.com/desertthunder/scsync/internal/reconcile"
	"github.com/desertthunder/scsync/internal/services"
	"github.com/desertthunder/scsync/internal/shared"
)

// State is a step of the per-track acquisition state machine.
type State int

const (
	StateInit State = iota
	StateInspect
	StateSkipNative
	StateFetch
	StateTerminal
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateInspect:
		return "inspect"
	case StateSkipNative:
		return "skip_native"
	case StateFetch:
		return "fetch"
	case StateTerminal:
		return "terminal"
	default:
		return "unknown"
	}
}

// RecordSink receives acquisition records in processing order.
//
// [formatter.AcquisitionLog] is the production sink.
type RecordSink interface {
	Append(rec models.AcquisitionRecord) error
}

// AcquireOpts selects the collection and where results go.
type AcquireOpts struct {
	CollectionURL string
	LocalFolder   string // Optional. When empty every listed track is a candidate.
	OutputDir     string // Fetch destination
}

// AcquirePlan is the outcome of listing and reconciling, before any track is processed.
type AcquirePlan struct {
	CollectionURL string
	Provider      string
	Remote        []models.Track
	Local         []models.Track
	Matches       []models.MatchResult // Nil when no local folder was given
	Candidates    []models.Track       // Tracks to acquire, in collection order
	LocalSkipped  int                  // Local files without usable artist/title tags
}

// AcquireResult summarizes an execution.
type AcquireResult struct {
	Records      []models.AcquisitionRecord
	Native       int
	Fetched      int
	FetchFailed  int
	Errors       int
	SkippedStubs int // Candidates without a url, left out of the log
}

func (r *AcquireResult) tally(rec models.AcquisitionRecord) {
	r.Records = append(r.Records, rec)
	switch rec.Decision.Kind {
	case models.DecisionSkippedNative:
		r.Native++
	case models.DecisionFetchedFallback:
		if rec.Decision.Success {
			r.Fetched++
		} else {
			r.FetchFailed++
		}
	default:
		r.Errors++
	}
}

// AcquireDeps are the collaborators of an [AcquireEngine]. Scanner and Reconciler are only
// needed when a local folder is given.
type AcquireDeps struct {
	Provider   services.Provider
	Fetcher    services.Fetcher
	Scanner    services.Scanner
	Reconciler *reconcile.Reconciler
	Pacer      Pacer
	Logger     *log.Logger
}

// AcquireEngine decides, per missing track, between the native download and a generic fetch.
//
// Tracks are processed strictly one at a time. A failure on one track is recorded and never
// aborts the batch.
type AcquireEngine struct {
	provider   services.Provider
	fetcher    services.Fetcher
	scanner    services.Scanner
	reconciler *reconcile.Reconciler
	pacer      Pacer
	logger     *log.Logger
}

// NewAcquireEngine creates an engine. A nil pacer never waits and a nil reconciler uses the
// default options.
func NewAcquireEngine(deps AcquireDeps) *AcquireEngine {
	e := &AcquireEngine{
		provider:   deps.Provider,
		fetcher:    deps.Fetcher,
		scanner:    deps.Scanner,
		reconciler: deps.Reconciler,
		pacer:      deps.Pacer,
		logger:     deps.Logger,
	}
	if e.reconciler == nil {
		e.reconciler = reconcile.NewReconciler(reconcile.Options{})
	}
	if e.pacer == nil {
		e.pacer = noPacer{}
	}
	if e.logger == nil {
		e.logger = log.Default()
	}
	return e
}

type noPacer struct{}

func (noPacer) Wait(ctx context.Context) error { return ctx.Err() }

// Run plans and executes an acquisition.
func (e *AcquireEngine) Run(ctx context.Context, progress chan<- ProgressUpdate, sink RecordSink, opts AcquireOpts) (*AcquireResult, error) {
	plan, err := e.Plan(ctx, progress, sink, opts)
	if err != nil {
		return nil, err
	}
	return e.Execute(ctx, progress, sink, plan, opts.OutputDir)
}

// Plan lists the collection and, when a local folder is given, reconciles it to find the
// missing tracks.
//
// A listing failure appends a single playlist_error record to sink and returns an error
// wrapping [shared.ErrListing].
func (e *AcquireEngine) Plan(ctx context.Context, progress chan<- ProgressUpdate, sink RecordSink, opts AcquireOpts) (*AcquirePlan, error) {
	plan := &AcquirePlan{CollectionURL: opts.CollectionURL, Provider: e.provider.Name()}
	flat := opts.LocalFolder == ""

	sendProgress(progress, listingUpdate(opts.CollectionURL))
	remote, err := e.provider.ListCollection(ctx, opts.CollectionURL, models.ListOptions{Flat: flat})
	if err != nil {
		e.logger.Error("listing failed", "url", opts.CollectionURL, "error", err)
		rec := models.AcquisitionRecord{
			TrackURL:   opts.CollectionURL,
			FetchError: models.MarkerPlaylistError + listingReason(err),
		}
		if serr := sink.Append(rec); serr != nil {
			return nil, errors.Join(wrapListing(err), serr)
		}
		return nil, wrapListing(err)
	}
	plan.Remote = remote
	sendProgress(progress, listedUpdate(e.provider.Name(), remote))
	e.logger.Info("listed collection", "url", opts.CollectionURL, "tracks", len(remote), "flat", flat)

	if flat {
		plan.Candidates = remote
		return plan, nil
	}

	snap, err := reconcileLocal(ctx, progress, e.scanner, e.reconciler, e.logger, opts.LocalFolder, remote)
	if err != nil {
		return nil, err
	}
	plan.Local = snap.local
	plan.Matches = snap.matches
	plan.Candidates = snap.missing
	plan.LocalSkipped = snap.skipped

	return plan, nil
}

// Execute runs the state machine over the plan's candidates, appending one record per track.
//
// The pacer runs after every processed track. Execute stops early only when ctx is
// cancelled or sink fails.
func (e *AcquireEngine) Execute(ctx context.Context, progress chan<- ProgressUpdate, sink RecordSink, plan *AcquirePlan, outputDir string) (*AcquireResult, error) {
	result := &AcquireResult{}

	queue := make([]models.Track, 0, len(plan.Candidates))
	for _, t := range plan.Candidates {
		if t.SourceURL == "" {
			e.logger.Debug("skipping entry without url", "title", t.Title)
			result.SkippedStubs++
			continue
		}
		queue = append(queue, t)
	}

	total := len(queue)
	for i, t := range queue {
		step := i + 1
		sendProgress(progress, inspectUpdate(step, total, t))

		rec := e.processTrack(ctx, progress, step, total, t, outputDir)
		if err := sink.Append(rec); err != nil {
			return result, fmt.Errorf("failed to record %s: %w", t.SourceURL, err)
		}
		result.tally(rec)
		sendProgress(progress, recordUpdate(step, total, rec))

		sendProgress(progress, paceUpdate(step, total))
		if err := e.pacer.Wait(ctx); err != nil {
			return result, err
		}
	}

	e.logger.Info("acquisition finished",
		"tracks", total, "native", result.Native, "fetched", result.Fetched,
		"failed", result.FetchFailed, "errors", result.Errors)
	return result, nil
}

// processTrack drives one track from Init to Terminal. Panics are recovered into an
// unexpected_error record carrying only the title and url.
func (e *AcquireEngine) processTrack(ctx context.Context, progress chan<- ProgressUpdate, step, total int, t models.Track, outputDir string) (rec models.AcquisitionRecord) {
	rec = models.AcquisitionRecord{TrackTitle: t.Title, TrackURL: t.SourceURL}
	state := StateInit
	logger := e.logger.With("url", t.SourceURL)

	advance := func(next State) {
		logger.Debug("transition", "from", state, "to", next)
		state = next
	}

	defer func() {
		if r := recover(); r != nil {
			logger.Error("unexpected failure", "state", state, "panic", r)
			rec = models.AcquisitionRecord{
				TrackTitle: rec.TrackTitle,
				TrackURL:   rec.TrackURL,
				FetchError: fmt.Sprintf("%s%v", models.MarkerUnexpectedError, r),
			}
			rec.Decision = models.Decision{Kind: models.DecisionNone, Error: rec.FetchError}
		}
	}()

	advance(StateInspect)
	info := e.provider.FetchTrackInfo(ctx, t)
	switch info.Status {
	case models.OutcomeFailed:
		rec.FetchError = models.MarkerInfoError + info.Reason
	case models.OutcomeUnavailable:
		rec.FetchError = models.MarkerInfoError + "unavailable"
	}
	if !info.IsOK() {
		logger.Warn("track info unavailable", "status", info.Status, "reason", info.Reason)
		rec.Decision = models.Decision{Kind: models.DecisionNone, Error: rec.FetchError}
		advance(StateTerminal)
		return rec
	}

	if title := info.Info.Track.Title; title != "" {
		rec.TrackTitle = title
	}
	rec.NativeDownloadAvailable = info.Info.NativeDownload

	if link := e.provider.ProbeExternalLink(ctx, t.SourceURL); link.IsOK() && link.Link != "" {
		rec.ExternalLinkAvailable = true
		rec.ExternalLink = link.Link
	}

	if rec.NativeDownloadAvailable {
		advance(StateSkipNative)
		rec.Decision = models.Decision{Kind: models.DecisionSkippedNative, Success: true}
		advance(StateTerminal)
		return rec
	}

	advance(StateFetch)
	sendProgress(progress, fetchUpdate(step, total, t))
	out := e.fetcher.Fetch(ctx, t.SourceURL, outputDir)
	rec.FetchAttempted = true
	if !out.IsOK() {
		rec.FetchError = out.Reason
		if rec.FetchError == "" {
			rec.FetchError = out.Status.String()
		}
		logger.Warn("fetch failed", "error", rec.FetchError)
	}
	rec.Decision = models.Decision{Kind: models.DecisionFetchedFallback, Success: out.IsOK(), Error: rec.FetchError}
	advance(StateTerminal)
	return rec
}

// listingReason strips the sentinel prefix so the log carries the provider's message.
func listingReason(err error) string {
	return strings.TrimPrefix(err.Error(), shared.ErrListing.Error()+": ")
}

func wrapListing(err error) error {
	if errors.Is(err, shared.ErrListing) {
		return err
	}
	return fmt.Errorf("%w: %v", shared.ErrListing, err)
}
