package tasks

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/desertthunder/scsync/internal/formatter"
	"github.com/desertthunder/scsync/internal/models"
	"github.com/desertthunder/scsync/internal/shared"
	tu "github.com/desertthunder/scsync/internal/testing"
)

const (
	urlA = "https://soundcloud.com/artist-a/track-a"
	urlB = "https://soundcloud.com/artist-b/track-b"
	urlC = "https://soundcloud.com/artist-c/track-c"
)

func remoteTracks() []models.Track {
	return []models.Track{
		{Artist: "Floating Points", Title: "Silhouettes", SourceURL: urlA, StableID: "1"},
		{Artist: "Four Tet", Title: "Baby", SourceURL: urlB, StableID: "2"},
		{Artist: "Bonobo", Title: "Kerala", SourceURL: urlC, StableID: "3"},
	}
}

type acquireFixture struct {
	provider *tu.MockProvider
	fetcher  *tu.MockFetcher
	scanner  *tu.MockScanner
	pacer    *tu.MockPacer
	sink     *tu.MockSink
}

func newFixture(tracks []models.Track) *acquireFixture {
	return &acquireFixture{
		provider: &tu.MockProvider{Tracks: tracks},
		fetcher:  &tu.MockFetcher{},
		scanner:  &tu.MockScanner{},
		pacer:    &tu.MockPacer{},
		sink:     &tu.MockSink{},
	}
}

func (f *acquireFixture) engine() *AcquireEngine {
	return NewAcquireEngine(AcquireDeps{
		Provider: f.provider,
		Fetcher:  f.fetcher,
		Scanner:  f.scanner,
		Pacer:    f.pacer,
	})
}

func (f *acquireFixture) run(t *testing.T, opts AcquireOpts) (*AcquireResult, error) {
	t.Helper()
	if opts.CollectionURL == "" {
		opts.CollectionURL = "https://soundcloud.com/someone/likes"
	}
	return f.engine().Run(context.Background(), nil, f.sink, opts)
}

func TestAcquireEngine_Run(t *testing.T) {
	t.Run("fetch failure does not stop the batch", func(t *testing.T) {
		f := newFixture(remoteTracks()[:2])
		f.fetcher.Results = map[string]models.Outcome{urlA: models.Failed("HTTP Error 403: Forbidden")}

		result, err := f.run(t, AcquireOpts{OutputDir: "out"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(f.sink.Records) != 2 {
			t.Fatalf("expected 2 records, got %d", len(f.sink.Records))
		}
		a, b := f.sink.Records[0], f.sink.Records[1]
		if !a.FetchAttempted || a.FetchError != "HTTP Error 403: Forbidden" {
			t.Errorf("unexpected record for A: %+v", a)
		}
		if a.Decision.Kind != models.DecisionFetchedFallback || a.Decision.Success {
			t.Errorf("expected failed fallback for A, got %+v", a.Decision)
		}
		if !b.FetchSucceeded() || !b.Decision.Success {
			t.Errorf("expected successful fetch for B, got %+v", b)
		}
		if result.Fetched != 1 || result.FetchFailed != 1 {
			t.Errorf("expected 1 fetched and 1 failed, got %d and %d", result.Fetched, result.FetchFailed)
		}
		if f.pacer.Waits != 2 {
			t.Errorf("expected a wait after each of 2 tracks, got %d", f.pacer.Waits)
		}
		for _, call := range f.fetcher.Calls {
			if call.Dir != "out" {
				t.Errorf("expected fetch into out, got %s", call.Dir)
			}
		}
	})

	t.Run("native download wins over purchase link", func(t *testing.T) {
		f := newFixture(remoteTracks()[:1])
		tr := remoteTracks()[0]
		f.provider.Infos = map[string]models.InfoResult{
			urlA: {Outcome: models.OK(), Info: models.TrackInfo{Track: tr, NativeDownload: true}},
		}
		f.provider.Links = map[string]models.LinkResult{
			urlA: {Outcome: models.OK(), Link: "https://artist.bandcamp.com/track/a"},
		}

		result, err := f.run(t, AcquireOpts{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(f.fetcher.Calls) != 0 {
			t.Errorf("fetcher should not be called, got %d calls", len(f.fetcher.Calls))
		}
		rec := f.sink.Records[0]
		if rec.Decision.Kind != models.DecisionSkippedNative || !rec.Decision.Success {
			t.Errorf("expected skipped native, got %+v", rec.Decision)
		}
		if !rec.NativeDownloadAvailable || rec.FetchAttempted {
			t.Errorf("unexpected flags: %+v", rec)
		}
		if !rec.ExternalLinkAvailable || rec.ExternalLink != "https://artist.bandcamp.com/track/a" {
			t.Errorf("expected purchase link recorded, got %+v", rec)
		}
		if result.Native != 1 {
			t.Errorf("expected 1 native, got %d", result.Native)
		}
	})

	t.Run("purchase link alone still fetches", func(t *testing.T) {
		f := newFixture(remoteTracks()[:1])
		f.provider.Links = map[string]models.LinkResult{
			urlA: {Outcome: models.OK(), Link: "https://shop.example.com/a"},
		}

		if _, err := f.run(t, AcquireOpts{}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(f.fetcher.Calls) != 1 {
			t.Fatalf("expected exactly one fetch, got %d", len(f.fetcher.Calls))
		}
		rec := f.sink.Records[0]
		if !rec.ExternalLinkAvailable || !rec.FetchSucceeded() {
			t.Errorf("unexpected record: %+v", rec)
		}
	})

	t.Run("probe failure is not recorded as a link", func(t *testing.T) {
		f := newFixture(remoteTracks()[:1])
		f.provider.Links = map[string]models.LinkResult{urlA: {Outcome: models.Failed("HTTP 500")}}

		if _, err := f.run(t, AcquireOpts{}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if rec := f.sink.Records[0]; rec.ExternalLinkAvailable || rec.ExternalLink != "" {
			t.Errorf("expected no link, got %+v", rec)
		}
	})

	t.Run("info title replaces listing title", func(t *testing.T) {
		f := newFixture([]models.Track{{SourceURL: urlA, Title: "track-a"}})
		f.provider.Infos = map[string]models.InfoResult{
			urlA: {Outcome: models.OK(), Info: models.TrackInfo{Track: models.Track{Title: "Track A (Extended)"}}},
		}

		if _, err := f.run(t, AcquireOpts{}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := f.sink.Records[0].TrackTitle; got != "Track A (Extended)" {
			t.Errorf("expected info title, got %q", got)
		}
	})
}

func TestAcquireEngine_InfoErrors(t *testing.T) {
	tests := []struct {
		name    string
		info    models.InfoResult
		wantErr string
	}{
		{
			name:    "failed lookup",
			info:    models.InfoResult{Outcome: models.Failed("HTTP Error 404: Not Found")},
			wantErr: "info_error: HTTP Error 404: Not Found",
		},
		{
			name:    "unavailable lookup",
			info:    models.InfoResult{Outcome: models.Unavailable("")},
			wantErr: "info_error: unavailable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(remoteTracks()[:2])
			f.provider.Infos = map[string]models.InfoResult{urlA: tt.info}

			result, err := f.run(t, AcquireOpts{})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			rec := f.sink.Records[0]
			if rec.FetchError != tt.wantErr {
				t.Errorf("expected %q, got %q", tt.wantErr, rec.FetchError)
			}
			if rec.FetchAttempted || rec.Decision.Kind != models.DecisionNone {
				t.Errorf("expected no decision, got %+v", rec)
			}
			if rec.TrackURL != urlA || rec.TrackTitle != "Silhouettes" {
				t.Errorf("expected listing identity, got %+v", rec)
			}
			if len(f.fetcher.Calls) != 1 || f.fetcher.Calls[0].URL != urlB {
				t.Errorf("expected only B fetched, got %+v", f.fetcher.Calls)
			}
			if result.Errors != 1 || result.Fetched != 1 {
				t.Errorf("unexpected tallies: %+v", result)
			}
		})
	}
}

func TestAcquireEngine_RecoversPanics(t *testing.T) {
	f := newFixture(remoteTracks()[:2])
	f.provider.PanicOn = urlA

	result, err := f.run(t, AcquireOpts{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(f.sink.Records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(f.sink.Records))
	}
	rec := f.sink.Records[0]
	if rec.FetchError != "unexpected_error: provider exploded" {
		t.Errorf("unexpected error column: %q", rec.FetchError)
	}
	if rec.Decision.Kind != models.DecisionNone {
		t.Errorf("expected no decision, got %v", rec.Decision.Kind)
	}
	if !f.sink.Records[1].FetchSucceeded() {
		t.Errorf("expected B to be fetched after the panic")
	}
	if result.Errors != 1 {
		t.Errorf("expected 1 error, got %d", result.Errors)
	}
}

func TestAcquireEngine_PanicAfterInfoLookup(t *testing.T) {
	f := newFixture(remoteTracks()[:1])
	f.provider.Infos = map[string]models.InfoResult{
		urlA: {Outcome: models.OK(), Info: models.TrackInfo{Track: remoteTracks()[0], NativeDownload: true}},
	}
	f.provider.PanicOnProbe = urlA

	path := filepath.Join(t.TempDir(), "log.csv")
	alog, err := formatter.OpenAcquisitionLog(path)
	if err != nil {
		t.Fatalf("OpenAcquisitionLog failed: %v", err)
	}
	result, err := f.engine().Run(context.Background(), nil, alog, AcquireOpts{CollectionURL: "https://soundcloud.com/someone/likes"})
	if cerr := alog.Close(); cerr != nil {
		t.Fatalf("Close failed: %v", cerr)
	}
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Errors != 1 || result.Native != 0 {
		t.Errorf("expected 1 error and no native, got %+v", result)
	}

	records, err := formatter.ReadAcquisitionLogFile(path)
	if err != nil {
		t.Fatalf("ReadAcquisitionLogFile failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	rec := records[0]
	if rec.NativeDownloadAvailable || rec.ExternalLinkAvailable || rec.ExternalLink != "" || rec.FetchAttempted {
		t.Errorf("expected cleared flags, got %+v", rec)
	}
	if rec.FetchError != "unexpected_error: probe exploded" {
		t.Errorf("unexpected error column: %q", rec.FetchError)
	}
	if rec.Decision.Kind != models.DecisionNone {
		t.Errorf("expected no decision on read back, got %s", rec.Decision.Kind)
	}
	if s := formatter.SummarizeLog(records); s.Native != 0 || s.Errors != 1 {
		t.Errorf("expected summary to match the run, got %+v", s)
	}
	if len(f.fetcher.Calls) != 0 {
		t.Errorf("expected no fetch, got %d", len(f.fetcher.Calls))
	}
}

func TestAcquireEngine_ListingFailure(t *testing.T) {
	tests := []struct {
		name       string
		listErr    error
		wantReason string
	}{
		{
			name:       "sentinel listing error",
			listErr:    fmt.Errorf("%w: HTTP Error 404", shared.ErrListing),
			wantReason: "playlist_error: HTTP Error 404",
		},
		{
			name:       "plain provider error",
			listErr:    errors.New("connection reset"),
			wantReason: "playlist_error: connection reset",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(nil)
			f.provider.ListErr = tt.listErr
			collection := "https://soundcloud.com/someone/sets/gone"

			_, err := f.run(t, AcquireOpts{CollectionURL: collection})
			if !errors.Is(err, shared.ErrListing) {
				t.Fatalf("expected ErrListing, got %v", err)
			}

			if len(f.sink.Records) != 1 {
				t.Fatalf("expected a single record, got %d", len(f.sink.Records))
			}
			rec := f.sink.Records[0]
			if rec.TrackURL != collection || rec.FetchError != tt.wantReason {
				t.Errorf("unexpected record: %+v", rec)
			}
			if rec.FetchAttempted || rec.NativeDownloadAvailable {
				t.Errorf("listing failure should not set flags: %+v", rec)
			}
			if len(f.provider.InfoCalls) != 0 {
				t.Errorf("no track should be inspected")
			}
		})
	}
}

func TestAcquireEngine_Pacing(t *testing.T) {
	t.Run("waits after every track", func(t *testing.T) {
		f := newFixture(remoteTracks())
		f.fetcher.Results = map[string]models.Outcome{urlB: models.Failed("boom")}

		if _, err := f.run(t, AcquireOpts{}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if f.pacer.Waits != 3 {
			t.Errorf("expected 3 waits for 3 tracks, got %d", f.pacer.Waits)
		}
	})

	t.Run("single track waits once", func(t *testing.T) {
		f := newFixture(remoteTracks()[:1])

		if _, err := f.run(t, AcquireOpts{}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if f.pacer.Waits != 1 {
			t.Errorf("expected 1 wait, got %d", f.pacer.Waits)
		}
	})

	t.Run("pacer error stops the run", func(t *testing.T) {
		f := newFixture(remoteTracks())
		f.pacer.Err = context.Canceled

		result, err := f.run(t, AcquireOpts{})
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
		if len(f.sink.Records) != 1 || len(result.Records) != 1 {
			t.Errorf("expected one record before stopping, got %d", len(f.sink.Records))
		}
	})
}

func TestAcquireEngine_SinkFailure(t *testing.T) {
	f := newFixture(remoteTracks())
	f.sink.Err = errors.New("disk full")
	f.sink.FailAfter = 1

	_, err := f.run(t, AcquireOpts{})
	if err == nil {
		t.Fatal("expected error when the sink fails")
	}
	if len(f.sink.Records) != 1 {
		t.Errorf("expected 1 stored record, got %d", len(f.sink.Records))
	}
	if len(f.fetcher.Calls) != 2 {
		t.Errorf("expected processing to stop at the second track, got %d fetches", len(f.fetcher.Calls))
	}
}

func TestAcquireEngine_SkipsStubs(t *testing.T) {
	tracks := []models.Track{
		{Title: "private track"},
		remoteTracks()[0],
		{StableID: "999"},
	}
	f := newFixture(tracks)

	result, err := f.run(t, AcquireOpts{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.SkippedStubs != 2 {
		t.Errorf("expected 2 skipped stubs, got %d", result.SkippedStubs)
	}
	if len(f.sink.Records) != 1 || f.sink.Records[0].TrackURL != urlA {
		t.Errorf("expected only A recorded, got %+v", f.sink.Records)
	}
	if f.pacer.Waits != 1 {
		t.Errorf("stubs should not be paced, got %d waits", f.pacer.Waits)
	}
}

func TestAcquireEngine_Plan(t *testing.T) {
	t.Run("flat listing without a folder", func(t *testing.T) {
		f := newFixture(remoteTracks())

		plan, err := f.engine().Plan(context.Background(), nil, f.sink, AcquireOpts{CollectionURL: "u"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(f.provider.ListCalls) != 1 || !f.provider.ListCalls[0].Flat {
			t.Errorf("expected one flat listing, got %+v", f.provider.ListCalls)
		}
		if len(plan.Candidates) != 3 || plan.Matches != nil {
			t.Errorf("expected every track as candidate, got %d", len(plan.Candidates))
		}
		if len(f.scanner.Roots) != 0 {
			t.Errorf("scanner should not run without a folder")
		}
	})

	t.Run("reconciled against a folder", func(t *testing.T) {
		f := newFixture(remoteTracks())
		f.scanner.Tracks = []models.Track{
			{Artist: "Floating Points", Title: "Silhouettes", LocalPath: "/music/fp.mp3"},
			{Title: "untagged", LocalPath: "/music/x.mp3"},
			{Artist: "Someone", Title: "Else", SourceURL: urlC, LocalPath: "/music/c.mp3"},
		}

		plan, err := f.engine().Plan(context.Background(), nil, f.sink, AcquireOpts{CollectionURL: "u", LocalFolder: "/music"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if f.provider.ListCalls[0].Flat {
			t.Errorf("expected a full listing when a folder is given")
		}
		if len(f.scanner.Roots) != 1 || f.scanner.Roots[0] != "/music" {
			t.Errorf("expected scan of /music, got %v", f.scanner.Roots)
		}
		if len(plan.Candidates) != 1 || plan.Candidates[0].SourceURL != urlB {
			t.Errorf("expected only B missing, got %+v", plan.Candidates)
		}
		if len(plan.Matches) != 3 {
			t.Errorf("expected 3 match results, got %d", len(plan.Matches))
		}
		if plan.LocalSkipped != 1 {
			t.Errorf("expected 1 skipped local file, got %d", plan.LocalSkipped)
		}
		if len(f.sink.Records) != 0 {
			t.Errorf("planning should not write records")
		}
	})

	t.Run("scan error", func(t *testing.T) {
		f := newFixture(remoteTracks())
		f.scanner.Err = fmt.Errorf("%w: /nope", shared.ErrFolderNotFound)

		_, err := f.engine().Plan(context.Background(), nil, f.sink, AcquireOpts{CollectionURL: "u", LocalFolder: "/nope"})
		if !errors.Is(err, shared.ErrFolderNotFound) {
			t.Errorf("expected ErrFolderNotFound, got %v", err)
		}
	})

	t.Run("folder without scanner", func(t *testing.T) {
		f := newFixture(remoteTracks())
		e := NewAcquireEngine(AcquireDeps{Provider: f.provider, Fetcher: f.fetcher})

		_, err := e.Plan(context.Background(), nil, f.sink, AcquireOpts{CollectionURL: "u", LocalFolder: "/music"})
		if !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})
}

func TestAcquireEngine_Progress(t *testing.T) {
	f := newFixture(remoteTracks()[:2])
	progress := make(chan ProgressUpdate, 64)

	if _, err := f.engine().Run(context.Background(), progress, f.sink, AcquireOpts{CollectionURL: "u"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	close(progress)

	counts := map[Phase]int{}
	for u := range progress {
		counts[u.Phase]++
	}

	want := map[Phase]int{
		ListCollection: 2,
		InspectTrack:   2,
		FetchTrack:     2,
		RecordTrack:    2,
		PaceTrack:      2,
	}
	for phase, n := range want {
		if counts[phase] != n {
			t.Errorf("phase %s: expected %d updates, got %d", phase, n, counts[phase])
		}
	}
}

func TestStateString(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateInit, "init"},
		{StateInspect, "inspect"},
		{StateSkipNative, "skip_native"},
		{StateFetch, "fetch"},
		{StateTerminal, "terminal"},
		{State(42), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}
