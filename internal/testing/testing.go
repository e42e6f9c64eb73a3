// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/bogem/id3v2/v2"

	"github.com/desertthunder/scsync/internal/models"
)

// MockProvider is a test double for services.Provider.
//
// Per-track answers are keyed by track url. Unknown urls get an OK info result echoing the
// track with no native download, and an unavailable link result.
type MockProvider struct {
	Tracks       []models.Track
	ListErr      error
	Infos        map[string]models.InfoResult
	Links        map[string]models.LinkResult
	PanicOn      string // Track url whose info lookup panics
	PanicOnProbe string // Track url whose link probe panics

	mu         sync.Mutex
	ListCalls  []models.ListOptions
	InfoCalls  []string
	ProbeCalls []string
}

func (m *MockProvider) Name() string { return "mock" }

func (m *MockProvider) ListCollection(ctx context.Context, url string, opts models.ListOptions) ([]models.Track, error) {
	m.mu.Lock()
	m.ListCalls = append(m.ListCalls, opts)
	m.mu.Unlock()

	if m.ListErr != nil {
		return nil, m.ListErr
	}
	return m.Tracks, nil
}

func (m *MockProvider) FetchTrackInfo(ctx context.Context, t models.Track) models.InfoResult {
	m.mu.Lock()
	m.InfoCalls = append(m.InfoCalls, t.SourceURL)
	m.mu.Unlock()

	if m.PanicOn != "" && t.SourceURL == m.PanicOn {
		panic("provider exploded")
	}
	if r, ok := m.Infos[t.SourceURL]; ok {
		return r
	}
	return models.InfoResult{Outcome: models.OK(), Info: models.TrackInfo{Track: t}}
}

func (m *MockProvider) ProbeExternalLink(ctx context.Context, trackURL string) models.LinkResult {
	m.mu.Lock()
	m.ProbeCalls = append(m.ProbeCalls, trackURL)
	m.mu.Unlock()

	if m.PanicOnProbe != "" && trackURL == m.PanicOnProbe {
		panic("probe exploded")
	}

	if r, ok := m.Links[trackURL]; ok {
		return r
	}
	return models.LinkResult{Outcome: models.Unavailable("no purchase link")}
}

// FetchCall records one invocation of [MockFetcher.Fetch].
type FetchCall struct {
	URL string
	Dir string
}

// MockFetcher is a test double for services.Fetcher. Unknown urls succeed.
type MockFetcher struct {
	Results map[string]models.Outcome
	Calls   []FetchCall
}

func (m *MockFetcher) Fetch(ctx context.Context, trackURL, destDir string) models.Outcome {
	m.Calls = append(m.Calls, FetchCall{URL: trackURL, Dir: destDir})
	if r, ok := m.Results[trackURL]; ok {
		return r
	}
	return models.OK()
}

// MockScanner is a test double for services.Scanner.
type MockScanner struct {
	Tracks []models.Track
	Err    error
	Roots  []string
}

func (m *MockScanner) ScanFolder(ctx context.Context, root string) ([]models.Track, error) {
	m.Roots = append(m.Roots, root)
	return m.Tracks, m.Err
}

// MockRunner is a test double for services.CommandRunner.
type MockRunner struct {
	Out   []byte
	Err   error
	Calls [][]string // Program name followed by its arguments
}

func (m *MockRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	m.Calls = append(m.Calls, append([]string{name}, args...))
	return m.Out, m.Err
}

// LastArgs returns the arguments of the most recent call, without the program name.
func (m *MockRunner) LastArgs() []string {
	if len(m.Calls) == 0 {
		return nil
	}
	return m.Calls[len(m.Calls)-1][1:]
}

// MockPacer counts waits and never sleeps.
type MockPacer struct {
	Waits int
	Err   error
}

func (m *MockPacer) Wait(ctx context.Context) error {
	m.Waits++
	return m.Err
}

// MockSink collects acquisition records in memory. A non-nil Err is returned by every Append
// after FailAfter successful appends.
type MockSink struct {
	Records   []models.AcquisitionRecord
	Err       error
	FailAfter int
}

func (m *MockSink) Append(rec models.AcquisitionRecord) error {
	if m.Err != nil && len(m.Records) >= m.FailAfter {
		return m.Err
	}
	m.Records = append(m.Records, rec)
	return nil
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// TagSpec describes the ID3 frames written by [MustWriteTaggedMP3].
type TagSpec struct {
	Artist   string
	Title    string
	Comment  string
	LengthMS int
	Frames   int // Silent MPEG-1 Layer III frames appended after the tag, 24ms each
}

// silentFrame is one 128kbps 48kHz MPEG-1 Layer III frame: a 4 byte header and a zeroed body.
func silentFrame() []byte {
	frame := make([]byte, 384)
	copy(frame, []byte{0xFF, 0xFB, 0x94, 0x00})
	return frame
}

// MustWriteTaggedMP3 writes an ID3v2.4 tag followed by tags.Frames audio frames, creating parent
// directories.
func MustWriteTaggedMP3(t *testing.T, path string, tags TagSpec) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create directory for %s: %v", path, err)
	}

	tag := id3v2.NewEmptyTag()
	tag.SetDefaultEncoding(id3v2.EncodingUTF8)
	if tags.Artist != "" {
		tag.SetArtist(tags.Artist)
	}
	if tags.Title != "" {
		tag.SetTitle(tags.Title)
	}
	if tags.Comment != "" {
		tag.AddCommentFrame(id3v2.CommentFrame{
			Encoding: id3v2.EncodingUTF8,
			Language: "eng",
			Text:     tags.Comment,
		})
	}
	if tags.LengthMS > 0 {
		tag.AddTextFrame("TLEN", id3v2.EncodingUTF8, fmt.Sprint(tags.LengthMS))
	}

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create %s: %v", path, err)
	}
	defer f.Close()

	if _, err := tag.WriteTo(f); err != nil {
		t.Fatalf("Failed to write tag to %s: %v", path, err)
	}
	for range tags.Frames {
		if _, err := f.Write(silentFrame()); err != nil {
			t.Fatalf("Failed to write audio frame to %s: %v", path, err)
		}
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func AssertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		t.Errorf("Directory does not exist: %s", path)
		return
	}
	if !info.IsDir() {
		t.Errorf("Path is not a directory: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
