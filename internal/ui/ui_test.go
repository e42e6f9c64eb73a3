package ui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/desertthunder/scsync/internal/models"
	"github.com/desertthunder/scsync/internal/tasks"
	tu "github.com/desertthunder/scsync/internal/testing"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// drain runs cmd and feeds every message back into the model until no command is returned.
func drain(t *testing.T, m *Model, cmd tea.Cmd) {
	t.Helper()
	for i := 0; cmd != nil; i++ {
		if i > 200 {
			t.Fatal("command chain did not terminate")
		}
		_, cmd = m.Update(cmd())
	}
}

func newTestModel(provider *tu.MockProvider, fetcher *tu.MockFetcher, sink *tu.MockSink) *Model {
	engine := tasks.NewAcquireEngine(tasks.AcquireDeps{
		Provider: provider,
		Fetcher:  fetcher,
		Pacer:    &tu.MockPacer{},
	})
	m := NewModel(context.Background(), engine, sink, tasks.AcquireOpts{
		CollectionURL: "https://soundcloud.com/someone/likes",
		OutputDir:     "downloads",
	})
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return m
}

func TestModel_AcquireFlow(t *testing.T) {
	provider := &tu.MockProvider{Tracks: []models.Track{
		{Artist: "Four Tet", Title: "Baby", SourceURL: "https://soundcloud.com/fourtet/baby"},
		{Artist: "Bonobo", Title: "Kerala", SourceURL: "https://soundcloud.com/bonobo/kerala"},
	}}
	fetcher := &tu.MockFetcher{Results: map[string]models.Outcome{
		"https://soundcloud.com/bonobo/kerala": models.Failed("HTTP Error 403"),
	}}
	sink := &tu.MockSink{}
	m := newTestModel(provider, fetcher, sink)

	drain(t, m, m.Init())
	if m.view != MissingListView {
		t.Fatalf("expected MissingListView after planning, got %d", m.view)
	}
	if !strings.Contains(m.View(), "Baby") {
		t.Errorf("missing list should show candidates:\n%s", m.View())
	}

	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.view != ConfirmView {
		t.Fatalf("expected ConfirmView, got %d", m.view)
	}
	if !strings.Contains(m.View(), "Acquire 2 tracks?") {
		t.Errorf("unexpected confirm view:\n%s", m.View())
	}

	m.Update(runes("n"))
	if m.view != MissingListView {
		t.Fatalf("expected n to return to the list, got %d", m.view)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	_, cmd := m.Update(runes("y"))
	if m.view != AcquireView {
		t.Fatalf("expected AcquireView, got %d", m.view)
	}
	drain(t, m, cmd)

	if m.view != ResultView {
		t.Fatalf("expected ResultView, got %d", m.view)
	}
	if m.result == nil || m.result.Fetched != 1 || m.result.FetchFailed != 1 {
		t.Fatalf("unexpected result: %+v", m.result)
	}
	if len(sink.Records) != 2 {
		t.Errorf("expected 2 records in the sink, got %d", len(sink.Records))
	}

	view := m.View()
	for _, want := range []string{"Acquisition Complete", "Fetched: 1", "Kerala: HTTP Error 403"} {
		if !strings.Contains(view, want) {
			t.Errorf("result view missing %q:\n%s", want, view)
		}
	}
	for _, call := range fetcher.Calls {
		if call.Dir != "downloads" {
			t.Errorf("expected fetch into downloads, got %s", call.Dir)
		}
	}
}

func TestModel_PlanFailure(t *testing.T) {
	provider := &tu.MockProvider{ListErr: errors.New("HTTP Error 404")}
	sink := &tu.MockSink{}
	m := newTestModel(provider, &tu.MockFetcher{}, sink)

	drain(t, m, m.Init())

	if m.view != ResultView {
		t.Fatalf("expected ResultView, got %d", m.view)
	}
	if !strings.Contains(m.View(), "Acquisition failed") {
		t.Errorf("expected failure message:\n%s", m.View())
	}
	if len(sink.Records) != 1 || !strings.HasPrefix(sink.Records[0].FetchError, "playlist_error: ") {
		t.Errorf("expected a playlist_error record, got %+v", sink.Records)
	}
}

func TestModel_NothingMissing(t *testing.T) {
	m := newTestModel(&tu.MockProvider{}, &tu.MockFetcher{}, &tu.MockSink{})

	drain(t, m, m.Init())
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	if m.view != MissingListView {
		t.Errorf("enter should do nothing without candidates, got view %d", m.view)
	}
	if !strings.Contains(m.View(), "All 0 tracks are present") {
		t.Errorf("unexpected view:\n%s", m.View())
	}
}

func TestModel_Quit(t *testing.T) {
	m := newTestModel(&tu.MockProvider{}, &tu.MockFetcher{}, &tu.MockSink{})
	drain(t, m, m.Init())

	_, cmd := m.Update(runes("q"))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Errorf("expected tea.QuitMsg")
	}
}

func TestThemeRecord(t *testing.T) {
	tests := []struct {
		name string
		rec  models.AcquisitionRecord
		want string
	}{
		{
			name: "native",
			rec:  models.AcquisitionRecord{NativeDownloadAvailable: true, Decision: models.Decision{Kind: models.DecisionSkippedNative, Success: true}},
			want: "#5AC8FA",
		},
		{
			name: "fetched",
			rec:  models.AcquisitionRecord{FetchAttempted: true, Decision: models.Decision{Kind: models.DecisionFetchedFallback, Success: true}},
			want: "#04B575",
		},
		{
			name: "fetch failed",
			rec:  models.AcquisitionRecord{FetchAttempted: true, FetchError: "HTTP Error 403"},
			want: "#FFA500",
		},
		{
			name: "no decision",
			rec:  models.AcquisitionRecord{FetchError: "unexpected_error: boom"},
			want: "#FF3B30",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := styles.record(tt.rec).GetForeground()
			if got != lipgloss.Color(tt.want) {
				t.Errorf("expected %s, got %v", tt.want, got)
			}
		})
	}
}
