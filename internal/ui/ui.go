package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/scsync/internal/models"
	"github.com/desertthunder/scsync/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	PlanView ViewState = iota
	MissingListView
	ConfirmView
	AcquireView
	ResultView
)

const recentLines = 6

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	view         ViewState
	engine       *tasks.AcquireEngine
	sink         tasks.RecordSink
	opts         tasks.AcquireOpts
	width        int
	height       int
	plan         *tasks.AcquirePlan
	missingList  list.Model
	progressChan <-chan tasks.ProgressUpdate
	done         <-chan Msg
	progress     tasks.ProgressUpdate
	recent       []string
	result       *tasks.AcquireResult
	err          error
	help         help.Model
	keys         keyMap
}

// NewModel creates a new TUI model. Records produced by the engine are appended to sink.
func NewModel(ctx context.Context, engine *tasks.AcquireEngine, sink tasks.RecordSink, opts tasks.AcquireOpts) *Model {
	return &Model{
		ctx:    ctx,
		view:   PlanView,
		engine: engine,
		sink:   sink,
		opts:   opts,
		help:   help.New(),
		keys:   newKeyMap(),
	}
}

// Init starts planning: listing the collection and reconciling it against the local folder.
func (m *Model) Init() tea.Cmd {
	return m.stream(func(progress chan<- tasks.ProgressUpdate) Msg {
		plan, err := m.engine.Plan(m.ctx, progress, m.sink, m.opts)
		return planReadyMsg(plan, err)
	})
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.plan != nil {
			m.resizeList()
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case PlanView, AcquireView:
			if key.Matches(msg, m.keys.quit) {
				return m, tea.Quit
			}
		case MissingListView:
			return m.handleMissingListKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		}
		return m, nil

	case Msg:
		return m.handleMsg(msg)
	}

	if m.view == MissingListView {
		var cmd tea.Cmd
		m.missingList, cmd = m.missingList.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgPlanReady:
		data := msg.data.(planReady)
		m.clearStream()
		if data.err != nil {
			m.err = data.err
			m.view = ResultView
			return m, nil
		}
		m.plan = data.plan
		m.missingList = list.New(trackItems(data.plan.Candidates), list.NewDefaultDelegate(), 0, 0)
		m.missingList.Title = fmt.Sprintf("Missing from %s", m.localLabel())
		m.resizeList()
		m.view = MissingListView
		return m, nil

	case MsgProgressUpdate:
		update := msg.data.(tasks.ProgressUpdate)
		m.progress = update
		if update.Phase == tasks.RecordTrack {
			line := update.Message
			if rec, ok := update.Data.(models.AcquisitionRecord); ok {
				line = styles.record(rec).Render(line)
			}
			m.recent = append(m.recent, line)
			if len(m.recent) > recentLines {
				m.recent = m.recent[len(m.recent)-recentLines:]
			}
		}
		return m, waitForProgress(m.progressChan, m.done)

	case MsgAcquireComplete:
		data := msg.data.(acquireComplete)
		m.clearStream()
		m.result = data.result
		m.err = data.err
		m.view = ResultView
		return m, nil
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case PlanView:
		return m.renderPlan()
	case MissingListView:
		return m.renderMissingList()
	case ConfirmView:
		return m.renderConfirm()
	case AcquireView:
		return m.renderAcquire()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) handleMissingListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.missingList.FilterState() != list.Filtering {
		switch {
		case key.Matches(msg, m.keys.quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.enter):
			if len(m.plan.Candidates) > 0 {
				m.view = ConfirmView
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.missingList, cmd = m.missingList.Update(msg)
	return m, cmd
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.no), key.Matches(msg, m.keys.back):
		m.view = MissingListView
		return m, nil
	case key.Matches(msg, m.keys.yes):
		m.view = AcquireView
		return m, m.startAcquire()
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.restart):
		m.view = PlanView
		m.plan = nil
		m.result = nil
		m.err = nil
		m.recent = nil
		m.progress = tasks.ProgressUpdate{}
		return m, m.Init()
	}
	return m, nil
}

func (m *Model) startAcquire() tea.Cmd {
	plan := m.plan
	return m.stream(func(progress chan<- tasks.ProgressUpdate) Msg {
		result, err := m.engine.Execute(m.ctx, progress, m.sink, plan, m.opts.OutputDir)
		return acquireCompleteMsg(result, err)
	})
}

// stream runs fn in the background and relays its progress updates until it returns.
func (m *Model) stream(fn func(chan<- tasks.ProgressUpdate) Msg) tea.Cmd {
	progress := make(chan tasks.ProgressUpdate, 50)
	done := make(chan Msg, 1)
	m.progressChan = progress
	m.done = done

	go func() {
		done <- fn(progress)
		close(progress)
	}()

	return waitForProgress(progress, done)
}

func (m *Model) clearStream() {
	m.progressChan = nil
	m.done = nil
}

func waitForProgress(progress <-chan tasks.ProgressUpdate, done <-chan Msg) tea.Cmd {
	return func() tea.Msg {
		if update, ok := <-progress; ok {
			return progressUpdateMsg(update)
		}
		return <-done
	}
}

func (m *Model) resizeList() {
	if m.width > 0 && m.height > 0 {
		m.missingList.SetSize(m.width-4, m.height-8)
	}
}

func (m *Model) localLabel() string {
	if m.opts.LocalFolder == "" {
		return "(no local folder)"
	}
	return m.opts.LocalFolder
}

func (m *Model) renderPlan() string {
	title := styles.title.Render("Preparing acquisition")
	msg := m.progress.Message
	if msg == "" {
		msg = fmt.Sprintf("Listing collection %s...", m.opts.CollectionURL)
	}
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.quit})
	return fmt.Sprintf("%s\n\n%s\n\n%s", title, msg, helpView)
}

func (m *Model) renderMissingList() string {
	if len(m.plan.Candidates) == 0 {
		msg := styles.done.Render(fmt.Sprintf("✓ All %d tracks are present in %s", len(m.plan.Remote), m.localLabel()))
		helpView := m.help.ShortHelpView([]key.Binding{m.keys.quit})
		return fmt.Sprintf("%s\n\n%s", msg, helpView)
	}

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.enter, m.keys.filter, m.keys.quit})

	var note string
	if m.plan.LocalSkipped > 0 {
		note = "\n" + styles.warn.Render(fmt.Sprintf("Skipped %d local MP3(s) with missing/broken ID3 artist/title tags.", m.plan.LocalSkipped))
	}
	return fmt.Sprintf("%s%s\n\n%s", m.missingList.View(), note, helpView)
}

func (m *Model) renderConfirm() string {
	title := styles.title.Render(fmt.Sprintf("Acquire %d tracks?", len(m.plan.Candidates)))
	info := fmt.Sprintf("\nCollection: %s\nProvider: %s\nOutput: %s\n", m.plan.CollectionURL, m.plan.Provider, m.opts.OutputDir)

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.yes, m.keys.no, m.keys.quit})
	return fmt.Sprintf("%s\n%s\n%s", title, info, helpView)
}

func (m *Model) renderAcquire() string {
	title := styles.title.Render("Acquiring Tracks")

	var phase string
	switch m.progress.Phase {
	case tasks.InspectTrack:
		phase = fmt.Sprintf("Inspecting track (%d/%d)", m.progress.Step, m.progress.Total)
	case tasks.FetchTrack:
		phase = fmt.Sprintf("Downloading track (%d/%d)", m.progress.Step, m.progress.Total)
	case tasks.PaceTrack:
		phase = styles.muted.Render(fmt.Sprintf("Pausing (%d/%d)", m.progress.Step, m.progress.Total))
	default:
		phase = "Processing..."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n%s\n%s\n", title, phase, m.progress.Message)
	if len(m.recent) > 0 {
		b.WriteString("\n")
		for _, line := range m.recent {
			b.WriteString(line)
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (m *Model) renderResult() string {
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.restart, m.keys.quit})

	if m.err != nil {
		return styles.fail.Render(fmt.Sprintf("Acquisition failed: %v", m.err)) + "\n\n" + helpView
	}
	if m.result == nil {
		return styles.fail.Render("No result available") + "\n\n" + helpView
	}

	title := styles.done.Render("✓ Acquisition Complete!")
	info := fmt.Sprintf(
		"\nNative downloads: %d\nFetched: %d\nFetch failures: %d\nErrors: %d",
		m.result.Native, m.result.Fetched, m.result.FetchFailed, m.result.Errors,
	)
	if m.result.SkippedStubs > 0 {
		info += fmt.Sprintf("\nSkipped without url: %d", m.result.SkippedStubs)
	}

	var failed string
	if n := m.result.FetchFailed + m.result.Errors; n > 0 {
		failed = fmt.Sprintf("\n\n%s", styles.warn.Render(fmt.Sprintf("%d tracks were not acquired:", n)))
		for _, rec := range m.result.Records {
			if notAcquired(rec) {
				failed += "\n  " + styles.record(rec).Render(fmt.Sprintf("• %s: %s", rec.TrackTitle, rec.FetchError))
			}
		}
	}

	return fmt.Sprintf("%s\n%s%s\n\n%s", title, info, failed, helpView)
}

func notAcquired(rec models.AcquisitionRecord) bool {
	return rec.Decision.Kind != models.DecisionSkippedNative && !rec.FetchSucceeded()
}
