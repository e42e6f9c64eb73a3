package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/desertthunder/scsync/internal/models"
)

var styles = newTheme()

// theme holds the styles of the acquisition views, named by what they mark.
type theme struct {
	title   lipgloss.Style
	done    lipgloss.Style
	warn    lipgloss.Style
	fail    lipgloss.Style
	muted   lipgloss.Style
	native  lipgloss.Style
	fetched lipgloss.Style
}

func newTheme() theme {
	fg := func(c string) lipgloss.Style {
		return lipgloss.NewStyle().Foreground(lipgloss.Color(c))
	}

	return theme{
		title:   fg("#FF5500").Bold(true).MarginBottom(1),
		done:    fg("#04B575").Bold(true),
		warn:    fg("#FFA500"),
		fail:    fg("#FF3B30").Bold(true),
		muted:   fg("#626262").Italic(true),
		native:  fg("#5AC8FA"),
		fetched: fg("#04B575"),
	}
}

// record returns the style for a processed track line.
func (t theme) record(rec models.AcquisitionRecord) lipgloss.Style {
	switch {
	case rec.Decision.Kind == models.DecisionSkippedNative:
		return t.native
	case rec.FetchSucceeded():
		return t.fetched
	case rec.FetchAttempted:
		return t.warn
	default:
		return t.fail
	}
}
