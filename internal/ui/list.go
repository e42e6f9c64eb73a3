package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"

	"github.com/desertthunder/scsync/internal/models"
)

var (
	_ list.Item = trackItem{}
)

// trackItem wraps a missing [models.Track] to implement [list.Item].
type trackItem struct {
	track models.Track
}

func (i trackItem) FilterValue() string { return i.track.Display() }

func (i trackItem) Title() string {
	if i.track.Title == "" {
		return i.track.SourceURL
	}
	return i.track.Title
}

func (i trackItem) Description() string {
	desc := i.track.Artist
	if d := i.track.DurationString(); d != "" {
		desc = fmt.Sprintf("%s • %ss", desc, d)
	}
	if desc == "" {
		return i.track.SourceURL
	}
	return desc
}

func trackItems(tracks []models.Track) []list.Item {
	items := make([]list.Item, len(tracks))
	for i, t := range tracks {
		items[i] = trackItem{track: t}
	}
	return items
}
