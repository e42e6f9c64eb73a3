package formatter

import (
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/desertthunder/scsync/internal/models"
)

// LogSummary counts acquisition log rows by outcome.
type LogSummary struct {
	Total       int
	Native      int // Skipped, native download available
	Fetched     int // Fallback fetch succeeded
	FetchFailed int
	Errors      int // Rows with no decision (listing, info or unexpected errors)
	WithLink    int // Rows where a purchase link was found
}

// SummarizeLog tallies records.
func SummarizeLog(records []models.AcquisitionRecord) LogSummary {
	s := LogSummary{Total: len(records)}
	for _, r := range records {
		switch r.Decision.Kind {
		case models.DecisionSkippedNative:
			s.Native++
		case models.DecisionFetchedFallback:
			if r.Decision.Success {
				s.Fetched++
			} else {
				s.FetchFailed++
			}
		default:
			s.Errors++
		}
		if r.ExternalLinkAvailable {
			s.WithLink++
		}
	}
	return s
}

// recordStatus is the one-word outcome shown in the report.
func recordStatus(r models.AcquisitionRecord) string {
	switch r.Decision.Kind {
	case models.DecisionSkippedNative:
		return "native"
	case models.DecisionFetchedFallback:
		if r.Decision.Success {
			return "fetched"
		}
		return "fetch failed"
	default:
		return "error"
	}
}

// RenderLogReport renders records as a table followed by totals.
func RenderLogReport(records []models.AcquisitionRecord) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"#", "Track", "Status", "Purchase Link", "Error"})

	for i, r := range records {
		title := r.TrackTitle
		if title == "" {
			title = r.TrackURL
		}
		tw.AppendRow(table.Row{i + 1, title, recordStatus(r), r.ExternalLink, r.FetchError})
	}

	s := SummarizeLog(records)
	tw.AppendFooter(table.Row{"", "Total " + strconv.Itoa(s.Total), summaryLine(s), "", ""})

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 2, WidthMax: 48},
		{Number: 4, WidthMax: 40},
		{Number: 5, WidthMax: 60},
	})

	return tw.Render()
}

func summaryLine(s LogSummary) string {
	parts := []string{
		strconv.Itoa(s.Native) + " native",
		strconv.Itoa(s.Fetched) + " fetched",
		strconv.Itoa(s.FetchFailed) + " failed",
		strconv.Itoa(s.Errors) + " errors",
	}
	return strings.Join(parts, ", ")
}
