// package formatter provides functions to export reconciliation data to CSV and plain text and
// to keep the append-only acquisition log
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/desertthunder/scsync/internal/models"
)

var (
	remoteHeader = []string{"Index", "Artist", "Title", "DurationSec", "Id", "Url"}
	localHeader  = []string{"Index", "Artist", "Title", "DurationSec", "Path", "SourceUrl"}
	joinedHeader = []string{
		"MatchMethod",
		"RemoteArtist", "RemoteTitle", "RemoteDurationSec", "RemoteId", "RemoteUrl",
		"LocalArtist", "LocalTitle", "LocalDurationSec", "LocalPath", "LocalSourceUrl",
	}
)

// ExportRemoteCSV converts remote tracks to CSV with columns: Index, Artist, Title, DurationSec, Id, Url
//
// Index is 1-based. The missing list uses the same layout.
func ExportRemoteCSV(tracks []models.Track) ([]byte, error) {
	rows := make([][]string, 0, len(tracks))
	for i, t := range tracks {
		rows = append(rows, []string{
			strconv.Itoa(i + 1), t.Artist, t.Title, t.DurationString(), t.StableID, t.SourceURL,
		})
	}
	return writeCSV(remoteHeader, rows)
}

// ExportLocalCSV converts local tracks to CSV with columns: Index, Artist, Title, DurationSec, Path, SourceUrl
func ExportLocalCSV(tracks []models.Track) ([]byte, error) {
	rows := make([][]string, 0, len(tracks))
	for i, t := range tracks {
		rows = append(rows, []string{
			strconv.Itoa(i + 1), t.Artist, t.Title, t.DurationString(), t.LocalPath, t.SourceURL,
		})
	}
	return writeCSV(localHeader, rows)
}

// ExportJoinedCSV converts match results to the joined report, one row per remote track.
// Local columns are empty for unmatched rows.
func ExportJoinedCSV(results []models.MatchResult) ([]byte, error) {
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		var local models.Track
		if r.Local != nil {
			local = *r.Local
		}
		rows = append(rows, []string{
			string(r.Method),
			r.Remote.Artist, r.Remote.Title, r.Remote.DurationString(), r.Remote.StableID, r.Remote.SourceURL,
			local.Artist, local.Title, local.DurationString(), local.LocalPath, local.SourceURL,
		})
	}
	return writeCSV(joinedHeader, rows)
}

// ExportMissingText renders the missing list the way the CLI prints it.
func ExportMissingText(missing []models.Track) []byte {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Missing tracks: %d\n", len(missing))
	for _, t := range missing {
		fmt.Fprintf(&buf, "- %s\n", t.Display())
	}

	return buf.Bytes()
}

// ReadRemoteCSV parses a file written by [ExportRemoteCSV] back into tracks.
func ReadRemoteCSV(r io.Reader) ([]models.Track, error) {
	records, err := readCSV(r, remoteHeader)
	if err != nil {
		return nil, err
	}

	tracks := make([]models.Track, 0, len(records))
	for i, rec := range records {
		t := models.Track{Artist: rec[1], Title: rec[2], StableID: rec[4], SourceURL: rec[5]}
		if rec[3] != "" {
			d, err := strconv.ParseFloat(rec[3], 64)
			if err != nil {
				return nil, fmt.Errorf("row %d: invalid duration %q: %w", i+2, rec[3], err)
			}
			t.Duration = models.Seconds(d)
		}
		tracks = append(tracks, t)
	}
	return tracks, nil
}

// WriteExport writes data to path, creating parent directories. An empty path is a no-op and
// returns false.
func WriteExport(path string, data []byte) (bool, error) {
	if strings.TrimSpace(path) == "" {
		return false, nil
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return false, fmt.Errorf("failed to create directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return false, fmt.Errorf("failed to write %s: %w", path, err)
	}
	return true, nil
}

func writeCSV(header []string, rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(header); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}
	for _, row := range rows {
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// readCSV reads all records after checking the header row.
func readCSV(r io.Reader, header []string) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = len(header)

	got, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("empty CSV: expected header %v", header)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	for i, col := range header {
		if strings.TrimPrefix(got[i], "\ufeff") != col {
			return nil, fmt.Errorf("unexpected CSV header %v, want %v", got, header)
		}
	}

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV records: %w", err)
	}
	return records, nil
}
