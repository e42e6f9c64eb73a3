package formatter

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gofrs/flock"

	"github.com/desertthunder/scsync/internal/models"
	"github.com/desertthunder/scsync/internal/shared"
)

var logHeader = []string{
	"TrackTitle", "TrackUrl", "NativeDownloadAvailable", "ExternalLinkAvailable",
	"ExternalLink", "FetchAttempted", "FetchError",
}

// AcquisitionLog is the append-only CSV of per-track acquisition results.
//
// Only one process may hold a log open: a sibling "<path>.lock" file is flock'd for the
// lifetime of the handle. Every row is flushed as soon as it is appended.
type AcquisitionLog struct {
	path string
	file *os.File
	w    *csv.Writer
	lock *flock.Flock
}

// OpenAcquisitionLog opens path for appending, writing the header when the file is new or empty.
// Returns [shared.ErrLogLocked] when another writer holds the log.
func OpenAcquisitionLog(path string) (*AcquisitionLog, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
	}

	lock := flock.New(path + ".lock")
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire log lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", shared.ErrLogLocked, path)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("failed to open acquisition log: %w", err)
	}

	l := &AcquisitionLog{path: path, file: file, w: csv.NewWriter(file), lock: lock}

	info, err := file.Stat()
	if err != nil {
		_ = l.Close()
		return nil, fmt.Errorf("failed to stat acquisition log: %w", err)
	}
	if info.Size() == 0 {
		if err := l.writeRow(logHeader); err != nil {
			_ = l.Close()
			return nil, err
		}
	}

	return l, nil
}

// Path returns the log file path.
func (l *AcquisitionLog) Path() string { return l.path }

// Append writes one record and flushes it to disk.
func (l *AcquisitionLog) Append(rec models.AcquisitionRecord) error {
	return l.writeRow([]string{
		rec.TrackTitle,
		rec.TrackURL,
		strconv.FormatBool(rec.NativeDownloadAvailable),
		strconv.FormatBool(rec.ExternalLinkAvailable),
		rec.ExternalLink,
		strconv.FormatBool(rec.FetchAttempted),
		rec.FetchError,
	})
}

func (l *AcquisitionLog) writeRow(row []string) error {
	if err := l.w.Write(row); err != nil {
		return fmt.Errorf("failed to write log row: %w", err)
	}
	l.w.Flush()
	if err := l.w.Error(); err != nil {
		return fmt.Errorf("failed to flush log row: %w", err)
	}
	return nil
}

// Close flushes, closes the file and releases the lock.
func (l *AcquisitionLog) Close() error {
	l.w.Flush()
	errs := []error{l.w.Error(), l.file.Close(), l.lock.Unlock()}
	return errors.Join(errs...)
}

// ReadAcquisitionLog parses an acquisition log. Decisions are reconstructed from the
// native and fetch columns. Errors wrap [shared.ErrLogFormat].
func ReadAcquisitionLog(r io.Reader) ([]models.AcquisitionRecord, error) {
	rows, err := readCSV(r, logHeader)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrLogFormat, err)
	}

	records := make([]models.AcquisitionRecord, 0, len(rows))
	for i, row := range rows {
		rec, err := parseLogRow(row)
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", shared.ErrLogFormat, i+2, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// ReadAcquisitionLogFile opens and parses the log at path.
func ReadAcquisitionLogFile(path string) ([]models.AcquisitionRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open acquisition log: %w", err)
	}
	defer f.Close()
	return ReadAcquisitionLog(f)
}

func parseLogRow(row []string) (models.AcquisitionRecord, error) {
	native, err := strconv.ParseBool(row[2])
	if err != nil {
		return models.AcquisitionRecord{}, fmt.Errorf("NativeDownloadAvailable: %w", err)
	}
	external, err := strconv.ParseBool(row[3])
	if err != nil {
		return models.AcquisitionRecord{}, fmt.Errorf("ExternalLinkAvailable: %w", err)
	}
	attempted, err := strconv.ParseBool(row[5])
	if err != nil {
		return models.AcquisitionRecord{}, fmt.Errorf("FetchAttempted: %w", err)
	}

	rec := models.AcquisitionRecord{
		TrackTitle:              row[0],
		TrackURL:                row[1],
		NativeDownloadAvailable: native,
		ExternalLinkAvailable:   external,
		ExternalLink:            row[4],
		FetchAttempted:          attempted,
		FetchError:              row[6],
	}

	switch {
	case models.HasFailureMarker(rec.FetchError):
		rec.Decision = models.Decision{Kind: models.DecisionNone, Error: rec.FetchError}
	case attempted:
		rec.Decision = models.Decision{Kind: models.DecisionFetchedFallback, Success: rec.FetchSucceeded(), Error: rec.FetchError}
	case native:
		rec.Decision = models.Decision{Kind: models.DecisionSkippedNative, Success: true}
	default:
		rec.Decision = models.Decision{Kind: models.DecisionNone, Error: rec.FetchError}
	}
	return rec, nil
}
