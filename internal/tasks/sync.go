package tasks

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/scsync/internal/formatter"
	"github.com/desertthunder/scsync/internal/models"
	"github.com/desertthunder/scsync/internal/reconcile"
	"github.com/desertthunder/scsync/internal/services"
	"github.com/desertthunder/scsync/internal/shared"
)

// SyncOpts names the collection, the local folder and the CSV artifacts to write.
// An empty artifact path skips that artifact.
type SyncOpts struct {
	CollectionURL string
	LocalFolder   string
	RemoteCSV     string
	LocalCSV      string
	JoinedCSV     string
	MissingCSV    string
}

// SyncResult contains all data from a reconciliation run.
type SyncResult struct {
	Remote  []models.Track
	Local   []models.Track
	Matches []models.MatchResult
	Missing []models.Track
	Skipped int      // Local files without usable artist/title tags
	Written []string // Artifact paths, in write order
}

// SyncEngine lists a remote collection, scans a local folder and reports what is missing.
type SyncEngine struct {
	provider   services.Provider
	scanner    services.Scanner
	reconciler *reconcile.Reconciler
	logger     *log.Logger
}

// NewSyncEngine creates a new SyncEngine. A nil reconciler uses the default options.
func NewSyncEngine(provider services.Provider, scanner services.Scanner, reconciler *reconcile.Reconciler, logger *log.Logger) *SyncEngine {
	if reconciler == nil {
		reconciler = reconcile.NewReconciler(reconcile.Options{})
	}
	if logger == nil {
		logger = log.Default()
	}
	return &SyncEngine{provider: provider, scanner: scanner, reconciler: reconciler, logger: logger}
}

// Sync runs list → scan → reconcile and writes the requested CSV artifacts.
func (e *SyncEngine) Sync(ctx context.Context, progress chan<- ProgressUpdate, opts SyncOpts) (*SyncResult, error) {
	sendProgress(progress, listingUpdate(opts.CollectionURL))
	remote, err := e.provider.ListCollection(ctx, opts.CollectionURL, models.ListOptions{})
	if err != nil {
		return nil, wrapListing(err)
	}
	sendProgress(progress, listedUpdate(e.provider.Name(), remote))
	e.logger.Info("listed collection", "url", opts.CollectionURL, "tracks", len(remote))

	result := &SyncResult{Remote: remote}
	if err := e.write(progress, result, opts.RemoteCSV, func() ([]byte, error) {
		return formatter.ExportRemoteCSV(remote)
	}); err != nil {
		return nil, err
	}

	snap, err := reconcileLocal(ctx, progress, e.scanner, e.reconciler, e.logger, opts.LocalFolder, remote)
	if err != nil {
		return nil, err
	}
	result.Local = snap.local
	result.Matches = snap.matches
	result.Missing = snap.missing
	result.Skipped = snap.skipped

	artifacts := []struct {
		path   string
		export func() ([]byte, error)
	}{
		{opts.LocalCSV, func() ([]byte, error) { return formatter.ExportLocalCSV(snap.local) }},
		{opts.JoinedCSV, func() ([]byte, error) { return formatter.ExportJoinedCSV(snap.matches) }},
		{opts.MissingCSV, func() ([]byte, error) { return formatter.ExportRemoteCSV(snap.missing) }},
	}
	for _, a := range artifacts {
		if err := e.write(progress, result, a.path, a.export); err != nil {
			return nil, err
		}
	}

	return result, nil
}

func (e *SyncEngine) write(progress chan<- ProgressUpdate, result *SyncResult, path string, export func() ([]byte, error)) error {
	if path == "" {
		return nil
	}
	data, err := export()
	if err != nil {
		return fmt.Errorf("failed to generate %s: %w", path, err)
	}
	if _, err := formatter.WriteExport(path, data); err != nil {
		return err
	}
	result.Written = append(result.Written, path)
	sendProgress(progress, artifactUpdate(path))
	e.logger.Debug("wrote artifact", "path", path)
	return nil
}

// localSnapshot is a scanned folder reconciled against a remote listing.
type localSnapshot struct {
	local   []models.Track
	matches []models.MatchResult
	missing []models.Track
	skipped int
}

func reconcileLocal(ctx context.Context, progress chan<- ProgressUpdate, scanner services.Scanner, r *reconcile.Reconciler, logger *log.Logger, folder string, remote []models.Track) (*localSnapshot, error) {
	if scanner == nil {
		return nil, fmt.Errorf("%w: no scanner configured for %s", shared.ErrInvalidInput, folder)
	}

	sendProgress(progress, scanningUpdate(folder))
	local, err := scanner.ScanFolder(ctx, folder)
	if err != nil {
		return nil, err
	}
	idx := reconcile.BuildIndex(local)
	sendProgress(progress, scannedUpdate(len(local), idx.Skipped()))

	matches, missing := r.Reconcile(remote, idx)
	sendProgress(progress, reconciledUpdate(matches, len(missing)))
	logger.Info("reconciled", "remote", len(remote), "local", len(local), "missing", len(missing), "skipped_local", idx.Skipped())

	return &localSnapshot{local: local, matches: matches, missing: missing, skipped: idx.Skipped()}, nil
}
