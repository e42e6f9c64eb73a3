package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/scsync/internal/formatter"
	"github.com/desertthunder/scsync/internal/shared"
	"github.com/desertthunder/scsync/internal/tasks"
)

// Sync reconciles a remote collection against a local folder and reports the missing tracks.
//
// Returns an error wrapping [shared.ErrMissingTracks] when anything is missing.
func (r *Runner) Sync(ctx context.Context, cmd *cli.Command) error {
	collectionURL := cmd.StringArg("collection_url")
	folder := cmd.StringArg("local_folder")
	if folder == "" {
		return fmt.Errorf("%w: local folder", shared.ErrMissingArgument)
	}

	provider, err := r.provider(collectionURL)
	if err != nil {
		return err
	}

	out := r.config.Output
	opts := tasks.SyncOpts{
		CollectionURL: collectionURL,
		LocalFolder:   folder,
		RemoteCSV:     pathFlag(cmd, "csv", out.TracksCSV),
		LocalCSV:      pathFlag(cmd, "local-csv", out.LocalCSV),
		JoinedCSV:     pathFlag(cmd, "joined-csv", out.JoinedCSV),
		MissingCSV:    pathFlag(cmd, "missing-csv", out.MissingCSV),
	}

	r.logger.Info("starting sync", "url", collectionURL, "folder", folder, "provider", provider.Name())

	progressCh := make(chan tasks.ProgressUpdate, 50)
	wait := r.printProgress(progressCh)

	engine := tasks.NewSyncEngine(provider, r.scanner, r.reconciler(), r.logger)
	result, err := engine.Sync(ctx, progressCh, opts)
	close(progressCh)
	wait()

	if err != nil {
		return err
	}

	if result.Skipped > 0 {
		r.writePlain("Note: skipped %d local MP3(s) with missing/broken ID3 artist/title tags.\n", result.Skipped)
	}

	if len(result.Missing) == 0 {
		r.writePlain("%s\n", okStyle.Render(fmt.Sprintf("✓ All %d tracks are present locally.", len(result.Remote))))
		return nil
	}

	r.writePlain("\n%s", formatter.ExportMissingText(result.Missing))
	return fmt.Errorf("%w: %d of %d", shared.ErrMissingTracks, len(result.Missing), len(result.Remote))
}
