package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/scsync/internal/formatter"
	"github.com/desertthunder/scsync/internal/shared"
	"github.com/desertthunder/scsync/internal/tasks"
)

var (
	okStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Bold(true)
	warnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFA500"))
)

// Acquire lists the collection, reconciles it when a local folder is given and acquires every
// missing track, appending one row per track to the acquisition log.
func (r *Runner) Acquire(ctx context.Context, cmd *cli.Command) error {
	collectionURL := cmd.StringArg("collection_url")
	folder := cmd.StringArg("local_folder")

	provider, err := r.provider(collectionURL)
	if err != nil {
		return err
	}

	outputDir := pathFlag(cmd, "output", r.config.Output.Dir)
	logPath := pathFlag(cmd, "log", r.config.Output.LogPath)
	if logPath == "" {
		return fmt.Errorf("%w: acquisition log path", shared.ErrMissingArgument)
	}

	pacer := r.pacer
	if pacer == nil {
		minDelay, maxDelay := r.config.Pacing.MinDelay, r.config.Pacing.MaxDelay
		if cmd.IsSet("min-delay") {
			minDelay = cmd.Duration("min-delay")
		}
		if cmd.IsSet("max-delay") {
			maxDelay = cmd.Duration("max-delay")
		}
		pacer = tasks.NewRandomPacer(minDelay, maxDelay)
	}

	alog, err := formatter.OpenAcquisitionLog(logPath)
	if err != nil {
		return err
	}

	logger := shared.WithLogger(r.logger, "run", shared.GenerateID())
	logger.Info("starting acquisition", "url", collectionURL, "folder", folder, "output", outputDir, "log", logPath)

	engine := tasks.NewAcquireEngine(tasks.AcquireDeps{
		Provider:   provider,
		Fetcher:    r.fetcher,
		Scanner:    r.scanner,
		Reconciler: r.reconciler(),
		Pacer:      pacer,
		Logger:     logger,
	})

	progressCh := make(chan tasks.ProgressUpdate, 50)
	wait := r.printProgress(progressCh)

	result, err := engine.Run(ctx, progressCh, alog, tasks.AcquireOpts{
		CollectionURL: collectionURL,
		LocalFolder:   folder,
		OutputDir:     outputDir,
	})
	close(progressCh)
	wait()

	if cerr := alog.Close(); cerr != nil {
		err = errors.Join(err, cerr)
	}
	if err != nil {
		return err
	}

	r.writePlain("\n")
	r.writePlainHeader("Acquisition Complete!")
	r.writePlain("Native downloads: %d\n", result.Native)
	r.writePlain("Fetched:          %d\n", result.Fetched)
	r.writePlain("Fetch failures:   %d\n", result.FetchFailed)
	r.writePlain("Errors:           %d\n", result.Errors)
	if result.SkippedStubs > 0 {
		r.writePlain("%s\n", warnStyle.Render(fmt.Sprintf("Skipped %d entries without a url.", result.SkippedStubs)))
	}
	r.writePlain("Log: %s\n", alog.Path())
	return nil
}
