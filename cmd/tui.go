package main

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/scsync/internal/formatter"
	"github.com/desertthunder/scsync/internal/shared"
	"github.com/desertthunder/scsync/internal/tasks"
	"github.com/desertthunder/scsync/internal/ui"
)

// TUI launches the interactive terminal UI for acquisition.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) (err error) {
	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/scsync-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	collectionURL := cmd.StringArg("collection_url")
	provider, err := r.provider(collectionURL)
	if err != nil {
		return err
	}

	logPath := pathFlag(cmd, "log", r.config.Output.LogPath)
	alog, err := formatter.OpenAcquisitionLog(logPath)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, alog.Close())
	}()

	pacer := r.pacer
	if pacer == nil {
		pacer = tasks.NewRandomPacer(r.config.Pacing.MinDelay, r.config.Pacing.MaxDelay)
	}

	engine := tasks.NewAcquireEngine(tasks.AcquireDeps{
		Provider:   provider,
		Fetcher:    r.fetcher,
		Scanner:    r.scanner,
		Reconciler: r.reconciler(),
		Pacer:      pacer,
		Logger:     shared.WithLogger(r.logger, "run", shared.GenerateID()),
	})

	model := ui.NewModel(ctx, engine, alog, tasks.AcquireOpts{
		CollectionURL: collectionURL,
		LocalFolder:   cmd.StringArg("local_folder"),
		OutputDir:     pathFlag(cmd, "output", r.config.Output.Dir),
	})
	p := tea.NewProgram(model, tea.WithContext(ctx))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
