package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/scsync/internal/formatter"
	"github.com/desertthunder/scsync/internal/shared"
)

// Report prints a table of the acquisition log, or its summary as JSON with --json.
func (r *Runner) Report(ctx context.Context, cmd *cli.Command) error {
	logPath := pathFlag(cmd, "log", r.config.Output.LogPath)
	if logPath == "" {
		return fmt.Errorf("%w: acquisition log path", shared.ErrMissingArgument)
	}

	records, err := formatter.ReadAcquisitionLogFile(logPath)
	if err != nil {
		return err
	}
	r.logger.Debug("read acquisition log", "path", logPath, "records", len(records))

	if cmd.Bool("json") {
		return r.writeJSON(formatter.SummarizeLog(records), cmd.Bool("pretty"))
	}
	return r.writePlain("%s\n", formatter.RenderLogReport(records))
}
