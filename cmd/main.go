package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/desertthunder/scsync/internal/shared"
)

func main() {
	logger := shared.NewLogger(nil)
	runner := NewRunner(RunnerOpts{Logger: logger})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := newApp(runner).Run(ctx, os.Args)
	cancel()

	code := exitCode(err)
	if code == 1 {
		logger.Error("application error", "error", err)
	}
	os.Exit(code)
}

// exitCode maps a command error to the process exit status: 2 when tracks are missing, 1 for
// any other error.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, shared.ErrMissingTracks):
		return 2
	default:
		return 1
	}
}
