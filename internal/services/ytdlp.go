package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/desertthunder/scsync/internal/shared"
)

const defaultYTDLPPath = "yt-dlp"

// CommandRunner runs an external program and returns its standard output.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner runs programs with os/exec.
type ExecRunner struct{}

// Run executes name with args. A non-zero exit is returned as an error carrying the last line
// of standard error.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", shared.ErrToolNotFound, name)
		}
		if msg := lastLine(stderr.String()); msg != "" {
			return stdout.Bytes(), fmt.Errorf("%s: %s", name, msg)
		}
		return stdout.Bytes(), fmt.Errorf("%s: %w", name, err)
	}
	return stdout.Bytes(), nil
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if l := strings.TrimSpace(lines[i]); l != "" {
			return l
		}
	}
	return ""
}

// authArgs returns the yt-dlp credentials arguments for an OAuth token.
func authArgs(token string) []string {
	if token == "" {
		return nil
	}
	return []string{"--username", "oauth", "--password", token}
}

// politeArgs mirrors the request pacing and extractor retry policy used for every yt-dlp call.
func politeArgs() []string {
	return []string{
		"--sleep-requests", "5",
		"--extractor-retries", "10",
		"--retry-sleep", "extractor:exp=1:120",
	}
}
