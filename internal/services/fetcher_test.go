package services

import (
	"context"
	"errors"
	"path/filepath"
	"slices"
	"testing"

	"github.com/desertthunder/scsync/internal/models"
	tu "github.com/desertthunder/scsync/internal/testing"
)

func TestYTDLPFetcher(t *testing.T) {
	ctx := context.Background()

	t.Run("downloads mp3 into destination", func(t *testing.T) {
		dest := filepath.Join(t.TempDir(), "downloads", "playlist")
		runner := &tu.MockRunner{}
		f := NewYTDLPFetcher(FetcherOpts{Token: "secret", Runner: runner})

		got := f.Fetch(ctx, "https://soundcloud.com/bicep/glue", dest)
		if !got.IsOK() {
			t.Fatalf("expected OK, got %+v", got)
		}
		tu.AssertDirExists(t, dest)

		if len(runner.Calls) != 1 {
			t.Fatalf("expected a single attempt, got %d", len(runner.Calls))
		}
		args := runner.LastArgs()
		for _, want := range []string{
			"--extract-audio", "mp3", "320K", "--embed-metadata", "--embed-thumbnail",
			"webpage_url:%(meta_comment)s", filepath.Join(dest, "%(title)s.%(ext)s"), "secret",
		} {
			if !slices.Contains(args, want) {
				t.Errorf("expected %q in args %v", want, args)
			}
		}
		if args[len(args)-1] != "https://soundcloud.com/bicep/glue" {
			t.Errorf("expected url last, got %v", args)
		}
	})

	t.Run("failure carries the tool message", func(t *testing.T) {
		runner := &tu.MockRunner{Err: errors.New("yt-dlp: ERROR: Unable to download webpage")}
		f := NewYTDLPFetcher(FetcherOpts{Runner: runner})

		got := f.Fetch(ctx, "https://soundcloud.com/bicep/glue", t.TempDir())
		if got.Status != models.OutcomeFailed {
			t.Fatalf("expected failed outcome, got %+v", got)
		}
		if got.Reason != "yt-dlp: ERROR: Unable to download webpage" {
			t.Errorf("unexpected reason %q", got.Reason)
		}
		if len(runner.Calls) != 1 {
			t.Errorf("expected no retry, got %d calls", len(runner.Calls))
		}
	})

	t.Run("missing url", func(t *testing.T) {
		runner := &tu.MockRunner{}
		got := NewYTDLPFetcher(FetcherOpts{Runner: runner}).Fetch(ctx, "", t.TempDir())
		if got.Status != models.OutcomeFailed || len(runner.Calls) != 0 {
			t.Errorf("expected failed outcome without invoking yt-dlp, got %+v", got)
		}
	})
}
