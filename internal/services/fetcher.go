package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/desertthunder/scsync/internal/models"
)

// FetcherOpts configures a [YTDLPFetcher].
type FetcherOpts struct {
	YTDLPPath       string
	Token           string
	RequestInterval time.Duration
	Runner          CommandRunner
	Logger          *log.Logger
}

// YTDLPFetcher implements [Fetcher] by downloading best audio with yt-dlp and converting it to
// 320k MP3 with embedded metadata and artwork.
//
// The track's page url is written to the comment tag so that later scans recover it as the
// origin link.
type YTDLPFetcher struct {
	path    string
	token   string
	runner  CommandRunner
	limiter *rate.Limiter
	logger  *log.Logger
}

// NewYTDLPFetcher creates a new fetcher.
func NewYTDLPFetcher(opts FetcherOpts) *YTDLPFetcher {
	path := opts.YTDLPPath
	if path == "" {
		path = defaultYTDLPPath
	}
	runner := opts.Runner
	if runner == nil {
		runner = ExecRunner{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	return &YTDLPFetcher{
		path:    path,
		token:   opts.Token,
		runner:  runner,
		limiter: newLimiter(opts.RequestInterval),
		logger:  logger,
	}
}

// Fetch downloads trackURL into destDir, creating it when needed. Fetch is attempted once.
func (f *YTDLPFetcher) Fetch(ctx context.Context, trackURL, destDir string) models.Outcome {
	if trackURL == "" {
		return models.Failed("track has no url")
	}
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return models.Failed(fmt.Sprintf("failed to create output directory: %v", err))
	}
	if err := f.limiter.Wait(ctx); err != nil {
		return models.Failed(err.Error())
	}

	args := fetchArgs(trackURL, destDir, f.token)

	f.logger.Debug("fetching track", "url", trackURL, "dest", destDir)
	if _, err := f.runner.Run(ctx, f.path, args...); err != nil {
		return models.Failed(err.Error())
	}
	return models.OK()
}

func fetchArgs(trackURL, destDir, token string) []string {
	args := []string{
		"--no-playlist",
		"--format", "bestaudio/best",
		"--output", filepath.Join(destDir, "%(title)s.%(ext)s"),
		"--extract-audio",
		"--audio-format", "mp3",
		"--audio-quality", "320K",
		"--embed-metadata",
		"--parse-metadata", "webpage_url:%(meta_comment)s",
		"--embed-thumbnail",
		"--sleep-interval", "5",
		"--max-sleep-interval", "20",
	}
	args = append(args, politeArgs()...)
	args = append(args, authArgs(token)...)
	return append(args, trackURL)
}
