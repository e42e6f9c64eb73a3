// SoundCloud [Provider] implementation
//
// Drives the yt-dlp binary in JSON mode. Authentication uses yt-dlp's "oauth" username with the
// account token as password.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/desertthunder/scsync/internal/models"
	"github.com/desertthunder/scsync/internal/shared"
)

// ytdlpEntry is the subset of a yt-dlp info dict used for tracks.
type ytdlpEntry struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Uploader    string   `json:"uploader"`
	Artist      string   `json:"artist"`
	Creator     string   `json:"creator"`
	WebpageURL  string   `json:"webpage_url"`
	OriginalURL string   `json:"original_url"`
	URL         string   `json:"url"`
	Duration    *float64 `json:"duration"`
	DownloadURL string   `json:"download_url"`
}

// ytdlpDocument is the top-level yt-dlp -J output for either a playlist or a single track.
type ytdlpDocument struct {
	ytdlpEntry
	Type    string        `json:"_type"`
	Entries []*ytdlpEntry `json:"entries"`
}

// track converts an entry to a [models.Track].
func (e ytdlpEntry) track() models.Track {
	t := models.Track{
		Artist:    firstNonEmpty(e.Uploader, e.Artist, e.Creator),
		Title:     strings.TrimSpace(e.Title),
		SourceURL: firstNonEmpty(e.WebpageURL, e.OriginalURL, e.URL),
		StableID:  strings.TrimSpace(e.ID),
	}
	if e.Duration != nil && *e.Duration >= 0 {
		t.Duration = models.Seconds(*e.Duration)
	}
	return t
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// parseCollection decodes yt-dlp JSON into tracks, omitting null entries.
// A document without entries is treated as a single track.
func parseCollection(data []byte) ([]models.Track, error) {
	var doc ytdlpDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode yt-dlp output: %w", err)
	}

	if doc.Type != "playlist" && doc.Entries == nil {
		if doc.ID == "" && doc.WebpageURL == "" {
			return []models.Track{}, nil
		}
		return []models.Track{doc.track()}, nil
	}

	tracks := make([]models.Track, 0, len(doc.Entries))
	for _, e := range doc.Entries {
		if e == nil {
			continue
		}
		tracks = append(tracks, e.track())
	}
	return tracks, nil
}

// parseTrackInfo decodes a single-track yt-dlp document.
func parseTrackInfo(data []byte) models.InfoResult {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" || trimmed == "null" {
		return models.InfoResult{Outcome: models.Unavailable("")}
	}

	var e ytdlpEntry
	if err := json.Unmarshal([]byte(trimmed), &e); err != nil {
		return models.InfoResult{Outcome: models.Failed(fmt.Sprintf("failed to decode yt-dlp output: %v", err))}
	}

	return models.InfoResult{
		Outcome: models.OK(),
		Info: models.TrackInfo{
			Track:          e.track(),
			NativeDownload: strings.TrimSpace(e.DownloadURL) != "",
		},
	}
}

// SoundCloudOpts configures a [SoundCloudService].
type SoundCloudOpts struct {
	YTDLPPath       string
	Token           string
	RequestInterval time.Duration
	Runner          CommandRunner // Defaults to [ExecRunner]
	Prober          *LinkProber   // Nil disables purchase-link probing
	Logger          *log.Logger
}

// SoundCloudService implements [Provider] for SoundCloud sets and tracks.
type SoundCloudService struct {
	path    string
	token   string
	runner  CommandRunner
	prober  *LinkProber
	limiter *rate.Limiter
	logger  *log.Logger
}

// NewSoundCloudService creates a new SoundCloud provider.
func NewSoundCloudService(opts SoundCloudOpts) *SoundCloudService {
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

	return &SoundCloudService{
		path:    path,
		token:   opts.Token,
		runner:  runner,
		prober:  opts.Prober,
		limiter: newLimiter(opts.RequestInterval),
		logger:  logger,
	}
}

// Name returns the service name.
func (s *SoundCloudService) Name() string {
	return "SoundCloud"
}

// ListCollection runs yt-dlp -J over the set url.
func (s *SoundCloudService) ListCollection(ctx context.Context, collectionURL string, opts models.ListOptions) ([]models.Track, error) {
	args := []string{"-J", "--skip-download", "--ignore-errors"}
	if opts.Flat {
		args = append(args, "--flat-playlist")
	}
	args = append(args, politeArgs()...)
	args = append(args, authArgs(s.token)...)
	args = append(args, collectionURL)

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrListing, err)
	}

	s.logger.Debug("listing collection", "url", collectionURL, "flat", opts.Flat)
	out, err := s.runner.Run(ctx, s.path, args...)
	if err != nil && len(out) == 0 {
		return nil, fmt.Errorf("%w: %v", shared.ErrListing, err)
	}
	if err != nil {
		s.logger.Warn("yt-dlp reported errors while listing", "error", err)
	}

	tracks, perr := parseCollection(out)
	if perr != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrListing, perr)
	}
	return tracks, nil
}

// FetchTrackInfo resolves the full info dict for one track.
func (s *SoundCloudService) FetchTrackInfo(ctx context.Context, t models.Track) models.InfoResult {
	if t.SourceURL == "" {
		return models.InfoResult{Outcome: models.Failed("track has no url")}
	}

	args := []string{"-J", "--skip-download", "--no-playlist", "--format", "original/best"}
	args = append(args, politeArgs()...)
	args = append(args, authArgs(s.token)...)
	args = append(args, t.SourceURL)

	if err := s.limiter.Wait(ctx); err != nil {
		return models.InfoResult{Outcome: models.Failed(err.Error())}
	}

	out, err := s.runner.Run(ctx, s.path, args...)
	if err != nil {
		return models.InfoResult{Outcome: models.Failed(err.Error())}
	}
	return parseTrackInfo(out)
}

// ProbeExternalLink delegates to the configured [LinkProber].
func (s *SoundCloudService) ProbeExternalLink(ctx context.Context, trackURL string) models.LinkResult {
	if s.prober == nil {
		return models.LinkResult{Outcome: models.Unavailable("probing disabled")}
	}
	return s.prober.Probe(ctx, trackURL)
}

// newLimiter allows one request per interval. A non-positive interval disables limiting.
func newLimiter(interval time.Duration) *rate.Limiter {
	if interval <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(interval), 1)
}
