// YouTube [Provider] implementation
//
// Uses the kkdai/youtube client for playlist and video metadata. The channel name stands in
// for the artist.
package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/kkdai/youtube/v2"
	"golang.org/x/time/rate"

	"github.com/desertthunder/scsync/internal/models"
	"github.com/desertthunder/scsync/internal/shared"
)

const youtubeWatchURL = "https://www.youtube.com/watch?v="

// YouTubeOpts configures a [YouTubeService].
type YouTubeOpts struct {
	HTTPClient      *http.Client
	RequestInterval time.Duration
	Logger          *log.Logger
}

// YouTubeService implements [Provider] for YouTube playlists and videos.
type YouTubeService struct {
	client  *youtube.Client
	limiter *rate.Limiter
	logger  *log.Logger
}

// NewYouTubeService creates a new YouTube provider.
func NewYouTubeService(opts YouTubeOpts) *YouTubeService {
	client := &youtube.Client{}
	if opts.HTTPClient != nil {
		client.HTTPClient = opts.HTTPClient
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	return &YouTubeService{
		client:  client,
		limiter: newLimiter(opts.RequestInterval),
		logger:  logger,
	}
}

// Name returns the service name.
func (y *YouTubeService) Name() string {
	return "YouTube"
}

// ListCollection lists a playlist, or a single video when the url has no playlist id.
//
// Playlist entries already carry full metadata, so [models.ListOptions.Flat] has no effect.
func (y *YouTubeService) ListCollection(ctx context.Context, collectionURL string, _ models.ListOptions) ([]models.Track, error) {
	if err := y.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrListing, err)
	}

	if !isPlaylistURL(collectionURL) {
		video, err := y.client.GetVideoContext(ctx, collectionURL)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrListing, err)
		}
		return []models.Track{videoTrack(video)}, nil
	}

	playlist, err := y.client.GetPlaylistContext(ctx, collectionURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrListing, err)
	}

	y.logger.Debug("listed playlist", "id", playlist.ID, "title", playlist.Title, "entries", len(playlist.Videos))

	tracks := make([]models.Track, 0, len(playlist.Videos))
	for _, entry := range playlist.Videos {
		if entry == nil || entry.ID == "" {
			continue
		}
		tracks = append(tracks, models.Track{
			Artist:    strings.TrimSpace(entry.Author),
			Title:     strings.TrimSpace(entry.Title),
			SourceURL: youtubeWatchURL + entry.ID,
			StableID:  entry.ID,
			Duration:  durationSeconds(entry.Duration),
		})
	}
	return tracks, nil
}

// FetchTrackInfo resolves video metadata. YouTube offers no first-party download, so
// NativeDownload is always false.
func (y *YouTubeService) FetchTrackInfo(ctx context.Context, t models.Track) models.InfoResult {
	if t.SourceURL == "" {
		return models.InfoResult{Outcome: models.Failed("track has no url")}
	}
	if err := y.limiter.Wait(ctx); err != nil {
		return models.InfoResult{Outcome: models.Failed(err.Error())}
	}

	video, err := y.client.GetVideoContext(ctx, t.SourceURL)
	if err != nil {
		return models.InfoResult{Outcome: models.Failed(err.Error())}
	}
	if video == nil {
		return models.InfoResult{Outcome: models.Unavailable("")}
	}

	return models.InfoResult{Outcome: models.OK(), Info: models.TrackInfo{Track: videoTrack(video)}}
}

// ProbeExternalLink always reports unavailable; YouTube pages carry no purchase link.
func (y *YouTubeService) ProbeExternalLink(_ context.Context, _ string) models.LinkResult {
	return models.LinkResult{Outcome: models.Unavailable("not supported")}
}

func videoTrack(v *youtube.Video) models.Track {
	return models.Track{
		Artist:    strings.TrimSpace(v.Author),
		Title:     strings.TrimSpace(v.Title),
		SourceURL: youtubeWatchURL + v.ID,
		StableID:  v.ID,
		Duration:  durationSeconds(v.Duration),
	}
}

func durationSeconds(d time.Duration) *float64 {
	if d <= 0 {
		return nil
	}
	return models.Seconds(d.Seconds())
}

func isPlaylistURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return u.Query().Get("list") != ""
}
