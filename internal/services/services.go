package services

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/desertthunder/scsync/internal/models"
	"github.com/desertthunder/scsync/internal/shared"
)

// Provider is a remote track collection source (SoundCloud set, YouTube playlist).
//
// Per-track lookups never return errors: failures are reported through [models.Outcome] so that
// one bad track cannot abort a batch.
type Provider interface {
	// Name returns the name of the provider (e.g., "SoundCloud")
	Name() string

	// ListCollection enumerates the tracks of a collection in collection order.
	// Entries the provider returns as null are omitted. Errors wrap [shared.ErrListing].
	ListCollection(ctx context.Context, collectionURL string, opts models.ListOptions) ([]models.Track, error)

	// FetchTrackInfo returns the full detail record for a track, including the native download flag.
	FetchTrackInfo(ctx context.Context, t models.Track) models.InfoResult

	// ProbeExternalLink looks for a third-party purchase/download link on the track page.
	ProbeExternalLink(ctx context.Context, trackURL string) models.LinkResult
}

// Fetcher downloads a single track into a directory.
type Fetcher interface {
	Fetch(ctx context.Context, trackURL, destDir string) models.Outcome
}

// Providers routes collection urls to the provider serving their host.
type Providers struct {
	SoundCloud Provider
	YouTube    Provider
}

// Resolve returns the provider for rawURL based on its host.
func (p Providers) Resolve(rawURL string) (Provider, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("%w: %s", shared.ErrUnsupportedURL, rawURL)
	}

	host := strings.ToLower(u.Hostname())
	host = strings.TrimPrefix(host, "www.")
	host = strings.TrimPrefix(host, "m.")

	var provider Provider
	switch host {
	case "soundcloud.com", "on.soundcloud.com":
		provider = p.SoundCloud
	case "youtube.com", "music.youtube.com", "youtu.be":
		provider = p.YouTube
	}

	if provider == nil {
		return nil, fmt.Errorf("%w: %s", shared.ErrUnsupportedURL, rawURL)
	}
	return provider, nil
}
