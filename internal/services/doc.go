// Package services defines the [Provider] interface for remote track collections and the
// collaborators used around it: a [Fetcher] for downloads and a [TagReader] for local files.
//
// # Providers
//
// [SoundCloudService] shells out to yt-dlp in JSON mode and maps its info dicts to
// models.Track (artist is the uploader, then artist, then creator; url is webpage_url, then
// original_url). A non-empty download_url marks a native download.
//
// [YouTubeService] uses github.com/kkdai/youtube/v2 directly and never reports a native
// download or purchase link.
//
// [Providers.Resolve] picks one by collection host.
//
// # Purchase links
//
// [LinkProber] fetches a SoundCloud track page, walks its script elements and extracts the
// purchase_url from the window.__sc_hydration payload. An OAuth token, when configured, is
// attached through an oauth2 static token source.
//
// # Fetching
//
// [YTDLPFetcher] downloads best audio as 320k MP3 with metadata and artwork, and stores the
// page url in the comment tag so the next scan links the file back to its remote track.
//
// # Local files
//
// [ID3Reader] reads artist, title, TLEN and the first origin link found in COMM (then TXXX)
// frames. [ID3Reader.ScanFolder] walks a folder for *.mp3 files.
//
// # Error Handling
//
// Per-track calls return models.Outcome values and never errors. Listing errors wrap
// [shared.ErrListing]; unknown hosts give [shared.ErrUnsupportedURL]; a missing yt-dlp binary
// gives [shared.ErrToolNotFound].
package services
