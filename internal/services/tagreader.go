package services

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/bogem/id3v2/v2"
	"github.com/charmbracelet/log"
	"github.com/tcolgate/mp3"

	"github.com/desertthunder/scsync/internal/models"
	"github.com/desertthunder/scsync/internal/shared"
)

// originLinkPattern matches SoundCloud track links and YouTube watch/short links in free text.
var originLinkPattern = regexp.MustCompile(
	`(?i)https?://(?:on\.)?soundcloud\.com/[^\s\])"'<>]+` +
		`|https?://(?:www\.|music\.|m\.)?youtube\.com/watch\?v=[A-Za-z0-9_-]+` +
		`|https?://youtu\.be/[A-Za-z0-9_-]+`,
)

// TagReader reads one local audio file into a [models.Track].
type TagReader interface {
	ReadLocalTrack(path string) models.Track
}

// Scanner lists the tracks of a local folder.
type Scanner interface {
	ScanFolder(ctx context.Context, root string) ([]models.Track, error)
}

// ID3Reader reads ID3v2 tags from MP3 files.
type ID3Reader struct {
	logger *log.Logger
}

// NewID3Reader creates a tag reader. A nil logger uses the default logger.
func NewID3Reader(logger *log.Logger) *ID3Reader {
	if logger == nil {
		logger = log.Default()
	}
	return &ID3Reader{logger: logger}
}

// ReadLocalTrack reads artist, title, duration and origin link from path. The duration comes
// from TLEN when present and from the MPEG frames otherwise.
//
// Reading is best effort: unreadable tags give a track with only LocalPath set.
func (r *ID3Reader) ReadLocalTrack(path string) models.Track {
	t := models.Track{LocalPath: path}

	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		r.logger.Debug("unreadable tags", "path", path, "error", err)
		return t
	}
	defer tag.Close()

	t.Artist = strings.TrimSpace(tag.Artist())
	t.Title = strings.TrimSpace(tag.Title())

	if ms, err := strconv.ParseFloat(strings.TrimSpace(tag.GetTextFrame("TLEN").Text), 64); err == nil && ms >= 0 {
		t.Duration = models.Seconds(ms / 1000)
	} else {
		t.Duration = audioDuration(path)
	}

	t.SourceURL = originLink(tag)
	return t
}

// audioDuration sums the durations of the MPEG audio frames after the ID3v2 tag. It returns
// nil when no frame decodes.
func audioDuration(path string) *float64 {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	if err := skipID3v2(f); err != nil {
		return nil
	}

	var (
		d       = mp3.NewDecoder(f)
		frame   mp3.Frame
		skipped int
		total   time.Duration
		frames  int
	)
	for {
		if err := d.Decode(&frame, &skipped); err != nil {
			break
		}
		total += frame.Duration()
		frames++
	}
	if frames == 0 {
		return nil
	}
	return models.Seconds(total.Seconds())
}

// skipID3v2 positions r after a leading ID3v2 tag, or at the start when there is none.
func skipID3v2(r io.ReadSeeker) error {
	var hdr [10]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil || string(hdr[:3]) != "ID3" {
		_, serr := r.Seek(0, io.SeekStart)
		return serr
	}

	// Synchsafe size excludes the header and the optional footer.
	size := int64(hdr[6]&0x7f)<<21 | int64(hdr[7]&0x7f)<<14 | int64(hdr[8]&0x7f)<<7 | int64(hdr[9]&0x7f)
	if hdr[5]&0x10 != 0 {
		size += 10
	}
	_, err := r.Seek(10+size, io.SeekStart)
	return err
}

// originLink returns the first link found in comment frames, then user-defined text frames.
func originLink(tag *id3v2.Tag) string {
	for _, f := range tag.GetFrames(tag.CommonID("Comments")) {
		cf, ok := f.(id3v2.CommentFrame)
		if !ok {
			continue
		}
		if link := originLinkPattern.FindString(cf.Text); link != "" {
			return link
		}
	}
	for _, f := range tag.GetFrames(tag.CommonID("User defined text information frame")) {
		uf, ok := f.(id3v2.UserDefinedTextFrame)
		if !ok {
			continue
		}
		if link := originLinkPattern.FindString(uf.Value); link != "" {
			return link
		}
	}
	return ""
}

// ScanFolder reads every *.mp3 file under root (extension matched case-insensitively), in
// lexical path order.
func (r *ID3Reader) ScanFolder(ctx context.Context, root string) ([]models.Track, error) {
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", shared.ErrFolderNotFound, root)
	}

	var paths []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".mp3") {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", root, err)
	}

	sort.Strings(paths)

	tracks := make([]models.Track, 0, len(paths))
	for _, p := range paths {
		tracks = append(tracks, r.ReadLocalTrack(p))
	}

	r.logger.Debug("scanned local folder", "root", root, "files", len(tracks))
	return tracks, nil
}
