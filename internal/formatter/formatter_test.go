package formatter

import (
	"bytes"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/desertthunder/scsync/internal/models"
	th "github.com/desertthunder/scsync/internal/testing"
)

func sampleRemote() []models.Track {
	return []models.Track{
		{Artist: "Bicep", Title: "Glue", StableID: "1", SourceURL: "https://soundcloud.com/bicep/glue", Duration: models.Seconds(269.5)},
		{Artist: "Four Tet", Title: "Baby, Again", StableID: "2", SourceURL: "https://soundcloud.com/fourtet/baby", Duration: models.Seconds(240)},
		{Title: "No Artist"},
	}
}

func TestExporters(t *testing.T) {
	t.Run("ExportRemoteCSV", func(t *testing.T) {
		data, err := ExportRemoteCSV(sampleRemote())
		if err != nil {
			t.Fatalf("ExportRemoteCSV failed: %v", err)
		}

		want := "Index,Artist,Title,DurationSec,Id,Url\n" +
			"1,Bicep,Glue,269.5,1,https://soundcloud.com/bicep/glue\n" +
			"2,Four Tet,\"Baby, Again\",240,2,https://soundcloud.com/fourtet/baby\n" +
			"3,,No Artist,,,\n"
		if string(data) != want {
			t.Errorf("unexpected CSV:\n%s\nwant:\n%s", data, want)
		}
	})

	t.Run("ExportLocalCSV", func(t *testing.T) {
		data, err := ExportLocalCSV([]models.Track{
			{Artist: "Bicep", Title: "Glue", LocalPath: "/music/glue.mp3", SourceURL: "https://soundcloud.com/bicep/glue"},
		})
		if err != nil {
			t.Fatalf("ExportLocalCSV failed: %v", err)
		}

		output := string(data)
		if !strings.HasPrefix(output, "Index,Artist,Title,DurationSec,Path,SourceUrl\n") {
			t.Errorf("CSV missing headers, got: %s", output)
		}
		if !strings.Contains(output, "1,Bicep,Glue,,/music/glue.mp3,https://soundcloud.com/bicep/glue") {
			t.Errorf("CSV missing local row, got: %s", output)
		}
	})

	t.Run("ExportJoinedCSV", func(t *testing.T) {
		local := models.Track{Artist: "Bicep", Title: "Glue (Original Mix)", LocalPath: "/music/glue.mp3", Duration: models.Seconds(270)}
		results := []models.MatchResult{
			{Method: models.MatchTokens, Remote: sampleRemote()[0], LocalIndex: 0, Local: &local},
			{Method: models.MatchMissing, Remote: sampleRemote()[1], LocalIndex: -1},
		}

		data, err := ExportJoinedCSV(results)
		if err != nil {
			t.Fatalf("ExportJoinedCSV failed: %v", err)
		}

		lines := strings.Split(strings.TrimSpace(string(data)), "\n")
		if len(lines) != 3 {
			t.Fatalf("expected header + 2 rows, got %d lines", len(lines))
		}
		if lines[0] != "MatchMethod,RemoteArtist,RemoteTitle,RemoteDurationSec,RemoteId,RemoteUrl,LocalArtist,LocalTitle,LocalDurationSec,LocalPath,LocalSourceUrl" {
			t.Errorf("unexpected header %s", lines[0])
		}
		if lines[1] != "tokens,Bicep,Glue,269.5,1,https://soundcloud.com/bicep/glue,Bicep,Glue (Original Mix),270,/music/glue.mp3," {
			t.Errorf("unexpected matched row %s", lines[1])
		}
		if !strings.HasSuffix(lines[2], ",,,,,") || !strings.HasPrefix(lines[2], "missing,") {
			t.Errorf("unexpected missing row %s", lines[2])
		}
	})

	t.Run("ExportMissingText", func(t *testing.T) {
		output := string(ExportMissingText(sampleRemote()[1:]))

		want := "Missing tracks: 2\n- Four Tet - Baby, Again\n- No Artist\n"
		if output != want {
			t.Errorf("expected %q, got %q", want, output)
		}
	})
}

func TestReadRemoteCSV(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		data, err := ExportRemoteCSV(sampleRemote())
		if err != nil {
			t.Fatalf("ExportRemoteCSV failed: %v", err)
		}

		tracks, err := ReadRemoteCSV(bytes.NewReader(data))
		if err != nil {
			t.Fatalf("ReadRemoteCSV failed: %v", err)
		}
		if !reflect.DeepEqual(tracks, sampleRemote()) {
			t.Errorf("round trip mismatch:\n%+v\nwant\n%+v", tracks, sampleRemote())
		}
	})

	t.Run("byte order mark", func(t *testing.T) {
		tracks, err := ReadRemoteCSV(strings.NewReader("\ufeffIndex,Artist,Title,DurationSec,Id,Url\n1,A,B,,,\n"))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(tracks) != 1 || tracks[0].Artist != "A" {
			t.Errorf("unexpected tracks %+v", tracks)
		}
	})

	tc := []struct {
		name  string
		input string
	}{
		{name: "empty", input: ""},
		{name: "wrong header", input: "ID,Title,Artist,Album,Duration,ISRC\n"},
		{name: "bad duration", input: "Index,Artist,Title,DurationSec,Id,Url\n1,A,B,soon,,\n"},
		{name: "short row", input: "Index,Artist,Title,DurationSec,Id,Url\n1,A\n"},
	}
	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ReadRemoteCSV(strings.NewReader(tt.input)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestWriteExport(t *testing.T) {
	t.Run("creates parent directories", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out", "tracks.csv")

		written, err := WriteExport(path, []byte("x\n"))
		if err != nil {
			t.Fatalf("WriteExport failed: %v", err)
		}
		if !written {
			t.Error("expected file to be written")
		}
		th.AssertFileExists(t, path)
		if got := th.MustReadFile(t, path); got != "x\n" {
			t.Errorf("unexpected content %q", got)
		}
	})

	t.Run("empty path disables the artifact", func(t *testing.T) {
		written, err := WriteExport("  ", []byte("x"))
		if err != nil || written {
			t.Errorf("expected no-op, got written=%v err=%v", written, err)
		}
	})
}
