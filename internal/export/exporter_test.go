package export

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"testing"

	"github.com/scriptcut/scriptcut-editor/internal/backend"
	"github.com/scriptcut/scriptcut-editor/internal/project"
)

type fakeSource map[string]*project.Project

func (f fakeSource) GetProject(_ context.Context, id string) (*project.Project, error) {
	p, ok := f[id]
	if !ok {
		return nil, project.ErrNotFound
	}
	return p, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestExporter_WritesEDL(t *testing.T) {
	src := fakeSource{"p1": {
		ID:   "p1",
		Name: "Launch/Video",
		Type: project.TypeVideo,
		Content: project.Content{
			VideoURL: "file:///media/take.mp4",
			Timeline: []project.TimelineTrack{{Label: "Video", Clips: []project.Clip{{Width: 50}, {Width: 50, Removed: true}}}},
		},
	}}
	exp := NewExporter(src, t.TempDir(), discardLogger())
	exp.SetDuration(func() float64 { return 120 })

	resp, err := exp.Export(context.Background(), "p1")
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if !resp.Success {
		t.Fatal("Export() success = false")
	}

	u, err := url.Parse(resp.DownloadURL)
	if err != nil || u.Scheme != "file" || !strings.HasSuffix(u.Path, "Launch_Video-p1.edl") {
		t.Fatalf("download url = %q", resp.DownloadURL)
	}
	data, err := os.ReadFile(u.Path)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	edl := string(data)
	if !strings.Contains(edl, "00:00:00:00 00:01:00:00 00:00:00:00 00:01:00:00") {
		t.Errorf("expected one 60s event, got:\n%s", edl)
	}
	if !strings.Contains(edl, "* SOURCE FILE:  /media/take.mp4") {
		t.Errorf("source path missing:\n%s", edl)
	}
}

func TestExporter_Errors(t *testing.T) {
	src := fakeSource{"empty": {ID: "empty", Name: "Empty", Content: project.Content{Timeline: []project.TimelineTrack{}}}}
	exp := NewExporter(src, t.TempDir(), discardLogger())

	if _, err := exp.Export(context.Background(), "missing"); !errors.Is(err, project.ErrNotFound) {
		t.Errorf("missing project error = %v", err)
	}
	if _, err := exp.Export(context.Background(), "empty"); !errors.Is(err, project.ErrValidation) {
		t.Errorf("empty timeline error = %v", err)
	}
}

func TestWithLocalExport(t *testing.T) {
	src := fakeSource{"p1": {ID: "p1", Name: "Demo", Content: project.Content{
		Timeline: []project.TimelineTrack{{Clips: []project.Clip{{Width: 100}}}},
	}}}
	ai := WithLocalExport(backend.NewStubAI(discardLogger()), NewExporter(src, t.TempDir(), discardLogger()))

	resp, err := ai.Export(context.Background(), "p1")
	if err != nil || !strings.HasPrefix(resp.DownloadURL, "file://") {
		t.Fatalf("Export() = %+v, %v", resp, err)
	}

	tts, err := ai.TTS(context.Background(), backend.TTSRequest{Text: "one two three four five"})
	if err != nil || !tts.Success || tts.Duration != 2 {
		t.Errorf("TTS() = %+v, %v; want stub response", tts, err)
	}
}
