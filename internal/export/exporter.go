package export

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"

	"github.com/scriptcut/scriptcut-editor/internal/backend"
	"github.com/scriptcut/scriptcut-editor/internal/playback"
	"github.com/scriptcut/scriptcut-editor/internal/project"
)

const (
	DefaultFrameRate = 30.0
	maxNameLen       = 80
)

// Source reads saved projects.
type Source interface {
	GetProject(ctx context.Context, id string) (*project.Project, error)
}

// Exporter writes EDL files for saved projects into a directory. It exports
// the stored document, so unsaved edits are not included.
type Exporter struct {
	src       Source
	dir       string
	frameRate float64
	duration  func() float64
	logger    *slog.Logger
}

func NewExporter(src Source, dir string, logger *slog.Logger) *Exporter {
	return &Exporter{
		src:       src,
		dir:       dir,
		frameRate: DefaultFrameRate,
		duration:  func() float64 { return playback.DefaultDuration },
		logger:    logger,
	}
}

// SetDuration supplies the media length the track widths are relative to,
// typically the live playback duration.
func (e *Exporter) SetDuration(f func() float64) {
	e.duration = f
}

// Export writes <dir>/<name>-<id>.edl and returns its file URL.
func (e *Exporter) Export(ctx context.Context, projectID string) (*backend.ExportResponse, error) {
	p, err := e.src.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if len(p.Content.Timeline) == 0 {
		return nil, project.Invalid("project has no timeline to export")
	}

	duration := e.duration()
	if duration <= 0 {
		duration = playback.DefaultDuration
	}
	source := p.MediaURL()
	if path, ok := playback.LocalPath(source); ok {
		source = path
	}

	events := Events(p.Content.Timeline[0], duration, source)
	edl := GenerateEDL(events, p.Name, e.frameRate)

	if err := os.MkdirAll(e.dir, 0755); err != nil {
		return nil, fmt.Errorf("create export dir: %w", err)
	}
	name := SanitizeName(p.Name, maxNameLen)
	if name == "" {
		name = "project"
	}
	path := filepath.Join(e.dir, fmt.Sprintf("%s-%s.edl", name, SanitizeName(p.ID, 0)))
	if err := os.WriteFile(path, []byte(edl), 0644); err != nil {
		return nil, fmt.Errorf("write edl: %w", err)
	}

	e.logger.Info("project exported", "project_id", projectID, "events", len(events), "path", path)
	return &backend.ExportResponse{
		Success:     true,
		DownloadURL: (&url.URL{Scheme: "file", Path: filepath.ToSlash(path)}).String(),
	}, nil
}

// localAI serves Export from an Exporter and everything else from the
// wrapped services.
type localAI struct {
	backend.AI
	exporter *Exporter
}

func (a localAI) Export(ctx context.Context, projectID string) (*backend.ExportResponse, error) {
	return a.exporter.Export(ctx, projectID)
}

// WithLocalExport returns ai with Export replaced by exp.
func WithLocalExport(ai backend.AI, exp *Exporter) backend.AI {
	return localAI{AI: ai, exporter: exp}
}
