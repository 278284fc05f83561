package session

import (
	"time"

	"github.com/scriptcut/scriptcut-editor/internal/project"
	"github.com/scriptcut/scriptcut-editor/internal/script"
)

type ProjectInfo struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	MediaURL string `json:"mediaUrl,omitempty"`
}

type PlaybackView struct {
	CurrentTime   float64 `json:"currentTime"`
	Duration      float64 `json:"duration"`
	IsPlaying     bool    `json:"isPlaying"`
	Mode          string  `json:"mode"`
	Status        string  `json:"status"`
	CursorPercent float64 `json:"cursorPercent"`
	Display       string  `json:"display"`
}

// Snapshot is the full renderable state of a session.
type Snapshot struct {
	Loaded   bool                    `json:"loaded"`
	Project  *ProjectInfo            `json:"project,omitempty"`
	Playback *PlaybackView           `json:"playback,omitempty"`
	Sections []script.Section        `json:"sections"`
	Focused  int                     `json:"focused"`
	Timeline []project.TimelineTrack `json:"timeline"`
	Elements []project.CanvasElement `json:"elements"`
	Busy     []string                `json:"busy"`
	Dirty    bool                    `json:"dirty"`
	SavedAt  *time.Time              `json:"savedAt,omitempty"`
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		Sections: []script.Section{},
		Focused:  -1,
		Timeline: []project.TimelineTrack{},
		Elements: []project.CanvasElement{},
		Busy:     sortedKeys(s.busy),
	}
	if !s.loaded {
		return snap
	}

	info := s.info
	st := s.clock.State()
	snap.Loaded = true
	snap.Project = &info
	snap.Playback = &PlaybackView{
		CurrentTime:   st.CurrentTime,
		Duration:      st.Duration,
		IsPlaying:     st.IsPlaying,
		Mode:          st.Mode.String(),
		Status:        string(st.Status()),
		CursorPercent: st.CursorPercent(),
		Display:       st.Display(),
	}
	snap.Sections = s.script.Numbered()
	if i, ok := s.script.Focused(); ok {
		snap.Focused = i
	}
	snap.Timeline = s.timeline.Tracks()
	snap.Elements = s.canvas.Elements()

	patch := s.patchLocked()
	snap.Dirty = hashPatch(patch) != s.savedHash
	if !s.savedAt.IsZero() {
		at := s.savedAt
		snap.SavedAt = &at
	}
	return snap
}
