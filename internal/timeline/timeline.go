// Package timeline models the ordered tracks of clips shown under the
// preview. Clip widths are percentages of the project duration.
package timeline

import (
	"errors"
	"math/rand/v2"

	"github.com/scriptcut/scriptcut-editor/internal/project"
)

const (
	KeptColor      = "#667eea"
	RemovedColor   = "rgba(239, 68, 68, 0.3)"
	VoiceoverColor = "#8b5cf6"

	NewTrackLabel   = "New Clip"
	CutTrackLabel   = "Video (AI Cut)"
	VoiceoverTitle  = "AI Voiceover"
	splitWidth      = project.Percent(15)
	splitOpacity    = 0.8
	newTrackWidth   = project.Percent(20)
	minKeptSegment  = 1.0
	removedTitlePfx = "AI Removed: "
)

// Palette is the colour set new tracks draw from.
var Palette = []string{"#f472b6", "#34d399", "#60a5fa", "#a78bfa"}

var (
	ErrNoClips         = errors.New("timeline has no clips to split")
	ErrInvalidDuration = errors.New("total duration must be positive")
)

// Cut is a silence range in seconds reported by the auto-cut service.
type Cut struct {
	Start  float64 `json:"start"`
	End    float64 `json:"end"`
	Reason string  `json:"reason"`
}

// Rand is the randomness a Model needs; *rand.Rand satisfies it.
type Rand interface {
	IntN(n int) int
}

type Model struct {
	tracks []project.TimelineTrack
}

// DefaultTracks is the timeline a project starts with.
func DefaultTracks() []project.TimelineTrack {
	return []project.TimelineTrack{
		{Label: "Video", Clips: []project.Clip{{Width: 100, Color: "#667eea"}}},
		{Label: "Audio", Clips: []project.Clip{{Width: 40, Color: "#d4229b"}}},
	}
}

// New hydrates a model. A nil slice means no timeline was persisted and the
// defaults are seeded; an empty slice stays empty.
func New(tracks []project.TimelineTrack) *Model {
	if tracks == nil {
		return &Model{tracks: DefaultTracks()}
	}
	return &Model{tracks: project.CloneTracks(tracks)}
}

// Tracks returns a copy of the current tracks.
func (m *Model) Tracks() []project.TimelineTrack {
	out := project.CloneTracks(m.tracks)
	if out == nil {
		out = []project.TimelineTrack{}
	}
	return out
}

func (m *Model) Len() int { return len(m.tracks) }

// AddTrack appends a track holding a single 20% clip in a palette colour.
func (m *Model) AddTrack(rng Rand) project.TimelineTrack {
	var idx int
	if rng != nil {
		idx = rng.IntN(len(Palette))
	} else {
		idx = rand.IntN(len(Palette))
	}
	track := project.TimelineTrack{
		Label: NewTrackLabel,
		Clips: []project.Clip{{Width: newTrackWidth, Color: Palette[idx]}},
	}
	m.tracks = append(m.tracks, track)
	return track
}

// SplitClip narrows the first clip on the timeline to 15% and inserts a
// translucent copy right after it. Other clips are not resized.
func (m *Model) SplitClip() error {
	for ti := range m.tracks {
		clips := m.tracks[ti].Clips
		if len(clips) == 0 {
			continue
		}
		clips[0].Width = splitWidth
		clone := clips[0]
		clone.Opacity = splitOpacity

		out := make([]project.Clip, 0, len(clips)+1)
		out = append(out, clips[0], clone)
		out = append(out, clips[1:]...)
		m.tracks[ti].Clips = out
		return nil
	}
	return ErrNoClips
}

// ApplyCuts rebuilds the first track from a cut list. Cuts are taken in the
// order given; kept gaps of 1% or less are dropped, the trailing segment is
// always emitted.
func (m *Model) ApplyCuts(cuts []Cut, totalDuration float64) error {
	if totalDuration <= 0 {
		return ErrInvalidDuration
	}
	width := func(seconds float64) project.Percent {
		return project.Percent(seconds / totalDuration * 100)
	}

	clips := make([]project.Clip, 0, len(cuts)*2+1)
	last := 0.0
	for _, cut := range cuts {
		if w := width(cut.Start - last); float64(w) > minKeptSegment {
			clips = append(clips, project.Clip{Width: w, Color: KeptColor})
		}
		clips = append(clips, project.Clip{
			Width:   width(cut.End - cut.Start),
			Color:   RemovedColor,
			Removed: true,
			Reason:  cut.Reason,
			Title:   removedTitlePfx + cut.Reason,
		})
		last = cut.End
	}
	clips = append(clips, project.Clip{Width: width(totalDuration - last), Color: KeptColor})

	track := project.TimelineTrack{Label: CutTrackLabel, Clips: clips}
	if len(m.tracks) == 0 {
		m.tracks = append(m.tracks, track)
		return nil
	}
	m.tracks[0] = track
	return nil
}

// AddVoiceover appends a generated narration clip to the audio track, the
// second track when there is one and the first otherwise. It reports false
// when the timeline has no tracks.
func (m *Model) AddVoiceover(seconds, totalDuration float64) bool {
	if len(m.tracks) == 0 || totalDuration <= 0 {
		return false
	}
	idx := 0
	if len(m.tracks) > 1 {
		idx = 1
	}
	w := seconds / totalDuration * 100
	if w > 100 {
		w = 100
	}
	m.tracks[idx].Clips = append(m.tracks[idx].Clips, project.Clip{
		Width: project.Percent(w),
		Color: VoiceoverColor,
		Title: VoiceoverTitle,
	})
	return true
}
