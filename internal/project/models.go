// Package project defines the persisted project document shared by the
// editor session, the project stores and the backend client.
package project

import (
	"time"
)

const (
	TypeVideo  = "video"
	TypeScript = "script"

	// DefaultVideoURL is the preview source used for video projects that were
	// created without an uploaded file.
	DefaultVideoURL = "https://commondatastorage.googleapis.com/gtv-videos-bucket/sample/BigBuckBunny.mp4"
)

// Project is the unit of work loaded into an editor session.
type Project struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Type    string  `json:"type"`
	Content Content `json:"content"`
}

// IsMediaBacked reports whether playback for this project is driven by a
// real media source instead of the simulated clock.
func (p *Project) IsMediaBacked() bool {
	return p.Type == TypeVideo || p.Content.VideoURL != ""
}

// MediaURL returns the media source to attach for media-backed projects.
func (p *Project) MediaURL() string {
	if p.Content.VideoURL != "" {
		return p.Content.VideoURL
	}
	if p.Type == TypeVideo {
		return DefaultVideoURL
	}
	return ""
}

// Clone returns a deep copy of the project.
func (p *Project) Clone() *Project {
	if p == nil {
		return nil
	}
	cp := *p
	cp.Content = p.Content.Clone()
	return &cp
}

type ScriptSection struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type TimelineTrack struct {
	Label string `json:"label"`
	Clips []Clip `json:"clips"`
}

type Clip struct {
	Width   Percent `json:"width"`
	Color   string  `json:"color"`
	Opacity float64 `json:"opacity,omitempty"`
	Removed bool    `json:"removed,omitempty"`
	Reason  string  `json:"reason,omitempty"`
	Title   string  `json:"title,omitempty"`
}

type CanvasElement struct {
	Type  string `json:"type"`
	Text  string `json:"text"`
	Style Style  `json:"style"`
}

// Patch carries the content fields an editor session recomputes on save.
// Everything else in Content is owned by the backend and left untouched.
type Patch struct {
	Scripts      []ScriptSection
	Timeline     []TimelineTrack
	Elements     []CanvasElement
	LastModified time.Time
}

// CloneTracks returns a deep copy of tracks, preserving nil.
func CloneTracks(tracks []TimelineTrack) []TimelineTrack {
	if tracks == nil {
		return nil
	}
	out := make([]TimelineTrack, len(tracks))
	for i, t := range tracks {
		out[i] = TimelineTrack{Label: t.Label, Clips: append([]Clip(nil), t.Clips...)}
		if t.Clips != nil && out[i].Clips == nil {
			out[i].Clips = []Clip{}
		}
	}
	return out
}

// CloneSections returns a copy of sections, preserving nil.
func CloneSections(sections []ScriptSection) []ScriptSection {
	if sections == nil {
		return nil
	}
	return append(make([]ScriptSection, 0, len(sections)), sections...)
}

// CloneElements returns a deep copy of elements, preserving nil.
func CloneElements(elements []CanvasElement) []CanvasElement {
	if elements == nil {
		return nil
	}
	out := make([]CanvasElement, len(elements))
	for i, el := range elements {
		out[i] = CanvasElement{Type: el.Type, Text: el.Text, Style: el.Style.Clone()}
	}
	return out
}
