package session

import (
	"time"

	"github.com/scriptcut/scriptcut-editor/internal/project"
	"github.com/scriptcut/scriptcut-editor/internal/script"
)

// Command is a user or media event fed to Dispatch.
type Command interface {
	commandName() string
}

type TogglePlayback struct{}

// Seek jumps to Fraction of the duration, clamped to [0, 1].
type Seek struct{ Fraction float64 }

type Tick struct{ Elapsed time.Duration }

type MediaMetadata struct{ Duration float64 }

type MediaTimeUpdate struct {
	Time   float64
	Paused bool
}

type MediaEnded struct{}

type AddSection struct{}

// EditSection updates section Index. Nil fields keep their current value.
type EditSection struct {
	Index   int
	Title   *string
	Content *string
}

type FocusSection struct{ Index int }

type DeleteSection struct {
	Index     int
	Confirmer script.Confirmer
}

// AddElement adds an overlay. A nil Style uses the default box style.
type AddElement struct {
	Type  string
	Text  string
	Style *project.Style
}

type RepositionElement struct{ Index int }

type AddTrack struct{}

type SplitClip struct{}

type GenerateSpeech struct{}

type Rewrite struct{}

// Translate translates the whole script. Empty languages use the defaults.
type Translate struct {
	SourceLang string
	TargetLang string
}

type AutoCut struct{}

type GenerateSubtitles struct{}

type Export struct{}

// Save persists the session. Silent saves skip notifications.
type Save struct{ Silent bool }

func (TogglePlayback) commandName() string    { return "toggle_playback" }
func (Seek) commandName() string              { return "seek" }
func (Tick) commandName() string              { return "tick" }
func (MediaMetadata) commandName() string     { return "media_metadata" }
func (MediaTimeUpdate) commandName() string   { return "media_time_update" }
func (MediaEnded) commandName() string        { return "media_ended" }
func (AddSection) commandName() string        { return "add_section" }
func (EditSection) commandName() string       { return "edit_section" }
func (FocusSection) commandName() string      { return "focus_section" }
func (DeleteSection) commandName() string     { return "delete_section" }
func (AddElement) commandName() string        { return "add_element" }
func (RepositionElement) commandName() string { return "reposition_element" }
func (AddTrack) commandName() string          { return "add_track" }
func (SplitClip) commandName() string         { return "split_clip" }
func (GenerateSpeech) commandName() string    { return "tts" }
func (Rewrite) commandName() string           { return "rewrite" }
func (Translate) commandName() string         { return "translate" }
func (AutoCut) commandName() string           { return "cuts" }
func (GenerateSubtitles) commandName() string { return "subtitles" }
func (Export) commandName() string            { return "export" }
func (Save) commandName() string              { return "save" }
