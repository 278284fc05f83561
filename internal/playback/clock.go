// Package playback keeps the editor's playback position, either advanced by
// a simulated timer or mirrored from a real media element.
package playback

import (
	"fmt"
	"math"
	"time"
)

const (
	// DefaultDuration is used until a media source reports its real length.
	DefaultDuration = 60.0

	// TickInterval is the simulated clock period; each tick advances the
	// position by the same amount of media time.
	TickInterval = 100 * time.Millisecond
)

type Mode int

const (
	Simulated Mode = iota
	MediaBacked
)

func (m Mode) String() string {
	if m == MediaBacked {
		return "media"
	}
	return "simulated"
}

// Status is the derived state machine position of the clock.
type Status string

const (
	StatusStopped            Status = "stopped"
	StatusPlayingSimulated   Status = "playing_simulated"
	StatusPlayingMediaBacked Status = "playing_media"
)

// State is a point-in-time view of playback.
type State struct {
	CurrentTime float64 `json:"currentTime"`
	Duration    float64 `json:"duration"`
	IsPlaying   bool    `json:"isPlaying"`
	Mode        Mode    `json:"-"`
}

func (s State) Status() Status {
	switch {
	case !s.IsPlaying:
		return StatusStopped
	case s.Mode == MediaBacked:
		return StatusPlayingMediaBacked
	default:
		return StatusPlayingSimulated
	}
}

// CursorPercent is the playhead position as a percentage of duration.
func (s State) CursorPercent() float64 {
	if s.Duration <= 0 {
		return 0
	}
	return s.CurrentTime / s.Duration * 100
}

// Display renders "MM:SS / MM:SS".
func (s State) Display() string {
	return FormatTime(s.CurrentTime) + " / " + FormatTime(s.Duration)
}

// Advance applies elapsed wall time to a simulated playing state. Reaching
// the end wraps the position to zero and stops playback.
func Advance(s State, elapsed time.Duration) State {
	if !s.IsPlaying || s.Mode != Simulated || elapsed <= 0 {
		return s
	}
	// Millisecond rounding keeps repeated 0.1s steps landing exactly on
	// whole-second durations.
	s.CurrentTime = math.Round((s.CurrentTime+elapsed.Seconds())*1000) / 1000
	if s.CurrentTime >= s.Duration {
		s.CurrentTime = 0
		s.IsPlaying = false
	}
	return s
}

// FormatTime renders seconds as zero-padded "MM:SS" using floor semantics.
func FormatTime(seconds float64) string {
	if math.IsNaN(seconds) || seconds < 0 {
		seconds = 0
	}
	mins := int(math.Floor(seconds / 60))
	secs := int(math.Floor(math.Mod(seconds, 60)))
	return fmt.Sprintf("%02d:%02d", mins, secs)
}

// MediaAction is an instruction for the media element in media-backed mode.
type MediaAction string

const (
	MediaPlay  MediaAction = "play"
	MediaPause MediaAction = "pause"
	MediaSeek  MediaAction = "seek"
	MediaLoad  MediaAction = "load"
)

type MediaCommand struct {
	Action   MediaAction `json:"action"`
	Position float64     `json:"position,omitempty"`
	Source   string      `json:"source,omitempty"`
}

// Clock owns playback state for one session. It is not safe for concurrent
// use; the session serializes access.
type Clock struct {
	state State
}

func NewClock(mode Mode) *Clock {
	return &Clock{state: State{Duration: DefaultDuration, Mode: mode}}
}

func (c *Clock) State() State { return c.state }

func (c *Clock) Mode() Mode { return c.state.Mode }

// Toggle flips the playing flag. In media-backed mode the returned command
// must be forwarded to the media element; its events then drive the clock.
func (c *Clock) Toggle() []MediaCommand {
	c.state.IsPlaying = !c.state.IsPlaying
	if c.state.Mode != MediaBacked {
		return nil
	}
	if c.state.IsPlaying {
		return []MediaCommand{{Action: MediaPlay}}
	}
	return []MediaCommand{{Action: MediaPause}}
}

// Tick advances a simulated clock. It is a no-op in media-backed mode.
func (c *Clock) Tick(elapsed time.Duration) {
	c.state = Advance(c.state, elapsed)
}

// Seek moves to a fractional position, clamped to [0, 1].
func (c *Clock) Seek(fraction float64) []MediaCommand {
	if math.IsNaN(fraction) {
		fraction = 0
	}
	fraction = math.Max(0, math.Min(1, fraction))
	c.state.CurrentTime = fraction * c.state.Duration
	if c.state.Mode != MediaBacked {
		return nil
	}
	return []MediaCommand{{Action: MediaSeek, Position: c.state.CurrentTime}}
}

// OnMetadataReady records the real media duration.
func (c *Clock) OnMetadataReady(duration float64) {
	if duration <= 0 || math.IsNaN(duration) || math.IsInf(duration, 0) {
		return
	}
	c.state.Duration = duration
	c.clamp()
}

// OnTimeUpdate mirrors the media position. mediaPaused reports the element's
// own paused flag so playback started outside Toggle is picked up.
func (c *Clock) OnTimeUpdate(t float64, mediaPaused bool) {
	if !c.state.IsPlaying && !mediaPaused {
		c.state.IsPlaying = true
	}
	c.state.CurrentTime = t
	c.clamp()
}

// SetPlaying overrides the playing flag, used to roll back a toggle the
// media element refused.
func (c *Clock) SetPlaying(playing bool) {
	c.state.IsPlaying = playing
}

func (c *Clock) OnEnded() {
	c.state.IsPlaying = false
}

func (c *Clock) clamp() {
	if math.IsNaN(c.state.CurrentTime) || c.state.CurrentTime < 0 {
		c.state.CurrentTime = 0
	}
	if c.state.CurrentTime > c.state.Duration {
		c.state.CurrentTime = c.state.Duration
	}
}
