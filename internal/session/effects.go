package session

import "github.com/scriptcut/scriptcut-editor/internal/playback"

type EffectKind string

const (
	EffectPersist  EffectKind = "persist"
	EffectNotify   EffectKind = "notify"
	EffectMedia    EffectKind = "media"
	EffectDownload EffectKind = "download"
)

type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Effect is a side effect a command asks the host to perform.
type Effect struct {
	Kind     EffectKind             `json:"kind"`
	Level    Level                  `json:"level,omitempty"`
	Message  string                 `json:"message,omitempty"`
	Media    *playback.MediaCommand `json:"media,omitempty"`
	Filename string                 `json:"filename,omitempty"`
	URL      string                 `json:"url,omitempty"`
}

// Outcome is everything a dispatched command produced besides state changes.
type Outcome struct {
	Effects []Effect `json:"effects"`
}

func (o *Outcome) add(e Effect) { o.Effects = append(o.Effects, e) }

func (o *Outcome) notify(level Level, msg string) {
	o.add(Effect{Kind: EffectNotify, Level: level, Message: msg})
}

func (o *Outcome) persist() { o.add(Effect{Kind: EffectPersist}) }

func (o *Outcome) media(cmds []playback.MediaCommand) {
	for i := range cmds {
		cmd := cmds[i]
		o.add(Effect{Kind: EffectMedia, Media: &cmd})
	}
}

// Has reports whether the outcome contains an effect of kind k.
func (o Outcome) Has(k EffectKind) bool {
	for _, e := range o.Effects {
		if e.Kind == k {
			return true
		}
	}
	return false
}

// Messages lists the notification texts in order.
func (o Outcome) Messages() []string {
	var out []string
	for _, e := range o.Effects {
		if e.Kind == EffectNotify {
			out = append(out, e.Message)
		}
	}
	return out
}
