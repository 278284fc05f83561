package project

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"math"
	"time"
)

const (
	keyScripts      = "scripts"
	keyTimeline     = "timeline"
	keyElements     = "elements"
	keyVideoURL     = "videoUrl"
	keyLastModified = "lastModified"
)

// Content is the body of a project document. Keys other than the ones
// modelled here are kept verbatim so saves never drop data written by
// other clients.
type Content struct {
	Scripts      []ScriptSection
	Timeline     []TimelineTrack
	Elements     []CanvasElement
	VideoURL     string
	LastModified time.Time

	extra map[string]json.RawMessage
}

// Extra returns the raw value of a key this package does not model.
func (c Content) Extra(key string) (json.RawMessage, bool) {
	v, ok := c.extra[key]
	return v, ok
}

// SetExtra stores a raw value under a key this package does not model.
func (c *Content) SetExtra(key string, value json.RawMessage) {
	if c.extra == nil {
		c.extra = make(map[string]json.RawMessage)
	}
	c.extra[key] = value
}

// Merge returns a copy of c with the session-owned fields replaced by patch.
func (c Content) Merge(p Patch) Content {
	merged := c.Clone()
	merged.Scripts = CloneSections(p.Scripts)
	merged.Timeline = CloneTracks(p.Timeline)
	merged.Elements = CloneElements(p.Elements)
	merged.LastModified = p.LastModified
	return merged
}

func (c Content) Clone() Content {
	return Content{
		Scripts:      CloneSections(c.Scripts),
		Timeline:     CloneTracks(c.Timeline),
		Elements:     CloneElements(c.Elements),
		VideoURL:     c.VideoURL,
		LastModified: c.LastModified,
		extra:        maps.Clone(c.extra),
	}
}

func (c Content) MarshalJSON() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(c.extra)+5)
	maps.Copy(out, c.extra)

	set := func(key string, v any) error {
		raw, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("marshal %s: %w", key, err)
		}
		out[key] = raw
		return nil
	}

	if c.Scripts != nil {
		if err := set(keyScripts, c.Scripts); err != nil {
			return nil, err
		}
	}
	if c.Timeline != nil {
		if err := set(keyTimeline, c.Timeline); err != nil {
			return nil, err
		}
	}
	if c.Elements != nil {
		if err := set(keyElements, c.Elements); err != nil {
			return nil, err
		}
	}
	if c.VideoURL != "" {
		if err := set(keyVideoURL, c.VideoURL); err != nil {
			return nil, err
		}
	}
	if !c.LastModified.IsZero() {
		if err := set(keyLastModified, c.LastModified.UTC().Format(time.RFC3339Nano)); err != nil {
			return nil, err
		}
	}

	return json.Marshal(out)
}

func (c *Content) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*c = Content{}

	take := func(key string, dst any) error {
		v, ok := raw[key]
		if !ok {
			return nil
		}
		delete(raw, key)
		if err := json.Unmarshal(v, dst); err != nil {
			return fmt.Errorf("decode content.%s: %w", key, err)
		}
		return nil
	}

	if err := take(keyScripts, &c.Scripts); err != nil {
		return err
	}
	if err := take(keyTimeline, &c.Timeline); err != nil {
		return err
	}
	if err := take(keyElements, &c.Elements); err != nil {
		return err
	}
	if err := take(keyVideoURL, &c.VideoURL); err != nil {
		return err
	}

	if v, ok := raw[keyLastModified]; ok {
		delete(raw, keyLastModified)
		t, err := parseTimestamp(v)
		if err != nil {
			return fmt.Errorf("decode content.lastModified: %w", err)
		}
		c.LastModified = t
	}

	if len(raw) > 0 {
		c.extra = raw
	}
	return nil
}

// parseTimestamp accepts an RFC 3339 string or a number of milliseconds
// since the Unix epoch, as written by browser clients.
func parseTimestamp(v json.RawMessage) (time.Time, error) {
	v = bytes.TrimSpace(v)
	if len(v) == 0 || bytes.Equal(v, []byte("null")) {
		return time.Time{}, nil
	}
	if v[0] == '"' {
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return time.Time{}, err
		}
		if s == "" {
			return time.Time{}, nil
		}
		return time.Parse(time.RFC3339Nano, s)
	}
	var ms float64
	if err := json.Unmarshal(v, &ms); err != nil {
		return time.Time{}, err
	}
	if math.IsNaN(ms) || math.IsInf(ms, 0) {
		return time.Time{}, fmt.Errorf("invalid timestamp %s", v)
	}
	return time.UnixMilli(int64(ms)).UTC(), nil
}
