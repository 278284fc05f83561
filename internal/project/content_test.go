package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestContent_PreservesUnknownKeys(t *testing.T) {
	input := `{"scripts":[{"title":"Intro","content":"hi"}],"videoUrl":"https://cdn/x.mp4","thumbnail":{"url":"t.png","w":320}}`

	var c Content
	if err := json.Unmarshal([]byte(input), &c); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	merged := c.Merge(Patch{
		Scripts:      []ScriptSection{{Title: "Intro", Content: "changed"}},
		Timeline:     []TimelineTrack{{Label: "Video", Clips: []Clip{{Width: 100, Color: "#667eea"}}}},
		Elements:     []CanvasElement{},
		LastModified: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	})

	data, err := json.Marshal(merged)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var out map[string]json.RawMessage
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("Unmarshal(out) error = %v", err)
	}

	if string(out["thumbnail"]) != `{"url":"t.png","w":320}` {
		t.Errorf("thumbnail = %s, want it preserved verbatim", out["thumbnail"])
	}
	if string(out["videoUrl"]) != `"https://cdn/x.mp4"` {
		t.Errorf("videoUrl = %s, want preserved", out["videoUrl"])
	}
	if string(out["lastModified"]) != `"2026-01-02T03:04:05Z"` {
		t.Errorf("lastModified = %s", out["lastModified"])
	}
	if string(out["elements"]) != `[]` {
		t.Errorf("elements = %s, want []", out["elements"])
	}
}

func TestContent_MissingVersusEmpty(t *testing.T) {
	var missing Content
	if err := json.Unmarshal([]byte(`{}`), &missing); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if missing.Scripts != nil || missing.Timeline != nil {
		t.Error("missing keys should decode to nil slices")
	}

	var empty Content
	if err := json.Unmarshal([]byte(`{"scripts":[],"timeline":null}`), &empty); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if empty.Scripts == nil || len(empty.Scripts) != 0 {
		t.Errorf("scripts = %#v, want empty non-nil slice", empty.Scripts)
	}
	if empty.Timeline != nil {
		t.Errorf("timeline = %#v, want nil for null", empty.Timeline)
	}
}

func TestContent_MergeDoesNotAliasPatch(t *testing.T) {
	scripts := []ScriptSection{{Title: "A", Content: "a"}}
	merged := Content{}.Merge(Patch{Scripts: scripts})
	scripts[0].Title = "mutated"

	if merged.Scripts[0].Title != "A" {
		t.Errorf("merged title = %q, want A", merged.Scripts[0].Title)
	}
}

func TestContent_InvalidLastModified(t *testing.T) {
	var c Content
	err := json.Unmarshal([]byte(`{"lastModified":"yesterday"}`), &c)
	if err == nil {
		t.Fatal("expected error for malformed lastModified")
	}
}

func TestContent_LastModifiedForms(t *testing.T) {
	want := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	tests := []struct {
		name  string
		input string
		want  time.Time
	}{
		{"rfc3339", `{"lastModified":"2026-01-02T03:04:05Z"}`, want},
		{"epoch millis", fmt.Sprintf(`{"lastModified":%d}`, want.UnixMilli()), want},
		{"null", `{"lastModified":null}`, time.Time{}},
		{"empty string", `{"lastModified":""}`, time.Time{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c Content
			if err := json.Unmarshal([]byte(tt.input), &c); err != nil {
				t.Fatalf("Unmarshal() error = %v", err)
			}
			if !c.LastModified.Equal(tt.want) {
				t.Errorf("LastModified = %v, want %v", c.LastModified, tt.want)
			}
		})
	}
}

func TestProject_IsMediaBacked(t *testing.T) {
	tests := []struct {
		name string
		p    Project
		want bool
		url  string
	}{
		{"script project", Project{Type: TypeScript}, false, ""},
		{"video type", Project{Type: TypeVideo}, true, DefaultVideoURL},
		{"explicit url", Project{Type: TypeScript, Content: Content{VideoURL: "u.mp4"}}, true, "u.mp4"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.p.IsMediaBacked(); got != tt.want {
				t.Errorf("IsMediaBacked() = %v, want %v", got, tt.want)
			}
			if got := tt.p.MediaURL(); got != tt.url {
				t.Errorf("MediaURL() = %q, want %q", got, tt.url)
			}
		})
	}
}

func TestPercent_JSON(t *testing.T) {
	tests := []struct {
		input string
		want  Percent
	}{
		{`"40%"`, 40},
		{`"8.5%"`, 8.5},
		{`12`, 12},
		{`"100"`, 100},
		{`""`, 0},
	}
	for _, tt := range tests {
		var p Percent
		if err := json.Unmarshal([]byte(tt.input), &p); err != nil {
			t.Errorf("Unmarshal(%s) error = %v", tt.input, err)
			continue
		}
		if p != tt.want {
			t.Errorf("Unmarshal(%s) = %v, want %v", tt.input, p, tt.want)
		}
	}

	data, _ := json.Marshal(Percent(15))
	if string(data) != `"15%"` {
		t.Errorf("Marshal(15) = %s, want \"15%%\"", data)
	}

	var p Percent
	if err := json.Unmarshal([]byte(`"wide"`), &p); err == nil {
		t.Error("expected error for non-numeric percent")
	}
}

func TestValidationError_Is(t *testing.T) {
	err := Invalid("Please enter script text first")
	if !errors.Is(err, ErrValidation) {
		t.Fatal("validation error should match ErrValidation")
	}
	if err.Error() != "Please enter script text first" {
		t.Errorf("Error() = %q", err.Error())
	}
}
