// Package export renders a project's video track as a CMX3600 edit decision
// list so an offline session can hand its cut to a desktop editor.
package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/scriptcut/scriptcut-editor/internal/project"
)

// Event is one kept span of the source media, in milliseconds.
type Event struct {
	Name    string
	Source  string
	StartMs int
	EndMs   int
}

// Events lays the track's clips end to end over duration seconds and
// returns the spans that were not removed. Clip widths are percentages of
// the duration.
func Events(track project.TimelineTrack, duration float64, source string) []Event {
	var events []Event
	offset := 0.0
	for i, clip := range track.Clips {
		length := float64(clip.Width) / 100 * duration
		start, end := offset, offset+length
		offset = end
		if clip.Removed || length <= 0 {
			continue
		}
		name := clip.Title
		if name == "" {
			name = fmt.Sprintf("Clip %d", i+1)
		}
		events = append(events, Event{
			Name:    name,
			Source:  source,
			StartMs: int(math.Round(start * 1000)),
			EndMs:   int(math.Round(end * 1000)),
		})
	}
	return events
}

// GenerateEDL writes events back to back on the record side.
func GenerateEDL(events []Event, title string, frameRate float64) string {
	fps := int(math.Round(frameRate))
	if fps <= 0 {
		fps = 30
	}

	isDropFrame := math.Abs(frameRate-29.97) < 0.01 || math.Abs(frameRate-59.94) < 0.01

	lines := []string{fmt.Sprintf("TITLE: %s", title)}
	if isDropFrame {
		lines = append(lines, "FCM: DROP FRAME")
	} else {
		lines = append(lines, "FCM: NON-DROP FRAME")
	}
	lines = append(lines, "")

	recordMs := 0
	for i, ev := range events {
		durationMs := ev.EndMs - ev.StartMs
		lines = append(lines,
			fmt.Sprintf("%03d  %-8s %-5s C        %s %s %s %s", i+1, "AX", "V",
				msToTimecode(ev.StartMs, fps), msToTimecode(ev.EndMs, fps),
				msToTimecode(recordMs, fps), msToTimecode(recordMs+durationMs, fps)),
			fmt.Sprintf("* FROM CLIP NAME:  %s", ev.Name),
		)
		if ev.Source != "" {
			lines = append(lines, fmt.Sprintf("* SOURCE FILE:  %s", ev.Source))
		}
		recordMs += durationMs
	}

	lines = append(lines, "")
	return strings.Join(lines, "\n")
}

func msToTimecode(ms int, fps int) string {
	totalFrames := int(math.Round(float64(ms) * float64(fps) / 1000.0))
	frames := totalFrames % fps
	totalSeconds := totalFrames / fps
	seconds := totalSeconds % 60
	totalMinutes := totalSeconds / 60
	minutes := totalMinutes % 60
	hours := totalMinutes / 60
	return fmt.Sprintf("%02d:%02d:%02d:%02d", hours, minutes, seconds, frames)
}
