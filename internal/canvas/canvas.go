// Package canvas manages overlay elements positioned over the preview.
package canvas

import (
	"fmt"
	"math/rand/v2"
	"regexp"
	"strings"

	"github.com/scriptcut/scriptcut-editor/internal/project"
)

const TypeSubtitle = "subtitle"

const defaultElementCSS = `
	position: absolute;
	top: 50%;
	left: 50%;
	transform: translate(-50%, -50%);
	padding: 0.5rem 1rem;
	background: rgba(255, 255, 255, 0.1);
	border: 1px solid rgba(255,255,255,0.2);
	border-radius: 4px;
	color: white;
	cursor: move;
	font-weight: 500;
	z-index: 10;
	user-select: none;
`

const subtitleCSS = "position: absolute; bottom: 10%; left: 50%; transform: translateX(-50%); width: 80%; " +
	"text-align: center; color: white; background: rgba(0,0,0,0.6); padding: 8px 16px; border-radius: 4px; " +
	"font-size: 1.2rem; font-weight: 500; font-family: Outfit, sans-serif; pointer-events: none; " +
	"text-shadow: 1px 1px 2px rgba(0,0,0,0.8);"

var languageTag = regexp.MustCompile(`^\[.*?\]\s*`)

// DefaultStyle is the centered translucent box new elements get.
func DefaultStyle() project.Style { return project.ParseStyle(defaultElementCSS) }

// SubtitleStyle is the bottom-centered caption style.
func SubtitleStyle() project.Style { return project.ParseStyle(subtitleCSS) }

// CleanSubtitle strips a leading "[lang]" tag left by translation.
func CleanSubtitle(text string) string {
	return languageTag.ReplaceAllString(strings.TrimSpace(text), "")
}

// Float is the randomness Reposition needs; *rand.Rand satisfies it.
type Float interface {
	Float64() float64
}

type Model struct {
	elements []project.CanvasElement
}

func New(elements []project.CanvasElement) *Model {
	return &Model{elements: project.CloneElements(elements)}
}

// Elements returns a copy of the elements in render order.
func (m *Model) Elements() []project.CanvasElement {
	out := project.CloneElements(m.elements)
	if out == nil {
		out = []project.CanvasElement{}
	}
	return out
}

func (m *Model) Len() int { return len(m.elements) }

// AddElement appends an element. An empty text defaults to the element type
// and a zero style to DefaultStyle. It returns the new element's index.
func (m *Model) AddElement(elementType, text string, style project.Style) int {
	if text == "" {
		text = elementType
	}
	if style.IsZero() {
		style = DefaultStyle()
	}
	m.elements = append(m.elements, project.CanvasElement{
		Type:  elementType,
		Text:  text,
		Style: style.Clone(),
	})
	return len(m.elements) - 1
}

// AddSubtitle appends a caption element holding text with any language tag
// removed.
func (m *Model) AddSubtitle(text string) int {
	return m.AddElement(TypeSubtitle, CleanSubtitle(text), SubtitleStyle())
}

// Reposition moves element i to a random spot with top and left each in
// [20%, 80%].
func (m *Model) Reposition(i int, rng Float) error {
	if i < 0 || i >= len(m.elements) {
		return fmt.Errorf("element %d: %w", i, project.ErrNotFound)
	}
	next := rand.Float64
	if rng != nil {
		next = rng.Float64
	}
	top := 20 + next()*60
	left := 20 + next()*60
	m.elements[i].Style.SetPlacement(top, left)
	return nil
}
