// Package script holds the ordered narration sections of a project.
package script

import (
	"errors"
	"fmt"
	"strings"

	"github.com/scriptcut/scriptcut-editor/internal/project"
)

const UntitledSection = "Untitled Section"

var ErrNotConfirmed = errors.New("deletion not confirmed")

// Confirmer approves destructive edits.
type Confirmer interface {
	Confirm(prompt string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(prompt string) bool

func (f ConfirmFunc) Confirm(prompt string) bool { return f(prompt) }

// Always confirms every prompt.
var Always Confirmer = ConfirmFunc(func(string) bool { return true })

// DefaultSections seeds a project that has no saved script.
func DefaultSections(projectName string) []project.ScriptSection {
	if projectName == "" {
		projectName = "Untitled"
	}
	return []project.ScriptSection{
		{Title: "Intro", Content: fmt.Sprintf("Welcome to %s. This is an AI-generated video tutorial.", projectName)},
		{Title: "Video", Content: "Let me show you the key features and how to use them effectively."},
		{Title: "Outro", Content: "Thank you for watching. Don't forget to subscribe for more tutorials!"},
	}
}

// Section is a script section paired with its 1-based display position.
type Section struct {
	project.ScriptSection
	Number int `json:"number"`
}

// Model is the ordered list of sections plus the one the user is editing.
// A focus of -1 means no section has focus.
type Model struct {
	sections []project.ScriptSection
	focused  int
}

// New hydrates a model. A nil slice seeds DefaultSections; an empty slice
// stays empty.
func New(sections []project.ScriptSection, projectName string) *Model {
	if sections == nil {
		return &Model{sections: DefaultSections(projectName), focused: -1}
	}
	return &Model{sections: project.CloneSections(sections), focused: -1}
}

func (m *Model) Len() int { return len(m.sections) }

// Sections returns a copy of the raw sections in order.
func (m *Model) Sections() []project.ScriptSection {
	out := project.CloneSections(m.sections)
	if out == nil {
		out = []project.ScriptSection{}
	}
	return out
}

// Numbered returns the sections with their display positions.
func (m *Model) Numbered() []Section {
	out := make([]Section, len(m.sections))
	for i, s := range m.sections {
		out[i] = Section{ScriptSection: s, Number: i + 1}
	}
	return out
}

// Add appends an empty untitled section, focuses it and returns its index.
func (m *Model) Add() int {
	m.sections = append(m.sections, project.ScriptSection{Title: UntitledSection})
	m.focused = len(m.sections) - 1
	return m.focused
}

// Edit replaces the title and body of section i.
func (m *Model) Edit(i int, title, content string) error {
	if err := m.check(i); err != nil {
		return err
	}
	m.sections[i] = project.ScriptSection{Title: title, Content: content}
	return nil
}

// SetContent replaces only the body of section i.
func (m *Model) SetContent(i int, content string) error {
	if err := m.check(i); err != nil {
		return err
	}
	m.sections[i].Content = content
	return nil
}

func (m *Model) Focus(i int) error {
	if err := m.check(i); err != nil {
		return err
	}
	m.focused = i
	return nil
}

// Focused returns the focused section index, if any.
func (m *Model) Focused() (int, bool) {
	if m.focused < 0 || m.focused >= len(m.sections) {
		return -1, false
	}
	return m.focused, true
}

// FocusedOrFirst returns the focused section, falling back to the first one.
func (m *Model) FocusedOrFirst() (int, bool) {
	if i, ok := m.Focused(); ok {
		return i, true
	}
	if len(m.sections) == 0 {
		return -1, false
	}
	return 0, true
}

func (m *Model) Get(i int) (project.ScriptSection, error) {
	if err := m.check(i); err != nil {
		return project.ScriptSection{}, err
	}
	return m.sections[i], nil
}

// Delete removes section i once c confirms. Later sections shift down one
// position and focus follows the section it pointed at.
func (m *Model) Delete(i int, c Confirmer) error {
	if err := m.check(i); err != nil {
		return err
	}
	if c == nil || !c.Confirm("Delete section?") {
		return ErrNotConfirmed
	}
	m.sections = append(m.sections[:i], m.sections[i+1:]...)
	switch {
	case m.focused == i:
		m.focused = -1
	case m.focused > i:
		m.focused--
	}
	return nil
}

// FullText concatenates every section body, each followed by a newline.
func (m *Model) FullText() string {
	var b strings.Builder
	for _, s := range m.sections {
		b.WriteString(s.Content)
		b.WriteString("\n")
	}
	return b.String()
}

// FirstNonEmpty returns the trimmed body of the first section with text.
func (m *Model) FirstNonEmpty() (string, bool) {
	for _, s := range m.sections {
		if text := strings.TrimSpace(s.Content); text != "" {
			return text, true
		}
	}
	return "", false
}

// TagLanguage prefixes "[lang] " to every body not already starting with a
// tag.
func (m *Model) TagLanguage(lang string) {
	for i, s := range m.sections {
		if strings.HasPrefix(s.Content, "[") {
			continue
		}
		m.sections[i].Content = "[" + lang + "] " + s.Content
	}
}

func (m *Model) check(i int) error {
	if i < 0 || i >= len(m.sections) {
		return fmt.Errorf("section %d: %w", i, project.ErrNotFound)
	}
	return nil
}
