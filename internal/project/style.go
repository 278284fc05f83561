package project

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Attr is a single free-form style declaration.
type Attr struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Style positions a canvas element on the preview surface. Placement is
// structured; every other visual attribute is kept in declaration order.
//
// The wire form is the CSS declaration string saved by earlier editor
// versions, so documents written before the structured form still load.
type Style struct {
	Position  string `json:"position,omitempty"`
	Top       string `json:"top,omitempty"`
	Left      string `json:"left,omitempty"`
	Bottom    string `json:"bottom,omitempty"`
	Right     string `json:"right,omitempty"`
	Transform string `json:"transform,omitempty"`
	Attrs     []Attr `json:"attrs,omitempty"`
}

// ParseStyle reads a CSS declaration list such as
// "position: absolute; top: 50%; color: white". Separators inside quoted
// strings or parentheses belong to the value, so url("data:...;base64,...")
// survives intact.
func ParseStyle(css string) Style {
	var s Style
	for _, decl := range splitTopLevel(css, ';') {
		parts := splitTopLevel(decl, ':')
		if len(parts) < 2 {
			continue
		}
		name := strings.ToLower(strings.TrimSpace(parts[0]))
		if name == "" {
			continue
		}
		value := strings.TrimSpace(decl[len(parts[0])+1:])
		s.Set(name, value)
	}
	return s
}

// splitTopLevel splits s on sep wherever sep is outside quotes and
// parentheses. A backslash escapes the next byte.
func splitTopLevel(s string, sep byte) []string {
	var (
		out   []string
		start int
		depth int
		quote byte
	)
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '\\':
			i++
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '(':
			depth++
		case c == ')':
			if depth > 0 {
				depth--
			}
		case c == sep && depth == 0:
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	return append(out, s[start:])
}

// Set assigns a declaration, routing placement properties to their fields.
func (s *Style) Set(name, value string) {
	switch name {
	case "position":
		s.Position = value
	case "top":
		s.Top = value
	case "left":
		s.Left = value
	case "bottom":
		s.Bottom = value
	case "right":
		s.Right = value
	case "transform":
		s.Transform = value
	default:
		for i := range s.Attrs {
			if s.Attrs[i].Name == name {
				s.Attrs[i].Value = value
				return
			}
		}
		s.Attrs = append(s.Attrs, Attr{Name: name, Value: value})
	}
}

// Get returns the value of a declaration, placement or free-form.
func (s Style) Get(name string) (string, bool) {
	switch name {
	case "position":
		return s.Position, s.Position != ""
	case "top":
		return s.Top, s.Top != ""
	case "left":
		return s.Left, s.Left != ""
	case "bottom":
		return s.Bottom, s.Bottom != ""
	case "right":
		return s.Right, s.Right != ""
	case "transform":
		return s.Transform, s.Transform != ""
	}
	for _, a := range s.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// TopPercent returns top as a number when it is a percentage.
func (s Style) TopPercent() (float64, bool) { return percentValue(s.Top) }

// LeftPercent returns left as a number when it is a percentage.
func (s Style) LeftPercent() (float64, bool) { return percentValue(s.Left) }

// SetPlacement moves the element to the given top/left percentages.
func (s *Style) SetPlacement(top, left float64) {
	s.Top = strconv.FormatFloat(top, 'f', 4, 64) + "%"
	s.Left = strconv.FormatFloat(left, 'f', 4, 64) + "%"
}

func (s Style) IsZero() bool {
	return s.Position == "" && s.Top == "" && s.Left == "" && s.Bottom == "" &&
		s.Right == "" && s.Transform == "" && len(s.Attrs) == 0
}

func (s Style) Clone() Style {
	cp := s
	cp.Attrs = append([]Attr(nil), s.Attrs...)
	return cp
}

// String renders the canonical CSS declaration list.
func (s Style) String() string {
	var b strings.Builder
	write := func(name, value string) {
		if value == "" {
			return
		}
		if b.Len() > 0 {
			b.WriteString(" ")
		}
		b.WriteString(name)
		b.WriteString(": ")
		b.WriteString(value)
		b.WriteString(";")
	}
	write("position", s.Position)
	write("top", s.Top)
	write("left", s.Left)
	write("bottom", s.Bottom)
	write("right", s.Right)
	write("transform", s.Transform)
	for _, a := range s.Attrs {
		write(a.Name, a.Value)
	}
	return b.String()
}

func (s Style) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON accepts the legacy CSS string or the structured object.
func (s *Style) UnmarshalJSON(data []byte) error {
	var css string
	if err := json.Unmarshal(data, &css); err == nil {
		*s = ParseStyle(css)
		return nil
	}

	type plain Style
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("style must be a CSS string or object: %w", err)
	}
	*s = Style(p)
	return nil
}

func percentValue(v string) (float64, bool) {
	if !strings.HasSuffix(v, "%") {
		return 0, false
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(v, "%")), 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
