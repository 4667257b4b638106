package oled

import (
	"slices"

	"keypad-service/internal/types"
)

// Display shows text lines on a small screen.
type Display interface {
	Show(lines []string) error
	Blank() error
}

// Lines builds the status text: product title, the active layer and, while
// selecting, the layer a click would jump to.
func Lines(title string, layer, pending types.Layer) []string {
	lines := []string{
		title,
		"Layer: " + layer.DisplayName(),
		"",
	}
	if layer == types.LayerSelect {
		lines[2] = "Goto: " + pending.DisplayName()
	}
	return lines
}

// Status redraws the display only when the text changes and blanks it after
// a period without activity.
type Status struct {
	title        string
	timeout      uint32
	lastActivity types.Timestamp
	blank        bool
	last         []string
}

func NewStatus(title string, timeoutMs uint32) *Status {
	return &Status{title: title, timeout: timeoutMs}
}

// Touch records user activity and wakes a blanked screen.
func (s *Status) Touch(now types.Timestamp) {
	s.lastActivity = now
	if s.blank {
		s.blank = false
		s.last = nil
	}
}

// Blanked reports whether the screen timed out.
func (s *Status) Blanked() bool {
	return s.blank
}

// Render updates d for the current layer state. It returns the lines drawn,
// or nil when nothing changed.
func (s *Status) Render(d Display, layer, pending types.Layer, now types.Timestamp) ([]string, error) {
	if s.timeout > 0 && types.Elapsed(s.lastActivity, now) >= s.timeout {
		if s.blank {
			return nil, nil
		}
		s.blank = true
		s.last = nil
		return []string{}, d.Blank()
	}

	lines := Lines(s.title, layer, pending)
	if slices.Equal(lines, s.last) {
		return nil, nil
	}
	s.last = lines
	return lines, d.Show(lines)
}
