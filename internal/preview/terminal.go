package preview

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

var (
	labelStyle = lipgloss.NewStyle().Bold(true).Width(8)
	offStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#303030"))
	dimStyle   = lipgloss.NewStyle().Faint(true)
)

// Terminal redraws a one-line LED preview in place.
type Terminal struct {
	mu       sync.Mutex
	out      io.Writer
	interval time.Duration
	last     time.Time
	lastLine string
}

func NewTerminal(out io.Writer, interval time.Duration) *Terminal {
	return &Terminal{out: out, interval: interval}
}

func (t *Terminal) Publish(s Snapshot) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if time.Since(t.last) < t.interval {
		return
	}
	line := Format(s)
	if line == t.lastLine {
		return
	}
	t.last = time.Now()
	t.lastLine = line
	fmt.Fprintf(t.out, "\r\033[K%s", line)
}

// Format renders the LEDs as coloured dots followed by the layer and mode.
func Format(s Snapshot) string {
	var b strings.Builder
	b.WriteString(labelStyle.Render(s.Layer))
	for _, p := range s.LEDs {
		if p.R == 0 && p.G == 0 && p.B == 0 {
			b.WriteString(offStyle.Render("○"))
			continue
		}
		hex := fmt.Sprintf("#%02x%02x%02x", p.R, p.G, p.B)
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(hex)).Render("●"))
	}

	status := s.Mode
	switch {
	case !s.Enabled:
		status = "off"
	case s.Asleep:
		status = "asleep"
	}
	b.WriteString(" ")
	b.WriteString(dimStyle.Render(status))
	if len(s.OLED) > 2 && s.OLED[2] != "" {
		b.WriteString(" ")
		b.WriteString(dimStyle.Render(strings.TrimSpace(s.OLED[2])))
	}
	return b.String()
}
