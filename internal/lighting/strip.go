package lighting

// LEDCount is the number of pixels on the strip.
const LEDCount = 10

type LED struct {
	Hue uint8
	Sat uint8
	Val uint8
}

type Frame [LEDCount]LED

// Strip is an addressable LED output. SetHSV stages a pixel, Flush pushes all
// staged pixels at once. Out of range indices are ignored.
type Strip interface {
	SetHSV(index int, hue, sat, val uint8)
	Flush() error
	Enable() error
	Disable() error
}

// MemoryStrip stages pixels in memory. Flush copies them to the last frame.
type MemoryStrip struct {
	staged  Frame
	frame   Frame
	flushes int
	enabled bool
}

func NewMemoryStrip() *MemoryStrip {
	return &MemoryStrip{}
}

func (m *MemoryStrip) SetHSV(index int, hue, sat, val uint8) {
	if index < 0 || index >= LEDCount {
		return
	}
	m.staged[index] = LED{Hue: hue, Sat: sat, Val: val}
}

func (m *MemoryStrip) Flush() error {
	m.frame = m.staged
	m.flushes++
	return nil
}

func (m *MemoryStrip) Enable() error  { m.enabled = true; return nil }
func (m *MemoryStrip) Disable() error { m.enabled = false; return nil }

func (m *MemoryStrip) Frame() Frame  { return m.frame }
func (m *MemoryStrip) Flushes() int  { return m.flushes }
func (m *MemoryStrip) Enabled() bool { return m.enabled }
