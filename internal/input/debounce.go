package input

import "keypad-service/internal/types"

// DefaultDebounceMs is the minimum time between accepted edges.
const DefaultDebounceMs = 10

type Edge uint8

const (
	EdgeNone Edge = iota
	EdgePressed
	EdgeReleased
)

func (e Edge) String() string {
	switch e {
	case EdgePressed:
		return "pressed"
	case EdgeReleased:
		return "released"
	}
	return "none"
}

// Debouncer turns a polled raw level into press and release edges. Samples
// taken within threshold of the last accepted edge are ignored.
type Debouncer struct {
	threshold  uint32
	rawPressed bool
	released   bool
	lastEdge   types.Timestamp
	primed     bool
}

func NewDebouncer(thresholdMs uint32) *Debouncer {
	return &Debouncer{
		threshold: thresholdMs,
		released:  true,
	}
}

func (d *Debouncer) Sample(pressed bool, now types.Timestamp) Edge {
	d.rawPressed = pressed
	if d.primed && types.Elapsed(d.lastEdge, now) < d.threshold {
		return EdgeNone
	}

	switch {
	case pressed && d.released:
		d.released = false
	case !pressed && !d.released:
		d.released = true
	default:
		return EdgeNone
	}

	d.lastEdge = now
	d.primed = true
	if pressed {
		return EdgePressed
	}
	return EdgeReleased
}

// Pressed reports the debounced level.
func (d *Debouncer) Pressed() bool {
	return !d.released
}

// Raw reports the last sampled level.
func (d *Debouncer) Raw() bool {
	return d.rawPressed
}

// Button is a debounced pushbutton that distinguishes a short click from a
// hold used as a modifier for rotation.
type Button struct {
	deb          *Debouncer
	heldWithTurn bool
	click        bool
}

func NewButton(thresholdMs uint32) *Button {
	return &Button{deb: NewDebouncer(thresholdMs)}
}

func (b *Button) Sample(pressed bool, now types.Timestamp) Edge {
	edge := b.deb.Sample(pressed, now)
	switch edge {
	case EdgePressed:
		b.heldWithTurn = false
		b.click = false
	case EdgeReleased:
		b.click = !b.heldWithTurn
	}
	return edge
}

func (b *Button) Held() bool {
	return b.deb.Pressed()
}

// MarkTurn records a rotation while held, turning the press into a modifier.
func (b *Button) MarkTurn() {
	if b.Held() {
		b.heldWithTurn = true
	}
}

// Click reports whether the last release ended a press without rotation.
func (b *Button) Click() bool {
	return b.click
}
