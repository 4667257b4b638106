package keymap

import (
	"fmt"
	"math/bits"
	"strings"

	"keypad-service/internal/types"
)

// Keymap is an immutable table of layers laid out row-major.
type Keymap struct {
	Name   string
	Rows   int
	Cols   int
	Layers [][]Keycode
}

// Keys returns the number of matrix positions.
func (m *Keymap) Keys() int {
	return m.Rows * m.Cols
}

// At returns the keycode at a matrix position, NO when out of range.
func (m *Keymap) At(layer types.Layer, row, col int) Keycode {
	if int(layer) >= len(m.Layers) || row < 0 || row >= m.Rows || col < 0 || col >= m.Cols {
		return NO
	}
	return m.Layers[layer][row*m.Cols+col]
}

// Validate checks dimensions, layer references and command bindings.
func (m *Keymap) Validate() error {
	if m.Rows <= 0 || m.Cols <= 0 {
		return fmt.Errorf("keymap %s: invalid matrix %dx%d", m.Name, m.Rows, m.Cols)
	}
	if len(m.Layers) == 0 || len(m.Layers) > types.LayerCount {
		return fmt.Errorf("keymap %s: %d layers, want 1..%d", m.Name, len(m.Layers), types.LayerCount)
	}
	for l, keys := range m.Layers {
		if len(keys) != m.Keys() {
			return fmt.Errorf("keymap %s: layer %d has %d keys, want %d", m.Name, l, len(keys), m.Keys())
		}
		for i, k := range keys {
			if err := m.validateKey(k); err != nil {
				return fmt.Errorf("keymap %s: layer %d key %d,%d: %w", m.Name, l, i/m.Cols, i%m.Cols, err)
			}
		}
	}
	return nil
}

func (m *Keymap) validateKey(k Keycode) error {
	switch k.Kind {
	case KindNone:
		return nil
	case KindBasic:
		if _, ok := usageName(k.Usage); !ok {
			return fmt.Errorf("unknown usage 0x%02x", k.Usage)
		}
	case KindConsumer:
		if _, ok := consumerNames[k.Usage]; !ok {
			return fmt.Errorf("unknown consumer usage 0x%03x", k.Usage)
		}
	case KindWheel:
		if k.Usage != 1 && k.Usage != 2 {
			return fmt.Errorf("unknown wheel direction %d", k.Usage)
		}
	case KindMomentary, KindTo:
		if int(k.Layer) >= len(m.Layers) {
			return fmt.Errorf("%s references missing layer %d", k, k.Layer)
		}
	case KindCommand:
		if !k.Command.Valid() {
			return fmt.Errorf("unknown command %d", k.Command)
		}
	default:
		return fmt.Errorf("unknown kind %d", k.Kind)
	}
	return nil
}

// Format renders the keymap as an aligned text table per layer.
func (m *Keymap) Format() string {
	var b strings.Builder
	width := 0
	for _, keys := range m.Layers {
		for _, k := range keys {
			if n := len(k.String()); n > width {
				width = n
			}
		}
	}
	for l, keys := range m.Layers {
		fmt.Fprintf(&b, "[%d] %s\n", l, types.Layer(l))
		for r := 0; r < m.Rows; r++ {
			for c := 0; c < m.Cols; c++ {
				fmt.Fprintf(&b, "  %-*s", width, keys[r*m.Cols+c])
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}

// ForProfile returns the keymap for a configuration profile name.
func ForProfile(profile string) (*Keymap, error) {
	switch profile {
	case "numpad4x6":
		return Numpad4x6(), nil
	case "silent3x3":
		return Silent3x3(), nil
	}
	return nil, fmt.Errorf("no keymap for profile %q", profile)
}

// LayerStack tracks the active layer bitmask the way the firmware layer
// API does: the highest set bit of state|default wins.
type LayerStack struct {
	state uint32
	def   uint32
}

func NewLayerStack() LayerStack {
	return LayerStack{def: 1}
}

func (s *LayerStack) On(l types.Layer)  { s.state |= 1 << l }
func (s *LayerStack) Off(l types.Layer) { s.state &^= 1 << l }

// Move clears every layer but l.
func (s *LayerStack) Move(l types.Layer) { s.state = 1 << l }

func (s *LayerStack) Set(mask uint32) { s.state = mask }

func (s *LayerStack) State() uint32 { return s.state }

func (s *LayerStack) Highest() types.Layer {
	return HighestLayer(s.state | s.def)
}

// HighestLayer returns the highest set bit of mask, base for an empty mask.
func HighestLayer(mask uint32) types.Layer {
	if mask == 0 {
		return types.LayerBase
	}
	return types.Layer(bits.Len32(mask) - 1)
}
