package keymap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"keypad-service/internal/types"
)

func TestBuiltinKeymapsValidate(t *testing.T) {
	for _, km := range []*Keymap{Numpad4x6(), Silent3x3()} {
		t.Run(km.Name, func(t *testing.T) {
			require.NoError(t, km.Validate())
		})
	}
}

func TestForProfile(t *testing.T) {
	km, err := ForProfile("silent3x3")
	require.NoError(t, err)
	assert.Equal(t, 9, km.Keys())
	assert.Len(t, km.Layers, types.LayerCount)

	_, err = ForProfile("ortho")
	assert.Error(t, err)
}

func TestValidateRejectsBrokenKeymaps(t *testing.T) {
	tests := []struct {
		name string
		km   *Keymap
	}{
		{"short layer", &Keymap{Name: "x", Rows: 1, Cols: 2, Layers: [][]Keycode{{NO}}}},
		{"missing layer", &Keymap{Name: "x", Rows: 1, Cols: 1, Layers: [][]Keycode{{MO(3)}}}},
		{"bad command", &Keymap{Name: "x", Rows: 1, Cols: 1, Layers: [][]Keycode{{Cmd(types.CmdNone)}}}},
		{"bad usage", &Keymap{Name: "x", Rows: 1, Cols: 1, Layers: [][]Keycode{{basic(0xFF)}}}},
		{"bad kind", &Keymap{Name: "x", Rows: 1, Cols: 1, Layers: [][]Keycode{{{Kind: 42}}}}},
		{"no layers", &Keymap{Name: "x", Rows: 1, Cols: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.km.Validate())
		})
	}
}

func TestAt(t *testing.T) {
	km := Numpad4x6()
	assert.Equal(t, P(7), km.At(types.LayerBase, 2, 0))
	assert.Equal(t, Cmd(types.CmdHueUp), km.At(types.LayerRGB, 1, 2))
	assert.Equal(t, NO, km.At(types.LayerBase, 6, 0))
	assert.Equal(t, NO, km.At(types.LayerSelect, 0, 0), "numpad has no select layer")
}

func TestKeycodeNames(t *testing.T) {
	tests := []struct {
		key  Keycode
		want string
	}{
		{P(0), "kp_0"},
		{P(9), "kp_9"},
		{F(23), "f23"},
		{Ctrl(S), "ctrl+s"},
		{Ctrl(Shift(Left)), "ctrl+shift+left"},
		{Alt(Ctrl(Del)), "ctrl+alt+delete"},
		{Mute, "mute"},
		{WheelUp, "wheel_up"},
		{MO(4), "mo(rgb)"},
		{Cmd(types.CmdCycleMode), "cmd(cycle-mode)"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.key.String())
	}
}

func TestLayerStack(t *testing.T) {
	s := NewLayerStack()
	assert.Equal(t, types.LayerBase, s.Highest())

	s.On(types.LayerEdit)
	s.On(types.LayerRGB)
	assert.Equal(t, types.LayerRGB, s.Highest())

	s.Off(types.LayerRGB)
	assert.Equal(t, types.LayerEdit, s.Highest())

	s.Move(types.LayerMedia)
	assert.Equal(t, uint32(1<<types.LayerMedia), s.State())
	assert.Equal(t, types.LayerMedia, s.Highest())

	s.Set(0)
	assert.Equal(t, types.LayerBase, s.Highest(), "default layer remains")
}

func TestFormatListsEveryLayer(t *testing.T) {
	out := Silent3x3().Format()
	assert.Contains(t, out, "[5] select")
	assert.Contains(t, out, "to(media)")
	assert.Contains(t, out, "cmd(wander-speed-up)")
}
