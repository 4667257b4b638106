package keymap

import (
	"fmt"
	"strings"

	"keypad-service/internal/types"
)

type Kind uint8

const (
	KindNone Kind = iota
	KindBasic
	KindConsumer
	KindWheel
	KindMomentary
	KindTo
	KindCommand
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindBasic:
		return "basic"
	case KindConsumer:
		return "consumer"
	case KindWheel:
		return "wheel"
	case KindMomentary:
		return "momentary"
	case KindTo:
		return "to"
	case KindCommand:
		return "command"
	}
	return fmt.Sprintf("kind-%d", uint8(k))
}

// Mods is a set of left-hand modifiers applied to a basic key.
type Mods uint8

const (
	ModCtrl Mods = 1 << iota
	ModShift
	ModAlt
	ModGui
)

func (m Mods) prefix() string {
	var b strings.Builder
	for _, mod := range []struct {
		bit  Mods
		name string
	}{{ModCtrl, "ctrl"}, {ModShift, "shift"}, {ModAlt, "alt"}, {ModGui, "gui"}} {
		if m&mod.bit != 0 {
			b.WriteString(mod.name)
			b.WriteByte('+')
		}
	}
	return b.String()
}

// Keycode is one keymap entry. Only the fields relevant to Kind are set.
type Keycode struct {
	Kind    Kind
	Usage   uint16
	Mods    Mods
	Layer   types.Layer
	Command types.Command
}

// NO is an unassigned position.
var NO = Keycode{}

func basic(usage uint16) Keycode    { return Keycode{Kind: KindBasic, Usage: usage} }
func consumer(usage uint16) Keycode { return Keycode{Kind: KindConsumer, Usage: usage} }

func Ctrl(k Keycode) Keycode  { k.Mods |= ModCtrl; return k }
func Shift(k Keycode) Keycode { k.Mods |= ModShift; return k }
func Alt(k Keycode) Keycode   { k.Mods |= ModAlt; return k }
func Gui(k Keycode) Keycode   { k.Mods |= ModGui; return k }

// MO activates a layer while held.
func MO(l types.Layer) Keycode { return Keycode{Kind: KindMomentary, Layer: l} }

// TO makes a layer the only active one.
func TO(l types.Layer) Keycode { return Keycode{Kind: KindTo, Layer: l} }

func Cmd(c types.Command) Keycode { return Keycode{Kind: KindCommand, Command: c} }

var (
	WheelUp   = Keycode{Kind: KindWheel, Usage: 1}
	WheelDown = Keycode{Kind: KindWheel, Usage: 2}
)

// Keyboard page usages.
var (
	A      = basic(0x04)
	C      = basic(0x06)
	R      = basic(0x15)
	S      = basic(0x16)
	V      = basic(0x19)
	X      = basic(0x1B)
	Z      = basic(0x1D)
	Enter  = basic(0x28)
	Bspc   = basic(0x2A)
	Tab    = basic(0x2B)
	Space  = basic(0x2C)
	Home   = basic(0x4A)
	Del    = basic(0x4C)
	End    = basic(0x4D)
	Right  = basic(0x4F)
	Left   = basic(0x50)
	Down   = basic(0x51)
	Up     = basic(0x52)
	NumLk  = basic(0x53)
	PSlash = basic(0x54)
	PAst   = basic(0x55)
	PMinus = basic(0x56)
	PPlus  = basic(0x57)
	PEnter = basic(0x58)
	PDot   = basic(0x63)
)

// P returns keypad digit n.
func P(n int) Keycode {
	if n == 0 {
		return basic(0x62)
	}
	return basic(0x59 + uint16(n-1))
}

// F returns function key n for n in 13..24.
func F(n int) Keycode {
	return basic(0x68 + uint16(n-13))
}

// Consumer page usages.
var (
	Mute    = consumer(0xE2)
	VolUp   = consumer(0xE9)
	VolDown = consumer(0xEA)
	MNext   = consumer(0xB5)
	MPrev   = consumer(0xB6)
	MStop   = consumer(0xB7)
	MPlay   = consumer(0xCD)
	MFFwd   = consumer(0xB3)
	MRewind = consumer(0xB4)
	MSelect = consumer(0x183)
)

var basicNames = map[uint16]string{
	0x04: "a", 0x06: "c", 0x15: "r", 0x16: "s", 0x19: "v", 0x1B: "x", 0x1D: "z",
	0x28: "enter", 0x2A: "backspace", 0x2B: "tab", 0x2C: "space",
	0x4A: "home", 0x4C: "delete", 0x4D: "end",
	0x4F: "right", 0x50: "left", 0x51: "down", 0x52: "up",
	0x53: "num_lock", 0x54: "kp_slash", 0x55: "kp_asterisk", 0x56: "kp_minus",
	0x57: "kp_plus", 0x58: "kp_enter", 0x62: "kp_0", 0x63: "kp_dot",
}

var consumerNames = map[uint16]string{
	0xE2: "mute", 0xE9: "volume_up", 0xEA: "volume_down",
	0xB5: "next_track", 0xB6: "prev_track", 0xB7: "stop",
	0xCD: "play_pause", 0xB3: "fast_forward", 0xB4: "rewind", 0x183: "media_select",
}

func usageName(u uint16) (string, bool) {
	switch {
	case u >= 0x59 && u <= 0x61:
		return fmt.Sprintf("kp_%d", u-0x58), true
	case u >= 0x68 && u <= 0x73:
		return fmt.Sprintf("f%d", u-0x68+13), true
	}
	name, ok := basicNames[u]
	return name, ok
}

// String is the name used for host actions, e.g. "ctrl+shift+left" or "mute".
func (k Keycode) String() string {
	switch k.Kind {
	case KindNone:
		return "no"
	case KindBasic:
		name, ok := usageName(k.Usage)
		if !ok {
			name = fmt.Sprintf("0x%02x", k.Usage)
		}
		return k.Mods.prefix() + name
	case KindConsumer:
		if name, ok := consumerNames[k.Usage]; ok {
			return name
		}
		return fmt.Sprintf("consumer_0x%03x", k.Usage)
	case KindWheel:
		if k.Usage == 1 {
			return "wheel_up"
		}
		return "wheel_down"
	case KindMomentary:
		return fmt.Sprintf("mo(%s)", k.Layer)
	case KindTo:
		return fmt.Sprintf("to(%s)", k.Layer)
	case KindCommand:
		return "cmd(" + k.Command.String() + ")"
	}
	return fmt.Sprintf("unknown(%d)", k.Kind)
}
