package types

import "fmt"

// Timestamp is a wrapping millisecond counter.
type Timestamp uint32

// Elapsed returns the milliseconds from since to now, correct across one wrap.
func Elapsed(since, now Timestamp) uint32 {
	return uint32(now - since)
}

type Layer uint8

const (
	LayerBase Layer = iota
	LayerEdit
	LayerMedia
	LayerFn
	LayerRGB
	LayerSelect
)

// LayerCount is the number of layers known to the lighting tables.
const LayerCount = 6

func (l Layer) String() string {
	switch l {
	case LayerBase:
		return "base"
	case LayerEdit:
		return "edit"
	case LayerMedia:
		return "media"
	case LayerFn:
		return "fn"
	case LayerRGB:
		return "rgb"
	case LayerSelect:
		return "select"
	}
	return fmt.Sprintf("layer-%d", uint8(l))
}

// DisplayName is the padded label shown on the status display.
func (l Layer) DisplayName() string {
	switch l {
	case LayerBase:
		return "Base   "
	case LayerEdit:
		return "Edit   "
	case LayerMedia:
		return "Media  "
	case LayerFn:
		return "Fn Keys"
	case LayerRGB:
		return "RGB    "
	case LayerSelect:
		return "Select "
	}
	return "???    "
}

// ParseLayer accepts either a layer name or its index.
func ParseLayer(s string) (Layer, error) {
	for l := LayerBase; l <= LayerSelect; l++ {
		if l.String() == s {
			return l, nil
		}
	}
	var n int
	if _, err := fmt.Sscanf(s, "%d", &n); err != nil || n < 0 || n >= LayerCount {
		return 0, fmt.Errorf("unknown layer %q", s)
	}
	return Layer(n), nil
}

type RenderMode uint8

const (
	ModeWanderOnly RenderMode = iota
	ModeBreathingPlusWander
	ModeAllBreathing
)

// Next cycles WanderOnly -> BreathingPlusWander -> AllBreathing -> WanderOnly.
func (m RenderMode) Next() RenderMode {
	switch m {
	case ModeWanderOnly:
		return ModeBreathingPlusWander
	case ModeBreathingPlusWander:
		return ModeAllBreathing
	default:
		return ModeWanderOnly
	}
}

func (m RenderMode) String() string {
	switch m {
	case ModeWanderOnly:
		return "wander"
	case ModeBreathingPlusWander:
		return "breathing-wander"
	case ModeAllBreathing:
		return "breathing"
	}
	return fmt.Sprintf("mode-%d", uint8(m))
}

func ParseRenderMode(s string) (RenderMode, error) {
	for _, m := range []RenderMode{ModeWanderOnly, ModeBreathingPlusWander, ModeAllBreathing} {
		if m.String() == s {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown render mode %q", s)
}

// Command is a lighting command bound to a key or sent remotely.
type Command uint8

const (
	CmdNone Command = iota
	CmdToggle
	CmdCycleMode
	CmdHueUp
	CmdHueDown
	CmdSatUp
	CmdSatDown
	CmdValUp
	CmdValDown
	CmdWanderSpeedUp
	CmdWanderSpeedDown
)

var commandNames = map[Command]string{
	CmdToggle:          "toggle",
	CmdCycleMode:       "cycle-mode",
	CmdHueUp:           "hue-up",
	CmdHueDown:         "hue-down",
	CmdSatUp:           "sat-up",
	CmdSatDown:         "sat-down",
	CmdValUp:           "val-up",
	CmdValDown:         "val-down",
	CmdWanderSpeedUp:   "wander-speed-up",
	CmdWanderSpeedDown: "wander-speed-down",
}

func (c Command) String() string {
	if name, ok := commandNames[c]; ok {
		return name
	}
	return "none"
}

// Valid reports whether c names a real command.
func (c Command) Valid() bool {
	_, ok := commandNames[c]
	return ok
}

func ParseCommand(s string) (Command, error) {
	for c, name := range commandNames {
		if name == s {
			return c, nil
		}
	}
	return CmdNone, fmt.Errorf("unknown command %q", s)
}
