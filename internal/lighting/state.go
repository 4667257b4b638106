package lighting

import "keypad-service/internal/types"

const (
	HueStep          = 8
	SatStep          = 8
	DefaultValStep   = 8
	WanderStepMs     = 10
	WanderPeriodMin  = 20
	WanderPeriodMax  = 1000
	DefaultFrameMs   = 20
	IndicatorVal     = 255
	defaultWanderMs  = 120
	defaultIndicator = 1200
	defaultDotHold   = 800
)

var layerHues = [types.LayerCount]uint8{149, 64, 170, 213, 0, 85}

var layerLEDs = [types.LayerCount]int{0, 2, 4, 6, 8, 9}

// HueForLayer returns the fixed hue of a layer, the base hue when unknown.
func HueForLayer(l types.Layer) uint8 {
	if int(l) < len(layerHues) {
		return layerHues[l]
	}
	return layerHues[types.LayerBase]
}

// LEDForLayer returns the LED that flashes when a layer becomes active.
func LEDForLayer(l types.Layer) int {
	if int(l) < len(layerLEDs) {
		return layerLEDs[l]
	}
	return layerLEDs[types.LayerBase]
}

// Settings seeds a State at boot.
type Settings struct {
	Mode           types.RenderMode
	Hue            uint8
	Sat            uint8
	ValMax         uint8
	ValMin         uint8
	ValStep        uint8
	WanderPeriodMs uint32
	IndicatorHold  uint32
	DotHold        uint32
}

func DefaultSettings() Settings {
	return Settings{
		Mode:           types.ModeWanderOnly,
		Hue:            HueForLayer(types.LayerBase),
		Sat:            255,
		ValMax:         80,
		ValMin:         8,
		ValStep:        DefaultValStep,
		WanderPeriodMs: defaultWanderMs,
		IndicatorHold:  defaultIndicator,
		DotHold:        defaultDotHold,
	}
}

// State is the lighting state owned by the scan loop.
type State struct {
	Mode         types.RenderMode
	Hue          uint8
	Sat          uint8
	ValMax       uint8
	ValMin       uint8
	ValStep      uint8
	WanderPos    int
	WanderPeriod uint32
	Enabled      bool
	Asleep       bool
	Layer        types.Layer

	Indicator LayerIndicator
	Dot       EncoderDot

	wanderStepAt types.Timestamp
}

func NewState(s Settings) *State {
	if s.ValStep == 0 {
		s.ValStep = DefaultValStep
	}
	if s.ValMin > s.ValMax {
		s.ValMin = s.ValMax
	}
	return &State{
		Mode:         s.Mode,
		Hue:          s.Hue,
		Sat:          s.Sat,
		ValMax:       s.ValMax,
		ValMin:       s.ValMin,
		ValStep:      s.ValStep,
		WanderPeriod: ClampWanderPeriod(int64(s.WanderPeriodMs)),
		Enabled:      true,
		Layer:        types.LayerBase,
		Indicator:    LayerIndicator{Hold: s.IndicatorHold},
		Dot:          EncoderDot{Hold: s.DotHold},
	}
}

// ResetWander restarts the comet step timer.
func (s *State) ResetWander(now types.Timestamp) {
	s.wanderStepAt = now
}

// AdvanceWander moves the comet one LED per elapsed wander period.
func (s *State) AdvanceWander(now types.Timestamp) {
	period := s.WanderPeriod
	if period == 0 {
		return
	}
	elapsed := types.Elapsed(s.wanderStepAt, now)
	if elapsed < period {
		return
	}
	steps := elapsed / period
	s.WanderPos = (s.WanderPos + int(steps%LEDCount)) % LEDCount
	s.wanderStepAt += types.Timestamp(steps * period)
}

// Dispatch applies a lighting command on key press. It reports whether the
// command was consumed; releases are never consumed.
func (s *State) Dispatch(cmd types.Command, pressed bool, now types.Timestamp) bool {
	if !pressed {
		return false
	}

	switch cmd {
	case types.CmdToggle:
		s.Enabled = !s.Enabled
		if s.Enabled {
			s.Indicator.Activate(LEDForLayer(s.Layer), now)
		}
	case types.CmdCycleMode:
		s.Mode = s.Mode.Next()
	case types.CmdHueUp:
		s.Hue += HueStep
	case types.CmdHueDown:
		s.Hue -= HueStep
	case types.CmdSatUp:
		s.Sat = addClamp(s.Sat, SatStep)
	case types.CmdSatDown:
		s.Sat = subClamp(s.Sat, SatStep)
	case types.CmdValUp:
		s.ValMax = addClamp(s.ValMax, s.ValStep)
	case types.CmdValDown:
		s.ValMax = subClamp(s.ValMax, s.ValStep)
		if s.ValMin > s.ValMax {
			s.ValMin = s.ValMax
		}
	case types.CmdWanderSpeedUp:
		s.WanderPeriod = ClampWanderPeriod(int64(s.WanderPeriod) - WanderStepMs)
	case types.CmdWanderSpeedDown:
		s.WanderPeriod = ClampWanderPeriod(int64(s.WanderPeriod) + WanderStepMs)
	default:
		return false
	}
	return true
}

// OnLayerChange recolours for the new highest layer and flashes its
// indicator LED when the layer actually changed.
func (s *State) OnLayerChange(layer types.Layer, now types.Timestamp) {
	s.Hue = HueForLayer(layer)
	if layer != s.Layer {
		s.Indicator.Activate(LEDForLayer(layer), now)
	}
	s.Layer = layer
}

// ClampWanderPeriod limits a wander period to the supported range.
func ClampWanderPeriod(ms int64) uint32 {
	switch {
	case ms < WanderPeriodMin:
		return WanderPeriodMin
	case ms > WanderPeriodMax:
		return WanderPeriodMax
	}
	return uint32(ms)
}
