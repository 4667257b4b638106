package lighting

import "keypad-service/internal/types"

var cometLevels = [3]uint8{255, 112, 40}

// Timing holds the renderer's clock parameters in milliseconds.
type Timing struct {
	FrameInterval uint32
	BreathPeriod  uint32
	RainbowStep   uint32
}

func DefaultTiming() Timing {
	return Timing{
		FrameInterval: DefaultFrameMs,
		BreathPeriod:  2500,
		RainbowStep:   12,
	}
}

// NoiseFunc returns a dither noise byte for a time and per-LED salt.
type NoiseFunc func(now types.Timestamp, salt uint8) uint8

type Renderer struct {
	strip      Strip
	timing     Timing
	noise      NoiseFunc
	lastRender types.Timestamp
	rendered   bool
	frame      Frame
}

func NewRenderer(strip Strip, timing Timing) *Renderer {
	if timing.FrameInterval == 0 {
		timing.FrameInterval = DefaultFrameMs
	}
	if timing.BreathPeriod == 0 {
		timing.BreathPeriod = DefaultTiming().BreathPeriod
	}
	if timing.RainbowStep == 0 {
		timing.RainbowStep = DefaultTiming().RainbowStep
	}
	return &Renderer{
		strip:  strip,
		timing: timing,
		noise:  CheapNoise,
	}
}

// SetNoise replaces the dither noise source.
func (r *Renderer) SetNoise(n NoiseFunc) {
	r.noise = n
}

// Frame returns the last frame written to the strip.
func (r *Renderer) Frame() Frame {
	return r.frame
}

// Render composes and flushes a frame when the frame interval has elapsed
// since the previous one, or unconditionally when force is set. It reports
// whether a frame was written.
func (r *Renderer) Render(st *State, now types.Timestamp, force bool) (Frame, bool, error) {
	if !force && r.rendered && types.Elapsed(r.lastRender, now) < r.timing.FrameInterval {
		return r.frame, false, nil
	}
	r.lastRender = now
	r.rendered = true

	st.AdvanceWander(now)

	var f Frame
	if st.Enabled && !st.Asleep {
		r.compose(&f, st, now)
	}

	for i := range f {
		r.strip.SetHSV(i, f[i].Hue, f[i].Sat, f[i].Val)
	}
	r.frame = f
	return f, true, r.strip.Flush()
}

func (r *Renderer) compose(f *Frame, st *State, now types.Timestamp) {
	switch st.Mode {
	case types.ModeAllBreathing:
		r.breathe(f, st, now)
	case types.ModeBreathingPlusWander:
		r.breathe(f, st, now)
		r.comet(f, st, now)
	case types.ModeWanderOnly:
		r.comet(f, st, now)
	}

	if st.Indicator.Live(now) {
		f[st.Indicator.LED] = LED{Hue: st.Hue, Sat: st.Sat, Val: IndicatorVal}
	}

	if level, ok := st.Dot.Level(now); ok {
		pos := st.Dot.Pos
		f[pos] = LED{Hue: st.Hue, Sat: st.Sat, Val: Dither(level, st.ValMax, r.noise(now, uint8(LEDCount+pos)))}
	}
}

func (r *Renderer) breathPhase(now types.Timestamp) uint8 {
	period := uint64(r.timing.BreathPeriod)
	return uint8(uint64(now) % period * 256 / period)
}

func (r *Renderer) breathe(f *Frame, st *State, now types.Timestamp) {
	amp := st.ValMax - st.ValMin
	val := st.ValMin + Dither(Sin8(r.breathPhase(now)), amp, r.noise(now, 0))
	for i := range f {
		f[i] = LED{Hue: st.Hue, Sat: st.Sat, Val: val}
	}
}

// comet draws a bright head at WanderPos with a fading tail behind it,
// replacing whatever the base layer drew on those pixels.
func (r *Renderer) comet(f *Frame, st *State, now types.Timestamp) {
	for k, level := range cometLevels {
		idx := (st.WanderPos - k + LEDCount) % LEDCount
		val := Dither(level, st.ValMax, r.noise(now, uint8(1+k)))
		hue := st.Hue
		if st.Layer == types.LayerBase {
			hue = r.rainbowHue(idx, now)
		}
		f[idx] = LED{Hue: hue, Sat: st.Sat, Val: val}
	}
}

func (r *Renderer) rainbowHue(idx int, now types.Timestamp) uint8 {
	return uint8(uint32(now)/r.timing.RainbowStep) + uint8(idx*256/LEDCount)
}
