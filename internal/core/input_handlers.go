package core

import (
	"keypad-service/internal/fsm"
	"keypad-service/internal/hardware"
	"keypad-service/internal/input"
	"keypad-service/internal/keymap"
	"keypad-service/internal/lighting"
	"keypad-service/internal/types"
)

// Host action prefixes pushed to the HID list.
const (
	actionPress   = "press:"
	actionRelease = "release:"
	actionTap     = "tap:"
	actionWheel   = "wheel:"
)

var (
	clickEdit  = keymap.Ctrl(keymap.S)
	clickMedia = keymap.Mute
	clickFn    = keymap.F(23)
)

// OnPostInit brings up the encoder button and the strip and paints the
// first frame.
func (v *KeypadSystem) OnPostInit() {
	if err := v.io.ConfigureInputPullup(hardware.EncoderButtonPin); err != nil {
		v.logger.Warnf("Failed to configure encoder button: %v", err)
	}

	now := v.clock.Now()
	v.light.Hue = lighting.HueForLayer(v.layers.Highest())
	v.lastInput = now
	if v.status != nil {
		v.status.Touch(now)
	}

	if err := v.strip.Enable(); err != nil {
		v.logger.Warnf("Failed to enable LED strip: %v", err)
	}
	v.light.ResetWander(now)
	v.render(true)
}

// OnScanTick samples the encoder button once per scan.
func (v *KeypadSystem) OnScanTick() {
	now := v.clock.Now()

	level, err := v.io.ReadPin(hardware.EncoderButtonPin)
	if err != nil {
		if !v.pinFailed {
			v.logger.Warnf("Failed to read encoder button: %v", err)
			v.pinFailed = true
		}
		level = true
	} else {
		v.pinFailed = false
	}

	// Active low: the button shorts the pulled-up line to ground
	switch v.button.Sample(!level, now) {
	case input.EdgePressed:
		v.touch(now)
		if !v.usesSelector() {
			v.dispatch(types.CmdToggle, true, now)
		}
	case input.EdgeReleased:
		if v.usesSelector() && v.button.Click() {
			v.handleClick(now)
		}
	}

	v.checkSleep(now)
}

// handleClick performs the short-click action of the active layer.
func (v *KeypadSystem) handleClick(now types.Timestamp) {
	layer := v.layers.Highest()
	v.logger.Debugf("Encoder click on layer %s", layer)

	switch layer {
	case types.LayerBase, types.LayerSelect:
		v.sendEvent(fsm.EvClick)
	case types.LayerEdit:
		v.tap(clickEdit)
	case types.LayerMedia:
		v.tap(clickMedia)
	case types.LayerFn:
		v.tap(clickFn)
	case types.LayerRGB:
		v.dispatch(types.CmdToggle, true, now)
	}
}

// OnEncoderTick handles one detent. It returns false since rotation is
// fully handled here.
func (v *KeypadSystem) OnEncoderTick(index int, clockwise bool) bool {
	now := v.clock.Now()
	v.touch(now)
	v.light.Dot.Turn(clockwise, now)

	if !v.usesSelector() {
		v.wheel(clockwise)
		return false
	}

	layer := v.layers.Highest()

	if v.button.Held() {
		v.button.MarkTurn()
		if layer == types.LayerSelect {
			return false
		}
		if clockwise {
			v.sendEvent(fsm.EvHoldTurnCW)
		} else {
			v.sendEvent(fsm.EvHoldTurnCCW)
		}
		return false
	}

	switch layer {
	case types.LayerBase, types.LayerEdit, types.LayerFn:
		v.wheel(clockwise)
	case types.LayerMedia:
		if clockwise {
			v.tap(keymap.VolUp)
		} else {
			v.tap(keymap.VolDown)
		}
	case types.LayerRGB:
		if clockwise {
			v.dispatch(types.CmdValUp, true, now)
		} else {
			v.dispatch(types.CmdValDown, true, now)
		}
	case types.LayerSelect:
		n := types.Layer(len(fsm.SelectableLayers))
		if clockwise {
			v.pending = (v.pending + 1) % n
		} else {
			v.pending = (v.pending + n - 1) % n
		}
		v.logger.Debugf("Selector pending layer: %s", v.pending)
	}
	return false
}

// processKeyEvent resolves a matrix event to a keycode and runs the key
// hook followed by default processing.
func (v *KeypadSystem) processKeyEvent(row, col int, pressed bool) {
	idx := row*v.keymap.Cols + col
	if v.bootHeld[idx] {
		if !pressed {
			delete(v.bootHeld, idx)
		}
		return
	}
	if pressed {
		v.held[idx] = v.keymap.At(v.layers.Highest(), row, col)
	}
	kc, ok := v.held[idx]
	if !ok {
		return
	}
	if !pressed {
		defer delete(v.held, idx)
	}

	if v.OnKeyEvent(row, col, pressed) {
		v.processKey(kc, pressed)
	}
}

// OnKeyEvent runs lighting commands. It returns false when the key was
// consumed and default processing must be skipped.
func (v *KeypadSystem) OnKeyEvent(row, col int, pressed bool) bool {
	now := v.clock.Now()
	v.touch(now)

	kc := v.held[row*v.keymap.Cols+col]
	if kc.Kind != keymap.KindCommand {
		return true
	}
	return !v.dispatch(kc.Command, pressed, now)
}

// processKey is the default handling for keys the hook passed through.
func (v *KeypadSystem) processKey(kc keymap.Keycode, pressed bool) {
	switch kc.Kind {
	case keymap.KindBasic, keymap.KindConsumer:
		if pressed {
			v.sendHostAction(actionPress + kc.String())
		} else {
			v.sendHostAction(actionRelease + kc.String())
		}
	case keymap.KindWheel:
		if pressed {
			v.wheel(kc == keymap.WheelUp)
		}
	case keymap.KindMomentary:
		if pressed {
			v.layers.On(kc.Layer)
		} else {
			v.layers.Off(kc.Layer)
		}
		v.applyLayerState()
	case keymap.KindTo:
		if pressed {
			v.moveLayer(kc.Layer)
		}
	}
}

// OnOledRender refreshes the status display. It returns false when the
// display is handled here.
func (v *KeypadSystem) OnOledRender() bool {
	if v.status == nil {
		return true
	}
	lines, err := v.status.Render(v.display, v.layers.Highest(), v.pending, v.clock.Now())
	if err != nil {
		v.logger.Warnf("Failed to update display: %v", err)
	}
	if lines == nil {
		return false
	}

	v.oledLines = lines
	if v.link != nil {
		if err := v.link.PublishOled(lines); err != nil {
			v.logger.Warnf("Failed to publish display text: %v", err)
		}
	}
	return false
}

// dispatch applies a lighting command and repaints at once when it was
// consumed. Only presses are consumed.
func (v *KeypadSystem) dispatch(cmd types.Command, pressed bool, now types.Timestamp) bool {
	if !v.light.Dispatch(cmd, pressed, now) {
		return false
	}
	v.logger.Debugf("Lighting command %s", cmd)
	v.render(true)
	v.publishState(v.lightingFields())
	return true
}

func (v *KeypadSystem) tap(kc keymap.Keycode) {
	v.sendHostAction(actionTap + kc.String())
}

func (v *KeypadSystem) wheel(clockwise bool) {
	if clockwise {
		v.sendHostAction(actionWheel + "up")
	} else {
		v.sendHostAction(actionWheel + "down")
	}
}

func (v *KeypadSystem) sendHostAction(action string) {
	if v.link == nil {
		v.logger.Debugf("Host action (no link): %s", action)
		return
	}
	if err := v.link.SendHostAction(action); err != nil {
		v.logger.Warnf("Failed to send host action %s: %v", action, err)
	}
}
