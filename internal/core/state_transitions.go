package core

import (
	"keypad-service/internal/fsm"
	"keypad-service/internal/keymap"
	"keypad-service/internal/types"
)

// OnLayerChange recolours the strip for the highest active layer and returns
// the layer mask to keep.
func (v *KeypadSystem) OnLayerChange(mask uint32) uint32 {
	now := v.clock.Now()
	layer := keymap.HighestLayer(mask)
	prev := v.light.Layer

	v.light.OnLayerChange(layer, now)
	if layer != prev {
		v.logger.Infof("Layer change: %s -> %s", prev, layer)
		v.publishState(map[string]interface{}{
			"layer": layer.String(),
			"hue":   v.light.Hue,
		})
	}
	v.render(true)
	return mask
}

func (v *KeypadSystem) applyLayerState() {
	v.layers.Set(v.OnLayerChange(v.layers.State()))
}

// moveLayer makes l the only active layer. With the selector running the
// state machine decides, otherwise the stack is switched directly.
func (v *KeypadSystem) moveLayer(l types.Layer) {
	if int(l) >= len(v.keymap.Layers) {
		v.logger.Warnf("Ignoring move to layer %s: not in keymap %s", l, v.keymap.Name)
		return
	}

	if v.machine != nil {
		ev, ok := fsm.GotoEvent(l)
		if !ok {
			return
		}
		v.sendEvent(ev)
		return
	}

	if v.layers.State() == 1<<l {
		return
	}
	v.layers.Move(l)
	v.applyLayerState()
}

// syncLayerFromMachine moves the layer stack to the machine's state.
func (v *KeypadSystem) syncLayerFromMachine() {
	if v.machine == nil {
		return
	}
	layer, ok := fsm.LayerForState(v.machine.CurrentState())
	if !ok || (v.layers.Highest() == layer && v.light.Layer == layer) {
		return
	}
	v.layers.Move(layer)
	v.applyLayerState()
}

// touch records user activity, waking the strip and the display.
func (v *KeypadSystem) touch(now types.Timestamp) {
	v.lastInput = now
	if v.status != nil {
		v.status.Touch(now)
	}
	if v.light.Asleep {
		v.light.Asleep = false
		v.logger.Infof("Waking from sleep")
		v.light.ResetWander(now)
		v.render(true)
		v.publishState(map[string]interface{}{"asleep": false})
	}
}

// checkSleep blanks the strip after the configured idle time.
func (v *KeypadSystem) checkSleep(now types.Timestamp) {
	timeout := v.cfg.Animation.SleepTimeoutMs
	if timeout == 0 || v.light.Asleep {
		return
	}
	if types.Elapsed(v.lastInput, now) < timeout {
		return
	}
	v.light.Asleep = true
	v.logger.Infof("No input for %d ms, going to sleep", timeout)
	v.render(true)
	v.publishState(map[string]interface{}{"asleep": true})
}

func (v *KeypadSystem) lightingFields() map[string]interface{} {
	return map[string]interface{}{
		"enabled":          v.light.Enabled,
		"mode":             v.light.Mode.String(),
		"hue":              v.light.Hue,
		"sat":              v.light.Sat,
		"val-max":          v.light.ValMax,
		"val-min":          v.light.ValMin,
		"wander-period-ms": v.light.WanderPeriod,
	}
}

func (v *KeypadSystem) stateFields() map[string]interface{} {
	fields := v.lightingFields()
	fields["layer"] = v.layers.Highest().String()
	fields["asleep"] = v.light.Asleep
	fields["profile"] = v.cfg.Profile
	return fields
}

func (v *KeypadSystem) publishState(fields map[string]interface{}) {
	if v.link == nil {
		return
	}
	if err := v.link.PublishState(fields); err != nil {
		v.logger.Warnf("Failed to publish keypad state: %v", err)
	}
}
