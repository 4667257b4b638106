package core

import (
	"fmt"
	"strconv"

	"keypad-service/internal/lighting"
	"keypad-service/internal/messaging"
	"keypad-service/internal/types"
)

func (v *KeypadSystem) handleRemoteCommand(cmd types.Command) error {
	v.logger.Debugf("Handling remote command: %s", cmd)
	if !cmd.Valid() {
		return fmt.Errorf("invalid command: %d", cmd)
	}
	return v.post(func() {
		now := v.clock.Now()
		v.touch(now)
		v.dispatch(cmd, true, now)
	})
}

func (v *KeypadSystem) handleRemoteLayer(layer types.Layer) error {
	v.logger.Debugf("Handling remote layer request: %s", layer)
	if int(layer) >= len(v.keymap.Layers) {
		return fmt.Errorf("layer %s not in keymap %s", layer, v.keymap.Name)
	}
	return v.post(func() {
		v.touch(v.clock.Now())
		v.moveLayer(layer)
	})
}

// handleSetting applies a keypad.* field of the settings hash.
func (v *KeypadSystem) handleSetting(key, value string) error {
	v.logger.Debugf("Handling setting update: %s=%s", key, value)

	switch key {
	case "mode":
		mode, err := types.ParseRenderMode(value)
		if err != nil {
			return err
		}
		return v.postSetting(func() { v.light.Mode = mode })

	case "wander-period-ms":
		ms, err := strconv.ParseInt(value, 10, 32)
		if err != nil {
			return fmt.Errorf("invalid wander period %q: %w", value, err)
		}
		return v.postSetting(func() { v.light.WanderPeriod = lighting.ClampWanderPeriod(ms) })

	case "hue", "sat", "val-max", "val-min":
		n, err := strconv.ParseUint(value, 10, 8)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", key, value, err)
		}
		b := uint8(n)
		return v.postSetting(func() {
			switch key {
			case "hue":
				v.light.Hue = b
			case "sat":
				v.light.Sat = b
			case "val-max":
				v.light.ValMax = b
				if v.light.ValMin > b {
					v.light.ValMin = b
				}
			case "val-min":
				v.light.ValMin = min(b, v.light.ValMax)
			}
		})

	case "enabled":
		on, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid enabled flag %q: %w", value, err)
		}
		return v.postSetting(func() { v.light.Enabled = on })

	default:
		v.logger.Debugf("Unknown setting %s", key)
		return nil
	}
}

// postSetting applies a setting on the scan loop and repaints.
func (v *KeypadSystem) postSetting(apply func()) error {
	return v.post(func() {
		apply()
		v.render(true)
		v.publishState(v.lightingFields())
	})
}

// HandleControl applies a control message from the preview socket, using
// the syntax of the Redis command list.
func (v *KeypadSystem) HandleControl(value string) error {
	rc, err := messaging.ParseRemoteCommand(value)
	if err != nil {
		return err
	}
	if rc.IsLayer {
		return v.handleRemoteLayer(rc.Layer)
	}
	return v.handleRemoteCommand(rc.Command)
}
