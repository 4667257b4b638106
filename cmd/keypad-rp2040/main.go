//go:build tinygo

// Firmware build of the numpad lighting loop: the encoder button on GP12
// toggles the underglow on GP13.
package main

import (
	"machine"
	"time"

	"keypad-service/internal/hardware/rp2040"
	"keypad-service/internal/input"
	"keypad-service/internal/lighting"
	"keypad-service/internal/types"
)

const limitVal = 80

func main() {
	strip := rp2040.NewStrip(machine.GP13, limitVal)
	button := rp2040.NewButton(machine.GP12)
	clock := rp2040.NewClock()

	state := lighting.NewState(lighting.DefaultSettings())
	renderer := lighting.NewRenderer(strip, lighting.DefaultTiming())
	debounced := input.NewButton(input.DefaultDebounceMs)

	strip.Enable()
	now := clock.Now()
	state.ResetWander(now)
	renderer.Render(state, now, true)

	for {
		now = clock.Now()
		if debounced.Sample(button.Pressed(), now) == input.EdgePressed {
			if state.Dispatch(types.CmdToggle, true, now) {
				renderer.Render(state, now, true)
			}
		}
		renderer.Render(state, now, false)
		time.Sleep(time.Millisecond)
	}
}
