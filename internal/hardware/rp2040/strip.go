//go:build tinygo

// Package rp2040 adapts the lighting engine to an RP2040 board under TinyGo.
package rp2040

import (
	"image/color"
	"machine"
	"time"

	"tinygo.org/x/drivers/ws2812"

	"keypad-service/internal/lighting"
	"keypad-service/internal/types"
)

// Strip drives WS2812 LEDs from a single GPIO.
type Strip struct {
	dev     ws2812.Device
	limit   uint8
	staged  [lighting.LEDCount]lighting.LED
	colors  [lighting.LEDCount]color.RGBA
	enabled bool
}

func NewStrip(pin machine.Pin, limit uint8) *Strip {
	pin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	return &Strip{dev: ws2812.New(pin), limit: limit}
}

func (s *Strip) SetHSV(index int, hue, sat, val uint8) {
	if index < 0 || index >= lighting.LEDCount {
		return
	}
	s.staged[index] = lighting.LED{Hue: hue, Sat: sat, Val: val}
}

func (s *Strip) Flush() error {
	if !s.enabled {
		return nil
	}
	for i, led := range s.staged {
		r, g, b := lighting.RGB(led.Limit(s.limit))
		s.colors[i] = color.RGBA{R: r, G: g, B: b, A: 255}
	}
	return s.dev.WriteColors(s.colors[:])
}

func (s *Strip) Enable() error {
	s.enabled = true
	return nil
}

func (s *Strip) Disable() error {
	s.enabled = false
	var off [lighting.LEDCount]color.RGBA
	return s.dev.WriteColors(off[:])
}

// Button reads an active-low pushbutton with the internal pull-up enabled.
type Button struct {
	pin machine.Pin
}

func NewButton(pin machine.Pin) Button {
	pin.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
	return Button{pin: pin}
}

func (b Button) Pressed() bool {
	return !b.pin.Get()
}

// Clock counts milliseconds since it was created.
type Clock struct {
	start time.Time
}

func NewClock() Clock {
	return Clock{start: time.Now()}
}

func (c Clock) Now() types.Timestamp {
	return types.Timestamp(time.Since(c.start).Milliseconds())
}
