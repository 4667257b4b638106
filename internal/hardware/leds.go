package hardware

import (
	"fmt"
	"sync"

	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/devices/v3/nrzled"
	"periph.io/x/host/v3"

	"keypad-service/internal/lighting"
)

type pixelWriter interface {
	Write(pixels []byte) (int, error)
	Halt() error
}

// NeoPixelStrip drives WS2812 LEDs through an SPI port, capping every pixel
// value at a brightness limit before conversion to RGB.
type NeoPixelStrip struct {
	dev     pixelWriter
	closer  func() error
	limit   uint8
	staged  [lighting.LEDCount]lighting.LED
	rgb     []byte
	enabled bool
	mu      sync.Mutex
}

// OpenNeoPixelStrip initializes the host drivers and opens an SPI port by
// name, the first available when empty.
func OpenNeoPixelStrip(portName string, freq physic.Frequency, limit uint8) (*NeoPixelStrip, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periph host init: %w", err)
	}
	p, err := spireg.Open(portName)
	if err != nil {
		return nil, fmt.Errorf("open spi %q: %w", portName, err)
	}
	s, err := NewNeoPixelStrip(p, freq, limit)
	if err != nil {
		p.Close()
		return nil, err
	}
	s.closer = p.Close
	return s, nil
}

func NewNeoPixelStrip(p spi.Port, freq physic.Frequency, limit uint8) (*NeoPixelStrip, error) {
	if freq == 0 {
		freq = DefaultSPIFreq
	}
	dev, err := nrzled.NewSPI(p, &nrzled.Opts{
		NumPixels: lighting.LEDCount,
		Channels:  3,
		Freq:      freq,
	})
	if err != nil {
		return nil, fmt.Errorf("nrzled: %w", err)
	}
	return &NeoPixelStrip{
		dev:   dev,
		limit: limit,
		rgb:   make([]byte, lighting.LEDCount*3),
	}, nil
}

func (s *NeoPixelStrip) SetHSV(index int, hue, sat, val uint8) {
	if index < 0 || index >= lighting.LEDCount {
		return
	}
	s.mu.Lock()
	s.staged[index] = lighting.LED{Hue: hue, Sat: sat, Val: val}
	s.mu.Unlock()
}

// Flush converts the staged pixels and writes them in one transfer. It is a
// no-op while the strip is disabled.
func (s *NeoPixelStrip) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.enabled {
		return nil
	}
	for i, led := range s.staged {
		r, g, b := lighting.RGB(led.Limit(s.limit))
		s.rgb[i*3] = r
		s.rgb[i*3+1] = g
		s.rgb[i*3+2] = b
	}
	if _, err := s.dev.Write(s.rgb); err != nil {
		return fmt.Errorf("write pixels: %w", err)
	}
	return nil
}

func (s *NeoPixelStrip) Enable() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enabled = true
	return nil
}

// Disable blanks the strip and stops further writes.
func (s *NeoPixelStrip) Disable() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enabled = false
	return s.dev.Halt()
}

func (s *NeoPixelStrip) Close() error {
	err := s.Disable()
	if s.closer != nil {
		if cerr := s.closer(); err == nil {
			err = cerr
		}
	}
	return err
}
