package hardware

import "periph.io/x/conn/v3/physic"

const (
	// EncoderButtonPin names the encoder pushbutton line in pin mappings.
	EncoderButtonPin = "encoder_button"

	// DefaultSPIFreq encodes WS2812 bits at 2.5MHz, three SPI bits per LED bit.
	DefaultSPIFreq = 2500 * physic.KiloHertz

	ConsumerName = "keypad-service"
)

// evdev event types and codes
const (
	evSyn = 0x00
	evKey = 0x01
	evRel = 0x02

	relX     = 0x00
	relY     = 0x01
	relWheel = 0x08

	// EVIOCGKEY(128)
	eviocgkey     = 0x80804518
	keyBitmapSize = 128
)

// PinMapping locates a GPIO line.
type PinMapping struct {
	Chip string
	Line int
}
