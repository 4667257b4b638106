package hardware

import (
	"fmt"
	"image"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/devices/v3/ssd1306/image1bit"
	"periph.io/x/host/v3"
)

type displayDevice interface {
	Bounds() image.Rectangle
	Draw(r image.Rectangle, src image.Image, sp image.Point) error
	Halt() error
}

// SSD1306 renders status text lines on a monochrome OLED.
type SSD1306 struct {
	dev    displayDevice
	closer func() error
	img    *image1bit.VerticalLSB
	face   font.Face
}

// OpenSSD1306 opens an I2C bus by name, the first available when empty.
func OpenSSD1306(busName string, width, height int) (*SSD1306, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periph host init: %w", err)
	}
	b, err := i2creg.Open(busName)
	if err != nil {
		return nil, fmt.Errorf("open i2c %q: %w", busName, err)
	}
	d, err := NewSSD1306(b, width, height)
	if err != nil {
		b.Close()
		return nil, err
	}
	d.closer = b.Close
	return d, nil
}

func NewSSD1306(bus i2c.Bus, width, height int) (*SSD1306, error) {
	opts := ssd1306.DefaultOpts
	opts.W = width
	opts.H = height
	dev, err := ssd1306.NewI2C(bus, &opts)
	if err != nil {
		return nil, fmt.Errorf("ssd1306: %w", err)
	}
	return newSSD1306(dev), nil
}

func newSSD1306(dev displayDevice) *SSD1306 {
	return &SSD1306{
		dev:  dev,
		img:  image1bit.NewVerticalLSB(dev.Bounds()),
		face: basicfont.Face7x13,
	}
}

// Show draws each line on its own row, clearing the rest of the screen.
func (d *SSD1306) Show(lines []string) error {
	d.clear()

	bounds := d.img.Bounds()
	pitch := d.face.Metrics().Height.Ceil()
	if n := len(lines); n > 0 && pitch*n > bounds.Dy() {
		pitch = bounds.Dy() / n
	}
	ascent := d.face.Metrics().Ascent.Ceil()

	drawer := font.Drawer{
		Dst:  d.img,
		Src:  image.NewUniform(image1bit.On),
		Face: d.face,
	}
	for i, line := range lines {
		drawer.Dot = fixed.P(0, ascent+i*pitch)
		drawer.DrawString(line)
	}
	return d.flush()
}

// Blank clears the screen.
func (d *SSD1306) Blank() error {
	d.clear()
	return d.flush()
}

func (d *SSD1306) clear() {
	draw.Draw(d.img, d.img.Bounds(), image.NewUniform(image1bit.Off), image.Point{}, draw.Src)
}

func (d *SSD1306) flush() error {
	if err := d.dev.Draw(d.dev.Bounds(), d.img, image.Point{}); err != nil {
		return fmt.Errorf("draw: %w", err)
	}
	return nil
}

func (d *SSD1306) Close() error {
	err := d.dev.Halt()
	if d.closer != nil {
		if cerr := d.closer(); err == nil {
			err = cerr
		}
	}
	return err
}
