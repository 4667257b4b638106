package hardware

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/devices/v3/ssd1306/image1bit"
)

type fakeDisplay struct {
	bounds image.Rectangle
	last   *image1bit.VerticalLSB
	draws  int
	halted bool
}

func (f *fakeDisplay) Bounds() image.Rectangle { return f.bounds }

func (f *fakeDisplay) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	f.draws++
	img := image1bit.NewVerticalLSB(f.bounds)
	copy(img.Pix, src.(*image1bit.VerticalLSB).Pix)
	f.last = img
	return nil
}

func (f *fakeDisplay) Halt() error {
	f.halted = true
	return nil
}

func litPixels(img *image1bit.VerticalLSB) int {
	n := 0
	for _, b := range img.Pix {
		for ; b != 0; b &= b - 1 {
			n++
		}
	}
	return n
}

func TestSSD1306ShowAndBlank(t *testing.T) {
	dev := &fakeDisplay{bounds: image.Rect(0, 0, 128, 64)}
	d := newSSD1306(dev)

	require.NoError(t, d.Show([]string{"Silent 3x3", "Layer: Base   ", "Goto: Edit   "}))
	assert.Equal(t, 1, dev.draws)
	assert.NotZero(t, litPixels(dev.last))

	require.NoError(t, d.Blank())
	assert.Zero(t, litPixels(dev.last))

	require.NoError(t, d.Close())
	assert.True(t, dev.halted)
}

func TestSSD1306ShortPanelCompressesLines(t *testing.T) {
	dev := &fakeDisplay{bounds: image.Rect(0, 0, 128, 32)}
	d := newSSD1306(dev)

	require.NoError(t, d.Show([]string{"a", "b", "c"}))
	assert.NotZero(t, litPixels(dev.last))
}
