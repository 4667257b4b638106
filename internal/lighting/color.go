package lighting

import colorful "github.com/lucasb-eyer/go-colorful"

// RGB converts an 8-bit HSV pixel to 8-bit RGB.
func RGB(led LED) (r, g, b uint8) {
	if led.Val == 0 {
		return 0, 0, 0
	}
	c := colorful.Hsv(float64(led.Hue)*360/256, float64(led.Sat)/255, float64(led.Val)/255)
	return c.RGB255()
}

// Limit caps the pixel value the way a brightness ceiling would.
func (led LED) Limit(max uint8) LED {
	if led.Val > max {
		led.Val = max
	}
	return led
}
