package lighting

import "keypad-service/internal/types"

var sin8Interleave = [8]uint8{0, 49, 49, 41, 90, 27, 117, 10}

// Sin8 is an 8-bit sine: 0->128, 64->255, 128->128, 192->1.
// It approximates each quarter wave with four line segments.
func Sin8(theta uint8) uint8 {
	offset := theta
	if theta&0x40 != 0 {
		offset = 255 - offset
	}
	offset &= 0x3F

	secoffset := offset & 0x0F
	if theta&0x40 != 0 {
		secoffset++
	}

	section := offset >> 4
	b := sin8Interleave[section*2]
	m16 := sin8Interleave[section*2+1]
	mx := uint8((uint16(m16) * uint16(secoffset)) >> 4)

	y := int8(mx + b)
	if theta&0x80 != 0 {
		y = -y
	}
	return uint8(y) + 128
}

// Dither scales level by amplitude/255 and rounds the remainder up when the
// noise byte falls below it, so the average output tracks the exact product.
func Dither(level, amplitude, noise uint8) uint8 {
	p := uint16(level) * uint16(amplitude)
	scaled := uint8(p / 255)
	frac := uint8(p % 255)
	if noise < frac && scaled < amplitude {
		scaled++
	}
	return scaled
}

// CheapNoise derives a per-LED noise byte from the millisecond clock.
func CheapNoise(now types.Timestamp, salt uint8) uint8 {
	t := uint16(now)
	return uint8(t^(t>>8)) ^ (salt * 37)
}

func addClamp(v, step uint8) uint8 {
	if v > 255-step {
		return 255
	}
	return v + step
}

func subClamp(v, step uint8) uint8 {
	if v < step {
		return 0
	}
	return v - step
}
