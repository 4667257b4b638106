package lighting

import "keypad-service/internal/types"

// LayerIndicator lights one LED at full value for Hold ms after a layer change.
type LayerIndicator struct {
	LED         int
	Active      bool
	ActivatedAt types.Timestamp
	Hold        uint32
}

func (i *LayerIndicator) Activate(led int, now types.Timestamp) {
	i.LED = led
	i.Active = true
	i.ActivatedAt = now
}

// Live reports whether the indicator is still showing and expires it otherwise.
func (i *LayerIndicator) Live(now types.Timestamp) bool {
	if !i.Active {
		return false
	}
	if types.Elapsed(i.ActivatedAt, now) >= i.Hold {
		i.Active = false
		return false
	}
	return true
}

// EncoderDot follows encoder rotation around the ring and fades over Hold ms.
type EncoderDot struct {
	Pos      int
	Active   bool
	LastTurn types.Timestamp
	Hold     uint32
}

func (d *EncoderDot) Turn(clockwise bool, now types.Timestamp) {
	if clockwise {
		d.Pos = (d.Pos + 1) % LEDCount
	} else {
		d.Pos = (d.Pos + LEDCount - 1) % LEDCount
	}
	d.Active = true
	d.LastTurn = now
}

// Level returns the undithered dot brightness, decaying linearly to zero.
func (d *EncoderDot) Level(now types.Timestamp) (uint8, bool) {
	if !d.Active || d.Hold == 0 {
		return 0, false
	}
	elapsed := types.Elapsed(d.LastTurn, now)
	if elapsed >= d.Hold {
		d.Active = false
		return 0, false
	}
	return uint8(255 - uint64(elapsed)*255/uint64(d.Hold)), true
}
