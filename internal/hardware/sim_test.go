package hardware

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimIOPins(t *testing.T) {
	s := NewSimIO()
	assert.Empty(t, s.HeldKeys(), "nothing is held at start")

	_, err := s.ReadPin(EncoderButtonPin)
	assert.Error(t, err, "unconfigured pin")

	require.NoError(t, s.ConfigureInputPullup(EncoderButtonPin))
	level, err := s.ReadPin(EncoderButtonPin)
	require.NoError(t, err)
	assert.True(t, level, "pull-up reads high")

	s.SetPin(EncoderButtonPin, false)
	level, _ = s.ReadPin(EncoderButtonPin)
	assert.False(t, level)
}

func TestSimIOInjectsEvents(t *testing.T) {
	s := NewSimIO()

	var keys []uint16
	var turns []bool
	s.RegisterKeyCallback(func(code uint16, pressed bool) {
		if pressed {
			keys = append(keys, code)
		}
	})
	s.RegisterEncoderCallback(func(index int, clockwise bool) {
		turns = append(turns, clockwise)
	})

	s.Key(0x2c0, true)
	s.Key(0x2c0, false)
	s.Turn(true)
	s.Turn(false)

	assert.Equal(t, []uint16{0x2c0}, keys)
	assert.Equal(t, []bool{true, false}, turns)
}
