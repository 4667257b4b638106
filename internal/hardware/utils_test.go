package hardware

import (
	"encoding/binary"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"keypad-service/internal/logger"
)

func encodeEvent(typ, code uint16, value int32) []byte {
	buf := make([]byte, eventSize)
	tv := eventSize - 8
	binary.LittleEndian.PutUint16(buf[tv:], typ)
	binary.LittleEndian.PutUint16(buf[tv+2:], code)
	binary.LittleEndian.PutUint32(buf[tv+4:], uint32(value))
	return buf
}

func TestDecodeEvent(t *testing.T) {
	ev := decodeEvent(encodeEvent(evRel, relX, -2))
	assert.Equal(t, uint16(evRel), ev.Type)
	assert.Equal(t, uint16(relX), ev.Code)
	assert.Equal(t, int32(-2), ev.Value)
}

func TestKeyBitSet(t *testing.T) {
	bitmap := make([]byte, keyBitmapSize)
	bitmap[0x2c0/8] = 1 << (0x2c0 % 8)
	assert.True(t, keyBitSet(bitmap, 0x2c0))
	assert.False(t, keyBitSet(bitmap, 0x2c1))
	assert.False(t, keyBitSet(bitmap, 0xFFFF))
}

type keyEvent struct {
	code    uint16
	pressed bool
}

func TestMonitorInputsDispatches(t *testing.T) {
	hw := NewLinuxHardwareIO(logger.NewLogger(nil, logger.LogLevelError), "", "", nil)

	keys := make(chan keyEvent, 8)
	turns := make(chan bool, 8)
	hw.RegisterKeyCallback(func(code uint16, pressed bool) { keys <- keyEvent{code, pressed} })
	hw.RegisterEncoderCallback(func(index int, clockwise bool) { turns <- clockwise })

	keyR, keyW := io.Pipe()
	encR, encW := io.Pipe()
	go hw.monitorInputs(keyR, hw.handleKeyEvent)
	go hw.monitorInputs(encR, hw.handleEncoderEvent)

	go func() {
		keyW.Write(encodeEvent(evKey, 0x2c3, 1))
		keyW.Write(encodeEvent(evSyn, 0, 0))
		keyW.Write(encodeEvent(evKey, 0x2c3, 2))
		keyW.Write(encodeEvent(evKey, 0x2c3, 0))
		encW.Write(encodeEvent(evRel, relX, 2))
		encW.Write(encodeEvent(evRel, relX, -1))
	}()

	want := []keyEvent{{0x2c3, true}, {0x2c3, false}}
	for _, w := range want {
		select {
		case got := <-keys:
			assert.Equal(t, w, got)
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for %v", w)
		}
	}

	var got []bool
	for len(got) < 3 {
		select {
		case cw := <-turns:
			got = append(got, cw)
		case <-time.After(time.Second):
			t.Fatalf("timed out after %v", got)
		}
	}
	assert.Equal(t, []bool{true, true, false}, got)
	require.Empty(t, hw.HeldKeys())

	close(hw.stopChan)
	keyW.Close()
	encW.Close()
}
