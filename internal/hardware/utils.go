package hardware

import (
	"encoding/binary"
	"unsafe"

	"golang.org/x/sys/unix"
)

// eventSize is sizeof(struct input_event) for this platform's timeval.
var eventSize = int(unsafe.Sizeof(unix.Timeval{})) + 8

type InputEvent struct {
	Sec   int64
	Usec  int64
	Type  uint16
	Code  uint16
	Value int32
}

// decodeEvent parses one little-endian input_event record of eventSize bytes.
func decodeEvent(buf []byte) InputEvent {
	tv := len(buf) - 8
	half := tv / 2

	var ev InputEvent
	if half == 8 {
		ev.Sec = int64(binary.LittleEndian.Uint64(buf[0:8]))
		ev.Usec = int64(binary.LittleEndian.Uint64(buf[8:16]))
	} else {
		ev.Sec = int64(int32(binary.LittleEndian.Uint32(buf[0:4])))
		ev.Usec = int64(int32(binary.LittleEndian.Uint32(buf[4:8])))
	}
	ev.Type = binary.LittleEndian.Uint16(buf[tv : tv+2])
	ev.Code = binary.LittleEndian.Uint16(buf[tv+2 : tv+4])
	ev.Value = int32(binary.LittleEndian.Uint32(buf[tv+4 : tv+8]))
	return ev
}

// keyBitSet tests a key code in an EVIOCGKEY bitmap.
func keyBitSet(bitmap []byte, code uint16) bool {
	byteOffset := int(code / 8)
	if byteOffset >= len(bitmap) {
		return false
	}
	return bitmap[byteOffset]&(1<<(code%8)) != 0
}
