package core

import (
	"keypad-service/internal/config"
	"keypad-service/internal/hardware"
	"keypad-service/internal/messaging"
	"keypad-service/internal/preview"
	"keypad-service/internal/types"
)

// MessagingClient defines the interface for Redis messaging operations needed by KeypadSystem
type MessagingClient interface {
	SetCallbacks(callbacks messaging.Callbacks)
	Connect() error
	StartListening() error
	Close() error

	// Settings
	LoadSettings() (map[string]string, error)

	// Host side
	SendHostAction(action string) error

	// State publishing
	PublishState(fields map[string]interface{}) error
	PublishOled(lines []string) error
	PublishDevice(d config.Device) error
}

// HardwareIO defines the interface for hardware I/O operations needed by KeypadSystem
type HardwareIO interface {
	Initialize() error
	Cleanup()

	// Encoder push button
	ConfigureInputPullup(pin string) error
	ReadPin(pin string) (bool, error)

	// Input events
	RegisterKeyCallback(cb hardware.KeyCallback)
	RegisterEncoderCallback(cb hardware.EncoderCallback)

	// Key codes already down when the device was opened
	HeldKeys() []uint16
}

// Clock is the millisecond time base shared by debouncing, animation and
// timeouts.
type Clock interface {
	Now() types.Timestamp
}

// FrameObserver receives a snapshot after every rendered frame.
type FrameObserver interface {
	Publish(s preview.Snapshot)
}
