package hardware

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
	"unsafe"

	"github.com/warthog618/go-gpiocdev"
	"golang.org/x/sys/unix"

	"keypad-service/internal/logger"
)

// KeyCallback receives matrix key transitions by evdev code.
type KeyCallback func(code uint16, pressed bool)

// EncoderCallback receives one call per detent.
type EncoderCallback func(index int, clockwise bool)

type LinuxHardwareIO struct {
	logger            *logger.Logger
	keyDevicePath     string
	encoderDevicePath string
	pins              map[string]PinMapping
	keyFile           *os.File
	encoderFile       *os.File
	chips             map[string]*gpiocdev.Chip
	lines             map[string]*gpiocdev.Line
	keyCallback       KeyCallback
	encoderCallback   EncoderCallback
	mu                sync.RWMutex
	stopChan          chan struct{}
	activeKeys        map[uint16]bool
}

func NewLinuxHardwareIO(l *logger.Logger, keyDevice, encoderDevice string, pins map[string]PinMapping) *LinuxHardwareIO {
	return &LinuxHardwareIO{
		logger:            l.WithTag("HardwareIO"),
		keyDevicePath:     keyDevice,
		encoderDevicePath: encoderDevice,
		pins:              pins,
		chips:             make(map[string]*gpiocdev.Chip),
		lines:             make(map[string]*gpiocdev.Line),
		stopChan:          make(chan struct{}),
		activeKeys:        make(map[uint16]bool),
	}
}

func (hw *LinuxHardwareIO) Initialize() error {
	hw.logger.Infof("Initializing hardware IO")

	var err error
	hw.logger.Infof("Opening key input device: %s", hw.keyDevicePath)
	hw.keyFile, err = os.OpenFile(hw.keyDevicePath, os.O_RDONLY, 0)
	if err != nil {
		return fmt.Errorf("failed to open input device %s: %w", hw.keyDevicePath, err)
	}

	if err := hw.readInitialState(); err != nil {
		hw.logger.Warnf("Failed to read initial key states: %v", err)
	}

	go hw.monitorInputs(hw.keyFile, hw.handleKeyEvent)

	if hw.encoderDevicePath != "" {
		hw.logger.Infof("Opening encoder input device: %s", hw.encoderDevicePath)
		hw.encoderFile, err = os.OpenFile(hw.encoderDevicePath, os.O_RDONLY, 0)
		if err != nil {
			return fmt.Errorf("failed to open input device %s: %w", hw.encoderDevicePath, err)
		}
		go hw.monitorInputs(hw.encoderFile, hw.handleEncoderEvent)
	}

	return nil
}

func (hw *LinuxHardwareIO) readInitialState() error {
	buffer := make([]byte, keyBitmapSize)
	_, _, errno := unix.Syscall(
		unix.SYS_IOCTL,
		hw.keyFile.Fd(),
		uintptr(eviocgkey),
		uintptr(unsafe.Pointer(&buffer[0])),
	)
	if errno != 0 {
		return fmt.Errorf("EVIOCGKEY ioctl failed: %v", errno)
	}

	hw.mu.Lock()
	defer hw.mu.Unlock()

	for code := uint16(0); code < keyBitmapSize*8; code++ {
		if keyBitSet(buffer, code) {
			hw.activeKeys[code] = true
			hw.logger.Infof("Initial state: key %d is held", code)
		}
	}
	return nil
}

// monitorInputs reads input_event records until Cleanup closes the device.
func (hw *LinuxHardwareIO) monitorInputs(r io.Reader, handle func(InputEvent)) {
	buffer := make([]byte, eventSize)
	hw.logger.Debugf("Starting input event monitoring with record size: %d", eventSize)

	for {
		select {
		case <-hw.stopChan:
			hw.logger.Debugf("Stopping input monitoring")
			return
		default:
		}

		if _, err := io.ReadFull(r, buffer); err != nil {
			select {
			case <-hw.stopChan:
				return
			default:
			}
			hw.logger.Errorf("Error reading input: %v", err)
			time.Sleep(100 * time.Millisecond)
			continue
		}

		ev := decodeEvent(buffer)
		hw.logger.Debugf("Event: type=%d code=%d value=%d time=%d.%06d", ev.Type, ev.Code, ev.Value, ev.Sec, ev.Usec)
		handle(ev)
	}
}

func (hw *LinuxHardwareIO) handleKeyEvent(ev InputEvent) {
	if ev.Type != evKey {
		return
	}
	// autorepeat
	if ev.Value > 1 {
		return
	}

	pressed := ev.Value == 1
	hw.mu.Lock()
	if pressed {
		hw.activeKeys[ev.Code] = true
	} else {
		delete(hw.activeKeys, ev.Code)
	}
	callback := hw.keyCallback
	hw.mu.Unlock()

	if callback != nil {
		callback(ev.Code, pressed)
	} else {
		hw.logger.Debugf("No key callback registered for code %d", ev.Code)
	}
}

func (hw *LinuxHardwareIO) handleEncoderEvent(ev InputEvent) {
	if ev.Type != evRel {
		return
	}
	switch ev.Code {
	case relX, relY, relWheel:
	default:
		return
	}

	hw.mu.RLock()
	callback := hw.encoderCallback
	hw.mu.RUnlock()
	if callback == nil {
		return
	}

	steps := ev.Value
	clockwise := steps > 0
	if steps < 0 {
		steps = -steps
	}
	for i := int32(0); i < steps; i++ {
		callback(0, clockwise)
	}
}

func (hw *LinuxHardwareIO) RegisterKeyCallback(cb KeyCallback) {
	hw.mu.Lock()
	defer hw.mu.Unlock()
	hw.keyCallback = cb
}

func (hw *LinuxHardwareIO) RegisterEncoderCallback(cb EncoderCallback) {
	hw.mu.Lock()
	defer hw.mu.Unlock()
	hw.encoderCallback = cb
}

// ConfigureInputPullup requests a named line as an input with the internal
// pull-up enabled.
func (hw *LinuxHardwareIO) ConfigureInputPullup(name string) error {
	mapping, ok := hw.pins[name]
	if !ok {
		return fmt.Errorf("unknown pin: %s", name)
	}

	hw.mu.Lock()
	defer hw.mu.Unlock()

	if _, exists := hw.lines[name]; exists {
		return nil
	}

	chip, ok := hw.chips[mapping.Chip]
	if !ok {
		var err error
		chip, err = gpiocdev.NewChip(mapping.Chip)
		if err != nil {
			return fmt.Errorf("failed to open GPIO chip %s: %w", mapping.Chip, err)
		}
		hw.chips[mapping.Chip] = chip
	}

	line, err := chip.RequestLine(mapping.Line,
		gpiocdev.AsInput,
		gpiocdev.WithPullUp,
		gpiocdev.WithConsumer(ConsumerName))
	if err != nil {
		return fmt.Errorf("failed to request GPIO line %d: %w", mapping.Line, err)
	}

	hw.lines[name] = line
	hw.logger.Infof("Configured input %s: chip=%s, line=%d, pull-up", name, mapping.Chip, mapping.Line)
	return nil
}

// ReadPin returns the electrical level of a configured input, true for high.
func (hw *LinuxHardwareIO) ReadPin(name string) (bool, error) {
	hw.mu.RLock()
	line, ok := hw.lines[name]
	hw.mu.RUnlock()

	if !ok {
		return false, fmt.Errorf("pin %s not configured", name)
	}

	v, err := line.Value()
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return v == 1, nil
}

// HeldKeys returns the evdev codes currently held.
func (hw *LinuxHardwareIO) HeldKeys() []uint16 {
	hw.mu.RLock()
	defer hw.mu.RUnlock()

	keys := make([]uint16, 0, len(hw.activeKeys))
	for code := range hw.activeKeys {
		keys = append(keys, code)
	}
	return keys
}

func (hw *LinuxHardwareIO) Cleanup() {
	close(hw.stopChan)

	hw.mu.Lock()
	defer hw.mu.Unlock()

	hw.logger.Infof("Cleaning up hardware resources")

	if hw.keyFile != nil {
		hw.keyFile.Close()
	}
	if hw.encoderFile != nil {
		hw.encoderFile.Close()
	}

	for name, line := range hw.lines {
		line.Close()
		hw.logger.Debugf("Closed GPIO line for %s", name)
	}

	for id, chip := range hw.chips {
		chip.Close()
		hw.logger.Debugf("Closed GPIO chip %s", id)
	}

	hw.logger.Infof("Hardware cleanup complete")
}
