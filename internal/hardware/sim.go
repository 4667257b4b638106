package hardware

import (
	"fmt"
	"sync"
)

// SimIO stands in for the keypad hardware when running without a board.
// Pins read high (released) until driven, and input events are injected
// with Key and Turn.
type SimIO struct {
	mu              sync.Mutex
	levels          map[string]bool
	keyCallback     KeyCallback
	encoderCallback EncoderCallback
}

func NewSimIO() *SimIO {
	return &SimIO{levels: make(map[string]bool)}
}

func (s *SimIO) Initialize() error  { return nil }
func (s *SimIO) Cleanup()           {}
func (s *SimIO) HeldKeys() []uint16 { return nil }

func (s *SimIO) ConfigureInputPullup(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.levels[name] = true
	return nil
}

func (s *SimIO) ReadPin(name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	level, ok := s.levels[name]
	if !ok {
		return false, fmt.Errorf("pin %s not configured", name)
	}
	return level, nil
}

// SetPin drives a simulated input level.
func (s *SimIO) SetPin(name string, level bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.levels[name] = level
}

func (s *SimIO) RegisterKeyCallback(cb KeyCallback) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keyCallback = cb
}

func (s *SimIO) RegisterEncoderCallback(cb EncoderCallback) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.encoderCallback = cb
}

// Key injects a key event.
func (s *SimIO) Key(code uint16, pressed bool) {
	s.mu.Lock()
	cb := s.keyCallback
	s.mu.Unlock()
	if cb != nil {
		cb(code, pressed)
	}
}

// Turn injects one encoder detent.
func (s *SimIO) Turn(clockwise bool) {
	s.mu.Lock()
	cb := s.encoderCallback
	s.mu.Unlock()
	if cb != nil {
		cb(0, clockwise)
	}
}
