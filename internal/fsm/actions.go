package fsm

import (
	"github.com/librescoot/librefsm"

	"keypad-service/internal/types"
)

// Actions defines the interface for layer selector actions.
// KeypadSystem implements this interface to track the pending layer and
// react to layer entry.
type Actions interface {
	// State entry actions
	EnterLayer(c *librefsm.Context) error
	EnterSelect(c *librefsm.Context) error

	// Guards
	PendingLayer() types.Layer

	// Transition actions
	OnBeginSelection(c *librefsm.Context) error
}
