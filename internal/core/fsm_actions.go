package core

import (
	"context"

	"github.com/librescoot/librefsm"

	"keypad-service/internal/fsm"
	"keypad-service/internal/types"
)

// initFSM initializes and starts the layer selector machine
func (v *KeypadSystem) initFSM(ctx context.Context) error {
	def := fsm.NewDefinition(v)
	machine, err := def.Build()
	if err != nil {
		return err
	}
	v.machine = machine

	v.machine.OnStateChange(func(from, to librefsm.StateID) {
		v.logger.Debugf("Selector transition: %s -> %s", from, to)
	})

	if err := v.machine.Start(ctx); err != nil {
		return err
	}

	v.logger.Infof("Layer selector state machine started")
	return nil
}

// sendEvent feeds the selector and moves the layer stack to wherever the
// machine ended up. Events are only sent from the scan loop.
func (v *KeypadSystem) sendEvent(event librefsm.EventID) {
	if v.machine == nil {
		return
	}
	if err := v.machine.SendSync(librefsm.Event{ID: event}); err != nil {
		v.logger.Warnf("Selector rejected %s: %v", event, err)
	}
	v.syncLayerFromMachine()
}

// === State Entry Actions ===

func (v *KeypadSystem) EnterLayer(c *librefsm.Context) error {
	v.logger.Debugf("Entered layer state from %s", c.FromState)
	return nil
}

// EnterSelect starts every selection at base, however the selector was
// reached.
func (v *KeypadSystem) EnterSelect(c *librefsm.Context) error {
	v.pending = types.LayerBase
	v.logger.Infof("Layer selector open from %s", c.FromState)
	return nil
}

// === Guards ===

func (v *KeypadSystem) PendingLayer() types.Layer {
	return v.pending
}

// === Transition Actions ===

func (v *KeypadSystem) OnBeginSelection(c *librefsm.Context) error {
	v.logger.Debugf("Selector opened by click")
	return nil
}
