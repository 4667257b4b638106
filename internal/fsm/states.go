package fsm

import (
	"github.com/librescoot/librefsm"

	"keypad-service/internal/types"
)

// Layer states. Every layer is a child of StateLayers so goto events apply
// from anywhere.
const (
	StateLayers librefsm.StateID = "layers"

	StateBase   librefsm.StateID = "base"
	StateEdit   librefsm.StateID = "edit"
	StateMedia  librefsm.StateID = "media"
	StateFn     librefsm.StateID = "fn"
	StateRGB    librefsm.StateID = "rgb"
	StateSelect librefsm.StateID = "select"
)

// Selector events
const (
	// Encoder button
	EvClick       librefsm.EventID = "click"
	EvHoldTurnCW  librefsm.EventID = "hold-turn-cw"
	EvHoldTurnCCW librefsm.EventID = "hold-turn-ccw"

	// Keymap TO(n) keys and remote layer commands
	EvGotoBase   librefsm.EventID = "goto-base"
	EvGotoEdit   librefsm.EventID = "goto-edit"
	EvGotoMedia  librefsm.EventID = "goto-media"
	EvGotoFn     librefsm.EventID = "goto-fn"
	EvGotoRGB    librefsm.EventID = "goto-rgb"
	EvGotoSelect librefsm.EventID = "goto-select"
)

// SelectableLayers are the layers reachable by cycling and by the selector.
var SelectableLayers = []types.Layer{
	types.LayerBase,
	types.LayerEdit,
	types.LayerMedia,
	types.LayerFn,
	types.LayerRGB,
}

var layerStates = map[types.Layer]librefsm.StateID{
	types.LayerBase:   StateBase,
	types.LayerEdit:   StateEdit,
	types.LayerMedia:  StateMedia,
	types.LayerFn:     StateFn,
	types.LayerRGB:    StateRGB,
	types.LayerSelect: StateSelect,
}

var gotoEvents = map[types.Layer]librefsm.EventID{
	types.LayerBase:   EvGotoBase,
	types.LayerEdit:   EvGotoEdit,
	types.LayerMedia:  EvGotoMedia,
	types.LayerFn:     EvGotoFn,
	types.LayerRGB:    EvGotoRGB,
	types.LayerSelect: EvGotoSelect,
}

// StateForLayer maps a layer to its state.
func StateForLayer(l types.Layer) (librefsm.StateID, bool) {
	s, ok := layerStates[l]
	return s, ok
}

// LayerForState maps a state back to its layer.
func LayerForState(id librefsm.StateID) (types.Layer, bool) {
	for l, s := range layerStates {
		if s == id {
			return l, true
		}
	}
	return types.LayerBase, false
}

// GotoEvent returns the event that jumps straight to a layer.
func GotoEvent(l types.Layer) (librefsm.EventID, bool) {
	ev, ok := gotoEvents[l]
	return ev, ok
}

// NextLayer cycles forward through the selectable layers, wrapping.
func NextLayer(l types.Layer) types.Layer {
	if l >= types.LayerRGB {
		return types.LayerBase
	}
	return l + 1
}

// PrevLayer cycles backward through the selectable layers, wrapping.
func PrevLayer(l types.Layer) types.Layer {
	if l == types.LayerBase || l > types.LayerRGB {
		return types.LayerRGB
	}
	return l - 1
}
