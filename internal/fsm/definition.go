package fsm

import (
	"github.com/librescoot/librefsm"
)

// NewDefinition creates the layer selector FSM definition.
// The actions parameter provides entry actions and the pending layer guard.
func NewDefinition(actions Actions) *librefsm.Definition {
	def := librefsm.NewDefinition().
		// Parent state for shared goto transitions
		State(StateLayers)

	for _, l := range SelectableLayers {
		def = def.State(layerStates[l],
			librefsm.WithParent(StateLayers),
			librefsm.WithOnEnter(actions.EnterLayer),
		)
	}
	def = def.State(StateSelect,
		librefsm.WithParent(StateLayers),
		librefsm.WithOnEnter(actions.EnterSelect),
	)

	// === Transitions ===

	// Short click on base opens the selector
	def = def.Transition(StateBase, EvClick, StateSelect,
		librefsm.WithAction(actions.OnBeginSelection),
	)

	// Short click in the selector commits the pending layer
	for _, l := range SelectableLayers {
		target := l
		def = def.Transition(StateSelect, EvClick, layerStates[target],
			librefsm.WithGuard(func(*librefsm.Context) bool {
				return actions.PendingLayer() == target
			}),
		)
	}

	// Hold + rotate cycles the selectable layers
	for _, l := range SelectableLayers {
		def = def.
			Transition(layerStates[l], EvHoldTurnCW, layerStates[NextLayer(l)]).
			Transition(layerStates[l], EvHoldTurnCCW, layerStates[PrevLayer(l)])
	}

	// Direct jumps from any layer
	for l, ev := range gotoEvents {
		def = def.Transition(StateLayers, ev, layerStates[l])
	}

	return def.Initial(StateBase)
}
