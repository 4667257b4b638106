package fsm

import (
	"context"
	"testing"

	"github.com/librescoot/librefsm"

	"keypad-service/internal/types"
)

type fakeActions struct {
	pending    types.Layer
	selections int
}

func (f *fakeActions) EnterLayer(c *librefsm.Context) error { return nil }

func (f *fakeActions) EnterSelect(c *librefsm.Context) error { return nil }

func (f *fakeActions) PendingLayer() types.Layer { return f.pending }

func (f *fakeActions) OnBeginSelection(c *librefsm.Context) error {
	f.selections++
	f.pending = types.LayerBase
	return nil
}

func startMachine(t *testing.T, actions Actions) *librefsm.Machine {
	t.Helper()
	machine, err := NewDefinition(actions).Build()
	if err != nil {
		t.Fatalf("Failed to build definition: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	if err := machine.Start(ctx); err != nil {
		t.Fatalf("Failed to start machine: %v", err)
	}
	return machine
}

func send(t *testing.T, m *librefsm.Machine, ev librefsm.EventID) {
	t.Helper()
	if err := m.SendSync(librefsm.Event{ID: ev}); err != nil {
		t.Fatalf("SendSync(%s) failed: %v", ev, err)
	}
}

func TestInitialStateIsBase(t *testing.T) {
	m := startMachine(t, &fakeActions{})
	if got := m.CurrentState(); got != StateBase {
		t.Errorf("Expected initial state %s, got %s", StateBase, got)
	}
}

func TestClickOpensSelectorAndCommitsPending(t *testing.T) {
	actions := &fakeActions{}
	m := startMachine(t, actions)

	send(t, m, EvClick)
	if got := m.CurrentState(); got != StateSelect {
		t.Fatalf("Expected %s after click, got %s", StateSelect, got)
	}
	if actions.selections != 1 {
		t.Errorf("Expected selection action to run once, ran %d times", actions.selections)
	}

	actions.pending = types.LayerFn
	send(t, m, EvClick)
	if got := m.CurrentState(); got != StateFn {
		t.Errorf("Expected %s after commit, got %s", StateFn, got)
	}
}

func TestSelectorCommitsEverySelectableLayer(t *testing.T) {
	for _, l := range SelectableLayers {
		t.Run(l.String(), func(t *testing.T) {
			actions := &fakeActions{}
			m := startMachine(t, actions)
			send(t, m, EvClick)
			actions.pending = l
			send(t, m, EvClick)

			want, _ := StateForLayer(l)
			if got := m.CurrentState(); got != want {
				t.Errorf("Expected %s, got %s", want, got)
			}
		})
	}
}

func TestHoldTurnCyclesLayers(t *testing.T) {
	m := startMachine(t, &fakeActions{})

	want := []librefsm.StateID{StateEdit, StateMedia, StateFn, StateRGB, StateBase}
	for _, w := range want {
		send(t, m, EvHoldTurnCW)
		if got := m.CurrentState(); got != w {
			t.Fatalf("Expected %s, got %s", w, got)
		}
	}

	send(t, m, EvHoldTurnCCW)
	if got := m.CurrentState(); got != StateRGB {
		t.Errorf("Expected wrap back to %s, got %s", StateRGB, got)
	}
}

func TestGotoFromAnyLayer(t *testing.T) {
	m := startMachine(t, &fakeActions{})

	send(t, m, EvGotoMedia)
	if got := m.CurrentState(); got != StateMedia {
		t.Fatalf("Expected %s, got %s", StateMedia, got)
	}

	send(t, m, EvGotoSelect)
	send(t, m, EvGotoRGB)
	if got := m.CurrentState(); got != StateRGB {
		t.Errorf("Expected %s from select, got %s", StateRGB, got)
	}
}

func TestLayerStateMapping(t *testing.T) {
	for l := types.LayerBase; l <= types.LayerSelect; l++ {
		s, ok := StateForLayer(l)
		if !ok {
			t.Fatalf("No state for layer %s", l)
		}
		back, ok := LayerForState(s)
		if !ok || back != l {
			t.Errorf("Round trip for %s gave %s", l, back)
		}
		if _, ok := GotoEvent(l); !ok {
			t.Errorf("No goto event for %s", l)
		}
	}
	if _, ok := LayerForState(StateLayers); ok {
		t.Errorf("Parent state should not map to a layer")
	}
}
