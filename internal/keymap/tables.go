package keymap

import "keypad-service/internal/types"

// Numpad4x6 is the 6-row by 4-column handwired numpad.
func Numpad4x6() *Keymap {
	return &Keymap{
		Name: "numpad4x6",
		Rows: 6,
		Cols: 4,
		Layers: [][]Keycode{
			{
				NO, MO(1), MO(4), Bspc,
				NumLk, PAst, PSlash, PMinus,
				P(7), P(8), P(9), PPlus,
				P(4), P(5), P(6), NO,
				P(1), P(2), P(3), PEnter,
				NO, P(0), PDot, NO,
			},
			{
				NO, TO(0), MO(4), Bspc,
				NO, NO, NO, Ctrl(A),
				Ctrl(Z), Shift(Home), Ctrl(R), Ctrl(C),
				Shift(Left), Ctrl(S), Shift(Right), NO,
				Ctrl(Shift(Left)), Shift(End), Ctrl(Shift(Right)), PEnter,
				NO, Space, Ctrl(X), NO,
			},
			{
				NO, MO(0), MO(4), NO,
				NO, NO, NO, NO,
				Alt(Ctrl(Left)), NO, Alt(Ctrl(Right)), NO,
				Ctrl(Gui(Left)), NO, Ctrl(Gui(Right)), NO,
				NO, NO, NO, PEnter,
				NO, NO, Ctrl(Alt(Del)), NO,
			},
			{
				NO, TO(0), MO(4), NO,
				NO, NO, NO, NO,
				F(14), F(15), F(16), NO,
				F(17), F(18), F(19), NO,
				F(20), F(21), F(22), NO,
				NO, NO, NO, NO,
			},
			{
				NO, TO(0), MO(4), NO,
				Cmd(types.CmdWanderSpeedUp), Cmd(types.CmdWanderSpeedDown), Cmd(types.CmdHueUp), Cmd(types.CmdHueDown),
				Cmd(types.CmdValUp), Cmd(types.CmdValDown), Cmd(types.CmdCycleMode), Cmd(types.CmdToggle),
				Cmd(types.CmdSatUp), Cmd(types.CmdSatDown), NO, NO,
				TO(1), TO(2), TO(3), NO,
				NO, NO, NO, NO,
			},
		},
	}
}

// Silent3x3 is the nine-key pad with a display and a layer selector.
func Silent3x3() *Keymap {
	return &Keymap{
		Name: "silent3x3",
		Rows: 3,
		Cols: 3,
		Layers: [][]Keycode{
			types.LayerBase: {
				Gui(Tab), Up, Alt(Tab),
				Left, Enter, Right,
				Ctrl(Z), Down, Ctrl(R),
			},
			types.LayerEdit: {
				Ctrl(A), Ctrl(C), Ctrl(V),
				Ctrl(X), Ctrl(Enter), NO,
				Ctrl(Shift(Z)), Space, Bspc,
			},
			types.LayerMedia: {
				MPrev, MSelect, MNext,
				MRewind, MPlay, MFFwd,
				Down, MStop, Up,
			},
			types.LayerFn: {
				F(13), F(14), F(15),
				F(16), F(17), F(18),
				F(19), F(20), F(21),
			},
			types.LayerRGB: {
				Cmd(types.CmdWanderSpeedUp), Cmd(types.CmdWanderSpeedDown), Cmd(types.CmdToggle),
				Cmd(types.CmdHueUp), Cmd(types.CmdHueDown), Cmd(types.CmdValUp),
				Cmd(types.CmdSatUp), Cmd(types.CmdSatDown), Cmd(types.CmdValDown),
			},
			types.LayerSelect: {
				TO(1), TO(2), TO(3),
				TO(4), TO(0), NO,
				NO, NO, NO,
			},
		},
	}
}
