package tui

import (
	"github.com/vovakirdan/trust-snake/internal/core"
)

// dpadRows is the height of the on-screen direction pad.
const dpadRows = 3

// dpadButton is one clickable direction button.
type dpadButton struct {
	rect   core.Rect
	label  string
	action core.Action
}

// dpadLayout places the four buttons centered in a strip of the given width:
//
//	      [ ▲ ]
//	[ ◀ ] [ ▼ ] [ ▶ ]
func dpadLayout(width int) []dpadButton {
	const bw = 5
	x := (width - 3*bw - 2) / 2
	return []dpadButton{
		{core.NewRect(x+bw+1, 0, bw, 1), "[ ▲ ]", core.ActionUp},
		{core.NewRect(x, 1, bw, 1), "[ ◀ ]", core.ActionLeft},
		{core.NewRect(x+bw+1, 1, bw, 1), "[ ▼ ]", core.ActionDown},
		{core.NewRect(x+2*bw+2, 1, bw, 1), "[ ▶ ]", core.ActionRight},
	}
}

// renderDPad draws the direction pad into dst.
func renderDPad(dst *core.Screen, enabled bool) {
	dst.Clear()
	c := core.ColorBrightCyan
	if !enabled {
		c = core.ColorDim
	}
	for _, b := range dpadLayout(dst.Width()) {
		dst.DrawTextColored(b.rect.X, b.rect.Y, b.label, c)
	}
	dst.DrawTextCenteredColored(2, "click or use arrows / wasd / hjkl", core.ColorGray)
}

// dpadHit returns the action of the button at (x, y), relative to the pad.
func dpadHit(width, x, y int) core.Action {
	for _, b := range dpadLayout(width) {
		if b.rect.Contains(x, y) {
			return b.action
		}
	}
	return core.ActionNone
}
