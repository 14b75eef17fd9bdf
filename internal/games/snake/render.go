package snake

import (
	"fmt"
	"strconv"

	"github.com/vovakirdan/trust-snake/internal/core"
)

// cellCols is the number of terminal columns one grid cell takes. Two columns
// keep cells roughly square in a terminal.
const cellCols = 2

// hudRows is the number of rows above the board.
const hudRows = 1

// BoardSize returns the board size in terminal cells, without its border.
func (r Rules) BoardSize() (w, h int) {
	return r.Cols() * cellCols, r.Rows()
}

// ScreenSize returns the smallest screen that fits the HUD and bordered board.
func (r Rules) ScreenSize() (w, h int) {
	bw, bh := r.BoardSize()
	return bw + 2, bh + 2 + hudRows
}

// boardRect returns the board interior on a screen of the given size.
func (r Rules) boardRect(screenW int) core.Rect {
	bw, bh := r.BoardSize()
	x := (screenW - bw - 2) / 2
	return core.NewRect(x+1, hudRows+1, bw, bh)
}

// Render draws the game. It does not modify the game.
func (g *Game) Render(dst *core.Screen) {
	dst.Clear()

	minW, minH := g.rules.ScreenSize()
	if dst.Width() < minW || dst.Height() < minH {
		dst.DrawTextCenteredColored(dst.Height()/2, "Window too small", core.ColorYellow)
		dst.DrawTextCenteredColored(dst.Height()/2+1, fmt.Sprintf("need %dx%d", minW, minH), core.ColorGray)
		return
	}

	board := g.rules.boardRect(dst.Width())
	g.renderHUD(dst, board)
	dst.DrawBoxColored(core.NewRect(board.X-1, board.Y-1, board.W+2, board.H+2), core.ColorGray)
	dst.DrawRectColored(board, ' ', core.ColorDefault)

	g.drawSprite(dst, board, g.food, g.rules.FoodSprite, core.ColorBrightRed)
	for _, seg := range g.body {
		g.drawSprite(dst, board, seg, g.rules.SnakeSprite, core.ColorBrightGreen)
	}

	switch g.state {
	case StateCountdown:
		text := strconv.Itoa(g.count)
		if g.showGo {
			text = "Go!"
		}
		g.renderOverlay(dst, board, core.ColorBrightWhite, text)
	case StateEnded:
		g.renderOverlay(dst, board, core.ColorBrightRed, "Game Over", fmt.Sprintf("Final score: %d", g.score))
	}
}

func (g *Game) renderHUD(dst *core.Screen, board core.Rect) {
	dst.DrawTextColored(board.X, 0, fmt.Sprintf("Score: %d", g.score), core.ColorBrightYellow)

	speed := fmt.Sprintf("Tick: %dms", g.interval.Milliseconds())
	dst.DrawTextColored(board.Right()-len(speed), 0, speed, core.ColorGray)
}

// drawSprite draws a sprite on the grid cell at canvas position p.
func (g *Game) drawSprite(dst *core.Screen, board core.Rect, p core.Point, sprite string, c core.Color) {
	x := board.X + p.X/g.rules.Grid*cellCols
	y := board.Y + p.Y/g.rules.Grid

	runes := []rune(sprite)
	for i := range cellCols {
		r := '#'
		if len(runes) > 0 {
			r = runes[i%len(runes)]
		}
		dst.SetColored(x+i, y, r, c)
	}
}

// renderOverlay draws a box with centered lines over the middle of the board.
func (g *Game) renderOverlay(dst *core.Screen, board core.Rect, c core.Color, lines ...string) {
	width := 0
	for _, l := range lines {
		width = max(width, len([]rune(l)))
	}
	boxW := width + 4
	boxH := len(lines) + 2
	box := core.NewRect(board.X+(board.W-boxW)/2, board.Y+(board.H-boxH)/2, boxW, boxH)

	dst.DrawRectColored(box, ' ', core.ColorDefault)
	dst.DrawBoxColored(box, c)
	for i, l := range lines {
		x := box.X + (box.W-len([]rune(l)))/2
		dst.DrawTextColored(x, box.Y+1+i, l, c)
	}
}
