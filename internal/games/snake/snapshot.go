package snake

import (
	"time"

	"github.com/vovakirdan/trust-snake/internal/core"
)

// Snapshot is a copy of the observable game state.
type Snapshot struct {
	State     State
	Body      []core.Point // Head first, canvas units
	Dir       core.Vec
	Food      core.Point
	Score     int
	Interval  time.Duration
	Countdown int
	ShowGo    bool
	Steps     uint64
}

// Snapshot returns a copy of the current state.
func (g *Game) Snapshot() Snapshot {
	body := make([]core.Point, len(g.body))
	copy(body, g.body)

	return Snapshot{
		State:     g.state,
		Body:      body,
		Dir:       g.dir,
		Food:      g.food,
		Score:     g.score,
		Interval:  g.interval,
		Countdown: g.count,
		ShowGo:    g.showGo,
		Steps:     g.steps,
	}
}

