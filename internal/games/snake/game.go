// Package snake implements the fixed-grid snake game unlocked by a payment.
//
// Positions are canvas units: every body segment and the food sit on multiples
// of the grid size inside the canvas. The game owns no timers. The caller arms
// one-shot timers with the delays returned by Start and AdvanceCountdown, and a
// repeating timer at Interval while Running.
package snake

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/vovakirdan/trust-snake/internal/config"
	"github.com/vovakirdan/trust-snake/internal/core"
)

// ErrBadTransition is returned when an operation is not valid in the current state.
var ErrBadTransition = errors.New("snake: bad state transition")

// State is the game lifecycle state.
type State int

const (
	StateIdle State = iota
	StateCountdown
	StateRunning
	StateEnded
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateCountdown:
		return "countdown"
	case StateRunning:
		return "running"
	case StateEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// Rules are the fixed parameters of a game.
type Rules struct {
	CanvasW         int
	CanvasH         int
	Grid            int
	Origin          core.Point
	InitialInterval time.Duration
	MinInterval     time.Duration
	IntervalStep    time.Duration
	SpeedUpEvery    int
	FoodReward      int
	CountdownFrom   int
	CountdownStep   time.Duration
	GoDuration      time.Duration
	SnakeSprite     string
	FoodSprite      string
}

// RulesFromConfig converts the game section of the configuration.
func RulesFromConfig(cfg config.GameConfig) Rules {
	return Rules{
		CanvasW:         cfg.CanvasWidth,
		CanvasH:         cfg.CanvasHeight,
		Grid:            cfg.Grid,
		Origin:          core.Point{X: cfg.Origin.X, Y: cfg.Origin.Y},
		InitialInterval: cfg.InitialInterval,
		MinInterval:     cfg.MinInterval,
		IntervalStep:    cfg.IntervalStep,
		SpeedUpEvery:    cfg.SpeedUpEvery,
		FoodReward:      cfg.FoodReward,
		CountdownFrom:   cfg.CountdownFrom,
		CountdownStep:   cfg.CountdownStep,
		GoDuration:      cfg.GoDuration,
		SnakeSprite:     cfg.Sprites.Snake,
		FoodSprite:      cfg.Sprites.Food,
	}
}

// DefaultRules returns the rules of the built-in configuration.
func DefaultRules() Rules {
	return RulesFromConfig(config.Default().Game)
}

// Cols returns the number of grid columns.
func (r Rules) Cols() int { return r.CanvasW / r.Grid }

// Rows returns the number of grid rows.
func (r Rules) Rows() int { return r.CanvasH / r.Grid }

// StepResult reports what one tick did.
type StepResult struct {
	Moved           bool
	Ate             bool
	Ended           bool
	IntervalChanged bool // Caller must re-arm its repeating timer at Interval()
}

// Game is one page's snake game.
type Game struct {
	rules Rules
	rng   *rand.Rand

	state    State
	body     []core.Point // Head at index 0
	dir      core.Vec
	food     core.Point
	score    int
	interval time.Duration
	count    int  // Countdown value on screen
	showGo   bool // "Go!" is on screen
	steps    uint64
}

// New creates an idle game. Food is placed once here and afterwards only
// when it is eaten.
func New(rules Rules, seed int64) *Game {
	g := &Game{
		rules:    rules,
		rng:      rand.New(rand.NewSource(seed)),
		state:    StateIdle,
		interval: rules.InitialInterval,
	}
	g.spawnFood()
	return g
}

// Start resets the run and enters the countdown. It returns the delay before
// the first AdvanceCountdown call.
func (g *Game) Start() (time.Duration, error) {
	if g.state != StateIdle && g.state != StateEnded {
		return 0, fmt.Errorf("snake: start from %s: %w", g.state, ErrBadTransition)
	}

	g.body = []core.Point{g.rules.Origin}
	g.dir = core.Vec{}
	g.score = 0
	g.interval = g.rules.InitialInterval
	g.steps = 0
	g.state = StateCountdown
	g.count = g.rules.CountdownFrom
	g.showGo = false

	if g.count <= 0 {
		g.showGo = true
		return g.rules.GoDuration, nil
	}
	return g.rules.CountdownStep, nil
}

// AdvanceCountdown moves the countdown one step. It returns the delay before
// the next call, or zero once the game is Running.
func (g *Game) AdvanceCountdown() (time.Duration, error) {
	if g.state != StateCountdown {
		return 0, fmt.Errorf("snake: countdown in %s: %w", g.state, ErrBadTransition)
	}

	if g.showGo {
		g.showGo = false
		g.dir = core.Vec{X: 1}
		g.state = StateRunning
		return 0, nil
	}

	g.count--
	if g.count > 0 {
		return g.rules.CountdownStep, nil
	}
	g.showGo = true
	return g.rules.GoDuration, nil
}

// Abandon drops a countdown in progress and returns the game to Idle.
func (g *Game) Abandon() error {
	if g.state != StateCountdown {
		return fmt.Errorf("snake: abandon in %s: %w", g.state, ErrBadTransition)
	}
	g.state = StateIdle
	g.showGo = false
	g.dir = core.Vec{}
	return nil
}

// Step advances the snake by one cell. Outside Running it does nothing.
func (g *Game) Step() StepResult {
	if g.state != StateRunning {
		return StepResult{}
	}
	g.steps++

	next := g.body[0].Add(g.dir, g.rules.Grid)
	if !g.inCanvas(next) || g.occupied(next) {
		g.state = StateEnded
		return StepResult{Ended: true}
	}

	g.body = append(g.body, core.Point{})
	copy(g.body[1:], g.body)
	g.body[0] = next

	if next != g.food {
		g.body = g.body[:len(g.body)-1]
		return StepResult{Moved: true}
	}

	res := StepResult{Moved: true, Ate: true}
	g.score += g.rules.FoodReward
	g.spawnFood()
	if g.score%g.rules.SpeedUpEvery == 0 && g.interval > g.rules.MinInterval {
		g.interval = max(g.interval-g.rules.IntervalStep, g.rules.MinInterval)
		res.IntervalChanged = true
	}
	return res
}

// SetDirection changes direction. A vertical move is accepted only while
// moving horizontally and vice versa, so the snake never reverses in place.
func (g *Game) SetDirection(v core.Vec) bool {
	if g.state != StateRunning {
		return false
	}

	switch {
	case v.X == 0 && (v.Y == 1 || v.Y == -1):
		if g.dir.Y != 0 {
			return false
		}
	case v.Y == 0 && (v.X == 1 || v.X == -1):
		if g.dir.X != 0 {
			return false
		}
	default:
		return false
	}

	g.dir = v
	return true
}

// State returns the lifecycle state.
func (g *Game) State() State { return g.state }

// Score returns the current score.
func (g *Game) Score() int { return g.score }

// Interval returns the current tick interval.
func (g *Game) Interval() time.Duration { return g.interval }

// Rules returns the game rules.
func (g *Game) Rules() Rules { return g.rules }

func (g *Game) inCanvas(p core.Point) bool {
	return p.X >= 0 && p.Y >= 0 && p.X < g.rules.CanvasW && p.Y < g.rules.CanvasH
}

// occupied checks the whole pre-move body, tail included.
func (g *Game) occupied(p core.Point) bool {
	for _, seg := range g.body {
		if seg == p {
			return true
		}
	}
	return false
}

// spawnFood picks any grid cell uniformly. Cells under the snake are not excluded.
func (g *Game) spawnFood() {
	g.food = core.Point{
		X: g.rng.Intn(g.rules.Cols()) * g.rules.Grid,
		Y: g.rng.Intn(g.rules.Rows()) * g.rules.Grid,
	}
}
