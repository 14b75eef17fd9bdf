// Package tui provides the Bubble Tea page for trust-snake.
// It owns the gate, the game and the timers, and maps keys and mouse clicks to
// page actions.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// timerID names one of the page's timers.
type timerID int

const (
	timerGame  timerID = iota // Countdown steps and gameplay ticks
	timerStart                // Delay between a retry payment and the game start
)

// timerMsg is delivered when a timer tick fires. Stale generations are ignored.
type timerMsg struct {
	id  timerID
	gen uint64
}

// timerCmd schedules one tick of the given timer generation.
func timerCmd(id timerID, gen uint64, d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return timerMsg{id: id, gen: gen}
	})
}
