package tui

import (
	"context"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/trust-snake/internal/gate"
)

// statusChangedMsg tells the model to redraw after a status update.
type statusChangedMsg struct{}

// StatusBoard holds the wallet and payment status lines of one page. It is
// the gate's Sink: gate goroutines write to it and the model reads it when
// drawing. Writes are visible to the model before the gate call returns.
type StatusBoard struct {
	mu      sync.Mutex
	wallet  string
	payment string
	kind    gate.Kind

	notify chan struct{}
}

// NewStatusBoard creates a board with the initial page texts.
func NewStatusBoard() *StatusBoard {
	return &StatusBoard{
		wallet:  "Not connected",
		payment: "Connect a wallet to play",
		notify:  make(chan struct{}, 1),
	}
}

// SetWalletStatus implements gate.Sink.
func (b *StatusBoard) SetWalletStatus(text string) {
	b.mu.Lock()
	b.wallet = text
	b.mu.Unlock()
	b.signal()
}

// SetPaymentStatus implements gate.Sink.
func (b *StatusBoard) SetPaymentStatus(text string, kind gate.Kind) {
	b.mu.Lock()
	b.payment = text
	b.kind = kind
	b.mu.Unlock()
	b.signal()
}

// Wallet returns the wallet status line.
func (b *StatusBoard) Wallet() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.wallet
}

// Payment returns the payment status line and its kind.
func (b *StatusBoard) Payment() (string, gate.Kind) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.payment, b.kind
}

// signal wakes the listener. Pending signals coalesce, so it never blocks.
func (b *StatusBoard) signal() {
	select {
	case b.notify <- struct{}{}:
	default:
	}
}

// listen waits for the next status change. The model re-arms it after every
// statusChangedMsg. It returns nil once ctx is done.
func (b *StatusBoard) listen(ctx context.Context) tea.Cmd {
	return func() tea.Msg {
		select {
		case <-b.notify:
			return statusChangedMsg{}
		case <-ctx.Done():
			return nil
		}
	}
}

var _ gate.Sink = (*StatusBoard)(nil)
