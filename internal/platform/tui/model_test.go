package tui

import (
	"context"
	"errors"
	"io"
	"math/big"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/trust-snake/internal/config"
	"github.com/vovakirdan/trust-snake/internal/core"
	"github.com/vovakirdan/trust-snake/internal/games/snake"
	"github.com/vovakirdan/trust-snake/internal/gate"
	"github.com/vovakirdan/trust-snake/internal/wallet"
)

var testAccount = common.HexToAddress("0x1234567890abcdef1234567890abcdef12345678")

// stubProvider is an in-memory wallet that accepts every payment unless told
// otherwise.
type stubProvider struct {
	mu          sync.Mutex
	accountsErr error
	sendErr     error
	chain       uint64
	sent        int
	closed      bool
}

func (p *stubProvider) RequestAccounts(context.Context) ([]common.Address, error) {
	if p.accountsErr != nil {
		return nil, p.accountsErr
	}
	return []common.Address{testAccount}, nil
}

func (p *stubProvider) ChainID(context.Context) (uint64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.chain, nil
}

func (p *stubProvider) SwitchChain(_ context.Context, id uint64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.chain = id
	return nil
}

func (p *stubProvider) AddChain(context.Context, wallet.ChainParams) error { return nil }

func (p *stubProvider) SendTransaction(context.Context, wallet.TxRequest) (common.Hash, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.sendErr != nil {
		return common.Hash{}, p.sendErr
	}
	p.sent++
	return common.BigToHash(big.NewInt(int64(p.sent))), nil
}

func (p *stubProvider) WaitForConfirmations(context.Context, common.Hash, uint64) (*types.Receipt, error) {
	return &types.Receipt{Status: types.ReceiptStatusSuccessful}, nil
}

func (p *stubProvider) Close() error {
	p.closed = true
	return nil
}

func (p *stubProvider) setSendErr(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sendErr = err
}

func newTestPage(t *testing.T, provider wallet.Provider) Model {
	t.Helper()
	return newTestPageWith(t, provider, config.Default(), 1)
}

func newTestPageWith(t *testing.T, provider wallet.Provider, cfg config.Config, seed int64) Model {
	t.Helper()
	m, err := NewPage(context.Background(), PageConfig{
		Config:   cfg,
		Provider: provider,
		Logger:   log.New(io.Discard),
		Seed:     seed,
	})
	require.NoError(t, err)
	t.Cleanup(m.Close)
	return m
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	require.True(t, ok)
	return nm, cmd
}

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

var enterKey = tea.KeyMsg{Type: tea.KeyEnter}

// press sends a key and runs the resulting gate command synchronously,
// feeding its message back into the model.
func press(t *testing.T, m Model, k tea.KeyMsg) Model {
	t.Helper()
	m, cmd := update(t, m, k)
	require.NotNil(t, cmd, "key %q produced no command", k.String())
	m, _ = update(t, m, cmd())
	return m
}

func connected(t *testing.T, p *stubProvider) Model {
	t.Helper()
	m := newTestPage(t, p)
	m = press(t, m, runeKey('c'))
	require.True(t, m.connected)
	return m
}

// fireGame delivers the live game timer tick.
func fireGame(t *testing.T, m Model) (Model, tea.Cmd) {
	t.Helper()
	return update(t, m, timerMsg{id: timerGame, gen: m.gameTimer.Generation()})
}

// runToGameOver ticks the game until the snake hits a wall.
func runToGameOver(t *testing.T, m Model) Model {
	t.Helper()
	for range 1000 {
		if m.panel == panelGameOver {
			return m
		}
		m, _ = fireGame(t, m)
	}
	t.Fatal("game never ended")
	return m
}

func TestNewPageInitialStatus(t *testing.T) {
	m := newTestPage(t, &stubProvider{})

	assert.Equal(t, "Not connected", m.board.Wallet())
	text, _ := m.board.Payment()
	assert.Equal(t, "Connect a wallet to play", text)
	assert.Equal(t, panelMenu, m.panel)
	assert.Equal(t, snake.StateIdle, m.game.State())
	assert.Contains(t, m.View(), "TRUST SNAKE")
	assert.Contains(t, m.priceLine(), "TRUST per game on Intuition Testnet")
}

func TestStartDisabledBeforeConnect(t *testing.T) {
	p := &stubProvider{}
	m := newTestPage(t, p)

	m, cmd := update(t, m, enterKey)
	assert.Nil(t, cmd)
	assert.False(t, m.paying)
	assert.Zero(t, p.sent)
}

func TestConnectShowsShortAddress(t *testing.T) {
	m := connected(t, &stubProvider{})

	assert.Equal(t, "Connected: 0x1234…5678", m.board.Wallet())
	text, kind := m.board.Payment()
	assert.Equal(t, gate.TextReady, text)
	assert.Equal(t, gate.KindPending, kind)
	assert.True(t, m.startEnabled)

	_, cmd := update(t, m, runeKey('c'))
	assert.Nil(t, cmd, "connect stays disabled once connected")
}

func TestConnectFailureReenablesConnect(t *testing.T) {
	p := &stubProvider{accountsErr: errors.New("user rejected")}
	m := newTestPage(t, p)

	m = press(t, m, runeKey('c'))
	assert.False(t, m.connected)
	assert.False(t, m.connecting)
	assert.Equal(t, gate.TextConnectionFailed, m.board.Wallet())

	_, cmd := update(t, m, runeKey('c'))
	assert.NotNil(t, cmd)
}

func TestConnectDisabledWhileConnecting(t *testing.T) {
	m := newTestPage(t, &stubProvider{})

	m, cmd := update(t, m, runeKey('c'))
	require.NotNil(t, cmd)
	assert.True(t, m.connecting)

	_, again := update(t, m, runeKey('c'))
	assert.Nil(t, again)
}

func TestPayStartsCountdown(t *testing.T) {
	p := &stubProvider{}
	m := connected(t, p)

	m, cmd := update(t, m, enterKey)
	require.NotNil(t, cmd)
	assert.True(t, m.paying)

	_, again := update(t, m, enterKey)
	assert.Nil(t, again, "start is disabled while paying")

	m, tick := update(t, m, cmd())
	assert.NotNil(t, tick)
	assert.Equal(t, 1, p.sent)
	assert.Equal(t, panelGame, m.panel)
	assert.Equal(t, snake.StateCountdown, m.game.State())
	assert.True(t, m.gameTimer.Armed())
	assert.False(t, m.startEnabled)

	text, kind := m.board.Payment()
	assert.Equal(t, gate.TextConfirmed, text)
	assert.Equal(t, gate.KindSuccess, kind)
}

func TestPaymentFailureReenablesStart(t *testing.T) {
	p := &stubProvider{sendErr: errors.New("insufficient funds")}
	m := connected(t, p)

	m = press(t, m, enterKey)
	assert.Equal(t, panelMenu, m.panel)
	assert.True(t, m.startEnabled)
	assert.False(t, m.paying)

	text, kind := m.board.Payment()
	assert.Equal(t, "Tx failed: insufficient funds", text)
	assert.Equal(t, gate.KindError, kind)
}

func TestTimerRunsCountdownThenGameplay(t *testing.T) {
	m := connected(t, &stubProvider{})
	m = press(t, m, enterKey)

	// 3, 2, 1, Go!
	for i := range 4 {
		require.Equal(t, snake.StateCountdown, m.game.State(), "frame %d", i)
		var cmd tea.Cmd
		m, cmd = fireGame(t, m)
		require.NotNil(t, cmd)
	}

	assert.Equal(t, snake.StateRunning, m.game.State())
	assert.True(t, m.gameTimer.Repeating())
	assert.Equal(t, m.game.Interval(), m.gameTimer.Interval())

	before := m.game.Snapshot().Steps
	m, _ = fireGame(t, m)
	assert.Equal(t, before+1, m.game.Snapshot().Steps)
}

func TestStaleTimerTickIgnored(t *testing.T) {
	m := connected(t, &stubProvider{})
	m = press(t, m, enterKey)

	stale := m.gameTimer.Generation()
	m, _ = fireGame(t, m) // 3 -> 2 re-arms

	snap := m.game.Snapshot()
	m, cmd := update(t, m, timerMsg{id: timerGame, gen: stale})
	assert.Nil(t, cmd)
	assert.Equal(t, snap.Countdown, m.game.Snapshot().Countdown)
}

func TestSpeedUpRearmsGameTimer(t *testing.T) {
	cfg := config.Default()
	g := &cfg.Game
	g.CanvasWidth, g.CanvasHeight, g.Grid = 60, 20, 20
	g.Origin = config.PointConfig{}
	g.SpeedUpEvery, g.FoodReward = 2, 2
	g.CountdownFrom = 0
	g.GoDuration = time.Millisecond
	g.InitialInterval = 30 * time.Millisecond
	g.IntervalStep = 10 * time.Millisecond
	g.MinInterval = 10 * time.Millisecond

	// Find a seed that puts the first food right in front of the snake.
	p := &stubProvider{}
	var m Model
	for seed := int64(1); ; seed++ {
		require.Less(t, seed, int64(200), "no seed places food at (20,0)")
		m = newTestPageWith(t, p, cfg, seed)
		if m.game.Snapshot().Food == (core.Point{X: 20, Y: 0}) {
			break
		}
	}

	m = press(t, m, runeKey('c'))
	m = press(t, m, enterKey)
	m, _ = fireGame(t, m) // Go! -> running
	require.Equal(t, snake.StateRunning, m.game.State())
	require.Equal(t, 30*time.Millisecond, m.gameTimer.Interval())

	oldGen := m.gameTimer.Generation()
	m, cmd := fireGame(t, m)
	require.NotNil(t, cmd)
	assert.Equal(t, 2, m.game.Score())
	assert.Equal(t, 20*time.Millisecond, m.game.Interval())
	assert.Equal(t, 20*time.Millisecond, m.gameTimer.Interval())
	assert.NotEqual(t, oldGen, m.gameTimer.Generation())

	tick, ok := cmd().(timerMsg)
	require.True(t, ok)
	assert.Equal(t, timerGame, tick.id)
	assert.Equal(t, m.gameTimer.Generation(), tick.gen, "re-armed tick carries the live generation")

	steps := m.game.Snapshot().Steps
	m, stale := update(t, m, timerMsg{id: timerGame, gen: oldGen})
	assert.Nil(t, stale)
	assert.Equal(t, steps, m.game.Snapshot().Steps, "tick from the old interval is dropped")

	m, _ = update(t, m, tick)
	assert.Equal(t, steps+1, m.game.Snapshot().Steps)
}

func TestDirectionKeysSteerRunningSnake(t *testing.T) {
	m := connected(t, &stubProvider{})
	m = press(t, m, enterKey)
	for range 4 {
		m, _ = fireGame(t, m)
	}
	require.Equal(t, snake.StateRunning, m.game.State())

	m, _ = update(t, m, runeKey('w'))
	assert.Equal(t, core.Vec{X: 0, Y: -1}, m.game.Snapshot().Dir)

	m, _ = update(t, m, runeKey('s'))
	assert.Equal(t, core.Vec{X: 0, Y: -1}, m.game.Snapshot().Dir, "reversal on the same axis is ignored")
}

func TestDPadClickSteersSnake(t *testing.T) {
	m := connected(t, &stubProvider{})
	m = press(t, m, enterKey)
	for range 4 {
		m, _ = fireGame(t, m)
	}

	up := dpadLayout(m.pad.Width())[0]
	require.Equal(t, core.ActionUp, up.action)
	padTop := 1 + m.screen.Height()

	m, _ = update(t, m, tea.MouseMsg{
		X:      up.rect.X,
		Y:      padTop + up.rect.Y,
		Action: tea.MouseActionPress,
		Button: tea.MouseButtonLeft,
	})
	assert.Equal(t, core.Vec{X: 0, Y: -1}, m.game.Snapshot().Dir)
}

func TestGameOverThenRetry(t *testing.T) {
	p := &stubProvider{}
	m := connected(t, p)
	m = press(t, m, enterKey)
	m = runToGameOver(t, m)

	assert.Equal(t, snake.StateEnded, m.game.State())
	assert.False(t, m.gameTimer.Armed())
	assert.Equal(t, m.game.Score(), m.finalScore)
	assert.Contains(t, m.View(), "Final score")

	m, cmd := update(t, m, runeKey('r'))
	require.NotNil(t, cmd)
	text, kind := m.board.Payment()
	assert.Equal(t, TextPreparing, text)
	assert.Equal(t, gate.KindPending, kind)

	m, startCmd := update(t, m, cmd())
	require.NotNil(t, startCmd)
	assert.Equal(t, 2, p.sent)
	assert.True(t, m.startTimer.Armed())
	assert.Equal(t, panelGameOver, m.panel)
	text, _ = m.board.Payment()
	assert.Equal(t, gate.TextConfirmed, text)

	_, again := update(t, m, runeKey('r'))
	assert.Nil(t, again, "retry is disabled until the game restarts")

	m, _ = update(t, m, timerMsg{id: timerStart, gen: m.startTimer.Generation()})
	text, kind = m.board.Payment()
	assert.Equal(t, TextStarting, text)
	assert.Equal(t, gate.KindSuccess, kind)
	assert.Equal(t, panelGame, m.panel)
	assert.Equal(t, snake.StateCountdown, m.game.State())
	assert.Zero(t, m.game.Score())
	assert.Len(t, m.game.Snapshot().Body, 1)
}

func TestRetryFailureOverridesGateStatus(t *testing.T) {
	p := &stubProvider{}
	m := connected(t, p)
	m = press(t, m, enterKey)
	m = runToGameOver(t, m)

	p.setSendErr(errors.New("nonce too low"))
	m = press(t, m, runeKey('r'))

	text, kind := m.board.Payment()
	assert.Equal(t, TextRetryFailed, text)
	assert.Equal(t, gate.KindError, kind)
	assert.Equal(t, panelGameOver, m.panel)
	assert.False(t, m.paying)

	_, cmd := update(t, m, runeKey('r'))
	assert.NotNil(t, cmd, "retry is enabled again after a failure")
}

func TestRetryOnlyOnGameOverPanel(t *testing.T) {
	m := connected(t, &stubProvider{})

	_, cmd := update(t, m, runeKey('r'))
	assert.Nil(t, cmd)
}

func TestQuitDuringCountdownAbandonsGame(t *testing.T) {
	m := connected(t, &stubProvider{})
	m = press(t, m, enterKey)
	require.Equal(t, snake.StateCountdown, m.game.State())

	m, cmd := update(t, m, runeKey('q'))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Equal(t, snake.StateIdle, m.game.State())
	assert.False(t, m.gameTimer.Armed())
	assert.Error(t, m.ctx.Err())
	assert.Empty(t, m.View())
}

func TestStatusChangeRearmsListener(t *testing.T) {
	m := newTestPage(t, &stubProvider{})

	m.board.SetWalletStatus("x")
	_, cmd := update(t, m, statusChangedMsg{})
	require.NotNil(t, cmd)
	assert.Equal(t, statusChangedMsg{}, cmd())
}

func TestStatusBoardSignalsCoalesce(t *testing.T) {
	b := NewStatusBoard()
	b.SetWalletStatus("a")
	b.SetPaymentStatus("b", gate.KindSuccess)

	ctx, cancel := context.WithCancel(context.Background())
	assert.Equal(t, statusChangedMsg{}, b.listen(ctx)())

	cancel()
	assert.Nil(t, b.listen(ctx)(), "no second signal is queued")

	text, kind := b.Payment()
	assert.Equal(t, "b", text)
	assert.Equal(t, gate.KindSuccess, kind)
}

func TestGameViewTooSmall(t *testing.T) {
	m := connected(t, &stubProvider{})
	m = press(t, m, enterKey)

	m, _ = update(t, m, tea.WindowSizeMsg{Width: 20, Height: 10})
	assert.Contains(t, m.View(), "Window too small")

	m, _ = update(t, m, tea.WindowSizeMsg{Width: 80, Height: 40})
	view := m.View()
	assert.Contains(t, view, "Score: 0")
	assert.Contains(t, view, "[ ▲ ]")
}
