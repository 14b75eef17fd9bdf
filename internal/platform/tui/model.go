package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/trust-snake/internal/config"
	"github.com/vovakirdan/trust-snake/internal/core"
	"github.com/vovakirdan/trust-snake/internal/games/snake"
	"github.com/vovakirdan/trust-snake/internal/gate"
	"github.com/vovakirdan/trust-snake/internal/wallet"
)

// Page texts owned by the retry flow.
const (
	TextPreparing   = "Preparing transaction..."
	TextStarting    = "Starting game..."
	TextRetryFailed = "Retry failed"
)

// panel is the part of the page currently on screen.
type panel int

const (
	panelMenu panel = iota
	panelGame
	panelGameOver
)

// connectDoneMsg is sent when Gate.Connect returns.
type connectDoneMsg struct{ ok bool }

// paymentDoneMsg is sent when Gate.SendPayment returns.
type paymentDoneMsg struct {
	ok    bool
	retry bool
}

// PageConfig holds everything a page needs to start.
type PageConfig struct {
	Config   config.Config
	Provider wallet.Provider
	Ledger   gate.Ledger // Optional
	Logger   *log.Logger
	Seed     int64 // 0 = time based
}

// Model is the page: it owns the gate, the game, the timers and the panels.
// One Model exists per terminal or SSH session.
type Model struct {
	ctx    context.Context
	cancel context.CancelFunc
	logger *log.Logger

	gate       *gate.Gate
	game       *snake.Game
	board      *StatusBoard
	retryDelay time.Duration

	gameTimer  core.Timer
	startTimer core.Timer

	screen *core.Screen
	pad    *core.Screen
	width  int
	height int

	panel        panel
	finalScore   int
	connecting   bool
	connected    bool
	startEnabled bool
	paying       bool

	spinner  spinner.Model
	help     help.Model
	keys     KeyMap
	quitting bool
}

// NewPage creates a page. The page context derives from ctx and is
// cancelled when the page quits.
func NewPage(ctx context.Context, pc PageConfig) (Model, error) {
	params, err := gate.ParamsFromConfig(pc.Config)
	if err != nil {
		return Model{}, err
	}

	logger := pc.Logger
	if logger == nil {
		logger = log.Default()
	}
	seed := pc.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	board := NewStatusBoard()
	opts := []gate.Option{gate.WithLogger(logger)}
	if pc.Ledger != nil {
		opts = append(opts, gate.WithLedger(pc.Ledger))
	}

	rules := snake.RulesFromConfig(pc.Config.Game)
	sw, sh := rules.ScreenSize()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))

	pageCtx, cancel := context.WithCancel(ctx)
	return Model{
		ctx:        pageCtx,
		cancel:     cancel,
		logger:     logger,
		gate:       gate.New(pc.Provider, params, board, opts...),
		game:       snake.New(rules, seed),
		board:      board,
		retryDelay: pc.Config.Payment.RetryStartDelay,
		screen:     core.NewScreen(sw, sh),
		pad:        core.NewScreen(sw, dpadRows),
		spinner:    sp,
		help:       help.New(),
		keys:       DefaultKeyMap(),
	}, nil
}

// Init starts the status listener and the spinner.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.board.listen(m.ctx), m.spinner.Tick)
}

// Update handles messages and updates the page state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleAction(m.keys.ActionFor(msg))

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case connectDoneMsg:
		m.connecting = false
		m.connected = msg.ok
		m.startEnabled = msg.ok
		return m, nil

	case paymentDoneMsg:
		return m.handlePaymentDone(msg)

	case timerMsg:
		return m.handleTimer(msg)

	case statusChangedMsg:
		return m, m.board.listen(m.ctx)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// handleAction runs one page action from the keyboard or the D-pad.
func (m Model) handleAction(a core.Action) (tea.Model, tea.Cmd) {
	switch a {
	case core.ActionQuit:
		return m.quit()

	case core.ActionConnect:
		if m.connecting || m.connected {
			return m, nil
		}
		m.connecting = true
		return m, m.connectCmd()

	case core.ActionStart:
		if m.panel != panelMenu || !m.startEnabled || m.paying {
			return m, nil
		}
		m.startEnabled = false
		m.paying = true
		return m, m.payCmd(false)

	case core.ActionRetry:
		if m.panel != panelGameOver || m.paying || m.startTimer.Armed() {
			return m, nil
		}
		m.paying = true
		m.board.SetPaymentStatus(TextPreparing, gate.KindPending)
		return m, m.payCmd(true)

	case core.ActionUp, core.ActionDown, core.ActionLeft, core.ActionRight:
		if m.game.State() == snake.StateRunning {
			v, _ := a.Vec()
			m.game.SetDirection(v)
		}
	}
	return m, nil
}

// handleMouse maps left clicks on the D-pad to directions.
func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.panel != panelGame || msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return m, nil
	}
	padTop := 1 + m.screen.Height()
	a := dpadHit(m.pad.Width(), msg.X, msg.Y-padTop)
	if a == core.ActionNone {
		return m, nil
	}
	return m.handleAction(a)
}

func (m Model) handlePaymentDone(msg paymentDoneMsg) (tea.Model, tea.Cmd) {
	m.paying = false
	if !msg.ok {
		if msg.retry {
			m.board.SetPaymentStatus(TextRetryFailed, gate.KindError)
		} else {
			m.startEnabled = true
		}
		return m, nil
	}

	if !msg.retry {
		return m.startGame()
	}
	gen := m.startTimer.Arm(m.retryDelay, false)
	return m, timerCmd(timerStart, gen, m.retryDelay)
}

func (m Model) handleTimer(msg timerMsg) (tea.Model, tea.Cmd) {
	switch msg.id {
	case timerStart:
		if m.startTimer.Fire(msg.gen) {
			m.board.SetPaymentStatus(TextStarting, gate.KindSuccess)
			return m.startGame()
		}
	case timerGame:
		if m.gameTimer.Fire(msg.gen) {
			return m.handleGameTick()
		}
	}
	return m, nil
}

// startGame resets the game into its countdown and arms the first step.
func (m Model) startGame() (tea.Model, tea.Cmd) {
	d, err := m.game.Start()
	if err != nil {
		m.logger.Error("Cannot start game", "err", err)
		return m, nil
	}
	m.panel = panelGame
	m.startEnabled = false
	gen := m.gameTimer.Arm(d, false)
	return m, timerCmd(timerGame, gen, d)
}

// handleGameTick advances the countdown or moves the snake.
func (m Model) handleGameTick() (tea.Model, tea.Cmd) {
	switch m.game.State() {
	case snake.StateCountdown:
		d, err := m.game.AdvanceCountdown()
		if err != nil {
			m.logger.Error("Countdown failed", "err", err)
			m.gameTimer.Stop()
			return m, nil
		}
		if d > 0 {
			gen := m.gameTimer.Arm(d, false)
			return m, timerCmd(timerGame, gen, d)
		}
		cmd := m.armGameplay()
		return m, cmd

	case snake.StateRunning:
		res := m.game.Step()
		if res.Ended {
			m.gameTimer.Stop()
			m.finalScore = m.game.Score()
			m.panel = panelGameOver
			m.logger.Info("Game over", "score", m.finalScore)
			return m, nil
		}
		if res.IntervalChanged {
			cmd := m.armGameplay()
			return m, cmd
		}
		return m, timerCmd(timerGame, m.gameTimer.Generation(), m.gameTimer.Interval())
	}
	return m, nil
}

// armGameplay replaces the game timer with a repeating tick at the current
// speed.
func (m *Model) armGameplay() tea.Cmd {
	d := m.game.Interval()
	gen := m.gameTimer.Arm(d, true)
	return timerCmd(timerGame, gen, d)
}

func (m Model) connectCmd() tea.Cmd {
	g, ctx := m.gate, m.ctx
	return func() tea.Msg {
		return connectDoneMsg{ok: g.Connect(ctx)}
	}
}

func (m Model) payCmd(retry bool) tea.Cmd {
	g, ctx := m.gate, m.ctx
	return func() tea.Msg {
		return paymentDoneMsg{ok: g.SendPayment(ctx), retry: retry}
	}
}

// quit stops both timers, drops a countdown in progress and cancels the
// page context, which aborts any pending gate call.
func (m Model) quit() (tea.Model, tea.Cmd) {
	if m.game.State() == snake.StateCountdown {
		_ = m.game.Abandon()
	}
	m.gameTimer.Stop()
	m.startTimer.Stop()
	m.cancel()
	m.quitting = true
	return m, tea.Quit
}

// View renders the current panel.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	switch m.panel {
	case panelGame:
		return m.viewGame()
	case panelGameOver:
		return m.viewGameOver()
	}
	return m.viewMenu()
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	buttonStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	offStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	panelStyle  = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("245")).
			Padding(1, 3)
)

// button renders a control label, dimmed when it is disabled.
func button(keyName, label string, enabled bool) string {
	text := fmt.Sprintf("[%s] %s", keyName, label)
	if !enabled {
		return offStyle.Render(text)
	}
	return buttonStyle.Render(text)
}

// paymentLine renders the payment status with a spinner while work is pending.
func (m Model) paymentLine() string {
	text, kind := m.board.Payment()
	line := kindStyles[kind].Render(text)
	if m.paying || m.connecting {
		line = m.spinner.View() + " " + line
	}
	return line
}

func (m Model) priceLine() string {
	params := m.gate.Params()
	c := params.Chain.Currency
	return fmt.Sprintf("%s %s per game on %s",
		wallet.FormatUnits(params.Amount, c.Decimals), c.Symbol, params.Chain.Name)
}

func (m Model) viewMenu() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("TRUST SNAKE"))
	b.WriteString("\n")
	b.WriteString(labelStyle.Render(m.priceLine()))
	b.WriteString("\n\n")
	b.WriteString(labelStyle.Render("Wallet: ") + m.board.Wallet())
	b.WriteString("\n")
	b.WriteString(m.paymentLine())
	b.WriteString("\n\n")
	b.WriteString(button("c", "Connect wallet", !m.connecting && !m.connected))
	b.WriteString("   ")
	b.WriteString(button("enter", "Pay & play", m.startEnabled && !m.paying))

	return m.place(panelStyle.Render(b.String()) + "\n\n" + m.help.View(m.keys))
}

func (m Model) viewGame() string {
	sw, sh := m.game.Rules().ScreenSize()
	if m.width > 0 && (m.width < sw || m.height < 1+sh+dpadRows) {
		return m.place(fmt.Sprintf("Window too small\nneed %dx%d", sw, 1+sh+dpadRows))
	}

	text, _ := m.board.Payment()
	header := truncate(m.board.Wallet()+" | "+text, sw)

	m.game.Render(m.screen)
	renderDPad(m.pad, m.game.State() == snake.StateRunning)
	return labelStyle.Render(header) + "\n" + RenderScreen(m.screen) + "\n" + RenderScreen(m.pad)
}

func (m Model) viewGameOver() string {
	m.game.Render(m.screen)

	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("Final score: %d", m.finalScore)))
	b.WriteString("\n")
	b.WriteString(m.paymentLine())
	b.WriteString("\n\n")
	b.WriteString(button("r", "Pay & retry", !m.paying && !m.startTimer.Armed()))
	b.WriteString("   ")
	b.WriteString(button("q", "Quit", true))

	return RenderScreen(m.screen) + "\n" + panelStyle.Render(b.String())
}

// place centers content in the window once its size is known.
func (m Model) place(content string) string {
	if m.width == 0 || m.height == 0 {
		return content
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

// Close cancels the page context.
func (m Model) Close() {
	m.cancel()
}

// Run starts a Bubble Tea program for the page and blocks until it quits.
func Run(ctx context.Context, m Model) error {
	defer m.Close()

	p := tea.NewProgram(
		m,
		tea.WithContext(ctx),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	_, err := p.Run()
	return err
}
