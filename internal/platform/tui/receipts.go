package tui

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/trust-snake/internal/config"
	"github.com/vovakirdan/trust-snake/internal/gate"
	"github.com/vovakirdan/trust-snake/internal/storage"
	"github.com/vovakirdan/trust-snake/internal/wallet"
)

// maxReceipts is the number of payments loaded per view.
const maxReceipts = 100

// ReceiptsKeyMap defines the key bindings for the receipts screen.
type ReceiptsKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Filter key.Binding
	Reload key.Binding
	Quit   key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k ReceiptsKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Filter, k.Reload, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k ReceiptsKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down},
		{k.Filter, k.Reload, k.Quit},
	}
}

// DefaultReceiptsKeyMap returns default key bindings.
func DefaultReceiptsKeyMap() ReceiptsKeyMap {
	return ReceiptsKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "scroll down"),
		),
		Filter: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "all/mine"),
		),
		Reload: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reload"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ReceiptsModel lists recorded payments in a table.
type ReceiptsModel struct {
	store    *storage.Store
	address  string // Payer filter for "mine"; empty disables it
	currency config.CurrencyConfig
	mine     bool
	payments []storage.Payment
	err      error
	table    table.Model
	help     help.Model
	keys     ReceiptsKeyMap
	width    int
	height   int
	quitting bool
}

// NewReceiptsModel creates a receipts model and loads the first page.
func NewReceiptsModel(store *storage.Store, address string, currency config.CurrencyConfig, width, height int) ReceiptsModel {
	m := ReceiptsModel{
		store:    store,
		address:  address,
		currency: currency,
		mine:     address != "",
		help:     help.New(),
		keys:     DefaultReceiptsKeyMap(),
		width:    width,
		height:   height,
	}
	m.table = m.createTable()
	m.load()
	return m
}

// createTable sizes the table columns to the window.
func (m *ReceiptsModel) createTable() table.Model {
	columns := []table.Column{
		{Title: "Time", Width: 12},
		{Title: "Status", Width: 10},
		{Title: "Amount", Width: 16},
		{Title: "Tx", Width: 14},
	}
	if extra := m.width - 4 - 52 - 8; extra > 0 {
		columns[3].Width += min(extra, 52)
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(max(m.height-8, 3)),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return t
}

// load reads payments from the store using the current filter.
func (m *ReceiptsModel) load() {
	m.err = nil
	if m.store == nil {
		m.payments = nil
		m.updateRows()
		return
	}

	ctx := context.Background()
	var err error
	if m.mine {
		m.payments, err = m.store.PaymentsFrom(ctx, m.address, maxReceipts)
	} else {
		m.payments, err = m.store.RecentPayments(ctx, maxReceipts)
	}
	if err != nil {
		m.payments = nil
		m.err = err
	}
	m.updateRows()
}

func (m *ReceiptsModel) updateRows() {
	rows := make([]table.Row, len(m.payments))
	for i, p := range m.payments {
		rows[i] = table.Row{
			p.CreatedAt.Local().Format("Jan 02 15:04"),
			p.Status,
			m.formatAmount(p.AmountWei),
			shortHash(p.TxHash, m.table.Columns()[3].Width),
		}
	}
	m.table.SetRows(rows)
	m.table.GotoTop()
}

// formatAmount renders a wei amount in whole currency units.
func (m *ReceiptsModel) formatAmount(wei string) string {
	v, ok := new(big.Int).SetString(wei, 10)
	if !ok {
		return wei
	}
	return wallet.FormatUnits(v, m.currency.Decimals) + " " + m.currency.Symbol
}

// shortHash fits a transaction hash into width columns.
func shortHash(h string, width int) string {
	if h == "" {
		return "-"
	}
	if len(h) <= width || width < 8 {
		return h
	}
	keep := (width - 1) / 2
	return h[:keep] + "…" + h[len(h)-(width-1-keep):]
}

// Init initializes the receipts model.
func (m ReceiptsModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the receipts screen.
func (m ReceiptsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Filter):
			if m.address != "" {
				m.mine = !m.mine
				m.load()
			}
			return m, nil

		case key.Matches(msg, m.keys.Reload):
			m.load()
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table = m.createTable()
		m.updateRows()
		m.help.Width = msg.Width
		return m, nil
	}

	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View renders the receipts screen.
func (m ReceiptsModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("229"))

	title := "PAYMENTS - all"
	if m.mine {
		title = "PAYMENTS - " + m.address
	}
	b.WriteString(titleStyle.Render(centerText(title, m.width)))
	b.WriteString("\n\n")

	tableStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	switch {
	case m.err != nil:
		b.WriteString(kindStyles[gate.KindError].Render(fmt.Sprintf("Cannot load payments: %v", m.err)))
	case len(m.payments) == 0:
		b.WriteString(labelStyle.Render(centerText("No payments yet", m.width)))
	default:
		b.WriteString(tableStyle.Render(m.table.View()))
	}

	b.WriteString("\n")
	helpStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))
	b.WriteString(helpStyle.Render(m.help.View(m.keys)))

	return b.String()
}

// RunReceipts runs the receipts screen until the user quits.
func RunReceipts(store *storage.Store, address string, currency config.CurrencyConfig, width, height int) error {
	m := NewReceiptsModel(store, address, currency, width, height)
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
