// Package gate sequences wallet connection and the single micropayment that
// unlocks a game. It owns no UI: progress is reported through a Sink and
// every attempt can be written to a Ledger.
package gate

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"

	"github.com/vovakirdan/trust-snake/internal/config"
	"github.com/vovakirdan/trust-snake/internal/storage"
	"github.com/vovakirdan/trust-snake/internal/wallet"
)

// Status texts shown to the user.
const (
	TextConnecting       = "Connecting..."
	TextConnectionFailed = "Connection failed"
	TextReady            = "Ready - press Enter to pay & play"
	TextSending          = "Sending tx..."
	TextWaiting          = "Waiting for confirm..."
	TextConfirmed        = "Confirmed!"
)

// Kind classifies a payment status line.
type Kind int

const (
	KindPending Kind = iota
	KindSuccess
	KindError
)

// String returns the lowercase kind name.
func (k Kind) String() string {
	switch k {
	case KindSuccess:
		return "success"
	case KindError:
		return "error"
	default:
		return "pending"
	}
}

// Sink receives status updates. Calls may come from any goroutine.
type Sink interface {
	SetWalletStatus(text string)
	SetPaymentStatus(text string, kind Kind)
}

// Ledger persists payment attempts. *storage.Store satisfies it.
type Ledger interface {
	RecordAttempt(ctx context.Context, p storage.Payment) error
	UpdateAttempt(ctx context.Context, p storage.Payment) error
}

// Session is a connected wallet.
type Session struct {
	Address common.Address
	ChainID uint64
}

// AttemptStatus is the lifecycle state of a payment attempt.
type AttemptStatus int

const (
	AttemptIdle AttemptStatus = iota
	AttemptPending
	AttemptConfirmed
	AttemptFailed
)

// String returns the ledger name of the status.
func (s AttemptStatus) String() string {
	switch s {
	case AttemptPending:
		return storage.StatusPending
	case AttemptConfirmed:
		return storage.StatusConfirmed
	case AttemptFailed:
		return storage.StatusFailed
	default:
		return "idle"
	}
}

// Attempt is the most recent payment attempt.
type Attempt struct {
	ID        uuid.UUID
	Recipient common.Address
	Amount    *big.Int
	Status    AttemptStatus
	TxHash    common.Hash
	Err       string
	StartedAt time.Time
}

// Params is the fixed payment the gate asks for.
type Params struct {
	Chain         wallet.ChainParams
	Recipient     common.Address
	Amount        *big.Int // Smallest units
	Confirmations uint64
}

// ParamsFromConfig converts configuration into payment parameters.
func ParamsFromConfig(cfg config.Config) (Params, error) {
	if !common.IsHexAddress(cfg.Payment.Recipient) {
		return Params{}, fmt.Errorf("gate: invalid recipient %q", cfg.Payment.Recipient)
	}
	amount, err := wallet.ParseUnits(cfg.Payment.Amount, cfg.Chain.Currency.Decimals)
	if err != nil {
		return Params{}, fmt.Errorf("gate: payment amount: %w", err)
	}

	return Params{
		Chain: wallet.ChainParams{
			ChainID: cfg.Chain.ID,
			Name:    cfg.Chain.Name,
			RPCURL:  cfg.Chain.RPCURL,
			Currency: wallet.Currency{
				Name:     cfg.Chain.Currency.Name,
				Symbol:   cfg.Chain.Currency.Symbol,
				Decimals: cfg.Chain.Currency.Decimals,
			},
		},
		Recipient:     common.HexToAddress(cfg.Payment.Recipient),
		Amount:        amount,
		Confirmations: max(cfg.Payment.Confirmations, 1),
	}, nil
}

// Gate drives one page's wallet session and payments.
type Gate struct {
	provider wallet.Provider
	params   Params
	sink     Sink
	ledger   Ledger
	logger   *log.Logger

	mu      sync.Mutex
	session *Session
	attempt Attempt
}

// Option configures a Gate.
type Option func(*Gate)

// WithLedger records every attempt in l.
func WithLedger(l Ledger) Option {
	return func(g *Gate) { g.ledger = l }
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(g *Gate) { g.logger = l }
}

// New creates a gate. sink must not be nil.
func New(provider wallet.Provider, params Params, sink Sink, opts ...Option) *Gate {
	g := &Gate{
		provider: provider,
		params:   params,
		sink:     sink,
		logger:   log.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Connect requests the account, puts the wallet on the target chain, and
// stores the session. It reports the outcome through the sink.
func (g *Gate) Connect(ctx context.Context) bool {
	g.sink.SetWalletStatus(TextConnecting)

	sess, err := g.connect(ctx)
	if err != nil {
		g.mu.Lock()
		g.session = nil
		g.mu.Unlock()

		g.logger.Error("Wallet connection failed", "err", err)
		g.sink.SetWalletStatus(TextConnectionFailed)
		g.sink.SetPaymentStatus("Error: "+err.Error(), KindError)
		return false
	}

	g.mu.Lock()
	g.session = &sess
	g.mu.Unlock()

	g.logger.Info("Wallet connected", "address", sess.Address.Hex(), "chain", sess.ChainID)
	g.sink.SetWalletStatus("Connected: " + ShortAddress(sess.Address))
	g.sink.SetPaymentStatus(TextReady, KindPending)
	return true
}

func (g *Gate) connect(ctx context.Context) (Session, error) {
	accounts, err := g.provider.RequestAccounts(ctx)
	if err != nil {
		return Session{}, err
	}
	if len(accounts) == 0 {
		return Session{}, fmt.Errorf("gate: wallet returned no accounts: %w", wallet.ErrNoAccount)
	}

	if err := g.ensureChain(ctx); err != nil {
		return Session{}, err
	}

	chainID, err := g.provider.ChainID(ctx)
	if err != nil {
		return Session{}, err
	}
	if chainID != g.params.Chain.ChainID {
		return Session{}, fmt.Errorf("gate: wallet is on chain %d: %w", chainID, wallet.ErrChainMismatch)
	}

	return Session{Address: accounts[0], ChainID: chainID}, nil
}

// ensureChain switches to the target chain, adding it first when the wallet
// does not know it.
func (g *Gate) ensureChain(ctx context.Context) error {
	target := g.params.Chain.ChainID

	err := g.provider.SwitchChain(ctx, target)
	if !errors.Is(err, wallet.ErrUnrecognizedChain) {
		return err
	}

	g.logger.Info("Chain unknown to wallet, adding", "chain", g.params.Chain.HexID())
	if err := g.provider.AddChain(ctx, g.params.Chain); err != nil {
		return err
	}
	return g.provider.SwitchChain(ctx, target)
}

// SendPayment sends the fixed payment and waits for confirmation. It returns
// false without side effects when there is no session or a payment is
// already pending.
func (g *Gate) SendPayment(ctx context.Context) bool {
	g.mu.Lock()
	if g.session == nil || g.attempt.Status == AttemptPending {
		g.mu.Unlock()
		return false
	}
	sess := *g.session
	g.attempt = Attempt{
		ID:        uuid.New(),
		Recipient: g.params.Recipient,
		Amount:    new(big.Int).Set(g.params.Amount),
		Status:    AttemptPending,
		StartedAt: time.Now(),
	}
	attempt := g.attempt
	g.mu.Unlock()

	g.record(ctx, sess, attempt)
	g.sink.SetPaymentStatus(TextSending, KindPending)

	hash, err := g.provider.SendTransaction(ctx, wallet.TxRequest{
		From:  sess.Address,
		To:    attempt.Recipient,
		Value: attempt.Amount,
	})
	if err != nil {
		return g.fail(ctx, err)
	}

	g.mu.Lock()
	g.attempt.TxHash = hash
	attempt = g.attempt
	g.mu.Unlock()
	g.update(ctx, attempt)

	g.sink.SetPaymentStatus(TextWaiting, KindPending)
	if _, err := g.provider.WaitForConfirmations(ctx, hash, g.params.Confirmations); err != nil {
		return g.fail(ctx, err)
	}

	g.mu.Lock()
	g.attempt.Status = AttemptConfirmed
	attempt = g.attempt
	g.mu.Unlock()
	g.update(ctx, attempt)

	g.logger.Info("Payment confirmed", "attempt", attempt.ID, "hash", hash.Hex())
	g.sink.SetPaymentStatus(TextConfirmed, KindSuccess)
	return true
}

func (g *Gate) fail(ctx context.Context, err error) bool {
	g.mu.Lock()
	g.attempt.Status = AttemptFailed
	g.attempt.Err = err.Error()
	attempt := g.attempt
	g.mu.Unlock()
	g.update(ctx, attempt)

	g.logger.Error("Payment failed", "attempt", attempt.ID, "err", err)
	g.sink.SetPaymentStatus("Tx failed: "+err.Error(), KindError)
	return false
}

func (g *Gate) record(ctx context.Context, sess Session, a Attempt) {
	if g.ledger == nil {
		return
	}
	err := g.ledger.RecordAttempt(context.WithoutCancel(ctx), storage.Payment{
		ID:        a.ID.String(),
		ChainID:   sess.ChainID,
		From:      sess.Address.Hex(),
		To:        a.Recipient.Hex(),
		AmountWei: a.Amount.String(),
		Status:    a.Status.String(),
		CreatedAt: a.StartedAt,
	})
	if err != nil {
		g.logger.Warn("Failed to record payment", "attempt", a.ID, "err", err)
	}
}

func (g *Gate) update(ctx context.Context, a Attempt) {
	if g.ledger == nil {
		return
	}
	p := storage.Payment{
		ID:     a.ID.String(),
		Status: a.Status.String(),
		Error:  a.Err,
	}
	if a.TxHash != (common.Hash{}) {
		p.TxHash = a.TxHash.Hex()
	}
	if err := g.ledger.UpdateAttempt(context.WithoutCancel(ctx), p); err != nil {
		g.logger.Warn("Failed to update payment", "attempt", a.ID, "err", err)
	}
}

// Session returns the connected session, if any.
func (g *Gate) Session() (Session, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.session == nil {
		return Session{}, false
	}
	return *g.session, true
}

// Attempt returns a copy of the latest attempt.
func (g *Gate) Attempt() Attempt {
	g.mu.Lock()
	defer g.mu.Unlock()

	a := g.attempt
	if a.Amount != nil {
		a.Amount = new(big.Int).Set(a.Amount)
	}
	return a
}

// Ready reports whether a payment can be started now.
func (g *Gate) Ready() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.session != nil && g.attempt.Status != AttemptPending
}

// Params returns the payment parameters.
func (g *Gate) Params() Params {
	return g.params
}

// ShortAddress abbreviates an address as 0x1234…abcd.
func ShortAddress(addr common.Address) string {
	h := addr.Hex()
	return h[:6] + "…" + h[len(h)-4:]
}
