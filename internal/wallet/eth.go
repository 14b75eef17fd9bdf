package wallet

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/params"
)

// ChainClient is the subset of an Ethereum RPC client the provider uses.
// *ethclient.Client and the simulated backend's client both satisfy it.
type ChainClient interface {
	ChainID(ctx context.Context) (*big.Int, error)
	BlockNumber(ctx context.Context) (uint64, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasTipCap(ctx context.Context) (*big.Int, error)
	HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	TransactionReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error)
}

// Dialer opens a ChainClient for an RPC URL.
type Dialer func(ctx context.Context, rpcURL string) (ChainClient, error)

// DialRPC dials an RPC endpoint with ethclient.
func DialRPC(ctx context.Context, rpcURL string) (ChainClient, error) {
	c, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Options configures an EthProvider.
type Options struct {
	Networks     []ChainParams // Chains known before any AddChain
	PollInterval time.Duration // Receipt poll interval, default 1s
	Dial         Dialer        // Default DialRPC
	Logger       *log.Logger
}

// EthProvider is a Provider holding one private key and talking to chains
// over RPC.
type EthProvider struct {
	key     *ecdsa.PrivateKey
	account common.Address
	dial    Dialer
	poll    time.Duration
	logger  *log.Logger

	mu       sync.Mutex
	networks map[uint64]ChainParams
	active   uint64
	client   ChainClient
}

// NewEthProvider creates a provider for key.
func NewEthProvider(key *ecdsa.PrivateKey, opts Options) *EthProvider {
	if opts.PollInterval <= 0 {
		opts.PollInterval = time.Second
	}
	if opts.Dial == nil {
		opts.Dial = DialRPC
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}

	p := &EthProvider{
		key:      key,
		dial:     opts.Dial,
		poll:     opts.PollInterval,
		logger:   opts.Logger,
		networks: make(map[uint64]ChainParams),
	}
	if key != nil {
		p.account = crypto.PubkeyToAddress(key.PublicKey)
	}
	for _, n := range opts.Networks {
		p.networks[n.ChainID] = n
	}
	return p
}

// RequestAccounts returns the single account derived from the key.
func (p *EthProvider) RequestAccounts(ctx context.Context) ([]common.Address, error) {
	if p.key == nil {
		return nil, fmt.Errorf("wallet: request accounts: %w", ErrNoAccount)
	}
	return []common.Address{p.account}, nil
}

// ChainID returns the active chain id.
func (p *EthProvider) ChainID(ctx context.Context) (uint64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.client == nil {
		return 0, ErrNoActiveChain
	}
	return p.active, nil
}

// SwitchChain dials the chain's RPC URL and makes it active after checking
// the endpoint reports the expected chain id.
func (p *EthProvider) SwitchChain(ctx context.Context, chainID uint64) error {
	p.mu.Lock()
	chain, ok := p.networks[chainID]
	if ok && p.client != nil && p.active == chainID {
		p.mu.Unlock()
		return nil
	}
	p.mu.Unlock()

	if !ok {
		return fmt.Errorf("wallet: switch to %s: %w", hexutil.EncodeUint64(chainID), ErrUnrecognizedChain)
	}
	hexID := chain.HexID()

	client, err := p.dial(ctx, chain.RPCURL)
	if err != nil {
		return fmt.Errorf("wallet: dial %s: %w", chain.RPCURL, err)
	}
	remote, err := client.ChainID(ctx)
	if err != nil {
		closeClient(client)
		return fmt.Errorf("wallet: read chain id from %s: %w", chain.RPCURL, err)
	}
	if !remote.IsUint64() || remote.Uint64() != chainID {
		closeClient(client)
		return fmt.Errorf("wallet: %s reports chain %s, want %s: %w", chain.RPCURL, remote, hexID, ErrChainMismatch)
	}

	p.mu.Lock()
	old := p.client
	p.client = client
	p.active = chainID
	p.mu.Unlock()

	if old != nil && old != client {
		closeClient(old)
	}
	p.logger.Info("Switched chain", "chain", hexID, "name", chain.Name)
	return nil
}

// AddChain registers chain, replacing an earlier registration of the same id.
func (p *EthProvider) AddChain(ctx context.Context, chain ChainParams) error {
	if chain.ChainID == 0 {
		return fmt.Errorf("wallet: add chain: chain id must be set")
	}
	if chain.RPCURL == "" {
		return fmt.Errorf("wallet: add chain %s: rpc url must be set", chain.HexID())
	}

	p.mu.Lock()
	p.networks[chain.ChainID] = chain
	p.mu.Unlock()

	p.logger.Info("Added chain", "chain", chain.HexID(), "name", chain.Name, "rpc", chain.RPCURL)
	return nil
}

// SendTransaction signs an EIP-1559 transfer with the provider's key and
// submits it to the active chain.
func (p *EthProvider) SendTransaction(ctx context.Context, req TxRequest) (common.Hash, error) {
	if p.key == nil || req.From != p.account {
		return common.Hash{}, fmt.Errorf("wallet: send from %s: %w", req.From.Hex(), ErrNoAccount)
	}
	if req.Value == nil || req.Value.Sign() < 0 {
		return common.Hash{}, fmt.Errorf("wallet: send: invalid value")
	}

	client, chainID, err := p.activeClient()
	if err != nil {
		return common.Hash{}, fmt.Errorf("wallet: send: %w", err)
	}

	nonce, err := client.PendingNonceAt(ctx, p.account)
	if err != nil {
		return common.Hash{}, fmt.Errorf("wallet: nonce: %w", err)
	}
	tip, err := client.SuggestGasTipCap(ctx)
	if err != nil {
		return common.Hash{}, fmt.Errorf("wallet: gas tip: %w", err)
	}
	head, err := client.HeaderByNumber(ctx, nil)
	if err != nil {
		return common.Hash{}, fmt.Errorf("wallet: latest header: %w", err)
	}

	// feeCap = tip + 2*baseFee keeps the tx valid across a few base fee rises.
	feeCap := new(big.Int).Set(tip)
	if head.BaseFee != nil {
		feeCap.Add(feeCap, new(big.Int).Mul(head.BaseFee, big.NewInt(2)))
	}

	id := new(big.Int).SetUint64(chainID)
	to := req.To
	tx, err := types.SignNewTx(p.key, types.LatestSignerForChainID(id), &types.DynamicFeeTx{
		ChainID:   id,
		Nonce:     nonce,
		GasTipCap: tip,
		GasFeeCap: feeCap,
		Gas:       params.TxGas,
		To:        &to,
		Value:     req.Value,
	})
	if err != nil {
		return common.Hash{}, fmt.Errorf("wallet: sign: %w", err)
	}

	if err := client.SendTransaction(ctx, tx); err != nil {
		return common.Hash{}, fmt.Errorf("wallet: submit: %w", err)
	}

	p.logger.Info("Transaction sent", "hash", tx.Hash().Hex(), "to", to.Hex(), "value", req.Value, "nonce", nonce)
	return tx.Hash(), nil
}

// WaitForConfirmations polls for the receipt of hash until it is mined with
// the requested depth. A receipt with a failed status yields ErrTxFailed.
// RPC errors are logged and polling continues; only ctx ends the wait early.
func (p *EthProvider) WaitForConfirmations(ctx context.Context, hash common.Hash, confirmations uint64) (*types.Receipt, error) {
	if confirmations == 0 {
		confirmations = 1
	}
	client, _, err := p.activeClient()
	if err != nil {
		return nil, fmt.Errorf("wallet: wait: %w", err)
	}

	ticker := time.NewTicker(p.poll)
	defer ticker.Stop()

	for {
		receipt, err := client.TransactionReceipt(ctx, hash)
		switch {
		case err == nil:
			if receipt.Status != types.ReceiptStatusSuccessful {
				return receipt, fmt.Errorf("wallet: tx %s: %w", hash.Hex(), ErrTxFailed)
			}
			head, headErr := client.BlockNumber(ctx)
			if headErr != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				p.logger.Warn("Block number failed, retrying", "hash", hash.Hex(), "err", headErr)
				break
			}
			mined := receipt.BlockNumber.Uint64()
			if head >= mined && head-mined+1 >= confirmations {
				return receipt, nil
			}
		case errors.Is(err, ethereum.NotFound):
			// Not mined yet
		default:
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			p.logger.Warn("Receipt lookup failed, retrying", "hash", hash.Hex(), "err", err)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// Close closes the active RPC connection.
func (p *EthProvider) Close() error {
	p.mu.Lock()
	client := p.client
	p.client = nil
	p.active = 0
	p.mu.Unlock()

	if client != nil {
		closeClient(client)
	}
	return nil
}

func (p *EthProvider) activeClient() (ChainClient, uint64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.client == nil {
		return nil, 0, ErrNoActiveChain
	}
	return p.client, p.active, nil
}

func closeClient(c ChainClient) {
	if closer, ok := c.(interface{ Close() }); ok {
		closer.Close()
	}
}
