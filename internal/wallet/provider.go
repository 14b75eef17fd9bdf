// Package wallet provides the account and chain capability the payment gate
// talks to. A Provider behaves like an injected browser wallet: it exposes one
// account, tracks an active chain, knows a set of chains it can switch to, and
// signs and submits native-token transfers on the caller's behalf.
package wallet

import (
	"context"
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
)

var (
	// ErrUnrecognizedChain is returned by SwitchChain for a chain the wallet
	// has never been told about. AddChain makes it known.
	ErrUnrecognizedChain = errors.New("unrecognized chain")
	// ErrNoAccount is returned when the wallet holds no usable account or a
	// transaction names a sender the wallet does not control.
	ErrNoAccount = errors.New("no account")
	// ErrNoActiveChain is returned before the first successful SwitchChain.
	ErrNoActiveChain = errors.New("no active chain")
	// ErrChainMismatch is returned when an RPC endpoint reports a chain id
	// other than the one it was registered for.
	ErrChainMismatch = errors.New("chain id mismatch")
	// ErrTxFailed is returned when a mined transaction has a failed status.
	ErrTxFailed = errors.New("transaction failed")
)

// Currency describes a chain's native currency.
type Currency struct {
	Name     string
	Symbol   string
	Decimals int
}

// ChainParams is what AddChain needs to make a chain known to the wallet.
type ChainParams struct {
	ChainID  uint64
	Name     string
	RPCURL   string
	Currency Currency
}

// HexID returns the chain id as a 0x-prefixed hex quantity, e.g. 0x350b.
func (p ChainParams) HexID() string {
	return hexutil.EncodeUint64(p.ChainID)
}

// TxRequest is a plain value transfer.
type TxRequest struct {
	From  common.Address
	To    common.Address
	Value *big.Int
}

// Provider is the wallet capability. Implementations must be safe for
// concurrent use.
type Provider interface {
	// RequestAccounts returns the accounts the user grants access to.
	RequestAccounts(ctx context.Context) ([]common.Address, error)
	// ChainID returns the active chain id.
	ChainID(ctx context.Context) (uint64, error)
	// SwitchChain makes chainID active. Unknown chains yield ErrUnrecognizedChain.
	SwitchChain(ctx context.Context, chainID uint64) error
	// AddChain registers a chain. It does not switch to it.
	AddChain(ctx context.Context, params ChainParams) error
	// SendTransaction signs and submits req on the active chain.
	SendTransaction(ctx context.Context, req TxRequest) (common.Hash, error)
	// WaitForConfirmations blocks until hash has the given number of
	// confirmations or ctx is done. There is no other timeout.
	WaitForConfirmations(ctx context.Context, hash common.Hash, confirmations uint64) (*types.Receipt, error)
	// Close releases connections held by the provider.
	Close() error
}
