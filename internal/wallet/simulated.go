package wallet

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/eth/ethconfig"
	"github.com/ethereum/go-ethereum/ethclient/simulated"
	"github.com/ethereum/go-ethereum/node"
)

// SimulatedRPCURL is the URL the simulated provider advertises for its chain.
const SimulatedRPCURL = "simulated://local"

// Simulated is an EthProvider backed by an in-process chain. Its account is a
// throwaway key funded at genesis, and every submitted transaction is mined
// immediately. The chain starts unknown to the wallet, so callers go through
// AddChain exactly as with an unconfigured browser wallet.
type Simulated struct {
	*EthProvider
	backend *simulated.Backend
}

// NewSimulated starts a simulated chain with the given id and funds a fresh
// account with balance wei.
func NewSimulated(chainID uint64, balance *big.Int, opts Options) (*Simulated, error) {
	key, err := crypto.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("wallet: generate key: %w", err)
	}
	account := crypto.PubkeyToAddress(key.PublicKey)

	backend := simulated.NewBackend(
		types.GenesisAlloc{account: {Balance: balance}},
		withChainID(chainID),
	)
	client := &miningClient{Client: backend.Client(), commit: backend.Commit}

	opts.Dial = func(ctx context.Context, rpcURL string) (ChainClient, error) {
		return client, nil
	}
	return &Simulated{
		EthProvider: NewEthProvider(key, opts),
		backend:     backend,
	}, nil
}

// Account returns the funded account.
func (s *Simulated) Account() common.Address {
	return s.account
}

// Balance returns the balance of addr at the latest block.
func (s *Simulated) Balance(ctx context.Context, addr common.Address) (*big.Int, error) {
	return s.backend.Client().BalanceAt(ctx, addr, nil)
}

// Close stops the simulated chain.
func (s *Simulated) Close() error {
	_ = s.EthProvider.Close()
	return s.backend.Close()
}

func withChainID(chainID uint64) func(*node.Config, *ethconfig.Config) {
	return func(nodeConf *node.Config, ethConf *ethconfig.Config) {
		cfg := *ethConf.Genesis.Config
		cfg.ChainID = new(big.Int).SetUint64(chainID)
		ethConf.Genesis.Config = &cfg
		ethConf.NetworkId = chainID
	}
}

// miningClient commits a block after every submitted transaction.
type miningClient struct {
	simulated.Client
	commit func() common.Hash
}

func (c *miningClient) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	if err := c.Client.SendTransaction(ctx, tx); err != nil {
		return err
	}
	c.commit()
	return nil
}
