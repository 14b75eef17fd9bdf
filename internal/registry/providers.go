package registry

import (
	"crypto/ecdsa"
	"math/big"

	"github.com/charmbracelet/log"
	"github.com/ethereum/go-ethereum/params"

	"github.com/vovakirdan/trust-snake/internal/config"
	"github.com/vovakirdan/trust-snake/internal/wallet"
)

// simulatedFunds is the genesis balance of the simulated account, in ether.
const simulatedFunds = 100

func init() {
	Register("keystore", "RPC chain, key from a keystore file or an environment variable", newKeystoreProvider)
	Register("simulated", "in-process chain with a funded throwaway account", newSimulatedProvider)
}

func providerOptions(cfg config.Config, logger *log.Logger) wallet.Options {
	opts := wallet.Options{
		PollInterval: cfg.Payment.PollInterval,
		Logger:       logger,
	}
	for _, n := range cfg.Wallet.Networks {
		opts.Networks = append(opts.Networks, wallet.ChainParams{
			ChainID: n.ID,
			Name:    n.Name,
			RPCURL:  n.RPCURL,
		})
	}
	return opts
}

func newKeystoreProvider(cfg config.Config, logger *log.Logger) (wallet.Provider, error) {
	key, err := loadKey(cfg.Wallet)
	if err != nil {
		return nil, err
	}
	return wallet.NewEthProvider(key, providerOptions(cfg, logger)), nil
}

// loadKey prefers the keystore file and falls back to the environment.
func loadKey(cfg config.WalletConfig) (*ecdsa.PrivateKey, error) {
	if cfg.Keystore == "" {
		return wallet.KeyFromEnv(cfg.PrivateKeyEnv)
	}

	path, err := config.ExpandHome(cfg.Keystore)
	if err != nil {
		return nil, err
	}
	pwPath, err := config.ExpandHome(cfg.PasswordFile)
	if err != nil {
		return nil, err
	}
	password, err := wallet.ReadPassword(pwPath)
	if err != nil {
		return nil, err
	}
	return wallet.LoadKeystore(path, password)
}

func newSimulatedProvider(cfg config.Config, logger *log.Logger) (wallet.Provider, error) {
	funds := new(big.Int).Mul(big.NewInt(simulatedFunds), big.NewInt(params.Ether))
	sim, err := wallet.NewSimulated(cfg.Chain.ID, funds, providerOptions(cfg, logger))
	if err != nil {
		return nil, err
	}
	return sim, nil
}
