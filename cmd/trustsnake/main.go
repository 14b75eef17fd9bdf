// trustsnake is a terminal snake game gated behind a small on-chain payment.
//
// Usage:
//
//	trustsnake play          - Connect a wallet, pay and play in this terminal
//	trustsnake serve         - Serve the game over SSH, one wallet per session
//	trustsnake receipts      - Browse recorded payments
//	trustsnake providers     - List wallet providers
//	trustsnake config        - Print, validate or write the configuration
//
// Global flags:
//
//	--config <path>    - Config file (default search: ~/.trustsnake/config.yaml, ./configs/trustsnake.yaml)
//	--db <path>        - Payment ledger database (default: ~/.trustsnake/payments.db)
//	--provider <name>  - Wallet provider, overrides wallet.provider
//	--log-level <lvl>  - debug, info, warn or error
package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/trust-snake/internal/config"
)

var (
	flagConfig   string
	flagDBPath   string
	flagProvider string
	flagLogLevel string
	flagLogFile  string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "trustsnake",
	Short: "Trust Snake - pay a little TRUST, play a little snake",
	Long: `Trust Snake is a terminal snake game. Each game costs a fixed payment
on the configured chain, sent from your wallet and confirmed before the
countdown starts.

Examples:
  trustsnake play
  trustsnake play --provider simulated
  trustsnake serve
  trustsnake receipts --address 0x1234...
  trustsnake config print`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to config YAML")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "~/.trustsnake/payments.db", "Path to payment ledger database")
	rootCmd.PersistentFlags().StringVar(&flagProvider, "provider", "", "Wallet provider (see 'trustsnake providers')")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&flagLogFile, "log-file", "~/.trustsnake/trustsnake.log", "Log file used while the TUI owns the terminal")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(receiptsCmd)
	rootCmd.AddCommand(providersCmd)
	rootCmd.AddCommand(configCmd)
}

// loadConfig loads configuration and applies the --provider override.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return cfg, err
	}
	if flagProvider != "" {
		cfg.Wallet.Provider = flagProvider
	}
	return cfg, nil
}

// newLogger creates a logger writing to w at the --log-level level.
func newLogger(w *os.File, prefix string) (*log.Logger, error) {
	level, err := log.ParseLevel(flagLogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid --log-level: %w", err)
	}
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          prefix,
		Level:           level,
	}), nil
}
