package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/trust-snake/internal/config"
	"github.com/vovakirdan/trust-snake/internal/platform/tui"
	"github.com/vovakirdan/trust-snake/internal/registry"
	"github.com/vovakirdan/trust-snake/internal/storage"
)

var flagSeed int64

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Pay and play in this terminal",
	Long: `Start the snake page in this terminal.

Controls:
  C              - Connect wallet
  Enter/Space    - Pay & play
  R              - Pay & retry (after game over)
  Arrows/WASD/HJKL or click the D-pad - Steer
  Q/Ctrl+C       - Quit

Logs go to --log-file so they do not disturb the game.

Examples:
  trustsnake play
  trustsnake play --provider simulated
  TRUSTSNAKE_PRIVATE_KEY=... trustsnake play --provider keystore`,
	Args: cobra.NoArgs,
	RunE: runPlay,
}

func init() {
	playCmd.Flags().Int64Var(&flagSeed, "seed", 0, "RNG seed for food placement (0 = random based on time)")
}

func runPlay(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logFile, err := openLogFile(flagLogFile)
	if err != nil {
		return err
	}
	defer logFile.Close()

	logger, err := newLogger(logFile, "trustsnake")
	if err != nil {
		return err
	}

	provider, err := registry.Create(cfg.Wallet.Provider, cfg, logger)
	if err != nil {
		return err
	}
	defer provider.Close()

	pc := tui.PageConfig{
		Config:   cfg,
		Provider: provider,
		Logger:   logger,
		Seed:     flagSeed,
	}

	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not open payment ledger: %v\n", err)
		// Continue without the ledger - payments still work
	} else {
		defer store.Close()
		pc.Ledger = store
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	model, err := tui.NewPage(ctx, pc)
	if err != nil {
		return err
	}

	logger.Info("Page started", "provider", cfg.Wallet.Provider, "chain", cfg.Chain.Name)
	return tui.Run(ctx, model)
}

// openLogFile opens the log file for appending, creating its directory.
func openLogFile(path string) (*os.File, error) {
	path, err := config.ExpandHome(path)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("cannot create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("cannot open log file: %w", err)
	}
	return f, nil
}
