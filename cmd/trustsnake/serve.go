package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/trust-snake/internal/platform/tui"
	"github.com/vovakirdan/trust-snake/internal/storage"
)

var (
	flagSSHAddr     string
	flagHostKey     string
	flagIdleTimeout time.Duration
	flagMaxSessions int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the game over SSH",
	Long: `Start an SSH server where every connection gets its own snake page
and its own wallet provider. The provider defaults to "simulated" so remote
players never touch the server's keys; pass --provider keystore to charge a
real chain.

Host key handling:
  - If --host-key or server.host_key is set, uses that key file
  - Otherwise, auto-generates a key at ~/.trustsnake/host_key

Examples:
  trustsnake serve
  trustsnake serve --ssh :2222 --max-sessions 8
  trustsnake serve --provider keystore

Users can connect with:
  ssh -t localhost -p 23235`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh", "", "SSH server address (host:port), overrides server.address")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to host key file, overrides server.host_key")
	serveCmd.Flags().DurationVar(&flagIdleTimeout, "idle-timeout", 0, "Idle timeout, overrides server.idle_timeout")
	serveCmd.Flags().IntVar(&flagMaxSessions, "max-sessions", -1, "Concurrent session cap (0 = unlimited), overrides server.max_sessions")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if !cmd.Flags().Changed("provider") {
		cfg.Wallet.Provider = "simulated"
	}
	if flagSSHAddr != "" {
		cfg.Server.Address = flagSSHAddr
	}
	if flagHostKey != "" {
		cfg.Server.HostKey = flagHostKey
	}
	if flagIdleTimeout > 0 {
		cfg.Server.IdleTimeout = flagIdleTimeout
	}
	if flagMaxSessions >= 0 {
		cfg.Server.MaxSessions = flagMaxSessions
	}

	logger, err := newLogger(os.Stderr, "trustsnake-ssh")
	if err != nil {
		return err
	}

	store, err := storage.Open(flagDBPath)
	if err != nil {
		logger.Warn("could not open payment ledger", "error", err)
		store = nil
	} else {
		defer store.Close()
	}

	server, err := tui.NewSSHServer(tui.SSHServerConfig{
		Config:   cfg,
		Provider: cfg.Wallet.Provider,
		Store:    store,
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Starting trustsnake SSH server on %s\n", server.Addr())
	fmt.Println("Press Ctrl+C to stop")

	return server.ListenAndServe()
}
