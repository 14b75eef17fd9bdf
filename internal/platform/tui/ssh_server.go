package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/bubbletea"

	"github.com/vovakirdan/trust-snake/internal/config"
	"github.com/vovakirdan/trust-snake/internal/registry"
	"github.com/vovakirdan/trust-snake/internal/session"
	"github.com/vovakirdan/trust-snake/internal/storage"
)

// sessionIDKey stores the registry ID of a connection in its ssh.Context.
type sessionIDKey struct{}

// SSHServerConfig holds configuration for the SSH server.
type SSHServerConfig struct {
	// Config is the full configuration; its Server section drives the listener.
	Config config.Config

	// Provider names the wallet provider created for every session.
	Provider string

	// Store records payments. Optional.
	Store *storage.Store

	// Logger receives server and page logs. Defaults to stderr.
	Logger *log.Logger
}

// SSHServer serves one snake page per SSH session.
type SSHServer struct {
	config   SSHServerConfig
	server   *ssh.Server
	sessions *session.Registry
	logger   *log.Logger
}

// NewSSHServer creates a new SSH server with the given configuration.
func NewSSHServer(cfg SSHServerConfig) (*SSHServer, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: true,
			Prefix:          "trustsnake-ssh",
		})
	}
	if !registry.Exists(cfg.Provider) {
		return nil, fmt.Errorf("tui: unknown wallet provider %q", cfg.Provider)
	}

	srv := &SSHServer{
		config:   cfg,
		sessions: session.NewRegistry(cfg.Config.Server.MaxSessions),
		logger:   logger,
	}

	hostKeyPath, err := config.ExpandHome(cfg.Config.Server.HostKey)
	if err != nil {
		return nil, err
	}
	if hostKeyPath == "" {
		hostKeyPath = config.UserPath("host_key")
		if hostKeyPath == "" {
			return nil, errors.New("tui: cannot resolve host key path")
		}
	}

	if mkdirErr := os.MkdirAll(filepath.Dir(hostKeyPath), 0o700); mkdirErr != nil {
		return nil, fmt.Errorf("tui: cannot create host key directory: %w", mkdirErr)
	}

	server, err := wish.NewServer(
		wish.WithAddress(cfg.Config.Server.Address),
		wish.WithHostKeyPath(hostKeyPath),
		wish.WithIdleTimeout(cfg.Config.Server.IdleTimeout),
		wish.WithMiddleware(
			bubbletea.Middleware(srv.teaHandler),
			srv.sessionMiddleware,
			srv.loggingMiddleware,
		),
	)
	if err != nil {
		return nil, fmt.Errorf("tui: cannot create SSH server: %w", err)
	}

	srv.server = server
	return srv, nil
}

// teaHandler creates a page, with its own wallet provider, for each session.
// The provider is closed when the session ends.
func (s *SSHServer) teaHandler(sess ssh.Session) (tea.Model, []tea.ProgramOption) {
	if _, _, ok := sess.Pty(); !ok {
		wish.Fatalln(sess, "trustsnake needs an interactive terminal (ssh -t)")
		return nil, nil
	}

	logger := s.logger.With("user", sess.User())
	if id, ok := sess.Context().Value(sessionIDKey{}).(string); ok {
		if info, found := s.sessions.Get(id); found {
			logger = logger.With("session", info.ID, "remote", info.Remote)
		}
	}

	provider, err := registry.Create(s.config.Provider, s.config.Config, logger)
	if err != nil {
		logger.Error("Cannot create wallet provider", "err", err)
		wish.Fatalln(sess, "wallet unavailable, try again later")
		return nil, nil
	}

	pc := PageConfig{
		Config:   s.config.Config,
		Provider: provider,
		Logger:   logger,
	}
	if s.config.Store != nil {
		pc.Ledger = s.config.Store
	}

	model, err := NewPage(sess.Context(), pc)
	if err != nil {
		_ = provider.Close()
		logger.Error("Cannot create page", "err", err)
		wish.Fatalln(sess, "page unavailable, try again later")
		return nil, nil
	}

	go func() {
		<-sess.Context().Done()
		model.Close()
		if closeErr := provider.Close(); closeErr != nil {
			logger.Warn("Provider close failed", "err", closeErr)
		}
	}()

	return model, []tea.ProgramOption{
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	}
}

// sessionMiddleware admits sessions up to the configured cap.
func (s *SSHServer) sessionMiddleware(next ssh.Handler) ssh.Handler {
	return func(sess ssh.Session) {
		info, release, err := s.sessions.Acquire(sess.User(), sess.RemoteAddr().String())
		if err != nil {
			s.logger.Warn("Session rejected", "user", sess.User(), "err", err)
			wish.Fatalln(sess, "server is full, try again later")
			return
		}
		defer release()

		sess.Context().SetValue(sessionIDKey{}, info.ID)
		next(sess)
	}
}

// loggingMiddleware logs SSH session events.
func (s *SSHServer) loggingMiddleware(next ssh.Handler) ssh.Handler {
	return func(sess ssh.Session) {
		start := time.Now()
		s.logger.Info("session started",
			"user", sess.User(),
			"remote", sess.RemoteAddr().String(),
		)
		next(sess)
		s.logger.Info("session ended",
			"user", sess.User(),
			"remote", sess.RemoteAddr().String(),
			"duration", time.Since(start).Round(time.Second),
			"active", s.sessions.Count(),
		)
	}
}

// ListenAndServe starts the SSH server and blocks until an interrupt.
func (s *SSHServer) ListenAndServe() error {
	s.logger.Info("starting SSH server",
		"address", s.config.Config.Server.Address,
		"provider", s.config.Provider,
		"chain", s.config.Config.Chain.Name,
	)

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	errc := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			errc <- err
		}
	}()

	select {
	case <-done:
	case err := <-errc:
		return fmt.Errorf("tui: ssh server: %w", err)
	}
	active := s.Sessions()
	s.logger.Info("shutting down...", "active", len(active))
	for _, info := range active {
		s.logger.Info("closing session",
			"session", info.ID,
			"user", info.User,
			"remote", info.Remote,
			"age", time.Since(info.Started).Round(time.Second),
		)
	}
	return s.Shutdown()
}

// Shutdown gracefully stops the server.
func (s *SSHServer) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// Sessions returns the active sessions.
func (s *SSHServer) Sessions() []session.Info {
	return s.sessions.List()
}

// Addr returns the server's listen address string.
func (s *SSHServer) Addr() string {
	return s.config.Config.Server.Address
}
