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
	"github.com/google/uuid"

	"github.com/vovakirdan/scriptloop/internal/core"
	"github.com/vovakirdan/scriptloop/internal/driver"
	"github.com/vovakirdan/scriptloop/internal/script"
	"github.com/vovakirdan/scriptloop/internal/storage"
)

// SSHServerConfig holds configuration for the SSH server.
type SSHServerConfig struct {
	// Address is the host:port to listen on (e.g., ":23235").
	Address string

	// HostKeyPath is the path to the host key file.
	// If empty, a key will be auto-generated at ~/.scriptloop/host_key.
	HostKeyPath string

	// DBPath is the path to the run history database.
	DBPath string

	// IdleTimeout is how long to wait before closing idle connections.
	IdleTimeout time.Duration

	// Display carries the cell size and tick rate; the screen size comes
	// from each session's PTY.
	Display core.RuntimeConfig

	CallTimeout  time.Duration
	MaxCallDepth int
	InputHold    time.Duration
	DebugKey     string

	// Logger defaults to a stderr logger prefixed "scriptloop-ssh".
	Logger *log.Logger
}

type ctxKey int

const (
	driverKey ctxKey = iota
	startedKey
	sessionIDKey
)

// SSHServer serves one compiled script to every SSH session. Each session
// gets its own runtime; only the compiled program is shared.
type SSHServer struct {
	config  SSHServerConfig
	program *script.Program
	server  *ssh.Server
	store   *storage.Store
	logger  *log.Logger
}

// NewSSHServer creates a new SSH server for program.
func NewSSHServer(cfg SSHServerConfig, program *script.Program) (*SSHServer, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: true,
			Prefix:          "scriptloop-ssh",
		})
	}

	// Open storage
	store, err := storage.Open(cfg.DBPath)
	if err != nil {
		logger.Warn("could not open run database", "error", err)
		// Continue without storage
		store = nil
	}

	srv := &SSHServer{
		config:  cfg,
		program: program,
		store:   store,
		logger:  logger,
	}

	// Resolve host key path
	hostKeyPath := cfg.HostKeyPath
	if hostKeyPath == "" {
		home, homeErr := os.UserHomeDir()
		if homeErr != nil {
			return nil, fmt.Errorf("cannot get home directory: %w", homeErr)
		}
		hostKeyPath = filepath.Join(home, ".scriptloop", "host_key")
	}

	if mkdirErr := os.MkdirAll(filepath.Dir(hostKeyPath), 0o700); mkdirErr != nil {
		return nil, fmt.Errorf("cannot create host key directory: %w", mkdirErr)
	}

	// bubbletea runs innermost so the logging middleware sees the finished run
	opts := []ssh.Option{
		wish.WithAddress(cfg.Address),
		wish.WithHostKeyPath(hostKeyPath),
		wish.WithIdleTimeout(cfg.IdleTimeout),
		wish.WithMiddleware(
			bubbletea.Middleware(srv.teaHandler),
			srv.loggingMiddleware,
		),
	}

	server, err := wish.NewServer(opts...)
	if err != nil {
		if store != nil {
			store.Close()
		}
		return nil, fmt.Errorf("cannot create SSH server: %w", err)
	}

	srv.server = server
	return srv, nil
}

// teaHandler starts a fresh script session for each SSH connection.
func (s *SSHServer) teaHandler(sshSession ssh.Session) (tea.Model, []tea.ProgramOption) {
	pty, _, ok := sshSession.Pty()
	if !ok {
		s.logger.Warn("no PTY requested", "user", sshSession.User())
		return nil, nil
	}

	cfg := s.config.Display
	cfg.ScreenW = pty.Window.Width
	cfg.ScreenH = pty.Window.Height

	id := sessionID(sshSession)
	started := time.Now()
	session, err := NewSession(SessionOptions{
		Program:      s.program,
		Config:       cfg,
		CallTimeout:  s.config.CallTimeout,
		MaxCallDepth: s.config.MaxCallDepth,
		InputHold:    s.config.InputHold,
		DebugKey:     s.config.DebugKey,
		Logger:       s.logger.With("user", sshSession.User(), "session", id),
		Renderer:     NewRenderer(bubbletea.MakeRenderer(sshSession)),
	})
	if err != nil {
		s.logger.Error("cannot start script", "session", id, "error", err)
		wish.Fatalln(sshSession, "cannot start script:", err)
		return nil, nil
	}

	sshSession.Context().SetValue(driverKey, session.Driver)
	sshSession.Context().SetValue(startedKey, started)

	return NewModel(session), []tea.ProgramOption{
		tea.WithAltScreen(),
		tea.WithReportFocus(),
	}
}

// loggingMiddleware logs SSH session events and records the finished run.
func (s *SSHServer) loggingMiddleware(next ssh.Handler) ssh.Handler {
	return func(sshSession ssh.Session) {
		id := uuid.NewString()
		sshSession.Context().SetValue(sessionIDKey, id)

		s.logger.Info("session started",
			"session", id,
			"user", sshSession.User(),
			"remote", sshSession.RemoteAddr().String(),
		)
		next(sshSession)
		s.saveRun(sshSession)
		s.logger.Info("session ended",
			"session", id,
			"user", sshSession.User(),
			"remote", sshSession.RemoteAddr().String(),
		)
	}
}

// sessionID returns the id the logging middleware assigned to sshSession.
func sessionID(sshSession ssh.Session) string {
	id, _ := sshSession.Context().Value(sessionIDKey).(string)
	return id
}

func (s *SSHServer) saveRun(sshSession ssh.Session) {
	d, ok := sshSession.Context().Value(driverKey).(*driver.Driver)
	if !ok || s.store == nil {
		return
	}
	started, _ := sshSession.Context().Value(startedKey).(time.Time)

	rec := NewRunRecord(s.program.Name(), "ssh:"+sshSession.User(), started, d.Stats())
	if _, err := s.store.SaveRun(rec); err != nil {
		s.logger.Warn("could not save run", "session", sessionID(sshSession), "error", err)
	}
}

// ListenAndServe starts the SSH server and blocks until shutdown.
func (s *SSHServer) ListenAndServe() error {
	s.logger.Info("starting SSH server", "address", s.config.Address, "script", s.program.Name())

	// Setup signal handling for graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			s.logger.Error("server error", "error", err)
		}
	}()

	<-done
	s.logger.Info("shutting down...")
	return s.Shutdown()
}

// Shutdown gracefully stops the server.
func (s *SSHServer) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err := s.server.Shutdown(ctx)
	if s.store != nil {
		s.store.Close()
	}
	return err
}

// Addr returns the server's listen address string.
func (s *SSHServer) Addr() string {
	return s.config.Address
}
