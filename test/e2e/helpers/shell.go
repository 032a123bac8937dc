//go:build integration

// Package helpers wires a complete headless shell for end-to-end tests.
package helpers

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/txn2/appshell/internal/server"
	"github.com/txn2/appshell/pkg/config"
	"github.com/txn2/appshell/pkg/health"
	"github.com/txn2/appshell/pkg/shell"
)

const (
	testDirPerms  = 0o750
	testFilePerms = 0o600
)

// Shell is a running headless shell bound to a loopback port.
type Shell struct {
	Config     *config.Config
	Host       *server.Host
	Controller *shell.Controller
	Health     *health.Checker
	BaseURL    string

	cancel context.CancelFunc
	done   chan error
}

// WriteBundle writes files (relative path to content) into a fresh bundle
// directory and returns its absolute path.
func WriteBundle(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), testDirPerms); err != nil {
			t.Fatalf("creating bundle dir: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), testFilePerms); err != nil {
			t.Fatalf("writing bundle file: %v", err)
		}
	}
	return root
}

// WriteEnvDir writes .env files (file name to contents) into a fresh
// directory and returns its path.
func WriteEnvDir(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), testFilePerms); err != nil {
			t.Fatalf("writing %s: %v", name, err)
		}
	}
	return dir
}

// LoadConfig loads configuration for mode from envDir only; the process
// environment is not consulted.
func LoadConfig(t *testing.T, mode, envDir string) *config.Config {
	t.Helper()
	cfg, err := config.Load(config.LoadOptions{
		EnvDir: envDir,
		Lookup: func(key string) (string, bool) {
			if key == config.EnvMode {
				return mode, true
			}
			return "", false
		},
		Address: "127.0.0.1:0",
	})
	if err != nil {
		t.Fatalf("loading config: %v", err)
	}
	return cfg
}

// StartShell wires and starts a shell for cfg on a linux host. It is stopped
// when the test ends.
func StartShell(t *testing.T, cfg *config.Config) *Shell {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	checker := health.NewChecker(cfg.Mode.String())
	host := server.NewHost(server.Options{
		Origin:   cfg.Host,
		Platform: "linux",
		Logger:   logger,
		Health:   checker,
	})
	controller, err := shell.NewController(cfg, host, logger)
	if err != nil {
		t.Fatalf("creating controller: %v", err)
	}
	host.OnAllWindowsClosed(controller.WindowAllClosed)
	if !cfg.Mode.IsProduction() {
		host.SetFallback(server.DevRedirect(cfg))
	}

	l, err := net.Listen("tcp", cfg.Server.Address)
	if err != nil {
		t.Fatalf("listening: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Shell{
		Config:     cfg,
		Host:       host,
		Controller: controller,
		Health:     checker,
		BaseURL:    "http://" + l.Addr().String(),
		cancel:     cancel,
		done:       make(chan error, 1),
	}
	go func() {
		s.done <- server.ListenAndServe(ctx, l, host.Handler(), logger)
	}()

	if err := controller.Start(ctx); err != nil {
		cancel()
		t.Fatalf("starting controller: %v", err)
	}
	t.Cleanup(func() {
		if err := s.Stop(); err != nil {
			t.Errorf("stopping shell: %v", err)
		}
	})
	return s
}

// Stop closes the main window and shuts the HTTP server down. It is safe to
// call more than once.
func (s *Shell) Stop() error {
	closeErr := s.Controller.Stop(context.Background())
	s.cancel()

	select {
	case err, ok := <-s.done:
		if ok {
			close(s.done)
		}
		return errors.Join(closeErr, err)
	case <-time.After(10 * time.Second):
		return errors.Join(closeErr, errors.New("server did not stop"))
	}
}
