package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/gofrs/flock"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"rolescout/internal/config"
	"rolescout/internal/ledger"
)

type commandContext struct {
	dataDirFlag *string
}

func newCommandContext(dataDirFlag *string) *commandContext {
	return &commandContext{dataDirFlag: dataDirFlag}
}

// dataDir resolves the working directory: flag, then environment, then
// the current directory. The directory is created if missing.
func (c *commandContext) dataDir() (string, error) {
	dir := ""
	if c.dataDirFlag != nil {
		dir = strings.TrimSpace(*c.dataDirFlag)
	}
	if dir == "" {
		dir = strings.TrimSpace(os.Getenv("ROLESCOUT_DATA_DIR"))
	}
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create data dir: %w", err)
	}
	return dir, nil
}

// loadConfig bootstraps the user config on first run and validates it.
// Warnings go to stderr; errors abort the command.
func (c *commandContext) loadConfig() (config.Config, string, error) {
	dir, err := c.dataDir()
	if err != nil {
		return config.Config{}, "", err
	}

	_ = godotenv.Load(filepath.Join(dir, ".env"))
	_ = godotenv.Load()

	path, err := config.EnsureUserConfig(dir)
	if err != nil {
		return config.Config{}, "", fmt.Errorf("bootstrap config: %w", err)
	}
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, "", fmt.Errorf("load %s: %w", path, err)
	}

	cfg, v := config.NormalizeAndValidate(cfg)
	for _, w := range v.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}
	if !v.OK() {
		return config.Config{}, "", fmt.Errorf("invalid config %s:\n  %s", path, strings.Join(v.Errors, "\n  "))
	}
	return cfg, dir, nil
}

// session bundles everything a pipeline command needs. Mutating commands
// hold an exclusive file lock so cron overlap cannot corrupt a run.
type session struct {
	cfg     config.Config
	dataDir string
	ledger  *ledger.Ledger
	lock    *flock.Flock
}

func (c *commandContext) openSession(exclusive bool) (*session, error) {
	cfg, dir, err := c.loadConfig()
	if err != nil {
		return nil, err
	}

	s := &session{cfg: cfg, dataDir: dir}

	if exclusive {
		s.lock = flock.New(filepath.Join(dir, "rolescout.lock"))
		ok, err := s.lock.TryLock()
		if err != nil {
			return nil, fmt.Errorf("acquire lock: %w", err)
		}
		if !ok {
			return nil, fmt.Errorf("another rolescout invocation holds %s", s.lock.Path())
		}
	}

	l, err := ledger.Open(filepath.Join(dir, "rolescout.db"))
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	if err := l.Migrate(); err != nil {
		_ = l.Close()
		s.Close()
		return nil, fmt.Errorf("migrate ledger: %w", err)
	}
	s.ledger = l
	return s, nil
}

func (s *session) Close() {
	if s.ledger != nil {
		_ = s.ledger.Close()
	}
	if s.lock != nil {
		_ = s.lock.Unlock()
	}
}

// runWithSession wraps a command body with session setup, teardown and
// SIGINT/SIGTERM cancellation.
func (c *commandContext) runWithSession(exclusive bool, body func(ctx context.Context, s *session) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		s, err := c.openSession(exclusive)
		if err != nil {
			return err
		}
		defer s.Close()

		ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		return body(ctx, s)
	}
}
