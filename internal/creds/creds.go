// Package creds reads the MCSP bearer token from the orchestrate credential
// cache and refreshes it through the external authentication command when it
// has expired. The cache file is owned by that external command: this package
// only ever reads it, and re-reads it after delegating a refresh.
package creds

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"superbob/internal/wxo"
)

// DefaultEnvironment is used when WXO_ENVIRONMENT is unset.
const DefaultEnvironment = "remote"

const refreshTimeout = 30 * time.Second

// Record is one environment's entry in the credential cache.
type Record struct {
	Token  string `yaml:"wxo_mcsp_token"`
	Expiry int64  `yaml:"wxo_mcsp_token_expiry"`
}

type credFile struct {
	Auth map[string]Record `yaml:"auth"`
}

// Refresher performs the authentication handshake for an environment,
// rewriting the credential cache as a side effect. The manager never performs
// the handshake itself.
type Refresher func(ctx context.Context, env, apiKey string) error

// Manager produces a valid bearer token for one environment. It implements
// wxo.TokenSource.
type Manager struct {
	Path    string
	Env     string
	APIKey  string
	Refresh Refresher
	Log     *slog.Logger

	now func() time.Time
}

// DefaultPath is the orchestrate CLI's credential cache location. The
// external tool writes under ~/.cache on every platform.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", "orchestrate", "credentials.yaml"), nil
}

// FromEnv builds a manager for WXO_ENVIRONMENT (default "remote") using
// WXO_API_KEY for refresh and the orchestrate CLI as the refresher.
func FromEnv() (*Manager, error) {
	path, err := DefaultPath()
	if err != nil {
		return nil, &wxo.ConfigError{Reason: fmt.Sprintf("locate credential cache: %v", err)}
	}
	env := os.Getenv("WXO_ENVIRONMENT")
	if env == "" {
		env = DefaultEnvironment
	}
	return &Manager{
		Path:    path,
		Env:     env,
		APIKey:  os.Getenv("WXO_API_KEY"),
		Refresh: ExecRefresher("orchestrate"),
		Log:     slog.Default(),
	}, nil
}

// Load reads this environment's record from the credential cache.
func (m *Manager) Load() (Record, error) {
	b, err := os.ReadFile(m.Path)
	if err != nil {
		return Record{}, &wxo.ConfigError{Reason: fmt.Sprintf(
			"credentials file not found at %s, run 'orchestrate env activate %s' first", m.Path, m.Env)}
	}
	var f credFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return Record{}, &wxo.ConfigError{Reason: fmt.Sprintf("parse %s: %v", m.Path, err)}
	}
	rec, ok := f.Auth[m.Env]
	if !ok {
		return Record{}, &wxo.ConfigError{Reason: fmt.Sprintf(
			"no credentials found for environment %q, run 'orchestrate env activate %s' first", m.Env, m.Env)}
	}
	if rec.Token == "" {
		return Record{}, &wxo.ConfigError{Reason: fmt.Sprintf(
			"no wxo_mcsp_token found for environment %q", m.Env)}
	}
	return rec, nil
}

// Token returns the cached token while it is unexpired. An expired token
// triggers exactly one refresh attempt followed by a re-read; a refresh that
// yields no token is an AuthError naming the manual remediation command.
func (m *Manager) Token(ctx context.Context) (string, error) {
	rec, err := m.Load()
	if err != nil {
		return "", err
	}
	if m.timeNow().Unix() < rec.Expiry {
		return rec.Token, nil
	}

	log := m.logger()
	if m.APIKey == "" {
		return "", &wxo.AuthError{Reason: fmt.Sprintf(
			"MCSP token has expired and WXO_API_KEY is not set, run 'orchestrate env activate %s' manually", m.Env)}
	}
	log.Info("MCSP token expired, refreshing", "environment", m.Env)
	if err := m.Refresh(ctx, m.Env, m.APIKey); err != nil {
		log.Warn("token refresh failed", "environment", m.Env, "error", err)
		return "", &wxo.AuthError{Reason: fmt.Sprintf(
			"MCSP token has expired and auto-refresh failed, run 'orchestrate env activate %s' manually", m.Env)}
	}

	rec, err = m.Load()
	if err != nil || rec.Token == "" {
		return "", &wxo.AuthError{Reason: fmt.Sprintf(
			"MCSP token has expired and auto-refresh failed, run 'orchestrate env activate %s' manually", m.Env)}
	}
	log.Info("token refreshed", "environment", m.Env)
	return rec.Token, nil
}

// ExecRefresher delegates the handshake to `<command> env activate <env>`,
// supplying the API key non-interactively on stdin.
func ExecRefresher(command string) Refresher {
	return func(ctx context.Context, env, apiKey string) error {
		ctx, cancel := context.WithTimeout(ctx, refreshTimeout)
		defer cancel()

		cmd := exec.CommandContext(ctx, command, "env", "activate", env)
		cmd.Stdin = strings.NewReader(apiKey + "\n")
		var stderr bytes.Buffer
		cmd.Stderr = &stderr
		if err := cmd.Run(); err != nil {
			if msg := strings.TrimSpace(stderr.String()); msg != "" {
				return fmt.Errorf("%s: %w", msg, err)
			}
			return err
		}
		return nil
	}
}

func (m *Manager) timeNow() time.Time {
	if m.now != nil {
		return m.now()
	}
	return time.Now()
}

func (m *Manager) logger() *slog.Logger {
	if m.Log != nil {
		return m.Log
	}
	return slog.Default()
}
