package creds

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"superbob/internal/wxo"
)

func writeCreds(t *testing.T, dir, env, token string, expiry int64) string {
	t.Helper()
	path := filepath.Join(dir, "credentials.yaml")
	body := fmt.Sprintf("auth:\n  %s:\n    wxo_mcsp_token: %s\n    wxo_mcsp_token_expiry: %d\n", env, token, expiry)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestTokenUnexpired(t *testing.T) {
	path := writeCreds(t, t.TempDir(), "remote", "tok-1", time.Now().Add(time.Hour).Unix())
	m := &Manager{Path: path, Env: "remote"}

	tok, err := m.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok-1", tok)
}

func TestTokenExpiredRefreshRewritesStore(t *testing.T) {
	dir := t.TempDir()
	path := writeCreds(t, dir, "remote", "stale", time.Now().Add(-time.Hour).Unix())

	var refreshes int
	m := &Manager{
		Path:   path,
		Env:    "remote",
		APIKey: "api-key",
		Refresh: func(ctx context.Context, env, apiKey string) error {
			refreshes++
			assert.Equal(t, "remote", env)
			assert.Equal(t, "api-key", apiKey)
			// the external command rewrites the cache; the manager re-reads it
			writeCreds(t, dir, env, "fresh", time.Now().Add(time.Hour).Unix())
			return nil
		},
	}

	tok, err := m.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "fresh", tok)
	assert.Equal(t, 1, refreshes)
}

func TestTokenExpiredRefreshFails(t *testing.T) {
	path := writeCreds(t, t.TempDir(), "remote", "stale", 1)

	var refreshes int
	m := &Manager{
		Path:   path,
		Env:    "remote",
		APIKey: "api-key",
		Refresh: func(ctx context.Context, env, apiKey string) error {
			refreshes++
			return errors.New("exit status 1")
		},
	}

	tok, err := m.Token(context.Background())
	assert.Empty(t, tok)
	var ae *wxo.AuthError
	require.ErrorAs(t, err, &ae)
	assert.Contains(t, ae.Reason, "orchestrate env activate remote")
	assert.Equal(t, 1, refreshes, "exactly one refresh attempt")
}

func TestTokenExpiredWithoutAPIKey(t *testing.T) {
	path := writeCreds(t, t.TempDir(), "remote", "stale", 1)
	m := &Manager{Path: path, Env: "remote"}

	_, err := m.Token(context.Background())
	var ae *wxo.AuthError
	require.ErrorAs(t, err, &ae)
}

func TestLoadMissingFile(t *testing.T) {
	m := &Manager{Path: filepath.Join(t.TempDir(), "credentials.yaml"), Env: "remote"}

	_, err := m.Load()
	var ce *wxo.ConfigError
	require.ErrorAs(t, err, &ce)
	assert.Contains(t, ce.Reason, "orchestrate env activate remote")
}

func TestLoadMissingEnvironment(t *testing.T) {
	path := writeCreds(t, t.TempDir(), "remote", "tok", time.Now().Add(time.Hour).Unix())
	m := &Manager{Path: path, Env: "staging"}

	_, err := m.Load()
	var ce *wxo.ConfigError
	require.ErrorAs(t, err, &ce)
	assert.Contains(t, ce.Reason, `"staging"`)
}
