package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveEnv(t *testing.T) {
	t.Setenv("X_A", "va")
	in := []byte("a: ${X_A:da}\nb: ${X_B:db}")
	out := resolveEnv(in)
	assert.Contains(t, string(out), "a: va")
	assert.Contains(t, string(out), "b: db")
}

func TestLoadConfig_APIServer(t *testing.T) {
	tmp := t.TempDir()
	old, _ := os.Getwd()
	t.Cleanup(func() { _ = os.Chdir(old) })
	_ = os.Chdir(tmp)

	t.Setenv("SL_JWT_SECRET", "0123456789abcdef0123456789abcdef")
	yaml := `
server:
  port: 8080
database:
  type: sqlite
  dbname: ${SL_DB:./data/test.db}
jwt:
  secret_key: ${SL_JWT_SECRET}
timeouts:
  document: 5s
notifier:
  inbox:
    enabled: true
`
	file := filepath.Join(tmp, "apiserver.yaml")
	require.NoError(t, os.WriteFile(file, []byte(yaml), 0o644))

	cfg, path, err := LoadConfig[APIServerConfig]("apiserver.yaml")
	require.NoError(t, err)
	realFile, _ := filepath.EvalSymlinks(file)
	realPath, _ := filepath.EvalSymlinks(path)
	assert.Equal(t, realFile, realPath)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "./data/test.db", cfg.Database.DBName)
	assert.Equal(t, 5*time.Second, cfg.Timeouts.Document)
	// defaults
	assert.Equal(t, 10*time.Second, cfg.Timeouts.Notification)
	assert.Equal(t, 24*time.Hour, cfg.JWT.Duration)
	assert.Equal(t, "disk", cfg.Documents.Store)
	assert.Equal(t, "en", cfg.I18n.Fallback)
	assert.True(t, cfg.Notifier.Inbox.Enabled)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tmp := t.TempDir()
	file := filepath.Join(tmp, "bad.yaml")
	require.NoError(t, os.WriteFile(file, []byte("jwt:\n  secret_key: short\n"), 0o644))

	_, _, err := LoadConfig[APIServerConfig](file)
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestLoadConfig_Missing(t *testing.T) {
	_, _, err := LoadConfig[APIServerConfig](filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
