package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	require.Equal(t, 8080, cfg.Server.Port)
	require.Equal(t, "libsql", cfg.Store.Driver)
	require.Equal(t, "POST", cfg.Webhook.NoteMethod)
	require.Equal(t, 5, cfg.Limits.NoteLimit)
	require.Equal(t, 10*time.Minute, cfg.Limits.NoteWindow)
	require.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  port: 9999
webhook:
  chat_url: https://hooks.example.com/chat
  note_method: GET
limits:
  note_limit: 2
  note_window: 1m
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 9999, cfg.Server.Port)
	require.Equal(t, "https://hooks.example.com/chat", cfg.Webhook.ChatURL)
	require.Equal(t, "GET", cfg.Webhook.NoteMethod)
	require.Equal(t, 2, cfg.Limits.NoteLimit)
	require.Equal(t, time.Minute, cfg.Limits.NoteWindow)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("NOTELINK_SERVER_PORT", "7070")
	t.Setenv("NOTELINK_WEBHOOK_NOTE_URL", "https://hooks.example.com/note")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, 7070, cfg.Server.Port)
	require.Equal(t, "https://hooks.example.com/note", cfg.Webhook.NoteURL)
}

func TestLoadRejectsBadNoteMethod(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("webhook:\n  note_method: PUT\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "note_method")
}

func TestValidateRequiresStoreTarget(t *testing.T) {
	cfg := &Config{Server: ServerConfig{Port: 8080}}
	require.Error(t, cfg.Validate())

	cfg.Store.URL = "libsql://db.example.com"
	require.NoError(t, cfg.Validate())
}
