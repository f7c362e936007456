package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
page:
  url: "https://editor.example.com/?embedded=true&debug_inactivity=true"
  embedded: true
  focused: true
monitor:
  timeout_seconds: 120
harness:
  listen_addr: ":9000"
  mode: prod
logging:
  level: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.Page.Embedded)
	assert.Equal(t, 120, cfg.Monitor.TimeoutSeconds)
	assert.Equal(t, ":9000", cfg.Harness.ListenAddr)
	assert.Equal(t, "prod", cfg.Harness.Mode)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, "{}\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.Page.Embedded)
	assert.True(t, cfg.Page.Focused)
	assert.Equal(t, 60, cfg.Monitor.TimeoutSeconds)
	assert.Equal(t, ":8091", cfg.Harness.ListenAddr)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadExpandsEnv(t *testing.T) {
	t.Setenv("PRESENCE_PAGE_URL", "https://host.example.com/editor")
	path := writeConfig(t, `
page:
  url: "${PRESENCE_PAGE_URL}"
  embedded: true
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://host.example.com/editor", cfg.Page.URL)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestDebugFromPageURL(t *testing.T) {
	tests := []struct {
		url      string
		expected bool
	}{
		{"https://localhost/?debug_inactivity=true", true},
		{"https://localhost/editor?foo=1&debug_inactivity=true", true},
		{"https://localhost/?debug_inactivity=false", false},
		{"https://localhost/?debug_inactivity=1", false},
		{"https://localhost/", false},
		{"", false},
		{"://not-a-url", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, DebugFromPageURL(tt.url), tt.url)
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 60, cfg.Monitor.TimeoutSeconds)
	assert.True(t, cfg.Page.Embedded)
}
