package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0o644))
	return dir
}

func TestLoadConfig_AppliesDefaultsAndHours(t *testing.T) {
	dir := writeConfig(t, `
server:
  port: "9090"
jwt:
  secret: "dev-secret"
storage:
  type: memory
`)

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 168*time.Hour, cfg.JWT.ExpireTime)
	assert.Equal(t, 10, cfg.Auth.BcryptCost)
	assert.Equal(t, "SB", cfg.Certificate.IDPrefix)
	assert.Equal(t, "https://skillbridge.edu", cfg.Certificate.VerifyBaseURL)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
}

func TestLoadConfig_RequiresSecret(t *testing.T) {
	dir := writeConfig(t, `
storage:
  type: memory
`)
	_, err := LoadConfig(dir)
	assert.Error(t, err)
}

func TestLoadConfig_ReleaseModeRejectsShortSecret(t *testing.T) {
	dir := writeConfig(t, `
server:
  mode: release
jwt:
  secret: "short"
storage:
  type: memory
`)
	_, err := LoadConfig(dir)
	assert.ErrorContains(t, err, "too short")
}
