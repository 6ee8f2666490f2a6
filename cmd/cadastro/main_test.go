package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveConfig(t *testing.T) {
	for _, key := range []string{"CADASTRO_SERVER", "CADASTRO_CEP_URL", "CADASTRO_LOG_LEVEL", "CADASTRO_LOG_FILE", "CADASTRO_TIMEOUT", "CADASTRO_CONFIG"} {
		t.Setenv(key, "")
	}
	path := filepath.Join(t.TempDir(), "cadastro.toml")
	require.NoError(t, os.WriteFile(path, []byte("server = \"http://file:8080\"\nlog_level = \"debug\"\n"), 0o600))

	cmd := rootCmd()
	require.NoError(t, cmd.ParseFlags([]string{"--config", path, "--server", "http://flag:9090"}))

	var f flags
	f.configPath, _ = cmd.Flags().GetString("config")
	f.serverURL, _ = cmd.Flags().GetString("server")

	cfg, err := resolveConfig(cmd, f)
	require.NoError(t, err)
	assert.Equal(t, "http://flag:9090", cfg.ServerURL)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Empty(t, cfg.CEPURL)
}

func TestOpenLog(t *testing.T) {
	w, closeLog, err := openLog("-")
	require.NoError(t, err)
	assert.Equal(t, os.Stderr, w)
	closeLog()

	path := filepath.Join(t.TempDir(), "cadastro.log")
	w, closeLog, err = openLog(path)
	require.NoError(t, err)
	_, err = w.Write([]byte("{}\n"))
	require.NoError(t, err)
	closeLog()
	assert.FileExists(t, path)
}
