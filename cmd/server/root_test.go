package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linkedlist/config"
)

func TestResolveConfigurationDefaults(t *testing.T) {
	t.Setenv("LINKEDLIST_CONFIGURATION_PATH", "")
	cfg, err := resolveConfiguration(nil)
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestResolveConfigurationFromEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "listd.yml")
	require.NoError(t, os.WriteFile(path, []byte("grpc:\n  addr: :7000\n"), 0o644))
	t.Setenv("LINKEDLIST_CONFIGURATION_PATH", path)

	cfg, err := resolveConfiguration(nil)
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.GRPC.Addr)
}

func TestResolveConfigurationErrors(t *testing.T) {
	_, err := resolveConfiguration([]string{filepath.Join(t.TempDir(), "missing.yml")})
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yml")
	require.NoError(t, os.WriteFile(path, []byte("grpc: [\n"), 0o644))
	_, err = resolveConfiguration([]string{path})
	assert.Error(t, err)
}

func TestConfigureLogging(t *testing.T) {
	defer log.SetFormatter(&log.TextFormatter{})
	defer log.SetLevel(log.InfoLevel)

	require.NoError(t, configureLogging(config.Log{Level: "debug", Formatter: "json"}))
	assert.Equal(t, log.DebugLevel, log.GetLevel())
	_, ok := log.StandardLogger().Formatter.(*log.JSONFormatter)
	assert.True(t, ok)

	assert.Error(t, configureLogging(config.Log{Level: "loud", Formatter: "text"}))
	assert.Error(t, configureLogging(config.Log{Level: "info", Formatter: "xml"}))
}

func TestVersionCmd(t *testing.T) {
	var buf bytes.Buffer
	VersionCmd.SetOut(&buf)
	VersionCmd.Run(VersionCmd, nil)
	assert.Equal(t, "listd "+version+"\n", buf.String())
}
