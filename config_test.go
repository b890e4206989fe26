package main

import (
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearNavEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"NAV_ADDR", "NAV_MAP_FILE", "NAV_START_NODE", "NAV_LOG_LEVEL", "NAV_SYMMETRIC_EDGES"} {
		t.Setenv(key, "")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	clearNavEnv(t)

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "map.json", cfg.Map.File)
	assert.Equal(t, "GATE", cfg.Navigation.StartNode)
	assert.Equal(t, Point{X: 0, Y: -1}, cfg.Navigation.Heading)
	assert.Equal(t, DefaultTurnConfig(), cfg.Navigation.Turns)
	assert.True(t, cfg.GraphOptions().SymmetricEdges)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadConfigFile(t *testing.T) {
	clearNavEnv(t)

	path := writeFile(t, "config.yaml", `
server:
  addr: ":9090"
map:
  file: campus.geojson
  symmetric_edges: false
navigation:
  start_node: LIBRARY
  heading: { x: 1, y: 0 }
  forward_threshold_deg: 30
  back_threshold_deg: 150
  arrival_radius: 2.5
log:
  level: debug
  format: json
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "campus.geojson", cfg.Map.File)
	assert.False(t, cfg.GraphOptions().SymmetricEdges)
	assert.Equal(t, "LIBRARY", cfg.Navigation.StartNode)
	assert.Equal(t, Point{X: 1, Y: 0}, cfg.Navigation.Heading)
	assert.Equal(t, TurnConfig{ForwardThresholdDeg: 30, BackThresholdDeg: 150}, cfg.Navigation.Turns)
	assert.Equal(t, 2.5, cfg.Navigation.ArrivalRadius)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "stdout", cfg.Log.Output)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	clearNavEnv(t)
	t.Setenv("NAV_ADDR", "127.0.0.1:7000")
	t.Setenv("NAV_MAP_FILE", "other.xml")
	t.Setenv("NAV_START_NODE", "A")
	t.Setenv("NAV_SYMMETRIC_EDGES", "false")

	cfg, err := LoadConfig(writeFile(t, "config.yaml", "server:\n  addr: \":9090\"\n"))
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:7000", cfg.Server.Addr)
	assert.Equal(t, "other.xml", cfg.Map.File)
	assert.Equal(t, "A", cfg.Navigation.StartNode)
	assert.False(t, cfg.GraphOptions().SymmetricEdges)
}

func TestLoadConfigErrors(t *testing.T) {
	clearNavEnv(t)

	_, err := LoadConfig(writeFile(t, "config.yaml", "server: [unclosed"))
	assert.Error(t, err)

	_, err = LoadConfig(writeFile(t, "config.yaml", "navigation:\n  forward_threshold_deg: 170\n"))
	assert.Error(t, err)

	_, err = LoadConfig(writeFile(t, "config.yaml", "navigation:\n  arrival_radius: -1\n"))
	assert.Error(t, err)

	t.Setenv("NAV_SYMMETRIC_EDGES", "sometimes")
	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestInitLogger(t *testing.T) {
	defer func() { Logger = zerolog.Nop() }()

	assert.Error(t, InitLogger(LogConfig{Level: "loud"}))

	logFile := filepath.Join(t.TempDir(), "logs", "navigator.log")
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "json", Output: "file", FilePath: logFile}))
	assert.FileExists(t, logFile)
}
