package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rileyhilliard/pingnodes/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearInitEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"PINGNODES_NODES", "PINGNODES_JUMPHOST", "PINGNODES_JUMPUSER", "PINGNODES_NON_INTERACTIVE", "CI"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestGetInitDefaults(t *testing.T) {
	t.Run("env vars populated", func(t *testing.T) {
		clearInitEnv(t)
		t.Setenv("PINGNODES_NODES", "env-nodes.txt")
		t.Setenv("PINGNODES_JUMPHOST", "bastion")
		t.Setenv("PINGNODES_JUMPUSER", "ops")
		t.Setenv("PINGNODES_NON_INTERACTIVE", "true")

		defaults := getInitDefaults()
		assert.Equal(t, "env-nodes.txt", defaults.Nodes)
		assert.Equal(t, "bastion", defaults.JumpHost)
		assert.Equal(t, "ops", defaults.JumpUser)
		assert.True(t, defaults.NonInteractive)
	})

	t.Run("CI env triggers non-interactive", func(t *testing.T) {
		clearInitEnv(t)
		t.Setenv("CI", "true")

		assert.True(t, getInitDefaults().NonInteractive)
	})

	t.Run("empty env vars", func(t *testing.T) {
		clearInitEnv(t)

		defaults := getInitDefaults()
		assert.Empty(t, defaults.Nodes)
		assert.Empty(t, defaults.JumpHost)
		assert.False(t, defaults.NonInteractive)
	})
}

func TestMergeInitOptions(t *testing.T) {
	t.Run("flags override env vars", func(t *testing.T) {
		clearInitEnv(t)
		t.Setenv("PINGNODES_NODES", "env.txt")
		t.Setenv("PINGNODES_JUMPHOST", "env-host")

		merged := mergeInitOptions(InitOptions{Nodes: "flag.txt", JumpHost: "flag-host"})
		assert.Equal(t, "flag.txt", merged.Nodes)
		assert.Equal(t, "flag-host", merged.JumpHost)
	})

	t.Run("env vars fill in empty flags", func(t *testing.T) {
		clearInitEnv(t)
		t.Setenv("PINGNODES_NODES", "env.txt")
		t.Setenv("PINGNODES_JUMPUSER", "ops")

		merged := mergeInitOptions(InitOptions{})
		assert.Equal(t, "env.txt", merged.Nodes)
		assert.Equal(t, "ops", merged.JumpUser)
	})

	t.Run("CI env sets non-interactive", func(t *testing.T) {
		clearInitEnv(t)
		t.Setenv("CI", "true")

		assert.True(t, mergeInitOptions(InitOptions{}).NonInteractive)
	})
}

func TestInit_NonInteractive(t *testing.T) {
	clearInitEnv(t)
	dir := t.TempDir()
	t.Chdir(dir)

	err := Init(InitOptions{
		NonInteractive: true,
		Nodes:          "nodes.txt",
		JumpHost:       "bastion.example.com",
		JumpUser:       "ops",
		SkipProbe:      true,
	})
	require.NoError(t, err)

	cfg, err := config.Load(filepath.Join(dir, config.ConfigFileName), nil)
	require.NoError(t, err)
	assert.Equal(t, "nodes.txt", cfg.Nodes)
	assert.Equal(t, "bastion.example.com", cfg.JumpHost)
	assert.Equal(t, "ops", cfg.JumpUser)
	assert.Equal(t, time.Second, cfg.Interval)
}

func TestInit_NonInteractive_RequiresNodes(t *testing.T) {
	clearInitEnv(t)
	dir := t.TempDir()
	t.Chdir(dir)

	err := Init(InitOptions{NonInteractive: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "No node list given")

	_, statErr := os.Stat(filepath.Join(dir, config.ConfigFileName))
	assert.True(t, os.IsNotExist(statErr))
}

func TestInit_NonInteractive_RelayNeedsUser(t *testing.T) {
	clearInitEnv(t)
	t.Chdir(t.TempDir())

	err := Init(InitOptions{NonInteractive: true, Nodes: "nodes.txt", JumpHost: "bastion", SkipProbe: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "has no user")
}

func TestInit_NonInteractive_ExistingConfig(t *testing.T) {
	clearInitEnv(t)
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, config.ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte("nodes: old.txt\n"), 0644))

	err := Init(InitOptions{NonInteractive: true, Nodes: "new.txt"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	require.NoError(t, Init(InitOptions{NonInteractive: true, Nodes: "new.txt", Overwrite: true}))
	cfg, err := config.Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "new.txt", cfg.Nodes)
}
