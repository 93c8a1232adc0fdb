package main

import (
	"route-reconciliation-service/internal/config"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSeedFile(t *testing.T) {
	prev := cfg
	t.Cleanup(func() { cfg = prev })

	cfg = config.Config{}
	require.Equal(t, defaultSeedFile, seedFile(""))

	cfg = config.Config{SeedPath: "fixtures/today.json"}
	require.Equal(t, "fixtures/today.json", seedFile(""))
	require.Equal(t, "other.json", seedFile("other.json"))
}

func TestSeedFileFromPrefixedEnv(t *testing.T) {
	prev := cfg
	t.Cleanup(func() { cfg = prev })

	t.Setenv("RECON_SEED_PATH", "fixtures/north.json")
	loaded, err := config.Load()
	require.NoError(t, err)
	cfg = loaded

	require.Equal(t, "fixtures/north.json", seedFile(""))
}
