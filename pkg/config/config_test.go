package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "https://api.mainnet-beta.solana.com", cfg.RPC.ResolveRPCURL())
	assert.Equal(t, uint64(1_000_000_000), cfg.Build.LargeTradeThreshold)
	assert.NoError(t, cfg.Validate())

	custom := RPCConfig{Network: NetworkCustom}
	assert.Empty(t, custom.ResolveRPCURL())
}

func TestLoadPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "amm.yaml")
	require.NoError(t, os.WriteFile(path, []byte("rpc: https://file.example\nlarge-trade-threshold: 5000\nregistry-size: 16\n"), 0o600))

	t.Setenv("AMM_RATE_LIMIT_RPS", "3")
	t.Setenv("AMM_REGISTRY_SIZE", "32")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("rpc", "", "")
	flags.String("output", "json", "")
	require.NoError(t, flags.Parse([]string{"--output", "yaml"}))

	cfg, err := Load(path, flags)
	require.NoError(t, err)
	assert.Equal(t, "https://file.example", cfg.RPC.RPCURL)
	assert.Equal(t, uint64(5000), cfg.Build.LargeTradeThreshold)
	assert.Equal(t, 32, cfg.Registry.Size)
	assert.Equal(t, float64(3), cfg.RPC.RateLimit.RPS)
	assert.Equal(t, "yaml", cfg.Output)
	assert.Equal(t, 150*time.Millisecond, cfg.RPC.Retry.InitialBackoff)

	require.NoError(t, flags.Parse([]string{"--rpc", "https://flag.example"}))
	cfg, err = Load(path, flags)
	require.NoError(t, err)
	assert.Equal(t, "https://flag.example", cfg.RPC.RPCURL)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	assert.Error(t, err)

	t.Setenv("AMM_OUTPUT", "xml")
	_, err = Load("", nil)
	assert.Error(t, err)
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, ParseLogLevel("DEBUG"))
	assert.Equal(t, zerolog.ErrorLevel, ParseLogLevel("error"))
	assert.Equal(t, zerolog.InfoLevel, ParseLogLevel("verbose"))
}
