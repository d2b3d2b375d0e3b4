package config

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Network defines the target Solana cluster.
type Network string

const (
	NetworkMainnet Network = "mainnet"
	NetworkTestnet Network = "testnet"
	NetworkDevnet  Network = "devnet"
	NetworkCustom  Network = "custom"
)

// EnvPrefix prefixes every environment override, e.g. AMM_RPC.
const EnvPrefix = "AMM"

// DefaultRPCURL returns the standard RPC endpoint for a known network.
func DefaultRPCURL(network Network) string {
	switch network {
	case NetworkMainnet:
		return "https://api.mainnet-beta.solana.com"
	case NetworkTestnet:
		return "https://api.testnet.solana.com"
	case NetworkDevnet:
		return "https://api.devnet.solana.com"
	default:
		return ""
	}
}

// RetryConfig controls RPC retry behavior.
type RetryConfig struct {
	Enabled        bool          `json:"enabled" yaml:"enabled"`
	MaxAttempts    int           `json:"maxAttempts" yaml:"maxAttempts"`
	InitialBackoff time.Duration `json:"initialBackoff" yaml:"initialBackoff"`
	MaxBackoff     time.Duration `json:"maxBackoff" yaml:"maxBackoff"`
	Jitter         bool          `json:"jitter" yaml:"jitter"`
}

// RateLimitConfig throttles outbound RPC calls.
type RateLimitConfig struct {
	RPS   float64 `json:"rps" yaml:"rps"`
	Burst int     `json:"burst" yaml:"burst"`
}

// RPCConfig aggregates runtime settings for RPC usage.
type RPCConfig struct {
	Network    Network         `json:"network" yaml:"network"`
	RPCURL     string          `json:"rpcUrl" yaml:"rpcUrl"`
	Commitment string          `json:"commitment" yaml:"commitment"`
	Timeout    time.Duration   `json:"timeout" yaml:"timeout"`
	Retry      RetryConfig     `json:"retry" yaml:"retry"`
	RateLimit  RateLimitConfig `json:"rateLimit" yaml:"rateLimit"`
	Logger     zerolog.Logger  `json:"-" yaml:"-"`
}

// DefaultRPCConfig yields production-safe defaults (mainnet, finalized commitment).
func DefaultRPCConfig() RPCConfig {
	return RPCConfig{
		Network:    NetworkMainnet,
		RPCURL:     DefaultRPCURL(NetworkMainnet),
		Commitment: "finalized",
		Timeout:    20 * time.Second,
		Retry: RetryConfig{
			Enabled:        true,
			MaxAttempts:    3,
			InitialBackoff: 150 * time.Millisecond,
			MaxBackoff:     2 * time.Second,
			Jitter:         true,
		},
		RateLimit: RateLimitConfig{
			RPS:   8,
			Burst: 16,
		},
		Logger: zerolog.New(io.Discard),
	}
}

// ResolveRPCURL returns RPCURL if set, otherwise falls back to network defaults.
func (c RPCConfig) ResolveRPCURL() string {
	if c.RPCURL != "" {
		return c.RPCURL
	}
	return DefaultRPCURL(c.Network)
}

// BuildConfig tunes account list construction.
type BuildConfig struct {
	// LargeTradeThreshold is the input amount from which Meteora DLMM swaps
	// carry five bin arrays instead of three.
	LargeTradeThreshold uint64 `json:"largeTradeThreshold" yaml:"largeTradeThreshold"`
}

func DefaultBuildConfig() BuildConfig {
	return BuildConfig{LargeTradeThreshold: 1_000_000_000}
}

// RegistryConfig sizes the mint metadata cache.
type RegistryConfig struct {
	Size int `json:"size" yaml:"size"`
}

func DefaultRegistryConfig() RegistryConfig {
	return RegistryConfig{Size: 4096}
}

// Config is everything the CLI resolves from file, env and flags.
type Config struct {
	RPC         RPCConfig      `json:"rpc" yaml:"rpc"`
	Build       BuildConfig    `json:"build" yaml:"build"`
	Registry    RegistryConfig `json:"registry" yaml:"registry"`
	MetricsAddr string         `json:"metricsAddr,omitempty" yaml:"metricsAddr,omitempty"`
	LogLevel    string         `json:"logLevel" yaml:"logLevel"`
	Output      string         `json:"output" yaml:"output"`
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		RPC:      DefaultRPCConfig(),
		Build:    DefaultBuildConfig(),
		Registry: DefaultRegistryConfig(),
		LogLevel: "info",
		Output:   "json",
	}
}

// Load merges config file, AMM_* environment variables, and flags into
// Config. Flag names double as config keys (rpc, retry-attempts, ...).
// Without cfgFile an optional ./amm.yaml is read.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	def := Default()

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("network", string(def.RPC.Network))
	v.SetDefault("rpc", "")
	v.SetDefault("commitment", def.RPC.Commitment)
	v.SetDefault("timeout", def.RPC.Timeout)
	v.SetDefault("retry-attempts", def.RPC.Retry.MaxAttempts)
	v.SetDefault("retry-backoff-ms", int(def.RPC.Retry.InitialBackoff/time.Millisecond))
	v.SetDefault("retry-max-backoff", def.RPC.Retry.MaxBackoff)
	v.SetDefault("rate-limit-rps", def.RPC.RateLimit.RPS)
	v.SetDefault("rate-limit-burst", def.RPC.RateLimit.Burst)
	v.SetDefault("large-trade-threshold", def.Build.LargeTradeThreshold)
	v.SetDefault("registry-size", def.Registry.Size)
	v.SetDefault("metrics-addr", "")
	v.SetDefault("log-level", def.LogLevel)
	v.SetDefault("output", def.Output)

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("amm")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg := def
	cfg.RPC.Network = Network(v.GetString("network"))
	cfg.RPC.RPCURL = v.GetString("rpc")
	if cfg.RPC.RPCURL == "" {
		cfg.RPC.RPCURL = DefaultRPCURL(cfg.RPC.Network)
	}
	cfg.RPC.Commitment = v.GetString("commitment")
	cfg.RPC.Timeout = v.GetDuration("timeout")
	cfg.RPC.Retry.MaxAttempts = v.GetInt("retry-attempts")
	cfg.RPC.Retry.Enabled = cfg.RPC.Retry.MaxAttempts > 1
	cfg.RPC.Retry.InitialBackoff = time.Duration(v.GetInt("retry-backoff-ms")) * time.Millisecond
	cfg.RPC.Retry.MaxBackoff = v.GetDuration("retry-max-backoff")
	cfg.RPC.RateLimit.RPS = v.GetFloat64("rate-limit-rps")
	cfg.RPC.RateLimit.Burst = v.GetInt("rate-limit-burst")
	cfg.Build.LargeTradeThreshold = v.GetUint64("large-trade-threshold")
	cfg.Registry.Size = v.GetInt("registry-size")
	cfg.MetricsAddr = v.GetString("metrics-addr")
	cfg.LogLevel = v.GetString("log-level")
	cfg.Output = v.GetString("output")

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the clients cannot run with.
func (c Config) Validate() error {
	if c.RPC.ResolveRPCURL() == "" {
		return fmt.Errorf("rpc url is empty for network %q", c.RPC.Network)
	}
	if c.Registry.Size <= 0 {
		return fmt.Errorf("registry size must be positive, got %d", c.Registry.Size)
	}
	switch c.Output {
	case "json", "yaml":
	default:
		return fmt.Errorf("unsupported output %q (json|yaml)", c.Output)
	}
	return nil
}

// ParseLogLevel maps a level name to zerolog, defaulting to info.
func ParseLogLevel(lvl string) zerolog.Level {
	switch strings.ToLower(lvl) {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
