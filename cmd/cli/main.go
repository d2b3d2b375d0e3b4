package main

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"time"

	solanarpc "github.com/gagliardetto/solana-go/rpc"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	sdkconfig "github.com/ninja0404/amm-go-sdk/pkg/config"
	"github.com/ninja0404/amm-go-sdk/pkg/metrics"
	"github.com/ninja0404/amm-go-sdk/pkg/registry"
	sdkrpc "github.com/ninja0404/amm-go-sdk/pkg/rpc"
	"github.com/ninja0404/amm-go-sdk/pkg/snapshot"
	"github.com/ninja0404/amm-go-sdk/pkg/txbuilder"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type globalOpts struct {
	configFile string
	envFile    string
}

// runtimeDeps is built once per invocation from the resolved config.
type runtimeDeps struct {
	cfg      sdkconfig.Config
	log      zerolog.Logger
	metrics  *metrics.Metrics
	rpc      *sdkrpc.Client
	registry *registry.MintRegistry
	loader   *snapshot.Loader
	builder  *txbuilder.Builder
}

func newRootCmd() *cobra.Command {
	opts := &globalOpts{}
	deps := &runtimeDeps{}
	def := sdkconfig.Default()

	root := &cobra.Command{
		Use:           "ammcli",
		Short:         "Solana AMM SDK CLI (DLMM, DAMM v2, CLMM, Whirlpool, CPMM, Pump AMM)",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return deps.setup(cmd, opts)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&opts.configFile, "config", "", "config file (default ./amm.yaml if present)")
	pf.StringVar(&opts.envFile, "env-file", ".env", "dotenv file loaded before resolving AMM_* variables")
	pf.String("network", string(def.RPC.Network), "cluster used when --rpc is empty (mainnet|testnet|devnet)")
	pf.String("rpc", "", "RPC endpoint (default per network)")
	pf.String("commitment", def.RPC.Commitment, "RPC commitment level")
	pf.Duration("timeout", def.RPC.Timeout, "per-request RPC timeout")
	pf.Int("retry-attempts", def.RPC.Retry.MaxAttempts, "RPC attempts per request (1 disables retry)")
	pf.Int("retry-backoff-ms", int(def.RPC.Retry.InitialBackoff/time.Millisecond), "initial retry backoff in ms")
	pf.Float64("rate-limit-rps", def.RPC.RateLimit.RPS, "RPC rate limit (0 to disable)")
	pf.Uint64("large-trade-threshold", def.Build.LargeTradeThreshold, "input amount at which DLMM swaps pass five bin arrays")
	pf.Int("registry-size", def.Registry.Size, "mint registry cache size")
	pf.String("metrics-addr", "", "serve Prometheus metrics on this address, e.g. :9090")
	pf.String("log-level", def.LogLevel, "log level (debug|info|warn|error)")
	pf.StringP("output", "o", def.Output, "output format (json|yaml)")

	root.AddCommand(
		newConfigCmd(deps),
		newAccountCmd(deps),
		newQuoteCmd(deps),
		newAccountsCmd(deps),
		newRestoreCmd(deps),
		newSimulateCmd(deps),
	)

	return root
}

func (d *runtimeDeps) setup(cmd *cobra.Command, opts *globalOpts) error {
	if opts.envFile != "" {
		if err := godotenv.Load(opts.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", opts.envFile, err)
		}
	}

	cfg, err := sdkconfig.Load(opts.configFile, cmd.Flags())
	if err != nil {
		return err
	}
	d.cfg = cfg
	d.log = zerolog.New(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr(), TimeFormat: time.RFC3339}).
		Level(sdkconfig.ParseLogLevel(cfg.LogLevel)).
		With().Timestamp().Logger()
	d.cfg.RPC.Logger = d.log

	if cfg.MetricsAddr != "" {
		reg := prometheus.NewRegistry()
		d.metrics = metrics.New(reg)
		serveMetrics(d.log, cfg.MetricsAddr, reg)
	}

	d.rpc = sdkrpc.NewClient(d.cfg.RPC, sdkrpc.WithMetrics(d.metrics))
	d.registry, err = registry.New(d.rpc, cfg.Registry.Size,
		registry.WithLogger(d.log), registry.WithMetrics(d.metrics))
	if err != nil {
		return err
	}
	d.loader = snapshot.NewLoader(d.rpc, d.log)
	d.builder = txbuilder.NewBuilder(d.rpc, solanarpc.CommitmentType(cfg.RPC.Commitment))
	return nil
}

func serveMetrics(log zerolog.Logger, addr string, reg *prometheus.Registry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	go func() {
		log.Info().Str("addr", addr).Msg("serving metrics")
		if err := http.ListenAndServe(addr, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("metrics server stopped")
		}
	}()
}

func newConfigCmd(deps *runtimeDeps) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show the effective config after file, env and flag overrides",
		RunE: func(cmd *cobra.Command, args []string) error {
			return emit(cmd, deps.cfg.Output, deps.cfg)
		},
	}
}
