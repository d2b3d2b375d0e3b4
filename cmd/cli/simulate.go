package main

import (
	"github.com/spf13/cobra"

	"github.com/ninja0404/amm-go-sdk/pkg/autofill"
	"github.com/ninja0404/amm-go-sdk/pkg/quote"
	"github.com/ninja0404/amm-go-sdk/pkg/txbuilder"
)

type simulateView struct {
	Quote        *quote.Result               `json:"quote"`
	Instructions int                         `json:"instructions"`
	WrapLamports uint64                      `json:"wrapLamports"`
	Simulation   *txbuilder.SimulationResult `json:"simulation"`
}

func newSimulateCmd(deps *runtimeDeps) *cobra.Command {
	var (
		f            swapFlags
		payer        string
		slippageBps  uint64
		unitLimit    uint32
		unitPrice    uint64
		keepWSOL     bool
		closeInput   bool
		previewSetup bool
	)
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Quote, autofill and simulate a swap without signing it",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := f.parse()
			if err != nil {
				return err
			}
			payerPK, err := parsePubkey("payer", payer)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			h, err := deps.fetchPool(ctx, s.pool)
			if err != nil {
				return err
			}
			snap, err := deps.loader.Load(ctx, h)
			if err != nil {
				return err
			}
			q, err := quote.Compute(ctx, h, deps.registry, quote.Request{
				InputMint:   s.in,
				OutputMint:  s.out,
				AmountIn:    f.amount,
				SlippageBps: slippageBps,
				Snapshot:    snap,
			})
			if err != nil {
				return err
			}

			opts := []autofill.Option{autofill.WithComputeBudget(unitLimit, unitPrice), autofill.WithLogger(deps.log)}
			if keepWSOL {
				opts = append(opts, autofill.WithKeepWSOL())
			}
			if closeInput {
				opts = append(opts, autofill.WithCloseInputATA())
			}
			if previewSetup {
				opts = append(opts, autofill.WithPreview(cmd.ErrOrStderr()))
			}
			plan, err := autofill.Swap(ctx, deps.rpc, deps.registry, h, payerPK, s.in, s.out, f.amount, q.MinOut, opts...)
			if err != nil {
				return err
			}

			ixs := plan.Instructions()
			sim, simErr := deps.builder.BuildAndSimulate(ctx, payerPK, ixs...)
			if sim == nil {
				return simErr
			}
			deps.log.Debug().Uint64("units", sim.UnitsConsumed).Int("logs", len(sim.Logs)).Msg("simulation done")
			if err := emit(cmd, deps.cfg.Output, simulateView{
				Quote:        q,
				Instructions: len(ixs),
				WrapLamports: plan.WrapLamports,
				Simulation:   sim,
			}); err != nil {
				return err
			}
			return simErr
		},
	}
	addSwapFlags(cmd, &f)
	cmd.Flags().StringVar(&payer, "payer", "", "wallet paying for the swap; it does not need to sign a simulation")
	cmd.Flags().Uint64Var(&slippageBps, "slippage-bps", 50, "slippage tolerance applied to the minimum output")
	cmd.Flags().Uint32Var(&unitLimit, "compute-unit-limit", 0, "compute unit limit (0 leaves the runtime default)")
	cmd.Flags().Uint64Var(&unitPrice, "compute-unit-price", 0, "priority fee in micro-lamports per compute unit")
	cmd.Flags().BoolVar(&keepWSOL, "keep-wsol", false, "keep the WSOL account open after the swap")
	cmd.Flags().BoolVar(&closeInput, "close-input-ata", false, "close the input token account after the swap")
	cmd.Flags().BoolVar(&previewSetup, "preview", false, "print the autofill plan to stderr")
	_ = cmd.MarkFlagRequired("payer")
	return cmd
}
