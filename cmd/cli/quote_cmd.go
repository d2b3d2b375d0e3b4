package main

import (
	"github.com/spf13/cobra"

	"github.com/ninja0404/amm-go-sdk/pkg/quote"
)

func newQuoteCmd(deps *runtimeDeps) *cobra.Command {
	var (
		f           swapFlags
		slippageBps uint64
	)
	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Quote a swap against live pool, vault and config accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := f.parse()
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
			res, err := quote.Compute(ctx, h, deps.registry, quote.Request{
				InputMint:   s.in,
				OutputMint:  s.out,
				AmountIn:    f.amount,
				SlippageBps: slippageBps,
				Snapshot:    snap,
			})
			if err != nil {
				return err
			}
			return emit(cmd, deps.cfg.Output, res)
		},
	}
	addSwapFlags(cmd, &f)
	cmd.Flags().Uint64Var(&slippageBps, "slippage-bps", 50, "slippage tolerance applied to the minimum output")
	return cmd
}

func addSwapFlags(cmd *cobra.Command, f *swapFlags) {
	cmd.Flags().StringVar(&f.pool, "pool", "", "pool address")
	cmd.Flags().StringVar(&f.in, "in", "", "input mint")
	cmd.Flags().StringVar(&f.out, "out", "", "output mint")
	cmd.Flags().Uint64Var(&f.amount, "amount", 0, "input amount in base units")
	_ = cmd.MarkFlagRequired("pool")
	_ = cmd.MarkFlagRequired("in")
	_ = cmd.MarkFlagRequired("out")
	_ = cmd.MarkFlagRequired("amount")
}
