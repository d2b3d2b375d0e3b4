package main

import (
	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"

	"github.com/ninja0404/amm-go-sdk/pkg/dex"
)

type accountMetaView struct {
	Index    int              `json:"index"`
	Pubkey   solana.PublicKey `json:"pubkey"`
	Writable bool             `json:"writable"`
	Signer   bool             `json:"signer"`
}

type accountListView struct {
	Dex      dex.DexType       `json:"dex"`
	Pool     solana.PublicKey  `json:"pool"`
	Accounts []accountMetaView `json:"accounts"`
}

func newAccountListView(d dex.DexType, pool solana.PublicKey, list dex.AccountList) accountListView {
	v := accountListView{Dex: d, Pool: pool, Accounts: make([]accountMetaView, len(list))}
	for i, m := range list {
		v.Accounts[i] = accountMetaView{Index: i, Pubkey: m.PublicKey, Writable: m.IsWritable, Signer: m.IsSigner}
	}
	return v
}

func newAccountsCmd(deps *runtimeDeps) *cobra.Command {
	var (
		f          swapFlags
		payer      string
		useDefault bool
	)
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Build the ordered account list of a swap instruction",
		RunE: func(cmd *cobra.Command, args []string) error {
			payerPK, err := parsePubkey("payer", payer)
			if err != nil {
				return err
			}
			poolPK, err := parsePubkey("pool", f.pool)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			h, err := deps.fetchPool(ctx, poolPK)
			if err != nil {
				return err
			}

			var list dex.AccountList
			if useDefault {
				list, err = h.BuildDefault(ctx, deps.registry, payerPK)
			} else {
				var s parsedSwap
				if s, err = f.parse(); err != nil {
					return err
				}
				list, err = h.BuildForSwap(ctx, deps.registry, payerPK, s.in, s.out, f.amount)
			}
			if err != nil {
				return err
			}
			return emit(cmd, deps.cfg.Output, newAccountListView(h.DexType(), poolPK, list))
		},
	}
	cmd.Flags().StringVar(&f.pool, "pool", "", "pool address")
	cmd.Flags().StringVar(&f.in, "in", "", "input mint")
	cmd.Flags().StringVar(&f.out, "out", "", "output mint")
	cmd.Flags().Uint64Var(&f.amount, "amount", 0, "input amount in base units")
	cmd.Flags().StringVar(&payer, "payer", "", "wallet paying for and signing the swap")
	cmd.Flags().BoolVar(&useDefault, "default", false, "build for the default direction (base to quote) without --in/--out/--amount")
	_ = cmd.MarkFlagRequired("pool")
	_ = cmd.MarkFlagRequired("payer")
	return cmd
}
