package main

import (
	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"

	"github.com/ninja0404/amm-go-sdk/pkg/pool"
)

type accountView struct {
	Owner    solana.PublicKey `json:"owner"`
	Lamports uint64           `json:"lamports"`
	Identity pool.Identity    `json:"identity"`
	State    any              `json:"state"`
}

func newAccountCmd(deps *runtimeDeps) *cobra.Command {
	return &cobra.Command{
		Use:   "account [pubkey]",
		Short: "Fetch a pool account and print its decoded state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pub, err := parsePubkey("account", args[0])
			if err != nil {
				return err
			}

			acc, err := deps.rpc.GetAccountInfo(cmd.Context(), pub)
			if err != nil {
				return err
			}
			h, err := decodePool(pub, acc.Owner, acc.Data)
			if err != nil {
				return err
			}
			return emit(cmd, deps.cfg.Output, accountView{
				Owner:    acc.Owner,
				Lamports: acc.Lamports,
				Identity: h.Identity(),
				State:    h.State(),
			})
		},
	}
}
