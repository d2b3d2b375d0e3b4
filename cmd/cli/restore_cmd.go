package main

import (
	"bytes"
	"fmt"

	"github.com/mr-tron/base58"
	"github.com/spf13/cobra"

	"github.com/ninja0404/amm-go-sdk/pkg/dex"
	"github.com/ninja0404/amm-go-sdk/pkg/dex/meteoradammv2"
	"github.com/ninja0404/amm-go-sdk/pkg/dex/meteoradlmm"
	"github.com/ninja0404/amm-go-sdk/pkg/dex/pumpamm"
	"github.com/ninja0404/amm-go-sdk/pkg/dex/raydiumclmm"
	"github.com/ninja0404/amm-go-sdk/pkg/dex/raydiumcpmm"
	"github.com/ninja0404/amm-go-sdk/pkg/dex/whirlpool"
	"github.com/ninja0404/amm-go-sdk/pkg/pool"
)

type restoreView struct {
	accountListView
	Args any `json:"args,omitempty"`
}

func newRestoreCmd(deps *runtimeDeps) *cobra.Command {
	var (
		dexName  string
		accounts string
		data     string
	)
	cmd := &cobra.Command{
		Use:   "restore",
		Short: "Rebuild the account list of an observed swap instruction",
		Long: "Restore takes the accounts and base58 data of a swap instruction seen on chain,\n" +
			"for example from a block explorer, and prints the pool, the canonical account\n" +
			"list and the decoded instruction arguments.",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := dex.ParseDexType(dexName)
			if err != nil {
				return err
			}
			keys, err := parsePubkeyList("accounts", accounts)
			if err != nil {
				return err
			}
			ix := dex.ObservedInstruction{ProgramID: d.ProgramID(), Accounts: keys}
			if data != "" {
				if ix.Data, err = base58.Decode(data); err != nil {
					return fmt.Errorf("data invalid base58: %w", err)
				}
			}
			v, err := restore(d, ix)
			if err != nil {
				return err
			}
			return emit(cmd, deps.cfg.Output, v)
		},
	}
	cmd.Flags().StringVar(&dexName, "dex", "", "protocol of the instruction (meteora_dlmm|meteora_damm_v2|raydium_clmm|whirlpool|raydium_cpmm|pump_amm)")
	cmd.Flags().StringVar(&accounts, "accounts", "", "comma separated instruction accounts in order")
	cmd.Flags().StringVar(&data, "data", "", "base58 instruction data; decoded into args when set")
	_ = cmd.MarkFlagRequired("dex")
	_ = cmd.MarkFlagRequired("accounts")
	return cmd
}

func restore(d dex.DexType, ix dex.ObservedInstruction) (restoreView, error) {
	poolPK, err := pool.ParseSwapFromIx(d, ix)
	if err != nil {
		return restoreView{}, err
	}
	list, err := pool.RestoreFrom(d, ix)
	if err != nil {
		return restoreView{}, err
	}
	v := restoreView{accountListView: newAccountListView(d, poolPK, list)}
	if len(ix.Data) > 0 {
		if v.Args, err = decodeSwapArgs(d, ix.Data); err != nil {
			return restoreView{}, err
		}
	}
	return v, nil
}

// decodeSwapArgs decodes the arguments of the swap instructions the SDK
// builds. Other instructions of the program are rejected.
func decodeSwapArgs(d dex.DexType, data []byte) (any, error) {
	switch d {
	case dex.MeteoraDlmm:
		return meteoradlmm.DecodeSwap(data)
	case dex.MeteoraDammV2:
		return meteoradammv2.DecodeSwap(data)
	case dex.RaydiumClmm:
		return raydiumclmm.DecodeSwapV2(data)
	case dex.Whirlpool:
		return whirlpool.DecodeSwapV2(data)
	case dex.RaydiumCpmm:
		return raydiumcpmm.DecodeSwapBaseInput(data)
	case dex.PumpAmm:
		return decodePumpArgs(data)
	}
	return nil, fmt.Errorf("unsupported dex %s", d)
}

func decodePumpArgs(data []byte) (any, error) {
	if len(data) < 8 {
		return nil, fmt.Errorf("pump_amm instruction data too short: %d bytes", len(data))
	}
	switch {
	case bytes.Equal(data[:8], pumpamm.BuyDiscriminator[:]):
		return pumpamm.DecodeBuy(data)
	case bytes.Equal(data[:8], pumpamm.SellDiscriminator[:]):
		return pumpamm.DecodeSell(data)
	case bytes.Equal(data[:8], pumpamm.BuyExactQuoteInDiscriminator[:]):
		return pumpamm.DecodeBuyExactQuoteIn(data)
	}
	return nil, fmt.Errorf("pump_amm instruction %x is not a swap", data[:8])
}
