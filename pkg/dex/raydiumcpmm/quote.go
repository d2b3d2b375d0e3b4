package raydiumcpmm

import (
	"github.com/gagliardetto/solana-go"

	"github.com/ninja0404/amm-go-sdk/pkg/dex"
	"github.com/ninja0404/amm-go-sdk/pkg/mathutil"
	"github.com/ninja0404/amm-go-sdk/pkg/types"
)

// QuoteParams carries the request and the snapshot a CPMM quote needs.
type QuoteParams struct {
	InputMint  solana.PublicKey
	OutputMint solana.PublicKey
	AmountIn   uint64

	// Token amounts held by token_0_vault and token_1_vault.
	Vault0Balance uint64
	Vault1Balance uint64

	// Config is the pool's AmmConfig. When nil the default trade fee applies
	// and no creator fee is charged.
	Config *AmmConfig
}

// Quote returns the exact output of swap_base_input.
func Quote(s *PoolState, p QuoteParams) (uint64, error) {
	zeroForOne, ok := s.MintPair().Direction(p.InputMint, p.OutputMint)
	if !ok {
		return 0, dex.InvalidMintPair(dex.RaydiumCpmm, s.MintPair(), p.InputMint, p.OutputMint)
	}
	if s.SwapDisabled() {
		return 0, types.NewQuoteError(dex.RaydiumCpmm.String(), types.QuotePoolDisabled, "status %#x", s.Status)
	}
	if p.AmountIn == 0 {
		return 0, nil
	}

	reserve0, ok0 := netReserve(p.Vault0Balance, s.ProtocolFeesToken0, s.FundFeesToken0, s.CreatorFeesToken0)
	reserve1, ok1 := netReserve(p.Vault1Balance, s.ProtocolFeesToken1, s.FundFeesToken1, s.CreatorFeesToken1)
	if !ok0 || !ok1 || reserve0 == 0 || reserve1 == 0 {
		return 0, types.NewQuoteError(dex.RaydiumCpmm.String(), types.QuoteZeroLiquidity,
			"vault balances %d/%d below accrued fees", p.Vault0Balance, p.Vault1Balance)
	}
	reserveIn, reserveOut := reserve0, reserve1
	if !zeroForOne {
		reserveIn, reserveOut = reserve1, reserve0
	}

	tradeFeeRate := uint64(DefaultTradeFeeRate)
	var creatorFeeRate uint64
	if p.Config != nil {
		tradeFeeRate = p.Config.TradeFeeRate
		if s.EnableCreatorFee {
			creatorFeeRate = p.Config.CreatorFeeRate
		}
	}
	onInput := s.creatorFeeOnInput(zeroForOne)

	out, err := swapBaseInput(p.AmountIn, reserveIn, reserveOut, tradeFeeRate, creatorFeeRate, onInput)
	if err != nil {
		return 0, types.AsQuoteError(dex.RaydiumCpmm.String(), err)
	}
	return out, nil
}

// swapBaseInput mirrors the program's fee order: a creator fee charged on
// input is rounded up together with the trade fee.
func swapBaseInput(amountIn, reserveIn, reserveOut, tradeFeeRate, creatorFeeRate uint64, creatorFeeOnInput bool) (uint64, error) {
	inputFeeRate := tradeFeeRate
	if creatorFeeOnInput {
		inputFeeRate += creatorFeeRate
	}
	fee, err := mathutil.FeeCeil(amountIn, inputFeeRate, FeeRateDenominator)
	if err != nil {
		return 0, err
	}
	net, err := mathutil.SubU64(amountIn, fee)
	if err != nil {
		return 0, err
	}

	out, err := mathutil.ConstantProductOut(reserveIn, reserveOut, net)
	if err != nil {
		return 0, err
	}
	if !creatorFeeOnInput && creatorFeeRate > 0 {
		creatorFee, err := mathutil.FeeCeil(out, creatorFeeRate, FeeRateDenominator)
		if err != nil {
			return 0, err
		}
		return mathutil.SubU64(out, creatorFee)
	}
	return out, nil
}

// netReserve subtracts the fees accrued in a vault from its balance.
func netReserve(balance uint64, fees ...uint64) (uint64, bool) {
	for _, f := range fees {
		if f > balance {
			return 0, false
		}
		balance -= f
	}
	return balance, true
}
