package whirlpool

import (
	"github.com/gagliardetto/solana-go"
	"github.com/holiman/uint256"

	"github.com/ninja0404/amm-go-sdk/pkg/dex"
	"github.com/ninja0404/amm-go-sdk/pkg/dex/raydiumclmm"
	"github.com/ninja0404/amm-go-sdk/pkg/mathutil"
	"github.com/ninja0404/amm-go-sdk/pkg/types"
)

// FeeRateDenominator is the hundredths-of-a-bip scale of fee_rate.
const FeeRateDenominator = 1_000_000

var (
	MinSqrtPrice = uint256.NewInt(4_295_048_016)
	MaxSqrtPrice = uint256.MustFromDecimal("79226673515401279992447579055")
)

type QuoteParams struct {
	InputMint  solana.PublicKey
	OutputMint solana.PublicKey
	AmountIn   uint64
}

// Quote returns the exact-input output of a swap that stays inside the
// current tick range. Whirlpools have no disabled state.
func Quote(w *Whirlpool, p QuoteParams) (uint64, error) {
	aToB, ok := w.MintPair().Direction(p.InputMint, p.OutputMint)
	if !ok {
		return 0, dex.InvalidMintPair(dex.Whirlpool, w.MintPair(), p.InputMint, p.OutputMint)
	}
	if p.AmountIn == 0 {
		return 0, nil
	}
	liquidity := mathutil.FromUint128(w.Liquidity)
	sqrtPrice := mathutil.FromUint128(w.SqrtPrice)
	if liquidity.IsZero() || sqrtPrice.IsZero() {
		return 0, types.NewQuoteError(dex.Whirlpool.String(), types.QuoteZeroLiquidity, "liquidity %s", liquidity.Dec())
	}

	fee, err := mathutil.FeeCeil(p.AmountIn, uint64(w.FeeRate), FeeRateDenominator)
	if err != nil {
		return 0, types.AsQuoteError(dex.Whirlpool.String(), err)
	}
	var out uint64
	if aToB {
		out, _, err = raydiumclmm.SwapZeroForOne(liquidity, sqrtPrice, p.AmountIn-fee, MinSqrtPrice)
	} else {
		out, _, err = raydiumclmm.SwapOneForZero(liquidity, sqrtPrice, p.AmountIn-fee, MaxSqrtPrice)
	}
	if err != nil {
		return 0, types.AsQuoteError(dex.Whirlpool.String(), err)
	}
	return out, nil
}
