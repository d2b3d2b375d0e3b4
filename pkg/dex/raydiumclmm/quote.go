package raydiumclmm

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/holiman/uint256"

	"github.com/ninja0404/amm-go-sdk/pkg/dex"
	"github.com/ninja0404/amm-go-sdk/pkg/mathutil"
	"github.com/ninja0404/amm-go-sdk/pkg/types"
)

const (
	FeeRateDenominator  = 1_000_000
	DefaultTradeFeeRate = 2_500
)

var (
	MinSqrtPriceX64 = uint256.NewInt(4_295_048_016)
	MaxSqrtPriceX64 = uint256.MustFromDecimal("79226673521066979257578248091")
)

type QuoteParams struct {
	InputMint  solana.PublicKey
	OutputMint solana.PublicKey
	AmountIn   uint64

	// Config is the pool's AmmConfig; nil applies DefaultTradeFeeRate.
	Config *AmmConfig
}

// Quote returns the output of swap_v2 within the current liquidity range.
// Crossing an initialized tick is not modelled.
func Quote(s *PoolState, p QuoteParams) (uint64, error) {
	zeroForOne, ok := s.MintPair().Direction(p.InputMint, p.OutputMint)
	if !ok {
		return 0, dex.InvalidMintPair(dex.RaydiumClmm, s.MintPair(), p.InputMint, p.OutputMint)
	}
	if s.SwapDisabled() {
		return 0, types.NewQuoteError(dex.RaydiumClmm.String(), types.QuotePoolDisabled, "status %#x", s.Status)
	}
	if p.AmountIn == 0 {
		return 0, nil
	}
	liquidity := mathutil.FromUint128(s.Liquidity)
	sqrtPrice := mathutil.FromUint128(s.SqrtPriceX64)
	if liquidity.IsZero() || sqrtPrice.IsZero() {
		return 0, types.NewQuoteError(dex.RaydiumClmm.String(), types.QuoteZeroLiquidity, "liquidity %s", liquidity.Dec())
	}

	rate := uint64(DefaultTradeFeeRate)
	if p.Config != nil {
		rate = uint64(p.Config.TradeFeeRate)
	}
	fee, err := mathutil.FeeCeil(p.AmountIn, rate, FeeRateDenominator)
	if err != nil {
		return 0, types.AsQuoteError(dex.RaydiumClmm.String(), err)
	}

	var out uint64
	if zeroForOne {
		out, _, err = SwapZeroForOne(liquidity, sqrtPrice, p.AmountIn-fee, MinSqrtPriceX64)
	} else {
		out, _, err = SwapOneForZero(liquidity, sqrtPrice, p.AmountIn-fee, MaxSqrtPriceX64)
	}
	if err != nil {
		return 0, types.AsQuoteError(dex.RaydiumClmm.String(), err)
	}
	return out, nil
}

// SwapZeroForOne moves a Q64.64 sqrt price down by an exact token0 input:
// next = ceil(L*sqrtP*2^64 / (L*2^64 + amount*sqrtP)) and
// out = floor(L*(sqrtP-next) / 2^64). Whirlpool uses the same curve.
func SwapZeroForOne(liquidity, sqrtPrice *uint256.Int, amountIn uint64, minSqrtPrice *uint256.Int) (uint64, *uint256.Int, error) {
	numerator, err := mathutil.Mul(liquidity, mathutil.Q64)
	if err != nil {
		return 0, nil, err
	}
	product, err := mathutil.Mul(uint256.NewInt(amountIn), sqrtPrice)
	if err != nil {
		return 0, nil, err
	}
	denominator, err := mathutil.Add(numerator, product)
	if err != nil {
		return 0, nil, err
	}
	next, err := mathutil.MulDiv(numerator, sqrtPrice, denominator, mathutil.Up)
	if err != nil {
		return 0, nil, err
	}
	if next.Lt(minSqrtPrice) {
		return 0, nil, fmt.Errorf("%w: next sqrt price %s below %s", types.ErrPriceOutOfRange, next.Dec(), minSqrtPrice.Dec())
	}
	delta, err := mathutil.Sub(sqrtPrice, next)
	if err != nil {
		return 0, nil, err
	}
	out, err := mathutil.MulDiv(liquidity, delta, mathutil.Q64, mathutil.Down)
	if err != nil {
		return 0, nil, err
	}
	v, err := mathutil.ToUint64(out)
	return v, next, err
}

// SwapOneForZero moves a Q64.64 sqrt price up by an exact token1 input:
// next = sqrtP + floor(amount*2^64 / L) and
// out = floor(L*2^64*(next-sqrtP) / (next*sqrtP)).
func SwapOneForZero(liquidity, sqrtPrice *uint256.Int, amountIn uint64, maxSqrtPrice *uint256.Int) (uint64, *uint256.Int, error) {
	step, err := mathutil.Div(new(uint256.Int).Lsh(uint256.NewInt(amountIn), 64), liquidity, mathutil.Down)
	if err != nil {
		return 0, nil, err
	}
	next, err := mathutil.Add(sqrtPrice, step)
	if err != nil {
		return 0, nil, err
	}
	if next.Gt(maxSqrtPrice) {
		return 0, nil, fmt.Errorf("%w: next sqrt price %s above %s", types.ErrPriceOutOfRange, next.Dec(), maxSqrtPrice.Dec())
	}
	delta, err := mathutil.Sub(next, sqrtPrice)
	if err != nil {
		return 0, nil, err
	}
	scaled, err := mathutil.Mul(liquidity, mathutil.Q64)
	if err != nil {
		return 0, nil, err
	}
	denominator, err := mathutil.Mul(next, sqrtPrice)
	if err != nil {
		return 0, nil, err
	}
	out, err := mathutil.MulDiv(scaled, delta, denominator, mathutil.Down)
	if err != nil {
		return 0, nil, err
	}
	v, err := mathutil.ToUint64(out)
	return v, next, err
}
