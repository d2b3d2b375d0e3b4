// Package quote turns a raw pool quote into trade terms: the minimum
// output after slippage, execution price and price impact.
package quote

import (
	"context"
	"fmt"
	"math/big"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"

	"github.com/ninja0404/amm-go-sdk/pkg/dex"
	"github.com/ninja0404/amm-go-sdk/pkg/mathutil"
	"github.com/ninja0404/amm-go-sdk/pkg/pool"
	"github.com/ninja0404/amm-go-sdk/pkg/types"
)

const (
	BpsDenominator = 10_000

	// refDivisor sizes the trade used as the spot reference.
	refDivisor = 1_000
)

// Result contains the result of a price quote.
type Result struct {
	Dex        dex.DexType      `json:"dex" yaml:"dex"`
	Pool       solana.PublicKey `json:"pool" yaml:"pool"`
	InputMint  solana.PublicKey `json:"inputMint" yaml:"inputMint"`
	OutputMint solana.PublicKey `json:"outputMint" yaml:"outputMint"`
	AmountIn   uint64           `json:"amountIn" yaml:"amountIn"`

	// ExpectedOut is the pool's output for AmountIn.
	ExpectedOut uint64 `json:"expectedOut" yaml:"expectedOut"`

	// MinOut is ExpectedOut with slippage applied.
	MinOut      uint64 `json:"minOut" yaml:"minOut"`
	SlippageBps uint64 `json:"slippageBps" yaml:"slippageBps"`

	// Exact is false for protocols whose quote is an estimate.
	Exact bool `json:"exact" yaml:"exact"`

	// ExecutionPrice is whole output tokens per whole input token.
	ExecutionPrice decimal.Decimal `json:"executionPrice" yaml:"executionPrice"`

	// SpotPrice is the same ratio for a trade a thousandth the size.
	SpotPrice decimal.Decimal `json:"spotPrice" yaml:"spotPrice"`

	// PriceImpactBps is (spot - execution) / spot in basis points, floored at 0.
	PriceImpactBps decimal.Decimal `json:"priceImpactBps" yaml:"priceImpactBps"`
}

// Request is one quote to price.
type Request struct {
	InputMint   solana.PublicKey
	OutputMint  solana.PublicKey
	AmountIn    uint64
	SlippageBps uint64
	Snapshot    pool.Snapshot
}

// Compute quotes r on h and derives the trade terms. Mint decimals come
// from mints; prices are left zero when they are unavailable.
func Compute(ctx context.Context, h *pool.Handle, mints dex.MintInfoProvider, r Request) (*Result, error) {
	if err := types.ValidateSwapParams(r.InputMint, r.OutputMint, r.AmountIn); err != nil {
		return nil, err
	}
	if err := types.ValidateSlippage(r.SlippageBps); err != nil {
		return nil, err
	}

	out, err := h.Quote(pool.QuoteParams{
		InputMint:  r.InputMint,
		OutputMint: r.OutputMint,
		AmountIn:   r.AmountIn,
		Snapshot:   r.Snapshot,
	})
	if err != nil {
		return nil, err
	}
	minOut, err := MinAmountOut(out, r.SlippageBps)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Dex:         h.DexType(),
		Pool:        h.PoolAddress(),
		InputMint:   r.InputMint,
		OutputMint:  r.OutputMint,
		AmountIn:    r.AmountIn,
		ExpectedOut: out,
		MinOut:      minOut,
		SlippageBps: r.SlippageBps,
		Exact:       h.DexType().ExactQuote(),
	}

	if mints == nil {
		return res, nil
	}
	inInfo, err := mints.MintInfo(ctx, r.InputMint)
	if err != nil {
		return nil, fmt.Errorf("input mint %s: %w", r.InputMint, err)
	}
	outInfo, err := mints.MintInfo(ctx, r.OutputMint)
	if err != nil {
		return nil, fmt.Errorf("output mint %s: %w", r.OutputMint, err)
	}
	res.ExecutionPrice = Price(r.AmountIn, out, inInfo.Decimals, outInfo.Decimals)

	if ref := r.AmountIn / refDivisor; ref > 0 {
		refOut, err := h.Quote(pool.QuoteParams{
			InputMint:  r.InputMint,
			OutputMint: r.OutputMint,
			AmountIn:   ref,
			Snapshot:   r.Snapshot,
		})
		if err == nil {
			res.SpotPrice = Price(ref, refOut, inInfo.Decimals, outInfo.Decimals)
			res.PriceImpactBps = PriceImpactBps(res.SpotPrice, res.ExecutionPrice)
		}
	}
	return res, nil
}

// MinAmountOut floors amount * (10000 - slippageBps) / 10000.
func MinAmountOut(amount, slippageBps uint64) (uint64, error) {
	if err := types.ValidateSlippage(slippageBps); err != nil {
		return 0, err
	}
	return mathutil.MulDivU64(amount, BpsDenominator-slippageBps, BpsDenominator, mathutil.Down)
}

// Price is out/in with both raw amounts scaled to whole tokens.
func Price(amountIn, amountOut uint64, decimalsIn, decimalsOut uint8) decimal.Decimal {
	if amountIn == 0 {
		return decimal.Zero
	}
	in := decimal.NewFromBigInt(new(big.Int).SetUint64(amountIn), -int32(decimalsIn))
	out := decimal.NewFromBigInt(new(big.Int).SetUint64(amountOut), -int32(decimalsOut))
	return out.DivRound(in, 18)
}

// PriceImpactBps compares an execution price with a spot price.
func PriceImpactBps(spot, execution decimal.Decimal) decimal.Decimal {
	if !spot.IsPositive() || execution.GreaterThanOrEqual(spot) {
		return decimal.Zero
	}
	return spot.Sub(execution).Div(spot).Mul(decimal.NewFromInt(BpsDenominator)).Round(2)
}
