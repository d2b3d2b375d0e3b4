package meteoradlmm

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"

	"github.com/ninja0404/amm-go-sdk/pkg/dex"
	"github.com/ninja0404/amm-go-sdk/pkg/mathutil"
	"github.com/ninja0404/amm-go-sdk/pkg/types"
)

// QuoteIsApproximate marks Quote as a mid-price estimate.
const QuoteIsApproximate = true

const (
	FeePrecision  = 1_000_000_000
	MaxFeeRate    = 100_000_000
	BasisPointMax = 10_000

	variableFeeScale = 100_000_000_000
	maxExponential   = 0x80000
	scaleOffset      = 64
)

var (
	one     = new(uint256.Int).Lsh(uint256.NewInt(1), scaleOffset)
	maxU128 = new(uint256.Int).SubUint64(mathutil.Q128, 1)
)

// Reserves are the vault balances of the pair, when the caller has them.
type Reserves struct {
	X uint64
	Y uint64
}

type QuoteParams struct {
	InputMint  solana.PublicKey
	OutputMint solana.PublicKey
	AmountIn   uint64

	// Reserves, when set, bound the output by the output vault balance.
	Reserves *Reserves
}

// Quote prices AmountIn at the active bin after the swap fee. It does not
// cross bins, so large trades are overstated.
func Quote(p *LbPair, q QuoteParams) (uint64, error) {
	xToY, ok := p.MintPair().Direction(q.InputMint, q.OutputMint)
	if !ok {
		return 0, dex.InvalidMintPair(dex.MeteoraDlmm, p.MintPair(), q.InputMint, q.OutputMint)
	}
	if p.Disabled() {
		return 0, types.NewQuoteError(dex.MeteoraDlmm.String(), types.QuotePoolDisabled, "status %d", p.Status)
	}
	if q.AmountIn == 0 {
		return 0, nil
	}

	var reserveOut uint64
	if q.Reserves != nil {
		reserveOut = q.Reserves.Y
		if !xToY {
			reserveOut = q.Reserves.X
		}
		if reserveOut == 0 {
			return 0, types.NewQuoteError(dex.MeteoraDlmm.String(), types.QuoteZeroLiquidity, "output reserve is empty")
		}
	}

	price, err := PriceFromID(p.ActiveId, p.BinStep)
	if err != nil {
		return 0, err
	}
	fee, err := mathutil.FeeCeil(q.AmountIn, p.TotalFeeRate(), FeePrecision)
	if err != nil {
		return 0, types.AsQuoteError(dex.MeteoraDlmm.String(), err)
	}
	net := q.AmountIn - fee

	var out *uint256.Int
	if xToY {
		out, err = mathutil.Mul(uint256.NewInt(net), price)
		if err == nil {
			out.Rsh(out, scaleOffset)
		}
	} else {
		out, err = mathutil.Div(new(uint256.Int).Lsh(uint256.NewInt(net), scaleOffset), price, mathutil.Down)
	}
	if err != nil {
		return 0, types.AsQuoteError(dex.MeteoraDlmm.String(), err)
	}
	amount, err := mathutil.ToUint64(out)
	if err != nil {
		return 0, types.AsQuoteError(dex.MeteoraDlmm.String(), err)
	}
	if q.Reserves != nil && amount > reserveOut {
		amount = reserveOut
	}
	return amount, nil
}

// BaseFeeRate is base_factor * bin_step * 10 * 10^power_factor over FeePrecision.
func (p *LbPair) BaseFeeRate() uint64 {
	rate := uint64(p.Parameters.BaseFactor) * uint64(p.BinStep) * 10
	for i := uint8(0); i < p.Parameters.BaseFeePowerFactor; i++ {
		rate *= 10
	}
	return rate
}

// VariableFeeRate is ceil((volatility_accumulator * bin_step)^2 * variable_fee_control / 1e11).
func (p *LbPair) VariableFeeRate() uint64 {
	vfc := uint64(p.Parameters.VariableFeeControl)
	if vfc == 0 {
		return 0
	}
	scaled := new(uint256.Int).Mul(
		uint256.NewInt(uint64(p.VParameters.VolatilityAccumulator)),
		uint256.NewInt(uint64(p.BinStep)),
	)
	v := new(uint256.Int).Mul(scaled, scaled)
	v.Mul(v, uint256.NewInt(vfc))
	v.AddUint64(v, variableFeeScale-1)
	v.Div(v, uint256.NewInt(variableFeeScale))
	if !v.IsUint64() {
		return MaxFeeRate
	}
	return v.Uint64()
}

// TotalFeeRate is the base plus variable rate, capped at MaxFeeRate.
func (p *LbPair) TotalFeeRate() uint64 {
	total := p.BaseFeeRate() + p.VariableFeeRate()
	if total > MaxFeeRate {
		return MaxFeeRate
	}
	return total
}

// PriceFromID returns (1 + binStep/10000)^binID as a Q64.64 number using the
// program's bit-by-bit exponentiation.
func PriceFromID(binID int32, binStep uint16) (*uint256.Int, error) {
	bps := new(uint256.Int).Lsh(uint256.NewInt(uint64(binStep)), scaleOffset)
	bps.Div(bps, uint256.NewInt(BasisPointMax))
	base := new(uint256.Int).Add(one, bps)
	return pow(base, binID)
}

func pow(base *uint256.Int, exp int32) (*uint256.Int, error) {
	if exp == 0 {
		return new(uint256.Int).Set(one), nil
	}
	invert := exp < 0
	e := uint64(exp)
	if invert {
		e = uint64(-int64(exp))
	}
	if e >= maxExponential {
		return nil, types.NewQuoteError(dex.MeteoraDlmm.String(), types.QuotePriceOutOfRange, "bin id %d", exp)
	}

	squared := new(uint256.Int).Set(base)
	result := new(uint256.Int).Set(one)
	if !squared.Lt(result) {
		squared.Div(maxU128, squared)
		invert = !invert
	}
	for bit := uint64(1); bit < maxExponential; bit <<= 1 {
		if e&bit != 0 {
			if err := mulShift(result, squared); err != nil {
				return nil, err
			}
		}
		if err := mulShift(squared, squared); err != nil {
			return nil, err
		}
	}
	if result.IsZero() {
		return nil, types.NewQuoteError(dex.MeteoraDlmm.String(), types.QuotePriceOutOfRange, "bin id %d underflows", exp)
	}
	if invert {
		result.Div(maxU128, result)
	}
	return result, nil
}

// mulShift sets z = z*y >> 64, failing when the product leaves u128.
func mulShift(z, y *uint256.Int) error {
	prod := new(uint256.Int).Mul(z, y)
	if prod.Gt(maxU128) {
		return types.NewQuoteError(dex.MeteoraDlmm.String(), types.QuoteOverflow, "price product %s exceeds u128", prod.Dec())
	}
	z.Rsh(prod, scaleOffset)
	return nil
}

var q64Decimal = decimal.NewFromBigInt(mathutil.Q64.ToBig(), 0)

// MidPrice is the active-bin price of one whole `from` token in `to` tokens.
func MidPrice(p *LbPair, from, to solana.PublicKey, decimalsX, decimalsY uint8) (decimal.Decimal, error) {
	xToY, ok := p.MintPair().Direction(from, to)
	if !ok {
		return decimal.Zero, dex.InvalidMintPair(dex.MeteoraDlmm, p.MintPair(), from, to)
	}
	raw, err := PriceFromID(p.ActiveId, p.BinStep)
	if err != nil {
		return decimal.Zero, err
	}
	price := decimal.NewFromBigInt(raw.ToBig(), 0).
		DivRound(q64Decimal, 36).
		Shift(int32(decimalsX) - int32(decimalsY))
	if xToY {
		return price, nil
	}
	if price.IsZero() {
		return decimal.Zero, fmt.Errorf("%w: zero price at bin %d", types.ErrPriceOutOfRange, p.ActiveId)
	}
	return decimal.NewFromInt(1).DivRound(price, 36), nil
}
