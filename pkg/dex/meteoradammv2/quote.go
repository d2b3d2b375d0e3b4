package meteoradammv2

import (
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/holiman/uint256"

	"github.com/ninja0404/amm-go-sdk/pkg/dex"
	"github.com/ninja0404/amm-go-sdk/pkg/mathutil"
	"github.com/ninja0404/amm-go-sdk/pkg/types"
)

const (
	FeeDenominator   = 1_000_000_000
	MaxFeeNumerator  = 100_000_000
	BasisPointMax    = 10_000
	variableFeeScale = 100_000_000_000
)

// now is replaced in tests.
var now = time.Now

// QuoteParams carries the request and the clock a DAMM v2 quote needs.
type QuoteParams struct {
	InputMint  solana.PublicKey
	OutputMint solana.PublicKey
	AmountIn   uint64

	// CurrentPoint is the slot or unix timestamp, per the pool's
	// activation_type, used by the fee scheduler. Zero means "now" for
	// timestamp pools and a fully elapsed schedule for slot pools.
	CurrentPoint uint64

	// HasReferral splits part of the protocol fee to a referrer.
	HasReferral bool
}

// FeeBreakdown is how the trading fee of one swap is split.
type FeeBreakdown struct {
	Numerator   uint64 `json:"numerator"`
	OnInput     bool   `json:"onInput"`
	LpFee       uint64 `json:"lpFee"`
	ProtocolFee uint64 `json:"protocolFee"`
	PartnerFee  uint64 `json:"partnerFee"`
	ReferralFee uint64 `json:"referralFee"`
}

// Total is the amount withheld from the trader.
func (f FeeBreakdown) Total() uint64 {
	return f.LpFee + f.ProtocolFee + f.PartnerFee + f.ReferralFee
}

// QuoteResult is the detailed outcome of a swap.
type QuoteResult struct {
	AmountOut     uint64       `json:"amountOut"`
	Fee           FeeBreakdown `json:"fee"`
	NextSqrtPrice *uint256.Int `json:"nextSqrtPrice"`
}

// Quote returns the exact output of swap for AmountIn.
func Quote(p *Pool, q QuoteParams) (uint64, error) {
	r, err := QuoteDetailed(p, q)
	if err != nil {
		return 0, err
	}
	return r.AmountOut, nil
}

// QuoteDetailed returns the output together with the fee split and the
// price after the swap.
func QuoteDetailed(p *Pool, q QuoteParams) (*QuoteResult, error) {
	aToB, ok := p.MintPair().Direction(q.InputMint, q.OutputMint)
	if !ok {
		return nil, dex.InvalidMintPair(dex.MeteoraDammV2, p.MintPair(), q.InputMint, q.OutputMint)
	}
	if p.Disabled() {
		return nil, types.NewQuoteError(dex.MeteoraDammV2.String(), types.QuotePoolDisabled, "pool_status %d", p.PoolStatus)
	}
	sqrtPrice := mathutil.FromUint128(p.SqrtPrice)
	if q.AmountIn == 0 {
		return &QuoteResult{NextSqrtPrice: sqrtPrice}, nil
	}
	liquidity := mathutil.FromUint128(p.Liquidity)
	if liquidity.IsZero() || sqrtPrice.IsZero() {
		return nil, types.NewQuoteError(dex.MeteoraDammV2.String(), types.QuoteZeroLiquidity, "liquidity %s sqrt_price %s", liquidity.Dec(), sqrtPrice.Dec())
	}

	numerator, err := p.TotalFeeNumerator(p.currentPoint(q.CurrentPoint))
	if err != nil {
		return nil, types.AsQuoteError(dex.MeteoraDammV2.String(), err)
	}
	onInput := feesOnInput(p.CollectFeeMode, aToB)

	amount := q.AmountIn
	var fee FeeBreakdown
	if onInput {
		if fee, err = p.splitFee(amount, numerator, q.HasReferral); err != nil {
			return nil, types.AsQuoteError(dex.MeteoraDammV2.String(), err)
		}
		amount -= fee.Total()
	}

	var out uint64
	var next *uint256.Int
	if aToB {
		out, next, err = swapAToB(liquidity, sqrtPrice, mathutil.FromUint128(p.SqrtMinPrice), amount)
	} else {
		out, next, err = swapBToA(liquidity, sqrtPrice, mathutil.FromUint128(p.SqrtMaxPrice), amount)
	}
	if err != nil {
		return nil, types.AsQuoteError(dex.MeteoraDammV2.String(), err)
	}

	if !onInput {
		if fee, err = p.splitFee(out, numerator, q.HasReferral); err != nil {
			return nil, types.AsQuoteError(dex.MeteoraDammV2.String(), err)
		}
		out -= fee.Total()
	}
	fee.Numerator, fee.OnInput = numerator, onInput
	return &QuoteResult{AmountOut: out, Fee: fee, NextSqrtPrice: next}, nil
}

// feesOnInput follows the program: OnlyB pools take the fee in B, which is
// the input only for b->a; BothToken pools always charge the output.
func feesOnInput(mode CollectFeeMode, aToB bool) bool {
	return mode == CollectFeeOnlyB && !aToB
}

func (p *Pool) currentPoint(injected uint64) uint64 {
	if injected != 0 {
		return injected
	}
	if p.ActivationType == ActivationTimestamp {
		return uint64(now().Unix())
	}
	return ^uint64(0)
}

// TotalFeeNumerator is the base fee at currentPoint plus the variable fee,
// capped at MaxFeeNumerator.
func (p *Pool) TotalFeeNumerator(currentPoint uint64) (uint64, error) {
	base := p.PoolFees.BaseFee.FeeNumerator(currentPoint, p.ActivationPoint)
	variable, err := p.PoolFees.DynamicFee.VariableFeeNumerator()
	if err != nil {
		return 0, err
	}
	total := base + variable
	if total < base || total > MaxFeeNumerator {
		return MaxFeeNumerator, nil
	}
	return total, nil
}

// FeeNumerator evaluates the fee scheduler. Before activation the fully
// reduced fee applies.
func (b BaseFee) FeeNumerator(currentPoint, activationPoint uint64) uint64 {
	if b.PeriodFrequency == 0 {
		return b.CliffFeeNumerator
	}
	period := uint64(b.NumberOfPeriod)
	if currentPoint >= activationPoint {
		period = min((currentPoint-activationPoint)/b.PeriodFrequency, period)
	}

	switch b.FeeSchedulerMode {
	case FeeSchedulerExponential:
		fee := b.CliffFeeNumerator
		for i := uint64(0); i < period && fee > 0; i++ {
			fee = mulDivFloor(fee, BasisPointMax-min(b.ReductionFactor, BasisPointMax), BasisPointMax)
		}
		return fee
	default:
		if b.ReductionFactor != 0 && period > b.CliffFeeNumerator/b.ReductionFactor {
			return 0
		}
		return b.CliffFeeNumerator - period*b.ReductionFactor
	}
}

// VariableFeeNumerator is the volatility fee,
// ceil((volatility_accumulator * bin_step)^2 * variable_fee_control / 1e11).
func (d DynamicFee) VariableFeeNumerator() (uint64, error) {
	if d.Initialized == 0 {
		return 0, nil
	}
	scaled, err := mathutil.Mul(mathutil.FromUint128(d.VolatilityAccumulator), uint256.NewInt(uint64(d.BinStep)))
	if err != nil {
		return 0, err
	}
	square, err := mathutil.Mul(scaled, scaled)
	if err != nil {
		return 0, err
	}
	fee, err := mathutil.Mul(square, uint256.NewInt(uint64(d.VariableFeeControl)))
	if err != nil {
		return 0, err
	}
	fee, err = mathutil.Div(fee, uint256.NewInt(variableFeeScale), mathutil.Up)
	if err != nil {
		return 0, err
	}
	if !fee.IsUint64() {
		return MaxFeeNumerator, nil
	}
	return fee.Uint64(), nil
}

func (p *Pool) splitFee(amount, numerator uint64, hasReferral bool) (FeeBreakdown, error) {
	trading, err := mathutil.FeeCeil(amount, numerator, FeeDenominator)
	if err != nil {
		return FeeBreakdown{}, err
	}
	pf := p.PoolFees
	protocol := mulDivFloor(trading, uint64(pf.ProtocolFeePercent), 100)
	f := FeeBreakdown{LpFee: trading - protocol}
	if hasReferral {
		f.ReferralFee = mulDivFloor(protocol, uint64(pf.ReferralFeePercent), 100)
		protocol -= f.ReferralFee
	}
	if !p.Partner.IsZero() {
		f.PartnerFee = mulDivFloor(protocol, uint64(pf.PartnerFeePercent), 100)
		protocol -= f.PartnerFee
	}
	f.ProtocolFee = protocol
	return f, nil
}

// mulDivFloor is for percentages of an amount, which cannot overflow.
func mulDivFloor(a, b, d uint64) uint64 {
	v, _ := mathutil.MulDivU64(a, b, d, mathutil.Down)
	return v
}

// swapAToB moves the price down: next = ceil(L*sqrtP / (L + dA*sqrtP)) and
// out = floor(L*(sqrtP-next) / 2^128).
func swapAToB(liquidity, sqrtPrice, sqrtMin *uint256.Int, amountIn uint64) (uint64, *uint256.Int, error) {
	product, err := mathutil.Mul(uint256.NewInt(amountIn), sqrtPrice)
	if err != nil {
		return 0, nil, err
	}
	denominator, err := mathutil.Add(liquidity, product)
	if err != nil {
		return 0, nil, err
	}
	next, err := mathutil.MulDiv(liquidity, sqrtPrice, denominator, mathutil.Up)
	if err != nil {
		return 0, nil, err
	}
	if next.Lt(sqrtMin) {
		return 0, nil, types.NewQuoteError(dex.MeteoraDammV2.String(), types.QuotePriceOutOfRange,
			"next sqrt price %s below min %s", next.Dec(), sqrtMin.Dec())
	}
	delta, err := mathutil.Sub(sqrtPrice, next)
	if err != nil {
		return 0, nil, err
	}
	out, err := mathutil.MulDiv(liquidity, delta, mathutil.Q128, mathutil.Down)
	if err != nil {
		return 0, nil, err
	}
	v, err := mathutil.ToUint64(out)
	return v, next, err
}

// swapBToA moves the price up: next = sqrtP + floor(dB*2^128 / L) and
// out = floor(L*(next-sqrtP) / (sqrtP*next)).
func swapBToA(liquidity, sqrtPrice, sqrtMax *uint256.Int, amountIn uint64) (uint64, *uint256.Int, error) {
	shifted := new(uint256.Int).Lsh(uint256.NewInt(amountIn), 128)
	step, err := mathutil.Div(shifted, liquidity, mathutil.Down)
	if err != nil {
		return 0, nil, err
	}
	next, err := mathutil.Add(sqrtPrice, step)
	if err != nil {
		return 0, nil, err
	}
	if next.Gt(sqrtMax) {
		return 0, nil, types.NewQuoteError(dex.MeteoraDammV2.String(), types.QuotePriceOutOfRange,
			"next sqrt price %s above max %s", next.Dec(), sqrtMax.Dec())
	}
	delta, err := mathutil.Sub(next, sqrtPrice)
	if err != nil {
		return 0, nil, err
	}
	denominator, err := mathutil.Mul(sqrtPrice, next)
	if err != nil {
		return 0, nil, err
	}
	out, err := mathutil.MulDiv(liquidity, delta, denominator, mathutil.Down)
	if err != nil {
		return 0, nil, err
	}
	v, err := mathutil.ToUint64(out)
	return v, next, err
}
