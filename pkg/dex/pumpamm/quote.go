package pumpamm

import (
	"github.com/gagliardetto/solana-go"
	"github.com/holiman/uint256"

	"github.com/ninja0404/amm-go-sdk/pkg/dex"
	"github.com/ninja0404/amm-go-sdk/pkg/mathutil"
	"github.com/ninja0404/amm-go-sdk/pkg/types"
)

// QuoteParams carries the request and the snapshot a Pump AMM quote needs.
type QuoteParams struct {
	InputMint  solana.PublicKey
	OutputMint solana.PublicKey
	AmountIn   uint64

	BaseReserve  uint64 // pool_base_token_account balance
	QuoteReserve uint64 // pool_quote_token_account balance

	// BaseSupply is the base mint supply, used for the market cap that
	// selects a fee tier.
	BaseSupply uint64

	// At least one of GlobalConfig and FeeConfig must be set.
	GlobalConfig *GlobalConfig
	FeeConfig    *FeeConfig
}

// Quote returns the output of a sell (base in) or an exact-quote-in buy
// (quote in).
func Quote(p *Pool, q QuoteParams) (uint64, error) {
	sell, ok := p.MintPair().Direction(q.InputMint, q.OutputMint)
	if !ok {
		return 0, dex.InvalidMintPair(dex.PumpAmm, p.MintPair(), q.InputMint, q.OutputMint)
	}
	if g := q.GlobalConfig; g != nil {
		flag := DisableBuy
		if sell {
			flag = DisableSell
		}
		if g.DisableFlags&flag != 0 {
			return 0, types.NewQuoteError(dex.PumpAmm.String(), types.QuotePoolDisabled, "disable_flags %#x", g.DisableFlags)
		}
	}
	if q.AmountIn == 0 {
		return 0, nil
	}
	if q.BaseReserve == 0 || q.QuoteReserve == 0 {
		return 0, types.NewQuoteError(dex.PumpAmm.String(), types.QuoteZeroLiquidity, "reserves %d/%d", q.BaseReserve, q.QuoteReserve)
	}

	fees, err := SelectFees(p, q)
	if err != nil {
		return 0, err
	}
	var out uint64
	if sell {
		out, err = sellQuoteOut(q.AmountIn, q.BaseReserve, q.QuoteReserve, fees, p.HasCoinCreator())
	} else {
		out, err = buyBaseOut(q.AmountIn, q.BaseReserve, q.QuoteReserve, fees, p.HasCoinCreator())
	}
	if err != nil {
		return 0, types.AsQuoteError(dex.PumpAmm.String(), err)
	}
	return out, nil
}

// SelectFees picks the fee schedule for a swap: market-cap tiers for
// canonical pools when a FeeConfig is injected, its flat fees otherwise, and
// the GlobalConfig basis points when no FeeConfig is available.
func SelectFees(p *Pool, q QuoteParams) (Fees, error) {
	if fc := q.FeeConfig; fc != nil {
		if !p.IsCanonicalPool() || len(fc.FeeTiers) == 0 {
			return fc.FlatFees, nil
		}
		mcap, err := MarketCap(q.BaseReserve, q.QuoteReserve, q.BaseSupply)
		if err != nil {
			return Fees{}, types.AsQuoteError(dex.PumpAmm.String(), err)
		}
		return tierFor(fc.FeeTiers, mcap), nil
	}
	if g := q.GlobalConfig; g != nil {
		return Fees{
			LpFeeBps:       g.LpFeeBasisPoints,
			ProtocolFeeBps: g.ProtocolFeeBasisPoints,
			CreatorFeeBps:  g.CoinCreatorFeeBasisPoints,
		}, nil
	}
	return Fees{}, types.NewQuoteError(dex.PumpAmm.String(), types.QuoteMissingSnapshot, "neither global_config nor fee_config injected")
}

// MarketCap is quote_reserve * base_supply / base_reserve, in quote units.
func MarketCap(baseReserve, quoteReserve, baseSupply uint64) (*uint256.Int, error) {
	return mathutil.MulDiv(uint256.NewInt(quoteReserve), uint256.NewInt(baseSupply), uint256.NewInt(baseReserve), mathutil.Down)
}

// tierFor returns the highest tier whose threshold is at or below mcap,
// falling back to the first tier below every threshold.
func tierFor(tiers []FeeTier, mcap *uint256.Int) Fees {
	for i := len(tiers) - 1; i >= 0; i-- {
		if mathutil.FromUint128(tiers[i].MarketCapLamportsThreshold).Cmp(mcap) <= 0 {
			return tiers[i].Fees
		}
	}
	return tiers[0].Fees
}

func sellQuoteOut(baseIn, baseReserve, quoteReserve uint64, fees Fees, withCreator bool) (uint64, error) {
	gross, err := mathutil.ConstantProductOut(baseReserve, quoteReserve, baseIn)
	if err != nil {
		return 0, err
	}
	charged := []uint64{fees.LpFeeBps, fees.ProtocolFeeBps}
	if withCreator {
		charged = append(charged, fees.CreatorFeeBps)
	}
	out := gross
	for _, bps := range charged {
		fee, err := mathutil.FeeCeil(gross, bps, BpsDenominator)
		if err != nil {
			return 0, err
		}
		if fee >= out {
			return 0, nil
		}
		out -= fee
	}
	return out, nil
}

func buyBaseOut(quoteIn, baseReserve, quoteReserve uint64, fees Fees, withCreator bool) (uint64, error) {
	effective, err := mathutil.MulDivU64(quoteIn, BpsDenominator, BpsDenominator+fees.Total(withCreator), mathutil.Down)
	if err != nil {
		return 0, err
	}
	return mathutil.ConstantProductOut(quoteReserve, baseReserve, effective)
}
