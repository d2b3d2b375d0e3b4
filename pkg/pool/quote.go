package pool

import (
	"errors"

	"github.com/gagliardetto/solana-go"

	"github.com/ninja0404/amm-go-sdk/pkg/dex"
	"github.com/ninja0404/amm-go-sdk/pkg/dex/meteoradammv2"
	"github.com/ninja0404/amm-go-sdk/pkg/dex/meteoradlmm"
	"github.com/ninja0404/amm-go-sdk/pkg/dex/pumpamm"
	"github.com/ninja0404/amm-go-sdk/pkg/dex/raydiumclmm"
	"github.com/ninja0404/amm-go-sdk/pkg/dex/raydiumcpmm"
	"github.com/ninja0404/amm-go-sdk/pkg/dex/whirlpool"
	"github.com/ninja0404/amm-go-sdk/pkg/types"
)

// Reserves are the balances of the base and quote vaults.
type Reserves struct {
	Base  uint64 `json:"base" yaml:"base"`
	Quote uint64 `json:"quote" yaml:"quote"`
}

// Snapshot is the read-only chain state a quote may depend on besides the
// pool account. Each protocol reads only its own fields.
type Snapshot struct {
	// Required by Raydium CPMM and Pump AMM, optional for Meteora DLMM.
	Reserves *Reserves

	// Pump AMM base mint supply, for fee tier selection.
	BaseSupply uint64

	CpmmConfig       *raydiumcpmm.AmmConfig
	ClmmConfig       *raydiumclmm.AmmConfig
	PumpGlobalConfig *pumpamm.GlobalConfig
	PumpFeeConfig    *pumpamm.FeeConfig

	// Meteora DAMM v2 slot or timestamp; zero picks the pool's default.
	CurrentPoint uint64
	HasReferral  bool
}

type QuoteParams struct {
	InputMint  solana.PublicKey
	OutputMint solana.PublicKey
	AmountIn   uint64
	Snapshot   Snapshot
}

// Quote returns the output amount for p. Only Meteora DLMM quotes are
// approximate, see dex.DexType.ExactQuote.
func (h *Handle) Quote(p QuoteParams) (uint64, error) {
	if _, ok := h.MintPair().Direction(p.InputMint, p.OutputMint); !ok {
		return 0, dex.InvalidMintPair(h.dex, h.MintPair(), p.InputMint, p.OutputMint)
	}
	s := p.Snapshot
	switch h.dex {
	case dex.MeteoraDlmm:
		q := meteoradlmm.QuoteParams{InputMint: p.InputMint, OutputMint: p.OutputMint, AmountIn: p.AmountIn}
		if s.Reserves != nil {
			q.Reserves = &meteoradlmm.Reserves{X: s.Reserves.Base, Y: s.Reserves.Quote}
		}
		return meteoradlmm.Quote(h.dlmm, q)
	case dex.MeteoraDammV2:
		return meteoradammv2.Quote(h.dammV2, meteoradammv2.QuoteParams{
			InputMint:    p.InputMint,
			OutputMint:   p.OutputMint,
			AmountIn:     p.AmountIn,
			CurrentPoint: s.CurrentPoint,
			HasReferral:  s.HasReferral,
		})
	case dex.RaydiumClmm:
		return raydiumclmm.Quote(h.clmm, raydiumclmm.QuoteParams{
			InputMint:  p.InputMint,
			OutputMint: p.OutputMint,
			AmountIn:   p.AmountIn,
			Config:     s.ClmmConfig,
		})
	case dex.Whirlpool:
		return whirlpool.Quote(h.whirlpool, whirlpool.QuoteParams{InputMint: p.InputMint, OutputMint: p.OutputMint, AmountIn: p.AmountIn})
	case dex.RaydiumCpmm:
		r := s.reserves()
		out, err := raydiumcpmm.Quote(h.cpmm, raydiumcpmm.QuoteParams{
			InputMint:     p.InputMint,
			OutputMint:    p.OutputMint,
			AmountIn:      p.AmountIn,
			Vault0Balance: r.Base,
			Vault1Balance: r.Quote,
			Config:        s.CpmmConfig,
		})
		return h.checkReserves(s, out, err)
	default:
		r := s.reserves()
		out, err := pumpamm.Quote(h.pumpAmm, pumpamm.QuoteParams{
			InputMint:    p.InputMint,
			OutputMint:   p.OutputMint,
			AmountIn:     p.AmountIn,
			BaseReserve:  r.Base,
			QuoteReserve: r.Quote,
			BaseSupply:   s.BaseSupply,
			GlobalConfig: s.PumpGlobalConfig,
			FeeConfig:    s.PumpFeeConfig,
		})
		return h.checkReserves(s, out, err)
	}
}

func (s Snapshot) reserves() Reserves {
	if s.Reserves == nil {
		return Reserves{}
	}
	return *s.Reserves
}

// checkReserves lets a reserve-based engine validate the request on empty
// reserves before a missing snapshot is reported.
func (h *Handle) checkReserves(s Snapshot, out uint64, err error) (uint64, error) {
	if s.Reserves == nil && errors.Is(err, types.ErrZeroLiquidity) {
		return 0, h.missingReserves()
	}
	return out, err
}

func (h *Handle) missingReserves() error {
	return types.NewQuoteError(h.dex.String(), types.QuoteMissingSnapshot, "vault balances of pool %s not injected", h.addr)
}
