// Package pool is the single dispatch point over the supported protocols.
// Callers decode, quote and build through a Handle without switching on the
// protocol themselves.
package pool

import (
	"context"
	"fmt"

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

// Identity is the immutable description of a pool: where it lives, which
// protocol owns it, and its base/quote mints and vaults.
type Identity struct {
	Address    solana.PublicKey `json:"address" yaml:"address"`
	Dex        dex.DexType      `json:"dex" yaml:"dex"`
	BaseMint   solana.PublicKey `json:"baseMint" yaml:"baseMint"`
	QuoteMint  solana.PublicKey `json:"quoteMint" yaml:"quoteMint"`
	BaseVault  solana.PublicKey `json:"baseVault" yaml:"baseVault"`
	QuoteVault solana.PublicKey `json:"quoteVault" yaml:"quoteVault"`
}

// Handle wraps the decoded state of one pool. Exactly one state pointer is
// set, matching dex.
type Handle struct {
	addr solana.PublicKey
	dex  dex.DexType

	dlmm      *meteoradlmm.LbPair
	dammV2    *meteoradammv2.Pool
	clmm      *raydiumclmm.PoolState
	whirlpool *whirlpool.Whirlpool
	cpmm      *raydiumcpmm.PoolState
	pumpAmm   *pumpamm.Pool

	largeTradeThreshold uint64
}

// Option configures a Handle.
type Option func(*Handle)

// WithLargeTradeThreshold sets the input amount at which DLMM builds pass
// the wider bin array window. Zero keeps the default.
func WithLargeTradeThreshold(v uint64) Option {
	return func(h *Handle) {
		if v != 0 {
			h.largeTradeThreshold = v
		}
	}
}

// New decodes data as a pool account of protocol d.
func New(addr solana.PublicKey, d dex.DexType, data []byte, opts ...Option) (*Handle, error) {
	h := &Handle{addr: addr, dex: d, largeTradeThreshold: meteoradlmm.DefaultLargeTradeThreshold}
	var err error
	switch d {
	case dex.MeteoraDlmm:
		h.dlmm, err = meteoradlmm.Decode(data)
	case dex.MeteoraDammV2:
		h.dammV2, err = meteoradammv2.Decode(data)
	case dex.RaydiumClmm:
		h.clmm, err = raydiumclmm.Decode(data)
	case dex.Whirlpool:
		h.whirlpool, err = whirlpool.Decode(data)
	case dex.RaydiumCpmm:
		h.cpmm, err = raydiumcpmm.Decode(data)
	case dex.PumpAmm:
		h.pumpAmm, err = pumpamm.Decode(data)
	default:
		return nil, types.UnsupportedProtocolError{Dex: d.String()}
	}
	if err != nil {
		return nil, err
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

func (h *Handle) DexType() dex.DexType {
	return h.dex
}

func (h *Handle) PoolAddress() solana.PublicKey {
	return h.addr
}

func (h *Handle) MintPair() dex.MintPair {
	switch h.dex {
	case dex.MeteoraDlmm:
		return h.dlmm.MintPair()
	case dex.MeteoraDammV2:
		return h.dammV2.MintPair()
	case dex.RaydiumClmm:
		return h.clmm.MintPair()
	case dex.Whirlpool:
		return h.whirlpool.MintPair()
	case dex.RaydiumCpmm:
		return h.cpmm.MintPair()
	default:
		return h.pumpAmm.MintPair()
	}
}

func (h *Handle) vaults() (base, quote solana.PublicKey) {
	switch h.dex {
	case dex.MeteoraDlmm:
		return h.dlmm.Vaults()
	case dex.MeteoraDammV2:
		return h.dammV2.Vaults()
	case dex.RaydiumClmm:
		return h.clmm.Vaults()
	case dex.Whirlpool:
		return h.whirlpool.Vaults()
	case dex.RaydiumCpmm:
		return h.cpmm.Vaults()
	default:
		return h.pumpAmm.Vaults()
	}
}

func (h *Handle) Identity() Identity {
	pair := h.MintPair()
	baseVault, quoteVault := h.vaults()
	return Identity{
		Address:    h.addr,
		Dex:        h.dex,
		BaseMint:   pair.Base,
		QuoteMint:  pair.Quote,
		BaseVault:  baseVault,
		QuoteVault: quoteVault,
	}
}

// State returns the decoded protocol state, e.g. *raydiumcpmm.PoolState.
func (h *Handle) State() any {
	switch h.dex {
	case dex.MeteoraDlmm:
		return h.dlmm
	case dex.MeteoraDammV2:
		return h.dammV2
	case dex.RaydiumClmm:
		return h.clmm
	case dex.Whirlpool:
		return h.whirlpool
	case dex.RaydiumCpmm:
		return h.cpmm
	default:
		return h.pumpAmm
	}
}

// BuildForSwap returns the ordered accounts of a swap from in to out.
func (h *Handle) BuildForSwap(ctx context.Context, mints dex.MintInfoProvider, payer, in, out solana.PublicKey, amountIn uint64) (dex.AccountList, error) {
	b, err := h.build(ctx, mints, payer, &dex.SwapRequest{InputMint: in, OutputMint: out, AmountIn: amountIn})
	if err != nil {
		return nil, err
	}
	return b.ToAccountList(), nil
}

// BuildDefault returns an account list without a concrete trade, using the
// default direction of each protocol.
func (h *Handle) BuildDefault(ctx context.Context, mints dex.MintInfoProvider, payer solana.PublicKey) (dex.AccountList, error) {
	b, err := h.build(ctx, mints, payer, nil)
	if err != nil {
		return nil, err
	}
	return b.ToAccountList(), nil
}

type accountBuilder interface {
	ToAccountList() dex.AccountList
}

// build dispatches to the protocol builder; a nil req builds the default
// accounts.
func (h *Handle) build(ctx context.Context, mints dex.MintInfoProvider, payer solana.PublicKey, req *dex.SwapRequest) (accountBuilder, error) {
	switch h.dex {
	case dex.MeteoraDlmm:
		if req == nil {
			return meteoradlmm.BuildDefault(ctx, mints, payer, h.addr, h.dlmm)
		}
		return meteoradlmm.BuildForSwapWithThreshold(ctx, mints, payer, h.addr, h.dlmm, *req, h.largeTradeThreshold)
	case dex.MeteoraDammV2:
		if req == nil {
			return meteoradammv2.BuildDefault(ctx, mints, payer, h.addr, h.dammV2)
		}
		return meteoradammv2.BuildForSwap(ctx, mints, payer, h.addr, h.dammV2, *req)
	case dex.RaydiumClmm:
		if req == nil {
			return raydiumclmm.BuildDefault(ctx, mints, payer, h.addr, h.clmm)
		}
		return raydiumclmm.BuildForSwap(ctx, mints, payer, h.addr, h.clmm, *req)
	case dex.Whirlpool:
		if req == nil {
			return whirlpool.BuildDefault(ctx, mints, payer, h.addr, h.whirlpool)
		}
		return whirlpool.BuildForSwap(ctx, mints, payer, h.addr, h.whirlpool, *req)
	case dex.RaydiumCpmm:
		if req == nil {
			return raydiumcpmm.BuildDefault(ctx, mints, payer, h.addr, h.cpmm)
		}
		return raydiumcpmm.BuildForSwap(ctx, mints, payer, h.addr, h.cpmm, *req)
	default:
		if req == nil {
			return pumpamm.BuildDefault(ctx, mints, payer, h.addr, h.pumpAmm)
		}
		return pumpamm.BuildForSwap(ctx, mints, payer, h.addr, h.pumpAmm, *req)
	}
}

// SwapInstruction builds an exact-input swap of amountIn from in to out that
// fails on-chain below minOut.
func (h *Handle) SwapInstruction(ctx context.Context, mints dex.MintInfoProvider, payer, in, out solana.PublicKey, amountIn, minOut uint64) (solana.Instruction, error) {
	baseIn, ok := h.MintPair().Direction(in, out)
	if !ok {
		return nil, dex.MintMismatch(h.dex, h.MintPair(), in, out)
	}
	b, err := h.build(ctx, mints, payer, &dex.SwapRequest{InputMint: in, OutputMint: out, AmountIn: amountIn})
	if err != nil {
		return nil, err
	}
	switch a := b.(type) {
	case *meteoradlmm.SwapAccounts:
		return meteoradlmm.NewSwapInstruction(a, meteoradlmm.SwapArgs{AmountIn: amountIn, MinAmountOut: minOut})
	case *meteoradammv2.SwapAccounts:
		return meteoradammv2.NewSwapInstruction(a, meteoradammv2.SwapArgs{AmountIn: amountIn, MinimumAmountOut: minOut})
	case *raydiumclmm.SwapAccounts:
		return raydiumclmm.NewSwapInstruction(a, amountIn, minOut)
	case *whirlpool.SwapAccounts:
		return whirlpool.NewSwapInstruction(a, baseIn, amountIn, minOut)
	case *raydiumcpmm.SwapAccounts:
		return raydiumcpmm.NewSwapInstruction(a, raydiumcpmm.SwapBaseInputArgs{AmountIn: amountIn, MinimumAmountOut: minOut})
	case *pumpamm.SwapAccounts:
		if baseIn {
			return pumpamm.NewSellInstruction(a, pumpamm.SellArgs{BaseAmountIn: amountIn, MinQuoteAmountOut: minOut})
		}
		return pumpamm.NewBuyExactQuoteInInstruction(a, pumpamm.BuyExactQuoteInArgs{SpendableQuoteIn: amountIn, MinBaseAmountOut: minOut})
	}
	return nil, fmt.Errorf("pool %s: no swap instruction for %s", h.addr, h.dex)
}

// RestoreFrom rebuilds the account list of an observed swap of protocol d.
func RestoreFrom(d dex.DexType, ix dex.ObservedInstruction) (dex.AccountList, error) {
	var (
		b   accountBuilder
		err error
	)
	switch d {
	case dex.MeteoraDlmm:
		b, err = meteoradlmm.RestoreFrom(ix)
	case dex.MeteoraDammV2:
		b, err = meteoradammv2.RestoreFrom(ix)
	case dex.RaydiumClmm:
		b, err = raydiumclmm.RestoreFrom(ix)
	case dex.Whirlpool:
		b, err = whirlpool.RestoreFrom(ix)
	case dex.RaydiumCpmm:
		b, err = raydiumcpmm.RestoreFrom(ix)
	case dex.PumpAmm:
		b, err = pumpamm.RestoreFrom(ix)
	default:
		return nil, types.UnsupportedProtocolError{Dex: d.String()}
	}
	if err != nil {
		return nil, err
	}
	return b.ToAccountList(), nil
}

// ParseSwapFromIx returns the pool an observed swap instruction trades on.
func ParseSwapFromIx(d dex.DexType, ix dex.ObservedInstruction) (solana.PublicKey, error) {
	switch d {
	case dex.MeteoraDlmm:
		return meteoradlmm.ParseSwapFromIx(ix)
	case dex.MeteoraDammV2:
		return meteoradammv2.ParseSwapFromIx(ix)
	case dex.RaydiumClmm:
		return raydiumclmm.ParseSwapFromIx(ix)
	case dex.Whirlpool:
		return whirlpool.ParseSwapFromIx(ix)
	case dex.RaydiumCpmm:
		return raydiumcpmm.ParseSwapFromIx(ix)
	case dex.PumpAmm:
		return pumpamm.ParseSwapFromIx(ix)
	}
	return solana.PublicKey{}, types.UnsupportedProtocolError{Dex: d.String()}
}

// DexTypeForProgram maps an instruction or account owner to its protocol.
func DexTypeForProgram(program solana.PublicKey) (dex.DexType, bool) {
	return dex.DexTypeForProgram(program)
}
