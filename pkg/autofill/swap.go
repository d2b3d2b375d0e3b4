// Package autofill turns a pool handle and a payer into the complete
// instruction set of a swap: compute budget, idempotent ATA creation,
// WSOL wrap, the swap itself and the WSOL unwrap.
package autofill

import (
	"context"
	"encoding/json"

	"github.com/gagliardetto/solana-go"
	"github.com/rs/zerolog"

	"github.com/ninja0404/amm-go-sdk/pkg/constants"
	"github.com/ninja0404/amm-go-sdk/pkg/dex"
	"github.com/ninja0404/amm-go-sdk/pkg/pool"
	"github.com/ninja0404/amm-go-sdk/pkg/rpc"
	"github.com/ninja0404/amm-go-sdk/pkg/types"
)

// Pump AMM swap account positions whose quote-mint ATAs must exist.
const (
	pumpQuoteMintIndex             = 4
	pumpProtocolFeeRecipientIndex  = 9
	pumpQuoteProgramIndex          = 12
	pumpCreatorVaultAuthorityIndex = 18
)

// Plan is a swap split into the phases of its transaction.
type Plan struct {
	Setup   []solana.Instruction
	Swap    solana.Instruction
	Cleanup []solana.Instruction

	InputATA     solana.PublicKey
	OutputATA    solana.PublicKey
	InputBalance uint64 // input ATA balance before the swap
	WrapLamports uint64
}

// Instructions returns Setup, Swap and Cleanup in transaction order.
func (p *Plan) Instructions() []solana.Instruction {
	out := make([]solana.Instruction, 0, len(p.Setup)+1+len(p.Cleanup))
	out = append(out, p.Setup...)
	out = append(out, p.Swap)
	return append(out, p.Cleanup...)
}

// Swap builds everything payer needs to swap amountIn of in for at least
// minOut of out on h.
//
// It:
//   - creates missing payer ATAs (and Pump AMM fee ATAs) idempotently
//   - wraps only the SOL the WSOL account is short of
//   - closes the WSOL account afterwards unless WithKeepWSOL is set
func Swap(
	ctx context.Context,
	fetcher rpc.AccountFetcher,
	mints dex.MintInfoProvider,
	h *pool.Handle,
	payer, in, out solana.PublicKey,
	amountIn, minOut uint64,
	opts ...Option,
) (*Plan, error) {
	// Input validation
	if fetcher == nil {
		return nil, types.ErrNilRPC
	}
	if mints == nil {
		return nil, types.ErrNilMintProvider
	}
	if err := types.ValidatePublicKey("payer", payer); err != nil {
		return nil, err
	}
	if err := types.ValidateSwapParams(in, out, amountIn); err != nil {
		return nil, err
	}

	options := &Options{Logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(options)
	}
	known := make(map[solana.PublicKey]bool, len(options.KnownATAs))
	for _, k := range options.KnownATAs {
		known[k] = true
	}

	progs, err := dex.TokenPrograms(ctx, h.DexType(), mints, in, out)
	if err != nil {
		return nil, err
	}
	inProgram, outProgram := progs[0], progs[1]

	swapIx, err := h.SwapInstruction(ctx, mints, payer, in, out, amountIn, minOut)
	if err != nil {
		return nil, err
	}

	ataReqs := []ataRequest{
		{Payer: payer, Wallet: payer, Mint: in, TokenProgram: inProgram},
		{Payer: payer, Wallet: payer, Mint: out, TokenProgram: outProgram},
	}
	if h.DexType() == dex.PumpAmm {
		ataReqs = append(ataReqs, pumpFeeATAs(payer, swapIx.Accounts())...)
	}
	ataResult, err := ensureATABatchWithBalances(ctx, fetcher, ataReqs, known)
	if err != nil {
		return nil, err
	}

	plan := &Plan{Swap: swapIx}
	if plan.InputATA, err = dex.FindATA(payer, in, inProgram); err != nil {
		return nil, err
	}
	if plan.OutputATA, err = dex.FindATA(payer, out, outProgram); err != nil {
		return nil, err
	}
	plan.InputBalance = ataResult.Balances[plan.InputATA]

	if plan.Setup, err = buildComputeBudget(options); err != nil {
		return nil, err
	}
	plan.Setup = append(plan.Setup, ataResult.Instructions...)

	// wrap SOL -> WSOL, only the shortfall
	if in.Equals(constants.WSOLMint) && amountIn > plan.InputBalance {
		plan.WrapLamports = amountIn - plan.InputBalance
		plan.Setup = append(plan.Setup, buildWrapWSOL(payer, plan.InputATA, plan.WrapLamports)...)
	}

	switch {
	case options.KeepWSOL:
	case in.Equals(constants.WSOLMint):
		plan.Cleanup = append(plan.Cleanup, buildCloseAccount(plan.InputATA, payer, payer, inProgram))
	case out.Equals(constants.WSOLMint):
		plan.Cleanup = append(plan.Cleanup, buildCloseAccount(plan.OutputATA, payer, payer, outProgram))
	}
	if options.CloseInputATA && !in.Equals(constants.WSOLMint) {
		plan.Cleanup = append(plan.Cleanup, buildCloseAccount(plan.InputATA, payer, payer, inProgram))
	}

	if options.Preview != nil {
		err := json.NewEncoder(options.Preview).Encode(struct {
			Pool         solana.PublicKey `json:"pool"`
			Dex          dex.DexType      `json:"dex"`
			AmountIn     uint64           `json:"amountIn"`
			MinOut       uint64           `json:"minOut"`
			InputATA     solana.PublicKey `json:"inputAta"`
			OutputATA    solana.PublicKey `json:"outputAta"`
			WrapLamports uint64           `json:"wrapLamports"`
			Instructions int              `json:"instructions"`
		}{h.PoolAddress(), h.DexType(), amountIn, minOut, plan.InputATA, plan.OutputATA, plan.WrapLamports, len(plan.Instructions())})
		if err != nil {
			options.Logger.Warn().Err(err).Str("pool", h.PoolAddress().String()).Msg("write swap preview")
		}
	}
	return plan, nil
}

// pumpFeeATAs returns the protocol fee recipient and coin creator vault
// quote ATAs a Pump AMM swap writes to.
func pumpFeeATAs(payer solana.PublicKey, metas solana.AccountMetaSlice) []ataRequest {
	if len(metas) <= pumpCreatorVaultAuthorityIndex {
		return nil
	}
	quoteMint := metas[pumpQuoteMintIndex].PublicKey
	quoteProgram := metas[pumpQuoteProgramIndex].PublicKey
	return []ataRequest{
		{Payer: payer, Wallet: metas[pumpProtocolFeeRecipientIndex].PublicKey, Mint: quoteMint, TokenProgram: quoteProgram},
		{Payer: payer, Wallet: metas[pumpCreatorVaultAuthorityIndex].PublicKey, Mint: quoteMint, TokenProgram: quoteProgram},
	}
}
