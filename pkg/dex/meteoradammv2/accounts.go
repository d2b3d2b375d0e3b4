package meteoradammv2

import (
	"context"

	"github.com/gagliardetto/solana-go"

	"github.com/ninja0404/amm-go-sdk/pkg/constants"
	"github.com/ninja0404/amm-go-sdk/pkg/dex"
	"github.com/ninja0404/amm-go-sdk/pkg/types"
)

const SwapAccountsLen = 14

// SwapAccounts are the accounts of swap in program order. Referral is the
// program id when no referral token account is used.
type SwapAccounts struct {
	PoolAuthority      solana.PublicKey
	Pool               solana.PublicKey
	InputTokenAccount  solana.PublicKey
	OutputTokenAccount solana.PublicKey
	TokenAVault        solana.PublicKey
	TokenBVault        solana.PublicKey
	TokenAMint         solana.PublicKey
	TokenBMint         solana.PublicKey
	Payer              solana.PublicKey
	TokenAProgram      solana.PublicKey
	TokenBProgram      solana.PublicKey
	Referral           solana.PublicKey
	EventAuthority     solana.PublicKey
	Program            solana.PublicKey
}

func (a *SwapAccounts) ToAccountList() dex.AccountList {
	referral := dex.ReadOnly(a.Referral)
	if !a.Referral.Equals(a.Program) {
		referral = dex.Writable(a.Referral)
	}
	return dex.AccountList{
		dex.ReadOnly(a.PoolAuthority),
		dex.Writable(a.Pool),
		dex.Writable(a.InputTokenAccount),
		dex.Writable(a.OutputTokenAccount),
		dex.Writable(a.TokenAVault),
		dex.Writable(a.TokenBVault),
		dex.ReadOnly(a.TokenAMint),
		dex.ReadOnly(a.TokenBMint),
		dex.Signer(a.Payer),
		dex.ReadOnly(a.TokenAProgram),
		dex.ReadOnly(a.TokenBProgram),
		referral,
		dex.ReadOnly(a.EventAuthority),
		dex.ReadOnly(a.Program),
	}
}

// BuildDefault builds an a -> b swap.
func BuildDefault(ctx context.Context, mints dex.MintInfoProvider, payer, pool solana.PublicKey, p *Pool) (*SwapAccounts, error) {
	return BuildForSwap(ctx, mints, payer, pool, p, dex.SwapRequest{InputMint: p.TokenAMint, OutputMint: p.TokenBMint})
}

// BuildForSwap builds the accounts for req. Vaults stay in a/b order; only
// the payer's token accounts follow the direction. Token programs come from
// mints when a provider is given and from the pool's token flags otherwise.
func BuildForSwap(ctx context.Context, mints dex.MintInfoProvider, payer, pool solana.PublicKey, p *Pool, req dex.SwapRequest) (*SwapAccounts, error) {
	aToB, ok := p.MintPair().Direction(req.InputMint, req.OutputMint)
	if !ok {
		return nil, dex.MintMismatch(dex.MeteoraDammV2, p.MintPair(), req.InputMint, req.OutputMint)
	}
	programA, programB := p.TokenPrograms()
	if mints != nil {
		programs, err := dex.TokenPrograms(ctx, dex.MeteoraDammV2, mints, p.TokenAMint, p.TokenBMint)
		if err != nil {
			return nil, err
		}
		programA, programB = programs[0], programs[1]
	}

	a := &SwapAccounts{
		PoolAuthority:  constants.MeteoraDammV2PoolAuthority,
		Pool:           pool,
		TokenAVault:    p.TokenAVault,
		TokenBVault:    p.TokenBVault,
		TokenAMint:     p.TokenAMint,
		TokenBMint:     p.TokenBMint,
		Payer:          payer,
		TokenAProgram:  programA,
		TokenBProgram:  programB,
		Referral:       constants.MeteoraDammV2ProgramID,
		EventAuthority: constants.MeteoraDammV2EventAuthority,
		Program:        constants.MeteoraDammV2ProgramID,
	}
	ataA, err := dex.FindATA(payer, p.TokenAMint, programA)
	if err != nil {
		return nil, err
	}
	ataB, err := dex.FindATA(payer, p.TokenBMint, programB)
	if err != nil {
		return nil, err
	}
	if aToB {
		a.InputTokenAccount, a.OutputTokenAccount = ataA, ataB
	} else {
		a.InputTokenAccount, a.OutputTokenAccount = ataB, ataA
	}
	return a, nil
}

// RestoreFrom rebuilds SwapAccounts from an observed swap.
func RestoreFrom(ix dex.ObservedInstruction) (*SwapAccounts, error) {
	k := ix.Accounts
	if len(k) < SwapAccountsLen {
		return nil, types.InsufficientAccounts(dex.MeteoraDammV2.String(), SwapAccountsLen, len(k))
	}
	return &SwapAccounts{
		PoolAuthority:      k[0],
		Pool:               k[1],
		InputTokenAccount:  k[2],
		OutputTokenAccount: k[3],
		TokenAVault:        k[4],
		TokenBVault:        k[5],
		TokenAMint:         k[6],
		TokenBMint:         k[7],
		Payer:              k[8],
		TokenAProgram:      k[9],
		TokenBProgram:      k[10],
		Referral:           k[11],
		EventAuthority:     k[12],
		Program:            k[13],
	}, nil
}

// ParseSwapFromIx returns the pool of an observed swap.
func ParseSwapFromIx(ix dex.ObservedInstruction) (solana.PublicKey, error) {
	if !ix.ProgramID.Equals(constants.MeteoraDammV2ProgramID) {
		return solana.PublicKey{}, types.NewValidationError("program", "not the meteora damm v2 program: "+ix.ProgramID.String())
	}
	if len(ix.Accounts) < 2 {
		return solana.PublicKey{}, types.InsufficientAccounts(dex.MeteoraDammV2.String(), 2, len(ix.Accounts))
	}
	if !ix.Account(0).Equals(constants.MeteoraDammV2PoolAuthority) {
		return solana.PublicKey{}, types.NewValidationError("pool_authority", "unexpected damm v2 pool authority "+ix.Account(0).String())
	}
	return ix.Account(1), nil
}
