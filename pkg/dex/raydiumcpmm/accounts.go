package raydiumcpmm

import (
	"context"

	"github.com/gagliardetto/solana-go"

	"github.com/ninja0404/amm-go-sdk/pkg/constants"
	"github.com/ninja0404/amm-go-sdk/pkg/dex"
	"github.com/ninja0404/amm-go-sdk/pkg/types"
)

// SwapAccountsLen is the account count of swap_base_input.
const SwapAccountsLen = 13

// SwapAccounts are the accounts of swap_base_input in program order.
type SwapAccounts struct {
	Payer              solana.PublicKey
	Authority          solana.PublicKey
	AmmConfig          solana.PublicKey
	PoolState          solana.PublicKey
	InputTokenAccount  solana.PublicKey
	OutputTokenAccount solana.PublicKey
	InputVault         solana.PublicKey
	OutputVault        solana.PublicKey
	InputTokenProgram  solana.PublicKey
	OutputTokenProgram solana.PublicKey
	InputTokenMint     solana.PublicKey
	OutputTokenMint    solana.PublicKey
	ObservationState   solana.PublicKey
}

func (a *SwapAccounts) ToAccountList() dex.AccountList {
	return dex.AccountList{
		dex.Signer(a.Payer),
		dex.ReadOnly(a.Authority),
		dex.ReadOnly(a.AmmConfig),
		dex.Writable(a.PoolState),
		dex.Writable(a.InputTokenAccount),
		dex.Writable(a.OutputTokenAccount),
		dex.Writable(a.InputVault),
		dex.Writable(a.OutputVault),
		dex.ReadOnly(a.InputTokenProgram),
		dex.ReadOnly(a.OutputTokenProgram),
		dex.ReadOnly(a.InputTokenMint),
		dex.ReadOnly(a.OutputTokenMint),
		dex.Writable(a.ObservationState),
	}
}

// BuildDefault builds a token0 -> token1 swap.
func BuildDefault(ctx context.Context, mints dex.MintInfoProvider, payer, pool solana.PublicKey, s *PoolState) (*SwapAccounts, error) {
	return BuildForSwap(ctx, mints, payer, pool, s, dex.SwapRequest{InputMint: s.Token0Mint, OutputMint: s.Token1Mint})
}

// BuildForSwap builds the accounts for req. The pool records the token
// program of each mint; mints is consulted only when a record is empty.
func BuildForSwap(ctx context.Context, mints dex.MintInfoProvider, payer, pool solana.PublicKey, s *PoolState, req dex.SwapRequest) (*SwapAccounts, error) {
	zeroForOne, ok := s.MintPair().Direction(req.InputMint, req.OutputMint)
	if !ok {
		return nil, dex.MintMismatch(dex.RaydiumCpmm, s.MintPair(), req.InputMint, req.OutputMint)
	}
	program0, program1, err := s.tokenPrograms(ctx, mints)
	if err != nil {
		return nil, err
	}

	a := &SwapAccounts{
		Payer:            payer,
		Authority:        constants.RaydiumCpmmAuthority,
		AmmConfig:        s.AmmConfig,
		PoolState:        pool,
		ObservationState: s.ObservationKey,
	}
	if zeroForOne {
		a.InputVault, a.OutputVault = s.Token0Vault, s.Token1Vault
		a.InputTokenProgram, a.OutputTokenProgram = program0, program1
		a.InputTokenMint, a.OutputTokenMint = s.Token0Mint, s.Token1Mint
	} else {
		a.InputVault, a.OutputVault = s.Token1Vault, s.Token0Vault
		a.InputTokenProgram, a.OutputTokenProgram = program1, program0
		a.InputTokenMint, a.OutputTokenMint = s.Token1Mint, s.Token0Mint
	}
	if a.InputTokenAccount, err = dex.FindATA(payer, a.InputTokenMint, a.InputTokenProgram); err != nil {
		return nil, err
	}
	if a.OutputTokenAccount, err = dex.FindATA(payer, a.OutputTokenMint, a.OutputTokenProgram); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *PoolState) tokenPrograms(ctx context.Context, mints dex.MintInfoProvider) (solana.PublicKey, solana.PublicKey, error) {
	if !s.Token0Program.IsZero() && !s.Token1Program.IsZero() {
		return s.Token0Program, s.Token1Program, nil
	}
	programs, err := dex.TokenPrograms(ctx, dex.RaydiumCpmm, mints, s.Token0Mint, s.Token1Mint)
	if err != nil {
		return solana.PublicKey{}, solana.PublicKey{}, err
	}
	return programs[0], programs[1], nil
}

// RestoreFrom rebuilds SwapAccounts from an observed swap_base_input.
func RestoreFrom(ix dex.ObservedInstruction) (*SwapAccounts, error) {
	if len(ix.Accounts) < SwapAccountsLen {
		return nil, types.InsufficientAccounts(dex.RaydiumCpmm.String(), SwapAccountsLen, len(ix.Accounts))
	}
	k := ix.Accounts
	return &SwapAccounts{
		Payer:              k[0],
		Authority:          k[1],
		AmmConfig:          k[2],
		PoolState:          k[3],
		InputTokenAccount:  k[4],
		OutputTokenAccount: k[5],
		InputVault:         k[6],
		OutputVault:        k[7],
		InputTokenProgram:  k[8],
		OutputTokenProgram: k[9],
		InputTokenMint:     k[10],
		OutputTokenMint:    k[11],
		ObservationState:   k[12],
	}, nil
}

// ParseSwapFromIx returns the pool of an observed swap after checking the
// program and the CPMM authority.
func ParseSwapFromIx(ix dex.ObservedInstruction) (solana.PublicKey, error) {
	if !ix.ProgramID.Equals(constants.RaydiumCpmmProgramID) {
		return solana.PublicKey{}, types.NewValidationError("program", "not the raydium cpmm program: "+ix.ProgramID.String())
	}
	if len(ix.Accounts) < SwapAccountsLen-1 {
		return solana.PublicKey{}, types.InsufficientAccounts(dex.RaydiumCpmm.String(), SwapAccountsLen-1, len(ix.Accounts))
	}
	if !ix.Account(1).Equals(constants.RaydiumCpmmAuthority) {
		return solana.PublicKey{}, types.NewValidationError("authority", "unexpected cpmm authority "+ix.Account(1).String())
	}
	return ix.Account(3), nil
}
