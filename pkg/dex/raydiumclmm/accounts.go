package raydiumclmm

import (
	"context"
	"encoding/binary"

	"github.com/gagliardetto/solana-go"

	"github.com/ninja0404/amm-go-sdk/pkg/constants"
	"github.com/ninja0404/amm-go-sdk/pkg/dex"
	"github.com/ninja0404/amm-go-sdk/pkg/types"
)

const (
	SwapAccountsLen = 14

	TickArraySize = 60
	MinTick       = -443636
	MaxTick       = 443636
)

// SwapAccounts are the accounts of swap_v2 in program order followed by the
// tick arrays.
type SwapAccounts struct {
	Payer              solana.PublicKey
	AmmConfig          solana.PublicKey
	PoolState          solana.PublicKey
	InputTokenAccount  solana.PublicKey
	OutputTokenAccount solana.PublicKey
	InputVault         solana.PublicKey
	OutputVault        solana.PublicKey
	ObservationState   solana.PublicKey
	TokenProgram       solana.PublicKey
	TokenProgram2022   solana.PublicKey
	MemoProgram        solana.PublicKey
	InputVaultMint     solana.PublicKey
	OutputVaultMint    solana.PublicKey
	BitmapExtension    solana.PublicKey
	TickArrays         []solana.PublicKey
}

func (a *SwapAccounts) ToAccountList() dex.AccountList {
	list := dex.AccountList{
		dex.Signer(a.Payer),
		dex.ReadOnly(a.AmmConfig),
		dex.Writable(a.PoolState),
		dex.Writable(a.InputTokenAccount),
		dex.Writable(a.OutputTokenAccount),
		dex.Writable(a.InputVault),
		dex.Writable(a.OutputVault),
		dex.Writable(a.ObservationState),
		dex.ReadOnly(a.TokenProgram),
		dex.ReadOnly(a.TokenProgram2022),
		dex.ReadOnly(a.MemoProgram),
		dex.ReadOnly(a.InputVaultMint),
		dex.ReadOnly(a.OutputVaultMint),
		dex.Writable(a.BitmapExtension),
	}
	for _, arr := range a.TickArrays {
		list = append(list, dex.Writable(arr))
	}
	return list
}

// BuildDefault builds a token0 -> token1 swap.
func BuildDefault(ctx context.Context, mints dex.MintInfoProvider, payer, pool solana.PublicKey, s *PoolState) (*SwapAccounts, error) {
	return BuildForSwap(ctx, mints, payer, pool, s, dex.SwapRequest{InputMint: s.TokenMint0, OutputMint: s.TokenMint1})
}

// BuildForSwap builds the accounts for req. The payer's token accounts are
// derived under each mint's owning program, so mints is required.
func BuildForSwap(ctx context.Context, mints dex.MintInfoProvider, payer, pool solana.PublicKey, s *PoolState, req dex.SwapRequest) (*SwapAccounts, error) {
	zeroForOne, ok := s.MintPair().Direction(req.InputMint, req.OutputMint)
	if !ok {
		return nil, dex.MintMismatch(dex.RaydiumClmm, s.MintPair(), req.InputMint, req.OutputMint)
	}
	programs, err := dex.TokenPrograms(ctx, dex.RaydiumClmm, mints, req.InputMint, req.OutputMint)
	if err != nil {
		return nil, err
	}

	a := &SwapAccounts{
		Payer:            payer,
		AmmConfig:        s.AmmConfig,
		PoolState:        pool,
		ObservationState: s.ObservationKey,
		TokenProgram:     constants.TokenProgramID,
		TokenProgram2022: constants.Token2022ProgramID,
		MemoProgram:      constants.MemoProgramID,
		InputVaultMint:   req.InputMint,
		OutputVaultMint:  req.OutputMint,
	}
	if zeroForOne {
		a.InputVault, a.OutputVault = s.TokenVault0, s.TokenVault1
	} else {
		a.InputVault, a.OutputVault = s.TokenVault1, s.TokenVault0
	}
	if a.InputTokenAccount, err = dex.FindATA(payer, req.InputMint, programs[0]); err != nil {
		return nil, err
	}
	if a.OutputTokenAccount, err = dex.FindATA(payer, req.OutputMint, programs[1]); err != nil {
		return nil, err
	}
	if a.BitmapExtension, err = BitmapExtensionPDA(pool); err != nil {
		return nil, err
	}
	for _, start := range TickArrayWindow(s.TickCurrent, s.TickSpacing, zeroForOne) {
		arr, err := TickArrayPDA(pool, start)
		if err != nil {
			return nil, err
		}
		a.TickArrays = append(a.TickArrays, arr)
	}
	return a, nil
}

// TickArrayStartIndex is the first tick of the array holding tick.
func TickArrayStartIndex(tick int32, tickSpacing uint16) int32 {
	size := TickArraySize * int32(tickSpacing)
	start := tick / size
	if tick < 0 && tick%size != 0 {
		start--
	}
	return start * size
}

// TickArrayWindow returns the current array, the next one in the swap
// direction and the previous one, skipping arrays beyond the tick bounds.
func TickArrayWindow(tick int32, tickSpacing uint16, zeroForOne bool) []int32 {
	size := TickArraySize * int32(tickSpacing)
	cur := TickArrayStartIndex(tick, tickSpacing)
	next, prev := cur+size, cur-size
	if zeroForOne {
		next, prev = prev, next
	}
	out := make([]int32, 0, 3)
	for _, start := range []int32{cur, next, prev} {
		if start+size <= MinTick || start > MaxTick {
			continue
		}
		out = append(out, start)
	}
	return out
}

// TickArrayPDA derives ["tick_array", pool, start as i32 BE].
func TickArrayPDA(pool solana.PublicKey, start int32) (solana.PublicKey, error) {
	var be [4]byte
	binary.BigEndian.PutUint32(be[:], uint32(start))
	return dex.FindPDA(constants.RaydiumClmmProgramID, []byte(constants.SeedTickArray), pool.Bytes(), be[:])
}

// BitmapExtensionPDA derives ["pool_tick_array_bitmap_extension", pool].
func BitmapExtensionPDA(pool solana.PublicKey) (solana.PublicKey, error) {
	return dex.FindPDA(constants.RaydiumClmmProgramID, []byte(constants.SeedTickArrayBitmapExtension), pool.Bytes())
}

func RestoreFrom(ix dex.ObservedInstruction) (*SwapAccounts, error) {
	k := ix.Accounts
	if len(k) < SwapAccountsLen {
		return nil, types.InsufficientAccounts(dex.RaydiumClmm.String(), SwapAccountsLen, len(k))
	}
	return &SwapAccounts{
		Payer:              k[0],
		AmmConfig:          k[1],
		PoolState:          k[2],
		InputTokenAccount:  k[3],
		OutputTokenAccount: k[4],
		InputVault:         k[5],
		OutputVault:        k[6],
		ObservationState:   k[7],
		TokenProgram:       k[8],
		TokenProgram2022:   k[9],
		MemoProgram:        k[10],
		InputVaultMint:     k[11],
		OutputVaultMint:    k[12],
		BitmapExtension:    k[13],
		TickArrays:         append([]solana.PublicKey(nil), k[SwapAccountsLen:]...),
	}, nil
}

// ParseSwapFromIx returns the pool of an observed swap_v2. The memo program
// at index 10 distinguishes it from the v1 swap layout.
func ParseSwapFromIx(ix dex.ObservedInstruction) (solana.PublicKey, error) {
	if !ix.ProgramID.Equals(constants.RaydiumClmmProgramID) {
		return solana.PublicKey{}, types.NewValidationError("program", "not the raydium clmm program: "+ix.ProgramID.String())
	}
	if len(ix.Accounts) < SwapAccountsLen {
		return solana.PublicKey{}, types.InsufficientAccounts(dex.RaydiumClmm.String(), SwapAccountsLen, len(ix.Accounts))
	}
	if !ix.Account(10).Equals(constants.MemoProgramID) {
		return solana.PublicKey{}, types.NewValidationError("memo_program", "not a swap_v2 account layout")
	}
	return ix.Account(2), nil
}
