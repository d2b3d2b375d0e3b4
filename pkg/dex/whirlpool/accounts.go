package whirlpool

import (
	"context"
	"strconv"

	"github.com/gagliardetto/solana-go"

	"github.com/ninja0404/amm-go-sdk/pkg/constants"
	"github.com/ninja0404/amm-go-sdk/pkg/dex"
	"github.com/ninja0404/amm-go-sdk/pkg/types"
)

const (
	SwapAccountsLen = 15

	TickArraySize = 88
	MinTick       = -443636
	MaxTick       = 443636
)

// SwapAccounts are the swap_v2 accounts in program order. Token accounts
// are keyed by pool side, not by swap direction.
type SwapAccounts struct {
	TokenProgramA      solana.PublicKey
	TokenProgramB      solana.PublicKey
	MemoProgram        solana.PublicKey
	TokenAuthority     solana.PublicKey
	Whirlpool          solana.PublicKey
	TokenMintA         solana.PublicKey
	TokenMintB         solana.PublicKey
	TokenOwnerAccountA solana.PublicKey
	TokenVaultA        solana.PublicKey
	TokenOwnerAccountB solana.PublicKey
	TokenVaultB        solana.PublicKey
	TickArrays         [3]solana.PublicKey
	Oracle             solana.PublicKey
}

func (a *SwapAccounts) ToAccountList() dex.AccountList {
	return dex.AccountList{
		dex.ReadOnly(a.TokenProgramA),
		dex.ReadOnly(a.TokenProgramB),
		dex.ReadOnly(a.MemoProgram),
		dex.Signer(a.TokenAuthority),
		dex.Writable(a.Whirlpool),
		dex.ReadOnly(a.TokenMintA),
		dex.ReadOnly(a.TokenMintB),
		dex.Writable(a.TokenOwnerAccountA),
		dex.Writable(a.TokenVaultA),
		dex.Writable(a.TokenOwnerAccountB),
		dex.Writable(a.TokenVaultB),
		dex.Writable(a.TickArrays[0]),
		dex.Writable(a.TickArrays[1]),
		dex.Writable(a.TickArrays[2]),
		dex.Writable(a.Oracle),
	}
}

// BuildDefault builds accounts usable in either direction: the next array
// above, the current array and the next array below.
func BuildDefault(ctx context.Context, mints dex.MintInfoProvider, payer, pool solana.PublicKey, w *Whirlpool) (*SwapAccounts, error) {
	up := TickArrayWindow(w.TickCurrentIndex, w.TickSpacing, false)
	down := TickArrayWindow(w.TickCurrentIndex, w.TickSpacing, true)
	return build(ctx, mints, payer, pool, w, [3]int32{up[1], down[0], down[1]})
}

// BuildForSwap builds the accounts for req with the three tick arrays the
// price moves through.
func BuildForSwap(ctx context.Context, mints dex.MintInfoProvider, payer, pool solana.PublicKey, w *Whirlpool, req dex.SwapRequest) (*SwapAccounts, error) {
	aToB, ok := w.MintPair().Direction(req.InputMint, req.OutputMint)
	if !ok {
		return nil, dex.MintMismatch(dex.Whirlpool, w.MintPair(), req.InputMint, req.OutputMint)
	}
	return build(ctx, mints, payer, pool, w, TickArrayWindow(w.TickCurrentIndex, w.TickSpacing, aToB))
}

func build(ctx context.Context, mints dex.MintInfoProvider, payer, pool solana.PublicKey, w *Whirlpool, starts [3]int32) (*SwapAccounts, error) {
	programs, err := dex.TokenPrograms(ctx, dex.Whirlpool, mints, w.TokenMintA, w.TokenMintB)
	if err != nil {
		return nil, err
	}
	a := &SwapAccounts{
		TokenProgramA:  programs[0],
		TokenProgramB:  programs[1],
		MemoProgram:    constants.MemoProgramID,
		TokenAuthority: payer,
		Whirlpool:      pool,
		TokenMintA:     w.TokenMintA,
		TokenMintB:     w.TokenMintB,
		TokenVaultA:    w.TokenVaultA,
		TokenVaultB:    w.TokenVaultB,
	}
	if a.TokenOwnerAccountA, err = dex.FindATA(payer, w.TokenMintA, programs[0]); err != nil {
		return nil, err
	}
	if a.TokenOwnerAccountB, err = dex.FindATA(payer, w.TokenMintB, programs[1]); err != nil {
		return nil, err
	}
	for i, start := range starts {
		if a.TickArrays[i], err = TickArrayPDA(pool, start); err != nil {
			return nil, err
		}
	}
	if a.Oracle, err = OraclePDA(pool); err != nil {
		return nil, err
	}
	return a, nil
}

// TickArrayStartIndex is the first tick of the array holding tick.
func TickArrayStartIndex(tick int32, tickSpacing uint16) int32 {
	size := TickArraySize * int32(tickSpacing)
	rem := tick % size
	if tick < 0 && rem != 0 {
		return tick - rem - size
	}
	return tick - rem
}

// TickArrayWindow returns the start ticks of the three arrays a swap walks.
// b->a starts from the tick one spacing up, since the price may sit on the
// boundary of the next array. Once the walk would leave the tick range the
// last valid array is repeated.
func TickArrayWindow(tick int32, tickSpacing uint16, aToB bool) [3]int32 {
	size := TickArraySize * int32(tickSpacing)
	step := size
	if aToB {
		step = -size
	} else {
		tick += int32(tickSpacing)
	}
	var out [3]int32
	out[0] = TickArrayStartIndex(tick, tickSpacing)
	for i := 1; i < len(out); i++ {
		next := out[i-1] + step
		if next+size <= MinTick || next > MaxTick {
			next = out[i-1]
		}
		out[i] = next
	}
	return out
}

// TickArrayPDA derives ["tick_array", pool, start as a decimal string].
func TickArrayPDA(pool solana.PublicKey, start int32) (solana.PublicKey, error) {
	return dex.FindPDA(constants.WhirlpoolProgramID, []byte(constants.SeedTickArray), pool.Bytes(), []byte(strconv.Itoa(int(start))))
}

// OraclePDA derives ["oracle", pool].
func OraclePDA(pool solana.PublicKey) (solana.PublicKey, error) {
	return dex.FindPDA(constants.WhirlpoolProgramID, []byte(constants.SeedOracle), pool.Bytes())
}

func RestoreFrom(ix dex.ObservedInstruction) (*SwapAccounts, error) {
	k := ix.Accounts
	if len(k) < SwapAccountsLen {
		return nil, types.InsufficientAccounts(dex.Whirlpool.String(), SwapAccountsLen, len(k))
	}
	return &SwapAccounts{
		TokenProgramA:      k[0],
		TokenProgramB:      k[1],
		MemoProgram:        k[2],
		TokenAuthority:     k[3],
		Whirlpool:          k[4],
		TokenMintA:         k[5],
		TokenMintB:         k[6],
		TokenOwnerAccountA: k[7],
		TokenVaultA:        k[8],
		TokenOwnerAccountB: k[9],
		TokenVaultB:        k[10],
		TickArrays:         [3]solana.PublicKey{k[11], k[12], k[13]},
		Oracle:             k[14],
	}, nil
}

// ParseSwapFromIx returns the pool of an observed swap_v2. The v1 swap has
// no memo program, so index 2 tells the layouts apart.
func ParseSwapFromIx(ix dex.ObservedInstruction) (solana.PublicKey, error) {
	if !ix.ProgramID.Equals(constants.WhirlpoolProgramID) {
		return solana.PublicKey{}, types.NewValidationError("program", "not the whirlpool program: "+ix.ProgramID.String())
	}
	if len(ix.Accounts) < SwapAccountsLen {
		return solana.PublicKey{}, types.InsufficientAccounts(dex.Whirlpool.String(), SwapAccountsLen, len(ix.Accounts))
	}
	if !ix.Account(2).Equals(constants.MemoProgramID) {
		return solana.PublicKey{}, types.NewValidationError("memo_program", "not a swap_v2 account layout")
	}
	return ix.Account(4), nil
}
