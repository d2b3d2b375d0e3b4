package meteoradlmm

import (
	"context"
	"encoding/binary"

	"github.com/gagliardetto/solana-go"

	"github.com/ninja0404/amm-go-sdk/pkg/constants"
	"github.com/ninja0404/amm-go-sdk/pkg/dex"
	"github.com/ninja0404/amm-go-sdk/pkg/types"
)

const (
	SwapAccountsLen = 15

	// DefaultLargeTradeThreshold is the input amount from which swaps carry
	// five bin arrays instead of three.
	DefaultLargeTradeThreshold = 1_000_000_000

	smallTradeArrays = 3
	largeTradeArrays = 5
)

// SwapAccounts are the accounts of swap in program order followed by the bin
// arrays the swap may cross. Optional accounts hold the program id when unused.
type SwapAccounts struct {
	LbPair                  solana.PublicKey
	BinArrayBitmapExtension solana.PublicKey
	ReserveX                solana.PublicKey
	ReserveY                solana.PublicKey
	UserTokenIn             solana.PublicKey
	UserTokenOut            solana.PublicKey
	TokenXMint              solana.PublicKey
	TokenYMint              solana.PublicKey
	Oracle                  solana.PublicKey
	HostFeeIn               solana.PublicKey
	User                    solana.PublicKey
	TokenXProgram           solana.PublicKey
	TokenYProgram           solana.PublicKey
	EventAuthority          solana.PublicKey
	Program                 solana.PublicKey
	BinArrays               []solana.PublicKey
}

func (a *SwapAccounts) ToAccountList() dex.AccountList {
	hostFee := dex.ReadOnly(a.HostFeeIn)
	if !a.HostFeeIn.Equals(a.Program) {
		hostFee = dex.Writable(a.HostFeeIn)
	}
	list := dex.AccountList{
		dex.Writable(a.LbPair),
		dex.ReadOnly(a.BinArrayBitmapExtension),
		dex.Writable(a.ReserveX),
		dex.Writable(a.ReserveY),
		dex.Writable(a.UserTokenIn),
		dex.Writable(a.UserTokenOut),
		dex.ReadOnly(a.TokenXMint),
		dex.ReadOnly(a.TokenYMint),
		dex.Writable(a.Oracle),
		hostFee,
		dex.Signer(a.User),
		dex.ReadOnly(a.TokenXProgram),
		dex.ReadOnly(a.TokenYProgram),
		dex.ReadOnly(a.EventAuthority),
		dex.ReadOnly(a.Program),
	}
	for _, arr := range a.BinArrays {
		list = append(list, dex.Writable(arr))
	}
	return list
}

// BuildDefault builds an X -> Y swap around the active array.
func BuildDefault(ctx context.Context, mints dex.MintInfoProvider, payer, pair solana.PublicKey, p *LbPair) (*SwapAccounts, error) {
	cur := BinArrayIndex(p.ActiveId)
	indexes := p.clampArrays([]int64{cur - 1, cur, cur + 1})
	return build(ctx, mints, payer, pair, p, dex.SwapRequest{InputMint: p.TokenXMint, OutputMint: p.TokenYMint}, indexes)
}

// BuildForSwap builds the accounts for req with DefaultLargeTradeThreshold.
func BuildForSwap(ctx context.Context, mints dex.MintInfoProvider, payer, pair solana.PublicKey, p *LbPair, req dex.SwapRequest) (*SwapAccounts, error) {
	return BuildForSwapWithThreshold(ctx, mints, payer, pair, p, req, DefaultLargeTradeThreshold)
}

// BuildForSwapWithThreshold builds the accounts for req. Trades of at least
// threshold get a wider bin array window.
func BuildForSwapWithThreshold(ctx context.Context, mints dex.MintInfoProvider, payer, pair solana.PublicKey, p *LbPair, req dex.SwapRequest, threshold uint64) (*SwapAccounts, error) {
	xToY, ok := p.MintPair().Direction(req.InputMint, req.OutputMint)
	if !ok {
		return nil, dex.MintMismatch(dex.MeteoraDlmm, p.MintPair(), req.InputMint, req.OutputMint)
	}
	count := smallTradeArrays
	if req.AmountIn >= threshold {
		count = largeTradeArrays
	}
	return build(ctx, mints, payer, pair, p, req, p.BinArrayWindow(xToY, count))
}

func build(ctx context.Context, mints dex.MintInfoProvider, payer, pair solana.PublicKey, p *LbPair, req dex.SwapRequest, indexes []int64) (*SwapAccounts, error) {
	xToY, ok := p.MintPair().Direction(req.InputMint, req.OutputMint)
	if !ok {
		return nil, dex.MintMismatch(dex.MeteoraDlmm, p.MintPair(), req.InputMint, req.OutputMint)
	}
	programX, programY := p.TokenPrograms()
	if mints != nil {
		programs, err := dex.TokenPrograms(ctx, dex.MeteoraDlmm, mints, p.TokenXMint, p.TokenYMint)
		if err != nil {
			return nil, err
		}
		programX, programY = programs[0], programs[1]
	}

	a := &SwapAccounts{
		LbPair:                  pair,
		BinArrayBitmapExtension: constants.MeteoraDlmmProgramID,
		ReserveX:                p.ReserveX,
		ReserveY:                p.ReserveY,
		TokenXMint:              p.TokenXMint,
		TokenYMint:              p.TokenYMint,
		Oracle:                  p.Oracle,
		HostFeeIn:               constants.MeteoraDlmmProgramID,
		User:                    payer,
		TokenXProgram:           programX,
		TokenYProgram:           programY,
		EventAuthority:          constants.MeteoraDlmmEventAuthority,
		Program:                 constants.MeteoraDlmmProgramID,
	}
	ataX, err := dex.FindATA(payer, p.TokenXMint, programX)
	if err != nil {
		return nil, err
	}
	ataY, err := dex.FindATA(payer, p.TokenYMint, programY)
	if err != nil {
		return nil, err
	}
	if xToY {
		a.UserTokenIn, a.UserTokenOut = ataX, ataY
	} else {
		a.UserTokenIn, a.UserTokenOut = ataY, ataX
	}

	for _, idx := range indexes {
		if idx < MinBitmapArrayIndex || idx > MaxBitmapArrayIndex {
			if a.BinArrayBitmapExtension, err = BitmapExtensionPDA(pair); err != nil {
				return nil, err
			}
		}
		arr, err := BinArrayPDA(pair, idx)
		if err != nil {
			return nil, err
		}
		a.BinArrays = append(a.BinArrays, arr)
	}
	return a, nil
}

// BinArrayWindow returns count array indexes starting at the active array and
// moving the way the price moves: down for X -> Y, up for Y -> X. Indexes are
// clamped to the pair's bin range.
func (p *LbPair) BinArrayWindow(xToY bool, count int) []int64 {
	step := int64(1)
	if xToY {
		step = -1
	}
	cur := BinArrayIndex(p.ActiveId)
	indexes := make([]int64, 0, count)
	for i := 0; i < count; i++ {
		indexes = append(indexes, cur+int64(i)*step)
	}
	return p.clampArrays(indexes)
}

func (p *LbPair) clampArrays(indexes []int64) []int64 {
	lo, hi := BinArrayIndex(p.Parameters.MinBinId), BinArrayIndex(p.Parameters.MaxBinId)
	if lo > hi {
		return indexes
	}
	seen := make(map[int64]struct{}, len(indexes))
	out := indexes[:0]
	for _, idx := range indexes {
		idx = max(lo, min(idx, hi))
		if _, dup := seen[idx]; dup {
			continue
		}
		seen[idx] = struct{}{}
		out = append(out, idx)
	}
	return out
}

// BinArrayPDA derives ["bin_array", pair, index as i64 LE].
func BinArrayPDA(pair solana.PublicKey, index int64) (solana.PublicKey, error) {
	var le [8]byte
	binary.LittleEndian.PutUint64(le[:], uint64(index))
	return dex.FindPDA(constants.MeteoraDlmmProgramID, []byte(constants.SeedBinArray), pair.Bytes(), le[:])
}

// BitmapExtensionPDA derives ["bitmap_extension", pair].
func BitmapExtensionPDA(pair solana.PublicKey) (solana.PublicKey, error) {
	return dex.FindPDA(constants.MeteoraDlmmProgramID, []byte(constants.SeedBitmapExtension), pair.Bytes())
}

// RestoreFrom rebuilds SwapAccounts from an observed swap; accounts past the
// fixed prefix are bin arrays.
func RestoreFrom(ix dex.ObservedInstruction) (*SwapAccounts, error) {
	k := ix.Accounts
	if len(k) < SwapAccountsLen {
		return nil, types.InsufficientAccounts(dex.MeteoraDlmm.String(), SwapAccountsLen, len(k))
	}
	return &SwapAccounts{
		LbPair:                  k[0],
		BinArrayBitmapExtension: k[1],
		ReserveX:                k[2],
		ReserveY:                k[3],
		UserTokenIn:             k[4],
		UserTokenOut:            k[5],
		TokenXMint:              k[6],
		TokenYMint:              k[7],
		Oracle:                  k[8],
		HostFeeIn:               k[9],
		User:                    k[10],
		TokenXProgram:           k[11],
		TokenYProgram:           k[12],
		EventAuthority:          k[13],
		Program:                 k[14],
		BinArrays:               append([]solana.PublicKey(nil), k[SwapAccountsLen:]...),
	}, nil
}

// ParseSwapFromIx returns the pair of an observed swap.
func ParseSwapFromIx(ix dex.ObservedInstruction) (solana.PublicKey, error) {
	if !ix.ProgramID.Equals(constants.MeteoraDlmmProgramID) {
		return solana.PublicKey{}, types.NewValidationError("program", "not the meteora dlmm program: "+ix.ProgramID.String())
	}
	if len(ix.Accounts) < SwapAccountsLen {
		return solana.PublicKey{}, types.InsufficientAccounts(dex.MeteoraDlmm.String(), SwapAccountsLen, len(ix.Accounts))
	}
	if !ix.Account(13).Equals(constants.MeteoraDlmmEventAuthority) {
		return solana.PublicKey{}, types.NewValidationError("event_authority", "unexpected dlmm event authority "+ix.Account(13).String())
	}
	return ix.Account(0), nil
}
