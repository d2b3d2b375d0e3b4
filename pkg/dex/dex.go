// Package dex holds the primitives shared by every protocol package: the
// protocol tag, mint pairs, ordered account lists, observed instructions and
// the injected mint metadata lookup.
package dex

import (
	"context"
	"fmt"
	"strings"

	"github.com/gagliardetto/solana-go"

	"github.com/ninja0404/amm-go-sdk/pkg/constants"
	"github.com/ninja0404/amm-go-sdk/pkg/types"
)

// DexType tags one of the supported AMM protocols.
type DexType uint8

const (
	DexUnknown DexType = iota
	MeteoraDlmm
	MeteoraDammV2
	RaydiumClmm
	Whirlpool
	RaydiumCpmm
	PumpAmm
)

// All lists the supported protocols in tag order.
var All = []DexType{MeteoraDlmm, MeteoraDammV2, RaydiumClmm, Whirlpool, RaydiumCpmm, PumpAmm}

var dexNames = map[DexType]string{
	MeteoraDlmm:   "meteora_dlmm",
	MeteoraDammV2: "meteora_damm_v2",
	RaydiumClmm:   "raydium_clmm",
	Whirlpool:     "whirlpool",
	RaydiumCpmm:   "raydium_cpmm",
	PumpAmm:       "pump_amm",
}

func (d DexType) String() string {
	if name, ok := dexNames[d]; ok {
		return name
	}
	return fmt.Sprintf("dex(%d)", uint8(d))
}

// ParseDexType accepts the snake_case name, ignoring case and dashes.
func ParseDexType(s string) (DexType, error) {
	norm := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
	for d, name := range dexNames {
		if name == norm {
			return d, nil
		}
	}
	return DexUnknown, types.UnsupportedProtocolError{Dex: s}
}

func (d DexType) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *DexType) UnmarshalText(b []byte) error {
	v, err := ParseDexType(string(b))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// ExactQuote reports whether Quote follows the on-chain curve. The Meteora
// DLMM engine prices at the active bin only and is meant for screening.
func (d DexType) ExactQuote() bool {
	return d != MeteoraDlmm && d != DexUnknown
}

// ProgramID returns the on-chain program that owns the protocol's pools.
func (d DexType) ProgramID() solana.PublicKey {
	switch d {
	case MeteoraDlmm:
		return constants.MeteoraDlmmProgramID
	case MeteoraDammV2:
		return constants.MeteoraDammV2ProgramID
	case RaydiumClmm:
		return constants.RaydiumClmmProgramID
	case Whirlpool:
		return constants.WhirlpoolProgramID
	case RaydiumCpmm:
		return constants.RaydiumCpmmProgramID
	case PumpAmm:
		return constants.PumpAmmProgramID
	}
	return solana.PublicKey{}
}

// DexTypeForProgram maps an owner program back to its protocol.
func DexTypeForProgram(program solana.PublicKey) (DexType, bool) {
	for _, d := range All {
		if d.ProgramID().Equals(program) {
			return d, true
		}
	}
	return DexUnknown, false
}

// MintPair is the immutable (base, quote) identity of a pool.
type MintPair struct {
	Base  solana.PublicKey `json:"base"`
	Quote solana.PublicKey `json:"quote"`
}

// Contains reports whether mint is one side of the pair.
func (p MintPair) Contains(mint solana.PublicKey) bool {
	return p.Base.Equals(mint) || p.Quote.Equals(mint)
}

// Direction resolves a requested swap against the pair. baseIn is true when
// the input is the base mint; ok is false for any other combination.
func (p MintPair) Direction(in, out solana.PublicKey) (baseIn bool, ok bool) {
	switch {
	case p.Base.Equals(in) && p.Quote.Equals(out):
		return true, true
	case p.Quote.Equals(in) && p.Base.Equals(out):
		return false, true
	}
	return false, false
}

func (p MintPair) String() string {
	return p.Base.String() + "/" + p.Quote.String()
}

// MintInfo is the metadata builders and quoters need about a mint.
type MintInfo struct {
	Mint     solana.PublicKey `json:"mint"`
	Owner    solana.PublicKey `json:"owner"` // token program
	Decimals uint8            `json:"decimals"`
	Supply   uint64           `json:"supply"`
}

// MintInfoProvider looks up mint metadata. It is the only call in the account
// builders that may block, and must honour ctx cancellation.
type MintInfoProvider interface {
	MintInfo(ctx context.Context, mint solana.PublicKey) (MintInfo, error)
}

// StaticMints serves mint metadata from memory.
type StaticMints map[solana.PublicKey]MintInfo

func (s StaticMints) MintInfo(ctx context.Context, mint solana.PublicKey) (MintInfo, error) {
	if err := ctx.Err(); err != nil {
		return MintInfo{}, err
	}
	info, ok := s[mint]
	if !ok {
		return MintInfo{}, fmt.Errorf("%w: %s", types.ErrMintNotFound, mint)
	}
	return info, nil
}

// TokenPrograms resolves the owning token program of each mint, in order.
func TokenPrograms(ctx context.Context, dex DexType, provider MintInfoProvider, mints ...solana.PublicKey) ([]solana.PublicKey, error) {
	if provider == nil {
		return nil, types.NewBuildError(dex.String(), types.BuildMintMetadataUnavailable, types.ErrNilMintProvider, "")
	}
	out := make([]solana.PublicKey, len(mints))
	for i, mint := range mints {
		info, err := provider.MintInfo(ctx, mint)
		if err != nil {
			return nil, types.NewBuildError(dex.String(), types.BuildMintMetadataUnavailable, err, "mint %s", mint)
		}
		if !info.Owner.Equals(constants.TokenProgramID) && !info.Owner.Equals(constants.Token2022ProgramID) {
			return nil, types.NewBuildError(dex.String(), types.BuildMintMetadataUnavailable, nil, "mint %s owned by %s, not a token program", mint, info.Owner)
		}
		out[i] = info.Owner
	}
	return out, nil
}

// FindATA derives the associated token account of wallet for mint under tokenProgram.
func FindATA(wallet, mint, tokenProgram solana.PublicKey) (solana.PublicKey, error) {
	ata, _, err := solana.FindProgramAddress([][]byte{
		wallet[:],
		tokenProgram[:],
		mint[:],
	}, constants.AssociatedTokenProgramID)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("derive ATA for mint %s: %w", mint, err)
	}
	return ata, nil
}

// FindPDA derives a program address, discarding the bump.
func FindPDA(program solana.PublicKey, seeds ...[]byte) (solana.PublicKey, error) {
	pk, _, err := solana.FindProgramAddress(seeds, program)
	return pk, err
}

// MintMismatch is the common builder error for a foreign mint pair.
func MintMismatch(dex DexType, pair MintPair, in, out solana.PublicKey) error {
	return types.NewBuildError(dex.String(), types.BuildMintMismatch, nil, "pool %s does not trade %s -> %s", pair, in, out)
}

// InvalidMintPair is the common quote error for a foreign mint pair.
func InvalidMintPair(dex DexType, pair MintPair, in, out solana.PublicKey) error {
	return types.NewQuoteError(dex.String(), types.QuoteInvalidMintPair, "pool %s does not trade %s -> %s", pair, in, out)
}
