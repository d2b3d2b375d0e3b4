package dex

import (
	"context"
	"errors"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ninja0404/amm-go-sdk/pkg/constants"
	"github.com/ninja0404/amm-go-sdk/pkg/types"
)

func TestParseDexType(t *testing.T) {
	for _, d := range All {
		got, err := ParseDexType(d.String())
		require.NoError(t, err)
		assert.Equal(t, d, got)

		owner, ok := DexTypeForProgram(d.ProgramID())
		require.True(t, ok)
		assert.Equal(t, d, owner)
	}

	got, err := ParseDexType("Meteora-DLMM")
	require.NoError(t, err)
	assert.Equal(t, MeteoraDlmm, got)

	_, err = ParseDexType("orca_legacy")
	assert.True(t, errors.Is(err, types.ErrUnsupportedProtocol))

	_, ok := DexTypeForProgram(constants.TokenProgramID)
	assert.False(t, ok)

	assert.False(t, MeteoraDlmm.ExactQuote())
	assert.True(t, Whirlpool.ExactQuote())
}

func TestDexTypeText(t *testing.T) {
	b, err := RaydiumCpmm.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "raydium_cpmm", string(b))

	var d DexType
	require.NoError(t, d.UnmarshalText([]byte("pump_amm")))
	assert.Equal(t, PumpAmm, d)
}

func TestMintPairDirection(t *testing.T) {
	base := solana.NewWallet().PublicKey()
	quote := constants.WSOLMint
	pair := MintPair{Base: base, Quote: quote}

	baseIn, ok := pair.Direction(base, quote)
	assert.True(t, ok)
	assert.True(t, baseIn)

	baseIn, ok = pair.Direction(quote, base)
	assert.True(t, ok)
	assert.False(t, baseIn)

	_, ok = pair.Direction(base, base)
	assert.False(t, ok)
	_, ok = pair.Direction(base, constants.USDCMint)
	assert.False(t, ok)
	assert.True(t, pair.Contains(quote))
	assert.False(t, pair.Contains(constants.USDCMint))
}

func TestFindATA(t *testing.T) {
	payer := solana.MustPublicKeyFromBase58("MfDuWeqSHEqTFVYZ7LoexgAK9dxk7cy4DFJWjWMGVWa")
	ata, err := FindATA(payer, constants.WSOLMint, constants.TokenProgramID)
	require.NoError(t, err)
	assert.Equal(t, "CTyFguG69kwYrzk24P3UuBvY1rR5atu9kf2S6XEwAU8X", ata.String())
}

func TestTokenPrograms(t *testing.T) {
	ctx := context.Background()
	mintA := solana.NewWallet().PublicKey()
	mintB := solana.NewWallet().PublicKey()
	mints := StaticMints{
		mintA: {Mint: mintA, Owner: constants.TokenProgramID, Decimals: 6},
		mintB: {Mint: mintB, Owner: constants.Token2022ProgramID, Decimals: 9},
	}

	programs, err := TokenPrograms(ctx, Whirlpool, mints, mintA, mintB)
	require.NoError(t, err)
	assert.Equal(t, []solana.PublicKey{constants.TokenProgramID, constants.Token2022ProgramID}, programs)

	_, err = TokenPrograms(ctx, Whirlpool, mints, constants.USDCMint)
	assert.True(t, errors.Is(err, types.ErrMintMetadataUnavailable))
	assert.True(t, errors.Is(err, types.ErrMintNotFound))

	_, err = TokenPrograms(ctx, Whirlpool, nil, mintA)
	assert.True(t, errors.Is(err, types.ErrMintMetadataUnavailable))

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = TokenPrograms(cancelled, Whirlpool, mints, mintA)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestAccountListEqual(t *testing.T) {
	a := solana.NewWallet().PublicKey()
	b := solana.NewWallet().PublicKey()
	l1 := AccountList{Writable(a), Signer(b)}
	l2 := AccountList{ReadOnly(a), ReadOnly(b)}

	assert.True(t, l1.EqualKeys(l2))
	assert.False(t, l1.Equal(l2))
	assert.True(t, l1.Equal(AccountList{Writable(a), Signer(b)}))
	assert.Equal(t, []solana.PublicKey{a, b}, l1.Keys())
	assert.Len(t, l1.AccountMetaSlice(), 2)
}

func TestObservedFromInstruction(t *testing.T) {
	a := solana.NewWallet().PublicKey()
	ix := solana.NewInstruction(constants.RaydiumCpmmProgramID, solana.AccountMetaSlice{Writable(a)}, []byte{1, 2, 3})
	obs, err := ObservedFromInstruction(ix)
	require.NoError(t, err)
	assert.Equal(t, constants.RaydiumCpmmProgramID, obs.ProgramID)
	assert.Equal(t, a, obs.Account(0))
	assert.Equal(t, []byte{1, 2, 3}, obs.Data)
}
