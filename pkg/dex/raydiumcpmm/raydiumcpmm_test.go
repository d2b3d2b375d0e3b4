package raydiumcpmm

import (
	"context"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ninja0404/amm-go-sdk/pkg/constants"
	"github.com/ninja0404/amm-go-sdk/pkg/dex"
	"github.com/ninja0404/amm-go-sdk/pkg/types"
)

var (
	poolAddr = solana.MustPublicKeyFromBase58("BtGUffMEnxrzdjyC3kKAHjGMpG1UdZiVWXZUaSpUv13C")
	eagle    = solana.MustPublicKeyFromBase58("4JPyh4ATbE8hfcH7LqhxF3YThsECZm6htmLvMUyrbonk")
	payer    = solana.MustPublicKeyFromBase58("MfDuWeqSHEqTFVYZ7LoexgAK9dxk7cy4DFJWjWMGVWa")
)

func loadPool(t *testing.T) ([]byte, *PoolState) {
	t.Helper()
	raw, err := os.ReadFile("testdata/pool.b64")
	require.NoError(t, err)
	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(string(raw)))
	require.NoError(t, err)
	s, err := Decode(data)
	require.NoError(t, err)
	return data, s
}

func TestDecode(t *testing.T) {
	data, s := loadPool(t)

	assert.Equal(t, "D4FPEruKEHrG5TenZ2mpDGEfu1iUvTiqBxvpU8HLBvC2", s.AmmConfig.String())
	assert.Equal(t, "36DWP52MVRDooYNrcRVDyoCh2R1fPXCYqKJQYg9pFQoE", s.PoolCreator.String())
	assert.Equal(t, "SvbJANoKJmz6RqEJBj5gjPrfurkKzhfGXUvaEams48y", s.Token0Vault.String())
	assert.Equal(t, "FgPdQQ37kZVDqsfgPSLzC851mx9BMP6HRYe2ia4HDNLe", s.Token1Vault.String())
	assert.Equal(t, constants.WSOLMint, s.Token0Mint)
	assert.Equal(t, eagle, s.Token1Mint)
	assert.Equal(t, constants.TokenProgramID, s.Token0Program)
	assert.Equal(t, "369Hj5tT85pGAwsUESErUeZybnk5cTBoJ1tysDbs4eM9", s.ObservationKey.String())
	assert.Equal(t, uint8(253), s.AuthBump)
	assert.Equal(t, uint8(9), s.Mint0Decimals)
	assert.Equal(t, uint8(6), s.Mint1Decimals)
	assert.Equal(t, uint64(3836966203034), s.LpSupply)
	assert.Equal(t, uint64(49023014), s.ProtocolFeesToken0)
	assert.Equal(t, uint64(3414305342), s.ProtocolFeesToken1)
	assert.Equal(t, uint64(4037703), s.FundFeesToken0)
	assert.Equal(t, uint64(231412299), s.FundFeesToken1)
	assert.Equal(t, uint64(1756490919), s.OpenTime)
	assert.Equal(t, uint64(841), s.RecentEpoch)
	assert.Equal(t, uint8(1), s.CreatorFeeOn)
	assert.True(t, s.EnableCreatorFee)
	assert.Equal(t, uint64(59466681730), s.CreatorFeesToken0)
	assert.Zero(t, s.CreatorFeesToken1)

	enc, err := s.Encode()
	require.NoError(t, err)
	assert.Equal(t, data[:PoolStateSize], enc)
}

func TestDecodeErrors(t *testing.T) {
	data, _ := loadPool(t)

	_, err := Decode(data[:7])
	assert.True(t, errors.Is(err, types.ErrTooShort))

	_, err = Decode(data[:PoolStateSize-1])
	assert.True(t, errors.Is(err, types.ErrSchemaMismatch))

	// Reallocated accounts carry trailing bytes.
	_, err = Decode(append(append([]byte{}, data...), 0, 0, 0))
	assert.NoError(t, err)
}

func quoteParams(in, out solana.PublicKey, amount uint64) QuoteParams {
	return QuoteParams{
		InputMint:     in,
		OutputMint:    out,
		AmountIn:      amount,
		Vault0Balance: 159_519_742_447,
		Vault1Balance: 5_003_645_717_641,
		Config:        &AmmConfig{TradeFeeRate: 2_500, CreatorFeeRate: 1_000},
	}
}

func TestQuote(t *testing.T) {
	_, s := loadPool(t)

	tests := []struct {
		name   string
		params QuoteParams
		want   uint64
	}{
		{"token0 in, creator fee on input", quoteParams(constants.WSOLMint, eagle, 1_000_000_000), 49_333_392_741},
		{"token1 in, creator fee on output", quoteParams(eagle, constants.WSOLMint, 50_000_000_000), 986_660_560},
		{"zero amount", quoteParams(eagle, constants.WSOLMint, 0), 0},
		// 1001 * 3500 / 1e6 rounds up once to 4; ceiling each fee would charge 5.
		{"combined input fee rounds once", quoteParams(constants.WSOLMint, eagle, 1_001), 49_849},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Quote(s, tt.params)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("default config", func(t *testing.T) {
		p := quoteParams(constants.WSOLMint, eagle, 1_000_000_000)
		p.Config = nil
		got, err := Quote(s, p)
		require.NoError(t, err)
		assert.Equal(t, uint64(49_382_410_455), got)
	})
}

func TestQuoteCreatorFeeSide(t *testing.T) {
	_, s := loadPool(t)

	tests := []struct {
		name    string
		feeOn   CreatorFeeOn
		enabled bool
		params  QuoteParams
		want    uint64
	}{
		{"only token1, token0 in charges output", CreatorFeeOnlyToken1, true, quoteParams(constants.WSOLMint, eagle, 1_000_000_000), 49_333_028_044},
		{"only token1, token1 in charges input", CreatorFeeOnlyToken1, true, quoteParams(eagle, constants.WSOLMint, 50_000_000_000), 986_667_854},
		{"both tokens, token1 in charges input", CreatorFeeBothToken, true, quoteParams(eagle, constants.WSOLMint, 50_000_000_000), 986_667_854},
		{"creator fee disabled", CreatorFeeOnlyToken0, false, quoteParams(eagle, constants.WSOLMint, 50_000_000_000), 987_648_209},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := *s
			state.CreatorFeeOn = uint8(tt.feeOn)
			state.EnableCreatorFee = tt.enabled
			got, err := Quote(&state, tt.params)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestQuoteErrors(t *testing.T) {
	_, s := loadPool(t)

	_, err := Quote(s, quoteParams(constants.USDCMint, eagle, 1))
	assert.True(t, errors.Is(err, types.ErrInvalidMintPair))

	_, err = Quote(s, quoteParams(eagle, eagle, 1))
	assert.True(t, errors.Is(err, types.ErrInvalidMintPair))

	p := quoteParams(constants.WSOLMint, eagle, 1_000)
	p.Vault0Balance = 1_000
	_, err = Quote(s, p)
	assert.True(t, errors.Is(err, types.ErrZeroLiquidity))

	disabled := *s
	disabled.Status = statusSwapDisabled
	_, err = Quote(&disabled, quoteParams(constants.WSOLMint, eagle, 1_000))
	assert.True(t, errors.Is(err, types.ErrPoolDisabled))

	var qe *types.QuoteError
	require.True(t, errors.As(err, &qe))
	assert.Equal(t, "raydium_cpmm", qe.Dex)
}

func TestBuildForSwap(t *testing.T) {
	_, s := loadPool(t)
	ctx := context.Background()

	a, err := BuildForSwap(ctx, nil, payer, poolAddr, s, dex.SwapRequest{InputMint: eagle, OutputMint: constants.WSOLMint})
	require.NoError(t, err)

	list := a.ToAccountList()
	require.Len(t, list, SwapAccountsLen)
	assert.Equal(t, constants.RaydiumCpmmAuthority, list[1].PublicKey)
	assert.Equal(t, poolAddr, list[3].PublicKey)
	assert.Equal(t, "CTyFguG69kwYrzk24P3UuBvY1rR5atu9kf2S6XEwAU8X", list[5].PublicKey.String())
	assert.Equal(t, s.Token1Vault, list[6].PublicKey)
	assert.Equal(t, s.Token0Vault, list[7].PublicKey)
	assert.Equal(t, eagle, list[10].PublicKey)
	assert.Equal(t, constants.WSOLMint, list[11].PublicKey)
	assert.True(t, list[0].IsSigner)
	assert.True(t, list[3].IsWritable)
	assert.False(t, list[2].IsWritable)

	def, err := BuildDefault(ctx, nil, payer, poolAddr, s)
	require.NoError(t, err)
	assert.Equal(t, constants.WSOLMint, def.InputTokenMint)
	assert.Equal(t, s.Token0Vault, def.InputVault)

	_, err = BuildForSwap(ctx, nil, payer, poolAddr, s, dex.SwapRequest{InputMint: constants.USDCMint, OutputMint: eagle})
	assert.True(t, errors.Is(err, types.ErrMintMismatch))
}

func TestRestoreFrom(t *testing.T) {
	_, s := loadPool(t)
	built, err := BuildDefault(context.Background(), nil, payer, poolAddr, s)
	require.NoError(t, err)

	ix, err := NewSwapInstruction(built, SwapBaseInputArgs{AmountIn: 1, MinimumAmountOut: 0})
	require.NoError(t, err)
	obs, err := dex.ObservedFromInstruction(ix)
	require.NoError(t, err)

	restored, err := RestoreFrom(obs)
	require.NoError(t, err)
	assert.Equal(t, built, restored)
	assert.True(t, built.ToAccountList().Equal(restored.ToAccountList()))

	pool, err := ParseSwapFromIx(obs)
	require.NoError(t, err)
	assert.Equal(t, poolAddr, pool)

	obs.Accounts = obs.Accounts[:SwapAccountsLen-1]
	_, err = RestoreFrom(obs)
	assert.True(t, errors.Is(err, types.ErrInsufficientAccounts))
}

func TestSwapBaseInputData(t *testing.T) {
	data, err := hex.DecodeString("8fbe5adac41e33de223be0f0000000000d8212e800000000")
	require.NoError(t, err)

	args, err := DecodeSwapBaseInput(data)
	require.NoError(t, err)
	assert.Equal(t, SwapBaseInputArgs{AmountIn: 4041227042, MinimumAmountOut: 3893527053}, args)

	enc, err := args.Encode()
	require.NoError(t, err)
	assert.Equal(t, data, enc)

	data[0] ^= 0xff
	_, err = DecodeSwapBaseInput(data)
	assert.True(t, errors.Is(err, types.ErrSchemaMismatch))
}
