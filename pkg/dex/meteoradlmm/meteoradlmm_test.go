package meteoradlmm

import (
	"context"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ninja0404/amm-go-sdk/pkg/constants"
	"github.com/ninja0404/amm-go-sdk/pkg/dex"
	"github.com/ninja0404/amm-go-sdk/pkg/types"
)

var (
	pairAddr = solana.MustPublicKeyFromBase58("8ztFxjFPfVUtEf4SLSapcFj8GW2dxyUA9no2bLPq7H7V")
	mintX    = solana.MustPublicKeyFromBase58("Dz9mQ9NzkBcCsuGPFJ3r1bS4wgqKMHBPiVuniW8Mbonk")
	payer    = solana.MustPublicKeyFromBase58("MfDuWeqSHEqTFVYZ7LoexgAK9dxk7cy4DFJWjWMGVWa")
)

func loadPair(t *testing.T) ([]byte, *LbPair) {
	t.Helper()
	raw, err := os.ReadFile("testdata/pool.b64")
	require.NoError(t, err)
	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(string(raw)))
	require.NoError(t, err)
	p, err := Decode(data)
	require.NoError(t, err)
	return data, p
}

func TestDecode(t *testing.T) {
	data, p := loadPair(t)

	assert.Equal(t, int32(200), p.ActiveId)
	assert.Equal(t, uint16(20), p.BinStep)
	assert.False(t, p.Disabled())
	assert.Equal(t, uint16(10_000), p.Parameters.BaseFactor)
	assert.Equal(t, uint32(20_000), p.Parameters.VariableFeeControl)
	assert.Equal(t, int32(-21_835), p.Parameters.MinBinId)
	assert.Equal(t, int32(21_835), p.Parameters.MaxBinId)
	assert.Zero(t, p.Parameters.BaseFeePowerFactor)
	assert.Equal(t, uint32(20_649), p.VParameters.VolatilityAccumulator)

	assert.Equal(t, mintX, p.TokenXMint)
	assert.Equal(t, constants.WSOLMint, p.TokenYMint)
	assert.Equal(t, "64GTWbkiCgZt62EMccjFHRoT1MQAQviDioa63NCj37w8", p.ReserveX.String())
	assert.Equal(t, "HJfR4mh9Yctrrh8pQQsrGsNdqV7KfpaaXGSdxGTwoeBK", p.ReserveY.String())
	assert.Equal(t, "Fo3m9HQx8Rv4EMzmKWxe5yjCZMNcB5W5sKNv4pDzRFqe", p.Oracle.String())
	assert.Equal(t, "BMpa9wWzZepEgp7qxps9G72AnAwfFEQCWxboaNhop1BA", p.Creator.String())
	assert.Equal(t, "2RA1EnEVxWP8TQZhFt2nXuVcrQetFQUgYyGsUBTWUNpR", p.BaseKey.String())
	assert.Equal(t, uint64(375_581_015_260), p.ProtocolFee.AmountX)
	assert.Equal(t, uint64(241_399_258_573), p.ProtocolFee.AmountY)
	assert.Equal(t, uint64(18_441_915_018_640_359_424), p.BinArrayBitmap[7])
	assert.Equal(t, uint64(511), p.BinArrayBitmap[8])

	progX, progY := p.TokenPrograms()
	assert.Equal(t, constants.TokenProgramID, progX)
	assert.Equal(t, constants.TokenProgramID, progY)

	enc, err := p.Encode()
	require.NoError(t, err)
	assert.Equal(t, data, enc)

	_, err = Decode(data[:7])
	assert.True(t, errors.Is(err, types.ErrTooShort))
	_, err = Decode(data[:LbPairSize-1])
	assert.True(t, errors.Is(err, types.ErrSchemaMismatch))
}

func TestBinArrayIndex(t *testing.T) {
	tests := []struct {
		bin  int32
		want int64
	}{
		{0, 0}, {69, 0}, {70, 1}, {200, 2}, {-1, -1}, {-70, -1}, {-71, -2}, {-21_835, -312},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, BinArrayIndex(tt.bin), "bin %d", tt.bin)
	}

	_, p := loadPair(t)
	assert.True(t, p.BitmapHasArray(2))
	assert.True(t, p.BitmapHasArray(-2))
	assert.False(t, p.BitmapHasArray(100))
	assert.False(t, p.BitmapHasArray(MaxBitmapArrayIndex+1))
}

func TestPriceFromID(t *testing.T) {
	tests := []struct {
		step uint16
		id   int32
		want string
	}{
		{20, 200, "27508317527245996776"},
		{20, -200, "12370162827439411623"},
		{1, 5, "18455969290605290430"},
		{100, -1000, "880128207093833"},
		{20, 0, "18446744073709551616"},
	}
	for _, tt := range tests {
		got, err := PriceFromID(tt.id, tt.step)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got.Dec(), "step %d id %d", tt.step, tt.id)
	}

	_, err := PriceFromID(maxExponential, 1)
	assert.True(t, errors.Is(err, types.ErrPriceOutOfRange))
	_, err = PriceFromID(443_636, 100)
	assert.Error(t, err)
}

func TestFeeRate(t *testing.T) {
	_, p := loadPair(t)
	assert.Equal(t, uint64(2_000_000), p.BaseFeeRate())
	assert.Equal(t, uint64(34_111), p.VariableFeeRate())
	assert.Equal(t, uint64(2_034_111), p.TotalFeeRate())

	hot := *p
	hot.VParameters.VolatilityAccumulator = 10_000_000
	assert.Equal(t, uint64(MaxFeeRate), hot.TotalFeeRate())

	hot.Parameters.VariableFeeControl = 0
	hot.Parameters.BaseFeePowerFactor = 1
	assert.Equal(t, uint64(20_000_000), hot.TotalFeeRate())
}

func TestQuote(t *testing.T) {
	_, p := loadPair(t)

	tests := []struct {
		name string
		in, out solana.PublicKey
		amount uint64
		want   uint64
	}{
		{"x to y", mintX, constants.WSOLMint, 1_000_000_000, 1_488_195_556},
		{"x to y odd amount", mintX, constants.WSOLMint, 449_360_555, 668_736_379},
		{"y to x", constants.WSOLMint, mintX, 1_000_000_000, 669_223_820},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Quote(p, QuoteParams{InputMint: tt.in, OutputMint: tt.out, AmountIn: tt.amount})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	capped, err := Quote(p, QuoteParams{InputMint: mintX, OutputMint: constants.WSOLMint, AmountIn: 1_000_000_000, Reserves: &Reserves{X: 1, Y: 500}})
	require.NoError(t, err)
	assert.Equal(t, uint64(500), capped)

	_, err = Quote(p, QuoteParams{InputMint: constants.WSOLMint, OutputMint: mintX, AmountIn: 1, Reserves: &Reserves{X: 0, Y: 500}})
	assert.True(t, errors.Is(err, types.ErrZeroLiquidity))

	out, err := Quote(p, QuoteParams{InputMint: mintX, OutputMint: constants.WSOLMint})
	require.NoError(t, err)
	assert.Zero(t, out)

	_, err = Quote(p, QuoteParams{InputMint: mintX, OutputMint: mintX, AmountIn: 1})
	assert.True(t, errors.Is(err, types.ErrInvalidMintPair))

	disabled := *p
	disabled.Status = 1
	_, err = Quote(&disabled, QuoteParams{InputMint: mintX, OutputMint: constants.WSOLMint, AmountIn: 1})
	assert.True(t, errors.Is(err, types.ErrPoolDisabled))
}

func TestMidPrice(t *testing.T) {
	_, p := loadPair(t)

	xy, err := MidPrice(p, mintX, constants.WSOLMint, 6, 9)
	require.NoError(t, err)
	assert.Equal(t, "0.001491", xy.StringFixed(6))

	yx, err := MidPrice(p, constants.WSOLMint, mintX, 6, 9)
	require.NoError(t, err)
	diff := xy.Mul(yx).Sub(decimal.NewFromInt(1)).Abs()
	assert.True(t, diff.LessThan(decimal.New(1, -9)), "product off by %s", diff)

	_, err = MidPrice(p, constants.USDCMint, mintX, 6, 6)
	assert.True(t, errors.Is(err, types.ErrInvalidMintPair))
}

func TestBinArrayWindow(t *testing.T) {
	_, p := loadPair(t)

	assert.Equal(t, []int64{2, 1, 0}, p.BinArrayWindow(true, 3))
	assert.Equal(t, []int64{2, 3, 4, 5, 6}, p.BinArrayWindow(false, 5))

	edge := *p
	edge.ActiveId = edge.Parameters.MaxBinId
	assert.Equal(t, []int64{311}, edge.BinArrayWindow(false, 3))
	assert.Equal(t, []int64{311, 310, 309}, edge.BinArrayWindow(true, 3))
}

func TestBuildForSwap(t *testing.T) {
	_, p := loadPair(t)
	ctx := context.Background()
	mints := dex.StaticMints{
		mintX:              {Mint: mintX, Owner: constants.TokenProgramID, Decimals: 6},
		constants.WSOLMint: {Mint: constants.WSOLMint, Owner: constants.TokenProgramID, Decimals: 9},
	}

	a, err := BuildForSwap(ctx, mints, payer, pairAddr, p, dex.SwapRequest{InputMint: mintX, OutputMint: constants.WSOLMint, AmountIn: 1_485_000_000})
	require.NoError(t, err)
	program := constants.MeteoraDlmmProgramID
	want := dex.AccountList{
		dex.Writable(pairAddr),
		dex.ReadOnly(program),
		dex.Writable(p.ReserveX),
		dex.Writable(p.ReserveY),
		dex.Writable(solana.MustPublicKeyFromBase58("4m7mnuw9HhbQzK87HNA2NvkinG84M75YZEjbMW8UFaMs")),
		dex.Writable(solana.MustPublicKeyFromBase58("CTyFguG69kwYrzk24P3UuBvY1rR5atu9kf2S6XEwAU8X")),
		dex.ReadOnly(mintX),
		dex.ReadOnly(constants.WSOLMint),
		dex.Writable(p.Oracle),
		dex.ReadOnly(program),
		dex.Signer(payer),
		dex.ReadOnly(constants.TokenProgramID),
		dex.ReadOnly(constants.TokenProgramID),
		dex.ReadOnly(constants.MeteoraDlmmEventAuthority),
		dex.ReadOnly(program),
		dex.Writable(solana.MustPublicKeyFromBase58("9caL9WS3Y1RZ7L3wwXp4qa8hapTicbDY5GJJ3pteP7oX")),
		dex.Writable(solana.MustPublicKeyFromBase58("MrNAjbZvwT2awQDobynRrmkJStE5ejprQ7QmFXLvycq")),
		dex.Writable(solana.MustPublicKeyFromBase58("5Dj2QB9BtRtWV6skbCy6eadj23h6o46CVHpLbjsCJCEB")),
		dex.Writable(solana.MustPublicKeyFromBase58("69EaDEqwjBKKRFKrtRxb7okPDu5EP5nFhbuqrBtekwDg")),
		dex.Writable(solana.MustPublicKeyFromBase58("433yNSNcf1Gx9p8mWATybS81wQtjBfxmrnHpxNUzcMvU")),
	}
	assert.True(t, want.Equal(a.ToAccountList()), "got %v", a.ToAccountList().Keys())

	small, err := BuildForSwap(ctx, mints, payer, pairAddr, p, dex.SwapRequest{InputMint: constants.WSOLMint, OutputMint: mintX, AmountIn: 1_000})
	require.NoError(t, err)
	assert.Equal(t, a.UserTokenIn, small.UserTokenOut)
	assert.Equal(t, []solana.PublicKey{
		solana.MustPublicKeyFromBase58("9caL9WS3Y1RZ7L3wwXp4qa8hapTicbDY5GJJ3pteP7oX"),
		solana.MustPublicKeyFromBase58("F3Y6fwMMBoewYc6AvcHRBYDujeQryp1ewiZoboiJyyiQ"),
		solana.MustPublicKeyFromBase58("DNCNzF4dHZsKn3dXwitz14H2Y4wDcHiJ5n7yvgk5AtvA"),
	}, small.BinArrays)

	wide, err := BuildForSwapWithThreshold(ctx, mints, payer, pairAddr, p, dex.SwapRequest{InputMint: constants.WSOLMint, OutputMint: mintX, AmountIn: 1_000}, 1_000)
	require.NoError(t, err)
	assert.Len(t, wide.BinArrays, 5)

	def, err := BuildDefault(ctx, nil, payer, pairAddr, p)
	require.NoError(t, err)
	assert.Equal(t, []solana.PublicKey{
		solana.MustPublicKeyFromBase58("MrNAjbZvwT2awQDobynRrmkJStE5ejprQ7QmFXLvycq"),
		solana.MustPublicKeyFromBase58("9caL9WS3Y1RZ7L3wwXp4qa8hapTicbDY5GJJ3pteP7oX"),
		solana.MustPublicKeyFromBase58("F3Y6fwMMBoewYc6AvcHRBYDujeQryp1ewiZoboiJyyiQ"),
	}, def.BinArrays)

	_, err = BuildForSwap(ctx, mints, payer, pairAddr, p, dex.SwapRequest{InputMint: constants.USDCMint, OutputMint: mintX})
	assert.True(t, errors.Is(err, types.ErrMintMismatch))
	_, err = BuildDefault(ctx, dex.StaticMints{}, payer, pairAddr, p)
	assert.True(t, errors.Is(err, types.ErrMintMetadataUnavailable))
}

func TestBitmapExtension(t *testing.T) {
	_, p := loadPair(t)
	far := *p
	far.Parameters.MinBinId = -443_636
	far.ActiveId = MinBitmapArrayIndex * BinsPerArray

	down, err := BuildForSwap(context.Background(), nil, payer, pairAddr, &far, dex.SwapRequest{InputMint: mintX, OutputMint: constants.WSOLMint, AmountIn: 1})
	require.NoError(t, err)
	assert.Equal(t, "4HxHCVzQYkQERathekEZeU3rFFkC1xhug6y8eBYGN6wq", down.BinArrayBitmapExtension.String())

	up, err := BuildForSwap(context.Background(), nil, payer, pairAddr, &far, dex.SwapRequest{InputMint: constants.WSOLMint, OutputMint: mintX, AmountIn: 1})
	require.NoError(t, err)
	assert.Equal(t, constants.MeteoraDlmmProgramID, up.BinArrayBitmapExtension)
}

func TestRestoreFrom(t *testing.T) {
	_, p := loadPair(t)

	built, err := BuildForSwap(context.Background(), nil, payer, pairAddr, p, dex.SwapRequest{InputMint: mintX, OutputMint: constants.WSOLMint, AmountIn: 2_000_000_000})
	require.NoError(t, err)
	ix, err := NewSwapInstruction(built, SwapArgs{AmountIn: 2_000_000_000, MinAmountOut: 1})
	require.NoError(t, err)
	obs, err := dex.ObservedFromInstruction(ix)
	require.NoError(t, err)

	restored, err := RestoreFrom(obs)
	require.NoError(t, err)
	assert.Equal(t, built, restored)
	assert.True(t, built.ToAccountList().Equal(restored.ToAccountList()))

	pair, err := ParseSwapFromIx(obs)
	require.NoError(t, err)
	assert.Equal(t, pairAddr, pair)

	obs.Accounts[13] = payer
	_, err = ParseSwapFromIx(obs)
	assert.Error(t, err)

	_, err = RestoreFrom(dex.ObservedInstruction{Accounts: obs.Accounts[:SwapAccountsLen-1]})
	assert.True(t, errors.Is(err, types.ErrInsufficientAccounts))
}

func TestSwapData(t *testing.T) {
	tests := []struct {
		data   string
		in     uint64
		minOut uint64
	}{
		{"f8c69e91e17587c8ceaf31fc11ee01000000000000000000", 543_235_989_680_078, 0},
		{"f8c69e91e17587c8f1498cc602000000862ed9e30c000000", 11_921_017_329, 55_362_268_806},
	}
	for _, tt := range tests {
		data, err := hex.DecodeString(tt.data)
		require.NoError(t, err)
		args, err := DecodeSwap(data)
		require.NoError(t, err)
		assert.Equal(t, tt.in, args.AmountIn)
		assert.Equal(t, tt.minOut, args.MinAmountOut)

		enc, err := args.Encode()
		require.NoError(t, err)
		assert.Equal(t, data, enc)
	}
}
