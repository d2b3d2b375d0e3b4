package mathutil

import (
	"errors"
	"math"
	"testing"

	bin "github.com/gagliardetto/binary"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ninja0404/amm-go-sdk/pkg/types"
)

func TestConstantProductOut(t *testing.T) {
	out, err := ConstantProductOut(10_000, 10_000, 1_000)
	require.NoError(t, err)
	assert.Equal(t, uint64(909), out)

	// Scaling reserves and input together keeps the ratio.
	for _, k := range []uint64{10, 1_000, 1_000_000, 100_000_000} {
		scaled, err := ConstantProductOut(10_000*k, 10_000*k, 1_000*k)
		require.NoError(t, err)
		assert.InDelta(t, 909.0/1000.0, float64(scaled)/float64(1_000*k), 1e-3, "k=%d", k)
	}

	// u64 reserves must not wrap in the intermediate product.
	out, err = ConstantProductOut(math.MaxUint64/2, math.MaxUint64, math.MaxUint64/2)
	require.NoError(t, err)
	assert.Equal(t, uint64(math.MaxUint64/2), out)
}

func TestMulDivRounding(t *testing.T) {
	down, err := MulDivU64(10, 10, 3, Down)
	require.NoError(t, err)
	assert.Equal(t, uint64(33), down)

	up, err := MulDivU64(10, 10, 3, Up)
	require.NoError(t, err)
	assert.Equal(t, uint64(34), up)

	exact, err := MulDivU64(9, 10, 3, Up)
	require.NoError(t, err)
	assert.Equal(t, uint64(30), exact)
}

func TestOverflowSurfaces(t *testing.T) {
	_, err := MulDivU64(math.MaxUint64, math.MaxUint64, 1, Down)
	assert.True(t, errors.Is(err, types.ErrOverflow))

	_, err = MulDivU64(1, 1, 0, Down)
	assert.True(t, errors.Is(err, types.ErrOverflow))

	max := new(uint256.Int).SetAllOne()
	_, err = Mul(max, uint256.NewInt(2))
	assert.True(t, errors.Is(err, types.ErrOverflow))

	_, err = Add(max, uint256.NewInt(1))
	assert.True(t, errors.Is(err, types.ErrOverflow))

	_, err = Sub(uint256.NewInt(1), uint256.NewInt(2))
	assert.True(t, errors.Is(err, types.ErrOverflow))

	_, err = SubU64(1, 2)
	assert.True(t, errors.Is(err, types.ErrOverflow))
}

func TestUint128Conversions(t *testing.T) {
	v := bin.Uint128{Lo: 5, Hi: 7}
	wide := FromUint128(v)
	back, err := ToUint128(wide)
	require.NoError(t, err)
	assert.Equal(t, v.Lo, back.Lo)
	assert.Equal(t, v.Hi, back.Hi)

	_, err = ToUint128(new(uint256.Int).Lsh(uint256.NewInt(1), 130))
	assert.True(t, errors.Is(err, types.ErrOverflow))

	_, err = ToUint64(Q64)
	assert.True(t, errors.Is(err, types.ErrOverflow))
}

func TestFeeCeil(t *testing.T) {
	fee, err := FeeCeil(1_000_001, 2_500, 1_000_000)
	require.NoError(t, err)
	assert.Equal(t, uint64(2_501), fee)

	fee, err = FeeCeil(0, 2_500, 1_000_000)
	require.NoError(t, err)
	assert.Zero(t, fee)
}
