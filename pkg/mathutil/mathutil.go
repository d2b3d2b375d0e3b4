// Package mathutil provides the checked fixed-point helpers shared by the
// quote engines. Every operation reports overflow with types.ErrOverflow
// instead of wrapping.
package mathutil

import (
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/holiman/uint256"

	"github.com/ninja0404/amm-go-sdk/pkg/types"
)

// Rounding selects the direction of an inexact division.
type Rounding int

const (
	Down Rounding = iota
	Up
)

// Q64 is 2^64 and Q128 is 2^128, the scales of Raydium/Orca and Meteora sqrt prices.
var (
	Q64  = new(uint256.Int).Lsh(uint256.NewInt(1), 64)
	Q128 = new(uint256.Int).Lsh(uint256.NewInt(1), 128)
)

// FromUint128 widens a decoded 128-bit field.
func FromUint128(v bin.Uint128) *uint256.Int {
	return &uint256.Int{v.Lo, v.Hi, 0, 0}
}

// ToUint128 narrows x, failing when it exceeds 128 bits.
func ToUint128(x *uint256.Int) (bin.Uint128, error) {
	if x[2] != 0 || x[3] != 0 {
		return bin.Uint128{}, fmt.Errorf("%w: %s exceeds u128", types.ErrOverflow, x.Dec())
	}
	return bin.Uint128{Lo: x[0], Hi: x[1]}, nil
}

// ToUint64 narrows x, failing when it exceeds 64 bits.
func ToUint64(x *uint256.Int) (uint64, error) {
	if !x.IsUint64() {
		return 0, fmt.Errorf("%w: %s exceeds u64", types.ErrOverflow, x.Dec())
	}
	return x.Uint64(), nil
}

// Mul returns a*b.
func Mul(a, b *uint256.Int) (*uint256.Int, error) {
	z, overflow := new(uint256.Int).MulOverflow(a, b)
	if overflow {
		return nil, fmt.Errorf("%w: %s * %s", types.ErrOverflow, a.Dec(), b.Dec())
	}
	return z, nil
}

// Add returns a+b.
func Add(a, b *uint256.Int) (*uint256.Int, error) {
	z, overflow := new(uint256.Int).AddOverflow(a, b)
	if overflow {
		return nil, fmt.Errorf("%w: %s + %s", types.ErrOverflow, a.Dec(), b.Dec())
	}
	return z, nil
}

// Sub returns a-b, failing on underflow.
func Sub(a, b *uint256.Int) (*uint256.Int, error) {
	z, underflow := new(uint256.Int).SubOverflow(a, b)
	if underflow {
		return nil, fmt.Errorf("%w: %s - %s underflows", types.ErrOverflow, a.Dec(), b.Dec())
	}
	return z, nil
}

// Div returns a/d with the given rounding.
func Div(a, d *uint256.Int, r Rounding) (*uint256.Int, error) {
	if d.IsZero() {
		return nil, fmt.Errorf("%w: division by zero", types.ErrOverflow)
	}
	q, rem := new(uint256.Int).DivMod(a, d, new(uint256.Int))
	if r == Up && !rem.IsZero() {
		return Add(q, uint256.NewInt(1))
	}
	return q, nil
}

// MulDiv returns a*b/d with a 512-bit intermediate product.
func MulDiv(a, b, d *uint256.Int, r Rounding) (*uint256.Int, error) {
	if d.IsZero() {
		return nil, fmt.Errorf("%w: division by zero", types.ErrOverflow)
	}
	q, overflow := new(uint256.Int).MulDivOverflow(a, b, d)
	if overflow {
		return nil, fmt.Errorf("%w: %s * %s / %s", types.ErrOverflow, a.Dec(), b.Dec(), d.Dec())
	}
	if r == Up && !new(uint256.Int).MulMod(a, b, d).IsZero() {
		return Add(q, uint256.NewInt(1))
	}
	return q, nil
}

// MulDivU64 is MulDiv for u64 operands with a u64 result.
func MulDivU64(a, b, d uint64, r Rounding) (uint64, error) {
	z, err := MulDiv(uint256.NewInt(a), uint256.NewInt(b), uint256.NewInt(d), r)
	if err != nil {
		return 0, err
	}
	return ToUint64(z)
}

// CeilDivU64 returns ceil(a/b).
func CeilDivU64(a, b uint64) (uint64, error) {
	if b == 0 {
		return 0, fmt.Errorf("%w: division by zero", types.ErrOverflow)
	}
	q := a / b
	if a%b != 0 {
		q++
	}
	return q, nil
}

// FeeCeil returns ceil(amount*rate/denominator), the fee a pool collects.
func FeeCeil(amount, rate, denominator uint64) (uint64, error) {
	return MulDivU64(amount, rate, denominator, Up)
}

// SubU64 returns a-b, failing on underflow.
func SubU64(a, b uint64) (uint64, error) {
	if b > a {
		return 0, fmt.Errorf("%w: %d - %d underflows", types.ErrOverflow, a, b)
	}
	return a - b, nil
}

// ConstantProductOut returns floor(reserveOut*amountIn/(reserveIn+amountIn)).
func ConstantProductOut(reserveIn, reserveOut, amountIn uint64) (uint64, error) {
	denominator, err := Add(uint256.NewInt(reserveIn), uint256.NewInt(amountIn))
	if err != nil {
		return 0, err
	}
	return mulDivTo64(uint256.NewInt(reserveOut), uint256.NewInt(amountIn), denominator)
}

func mulDivTo64(a, b, d *uint256.Int) (uint64, error) {
	z, err := MulDiv(a, b, d, Down)
	if err != nil {
		return 0, err
	}
	return ToUint64(z)
}
