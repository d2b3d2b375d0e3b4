package raydiumclmm

import (
	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"github.com/ninja0404/amm-go-sdk/pkg/constants"
	"github.com/ninja0404/amm-go-sdk/pkg/dex"
)

var SwapV2Discriminator = [8]byte{0x2b, 0x04, 0xed, 0x0b, 0x1a, 0xc9, 0x1e, 0x62}

// SwapV2Args are the swap_v2 arguments. A zero SqrtPriceLimitX64 lets the
// program use the price bound of the direction.
type SwapV2Args struct {
	Amount               uint64      `json:"amount"`
	OtherAmountThreshold uint64      `json:"otherAmountThreshold"`
	SqrtPriceLimitX64    bin.Uint128 `json:"sqrtPriceLimitX64"`
	IsBaseInput          bool        `json:"isBaseInput"`
}

func (a SwapV2Args) Encode() ([]byte, error) {
	return dex.EncodeInstruction(SwapV2Discriminator, a)
}

func DecodeSwapV2(data []byte) (SwapV2Args, error) {
	var a SwapV2Args
	err := dex.DecodeInstruction("raydium_clmm swap_v2", SwapV2Discriminator, data, &a)
	return a, err
}

// NewSwapInstruction builds an exact-input swap_v2.
func NewSwapInstruction(accounts *SwapAccounts, amountIn, minAmountOut uint64) (solana.Instruction, error) {
	data, err := SwapV2Args{Amount: amountIn, OtherAmountThreshold: minAmountOut, IsBaseInput: true}.Encode()
	if err != nil {
		return nil, err
	}
	return solana.NewInstruction(constants.RaydiumClmmProgramID, accounts.ToAccountList().AccountMetaSlice(), data), nil
}
