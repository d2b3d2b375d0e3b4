package whirlpool

import (
	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"github.com/ninja0404/amm-go-sdk/pkg/constants"
	"github.com/ninja0404/amm-go-sdk/pkg/dex"
)

var SwapV2Discriminator = [8]byte{0x2b, 0x04, 0xed, 0x0b, 0x1a, 0xc9, 0x1e, 0x62}

// AccountsType tags a slice of remaining accounts.
type AccountsType uint8

const (
	AccountsTransferHookA AccountsType = iota
	AccountsTransferHookB
	AccountsTransferHookReward
	AccountsTransferHookInput
	AccountsTransferHookIntermediate
	AccountsTransferHookOutput
	AccountsSupplementalTickArrays
	AccountsSupplementalTickArraysOne
	AccountsSupplementalTickArraysTwo
)

type RemainingAccountsSlice struct {
	AccountsType AccountsType `json:"accountsType"`
	Length       uint8        `json:"length"`
}

type RemainingAccountsInfo struct {
	Slices []RemainingAccountsSlice `json:"slices"`
}

type SwapV2Args struct {
	Amount                 uint64                 `json:"amount"`
	OtherAmountThreshold   uint64                 `json:"otherAmountThreshold"`
	SqrtPriceLimit         bin.Uint128            `json:"sqrtPriceLimit"`
	AmountSpecifiedIsInput bool                   `json:"amountSpecifiedIsInput"`
	AToB                   bool                   `json:"aToB"`
	RemainingAccountsInfo  *RemainingAccountsInfo `json:"remainingAccountsInfo" bin:"optional"`
}

func (a SwapV2Args) Encode() ([]byte, error) {
	return dex.EncodeInstruction(SwapV2Discriminator, a)
}

func DecodeSwapV2(data []byte) (SwapV2Args, error) {
	var a SwapV2Args
	err := dex.DecodeInstruction("whirlpool swap_v2", SwapV2Discriminator, data, &a)
	return a, err
}

// NewSwapInstruction builds an exact-input swap_v2. The price limit is the
// bound of the swap direction.
func NewSwapInstruction(accounts *SwapAccounts, aToB bool, amountIn, minAmountOut uint64) (solana.Instruction, error) {
	limit := MaxSqrtPrice
	if aToB {
		limit = MinSqrtPrice
	}
	args := SwapV2Args{
		Amount:                 amountIn,
		OtherAmountThreshold:   minAmountOut,
		SqrtPriceLimit:         bin.Uint128{Lo: limit[0], Hi: limit[1]},
		AmountSpecifiedIsInput: true,
		AToB:                   aToB,
	}
	data, err := args.Encode()
	if err != nil {
		return nil, err
	}
	return solana.NewInstruction(constants.WhirlpoolProgramID, accounts.ToAccountList().AccountMetaSlice(), data), nil
}
