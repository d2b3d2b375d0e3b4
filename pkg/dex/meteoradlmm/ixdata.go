package meteoradlmm

import (
	"github.com/gagliardetto/solana-go"

	"github.com/ninja0404/amm-go-sdk/pkg/constants"
	"github.com/ninja0404/amm-go-sdk/pkg/dex"
)

var SwapDiscriminator = [8]byte{0xf8, 0xc6, 0x9e, 0x91, 0xe1, 0x75, 0x87, 0xc8}

type SwapArgs struct {
	AmountIn     uint64 `json:"amountIn"`
	MinAmountOut uint64 `json:"minAmountOut"`
}

func (a SwapArgs) Encode() ([]byte, error) {
	return dex.EncodeInstruction(SwapDiscriminator, a)
}

func DecodeSwap(data []byte) (SwapArgs, error) {
	var a SwapArgs
	err := dex.DecodeInstruction("meteora_dlmm swap", SwapDiscriminator, data, &a)
	return a, err
}

// NewSwapInstruction builds swap with the bin arrays of accounts as remaining accounts.
func NewSwapInstruction(accounts *SwapAccounts, args SwapArgs) (solana.Instruction, error) {
	data, err := args.Encode()
	if err != nil {
		return nil, err
	}
	return solana.NewInstruction(constants.MeteoraDlmmProgramID, accounts.ToAccountList().AccountMetaSlice(), data), nil
}
