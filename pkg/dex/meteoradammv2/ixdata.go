package meteoradammv2

import (
	"github.com/gagliardetto/solana-go"

	"github.com/ninja0404/amm-go-sdk/pkg/constants"
	"github.com/ninja0404/amm-go-sdk/pkg/dex"
)

var SwapDiscriminator = [8]byte{0xf8, 0xc6, 0x9e, 0x91, 0xe1, 0x75, 0x87, 0xc8}

type SwapArgs struct {
	AmountIn         uint64 `json:"amountIn"`
	MinimumAmountOut uint64 `json:"minimumAmountOut"`
}

func (a SwapArgs) Encode() ([]byte, error) {
	return dex.EncodeInstruction(SwapDiscriminator, a)
}

// DecodeSwap parses swap instruction data.
func DecodeSwap(data []byte) (SwapArgs, error) {
	var a SwapArgs
	err := dex.DecodeInstruction("meteora_damm_v2 swap", SwapDiscriminator, data, &a)
	return a, err
}

func NewSwapInstruction(accounts *SwapAccounts, args SwapArgs) (solana.Instruction, error) {
	data, err := args.Encode()
	if err != nil {
		return nil, err
	}
	return solana.NewInstruction(constants.MeteoraDammV2ProgramID, accounts.ToAccountList().AccountMetaSlice(), data), nil
}
