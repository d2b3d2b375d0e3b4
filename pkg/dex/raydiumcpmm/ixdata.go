package raydiumcpmm

import (
	"github.com/gagliardetto/solana-go"

	"github.com/ninja0404/amm-go-sdk/pkg/constants"
	"github.com/ninja0404/amm-go-sdk/pkg/dex"
)

var SwapBaseInputDiscriminator = [8]byte{0x8f, 0xbe, 0x5a, 0xda, 0xc4, 0x1e, 0x33, 0xde}

// SwapBaseInputArgs are the arguments of swap_base_input.
type SwapBaseInputArgs struct {
	AmountIn         uint64 `json:"amountIn"`
	MinimumAmountOut uint64 `json:"minimumAmountOut"`
}

func (a SwapBaseInputArgs) Encode() ([]byte, error) {
	return dex.EncodeInstruction(SwapBaseInputDiscriminator, a)
}

// DecodeSwapBaseInput parses swap_base_input instruction data.
func DecodeSwapBaseInput(data []byte) (SwapBaseInputArgs, error) {
	var a SwapBaseInputArgs
	err := dex.DecodeInstruction("raydium_cpmm swap_base_input", SwapBaseInputDiscriminator, data, &a)
	return a, err
}

// NewSwapInstruction assembles swap_base_input.
func NewSwapInstruction(accounts *SwapAccounts, args SwapBaseInputArgs) (solana.Instruction, error) {
	data, err := args.Encode()
	if err != nil {
		return nil, err
	}
	return solana.NewInstruction(constants.RaydiumCpmmProgramID, accounts.ToAccountList().AccountMetaSlice(), data), nil
}
