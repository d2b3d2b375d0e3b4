package types

import (
	"github.com/gagliardetto/solana-go"
)

// ValidateSwapParams validates common swap parameters.
func ValidateSwapParams(inputMint, outputMint solana.PublicKey, amountIn uint64) error {
	if err := ValidatePublicKey("inputMint", inputMint); err != nil {
		return err
	}
	if err := ValidatePublicKey("outputMint", outputMint); err != nil {
		return err
	}
	if inputMint.Equals(outputMint) {
		return NewValidationError("outputMint", "must differ from inputMint")
	}
	if amountIn == 0 {
		return NewValidationError("amountIn", "must be greater than 0")
	}
	return nil
}

// ValidateSlippage validates slippage basis points.
func ValidateSlippage(slippageBps uint64) error {
	if slippageBps > 10000 {
		return NewValidationError("slippageBps", "must be <= 10000 (100%)")
	}
	return nil
}

// ValidatePublicKey validates a public key is not zero.
func ValidatePublicKey(name string, key solana.PublicKey) error {
	if key.IsZero() {
		return NewValidationError(name, "cannot be zero")
	}
	return nil
}
