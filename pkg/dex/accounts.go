package dex

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// AccountList is the ordered account list of one swap instruction. Order is
// mandated by the program; callers must not reorder it.
type AccountList []*solana.AccountMeta

// Writable returns a writable, non-signer meta.
func Writable(pk solana.PublicKey) *solana.AccountMeta {
	return solana.NewAccountMeta(pk, true, false)
}

// ReadOnly returns a read-only, non-signer meta.
func ReadOnly(pk solana.PublicKey) *solana.AccountMeta {
	return solana.NewAccountMeta(pk, false, false)
}

// Signer returns a read-only signer meta.
func Signer(pk solana.PublicKey) *solana.AccountMeta {
	return solana.NewAccountMeta(pk, false, true)
}

// WritableSigner returns a writable signer meta.
func WritableSigner(pk solana.PublicKey) *solana.AccountMeta {
	return solana.NewAccountMeta(pk, true, true)
}

// Keys returns the addresses in order.
func (l AccountList) Keys() []solana.PublicKey {
	out := make([]solana.PublicKey, len(l))
	for i, m := range l {
		out[i] = m.PublicKey
	}
	return out
}

// AccountMetaSlice converts the list for solana.NewInstruction.
func (l AccountList) AccountMetaSlice() solana.AccountMetaSlice {
	return solana.AccountMetaSlice(l)
}

// EqualKeys compares addresses position by position, ignoring flags.
func (l AccountList) EqualKeys(o AccountList) bool {
	if len(l) != len(o) {
		return false
	}
	for i := range l {
		if !l[i].PublicKey.Equals(o[i].PublicKey) {
			return false
		}
	}
	return true
}

// Equal compares addresses and signer/writable flags.
func (l AccountList) Equal(o AccountList) bool {
	if !l.EqualKeys(o) {
		return false
	}
	for i := range l {
		if l[i].IsSigner != o[i].IsSigner || l[i].IsWritable != o[i].IsWritable {
			return false
		}
	}
	return true
}

// SwapRequest is the direction and size hint for BuildForSwap.
type SwapRequest struct {
	InputMint  solana.PublicKey
	OutputMint solana.PublicKey
	AmountIn   uint64
}

// ObservedInstruction is a swap instruction seen on chain, with its account
// indexes already resolved against the transaction's account keys.
type ObservedInstruction struct {
	ProgramID solana.PublicKey
	Accounts  []solana.PublicKey
	Data      []byte
}

// Account returns the key at index i; callers check the length first.
func (ix ObservedInstruction) Account(i int) solana.PublicKey {
	return ix.Accounts[i]
}

// ObservedFromInstruction adapts a solana.Instruction.
func ObservedFromInstruction(ix solana.Instruction) (ObservedInstruction, error) {
	data, err := ix.Data()
	if err != nil {
		return ObservedInstruction{}, fmt.Errorf("instruction data: %w", err)
	}
	metas := ix.Accounts()
	keys := make([]solana.PublicKey, len(metas))
	for i, m := range metas {
		keys[i] = m.PublicKey
	}
	return ObservedInstruction{ProgramID: ix.ProgramID(), Accounts: keys, Data: data}, nil
}

// ObservedFromCompiled resolves a compiled instruction of a transaction.
func ObservedFromCompiled(tx *solana.Transaction, ix solana.CompiledInstruction) (ObservedInstruction, error) {
	program, err := tx.ResolveProgramIDIndex(ix.ProgramIDIndex)
	if err != nil {
		return ObservedInstruction{}, fmt.Errorf("resolve program: %w", err)
	}
	metas, err := ix.ResolveInstructionAccounts(&tx.Message)
	if err != nil {
		return ObservedInstruction{}, fmt.Errorf("resolve accounts: %w", err)
	}
	keys := make([]solana.PublicKey, len(metas))
	for i, m := range metas {
		keys[i] = m.PublicKey
	}
	return ObservedInstruction{ProgramID: program, Accounts: keys, Data: ix.Data}, nil
}
