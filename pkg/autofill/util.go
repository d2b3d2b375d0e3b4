package autofill

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	computebudget "github.com/gagliardetto/solana-go/programs/compute-budget"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/programs/token"

	"github.com/ninja0404/amm-go-sdk/pkg/constants"
	"github.com/ninja0404/amm-go-sdk/pkg/dex"
	"github.com/ninja0404/amm-go-sdk/pkg/rpc"
	"github.com/ninja0404/amm-go-sdk/pkg/snapshot"
)

// ataCreateIdempotent is the associated token program's CreateIdempotent.
const ataCreateIdempotent = 1

// ataRequest holds parameters for a single ATA ensure check.
type ataRequest struct {
	Payer        solana.PublicKey
	Wallet       solana.PublicKey
	Mint         solana.PublicKey
	TokenProgram solana.PublicKey
	ATAAddr      solana.PublicKey // derived
}

// ensureATABatchResult holds both instructions and balances from ATA batch check.
type ensureATABatchResult struct {
	Instructions []solana.Instruction
	Balances     map[solana.PublicKey]uint64
	Existing     map[solana.PublicKey]bool
}

// ensureATABatchWithBalances checks every ATA in one batch call and returns
// create instructions for missing ones plus balances (0 when missing).
// Addresses in known are assumed to exist and are not fetched.
func ensureATABatchWithBalances(ctx context.Context, fetcher rpc.AccountFetcher, requests []ataRequest, known map[solana.PublicKey]bool) (ensureATABatchResult, error) {
	result := ensureATABatchResult{
		Balances: make(map[solana.PublicKey]uint64),
		Existing: make(map[solana.PublicKey]bool),
	}
	if len(requests) == 0 {
		return result, nil
	}

	// derive ATA addresses, dropping duplicates and known ones
	var pending []ataRequest
	seen := make(map[solana.PublicKey]bool, len(requests))
	for _, req := range requests {
		ata, err := dex.FindATA(req.Wallet, req.Mint, req.TokenProgram)
		if err != nil {
			return result, fmt.Errorf("derive ata for %s: %w", req.Mint, err)
		}
		req.ATAAddr = ata
		if seen[ata] {
			continue
		}
		seen[ata] = true
		if known[ata] {
			result.Existing[ata] = true
			continue
		}
		pending = append(pending, req)
	}
	if len(pending) == 0 {
		return result, nil
	}

	addrs := make([]solana.PublicKey, len(pending))
	for i := range pending {
		addrs[i] = pending[i].ATAAddr
	}
	accs, err := fetcher.GetMultipleAccounts(ctx, addrs)
	if err != nil {
		return result, fmt.Errorf("fetch token accounts: %w", err)
	}

	for i, req := range pending {
		var acc *rpc.Account
		if i < len(accs) {
			acc = accs[i]
		}
		if acc != nil && acc.Owner.Equals(req.TokenProgram) {
			result.Existing[req.ATAAddr] = true
			if amount, err := snapshot.TokenBalance(acc.Data); err == nil {
				result.Balances[req.ATAAddr] = amount
			}
			continue
		}
		result.Balances[req.ATAAddr] = 0
		result.Instructions = append(result.Instructions, buildCreateATAIdempotent(req))
	}
	return result, nil
}

func buildCreateATAIdempotent(req ataRequest) solana.Instruction {
	metas := []*solana.AccountMeta{
		solana.NewAccountMeta(req.Payer, true, true),
		solana.NewAccountMeta(req.ATAAddr, true, false),
		solana.NewAccountMeta(req.Wallet, false, false),
		solana.NewAccountMeta(req.Mint, false, false),
		solana.NewAccountMeta(constants.SystemProgramID, false, false),
		solana.NewAccountMeta(req.TokenProgram, false, false),
	}
	return solana.NewInstruction(constants.AssociatedTokenProgramID, metas, []byte{ataCreateIdempotent})
}

// buildWrapWSOL constructs transfer lamports -> ATA + sync_native.
func buildWrapWSOL(payer solana.PublicKey, wsolATA solana.PublicKey, lamports uint64) []solana.Instruction {
	if lamports == 0 {
		return nil
	}
	return []solana.Instruction{
		system.NewTransferInstruction(
			lamports,
			payer,
			wsolATA,
		).Build(),
		token.NewSyncNativeInstruction(wsolATA).Build(),
	}
}

// buildCloseAccount constructs a CloseAccount instruction for any Token Program (SPL or Token-2022).
func buildCloseAccount(account, destination, owner, tokenProgram solana.PublicKey) solana.Instruction {
	// CloseAccount instruction discriminator = 9
	data := []byte{9}
	metas := []*solana.AccountMeta{
		solana.NewAccountMeta(account, true, false),     // account to close (writable)
		solana.NewAccountMeta(destination, true, false), // destination for rent (writable)
		solana.NewAccountMeta(owner, false, true),       // owner (signer)
	}
	return solana.NewInstruction(tokenProgram, metas, data)
}

func buildComputeBudget(o *Options) ([]solana.Instruction, error) {
	var out []solana.Instruction
	if o.ComputeUnitLimit > 0 {
		ix, err := computebudget.NewSetComputeUnitLimitInstruction(o.ComputeUnitLimit).ValidateAndBuild()
		if err != nil {
			return nil, fmt.Errorf("build compute unit limit: %w", err)
		}
		out = append(out, ix)
	}
	if o.ComputeUnitPrice > 0 {
		ix, err := computebudget.NewSetComputeUnitPriceInstruction(o.ComputeUnitPrice).ValidateAndBuild()
		if err != nil {
			return nil, fmt.Errorf("build compute unit price: %w", err)
		}
		out = append(out, ix)
	}
	return out, nil
}
