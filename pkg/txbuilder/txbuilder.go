// Package txbuilder assembles unsigned swap transactions and simulates them
// without signature verification.
package txbuilder

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	solanarpc "github.com/gagliardetto/solana-go/rpc"

	"github.com/ninja0404/amm-go-sdk/pkg/types"
)

// Client is the subset of rpc.Client the builder needs.
type Client interface {
	GetLatestBlockhash(ctx context.Context) (*solanarpc.GetLatestBlockhashResult, error)
	SimulateTransaction(ctx context.Context, tx *solana.Transaction, opts *solanarpc.SimulateTransactionOpts) (*solanarpc.SimulateTransactionResponse, error)
}

// Builder ties together RPC and the commitment used for simulation.
type Builder struct {
	client     Client
	commitment solanarpc.CommitmentType
}

// NewBuilder constructs a builder with the provided client and commitment.
func NewBuilder(client Client, commitment solanarpc.CommitmentType) *Builder {
	if commitment == "" {
		commitment = solanarpc.CommitmentConfirmed
	}
	return &Builder{client: client, commitment: commitment}
}

// BuildTransaction builds a transaction with fresh blockhash. Signature
// slots are zero-filled so the transaction serializes unsigned.
func (b *Builder) BuildTransaction(ctx context.Context, feePayer solana.PublicKey, instructions ...solana.Instruction) (*solana.Transaction, error) {
	if b.client == nil {
		return nil, types.ErrNilRPC
	}
	if len(instructions) == 0 {
		return nil, types.ErrNoInstructions
	}

	latest, err := b.client.GetLatestBlockhash(ctx)
	if err != nil {
		return nil, fmt.Errorf("get latest blockhash: %w", err)
	}
	return buildUnsigned(latest.Value.Blockhash, feePayer, instructions...)
}

func buildUnsigned(blockhash solana.Hash, feePayer solana.PublicKey, instructions ...solana.Instruction) (*solana.Transaction, error) {
	builder := solana.NewTransactionBuilder().
		SetRecentBlockHash(blockhash).
		SetFeePayer(feePayer)

	for _, ix := range instructions {
		builder.AddInstruction(ix)
	}

	tx, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("build transaction: %w", err)
	}
	tx.Signatures = make([]solana.Signature, tx.Message.Header.NumRequiredSignatures)
	return tx, nil
}

// SimulationResult is what the node reported for a simulated transaction.
type SimulationResult struct {
	Logs          []string `json:"logs" yaml:"logs"`
	UnitsConsumed uint64   `json:"unitsConsumed" yaml:"unitsConsumed"`
	Err           string   `json:"error,omitempty" yaml:"error,omitempty"`
}

// Simulate runs tx with sigVerify=false and the node's latest blockhash.
// A failed execution returns the result together with a *types.ProgramError
// or *types.SimulationError.
func (b *Builder) Simulate(ctx context.Context, tx *solana.Transaction) (*SimulationResult, error) {
	if b.client == nil {
		return nil, types.ErrNilRPC
	}
	res, err := b.client.SimulateTransaction(ctx, tx, &solanarpc.SimulateTransactionOpts{
		SigVerify:              false,
		ReplaceRecentBlockhash: true,
		Commitment:             b.commitment,
	})
	if err != nil {
		return nil, types.RPCError{Op: "simulateTransaction", Err: err}
	}
	if res == nil || res.Value == nil {
		return nil, types.RPCError{Op: "simulateTransaction", Err: fmt.Errorf("empty response")}
	}

	out := &SimulationResult{Logs: res.Value.Logs}
	if res.Value.UnitsConsumed != nil {
		out.UnitsConsumed = *res.Value.UnitsConsumed
	}
	if simErr := types.ParseSimulationError(res.Value.Err, res.Value.Logs); simErr != nil {
		out.Err = simErr.Error()
		return out, simErr
	}
	return out, nil
}

// BuildAndSimulate builds an unsigned transaction for feePayer and simulates it.
func (b *Builder) BuildAndSimulate(ctx context.Context, feePayer solana.PublicKey, instructions ...solana.Instruction) (*SimulationResult, error) {
	tx, err := b.BuildTransaction(ctx, feePayer, instructions...)
	if err != nil {
		return nil, err
	}
	return b.Simulate(ctx, tx)
}
