package autofill

import (
	"io"

	"github.com/gagliardetto/solana-go"
	"github.com/rs/zerolog"
)

// Options configures autofill helpers.
type Options struct {
	Preview          io.Writer
	Logger           zerolog.Logger
	KnownATAs        []solana.PublicKey // Skip the existence check for these addresses
	KeepWSOL         bool               // Leave the WSOL account open after the swap
	CloseInputATA    bool               // Close the (non-WSOL) input ATA after the swap
	ComputeUnitLimit uint32             // 0 = no SetComputeUnitLimit
	ComputeUnitPrice uint64             // micro-lamports per CU, 0 = no SetComputeUnitPrice
}

// Option functional option.
type Option func(*Options)

// WithPreview writes a JSON summary of the plan to w.
func WithPreview(w io.Writer) Option {
	return func(o *Options) { o.Preview = w }
}

// WithLogger reports failures that do not fail the plan, such as a preview
// that cannot be written.
func WithLogger(log zerolog.Logger) Option {
	return func(o *Options) { o.Logger = log }
}

// WithKnownATAs skips the existence check for the specified addresses.
// Use this when you know the ATA exists (e.g. right after a buy) to avoid
// RPC state propagation delays.
func WithKnownATAs(atas ...solana.PublicKey) Option {
	return func(o *Options) { o.KnownATAs = append(o.KnownATAs, atas...) }
}

// WithKeepWSOL skips the close that unwraps WSOL back to SOL.
func WithKeepWSOL() Option {
	return func(o *Options) { o.KeepWSOL = true }
}

// WithCloseInputATA closes the input token ATA after the swap.
// Only use when you are selling ALL tokens in the account.
func WithCloseInputATA() Option {
	return func(o *Options) { o.CloseInputATA = true }
}

// WithComputeBudget prepends compute budget instructions.
func WithComputeBudget(unitLimit uint32, microLamports uint64) Option {
	return func(o *Options) {
		o.ComputeUnitLimit = unitLimit
		o.ComputeUnitPrice = microLamports
	}
}
