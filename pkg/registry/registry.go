// Package registry caches SPL mint metadata behind dex.MintInfoProvider.
package registry

import (
	"context"
	"fmt"
	"sync"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/token"
	lru "github.com/hashicorp/golang-lru"
	"github.com/rs/zerolog"

	"github.com/ninja0404/amm-go-sdk/pkg/constants"
	"github.com/ninja0404/amm-go-sdk/pkg/dex"
	"github.com/ninja0404/amm-go-sdk/pkg/metrics"
	"github.com/ninja0404/amm-go-sdk/pkg/rpc"
	"github.com/ninja0404/amm-go-sdk/pkg/types"
)

// MintSize is the base mint layout shared by SPL Token and Token-2022.
const MintSize = 82

// MintRegistry is an LRU of mint metadata filled from an AccountFetcher.
// Lookups that fail are not cached.
type MintRegistry struct {
	fetcher rpc.AccountFetcher
	cache   *lru.Cache
	log     zerolog.Logger
	metrics *metrics.Metrics

	// serializes fetches so concurrent misses on one mint fetch once
	mu sync.Mutex
}

type Option func(*MintRegistry)

func WithLogger(log zerolog.Logger) Option {
	return func(r *MintRegistry) { r.log = log }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(r *MintRegistry) { r.metrics = m }
}

func New(fetcher rpc.AccountFetcher, size int, opts ...Option) (*MintRegistry, error) {
	if fetcher == nil {
		return nil, types.ErrNilRPC
	}
	cache, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("failed to create mint cache: %w", err)
	}
	r := &MintRegistry{fetcher: fetcher, cache: cache, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Put seeds the cache, e.g. with mints known from config.
func (r *MintRegistry) Put(info dex.MintInfo) {
	r.cache.Add(info.Mint, info)
}

func (r *MintRegistry) Len() int {
	return r.cache.Len()
}

func (r *MintRegistry) cached(mint solana.PublicKey) (dex.MintInfo, bool) {
	v, ok := r.cache.Get(mint)
	if !ok {
		return dex.MintInfo{}, false
	}
	return v.(dex.MintInfo), true
}

// MintInfo implements dex.MintInfoProvider.
func (r *MintRegistry) MintInfo(ctx context.Context, mint solana.PublicKey) (dex.MintInfo, error) {
	if info, ok := r.cached(mint); ok {
		r.metrics.RegistryHit()
		return info, nil
	}
	loaded, err := r.load(ctx, []solana.PublicKey{mint})
	if err != nil {
		return dex.MintInfo{}, err
	}
	info, ok := loaded[mint]
	if !ok {
		return dex.MintInfo{}, fmt.Errorf("%w: %s", types.ErrMintNotFound, mint)
	}
	return info, nil
}

// Prefetch loads every uncached mint in a single batch. It fails if any
// mint is missing or is not a token mint; the others are still cached.
func (r *MintRegistry) Prefetch(ctx context.Context, mints ...solana.PublicKey) error {
	_, err := r.load(ctx, mints)
	return err
}

// load returns the info of every requested mint it could resolve, so a
// caller never depends on the entry surviving in the cache.
func (r *MintRegistry) load(ctx context.Context, mints []solana.PublicKey) (map[solana.PublicKey]dex.MintInfo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make(map[solana.PublicKey]dex.MintInfo, len(mints))
	var missing []solana.PublicKey
	seen := make(map[solana.PublicKey]struct{}, len(mints))
	for _, m := range mints {
		if _, dup := seen[m]; dup {
			continue
		}
		seen[m] = struct{}{}
		if v, ok := r.cache.Peek(m); ok {
			out[m] = v.(dex.MintInfo)
			continue
		}
		missing = append(missing, m)
	}
	if len(missing) == 0 {
		return out, nil
	}
	r.metrics.RegistryMiss(len(missing))

	accs, err := r.fetcher.GetMultipleAccounts(ctx, missing)
	if err != nil {
		return nil, fmt.Errorf("fetch mints: %w", err)
	}

	var firstErr error
	for i, mint := range missing {
		var acc *rpc.Account
		if i < len(accs) {
			acc = accs[i]
		}
		if acc == nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("%w: %s", types.ErrMintNotFound, mint)
			}
			continue
		}
		info, err := DecodeMint(mint, acc.Owner, acc.Data)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		out[mint] = info
		r.cache.Add(mint, info)
		r.log.Debug().
			Str("mint", mint.String()).
			Str("program", info.Owner.String()).
			Uint8("decimals", info.Decimals).
			Msg("mint cached")
	}
	return out, firstErr
}

// DecodeMint reads the base mint layout; extensions past MintSize are ignored.
func DecodeMint(mint, owner solana.PublicKey, data []byte) (dex.MintInfo, error) {
	if !owner.Equals(constants.TokenProgramID) && !owner.Equals(constants.Token2022ProgramID) {
		return dex.MintInfo{}, fmt.Errorf("%w: %s is owned by %s", types.ErrMintNotFound, mint, owner)
	}
	if err := types.CheckLayout("mint", data, MintSize); err != nil {
		return dex.MintInfo{}, err
	}
	var m token.Mint
	if err := bin.NewBinDecoder(data[:MintSize]).Decode(&m); err != nil {
		return dex.MintInfo{}, types.NewSchemaMismatch("mint", MintSize, len(data), err)
	}
	if !m.IsInitialized {
		return dex.MintInfo{}, fmt.Errorf("%w: %s is not initialized", types.ErrMintNotFound, mint)
	}
	return dex.MintInfo{Mint: mint, Owner: owner, Decimals: m.Decimals, Supply: m.Supply}, nil
}
