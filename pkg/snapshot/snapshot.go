// Package snapshot fetches the chain state a pool quote depends on besides
// the pool account itself.
package snapshot

import (
	"context"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/token"
	"github.com/rs/zerolog"

	"github.com/ninja0404/amm-go-sdk/pkg/constants"
	"github.com/ninja0404/amm-go-sdk/pkg/dex"
	"github.com/ninja0404/amm-go-sdk/pkg/dex/pumpamm"
	"github.com/ninja0404/amm-go-sdk/pkg/dex/raydiumclmm"
	"github.com/ninja0404/amm-go-sdk/pkg/dex/raydiumcpmm"
	"github.com/ninja0404/amm-go-sdk/pkg/pool"
	"github.com/ninja0404/amm-go-sdk/pkg/registry"
	"github.com/ninja0404/amm-go-sdk/pkg/rpc"
	"github.com/ninja0404/amm-go-sdk/pkg/types"
)

// TokenAccountSize is the base SPL token account layout.
const TokenAccountSize = 165

type Loader struct {
	fetcher rpc.AccountFetcher
	log     zerolog.Logger
}

func NewLoader(fetcher rpc.AccountFetcher, log zerolog.Logger) *Loader {
	return &Loader{fetcher: fetcher, log: log}
}

// slot names what each fetched key is for.
type slot int

const (
	slotBaseVault slot = iota
	slotQuoteVault
	slotCpmmConfig
	slotClmmConfig
	slotPumpGlobal
	slotPumpFee
	slotBaseMint
)

// Load reads vault balances and the protocol's config accounts in a single
// batch. Missing vaults fail; missing optional configs are left nil.
func (l *Loader) Load(ctx context.Context, h *pool.Handle) (pool.Snapshot, error) {
	if l.fetcher == nil {
		return pool.Snapshot{}, types.ErrNilRPC
	}
	id := h.Identity()
	keys := []solana.PublicKey{id.BaseVault, id.QuoteVault}
	slots := []slot{slotBaseVault, slotQuoteVault}

	switch s := h.State().(type) {
	case *raydiumcpmm.PoolState:
		keys, slots = append(keys, s.AmmConfig), append(slots, slotCpmmConfig)
	case *raydiumclmm.PoolState:
		keys, slots = append(keys, s.AmmConfig), append(slots, slotClmmConfig)
	case *pumpamm.Pool:
		keys = append(keys, constants.PumpAmmGlobalConfig, constants.PumpAmmFeeConfig, s.BaseMint)
		slots = append(slots, slotPumpGlobal, slotPumpFee, slotBaseMint)
	}

	accs, err := l.fetcher.GetMultipleAccounts(ctx, keys)
	if err != nil {
		return pool.Snapshot{}, fmt.Errorf("load %s snapshot: %w", h.DexType(), err)
	}
	if len(accs) != len(keys) {
		return pool.Snapshot{}, fmt.Errorf("load %s snapshot: requested %d accounts, got %d", h.DexType(), len(keys), len(accs))
	}

	var snap pool.Snapshot
	var reserves pool.Reserves
	for i, acc := range accs {
		if acc == nil {
			if slots[i] == slotBaseVault || slots[i] == slotQuoteVault {
				return pool.Snapshot{}, fmt.Errorf("%w: vault %s", types.ErrAccountNotFound, keys[i])
			}
			l.log.Debug().Str("account", keys[i].String()).Msg("optional snapshot account missing")
			continue
		}
		switch slots[i] {
		case slotBaseVault:
			reserves.Base, err = TokenBalance(acc.Data)
		case slotQuoteVault:
			reserves.Quote, err = TokenBalance(acc.Data)
		case slotCpmmConfig:
			snap.CpmmConfig, err = raydiumcpmm.DecodeAmmConfig(acc.Data)
		case slotClmmConfig:
			snap.ClmmConfig, err = raydiumclmm.DecodeAmmConfig(acc.Data)
		case slotPumpGlobal:
			snap.PumpGlobalConfig, err = pumpamm.DecodeGlobalConfig(acc.Data)
		case slotPumpFee:
			snap.PumpFeeConfig, err = pumpamm.DecodeFeeConfig(acc.Data)
		case slotBaseMint:
			var info dex.MintInfo
			info, err = registry.DecodeMint(keys[i], acc.Owner, acc.Data)
			snap.BaseSupply = info.Supply
		}
		if err != nil {
			return pool.Snapshot{}, fmt.Errorf("load %s snapshot: account %s: %w", h.DexType(), keys[i], err)
		}
	}
	snap.Reserves = &reserves

	l.log.Debug().
		Str("pool", id.Address.String()).
		Str("dex", h.DexType().String()).
		Uint64("base", reserves.Base).
		Uint64("quote", reserves.Quote).
		Msg("snapshot loaded")
	return snap, nil
}

// TokenBalance reads the amount of an SPL or Token-2022 token account.
func TokenBalance(data []byte) (uint64, error) {
	if len(data) < TokenAccountSize {
		return 0, &types.DecodeError{Account: "token account", Kind: types.DecodeTooShort, Want: TokenAccountSize, Got: len(data)}
	}
	var acc token.Account
	if err := bin.NewBinDecoder(data[:TokenAccountSize]).Decode(&acc); err != nil {
		return 0, types.NewSchemaMismatch("token account", TokenAccountSize, len(data), err)
	}
	return acc.Amount, nil
}
