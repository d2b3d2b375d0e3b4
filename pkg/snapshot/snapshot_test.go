package snapshot

import (
	"context"
	"encoding/base64"
	"encoding/binary"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ninja0404/amm-go-sdk/pkg/constants"
	"github.com/ninja0404/amm-go-sdk/pkg/dex"
	"github.com/ninja0404/amm-go-sdk/pkg/dex/pumpamm"
	"github.com/ninja0404/amm-go-sdk/pkg/dex/raydiumcpmm"
	"github.com/ninja0404/amm-go-sdk/pkg/pool"
	"github.com/ninja0404/amm-go-sdk/pkg/rpc"
	"github.com/ninja0404/amm-go-sdk/pkg/types"
)

type mapFetcher map[solana.PublicKey]*rpc.Account

func (m mapFetcher) GetMultipleAccounts(_ context.Context, keys []solana.PublicKey) ([]*rpc.Account, error) {
	out := make([]*rpc.Account, len(keys))
	for i, k := range keys {
		out[i] = m[k]
	}
	return out, nil
}

func tokenAccount(amount uint64) *rpc.Account {
	data := make([]byte, TokenAccountSize)
	binary.LittleEndian.PutUint64(data[64:], amount)
	data[108] = 1 // initialized
	return &rpc.Account{Owner: constants.TokenProgramID, Data: data}
}

func loadHandle(t *testing.T, d dex.DexType, dir, addr string) *pool.Handle {
	t.Helper()
	raw, err := os.ReadFile(filepath.Join("..", "dex", dir, "testdata", "pool.b64"))
	require.NoError(t, err)
	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(string(raw)))
	require.NoError(t, err)
	h, err := pool.New(solana.MustPublicKeyFromBase58(addr), d, data)
	require.NoError(t, err)
	return h
}

func encode(t *testing.T, v any) []byte {
	t.Helper()
	data, err := dex.EncodeLayout(v)
	require.NoError(t, err)
	return data
}

func TestLoadPump(t *testing.T) {
	h := loadHandle(t, dex.PumpAmm, "pumpamm", "GUXAutvXh2Cvv2avGkbY8CfcsN9v2Uiwr8VCCqpn9HiU")
	id := h.Identity()

	mint := make([]byte, 82)
	binary.LittleEndian.PutUint64(mint[36:], 1_000_000_000_000_000)
	mint[44], mint[45] = 6, 1

	global := pumpamm.GlobalConfig{
		Discriminator:             pumpamm.GlobalConfigDiscriminator,
		LpFeeBasisPoints:          20,
		ProtocolFeeBasisPoints:    5,
		CoinCreatorFeeBasisPoints: 5,
	}
	f := mapFetcher{
		id.BaseVault:                  tokenAccount(200_000_000_000_000),
		id.QuoteVault:                 tokenAccount(100_000_000_000),
		constants.PumpAmmGlobalConfig: {Owner: constants.PumpAmmProgramID, Data: encode(t, &global)},
		id.BaseMint:                   {Owner: constants.TokenProgramID, Data: mint},
	}

	snap, err := NewLoader(f, zerolog.Nop()).Load(context.Background(), h)
	require.NoError(t, err)
	require.NotNil(t, snap.Reserves)
	assert.Equal(t, pool.Reserves{Base: 200_000_000_000_000, Quote: 100_000_000_000}, *snap.Reserves)
	assert.Equal(t, uint64(1_000_000_000_000_000), snap.BaseSupply)
	require.NotNil(t, snap.PumpGlobalConfig)
	assert.Equal(t, uint64(20), snap.PumpGlobalConfig.LpFeeBasisPoints)
	assert.Nil(t, snap.PumpFeeConfig)

	out, err := h.Quote(pool.QuoteParams{InputMint: id.BaseMint, OutputMint: constants.WSOLMint, AmountIn: 1_000_000_000_000, Snapshot: snap})
	require.NoError(t, err)
	assert.Equal(t, uint64(496_019_898), out)
}

func TestLoadCpmm(t *testing.T) {
	h := loadHandle(t, dex.RaydiumCpmm, "raydiumcpmm", "BtGUffMEnxrzdjyC3kKAHjGMpG1UdZiVWXZUaSpUv13C")
	id := h.Identity()
	state := h.State().(*raydiumcpmm.PoolState)

	cfg := raydiumcpmm.AmmConfig{TradeFeeRate: 10_000}
	f := mapFetcher{
		id.BaseVault:    tokenAccount(200_000_000_000_000),
		id.QuoteVault:   tokenAccount(100_000_000_000),
		state.AmmConfig: {Data: encode(t, &cfg)},
	}
	snap, err := NewLoader(f, zerolog.Nop()).Load(context.Background(), h)
	require.NoError(t, err)
	require.NotNil(t, snap.CpmmConfig)
	assert.Equal(t, uint64(10_000), snap.CpmmConfig.TradeFeeRate)
	assert.Nil(t, snap.ClmmConfig)
}

func TestLoadErrors(t *testing.T) {
	h := loadHandle(t, dex.Whirlpool, "whirlpool", "HsQGWEh3ib6w59rBh5n1jXmi8VXFBqKEjxozL6PGfcgb")
	id := h.Identity()

	_, err := NewLoader(mapFetcher{id.BaseVault: tokenAccount(1)}, zerolog.Nop()).Load(context.Background(), h)
	assert.ErrorIs(t, err, types.ErrAccountNotFound)

	short := mapFetcher{id.BaseVault: tokenAccount(1), id.QuoteVault: {Data: make([]byte, 10)}}
	_, err = NewLoader(short, zerolog.Nop()).Load(context.Background(), h)
	assert.ErrorIs(t, err, types.ErrTooShort)

	_, err = NewLoader(nil, zerolog.Nop()).Load(context.Background(), h)
	assert.ErrorIs(t, err, types.ErrNilRPC)
}

func TestTokenBalance(t *testing.T) {
	acc := tokenAccount(42)
	got, err := TokenBalance(append(acc.Data, make([]byte, 50)...))
	require.NoError(t, err)
	assert.Equal(t, uint64(42), got)
}
