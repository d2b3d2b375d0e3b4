package autofill

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gagliardetto/solana-go"
	computebudget "github.com/gagliardetto/solana-go/programs/compute-budget"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ninja0404/amm-go-sdk/pkg/constants"
	"github.com/ninja0404/amm-go-sdk/pkg/dex"
	"github.com/ninja0404/amm-go-sdk/pkg/pool"
	"github.com/ninja0404/amm-go-sdk/pkg/rpc"
	"github.com/ninja0404/amm-go-sdk/pkg/types"
)

var (
	payer = solana.MustPublicKeyFromBase58("MfDuWeqSHEqTFVYZ7LoexgAK9dxk7cy4DFJWjWMGVWa")
	eagle = solana.MustPublicKeyFromBase58("4JPyh4ATbE8hfcH7LqhxF3YThsECZm6htmLvMUyrbonk")
	pump  = solana.MustPublicKeyFromBase58("3Sf6oKCeEqCuco4aYtKHHDTBYLAWHiL47QjvkW1UYDEG")

	mints = dex.StaticMints{
		constants.WSOLMint: {Mint: constants.WSOLMint, Owner: constants.TokenProgramID, Decimals: 9},
		eagle:              {Mint: eagle, Owner: constants.TokenProgramID, Decimals: 6},
		pump:               {Mint: pump, Owner: constants.TokenProgramID, Decimals: 6},
	}
)

type fakeFetcher struct {
	accounts map[solana.PublicKey]*rpc.Account
	calls    int
}

func (f *fakeFetcher) GetMultipleAccounts(_ context.Context, keys []solana.PublicKey) ([]*rpc.Account, error) {
	f.calls++
	out := make([]*rpc.Account, len(keys))
	for i, k := range keys {
		out[i] = f.accounts[k]
	}
	return out, nil
}

func tokenAccount(amount uint64) *rpc.Account {
	data := make([]byte, 165)
	binary.LittleEndian.PutUint64(data[64:], amount)
	data[108] = 1
	return &rpc.Account{Owner: constants.TokenProgramID, Data: data}
}

func handle(t *testing.T, d dex.DexType, dir, addr string) *pool.Handle {
	t.Helper()
	raw, err := os.ReadFile(filepath.Join("..", "dex", dir, "testdata", "pool.b64"))
	require.NoError(t, err)
	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(string(raw)))
	require.NoError(t, err)
	h, err := pool.New(solana.MustPublicKeyFromBase58(addr), d, data)
	require.NoError(t, err)
	return h
}

func cpmm(t *testing.T) *pool.Handle {
	return handle(t, dex.RaydiumCpmm, "raydiumcpmm", "BtGUffMEnxrzdjyC3kKAHjGMpG1UdZiVWXZUaSpUv13C")
}

func ata(t *testing.T, wallet, mint solana.PublicKey) solana.PublicKey {
	t.Helper()
	a, err := dex.FindATA(wallet, mint, constants.TokenProgramID)
	require.NoError(t, err)
	return a
}

func programs(ixs []solana.Instruction) []solana.PublicKey {
	out := make([]solana.PublicKey, len(ixs))
	for i, ix := range ixs {
		out[i] = ix.ProgramID()
	}
	return out
}

func TestSwapBuyWithSOL(t *testing.T) {
	f := &fakeFetcher{accounts: map[solana.PublicKey]*rpc.Account{}}
	h := cpmm(t)

	plan, err := Swap(context.Background(), f, mints, h, payer, constants.WSOLMint, eagle, 1_000_000_000, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, f.calls)

	assert.Equal(t, []solana.PublicKey{
		constants.AssociatedTokenProgramID,
		constants.AssociatedTokenProgramID,
		constants.SystemProgramID,
		constants.TokenProgramID,
	}, programs(plan.Setup))
	for _, ix := range plan.Setup[:2] {
		data, err := ix.Data()
		require.NoError(t, err)
		assert.Equal(t, []byte{ataCreateIdempotent}, data)
	}
	assert.Equal(t, uint64(1_000_000_000), plan.WrapLamports)
	assert.Equal(t, ata(t, payer, constants.WSOLMint), plan.InputATA)
	assert.Equal(t, ata(t, payer, eagle), plan.OutputATA)

	require.Len(t, plan.Cleanup, 1)
	closeData, err := plan.Cleanup[0].Data()
	require.NoError(t, err)
	assert.Equal(t, []byte{9}, closeData)
	assert.Equal(t, plan.InputATA, plan.Cleanup[0].Accounts()[0].PublicKey)

	all := plan.Instructions()
	require.Len(t, all, 6)
	assert.Equal(t, constants.RaydiumCpmmProgramID, all[4].ProgramID())
}

func TestSwapWrapsShortfallOnly(t *testing.T) {
	f := &fakeFetcher{accounts: map[solana.PublicKey]*rpc.Account{
		ata(t, payer, constants.WSOLMint): tokenAccount(300_000_000),
		ata(t, payer, eagle):              tokenAccount(0),
	}}
	plan, err := Swap(context.Background(), f, mints, cpmm(t), payer, constants.WSOLMint, eagle, 1_000_000_000, 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(300_000_000), plan.InputBalance)
	assert.Equal(t, uint64(700_000_000), plan.WrapLamports)
	assert.Equal(t, []solana.PublicKey{constants.SystemProgramID, constants.TokenProgramID}, programs(plan.Setup))

	f.accounts[ata(t, payer, constants.WSOLMint)] = tokenAccount(2_000_000_000)
	plan, err = Swap(context.Background(), f, mints, cpmm(t), payer, constants.WSOLMint, eagle, 1_000_000_000, 1)
	require.NoError(t, err)
	assert.Zero(t, plan.WrapLamports)
	assert.Empty(t, plan.Setup)
}

func TestSwapSellOptions(t *testing.T) {
	f := &fakeFetcher{accounts: map[solana.PublicKey]*rpc.Account{
		ata(t, payer, eagle): tokenAccount(5_000_000),
	}}
	h := cpmm(t)
	ctx := context.Background()

	tests := []struct {
		name        string
		opts        []Option
		wantSetup   []solana.PublicKey
		wantCleanup []solana.PublicKey
	}{
		{
			name:        "unwrap output",
			wantSetup:   []solana.PublicKey{constants.AssociatedTokenProgramID},
			wantCleanup: []solana.PublicKey{ata(t, payer, constants.WSOLMint)},
		},
		{
			name:      "keep wsol",
			opts:      []Option{WithKeepWSOL()},
			wantSetup: []solana.PublicKey{constants.AssociatedTokenProgramID},
		},
		{
			name:        "close input",
			opts:        []Option{WithKeepWSOL(), WithCloseInputATA()},
			wantSetup:   []solana.PublicKey{constants.AssociatedTokenProgramID},
			wantCleanup: []solana.PublicKey{ata(t, payer, eagle)},
		},
		{
			name:      "compute budget and known ata",
			opts:      []Option{WithKeepWSOL(), WithComputeBudget(200_000, 1_000), WithKnownATAs(ata(t, payer, constants.WSOLMint))},
			wantSetup: []solana.PublicKey{computebudget.ProgramID, computebudget.ProgramID},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := Swap(ctx, f, mints, h, payer, eagle, constants.WSOLMint, 5_000_000, 1, tt.opts...)
			require.NoError(t, err)
			assert.Equal(t, tt.wantSetup, programs(plan.Setup))
			var closed []solana.PublicKey
			for _, ix := range plan.Cleanup {
				closed = append(closed, ix.Accounts()[0].PublicKey)
			}
			assert.Equal(t, tt.wantCleanup, closed)
		})
	}
}

func TestSwapPumpFeeATAs(t *testing.T) {
	h := handle(t, dex.PumpAmm, "pumpamm", "GUXAutvXh2Cvv2avGkbY8CfcsN9v2Uiwr8VCCqpn9HiU")
	f := &fakeFetcher{accounts: map[solana.PublicKey]*rpc.Account{}}

	var preview bytes.Buffer
	plan, err := Swap(context.Background(), f, mints, h, payer, pump, constants.WSOLMint, 1_000_000, 1, WithPreview(&preview))
	require.NoError(t, err)

	var created []solana.PublicKey
	for _, ix := range plan.Setup {
		if ix.ProgramID().Equals(constants.AssociatedTokenProgramID) {
			created = append(created, ix.Accounts()[1].PublicKey)
		}
	}
	metas := plan.Swap.Accounts()
	assert.ElementsMatch(t, []solana.PublicKey{
		ata(t, payer, pump),
		ata(t, payer, constants.WSOLMint),
		metas[pumpProtocolFeeRecipientIndex+1].PublicKey,
		metas[17].PublicKey,
	}, created)

	var summary map[string]any
	require.NoError(t, json.Unmarshal(preview.Bytes(), &summary))
	assert.Equal(t, "pump_amm", summary["dex"])
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("closed pipe") }

func TestSwapPreviewWriteError(t *testing.T) {
	f := &fakeFetcher{accounts: map[solana.PublicKey]*rpc.Account{}}
	var logs bytes.Buffer

	plan, err := Swap(context.Background(), f, mints, cpmm(t), payer, constants.WSOLMint, eagle, 1_000_000, 1,
		WithPreview(failingWriter{}), WithLogger(zerolog.New(&logs)))
	require.NoError(t, err)
	require.NotNil(t, plan.Swap)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(logs.Bytes(), &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "write swap preview", entry["message"])
	assert.Equal(t, "closed pipe", entry["error"])
}

func TestSwapValidation(t *testing.T) {
	h := cpmm(t)
	ctx := context.Background()
	f := &fakeFetcher{}

	_, err := Swap(ctx, nil, mints, h, payer, eagle, constants.WSOLMint, 1, 0)
	assert.ErrorIs(t, err, types.ErrNilRPC)
	_, err = Swap(ctx, f, nil, h, payer, eagle, constants.WSOLMint, 1, 0)
	assert.ErrorIs(t, err, types.ErrNilMintProvider)
	_, err = Swap(ctx, f, mints, h, solana.PublicKey{}, eagle, constants.WSOLMint, 1, 0)
	assert.Error(t, err)
	_, err = Swap(ctx, f, mints, h, payer, eagle, constants.WSOLMint, 0, 0)
	assert.Error(t, err)
	_, err = Swap(ctx, f, mints, h, payer, pump, constants.WSOLMint, 1, 0)
	assert.ErrorIs(t, err, types.ErrMintMismatch)
	assert.Zero(t, f.calls)
}
