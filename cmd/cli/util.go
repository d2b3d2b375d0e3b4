package main

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/gagliardetto/solana-go"

	"github.com/ninja0404/amm-go-sdk/pkg/dex"
	"github.com/ninja0404/amm-go-sdk/pkg/dex/meteoradammv2"
	"github.com/ninja0404/amm-go-sdk/pkg/dex/meteoradlmm"
	"github.com/ninja0404/amm-go-sdk/pkg/dex/pumpamm"
	"github.com/ninja0404/amm-go-sdk/pkg/dex/raydiumclmm"
	"github.com/ninja0404/amm-go-sdk/pkg/dex/raydiumcpmm"
	"github.com/ninja0404/amm-go-sdk/pkg/dex/whirlpool"
	"github.com/ninja0404/amm-go-sdk/pkg/pool"
)

// parsePubkey converts base58 string to PublicKey.
func parsePubkey(label, v string) (solana.PublicKey, error) {
	if v == "" {
		return solana.PublicKey{}, fmt.Errorf("%s is required", label)
	}
	pk, err := solana.PublicKeyFromBase58(v)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("%s invalid pubkey: %w", label, err)
	}
	return pk, nil
}

// parsePubkeyList splits a comma separated list of base58 keys.
func parsePubkeyList(label, v string) ([]solana.PublicKey, error) {
	var out []solana.PublicKey
	for i, part := range strings.Split(v, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		pk, err := parsePubkey(fmt.Sprintf("%s[%d]", label, i), part)
		if err != nil {
			return nil, err
		}
		out = append(out, pk)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%s is required", label)
	}
	return out, nil
}

// poolDiscriminators lists the pool account tag of every protocol. Two
// pairs share a tag, so a match is confirmed by decoding, and within each
// pair the larger layout comes first.
var poolDiscriminators = []struct {
	dex  dex.DexType
	disc [8]byte
}{
	{dex.MeteoraDlmm, meteoradlmm.LbPairDiscriminator},
	{dex.MeteoraDammV2, meteoradammv2.PoolDiscriminator},
	{dex.RaydiumClmm, raydiumclmm.PoolStateDiscriminator},
	{dex.Whirlpool, whirlpool.WhirlpoolDiscriminator},
	{dex.RaydiumCpmm, raydiumcpmm.PoolStateDiscriminator},
	{dex.PumpAmm, pumpamm.PoolDiscriminator},
}

// decodePool picks the protocol by owner program, falling back to the
// account discriminator for accounts owned by an unknown program id.
func decodePool(addr, owner solana.PublicKey, data []byte, opts ...pool.Option) (*pool.Handle, error) {
	if d, ok := dex.DexTypeForProgram(owner); ok {
		return pool.New(addr, d, data, opts...)
	}
	if len(data) < 8 {
		return nil, fmt.Errorf("account %s: data too short", addr)
	}
	for _, c := range poolDiscriminators {
		if !bytes.Equal(data[:8], c.disc[:]) {
			continue
		}
		if h, err := pool.New(addr, c.dex, data, opts...); err == nil {
			return h, nil
		}
	}
	return nil, fmt.Errorf("account %s (owner %s) is not a supported pool", addr, owner)
}

// fetchPool loads and decodes the pool account at addr.
func (d *runtimeDeps) fetchPool(ctx context.Context, addr solana.PublicKey) (*pool.Handle, error) {
	acc, err := d.rpc.GetAccountInfo(ctx, addr)
	if err != nil {
		return nil, fmt.Errorf("fetch pool: %w", err)
	}
	h, err := decodePool(addr, acc.Owner, acc.Data, pool.WithLargeTradeThreshold(d.cfg.Build.LargeTradeThreshold))
	if err != nil {
		return nil, err
	}
	d.log.Debug().Str("pool", addr.String()).Str("dex", h.DexType().String()).Msg("pool decoded")
	return h, nil
}

// swapFlags are shared by every command that describes one swap.
type swapFlags struct {
	pool   string
	in     string
	out    string
	amount uint64
}

type parsedSwap struct {
	pool solana.PublicKey
	in   solana.PublicKey
	out  solana.PublicKey
}

func (f *swapFlags) parse() (parsedSwap, error) {
	var s parsedSwap
	var err error
	if s.pool, err = parsePubkey("pool", f.pool); err != nil {
		return s, err
	}
	if s.in, err = parsePubkey("in", f.in); err != nil {
		return s, err
	}
	if s.out, err = parsePubkey("out", f.out); err != nil {
		return s, err
	}
	if f.amount == 0 {
		return s, fmt.Errorf("amount must be positive")
	}
	return s, nil
}
