// Package pumpamm decodes, prices and builds swaps for Pump AMM pools, the
// constant-product venue that bonding-curve tokens graduate to.
package pumpamm

import (
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"github.com/ninja0404/amm-go-sdk/pkg/constants"
	"github.com/ninja0404/amm-go-sdk/pkg/dex"
	"github.com/ninja0404/amm-go-sdk/pkg/types"
)

const (
	PoolSize       = 300
	LegacyPoolSize = 211 // pools created before coin_creator was added

	// GlobalConfigSize covers the fields the SDK reads; newer accounts are longer.
	GlobalConfigSize = 353
	// FeeConfigMinSize is a FeeConfig with an empty tier vector.
	FeeConfigMinSize = 69

	// BpsDenominator scales every Pump AMM fee.
	BpsDenominator = 10_000
)

// GlobalConfig.DisableFlags bits.
const (
	DisableCreatePool uint8 = 1 << iota
	DisableDeposit
	DisableWithdraw
	DisableBuy
	DisableSell
)

var (
	PoolDiscriminator         = [8]byte{0xf1, 0x9a, 0x6d, 0x04, 0x11, 0xb1, 0x6d, 0xbc}
	GlobalConfigDiscriminator = [8]byte{0x95, 0x08, 0x9c, 0xca, 0xa0, 0xfc, 0xb0, 0xd9}
	FeeConfigDiscriminator    = [8]byte{0x8f, 0x34, 0x92, 0xbb, 0xdb, 0x7b, 0x4c, 0x9b}
)

// Pool is the on-chain pool account.
type Pool struct {
	Discriminator         [8]uint8         `json:"-"`
	PoolBump              uint8            `json:"poolBump"`
	Index                 uint16           `json:"index"`
	Creator               solana.PublicKey `json:"creator"`
	BaseMint              solana.PublicKey `json:"baseMint"`
	QuoteMint             solana.PublicKey `json:"quoteMint"`
	LpMint                solana.PublicKey `json:"lpMint"`
	PoolBaseTokenAccount  solana.PublicKey `json:"poolBaseTokenAccount"`
	PoolQuoteTokenAccount solana.PublicKey `json:"poolQuoteTokenAccount"`
	LpSupply              uint64           `json:"lpSupply"`
	CoinCreator           solana.PublicKey `json:"coinCreator"`
	Reserved              [57]uint8        `json:"-"`
}

// Fees are basis points charged on a swap.
type Fees struct {
	LpFeeBps       uint64 `json:"lpFeeBps"`
	ProtocolFeeBps uint64 `json:"protocolFeeBps"`
	CreatorFeeBps  uint64 `json:"creatorFeeBps"`
}

// Total returns the sum of the fees that apply, skipping the creator fee
// when the pool has no coin creator.
func (f Fees) Total(withCreator bool) uint64 {
	total := f.LpFeeBps + f.ProtocolFeeBps
	if withCreator {
		total += f.CreatorFeeBps
	}
	return total
}

// FeeTier applies from MarketCapLamportsThreshold upward.
type FeeTier struct {
	MarketCapLamportsThreshold bin.Uint128 `json:"marketCapLamportsThreshold"`
	Fees                       Fees        `json:"fees"`
}

// FeeConfig is the fee program's per-AMM fee schedule.
type FeeConfig struct {
	Discriminator [8]uint8         `json:"-"`
	Bump          uint8            `json:"bump"`
	Admin         solana.PublicKey `json:"admin"`
	FlatFees      Fees             `json:"flatFees"`
	FeeTiers      []FeeTier        `json:"feeTiers"`
}

// GlobalConfig holds the protocol-wide flat fees and switches.
type GlobalConfig struct {
	Discriminator                [8]uint8            `json:"-"`
	Admin                        solana.PublicKey    `json:"admin"`
	LpFeeBasisPoints             uint64              `json:"lpFeeBasisPoints"`
	ProtocolFeeBasisPoints       uint64              `json:"protocolFeeBasisPoints"`
	DisableFlags                 uint8               `json:"disableFlags"`
	ProtocolFeeRecipients        [8]solana.PublicKey `json:"protocolFeeRecipients"`
	CoinCreatorFeeBasisPoints    uint64              `json:"coinCreatorFeeBasisPoints"`
	AdminSetCoinCreatorAuthority solana.PublicKey    `json:"adminSetCoinCreatorAuthority"`
}

// Decode parses a pool account, accepting the legacy layout without coin_creator.
func Decode(data []byte) (*Pool, error) {
	var p Pool
	if len(data) >= LegacyPoolSize && len(data) < PoolSize {
		padded := make([]byte, PoolSize)
		copy(padded, data[:LegacyPoolSize])
		data = padded
	}
	if err := dex.DecodeLayout("pump_amm pool", data, PoolSize, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Encode re-serializes the pool in the current layout.
func (p *Pool) Encode() ([]byte, error) {
	return dex.EncodeLayout(p)
}

// DecodeGlobalConfig parses the global_config account.
func DecodeGlobalConfig(data []byte) (*GlobalConfig, error) {
	var c GlobalConfig
	if err := dex.DecodeLayout("pump_amm global_config", data, GlobalConfigSize, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// DecodeFeeConfig parses the fee program's fee_config account.
func DecodeFeeConfig(data []byte) (*FeeConfig, error) {
	const name = "pump_amm fee_config"
	if err := types.CheckLayout(name, data, FeeConfigMinSize); err != nil {
		return nil, err
	}
	var c FeeConfig
	if err := bin.NewBorshDecoder(data).Decode(&c); err != nil {
		return nil, types.NewSchemaMismatch(name, FeeConfigMinSize, len(data), err)
	}
	return &c, nil
}

// Encode re-serializes the fee config, tiers included.
func (c *FeeConfig) Encode() ([]byte, error) {
	return dex.EncodeLayout(c)
}

func (p *Pool) MintPair() dex.MintPair {
	return dex.MintPair{Base: p.BaseMint, Quote: p.QuoteMint}
}

func (p *Pool) Vaults() (base, quote solana.PublicKey) {
	return p.PoolBaseTokenAccount, p.PoolQuoteTokenAccount
}

// HasCoinCreator reports whether a creator fee is owed on swaps.
func (p *Pool) HasCoinCreator() bool {
	return !p.CoinCreator.IsZero()
}

// IsCanonicalPool reports whether the pool was created by a bonding-curve
// migration, which makes it subject to the market-cap fee tiers.
func (p *Pool) IsCanonicalPool() bool {
	authority, err := PumpPoolAuthority(p.BaseMint)
	return err == nil && authority.Equals(p.Creator)
}

// PumpPoolAuthority derives the bonding-curve program's migration authority for mint.
func PumpPoolAuthority(mint solana.PublicKey) (solana.PublicKey, error) {
	pk, err := dex.FindPDA(constants.PumpProgramID, []byte(constants.SeedPumpPoolAuthority), mint[:])
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("derive pool authority for %s: %w", mint, err)
	}
	return pk, nil
}
