// Package raydiumcpmm decodes, prices and builds swaps for Raydium CPMM
// constant-product pools.
package raydiumcpmm

import (
	"github.com/gagliardetto/solana-go"

	"github.com/ninja0404/amm-go-sdk/pkg/dex"
)

const (
	PoolStateSize = 637
	AmmConfigSize = 236

	// FeeRateDenominator scales trade_fee_rate and creator_fee_rate.
	FeeRateDenominator = 1_000_000
	// DefaultTradeFeeRate applies when no AmmConfig is injected (0.25%).
	DefaultTradeFeeRate = 2_500

	statusSwapDisabled = 1 << 2
)

var (
	PoolStateDiscriminator = [8]byte{0xf7, 0xed, 0xe3, 0xf5, 0xd7, 0xc3, 0xde, 0x46}
	AmmConfigDiscriminator = [8]byte{0xda, 0xf4, 0x21, 0x68, 0xcb, 0xcb, 0x2b, 0x6f}
)

// CreatorFeeOn selects which token the creator fee is charged in.
type CreatorFeeOn uint8

const (
	CreatorFeeBothToken CreatorFeeOn = iota
	CreatorFeeOnlyToken0
	CreatorFeeOnlyToken1
)

// PoolState is the on-chain pool account.
type PoolState struct {
	Discriminator  [8]uint8         `json:"-"`
	AmmConfig      solana.PublicKey `json:"ammConfig"`
	PoolCreator    solana.PublicKey `json:"poolCreator"`
	Token0Vault    solana.PublicKey `json:"token0Vault"`
	Token1Vault    solana.PublicKey `json:"token1Vault"`
	LpMint         solana.PublicKey `json:"lpMint"`
	Token0Mint     solana.PublicKey `json:"token0Mint"`
	Token1Mint     solana.PublicKey `json:"token1Mint"`
	Token0Program  solana.PublicKey `json:"token0Program"`
	Token1Program  solana.PublicKey `json:"token1Program"`
	ObservationKey solana.PublicKey `json:"observationKey"`
	AuthBump       uint8            `json:"authBump"`
	Status         uint8            `json:"status"`
	LpMintDecimals uint8            `json:"lpMintDecimals"`
	Mint0Decimals  uint8            `json:"mint0Decimals"`
	Mint1Decimals  uint8            `json:"mint1Decimals"`
	LpSupply       uint64           `json:"lpSupply"`

	ProtocolFeesToken0 uint64 `json:"protocolFeesToken0"`
	ProtocolFeesToken1 uint64 `json:"protocolFeesToken1"`
	FundFeesToken0     uint64 `json:"fundFeesToken0"`
	FundFeesToken1     uint64 `json:"fundFeesToken1"`

	OpenTime          uint64     `json:"openTime"`
	RecentEpoch       uint64     `json:"recentEpoch"`
	CreatorFeeOn      uint8      `json:"creatorFeeOn"`
	EnableCreatorFee  bool       `json:"enableCreatorFee"`
	Padding1          [6]uint8   `json:"-"`
	CreatorFeesToken0 uint64     `json:"creatorFeesToken0"`
	CreatorFeesToken1 uint64     `json:"creatorFeesToken1"`
	Padding           [28]uint64 `json:"-"`
}

// AmmConfig is the fee configuration account referenced by PoolState.AmmConfig.
type AmmConfig struct {
	Discriminator     [8]uint8         `json:"-"`
	Bump              uint8            `json:"bump"`
	DisableCreatePool bool             `json:"disableCreatePool"`
	Index             uint16           `json:"index"`
	TradeFeeRate      uint64           `json:"tradeFeeRate"`
	ProtocolFeeRate   uint64           `json:"protocolFeeRate"`
	FundFeeRate       uint64           `json:"fundFeeRate"`
	CreatePoolFee     uint64           `json:"createPoolFee"`
	ProtocolOwner     solana.PublicKey `json:"protocolOwner"`
	FundOwner         solana.PublicKey `json:"fundOwner"`
	CreatorFeeRate    uint64           `json:"creatorFeeRate"`
	Padding           [15]uint64       `json:"-"`
}

// Decode parses a pool account.
func Decode(data []byte) (*PoolState, error) {
	var s PoolState
	if err := dex.DecodeLayout("raydium_cpmm pool", data, PoolStateSize, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Encode re-serializes the pool account.
func (s *PoolState) Encode() ([]byte, error) {
	return dex.EncodeLayout(s)
}

// DecodeAmmConfig parses an AmmConfig account.
func DecodeAmmConfig(data []byte) (*AmmConfig, error) {
	var c AmmConfig
	if err := dex.DecodeLayout("raydium_cpmm amm_config", data, AmmConfigSize, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *PoolState) MintPair() dex.MintPair {
	return dex.MintPair{Base: s.Token0Mint, Quote: s.Token1Mint}
}

func (s *PoolState) Vaults() (base, quote solana.PublicKey) {
	return s.Token0Vault, s.Token1Vault
}

// SwapDisabled reports the swap bit of Status.
func (s *PoolState) SwapDisabled() bool {
	return s.Status&statusSwapDisabled != 0
}

// creatorFeeOnInput reports whether the creator fee is taken from the input
// amount for a swap whose input is token0 (zeroForOne) or token1.
func (s *PoolState) creatorFeeOnInput(zeroForOne bool) bool {
	switch CreatorFeeOn(s.CreatorFeeOn) {
	case CreatorFeeOnlyToken0:
		return zeroForOne
	case CreatorFeeOnlyToken1:
		return !zeroForOne
	default:
		return true
	}
}
