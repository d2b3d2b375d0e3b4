// Package whirlpool supports Orca Whirlpool concentrated-liquidity pools.
package whirlpool

import (
	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"github.com/ninja0404/amm-go-sdk/pkg/dex"
)

const (
	WhirlpoolSize = 653
	RewardCount   = 3
)

var WhirlpoolDiscriminator = [8]byte{0x3f, 0x95, 0xd1, 0x0c, 0xe1, 0x80, 0x63, 0x09}

type RewardInfo struct {
	Mint                  solana.PublicKey `json:"mint"`
	Vault                 solana.PublicKey `json:"vault"`
	Authority             solana.PublicKey `json:"authority"`
	EmissionsPerSecondX64 bin.Uint128      `json:"emissionsPerSecondX64"`
	GrowthGlobalX64       bin.Uint128      `json:"growthGlobalX64"`
}

// Whirlpool is the pool account. Token A is the base side of the pair.
type Whirlpool struct {
	Discriminator              [8]uint8                `json:"-"`
	WhirlpoolsConfig           solana.PublicKey        `json:"whirlpoolsConfig"`
	WhirlpoolBump              [1]uint8                `json:"whirlpoolBump"`
	TickSpacing                uint16                  `json:"tickSpacing"`
	FeeTierIndexSeed           [2]uint8                `json:"feeTierIndexSeed"`
	FeeRate                    uint16                  `json:"feeRate"`
	ProtocolFeeRate            uint16                  `json:"protocolFeeRate"`
	Liquidity                  bin.Uint128             `json:"liquidity"`
	SqrtPrice                  bin.Uint128             `json:"sqrtPrice"`
	TickCurrentIndex           int32                   `json:"tickCurrentIndex"`
	ProtocolFeeOwedA           uint64                  `json:"protocolFeeOwedA"`
	ProtocolFeeOwedB           uint64                  `json:"protocolFeeOwedB"`
	TokenMintA                 solana.PublicKey        `json:"tokenMintA"`
	TokenVaultA                solana.PublicKey        `json:"tokenVaultA"`
	FeeGrowthGlobalA           bin.Uint128             `json:"feeGrowthGlobalA"`
	TokenMintB                 solana.PublicKey        `json:"tokenMintB"`
	TokenVaultB                solana.PublicKey        `json:"tokenVaultB"`
	FeeGrowthGlobalB           bin.Uint128             `json:"feeGrowthGlobalB"`
	RewardLastUpdatedTimestamp uint64                  `json:"rewardLastUpdatedTimestamp"`
	RewardInfos                [RewardCount]RewardInfo `json:"rewardInfos"`
}

func Decode(data []byte) (*Whirlpool, error) {
	var w Whirlpool
	if err := dex.DecodeLayout("whirlpool", data, WhirlpoolSize, &w); err != nil {
		return nil, err
	}
	return &w, nil
}

func (w *Whirlpool) Encode() ([]byte, error) {
	return dex.EncodeLayout(w)
}

func (w *Whirlpool) MintPair() dex.MintPair {
	return dex.MintPair{Base: w.TokenMintA, Quote: w.TokenMintB}
}

func (w *Whirlpool) Vaults() (a, b solana.PublicKey) {
	return w.TokenVaultA, w.TokenVaultB
}
