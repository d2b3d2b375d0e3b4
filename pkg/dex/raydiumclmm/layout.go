// Package raydiumclmm supports Raydium concentrated-liquidity pools through
// the swap_v2 instruction.
package raydiumclmm

import (
	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"github.com/ninja0404/amm-go-sdk/pkg/dex"
)

const (
	PoolStateSize = 1544
	AmmConfigSize = 117

	RewardCount = 3

	// statusSwapDisabled is bit 4 of PoolState.Status.
	statusSwapDisabled = 1 << 4
)

var PoolStateDiscriminator = [8]byte{0xf7, 0xed, 0xe3, 0xf5, 0xd7, 0xc3, 0xde, 0x46}

type RewardInfo struct {
	RewardState           uint8            `json:"rewardState"`
	OpenTime              uint64           `json:"openTime"`
	EndTime               uint64           `json:"endTime"`
	LastUpdateTime        uint64           `json:"lastUpdateTime"`
	EmissionsPerSecondX64 bin.Uint128      `json:"emissionsPerSecondX64"`
	RewardTotalEmissioned uint64           `json:"rewardTotalEmissioned"`
	RewardClaimed         uint64           `json:"rewardClaimed"`
	TokenMint             solana.PublicKey `json:"tokenMint"`
	TokenVault            solana.PublicKey `json:"tokenVault"`
	Authority             solana.PublicKey `json:"authority"`
	RewardGrowthGlobalX64 bin.Uint128      `json:"rewardGrowthGlobalX64"`
}

// PoolState is the CLMM pool account.
type PoolState struct {
	Discriminator       [8]uint8                `json:"-"`
	Bump                [1]uint8                `json:"bump"`
	AmmConfig           solana.PublicKey        `json:"ammConfig"`
	Owner               solana.PublicKey        `json:"owner"`
	TokenMint0          solana.PublicKey        `json:"tokenMint0"`
	TokenMint1          solana.PublicKey        `json:"tokenMint1"`
	TokenVault0         solana.PublicKey        `json:"tokenVault0"`
	TokenVault1         solana.PublicKey        `json:"tokenVault1"`
	ObservationKey      solana.PublicKey        `json:"observationKey"`
	MintDecimals0       uint8                   `json:"mintDecimals0"`
	MintDecimals1       uint8                   `json:"mintDecimals1"`
	TickSpacing         uint16                  `json:"tickSpacing"`
	Liquidity           bin.Uint128             `json:"liquidity"`
	SqrtPriceX64        bin.Uint128             `json:"sqrtPriceX64"`
	TickCurrent         int32                   `json:"tickCurrent"`
	Padding3            uint16                  `json:"-"`
	Padding4            uint16                  `json:"-"`
	FeeGrowthGlobal0X64 bin.Uint128             `json:"feeGrowthGlobal0X64"`
	FeeGrowthGlobal1X64 bin.Uint128             `json:"feeGrowthGlobal1X64"`
	ProtocolFeesToken0  uint64                  `json:"protocolFeesToken0"`
	ProtocolFeesToken1  uint64                  `json:"protocolFeesToken1"`
	SwapInAmountToken0  bin.Uint128             `json:"swapInAmountToken0"`
	SwapOutAmountToken1 bin.Uint128             `json:"swapOutAmountToken1"`
	SwapInAmountToken1  bin.Uint128             `json:"swapInAmountToken1"`
	SwapOutAmountToken0 bin.Uint128             `json:"swapOutAmountToken0"`
	Status              uint8                   `json:"status"`
	Padding             [7]uint8                `json:"-"`
	RewardInfos         [RewardCount]RewardInfo `json:"rewardInfos"`
	TickArrayBitmap     [16]uint64              `json:"tickArrayBitmap"`
	TotalFeesToken0     uint64                  `json:"totalFeesToken0"`
	TotalFeesClaimed0   uint64                  `json:"totalFeesClaimedToken0"`
	TotalFeesToken1     uint64                  `json:"totalFeesToken1"`
	TotalFeesClaimed1   uint64                  `json:"totalFeesClaimedToken1"`
	FundFeesToken0      uint64                  `json:"fundFeesToken0"`
	FundFeesToken1      uint64                  `json:"fundFeesToken1"`
	OpenTime            uint64                  `json:"openTime"`
	RecentEpoch         uint64                  `json:"recentEpoch"`
	Padding1            [24]uint64              `json:"-"`
	Padding2            [32]uint64              `json:"-"`
}

// AmmConfig is the fee tier referenced by PoolState.AmmConfig. Rates are
// over FeeRateDenominator.
type AmmConfig struct {
	Discriminator   [8]uint8         `json:"-"`
	Bump            uint8            `json:"bump"`
	Index           uint16           `json:"index"`
	Owner           solana.PublicKey `json:"owner"`
	ProtocolFeeRate uint32           `json:"protocolFeeRate"`
	TradeFeeRate    uint32           `json:"tradeFeeRate"`
	TickSpacing     uint16           `json:"tickSpacing"`
	FundFeeRate     uint32           `json:"fundFeeRate"`
	PaddingU32      uint32           `json:"-"`
	FundOwner       solana.PublicKey `json:"fundOwner"`
	Padding         [3]uint64        `json:"-"`
}

func Decode(data []byte) (*PoolState, error) {
	var s PoolState
	if err := dex.DecodeLayout("raydium_clmm pool", data, PoolStateSize, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *PoolState) Encode() ([]byte, error) {
	return dex.EncodeLayout(s)
}

func DecodeAmmConfig(data []byte) (*AmmConfig, error) {
	var c AmmConfig
	if err := dex.DecodeLayout("raydium_clmm amm_config", data, AmmConfigSize, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *AmmConfig) Encode() ([]byte, error) {
	return dex.EncodeLayout(c)
}

func (s *PoolState) MintPair() dex.MintPair {
	return dex.MintPair{Base: s.TokenMint0, Quote: s.TokenMint1}
}

func (s *PoolState) Vaults() (base, quote solana.PublicKey) {
	return s.TokenVault0, s.TokenVault1
}

// SwapDisabled reports the swap bit of Status.
func (s *PoolState) SwapDisabled() bool {
	return s.Status&statusSwapDisabled != 0
}
