// Package meteoradammv2 supports Meteora DAMM v2 (cp-amm) pools: a single
// concentrated range between sqrt_min_price and sqrt_max_price with a
// scheduled base fee and an optional volatility fee.
package meteoradammv2

import (
	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"github.com/ninja0404/amm-go-sdk/pkg/constants"
	"github.com/ninja0404/amm-go-sdk/pkg/dex"
)

const PoolSize = 1112

var PoolDiscriminator = [8]byte{0xf1, 0x9a, 0x6d, 0x04, 0x11, 0xb1, 0x6d, 0xbc}

// FeeSchedulerMode selects how the base fee decays after activation.
type FeeSchedulerMode uint8

const (
	FeeSchedulerLinear FeeSchedulerMode = iota
	FeeSchedulerExponential
)

// CollectFeeMode selects the token the trading fee is taken in.
type CollectFeeMode uint8

const (
	CollectFeeBothToken CollectFeeMode = iota
	CollectFeeOnlyB
)

// ActivationType is the unit of activation_point.
type ActivationType uint8

const (
	ActivationSlot ActivationType = iota
	ActivationTimestamp
)

type BaseFee struct {
	CliffFeeNumerator uint64           `json:"cliffFeeNumerator"`
	FeeSchedulerMode  FeeSchedulerMode `json:"feeSchedulerMode"`
	Padding0          [5]uint8         `json:"-"`
	NumberOfPeriod    uint16           `json:"numberOfPeriod"`
	PeriodFrequency   uint64           `json:"periodFrequency"`
	ReductionFactor   uint64           `json:"reductionFactor"`
	Padding1          uint64           `json:"-"`
}

type DynamicFee struct {
	Initialized              uint8       `json:"initialized"`
	Padding                  [7]uint8    `json:"-"`
	MaxVolatilityAccumulator uint32      `json:"maxVolatilityAccumulator"`
	VariableFeeControl       uint32      `json:"variableFeeControl"`
	BinStep                  uint16      `json:"binStep"`
	FilterPeriod             uint16      `json:"filterPeriod"`
	DecayPeriod              uint16      `json:"decayPeriod"`
	ReductionFactor          uint16      `json:"reductionFactor"`
	LastUpdateTimestamp      uint64      `json:"lastUpdateTimestamp"`
	BinStepU128              bin.Uint128 `json:"binStepU128"`
	SqrtPriceReference       bin.Uint128 `json:"sqrtPriceReference"`
	VolatilityAccumulator    bin.Uint128 `json:"volatilityAccumulator"`
	VolatilityReference      bin.Uint128 `json:"volatilityReference"`
}

type PoolFees struct {
	BaseFee            BaseFee    `json:"baseFee"`
	ProtocolFeePercent uint8      `json:"protocolFeePercent"`
	PartnerFeePercent  uint8      `json:"partnerFeePercent"`
	ReferralFeePercent uint8      `json:"referralFeePercent"`
	Padding0           [5]uint8   `json:"-"`
	DynamicFee         DynamicFee `json:"dynamicFee"`
	Padding1           [2]uint64  `json:"-"`
}

type PoolMetrics struct {
	TotalLpAFee       bin.Uint128 `json:"totalLpAFee"`
	TotalLpBFee       bin.Uint128 `json:"totalLpBFee"`
	TotalProtocolAFee uint64      `json:"totalProtocolAFee"`
	TotalProtocolBFee uint64      `json:"totalProtocolBFee"`
	TotalPartnerAFee  uint64      `json:"totalPartnerAFee"`
	TotalPartnerBFee  uint64      `json:"totalPartnerBFee"`
	TotalPosition     uint64      `json:"totalPosition"`
	Padding           uint64      `json:"-"`
}

type RewardInfo struct {
	Initialized                               uint8            `json:"initialized"`
	RewardTokenFlag                           uint8            `json:"rewardTokenFlag"`
	Padding0                                  [6]uint8         `json:"-"`
	Padding1                                  [8]uint8         `json:"-"`
	Mint                                      solana.PublicKey `json:"mint"`
	Vault                                     solana.PublicKey `json:"vault"`
	Funder                                    solana.PublicKey `json:"funder"`
	RewardDuration                            uint64           `json:"rewardDuration"`
	RewardDurationEnd                         uint64           `json:"rewardDurationEnd"`
	RewardRate                                bin.Uint128      `json:"rewardRate"`
	RewardPerTokenStored                      [32]uint8        `json:"-"`
	LastUpdateTime                            uint64           `json:"lastUpdateTime"`
	CumulativeSecondsWithEmptyLiquidityReward uint64           `json:"cumulativeSecondsWithEmptyLiquidityReward"`
}

// Pool is the cp-amm pool account.
type Pool struct {
	Discriminator          [8]uint8         `json:"-"`
	PoolFees               PoolFees         `json:"poolFees"`
	TokenAMint             solana.PublicKey `json:"tokenAMint"`
	TokenBMint             solana.PublicKey `json:"tokenBMint"`
	TokenAVault            solana.PublicKey `json:"tokenAVault"`
	TokenBVault            solana.PublicKey `json:"tokenBVault"`
	WhitelistedVault       solana.PublicKey `json:"whitelistedVault"`
	Partner                solana.PublicKey `json:"partner"`
	Liquidity              bin.Uint128      `json:"liquidity"`
	Padding                bin.Uint128      `json:"-"`
	ProtocolAFee           uint64           `json:"protocolAFee"`
	ProtocolBFee           uint64           `json:"protocolBFee"`
	PartnerAFee            uint64           `json:"partnerAFee"`
	PartnerBFee            uint64           `json:"partnerBFee"`
	SqrtMinPrice           bin.Uint128      `json:"sqrtMinPrice"`
	SqrtMaxPrice           bin.Uint128      `json:"sqrtMaxPrice"`
	SqrtPrice              bin.Uint128      `json:"sqrtPrice"`
	ActivationPoint        uint64           `json:"activationPoint"`
	ActivationType         ActivationType   `json:"activationType"`
	PoolStatus             uint8            `json:"poolStatus"`
	TokenAFlag             uint8            `json:"tokenAFlag"`
	TokenBFlag             uint8            `json:"tokenBFlag"`
	CollectFeeMode         CollectFeeMode   `json:"collectFeeMode"`
	PoolType               uint8            `json:"poolType"`
	Padding0               [2]uint8         `json:"-"`
	FeeAPerLiquidity       [32]uint8        `json:"-"`
	FeeBPerLiquidity       [32]uint8        `json:"-"`
	PermanentLockLiquidity bin.Uint128      `json:"permanentLockLiquidity"`
	Metrics                PoolMetrics      `json:"metrics"`
	Creator                solana.PublicKey `json:"creator"`
	Padding1               [6]uint64        `json:"-"`
	RewardInfos            [2]RewardInfo    `json:"rewardInfos"`
}

// Decode parses a cp-amm pool account.
func Decode(data []byte) (*Pool, error) {
	var p Pool
	if err := dex.DecodeLayout("meteora_damm_v2 pool", data, PoolSize, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (p *Pool) Encode() ([]byte, error) {
	return dex.EncodeLayout(p)
}

func (p *Pool) MintPair() dex.MintPair {
	return dex.MintPair{Base: p.TokenAMint, Quote: p.TokenBMint}
}

func (p *Pool) Vaults() (a, b solana.PublicKey) {
	return p.TokenAVault, p.TokenBVault
}

// Disabled reports a non-zero pool_status.
func (p *Pool) Disabled() bool {
	return p.PoolStatus != 0
}

// tokenProgram maps a token flag to its program; 1 marks Token-2022.
func tokenProgram(flag uint8) solana.PublicKey {
	if flag == 1 {
		return constants.Token2022ProgramID
	}
	return constants.TokenProgramID
}

// TokenPrograms returns the token programs recorded for mint A and mint B.
func (p *Pool) TokenPrograms() (a, b solana.PublicKey) {
	return tokenProgram(p.TokenAFlag), tokenProgram(p.TokenBFlag)
}
