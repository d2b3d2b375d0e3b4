// Package meteoradlmm supports Meteora DLMM liquidity-book pairs.
//
// Quotes price the whole input at the active bin and do not walk bins, so
// they are an estimate for screening opportunities. Use the program's
// simulation for execution amounts.
package meteoradlmm

import (
	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"github.com/ninja0404/amm-go-sdk/pkg/constants"
	"github.com/ninja0404/amm-go-sdk/pkg/dex"
)

const (
	LbPairSize = 904

	BinsPerArray = 70

	// Bin arrays covered by the in-account bitmap; anything else needs the
	// bitmap extension account.
	MinBitmapArrayIndex = -512
	MaxBitmapArrayIndex = 511
)

var LbPairDiscriminator = [8]byte{0x21, 0x0b, 0x31, 0x62, 0xb5, 0x65, 0xb1, 0x0d}

type StaticParameters struct {
	BaseFactor               uint16   `json:"baseFactor"`
	FilterPeriod             uint16   `json:"filterPeriod"`
	DecayPeriod              uint16   `json:"decayPeriod"`
	ReductionFactor          uint16   `json:"reductionFactor"`
	VariableFeeControl       uint32   `json:"variableFeeControl"`
	MaxVolatilityAccumulator uint32   `json:"maxVolatilityAccumulator"`
	MinBinId                 int32    `json:"minBinId"`
	MaxBinId                 int32    `json:"maxBinId"`
	ProtocolShare            uint16   `json:"protocolShare"`
	BaseFeePowerFactor       uint8    `json:"baseFeePowerFactor"`
	Padding                  [5]uint8 `json:"-"`
}

type VariableParameters struct {
	VolatilityAccumulator uint32   `json:"volatilityAccumulator"`
	VolatilityReference   uint32   `json:"volatilityReference"`
	IndexReference        int32    `json:"indexReference"`
	Padding               [4]uint8 `json:"-"`
	LastUpdateTimestamp   int64    `json:"lastUpdateTimestamp"`
	Padding1              [8]uint8 `json:"-"`
}

type ProtocolFee struct {
	AmountX uint64 `json:"amountX"`
	AmountY uint64 `json:"amountY"`
}

type RewardInfo struct {
	Mint                                      solana.PublicKey `json:"mint"`
	Vault                                     solana.PublicKey `json:"vault"`
	Funder                                    solana.PublicKey `json:"funder"`
	RewardDuration                            uint64           `json:"rewardDuration"`
	RewardDurationEnd                         uint64           `json:"rewardDurationEnd"`
	RewardRate                                bin.Uint128      `json:"rewardRate"`
	LastUpdateTime                            uint64           `json:"lastUpdateTime"`
	CumulativeSecondsWithEmptyLiquidityReward uint64           `json:"cumulativeSecondsWithEmptyLiquidityReward"`
}

// LbPair is the DLMM pair account.
type LbPair struct {
	Discriminator            [8]uint8           `json:"-"`
	Parameters               StaticParameters   `json:"parameters"`
	VParameters              VariableParameters `json:"vParameters"`
	BumpSeed                 [1]uint8           `json:"bumpSeed"`
	BinStepSeed              [2]uint8           `json:"binStepSeed"`
	PairType                 uint8              `json:"pairType"`
	ActiveId                 int32              `json:"activeId"`
	BinStep                  uint16             `json:"binStep"`
	Status                   uint8              `json:"status"`
	RequireBaseFactorSeed    uint8              `json:"requireBaseFactorSeed"`
	BaseFactorSeed           [2]uint8           `json:"baseFactorSeed"`
	ActivationType           uint8              `json:"activationType"`
	CreatorPoolOnOffControl  uint8              `json:"creatorPoolOnOffControl"`
	TokenXMint               solana.PublicKey   `json:"tokenXMint"`
	TokenYMint               solana.PublicKey   `json:"tokenYMint"`
	ReserveX                 solana.PublicKey   `json:"reserveX"`
	ReserveY                 solana.PublicKey   `json:"reserveY"`
	ProtocolFee              ProtocolFee        `json:"protocolFee"`
	Padding1                 [32]uint8          `json:"-"`
	RewardInfos              [2]RewardInfo      `json:"rewardInfos"`
	Oracle                   solana.PublicKey   `json:"oracle"`
	BinArrayBitmap           [16]uint64         `json:"binArrayBitmap"`
	LastUpdatedAt            int64              `json:"lastUpdatedAt"`
	Padding2                 [32]uint8          `json:"-"`
	PreActivationSwapAddress solana.PublicKey   `json:"preActivationSwapAddress"`
	BaseKey                  solana.PublicKey   `json:"baseKey"`
	ActivationPoint          uint64             `json:"activationPoint"`
	PreActivationDuration    uint64             `json:"preActivationDuration"`
	Padding3                 [8]uint8           `json:"-"`
	Padding4                 uint64             `json:"-"`
	Creator                  solana.PublicKey   `json:"creator"`
	TokenMintXProgramFlag    uint8              `json:"tokenMintXProgramFlag"`
	TokenMintYProgramFlag    uint8              `json:"tokenMintYProgramFlag"`
	Reserved                 [22]uint8          `json:"-"`
}

// Decode parses an lb_pair account.
func Decode(data []byte) (*LbPair, error) {
	var p LbPair
	if err := dex.DecodeLayout("meteora_dlmm lb_pair", data, LbPairSize, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (p *LbPair) Encode() ([]byte, error) {
	return dex.EncodeLayout(p)
}

func (p *LbPair) MintPair() dex.MintPair {
	return dex.MintPair{Base: p.TokenXMint, Quote: p.TokenYMint}
}

func (p *LbPair) Vaults() (x, y solana.PublicKey) {
	return p.ReserveX, p.ReserveY
}

// Disabled reports a pair whose status is not enabled.
func (p *LbPair) Disabled() bool {
	return p.Status != 0
}

// TokenPrograms returns the token programs recorded by the pair flags.
func (p *LbPair) TokenPrograms() (x, y solana.PublicKey) {
	return flagProgram(p.TokenMintXProgramFlag), flagProgram(p.TokenMintYProgramFlag)
}

func flagProgram(flag uint8) solana.PublicKey {
	if flag == 1 {
		return constants.Token2022ProgramID
	}
	return constants.TokenProgramID
}

// BinArrayIndex returns the array holding binID, rounding toward negative infinity.
func BinArrayIndex(binID int32) int64 {
	idx := int64(binID) / BinsPerArray
	if binID < 0 && int64(binID)%BinsPerArray != 0 {
		idx--
	}
	return idx
}

// BitmapHasArray reports whether the pair bitmap marks array index as
// holding liquidity. Indexes outside the bitmap report false.
func (p *LbPair) BitmapHasArray(index int64) bool {
	if index < MinBitmapArrayIndex || index > MaxBitmapArrayIndex {
		return false
	}
	offset := uint64(index - MinBitmapArrayIndex)
	return p.BinArrayBitmap[offset/64]&(1<<(offset%64)) != 0
}
