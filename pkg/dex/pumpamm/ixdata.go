package pumpamm

import (
	"github.com/gagliardetto/solana-go"

	"github.com/ninja0404/amm-go-sdk/pkg/constants"
	"github.com/ninja0404/amm-go-sdk/pkg/dex"
	"github.com/ninja0404/amm-go-sdk/pkg/types"
)

var (
	BuyDiscriminator             = [8]byte{0x66, 0x06, 0x3d, 0x12, 0x01, 0xda, 0xeb, 0xea}
	BuyExactQuoteInDiscriminator = [8]byte{0xc6, 0x2e, 0x15, 0x52, 0xb4, 0xd9, 0xe8, 0x70}
	SellDiscriminator            = [8]byte{0x33, 0xe6, 0x85, 0xa4, 0x01, 0x7f, 0x83, 0xad}
)

// buyPairLen is the two u64 arguments shared by buy and buy_exact_quote_in.
const buyPairLen = dex.DiscriminatorLen + 16

type amountPair struct {
	A uint64
	B uint64
}

// BuyArgs are the arguments of buy. TrackVolume is omitted from the
// encoding when nil, matching instructions sent before it was introduced.
type BuyArgs struct {
	BaseAmountOut    uint64 `json:"baseAmountOut"`
	MaxQuoteAmountIn uint64 `json:"maxQuoteAmountIn"`
	TrackVolume      *bool  `json:"trackVolume,omitempty"`
}

// BuyExactQuoteInArgs are the arguments of buy_exact_quote_in.
type BuyExactQuoteInArgs struct {
	SpendableQuoteIn uint64 `json:"spendableQuoteIn"`
	MinBaseAmountOut uint64 `json:"minBaseAmountOut"`
	TrackVolume      *bool  `json:"trackVolume,omitempty"`
}

// SellArgs are the arguments of sell.
type SellArgs struct {
	BaseAmountIn      uint64 `json:"baseAmountIn"`
	MinQuoteAmountOut uint64 `json:"minQuoteAmountOut"`
}

func (a BuyArgs) Encode() ([]byte, error) {
	return encodeBuyLike(BuyDiscriminator, a.BaseAmountOut, a.MaxQuoteAmountIn, a.TrackVolume)
}

func (a BuyExactQuoteInArgs) Encode() ([]byte, error) {
	return encodeBuyLike(BuyExactQuoteInDiscriminator, a.SpendableQuoteIn, a.MinBaseAmountOut, a.TrackVolume)
}

func (a SellArgs) Encode() ([]byte, error) {
	return dex.EncodeInstruction(SellDiscriminator, a)
}

func encodeBuyLike(disc [8]byte, a, b uint64, track *bool) ([]byte, error) {
	data, err := dex.EncodeInstruction(disc, amountPair{A: a, B: b})
	if err != nil {
		return nil, err
	}
	if track != nil {
		var v byte
		if *track {
			v = 1
		}
		data = append(data, v)
	}
	return data, nil
}

func decodeBuyLike(name string, disc [8]byte, data []byte) (amountPair, *bool, error) {
	var pair amountPair
	if err := types.CheckLayout(name, data, buyPairLen); err != nil {
		return pair, nil, err
	}
	if err := dex.DecodeInstruction(name, disc, data[:buyPairLen], &pair); err != nil {
		return pair, nil, err
	}
	if len(data) > buyPairLen {
		track := data[buyPairLen] != 0
		return pair, &track, nil
	}
	return pair, nil, nil
}

// DecodeBuy parses buy data with or without the track_volume flag.
func DecodeBuy(data []byte) (BuyArgs, error) {
	pair, track, err := decodeBuyLike("pump_amm buy", BuyDiscriminator, data)
	return BuyArgs{BaseAmountOut: pair.A, MaxQuoteAmountIn: pair.B, TrackVolume: track}, err
}

// DecodeBuyExactQuoteIn parses buy_exact_quote_in data.
func DecodeBuyExactQuoteIn(data []byte) (BuyExactQuoteInArgs, error) {
	pair, track, err := decodeBuyLike("pump_amm buy_exact_quote_in", BuyExactQuoteInDiscriminator, data)
	return BuyExactQuoteInArgs{SpendableQuoteIn: pair.A, MinBaseAmountOut: pair.B, TrackVolume: track}, err
}

// DecodeSell parses sell data.
func DecodeSell(data []byte) (SellArgs, error) {
	var a SellArgs
	err := dex.DecodeInstruction("pump_amm sell", SellDiscriminator, data, &a)
	return a, err
}

// IsBuy reports whether data is one of the two buy instructions.
func IsBuy(data []byte) bool {
	return dex.HasDiscriminator(data, BuyDiscriminator) || dex.HasDiscriminator(data, BuyExactQuoteInDiscriminator)
}

// NewBuyExactQuoteInInstruction spends exactly quoteIn on base tokens.
func NewBuyExactQuoteInInstruction(accounts *SwapAccounts, args BuyExactQuoteInArgs) (solana.Instruction, error) {
	data, err := args.Encode()
	if err != nil {
		return nil, err
	}
	return solana.NewInstruction(constants.PumpAmmProgramID, accounts.ToAccountList().AccountMetaSlice(), data), nil
}

// NewSellInstruction sells baseIn base tokens.
func NewSellInstruction(accounts *SwapAccounts, args SellArgs) (solana.Instruction, error) {
	data, err := args.Encode()
	if err != nil {
		return nil, err
	}
	return solana.NewInstruction(constants.PumpAmmProgramID, accounts.ToAccountList().AccountMetaSlice(), data), nil
}
