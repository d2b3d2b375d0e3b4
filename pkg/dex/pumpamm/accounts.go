package pumpamm

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/ninja0404/amm-go-sdk/pkg/constants"
	"github.com/ninja0404/amm-go-sdk/pkg/dex"
	"github.com/ninja0404/amm-go-sdk/pkg/types"
)

// FixedAccountsLen is the prefix shared by buy and sell.
const FixedAccountsLen = 19

// SwapAccounts are the accounts of buy, buy_exact_quote_in and sell.
// The volume accumulators are only present on buys.
type SwapAccounts struct {
	Pool                             solana.PublicKey
	User                             solana.PublicKey
	GlobalConfig                     solana.PublicKey
	BaseMint                         solana.PublicKey
	QuoteMint                        solana.PublicKey
	UserBaseTokenAccount             solana.PublicKey
	UserQuoteTokenAccount            solana.PublicKey
	PoolBaseTokenAccount             solana.PublicKey
	PoolQuoteTokenAccount            solana.PublicKey
	ProtocolFeeRecipient             solana.PublicKey
	ProtocolFeeRecipientTokenAccount solana.PublicKey
	BaseTokenProgram                 solana.PublicKey
	QuoteTokenProgram                solana.PublicKey
	SystemProgram                    solana.PublicKey
	AssociatedTokenProgram           solana.PublicKey
	EventAuthority                   solana.PublicKey
	Program                          solana.PublicKey
	CoinCreatorVaultAta              solana.PublicKey
	CoinCreatorVaultAuthority        solana.PublicKey

	// Buy selects the buy layout with volume accumulators.
	Buy                     bool
	GlobalVolumeAccumulator solana.PublicKey
	UserVolumeAccumulator   solana.PublicKey

	FeeConfig  solana.PublicKey
	FeeProgram solana.PublicKey
}

func (a *SwapAccounts) ToAccountList() dex.AccountList {
	list := dex.AccountList{
		dex.Writable(a.Pool),
		dex.Signer(a.User),
		dex.ReadOnly(a.GlobalConfig),
		dex.ReadOnly(a.BaseMint),
		dex.ReadOnly(a.QuoteMint),
		dex.Writable(a.UserBaseTokenAccount),
		dex.Writable(a.UserQuoteTokenAccount),
		dex.Writable(a.PoolBaseTokenAccount),
		dex.Writable(a.PoolQuoteTokenAccount),
		dex.ReadOnly(a.ProtocolFeeRecipient),
		dex.Writable(a.ProtocolFeeRecipientTokenAccount),
		dex.ReadOnly(a.BaseTokenProgram),
		dex.ReadOnly(a.QuoteTokenProgram),
		dex.ReadOnly(a.SystemProgram),
		dex.ReadOnly(a.AssociatedTokenProgram),
		dex.ReadOnly(a.EventAuthority),
		dex.ReadOnly(a.Program),
		dex.Writable(a.CoinCreatorVaultAta),
		dex.ReadOnly(a.CoinCreatorVaultAuthority),
	}
	if a.Buy {
		list = append(list, dex.Writable(a.GlobalVolumeAccumulator), dex.Writable(a.UserVolumeAccumulator))
	}
	if !a.FeeConfig.IsZero() {
		list = append(list, dex.ReadOnly(a.FeeConfig), dex.ReadOnly(a.FeeProgram))
	}
	return list
}

// BuildDefault builds a buy (quote in), the superset layout.
func BuildDefault(ctx context.Context, mints dex.MintInfoProvider, payer, pool solana.PublicKey, p *Pool) (*SwapAccounts, error) {
	return BuildForSwap(ctx, mints, payer, pool, p, dex.SwapRequest{InputMint: p.QuoteMint, OutputMint: p.BaseMint})
}

// BuildForSwap builds a sell for base input and a buy for quote input.
func BuildForSwap(ctx context.Context, mints dex.MintInfoProvider, payer, pool solana.PublicKey, p *Pool, req dex.SwapRequest) (*SwapAccounts, error) {
	sell, ok := p.MintPair().Direction(req.InputMint, req.OutputMint)
	if !ok {
		return nil, dex.MintMismatch(dex.PumpAmm, p.MintPair(), req.InputMint, req.OutputMint)
	}
	programs, err := dex.TokenPrograms(ctx, dex.PumpAmm, mints, p.BaseMint, p.QuoteMint)
	if err != nil {
		return nil, err
	}
	baseProgram, quoteProgram := programs[0], programs[1]

	a := &SwapAccounts{
		Pool:                   pool,
		User:                   payer,
		GlobalConfig:           constants.PumpAmmGlobalConfig,
		BaseMint:               p.BaseMint,
		QuoteMint:              p.QuoteMint,
		PoolBaseTokenAccount:   p.PoolBaseTokenAccount,
		PoolQuoteTokenAccount:  p.PoolQuoteTokenAccount,
		ProtocolFeeRecipient:   constants.PumpAmmProtocolFeeRecipient,
		BaseTokenProgram:       baseProgram,
		QuoteTokenProgram:      quoteProgram,
		SystemProgram:          constants.SystemProgramID,
		AssociatedTokenProgram: constants.AssociatedTokenProgramID,
		EventAuthority:         constants.PumpAmmEventAuthority,
		Program:                constants.PumpAmmProgramID,
		Buy:                    !sell,
		FeeConfig:              constants.PumpAmmFeeConfig,
		FeeProgram:             constants.PumpFeeProgramID,
	}
	if a.UserBaseTokenAccount, err = dex.FindATA(payer, p.BaseMint, baseProgram); err != nil {
		return nil, err
	}
	if a.UserQuoteTokenAccount, err = dex.FindATA(payer, p.QuoteMint, quoteProgram); err != nil {
		return nil, err
	}
	if a.ProtocolFeeRecipientTokenAccount, err = dex.FindATA(a.ProtocolFeeRecipient, p.QuoteMint, quoteProgram); err != nil {
		return nil, err
	}
	if a.CoinCreatorVaultAuthority, err = CoinCreatorVaultAuthority(p.CoinCreator); err != nil {
		return nil, err
	}
	if a.CoinCreatorVaultAta, err = dex.FindATA(a.CoinCreatorVaultAuthority, p.QuoteMint, quoteProgram); err != nil {
		return nil, err
	}
	if a.Buy {
		a.GlobalVolumeAccumulator = constants.PumpAmmGlobalVolumeAcc
		if a.UserVolumeAccumulator, err = UserVolumeAccumulator(payer); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// CoinCreatorVaultAuthority derives ["creator_vault", coin_creator].
func CoinCreatorVaultAuthority(coinCreator solana.PublicKey) (solana.PublicKey, error) {
	pk, err := dex.FindPDA(constants.PumpAmmProgramID, []byte(constants.SeedCreatorVaultAmm), coinCreator[:])
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("derive creator vault for %s: %w", coinCreator, err)
	}
	return pk, nil
}

// UserVolumeAccumulator derives ["user_volume_accumulator", user].
func UserVolumeAccumulator(user solana.PublicKey) (solana.PublicKey, error) {
	pk, err := dex.FindPDA(constants.PumpAmmProgramID, []byte(constants.SeedUserVolumeAccumulator), user[:])
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("derive user volume accumulator for %s: %w", user, err)
	}
	return pk, nil
}

// RestoreFrom rebuilds SwapAccounts from an observed buy or sell. Buys are
// recognised by their discriminator; older instructions without the fee
// config tail are accepted.
func RestoreFrom(ix dex.ObservedInstruction) (*SwapAccounts, error) {
	k := ix.Accounts
	if len(k) < FixedAccountsLen {
		return nil, types.InsufficientAccounts(dex.PumpAmm.String(), FixedAccountsLen, len(k))
	}
	a := &SwapAccounts{
		Pool:                             k[0],
		User:                             k[1],
		GlobalConfig:                     k[2],
		BaseMint:                         k[3],
		QuoteMint:                        k[4],
		UserBaseTokenAccount:             k[5],
		UserQuoteTokenAccount:            k[6],
		PoolBaseTokenAccount:             k[7],
		PoolQuoteTokenAccount:            k[8],
		ProtocolFeeRecipient:             k[9],
		ProtocolFeeRecipientTokenAccount: k[10],
		BaseTokenProgram:                 k[11],
		QuoteTokenProgram:                k[12],
		SystemProgram:                    k[13],
		AssociatedTokenProgram:           k[14],
		EventAuthority:                   k[15],
		Program:                          k[16],
		CoinCreatorVaultAta:              k[17],
		CoinCreatorVaultAuthority:        k[18],
	}
	rest := k[FixedAccountsLen:]
	if IsBuy(ix.Data) && len(rest) >= 2 {
		a.Buy = true
		a.GlobalVolumeAccumulator, a.UserVolumeAccumulator = rest[0], rest[1]
		rest = rest[2:]
	}
	if len(rest) >= 2 {
		a.FeeConfig, a.FeeProgram = rest[0], rest[1]
	}
	return a, nil
}

// ParseSwapFromIx returns the pool of an observed buy or sell.
func ParseSwapFromIx(ix dex.ObservedInstruction) (solana.PublicKey, error) {
	if !ix.ProgramID.Equals(constants.PumpAmmProgramID) {
		return solana.PublicKey{}, types.NewValidationError("program", "not the pump amm program: "+ix.ProgramID.String())
	}
	if len(ix.Accounts) < FixedAccountsLen {
		return solana.PublicKey{}, types.InsufficientAccounts(dex.PumpAmm.String(), FixedAccountsLen, len(ix.Accounts))
	}
	if !ix.Account(2).Equals(constants.PumpAmmGlobalConfig) {
		return solana.PublicKey{}, types.NewValidationError("global_config", "unexpected pump amm global config "+ix.Account(2).String())
	}
	return ix.Account(0), nil
}
