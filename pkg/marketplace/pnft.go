package marketplace

import (
	"crypto/ed25519"

	"github.com/pkg/errors"

	"github.com/motleylabs/mtly-nightmarket-go/pkg/solana"
	"github.com/motleylabs/mtly-nightmarket-go/pkg/solana/system"
	"github.com/motleylabs/mtly-nightmarket-go/pkg/solana/token"
	"github.com/motleylabs/mtly-nightmarket-go/pkg/solana/tokenmetadata"
)

// ProgrammableAssetAccounts are the extra accounts a programmable NFT
// transfer requires. Each builder appends a template specific subset of them
// after its own accounts.
type ProgrammableAssetAccounts struct {
	MetadataProgram ed25519.PublicKey
	Metadata        ed25519.PublicKey
	TokenMint       ed25519.PublicKey
	Edition         ed25519.PublicKey

	// DelegateRecord is the token record of the program-as-signer's token
	// account.
	DelegateRecord ed25519.PublicKey

	// TokenRecord is the token record of the actor's token account.
	TokenRecord ed25519.PublicKey

	// SellerTokenRecord is the token record of the counterparty's token
	// account, or the metadata program id without a counterparty.
	SellerTokenRecord ed25519.PublicKey

	AuthRulesProgram ed25519.PublicKey

	// AuthRules is the asset's rule set, or the metadata program id when
	// none is configured.
	AuthRules ed25519.PublicKey

	SysvarInstructions ed25519.PublicKey
	ProgramAsSigner    ed25519.PublicKey
	SystemProgram      ed25519.PublicKey
}

// NewProgrammableAssetAccounts derives the programmable NFT account bundle
// for actor. counterparty may be nil.
func NewProgrammableAssetAccounts(
	asset *Asset,
	actor ed25519.PublicKey,
	programAsSigner ed25519.PublicKey,
	counterparty ed25519.PublicKey,
) (*ProgrammableAssetAccounts, error) {
	mint := asset.Mint

	edition, err := tokenmetadata.GetMasterEditionAddress(mint)
	if err != nil {
		return nil, errors.Wrap(err, "failed to derive master edition")
	}

	tokenRecord, err := tokenRecordOf(mint, actor)
	if err != nil {
		return nil, err
	}

	delegateRecord, err := tokenRecordOf(mint, programAsSigner)
	if err != nil {
		return nil, err
	}

	sellerTokenRecord := tokenmetadata.PROGRAM_ID
	if len(counterparty) > 0 {
		sellerTokenRecord, err = tokenRecordOf(mint, counterparty)
		if err != nil {
			return nil, err
		}
	}

	authRules := asset.Metadata.RuleSet()
	if len(authRules) == 0 {
		authRules = tokenmetadata.PROGRAM_ID
	}

	return &ProgrammableAssetAccounts{
		MetadataProgram:    tokenmetadata.PROGRAM_ID,
		Metadata:           asset.Address,
		TokenMint:          mint,
		Edition:            edition.PublicKey,
		DelegateRecord:     delegateRecord,
		TokenRecord:        tokenRecord,
		SellerTokenRecord:  sellerTokenRecord,
		AuthRulesProgram:   tokenmetadata.AUTH_RULES_PROGRAM_ID,
		AuthRules:          authRules,
		SysvarInstructions: system.InstructionsSysVar,
		ProgramAsSigner:    programAsSigner,
		SystemProgram:      system.ProgramKey,
	}, nil
}

func tokenRecordOf(mint, owner ed25519.PublicKey) (ed25519.PublicKey, error) {
	ata, err := token.GetAssociatedAccount(owner, mint)
	if err != nil {
		return nil, errors.Wrap(err, "failed to derive associated token account")
	}

	record, err := tokenmetadata.GetTokenRecordAddress(mint, ata)
	if err != nil {
		return nil, errors.Wrap(err, "failed to derive token record")
	}
	return record.PublicKey, nil
}

// ListingAccounts is the bundle used when delegating the asset to the
// program-as-signer.
func (p *ProgrammableAssetAccounts) ListingAccounts() []solana.AccountMeta {
	return []solana.AccountMeta{
		solana.NewReadonlyAccountMeta(p.MetadataProgram, false),
		solana.NewAccountMeta(p.DelegateRecord, false),
		solana.NewAccountMeta(p.TokenRecord, false),
		solana.NewReadonlyAccountMeta(p.TokenMint, false),
		solana.NewReadonlyAccountMeta(p.Edition, false),
		solana.NewReadonlyAccountMeta(p.AuthRulesProgram, false),
		solana.NewReadonlyAccountMeta(p.AuthRules, false),
		solana.NewReadonlyAccountMeta(p.SysvarInstructions, false),
	}
}

// CloseListingAccounts is the bundle used when revoking the delegation.
func (p *ProgrammableAssetAccounts) CloseListingAccounts() []solana.AccountMeta {
	return []solana.AccountMeta{
		solana.NewReadonlyAccountMeta(p.MetadataProgram, false),
		solana.NewAccountMeta(p.DelegateRecord, false),
		solana.NewReadonlyAccountMeta(p.ProgramAsSigner, false),
		solana.NewAccountMeta(p.Metadata, false),
		solana.NewReadonlyAccountMeta(p.Edition, false),
		solana.NewAccountMeta(p.TokenRecord, false),
		solana.NewReadonlyAccountMeta(p.TokenMint, false),
		solana.NewReadonlyAccountMeta(p.AuthRulesProgram, false),
		solana.NewReadonlyAccountMeta(p.AuthRules, false),
		solana.NewReadonlyAccountMeta(p.SysvarInstructions, false),
		solana.NewReadonlyAccountMeta(p.SystemProgram, false),
	}
}

// TransferAccounts is the bundle used when the asset moves from the seller
// to the buyer on settlement.
func (p *ProgrammableAssetAccounts) TransferAccounts() []solana.AccountMeta {
	return []solana.AccountMeta{
		solana.NewReadonlyAccountMeta(p.MetadataProgram, false),
		solana.NewReadonlyAccountMeta(p.Edition, false),
		solana.NewAccountMeta(p.SellerTokenRecord, false),
		solana.NewAccountMeta(p.TokenRecord, false),
		solana.NewReadonlyAccountMeta(p.AuthRulesProgram, false),
		solana.NewReadonlyAccountMeta(p.AuthRules, false),
		solana.NewReadonlyAccountMeta(p.SysvarInstructions, false),
	}
}

// RevokeAccounts is the bundle the accepting seller supplies so the
// delegation on its token account can be revoked before the transfer.
func (p *ProgrammableAssetAccounts) RevokeAccounts() []solana.AccountMeta {
	return []solana.AccountMeta{
		solana.NewReadonlyAccountMeta(p.MetadataProgram, false),
		solana.NewAccountMeta(p.DelegateRecord, false),
		solana.NewAccountMeta(p.SellerTokenRecord, false),
		solana.NewReadonlyAccountMeta(p.TokenMint, false),
		solana.NewReadonlyAccountMeta(p.Edition, false),
		solana.NewReadonlyAccountMeta(p.AuthRulesProgram, false),
		solana.NewReadonlyAccountMeta(p.AuthRules, false),
		solana.NewReadonlyAccountMeta(p.SysvarInstructions, false),
	}
}
