package metadata

import (
	"crypto/ed25519"

	"github.com/pkg/errors"

	"github.com/code-payments/metaplex-go/pkg/solana"
	"github.com/code-payments/metaplex-go/pkg/solana/account"
	"github.com/code-payments/metaplex-go/pkg/solana/borsh"
)

var (
	editionSchema = borsh.MustDefineSchema(
		"edition",
		[]borsh.Field{
			{Name: "key", Encoding: borsh.U8()},
			{Name: "parent", Encoding: borsh.PublicKey()},
			{Name: "edition", Encoding: borsh.U64()},
		},
		nil,
		"",
	)

	masterEditionV1Schema = borsh.MustDefineSchema(
		"master_edition_v1",
		[]borsh.Field{
			{Name: "key", Encoding: borsh.U8()},
			{Name: "supply", Encoding: borsh.U64()},
			{Name: "maxSupply", Encoding: borsh.Option(borsh.U64())},
			{Name: "printingMint", Encoding: borsh.PublicKey()},
			{Name: "oneTimePrintingAuthorizationMint", Encoding: borsh.PublicKey()},
		},
		nil,
		"",
	)

	masterEditionV2Schema = borsh.MustDefineSchema(
		"master_edition_v2",
		[]borsh.Field{
			{Name: "key", Encoding: borsh.U8()},
			{Name: "supply", Encoding: borsh.U64()},
			{Name: "maxSupply", Encoding: borsh.Option(borsh.U64())},
		},
		nil,
		"",
	)
)

// Edition is a numbered print of a master edition.
type Edition struct {
	Key     Key
	Parent  ed25519.PublicKey
	Edition uint64
}

type EditionAccount struct {
	*account.Account
	Edition Edition
}

func NewEditionAccount(address ed25519.PublicKey, info solana.AccountInfo) (*EditionAccount, error) {
	a, err := account.New(account.KindEdition, address, info)
	if err != nil {
		return nil, err
	}
	return editionAccountFrom(a), nil
}

func editionAccountFrom(a *account.Account) *EditionAccount {
	return &EditionAccount{
		Account: a,
		Edition: Edition{
			Key:     Key(a.Record.Uint8("key")),
			Parent:  a.Record.PublicKey("parent"),
			Edition: a.Record.Uint64("edition"),
		},
	}
}

func IsEdition(data []byte) bool {
	return account.IsRecognized(account.KindEdition, data)
}

func (e *Edition) Marshal() ([]byte, error) {
	return borsh.Encode(editionSchema, borsh.Record{
		"key":     uint8(e.Key),
		"parent":  e.Parent,
		"edition": e.Edition,
	})
}

// MasterEdition is the source edition prints are made from. Version 1 master
// editions also carry their printing mints, which are nil for version 2.
type MasterEdition struct {
	Key       Key
	Supply    uint64
	MaxSupply *uint64

	PrintingMint                     ed25519.PublicKey
	OneTimePrintingAuthorizationMint ed25519.PublicKey
}

type MasterEditionAccount struct {
	*account.Account
	MasterEdition MasterEdition
}

func NewMasterEditionAccount(address ed25519.PublicKey, info solana.AccountInfo) (*MasterEditionAccount, error) {
	a, err := account.New(account.KindMasterEdition, address, info)
	if err != nil {
		return nil, err
	}
	return masterEditionAccountFrom(a), nil
}

func masterEditionAccountFrom(a *account.Account) *MasterEditionAccount {
	return &MasterEditionAccount{
		Account: a,
		MasterEdition: MasterEdition{
			Key:                              Key(a.Record.Uint8("key")),
			Supply:                           a.Record.Uint64("supply"),
			MaxSupply:                        a.Record.OptionalUint64("maxSupply"),
			PrintingMint:                     a.Record.PublicKey("printingMint"),
			OneTimePrintingAuthorizationMint: a.Record.PublicKey("oneTimePrintingAuthorizationMint"),
		},
	}
}

// IsMasterEdition reports whether data carries either master edition
// discriminator.
func IsMasterEdition(data []byte) bool {
	return account.IsRecognized(account.KindMasterEdition, data)
}

// Marshal encodes the master edition using the layout of its Key.
func (m *MasterEdition) Marshal() ([]byte, error) {
	r := borsh.Record{
		"key":       uint8(m.Key),
		"supply":    m.Supply,
		"maxSupply": nil,
	}
	if m.MaxSupply != nil {
		r["maxSupply"] = *m.MaxSupply
	}

	switch m.Key {
	case KeyMasterEditionV1:
		r["printingMint"] = m.PrintingMint
		r["oneTimePrintingAuthorizationMint"] = m.OneTimePrintingAuthorizationMint
		return borsh.Encode(masterEditionV1Schema, r)
	case KeyMasterEditionV2:
		return borsh.Encode(masterEditionV2Schema, r)
	default:
		return nil, errors.Errorf("invalid master edition key: %d", m.Key)
	}
}

// EditionLookup is the account found at a mint's edition address, which is
// either an edition or a master edition. Exactly one field is set.
type EditionLookup struct {
	Edition       *EditionAccount
	MasterEdition *MasterEditionAccount
}

func (l *EditionLookup) IsMasterEdition() bool {
	return l.MasterEdition != nil
}
