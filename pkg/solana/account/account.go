package account

import (
	"bytes"
	"crypto/ed25519"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"

	"github.com/code-payments/metaplex-go/pkg/solana"
	"github.com/code-payments/metaplex-go/pkg/solana/borsh"
)

// Account is a decoded account of a known kind.
//
// An Account is only ever constructed from data that passed the owner and
// discriminator checks of its kind, and is not modified afterwards. Reading a
// newer version of the account produces a new Account.
type Account struct {
	Kind          Kind
	Address       ed25519.PublicKey
	Owner         ed25519.PublicKey
	Discriminator uint8
	Size          int
	Lamports      uint64
	Record        borsh.Record
}

// New validates and decodes info as an account of the provided kind.
//
// The owner is checked before the data is read: ErrInvalidOwner is returned
// when the account belongs to another program, ErrInvalidAccountData when the
// discriminator is not recognized, and ErrMalformedAccountData when the data
// does not satisfy the layout selected by the discriminator.
func New(kind Kind, address ed25519.PublicKey, info solana.AccountInfo) (*Account, error) {
	capability, err := GetCapability(kind)
	if err != nil {
		return nil, errors.Wrap(err, kind.String())
	}

	if !bytes.Equal(info.Owner, capability.Program) {
		return nil, errors.Wrapf(ErrInvalidOwner, "%s: owned by %s", kind, base58.Encode(info.Owner))
	}

	if !isRecognized(capability, info.Data) {
		return nil, errors.Wrapf(ErrInvalidAccountData, "%s: unrecognized discriminator", kind)
	}

	discriminator := info.Data[0]
	record, err := borsh.Decode(capability.Layouts[discriminator], info.Data)
	if err != nil {
		return nil, &malformedError{cause: errors.Wrapf(err, "%s at %s", kind, base58.Encode(address))}
	}

	return &Account{
		Kind:          kind,
		Address:       append(ed25519.PublicKey(nil), address...),
		Owner:         append(ed25519.PublicKey(nil), info.Owner...),
		Discriminator: discriminator,
		Size:          len(info.Data),
		Lamports:      info.Lamports,
		Record:        record,
	}, nil
}

// IsRecognized reports whether data starts with one of the discriminators of
// the kind. Unknown kinds and empty data are never recognized.
func IsRecognized(kind Kind, data []byte) bool {
	capability, err := GetCapability(kind)
	if err != nil {
		return false
	}
	return isRecognized(capability, data)
}

func isRecognized(capability Capability, data []byte) bool {
	if len(data) == 0 {
		return false
	}
	_, ok := capability.Layouts[data[0]]
	return ok
}

// Layout returns the schema the account was decoded with.
func (a *Account) Layout() *borsh.Schema {
	capability, err := GetCapability(a.Kind)
	if err != nil {
		return nil
	}
	return capability.Layouts[a.Discriminator]
}

// AddressString returns the base58 encoded address of the account.
func (a *Account) AddressString() string {
	return base58.Encode(a.Address)
}
