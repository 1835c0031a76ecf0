package nftpacks

import (
	"crypto/ed25519"

	"github.com/code-payments/metaplex-go/pkg/solana"
	"github.com/code-payments/metaplex-go/pkg/solana/account"
	"github.com/code-payments/metaplex-go/pkg/solana/borsh"
)

// ProgramKey is the address of the NFT packs program.
//
// Current key: packFeFNZzMfD9aVWL7QbGz1WcU7R9zpf6pvNsw2BLu
var ProgramKey = ed25519.PublicKey{12, 48, 78, 223, 241, 48, 50, 84, 135, 10, 120, 186, 87, 99, 235, 178, 237, 135, 206, 204, 138, 4, 87, 85, 60, 161, 10, 198, 214, 39, 29, 114}

// AccountType is the discriminator stored in the first byte of every account
// owned by the program.
type AccountType uint8

const (
	AccountTypeUninitialized AccountType = iota
	AccountTypePackSet
	AccountTypePackCard
	AccountTypePackVoucher
	AccountTypeProvingProcess
)

var addressCache = solana.NewAddressCache(10_000)

func init() {
	account.Register(account.KindPackSet, account.Capability{
		Program: ProgramKey,
		Layouts: map[uint8]*borsh.Schema{
			uint8(AccountTypePackSet): packSetSchema,
		},
	})
	account.Register(account.KindPackCard, account.Capability{
		Program: ProgramKey,
		Layouts: map[uint8]*borsh.Schema{
			uint8(AccountTypePackCard): packCardSchema,
		},
	})
}
