package vault

import (
	"crypto/ed25519"

	"github.com/code-payments/metaplex-go/pkg/solana"
	"github.com/code-payments/metaplex-go/pkg/solana/account"
	"github.com/code-payments/metaplex-go/pkg/solana/borsh"
)

// ProgramKey is the address of the token vault program.
//
// Current key: vau1zxA2LbssAUEF7Gpw91zMM1LvXrvpzJtmZ58rPsn
var ProgramKey = ed25519.PublicKey{13, 186, 28, 52, 26, 119, 115, 94, 210, 96, 195, 36, 182, 190, 250, 187, 9, 244, 245, 52, 7, 50, 47, 49, 172, 28, 41, 212, 233, 209, 175, 49}

// Seed prefix shared by every address derived by the program.
const Prefix = "vault"

// Key is the discriminator stored in the first byte of every account owned
// by the program.
type Key uint8

const (
	KeyUninitialized Key = iota
	KeySafetyDepositBoxV1
	KeyExternalPriceAccountV1
	KeyVaultV1
)

var addressCache = solana.NewAddressCache(10_000)

func init() {
	account.Register(account.KindSafetyDepositBox, account.Capability{
		Program: ProgramKey,
		Layouts: map[uint8]*borsh.Schema{
			uint8(KeySafetyDepositBoxV1): safetyDepositBoxSchema,
		},
	})
	account.Register(account.KindVault, account.Capability{
		Program: ProgramKey,
		Layouts: map[uint8]*borsh.Schema{
			uint8(KeyVaultV1): vaultSchema,
		},
	})
}
