package metadata

import (
	"crypto/ed25519"

	"github.com/code-payments/metaplex-go/pkg/solana"
	"github.com/code-payments/metaplex-go/pkg/solana/account"
	"github.com/code-payments/metaplex-go/pkg/solana/borsh"
)

// ProgramKey is the address of the token metadata program.
//
// Current key: metaqbxxUerdq28cj1RbAWkYQm3ybzjb6a8bt518x1s
var ProgramKey = ed25519.PublicKey{11, 112, 101, 177, 227, 209, 124, 69, 56, 157, 82, 127, 107, 4, 195, 205, 88, 184, 108, 115, 26, 160, 253, 181, 73, 182, 209, 188, 3, 248, 41, 70}

// Seed prefix shared by every address derived by the program.
const Prefix = "metadata"

// Key is the discriminator stored in the first byte of every account owned
// by the program.
type Key uint8

const (
	KeyUninitialized Key = iota
	KeyEditionV1
	KeyMasterEditionV1
	KeyReservationListV1
	KeyMetadataV1
	KeyReservationListV2
	KeyMasterEditionV2
	KeyEditionMarker
)

// Derivations are pure, so results are shared by every caller in the process.
var addressCache = solana.NewAddressCache(10_000)

func init() {
	account.Register(account.KindMetadata, account.Capability{
		Program: ProgramKey,
		Layouts: map[uint8]*borsh.Schema{
			uint8(KeyMetadataV1): metadataSchema,
		},
	})
	account.Register(account.KindEdition, account.Capability{
		Program: ProgramKey,
		Layouts: map[uint8]*borsh.Schema{
			uint8(KeyEditionV1): editionSchema,
		},
	})
	account.Register(account.KindMasterEdition, account.Capability{
		Program: ProgramKey,
		Layouts: map[uint8]*borsh.Schema{
			uint8(KeyMasterEditionV1): masterEditionV1Schema,
			uint8(KeyMasterEditionV2): masterEditionV2Schema,
		},
	})
}
