package metadata

import (
	"crypto/ed25519"
)

const editionSeed = "edition"

// GetMetadataAddress returns the address of the metadata account for mint.
func GetMetadataAddress(mint ed25519.PublicKey) (ed25519.PublicKey, error) {
	return addressCache.FindProgramAddress(
		ProgramKey,
		[]byte(Prefix),
		ProgramKey,
		mint,
	)
}

// GetEditionAddress returns the address of the edition or master edition
// account for mint. Both kinds live at the same address.
func GetEditionAddress(mint ed25519.PublicKey) (ed25519.PublicKey, error) {
	return addressCache.FindProgramAddress(
		ProgramKey,
		[]byte(Prefix),
		ProgramKey,
		mint,
		[]byte(editionSeed),
	)
}
