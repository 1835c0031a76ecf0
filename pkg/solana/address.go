package solana

import (
	"crypto/ed25519"
	"crypto/sha256"
	"math"

	"github.com/jdgcs/ed25519/edwards25519"
	"github.com/pkg/errors"
)

const (
	maxSeeds      = 16
	maxSeedLength = 32

	programAddressMarker = "ProgramDerivedAddress"
)

var (
	ErrTooManySeeds          = errors.New("too many seeds")
	ErrMaxSeedLengthExceeded = errors.New("max seed length exceeded")

	// ErrInvalidPublicKey is returned when the derived address lies on the
	// ed25519 curve, and so could have a private key.
	ErrInvalidPublicKey = errors.New("invalid public key")

	ErrNoValidProgramAddress = errors.New("unable to find a valid program address")
)

var programHashCtor = sha256.New

// CreateProgramAddress derives the program address of program and seeds:
// sha256(seeds || program || "ProgramDerivedAddress"), rejected when the hash
// decodes to a point on the ed25519 curve.
//
// Reference: https://github.com/solana-labs/solana/blob/5548e599fe4920b71766e0ad1d121755ce9c63d5/sdk/program/src/pubkey.rs#L158
func CreateProgramAddress(program ed25519.PublicKey, seeds ...[]byte) (ed25519.PublicKey, error) {
	if len(seeds) > maxSeeds {
		return nil, ErrTooManySeeds
	}
	for _, seed := range seeds {
		if len(seed) > maxSeedLength {
			return nil, ErrMaxSeedLengthExceeded
		}
	}

	h := programHashCtor()
	for _, parts := range [][][]byte{seeds, {program, []byte(programAddressMarker)}} {
		for _, part := range parts {
			if _, err := h.Write(part); err != nil {
				return nil, errors.Wrap(err, "failed to hash seed")
			}
		}
	}

	var address [ed25519.PublicKeySize]byte
	copy(address[:], h.Sum(nil))

	// The standard library does not expose point decoding, so the curve check
	// uses the same decoding ed25519 verification performs.
	var point edwards25519.ExtendedGroupElement
	if point.FromBytes(&address) {
		return nil, ErrInvalidPublicKey
	}

	return address[:], nil
}

// FindProgramAddressAndBump returns the first valid program address of
// program and seeds extended with a bump seed, trying bumps from 255 down to
// 1, along with the bump that produced it.
//
// Reference: https://github.com/solana-labs/solana/blob/5548e599fe4920b71766e0ad1d121755ce9c63d5/sdk/program/src/pubkey.rs#L234
func FindProgramAddressAndBump(program ed25519.PublicKey, seeds ...[]byte) (ed25519.PublicKey, uint8, error) {
	bumped := make([][]byte, len(seeds)+1)
	copy(bumped, seeds)

	for bump := math.MaxUint8; bump > 0; bump-- {
		bumped[len(seeds)] = []byte{uint8(bump)}

		address, err := CreateProgramAddress(program, bumped...)
		switch err {
		case nil:
			return address, uint8(bump), nil
		case ErrInvalidPublicKey:
		default:
			return nil, 0, err
		}
	}

	return nil, 0, ErrNoValidProgramAddress
}

// FindProgramAddress is FindProgramAddressAndBump without the bump.
func FindProgramAddress(program ed25519.PublicKey, seeds ...[]byte) (ed25519.PublicKey, error) {
	address, _, err := FindProgramAddressAndBump(program, seeds...)
	return address, err
}
