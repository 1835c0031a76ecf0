package account

import (
	"crypto/ed25519"
	"fmt"
	"sort"
	"sync"

	"github.com/code-payments/metaplex-go/pkg/solana/borsh"
)

// Kind identifies an account type defined by one of the supported programs.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindMetadata
	KindEdition
	KindMasterEdition
	KindPackSet
	KindPackCard
	KindSafetyDepositBox
	KindVault
)

func (k Kind) String() string {
	switch k {
	case KindMetadata:
		return "metadata"
	case KindEdition:
		return "edition"
	case KindMasterEdition:
		return "master_edition"
	case KindPackSet:
		return "pack_set"
	case KindPackCard:
		return "pack_card"
	case KindSafetyDepositBox:
		return "safety_deposit_box"
	case KindVault:
		return "vault"
	}
	return "unknown"
}

// Capability describes how accounts of a kind are recognized and decoded.
//
// Layouts is keyed by the discriminator stored in the first byte of the
// account data. A kind with more than one discriminator, such as the versions
// of a master edition, lists one layout per version.
type Capability struct {
	Program ed25519.PublicKey
	Layouts map[uint8]*borsh.Schema
}

// Discriminators returns the recognized discriminators of the capability in
// ascending order.
func (c Capability) Discriminators() []uint8 {
	discriminators := make([]uint8, 0, len(c.Layouts))
	for d := range c.Layouts {
		discriminators = append(discriminators, d)
	}
	sort.Slice(discriminators, func(i, j int) bool {
		return discriminators[i] < discriminators[j]
	})
	return discriminators
}

var (
	capabilitiesMu sync.RWMutex
	capabilities   = make(map[Kind]Capability)
)

// Register adds the capability for a kind. It is called by program packages
// during initialization. Registering the same kind twice panics.
func Register(kind Kind, capability Capability) {
	if kind == KindUnknown || len(capability.Program) != ed25519.PublicKeySize || len(capability.Layouts) == 0 {
		panic(fmt.Sprintf("account: invalid registration for %s", kind))
	}

	capabilitiesMu.Lock()
	defer capabilitiesMu.Unlock()

	if _, ok := capabilities[kind]; ok {
		panic(fmt.Sprintf("account: %s already registered", kind))
	}

	layouts := make(map[uint8]*borsh.Schema, len(capability.Layouts))
	for d, schema := range capability.Layouts {
		if schema == nil {
			panic(fmt.Sprintf("account: %s has no layout for discriminator %d", kind, d))
		}
		layouts[d] = schema
	}

	capabilities[kind] = Capability{
		Program: append(ed25519.PublicKey(nil), capability.Program...),
		Layouts: layouts,
	}
}

// GetCapability returns the registered capability for a kind.
func GetCapability(kind Kind) (Capability, error) {
	capabilitiesMu.RLock()
	defer capabilitiesMu.RUnlock()

	capability, ok := capabilities[kind]
	if !ok {
		return Capability{}, ErrUnknownKind
	}
	return capability, nil
}
