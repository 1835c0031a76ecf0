package solana

import (
	"crypto/ed25519"
	"encoding/hex"
	"strings"

	"github.com/code-payments/metaplex-go/pkg/cache"
)

// Each cached derivation costs one unit of the cache budget.
const addressCacheEntryWeight = 1

type programAddress struct {
	address ed25519.PublicKey
	bump    uint8
}

// AddressCache memoizes FindProgramAddressAndBump results. Derivation is a pure
// function of its inputs, so cached and uncached results are identical.
type AddressCache struct {
	cache cache.Cache
}

// NewAddressCache returns an AddressCache holding up to size derivations.
func NewAddressCache(size int) *AddressCache {
	return &AddressCache{
		cache: cache.NewCache(size * addressCacheEntryWeight),
	}
}

// FindProgramAddressAndBump is a cached FindProgramAddressAndBump.
func (c *AddressCache) FindProgramAddressAndBump(program ed25519.PublicKey, seeds ...[]byte) (ed25519.PublicKey, uint8, error) {
	key := addressCacheKey(program, seeds)

	if cached, ok := c.cache.Retrieve(key); ok {
		entry := cached.(*programAddress)
		return copyKey(entry.address), entry.bump, nil
	}

	address, bump, err := FindProgramAddressAndBump(program, seeds...)
	if err != nil {
		return nil, 0, err
	}

	// A concurrent derivation may have inserted the same key first, in which
	// case the insert fails and both callers hold the same result.
	_ = c.cache.Insert(key, &programAddress{address: copyKey(address), bump: bump}, addressCacheEntryWeight)

	return address, bump, nil
}

// FindProgramAddress is a cached FindProgramAddress.
func (c *AddressCache) FindProgramAddress(program ed25519.PublicKey, seeds ...[]byte) (ed25519.PublicKey, error) {
	address, _, err := c.FindProgramAddressAndBump(program, seeds...)
	return address, err
}

func addressCacheKey(program ed25519.PublicKey, seeds [][]byte) string {
	var sb strings.Builder
	sb.WriteString(hex.EncodeToString(program))
	for _, seed := range seeds {
		sb.WriteByte(':')
		sb.WriteString(hex.EncodeToString(seed))
	}
	return sb.String()
}

func copyKey(key ed25519.PublicKey) ed25519.PublicKey {
	if key == nil {
		return nil
	}
	return append(ed25519.PublicKey(nil), key...)
}
