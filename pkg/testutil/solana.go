package testutil

import (
	"bytes"
	"crypto/ed25519"
	"sort"
	"sync"
	"testing"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/metaplex-go/pkg/solana"
)

func GenerateSolanaKeys(t *testing.T, n int) []ed25519.PublicKey {
	keys := make([]ed25519.PublicKey, n)
	for i := 0; i < n; i++ {
		p, _, err := ed25519.GenerateKey(nil)
		require.NoError(t, err)
		keys[i] = p
	}
	return keys
}

func GenerateSolanaKey(t *testing.T) ed25519.PublicKey {
	return GenerateSolanaKeys(t, 1)[0]
}

// Ledger is an in-memory solana.Client for tests. Accounts are stored as set,
// and calls can be made to fail with SetError.
type Ledger struct {
	mu       sync.Mutex
	accounts map[string]solana.AccountInfo
	err      error
	calls    map[string]int
}

var _ solana.Client = (*Ledger)(nil)

func NewLedger() *Ledger {
	return &Ledger{
		accounts: make(map[string]solana.AccountInfo),
		calls:    make(map[string]int),
	}
}

// SetAccount stores a copy of info at address.
func (l *Ledger) SetAccount(address ed25519.PublicKey, info solana.AccountInfo) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.accounts[base58.Encode(address)] = solana.AccountInfo{
		Data:       append([]byte(nil), info.Data...),
		Owner:      append(ed25519.PublicKey(nil), info.Owner...),
		Lamports:   info.Lamports,
		Executable: info.Executable,
	}
}

// SetError makes every subsequent call fail with err. A nil err clears it.
func (l *Ledger) SetError(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.err = err
}

// Calls returns the number of times method was called.
func (l *Ledger) Calls(method string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.calls[method]
}

func (l *Ledger) GetAccountInfo(address ed25519.PublicKey, _ solana.Commitment) (solana.AccountInfo, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.calls["GetAccountInfo"]++
	if l.err != nil {
		return solana.AccountInfo{}, l.err
	}

	info, ok := l.accounts[base58.Encode(address)]
	if !ok {
		return solana.AccountInfo{}, solana.ErrNoAccountInfo
	}
	return info, nil
}

// GetMultipleAccounts enforces the same per-call address limit as the RPC
// client.
func (l *Ledger) GetMultipleAccounts(addresses []ed25519.PublicKey, _ solana.Commitment) ([]*solana.AccountInfo, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.calls["GetMultipleAccounts"]++
	if l.err != nil {
		return nil, l.err
	}
	if len(addresses) > solana.MaxMultipleAccounts {
		return nil, solana.ErrTooManyAccounts
	}

	infos := make([]*solana.AccountInfo, len(addresses))
	for i, address := range addresses {
		if info, ok := l.accounts[base58.Encode(address)]; ok {
			infos[i] = &info
		}
	}
	return infos, nil
}

// GetProgramAccounts returns the matching accounts ordered by address.
func (l *Ledger) GetProgramAccounts(program ed25519.PublicKey, _ solana.Commitment, filters ...solana.MemcmpFilter) ([]solana.KeyedAccountInfo, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.calls["GetProgramAccounts"]++
	if l.err != nil {
		return nil, l.err
	}

	var res []solana.KeyedAccountInfo
	for address, info := range l.accounts {
		if !bytes.Equal(info.Owner, program) || !matchesFilters(info.Data, filters) {
			continue
		}

		decoded, err := base58.Decode(address)
		if err != nil {
			return nil, errors.Wrap(err, "invalid stored address")
		}
		res = append(res, solana.KeyedAccountInfo{Address: decoded, Info: info})
	}

	sort.Slice(res, func(i, j int) bool {
		return bytes.Compare(res[i].Address, res[j].Address) < 0
	})
	return res, nil
}

func matchesFilters(data []byte, filters []solana.MemcmpFilter) bool {
	for _, f := range filters {
		end := int(f.Offset) + len(f.Bytes)
		if end > len(data) || !bytes.Equal(data[f.Offset:end], f.Bytes) {
			return false
		}
	}
	return true
}
