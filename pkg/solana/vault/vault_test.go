package vault

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"encoding/binary"
	"testing"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/metaplex-go/pkg/solana"
	"github.com/code-payments/metaplex-go/pkg/solana/account"
	"github.com/code-payments/metaplex-go/pkg/testutil"
)

func safetyDepositBoxLayout(vault, mint, store ed25519.PublicKey, order uint8) []byte {
	var buf bytes.Buffer
	buf.WriteByte(uint8(KeySafetyDepositBoxV1))
	buf.Write(vault)
	buf.Write(mint)
	buf.Write(store)
	buf.WriteByte(order)
	return buf.Bytes()
}

func vaultLayout(keys []ed25519.PublicKey, pricePerShare uint64) []byte {
	var buf bytes.Buffer
	buf.WriteByte(uint8(KeyVaultV1))
	for _, key := range keys[:5] {
		buf.Write(key)
	}
	buf.WriteByte(1)
	buf.Write(keys[5])
	buf.WriteByte(2)
	buf.WriteByte(uint8(StateCombined))
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], pricePerShare)
	buf.Write(b[:])
	return buf.Bytes()
}

func TestNewSafetyDepositBoxAccount(t *testing.T) {
	vault := testutil.GenerateSolanaKey(t)
	mint := testutil.GenerateSolanaKey(t)
	store := testutil.GenerateSolanaKey(t)

	data := safetyDepositBoxLayout(vault, mint, store, 3)
	a, err := NewSafetyDepositBoxAccount(testutil.GenerateSolanaKey(t), solana.AccountInfo{Owner: ProgramKey, Data: data})
	require.NoError(t, err)

	b := a.SafetyDepositBox
	assert.Equal(t, KeySafetyDepositBoxV1, b.Key)
	assert.EqualValues(t, vault, b.Vault)
	assert.EqualValues(t, mint, b.TokenMint)
	assert.EqualValues(t, store, b.Store)
	assert.EqualValues(t, 3, b.Order)

	marshaled, err := b.Marshal()
	require.NoError(t, err)
	assert.Equal(t, data, marshaled)

	assert.True(t, IsSafetyDepositBox(data))
	assert.False(t, IsVault(data))
}

func TestNewSafetyDepositBoxAccount_Errors(t *testing.T) {
	address := testutil.GenerateSolanaKey(t)
	data := safetyDepositBoxLayout(testutil.GenerateSolanaKey(t), testutil.GenerateSolanaKey(t), testutil.GenerateSolanaKey(t), 0)

	_, err := NewSafetyDepositBoxAccount(address, solana.AccountInfo{Owner: testutil.GenerateSolanaKey(t), Data: data})
	assert.True(t, errors.Is(err, account.ErrInvalidOwner))

	_, err = NewSafetyDepositBoxAccount(address, solana.AccountInfo{Owner: ProgramKey, Data: append([]byte{uint8(KeyExternalPriceAccountV1)}, data[1:]...)})
	assert.True(t, errors.Is(err, account.ErrInvalidAccountData))

	_, err = NewSafetyDepositBoxAccount(address, solana.AccountInfo{Owner: ProgramKey, Data: data[:len(data)-1]})
	assert.True(t, errors.Is(err, account.ErrMalformedAccountData))
}

func TestNewVaultAccount(t *testing.T) {
	keys := testutil.GenerateSolanaKeys(t, 6)
	data := vaultLayout(keys, 1_000_000_000_000)

	a, err := NewVaultAccount(testutil.GenerateSolanaKey(t), solana.AccountInfo{Owner: ProgramKey, Data: data})
	require.NoError(t, err)

	v := a.Vault
	assert.Equal(t, KeyVaultV1, v.Key)
	assert.EqualValues(t, keys[0], v.TokenProgram)
	assert.EqualValues(t, keys[1], v.FractionMint)
	assert.EqualValues(t, keys[2], v.Authority)
	assert.EqualValues(t, keys[3], v.FractionTreasury)
	assert.EqualValues(t, keys[4], v.RedeemTreasury)
	assert.True(t, v.AllowFurtherShareCreation)
	assert.EqualValues(t, keys[5], v.PricingLookupAddress)
	assert.EqualValues(t, 2, v.TokenTypeCount)
	assert.Equal(t, StateCombined, v.State)
	assert.Equal(t, "combined", v.State.String())
	assert.EqualValues(t, 1_000_000_000_000, v.LockedPricePerShare)

	marshaled, err := v.Marshal()
	require.NoError(t, err)
	assert.Equal(t, data, marshaled)

	assert.True(t, IsVault(data))
	assert.False(t, IsSafetyDepositBox(data))

	_, err = NewVaultAccount(testutil.GenerateSolanaKey(t), solana.AccountInfo{Owner: ProgramKey, Data: data[:200]})
	assert.True(t, errors.Is(err, account.ErrMalformedAccountData))
}

func TestGetSafetyDepositBoxAddress(t *testing.T) {
	vault, err := base58.Decode("TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA")
	require.NoError(t, err)
	mint, err := base58.Decode("So11111111111111111111111111111111111111112")
	require.NoError(t, err)

	address, err := GetSafetyDepositBoxAddress(vault, mint)
	require.NoError(t, err)
	assert.Equal(t, "A6T387dahy5eYkX7zNTQUg1Nj1fuvcaZWofLSg4Ecnwz", base58.Encode(address))
}

func TestProgramKey(t *testing.T) {
	assert.Equal(t, "vau1zxA2LbssAUEF7Gpw91zMM1LvXrvpzJtmZ58rPsn", base58.Encode(ProgramKey))
}

func TestClient(t *testing.T) {
	ctx := context.Background()
	ledger := testutil.NewLedger()
	client := NewClient(ledger, solana.CommitmentFinalized)

	vault := testutil.GenerateSolanaKey(t)
	ledger.SetAccount(vault, solana.AccountInfo{Owner: ProgramKey, Data: vaultLayout(testutil.GenerateSolanaKeys(t, 6), 5)})

	mints := testutil.GenerateSolanaKeys(t, 3)
	for i, mint := range mints {
		address, err := GetSafetyDepositBoxAddress(vault, mint)
		require.NoError(t, err)
		ledger.SetAccount(address, solana.AccountInfo{
			Owner: ProgramKey,
			Data:  safetyDepositBoxLayout(vault, mint, testutil.GenerateSolanaKey(t), uint8(len(mints)-i)),
		})
	}

	otherVault := testutil.GenerateSolanaKey(t)
	otherBox, err := GetSafetyDepositBoxAddress(otherVault, mints[0])
	require.NoError(t, err)
	ledger.SetAccount(otherBox, solana.AccountInfo{
		Owner: ProgramKey,
		Data:  safetyDepositBoxLayout(otherVault, mints[0], testutil.GenerateSolanaKey(t), 0),
	})

	v, err := client.GetVault(ctx, vault)
	require.NoError(t, err)
	assert.EqualValues(t, 5, v.Vault.LockedPricePerShare)

	box, err := client.GetSafetyDepositBoxForMint(ctx, vault, mints[1])
	require.NoError(t, err)
	assert.EqualValues(t, mints[1], box.SafetyDepositBox.TokenMint)

	_, err = client.GetSafetyDepositBox(ctx, vault)
	assert.True(t, errors.Is(err, account.ErrInvalidAccountData))

	_, err = client.GetVault(ctx, testutil.GenerateSolanaKey(t))
	assert.True(t, errors.Is(err, account.ErrAccountNotFound))

	boxes, err := client.GetSafetyDepositBoxes(ctx, vault)
	require.NoError(t, err)
	require.Len(t, boxes, 3)
	for i, box := range boxes {
		assert.EqualValues(t, i+1, box.SafetyDepositBox.Order)
		assert.EqualValues(t, vault, box.SafetyDepositBox.Vault)
	}
}
