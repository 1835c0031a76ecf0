package metadata

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"encoding/binary"
	"reflect"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/metaplex-go/pkg/solana"
	"github.com/code-payments/metaplex-go/pkg/solana/account"
	"github.com/code-payments/metaplex-go/pkg/solana/borsh"
	"github.com/code-payments/metaplex-go/pkg/testutil"
)

type layoutWriter struct {
	bytes.Buffer
}

func (w *layoutWriter) u8(v uint8) { w.WriteByte(v) }

func (w *layoutWriter) u16(v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	w.Write(b[:])
}

func (w *layoutWriter) u32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.Write(b[:])
}

func (w *layoutWriter) u64(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	w.Write(b[:])
}

func (w *layoutWriter) str(s string) {
	w.u32(uint32(len(s)))
	w.WriteString(s)
}

func (w *layoutWriter) key(k ed25519.PublicKey) { w.Write(k) }

// paddedString mirrors how the program stores names: a fixed capacity string
// padded with nulls.
func paddedString(s string, size int) string {
	return s + string(make([]byte, size-len(s)))
}

func metadataLayout(updateAuthority, mint ed25519.PublicKey, name string, creators []Creator, primarySale bool) []byte {
	var w layoutWriter
	w.u8(uint8(KeyMetadataV1))
	w.key(updateAuthority)
	w.key(mint)
	w.str(name)
	w.str(paddedString("SYM", 10))
	w.str(paddedString("https://example.com/foo.json", 200))
	w.u16(500)
	if creators == nil {
		w.u8(0)
	} else {
		w.u8(1)
		w.u32(uint32(len(creators)))
		for _, c := range creators {
			w.key(c.Address)
			if c.Verified {
				w.u8(1)
			} else {
				w.u8(0)
			}
			w.u8(c.Share)
		}
	}
	if primarySale {
		w.u8(1)
	} else {
		w.u8(0)
	}
	w.u8(1)
	return w.Bytes()
}

func TestNewMetadataAccount(t *testing.T) {
	address := testutil.GenerateSolanaKey(t)
	updateAuthority := testutil.GenerateSolanaKey(t)
	mint := testutil.GenerateSolanaKey(t)

	data := metadataLayout(updateAuthority, mint, paddedString("Foo", 32), nil, true)
	a, err := NewMetadataAccount(address, solana.AccountInfo{Owner: ProgramKey, Data: data, Lamports: 5616720})
	require.NoError(t, err)

	assert.Equal(t, account.KindMetadata, a.Kind)
	assert.EqualValues(t, address, a.Address)
	assert.Equal(t, len(data), a.Size)

	m := a.Metadata
	assert.Equal(t, KeyMetadataV1, m.Key)
	assert.EqualValues(t, updateAuthority, m.UpdateAuthority)
	assert.EqualValues(t, mint, m.Mint)
	assert.Equal(t, "Foo", m.Data.Name)
	assert.Equal(t, "SYM", m.Data.Symbol)
	assert.Equal(t, "https://example.com/foo.json", m.Data.URI)
	assert.EqualValues(t, 500, m.Data.SellerFeeBasisPoints)
	assert.Nil(t, m.Data.Creators)
	assert.True(t, m.PrimarySaleHappened)
	assert.True(t, m.IsMutable)

	// The generic record carries the same values, with keys as base58 strings.
	assert.Equal(t, base58.Encode(mint), a.Record.String("mint"))
	assert.Equal(t, "Foo", a.Record.Record("data").String("name"))
	assert.False(t, a.Record.Record("data").Has("creators"))
}

func TestNewMetadataAccount_StripsEveryNull(t *testing.T) {
	data := metadataLayout(testutil.GenerateSolanaKey(t), testutil.GenerateSolanaKey(t), "F\x00o\x00o\x00\x00", nil, false)
	a, err := NewMetadataAccount(testutil.GenerateSolanaKey(t), solana.AccountInfo{Owner: ProgramKey, Data: data})
	require.NoError(t, err)
	assert.Equal(t, "Foo", a.Metadata.Data.Name)
	assert.False(t, a.Metadata.PrimarySaleHappened)
}

func TestNewMetadataAccount_Creators(t *testing.T) {
	creators := []Creator{
		{Address: testutil.GenerateSolanaKey(t), Verified: true, Share: 60},
		{Address: testutil.GenerateSolanaKey(t), Verified: false, Share: 40},
	}
	data := metadataLayout(testutil.GenerateSolanaKey(t), testutil.GenerateSolanaKey(t), "Foo", creators, true)

	a, err := NewMetadataAccount(testutil.GenerateSolanaKey(t), solana.AccountInfo{Owner: ProgramKey, Data: data})
	require.NoError(t, err)
	assert.Equal(t, creators, a.Metadata.Data.Creators)

	// A present but empty creator list is distinct from an absent one.
	data = metadataLayout(testutil.GenerateSolanaKey(t), testutil.GenerateSolanaKey(t), "Foo", []Creator{}, true)
	a, err = NewMetadataAccount(testutil.GenerateSolanaKey(t), solana.AccountInfo{Owner: ProgramKey, Data: data})
	require.NoError(t, err)
	assert.NotNil(t, a.Metadata.Data.Creators)
	assert.Empty(t, a.Metadata.Data.Creators)
}

func TestNewMetadataAccount_AbsentCreatorsConsumeOneByte(t *testing.T) {
	withCreators := metadataLayout(testutil.GenerateSolanaKey(t), testutil.GenerateSolanaKey(t), "Foo", []Creator{}, true)
	withoutCreators := metadataLayout(testutil.GenerateSolanaKey(t), testutil.GenerateSolanaKey(t), "Foo", nil, true)

	// An empty list costs a presence byte plus a 4 byte count.
	assert.Equal(t, len(withCreators)-4, len(withoutCreators))

	a, err := NewMetadataAccount(testutil.GenerateSolanaKey(t), solana.AccountInfo{Owner: ProgramKey, Data: withoutCreators})
	require.NoError(t, err)
	assert.True(t, a.Metadata.PrimarySaleHappened)
	assert.True(t, a.Metadata.IsMutable)
}

func TestNewMetadataAccount_Errors(t *testing.T) {
	address := testutil.GenerateSolanaKey(t)
	data := metadataLayout(testutil.GenerateSolanaKey(t), testutil.GenerateSolanaKey(t), "Foo", nil, true)

	_, err := NewMetadataAccount(address, solana.AccountInfo{Owner: testutil.GenerateSolanaKey(t), Data: data})
	assert.True(t, errors.Is(err, account.ErrInvalidOwner))

	wrongKey := append([]byte{uint8(KeyEditionV1)}, data[1:]...)
	_, err = NewMetadataAccount(address, solana.AccountInfo{Owner: ProgramKey, Data: wrongKey})
	assert.True(t, errors.Is(err, account.ErrInvalidAccountData))

	for _, size := range []int{1, 33, 65, 69, len(data) - 1} {
		_, err = NewMetadataAccount(address, solana.AccountInfo{Owner: ProgramKey, Data: data[:size]})
		assert.True(t, errors.Is(err, account.ErrMalformedAccountData), "size %d", size)
		assert.True(t, errors.Is(err, borsh.ErrMalformedData), "size %d", size)
	}

	assert.True(t, IsMetadata(data))
	assert.False(t, IsMetadata(wrongKey))
	assert.False(t, IsMetadata(nil))
}

func TestMetadata_MarshalRoundTrip(t *testing.T) {
	for _, creators := range [][]Creator{
		nil,
		{},
		{{Address: testutil.GenerateSolanaKey(t), Verified: true, Share: 100}},
	} {
		data := metadataLayout(testutil.GenerateSolanaKey(t), testutil.GenerateSolanaKey(t), "Foo", creators, true)
		a, err := NewMetadataAccount(testutil.GenerateSolanaKey(t), solana.AccountInfo{Owner: ProgramKey, Data: data})
		require.NoError(t, err)

		marshaled, err := a.Metadata.Marshal()
		require.NoError(t, err)

		decoded, err := NewMetadataAccount(testutil.GenerateSolanaKey(t), solana.AccountInfo{Owner: ProgramKey, Data: marshaled})
		require.NoError(t, err)
		assert.Equal(t, a.Metadata, decoded.Metadata)
		assert.Equal(t, a.Record, decoded.Record)
	}
}

// TestMetadata_MarshalProperty verifies any metadata survives Marshal followed
// by decoding. Generated strings carry no nulls, which decoding strips.
func TestMetadata_MarshalProperty(t *testing.T) {
	address := testutil.GenerateSolanaKey(t)

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("decoded metadata equals the marshaled metadata", prop.ForAll(
		func(m Metadata) bool {
			marshaled, err := m.Marshal()
			if err != nil {
				return false
			}

			a, err := NewMetadataAccount(address, solana.AccountInfo{Owner: ProgramKey, Data: marshaled})
			return err == nil && reflect.DeepEqual(m, a.Metadata)
		},
		genMetadata(),
	))

	properties.TestingRun(t)
}

func genPublicKey() gopter.Gen {
	return gen.SliceOfN(ed25519.PublicKeySize, gen.UInt8()).Map(func(b []uint8) ed25519.PublicKey {
		return b
	})
}

func genCreator() gopter.Gen {
	return gopter.CombineGens(
		genPublicKey(),
		gen.Bool(),
		gen.UInt8(),
	).Map(func(values []interface{}) Creator {
		return Creator{
			Address:  values[0].(ed25519.PublicKey),
			Verified: values[1].(bool),
			Share:    values[2].(uint8),
		}
	})
}

func genMetadata() gopter.Gen {
	return gopter.CombineGens(
		genPublicKey(),
		genPublicKey(),
		gen.AlphaString(),
		gen.AlphaString(),
		gen.AlphaString(),
		gen.UInt16(),
		gen.Bool(),
		gen.SliceOf(genCreator()),
		gen.Bool(),
		gen.Bool(),
	).Map(func(values []interface{}) Metadata {
		m := Metadata{
			Key:             KeyMetadataV1,
			UpdateAuthority: values[0].(ed25519.PublicKey),
			Mint:            values[1].(ed25519.PublicKey),
			Data: Data{
				Name:                 values[2].(string),
				Symbol:               values[3].(string),
				URI:                  values[4].(string),
				SellerFeeBasisPoints: values[5].(uint16),
			},
			PrimarySaleHappened: values[8].(bool),
			IsMutable:           values[9].(bool),
		}
		if hasCreators := values[6].(bool); hasCreators {
			m.Data.Creators = values[7].([]Creator)
		}
		return m
	})
}

func TestMetadataAddresses(t *testing.T) {
	mint, err := base58.Decode("So11111111111111111111111111111111111111112")
	require.NoError(t, err)

	address, err := GetMetadataAddress(mint)
	require.NoError(t, err)
	assert.Equal(t, "6dM4TqWyWJsbx7obrdLcviBkTafD5E8av61zfU6jq57X", base58.Encode(address))

	edition, err := GetEditionAddress(mint)
	require.NoError(t, err)
	assert.Equal(t, "7r1W5yu5i7ev1wPNGsNuRLcdKW1sCy2x4rwyQkdi9ew2", base58.Encode(edition))

	uncached, err := solana.FindProgramAddress(ProgramKey, []byte(Prefix), ProgramKey, mint)
	require.NoError(t, err)
	assert.EqualValues(t, uncached, address)

	again, err := GetMetadataAddress(mint)
	require.NoError(t, err)
	assert.Equal(t, address, again)
}

func TestProgramKey(t *testing.T) {
	assert.Equal(t, "metaqbxxUerdq28cj1RbAWkYQm3ybzjb6a8bt518x1s", base58.Encode(ProgramKey))
}

func TestClient_GetMetadata(t *testing.T) {
	ctx := context.Background()
	ledger := testutil.NewLedger()
	client := NewClient(ledger, solana.CommitmentConfirmed)

	updateAuthority := testutil.GenerateSolanaKey(t)
	mint := testutil.GenerateSolanaKey(t)
	address, err := GetMetadataAddress(mint)
	require.NoError(t, err)

	ledger.SetAccount(address, solana.AccountInfo{
		Owner: ProgramKey,
		Data:  metadataLayout(updateAuthority, mint, paddedString("Foo", 32), nil, true),
	})

	a, err := client.GetMetadata(ctx, address)
	require.NoError(t, err)
	assert.Equal(t, "Foo", a.Metadata.Data.Name)

	byMint, err := client.GetMetadataByMint(ctx, mint)
	require.NoError(t, err)
	assert.Equal(t, a.Metadata, byMint.Metadata)

	_, err = client.GetMetadataByMint(ctx, testutil.GenerateSolanaKey(t))
	assert.True(t, errors.Is(err, account.ErrAccountNotFound))

	byAuthority, err := client.GetMetadataByUpdateAuthority(ctx, updateAuthority)
	require.NoError(t, err)
	require.Len(t, byAuthority, 1)
	assert.EqualValues(t, address, byAuthority[0].Address)

	byAuthority, err = client.GetMetadataByUpdateAuthority(ctx, testutil.GenerateSolanaKey(t))
	require.NoError(t, err)
	assert.Empty(t, byAuthority)

	byMintFilter, err := client.GetMetadataByMintFilter(ctx, mint)
	require.NoError(t, err)
	require.Len(t, byMintFilter, 1)
	assert.EqualValues(t, address, byMintFilter[0].Address)
}

func TestClient_GetMetadata_FetchError(t *testing.T) {
	ledger := testutil.NewLedger()
	fetchErr := errors.New("unavailable")
	ledger.SetError(fetchErr)

	_, err := NewClient(ledger, solana.CommitmentConfirmed).GetMetadata(context.Background(), testutil.GenerateSolanaKey(t))
	assert.True(t, errors.Is(err, fetchErr))
	assert.Equal(t, 1, ledger.Calls("GetAccountInfo"))
}
