package metadata

import (
	"crypto/ed25519"

	"github.com/code-payments/metaplex-go/pkg/solana"
	"github.com/code-payments/metaplex-go/pkg/solana/account"
	"github.com/code-payments/metaplex-go/pkg/solana/borsh"
)

// Names, symbols and URIs are stored in fixed capacity, null padded strings.
// Every null is dropped, not just the padding.
var dataTransform = borsh.RegisterTransform("metadata.data", func(r borsh.Record) borsh.Record {
	for _, field := range []string{"name", "symbol", "uri"} {
		r[field] = borsh.StripNulls(r.String(field))
	}
	return r
})

var (
	creatorSchema = borsh.MustDefineSchema(
		"creator",
		[]borsh.Field{
			{Name: "address", Encoding: borsh.PublicKey()},
			{Name: "verified", Encoding: borsh.U8()},
			{Name: "share", Encoding: borsh.U8()},
		},
		nil,
		"",
	)

	dataSchema = borsh.MustDefineSchema(
		"data",
		[]borsh.Field{
			{Name: "name", Encoding: borsh.String()},
			{Name: "symbol", Encoding: borsh.String()},
			{Name: "uri", Encoding: borsh.String()},
			{Name: "sellerFeeBasisPoints", Encoding: borsh.U16()},
			{Name: "creators", Encoding: borsh.Option(borsh.Vec(borsh.Struct("creator")))},
		},
		[]*borsh.Schema{creatorSchema},
		dataTransform,
	)

	metadataSchema = borsh.MustDefineSchema(
		"metadata",
		[]borsh.Field{
			{Name: "key", Encoding: borsh.U8()},
			{Name: "updateAuthority", Encoding: borsh.PublicKey()},
			{Name: "mint", Encoding: borsh.PublicKey()},
			{Name: "data", Encoding: borsh.Struct("data")},
			{Name: "primarySaleHappened", Encoding: borsh.U8()},
			{Name: "isMutable", Encoding: borsh.U8()},
		},
		[]*borsh.Schema{dataSchema},
		"",
	)
)

// Offsets of fixed position fields, used for server side filtering.
const (
	updateAuthorityOffset = 1
	mintOffset            = updateAuthorityOffset + ed25519.PublicKeySize
)

type Creator struct {
	Address  ed25519.PublicKey
	Verified bool
	Share    uint8
}

type Data struct {
	Name                 string
	Symbol               string
	URI                  string
	SellerFeeBasisPoints uint16

	// Creators is nil when the account has no creator list, and empty when
	// the list is present but has no entries.
	Creators []Creator
}

type Metadata struct {
	Key                 Key
	UpdateAuthority     ed25519.PublicKey
	Mint                ed25519.PublicKey
	Data                Data
	PrimarySaleHappened bool
	IsMutable           bool
}

// MetadataAccount is a metadata account along with its decoded contents.
type MetadataAccount struct {
	*account.Account
	Metadata Metadata
}

// NewMetadataAccount decodes info as a metadata account.
func NewMetadataAccount(address ed25519.PublicKey, info solana.AccountInfo) (*MetadataAccount, error) {
	a, err := account.New(account.KindMetadata, address, info)
	if err != nil {
		return nil, err
	}
	return metadataAccountFrom(a), nil
}

func metadataAccountFrom(a *account.Account) *MetadataAccount {
	var m Metadata
	m.fromRecord(a.Record)
	return &MetadataAccount{Account: a, Metadata: m}
}

// IsMetadata reports whether data carries the metadata discriminator.
func IsMetadata(data []byte) bool {
	return account.IsRecognized(account.KindMetadata, data)
}

func (m *Metadata) fromRecord(r borsh.Record) {
	m.Key = Key(r.Uint8("key"))
	m.UpdateAuthority = r.PublicKey("updateAuthority")
	m.Mint = r.PublicKey("mint")
	m.PrimarySaleHappened = r.Bool("primarySaleHappened")
	m.IsMutable = r.Bool("isMutable")

	data := r.Record("data")
	m.Data = Data{
		Name:                 data.String("name"),
		Symbol:               data.String("symbol"),
		URI:                  data.String("uri"),
		SellerFeeBasisPoints: data.Uint16("sellerFeeBasisPoints"),
	}
	if data.Has("creators") {
		creators := data.Records("creators")
		m.Data.Creators = make([]Creator, len(creators))
		for i, c := range creators {
			m.Data.Creators[i] = Creator{
				Address:  c.PublicKey("address"),
				Verified: c.Bool("verified"),
				Share:    c.Uint8("share"),
			}
		}
	}
}

func (m *Metadata) toRecord() borsh.Record {
	var creators interface{}
	if m.Data.Creators != nil {
		values := make([]interface{}, len(m.Data.Creators))
		for i, c := range m.Data.Creators {
			values[i] = borsh.Record{
				"address":  c.Address,
				"verified": c.Verified,
				"share":    c.Share,
			}
		}
		creators = values
	}

	return borsh.Record{
		"key":             uint8(m.Key),
		"updateAuthority": m.UpdateAuthority,
		"mint":            m.Mint,
		"data": borsh.Record{
			"name":                 m.Data.Name,
			"symbol":               m.Data.Symbol,
			"uri":                  m.Data.URI,
			"sellerFeeBasisPoints": m.Data.SellerFeeBasisPoints,
			"creators":             creators,
		},
		"primarySaleHappened": m.PrimarySaleHappened,
		"isMutable":           m.IsMutable,
	}
}

// Marshal encodes the metadata in its on-chain layout.
func (m *Metadata) Marshal() ([]byte, error) {
	return borsh.Encode(metadataSchema, m.toRecord())
}
