package nftpacks

import (
	"crypto/ed25519"
	"strconv"

	"github.com/code-payments/metaplex-go/pkg/solana"
	"github.com/code-payments/metaplex-go/pkg/solana/account"
	"github.com/code-payments/metaplex-go/pkg/solana/borsh"
)

const packCardSeed = "card"

// Offset of the pack set a card belongs to.
const packCardPackSetOffset = 1

var packCardTransform = borsh.RegisterTransform("nftpacks.pack_card", func(r borsh.Record) borsh.Record {
	r["accountType"] = uint8(AccountTypePackCard)
	return r
})

var (
	distributionSchema = borsh.MustDefineSchema(
		"distribution",
		[]borsh.Field{
			{Name: "type", Encoding: borsh.U8()},
			{Name: "value", Encoding: borsh.U64()},
		},
		nil,
		"",
	)

	packCardSchema = borsh.MustDefineSchema(
		"pack_card",
		[]borsh.Field{
			{Name: "accountType", Encoding: borsh.U8()},
			{Name: "packSet", Encoding: borsh.PublicKey()},
			{Name: "master", Encoding: borsh.PublicKey()},
			{Name: "metadata", Encoding: borsh.PublicKey()},
			{Name: "tokenAccount", Encoding: borsh.PublicKey()},
			{Name: "maxSupply", Encoding: borsh.Option(borsh.U32())},
			{Name: "distribution", Encoding: borsh.Struct("distribution")},
			{Name: "currentSupply", Encoding: borsh.U32()},
		},
		[]*borsh.Schema{distributionSchema},
		packCardTransform,
	)
)

type DistributionType uint8

const (
	DistributionTypeFixedNumber DistributionType = iota
	DistributionTypeProbabilityBased
)

type Distribution struct {
	Type  DistributionType
	Value uint64
}

type PackCard struct {
	AccountType AccountType
	PackSet     ed25519.PublicKey

	// Master edition, and its metadata, of the card.
	Master   ed25519.PublicKey
	Metadata ed25519.PublicKey

	// Program token account holding the master edition token.
	TokenAccount ed25519.PublicKey

	// MaxSupply is nil when the card has no supply limit.
	MaxSupply     *uint32
	Distribution  Distribution
	CurrentSupply uint32
}

type PackCardAccount struct {
	*account.Account
	PackCard PackCard
}

func NewPackCardAccount(address ed25519.PublicKey, info solana.AccountInfo) (*PackCardAccount, error) {
	a, err := account.New(account.KindPackCard, address, info)
	if err != nil {
		return nil, err
	}
	return packCardAccountFrom(a), nil
}

func packCardAccountFrom(a *account.Account) *PackCardAccount {
	r := a.Record
	distribution := r.Record("distribution")
	return &PackCardAccount{
		Account: a,
		PackCard: PackCard{
			AccountType:  AccountType(r.Uint8("accountType")),
			PackSet:      r.PublicKey("packSet"),
			Master:       r.PublicKey("master"),
			Metadata:     r.PublicKey("metadata"),
			TokenAccount: r.PublicKey("tokenAccount"),
			MaxSupply:    r.OptionalUint32("maxSupply"),
			Distribution: Distribution{
				Type:  DistributionType(distribution.Uint8("type")),
				Value: distribution.Uint64("value"),
			},
			CurrentSupply: r.Uint32("currentSupply"),
		},
	}
}

func IsPackCard(data []byte) bool {
	return account.IsRecognized(account.KindPackCard, data)
}

func (p *PackCard) Marshal() ([]byte, error) {
	var maxSupply interface{}
	if p.MaxSupply != nil {
		maxSupply = *p.MaxSupply
	}

	return borsh.Encode(packCardSchema, borsh.Record{
		"accountType":  uint8(p.AccountType),
		"packSet":      p.PackSet,
		"master":       p.Master,
		"metadata":     p.Metadata,
		"tokenAccount": p.TokenAccount,
		"maxSupply":    maxSupply,
		"distribution": borsh.Record{
			"type":  uint8(p.Distribution.Type),
			"value": p.Distribution.Value,
		},
		"currentSupply": p.CurrentSupply,
	})
}

// GetPackCardAddress returns the address of the card at index within packSet.
// The index is used as a decimal string seed.
func GetPackCardAddress(packSet ed25519.PublicKey, index uint32) (ed25519.PublicKey, error) {
	return addressCache.FindProgramAddress(
		ProgramKey,
		[]byte(packCardSeed),
		packSet,
		[]byte(strconv.FormatUint(uint64(index), 10)),
	)
}
