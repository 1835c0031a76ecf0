package nftpacks

import (
	"crypto/ed25519"

	"github.com/code-payments/metaplex-go/pkg/solana"
	"github.com/code-payments/metaplex-go/pkg/solana/account"
	"github.com/code-payments/metaplex-go/pkg/solana/borsh"
)

// Pack set names are stored in a fixed 32 byte array. The name ends at the
// first null, and anything after it is discarded.
const packSetNameSize = 32

var packSetTransform = borsh.RegisterTransform("nftpacks.pack_set", func(r borsh.Record) borsh.Record {
	switch name := r["name"].(type) {
	case []byte:
		r["name"] = borsh.TrimAfterNull(name)
	case string:
		r["name"] = borsh.TrimAfterNull([]byte(name))
	}
	r["accountType"] = uint8(AccountTypePackSet)
	return r
})

var packSetSchema = borsh.MustDefineSchema(
	"pack_set",
	[]borsh.Field{
		{Name: "accountType", Encoding: borsh.U8()},
		{Name: "name", Encoding: borsh.FixedBytes(packSetNameSize)},
		{Name: "authority", Encoding: borsh.PublicKey()},
		{Name: "mintingAuthority", Encoding: borsh.PublicKey()},
		{Name: "totalPacks", Encoding: borsh.U32()},
		{Name: "packCards", Encoding: borsh.U32()},
		{Name: "packVouchers", Encoding: borsh.U32()},
		{Name: "mutable", Encoding: borsh.U8()},
		{Name: "state", Encoding: borsh.U8()},
	},
	nil,
	packSetTransform,
)

type PackSetState uint8

const (
	PackSetStateNotActivated PackSetState = iota
	PackSetStateActivated
	PackSetStateDeactivated
)

func (s PackSetState) String() string {
	switch s {
	case PackSetStateNotActivated:
		return "not_activated"
	case PackSetStateActivated:
		return "activated"
	case PackSetStateDeactivated:
		return "deactivated"
	}
	return "unknown"
}

type PackSet struct {
	AccountType      AccountType
	Name             string
	Authority        ed25519.PublicKey
	MintingAuthority ed25519.PublicKey
	TotalPacks       uint32
	PackCards        uint32
	PackVouchers     uint32

	// Mutable allows the authority to make changes while deactivated.
	Mutable bool
	State   PackSetState
}

type PackSetAccount struct {
	*account.Account
	PackSet PackSet
}

func NewPackSetAccount(address ed25519.PublicKey, info solana.AccountInfo) (*PackSetAccount, error) {
	a, err := account.New(account.KindPackSet, address, info)
	if err != nil {
		return nil, err
	}
	return packSetAccountFrom(a), nil
}

func packSetAccountFrom(a *account.Account) *PackSetAccount {
	r := a.Record
	return &PackSetAccount{
		Account: a,
		PackSet: PackSet{
			AccountType:      AccountType(r.Uint8("accountType")),
			Name:             r.String("name"),
			Authority:        r.PublicKey("authority"),
			MintingAuthority: r.PublicKey("mintingAuthority"),
			TotalPacks:       r.Uint32("totalPacks"),
			PackCards:        r.Uint32("packCards"),
			PackVouchers:     r.Uint32("packVouchers"),
			Mutable:          r.Bool("mutable"),
			State:            PackSetState(r.Uint8("state")),
		},
	}
}

func IsPackSet(data []byte) bool {
	return account.IsRecognized(account.KindPackSet, data)
}

// Marshal encodes the pack set. Names longer than 32 bytes are truncated, so
// they do not survive a round trip.
func (p *PackSet) Marshal() ([]byte, error) {
	return borsh.Encode(packSetSchema, borsh.Record{
		"accountType":      uint8(p.AccountType),
		"name":             p.Name,
		"authority":        p.Authority,
		"mintingAuthority": p.MintingAuthority,
		"totalPacks":       p.TotalPacks,
		"packCards":        p.PackCards,
		"packVouchers":     p.PackVouchers,
		"mutable":          p.Mutable,
		"state":            uint8(p.State),
	})
}
