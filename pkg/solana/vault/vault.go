package vault

import (
	"crypto/ed25519"

	"github.com/code-payments/metaplex-go/pkg/solana"
	"github.com/code-payments/metaplex-go/pkg/solana/account"
	"github.com/code-payments/metaplex-go/pkg/solana/borsh"
)

var vaultSchema = borsh.MustDefineSchema(
	"vault",
	[]borsh.Field{
		{Name: "key", Encoding: borsh.U8()},
		{Name: "tokenProgram", Encoding: borsh.PublicKey()},
		{Name: "fractionMint", Encoding: borsh.PublicKey()},
		{Name: "authority", Encoding: borsh.PublicKey()},
		{Name: "fractionTreasury", Encoding: borsh.PublicKey()},
		{Name: "redeemTreasury", Encoding: borsh.PublicKey()},
		{Name: "allowFurtherShareCreation", Encoding: borsh.U8()},
		{Name: "pricingLookupAddress", Encoding: borsh.PublicKey()},
		{Name: "tokenTypeCount", Encoding: borsh.U8()},
		{Name: "state", Encoding: borsh.U8()},
		{Name: "lockedPricePerShare", Encoding: borsh.U64()},
	},
	nil,
	"",
)

type State uint8

const (
	StateInactive State = iota
	StateActive
	StateCombined
	StateDeactivated
)

func (s State) String() string {
	switch s {
	case StateInactive:
		return "inactive"
	case StateActive:
		return "active"
	case StateCombined:
		return "combined"
	case StateDeactivated:
		return "deactivated"
	}
	return "unknown"
}

type Vault struct {
	Key              Key
	TokenProgram     ed25519.PublicKey
	FractionMint     ed25519.PublicKey
	Authority        ed25519.PublicKey
	FractionTreasury ed25519.PublicKey
	RedeemTreasury   ed25519.PublicKey

	AllowFurtherShareCreation bool

	// PricingLookupAddress is the external price account used when the vault
	// is combined.
	PricingLookupAddress ed25519.PublicKey
	TokenTypeCount       uint8
	State                State
	LockedPricePerShare  uint64
}

type VaultAccount struct {
	*account.Account
	Vault Vault
}

func NewVaultAccount(address ed25519.PublicKey, info solana.AccountInfo) (*VaultAccount, error) {
	a, err := account.New(account.KindVault, address, info)
	if err != nil {
		return nil, err
	}
	return vaultAccountFrom(a), nil
}

func vaultAccountFrom(a *account.Account) *VaultAccount {
	r := a.Record
	return &VaultAccount{
		Account: a,
		Vault: Vault{
			Key:                       Key(r.Uint8("key")),
			TokenProgram:              r.PublicKey("tokenProgram"),
			FractionMint:              r.PublicKey("fractionMint"),
			Authority:                 r.PublicKey("authority"),
			FractionTreasury:          r.PublicKey("fractionTreasury"),
			RedeemTreasury:            r.PublicKey("redeemTreasury"),
			AllowFurtherShareCreation: r.Bool("allowFurtherShareCreation"),
			PricingLookupAddress:      r.PublicKey("pricingLookupAddress"),
			TokenTypeCount:            r.Uint8("tokenTypeCount"),
			State:                     State(r.Uint8("state")),
			LockedPricePerShare:       r.Uint64("lockedPricePerShare"),
		},
	}
}

func IsVault(data []byte) bool {
	return account.IsRecognized(account.KindVault, data)
}

func (v *Vault) Marshal() ([]byte, error) {
	return borsh.Encode(vaultSchema, borsh.Record{
		"key":                       uint8(v.Key),
		"tokenProgram":              v.TokenProgram,
		"fractionMint":              v.FractionMint,
		"authority":                 v.Authority,
		"fractionTreasury":          v.FractionTreasury,
		"redeemTreasury":            v.RedeemTreasury,
		"allowFurtherShareCreation": v.AllowFurtherShareCreation,
		"pricingLookupAddress":      v.PricingLookupAddress,
		"tokenTypeCount":            v.TokenTypeCount,
		"state":                     uint8(v.State),
		"lockedPricePerShare":       v.LockedPricePerShare,
	})
}
