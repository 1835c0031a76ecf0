package vault

import (
	"crypto/ed25519"

	"github.com/code-payments/metaplex-go/pkg/solana"
	"github.com/code-payments/metaplex-go/pkg/solana/account"
	"github.com/code-payments/metaplex-go/pkg/solana/borsh"
)

// Offset of the vault a box belongs to.
const safetyDepositBoxVaultOffset = 1

var safetyDepositBoxTransform = borsh.RegisterTransform("vault.safety_deposit_box", func(r borsh.Record) borsh.Record {
	r["key"] = uint8(KeySafetyDepositBoxV1)
	return r
})

var safetyDepositBoxSchema = borsh.MustDefineSchema(
	"safety_deposit_box",
	[]borsh.Field{
		{Name: "key", Encoding: borsh.U8()},
		{Name: "vault", Encoding: borsh.PublicKey()},
		{Name: "tokenMint", Encoding: borsh.PublicKey()},
		{Name: "store", Encoding: borsh.PublicKey()},
		{Name: "order", Encoding: borsh.U8()},
	},
	nil,
	safetyDepositBoxTransform,
)

// SafetyDepositBox holds one token type deposited in a vault.
type SafetyDepositBox struct {
	Key       Key
	Vault     ed25519.PublicKey
	TokenMint ed25519.PublicKey

	// Store is the token account holding the deposited tokens.
	Store ed25519.PublicKey

	// Order is the box's position among the vault's boxes.
	Order uint8
}

type SafetyDepositBoxAccount struct {
	*account.Account
	SafetyDepositBox SafetyDepositBox
}

func NewSafetyDepositBoxAccount(address ed25519.PublicKey, info solana.AccountInfo) (*SafetyDepositBoxAccount, error) {
	a, err := account.New(account.KindSafetyDepositBox, address, info)
	if err != nil {
		return nil, err
	}
	return safetyDepositBoxAccountFrom(a), nil
}

func safetyDepositBoxAccountFrom(a *account.Account) *SafetyDepositBoxAccount {
	r := a.Record
	return &SafetyDepositBoxAccount{
		Account: a,
		SafetyDepositBox: SafetyDepositBox{
			Key:       Key(r.Uint8("key")),
			Vault:     r.PublicKey("vault"),
			TokenMint: r.PublicKey("tokenMint"),
			Store:     r.PublicKey("store"),
			Order:     r.Uint8("order"),
		},
	}
}

func IsSafetyDepositBox(data []byte) bool {
	return account.IsRecognized(account.KindSafetyDepositBox, data)
}

func (b *SafetyDepositBox) Marshal() ([]byte, error) {
	return borsh.Encode(safetyDepositBoxSchema, borsh.Record{
		"key":       uint8(b.Key),
		"vault":     b.Vault,
		"tokenMint": b.TokenMint,
		"store":     b.Store,
		"order":     b.Order,
	})
}

// GetSafetyDepositBoxAddress returns the address of the box holding mint
// in vault.
func GetSafetyDepositBoxAddress(vault, mint ed25519.PublicKey) (ed25519.PublicKey, error) {
	return addressCache.FindProgramAddress(
		ProgramKey,
		[]byte(Prefix),
		vault,
		mint,
	)
}
