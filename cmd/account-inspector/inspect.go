package main

import (
	"context"
	"crypto/ed25519"
	"sort"
	"strconv"
	"strings"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"

	"github.com/code-payments/metaplex-go/pkg/solana"
	"github.com/code-payments/metaplex-go/pkg/solana/account"
	"github.com/code-payments/metaplex-go/pkg/solana/borsh"
	"github.com/code-payments/metaplex-go/pkg/solana/metadata"
	"github.com/code-payments/metaplex-go/pkg/solana/nftpacks"
	"github.com/code-payments/metaplex-go/pkg/solana/vault"
)

var errUsage = errors.New("invalid usage")

var kindsByName = map[string]account.Kind{
	account.KindMetadata.String():         account.KindMetadata,
	account.KindEdition.String():          account.KindEdition,
	account.KindMasterEdition.String():    account.KindMasterEdition,
	account.KindPackSet.String():          account.KindPackSet,
	account.KindPackCard.String():         account.KindPackCard,
	account.KindSafetyDepositBox.String(): account.KindSafetyDepositBox,
	account.KindVault.String():            account.KindVault,
}

// accountView is the printed form of a decoded account.
type accountView struct {
	Kind     string       `json:"kind"`
	Address  string       `json:"address"`
	Owner    string       `json:"owner"`
	Lamports uint64       `json:"lamports"`
	Size     int          `json:"size"`
	Record   borsh.Record `json:"record"`
}

func newAccountView(a *account.Account) accountView {
	return accountView{
		Kind:     a.Kind.String(),
		Address:  base58.Encode(a.Address),
		Owner:    base58.Encode(a.Owner),
		Lamports: a.Lamports,
		Size:     a.Size,
		Record:   a.Record,
	}
}

type inspector struct {
	fetcher    account.Fetcher
	commitment solana.Commitment

	metadata *metadata.Client
	packs    *nftpacks.Client
	vaults   *vault.Client
}

func newInspector(fetcher account.Fetcher, commitment solana.Commitment) *inspector {
	return &inspector{
		fetcher:    fetcher,
		commitment: commitment,
		metadata:   metadata.NewClient(fetcher, commitment),
		packs:      nftpacks.NewClient(fetcher, commitment),
		vaults:     vault.NewClient(fetcher, commitment),
	}
}

func usage() string {
	kinds := make([]string, 0, len(kindsByName))
	for name := range kindsByName {
		kinds = append(kinds, name)
	}
	sort.Strings(kinds)

	return strings.Join([]string{
		"account <kind> <address>   decode the account at address (kinds: " + strings.Join(kinds, ", ") + ")",
		"accounts <kind> <address>... decode several accounts of the same kind",
		"metadata <mint>             decode the metadata of mint",
		"edition <mint>              decode the edition or master edition of mint",
		"authority <address>         list metadata with the update authority",
		"pack-cards <pack set>       list the cards of a pack set",
		"boxes <vault>               list the safety deposit boxes of a vault",
		"address metadata|edition <mint>",
		"address pack-card <pack set> <index>",
		"address box <vault> <mint>",
	}, "\n")
}

// run executes a command and returns the value to print.
func (i *inspector) run(ctx context.Context, args []string) (interface{}, error) {
	if len(args) == 0 {
		return nil, errUsage
	}

	command, args := args[0], args[1:]
	switch command {
	case "account":
		if len(args) != 2 {
			return nil, errUsage
		}
		kind, err := parseKind(args[0])
		if err != nil {
			return nil, err
		}
		address, err := parseKey(args[1])
		if err != nil {
			return nil, err
		}

		a, err := account.Load(ctx, i.fetcher, kind, address, i.commitment)
		if err != nil {
			return nil, err
		}
		return newAccountView(a), nil
	case "accounts":
		if len(args) < 2 {
			return nil, errUsage
		}
		kind, err := parseKind(args[0])
		if err != nil {
			return nil, err
		}
		addresses, err := parseKeys(args[1:])
		if err != nil {
			return nil, err
		}

		accounts, err := account.LoadMany(ctx, i.fetcher, kind, addresses, i.commitment)
		if err != nil {
			return nil, err
		}
		return toViews(accounts), nil
	case "metadata":
		mint, err := singleKey(args)
		if err != nil {
			return nil, err
		}

		m, err := i.metadata.GetMetadataByMint(ctx, mint)
		if err != nil {
			return nil, err
		}
		return newAccountView(m.Account), nil
	case "edition":
		mint, err := singleKey(args)
		if err != nil {
			return nil, err
		}

		lookup, err := i.metadata.GetEdition(ctx, mint)
		if err != nil {
			return nil, err
		}
		if lookup.IsMasterEdition() {
			return newAccountView(lookup.MasterEdition.Account), nil
		}
		return newAccountView(lookup.Edition.Account), nil
	case "authority":
		authority, err := singleKey(args)
		if err != nil {
			return nil, err
		}

		found, err := i.metadata.GetMetadataByUpdateAuthority(ctx, authority)
		if err != nil {
			return nil, err
		}
		views := make([]accountView, len(found))
		for j, m := range found {
			views[j] = newAccountView(m.Account)
		}
		return views, nil
	case "pack-cards":
		packSet, err := singleKey(args)
		if err != nil {
			return nil, err
		}

		cards, err := i.packs.GetPackCards(ctx, packSet)
		if err != nil {
			return nil, err
		}
		views := make([]accountView, len(cards))
		for j, card := range cards {
			views[j] = newAccountView(card.Account)
		}
		return views, nil
	case "boxes":
		v, err := singleKey(args)
		if err != nil {
			return nil, err
		}

		boxes, err := i.vaults.GetSafetyDepositBoxes(ctx, v)
		if err != nil {
			return nil, err
		}
		views := make([]accountView, len(boxes))
		for j, box := range boxes {
			views[j] = newAccountView(box.Account)
		}
		return views, nil
	case "address":
		address, err := deriveAddress(args)
		if err != nil {
			return nil, err
		}
		return base58.Encode(address), nil
	default:
		return nil, errors.Wrapf(errUsage, "unknown command %q", command)
	}
}

func deriveAddress(args []string) (ed25519.PublicKey, error) {
	if len(args) < 2 {
		return nil, errUsage
	}

	keys := args[1:]
	switch args[0] {
	case "metadata", "edition":
		mint, err := singleKey(keys)
		if err != nil {
			return nil, err
		}
		if args[0] == "metadata" {
			return metadata.GetMetadataAddress(mint)
		}
		return metadata.GetEditionAddress(mint)
	case "pack-card":
		if len(keys) != 2 {
			return nil, errUsage
		}
		packSet, err := parseKey(keys[0])
		if err != nil {
			return nil, err
		}
		index, err := strconv.ParseUint(keys[1], 10, 32)
		if err != nil {
			return nil, errors.Wrapf(errUsage, "invalid index %q", keys[1])
		}
		return nftpacks.GetPackCardAddress(packSet, uint32(index))
	case "box":
		parsed, err := parseKeys(keys)
		if err != nil {
			return nil, err
		}
		if len(parsed) != 2 {
			return nil, errUsage
		}
		return vault.GetSafetyDepositBoxAddress(parsed[0], parsed[1])
	default:
		return nil, errors.Wrapf(errUsage, "unknown address type %q", args[0])
	}
}

func toViews(accounts []*account.Account) []accountView {
	views := make([]accountView, len(accounts))
	for i, a := range accounts {
		views[i] = newAccountView(a)
	}
	return views
}

func parseKind(name string) (account.Kind, error) {
	kind, ok := kindsByName[name]
	if !ok {
		return account.KindUnknown, errors.Wrapf(errUsage, "unknown kind %q", name)
	}
	return kind, nil
}

func parseKey(encoded string) (ed25519.PublicKey, error) {
	decoded, err := base58.Decode(encoded)
	if err != nil || len(decoded) != ed25519.PublicKeySize {
		return nil, errors.Wrapf(errUsage, "invalid public key %q", encoded)
	}
	return decoded, nil
}

func parseKeys(encoded []string) ([]ed25519.PublicKey, error) {
	keys := make([]ed25519.PublicKey, len(encoded))
	for i, e := range encoded {
		key, err := parseKey(e)
		if err != nil {
			return nil, err
		}
		keys[i] = key
	}
	return keys, nil
}

func singleKey(args []string) (ed25519.PublicKey, error) {
	if len(args) != 1 {
		return nil, errUsage
	}
	return parseKey(args[0])
}
