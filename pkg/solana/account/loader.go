package account

import (
	"context"
	"crypto/ed25519"
	"time"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/code-payments/metaplex-go/pkg/metrics"
	"github.com/code-payments/metaplex-go/pkg/solana"
)

const (
	metricsStructName = "account"

	// Upper bound on concurrent batch fetches issued by LoadMany.
	maxConcurrentLoads = 16
)

// Fetcher is the subset of solana.Client needed to read accounts.
type Fetcher interface {
	GetAccountInfo(ed25519.PublicKey, solana.Commitment) (solana.AccountInfo, error)
	GetMultipleAccounts([]ed25519.PublicKey, solana.Commitment) ([]*solana.AccountInfo, error)
	GetProgramAccounts(program ed25519.PublicKey, commitment solana.Commitment, filters ...solana.MemcmpFilter) ([]solana.KeyedAccountInfo, error)
}

var log = logrus.StandardLogger().WithField("type", "solana/account")

// Load fetches the account at address and decodes it as kind.
//
// ErrAccountNotFound is returned when there is no account at the address.
// Other fetch errors are returned wrapped, and are never retried here.
func Load(ctx context.Context, fetcher Fetcher, kind Kind, address ed25519.PublicKey, commitment solana.Commitment) (*Account, error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "Load")
	tracer.AddAttribute("kind", kind.String())
	defer tracer.End()

	account, err := load(fetcher, kind, address, commitment)
	tracer.OnError(err, ErrAccountNotFound)
	return account, err
}

func load(fetcher Fetcher, kind Kind, address ed25519.PublicKey, commitment solana.Commitment) (*Account, error) {
	info, err := fetcher.GetAccountInfo(address, commitment)
	if err == solana.ErrNoAccountInfo {
		return nil, errors.Wrapf(ErrAccountNotFound, "%s at %s", kind, base58.Encode(address))
	} else if err != nil {
		return nil, errors.Wrapf(err, "failed to get account info for %s", base58.Encode(address))
	}

	return New(kind, address, info)
}

// LoadMany loads every address as kind. Results are in the order of addresses.
//
// Addresses are fetched in batches of at most solana.MaxMultipleAccounts, with
// up to maxConcurrentLoads batches in flight. The first failure cancels the
// remaining batches and is returned.
func LoadMany(ctx context.Context, fetcher Fetcher, kind Kind, addresses []ed25519.PublicKey, commitment solana.Commitment) ([]*Account, error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "LoadMany")
	tracer.AddAttributes(map[string]interface{}{
		"kind":  kind.String(),
		"count": len(addresses),
	})
	defer tracer.End()

	start := time.Now()
	defer func() {
		metrics.RecordDuration(ctx, "account.LoadMany.duration", time.Since(start))
	}()

	accounts := make([]*Account, len(addresses))

	g, groupCtx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentLoads)
	for offset := 0; offset < len(addresses); offset += solana.MaxMultipleAccounts {
		batch := addresses[offset:min(offset+solana.MaxMultipleAccounts, len(addresses))]
		results := accounts[offset : offset+len(batch)]
		g.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			return loadBatch(fetcher, kind, batch, commitment, results)
		})
	}

	if err := g.Wait(); err != nil {
		tracer.OnError(err, ErrAccountNotFound)
		return nil, err
	}
	return accounts, nil
}

// loadBatch decodes the accounts at addresses into results, which must have
// the same length.
func loadBatch(fetcher Fetcher, kind Kind, addresses []ed25519.PublicKey, commitment solana.Commitment, results []*Account) error {
	infos, err := fetcher.GetMultipleAccounts(addresses, commitment)
	if err != nil {
		return errors.Wrapf(err, "failed to get %d accounts", len(addresses))
	}
	if len(infos) != len(addresses) {
		return errors.Wrapf(solana.ErrInvalidRPCResult, "expected %d accounts, got %d", len(addresses), len(infos))
	}

	for i, info := range infos {
		if info == nil {
			return errors.Wrapf(ErrAccountNotFound, "%s at %s", kind, base58.Encode(addresses[i]))
		}

		account, err := New(kind, addresses[i], *info)
		if err != nil {
			return err
		}
		results[i] = account
	}
	return nil
}

// LoadByFilter returns every account of kind matching all of the provided
// filters.
//
// One query is issued per discriminator of the kind, each with a filter on the
// discriminator at offset 0 ahead of the provided filters, so the ledger only
// returns candidates of the kind. Results are grouped by discriminator in
// ascending order. Every returned account is decoded with New, and any account
// that fails to decode fails the whole query.
func LoadByFilter(ctx context.Context, fetcher Fetcher, kind Kind, commitment solana.Commitment, filters ...solana.MemcmpFilter) ([]*Account, error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "LoadByFilter")
	tracer.AddAttributes(map[string]interface{}{
		"kind":    kind.String(),
		"filters": len(filters),
	})
	defer tracer.End()

	start := time.Now()
	accounts, err := loadByFilter(fetcher, kind, commitment, filters)
	metrics.RecordDuration(ctx, "account.LoadByFilter.duration", time.Since(start))

	tracer.OnError(err)
	if err == nil {
		metrics.RecordCount(ctx, "account.LoadByFilter.results", uint64(len(accounts)))
	}
	return accounts, err
}

func loadByFilter(fetcher Fetcher, kind Kind, commitment solana.Commitment, filters []solana.MemcmpFilter) ([]*Account, error) {
	capability, err := GetCapability(kind)
	if err != nil {
		return nil, errors.Wrap(err, kind.String())
	}

	var accounts []*Account
	for _, discriminator := range capability.Discriminators() {
		query := append([]solana.MemcmpFilter{{Offset: 0, Bytes: []byte{discriminator}}}, filters...)

		results, err := fetcher.GetProgramAccounts(capability.Program, commitment, query...)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to get %s program accounts", kind)
		}

		for _, result := range results {
			account, err := New(kind, result.Address, result.Info)
			if err != nil {
				log.WithError(err).WithFields(logrus.Fields{
					"kind":    kind.String(),
					"address": base58.Encode(result.Address),
				}).Warn("filtered account failed to decode")
				return nil, err
			}
			accounts = append(accounts, account)
		}
	}

	if accounts == nil {
		accounts = []*Account{}
	}
	return accounts, nil
}
