package metadata

import (
	"context"
	"crypto/ed25519"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/metaplex-go/pkg/metrics"
	"github.com/code-payments/metaplex-go/pkg/solana"
	"github.com/code-payments/metaplex-go/pkg/solana/account"
)

const metricsStructName = "metadata.client"

// Client provides utilities for reading metadata program accounts.
type Client struct {
	log        *logrus.Entry
	fetcher    account.Fetcher
	commitment solana.Commitment
}

// NewClient creates a new Client.
func NewClient(fetcher account.Fetcher, commitment solana.Commitment) *Client {
	return &Client{
		log:        logrus.StandardLogger().WithField("type", "metadata/client"),
		fetcher:    fetcher,
		commitment: commitment,
	}
}

// GetMetadata returns the metadata account at address.
func (c *Client) GetMetadata(ctx context.Context, address ed25519.PublicKey) (*MetadataAccount, error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "GetMetadata")
	defer tracer.End()

	a, err := account.Load(ctx, c.fetcher, account.KindMetadata, address, c.commitment)
	if err != nil {
		tracer.OnError(err, account.ErrAccountNotFound)
		return nil, err
	}
	return metadataAccountFrom(a), nil
}

// GetMetadataByMint returns the metadata account of mint.
func (c *Client) GetMetadataByMint(ctx context.Context, mint ed25519.PublicKey) (*MetadataAccount, error) {
	address, err := GetMetadataAddress(mint)
	if err != nil {
		return nil, errors.Wrap(err, "failed to derive metadata address")
	}
	return c.GetMetadata(ctx, address)
}

// GetEdition returns the edition or master edition of mint.
//
// account.ErrAccountNotFound is returned when the mint has no edition, and
// account.ErrInvalidAccountData when the account at the edition address is
// neither an edition nor a master edition.
func (c *Client) GetEdition(ctx context.Context, mint ed25519.PublicKey) (*EditionLookup, error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "GetEdition")
	defer tracer.End()

	lookup, err := c.getEdition(mint)
	if err != nil {
		tracer.OnError(err, account.ErrAccountNotFound)
		return nil, err
	}
	return lookup, nil
}

func (c *Client) getEdition(mint ed25519.PublicKey) (*EditionLookup, error) {
	address, err := GetEditionAddress(mint)
	if err != nil {
		return nil, errors.Wrap(err, "failed to derive edition address")
	}

	info, err := c.fetcher.GetAccountInfo(address, c.commitment)
	if err == solana.ErrNoAccountInfo {
		return nil, errors.Wrapf(account.ErrAccountNotFound, "edition of %s", base58.Encode(mint))
	} else if err != nil {
		return nil, errors.Wrap(err, "failed to get edition account info")
	}

	switch {
	case IsEdition(info.Data):
		edition, err := NewEditionAccount(address, info)
		if err != nil {
			return nil, err
		}
		return &EditionLookup{Edition: edition}, nil
	case IsMasterEdition(info.Data):
		masterEdition, err := NewMasterEditionAccount(address, info)
		if err != nil {
			return nil, err
		}
		return &EditionLookup{MasterEdition: masterEdition}, nil
	default:
		c.log.WithFields(logrus.Fields{
			"mint":    base58.Encode(mint),
			"address": base58.Encode(address),
		}).Debug("edition address holds an unexpected account")
		return nil, errors.Wrapf(account.ErrInvalidAccountData, "edition of %s", base58.Encode(mint))
	}
}

// GetEditionForMetadata returns the edition or master edition of the
// metadata's mint.
func (c *Client) GetEditionForMetadata(ctx context.Context, m *MetadataAccount) (*EditionLookup, error) {
	return c.GetEdition(ctx, m.Metadata.Mint)
}

// GetMetadataByUpdateAuthority returns every metadata account whose update
// authority is authority.
func (c *Client) GetMetadataByUpdateAuthority(ctx context.Context, authority ed25519.PublicKey) ([]*MetadataAccount, error) {
	return c.getMetadataByFilter(ctx, "GetMetadataByUpdateAuthority", solana.MemcmpFilter{
		Offset: updateAuthorityOffset,
		Bytes:  authority,
	})
}

// GetMetadataByMintFilter returns the metadata accounts that reference mint,
// found by scanning program accounts rather than deriving the address.
func (c *Client) GetMetadataByMintFilter(ctx context.Context, mint ed25519.PublicKey) ([]*MetadataAccount, error) {
	return c.getMetadataByFilter(ctx, "GetMetadataByMintFilter", solana.MemcmpFilter{
		Offset: mintOffset,
		Bytes:  mint,
	})
}

func (c *Client) getMetadataByFilter(ctx context.Context, method string, filter solana.MemcmpFilter) ([]*MetadataAccount, error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, method)
	defer tracer.End()

	accounts, err := account.LoadByFilter(ctx, c.fetcher, account.KindMetadata, c.commitment, filter)
	if err != nil {
		tracer.OnError(err)
		return nil, err
	}

	res := make([]*MetadataAccount, len(accounts))
	for i, a := range accounts {
		res[i] = metadataAccountFrom(a)
	}
	return res, nil
}
