package nftpacks

import (
	"context"
	"crypto/ed25519"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/metaplex-go/pkg/metrics"
	"github.com/code-payments/metaplex-go/pkg/solana"
	"github.com/code-payments/metaplex-go/pkg/solana/account"
)

const metricsStructName = "nftpacks.client"

// Client provides utilities for reading NFT pack program accounts.
type Client struct {
	log        *logrus.Entry
	fetcher    account.Fetcher
	commitment solana.Commitment
}

func NewClient(fetcher account.Fetcher, commitment solana.Commitment) *Client {
	return &Client{
		log:        logrus.StandardLogger().WithField("type", "nftpacks/client"),
		fetcher:    fetcher,
		commitment: commitment,
	}
}

func (c *Client) GetPackSet(ctx context.Context, address ed25519.PublicKey) (*PackSetAccount, error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "GetPackSet")
	defer tracer.End()

	a, err := account.Load(ctx, c.fetcher, account.KindPackSet, address, c.commitment)
	if err != nil {
		tracer.OnError(err, account.ErrAccountNotFound)
		return nil, err
	}
	return packSetAccountFrom(a), nil
}

func (c *Client) GetPackCard(ctx context.Context, address ed25519.PublicKey) (*PackCardAccount, error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "GetPackCard")
	defer tracer.End()

	a, err := account.Load(ctx, c.fetcher, account.KindPackCard, address, c.commitment)
	if err != nil {
		tracer.OnError(err, account.ErrAccountNotFound)
		return nil, err
	}
	return packCardAccountFrom(a), nil
}

// GetPackCardByIndex returns the card at index within packSet.
func (c *Client) GetPackCardByIndex(ctx context.Context, packSet ed25519.PublicKey, index uint32) (*PackCardAccount, error) {
	address, err := GetPackCardAddress(packSet, index)
	if err != nil {
		return nil, errors.Wrap(err, "failed to derive pack card address")
	}
	return c.GetPackCard(ctx, address)
}

// GetPackCards returns every card that belongs to packSet. A card that fails
// to decode fails the whole query.
func (c *Client) GetPackCards(ctx context.Context, packSet ed25519.PublicKey) ([]*PackCardAccount, error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "GetPackCards")
	defer tracer.End()

	accounts, err := account.LoadByFilter(ctx, c.fetcher, account.KindPackCard, c.commitment, solana.MemcmpFilter{
		Offset: packCardPackSetOffset,
		Bytes:  packSet,
	})
	if err != nil {
		tracer.OnError(err)
		return nil, err
	}

	cards := make([]*PackCardAccount, len(accounts))
	for i, a := range accounts {
		cards[i] = packCardAccountFrom(a)
	}

	c.log.WithField("cards", len(cards)).Trace("loaded pack cards")
	return cards, nil
}
