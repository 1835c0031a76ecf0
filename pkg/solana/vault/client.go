package vault

import (
	"context"
	"crypto/ed25519"
	"sort"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/metaplex-go/pkg/metrics"
	"github.com/code-payments/metaplex-go/pkg/solana"
	"github.com/code-payments/metaplex-go/pkg/solana/account"
)

const metricsStructName = "vault.client"

// Client provides utilities for reading token vault program accounts.
type Client struct {
	log        *logrus.Entry
	fetcher    account.Fetcher
	commitment solana.Commitment
}

func NewClient(fetcher account.Fetcher, commitment solana.Commitment) *Client {
	return &Client{
		log:        logrus.StandardLogger().WithField("type", "vault/client"),
		fetcher:    fetcher,
		commitment: commitment,
	}
}

func (c *Client) GetSafetyDepositBox(ctx context.Context, address ed25519.PublicKey) (*SafetyDepositBoxAccount, error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "GetSafetyDepositBox")
	defer tracer.End()

	a, err := account.Load(ctx, c.fetcher, account.KindSafetyDepositBox, address, c.commitment)
	if err != nil {
		tracer.OnError(err, account.ErrAccountNotFound)
		return nil, err
	}
	return safetyDepositBoxAccountFrom(a), nil
}

// GetSafetyDepositBoxForMint returns the box holding mint in vault.
func (c *Client) GetSafetyDepositBoxForMint(ctx context.Context, vault, mint ed25519.PublicKey) (*SafetyDepositBoxAccount, error) {
	address, err := GetSafetyDepositBoxAddress(vault, mint)
	if err != nil {
		return nil, errors.Wrap(err, "failed to derive safety deposit box address")
	}
	return c.GetSafetyDepositBox(ctx, address)
}

func (c *Client) GetVault(ctx context.Context, address ed25519.PublicKey) (*VaultAccount, error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "GetVault")
	defer tracer.End()

	a, err := account.Load(ctx, c.fetcher, account.KindVault, address, c.commitment)
	if err != nil {
		tracer.OnError(err, account.ErrAccountNotFound)
		return nil, err
	}
	return vaultAccountFrom(a), nil
}

// GetSafetyDepositBoxes returns every box of vault, ordered by their Order.
func (c *Client) GetSafetyDepositBoxes(ctx context.Context, vault ed25519.PublicKey) ([]*SafetyDepositBoxAccount, error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "GetSafetyDepositBoxes")
	defer tracer.End()

	accounts, err := account.LoadByFilter(ctx, c.fetcher, account.KindSafetyDepositBox, c.commitment, solana.MemcmpFilter{
		Offset: safetyDepositBoxVaultOffset,
		Bytes:  vault,
	})
	if err != nil {
		tracer.OnError(err)
		return nil, err
	}

	boxes := make([]*SafetyDepositBoxAccount, len(accounts))
	for i, a := range accounts {
		boxes[i] = safetyDepositBoxAccountFrom(a)
	}
	sort.SliceStable(boxes, func(i, j int) bool {
		return boxes[i].SafetyDepositBox.Order < boxes[j].SafetyDepositBox.Order
	})

	c.log.WithField("boxes", len(boxes)).Trace("loaded safety deposit boxes")
	return boxes, nil
}
