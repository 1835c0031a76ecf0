package solana

import (
	"context"
	"crypto/ed25519"
	"encoding/base64"
	"time"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/ybbus/jsonrpc"

	"github.com/code-payments/metaplex-go/pkg/config"
	"github.com/code-payments/metaplex-go/pkg/config/memory"
	"github.com/code-payments/metaplex-go/pkg/config/wrapper"
	"github.com/code-payments/metaplex-go/pkg/retry"
	"github.com/code-payments/metaplex-go/pkg/retry/backoff"
)

const (
	// Reference: https://github.com/solana-labs/solana/blob/71e9958e061493d7545bd28d4ac7a85aaed6ffbb/client/src/rpc_custom_error.rs#L11
	rpcNodeUnhealthyCode = -32005

	defaultMaxAttempts = 3
)

// MaxMultipleAccounts is the maximum number of addresses accepted by a single
// GetMultipleAccounts call.
const MaxMultipleAccounts = 100

type Commitment struct {
	Commitment string `json:"commitment"`
}

const (
	confirmationStatusProcessed = "processed"
	confirmationStatusConfirmed = "confirmed"
	confirmationStatusFinalized = "finalized"
)

var (
	CommitmentProcessed = Commitment{Commitment: confirmationStatusProcessed}
	CommitmentConfirmed = Commitment{Commitment: confirmationStatusConfirmed}
	CommitmentFinalized = Commitment{Commitment: confirmationStatusFinalized}
)

// ParseCommitment returns the commitment with the provided name.
func ParseCommitment(name string) (Commitment, error) {
	switch name {
	case confirmationStatusProcessed:
		return CommitmentProcessed, nil
	case confirmationStatusConfirmed:
		return CommitmentConfirmed, nil
	case confirmationStatusFinalized:
		return CommitmentFinalized, nil
	default:
		return Commitment{}, errors.Errorf("unknown commitment: %q", name)
	}
}

var (
	ErrNoAccountInfo    = errors.New("no account info")
	ErrTooManyAccounts  = errors.New("too many accounts requested")
	ErrInvalidRPCResult = errors.New("invalid rpc result")
)

// AccountInfo contains the Solana account information as fetched from the
// ledger. It is never mutated after it is returned; a newer read is a new
// AccountInfo.
type AccountInfo struct {
	Data       []byte
	Owner      ed25519.PublicKey
	Lamports   uint64
	Executable bool
}

// KeyedAccountInfo is an AccountInfo along with the address it was read from.
type KeyedAccountInfo struct {
	Address ed25519.PublicKey
	Info    AccountInfo
}

// MemcmpFilter matches accounts whose data contains Bytes at Offset.
type MemcmpFilter struct {
	Offset uint
	Bytes  []byte
}

// Client provides an interaction with the Solana JSON RPC API.
//
// Reference: https://docs.solana.com/apps/jsonrpc-api
type Client interface {
	GetAccountInfo(ed25519.PublicKey, Commitment) (AccountInfo, error)
	GetMultipleAccounts([]ed25519.PublicKey, Commitment) ([]*AccountInfo, error)
	GetProgramAccounts(program ed25519.PublicKey, commitment Commitment, filters ...MemcmpFilter) ([]KeyedAccountInfo, error)
}

var (
	errRateLimited  = errors.New("rate limited")
	errServiceError = errors.New("service error")
)

type rpcAccountInfo struct {
	Lamports   uint64   `json:"lamports"`
	Owner      string   `json:"owner"`
	Data       []string `json:"data"`
	Executable bool     `json:"executable"`
}

func (r *rpcAccountInfo) toAccountInfo() (info AccountInfo, err error) {
	info.Owner, err = base58.Decode(r.Owner)
	if err != nil {
		return info, errors.Wrap(err, "invalid base58 encoded owner")
	}
	if len(info.Owner) != ed25519.PublicKeySize {
		return info, errors.Wrapf(ErrInvalidRPCResult, "owner is %d bytes", len(info.Owner))
	}

	if len(r.Data) == 0 {
		return info, errors.Wrap(ErrInvalidRPCResult, "missing account data")
	}
	info.Data, err = base64.StdEncoding.DecodeString(r.Data[0])
	if err != nil {
		return info, errors.Wrap(err, "invalid base64 encoded data")
	}

	info.Lamports = r.Lamports
	info.Executable = r.Executable

	return info, nil
}

type client struct {
	log         *logrus.Entry
	client      jsonrpc.RPCClient
	maxAttempts config.Uint64
	retrier     retry.Retrier
}

// New returns a client using the specified endpoint.
func New(endpoint string) Client {
	return NewWithRPCOptions(endpoint, nil)
}

// NewWithRPCOptions returns a client configured with the specified RPC options.
func NewWithRPCOptions(endpoint string, opts *jsonrpc.RPCClientOpts) Client {
	return NewWithConfig(endpoint, opts, wrapper.NewUint64Config(memory.NewConfig(nil), defaultMaxAttempts))
}

// NewWithConfig returns a client whose retry limit for rate limited and
// unavailable nodes is read from maxAttempts on every call.
func NewWithConfig(endpoint string, opts *jsonrpc.RPCClientOpts, maxAttempts config.Uint64) Client {
	c := &client{
		log:         logrus.StandardLogger().WithField("type", "solana/client"),
		client:      jsonrpc.NewClientWithOpts(endpoint, opts),
		maxAttempts: maxAttempts,
	}

	c.retrier = retry.NewRetrier(
		retry.RetriableRPCErrors(c.isRetriable),
		c.limit,
		retry.BackoffWithJitter(backoff.BinaryExponential(time.Second), 10*time.Second, 0.1),
	)

	return c
}

func (c *client) limit(attempts uint, _ error) bool {
	maxAttempts := c.maxAttempts.Get(context.Background())
	if maxAttempts == 0 {
		maxAttempts = 1
	}
	return uint64(attempts) < maxAttempts
}

// isRetriable reports whether the node is rate limiting us or is temporarily
// unable to serve the request.
func (c *client) isRetriable(rpcErr *jsonrpc.RPCError) bool {
	switch {
	case rpcErr.Code == 429:
		c.log.WithField("message", rpcErr.Message).Debug("rate limited, retrying")
		return true
	case rpcErr.Code >= 500, rpcErr.Code == rpcNodeUnhealthyCode:
		return true
	default:
		return false
	}
}

func (c *client) call(out interface{}, method string, params ...interface{}) error {
	_, err := c.retrier.Retry(func() error {
		return c.client.CallFor(out, method, params...)
	})
	if err == nil {
		return nil
	}

	return c.handleRpcError(method, err)
}

func (c *client) handleRpcError(method string, err error) error {
	rpcErr, ok := err.(*jsonrpc.RPCError)
	if !ok {
		return err
	}
	if rpcErr.Code == 429 {
		c.log.WithField("method", method).Error("rate limited")
		return errRateLimited
	}
	if rpcErr.Code >= 500 || rpcErr.Code == rpcNodeUnhealthyCode {
		return errServiceError
	}

	return err
}

func (c *client) GetAccountInfo(account ed25519.PublicKey, commitment Commitment) (accountInfo AccountInfo, err error) {
	type rpcResponse struct {
		Value *rpcAccountInfo `json:"value"`
	}

	rpcConfig := struct {
		Commitment string `json:"commitment"`
		Encoding   string `json:"encoding"`
	}{
		Commitment: commitment.Commitment,
		Encoding:   "base64",
	}

	var resp rpcResponse
	if err := c.call(&resp, "getAccountInfo", base58.Encode(account[:]), rpcConfig); err != nil {
		return accountInfo, errors.Wrap(err, "getAccountInfo() failed to send request")
	}

	if resp.Value == nil {
		return accountInfo, ErrNoAccountInfo
	}

	return resp.Value.toAccountInfo()
}

// GetMultipleAccounts returns the account info for each address, in order. A
// nil entry indicates there is no account at that address.
func (c *client) GetMultipleAccounts(accounts []ed25519.PublicKey, commitment Commitment) ([]*AccountInfo, error) {
	if len(accounts) > MaxMultipleAccounts {
		return nil, ErrTooManyAccounts
	}

	type rpcResponse struct {
		Value []*rpcAccountInfo `json:"value"`
	}

	rpcConfig := struct {
		Commitment string `json:"commitment"`
		Encoding   string `json:"encoding"`
	}{
		Commitment: commitment.Commitment,
		Encoding:   "base64",
	}

	addresses := make([]string, len(accounts))
	for i, account := range accounts {
		addresses[i] = base58.Encode(account)
	}

	var resp rpcResponse
	if err := c.call(&resp, "getMultipleAccounts", addresses, rpcConfig); err != nil {
		return nil, errors.Wrap(err, "getMultipleAccounts() failed to send request")
	}

	if len(resp.Value) != len(accounts) {
		return nil, errors.Wrapf(ErrInvalidRPCResult, "expected %d accounts, got %d", len(accounts), len(resp.Value))
	}

	infos := make([]*AccountInfo, len(accounts))
	for i, value := range resp.Value {
		if value == nil {
			continue
		}

		info, err := value.toAccountInfo()
		if err != nil {
			return nil, errors.Wrapf(err, "invalid account info at index %d", i)
		}
		infos[i] = &info
	}

	return infos, nil
}

// GetProgramAccounts returns every account owned by program that matches all
// of the provided filters.
func (c *client) GetProgramAccounts(program ed25519.PublicKey, commitment Commitment, filters ...MemcmpFilter) ([]KeyedAccountInfo, error) {
	type memcmpFilter struct {
		Offset uint   `json:"offset"`
		Bytes  string `json:"bytes"`
	}

	type filter struct {
		Memcmp memcmpFilter `json:"memcmp"`
	}

	rpcConfig := struct {
		Commitment string   `json:"commitment"`
		Encoding   string   `json:"encoding"`
		Filters    []filter `json:"filters,omitempty"`
	}{
		Commitment: commitment.Commitment,
		Encoding:   "base64",
	}

	for _, f := range filters {
		rpcConfig.Filters = append(rpcConfig.Filters, filter{
			Memcmp: memcmpFilter{
				Offset: f.Offset,
				Bytes:  base58.Encode(f.Bytes),
			},
		})
	}

	var resp []struct {
		PubKey  string         `json:"pubkey"`
		Account rpcAccountInfo `json:"account"`
	}
	if err := c.call(&resp, "getProgramAccounts", base58.Encode(program), rpcConfig); err != nil {
		return nil, errors.Wrap(err, "getProgramAccounts() failed to send request")
	}

	res := make([]KeyedAccountInfo, 0, len(resp))
	for _, result := range resp {
		address, err := base58.Decode(result.PubKey)
		if err != nil {
			return nil, errors.Wrap(err, "invalid base58 encoded account address")
		}

		info, err := result.Account.toAccountInfo()
		if err != nil {
			return nil, errors.Wrapf(err, "invalid account info for %s", result.PubKey)
		}

		res = append(res, KeyedAccountInfo{
			Address: address,
			Info:    info,
		})
	}

	c.log.WithFields(logrus.Fields{
		"program": base58.Encode(program),
		"filters": len(filters),
		"results": len(res),
	}).Debug("fetched program accounts")

	return res, nil
}
