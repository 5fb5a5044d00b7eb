// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

// Package verify checks whether a public key is registered on an account.
package verify

import (
	"context"
	"errors"
	"fmt"

	"github.com/near-go/nearcli/internal/keys"
	"github.com/near-go/nearcli/internal/near"
	"github.com/near-go/nearcli/internal/rpc"
	"github.com/near-go/nearcli/internal/util"
)

// ErrNotFound means the account does not exist or does not list the key.
var ErrNotFound = errors.New("access key not found on account")

// Kind classifies a verification failure.
type Kind int

const (
	// NotFound is a definitive negative answer from the ledger.
	NotFound Kind = iota + 1
	// Transport means the ledger could not be asked.
	Transport
)

func (k Kind) String() string {
	switch k {
	case NotFound:
		return "not found"
	case Transport:
		return "transport"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Error is returned by Verify for any outcome other than success.
type Error struct {
	Kind      Kind
	AccountID near.AccountID
	Err       error
}

func (e *Error) Error() string {
	if e.Kind == NotFound {
		return fmt.Sprintf("account %s does not have the access key: %v", e.AccountID, e.Err)
	}
	return fmt.Sprintf("could not verify account %s: %v", e.AccountID, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// IsNotFound reports whether err is a definitive not-found result.
func IsNotFound(err error) bool {
	var ve *Error
	return errors.As(err, &ve) && ve.Kind == NotFound
}

// Querier runs ledger view queries. *rpc.Client satisfies it.
type Querier interface {
	Query(ctx context.Context, block rpc.BlockReference, q rpc.QueryRequest) (*rpc.QueryResponse, error)
}

// Dialer returns a Querier for a network's RPC endpoint.
type Dialer func(network near.NetworkConfig) Querier

// DialRPC is the default Dialer.
func DialRPC(network near.NetworkConfig) Querier {
	return rpc.NewClient(network.RPCURL())
}

// Verifier checks key registration against the ledger.
type Verifier struct {
	dial Dialer
}

// New returns a Verifier. A nil dial uses DialRPC.
func New(dial Dialer) *Verifier {
	if dial == nil {
		dial = DialRPC
	}
	return &Verifier{dial: dial}
}

// Verify returns nil if publicKey is one of accountID's access keys at
// final finality. It does not retry.
func (v *Verifier) Verify(ctx context.Context, accountID near.AccountID, publicKey keys.PublicKey, network near.NetworkConfig) error {
	q := v.dial(network)
	util.Debug("verifying access key", "account", accountID, "public_key", publicKey.String(), "network", network.Name())

	resp, err := q.Query(ctx, rpc.FinalityFinal, rpc.ViewAccessKeyList(accountID))
	if err != nil {
		if errors.Is(err, rpc.ErrUnknownAccount) {
			return &Error{Kind: NotFound, AccountID: accountID, Err: fmt.Errorf("%w: account does not exist", ErrNotFound)}
		}
		return &Error{Kind: Transport, AccountID: accountID, Err: err}
	}

	list, err := resp.AccessKeyList()
	if err != nil {
		return &Error{Kind: Transport, AccountID: accountID, Err: err}
	}
	if !list.Contains(publicKey.String()) {
		return &Error{Kind: NotFound, AccountID: accountID, Err: ErrNotFound}
	}
	return nil
}

// Lookup fetches the access key publicKey holds on accountID at final
// finality. A missing account or key is a NotFound *Error.
func (v *Verifier) Lookup(ctx context.Context, accountID near.AccountID, publicKey keys.PublicKey, network near.NetworkConfig) (*rpc.AccessKeyView, error) {
	q := v.dial(network)
	util.Debug("looking up access key", "account", accountID, "public_key", publicKey.String(), "network", network.Name())

	resp, err := q.Query(ctx, rpc.FinalityFinal, rpc.ViewAccessKey(accountID, publicKey.String()))
	if err != nil {
		if errors.Is(err, rpc.ErrUnknownAccount) || errors.Is(err, rpc.ErrUnknownAccessKey) {
			return nil, &Error{Kind: NotFound, AccountID: accountID, Err: fmt.Errorf("%w: %v", ErrNotFound, err)}
		}
		return nil, &Error{Kind: Transport, AccountID: accountID, Err: err}
	}

	key, err := resp.AccessKey()
	if err != nil {
		return nil, &Error{Kind: Transport, AccountID: accountID, Err: err}
	}
	return key, nil
}
