// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

// Package keystore persists access key credentials.
//
// Two backends are provided: FileStore writes plaintext JSON records in the
// layout the legacy CLI reads, and KeychainStore uses the operating
// system's keychain. Select picks between them.
package keystore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/near-go/nearcli/internal/keys"
	"github.com/near-go/nearcli/internal/near"
	"github.com/near-go/nearcli/internal/util"
)

// Common keystore errors
var (
	// ErrNotFound indicates no credential is stored for the account
	ErrNotFound = errors.New("credential not found")

	// ErrMismatchedKey indicates a stored record whose public key does not
	// belong to its private key
	ErrMismatchedKey = errors.New("stored public key does not match private key")
)

// Credential is one account's access key as persisted.
type Credential struct {
	Network   string
	AccountID near.AccountID
	PublicKey keys.PublicKey
	SecretKey keys.SecretKey
}

// record is the on-disk and in-keychain JSON form.
type record struct {
	AccountID  string `json:"account_id"`
	PublicKey  string `json:"public_key"`
	PrivateKey string `json:"private_key"`
}

func (c *Credential) marshal() ([]byte, error) {
	return json.MarshalIndent(record{
		AccountID:  c.AccountID.String(),
		PublicKey:  c.PublicKey.String(),
		PrivateKey: c.SecretKey.Encode(),
	}, "", "  ")
}

func unmarshalCredential(network string, data []byte) (*Credential, error) {
	var r record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("invalid credential record: %w", err)
	}
	accountID, err := near.ParseAccountID(r.AccountID)
	if err != nil {
		return nil, err
	}
	pk, err := keys.ParsePublicKey(r.PublicKey)
	if err != nil {
		return nil, err
	}
	sk, err := keys.ParseSecretKey(r.PrivateKey)
	if err != nil {
		return nil, err
	}
	if !sk.PublicKey().Equal(pk) {
		sk.Zero()
		return nil, ErrMismatchedKey
	}
	return &Credential{Network: network, AccountID: accountID, PublicKey: pk, SecretKey: sk}, nil
}

// Backend stores and retrieves credentials.
type Backend interface {
	// Name identifies the backend in messages and errors.
	Name() string

	// Persist stores cred, replacing any previous credential for the same
	// network and account. It returns a message for the user describing
	// where the data went.
	Persist(cred Credential) (string, error)

	// Load returns the credential for the account, or an error wrapping
	// ErrNotFound.
	Load(network string, accountID near.AccountID) (*Credential, error)
}

// StoreError reports a backend failure.
type StoreError struct {
	Backend string
	Op      string
	Err     error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("failed to %s access key in %s: %v", e.Op, e.Backend, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// Persist stores kp for accountID on network through b. The account id is
// stored exactly as given.
func Persist(ctx context.Context, b Backend, accountID near.AccountID, kp *keys.KeyPair, network string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if kp == nil || kp.SecretKey.IsZero() {
		return "", &StoreError{Backend: b.Name(), Op: "save", Err: errors.New("no key material")}
	}
	util.Debug("persisting access key", "backend", b.Name(), "account", accountID, "public_key", kp.PublicKey.String(), "network", network)
	return b.Persist(Credential{
		Network:   network,
		AccountID: accountID,
		PublicKey: kp.PublicKey,
		SecretKey: kp.SecretKey,
	})
}
