// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package keystore

import (
	"errors"
	"fmt"
	"sync"

	"github.com/zalando/go-keyring"

	"github.com/near-go/nearcli/internal/crypto"
	"github.com/near-go/nearcli/internal/near"
	"github.com/near-go/nearcli/internal/util"
)

const (
	checkService = "near-cli-check"
	checkUser    = "check"

	// indexUser holds the public key of the most recently stored credential
	// so Load can find the record without knowing the key.
	indexUser = "public_key"
)

// KeychainStore keeps credentials in the OS keychain. Each credential is an
// item with service near-<network>-<account_id> and user <public_key>. An
// account holds one credential: saving a new key removes the previous one.
type KeychainStore struct {
	checkOnce sync.Once
	available bool
}

// NewKeychainStore creates a keychain-backed store.
func NewKeychainStore() *KeychainStore {
	return &KeychainStore{}
}

func (k *KeychainStore) Name() string { return "keychain" }

// Available reports whether the OS keychain answers. The check runs once.
func (k *KeychainStore) Available() bool {
	k.checkOnce.Do(func() {
		_, err := keyring.Get(checkService, checkUser)
		k.available = err == nil || errors.Is(err, keyring.ErrNotFound)
	})
	return k.available
}

// Service returns the keychain service name for an account.
func (k *KeychainStore) Service(network string, accountID near.AccountID) string {
	return fmt.Sprintf("near-%s-%s", network, accountID)
}

func (k *KeychainStore) Persist(cred Credential) (string, error) {
	data, err := cred.marshal()
	if err != nil {
		return "", &StoreError{Backend: k.Name(), Op: "save", Err: err}
	}
	defer crypto.ZeroBytes(data)

	service := k.Service(cred.Network, cred.AccountID)
	user := cred.PublicKey.String()

	previous, err := keyring.Get(service, indexUser)
	switch {
	case errors.Is(err, keyring.ErrNotFound):
		previous = ""
	case err != nil:
		return "", &StoreError{Backend: k.Name(), Op: "save", Err: err}
	}

	if err := keyring.Set(service, user, string(data)); err != nil {
		return "", &StoreError{Backend: k.Name(), Op: "save", Err: err}
	}
	if err := keyring.Set(service, indexUser, user); err != nil {
		// The index still names the previous record; drop the new one.
		if previous != user {
			if delErr := keyring.Delete(service, user); delErr != nil {
				util.Warn("failed to remove unreferenced keychain item", "service", service, "error", delErr)
			}
		}
		return "", &StoreError{Backend: k.Name(), Op: "save", Err: err}
	}

	if previous != "" && previous != user {
		if err := keyring.Delete(service, previous); err != nil && !errors.Is(err, keyring.ErrNotFound) {
			return "", &StoreError{Backend: k.Name(), Op: "save", Err: fmt.Errorf("failed to remove previous access key %s: %w", previous, err)}
		}
	}
	return "The data for the access key is saved in the keychain", nil
}

func (k *KeychainStore) Load(network string, accountID near.AccountID) (*Credential, error) {
	service := k.Service(network, accountID)
	user, err := keyring.Get(service, indexUser)
	if err != nil {
		return nil, k.loadError(err)
	}
	secret, err := keyring.Get(service, user)
	if err != nil {
		return nil, k.loadError(err)
	}
	cred, err := unmarshalCredential(network, []byte(secret))
	if err != nil {
		return nil, &StoreError{Backend: k.Name(), Op: "load", Err: err}
	}
	return cred, nil
}

func (k *KeychainStore) loadError(err error) error {
	if errors.Is(err, keyring.ErrNotFound) {
		err = ErrNotFound
	}
	return &StoreError{Backend: k.Name(), Op: "load", Err: err}
}
