// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package login

import (
	"context"
	"errors"
	"fmt"

	"github.com/near-go/nearcli/internal/keys"
	"github.com/near-go/nearcli/internal/keystore"
	"github.com/near-go/nearcli/internal/near"
	"github.com/near-go/nearcli/internal/prompt"
	"github.com/near-go/nearcli/internal/rpc"
	"github.com/near-go/nearcli/internal/util"
	"github.com/near-go/nearcli/internal/view"
)

// SeedPhraseLabel asks for the phrase of an existing key.
const SeedPhraseLabel = "Enter the seed phrase for this account"

// KeyLookup fetches the access key a public key holds on an account.
type KeyLookup interface {
	Lookup(ctx context.Context, accountID near.AccountID, publicKey keys.PublicKey, network near.NetworkConfig) (*rpc.AccessKeyView, error)
}

// ImportConfig wires Import to its collaborators.
type ImportConfig struct {
	Network  near.NetworkConfig
	Prompter prompt.Prompter
	Lookup   KeyLookup
	Store    func(p prompt.Prompter) (keystore.Backend, error)
}

// ImportInput is a possibly partial import request. Empty SeedPhrase and
// AccountID are prompted for; an empty HDPath is keys.DefaultHDPath.
type ImportInput struct {
	SeedPhrase string
	HDPath     string
	AccountID  near.AccountID
}

// Import recovers a key pair from a seed phrase, checks that the key is on
// the account and stores the credential. The key must already be
// registered; nothing is stored otherwise. It returns the store's message.
func Import(ctx context.Context, cfg ImportConfig, in ImportInput) (string, error) {
	if cfg.Prompter == nil || cfg.Lookup == nil || cfg.Store == nil {
		return "", errors.New("import: prompter, lookup and store are required")
	}
	hdPath := in.HDPath
	if hdPath == "" {
		hdPath = keys.DefaultHDPath
	}

	var (
		kp  *keys.KeyPair
		err error
	)
	if in.SeedPhrase != "" {
		kp, err = keys.FromSeedPhrase(in.SeedPhrase, hdPath)
		if err != nil {
			return "", err
		}
	} else {
		kp, err = prompt.InputValid(cfg.Prompter, SeedPhraseLabel, func(s string) (*keys.KeyPair, error) {
			return keys.FromSeedPhrase(s, hdPath)
		})
		if err != nil {
			return "", err
		}
	}
	defer kp.Zero()

	accountID := in.AccountID
	if accountID == "" {
		accountID, err = prompt.InputValid(cfg.Prompter, AccountIDLabel, near.ParseAccountID)
		if err != nil {
			return "", err
		}
	}

	key, err := cfg.Lookup.Lookup(ctx, accountID, kp.PublicKey, cfg.Network)
	if err != nil {
		return "", err
	}
	util.Debug("importing access key", "account", accountID, "public_key", kp.PublicKey.String(), "nonce", key.Nonce)
	cfg.Prompter.Printf("Access key %s on %s is granted to %s\n", kp.PublicKey, accountID, view.DescribePermission(key.Permission))

	backend, err := cfg.Store(cfg.Prompter)
	if err != nil {
		return "", err
	}
	msg, err := keystore.Persist(ctx, backend, accountID, kp, cfg.Network.Name())
	if err != nil {
		return "", fmt.Errorf("failed to import access key: %w", err)
	}
	cfg.Prompter.Printf("%s\n", msg)
	return msg, nil
}
