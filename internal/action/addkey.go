// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package action

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/near-go/nearcli/internal/keys"
	"github.com/near-go/nearcli/internal/prompt"
)

// Prompt labels for the add-key action.
const (
	PublicKeyLabel = "Enter a public key for this access key"
	NonceLabel     = "Enter the nonce for this access key"
)

// ErrInvalidNonce is returned for a nonce answer that is not a uint64.
var ErrInvalidNonce = errors.New("invalid nonce")

// AddAccessKeyAction adds PublicKey to the signer's account with the given
// permission. It is immutable once built.
type AddAccessKeyAction struct {
	publicKey  keys.PublicKey
	nonce      uint64
	permission AccessKeyPermission
}

// NewAddAccessKeyAction builds an action from complete values.
func NewAddAccessKeyAction(publicKey keys.PublicKey, nonce uint64, permission AccessKeyPermission) (*AddAccessKeyAction, error) {
	if publicKey.IsZero() {
		return nil, fmt.Errorf("%w: empty key", keys.ErrInvalidPublicKey)
	}
	if _, ok := lookupPermission(permission.Kind()); !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPermission, permission.Kind())
	}
	return &AddAccessKeyAction{publicKey: publicKey, nonce: nonce, permission: permission}, nil
}

func (a *AddAccessKeyAction) PublicKey() keys.PublicKey       { return a.publicKey }
func (a *AddAccessKeyAction) Nonce() uint64                   { return a.nonce }
func (a *AddAccessKeyAction) Permission() AccessKeyPermission { return a.permission }

// MarshalJSON encodes the action the way the ledger's transaction JSON
// shows it.
func (a *AddAccessKeyAction) MarshalJSON() ([]byte, error) {
	type accessKey struct {
		Nonce      uint64              `json:"nonce"`
		Permission AccessKeyPermission `json:"permission"`
	}
	type addKey struct {
		PublicKey string    `json:"public_key"`
		AccessKey accessKey `json:"access_key"`
	}
	return json.Marshal(map[string]addKey{
		"AddKey": {
			PublicKey: a.publicKey.String(),
			AccessKey: accessKey{Nonce: a.nonce, Permission: a.permission},
		},
	})
}

// AddAccessKeyInput is a possibly partial add-key action. A nil Permission
// is resolved entirely through prompts.
type AddAccessKeyInput struct {
	PublicKey  Field[keys.PublicKey]
	Nonce      Field[uint64]
	Permission *PermissionInput
}

// ResolveAddAccessKey completes partial, prompting for the public key,
// the nonce and the permission when they are missing. Malformed answers
// are reported and asked again.
func ResolveAddAccessKey(p prompt.Prompter, partial *AddAccessKeyInput) (*AddAccessKeyAction, error) {
	var in AddAccessKeyInput
	if partial != nil {
		in = *partial
	}

	publicKey, ok := in.PublicKey.Get()
	if !ok {
		var err error
		publicKey, err = prompt.InputValid(p, PublicKeyLabel, keys.ParsePublicKey)
		if err != nil {
			return nil, err
		}
	}

	nonce, ok := in.Nonce.Get()
	if !ok {
		var err error
		nonce, err = prompt.InputValid(p, NonceLabel, ParseNonce)
		if err != nil {
			return nil, err
		}
	}

	permission, err := ResolvePermission(p, in.Permission)
	if err != nil {
		return nil, err
	}
	return NewAddAccessKeyAction(publicKey, nonce, permission)
}

// ParseNonce parses a decimal uint64.
func ParseNonce(s string) (uint64, error) {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a non-negative integer", ErrInvalidNonce, s)
	}
	return n, nil
}
