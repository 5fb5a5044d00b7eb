// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

// Package testutil provides reusable test infrastructure and utilities.
package testutil

import (
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/binary"
	"testing"

	"github.com/mr-tron/base58"

	"github.com/near-go/nearcli/internal/keys"
)

// TestKey is a deterministic key pair for tests.
type TestKey struct {
	PublicKey keys.PublicKey
	SecretKey keys.SecretKey
	Pair      *keys.KeyPair
}

// GenerateTestKey derives an ed25519 key pair from seed so different seeds
// give different but reproducible keys.
func GenerateTestKey(t *testing.T, seed int) *TestKey {
	t.Helper()

	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(seed))
	digest := sha256.Sum256(buf[:])
	priv := ed25519.NewKeyFromSeed(digest[:])

	sk, err := keys.ParseSecretKey(keys.KeyTypeED25519 + ":" + base58.Encode(priv))
	if err != nil {
		t.Fatalf("Failed to build test secret key: %v", err)
	}
	pk := sk.PublicKey()
	return &TestKey{
		PublicKey: pk,
		SecretKey: sk,
		Pair:      &keys.KeyPair{PublicKey: pk, SecretKey: sk, HDPath: keys.DefaultHDPath},
	}
}
