// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

// Package keys provides ed25519 key material in the ledger's canonical
// "ed25519:<base58>" encoding.
package keys

import (
	"crypto/ed25519"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"

	"github.com/near-go/nearcli/internal/crypto"
	"github.com/near-go/nearcli/internal/near"
)

// KeyTypeED25519 is the only curve the ledger accepts for access keys here.
const KeyTypeED25519 = "ed25519"

var (
	// ErrInvalidPublicKey is returned for malformed public key strings.
	ErrInvalidPublicKey = errors.New("invalid public key")

	// ErrInvalidSecretKey is returned for malformed secret key strings.
	ErrInvalidSecretKey = errors.New("invalid secret key")
)

// PublicKey is an ed25519 public key. The zero value is not a valid key.
type PublicKey struct {
	data [ed25519.PublicKeySize]byte
	set  bool
}

// PublicKeyFromBytes validates that b encodes a point on the curve.
func PublicKeyFromBytes(b []byte) (PublicKey, error) {
	if len(b) != ed25519.PublicKeySize {
		return PublicKey{}, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidPublicKey, ed25519.PublicKeySize, len(b))
	}
	if _, err := new(edwards25519.Point).SetBytes(b); err != nil {
		return PublicKey{}, fmt.Errorf("%w: not a curve point", ErrInvalidPublicKey)
	}
	var pk PublicKey
	copy(pk.data[:], b)
	pk.set = true
	return pk, nil
}

// ParsePublicKey parses "ed25519:<base58>". The curve prefix may be omitted.
func ParsePublicKey(s string) (PublicKey, error) {
	data, err := decodeKeyString(strings.TrimSpace(s))
	if err != nil {
		return PublicKey{}, fmt.Errorf("%w: %v", ErrInvalidPublicKey, err)
	}
	return PublicKeyFromBytes(data)
}

// MustParsePublicKey is ParsePublicKey for constants and tests.
func MustParsePublicKey(s string) PublicKey {
	pk, err := ParsePublicKey(s)
	if err != nil {
		panic(err)
	}
	return pk
}

func decodeKeyString(s string) ([]byte, error) {
	body := s
	if curve, rest, found := strings.Cut(s, ":"); found {
		if curve != KeyTypeED25519 {
			return nil, fmt.Errorf("unsupported key type %q", curve)
		}
		body = rest
	}
	if body == "" {
		return nil, fmt.Errorf("empty key")
	}
	data, err := base58.Decode(body)
	if err != nil {
		return nil, fmt.Errorf("bad base58: %v", err)
	}
	return data, nil
}

// String returns the canonical "ed25519:<base58>" encoding.
func (k PublicKey) String() string {
	return KeyTypeED25519 + ":" + base58.Encode(k.data[:])
}

// Bytes returns a copy of the raw 32-byte key.
func (k PublicKey) Bytes() []byte {
	out := make([]byte, len(k.data))
	copy(out, k.data[:])
	return out
}

// IsZero reports whether the key was never set.
func (k PublicKey) IsZero() bool { return !k.set }

// Equal compares two keys.
func (k PublicKey) Equal(o PublicKey) bool {
	return k.set == o.set && k.data == o.data
}

// ImplicitAccountID is the hex account id controlled by this key.
func (k PublicKey) ImplicitAccountID() near.AccountID {
	return near.AccountID(hex.EncodeToString(k.data[:]))
}

// MarshalText encodes the key canonically.
func (k PublicKey) MarshalText() ([]byte, error) {
	if !k.set {
		return nil, fmt.Errorf("%w: empty key", ErrInvalidPublicKey)
	}
	return []byte(k.String()), nil
}

// UnmarshalText parses a canonical key.
func (k *PublicKey) UnmarshalText(text []byte) error {
	pk, err := ParsePublicKey(string(text))
	if err != nil {
		return err
	}
	*k = pk
	return nil
}

// SecretKey is an ed25519 private key (seed followed by public key).
// String and LogValue are redacted; use Encode to serialize.
type SecretKey struct {
	data ed25519.PrivateKey
}

// ParseSecretKey parses "ed25519:<base58 of 64 bytes>" and checks that the
// embedded public half matches the seed.
func ParseSecretKey(s string) (SecretKey, error) {
	data, err := decodeKeyString(strings.TrimSpace(s))
	if err != nil {
		return SecretKey{}, fmt.Errorf("%w: %v", ErrInvalidSecretKey, err)
	}
	defer crypto.ZeroBytes(data)
	if len(data) != ed25519.PrivateKeySize {
		return SecretKey{}, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidSecretKey, ed25519.PrivateKeySize, len(data))
	}
	priv := ed25519.NewKeyFromSeed(data[:ed25519.SeedSize])
	if !crypto.Equal(priv[ed25519.SeedSize:], data[ed25519.SeedSize:]) {
		crypto.ZeroBytes(priv)
		return SecretKey{}, fmt.Errorf("%w: public half does not match seed", ErrInvalidSecretKey)
	}
	return SecretKey{data: priv}, nil
}

// Encode returns the full "ed25519:<base58>" encoding. Only storage
// backends should call this.
func (s SecretKey) Encode() string {
	return KeyTypeED25519 + ":" + base58.Encode(s.data)
}

// PublicKey returns the public half.
func (s SecretKey) PublicKey() PublicKey {
	pk, _ := PublicKeyFromBytes(s.data[ed25519.SeedSize:])
	return pk
}

// IsZero reports whether the key holds no material.
func (s SecretKey) IsZero() bool { return len(s.data) == 0 }

// Sign signs message with the key.
func (s SecretKey) Sign(message []byte) []byte {
	return ed25519.Sign(s.data, message)
}

func (s SecretKey) String() string { return KeyTypeED25519 + ":[redacted]" }

// LogValue keeps secret material out of structured logs.
func (s SecretKey) LogValue() slog.Value { return slog.StringValue(s.String()) }

// Zero wipes the key material.
func (s *SecretKey) Zero() {
	crypto.ZeroBytes(s.data)
	s.data = nil
}

// KeyPair is a freshly generated or imported key pair plus the data
// needed to recover it.
type KeyPair struct {
	PublicKey  PublicKey
	SecretKey  SecretKey
	SeedPhrase string
	HDPath     string
}

// ImplicitAccountID is the hex account id controlled by the pair.
func (kp *KeyPair) ImplicitAccountID() near.AccountID {
	return kp.PublicKey.ImplicitAccountID()
}

// Zero wipes the secret half and the seed phrase reference.
func (kp *KeyPair) Zero() {
	kp.SecretKey.Zero()
	kp.SeedPhrase = ""
}
