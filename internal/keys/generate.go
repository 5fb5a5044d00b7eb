// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package keys

import (
	"crypto/ed25519"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha512"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	falconmnemonic "github.com/algorandfoundation/falcon-signatures/mnemonic"

	"github.com/near-go/nearcli/internal/crypto"
)

// DefaultHDPath is the SLIP-0044 path registered for the ledger (coin 397).
const DefaultHDPath = "m/44'/397'/0'"

const (
	entropyBytes      = 32 // 24 words
	slip10Curve       = "ed25519 seed"
	hardenedKeyOffset = uint32(0x80000000)
)

var (
	// ErrInvalidSeedPhrase is returned when a mnemonic fails its checksum.
	ErrInvalidSeedPhrase = errors.New("invalid seed phrase")

	// ErrInvalidHDPath is returned for malformed or non-hardened paths.
	ErrInvalidHDPath = errors.New("invalid HD path")
)

// entropySource is swapped in tests.
var entropySource io.Reader = rand.Reader

// Generate creates a new key pair from fresh entropy. The pair is derived
// from a BIP-39 mnemonic along DefaultHDPath so it can be recovered from
// the returned SeedPhrase.
func Generate() (*KeyPair, error) {
	entropy := make([]byte, entropyBytes)
	if _, err := io.ReadFull(entropySource, entropy); err != nil {
		return nil, fmt.Errorf("failed to generate entropy: %w", err)
	}
	defer crypto.ZeroBytes(entropy)

	words, err := falconmnemonic.EntropyToMnemonic(entropy)
	if err != nil {
		return nil, fmt.Errorf("failed to generate mnemonic from entropy: %w", err)
	}
	return deriveKeyPair(words, DefaultHDPath)
}

// FromSeedPhrase recovers the key pair for phrase at hdPath.
func FromSeedPhrase(phrase, hdPath string) (*KeyPair, error) {
	words := strings.Fields(phrase)
	entropy, err := falconmnemonic.MnemonicToEntropy(words)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSeedPhrase, err)
	}
	crypto.ZeroBytes(entropy)
	return deriveKeyPair(words, hdPath)
}

func deriveKeyPair(words []string, hdPath string) (*KeyPair, error) {
	// BIP-39 seed, no passphrase.
	seedArray, err := falconmnemonic.SeedFromMnemonic(words, "")
	if err != nil {
		return nil, fmt.Errorf("failed to derive seed from mnemonic: %w", err)
	}
	seed := seedArray[:]
	defer crypto.ZeroBytes(seed)

	keySeed, err := deriveSLIP10(seed, hdPath)
	if err != nil {
		return nil, err
	}
	defer crypto.ZeroBytes(keySeed)

	priv := ed25519.NewKeyFromSeed(keySeed)
	pub, err := PublicKeyFromBytes(priv.Public().(ed25519.PublicKey))
	if err != nil {
		return nil, err
	}
	return &KeyPair{
		PublicKey:  pub,
		SecretKey:  SecretKey{data: priv},
		SeedPhrase: strings.Join(words, " "),
		HDPath:     hdPath,
	}, nil
}

// parseHDPath parses "m/44'/397'/0'". ed25519 only supports hardened
// derivation, so every segment must carry the ' (or H) marker.
func parseHDPath(path string) ([]uint32, error) {
	segments := strings.Split(strings.TrimSpace(path), "/")
	if len(segments) == 0 || segments[0] != "m" {
		return nil, fmt.Errorf("%w: %q must start with m", ErrInvalidHDPath, path)
	}
	indexes := make([]uint32, 0, len(segments)-1)
	for _, seg := range segments[1:] {
		trimmed := strings.TrimRight(seg, "'H")
		if trimmed == seg || len(seg)-len(trimmed) != 1 {
			return nil, fmt.Errorf("%w: segment %q is not hardened", ErrInvalidHDPath, seg)
		}
		n, err := strconv.ParseUint(trimmed, 10, 31)
		if err != nil {
			return nil, fmt.Errorf("%w: segment %q: %v", ErrInvalidHDPath, seg, err)
		}
		indexes = append(indexes, uint32(n)+hardenedKeyOffset)
	}
	return indexes, nil
}

// deriveSLIP10 walks a SLIP-0010 ed25519 path and returns the 32-byte key seed.
func deriveSLIP10(seed []byte, path string) ([]byte, error) {
	indexes, err := parseHDPath(path)
	if err != nil {
		return nil, err
	}

	mac := hmac.New(sha512.New, []byte(slip10Curve))
	mac.Write(seed)
	sum := mac.Sum(nil)
	defer crypto.ZeroBytes(sum)

	key := make([]byte, 32)
	chain := make([]byte, 32)
	copy(key, sum[:32])
	copy(chain, sum[32:])
	defer crypto.ZeroBytes(chain)

	data := make([]byte, 0, 1+32+4)
	for _, index := range indexes {
		data = data[:0]
		data = append(data, 0x00)
		data = append(data, key...)
		data = binary.BigEndian.AppendUint32(data, index)

		mac := hmac.New(sha512.New, chain)
		mac.Write(data)
		child := mac.Sum(nil)
		copy(key, child[:32])
		copy(chain, child[32:])
		crypto.ZeroBytes(child)
	}
	crypto.ZeroBytes(data)
	return key, nil
}
