// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

// Package near holds the ledger's value types: account identifiers,
// balances and network endpoints.
package near

import (
	"errors"
	"fmt"
	"regexp"
)

// ErrInvalidAccountID is returned for strings that are not valid account ids.
var ErrInvalidAccountID = errors.New("invalid account id")

const (
	MinAccountIDLen = 2
	MaxAccountIDLen = 64
)

// Parts are lowercase alphanumerics joined by single '-' or '_';
// parts are joined by '.'.
var accountIDPattern = regexp.MustCompile(`^(([a-z\d]+[-_])*[a-z\d]+\.)*([a-z\d]+[-_])*[a-z\d]+$`)

var implicitPattern = regexp.MustCompile(`^[0-9a-f]{64}$`)

// AccountID is a validated ledger account identifier.
type AccountID string

// ParseAccountID validates s against the account naming rules.
func ParseAccountID(s string) (AccountID, error) {
	if len(s) < MinAccountIDLen || len(s) > MaxAccountIDLen {
		return "", fmt.Errorf("%w: %q must be %d to %d characters long", ErrInvalidAccountID, s, MinAccountIDLen, MaxAccountIDLen)
	}
	if !accountIDPattern.MatchString(s) {
		return "", fmt.Errorf("%w: %q may contain only lowercase letters, digits and single '-', '_' or '.' separators", ErrInvalidAccountID, s)
	}
	return AccountID(s), nil
}

// MustParseAccountID is ParseAccountID for constants and tests.
func MustParseAccountID(s string) AccountID {
	id, err := ParseAccountID(s)
	if err != nil {
		panic(err)
	}
	return id
}

func (a AccountID) String() string { return string(a) }

// IsImplicit reports whether the id is the hex form of an ed25519 public key.
func (a AccountID) IsImplicit() bool {
	return implicitPattern.MatchString(string(a))
}

// UnmarshalText validates the id when decoding JSON or YAML.
func (a *AccountID) UnmarshalText(text []byte) error {
	id, err := ParseAccountID(string(text))
	if err != nil {
		return err
	}
	*a = id
	return nil
}
