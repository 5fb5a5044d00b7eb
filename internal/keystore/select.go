// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package keystore

import (
	"github.com/near-go/nearcli/internal/prompt"
)

// Choice labels shown when both backends are usable.
const (
	SelectLabel   = "Select a keychain to save the access key to:"
	KeychainLabel = "Store the access key in my keychain"
	LegacyLabel   = "Store the access key in my legacy keychain (compatible with the old near CLI)"
)

// NativeBackend is a backend that may not work on every machine.
type NativeBackend interface {
	Backend
	Available() bool
}

// Select returns native if it is available and the user picks it, legacy
// otherwise. When native is nil or unavailable the user is not asked.
func Select(p prompt.Prompter, native NativeBackend, legacy Backend) (Backend, error) {
	if native == nil || !native.Available() {
		return legacy, nil
	}
	idx, err := p.Select(SelectLabel, []string{KeychainLabel, LegacyLabel})
	if err != nil {
		return nil, err
	}
	if idx == 0 {
		return native, nil
	}
	return legacy, nil
}
