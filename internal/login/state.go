// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package login

import "fmt"

// State is a step of the login flow.
type State int

const (
	StateStart State = iota
	StateKeyGenerated
	StateURLPresented
	StateAwaitingAccountID
	StateVerifying
	StateVerifiedAccepted
	StateNotVerifiedPrompt
	StatePersisted
	StateAborted
)

var stateNames = [...]string{
	StateStart:             "Start",
	StateKeyGenerated:      "KeyGenerated",
	StateURLPresented:      "URLPresented",
	StateAwaitingAccountID: "AwaitingAccountID",
	StateVerifying:         "Verifying",
	StateVerifiedAccepted:  "VerifiedAccepted",
	StateNotVerifiedPrompt: "NotVerifiedPrompt",
	StatePersisted:         "Persisted",
	StateAborted:           "Aborted",
}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Terminal reports whether the flow stops in this state.
func (s State) Terminal() bool {
	return s == StatePersisted || s == StateAborted
}
