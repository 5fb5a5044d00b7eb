// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

// Package login implements the browser-assisted login: generate a key pair,
// send the user to the wallet to authorize it, confirm the key landed on
// the account, and store the credential.
package login

import (
	"context"
	"errors"
	"fmt"

	"github.com/pkg/browser"
	"github.com/skip2/go-qrcode"

	"github.com/near-go/nearcli/internal/keys"
	"github.com/near-go/nearcli/internal/keystore"
	"github.com/near-go/nearcli/internal/near"
	"github.com/near-go/nearcli/internal/prompt"
	"github.com/near-go/nearcli/internal/util"
)

// Title is sent to the wallet as the requesting application's name.
const Title = "NEAR CLI"

// Prompt labels.
const (
	AccountIDLabel    = "Enter account ID"
	RetryLabel        = "Would you like to re-enter the account_id?"
	RetryReenterLabel = "Yes, I want to re-enter the account_id."
	RetrySaveLabel    = "No, I want to save the access key information."
)

// AccountVerifier confirms a key is registered on an account.
type AccountVerifier interface {
	Verify(ctx context.Context, accountID near.AccountID, publicKey keys.PublicKey, network near.NetworkConfig) error
}

// Config wires a Flow to its collaborators. Generate and OpenBrowser
// default to keys.Generate and the system browser.
type Config struct {
	Network  near.NetworkConfig
	Prompter prompt.Prompter
	Verifier AccountVerifier

	// Store picks the backend at persist time; it may ask the user.
	Store func(p prompt.Prompter) (keystore.Backend, error)

	Generate    func() (*keys.KeyPair, error)
	OpenBrowser func(url string) error

	// ShowQR renders the authorization URL as a terminal QR code.
	ShowQR bool
}

type stateFn func(f *Flow, ctx context.Context) State

// Flow is one login attempt. It is not reusable.
type Flow struct {
	cfg Config

	state     State
	history   []State
	keyPair   *keys.KeyPair
	publicKey keys.PublicKey
	url       string
	accountID near.AccountID
	verifyErr error
	message   string
	err       error
}

// New validates cfg and returns a flow in StateStart.
func New(cfg Config) (*Flow, error) {
	if cfg.Prompter == nil {
		return nil, errors.New("login: prompter is required")
	}
	if cfg.Verifier == nil {
		return nil, errors.New("login: verifier is required")
	}
	if cfg.Store == nil {
		return nil, errors.New("login: store is required")
	}
	if cfg.Generate == nil {
		cfg.Generate = keys.Generate
	}
	if cfg.OpenBrowser == nil {
		cfg.OpenBrowser = browser.OpenURL
	}
	return &Flow{cfg: cfg, state: StateStart, history: []State{StateStart}}, nil
}

var handlers = map[State]stateFn{
	StateStart:             (*Flow).start,
	StateKeyGenerated:      (*Flow).presentURL,
	StateURLPresented:      (*Flow).awaitAccountID,
	StateAwaitingAccountID: (*Flow).readAccountID,
	StateVerifying:         (*Flow).verify,
	StateVerifiedAccepted:  (*Flow).accept,
	StateNotVerifiedPrompt: (*Flow).askRetry,
}

// Run drives the flow until it is Persisted or Aborted. The error that
// caused an abort is returned.
func (f *Flow) Run(ctx context.Context) error {
	for !f.state.Terminal() {
		handler, ok := handlers[f.state]
		if !ok {
			f.err = fmt.Errorf("login: no handler for state %s", f.state)
			f.state = StateAborted
			break
		}
		next := handler(f, ctx)
		util.Debug("login transition", "from", f.state, "to", next)
		f.state = next
		f.history = append(f.history, next)
	}
	if f.state == StateAborted {
		return f.err
	}
	return nil
}

// State returns the current state.
func (f *Flow) State() State { return f.state }

// History returns every state visited, starting with StateStart.
func (f *Flow) History() []State { return append([]State(nil), f.history...) }

// AccountID returns the account id the user entered last.
func (f *Flow) AccountID() near.AccountID { return f.accountID }

// PublicKey returns the generated public key.
func (f *Flow) PublicKey() keys.PublicKey { return f.publicKey }

// URL returns the authorization URL.
func (f *Flow) URL() string { return f.url }

// Message returns the store's confirmation message after Persisted.
func (f *Flow) Message() string { return f.message }

func (f *Flow) abort(err error) State {
	f.err = err
	if f.keyPair != nil {
		f.keyPair.Zero()
	}
	return StateAborted
}

func (f *Flow) start(ctx context.Context) State {
	kp, err := f.cfg.Generate()
	if err != nil {
		return f.abort(fmt.Errorf("failed to generate key pair: %w", err))
	}
	f.keyPair = kp
	f.publicKey = kp.PublicKey
	util.Debug("generated key pair", "public_key", kp.PublicKey.String())
	return StateKeyGenerated
}

func (f *Flow) presentURL(ctx context.Context) State {
	f.url = f.cfg.Network.LoginURL(Title, f.publicKey.String())

	if err := f.cfg.OpenBrowser(f.url); err != nil {
		util.Debug("failed to open browser", "error", err)
	}
	f.cfg.Prompter.Printf("If your browser doesn't automatically open, please visit this URL:\n %s\n", f.url)

	if f.cfg.ShowQR {
		qr, err := qrcode.New(f.url, qrcode.Medium)
		if err != nil {
			util.Debug("failed to render QR code", "error", err)
		} else {
			f.cfg.Prompter.Printf("\nOr scan it with a mobile wallet:\n%s\n", qr.ToSmallString(false))
		}
	}
	return StateURLPresented
}

func (f *Flow) awaitAccountID(ctx context.Context) State {
	return StateAwaitingAccountID
}

func (f *Flow) readAccountID(ctx context.Context) State {
	id, err := prompt.InputValid(f.cfg.Prompter, AccountIDLabel, near.ParseAccountID)
	if err != nil {
		return f.abort(err)
	}
	f.accountID = id
	return StateVerifying
}

func (f *Flow) verify(ctx context.Context) State {
	err := f.cfg.Verifier.Verify(ctx, f.accountID, f.publicKey, f.cfg.Network)
	if err == nil {
		f.verifyErr = nil
		return StateVerifiedAccepted
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return f.abort(ctxErr)
	}
	f.verifyErr = err
	return StateNotVerifiedPrompt
}

func (f *Flow) accept(ctx context.Context) State {
	return f.persist(ctx)
}

func (f *Flow) askRetry(ctx context.Context) State {
	util.Debug("verification failed", "account", f.accountID, "error", f.verifyErr)
	f.cfg.Prompter.Printf("\nIt is currently not possible to verify the account access key.\n"+
		"You may not be logged in to %s or you may have entered an incorrect account_id.\n"+
		"You have the option to reconfirm your account or save your access key information.\n\n",
		f.url)

	idx, err := f.cfg.Prompter.Select(RetryLabel, []string{RetryReenterLabel, RetrySaveLabel})
	if err != nil {
		return f.abort(err)
	}
	if idx == 0 {
		return StateAwaitingAccountID
	}
	return f.persist(ctx)
}

func (f *Flow) persist(ctx context.Context) State {
	backend, err := f.cfg.Store(f.cfg.Prompter)
	if err != nil {
		return f.abort(err)
	}
	msg, err := keystore.Persist(ctx, backend, f.accountID, f.keyPair, f.cfg.Network.Name())
	if err != nil {
		return f.abort(err)
	}
	f.message = msg
	f.cfg.Prompter.Printf("%s\n", msg)
	f.keyPair.Zero()
	return StatePersisted
}
