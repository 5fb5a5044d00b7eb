// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package login

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/near-go/nearcli/internal/keys"
	"github.com/near-go/nearcli/internal/keystore"
	"github.com/near-go/nearcli/internal/near"
	"github.com/near-go/nearcli/internal/prompt"
	"github.com/near-go/nearcli/internal/testutil"
	"github.com/near-go/nearcli/internal/verify"
)

var importPhrase = strings.Repeat("abandon ", 23) + "art"

type importHarness struct {
	ledger   *testutil.MockLedger
	prompter *testutil.ScriptedPrompter
	store    *keystore.FileStore
	cfg      ImportConfig
	key      *keys.KeyPair
}

func newImportHarness(t *testing.T, inputs []string) *importHarness {
	t.Helper()
	ledger := testutil.NewMockLedger(t)
	network, err := near.NewNetworkConfig("testnet", "https://wallet.testnet.near.org", ledger.URL(), "", "")
	require.NoError(t, err)

	key, err := keys.FromSeedPhrase(importPhrase, keys.DefaultHDPath)
	require.NoError(t, err)

	h := &importHarness{
		ledger:   ledger,
		prompter: testutil.NewScriptedPrompter(inputs, nil),
		store:    keystore.NewFileStore(t.TempDir()),
		key:      key,
	}
	h.cfg = ImportConfig{
		Network:  network,
		Prompter: h.prompter,
		Lookup:   verify.New(nil),
		Store:    func(prompt.Prompter) (keystore.Backend, error) { return h.store, nil },
	}
	return h
}

func TestImport_Supplied(t *testing.T) {
	h := newImportHarness(t, nil)
	h.ledger.AddKey("alice.testnet", h.key.PublicKey.String(), 4, "FullAccess")

	msg, err := Import(context.Background(), h.cfg, ImportInput{SeedPhrase: importPhrase, AccountID: "alice.testnet"})
	require.NoError(t, err)
	require.Empty(t, h.prompter.Asked())
	require.Contains(t, msg, "saved in a file")
	require.Contains(t, h.prompter.Output(), "Access key "+h.key.PublicKey.String()+" on alice.testnet is granted to full access")

	cred, err := h.store.Load("testnet", "alice.testnet")
	require.NoError(t, err)
	require.Equal(t, h.key.SecretKey.Encode(), cred.SecretKey.Encode())

	reqs := h.ledger.Requests()
	require.Len(t, reqs, 1)
	require.Equal(t, "view_access_key", reqs[0].RequestType)
}

func TestImport_Prompts(t *testing.T) {
	// A bad phrase is asked again.
	h := newImportHarness(t, []string{"not a phrase", importPhrase, "bob.testnet"})
	h.ledger.AddKey("bob.testnet", h.key.PublicKey.String(), 1, map[string]any{
		"FunctionCall": map[string]any{"allowance": nil, "receiver_id": "app.testnet", "method_names": []string{}},
	})

	_, err := Import(context.Background(), h.cfg, ImportInput{})
	require.NoError(t, err)
	require.Equal(t, []string{SeedPhraseLabel, SeedPhraseLabel, AccountIDLabel}, h.prompter.Asked())
	require.Contains(t, h.prompter.Output(), "only do [] function calls on app.testnet with no limit")

	_, err = h.store.Load("testnet", "bob.testnet")
	require.NoError(t, err)
}

func TestImport_KeyNotOnAccount(t *testing.T) {
	h := newImportHarness(t, nil)
	h.ledger.AddAccount("carol.testnet", testutil.MockAccount{Amount: "0", Locked: "0"})

	_, err := Import(context.Background(), h.cfg, ImportInput{SeedPhrase: importPhrase, AccountID: "carol.testnet"})
	require.True(t, verify.IsNotFound(err))

	_, err = h.store.Load("testnet", "carol.testnet")
	require.ErrorIs(t, err, keystore.ErrNotFound)
}

func TestImport_InvalidInput(t *testing.T) {
	h := newImportHarness(t, nil)

	_, err := Import(context.Background(), h.cfg, ImportInput{SeedPhrase: "abandon abandon", AccountID: "alice.testnet"})
	require.ErrorIs(t, err, keys.ErrInvalidSeedPhrase)

	_, err = Import(context.Background(), h.cfg, ImportInput{SeedPhrase: importPhrase, HDPath: "m/44/397/0", AccountID: "alice.testnet"})
	require.ErrorIs(t, err, keys.ErrInvalidHDPath)

	_, err = Import(context.Background(), ImportConfig{}, ImportInput{})
	require.Error(t, err)
	require.Empty(t, h.ledger.Requests())
}
