// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/near-go/nearcli/internal/keys"
	"github.com/near-go/nearcli/internal/keystore"
	"github.com/near-go/nearcli/internal/testutil"
)

type scriptedSession struct {
	*testutil.ScriptedPrompter
}

func (scriptedSession) Close() error { return nil }

type harness struct {
	app      *app
	ledger   *testutil.MockLedger
	prompter *testutil.ScriptedPrompter
	out      *bytes.Buffer
	dataDir  string
	credHome string
	opened   []string
}

func newHarness(t *testing.T, inputs []string, choices []int) *harness {
	t.Helper()
	t.Setenv("NEARCLI_NETWORK", "")
	t.Setenv("NEARCLI_CREDENTIALS_HOME", "")
	t.Setenv("TERM", "dumb")

	h := &harness{
		ledger:   testutil.NewMockLedger(t),
		prompter: testutil.NewScriptedPrompter(inputs, choices),
		out:      &bytes.Buffer{},
		dataDir:  t.TempDir(),
		credHome: t.TempDir(),
	}

	cfg := fmt.Sprintf(`network: testnet
credentials_home: %s
networks:
  testnet:
    wallet_url: https://wallet.example.org/
    rpc_url: %s
    archival_rpc_url: %s
`, h.credHome, h.ledger.URL(), h.ledger.URL())
	require.NoError(t, os.WriteFile(filepath.Join(h.dataDir, "config.yaml"), []byte(cfg), 0o600))

	a := newApp()
	a.out = h.out
	a.newPrompter = func() promptSession { return scriptedSession{h.prompter} }
	a.openBrowser = func(url string) error {
		h.opened = append(h.opened, url)
		return nil
	}
	a.keychain = func() keystore.NativeBackend { return nil }
	h.app = a
	return h
}

func (h *harness) run(args ...string) error {
	root := newRootCmd(h.app)
	root.SetArgs(append([]string{"--data-dir", h.dataDir}, args...))
	root.SetErr(&bytes.Buffer{})
	return root.ExecuteContext(context.Background())
}

func TestLoginCommand(t *testing.T) {
	tk := testutil.GenerateTestKey(t, 1)
	h := newHarness(t, []string{"alice.testnet"}, nil)
	h.ledger.AddKey("alice.testnet", tk.PublicKey.String(), 1, "FullAccess")
	h.app.generate = func() (*keys.KeyPair, error) {
		sk, err := keys.ParseSecretKey(tk.SecretKey.Encode())
		if err != nil {
			return nil, err
		}
		return &keys.KeyPair{PublicKey: sk.PublicKey(), SecretKey: sk}, nil
	}

	require.NoError(t, h.run("account", "login"))

	require.Len(t, h.opened, 1)
	require.Contains(t, h.opened[0], "https://wallet.example.org/login/?title=NEAR+CLI&public_key=ed25519")
	require.Contains(t, h.prompter.Output(), "please visit this URL")

	data, err := os.ReadFile(filepath.Join(h.credHome, "testnet", "alice.testnet.json"))
	require.NoError(t, err)
	var rec map[string]string
	require.NoError(t, json.Unmarshal(data, &rec))
	require.Equal(t, "alice.testnet", rec["account_id"])
	require.Equal(t, tk.PublicKey.String(), rec["public_key"])
	require.Equal(t, tk.SecretKey.Encode(), rec["private_key"])
}

func TestLoginCommand_NoBrowser(t *testing.T) {
	h := newHarness(t, nil, nil)
	err := h.run("account", "login", "--no-browser")
	require.Error(t, err)
	require.Empty(t, h.opened)
}

func TestImportCommand(t *testing.T) {
	phrase := strings.Repeat("abandon ", 23) + "art"
	kp, err := keys.FromSeedPhrase(phrase, keys.DefaultHDPath)
	require.NoError(t, err)

	h := newHarness(t, []string{phrase}, nil)
	h.ledger.AddKey("alice.testnet", kp.PublicKey.String(), 2, "FullAccess")

	require.NoError(t, h.run("account", "import", "--account", "alice.testnet"))
	require.Equal(t, []string{"Enter the seed phrase for this account"}, h.prompter.Asked())
	require.Contains(t, h.prompter.Output(), "is granted to full access")

	data, err := os.ReadFile(filepath.Join(h.credHome, "testnet", "alice.testnet.json"))
	require.NoError(t, err)
	require.Contains(t, string(data), kp.PublicKey.String())
}

func TestImportCommand_KeyNotRegistered(t *testing.T) {
	phrase := strings.Repeat("abandon ", 23) + "art"
	h := newHarness(t, nil, nil)
	h.ledger.AddAccount("bob.testnet", testutil.MockAccount{Amount: "0", Locked: "0"})

	err := h.run("account", "import", "--account", "bob.testnet", "--seed-phrase", phrase)
	require.Error(t, err)
	_, statErr := os.Stat(filepath.Join(h.credHome, "testnet", "bob.testnet.json"))
	require.True(t, os.IsNotExist(statErr))
}

func TestViewCommand(t *testing.T) {
	h := newHarness(t, nil, nil)
	h.ledger.AddAccount("bob.testnet", testutil.MockAccount{Amount: "2000000000000000000000000", Locked: "0", StorageUsage: 1500})
	h.ledger.AddKey("bob.testnet", "ed25519:abc", 4, "FullAccess")

	require.NoError(t, h.run("account", "view", "bob.testnet", "--block-height", "42"))
	require.Contains(t, h.out.String(), "Native account balance: 2 NEAR")
	require.Contains(t, h.out.String(), "Storage used by the account: 1.5 KB")
	require.Contains(t, h.out.String(), "1. ed25519:abc (nonce: 4) is granted to full access")
	for _, r := range h.ledger.Requests() {
		require.Equal(t, uint64(42), r.BlockID)
	}
}

func TestViewCommand_Errors(t *testing.T) {
	h := newHarness(t, nil, nil)
	require.Error(t, h.run("account", "view", "Not An Account"))
	require.Error(t, h.run("account", "view", "ghost.testnet"))
	require.Error(t, h.run("account", "view", "bob.testnet", "--network", "nowhere"))
}

func TestAddKeyFullAccess(t *testing.T) {
	tk := testutil.GenerateTestKey(t, 2)
	h := newHarness(t, nil, nil)

	require.NoError(t, h.run("transaction", "add-key", "full-access",
		"--account", "alice.testnet", "--public-key", tk.PublicKey.String(), "--nonce", "7"))
	require.Empty(t, h.prompter.Asked())

	out := h.out.String()
	require.Contains(t, out, "with full access (nonce: 7)")
	require.Contains(t, out, `"receiver_id": "alice.testnet"`)
	require.Contains(t, out, `"permission": "FullAccess"`)
}

func TestAddKeyFunctionCallPrompts(t *testing.T) {
	tk := testutil.GenerateTestKey(t, 3)
	h := newHarness(t, []string{"alice.testnet", tk.PublicKey.String(), "0"}, nil)

	require.NoError(t, h.run("transaction", "add-key", "function-call",
		"--receiver", "app.testnet", "--method-names", "vote, get", "--allowance", "0.25 NEAR"))

	require.Equal(t, []string{SignerLabel, "Enter a public key for this access key", "Enter the nonce for this access key"}, h.prompter.Asked())
	require.Contains(t, h.out.String(), "only do [vote get] function calls on app.testnet with an allowance of 0.25 NEAR")
}

func TestAddKeyMenu(t *testing.T) {
	tk := testutil.GenerateTestKey(t, 4)
	// Menu index 1 is full access.
	h := newHarness(t, nil, []int{1})

	require.NoError(t, h.run("transaction", "add-key",
		"--account", "alice.testnet", "--public-key", tk.PublicKey.String(), "--nonce", "0"))
	require.Contains(t, h.out.String(), "with full access")
}

func TestAddKeyFlagErrors(t *testing.T) {
	h := newHarness(t, nil, nil)
	require.Error(t, h.run("transaction", "add-key", "full-access", "--public-key", "ed25519:bogus"))
	require.Error(t, h.run("transaction", "add-key", "function-call", "--allowance", "1", "--no-allowance"))
	require.Error(t, h.run("transaction", "add-key", "function-call", "--allowance", "0"))
}

func TestConfigShow(t *testing.T) {
	h := newHarness(t, nil, nil)
	require.NoError(t, h.run("config", "show"))
	require.Contains(t, h.out.String(), "Network:      testnet")
	require.Contains(t, h.out.String(), h.credHome)
}
