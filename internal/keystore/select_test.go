// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package keystore

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/near-go/nearcli/internal/near"
	"github.com/near-go/nearcli/internal/prompt"
	"github.com/near-go/nearcli/internal/testutil"
)

type fakeNative struct {
	available bool
	checks    int
}

func (f *fakeNative) Name() string                       { return "fake keychain" }
func (f *fakeNative) Persist(Credential) (string, error) { return "", nil }
func (f *fakeNative) Load(string, near.AccountID) (*Credential, error) {
	return nil, ErrNotFound
}
func (f *fakeNative) Available() bool {
	f.checks++
	return f.available
}

func TestSelect(t *testing.T) {
	legacy := NewFileStore(t.TempDir())

	t.Run("native unavailable skips the question", func(t *testing.T) {
		p := testutil.NewScriptedPrompter(nil, nil)
		native := &fakeNative{available: false}
		got, err := Select(p, native, legacy)
		require.NoError(t, err)
		require.Same(t, legacy, got)
		require.Empty(t, p.Asked())
		require.Equal(t, 1, native.checks)
	})

	t.Run("nil native", func(t *testing.T) {
		p := testutil.NewScriptedPrompter(nil, nil)
		got, err := Select(p, nil, legacy)
		require.NoError(t, err)
		require.Same(t, legacy, got)
	})

	t.Run("user picks keychain", func(t *testing.T) {
		p := testutil.NewScriptedPrompter(nil, []int{0})
		native := &fakeNative{available: true}
		got, err := Select(p, native, legacy)
		require.NoError(t, err)
		require.Same(t, native, got)
		require.Equal(t, [][]string{{KeychainLabel, LegacyLabel}}, p.Menus())
	})

	t.Run("user picks legacy", func(t *testing.T) {
		p := testutil.NewScriptedPrompter(nil, []int{1})
		got, err := Select(p, &fakeNative{available: true}, legacy)
		require.NoError(t, err)
		require.Same(t, legacy, got)
	})

	t.Run("aborted", func(t *testing.T) {
		p := testutil.NewScriptedPrompter(nil, nil)
		_, err := Select(p, &fakeNative{available: true}, legacy)
		require.True(t, errors.Is(err, prompt.ErrAborted))
	})
}
