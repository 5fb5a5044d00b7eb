// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package action

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/near-go/nearcli/internal/keys"
	"github.com/near-go/nearcli/internal/near"
	"github.com/near-go/nearcli/internal/prompt"
	"github.com/near-go/nearcli/internal/testutil"
)

func balance(t *testing.T, s string) *near.Balance {
	t.Helper()
	b, err := near.ParseBalance(s)
	require.NoError(t, err)
	return &b
}

func TestResolveAddAccessKey_FullySupplied(t *testing.T) {
	key := testutil.GenerateTestKey(t, 1)
	p := testutil.NewScriptedPrompter(nil, nil)

	a, err := ResolveAddAccessKey(p, &AddAccessKeyInput{
		PublicKey:  Some(keys.MustParsePublicKey(key.PublicKey.String())),
		Nonce:      Some(uint64(5)),
		Permission: &PermissionInput{Kind: KindFullAccess},
	})
	require.NoError(t, err)
	require.Empty(t, p.Asked(), "no prompts expected when everything is supplied")

	require.True(t, a.PublicKey().Equal(key.PublicKey))
	require.Equal(t, uint64(5), a.Nonce())
	require.Equal(t, KindFullAccess, a.Permission().Kind())
	_, isFC := a.Permission().FunctionCall()
	require.False(t, isFC)
}

func TestResolvePermission_FunctionCallEmptyMethodsNoAllowance(t *testing.T) {
	p := testutil.NewScriptedPrompter(nil, nil)
	perm, err := ResolvePermission(p, &PermissionInput{
		Kind: KindFunctionCall,
		FunctionCall: FunctionCallInput{
			ReceiverID:  Some(near.AccountID("app.testnet")),
			MethodNames: Some([]string{}),
			Allowance:   Some[*near.Balance](nil),
		},
	})
	require.NoError(t, err)
	require.Empty(t, p.Asked())

	require.Equal(t, KindFunctionCall, perm.Kind())
	require.NotEqual(t, FullAccess().Kind(), perm.Kind())
	fc, ok := perm.FunctionCall()
	require.True(t, ok)
	require.Nil(t, fc.Allowance)
	require.NotNil(t, fc.MethodNames)
	require.Empty(t, fc.MethodNames)
	require.Equal(t, near.AccountID("app.testnet"), fc.ReceiverID)
}

func TestResolveAddAccessKey_Interactive(t *testing.T) {
	key := testutil.GenerateTestKey(t, 2)
	p := testutil.NewScriptedPrompter([]string{
		key.PublicKey.String(),
		"12",
		"app.testnet",
		"vote, get_status",
		"0.25 NEAR",
	}, []int{0})

	a, err := ResolveAddAccessKey(p, nil)
	require.NoError(t, err)

	require.Equal(t, []string{PublicKeyLabel, NonceLabel, PermissionMenuLabel, ReceiverLabel, MethodNamesLabel, AllowanceLabel}, p.Asked())
	require.Equal(t, [][]string{{"A permission with function call", "A permission with full access"}}, p.Menus())

	require.True(t, a.PublicKey().Equal(key.PublicKey))
	require.Equal(t, uint64(12), a.Nonce())
	fc, ok := a.Permission().FunctionCall()
	require.True(t, ok)
	require.Equal(t, []string{"vote", "get_status"}, fc.MethodNames)
	require.Equal(t, "0.25 NEAR", fc.Allowance.String())
}

func TestResolveAddAccessKey_RepromptsOnBadInput(t *testing.T) {
	key := testutil.GenerateTestKey(t, 3)
	p := testutil.NewScriptedPrompter([]string{
		"not-a-key",
		"ed25519:1111",
		key.PublicKey.String(),
		"-1",
		"abc",
		"18446744073709551615",
	}, []int{1})

	a, err := ResolveAddAccessKey(p, &AddAccessKeyInput{})
	require.NoError(t, err)
	require.Equal(t, uint64(18446744073709551615), a.Nonce())
	require.Equal(t, KindFullAccess, a.Permission().Kind())
	require.Equal(t, []string{
		PublicKeyLabel, PublicKeyLabel, PublicKeyLabel,
		NonceLabel, NonceLabel, NonceLabel,
		PermissionMenuLabel,
	}, p.Asked())
	require.Contains(t, p.Output(), "invalid public key")
	require.Contains(t, p.Output(), "invalid nonce")
}

func TestResolvePermission_FunctionCallPrompts(t *testing.T) {
	tests := []struct {
		name          string
		inputs        []string
		wantReceiver  near.AccountID
		wantMethods   []string
		wantAllowance string
		wantAsked     int
	}{
		{
			name:         "empty answers mean any method and no limit",
			inputs:       []string{"app.testnet", "", ""},
			wantReceiver: "app.testnet",
			wantMethods:  []string{},
			wantAsked:    3,
		},
		{
			name:          "invalid receiver and allowance are asked again",
			inputs:        []string{"Bad Receiver", "app.testnet", "a,,b", "lots", "0", "1000 yoctoNEAR"},
			wantReceiver:  "app.testnet",
			wantMethods:   []string{"a", "b"},
			wantAllowance: "0.000000000000000000001 NEAR",
			wantAsked:     6,
		},
		{
			name:         "bad method list is asked again",
			inputs:       []string{"app.testnet", "has space", "ok", ""},
			wantReceiver: "app.testnet",
			wantMethods:  []string{"ok"},
			wantAsked:    4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := testutil.NewScriptedPrompter(tt.inputs, nil)
			perm, err := ResolvePermission(p, &PermissionInput{Kind: KindFunctionCall})
			require.NoError(t, err)
			require.Len(t, p.Asked(), tt.wantAsked)

			fc, ok := perm.FunctionCall()
			require.True(t, ok)
			require.Equal(t, tt.wantReceiver, fc.ReceiverID)
			require.Equal(t, tt.wantMethods, fc.MethodNames)
			if tt.wantAllowance == "" {
				require.Nil(t, fc.Allowance)
			} else {
				require.NotNil(t, fc.Allowance)
				require.Equal(t, tt.wantAllowance, fc.Allowance.String())
			}
		})
	}
}

func TestResolvePermission_MenuChoiceStartsEmpty(t *testing.T) {
	// Fields left over from a different kind are not carried into the
	// variant picked from the menu.
	p := testutil.NewScriptedPrompter([]string{"menu.testnet", "", ""}, []int{0})
	perm, err := ResolvePermission(p, &PermissionInput{
		FunctionCall: FunctionCallInput{
			ReceiverID:  Some(near.AccountID("stale.testnet")),
			MethodNames: Some([]string{"stale"}),
		},
	})
	require.NoError(t, err)
	require.Equal(t, []string{PermissionMenuLabel, ReceiverLabel, MethodNamesLabel, AllowanceLabel}, p.Asked())

	fc, ok := perm.FunctionCall()
	require.True(t, ok)
	require.Equal(t, near.AccountID("menu.testnet"), fc.ReceiverID)
	require.Empty(t, fc.MethodNames)
	require.Nil(t, fc.Allowance)
}

func TestResolvePermission_PartialFunctionCall(t *testing.T) {
	// Receiver supplied, methods and allowance asked.
	p := testutil.NewScriptedPrompter([]string{"ft_transfer", "2 NEAR"}, nil)
	perm, err := ResolvePermission(p, &PermissionInput{
		Kind:         KindFunctionCall,
		FunctionCall: FunctionCallInput{ReceiverID: Some(near.AccountID("token.testnet"))},
	})
	require.NoError(t, err)
	require.Equal(t, []string{MethodNamesLabel, AllowanceLabel}, p.Asked())
	fc, _ := perm.FunctionCall()
	require.Equal(t, "2 NEAR", fc.Allowance.String())
}

func TestResolvePermission_SuppliedValuesAreValidated(t *testing.T) {
	p := testutil.NewScriptedPrompter(nil, nil)

	_, err := ResolvePermission(p, &PermissionInput{
		Kind:         KindFunctionCall,
		FunctionCall: FunctionCallInput{ReceiverID: Some(near.AccountID("NOT VALID"))},
	})
	require.ErrorIs(t, err, near.ErrInvalidAccountID)

	_, err = ResolvePermission(p, &PermissionInput{
		Kind: KindFunctionCall,
		FunctionCall: FunctionCallInput{
			ReceiverID:  Some(near.AccountID("app.testnet")),
			MethodNames: Some([]string{"bad name"}),
		},
	})
	require.ErrorIs(t, err, ErrInvalidMethodName)

	zero := balance(t, "0")
	_, err = ResolvePermission(p, &PermissionInput{
		Kind: KindFunctionCall,
		FunctionCall: FunctionCallInput{
			ReceiverID:  Some(near.AccountID("app.testnet")),
			MethodNames: Some([]string{}),
			Allowance:   Some(zero),
		},
	})
	require.ErrorIs(t, err, near.ErrInvalidBalance)

	_, err = ResolvePermission(p, &PermissionInput{Kind: PermissionKind(99)})
	require.ErrorIs(t, err, ErrUnknownPermission)
	require.Empty(t, p.Asked())
}

func TestResolve_Aborted(t *testing.T) {
	p := testutil.NewScriptedPrompter(nil, nil)
	_, err := ResolvePermission(p, nil)
	require.ErrorIs(t, err, prompt.ErrAborted)

	p = testutil.NewScriptedPrompter([]string{"app.testnet"}, nil)
	_, err = ResolvePermission(p, &PermissionInput{Kind: KindFunctionCall})
	require.True(t, errors.Is(err, prompt.ErrAborted))

	_, err = ResolveAddAccessKey(testutil.NewScriptedPrompter(nil, nil), nil)
	require.ErrorIs(t, err, prompt.ErrAborted)
}

func TestPermissionTableOrder(t *testing.T) {
	require.Equal(t, []string{"A permission with function call", "A permission with full access"}, PermissionLabels())
}

func TestFunctionCall_DefensiveCopies(t *testing.T) {
	methods := []string{"a"}
	perm := FunctionCall(FunctionCallPermission{ReceiverID: "x.testnet", MethodNames: methods})
	methods[0] = "changed"

	fc, _ := perm.FunctionCall()
	require.Equal(t, []string{"a"}, fc.MethodNames)
	fc.MethodNames[0] = "mutated"
	again, _ := perm.FunctionCall()
	require.Equal(t, []string{"a"}, again.MethodNames)

	nilMethods := FunctionCall(FunctionCallPermission{ReceiverID: "x.testnet"})
	fc, _ = nilMethods.FunctionCall()
	require.NotNil(t, fc.MethodNames)
}

func TestAddAccessKeyAction_JSON(t *testing.T) {
	key := testutil.GenerateTestKey(t, 4)

	full, err := NewAddAccessKeyAction(key.PublicKey, 5, FullAccess())
	require.NoError(t, err)
	data, err := json.Marshal(full)
	require.NoError(t, err)
	require.JSONEq(t, `{"AddKey":{"public_key":"`+key.PublicKey.String()+`","access_key":{"nonce":5,"permission":"FullAccess"}}}`, string(data))

	fc, err := NewAddAccessKeyAction(key.PublicKey, 0, FunctionCall(FunctionCallPermission{
		Allowance:   balance(t, "1 NEAR"),
		ReceiverID:  "app.testnet",
		MethodNames: []string{"vote"},
	}))
	require.NoError(t, err)
	data, err = json.Marshal(fc)
	require.NoError(t, err)
	require.JSONEq(t, `{"AddKey":{"public_key":"`+key.PublicKey.String()+`","access_key":{"nonce":0,"permission":{"FunctionCall":{"allowance":"1000000000000000000000000","receiver_id":"app.testnet","method_names":["vote"]}}}}}`, string(data))

	unlimited, err := NewAddAccessKeyAction(key.PublicKey, 0, FunctionCall(FunctionCallPermission{ReceiverID: "app.testnet"}))
	require.NoError(t, err)
	data, err = json.Marshal(unlimited)
	require.NoError(t, err)
	require.Contains(t, string(data), `"allowance":null`)
	require.Contains(t, string(data), `"method_names":[]`)
}

func TestNewAddAccessKeyAction_Invalid(t *testing.T) {
	key := testutil.GenerateTestKey(t, 5)
	_, err := NewAddAccessKeyAction(keys.PublicKey{}, 1, FullAccess())
	require.ErrorIs(t, err, keys.ErrInvalidPublicKey)

	_, err = NewAddAccessKeyAction(key.PublicKey, 1, AccessKeyPermission{})
	require.ErrorIs(t, err, ErrUnknownPermission)
}

func TestPermission_String(t *testing.T) {
	require.Equal(t, "full access", FullAccess().String())
	require.Equal(t, "only do [vote] function calls on app.testnet with no limit",
		FunctionCall(FunctionCallPermission{ReceiverID: "app.testnet", MethodNames: []string{"vote"}}).String())
	require.Equal(t, "only do [] function calls on app.testnet with an allowance of 1 NEAR",
		FunctionCall(FunctionCallPermission{ReceiverID: "app.testnet", Allowance: balance(t, "1NEAR")}).String())
}

func TestParseMethodNames(t *testing.T) {
	got, err := ParseMethodNames("  ")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Empty(t, got)

	got, err = ParseMethodNames(" a , b,c ")
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b", "c"}, got)

	_, err = ParseMethodNames("a b")
	require.ErrorIs(t, err, ErrInvalidMethodName)
}
