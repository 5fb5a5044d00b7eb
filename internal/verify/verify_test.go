// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package verify

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/near-go/nearcli/internal/near"
	"github.com/near-go/nearcli/internal/rpc"
	"github.com/near-go/nearcli/internal/testutil"
)

func testNetwork(t *testing.T, rpcURL string) near.NetworkConfig {
	t.Helper()
	n, err := near.NewNetworkConfig("testnet", "https://wallet.testnet.near.org", rpcURL, rpcURL, "")
	require.NoError(t, err)
	return n
}

func TestVerify(t *testing.T) {
	key := testutil.GenerateTestKey(t, 1)
	other := testutil.GenerateTestKey(t, 2)

	ledger := testutil.NewMockLedger(t)
	ledger.AddKey("alice.testnet", key.PublicKey.String(), 1, "FullAccess")
	ledger.AddKey("bob.testnet", other.PublicKey.String(), 1, "FullAccess")
	network := testNetwork(t, ledger.URL())
	v := New(nil)

	tests := []struct {
		name     string
		account  near.AccountID
		wantKind Kind
	}{
		{"registered", "alice.testnet", 0},
		{"key on another account", "bob.testnet", NotFound},
		{"unknown account", "ghost.testnet", NotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Verify(context.Background(), tt.account, key.PublicKey, network)
			if tt.wantKind == 0 {
				require.NoError(t, err)
				return
			}
			var ve *Error
			require.ErrorAs(t, err, &ve)
			require.Equal(t, tt.wantKind, ve.Kind)
			require.Equal(t, tt.account, ve.AccountID)
			require.ErrorIs(t, err, ErrNotFound)
			require.True(t, IsNotFound(err))
		})
	}

	for _, r := range ledger.Requests() {
		require.Equal(t, "view_access_key_list", r.RequestType)
		require.Equal(t, "final", r.Finality)
	}
}

func TestVerify_Transport(t *testing.T) {
	key := testutil.GenerateTestKey(t, 1)
	ledger := testutil.NewMockLedger(t)
	ledger.StatusCode = http.StatusServiceUnavailable

	err := New(nil).Verify(context.Background(), "alice.testnet", key.PublicKey, testNetwork(t, ledger.URL()))
	var ve *Error
	require.ErrorAs(t, err, &ve)
	require.Equal(t, Transport, ve.Kind)
	require.False(t, IsNotFound(err))
	var te *rpc.TransportError
	require.ErrorAs(t, err, &te)
}

type stubQuerier struct {
	calls int
	err   error
}

func (s *stubQuerier) Query(context.Context, rpc.BlockReference, rpc.QueryRequest) (*rpc.QueryResponse, error) {
	s.calls++
	return nil, s.err
}

func TestVerify_NoRetry(t *testing.T) {
	key := testutil.GenerateTestKey(t, 1)
	stub := &stubQuerier{err: errors.New("boom")}
	v := New(func(near.NetworkConfig) Querier { return stub })

	err := v.Verify(context.Background(), "alice.testnet", key.PublicKey, testNetwork(t, "http://127.0.0.1:1"))
	require.Error(t, err)
	require.Equal(t, 1, stub.calls)
	require.Equal(t, "transport", err.(*Error).Kind.String())
}

func TestLookup(t *testing.T) {
	key := testutil.GenerateTestKey(t, 1)
	other := testutil.GenerateTestKey(t, 2)

	ledger := testutil.NewMockLedger(t)
	ledger.AddKey("alice.testnet", key.PublicKey.String(), 9, map[string]any{
		"FunctionCall": map[string]any{"allowance": nil, "receiver_id": "app.testnet", "method_names": []string{"vote"}},
	})
	network := testNetwork(t, ledger.URL())
	v := New(nil)

	view, err := v.Lookup(context.Background(), "alice.testnet", key.PublicKey, network)
	require.NoError(t, err)
	require.Equal(t, uint64(9), view.Nonce)
	require.NotNil(t, view.Permission.FunctionCall)
	require.Equal(t, "app.testnet", view.Permission.FunctionCall.ReceiverID)

	_, err = v.Lookup(context.Background(), "alice.testnet", other.PublicKey, network)
	require.True(t, IsNotFound(err))
	require.ErrorIs(t, err, ErrNotFound)

	_, err = v.Lookup(context.Background(), "ghost.testnet", key.PublicKey, network)
	require.True(t, IsNotFound(err))

	ledger.StatusCode = http.StatusServiceUnavailable
	_, err = v.Lookup(context.Background(), "alice.testnet", key.PublicKey, network)
	var ve *Error
	require.ErrorAs(t, err, &ve)
	require.Equal(t, Transport, ve.Kind)
}
