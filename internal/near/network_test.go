// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package near

import "testing"

func TestLoginURL(t *testing.T) {
	tests := []struct {
		name   string
		wallet string
		want   string
	}{
		{
			name:   "trailing slash",
			wallet: "https://wallet.testnet.near.org/",
			want:   "https://wallet.testnet.near.org/login/?title=NEAR+CLI&public_key=ed25519%3AAbC",
		},
		{
			name:   "no path",
			wallet: "https://wallet.testnet.near.org",
			want:   "https://wallet.testnet.near.org/login/?title=NEAR+CLI&public_key=ed25519%3AAbC",
		},
		{
			name:   "nested path",
			wallet: "http://localhost:8080/wallet/",
			want:   "http://localhost:8080/wallet/login/?title=NEAR+CLI&public_key=ed25519%3AAbC",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nc, err := NewNetworkConfig("testnet", tt.wallet, "https://rpc.example", "https://archival.example", "")
			if err != nil {
				t.Fatalf("NewNetworkConfig() error = %v", err)
			}
			if got := nc.LoginURL("NEAR CLI", "ed25519:AbC"); got != tt.want {
				t.Errorf("LoginURL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewNetworkConfigValidation(t *testing.T) {
	tests := []struct {
		name                          string
		netName, wallet, rpc, archive string
		wantErr                       bool
	}{
		{"ok", "testnet", "https://w/", "https://r", "https://a", false},
		{"missing name", "", "https://w/", "https://r", "https://a", true},
		{"missing wallet", "testnet", "", "https://r", "https://a", true},
		{"bad scheme", "testnet", "ftp://w/", "https://r", "https://a", true},
		{"missing archival", "testnet", "https://w/", "https://r", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewNetworkConfig(tt.netName, tt.wallet, tt.rpc, tt.archive, "")
			if (err != nil) != tt.wantErr {
				t.Errorf("NewNetworkConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNetworkConfigAccessors(t *testing.T) {
	nc, err := NewNetworkConfig("mainnet", "https://w/", "https://r", "https://a", "https://e/")
	if err != nil {
		t.Fatal(err)
	}
	if nc.Name() != "mainnet" || nc.RPCURL() != "https://r" || nc.ArchivalRPCURL() != "https://a" || nc.ExplorerURL() != "https://e/" {
		t.Errorf("unexpected accessors: %+v", nc)
	}
}
