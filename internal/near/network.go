// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package near

import (
	"fmt"
	"net/url"
	"strings"
)

// NetworkConfig holds the endpoints of one network. It is immutable
// once built; accessors return copies.
type NetworkConfig struct {
	name        string
	walletURL   url.URL
	rpcURL      url.URL
	archivalURL url.URL
	explorerURL url.URL
}

// NewNetworkConfig parses and validates the endpoint URLs.
// explorer may be empty.
func NewNetworkConfig(name, wallet, rpc, archival, explorer string) (NetworkConfig, error) {
	if name == "" {
		return NetworkConfig{}, fmt.Errorf("network name is empty")
	}
	nc := NetworkConfig{name: name}
	for _, f := range []struct {
		label    string
		raw      string
		dst      *url.URL
		optional bool
	}{
		{"wallet_url", wallet, &nc.walletURL, false},
		{"rpc_url", rpc, &nc.rpcURL, false},
		{"archival_rpc_url", archival, &nc.archivalURL, false},
		{"explorer_url", explorer, &nc.explorerURL, true},
	} {
		if f.raw == "" {
			if f.optional {
				continue
			}
			return NetworkConfig{}, fmt.Errorf("%s is empty", f.label)
		}
		u, err := url.Parse(f.raw)
		if err != nil {
			return NetworkConfig{}, fmt.Errorf("invalid %s: %w", f.label, err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return NetworkConfig{}, fmt.Errorf("invalid %s: scheme must be http or https", f.label)
		}
		*f.dst = *u
	}
	return nc, nil
}

func (n NetworkConfig) Name() string           { return n.name }
func (n NetworkConfig) WalletURL() string      { return n.walletURL.String() }
func (n NetworkConfig) RPCURL() string         { return n.rpcURL.String() }
func (n NetworkConfig) ArchivalRPCURL() string { return n.archivalURL.String() }
func (n NetworkConfig) ExplorerURL() string    { return n.explorerURL.String() }

// LoginURL builds the wallet authorization URL:
//
//	<wallet>/login/?title=<title>&public_key=<key>
//
// Parameters are emitted in that order. The wallet also understands a
// success_url callback, which is not sent because nothing listens for it.
func (n NetworkConfig) LoginURL(title, publicKey string) string {
	u := n.walletURL.ResolveReference(&url.URL{Path: "login/"})
	var q strings.Builder
	q.WriteString("title=")
	q.WriteString(url.QueryEscape(title))
	q.WriteString("&public_key=")
	q.WriteString(url.QueryEscape(publicKey))
	u.RawQuery = q.String()
	return u.String()
}
