// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

// Package view renders an account's state and access keys at a block.
package view

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/mr-tron/base58"

	"github.com/near-go/nearcli/internal/near"
	"github.com/near-go/nearcli/internal/rpc"
	"github.com/near-go/nearcli/internal/util"
)

// Querier runs ledger view queries. *rpc.Client satisfies it.
type Querier interface {
	Query(ctx context.Context, block rpc.BlockReference, q rpc.QueryRequest) (*rpc.QueryResponse, error)
}

// Summary is an account's state and keys as of one block.
type Summary struct {
	AccountID   near.AccountID
	BlockHeight uint64
	BlockHash   string
	Account     rpc.AccountView
	Keys        []rpc.AccessKeyInfo
}

// AccountSummary fetches the account and its access keys at block. Both
// queries run against the same block reference; for a height reference
// they see the same state.
func AccountSummary(ctx context.Context, q Querier, accountID near.AccountID, block rpc.BlockReference) (*Summary, error) {
	resp, err := q.Query(ctx, block, rpc.ViewAccount(accountID))
	if err != nil {
		return nil, err
	}
	acct, err := resp.Account()
	if err != nil {
		return nil, err
	}

	// Pin the key list to the block the account was read at.
	keysBlock := block
	if _, byHeight := block.Height(); !byHeight {
		keysBlock = rpc.BlockHeight(resp.BlockHeight)
	}
	keysResp, err := q.Query(ctx, keysBlock, rpc.ViewAccessKeyList(accountID))
	if err != nil {
		return nil, err
	}
	list, err := keysResp.AccessKeyList()
	if err != nil {
		return nil, err
	}

	return &Summary{
		AccountID:   accountID,
		BlockHeight: resp.BlockHeight,
		BlockHash:   resp.BlockHash,
		Account:     *acct,
		Keys:        list.Keys,
	}, nil
}

// NotDeployed is shown in place of the code hash for accounts without a
// contract.
const NotDeployed = "Contract code is not deployed to this account."

// CodeHash renders the contract code hash as hex, or NotDeployed.
func (s *Summary) CodeHash() string {
	raw, err := base58.Decode(s.Account.CodeHash)
	if err != nil {
		return s.Account.CodeHash
	}
	if len(raw) == 0 || bytes.Equal(raw, make([]byte, len(raw))) {
		return NotDeployed
	}
	return hex.EncodeToString(raw)
}

// Render writes the summary as text.
func (s *Summary) Render(w io.Writer) error {
	var b bytes.Buffer
	fmt.Fprintf(&b, "Account details for '%s' at block #%d (%s)\n", s.AccountID, s.BlockHeight, s.BlockHash)
	fmt.Fprintf(&b, "Native account balance: %s\n", s.Account.Amount)
	fmt.Fprintf(&b, "Validator stake: %s\n", s.Account.Locked)
	fmt.Fprintf(&b, "Storage used by the account: %s\n", util.FormatBytes(s.Account.StorageUsage))

	codeHash := s.CodeHash()
	if codeHash == NotDeployed {
		fmt.Fprintf(&b, "Contract: %s\n", NotDeployed)
	} else {
		fmt.Fprintf(&b, "Contract (SHA-256 checksum hex): %s\n", codeHash)
	}

	fmt.Fprintf(&b, "Number of access keys: %d\n", len(s.Keys))
	for i, k := range s.Keys {
		kind := "FullAccess"
		if k.AccessKey.Permission.FunctionCall != nil {
			kind = "FunctionCall"
		}
		fmt.Fprintf(&b, "%4d. %s (nonce: %d) is granted to %s\n",
			i+1, util.Colorize(k.PublicKey, kind, util.PermissionColor), k.AccessKey.Nonce, DescribePermission(k.AccessKey.Permission))
	}

	_, err := w.Write(b.Bytes())
	return err
}

// DescribePermission renders a permission as "full access" or
// "only do [m1 m2] function calls on <receiver> with ...".
func DescribePermission(p rpc.AccessKeyPermissionView) string {
	fc := p.FunctionCall
	if fc == nil {
		return "full access"
	}
	allowance := "with no limit"
	if fc.Allowance != nil {
		allowance = "with an allowance of " + fc.Allowance.String()
	}
	methods := fc.MethodNames
	if methods == nil {
		methods = []string{}
	}
	return fmt.Sprintf("only do %v function calls on %s %s", methods, fc.ReceiverID, allowance)
}
