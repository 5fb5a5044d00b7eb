// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package rpc

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/near-go/nearcli/internal/near"
)

// BlockReference selects the chain state a query runs against: either a
// finality level or a specific block height.
type BlockReference struct {
	finality string
	height   uint64
	byHeight bool
}

// Finality references the latest block at the given finality level
// ("optimistic", "near-final" or "final").
func Finality(level string) BlockReference {
	return BlockReference{finality: level}
}

// FinalityFinal references the latest final block.
var FinalityFinal = Finality("final")

// BlockHeight references a specific block.
func BlockHeight(height uint64) BlockReference {
	return BlockReference{height: height, byHeight: true}
}

// Height returns the block height and whether the reference is by height.
func (b BlockReference) Height() (uint64, bool) { return b.height, b.byHeight }

func (b BlockReference) String() string {
	if b.byHeight {
		return "block " + strconv.FormatUint(b.height, 10)
	}
	return "finality " + b.finality
}

func (b BlockReference) apply(params map[string]any) {
	if b.byHeight {
		params["block_id"] = b.height
		return
	}
	finality := b.finality
	if finality == "" {
		finality = FinalityFinal.finality
	}
	params["finality"] = finality
}

// RequestKind is the query request_type.
type RequestKind string

const (
	KindViewAccount       RequestKind = "view_account"
	KindViewAccessKeyList RequestKind = "view_access_key_list"
	KindViewAccessKey     RequestKind = "view_access_key"
)

// purpose is the phrase used in transport error messages.
func (k RequestKind) purpose() string {
	switch k {
	case KindViewAccount:
		return "view account"
	case KindViewAccessKeyList:
		return "view key list"
	case KindViewAccessKey:
		return "view access key"
	default:
		return string(k)
	}
}

// QueryRequest is a single view query.
type QueryRequest struct {
	Kind      RequestKind
	AccountID near.AccountID
	// PublicKey is only used by KindViewAccessKey.
	PublicKey string
}

// ViewAccount requests the account's balance and storage state.
func ViewAccount(id near.AccountID) QueryRequest {
	return QueryRequest{Kind: KindViewAccount, AccountID: id}
}

// ViewAccessKeyList requests every access key on an account.
func ViewAccessKeyList(id near.AccountID) QueryRequest {
	return QueryRequest{Kind: KindViewAccessKeyList, AccountID: id}
}

// ViewAccessKey requests a single access key.
func ViewAccessKey(id near.AccountID, publicKey string) QueryRequest {
	return QueryRequest{Kind: KindViewAccessKey, AccountID: id, PublicKey: publicKey}
}

func (q QueryRequest) params(block BlockReference) map[string]any {
	params := map[string]any{
		"request_type": string(q.Kind),
		"account_id":   q.AccountID.String(),
	}
	if q.Kind == KindViewAccessKey {
		params["public_key"] = q.PublicKey
	}
	block.apply(params)
	return params
}

// QueryResponse is a successful query result. The kind-specific payload is
// decoded on demand through the typed accessors.
type QueryResponse struct {
	Kind        RequestKind
	BlockHeight uint64
	BlockHash   string
	raw         json.RawMessage
}

type queryEnvelope struct {
	BlockHeight uint64   `json:"block_height"`
	BlockHash   string   `json:"block_hash"`
	Error       string   `json:"error,omitempty"`
	Logs        []string `json:"logs,omitempty"`
}

func (r *QueryResponse) decode(want RequestKind, v any) error {
	if r.Kind != want {
		return fmt.Errorf("response is %s, not %s", r.Kind, want)
	}
	if err := json.Unmarshal(r.raw, v); err != nil {
		return fmt.Errorf("failed to decode %s result: %w", want, err)
	}
	return nil
}

// Account decodes a view_account result.
func (r *QueryResponse) Account() (*AccountView, error) {
	var v AccountView
	if err := r.decode(KindViewAccount, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// AccessKeyList decodes a view_access_key_list result.
func (r *QueryResponse) AccessKeyList() (*AccessKeyList, error) {
	var v AccessKeyList
	if err := r.decode(KindViewAccessKeyList, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// AccessKey decodes a view_access_key result.
func (r *QueryResponse) AccessKey() (*AccessKeyView, error) {
	var v AccessKeyView
	if err := r.decode(KindViewAccessKey, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// AccountView is the on-chain account state.
type AccountView struct {
	Amount        near.Balance `json:"amount"`
	Locked        near.Balance `json:"locked"`
	CodeHash      string       `json:"code_hash"`
	StorageUsage  uint64       `json:"storage_usage"`
	StoragePaidAt uint64       `json:"storage_paid_at"`
}

// AccessKeyList holds every key registered on an account.
type AccessKeyList struct {
	Keys []AccessKeyInfo `json:"keys"`
}

// Contains reports whether publicKey (canonical encoding) is registered.
func (l *AccessKeyList) Contains(publicKey string) bool {
	for _, k := range l.Keys {
		if k.PublicKey == publicKey {
			return true
		}
	}
	return false
}

// AccessKeyInfo pairs a public key with its access key state. The key is
// kept as a string since accounts may hold curves this client does not
// parse.
type AccessKeyInfo struct {
	PublicKey string        `json:"public_key"`
	AccessKey AccessKeyView `json:"access_key"`
}

// AccessKeyView is the state of one access key.
type AccessKeyView struct {
	Nonce      uint64                  `json:"nonce"`
	Permission AccessKeyPermissionView `json:"permission"`
}

// AccessKeyPermissionView is either "FullAccess" or {"FunctionCall": {...}}.
type AccessKeyPermissionView struct {
	FullAccess   bool
	FunctionCall *FunctionCallPermissionView
}

// FunctionCallPermissionView is a restricted permission as reported by the
// ledger. A nil Allowance means unlimited.
type FunctionCallPermissionView struct {
	Allowance   *near.Balance `json:"allowance"`
	ReceiverID  string        `json:"receiver_id"`
	MethodNames []string      `json:"method_names"`
}

const fullAccessTag = "FullAccess"

// UnmarshalJSON decodes the externally tagged permission enum.
func (p *AccessKeyPermissionView) UnmarshalJSON(data []byte) error {
	var tag string
	if err := json.Unmarshal(data, &tag); err == nil {
		if tag != fullAccessTag {
			return fmt.Errorf("unknown permission %q", tag)
		}
		*p = AccessKeyPermissionView{FullAccess: true}
		return nil
	}

	var obj struct {
		FunctionCall *FunctionCallPermissionView `json:"FunctionCall"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("invalid permission: %w", err)
	}
	if obj.FunctionCall == nil {
		return fmt.Errorf("invalid permission: %s", data)
	}
	*p = AccessKeyPermissionView{FunctionCall: obj.FunctionCall}
	return nil
}

// MarshalJSON encodes the permission in the ledger's format.
func (p AccessKeyPermissionView) MarshalJSON() ([]byte, error) {
	if p.FunctionCall != nil {
		return json.Marshal(map[string]*FunctionCallPermissionView{"FunctionCall": p.FunctionCall})
	}
	return json.Marshal(fullAccessTag)
}
