// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/near-go/nearcli/internal/prompt"
)

// MockAccount is the state the mock ledger reports for one account.
type MockAccount struct {
	Amount       string // yoctoNEAR
	Locked       string
	CodeHash     string // base58; defaults to the all-zero hash
	StorageUsage uint64
	Keys         []MockAccessKey
}

// MockAccessKey is one access key on a mock account. Permission is encoded
// as-is: "FullAccess" or map[string]any{"FunctionCall": ...}.
type MockAccessKey struct {
	PublicKey  string
	Nonce      uint64
	Permission any
}

// MockRequest records a query the mock ledger received.
type MockRequest struct {
	RequestType string
	AccountID   string
	Finality    string
	BlockID     uint64
}

// MockLedger is an httptest JSON-RPC server answering view queries.
type MockLedger struct {
	Server *httptest.Server

	// Height is reported as block_height; queries for later blocks fail
	// with UNKNOWN_BLOCK.
	Height uint64

	// LegacyErrors reports query failures inside the result object the way
	// older nodes do, instead of as a JSON-RPC error.
	LegacyErrors bool

	// StatusCode, when non-zero, is returned for every request with an
	// empty body.
	StatusCode int

	mu       sync.Mutex
	accounts map[string]*MockAccount
	requests []MockRequest
}

// NewMockLedger starts a mock ledger that is closed when the test ends.
func NewMockLedger(t *testing.T) *MockLedger {
	t.Helper()

	m := &MockLedger{
		Height:   100,
		accounts: make(map[string]*MockAccount),
	}
	m.Server = httptest.NewServer(http.HandlerFunc(m.handle))
	t.Cleanup(m.Server.Close)
	return m
}

// URL returns the server URL.
func (m *MockLedger) URL() string {
	return m.Server.URL
}

// AddAccount registers an account with no keys.
func (m *MockLedger) AddAccount(id string, acct MockAccount) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a := acct
	m.accounts[id] = &a
}

// AddKey registers a key on an account, creating the account if needed.
func (m *MockLedger) AddKey(id, publicKey string, nonce uint64, permission any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	acct, ok := m.accounts[id]
	if !ok {
		acct = &MockAccount{Amount: "0", Locked: "0"}
		m.accounts[id] = acct
	}
	acct.Keys = append(acct.Keys, MockAccessKey{PublicKey: publicKey, Nonce: nonce, Permission: permission})
}

// Requests returns the queries received so far.
func (m *MockLedger) Requests() []MockRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]MockRequest, len(m.requests))
	copy(out, m.requests)
	return out
}

type mockRPCRequest struct {
	ID     string          `json:"id"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params"`
}

type mockQueryParams struct {
	RequestType string  `json:"request_type"`
	AccountID   string  `json:"account_id"`
	PublicKey   string  `json:"public_key"`
	Finality    string  `json:"finality"`
	BlockID     *uint64 `json:"block_id"`
}

func (m *MockLedger) handle(w http.ResponseWriter, r *http.Request) {
	if m.StatusCode != 0 {
		w.WriteHeader(m.StatusCode)
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req mockRPCRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Method != "query" {
		m.writeError(w, req.ID, "REQUEST_VALIDATION_ERROR", "METHOD_NOT_FOUND", "unknown method "+req.Method)
		return
	}

	var p mockQueryParams
	if err := json.Unmarshal(req.Params, &p); err != nil {
		m.writeError(w, req.ID, "REQUEST_VALIDATION_ERROR", "PARSE_ERROR", err.Error())
		return
	}

	m.mu.Lock()
	rec := MockRequest{RequestType: p.RequestType, AccountID: p.AccountID, Finality: p.Finality}
	if p.BlockID != nil {
		rec.BlockID = *p.BlockID
	}
	m.requests = append(m.requests, rec)
	acct, ok := m.accounts[p.AccountID]
	var snapshot MockAccount
	if ok {
		snapshot = *acct
		snapshot.Keys = append([]MockAccessKey(nil), acct.Keys...)
	}
	m.mu.Unlock()

	if p.BlockID != nil && *p.BlockID > m.Height {
		m.writeQueryError(w, req.ID, "UNKNOWN_BLOCK", fmt.Sprintf("DB Not Found Error: block %d not found", *p.BlockID))
		return
	}
	if !ok {
		m.writeQueryError(w, req.ID, "UNKNOWN_ACCOUNT", fmt.Sprintf("account %s does not exist while viewing", p.AccountID))
		return
	}

	result := map[string]any{
		"block_height": m.Height,
		"block_hash":   "9MzuZrRPW1BGpFnZJUJg6SzCrixPpJDfjsNeUobRXsLe",
	}
	switch p.RequestType {
	case "view_account":
		codeHash := snapshot.CodeHash
		if codeHash == "" {
			codeHash = "11111111111111111111111111111111"
		}
		result["amount"] = snapshot.Amount
		result["locked"] = snapshot.Locked
		result["code_hash"] = codeHash
		result["storage_usage"] = snapshot.StorageUsage
		result["storage_paid_at"] = 0
	case "view_access_key_list":
		keys := make([]map[string]any, 0, len(snapshot.Keys))
		for _, k := range snapshot.Keys {
			keys = append(keys, map[string]any{
				"public_key": k.PublicKey,
				"access_key": map[string]any{"nonce": k.Nonce, "permission": k.Permission},
			})
		}
		result["keys"] = keys
	case "view_access_key":
		found := false
		for _, k := range snapshot.Keys {
			if k.PublicKey == p.PublicKey {
				result["nonce"] = k.Nonce
				result["permission"] = k.Permission
				found = true
				break
			}
		}
		if !found {
			m.writeQueryError(w, req.ID, "UNKNOWN_ACCESS_KEY", fmt.Sprintf("access key %s does not exist while viewing", p.PublicKey))
			return
		}
	default:
		m.writeError(w, req.ID, "REQUEST_VALIDATION_ERROR", "PARSE_ERROR", "unknown request_type "+p.RequestType)
		return
	}

	m.writeJSON(w, map[string]any{"jsonrpc": "2.0", "id": req.ID, "result": result})
}

func (m *MockLedger) writeQueryError(w http.ResponseWriter, id, cause, msg string) {
	if m.LegacyErrors {
		m.writeJSON(w, map[string]any{
			"jsonrpc": "2.0",
			"id":      id,
			"result":  map[string]any{"error": msg, "logs": []string{}, "block_height": m.Height},
		})
		return
	}
	m.writeError(w, id, "HANDLER_ERROR", cause, msg)
}

func (m *MockLedger) writeError(w http.ResponseWriter, id, name, cause, msg string) {
	m.writeJSON(w, map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"error": map[string]any{
			"name":    name,
			"cause":   map[string]any{"name": cause, "info": map[string]any{}},
			"code":    -32000,
			"message": "Server error",
			"data":    msg,
		},
	})
}

func (m *MockLedger) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// ScriptedPrompter answers prompts from a fixed script and records what
// was asked. Input answers are consumed by Input, indexes by Select. When
// a script runs out the call fails with prompt.ErrAborted.
type ScriptedPrompter struct {
	Inputs  []string
	Choices []int

	mu      sync.Mutex
	asked   []string
	menus   [][]string
	printed strings.Builder
}

// NewScriptedPrompter returns a prompter that replays inputs and choices.
func NewScriptedPrompter(inputs []string, choices []int) *ScriptedPrompter {
	return &ScriptedPrompter{Inputs: inputs, Choices: choices}
}

// Input returns the next scripted answer.
func (p *ScriptedPrompter) Input(label string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.asked = append(p.asked, label)
	if len(p.Inputs) == 0 {
		return "", prompt.ErrAborted
	}
	answer := p.Inputs[0]
	p.Inputs = p.Inputs[1:]
	return answer, nil
}

// Select returns the next scripted index.
func (p *ScriptedPrompter) Select(label string, items []string) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.asked = append(p.asked, label)
	p.menus = append(p.menus, append([]string(nil), items...))
	if len(p.Choices) == 0 {
		return 0, prompt.ErrAborted
	}
	choice := p.Choices[0]
	p.Choices = p.Choices[1:]
	if choice < 0 || choice >= len(items) {
		return 0, fmt.Errorf("scripted choice %d out of range for %q", choice, label)
	}
	return choice, nil
}

// Printf records output.
func (p *ScriptedPrompter) Printf(format string, args ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(&p.printed, format, args...)
}

// Asked returns every prompt label in order.
func (p *ScriptedPrompter) Asked() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.asked...)
}

// Menus returns the item lists presented by Select, in order.
func (p *ScriptedPrompter) Menus() [][]string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([][]string(nil), p.menus...)
}

// Output returns everything written through Printf.
func (p *ScriptedPrompter) Output() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.printed.String()
}
