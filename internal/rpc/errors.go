// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package rpc

import (
	"errors"
	"fmt"
	"strings"
)

// Ledger-side causes callers commonly branch on. Match with errors.Is.
var (
	ErrUnknownAccount   = errors.New("UNKNOWN_ACCOUNT")
	ErrUnknownAccessKey = errors.New("UNKNOWN_ACCESS_KEY")
	ErrUnknownBlock     = errors.New("UNKNOWN_BLOCK")
)

// TransportError means the query could not be completed: network failure,
// unexpected HTTP status, or an undecodable response.
type TransportError struct {
	Purpose string
	Err     error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("Failed to fetch query for %s: %v", e.Purpose, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// QueryError is an error reported by the ledger itself, such as an account
// that does not exist. Purpose names the query like TransportError does.
type QueryError struct {
	Purpose string
	Name    string // e.g. HANDLER_ERROR
	Cause   string // e.g. UNKNOWN_ACCOUNT
	Message string
}

func (e *QueryError) Error() string {
	var b strings.Builder
	if e.Purpose != "" {
		b.WriteString("Failed to fetch query for " + e.Purpose + ": ")
	}
	b.WriteString("query failed")
	if e.Cause != "" {
		b.WriteString(": " + e.Cause)
	} else if e.Name != "" {
		b.WriteString(": " + e.Name)
	}
	if e.Message != "" {
		b.WriteString(" (" + e.Message + ")")
	}
	return b.String()
}

// Is matches the sentinel for the ledger cause.
func (e *QueryError) Is(target error) bool {
	switch target {
	case ErrUnknownAccount, ErrUnknownAccessKey, ErrUnknownBlock:
		return e.Cause == target.Error()
	}
	return false
}

// rpcError is the JSON-RPC error object.
type rpcError struct {
	Name    string         `json:"name"`
	Code    int            `json:"code"`
	Message string         `json:"message"`
	Data    any            `json:"data"`
	Cause   *rpcErrorCause `json:"cause"`
}

type rpcErrorCause struct {
	Name string `json:"name"`
}

func (e *rpcError) toQueryError() *QueryError {
	qe := &QueryError{Name: e.Name, Message: e.Message}
	if e.Cause != nil {
		qe.Cause = e.Cause.Name
	}
	if s, ok := e.Data.(string); ok && s != "" {
		qe.Message = s
	}
	return qe
}

// legacyQueryError handles nodes that report query failures inside the
// result object as a plain string.
func legacyQueryError(msg string) *QueryError {
	qe := &QueryError{Name: "QUERY_ERROR", Message: msg}
	lower := strings.ToLower(msg)
	switch {
	case strings.Contains(lower, "access key") && strings.Contains(lower, "does not exist"):
		qe.Cause = ErrUnknownAccessKey.Error()
	case strings.Contains(lower, "does not exist"):
		qe.Cause = ErrUnknownAccount.Error()
	case strings.Contains(lower, "block") && strings.Contains(lower, "not found"):
		qe.Cause = ErrUnknownBlock.Error()
	}
	return qe
}
