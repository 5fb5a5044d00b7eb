// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

// Package action builds the add-access-key transaction action, resolving
// any field not supplied up front through interactive prompts.
package action

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/near-go/nearcli/internal/near"
	"github.com/near-go/nearcli/internal/prompt"
)

// ErrUnknownPermission is returned for a permission kind with no resolver
// or processor.
var ErrUnknownPermission = errors.New("unknown permission kind")

// PermissionKind is the stable discriminant of AccessKeyPermission. The
// zero value means "not chosen yet".
type PermissionKind int

const (
	KindFunctionCall PermissionKind = iota + 1
	KindFullAccess
)

func (k PermissionKind) String() string {
	switch k {
	case KindFunctionCall:
		return "FunctionCall"
	case KindFullAccess:
		return "FullAccess"
	case 0:
		return "Unspecified"
	default:
		return fmt.Sprintf("PermissionKind(%d)", int(k))
	}
}

// AccessKeyPermission is either full access or a function-call permission.
// Exactly one variant is active.
type AccessKeyPermission struct {
	kind         PermissionKind
	functionCall FunctionCallPermission
}

// FunctionCallPermission restricts a key to calling methods on one
// contract. A nil Allowance is unlimited; empty MethodNames allows any
// method.
type FunctionCallPermission struct {
	Allowance   *near.Balance
	ReceiverID  near.AccountID
	MethodNames []string
}

// FullAccess returns the unrestricted permission.
func FullAccess() AccessKeyPermission {
	return AccessKeyPermission{kind: KindFullAccess}
}

// FunctionCall returns a restricted permission. MethodNames is copied and
// never nil.
func FunctionCall(fc FunctionCallPermission) AccessKeyPermission {
	methods := make([]string, len(fc.MethodNames))
	copy(methods, fc.MethodNames)
	fc.MethodNames = methods
	if fc.Allowance != nil {
		a := *fc.Allowance
		fc.Allowance = &a
	}
	return AccessKeyPermission{kind: KindFunctionCall, functionCall: fc}
}

// Kind returns the active variant.
func (p AccessKeyPermission) Kind() PermissionKind { return p.kind }

// FunctionCall returns the function-call payload when that variant is active.
func (p AccessKeyPermission) FunctionCall() (FunctionCallPermission, bool) {
	if p.kind != KindFunctionCall {
		return FunctionCallPermission{}, false
	}
	fc := p.functionCall
	fc.MethodNames = append([]string{}, fc.MethodNames...)
	return fc, true
}

// String describes the permission the way account listings do.
func (p AccessKeyPermission) String() string {
	switch p.kind {
	case KindFullAccess:
		return "full access"
	case KindFunctionCall:
		fc := p.functionCall
		allowance := "with no limit"
		if fc.Allowance != nil {
			allowance = "with an allowance of " + fc.Allowance.String()
		}
		return fmt.Sprintf("only do %v function calls on %s %s", fc.MethodNames, fc.ReceiverID, allowance)
	default:
		return p.kind.String()
	}
}

type functionCallJSON struct {
	Allowance   *near.Balance `json:"allowance"`
	ReceiverID  string        `json:"receiver_id"`
	MethodNames []string      `json:"method_names"`
}

// MarshalJSON encodes the permission in the ledger's externally tagged form.
func (p AccessKeyPermission) MarshalJSON() ([]byte, error) {
	switch p.kind {
	case KindFullAccess:
		return json.Marshal("FullAccess")
	case KindFunctionCall:
		fc := p.functionCall
		return json.Marshal(map[string]functionCallJSON{
			"FunctionCall": {
				Allowance:   fc.Allowance,
				ReceiverID:  fc.ReceiverID.String(),
				MethodNames: fc.MethodNames,
			},
		})
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownPermission, p.kind)
	}
}

// PermissionInput is a possibly partial permission. A zero Kind means the
// user picks one.
type PermissionInput struct {
	Kind         PermissionKind
	FunctionCall FunctionCallInput
}

// PermissionMenuLabel is the question asked when no kind is supplied.
const PermissionMenuLabel = "Select a permission that you want to add to the access key:"

type permissionEntry struct {
	kind    PermissionKind
	label   string
	resolve func(p prompt.Prompter, in *FunctionCallInput) (AccessKeyPermission, error)
}

// permissionTable is the single dispatch table for permission variants;
// the menu lists entries in this order.
var permissionTable = []permissionEntry{
	{KindFunctionCall, "A permission with function call", resolveFunctionCall},
	{KindFullAccess, "A permission with full access", resolveFullAccess},
}

// PermissionLabels returns the menu labels in declared order.
func PermissionLabels() []string {
	labels := make([]string, len(permissionTable))
	for i, e := range permissionTable {
		labels[i] = e.label
	}
	return labels
}

func lookupPermission(kind PermissionKind) (permissionEntry, bool) {
	for _, e := range permissionTable {
		if e.kind == kind {
			return e, true
		}
	}
	return permissionEntry{}, false
}

// ResolvePermission completes partial, asking for the kind and any missing
// variant fields. Supplied values are used as given and never prompted for.
// A kind picked from the menu starts from empty fields.
func ResolvePermission(p prompt.Prompter, partial *PermissionInput) (AccessKeyPermission, error) {
	var in PermissionInput
	if partial != nil {
		in = *partial
	}

	var entry permissionEntry
	if in.Kind == 0 {
		chosen, err := prompt.Choose(p, PermissionMenuLabel, permissionTable, func(e permissionEntry) string { return e.label })
		if err != nil {
			return AccessKeyPermission{}, err
		}
		entry = chosen
		in.FunctionCall = FunctionCallInput{}
	} else {
		found, ok := lookupPermission(in.Kind)
		if !ok {
			return AccessKeyPermission{}, fmt.Errorf("%w: %s", ErrUnknownPermission, in.Kind)
		}
		entry = found
	}
	return entry.resolve(p, &in.FunctionCall)
}

func resolveFullAccess(prompt.Prompter, *FunctionCallInput) (AccessKeyPermission, error) {
	return FullAccess(), nil
}
