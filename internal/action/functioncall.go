// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package action

import (
	"errors"
	"fmt"
	"strings"

	"github.com/near-go/nearcli/internal/near"
	"github.com/near-go/nearcli/internal/prompt"
)

// Prompt labels for the function-call variant.
const (
	ReceiverLabel    = "Enter a receiver to use by this access key to pay for function call gas and transaction fees"
	MethodNamesLabel = "Enter a comma-separated list of method names that will be allowed to be called in a transaction signed by this access key (empty for any method)"
	AllowanceLabel   = "Enter an allowance which is a balance limit to use by this access key to pay for function call gas and transaction fees (example: 10NEAR or 0.5near or 10000yoctonear, empty for no limit)"
)

// ErrInvalidMethodName is returned for method names containing whitespace
// or commas.
var ErrInvalidMethodName = errors.New("invalid method name")

// FunctionCallInput is a possibly partial function-call permission.
type FunctionCallInput struct {
	ReceiverID  Field[near.AccountID]
	MethodNames Field[[]string]
	Allowance   Field[*near.Balance]
}

func resolveFunctionCall(p prompt.Prompter, in *FunctionCallInput) (AccessKeyPermission, error) {
	receiver, err := resolveReceiver(p, in.ReceiverID)
	if err != nil {
		return AccessKeyPermission{}, err
	}
	methods, err := resolveMethodNames(p, in.MethodNames)
	if err != nil {
		return AccessKeyPermission{}, err
	}
	allowance, err := resolveAllowance(p, in.Allowance)
	if err != nil {
		return AccessKeyPermission{}, err
	}
	return FunctionCall(FunctionCallPermission{
		Allowance:   allowance,
		ReceiverID:  receiver,
		MethodNames: methods,
	}), nil
}

func resolveReceiver(p prompt.Prompter, f Field[near.AccountID]) (near.AccountID, error) {
	if v, ok := f.Get(); ok {
		return near.ParseAccountID(v.String())
	}
	return prompt.InputValid(p, ReceiverLabel, near.ParseAccountID)
}

func resolveMethodNames(p prompt.Prompter, f Field[[]string]) ([]string, error) {
	if v, ok := f.Get(); ok {
		if err := validateMethodNames(v); err != nil {
			return nil, err
		}
		return append([]string{}, v...), nil
	}
	return prompt.InputValid(p, MethodNamesLabel, ParseMethodNames)
}

func resolveAllowance(p prompt.Prompter, f Field[*near.Balance]) (*near.Balance, error) {
	if v, ok := f.Get(); ok {
		if v != nil && v.IsZero() {
			return nil, errZeroAllowance
		}
		return v, nil
	}
	return prompt.InputValid(p, AllowanceLabel, ParseAllowance)
}

// ParseMethodNames splits a comma-separated list. An empty string yields an
// empty, non-nil slice.
func ParseMethodNames(s string) ([]string, error) {
	names := []string{}
	if strings.TrimSpace(s) == "" {
		return names, nil
	}
	for _, part := range strings.Split(s, ",") {
		name := strings.TrimSpace(part)
		if name == "" {
			continue
		}
		names = append(names, name)
	}
	if err := validateMethodNames(names); err != nil {
		return nil, err
	}
	return names, nil
}

func validateMethodNames(names []string) error {
	for _, n := range names {
		if n == "" || strings.ContainsAny(n, ", \t\r\n") {
			return fmt.Errorf("%w: %q", ErrInvalidMethodName, n)
		}
	}
	return nil
}

var errZeroAllowance = fmt.Errorf("%w: allowance must be positive, leave it empty for no limit", near.ErrInvalidBalance)

// ParseAllowance parses an allowance answer. An empty answer is unlimited
// (nil).
func ParseAllowance(s string) (*near.Balance, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	b, err := near.ParseBalance(s)
	if err != nil {
		return nil, err
	}
	if b.IsZero() {
		return nil, errZeroAllowance
	}
	return &b, nil
}
