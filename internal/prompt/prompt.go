// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

// Package prompt is the interactive surface used by the login flow and the
// action builders.
package prompt

import (
	"errors"
	"strings"
)

// ErrAborted is returned when the user closes input (EOF, Ctrl-C, Esc).
var ErrAborted = errors.New("input aborted")

// Prompter asks the user for free text or a choice from a list.
type Prompter interface {
	// Input shows label and returns the line entered, without the newline.
	Input(label string) (string, error)

	// Select shows label with items and returns the chosen index.
	Select(label string, items []string) (int, error)

	// Printf writes informational output.
	Printf(format string, args ...any)
}

// InputValid asks until parse accepts the answer. Parse errors are shown
// to the user and the question is repeated; prompt errors end the loop.
func InputValid[T any](p Prompter, label string, parse func(string) (T, error)) (T, error) {
	for {
		answer, err := p.Input(label)
		if err != nil {
			var zero T
			return zero, err
		}
		v, err := parse(strings.TrimSpace(answer))
		if err == nil {
			return v, nil
		}
		p.Printf("%v\n", err)
	}
}

// Choose is Select for items that carry their own label.
func Choose[T any](p Prompter, label string, items []T, name func(T) string) (T, error) {
	names := make([]string, len(items))
	for i, it := range items {
		names[i] = name(it)
	}
	idx, err := p.Select(label, names)
	if err != nil {
		var zero T
		return zero, err
	}
	return items[idx], nil
}
