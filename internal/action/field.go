// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package action

// Field is an optional builder input. Set distinguishes a supplied zero
// value (an empty method list, an unlimited allowance) from a value the
// user still has to be asked for.
type Field[T any] struct {
	Value T
	Set   bool
}

// Some marks v as supplied.
func Some[T any](v T) Field[T] {
	return Field[T]{Value: v, Set: true}
}

// Get returns the value and whether it was supplied.
func (f Field[T]) Get() (T, bool) {
	return f.Value, f.Set
}
