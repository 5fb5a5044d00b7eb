// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package util

import (
	"os"

	"golang.org/x/term"
)

// ColorFormatter returns the ANSI color code for a category, or "".
type ColorFormatter func(category string) string

const colorReset = "\033[0m"

// supportsColor checks if the terminal supports ANSI color codes
func supportsColor() bool {
	// Check if stdout is a terminal
	if !term.IsTerminal(int(os.Stdout.Fd())) { // #nosec G115 - file descriptors are small integers
		return false
	}

	// Check TERM environment variable
	termEnv := os.Getenv("TERM")
	if termEnv == "" || termEnv == "dumb" {
		return false
	}

	return true
}

// Colorize wraps text in the color colorFormatter picks for category.
// Text is returned unchanged when stdout is not a color terminal.
func Colorize(text, category string, colorFormatter ColorFormatter) string {
	if !supportsColor() || colorFormatter == nil {
		return text
	}
	return colorize(text, colorFormatter(category))
}

func colorize(text, code string) string {
	if code == "" {
		return text
	}
	return code + text + colorReset
}

// PermissionColor highlights full-access keys, which can do anything with
// the account, in yellow and function-call keys in cyan.
func PermissionColor(kind string) string {
	switch kind {
	case "FullAccess":
		return "\033[33m"
	case "FunctionCall":
		return "\033[36m"
	default:
		return ""
	}
}
