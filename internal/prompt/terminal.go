// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"golang.org/x/term"
)

// Terminal prompts on a terminal. With a TTY on both ends it uses readline
// for text and an arrow-key menu for choices; otherwise it reads plain
// lines and shows numbered menus, which keeps piped input working.
type Terminal struct {
	in          io.Reader
	out         io.Writer
	interactive bool

	reader *bufio.Reader
	rl     *readline.Instance
}

// NewTerminal prompts on the process's stdin and stdout.
func NewTerminal() *Terminal {
	interactive := term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd())) // #nosec G115 - file descriptors are small integers
	return &Terminal{
		in:          os.Stdin,
		out:         os.Stdout,
		interactive: interactive,
		reader:      bufio.NewReader(os.Stdin),
	}
}

// NewLineTerminal prompts over arbitrary streams using plain lines and
// numbered menus.
func NewLineTerminal(in io.Reader, out io.Writer) *Terminal {
	return &Terminal{in: in, out: out, reader: bufio.NewReader(in)}
}

// Close releases the readline instance, if any.
func (t *Terminal) Close() error {
	if t.rl == nil {
		return nil
	}
	err := t.rl.Close()
	t.rl = nil
	return err
}

func (t *Terminal) Printf(format string, args ...any) {
	_, _ = fmt.Fprintf(t.out, format, args...)
}

func (t *Terminal) Input(label string) (string, error) {
	if t.interactive {
		return t.readlineInput(label)
	}
	t.Printf("%s: ", label)
	return t.readLine()
}

func (t *Terminal) readlineInput(label string) (string, error) {
	if t.rl == nil {
		rl, err := readline.NewEx(&readline.Config{
			Prompt:          label + ": ",
			InterruptPrompt: "^C",
			EOFPrompt:       "",
		})
		if err != nil {
			// Fall back to plain line input.
			t.interactive = false
			return t.Input(label)
		}
		t.rl = rl
	}
	t.rl.SetPrompt(label + ": ")

	line, err := t.rl.Readline()
	if err != nil {
		if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
			return "", ErrAborted
		}
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (t *Terminal) readLine() (string, error) {
	line, err := t.reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) {
			if line == "" {
				return "", ErrAborted
			}
			return strings.TrimRight(line, "\r\n"), nil
		}
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (t *Terminal) Select(label string, items []string) (int, error) {
	if len(items) == 0 {
		return 0, fmt.Errorf("no items to choose from for %q", label)
	}
	if t.interactive {
		// The menu reads stdin directly; readline must not hold it.
		_ = t.Close()
		return runMenu(label, items, t.in, t.out)
	}

	t.Printf("%s\n", label)
	for i, item := range items {
		t.Printf("  %d. %s\n", i+1, item)
	}
	for {
		t.Printf("Enter a number [1-%d]: ", len(items))
		line, err := t.readLine()
		if err != nil {
			return 0, err
		}
		n, err := strconv.Atoi(strings.TrimSpace(line))
		if err != nil || n < 1 || n > len(items) {
			t.Printf("Please enter a number between 1 and %d\n", len(items))
			continue
		}
		return n - 1, nil
	}
}
