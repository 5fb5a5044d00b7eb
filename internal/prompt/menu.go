// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package prompt

import (
	"fmt"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	menuTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	menuCursorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	menuItemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	menuHelpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

// menuModel is a single-choice list.
type menuModel struct {
	label   string
	items   []string
	cursor  int
	chosen  int
	aborted bool
}

func newMenuModel(label string, items []string) menuModel {
	return menuModel{label: label, items: items, chosen: -1}
}

func (m menuModel) Init() tea.Cmd { return nil }

func (m menuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "ctrl+c", "esc":
		m.aborted = true
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		} else {
			m.cursor = len(m.items) - 1
		}
	case "down", "j", "tab":
		if m.cursor < len(m.items)-1 {
			m.cursor++
		} else {
			m.cursor = 0
		}
	case "home":
		m.cursor = 0
	case "end":
		m.cursor = len(m.items) - 1
	case "enter":
		m.chosen = m.cursor
		return m, tea.Quit
	default:
		// 1-9 jumps to an item.
		s := key.String()
		if len(s) == 1 && s[0] >= '1' && s[0] <= '9' {
			if n := int(s[0] - '1'); n < len(m.items) {
				m.cursor = n
			}
		}
	}
	return m, nil
}

func (m menuModel) View() string {
	var b strings.Builder
	b.WriteString(menuTitleStyle.Render(m.label))
	b.WriteString("\n")

	if m.chosen >= 0 {
		b.WriteString(menuCursorStyle.Render("> " + m.items[m.chosen]))
		b.WriteString("\n")
		return b.String()
	}
	if m.aborted {
		return b.String()
	}

	for i, item := range m.items {
		if i == m.cursor {
			b.WriteString(menuCursorStyle.Render("> " + item))
		} else {
			b.WriteString(menuItemStyle.Render("  " + item))
		}
		b.WriteString("\n")
	}
	b.WriteString(menuHelpStyle.Render("↑/↓ to move, enter to select, esc to cancel"))
	b.WriteString("\n")
	return b.String()
}

// runMenu shows the list and blocks until a choice is made.
func runMenu(label string, items []string, in io.Reader, out io.Writer) (int, error) {
	if len(items) == 0 {
		return 0, fmt.Errorf("no items to choose from for %q", label)
	}
	p := tea.NewProgram(newMenuModel(label, items), tea.WithInput(in), tea.WithOutput(out))
	final, err := p.Run()
	if err != nil {
		return 0, fmt.Errorf("menu failed: %w", err)
	}
	m, ok := final.(menuModel)
	if !ok || m.aborted || m.chosen < 0 {
		return 0, ErrAborted
	}
	return m.chosen, nil
}
