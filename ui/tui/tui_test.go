// Copyright (c) 2026 Toolkit Authors
// Toolkit - course workspace manager
// This source code is licensed under the MIT license found in the LICENSE file.

package tui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/brenoschmidt/toolkit/internal/config"
	"github.com/brenoschmidt/toolkit/internal/workspace"
)

func testModel(t *testing.T) menuModel {
	t.Helper()
	p := workspace.Paths{Root: t.TempDir()}
	return newModel(p, config.Config{})
}

func key(s string) tea.KeyMsg {
	if len(s) == 1 {
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	panic("unknown key " + s)
}

func TestCursorMovementStaysInBounds(t *testing.T) {
	m := testModel(t)

	next, _ := m.Update(key("up"))
	m = next.(menuModel)
	if m.cursor != 0 {
		t.Fatalf("cursor moved above the first entry: %d", m.cursor)
	}

	for i := 0; i < 10; i++ {
		next, _ = m.Update(key("down"))
		m = next.(menuModel)
	}
	if m.cursor != len(m.actions)-1 {
		t.Fatalf("cursor overran the menu: %d", m.cursor)
	}

	next, _ = m.Update(key("k"))
	m = next.(menuModel)
	if m.cursor != len(m.actions)-2 {
		t.Fatalf("k should move up one entry, cursor = %d", m.cursor)
	}
}

func TestQuitKeys(t *testing.T) {
	for _, k := range []string{"q", "esc"} {
		m := testModel(t)
		_, cmd := m.Update(key(k))
		if cmd == nil {
			t.Fatalf("%q should quit", k)
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Fatalf("%q produced %T, want tea.QuitMsg", k, cmd())
		}
	}
}

func TestEnterStartsAction(t *testing.T) {
	m := testModel(t)
	next, cmd := m.Update(key("enter"))
	m = next.(menuModel)
	if !m.running {
		t.Fatal("enter should mark the model as running")
	}
	if cmd == nil {
		t.Fatal("enter should schedule the action")
	}
	if !strings.Contains(m.View(), m.spin.View()) {
		t.Fatal("view should show the spinner while running")
	}
}

func TestKeysIgnoredWhileRunning(t *testing.T) {
	m := testModel(t)
	m.running = true
	next, cmd := m.Update(key("down"))
	m = next.(menuModel)
	if m.cursor != 0 || cmd != nil {
		t.Fatal("keys must be ignored while an action runs")
	}
}

func TestActionDoneUpdatesStatus(t *testing.T) {
	m := testModel(t)
	m.running = true

	next, _ := m.Update(actionDoneMsg{out: "all done"})
	m = next.(menuModel)
	if m.running {
		t.Fatal("model should stop running on completion")
	}
	if !strings.Contains(m.View(), "all done") {
		t.Fatalf("view missing status:\n%s", m.View())
	}

	next, _ = m.Update(actionDoneMsg{err: errors.New("boom")})
	m = next.(menuModel)
	if !strings.Contains(m.View(), "boom") {
		t.Fatalf("view missing error:\n%s", m.View())
	}
}

func TestCheckWorkspaceReportsBadLayout(t *testing.T) {
	p := workspace.Paths{Root: t.TempDir()} // no marker, no tk/
	if _, err := checkWorkspace(p); err == nil {
		t.Fatal("checkWorkspace should fail on an empty directory")
	}
}
