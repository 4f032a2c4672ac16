// Copyright (c) 2026 Toolkit Authors
// Toolkit - course workspace manager
// This source code is licensed under the MIT license found in the LICENSE file.

// package tui provides the interactive menu shown when `tk` runs bare on a
// terminal. It is a thin shell over the same operations the CLI exposes.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/brenoschmidt/toolkit/internal/backup"
	"github.com/brenoschmidt/toolkit/internal/config"
	"github.com/brenoschmidt/toolkit/internal/db"
	"github.com/brenoschmidt/toolkit/internal/i18n"
	"github.com/brenoschmidt/toolkit/internal/syncdir"
	"github.com/brenoschmidt/toolkit/internal/workspace"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205")).Padding(0, 1)
	cursorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("246")).MarginTop(1)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).MarginTop(1)
)

// action is a menu entry bound to a blocking operation. Run returns the
// status line shown after completion.
type action struct {
	label string
	run   func(ctx context.Context) (string, error)
}

// actionDoneMsg carries an action result back into the update loop.
type actionDoneMsg struct {
	out string
	err error
}

// menuModel is the single top-level model: a cursor menu plus a status area.
type menuModel struct {
	project workspace.Paths
	actions []action
	cursor  int
	spin    spinner.Model
	running bool
	status  string
	err     error
}

// newModel assembles the menu for a project.
func newModel(p workspace.Paths, cfg config.Config) menuModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	actions := []action{
		{label: i18n.T("tui.check_workspace"), run: func(ctx context.Context) (string, error) {
			return checkWorkspace(p)
		}},
		{label: i18n.T("tui.create_backup"), run: func(ctx context.Context) (string, error) {
			return createBackup(ctx, p, cfg)
		}},
		{label: i18n.T("tui.pull_course_files"), run: func(ctx context.Context) (string, error) {
			return pullCourseFiles(ctx, p, cfg)
		}},
		{label: i18n.T("tui.recent_history"), run: func(ctx context.Context) (string, error) {
			return recentHistory(ctx)
		}},
	}
	return menuModel{project: p, actions: actions, spin: sp}
}

// Run starts the interactive menu and blocks until the user quits.
func Run(p workspace.Paths, cfg config.Config) error {
	_, err := tea.NewProgram(newModel(p, cfg), tea.WithAltScreen()).Run()
	return err
}

func (m menuModel) Init() tea.Cmd {
	return m.spin.Tick
}

func (m menuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.running {
			return m, nil // ignore keys while an action runs
		}
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.actions)-1 {
				m.cursor++
			}
		case "enter":
			m.running = true
			m.err = nil
			m.status = ""
			a := m.actions[m.cursor]
			return m, tea.Batch(m.spin.Tick, runAction(a))
		}
	case actionDoneMsg:
		m.running = false
		m.status = msg.out
		m.err = msg.err
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m menuModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("tk — "+m.project.Root) + "\n\n")

	for i, a := range m.actions {
		cursor := "  "
		line := a.label
		if i == m.cursor {
			cursor = cursorStyle.Render("> ")
			line = cursorStyle.Render(line)
		}
		b.WriteString(cursor + line + "\n")
	}

	switch {
	case m.running:
		b.WriteString(statusStyle.Render(m.spin.View() + " " + i18n.T("tui.working")))
	case m.err != nil:
		b.WriteString(errorStyle.Render(m.err.Error()))
	case m.status != "":
		b.WriteString(statusStyle.Render(m.status))
	}

	b.WriteString("\n\n" + statusStyle.Render(i18n.T("tui.help")))
	return b.String()
}

// runAction executes the operation off the update loop.
func runAction(a action) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		out, err := a.run(ctx)
		return actionDoneMsg{out: out, err: err}
	}
}

// checkWorkspace runs the cheap layout and environment validations.
func checkWorkspace(p workspace.Paths) (string, error) {
	if err := p.CheckLayout(); err != nil {
		return "", err
	}
	if !p.HasVenvInterpreter() {
		return "", fmt.Errorf("no interpreter in %s (run 'tk setup')", p.VenvBin())
	}
	return i18n.T("doctor.all_good"), nil
}

// createBackup snapshots the project and records the archive.
func createBackup(ctx context.Context, p workspace.Paths, cfg config.Config) (string, error) {
	a, err := backup.Create(ctx, p, backup.Options{Dir: cfg.Backup.Dir})
	if err != nil {
		return "", err
	}
	if s := db.Get(); s != nil {
		if _, err := s.AddBackup(ctx, a.Path, a.SHA256, a.Size, a.CreatedAt); err != nil {
			return "", err
		}
		_ = db.LogAction("BACKUP", fmt.Sprintf("archive: %s", a.Path))
		if err := backup.Prune(ctx, s, cfg.Backup.Keep); err != nil {
			return "", err
		}
	}
	return fmt.Sprintf(i18n.T("backup.created"), a.Path, a.Size), nil
}

// pullCourseFiles copies new files from the shared folder.
func pullCourseFiles(ctx context.Context, p workspace.Paths, cfg config.Config) (string, error) {
	if cfg.Dropbox.Dir == "" {
		return "", fmt.Errorf("%s", i18n.T("sync.no_source"))
	}
	plan, err := syncdir.BuildPlan(ctx, cfg.Dropbox.Dir, p, db.Get(), false)
	if err != nil {
		return "", err
	}
	n, err := syncdir.Apply(ctx, db.Get(), plan)
	if err != nil {
		return "", err
	}
	_ = db.LogAction("SYNC_PULL", fmt.Sprintf("source: %s, files: %d", cfg.Dropbox.Dir, n))
	return fmt.Sprintf(i18n.T("sync.done"), n, plan.Unchanged+plan.SkippedLocal), nil
}

// recentHistory renders the newest audit entries.
func recentHistory(ctx context.Context) (string, error) {
	s := db.Get()
	if s == nil {
		return "", fmt.Errorf("state store not initialized")
	}
	entries, err := s.GetAllAuditLogEntries(ctx)
	if err != nil {
		return "", err
	}
	if len(entries) == 0 {
		return i18n.T("history.empty"), nil
	}
	if len(entries) > 5 {
		entries = entries[:5]
	}
	var b strings.Builder
	for _, e := range entries {
		fmt.Fprintf(&b, "%s  %-14s %s\n", e.Timestamp, e.Action, e.Details)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}
