package sidebar

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/taskboard/internal/i18n"
	"github.com/nhle/taskboard/internal/keys"
	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/nav"
	"github.com/nhle/taskboard/internal/theme"
	"github.com/nhle/taskboard/internal/ui"
)

// Model is the navigation pane listing fixed destinations and the
// project tree.
type Model struct {
	keys    *keys.KeyMap
	tr      i18n.Translator
	entries []nav.Entry
	cursor  int
	active  string
	unread  int
	focused bool
	loading bool
	width   int
	height  int
}

// New creates a sidebar.
func New(k *keys.KeyMap, tr i18n.Translator, width, height int) Model {
	m := Model{keys: k, tr: tr, width: width, height: height, loading: true}
	m.SetTree(nil)
	m.loading = true
	return m
}

// SetTree rebuilds the entries from the project tree, keeping the cursor
// on the same path when it still exists.
func (m *Model) SetTree(tree []model.Project) {
	current := ""
	if m.cursor < len(m.entries) {
		current = m.entries[m.cursor].Path
	}

	m.entries = append(m.fixedEntries(), nav.Flatten(nav.Build(tree))...)
	m.loading = false

	m.cursor = 0
	for i, e := range m.entries {
		if e.Path == current {
			m.cursor = i
			break
		}
	}
}

func (m Model) fixedEntries() []nav.Entry {
	return []nav.Entry{
		{Kind: nav.EntryStatic, Label: m.tr.T(i18n.Dashboard), Path: nav.PathDashboard},
		{Kind: nav.EntryStatic, Label: m.tr.T(i18n.Notifications), Path: nav.PathNotifications},
		{Kind: nav.EntryStatic, Label: m.tr.T(i18n.Settings), Path: nav.PathSettings},
	}
}

// SetTranslator switches the language of the fixed entries.
func (m *Model) SetTranslator(tr i18n.Translator) {
	m.tr = tr
	copy(m.entries, m.fixedEntries())
}

// SetActive marks the route being displayed and moves the cursor to it.
func (m *Model) SetActive(path string) {
	m.active = path
	for i, e := range m.entries {
		if e.Path == path {
			m.cursor = i
			return
		}
	}
}

// SetUnread updates the notification badge.
func (m *Model) SetUnread(n int) {
	m.unread = n
}

// SetFocused toggles keyboard focus.
func (m *Model) SetFocused(f bool) {
	m.focused = f
}

// Focused reports whether the sidebar receives keys.
func (m Model) Focused() bool {
	return m.focused
}

// Selected returns the entry under the cursor.
func (m Model) Selected() (nav.Entry, bool) {
	if m.cursor < 0 || m.cursor >= len(m.entries) {
		return nav.Entry{}, false
	}
	return m.entries[m.cursor], true
}

// Update handles keys while focused.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok || !m.focused {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keys.Down):
		if len(m.entries) > 0 {
			m.cursor = (m.cursor + 1) % len(m.entries)
		}
	case key.Matches(keyMsg, m.keys.Up):
		if len(m.entries) > 0 {
			m.cursor--
			if m.cursor < 0 {
				m.cursor = len(m.entries) - 1
			}
		}
	case key.Matches(keyMsg, m.keys.Select):
		if e, ok := m.Selected(); ok {
			path := e.Path
			return m, func() tea.Msg { return ui.NavigateMsg{Path: path} }
		}
	}
	return m, nil
}

// View renders the sidebar.
func (m Model) View() string {
	var b strings.Builder
	inner := m.width - 4

	for i, e := range m.entries {
		if i == len(m.fixedEntries()) {
			b.WriteString("\n")
			b.WriteString(theme.MutedStyle.Render(strings.ToUpper(m.tr.T(i18n.Projects))))
			b.WriteString("\n")
		}
		b.WriteString(m.renderEntry(i, e, inner))
		b.WriteString("\n")
	}

	if m.loading {
		b.WriteString(theme.HelpStyle.Render(m.tr.T(i18n.Loading)))
	} else if len(m.entries) == len(m.fixedEntries()) {
		b.WriteString("\n")
		b.WriteString(theme.HelpStyle.Render(m.tr.T(i18n.NoProjects)))
	}

	style := theme.PanelStyle
	if m.focused {
		style = theme.FocusedPanelStyle
	}
	return style.
		Width(m.width - 2).
		Height(m.height - 2).
		Render(strings.TrimRight(b.String(), "\n"))
}

func (m Model) renderEntry(i int, e nav.Entry, width int) string {
	label := e.Label
	switch e.Kind {
	case nav.EntryProject:
		label = theme.Swatch(e.Color).Render("■") + " " + ui.Truncate(label, width-4)
	case nav.EntryTopic:
		label = "  " + theme.Swatch(e.Color).Render("·") + " " + ui.Truncate(label, width-6)
	default:
		if e.Path == nav.PathNotifications && m.unread > 0 {
			label = fmt.Sprintf("%s %s", label, theme.BadgeStyle.Render(fmt.Sprint(m.unread)))
		}
	}

	switch {
	case m.focused && i == m.cursor:
		return theme.SelectedItemStyle.Render(label)
	case e.Path == m.active:
		return lipgloss.NewStyle().PaddingLeft(2).Bold(true).Render(label)
	default:
		return theme.ListItemStyle.Render(label)
	}
}

// SetSize updates the sidebar dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}
