package command

import (
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/nav"
	"github.com/nhle/taskboard/internal/theme"
)

// CloseMsg is emitted when the palette is dismissed.
type CloseMsg struct{}

// SelectedMsg is emitted when an entry is chosen. The palette is closed and
// the root model navigates to Path.
type SelectedMsg struct {
	Path string
}

// item adapts a nav.Entry to list.DefaultItem.
type item struct {
	entry nav.Entry
}

func (i item) FilterValue() string { return i.entry.Label }

func (i item) Title() string {
	if i.entry.Kind == nav.EntryTopic {
		return i.entry.Parent + " › " + i.entry.Label
	}
	return i.entry.Label
}

func (i item) Description() string {
	return i.entry.Path
}

// Model is the command palette overlay.
type Model struct {
	list   list.Model
	width  int
	height int
}

// New creates a new command palette model.
func New(width, height int) Model {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = theme.SelectedItemStyle
	delegate.Styles.SelectedDesc = theme.SelectedItemStyle.Bold(false).Foreground(theme.ColorGray)

	l := list.New([]list.Item{}, delegate, width, height)
	l.Title = "Go to…"
	l.Styles.Title = theme.HeaderStyle
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)

	m := Model{list: l}
	m.SetSize(width, height)
	return m
}

// SetTree replaces the palette entries with those derived from tree.
func (m *Model) SetTree(tree []model.Project) tea.Cmd {
	entries := Entries(tree)
	items := make([]list.Item, len(entries))
	for i, e := range entries {
		items[i] = item{entry: e}
	}
	return m.list.SetItems(items)
}

// Len returns the number of entries.
func (m Model) Len() int {
	return len(m.list.Items())
}

// Open resets the palette and puts the list straight into filter mode so
// typing narrows the entries.
func (m *Model) Open() tea.Cmd {
	m.list.ResetFilter()
	m.list.Select(0)
	m.list.SetFilterText("")
	m.list.SetFilterState(list.Filtering)
	return nil
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the command palette.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "esc", "ctrl+k":
			return m, func() tea.Msg { return CloseMsg{} }
		case "enter":
			selected, ok := m.list.SelectedItem().(item)
			if !ok {
				return m, nil
			}
			path := selected.entry.Path
			return m, func() tea.Msg { return SelectedMsg{Path: path} }
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View renders the command palette.
func (m Model) View() string {
	return theme.FocusedPanelStyle.
		Width(m.boxWidth()).
		Render(m.list.View())
}

func (m Model) boxWidth() int {
	w := m.width * 2 / 3
	if w < 30 {
		w = 30
	}
	if w > 80 {
		w = 80
	}
	return w
}

// SetSize updates the command palette dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	h := height - 4
	if h < 6 {
		h = 6
	}
	m.list.SetSize(m.boxWidth()-2, h)
}

// Overlay centers the palette over a background of the given size.
func (m Model) Overlay(width, height int) string {
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, m.View())
}
