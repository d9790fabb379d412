package dashboard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/taskboard/internal/i18n"
	"github.com/nhle/taskboard/internal/keys"
	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/nav"
	"github.com/nhle/taskboard/internal/taskview"
	"github.com/nhle/taskboard/internal/theme"
	"github.com/nhle/taskboard/internal/tree"
	"github.com/nhle/taskboard/internal/ui"
)

// OpenTaskMsg asks the root model to show a task's detail.
type OpenTaskMsg struct {
	Item tree.AssignedTask
}

// Model lists the tasks assigned to the current user across all topics.
type Model struct {
	keys        *keys.KeyMap
	tr          i18n.Translator
	user        model.User
	items       []tree.AssignedTask
	visible     []tree.AssignedTask
	sort        taskview.SortState
	query       string
	filterMode  bool
	filterInput textinput.Model
	cursor      int
	loading     bool
	err         error
	width       int
	height      int
}

// New creates the dashboard view.
func New(k *keys.KeyMap, tr i18n.Translator, width, height int) Model {
	fi := textinput.New()
	fi.Placeholder = "filter tasks..."
	fi.Prompt = "/ "

	return Model{
		keys:        k,
		tr:          tr,
		filterInput: fi,
		loading:     true,
		width:       width,
		height:      height,
	}
}

// SetUser sets the greeting.
func (m *Model) SetUser(u model.User) {
	m.user = u
}

// SetTranslator switches the UI language.
func (m *Model) SetTranslator(tr i18n.Translator) {
	m.tr = tr
}

// SetLoading shows the loading state.
func (m *Model) SetLoading() {
	m.loading = true
	m.err = nil
}

// SetItems replaces the task snapshot. Filter and sort state are kept.
func (m *Model) SetItems(items []tree.AssignedTask, err error) {
	m.loading = false
	m.err = err
	m.items = items
	m.refresh()
}

// Sort returns the current sort state.
func (m Model) Sort() taskview.SortState {
	return m.sort
}

// Visible returns the rows in display order.
func (m Model) Visible() []tree.AssignedTask {
	return m.visible
}

// refresh recomputes the visible rows from the snapshot. Sorting and
// filtering go through taskview so the snapshot order is never touched.
func (m *Model) refresh() {
	byID := make(map[model.ID][]tree.AssignedTask, len(m.items))
	tasks := make([]model.Task, 0, len(m.items))
	for _, it := range m.items {
		byID[it.Task.ID] = append(byID[it.Task.ID], it)
		tasks = append(tasks, it.Task)
	}

	ordered := m.sort.Apply(taskview.Filter(tasks, m.query))
	used := make(map[model.ID]int, len(ordered))
	m.visible = make([]tree.AssignedTask, 0, len(ordered))
	for _, t := range ordered {
		rows := byID[t.ID]
		m.visible = append(m.visible, rows[used[t.ID]])
		used[t.ID]++
	}

	if m.cursor >= len(m.visible) {
		m.cursor = len(m.visible) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// Filtering reports whether the filter input has focus.
func (m Model) Filtering() bool {
	return m.filterMode
}

// Update handles messages for the dashboard.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	if m.filterMode {
		return m.handleFilterKeys(keyMsg)
	}

	switch {
	case key.Matches(keyMsg, m.keys.Down):
		if m.cursor < len(m.visible)-1 {
			m.cursor++
		}
	case key.Matches(keyMsg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(keyMsg, m.keys.CycleSort):
		m.sort = m.sort.Next()
		m.refresh()
	case key.Matches(keyMsg, m.keys.SortKey):
		if m.sort.Key == taskview.SortByTitle {
			m.sort = m.sort.WithKey(taskview.SortByCompleted)
		} else {
			m.sort = m.sort.WithKey(taskview.SortByTitle)
		}
		m.refresh()
	case key.Matches(keyMsg, m.keys.Filter):
		m.filterMode = true
		m.filterInput.SetValue(m.query)
		cmd := m.filterInput.Focus()
		return m, cmd
	case key.Matches(keyMsg, m.keys.Select):
		if m.cursor < len(m.visible) {
			it := m.visible[m.cursor]
			return m, func() tea.Msg { return OpenTaskMsg{Item: it} }
		}
	case key.Matches(keyMsg, m.keys.Right):
		if m.cursor < len(m.visible) {
			it := m.visible[m.cursor]
			path := nav.TopicPath(it.Project, it.Topic)
			return m, func() tea.Msg { return ui.NavigateMsg{Path: path} }
		}
	}
	return m, nil
}

func (m Model) handleFilterKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.filterMode = false
		m.filterInput.Blur()
		return m, nil
	case "esc":
		m.filterMode = false
		m.filterInput.Blur()
		m.filterInput.Reset()
		m.query = ""
		m.refresh()
		return m, nil
	}

	var cmd tea.Cmd
	m.filterInput, cmd = m.filterInput.Update(msg)
	m.query = m.filterInput.Value()
	m.refresh()
	return m, cmd
}

// View renders the dashboard.
func (m Model) View() string {
	var b strings.Builder

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)
	title := m.tr.T(i18n.Dashboard)
	if m.user.ID != "" {
		title = fmt.Sprintf("%s · %s", title, m.user.DisplayName())
	}
	b.WriteString(titleStyle.Render(title))
	b.WriteString("  ")
	b.WriteString(theme.MutedStyle.Render(fmt.Sprintf("%s · sort: %s",
		ui.Plural(len(m.visible), "task", "tasks"), m.sort.Label())))
	b.WriteString("\n")

	if m.filterMode || m.query != "" {
		b.WriteString(m.filterInput.View())
		b.WriteString("\n")
	}
	b.WriteString("\n")

	body := m.height - 4
	switch {
	case m.loading:
		b.WriteString(ui.Placeholder(m.width-2, body, m.tr.T(i18n.Loading)))
	case m.err != nil:
		b.WriteString(ui.Placeholder(m.width-2, body, m.tr.T(i18n.LoadFailed)))
	case len(m.visible) == 0:
		b.WriteString(ui.Placeholder(m.width-2, body, m.tr.T(i18n.NoTasks)))
	default:
		b.WriteString(m.renderRows(body))
	}

	return lipgloss.NewStyle().Padding(0, 1).Width(m.width).Height(m.height).Render(b.String())
}

func (m Model) renderRows(height int) string {
	start := 0
	if height > 0 && m.cursor >= height {
		start = m.cursor - height + 1
	}

	var lines []string
	for i := start; i < len(m.visible) && len(lines) < max(height, 1); i++ {
		it := m.visible[i]
		where := theme.MutedStyle.Render(fmt.Sprintf("%s › %s › %s", it.Project.Name, it.Topic.Name, it.Kanban))
		title := theme.CompletedStyle(it.Task.Completed).Render(ui.Truncate(it.Task.Title, m.width/2))
		line := fmt.Sprintf("%s %s  %s", theme.Checkbox(it.Task.Completed), title, where)
		if i == m.cursor {
			lines = append(lines, theme.SelectedItemStyle.Render(line))
		} else {
			lines = append(lines, theme.ListItemStyle.Render(line))
		}
	}
	return strings.Join(lines, "\n")
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.filterInput.Width = width - 6
}
