package board

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	log "github.com/sirupsen/logrus"

	"github.com/nhle/taskboard/internal/api"
	"github.com/nhle/taskboard/internal/i18n"
	"github.com/nhle/taskboard/internal/keys"
	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/taskview"
	"github.com/nhle/taskboard/internal/theme"
	"github.com/nhle/taskboard/internal/ui"
	"github.com/nhle/taskboard/internal/ui/taskform"
)

// Service is the subset of the REST client the board mutates through.
type Service interface {
	CreateTask(ctx context.Context, in model.TaskInput) (*model.Task, error)
	UpdateTask(ctx context.Context, id model.ID, in model.TaskInput) (*model.Task, error)
	DeleteTask(ctx context.Context, id model.ID) error
	CreateKanban(ctx context.Context, in model.KanbanInput) (*model.Kanban, error)
	DeleteKanban(ctx context.Context, id model.ID) error
}

// OpenTaskMsg asks the root model to show a task's detail.
type OpenTaskMsg struct {
	Task model.Task
}

// taskSavedMsg reports an optimistic update. prev is restored on failure.
type taskSavedMsg struct {
	prev model.Task
	err  error
}

// taskDeletedMsg reports an optimistic delete. snapshot is restored on
// failure.
type taskDeletedMsg struct {
	snapshot []model.Kanban
	err      error
}

// mutatedMsg reports a create or kanban delete. The route is reloaded on
// success.
type mutatedMsg struct {
	what string
	err  error
}

type mode int

const (
	modeBrowse mode = iota
	modeTaskForm
	modeKanbanForm
	modeConfirm
)

type confirmTarget int

const (
	confirmTask confirmTarget = iota
	confirmKanban
)

type formBindings struct {
	kanbanName string
	confirm    bool
}

// Model is the topic view: one column per kanban board.
type Model struct {
	svc         Service
	keys        *keys.KeyMap
	tr          i18n.Translator
	project     model.Project
	topic       model.Topic
	kanbans     []model.Kanban
	col         int
	rows        map[model.ID]int
	sort        taskview.SortState
	query       string
	filterMode  bool
	filterInput textinput.Model
	mode        mode
	taskForm    taskform.Model
	kanbanForm  *huh.Form
	confirmForm *huh.Form
	confirmWhat confirmTarget
	fb          *formBindings
	status      string
	statusErr   bool
	loading     bool
	err         error
	width       int
	height      int
}

// New creates the board view.
func New(svc Service, k *keys.KeyMap, tr i18n.Translator, width, height int) Model {
	fi := textinput.New()
	fi.Placeholder = "filter tasks..."
	fi.Prompt = "/ "

	return Model{
		svc:         svc,
		keys:        k,
		tr:          tr,
		rows:        make(map[model.ID]int),
		filterInput: fi,
		taskForm:    taskform.New(width, height),
		fb:          &formBindings{},
		loading:     true,
		width:       width,
		height:      height,
	}
}

// SetTranslator switches the UI language.
func (m *Model) SetTranslator(tr i18n.Translator) {
	m.tr = tr
}

// SetLoading clears the board for a new topic.
func (m *Model) SetLoading(p model.Project, t model.Topic) {
	if p.ID != m.project.ID || t.ID != m.topic.ID {
		m.col = 0
		m.rows = make(map[model.ID]int)
		m.query = ""
		m.filterInput.Reset()
		m.mode = modeBrowse
		m.status = ""
	}
	m.project = p
	m.topic = t
	m.loading = true
	m.err = nil
}

// SetKanbans replaces the board snapshot after a load.
func (m *Model) SetKanbans(kanbans []model.Kanban, err error) {
	m.loading = false
	m.err = err
	m.kanbans = kanbans
	if m.col >= len(m.kanbans) {
		m.col = max(len(m.kanbans)-1, 0)
	}
}

// Kanbans returns the local snapshot.
func (m Model) Kanbans() []model.Kanban {
	return m.kanbans
}

// Busy reports whether a form or the filter input owns the keyboard.
func (m Model) Busy() bool {
	return m.filterMode || m.mode != modeBrowse
}

// Status returns the status line text and whether it is an error.
func (m Model) Status() (string, bool) {
	return m.status, m.statusErr
}

// column returns the visible tasks of board i.
func (m Model) column(i int) []model.Task {
	if i < 0 || i >= len(m.kanbans) {
		return nil
	}
	return taskview.Apply(m.kanbans[i].Tasks, m.query, m.sort.Key, m.sort.Dir)
}

func (m Model) selectedTask() (model.Task, bool) {
	if m.col >= len(m.kanbans) {
		return model.Task{}, false
	}
	tasks := m.column(m.col)
	row := m.rows[m.kanbans[m.col].ID]
	if row < 0 || row >= len(tasks) {
		return model.Task{}, false
	}
	return tasks[row], true
}

func (m *Model) moveRow(delta int) {
	if m.col >= len(m.kanbans) {
		return
	}
	id := m.kanbans[m.col].ID
	n := len(m.column(m.col))
	row := m.rows[id] + delta
	if row >= n {
		row = n - 1
	}
	if row < 0 {
		row = 0
	}
	m.rows[id] = row
}

// replaceTask swaps t into the snapshot by id. It reports whether the task
// was found.
func (m *Model) replaceTask(t model.Task) bool {
	for i := range m.kanbans {
		for j := range m.kanbans[i].Tasks {
			if m.kanbans[i].Tasks[j].ID == t.ID {
				m.kanbans[i].Tasks[j] = t
				return true
			}
		}
	}
	return false
}

// cloneKanbans copies the boards and their task slices.
func cloneKanbans(in []model.Kanban) []model.Kanban {
	out := make([]model.Kanban, len(in))
	for i, k := range in {
		out[i] = k
		out[i].Tasks = append([]model.Task(nil), k.Tasks...)
	}
	return out
}

func (m *Model) setStatus(text string, isErr bool) {
	m.status = text
	m.statusErr = isErr
}

// Update handles messages for the board.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case taskSavedMsg:
		if msg.err != nil {
			m.replaceTask(msg.prev)
			cmd := m.failed("Saving task failed", msg.err)
			return m, cmd
		}
		m.setStatus("Task saved", false)
		return m, func() tea.Msg { return ui.ReloadMsg{} }

	case taskDeletedMsg:
		if msg.err != nil {
			m.kanbans = msg.snapshot
			cmd := m.failed("Deleting task failed", msg.err)
			return m, cmd
		}
		m.setStatus("Task deleted", false)
		return m, func() tea.Msg { return ui.ReloadMsg{} }

	case mutatedMsg:
		if msg.err != nil {
			cmd := m.failed(msg.what+" failed", msg.err)
			return m, cmd
		}
		m.setStatus(msg.what+" done", false)
		return m, func() tea.Msg { return ui.ReloadMsg{} }

	case taskform.SubmittedMsg:
		m.mode = modeBrowse
		cmd := m.submitTask(msg)
		return m, cmd

	case taskform.CancelMsg:
		m.mode = modeBrowse
		return m, nil
	}

	switch m.mode {
	case modeTaskForm:
		var cmd tea.Cmd
		m.taskForm, cmd = m.taskForm.Update(msg)
		return m, cmd
	case modeKanbanForm:
		return m.updateKanbanForm(msg)
	case modeConfirm:
		return m.updateConfirm(msg)
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	if m.filterMode {
		return m.handleFilterKeys(keyMsg)
	}
	return m.handleKeys(keyMsg)
}

// failed records a mutation error in the status line. A 401 is routed to
// the login view.
func (m *Model) failed(what string, err error) tea.Cmd {
	log.WithError(err).WithField("topic_id", m.topic.ID).Warn(strings.ToLower(what))
	m.setStatus(what+": "+api.UserMessage(err), true)
	if api.IsAuthError(err) {
		return func() tea.Msg { return ui.AuthExpiredMsg{} }
	}
	return nil
}

func (m Model) handleKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Down):
		m.moveRow(1)
	case key.Matches(msg, m.keys.Up):
		m.moveRow(-1)
	case key.Matches(msg, m.keys.Right):
		if m.col < len(m.kanbans)-1 {
			m.col++
		}
	case key.Matches(msg, m.keys.Left):
		if m.col > 0 {
			m.col--
		}
	case key.Matches(msg, m.keys.CycleSort):
		m.sort = m.sort.Next()
	case key.Matches(msg, m.keys.SortKey):
		if m.sort.Key == taskview.SortByTitle {
			m.sort = m.sort.WithKey(taskview.SortByCompleted)
		} else {
			m.sort = m.sort.WithKey(taskview.SortByTitle)
		}
	case key.Matches(msg, m.keys.Filter):
		m.filterMode = true
		m.filterInput.SetValue(m.query)
		cmd := m.filterInput.Focus()
		return m, cmd
	case key.Matches(msg, m.keys.Select):
		if t, ok := m.selectedTask(); ok {
			return m, func() tea.Msg { return OpenTaskMsg{Task: t} }
		}
	case key.Matches(msg, m.keys.Toggle):
		return m.toggleSelected()
	case key.Matches(msg, m.keys.Edit):
		if t, ok := m.selectedTask(); ok {
			m.mode = modeTaskForm
			m.taskForm.SetOptions(m.kanbans, m.project.AllowedUsers)
			cmd := m.taskForm.StartEdit(t)
			return m, cmd
		}
	case key.Matches(msg, m.keys.New):
		if len(m.kanbans) == 0 {
			m.setStatus("Create a board first (b)", true)
			return m, nil
		}
		m.mode = modeTaskForm
		m.taskForm.SetOptions(m.kanbans, m.project.AllowedUsers)
		cmd := m.taskForm.StartCreate(m.kanbans[m.col].ID)
		return m, cmd
	case key.Matches(msg, m.keys.Delete):
		if t, ok := m.selectedTask(); ok {
			return m.startConfirm(confirmTask, fmt.Sprintf("Delete task %q?", t.Title))
		}
	case key.Matches(msg, m.keys.NewKanban):
		m.fb.kanbanName = ""
		m.kanbanForm = m.buildKanbanForm()
		m.mode = modeKanbanForm
		return m, m.kanbanForm.Init()
	case msg.String() == "D":
		if m.col < len(m.kanbans) {
			k := m.kanbans[m.col]
			return m.startConfirm(confirmKanban, fmt.Sprintf("Delete board %q and its tasks?", k.Name))
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
		return m, nil
	}

	var cmd tea.Cmd
	m.filterInput, cmd = m.filterInput.Update(msg)
	m.query = m.filterInput.Value()
	m.rows = make(map[model.ID]int)
	return m, cmd
}

// toggleSelected flips the completion flag locally and saves it.
func (m Model) toggleSelected() (Model, tea.Cmd) {
	t, ok := m.selectedTask()
	if !ok {
		return m, nil
	}
	prev := t
	t.Completed = !t.Completed
	m.replaceTask(t)

	svc := m.svc
	completed := t.Completed
	return m, func() tea.Msg {
		_, err := svc.UpdateTask(context.Background(), t.ID, model.TaskInput{Completed: &completed})
		return taskSavedMsg{prev: prev, err: err}
	}
}

func (m *Model) submitTask(msg taskform.SubmittedMsg) tea.Cmd {
	svc := m.svc
	in := msg.Input

	if msg.TaskID == "" {
		return func() tea.Msg {
			_, err := svc.CreateTask(context.Background(), in)
			return mutatedMsg{what: "Creating task", err: err}
		}
	}

	var prev model.Task
	found := false
	for _, k := range m.kanbans {
		for _, t := range k.Tasks {
			if t.ID == msg.TaskID {
				prev, found = t, true
			}
		}
	}
	if !found {
		return nil
	}
	if in.Title == nil && in.Description == nil && in.UserIDs == nil {
		return nil
	}

	updated := prev
	if in.Title != nil {
		updated.Title = *in.Title
	}
	if in.Description != nil {
		updated.Description = *in.Description
	}
	if in.UserIDs != nil {
		updated.Users = usersByID(m.project.AllowedUsers, in.UserIDs)
	}
	m.replaceTask(updated)

	id := msg.TaskID
	return func() tea.Msg {
		_, err := svc.UpdateTask(context.Background(), id, in)
		return taskSavedMsg{prev: prev, err: err}
	}
}

func usersByID(users []model.User, ids []model.ID) []model.User {
	byID := make(map[model.ID]model.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	out := make([]model.User, 0, len(ids))
	for _, id := range ids {
		u, ok := byID[id]
		if !ok {
			u = model.User{ID: id}
		}
		out = append(out, u)
	}
	return out
}

func (m Model) startConfirm(what confirmTarget, title string) (Model, tea.Cmd) {
	m.fb.confirm = false
	m.confirmWhat = what
	m.confirmForm = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Affirmative("Yes, delete").
				Negative("Cancel").
				Value(&m.fb.confirm),
		),
	).WithWidth(m.formWidth())
	m.mode = modeConfirm
	return m, m.confirmForm.Init()
}

func (m Model) updateConfirm(msg tea.Msg) (Model, tea.Cmd) {
	mdl, cmd := m.confirmForm.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.confirmForm = f
	}
	switch m.confirmForm.State {
	case huh.StateCompleted:
		m.mode = modeBrowse
		if !m.fb.confirm {
			return m, nil
		}
		if m.confirmWhat == confirmKanban {
			return m, m.deleteKanban()
		}
		return m.deleteSelected()
	case huh.StateAborted:
		m.mode = modeBrowse
		return m, nil
	}
	return m, cmd
}

// deleteSelected removes the task locally, then deletes it on the server.
func (m Model) deleteSelected() (Model, tea.Cmd) {
	t, ok := m.selectedTask()
	if !ok {
		return m, nil
	}
	snapshot := cloneKanbans(m.kanbans)
	for i := range m.kanbans {
		tasks := m.kanbans[i].Tasks[:0:0]
		for _, x := range m.kanbans[i].Tasks {
			if x.ID != t.ID {
				tasks = append(tasks, x)
			}
		}
		m.kanbans[i].Tasks = tasks
	}
	m.moveRow(0)

	svc := m.svc
	return m, func() tea.Msg {
		err := svc.DeleteTask(context.Background(), t.ID)
		return taskDeletedMsg{snapshot: snapshot, err: err}
	}
}

func (m Model) deleteKanban() tea.Cmd {
	if m.col >= len(m.kanbans) {
		return nil
	}
	id := m.kanbans[m.col].ID
	svc := m.svc
	return func() tea.Msg {
		err := svc.DeleteKanban(context.Background(), id)
		return mutatedMsg{what: "Deleting board", err: err}
	}
}

func (m Model) buildKanbanForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Board name").
				Placeholder("e.g. In progress").
				Value(&m.fb.kanbanName).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("name is required")
					}
					return nil
				}),
		),
	).WithWidth(m.formWidth())
}

func (m Model) updateKanbanForm(msg tea.Msg) (Model, tea.Cmd) {
	mdl, cmd := m.kanbanForm.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.kanbanForm = f
	}
	switch m.kanbanForm.State {
	case huh.StateCompleted:
		m.mode = modeBrowse
		svc := m.svc
		in := model.KanbanInput{Name: strings.TrimSpace(m.fb.kanbanName), ProjectID: m.topic.ID}
		return m, func() tea.Msg {
			_, err := svc.CreateKanban(context.Background(), in)
			return mutatedMsg{what: "Creating board", err: err}
		}
	case huh.StateAborted:
		m.mode = modeBrowse
		return m, nil
	}
	return m, cmd
}

// View renders the board.
func (m Model) View() string {
	switch m.mode {
	case modeTaskForm:
		return m.taskForm.View()
	case modeKanbanForm:
		return lipgloss.NewStyle().Padding(1, 2).Render(m.kanbanForm.View())
	case modeConfirm:
		return lipgloss.NewStyle().Padding(1, 2).Render(m.confirmForm.View())
	}

	header := m.renderHeader()
	bodyHeight := m.height - lipgloss.Height(header)

	var body string
	switch {
	case m.loading:
		body = ui.Placeholder(m.width, bodyHeight, m.tr.T(i18n.Loading))
	case m.err != nil:
		body = ui.Placeholder(m.width, bodyHeight, m.tr.T(i18n.LoadFailed)+"\n"+api.UserMessage(m.err))
	case len(m.kanbans) == 0:
		body = ui.Placeholder(m.width, bodyHeight, "No boards yet. Press b to create one.")
	default:
		body = m.renderColumns(bodyHeight)
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, body)
}

func (m Model) renderHeader() string {
	title := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite).
		Render(m.project.Name + " › " + m.topic.Name)
	meta := theme.MutedStyle.Render("  sort: " + m.sort.Label())

	lines := []string{title + meta}
	if m.topic.Description != "" {
		lines = append(lines, theme.MutedStyle.Render(ui.Truncate(m.topic.Description, m.width-2)))
	}
	if m.filterMode || m.query != "" {
		lines = append(lines, m.filterInput.View())
	}
	if m.status != "" {
		style := theme.HelpStyle
		if m.statusErr {
			style = theme.ErrorStyle
		}
		lines = append(lines, style.Render(m.status))
	}
	return lipgloss.NewStyle().Padding(0, 1).Render(strings.Join(lines, "\n"))
}

// renderColumns draws a window of boards around the active one.
func (m Model) renderColumns(height int) string {
	perScreen := max(m.width/28, 1)
	start := 0
	if m.col >= perScreen {
		start = m.col - perScreen + 1
	}
	end := min(start+perScreen, len(m.kanbans))
	colWidth := m.width/min(perScreen, len(m.kanbans)) - 2

	cols := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		cols = append(cols, m.renderColumn(i, colWidth, height-2))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cols...)
}

func (m Model) renderColumn(i, width, height int) string {
	k := m.kanbans[i]
	tasks := m.column(i)
	row := m.rows[k.ID]

	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Render(ui.Truncate(k.Name, width-8)))
	b.WriteString(theme.MutedStyle.Render(fmt.Sprintf(" (%d)", len(tasks))))
	b.WriteString("\n")

	if len(tasks) == 0 {
		b.WriteString(theme.HelpStyle.Render(m.tr.T(i18n.NoTasks)))
	}
	for j, t := range tasks {
		if j >= height-1 {
			break
		}
		label := theme.Checkbox(t.Completed) + " " +
			theme.CompletedStyle(t.Completed).Render(ui.Truncate(t.Title, width-8))
		if i == m.col && j == row {
			b.WriteString(theme.SelectedItemStyle.Render(label))
		} else {
			b.WriteString(theme.ListItemStyle.Render(label))
		}
		b.WriteString("\n")
	}

	style := theme.PanelStyle
	if i == m.col {
		style = theme.FocusedPanelStyle
	}
	return style.Width(width).Height(height).Render(strings.TrimRight(b.String(), "\n"))
}

func (m Model) formWidth() int {
	w := m.width - 4
	if w < 40 {
		w = 40
	}
	if w > 100 {
		w = 100
	}
	return w
}

// SetSize updates the board dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.filterInput.Width = width - 6
	m.taskForm.SetSize(width, height)
}
