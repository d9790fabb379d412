package taskform

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/theme"
)

// SubmittedMsg is dispatched when the form completes. TaskID is empty for a
// new task.
type SubmittedMsg struct {
	TaskID model.ID
	Input  model.TaskInput
}

// CancelMsg is dispatched when the user aborts the form.
type CancelMsg struct{}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	title       string
	description string
	kanbanID    string
	userIDs     []string
}

// Model is the task create/edit form.
type Model struct {
	form     *huh.Form
	fb       *formBindings
	editMode bool
	editID   model.ID
	original model.Task
	kanbans  []model.Kanban
	members  []model.User
	width    int
	height   int
}

// New creates a new task form model.
func New(width, height int) Model {
	return Model{
		fb:     &formBindings{},
		width:  width,
		height: height,
	}
}

// SetOptions sets the boards and assignable users offered by the form.
func (m *Model) SetOptions(kanbans []model.Kanban, members []model.User) {
	m.kanbans = kanbans
	m.members = members
}

// StartCreate initializes the form for a new task on kanbanID.
func (m *Model) StartCreate(kanbanID model.ID) tea.Cmd {
	m.editMode = false
	m.editID = ""
	m.original = model.Task{}
	m.fb.title = ""
	m.fb.description = ""
	m.fb.kanbanID = string(kanbanID)
	m.fb.userIDs = nil
	m.form = m.buildForm()
	return m.form.Init()
}

// StartEdit initializes the form for editing an existing task.
func (m *Model) StartEdit(t model.Task) tea.Cmd {
	m.editMode = true
	m.editID = t.ID
	m.original = t
	m.fb.title = t.Title
	m.fb.description = t.Description
	m.fb.kanbanID = string(t.KanbanID)
	m.fb.userIDs = nil
	for _, u := range t.Users {
		m.fb.userIDs = append(m.fb.userIDs, string(u.ID))
	}
	m.form = m.buildForm()
	return m.form.Init()
}

// Update handles messages for the task form.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		return m, m.handleSubmit()
	}
	if m.form.State == huh.StateAborted {
		return m, func() tea.Msg { return CancelMsg{} }
	}

	return m, cmd
}

// View renders the task form.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}

	titleText := "New Task"
	if m.editMode {
		titleText = "Edit Task"
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	content := titleStyle.Render(titleText) + "\n" + m.form.View()

	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(content)
}

// SetSize updates the form dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Model) buildForm() *huh.Form {
	fields := []huh.Field{
		huh.NewInput().
			Title("Title").
			Placeholder("What needs to be done?").
			Value(&m.fb.title).
			Validate(validateRequired("Title")),
		huh.NewText().
			Title("Description").
			Placeholder("Markdown supported").
			Value(&m.fb.description),
	}
	if !m.editMode && len(m.kanbans) > 1 {
		opts := make([]huh.Option[string], len(m.kanbans))
		for i, k := range m.kanbans {
			opts[i] = huh.NewOption(k.Name, string(k.ID))
		}
		fields = append(fields, huh.NewSelect[string]().
			Title("Board").
			Options(opts...).
			Value(&m.fb.kanbanID))
	}
	if len(m.members) > 0 {
		opts := make([]huh.Option[string], len(m.members))
		for i, u := range m.members {
			opts[i] = huh.NewOption(u.DisplayName(), string(u.ID))
		}
		fields = append(fields, huh.NewMultiSelect[string]().
			Title("Assignees").
			Options(opts...).
			Value(&m.fb.userIDs))
	}

	return huh.NewForm(
		huh.NewGroup(fields...),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

// handleSubmit builds the payload. Edits send only the fields that changed.
func (m Model) handleSubmit() tea.Cmd {
	title := strings.TrimSpace(m.fb.title)
	description := m.fb.description
	userIDs := make([]model.ID, len(m.fb.userIDs))
	for i, id := range m.fb.userIDs {
		userIDs[i] = model.ID(id)
	}

	if !m.editMode {
		in := model.TaskInput{
			Title:       &title,
			Description: &description,
			KanbanID:    model.ID(m.fb.kanbanID),
			UserIDs:     userIDs,
		}
		return func() tea.Msg { return SubmittedMsg{Input: in} }
	}

	var in model.TaskInput
	if title != m.original.Title {
		in.Title = &title
	}
	if description != m.original.Description {
		in.Description = &description
	}
	if !sameUsers(m.original.Users, userIDs) {
		in.UserIDs = userIDs
	}
	id := m.editID
	return func() tea.Msg { return SubmittedMsg{TaskID: id, Input: in} }
}

func sameUsers(users []model.User, ids []model.ID) bool {
	if len(users) != len(ids) {
		return false
	}
	seen := make(map[model.ID]bool, len(users))
	for _, u := range users {
		seen[u.ID] = true
	}
	for _, id := range ids {
		if !seen[id] {
			return false
		}
	}
	return true
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

func (m Model) formHeight() int {
	h := m.height - 4
	if h < 10 {
		h = 10
	}
	return h
}

func validateRequired(fieldName string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
		return nil
	}
}
