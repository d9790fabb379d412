// Package projectform creates, edits and deletes projects and topics.
// A topic is a project whose parent is another project.
package projectform

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	log "github.com/sirupsen/logrus"

	"github.com/nhle/taskboard/internal/api"
	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/nav"
	"github.com/nhle/taskboard/internal/theme"
	"github.com/nhle/taskboard/internal/ui"
)

// Service is the subset of the REST client the form needs.
type Service interface {
	CreateProject(ctx context.Context, in model.ProjectInput) (*model.Project, error)
	UpdateProject(ctx context.Context, id model.ID, in model.ProjectInput) (*model.Project, error)
	DeleteProject(ctx context.Context, id model.ID) error
}

// DoneMsg reports a successful mutation. Path is the route to show next.
type DoneMsg struct {
	Path    string
	Deleted bool
}

// CancelMsg signals the form was dismissed without changes.
type CancelMsg struct{}

type resultMsg struct {
	path    string
	deleted bool
	err     error
}

type formMode int

const (
	modeIdle formMode = iota
	modeForm
	modeConfirmDelete
	modeSaving
)

type formBindings struct {
	name        string
	description string
	color       string
	confirm     bool
}

var hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// Model is the project/topic form.
type Model struct {
	svc    Service
	mode   formMode
	form   *huh.Form
	fb     *formBindings
	parent *model.Project
	// editing is the project being edited or deleted; nil when creating.
	editing *model.Project
	status  string
	width   int
	height  int
}

// New creates a project form.
func New(svc Service, width, height int) Model {
	return Model{
		svc:    svc,
		fb:     &formBindings{},
		width:  width,
		height: height,
	}
}

// Active reports whether the form is showing.
func (m Model) Active() bool {
	return m.mode != modeIdle
}

// StartCreate opens an empty form. A non-nil parent creates a topic.
func (m *Model) StartCreate(parent *model.Project) tea.Cmd {
	m.parent = parent
	m.editing = nil
	m.fb.name = ""
	m.fb.description = ""
	m.fb.color = "#5B9BD5"
	if parent != nil && parent.Color != "" {
		m.fb.color = parent.Color
	}
	m.status = ""
	return m.open()
}

// StartEdit opens the form prefilled from p. parent is set when p is a
// topic.
func (m *Model) StartEdit(p model.Project, parent *model.Project) tea.Cmd {
	m.parent = parent
	m.editing = &p
	m.fb.name = p.Name
	m.fb.description = p.Description
	m.fb.color = p.Color
	m.status = ""
	return m.open()
}

// StartDelete asks for confirmation before deleting p.
func (m *Model) StartDelete(p model.Project, parent *model.Project) tea.Cmd {
	m.parent = parent
	m.editing = &p
	m.fb.confirm = false
	m.status = ""

	what := "project"
	desc := "Its topics, boards and tasks are deleted on the server."
	if parent != nil {
		what = "topic"
		desc = "Its boards and tasks are deleted on the server."
	}
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Delete %s %q?", what, p.Name)).
				Description(desc).
				Affirmative("Yes, delete").
				Negative("Cancel").
				Value(&m.fb.confirm),
		),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
	m.mode = modeConfirmDelete
	return m.form.Init()
}

func (m *Model) open() tea.Cmd {
	m.form = m.buildForm()
	m.mode = modeForm
	return m.form.Init()
}

func (m Model) buildForm() *huh.Form {
	namePlaceholder := "Project name"
	if m.parent != nil {
		namePlaceholder = "Topic name"
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Placeholder(namePlaceholder).
				Value(&m.fb.name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("name is required")
					}
					return nil
				}),
			huh.NewText().
				Title("Description").
				Placeholder("Optional, markdown supported").
				Value(&m.fb.description),
			huh.NewInput().
				Title("Color").
				Placeholder("#5B9BD5").
				Value(&m.fb.color).
				Validate(validColor),
		),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func validColor(s string) error {
	if s == "" || hexColor.MatchString(s) {
		return nil
	}
	return fmt.Errorf("color must look like #RRGGBB")
}

// Update handles messages while the form is active.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if res, ok := msg.(resultMsg); ok {
		if res.err != nil {
			log.WithError(res.err).Warn("project mutation failed")
			m.status = api.UserMessage(res.err)
			switch {
			case api.IsAuthError(res.err):
				m.mode = modeIdle
				return m, func() tea.Msg { return ui.AuthExpiredMsg{} }
			case res.deleted:
				m.mode = modeIdle
				status := "Delete failed: " + m.status
				return m, func() tea.Msg { return ui.StatusMsg{Text: status, Err: true} }
			}
			// Reopen with the values the user typed.
			cmd := m.open()
			return m, cmd
		}
		m.mode = modeIdle
		path, deleted := res.path, res.deleted
		return m, func() tea.Msg { return DoneMsg{Path: path, Deleted: deleted} }
	}

	if m.form == nil || (m.mode != modeForm && m.mode != modeConfirmDelete) {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateAborted:
		m.mode = modeIdle
		return m, func() tea.Msg { return CancelMsg{} }
	case huh.StateCompleted:
		if m.mode == modeConfirmDelete {
			if !m.fb.confirm {
				m.mode = modeIdle
				return m, func() tea.Msg { return CancelMsg{} }
			}
			m.mode = modeSaving
			return m, m.delete()
		}
		m.mode = modeSaving
		return m, m.save()
	}
	return m, cmd
}

// input builds the request body from the bound form values.
func (m Model) input() model.ProjectInput {
	in := model.ProjectInput{
		Name:        strings.TrimSpace(m.fb.name),
		Description: m.fb.description,
		Color:       m.fb.color,
	}
	if m.parent != nil {
		id := m.parent.ID
		in.ParentProject = &id
	}
	return in
}

func (m Model) pathFor(name string) string {
	if m.parent != nil {
		return nav.TopicPath(*m.parent, model.Topic{Name: name})
	}
	return nav.ProjectPath(model.Project{Name: name})
}

func (m Model) save() tea.Cmd {
	svc := m.svc
	in := m.input()
	path := m.pathFor(in.Name)
	editing := m.editing
	return func() tea.Msg {
		var err error
		if editing == nil {
			_, err = svc.CreateProject(context.Background(), in)
		} else {
			_, err = svc.UpdateProject(context.Background(), editing.ID, in)
		}
		return resultMsg{path: path, err: err}
	}
}

func (m Model) delete() tea.Cmd {
	svc := m.svc
	id := m.editing.ID
	path := nav.PathDashboard
	if m.parent != nil {
		path = nav.ProjectPath(*m.parent)
	}
	return func() tea.Msg {
		err := svc.DeleteProject(context.Background(), id)
		return resultMsg{path: path, deleted: true, err: err}
	}
}

// View renders the form.
func (m Model) View() string {
	if m.form == nil || m.mode == modeIdle {
		return ""
	}
	var b strings.Builder
	if m.mode == modeSaving {
		b.WriteString(theme.MutedStyle.Render("Saving…"))
		return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
	}
	if m.status != "" {
		b.WriteString(theme.ErrorStyle.Render(m.status))
		b.WriteString("\n\n")
	}
	b.WriteString(m.form.View())
	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}

// SetSize updates dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
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
