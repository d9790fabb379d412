package projectview

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	log "github.com/sirupsen/logrus"

	"github.com/nhle/taskboard/internal/api"
	"github.com/nhle/taskboard/internal/i18n"
	"github.com/nhle/taskboard/internal/keys"
	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/nav"
	"github.com/nhle/taskboard/internal/theme"
	"github.com/nhle/taskboard/internal/ui"
)

// Service is the subset of the REST client the project view uses.
type Service interface {
	ProjectUsers(ctx context.Context, projectID model.ID) ([]model.ProjectUser, error)
	AcceptInvitation(ctx context.Context, projectID model.ID) error
}

// NewTopicMsg asks the root model to open the topic form for Parent.
type NewTopicMsg struct {
	Parent model.Project
}

// EditMsg asks the root model to open the project form for Project.
// Parent is set when Project is a topic.
type EditMsg struct {
	Project model.Project
	Parent  *model.Project
}

// DeleteMsg asks the root model to confirm deleting Project.
type DeleteMsg struct {
	Project model.Project
	Parent  *model.Project
}

// MembersLoadedMsg carries the users of a project.
type MembersLoadedMsg struct {
	ProjectID model.ID
	Members   []model.ProjectUser
	Err       error
}

type acceptedMsg struct {
	projectID model.ID
	err       error
}

// Model shows one project: its description, topics and members.
// Row 0 is the project itself; rows 1..n are its topics.
type Model struct {
	svc     Service
	keys    *keys.KeyMap
	tr      i18n.Translator
	userID  model.ID
	project *model.Project
	members []model.ProjectUser
	cursor  int
	loading bool
	status  string
	isErr   bool
	width   int
	height  int
}

// New creates the project view.
func New(svc Service, k *keys.KeyMap, tr i18n.Translator, width, height int) Model {
	return Model{
		svc:    svc,
		keys:   k,
		tr:     tr,
		width:  width,
		height: height,
	}
}

// SetUser sets the id used to find the user's own invitation.
func (m *Model) SetUser(id model.ID) {
	m.userID = id
}

// SetTranslator switches the UI language.
func (m *Model) SetTranslator(tr i18n.Translator) {
	m.tr = tr
}

// SetProject shows p and starts loading its members.
func (m *Model) SetProject(p model.Project) tea.Cmd {
	if m.project == nil || m.project.ID != p.ID {
		m.cursor = 0
		m.members = nil
		m.status = ""
	}
	m.project = &p
	if m.cursor > len(p.Topics) {
		m.cursor = len(p.Topics)
	}
	m.loading = true
	return m.loadMembers()
}

// Project returns the project on display.
func (m Model) Project() (model.Project, bool) {
	if m.project == nil {
		return model.Project{}, false
	}
	return *m.project, true
}

func (m Model) loadMembers() tea.Cmd {
	svc := m.svc
	id := m.project.ID
	return func() tea.Msg {
		members, err := svc.ProjectUsers(context.Background(), id)
		return MembersLoadedMsg{ProjectID: id, Members: members, Err: err}
	}
}

// Pending reports whether the current user has an unaccepted invitation.
func (m Model) Pending() bool {
	for _, pu := range m.members {
		if pu.User.ID == m.userID && !pu.Accepted {
			return true
		}
	}
	return false
}

// Update handles messages for the project view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case MembersLoadedMsg:
		if m.project == nil || msg.ProjectID != m.project.ID {
			return m, nil
		}
		m.loading = false
		if msg.Err != nil {
			log.WithError(msg.Err).WithField("project_id", msg.ProjectID).Warn("loading project users failed")
			m.members = nil
			if api.IsAuthError(msg.Err) {
				return m, func() tea.Msg { return ui.AuthExpiredMsg{} }
			}
			return m, nil
		}
		m.members = msg.Members
		return m, nil

	case acceptedMsg:
		if msg.err != nil {
			m.status = "Accepting invitation failed: " + api.UserMessage(msg.err)
			m.isErr = true
			if api.IsAuthError(msg.err) {
				return m, func() tea.Msg { return ui.AuthExpiredMsg{} }
			}
			return m, nil
		}
		m.status = "Invitation accepted"
		m.isErr = false
		if m.project == nil || msg.projectID != m.project.ID {
			return m, nil
		}
		return m, tea.Batch(m.loadMembers(), func() tea.Msg { return ui.ReloadMsg{} })

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if m.project == nil {
		return m, nil
	}
	p := *m.project

	switch {
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(p.Topics) {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Select), key.Matches(msg, m.keys.Right):
		if t, ok := m.selectedTopic(); ok {
			path := nav.TopicPath(p, t)
			return m, func() tea.Msg { return ui.NavigateMsg{Path: path} }
		}
	case key.Matches(msg, m.keys.New):
		return m, func() tea.Msg { return NewTopicMsg{Parent: p} }
	case key.Matches(msg, m.keys.Edit):
		target, parent := m.target()
		return m, func() tea.Msg { return EditMsg{Project: target, Parent: parent} }
	case key.Matches(msg, m.keys.Delete):
		target, parent := m.target()
		return m, func() tea.Msg { return DeleteMsg{Project: target, Parent: parent} }
	case key.Matches(msg, m.keys.Accept):
		if !m.Pending() {
			return m, nil
		}
		svc := m.svc
		id := p.ID
		return m, func() tea.Msg {
			return acceptedMsg{projectID: id, err: svc.AcceptInvitation(context.Background(), id)}
		}
	}
	return m, nil
}

func (m Model) selectedTopic() (model.Topic, bool) {
	if m.project == nil || m.cursor == 0 || m.cursor > len(m.project.Topics) {
		return model.Topic{}, false
	}
	return m.project.Topics[m.cursor-1], true
}

// target returns the row's project, or the selected topic as a project
// together with its parent.
func (m Model) target() (model.Project, *model.Project) {
	p := *m.project
	t, ok := m.selectedTopic()
	if !ok {
		return p, nil
	}
	parentID := p.ID
	return model.Project{
		ID:            t.ID,
		Name:          t.Name,
		Color:         t.Color,
		Description:   t.Description,
		ParentProject: &parentID,
	}, &p
}

// View renders the project view.
func (m Model) View() string {
	if m.project == nil {
		return ui.Placeholder(m.width, m.height, m.tr.T(i18n.NotFound))
	}
	p := m.project

	var b strings.Builder
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)
	sectionStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorGray)

	head := theme.Swatch(p.Color).Render("■") + " " + titleStyle.Render(p.Name)
	if m.cursor == 0 {
		head = theme.SelectedItemStyle.Render(head)
	}
	b.WriteString(head)
	b.WriteString("\n")
	if desc := ui.RenderMarkdown(p.Description, m.width-4); desc != "" {
		b.WriteString(desc)
	}
	b.WriteString("\n")

	b.WriteString(sectionStyle.Render(fmt.Sprintf("Topics (%d)", len(p.Topics))))
	b.WriteString("\n")
	if len(p.Topics) == 0 {
		b.WriteString(theme.HelpStyle.Render("No topics. Press n to add one."))
		b.WriteString("\n")
	}
	for i, t := range p.Topics {
		line := theme.Swatch(t.Color).Render("●") + " " + t.Name
		if i+1 == m.cursor {
			b.WriteString(theme.SelectedItemStyle.Render(line))
		} else {
			b.WriteString(theme.ListItemStyle.Render(line))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString(sectionStyle.Render("Members"))
	b.WriteString("\n")
	switch {
	case m.loading:
		b.WriteString(theme.HelpStyle.Render(m.tr.T(i18n.Loading)))
		b.WriteString("\n")
	case len(m.members) == 0:
		b.WriteString(theme.HelpStyle.Render("—"))
		b.WriteString("\n")
	}
	for _, pu := range m.members {
		line := "  " + pu.User.DisplayName()
		if !pu.Accepted {
			line += theme.MutedStyle.Render("  (invited)")
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	if m.Pending() {
		b.WriteString("\n")
		b.WriteString(theme.BadgeStyle.Render("You are invited. Press a to accept."))
		b.WriteString("\n")
	}

	if m.status != "" {
		b.WriteString("\n")
		if m.isErr {
			b.WriteString(theme.ErrorStyle.Render(m.status))
		} else {
			b.WriteString(theme.MutedStyle.Render(m.status))
		}
	}

	return lipgloss.NewStyle().Padding(0, 1).Width(m.width).Height(m.height).Render(b.String())
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}
