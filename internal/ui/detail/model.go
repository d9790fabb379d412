package detail

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	log "github.com/sirupsen/logrus"

	"github.com/nhle/taskboard/internal/api"
	"github.com/nhle/taskboard/internal/i18n"
	"github.com/nhle/taskboard/internal/keys"
	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/theme"
	"github.com/nhle/taskboard/internal/ui"
)

// CommentService is the subset of the REST client the detail view uses.
type CommentService interface {
	TaskComments(ctx context.Context, taskID model.ID) ([]model.Comment, error)
	CreateComment(ctx context.Context, in model.CommentInput) (*model.Comment, error)
	DeleteComment(ctx context.Context, id model.ID) error
}

// BackMsg signals the parent to close the detail view.
type BackMsg struct{}

// CommentsLoadedMsg carries the comments of a task.
type CommentsLoadedMsg struct {
	TaskID   model.ID
	Comments []model.Comment
	Err      error
}

type commentSavedMsg struct {
	taskID model.ID
	err    error
}

type formBindings struct {
	text    string
	confirm bool
}

type mode int

const (
	modeView mode = iota
	modeComment
	modeConfirm
)

// Model is the task detail view component.
type Model struct {
	svc      CommentService
	keys     *keys.KeyMap
	tr       i18n.Translator
	userID   model.ID
	task     *model.Task
	context  string
	comments []model.Comment
	selected int
	viewport viewport.Model
	form     *huh.Form
	fb       *formBindings
	mode     mode
	loading  bool
	status   string
	now      func() time.Time
	width    int
	height   int
}

// New creates a new detail view model.
func New(svc CommentService, k *keys.KeyMap, tr i18n.Translator, width, height int) Model {
	vp := viewport.New(width, height-2)
	vp.Style = lipgloss.NewStyle()

	return Model{
		svc:      svc,
		keys:     k,
		tr:       tr,
		viewport: vp,
		fb:       &formBindings{},
		now:      time.Now,
		width:    width,
		height:   height,
	}
}

// SetUser sets the id used to decide which comments can be deleted.
func (m *Model) SetUser(id model.ID) {
	m.userID = id
}

// SetTranslator switches the UI language.
func (m *Model) SetTranslator(tr i18n.Translator) {
	m.tr = tr
}

// Open shows t and starts loading its comments. where describes the
// task's location, e.g. "Alpha › Road Map".
func (m *Model) Open(t model.Task, where string) tea.Cmd {
	m.task = &t
	m.context = where
	m.comments = nil
	m.selected = -1
	m.mode = modeView
	m.loading = true
	m.status = ""
	m.refresh()
	m.viewport.GotoTop()
	return m.loadComments()
}

// Task returns the task on display.
func (m Model) Task() (model.Task, bool) {
	if m.task == nil {
		return model.Task{}, false
	}
	return *m.task, true
}

// Busy reports whether a form owns the keyboard.
func (m Model) Busy() bool {
	return m.mode != modeView
}

func (m Model) loadComments() tea.Cmd {
	if m.task == nil {
		return nil
	}
	svc := m.svc
	id := m.task.ID
	return func() tea.Msg {
		comments, err := svc.TaskComments(context.Background(), id)
		return CommentsLoadedMsg{TaskID: id, Comments: comments, Err: err}
	}
}

// Init returns the initial command for the detail view.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the detail view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case CommentsLoadedMsg:
		if m.task == nil || msg.TaskID != m.task.ID {
			return m, nil
		}
		m.loading = false
		if msg.Err != nil {
			log.WithError(msg.Err).WithField("task_id", msg.TaskID).Warn("loading comments failed")
			m.status = m.tr.T(i18n.LoadFailed)
			m.refresh()
			if api.IsAuthError(msg.Err) {
				return m, func() tea.Msg { return ui.AuthExpiredMsg{} }
			}
			return m, nil
		}
		m.comments = msg.Comments
		if m.selected >= len(m.comments) {
			m.selected = len(m.comments) - 1
		}
		m.refresh()
		return m, nil

	case commentSavedMsg:
		if m.task == nil || msg.taskID != m.task.ID {
			return m, nil
		}
		if msg.err != nil {
			m.status = "Saving comment failed: " + api.UserMessage(msg.err)
			m.refresh()
			if api.IsAuthError(msg.err) {
				return m, func() tea.Msg { return ui.AuthExpiredMsg{} }
			}
			return m, nil
		}
		m.status = ""
		return m, m.loadComments()
	}

	switch m.mode {
	case modeComment, modeConfirm:
		return m.updateForm(msg)
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(keyMsg, m.keys.Back):
			return m, func() tea.Msg { return BackMsg{} }

		case key.Matches(keyMsg, m.keys.Comment):
			if m.task == nil {
				return m, nil
			}
			m.fb.text = ""
			m.form = huh.NewForm(huh.NewGroup(
				huh.NewText().
					Title("Comment").
					Placeholder("Markdown supported").
					Value(&m.fb.text),
			)).WithWidth(m.formWidth())
			m.mode = modeComment
			return m, m.form.Init()

		case keyMsg.String() == "]":
			if m.selected < len(m.comments)-1 {
				m.selected++
				m.refresh()
			}
			return m, nil

		case keyMsg.String() == "[":
			if m.selected > 0 {
				m.selected--
				m.refresh()
			}
			return m, nil

		case key.Matches(keyMsg, m.keys.Delete):
			c, ok := m.selectedComment()
			if !ok || c.AuthorID != m.userID {
				m.status = "Select one of your comments with [ and ] to delete it."
				m.refresh()
				return m, nil
			}
			m.fb.confirm = false
			m.form = huh.NewForm(huh.NewGroup(
				huh.NewConfirm().
					Title("Delete this comment?").
					Affirmative("Yes, delete").
					Negative("Cancel").
					Value(&m.fb.confirm),
			)).WithWidth(m.formWidth())
			m.mode = modeConfirm
			return m, m.form.Init()
		}
	}

	// Delegate to viewport for scrolling (j/k, up/down, pgup/pgdn)
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) selectedComment() (model.Comment, bool) {
	if m.selected < 0 || m.selected >= len(m.comments) {
		return model.Comment{}, false
	}
	return m.comments[m.selected], true
}

func (m Model) updateForm(msg tea.Msg) (Model, tea.Cmd) {
	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateAborted:
		m.mode = modeView
		return m, nil
	case huh.StateCompleted:
		current := m.mode
		m.mode = modeView
		svc := m.svc
		taskID := m.task.ID

		if current == modeComment {
			text := strings.TrimSpace(m.fb.text)
			if text == "" {
				return m, nil
			}
			return m, func() tea.Msg {
				_, err := svc.CreateComment(context.Background(), model.CommentInput{Text: text, TaskID: taskID})
				return commentSavedMsg{taskID: taskID, err: err}
			}
		}

		c, ok := m.selectedComment()
		if !m.fb.confirm || !ok {
			return m, nil
		}
		return m, func() tea.Msg {
			err := svc.DeleteComment(context.Background(), c.ID)
			return commentSavedMsg{taskID: taskID, err: err}
		}
	}
	return m, cmd
}

// View renders the detail view.
func (m Model) View() string {
	if m.task == nil {
		return ui.Placeholder(m.width, m.height, "No task selected")
	}
	if m.mode != modeView && m.form != nil {
		return lipgloss.NewStyle().Padding(1, 2).Render(m.form.View())
	}
	return m.viewport.View()
}

func (m *Model) refresh() {
	m.viewport.SetContent(m.renderContent())
}

// renderContent builds the full detail content string for the viewport.
func (m Model) renderContent() string {
	if m.task == nil {
		return ""
	}

	task := m.task
	var sections []string

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)
	sections = append(sections, theme.Checkbox(task.Completed)+" "+titleStyle.Render(task.Title))
	if m.context != "" {
		sections = append(sections, theme.MutedStyle.Render(m.context))
	}
	sections = append(sections, "")

	metaStyle := lipgloss.NewStyle().Foreground(theme.ColorGray)
	valStyle := lipgloss.NewStyle().Foreground(theme.ColorWhite)

	if len(task.Users) > 0 {
		names := make([]string, len(task.Users))
		for i, u := range task.Users {
			names[i] = u.DisplayName()
		}
		sections = append(sections, fmt.Sprintf(
			"%s  %s",
			metaStyle.Render("Assignees:"),
			valStyle.Render(strings.Join(names, ", ")),
		))
	}

	sepStyle := lipgloss.NewStyle().Foreground(theme.ColorSubtle)
	separator := sepStyle.Render(strings.Repeat("─", max(min(m.width-4, 80), 1)))
	sections = append(sections, "", separator, "")

	descHeaderStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite)
	sections = append(sections, descHeaderStyle.Render("Description"))

	body := ui.RenderMarkdown(task.Description, m.width-4)
	if body == "" {
		body = lipgloss.NewStyle().
			Foreground(theme.ColorGray).
			Italic(true).
			Render("No description")
	}
	sections = append(sections, body, "", separator, "")

	sections = append(sections, descHeaderStyle.Render(fmt.Sprintf("Comments (%d)", len(m.comments))))
	sections = append(sections, "")

	switch {
	case m.loading:
		sections = append(sections, theme.HelpStyle.Render(m.tr.T(i18n.Loading)))
	case len(m.comments) == 0:
		sections = append(sections, theme.HelpStyle.Render(m.tr.T(i18n.NoComments)))
	}

	authorStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorBlue)
	for i, c := range m.comments {
		marker := "  "
		if i == m.selected {
			marker = theme.SelectedItemStyle.Render("›")
		}
		header := fmt.Sprintf(
			"%s%s  %s",
			marker,
			authorStyle.Render(c.Author()),
			theme.MutedStyle.Render(m.relative(c.CreatedAt)),
		)
		sections = append(sections, header, ui.RenderMarkdown(c.Text, m.width-6), "")
	}

	if m.status != "" {
		sections = append(sections, theme.ErrorStyle.Render(m.status))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) relative(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return humanize.RelTime(t, m.now(), "ago", "from now")
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

// SetSize updates the detail view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height - 2
	m.refresh()
}
