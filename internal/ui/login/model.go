package login

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/taskboard/internal/api"
	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/theme"
)

// Authenticator runs the login and registration flows. session.Session
// satisfies it.
type Authenticator interface {
	Login(ctx context.Context, email, password string, onSuccess func(token string)) error
	Register(ctx context.Context, u model.NewUser) (*model.User, error)
}

// LoggedInMsg is dispatched after a successful login with the stored token.
type LoggedInMsg struct {
	Token string
}

type loginFailedMsg struct{ err error }

type registeredMsg struct {
	email string
	err   error
}

type mode int

const (
	modeLogin mode = iota
	modeRegister
)

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	email    string
	password string
	name     string
	surname  string
	register bool
}

// Model is the sign-in view.
type Model struct {
	auth    Authenticator
	form    *huh.Form
	fb      *formBindings
	mode    mode
	pending bool
	banner  string
	isError bool
	width   int
	height  int
}

// New creates a new login view.
func New(auth Authenticator, width, height int) Model {
	return Model{
		auth:   auth,
		fb:     &formBindings{},
		width:  width,
		height: height,
	}
}

// Init builds the sign-in form.
func (m *Model) Init() tea.Cmd {
	m.mode = modeLogin
	m.pending = false
	m.fb.password = ""
	m.fb.register = false
	m.form = m.buildLoginForm()
	return m.form.Init()
}

// SetBanner shows a message above the form.
func (m *Model) SetBanner(text string, isError bool) {
	m.banner = text
	m.isError = isError
}

// Update handles messages for the login view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loginFailedMsg:
		m.SetBanner(loginErrorText(msg.err), true)
		cmd := m.Init()
		return m, cmd

	case registeredMsg:
		if msg.err != nil {
			m.SetBanner(api.UserMessage(msg.err), true)
			m.pending = false
			m.form = m.buildRegisterForm()
			return m, m.form.Init()
		}
		m.SetBanner("Account created. Sign in to continue.", false)
		m.fb.email = msg.email
		cmd := m.Init()
		return m, cmd
	}

	if m.form == nil || m.pending {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		return m.submit()
	case huh.StateAborted:
		if m.mode == modeRegister {
			m.SetBanner("", false)
			cmd := m.Init()
			return m, cmd
		}
		return m, tea.Quit
	}

	return m, cmd
}

func (m Model) submit() (Model, tea.Cmd) {
	if m.mode == modeLogin && m.fb.register {
		m.mode = modeRegister
		m.fb.password = ""
		m.SetBanner("", false)
		m.form = m.buildRegisterForm()
		return m, m.form.Init()
	}

	m.pending = true
	auth := m.auth
	fb := *m.fb

	if m.mode == modeRegister {
		return m, func() tea.Msg {
			_, err := auth.Register(context.Background(), model.NewUser{
				Name:     strings.TrimSpace(fb.name),
				Surname:  strings.TrimSpace(fb.surname),
				Email:    strings.TrimSpace(fb.email),
				Password: fb.password,
			})
			return registeredMsg{email: fb.email, err: err}
		}
	}

	return m, func() tea.Msg {
		var msg tea.Msg
		err := auth.Login(context.Background(), fb.email, fb.password, func(token string) {
			msg = LoggedInMsg{Token: token}
		})
		if err != nil {
			return loginFailedMsg{err: err}
		}
		return msg
	}
}

func loginErrorText(err error) string {
	if api.IsAuthError(err) {
		return "Invalid email or password."
	}
	if api.Classify(err) == api.KindNetwork {
		return fmt.Sprintf("Could not sign in: %v", err)
	}
	return api.UserMessage(err)
}

// View renders the login view.
func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	title := "Sign in"
	if m.mode == modeRegister {
		title = "Create account"
	}

	parts := []string{titleStyle.Render(title)}
	if m.banner != "" {
		style := lipgloss.NewStyle().Foreground(theme.ColorGreen)
		if m.isError {
			style = theme.ErrorStyle
		}
		parts = append(parts, style.Render(m.banner))
	}
	if m.pending {
		parts = append(parts, theme.HelpStyle.Render("Working…"))
	} else if m.form != nil {
		parts = append(parts, m.form.View())
	}

	box := theme.PanelStyle.
		Width(m.formWidth() + 4).
		Render(lipgloss.JoinVertical(lipgloss.Left, parts...))

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Model) buildLoginForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Email").
				Placeholder("you@example.com").
				Value(&m.fb.email).
				Validate(validateRequired("Email")),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&m.fb.password).
				Validate(validateRequired("Password")),
			huh.NewConfirm().
				Title("New here?").
				Affirmative("Create account").
				Negative("Sign in").
				Value(&m.fb.register),
		),
	).WithWidth(m.formWidth()).WithShowHelp(false)
}

func (m *Model) buildRegisterForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Value(&m.fb.name).
				Validate(validateRequired("Name")),
			huh.NewInput().
				Title("Surname").
				Value(&m.fb.surname),
			huh.NewInput().
				Title("Email").
				Value(&m.fb.email).
				Validate(validateRequired("Email")),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&m.fb.password).
				Validate(validateRequired("Password")),
		),
	).WithWidth(m.formWidth()).WithShowHelp(false)
}

func (m Model) formWidth() int {
	w := m.width / 2
	if w < 36 {
		w = 36
	}
	if w > 60 {
		w = 60
	}
	return w
}

func validateRequired(fieldName string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
		return nil
	}
}
