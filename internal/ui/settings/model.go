package settings

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	log "github.com/sirupsen/logrus"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"github.com/nhle/taskboard/internal/i18n"
	"github.com/nhle/taskboard/internal/keys"
	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/store"
	"github.com/nhle/taskboard/internal/theme"
)

// Preferences persists settings chosen in this view.
type Preferences interface {
	SetPreference(ctx context.Context, key, value string) error
}

// LanguageChangedMsg is emitted once the language preference is saved.
type LanguageChangedMsg struct {
	Tag language.Tag
}

// LogoutMsg asks the root model to end the session.
type LogoutMsg struct{}

type savedMsg struct {
	tag language.Tag
	err error
}

type row int

const (
	rowLanguage row = iota
	rowLogout
	rowCount
)

type mode int

const (
	modeList mode = iota
	modeLanguage
	modeConfirmLogout
)

type formBindings struct {
	language string
	confirm  bool
}

// Model is the settings view: the signed-in account, backend endpoints,
// UI language and logout.
type Model struct {
	prefs   Preferences
	keys    *keys.KeyMap
	tr      i18n.Translator
	user    model.User
	cfg     model.AppConfig
	cursor  row
	mode    mode
	form    *huh.Form
	fb      *formBindings
	status  string
	width   int
	height  int
}

// New creates the settings view.
func New(prefs Preferences, cfg model.AppConfig, k *keys.KeyMap, tr i18n.Translator, width, height int) Model {
	return Model{
		prefs:  prefs,
		keys:   k,
		tr:     tr,
		cfg:    cfg,
		fb:     &formBindings{},
		width:  width,
		height: height,
	}
}

// SetUser sets the account shown at the top.
func (m *Model) SetUser(u model.User) {
	m.user = u
}

// SetTranslator switches the UI language.
func (m *Model) SetTranslator(tr i18n.Translator) {
	m.tr = tr
}

// Busy reports whether a form owns the keyboard.
func (m Model) Busy() bool {
	return m.mode != modeList
}

// Update handles messages for the settings view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if saved, ok := msg.(savedMsg); ok {
		if saved.err != nil {
			log.WithError(saved.err).Warn("saving language preference failed")
			m.status = fmt.Sprintf("Saving language failed: %v", saved.err)
			return m, nil
		}
		m.status = ""
		tag := saved.tag
		return m, func() tea.Msg { return LanguageChangedMsg{Tag: tag} }
	}

	if m.mode != modeList {
		return m.updateForm(msg)
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(keyMsg, m.keys.Down):
		if m.cursor < rowCount-1 {
			m.cursor++
		}
	case key.Matches(keyMsg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(keyMsg, m.keys.Select):
		switch m.cursor {
		case rowLanguage:
			return m.openLanguage()
		case rowLogout:
			m.fb.confirm = false
			m.form = huh.NewForm(huh.NewGroup(
				huh.NewConfirm().
					Title(m.tr.T(i18n.Logout) + "?").
					Affirmative("Yes").
					Negative("No").
					Value(&m.fb.confirm),
			)).WithWidth(50)
			m.mode = modeConfirmLogout
			return m, m.form.Init()
		}
	}
	return m, nil
}

func (m Model) openLanguage() (Model, tea.Cmd) {
	opts := make([]huh.Option[string], 0, len(i18n.Supported))
	for _, tag := range i18n.Supported {
		opts = append(opts, huh.NewOption(languageName(tag), i18n.Code(tag)))
	}
	m.fb.language = i18n.Code(m.tr.Tag())
	m.form = huh.NewForm(huh.NewGroup(
		huh.NewSelect[string]().
			Title(m.tr.T(i18n.Language)).
			Options(opts...).
			Value(&m.fb.language),
	)).WithWidth(50)
	m.mode = modeLanguage
	return m, m.form.Init()
}

func (m Model) updateForm(msg tea.Msg) (Model, tea.Cmd) {
	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateAborted:
		m.mode = modeList
		return m, nil
	case huh.StateCompleted:
		current := m.mode
		m.mode = modeList
		if current == modeConfirmLogout {
			if !m.fb.confirm {
				return m, nil
			}
			return m, func() tea.Msg { return LogoutMsg{} }
		}

		return m, m.saveLanguage(m.fb.language)
	}
	return m, cmd
}

func (m Model) saveLanguage(pref string) tea.Cmd {
	tag := i18n.Match(pref)
	prefs := m.prefs
	return func() tea.Msg {
		err := prefs.SetPreference(context.Background(), store.PrefLanguage, i18n.Code(tag))
		return savedMsg{tag: tag, err: err}
	}
}

// languageName renders a tag in its own language, e.g. "español".
func languageName(tag language.Tag) string {
	return display.Self.Name(tag)
}

// View renders the settings view.
func (m Model) View() string {
	if m.mode != modeList && m.form != nil {
		return lipgloss.NewStyle().Padding(1, 2).Render(m.form.View())
	}

	var b strings.Builder
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)
	labelStyle := lipgloss.NewStyle().Foreground(theme.ColorGray).Width(12)

	b.WriteString(titleStyle.Render(m.tr.T(i18n.Settings)))
	b.WriteString("\n\n")

	if m.user.ID != "" {
		b.WriteString(labelStyle.Render("Account") + m.user.DisplayName())
		if m.user.Email != "" && m.user.Email != m.user.DisplayName() {
			b.WriteString(theme.MutedStyle.Render(" <" + m.user.Email + ">"))
		}
		b.WriteString("\n")
	}
	b.WriteString(labelStyle.Render("Backend") + m.cfg.API.BaseURL + "/api/" + m.cfg.API.Version + "\n")
	b.WriteString(labelStyle.Render("Web") + m.cfg.Web.BaseURL + "\n\n")

	rows := []string{
		fmt.Sprintf("%s: %s", m.tr.T(i18n.Language), languageName(m.tr.Tag())),
		m.tr.T(i18n.Logout),
	}
	for i, r := range rows {
		if row(i) == m.cursor {
			b.WriteString(theme.SelectedItemStyle.Render("› " + r))
		} else {
			b.WriteString(theme.ListItemStyle.Render("  " + r))
		}
		b.WriteString("\n")
	}

	if m.status != "" {
		b.WriteString("\n")
		b.WriteString(theme.ErrorStyle.Render(m.status))
	}

	return lipgloss.NewStyle().Padding(0, 1).Width(m.width).Height(m.height).Render(b.String())
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}
