package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	log "github.com/sirupsen/logrus"

	"github.com/nhle/taskboard/internal/api"
	"github.com/nhle/taskboard/internal/i18n"
	"github.com/nhle/taskboard/internal/keys"
	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/nav"
	"github.com/nhle/taskboard/internal/session"
	appsync "github.com/nhle/taskboard/internal/sync"
	"github.com/nhle/taskboard/internal/theme"
	"github.com/nhle/taskboard/internal/tree"
	"github.com/nhle/taskboard/internal/ui"
	"github.com/nhle/taskboard/internal/ui/board"
	"github.com/nhle/taskboard/internal/ui/command"
	"github.com/nhle/taskboard/internal/ui/dashboard"
	"github.com/nhle/taskboard/internal/ui/detail"
	helpview "github.com/nhle/taskboard/internal/ui/help"
	"github.com/nhle/taskboard/internal/ui/login"
	"github.com/nhle/taskboard/internal/ui/notifications"
	"github.com/nhle/taskboard/internal/ui/projectform"
	"github.com/nhle/taskboard/internal/ui/projectview"
	"github.com/nhle/taskboard/internal/ui/settings"
	"github.com/nhle/taskboard/internal/ui/sidebar"
)

// sessionMsg carries the result of resolving the stored session.
type sessionMsg struct {
	user model.User
	err  error
}

type loggedOutMsg struct{ err error }

// overlay is a panel drawn over the body.
type overlay int

const (
	overlayNone overlay = iota
	overlayPalette
	overlayHelp
)

// Model is the root Bubble Tea model. It owns the route, the loaded project
// tree, and every view; all I/O runs in commands.
type Model struct {
	deps   Deps
	keys   *keys.KeyMap
	tr     i18n.Translator
	layout ui.Layout
	ready  bool

	user     model.User
	loggedIn bool

	tree        []model.Project
	treeLoaded  bool
	treeLoading bool
	treeErr     error
	treeSeq     uint64
	loader      *tree.Loader

	rootCtx  context.Context
	routeCtx context.Context
	cancel   context.CancelFunc
	route    nav.Route
	gen      uint64

	showDetail bool
	overlay    overlay
	poller     *appsync.Poller
	unread     int
	status     string
	statusErr  bool

	login         login.Model
	sidebar       sidebar.Model
	dashboard     dashboard.Model
	board         board.Model
	detail        detail.Model
	notifications notifications.Model
	settings      settings.Model
	projectView   projectview.Model
	projectForm   projectform.Model
	palette       command.Model
	help          helpview.Model
}

// New creates the root application model.
func New(deps Deps) Model {
	if deps.CopyText == nil {
		deps.CopyText = clipboard.WriteAll
	}
	if deps.StartPath == "" {
		deps.StartPath = nav.PathDashboard
	}

	k := keys.DefaultKeyMap()
	tr := i18n.New(deps.Language)
	ctx := context.Background()

	return Model{
		deps:          deps,
		keys:          k,
		tr:            tr,
		loader:        tree.NewLoader(deps.Backend, deps.Config.API.MaxConcurrency),
		rootCtx:       ctx,
		routeCtx:      ctx,
		route:         nav.ParseRoute(nav.PathLogin),
		login:         login.New(deps.Session, 80, 24),
		sidebar:       sidebar.New(k, tr, 24, 24),
		dashboard:     dashboard.New(k, tr, 80, 24),
		board:         board.New(deps.Backend, k, tr, 80, 24),
		detail:        detail.New(deps.Backend, k, tr, 80, 24),
		notifications: notifications.New(deps.Backend, k, tr, 80, 24),
		settings:      settings.New(deps.Prefs, deps.Config, k, tr, 80, 24),
		projectView:   projectview.New(deps.Backend, k, tr, 80, 24),
		projectForm:   projectform.New(deps.Backend, 80, 24),
		palette:       command.New(80, 24),
		help:          helpview.New(k, 80, 24),
	}
}

// Init resolves the stored session; the login view is shown until it
// succeeds.
func (m Model) Init() tea.Cmd {
	return m.resume()
}

func (m Model) resume() tea.Cmd {
	s := m.deps.Session
	ctx := m.rootCtx
	return func() tea.Msg {
		user, err := s.Resume(ctx)
		return sessionMsg{user: user, err: err}
	}
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if next, cmd, ok := m.handleRouteResult(msg); ok {
		return next, cmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m.updateActiveView(msg)

	case sessionMsg:
		return m.handleSession(msg)

	case login.LoggedInMsg:
		return m, m.resume()

	case ui.AuthExpiredMsg:
		// Come back to the same route after signing in again.
		if m.loggedIn {
			m.deps.StartPath = m.route.Path
		}
		return m.signOut("Your session expired. Sign in again.", true)

	case settings.LogoutMsg:
		s := m.deps.Session
		return m, func() tea.Msg {
			return loggedOutMsg{err: s.Logout(context.Background())}
		}

	case loggedOutMsg:
		if msg.err != nil {
			log.WithError(msg.err).Warn("logout failed")
		}
		m.deps.StartPath = nav.PathDashboard
		return m.signOut(m.tr.T(i18n.SignedOut), false)

	case settings.LanguageChangedMsg:
		m.setLanguage(i18n.New(i18n.Code(msg.Tag)))
		return m, nil

	case appsync.NotificationsMsg:
		if m.poller == nil || msg.Source != m.poller {
			return m, nil
		}
		if msg.AuthExpired {
			return m, authExpired
		}
		if msg.Error != nil {
			m.notifications.SetItems(nil, msg.Error)
		} else {
			m.notifications.SetItems(msg.Notifications, nil)
			m.setUnread(msg.Unread)
		}
		return m, m.poller.WaitForNextResult()

	case notifications.ReadMsg:
		m.setUnread(msg.Unread)
		return m, nil

	case ui.NavigateMsg:
		m.overlay = overlayNone
		cmd := m.navigate(msg.Path)
		return m, cmd

	case ui.ReloadMsg:
		cmd := m.reload()
		return m, cmd

	case ui.StatusMsg:
		m.setStatus(msg.Text, msg.Err)
		return m, nil

	case command.SelectedMsg:
		m.overlay = overlayNone
		cmd := m.navigate(msg.Path)
		return m, cmd

	case command.CloseMsg:
		m.overlay = overlayNone
		return m, nil

	case dashboard.OpenTaskMsg:
		where := fmt.Sprintf("%s › %s › %s", msg.Item.Project.Name, msg.Item.Topic.Name, msg.Item.Kanban)
		return m.openDetail(msg.Item.Task, where)

	case board.OpenTaskMsg:
		where := m.routeTitle()
		return m.openDetail(msg.Task, where)

	case detail.BackMsg:
		m.showDetail = false
		return m, nil

	case projectview.NewTopicMsg:
		parent := msg.Parent
		cmd := m.projectForm.StartCreate(&parent)
		return m, cmd

	case projectview.EditMsg:
		cmd := m.projectForm.StartEdit(msg.Project, msg.Parent)
		return m, cmd

	case projectview.DeleteMsg:
		cmd := m.projectForm.StartDelete(msg.Project, msg.Parent)
		return m, cmd

	case projectform.DoneMsg:
		treeCmd := m.loadTree()
		navCmd := m.navigate(msg.Path)
		return m, tea.Batch(treeCmd, navCmd)

	case projectform.CancelMsg:
		return m, nil

	case tea.KeyMsg:
		if next, cmd, handled := m.handleGlobalKey(msg); handled {
			return next, cmd
		}
	}

	return m.updateActiveView(msg)
}

func (m Model) handleSession(msg sessionMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		if !errors.Is(msg.err, session.ErrNoSession) {
			log.WithError(msg.err).Info("stored session unusable")
			m.login.SetBanner("Your session expired. Sign in again.", true)
		}
		m.loggedIn = false
		m.route = nav.ParseRoute(nav.PathLogin)
		cmd := m.login.Init()
		return m, cmd
	}

	m.user = msg.user
	m.loggedIn = true
	log.WithField("user_id", m.user.ID).Info("signed in")

	m.dashboard.SetUser(m.user)
	m.detail.SetUser(m.user.ID)
	m.settings.SetUser(m.user)
	m.projectView.SetUser(m.user.ID)

	interval := time.Duration(m.deps.Config.Display.PollIntervalSec) * time.Second
	if m.poller != nil {
		m.poller.Stop()
	}
	m.poller = appsync.New(m.deps.Backend, m.user.ID, interval)

	path := m.deps.StartPath
	treeCmd := m.loadTree()
	navCmd := m.navigate(path)
	return m, tea.Batch(treeCmd, navCmd, m.poller.Start())
}

// signOut drops all user state and shows the login view.
func (m Model) signOut(banner string, isError bool) (tea.Model, tea.Cmd) {
	if m.poller != nil {
		m.poller.Stop()
		m.poller = nil
	}
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	m.gen++
	m.loggedIn = false
	m.user = model.User{}
	m.tree = nil
	m.treeLoaded = false
	m.treeSeq++
	m.showDetail = false
	m.overlay = overlayNone
	m.setUnread(0)
	m.sidebar.SetTree(nil)
	m.route = nav.ParseRoute(nav.PathLogin)

	m.login.SetBanner(banner, isError)
	cmd := m.login.Init()
	return m, cmd
}

func (m Model) openDetail(t model.Task, where string) (tea.Model, tea.Cmd) {
	m.showDetail = true
	cmd := m.detail.Open(t, where)
	return m, cmd
}

// busy reports whether the focused view is taking text input, in which
// case single-letter global keys must reach it untouched.
func (m Model) busy() bool {
	if m.projectForm.Active() {
		return true
	}
	if m.showDetail {
		return m.detail.Busy()
	}
	switch m.route.Kind {
	case nav.RouteDashboard:
		return m.dashboard.Filtering()
	case nav.RouteTopic:
		return m.board.Busy()
	case nav.RouteSettings:
		return m.settings.Busy()
	}
	return false
}

func (m Model) handleGlobalKey(msg tea.KeyMsg) (Model, tea.Cmd, bool) {
	if msg.String() == "ctrl+c" {
		return m.quit()
	}
	if !m.loggedIn {
		return m, nil, false
	}

	switch m.overlay {
	case overlayPalette:
		var cmd tea.Cmd
		m.palette, cmd = m.palette.Update(msg)
		return m, cmd, true
	case overlayHelp:
		if key.Matches(msg, m.keys.Help) || key.Matches(msg, m.keys.Back) {
			m.overlay = overlayNone
		}
		return m, nil, true
	}

	if key.Matches(msg, m.keys.Palette) && !m.projectForm.Active() {
		m.overlay = overlayPalette
		cmd := m.palette.Open()
		return m, cmd, true
	}
	if m.busy() {
		return m, nil, false
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()
	case key.Matches(msg, m.keys.Help):
		m.overlay = overlayHelp
		return m, nil, true
	case key.Matches(msg, m.keys.FocusSidebar):
		m.sidebar.SetFocused(!m.sidebar.Focused())
		return m, nil, true
	case key.Matches(msg, m.keys.Back) && m.sidebar.Focused():
		m.sidebar.SetFocused(false)
		return m, nil, true
	case key.Matches(msg, m.keys.Dashboard):
		cmd := m.navigate(nav.PathDashboard)
		return m, cmd, true
	case key.Matches(msg, m.keys.Notifications):
		cmd := m.navigate(nav.PathNotifications)
		return m, cmd, true
	case key.Matches(msg, m.keys.Settings):
		cmd := m.navigate(nav.PathSettings)
		return m, cmd, true
	case key.Matches(msg, m.keys.Refresh):
		cmd := m.reload()
		return m, cmd, true
	case key.Matches(msg, m.keys.CopyLink):
		m.copyLink()
		return m, nil, true
	case key.Matches(msg, m.keys.NewProject):
		cmd := m.projectForm.StartCreate(nil)
		return m, cmd, true
	}
	return m, nil, false
}

func (m Model) quit() (Model, tea.Cmd, bool) {
	if m.poller != nil {
		m.poller.Stop()
	}
	if m.cancel != nil {
		m.cancel()
	}
	return m, tea.Quit, true
}

// copyLink puts the web URL of the active route on the clipboard.
func (m *Model) copyLink() {
	link := m.deps.Config.Web.BaseURL + m.route.Path
	if err := m.deps.CopyText(link); err != nil {
		log.WithError(err).Warn("clipboard write failed")
		m.setStatus(fmt.Sprintf("Copy failed: %v", err), true)
		return
	}
	m.setStatus(m.tr.T(i18n.Copied)+": "+link, false)
}

func (m *Model) setStatus(text string, isErr bool) {
	m.status = text
	m.statusErr = isErr
}

func (m *Model) setUnread(n int) {
	m.unread = n
	m.sidebar.SetUnread(n)
}

func (m *Model) setLanguage(tr i18n.Translator) {
	m.tr = tr
	m.sidebar.SetTranslator(tr)
	m.dashboard.SetTranslator(tr)
	m.board.SetTranslator(tr)
	m.detail.SetTranslator(tr)
	m.notifications.SetTranslator(tr)
	m.settings.SetTranslator(tr)
	m.projectView.SetTranslator(tr)
	if m.deps.OnLanguage != nil {
		m.deps.OnLanguage(tr.Tag())
	}
}

func (m *Model) resize(width, height int) {
	m.layout = ui.NewLayout(width, height)
	m.ready = true

	w, h := m.layout.ContentWidth(), m.layout.ContentHeight()
	m.login.SetSize(width, height)
	m.sidebar.SetSize(m.layout.SidebarWidth, h)
	m.dashboard.SetSize(w, h)
	m.board.SetSize(w, h)
	m.detail.SetSize(w, h)
	m.notifications.SetSize(w, h)
	m.settings.SetSize(w, h)
	m.projectView.SetSize(w, h)
	m.projectForm.SetSize(w, h)
	m.palette.SetSize(width, h)
	m.help.SetSize(width, h)
}

// updateActiveView dispatches the message to the view that has focus.
// Keys go to the focused view only; other messages also reach views that
// may be waiting on a reply after focus moved elsewhere.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	if !m.loggedIn {
		m.login, cmd = m.login.Update(msg)
		return m, cmd
	}

	if _, isKey := msg.(tea.KeyMsg); isKey {
		switch {
		case m.projectForm.Active():
			m.projectForm, cmd = m.projectForm.Update(msg)
		case m.sidebar.Focused():
			m.sidebar, cmd = m.sidebar.Update(msg)
		case m.showDetail:
			m.detail, cmd = m.detail.Update(msg)
		default:
			return m.updateRouteView(msg)
		}
		return m, cmd
	}

	var cmds []tea.Cmd
	switch msg.(type) {
	case detail.CommentsLoadedMsg:
		m.detail, cmd = m.detail.Update(msg)
		return m, cmd
	case projectview.MembersLoadedMsg:
		m.projectView, cmd = m.projectView.Update(msg)
		return m, cmd
	}

	if m.overlay == overlayPalette {
		m.palette, cmd = m.palette.Update(msg)
		cmds = append(cmds, cmd)
	}
	m.projectForm, cmd = m.projectForm.Update(msg)
	cmds = append(cmds, cmd)
	if m.showDetail {
		m.detail, cmd = m.detail.Update(msg)
		cmds = append(cmds, cmd)
	}

	next, cmd := m.updateRouteView(msg)
	cmds = append(cmds, cmd)
	return next, tea.Batch(cmds...)
}

func (m Model) updateRouteView(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.route.Kind {
	case nav.RouteDashboard:
		m.dashboard, cmd = m.dashboard.Update(msg)
	case nav.RouteTopic:
		m.board, cmd = m.board.Update(msg)
	case nav.RouteProject:
		m.projectView, cmd = m.projectView.Update(msg)
	case nav.RouteNotifications:
		m.notifications, cmd = m.notifications.Update(msg)
	case nav.RouteSettings:
		m.settings, cmd = m.settings.Update(msg)
	}
	return m, cmd
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return m.tr.T(i18n.Loading)
	}
	if !m.loggedIn {
		return m.login.View()
	}

	title := "taskboard · " + m.routeTitle()
	header := m.layout.RenderHeader(title, m.headerStatus())

	h := m.layout.ContentHeight()
	var body string
	switch m.overlay {
	case overlayPalette:
		body = m.palette.Overlay(m.layout.Width, h)
	case overlayHelp:
		body = lipgloss.Place(m.layout.Width, h, lipgloss.Center, lipgloss.Center, m.help.View())
	default:
		body = m.layout.RenderBody(m.sidebar.View(), m.renderContent())
	}

	return m.layout.RenderWithFrame(header, body, m.layout.RenderStatusBar(m.statusLine()))
}

// renderContent returns the rendered string for the active view.
func (m Model) renderContent() string {
	w, h := m.layout.ContentWidth(), m.layout.ContentHeight()
	if m.projectForm.Active() {
		return lipgloss.NewStyle().Width(w).Height(h).Render(m.projectForm.View())
	}
	if m.showDetail {
		return m.detail.View()
	}

	if !m.resolved() {
		if m.treeLoading || !m.treeLoaded {
			return ui.Placeholder(w, h, m.tr.T(i18n.Loading))
		}
		return ui.Placeholder(w, h, m.tr.T(i18n.NotFound))
	}

	switch m.route.Kind {
	case nav.RouteDashboard:
		return m.dashboard.View()
	case nav.RouteTopic:
		return m.board.View()
	case nav.RouteProject:
		return m.projectView.View()
	case nav.RouteNotifications:
		return m.notifications.View()
	case nav.RouteSettings:
		return m.settings.View()
	default:
		return ui.Placeholder(w, h, m.tr.T(i18n.NotFound))
	}
}

// headerStatus shows who is signed in and the unread badge.
func (m Model) headerStatus() string {
	status := m.user.DisplayName()
	if m.unread > 0 {
		status = fmt.Sprintf("%s  ● %d %s", status, m.unread, m.tr.T(i18n.Unread))
	}
	if m.poller != nil && m.poller.Status().State == appsync.PollError {
		status += "  ⚠ offline"
	}
	return status
}

// statusLine returns the most relevant message for the status bar, falling
// back to key hints.
func (m Model) statusLine() string {
	if m.status != "" {
		if m.statusErr {
			return theme.ErrorStyle.Render(m.status)
		}
		return m.status
	}
	if m.route.Kind == nav.RouteTopic && !m.showDetail {
		if text, isErr := m.board.Status(); text != "" {
			if isErr {
				return theme.ErrorStyle.Render(text)
			}
			return text
		}
	}
	if m.treeErr != nil {
		return theme.ErrorStyle.Render(api.UserMessage(m.treeErr))
	}
	return m.help.ShortView()
}
