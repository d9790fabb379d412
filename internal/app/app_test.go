package app

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/nav"
	"github.com/nhle/taskboard/internal/session"
	appsync "github.com/nhle/taskboard/internal/sync"
	"github.com/nhle/taskboard/internal/ui"
	"github.com/nhle/taskboard/internal/ui/command"
)

type fakeBackend struct {
	projects []model.Project
	topics   map[model.ID][]model.Topic
	kanbans  map[model.ID][]model.Kanban
}

func (f *fakeBackend) UserProjects(context.Context, model.ID) ([]model.Project, error) {
	return f.projects, nil
}

func (f *fakeBackend) ProjectTopics(_ context.Context, id model.ID) ([]model.Topic, error) {
	return f.topics[id], nil
}

func (f *fakeBackend) TopicKanbans(_ context.Context, id model.ID) ([]model.Kanban, error) {
	return f.kanbans[id], nil
}

func (f *fakeBackend) CreateTask(context.Context, model.TaskInput) (*model.Task, error) {
	return &model.Task{}, nil
}

func (f *fakeBackend) UpdateTask(context.Context, model.ID, model.TaskInput) (*model.Task, error) {
	return &model.Task{}, nil
}

func (f *fakeBackend) DeleteTask(context.Context, model.ID) error { return nil }

func (f *fakeBackend) CreateKanban(context.Context, model.KanbanInput) (*model.Kanban, error) {
	return &model.Kanban{}, nil
}

func (f *fakeBackend) DeleteKanban(context.Context, model.ID) error { return nil }

func (f *fakeBackend) TaskComments(context.Context, model.ID) ([]model.Comment, error) {
	return nil, nil
}

func (f *fakeBackend) CreateComment(context.Context, model.CommentInput) (*model.Comment, error) {
	return &model.Comment{}, nil
}

func (f *fakeBackend) DeleteComment(context.Context, model.ID) error { return nil }

func (f *fakeBackend) MarkNotificationRead(context.Context, model.ID) error { return nil }

func (f *fakeBackend) CreateProject(context.Context, model.ProjectInput) (*model.Project, error) {
	return &model.Project{}, nil
}

func (f *fakeBackend) UpdateProject(context.Context, model.ID, model.ProjectInput) (*model.Project, error) {
	return &model.Project{}, nil
}

func (f *fakeBackend) DeleteProject(context.Context, model.ID) error { return nil }

func (f *fakeBackend) ProjectUsers(context.Context, model.ID) ([]model.ProjectUser, error) {
	return nil, nil
}

func (f *fakeBackend) AcceptInvitation(context.Context, model.ID) error { return nil }

func (f *fakeBackend) Notifications(context.Context, model.ID) ([]model.Notification, error) {
	return nil, nil
}

type fakeSession struct {
	user      model.User
	err       error
	loggedOut bool
}

func (f *fakeSession) Login(_ context.Context, _, _ string, onSuccess func(string)) error {
	onSuccess("token")
	return nil
}

func (f *fakeSession) Register(context.Context, model.NewUser) (*model.User, error) {
	return &model.User{}, nil
}

func (f *fakeSession) Resume(context.Context) (model.User, error) {
	return f.user, f.err
}

func (f *fakeSession) Logout(context.Context) error {
	f.loggedOut = true
	return nil
}

type fakePrefs struct{}

func (fakePrefs) SetPreference(context.Context, string, string) error { return nil }

func alphaTree() []model.Project {
	return []model.Project{
		{ID: "p1", Name: "Alpha", Topics: []model.Topic{{ID: "t1", Name: "Road Map"}}},
		{ID: "p2", Name: "Beta Two", Topics: []model.Topic{}},
	}
}

func newTestModel(t *testing.T) (Model, *[]string) {
	t.Helper()
	var copied []string
	deps := Deps{
		Backend: &fakeBackend{
			kanbans: map[model.ID][]model.Kanban{
				"t1": {{ID: "k1", Name: "Todo", Tasks: []model.Task{{ID: "1", Title: "write"}}}},
			},
		},
		Session: &fakeSession{user: model.User{ID: "u1", Name: "Ada"}},
		Prefs:   fakePrefs{},
		CopyText: func(s string) error {
			copied = append(copied, s)
			return nil
		},
	}
	deps.Config.Web.BaseURL = "https://tasks.example.com"
	deps.Config.API.MaxConcurrency = 2
	deps.Config.Display.PollIntervalSec = 3600

	m := New(deps)
	m = step(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	return m, &copied
}

func step(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	out, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return out
}

// signIn resolves the session and delivers the project tree.
func signIn(t *testing.T, m Model) Model {
	t.Helper()
	m = step(t, m, sessionMsg{user: model.User{ID: "u1", Name: "Ada"}})
	t.Cleanup(func() {
		if m.poller != nil {
			m.poller.Stop()
		}
	})
	return step(t, m, treeLoadedMsg{seq: m.treeSeq, projects: alphaTree()})
}

func press(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestNoSessionShowsLogin(t *testing.T) {
	m, _ := newTestModel(t)
	m = step(t, m, sessionMsg{err: session.ErrNoSession})

	if m.loggedIn || m.route.Kind != nav.RouteLogin {
		t.Fatalf("loggedIn=%v route=%v", m.loggedIn, m.route)
	}
}

func TestSignInLoadsDashboard(t *testing.T) {
	m, _ := newTestModel(t)
	m = signIn(t, m)

	if !m.loggedIn || m.route.Kind != nav.RouteDashboard {
		t.Fatalf("loggedIn=%v route=%v", m.loggedIn, m.route)
	}
	if !m.treeLoaded || len(m.tree) != 2 {
		t.Fatalf("tree = %+v", m.tree)
	}
	if m.palette.Len() != 2+2+1 {
		t.Fatalf("palette entries = %d", m.palette.Len())
	}
}

func TestNavigateCancelsPreviousRoute(t *testing.T) {
	m, _ := newTestModel(t)
	m = signIn(t, m)

	before := m.routeCtx
	gen := m.gen
	m = step(t, m, ui.NavigateMsg{Path: "/project/alpha/road-map"})

	if !errors.Is(before.Err(), context.Canceled) {
		t.Fatal("previous route context should be cancelled")
	}
	if m.gen != gen+1 {
		t.Fatalf("gen = %d, want %d", m.gen, gen+1)
	}
	if m.route.Kind != nav.RouteTopic {
		t.Fatalf("route = %+v", m.route)
	}
}

func TestStaleKanbansAreDropped(t *testing.T) {
	m, _ := newTestModel(t)
	m = signIn(t, m)

	m = step(t, m, ui.NavigateMsg{Path: "/project/alpha/road-map"})
	stale := m.gen
	m = step(t, m, ui.NavigateMsg{Path: "/project/alpha/road-map"})

	m = step(t, m, kanbansLoadedMsg{gen: stale, topicID: "t1", kanbans: []model.Kanban{{ID: "old"}}})
	if len(m.board.Kanbans()) != 0 {
		t.Fatal("result of a superseded route was applied")
	}

	m = step(t, m, kanbansLoadedMsg{gen: m.gen, topicID: "t1", kanbans: []model.Kanban{{ID: "k1"}}})
	if len(m.board.Kanbans()) != 1 {
		t.Fatal("current result was dropped")
	}
}

func TestLoadKanbansUsesRouteGeneration(t *testing.T) {
	m, _ := newTestModel(t)
	m = signIn(t, m)
	m = step(t, m, ui.NavigateMsg{Path: "/project/alpha/road-map"})

	msg, ok := m.loadKanbans("t1")().(kanbansLoadedMsg)
	if !ok || msg.gen != m.gen || len(msg.kanbans) != 1 {
		t.Fatalf("msg = %+v", msg)
	}
}

func TestUnknownProjectIsNotFound(t *testing.T) {
	m, _ := newTestModel(t)
	m = signIn(t, m)
	m = step(t, m, ui.NavigateMsg{Path: "/project/gamma"})

	if m.resolved() {
		t.Fatal("gamma should not resolve")
	}
}

func TestCopyLink(t *testing.T) {
	m, copied := newTestModel(t)
	m = signIn(t, m)
	m = step(t, m, ui.NavigateMsg{Path: "/project/beta-two"})

	m = step(t, m, press('y'))
	if len(*copied) != 1 || (*copied)[0] != "https://tasks.example.com/project/beta-two" {
		t.Fatalf("copied = %v", *copied)
	}
	if m.statusErr {
		t.Fatalf("status = %q", m.status)
	}
}

func TestPaletteSelectionNavigates(t *testing.T) {
	m, _ := newTestModel(t)
	m = signIn(t, m)

	m = step(t, m, tea.KeyMsg{Type: tea.KeyCtrlK})
	if m.overlay != overlayPalette {
		t.Fatal("ctrl+k should open the palette")
	}

	m = step(t, m, command.SelectedMsg{Path: "/settings"})
	if m.overlay != overlayNone || m.route.Kind != nav.RouteSettings {
		t.Fatalf("overlay=%v route=%+v", m.overlay, m.route)
	}
}

func TestGlobalKeysYieldToFilterInput(t *testing.T) {
	m, _ := newTestModel(t)
	m = signIn(t, m)

	m = step(t, m, press('/'))
	if !m.dashboard.Filtering() {
		t.Fatal("expected filter mode")
	}
	m = step(t, m, press('N'))
	if m.route.Kind != nav.RouteDashboard {
		t.Fatal("typing in the filter must not navigate")
	}
}

func TestAuthExpiredReturnsToLogin(t *testing.T) {
	m, _ := newTestModel(t)
	m = signIn(t, m)
	m = step(t, m, ui.NavigateMsg{Path: "/project/alpha"})

	m = step(t, m, ui.AuthExpiredMsg{})
	if m.loggedIn || m.route.Kind != nav.RouteLogin {
		t.Fatalf("loggedIn=%v route=%+v", m.loggedIn, m.route)
	}
	if m.poller != nil || m.tree != nil {
		t.Fatal("user state should be cleared")
	}
	if m.deps.StartPath != "/project/alpha" {
		t.Fatalf("start path = %q", m.deps.StartPath)
	}
}

func TestUnreadBadge(t *testing.T) {
	m, _ := newTestModel(t)
	m = signIn(t, m)

	m = step(t, m, appsync.NotificationsMsg{Unread: 3, Source: m.poller})
	if m.unread != 3 {
		t.Fatalf("unread = %d", m.unread)
	}
}

func TestStalePollerResultDropped(t *testing.T) {
	m, _ := newTestModel(t)
	m = signIn(t, m)
	stale := m.poller

	m = step(t, m, ui.AuthExpiredMsg{})
	m = signIn(t, m)
	if m.poller == stale {
		t.Fatal("signing in again should start a new poller")
	}

	next, cmd := m.Update(appsync.NotificationsMsg{
		Notifications: []model.Notification{{ID: "n1"}},
		Unread:        5,
		Source:        stale,
	})
	m = next.(Model)
	if m.unread != 0 {
		t.Fatalf("unread = %d, stale result should be ignored", m.unread)
	}
	if cmd != nil {
		t.Fatal("stale result should not re-arm a waiter")
	}
}
