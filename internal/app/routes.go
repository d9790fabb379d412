package app

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	log "github.com/sirupsen/logrus"

	"github.com/nhle/taskboard/internal/api"
	"github.com/nhle/taskboard/internal/i18n"
	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/nav"
	"github.com/nhle/taskboard/internal/tree"
	"github.com/nhle/taskboard/internal/ui"
)

// Route results carry the generation they were issued under; anything
// older than the current generation belongs to a route no longer shown.

type treeLoadedMsg struct {
	seq      uint64
	projects []model.Project
	err      error
}

type assignedLoadedMsg struct {
	gen   uint64
	items []tree.AssignedTask
	err   error
}

type kanbansLoadedMsg struct {
	gen     uint64
	topicID model.ID
	kanbans []model.Kanban
	err     error
}

// navigate switches to path. The previous route's context is cancelled so
// its in-flight loads stop and their results are discarded.
func (m *Model) navigate(path string) tea.Cmd {
	if m.cancel != nil {
		m.cancel()
	}
	m.gen++
	m.routeCtx, m.cancel = context.WithCancel(m.rootCtx)

	m.route = nav.ParseRoute(path)
	m.showDetail = false
	m.sidebar.SetActive(m.route.Path)
	m.sidebar.SetFocused(false)
	m.status = ""

	log.WithFields(log.Fields{"path": m.route.Path, "gen": m.gen}).Debug("navigate")
	return m.loadRoute()
}

// loadRoute issues the loads the active route needs, under the current
// generation.
func (m *Model) loadRoute() tea.Cmd {
	switch m.route.Kind {
	case nav.RouteDashboard:
		if !m.treeLoaded {
			m.dashboard.SetLoading()
			return nil
		}
		m.dashboard.SetLoading()
		return m.loadAssigned()

	case nav.RouteProject:
		p, _, ok := nav.Resolve(m.tree, m.route)
		if !ok {
			return nil
		}
		return m.projectView.SetProject(p)

	case nav.RouteTopic:
		p, t, ok := nav.Resolve(m.tree, m.route)
		if !ok {
			return nil
		}
		m.board.SetLoading(p, t)
		return m.loadKanbans(t.ID)

	case nav.RouteNotifications:
		if m.poller != nil {
			m.poller.Refresh()
		}
	}
	return nil
}

// resolved reports whether a tree-dependent route points at something in
// the loaded tree.
func (m Model) resolved() bool {
	switch m.route.Kind {
	case nav.RouteProject, nav.RouteTopic:
		_, _, ok := nav.Resolve(m.tree, m.route)
		return ok
	}
	return true
}

func (m *Model) loadTree() tea.Cmd {
	m.treeSeq++
	m.treeLoading = true
	seq := m.treeSeq
	ctx := m.rootCtx
	loader := m.loader
	userID := m.user.ID
	return func() tea.Msg {
		projects, err := loader.Load(ctx, userID)
		return treeLoadedMsg{seq: seq, projects: projects, err: err}
	}
}

func (m Model) loadAssigned() tea.Cmd {
	gen := m.gen
	ctx := m.routeCtx
	loader := m.loader
	src := m.deps.Backend
	projects := m.tree
	userID := m.user.ID
	return func() tea.Msg {
		items, err := loader.Assigned(ctx, src, projects, userID)
		return assignedLoadedMsg{gen: gen, items: items, err: err}
	}
}

func (m Model) loadKanbans(topicID model.ID) tea.Cmd {
	gen := m.gen
	ctx := m.routeCtx
	src := m.deps.Backend
	return func() tea.Msg {
		kanbans, err := tree.LoadKanbans(ctx, src, topicID)
		return kanbansLoadedMsg{gen: gen, topicID: topicID, kanbans: kanbans, err: err}
	}
}

// reload refetches the active route from the server. Topic routes reload
// their boards; every other route depends on the project tree.
func (m *Model) reload() tea.Cmd {
	if m.route.Kind == nav.RouteTopic && m.resolved() {
		_, t, _ := nav.Resolve(m.tree, m.route)
		return m.loadKanbans(t.ID)
	}
	return m.loadTree()
}

// handleRouteResult applies generation-tagged load results.
func (m Model) handleRouteResult(msg tea.Msg) (Model, tea.Cmd, bool) {
	switch msg := msg.(type) {
	case treeLoadedMsg:
		if msg.seq != m.treeSeq {
			return m, nil, true
		}
		m.treeLoading = false
		if msg.err != nil {
			log.WithError(msg.err).Warn("loading project tree failed")
			if api.IsAuthError(msg.err) {
				return m, authExpired, true
			}
			m.treeErr = msg.err
			m.dashboard.SetItems(nil, msg.err)
			m.setStatus(m.tr.T(i18n.LoadFailed)+": "+api.UserMessage(msg.err), true)
			return m, nil, true
		}
		m.treeErr = nil
		m.tree = msg.projects
		m.treeLoaded = true
		m.sidebar.SetTree(m.tree)
		paletteCmd := m.palette.SetTree(m.tree)
		return m, tea.Batch(paletteCmd, m.loadRoute()), true

	case assignedLoadedMsg:
		if msg.gen != m.gen {
			return m, nil, true
		}
		if msg.err != nil {
			log.WithError(msg.err).Warn("loading dashboard failed")
			if api.IsAuthError(msg.err) {
				return m, authExpired, true
			}
		}
		m.dashboard.SetItems(msg.items, msg.err)
		return m, nil, true

	case kanbansLoadedMsg:
		if msg.gen != m.gen {
			return m, nil, true
		}
		if msg.err != nil {
			log.WithError(msg.err).WithField("topic_id", msg.topicID).Warn("loading boards failed")
			if api.IsAuthError(msg.err) {
				return m, authExpired, true
			}
		}
		m.board.SetKanbans(msg.kanbans, msg.err)
		return m, nil, true
	}
	return m, nil, false
}

func authExpired() tea.Msg { return ui.AuthExpiredMsg{} }

// routeTitle names the active route for the header.
func (m Model) routeTitle() string {
	switch m.route.Kind {
	case nav.RouteDashboard:
		return m.tr.T(i18n.Dashboard)
	case nav.RouteSettings:
		return m.tr.T(i18n.Settings)
	case nav.RouteNotifications:
		return m.tr.T(i18n.Notifications)
	case nav.RouteProject, nav.RouteTopic:
		p, t, ok := nav.Resolve(m.tree, m.route)
		if !ok {
			return m.route.Path
		}
		if m.route.Kind == nav.RouteTopic {
			return p.Name + " › " + t.Name
		}
		return p.Name
	}
	return strings.TrimPrefix(m.route.Path, "/")
}
