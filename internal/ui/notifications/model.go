package notifications

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
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

// Marker marks a notification as read on the backend.
type Marker interface {
	MarkNotificationRead(ctx context.Context, id model.ID) error
}

// ReadMsg reports that a notification was marked read locally. The root
// model uses it to update the unread badge without waiting for a poll.
type ReadMsg struct {
	ID     model.ID
	Unread int
}

type markedMsg struct {
	id  model.ID
	err error
}

// Model lists the current user's notifications, newest first.
type Model struct {
	svc     Marker
	keys    *keys.KeyMap
	tr      i18n.Translator
	items   []model.Notification
	cursor  int
	loading bool
	err     error
	status  string
	now     func() time.Time
	width   int
	height  int
}

// New creates the notifications view.
func New(svc Marker, k *keys.KeyMap, tr i18n.Translator, width, height int) Model {
	return Model{
		svc:     svc,
		keys:    k,
		tr:      tr,
		loading: true,
		now:     time.Now,
		width:   width,
		height:  height,
	}
}

// SetTranslator switches the UI language.
func (m *Model) SetTranslator(tr i18n.Translator) {
	m.tr = tr
}

// SetItems replaces the list with the latest poll result.
func (m *Model) SetItems(items []model.Notification, err error) {
	m.loading = false
	m.err = err
	if err != nil {
		return
	}
	m.items = items
	if m.cursor >= len(m.items) {
		m.cursor = max(len(m.items)-1, 0)
	}
}

// Unread returns the number of unread notifications in the list.
func (m Model) Unread() int {
	return model.CountUnread(m.items)
}

// Items returns the notifications on display.
func (m Model) Items() []model.Notification {
	return m.items
}

func (m *Model) setRead(id model.ID, read bool) {
	for i := range m.items {
		if m.items[i].ID == id {
			m.items[i].Read = read
		}
	}
}

// Update handles messages for the notifications view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case markedMsg:
		if msg.err == nil {
			return m, nil
		}
		log.WithError(msg.err).WithField("notification_id", msg.id).Warn("marking notification read failed")
		m.setRead(msg.id, false)
		m.status = "Mark read failed: " + api.UserMessage(msg.err)
		unread := m.Unread()
		id := msg.id
		cmds := []tea.Cmd{func() tea.Msg { return ReadMsg{ID: id, Unread: unread} }}
		if api.IsAuthError(msg.err) {
			cmds = append(cmds, func() tea.Msg { return ui.AuthExpiredMsg{} })
		}
		return m, tea.Batch(cmds...)

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Down):
			if m.cursor < len(m.items)-1 {
				m.cursor++
			}
		case key.Matches(msg, m.keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, m.keys.MarkRead), key.Matches(msg, m.keys.Select):
			return m.markRead()
		}
	}
	return m, nil
}

func (m Model) markRead() (Model, tea.Cmd) {
	if m.cursor >= len(m.items) || m.items[m.cursor].Read {
		return m, nil
	}
	id := m.items[m.cursor].ID
	m.setRead(id, true)
	m.status = ""

	svc := m.svc
	unread := m.Unread()
	return m, tea.Batch(
		func() tea.Msg { return ReadMsg{ID: id, Unread: unread} },
		func() tea.Msg {
			err := svc.MarkNotificationRead(context.Background(), id)
			return markedMsg{id: id, err: err}
		},
	)
}

// View renders the notification list.
func (m Model) View() string {
	var b strings.Builder

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)
	b.WriteString(titleStyle.Render(m.tr.T(i18n.Notifications)))
	if n := m.Unread(); n > 0 {
		b.WriteString("  ")
		b.WriteString(theme.BadgeStyle.Render(fmt.Sprintf("%d %s", n, m.tr.T(i18n.Unread))))
	}
	b.WriteString("\n\n")

	body := m.height - 4
	switch {
	case m.loading:
		b.WriteString(ui.Placeholder(m.width-2, body, m.tr.T(i18n.Loading)))
	case m.err != nil && len(m.items) == 0:
		b.WriteString(ui.Placeholder(m.width-2, body, m.tr.T(i18n.LoadFailed)))
	case len(m.items) == 0:
		b.WriteString(ui.Placeholder(m.width-2, body, m.tr.T(i18n.NoNotification)))
	default:
		b.WriteString(m.renderRows(body))
	}

	if m.status != "" {
		b.WriteString("\n")
		b.WriteString(theme.ErrorStyle.Render(m.status))
	}

	return lipgloss.NewStyle().Padding(0, 1).Width(m.width).Height(m.height).Render(b.String())
}

func (m Model) renderRows(height int) string {
	// Two lines per notification.
	per := 2
	fit := max(height/per, 1)
	start := 0
	if m.cursor >= fit {
		start = m.cursor - fit + 1
	}

	var lines []string
	for i := start; i < len(m.items) && i < start+fit; i++ {
		n := m.items[i]
		dot := " "
		if !n.Read {
			dot = lipgloss.NewStyle().Foreground(theme.ColorBlue).Render("●")
		}
		when := ""
		if !n.CreatedAt.IsZero() {
			when = humanize.RelTime(n.CreatedAt, m.now(), "ago", "from now")
		}
		title := theme.UnreadStyle(n.Read).Render(ui.Truncate(n.Title, m.width-20))
		head := fmt.Sprintf("%s %s  %s", dot, title, theme.MutedStyle.Render(when))
		if i == m.cursor {
			head = theme.SelectedItemStyle.Render(head)
		} else {
			head = theme.ListItemStyle.Render(head)
		}
		lines = append(lines, head, "    "+theme.MutedStyle.Render(ui.Truncate(n.Description, m.width-8)))
	}
	return strings.Join(lines, "\n")
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}
