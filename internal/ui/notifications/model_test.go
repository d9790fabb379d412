package notifications

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/taskboard/internal/i18n"
	"github.com/nhle/taskboard/internal/keys"
	"github.com/nhle/taskboard/internal/model"
)

type fakeMarker struct {
	err    error
	marked []model.ID
}

func (f *fakeMarker) MarkNotificationRead(_ context.Context, id model.ID) error {
	f.marked = append(f.marked, id)
	return f.err
}

func runBatch(t *testing.T, cmd tea.Cmd) []tea.Msg {
	t.Helper()
	if cmd == nil {
		return nil
	}
	msg := cmd()
	batch, ok := msg.(tea.BatchMsg)
	if !ok {
		return []tea.Msg{msg}
	}
	var out []tea.Msg
	for _, c := range batch {
		if c != nil {
			out = append(out, c())
		}
	}
	return out
}

func sample() []model.Notification {
	return []model.Notification{
		{ID: "1", Title: "Invited to Alpha"},
		{ID: "2", Title: "Task assigned", Read: true},
		{ID: "3", Title: "New comment"},
	}
}

var mKey = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'m'}}

func TestMarkReadIsOptimistic(t *testing.T) {
	svc := &fakeMarker{}
	m := New(svc, keys.DefaultKeyMap(), i18n.New("en"), 80, 24)
	m.SetItems(sample(), nil)
	if m.Unread() != 2 {
		t.Fatalf("unread = %d", m.Unread())
	}

	m, cmd := m.Update(mKey)
	if m.Unread() != 1 {
		t.Fatalf("unread after mark = %d", m.Unread())
	}

	var badge *ReadMsg
	for _, msg := range runBatch(t, cmd) {
		switch msg := msg.(type) {
		case ReadMsg:
			badge = &msg
		case markedMsg:
			m, _ = m.Update(msg)
		}
	}
	if badge == nil || badge.Unread != 1 || badge.ID != "1" {
		t.Fatalf("badge msg = %+v", badge)
	}
	if len(svc.marked) != 1 || svc.marked[0] != "1" {
		t.Fatalf("marked = %v", svc.marked)
	}
	if m.Unread() != 1 {
		t.Fatal("success should keep the optimistic state")
	}
}

func TestMarkReadRevertsOnFailure(t *testing.T) {
	m := New(&fakeMarker{err: errors.New("offline")}, keys.DefaultKeyMap(), i18n.New("en"), 80, 24)
	m.SetItems(sample(), nil)

	m, cmd := m.Update(mKey)
	for _, msg := range runBatch(t, cmd) {
		if mm, ok := msg.(markedMsg); ok {
			m, _ = m.Update(mm)
		}
	}
	if m.Unread() != 2 {
		t.Fatalf("unread = %d, want revert to 2", m.Unread())
	}
	if m.status == "" {
		t.Fatal("expected an error status")
	}
}

func TestAlreadyReadIsNoop(t *testing.T) {
	svc := &fakeMarker{}
	m := New(svc, keys.DefaultKeyMap(), i18n.New("en"), 80, 24)
	m.SetItems(sample(), nil)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	_, cmd := m.Update(mKey)
	if cmd != nil {
		t.Fatal("marking a read notification should do nothing")
	}
}

func TestFailedPollKeepsList(t *testing.T) {
	m := New(&fakeMarker{}, keys.DefaultKeyMap(), i18n.New("en"), 80, 24)
	m.SetItems(sample(), nil)
	m.SetItems(nil, errors.New("offline"))

	if len(m.Items()) != 3 {
		t.Fatalf("items = %d, want previous list kept", len(m.Items()))
	}
}
