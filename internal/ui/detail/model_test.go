package detail

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/taskboard/internal/i18n"
	"github.com/nhle/taskboard/internal/keys"
	"github.com/nhle/taskboard/internal/model"
)

type fakeComments struct {
	comments []model.Comment
	err      error
	created  []model.CommentInput
	deleted  []model.ID
}

func (f *fakeComments) TaskComments(context.Context, model.ID) ([]model.Comment, error) {
	return f.comments, f.err
}

func (f *fakeComments) CreateComment(_ context.Context, in model.CommentInput) (*model.Comment, error) {
	f.created = append(f.created, in)
	return &model.Comment{}, nil
}

func (f *fakeComments) DeleteComment(_ context.Context, id model.ID) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func TestOpenLoadsComments(t *testing.T) {
	svc := &fakeComments{comments: []model.Comment{
		{ID: "c1", AuthorID: "me", AuthorName: "Ada", Text: "looks good"},
	}}
	m := New(svc, keys.DefaultKeyMap(), i18n.New("en"), 80, 24)

	cmd := m.Open(model.Task{ID: "t1", Title: "write docs"}, "Alpha › Road Map")
	m, _ = m.Update(cmd())

	if m.loading || len(m.comments) != 1 {
		t.Fatalf("loading=%v comments=%d", m.loading, len(m.comments))
	}
}

func TestStaleCommentsAreDropped(t *testing.T) {
	m := New(&fakeComments{}, keys.DefaultKeyMap(), i18n.New("en"), 80, 24)
	m.Open(model.Task{ID: "t2"}, "")

	m, _ = m.Update(CommentsLoadedMsg{TaskID: "t1", Comments: []model.Comment{{ID: "x"}}})
	if len(m.comments) != 0 || !m.loading {
		t.Fatal("comments for another task should be ignored")
	}
}

func TestDeleteRequiresOwnComment(t *testing.T) {
	svc := &fakeComments{comments: []model.Comment{
		{ID: "c1", AuthorID: "someone-else"},
	}}
	m := New(svc, keys.DefaultKeyMap(), i18n.New("en"), 80, 24)
	m.SetUser("me")
	m, _ = m.Update(m.Open(model.Task{ID: "t1"}, "")())

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{']'}})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'d'}})
	if m.Busy() {
		t.Fatal("deleting someone else's comment should not open a confirm")
	}
	if m.status == "" {
		t.Fatal("expected a hint in the status line")
	}
}

func TestLoadErrorShowsStatus(t *testing.T) {
	m := New(&fakeComments{err: errors.New("offline")}, keys.DefaultKeyMap(), i18n.New("en"), 80, 24)
	m, cmd := m.Update(m.Open(model.Task{ID: "t1"}, "")())

	if cmd != nil {
		t.Fatal("network failure should not route to login")
	}
	if m.status != "Could not load data" {
		t.Fatalf("status = %q", m.status)
	}
}

func TestRelativeTime(t *testing.T) {
	m := New(&fakeComments{}, keys.DefaultKeyMap(), i18n.New("en"), 80, 24)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	if got := m.relative(now.Add(-3 * time.Hour)); got != "3 hours ago" {
		t.Fatalf("relative = %q", got)
	}
	if got := m.relative(time.Time{}); got != "" {
		t.Fatalf("zero time = %q", got)
	}
}
