package board

import (
	"context"
	"errors"
	"net/http"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/taskboard/internal/api"
	"github.com/nhle/taskboard/internal/i18n"
	"github.com/nhle/taskboard/internal/keys"
	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/ui"
	"github.com/nhle/taskboard/internal/ui/taskform"
)

type fakeService struct {
	err     error
	updated []model.TaskInput
	deleted []model.ID
	created []model.TaskInput
}

func (f *fakeService) CreateTask(_ context.Context, in model.TaskInput) (*model.Task, error) {
	f.created = append(f.created, in)
	return &model.Task{ID: "new"}, f.err
}

func (f *fakeService) UpdateTask(_ context.Context, id model.ID, in model.TaskInput) (*model.Task, error) {
	f.updated = append(f.updated, in)
	return &model.Task{ID: id}, f.err
}

func (f *fakeService) DeleteTask(_ context.Context, id model.ID) error {
	f.deleted = append(f.deleted, id)
	return f.err
}

func (f *fakeService) CreateKanban(context.Context, model.KanbanInput) (*model.Kanban, error) {
	return &model.Kanban{}, f.err
}

func (f *fakeService) DeleteKanban(context.Context, model.ID) error {
	return f.err
}

func newBoard(svc Service) Model {
	m := New(svc, keys.DefaultKeyMap(), i18n.New("en"), 100, 30)
	m.SetLoading(model.Project{ID: "p", Name: "Alpha"}, model.Topic{ID: "t", Name: "Road Map"})
	m.SetKanbans([]model.Kanban{
		{ID: "k1", Name: "Todo", Tasks: []model.Task{
			{ID: "1", Title: "write docs"},
			{ID: "2", Title: "fix login"},
		}},
		{ID: "k2", Name: "Done", Tasks: []model.Task{
			{ID: "3", Title: "ship", Completed: true},
		}},
	}, nil)
	return m
}

func press(m Model, r rune) (Model, tea.Cmd) {
	return m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
}

func TestToggleIsOptimistic(t *testing.T) {
	svc := &fakeService{}
	m := newBoard(svc)

	m, cmd := press(m, 'x')
	if !m.Kanbans()[0].Tasks[0].Completed {
		t.Fatal("toggle should flip the flag before the server answers")
	}

	m, _ = m.Update(cmd())
	if len(svc.updated) != 1 || svc.updated[0].Completed == nil || !*svc.updated[0].Completed {
		t.Fatalf("update payload = %+v", svc.updated)
	}
	if !m.Kanbans()[0].Tasks[0].Completed {
		t.Fatal("successful save should keep the new state")
	}
	if text, isErr := m.Status(); isErr || text != "Task saved" {
		t.Fatalf("status = %q (error %v)", text, isErr)
	}
}

func TestToggleRevertsOnFailure(t *testing.T) {
	svc := &fakeService{err: &api.HTTPError{StatusCode: http.StatusInternalServerError, Message: "db down"}}
	m := newBoard(svc)

	m, cmd := press(m, 'x')
	m, followUp := m.Update(cmd())

	if m.Kanbans()[0].Tasks[0].Completed {
		t.Fatal("failed save should restore the previous state")
	}
	if text, isErr := m.Status(); !isErr || text != "Saving task failed: db down" {
		t.Fatalf("status = %q (error %v)", text, isErr)
	}
	if followUp != nil {
		t.Fatal("non-auth failure should not produce a follow-up")
	}
}

func TestAuthFailureRoutesToLogin(t *testing.T) {
	svc := &fakeService{err: &api.HTTPError{StatusCode: http.StatusUnauthorized}}
	m := newBoard(svc)

	m, cmd := press(m, 'x')
	_, followUp := m.Update(cmd())
	if followUp == nil {
		t.Fatal("expected auth follow-up")
	}
	if _, ok := followUp().(ui.AuthExpiredMsg); !ok {
		t.Fatal("401 should route to login")
	}
}

func TestDeleteRevertsOnFailure(t *testing.T) {
	svc := &fakeService{err: errors.New("offline")}
	m := newBoard(svc)

	m, cmd := m.deleteSelected()
	if len(m.Kanbans()[0].Tasks) != 1 {
		t.Fatalf("task should be removed optimistically, have %d", len(m.Kanbans()[0].Tasks))
	}

	m, _ = m.Update(cmd())
	if len(m.Kanbans()[0].Tasks) != 2 || m.Kanbans()[0].Tasks[0].ID != "1" {
		t.Fatalf("delete failure should restore tasks, got %+v", m.Kanbans()[0].Tasks)
	}
	if len(svc.deleted) != 1 || svc.deleted[0] != "1" {
		t.Fatalf("deleted = %v", svc.deleted)
	}
}

func TestUpdateSuccessReloads(t *testing.T) {
	m := newBoard(&fakeService{})

	m, cmd := press(m, 'x')
	_, followUp := m.Update(cmd())
	if followUp == nil {
		t.Fatal("successful save should produce a follow-up")
	}
	if _, ok := followUp().(ui.ReloadMsg); !ok {
		t.Fatal("save should reload the route")
	}
}

func TestEditSuccessReloads(t *testing.T) {
	svc := &fakeService{}
	m := newBoard(svc)

	title := "write more docs"
	m, cmd := m.Update(taskform.SubmittedMsg{TaskID: "1", Input: model.TaskInput{Title: &title}})
	m, followUp := m.Update(cmd())

	if m.Kanbans()[0].Tasks[0].Title != title {
		t.Fatalf("title = %q", m.Kanbans()[0].Tasks[0].Title)
	}
	if len(svc.updated) != 1 {
		t.Fatalf("updated = %+v", svc.updated)
	}
	if _, ok := followUp().(ui.ReloadMsg); !ok {
		t.Fatal("edit should reload the route")
	}
}

func TestDeleteSuccessReloads(t *testing.T) {
	m := newBoard(&fakeService{})

	m, cmd := m.deleteSelected()
	_, followUp := m.Update(cmd())
	if _, ok := followUp().(ui.ReloadMsg); !ok {
		t.Fatal("delete should reload the route")
	}
}

func TestCreateReloads(t *testing.T) {
	svc := &fakeService{}
	m := newBoard(svc)

	title := "new task"
	m, cmd := m.Update(taskform.SubmittedMsg{Input: model.TaskInput{Title: &title, KanbanID: "k1"}})
	m, followUp := m.Update(cmd())

	if len(svc.created) != 1 || svc.created[0].KanbanID != "k1" {
		t.Fatalf("created = %+v", svc.created)
	}
	if _, ok := followUp().(ui.ReloadMsg); !ok {
		t.Fatal("create should reload the route")
	}
}

func TestEditUpdatesLocally(t *testing.T) {
	svc := &fakeService{}
	m := newBoard(svc)

	title := "write better docs"
	m, cmd := m.Update(taskform.SubmittedMsg{TaskID: "1", Input: model.TaskInput{Title: &title}})
	if m.Kanbans()[0].Tasks[0].Title != title {
		t.Fatalf("title = %q", m.Kanbans()[0].Tasks[0].Title)
	}
	m.Update(cmd())
	if len(svc.updated) != 1 {
		t.Fatalf("updated = %+v", svc.updated)
	}
}

func TestFilterAndSortDoNotReorderSnapshot(t *testing.T) {
	m := newBoard(&fakeService{})

	m, _ = press(m, 's')
	if got := m.column(0); got[0].ID != "2" {
		t.Fatalf("ascending first = %s", got[0].ID)
	}
	if m.Kanbans()[0].Tasks[0].ID != "1" {
		t.Fatal("sorting reordered the snapshot")
	}

	m, _ = press(m, '/')
	m, _ = press(m, 'd')
	m, _ = press(m, 'o')
	m, _ = press(m, 'c')
	if got := m.column(0); len(got) != 1 || got[0].ID != "1" {
		t.Fatalf("filtered column = %+v", got)
	}
}

func TestColumnNavigation(t *testing.T) {
	m := newBoard(&fakeService{})

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRight})
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	msg, ok := cmd().(OpenTaskMsg)
	if !ok || msg.Task.ID != "3" {
		t.Fatalf("enter on second board opened %#v", msg)
	}
}
