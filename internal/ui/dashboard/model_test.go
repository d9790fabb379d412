package dashboard

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/taskboard/internal/i18n"
	"github.com/nhle/taskboard/internal/keys"
	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/taskview"
	"github.com/nhle/taskboard/internal/tree"
	"github.com/nhle/taskboard/internal/ui"
)

func items() []tree.AssignedTask {
	p := model.Project{Name: "Alpha"}
	topic := model.Topic{Name: "Road Map"}
	return []tree.AssignedTask{
		{Task: model.Task{ID: "1", Title: "charlie"}, Project: p, Topic: topic},
		{Task: model.Task{ID: "2", Title: "alpha", Completed: true}, Project: p, Topic: topic},
		{Task: model.Task{ID: "3", Title: "bravo"}, Project: p, Topic: topic},
	}
}

func visibleIDs(m Model) []model.ID {
	var ids []model.ID
	for _, it := range m.Visible() {
		ids = append(ids, it.Task.ID)
	}
	return ids
}

func equal(a, b []model.ID) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func press(m Model, r rune) Model {
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	return m
}

func TestSortToggleCyclesBackToOriginalOrder(t *testing.T) {
	m := New(keys.DefaultKeyMap(), i18n.New("en"), 80, 20)
	m.SetItems(items(), nil)

	steps := []struct {
		dir  taskview.Direction
		want []model.ID
	}{
		{taskview.Ascending, []model.ID{"2", "3", "1"}},
		{taskview.Descending, []model.ID{"1", "3", "2"}},
		{taskview.Unsorted, []model.ID{"1", "2", "3"}},
	}

	for i, step := range steps {
		m = press(m, 's')
		if m.Sort().Dir != step.dir {
			t.Fatalf("toggle %d: dir = %v, want %v", i+1, m.Sort().Dir, step.dir)
		}
		if got := visibleIDs(m); !equal(got, step.want) {
			t.Fatalf("toggle %d: order = %v, want %v", i+1, got, step.want)
		}
	}
}

func TestFilterNarrowsRows(t *testing.T) {
	m := New(keys.DefaultKeyMap(), i18n.New("en"), 80, 20)
	m.SetItems(items(), nil)

	m = press(m, '/')
	if !m.Filtering() {
		t.Fatal("expected filter mode")
	}
	m = press(m, 'r')
	m = press(m, 'a')

	if got := visibleIDs(m); !equal(got, []model.ID{"3"}) {
		t.Fatalf("filtered = %v", got)
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if got := visibleIDs(m); len(got) != 3 {
		t.Fatalf("esc should clear the filter, got %v", got)
	}
}

func TestSelectAndJump(t *testing.T) {
	m := New(keys.DefaultKeyMap(), i18n.New("en"), 80, 20)
	m.SetItems(items(), nil)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	open, ok := cmd().(OpenTaskMsg)
	if !ok || open.Item.Task.ID != "2" {
		t.Fatalf("enter produced %#v", open)
	}

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRight})
	navMsg, ok := cmd().(ui.NavigateMsg)
	if !ok || navMsg.Path != "/project/alpha/road-map" {
		t.Fatalf("right produced %#v", navMsg)
	}
}
