package taskview

import (
	"reflect"
	"testing"

	"github.com/nhle/taskboard/internal/model"
)

func sampleTasks() []model.Task {
	return []model.Task{
		{ID: "1", Title: "write docs", Description: "README and guide"},
		{ID: "2", Title: "Fix login", Description: "token not stored", Completed: true},
		{ID: "3", Title: "add tests", Description: "cover the loader"},
		{ID: "4", Title: "Deploy", Completed: true},
	}
}

func ids(tasks []model.Task) []model.ID {
	out := make([]model.ID, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.ID)
	}
	return out
}

func TestFilter(t *testing.T) {
	tests := []struct {
		query string
		want  []model.ID
	}{
		{"", []model.ID{"1", "2", "3", "4"}},
		{"LOGIN", []model.ID{"2"}},
		{"loader", []model.ID{"3"}},
		{"  docs ", []model.ID{"1"}},
		{"zzz", []model.ID{}},
	}

	for _, tt := range tests {
		got := ids(Filter(sampleTasks(), tt.query))
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Filter(%q) = %v, want %v", tt.query, got, tt.want)
		}
	}
}

func TestFilterIsPure(t *testing.T) {
	tasks := sampleTasks()
	snapshot := sampleTasks()

	first := Filter(tasks, "o")
	second := Filter(tasks, "o")

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("filtering twice gave %v then %v", ids(first), ids(second))
	}
	if !reflect.DeepEqual(tasks, snapshot) {
		t.Fatalf("Filter mutated its input")
	}
}

func TestSortDoesNotMutate(t *testing.T) {
	tasks := sampleTasks()
	_ = Sort(tasks, SortByTitle, Descending)

	if !reflect.DeepEqual(tasks, sampleTasks()) {
		t.Fatalf("Sort mutated its input: %v", ids(tasks))
	}
}

func TestSort(t *testing.T) {
	tests := []struct {
		name string
		key  SortKey
		dir  Direction
		want []model.ID
	}{
		{"unsorted", SortByTitle, Unsorted, []model.ID{"1", "2", "3", "4"}},
		// Byte order: upper case sorts before lower case.
		{"title asc", SortByTitle, Ascending, []model.ID{"4", "2", "3", "1"}},
		{"title desc", SortByTitle, Descending, []model.ID{"1", "3", "2", "4"}},
		{"completed asc is stable", SortByCompleted, Ascending, []model.ID{"1", "3", "2", "4"}},
		{"completed desc is stable", SortByCompleted, Descending, []model.ID{"2", "4", "1", "3"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(Sort(sampleTasks(), tt.key, tt.dir))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSortNil(t *testing.T) {
	if got := Sort(nil, SortByTitle, Ascending); got == nil || len(got) != 0 {
		t.Fatalf("Sort(nil) = %#v, want empty slice", got)
	}
}

func TestSortStateCyclesThroughThreeStates(t *testing.T) {
	tasks := sampleTasks()
	original := ids(tasks)

	var s SortState
	wantDirs := []Direction{Ascending, Descending, Unsorted}
	for i, want := range wantDirs {
		s = s.Next()
		if s.Dir != want {
			t.Fatalf("toggle %d: dir = %v, want %v", i+1, s.Dir, want)
		}
	}

	if got := ids(s.Apply(tasks)); !reflect.DeepEqual(got, original) {
		t.Fatalf("third toggle order = %v, want original %v", got, original)
	}
}

func TestSortStateWithKey(t *testing.T) {
	s := SortState{Key: SortByTitle, Dir: Ascending}

	s = s.WithKey(SortByCompleted)
	if s.Key != SortByCompleted || s.Dir != Ascending {
		t.Fatalf("switching key = %+v", s)
	}

	s = s.WithKey(SortByCompleted)
	if s.Dir != Descending {
		t.Fatalf("same key should advance, got %+v", s)
	}
	if s.Label() != "completed ↓" {
		t.Fatalf("Label = %q", s.Label())
	}
}

func TestParseSortKey(t *testing.T) {
	if k, ok := ParseSortKey("Completed"); !ok || k != SortByCompleted {
		t.Fatalf("ParseSortKey(Completed) = %v, %v", k, ok)
	}
	if _, ok := ParseSortKey("priority"); ok {
		t.Fatalf("unknown key accepted")
	}
}
