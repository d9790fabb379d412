package taskview

import "github.com/nhle/taskboard/internal/model"

// SortState is the three-state sort toggle of a task list:
// unsorted → ascending → descending → unsorted.
type SortState struct {
	Key SortKey
	Dir Direction
}

// Next advances the toggle. The third call returns to Unsorted.
func (s SortState) Next() SortState {
	switch s.Dir {
	case Unsorted:
		s.Dir = Ascending
	case Ascending:
		s.Dir = Descending
	default:
		s.Dir = Unsorted
	}
	return s
}

// WithKey switches the sort key and starts ascending. Selecting the active
// key advances the toggle instead.
func (s SortState) WithKey(key SortKey) SortState {
	if s.Key == key {
		return s.Next()
	}
	return SortState{Key: key, Dir: Ascending}
}

// Label describes the state for a status line, e.g. "title ↑".
func (s SortState) Label() string {
	switch s.Dir {
	case Ascending:
		return s.Key.String() + " ↑"
	case Descending:
		return s.Key.String() + " ↓"
	default:
		return "unsorted"
	}
}

// Apply sorts tasks according to the state.
func (s SortState) Apply(tasks []model.Task) []model.Task {
	return Sort(tasks, s.Key, s.Dir)
}
