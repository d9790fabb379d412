// Package taskview filters and sorts task collections for display. Every
// function works on a copy and leaves its input untouched.
package taskview

import (
	"slices"
	"strings"

	"github.com/nhle/taskboard/internal/model"
)

// SortKey selects the field tasks are ordered by.
type SortKey int

const (
	SortByTitle SortKey = iota
	SortByCompleted
)

func (k SortKey) String() string {
	if k == SortByCompleted {
		return "completed"
	}
	return "title"
}

// ParseSortKey maps "title" or "completed" to a SortKey.
func ParseSortKey(s string) (SortKey, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "title", "":
		return SortByTitle, true
	case "completed", "done", "status":
		return SortByCompleted, true
	}
	return SortByTitle, false
}

// Direction is the sort direction. Unsorted keeps the snapshot order.
type Direction int

const (
	Unsorted Direction = iota
	Ascending
	Descending
)

func (d Direction) String() string {
	switch d {
	case Ascending:
		return "asc"
	case Descending:
		return "desc"
	default:
		return "none"
	}
}

// Filter returns the tasks whose title or description contains query,
// ignoring case. An empty query returns a copy of tasks.
func Filter(tasks []model.Task, query string) []model.Task {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if q == "" ||
			strings.Contains(strings.ToLower(t.Title), q) ||
			strings.Contains(strings.ToLower(t.Description), q) {
			out = append(out, t)
		}
	}
	return out
}

// Sort returns a stably sorted copy of tasks. Titles compare
// lexicographically; for the completed key, open tasks come first in
// ascending order.
func Sort(tasks []model.Task, key SortKey, dir Direction) []model.Task {
	out := slices.Clone(tasks)
	if out == nil {
		out = []model.Task{}
	}
	if dir == Unsorted {
		return out
	}

	cmp := compareTitle
	if key == SortByCompleted {
		cmp = compareCompleted
	}
	slices.SortStableFunc(out, func(a, b model.Task) int {
		if dir == Descending {
			return cmp(b, a)
		}
		return cmp(a, b)
	})
	return out
}

func compareTitle(a, b model.Task) int {
	return strings.Compare(a.Title, b.Title)
}

func compareCompleted(a, b model.Task) int {
	switch {
	case a.Completed == b.Completed:
		return 0
	case !a.Completed:
		return -1
	default:
		return 1
	}
}

// Apply filters then sorts.
func Apply(tasks []model.Task, query string, key SortKey, dir Direction) []model.Task {
	return Sort(Filter(tasks, query), key, dir)
}
