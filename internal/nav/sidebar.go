package nav

import "github.com/nhle/taskboard/internal/model"

// EntryKind distinguishes navigation entries.
type EntryKind int

const (
	EntryStatic EntryKind = iota
	EntryProject
	EntryTopic
)

// Entry is a navigable destination.
type Entry struct {
	Kind  EntryKind
	Label string
	Path  string
	Color string
	// Parent is the project label for topic entries.
	Parent string
}

// Section groups a project with its topics for the sidebar.
type Section struct {
	Project Entry
	Topics  []Entry
}

// Build derives the sidebar model from the project tree, in tree order.
func Build(tree []model.Project) []Section {
	sections := make([]Section, 0, len(tree))
	for _, p := range tree {
		s := Section{
			Project: Entry{
				Kind:  EntryProject,
				Label: p.Name,
				Path:  ProjectPath(p),
				Color: p.Color,
			},
			Topics: make([]Entry, 0, len(p.Topics)),
		}
		for _, t := range p.Topics {
			s.Topics = append(s.Topics, Entry{
				Kind:   EntryTopic,
				Label:  t.Name,
				Path:   TopicPath(p, t),
				Color:  t.Color,
				Parent: p.Name,
			})
		}
		sections = append(sections, s)
	}
	return sections
}

// Flatten lists every entry of the sidebar model: each project followed by
// its topics.
func Flatten(sections []Section) []Entry {
	var out []Entry
	for _, s := range sections {
		out = append(out, s.Project)
		out = append(out, s.Topics...)
	}
	return out
}
