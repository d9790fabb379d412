package command

import (
	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/nav"
)

// Entries flattens the project tree into palette entries: Dashboard and
// Settings first, then every project followed by its topics, in tree order.
func Entries(tree []model.Project) []nav.Entry {
	entries := []nav.Entry{
		{Kind: nav.EntryStatic, Label: "Dashboard", Path: nav.PathDashboard},
		{Kind: nav.EntryStatic, Label: "Settings", Path: nav.PathSettings},
	}
	return append(entries, nav.Flatten(nav.Build(tree))...)
}
