package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/nav"
	"github.com/nhle/taskboard/internal/taskview"
	"github.com/nhle/taskboard/internal/tree"
)

// loadTree resumes the session and assembles the project tree.
func loadTree(ctx context.Context, a *App) ([]model.Project, error) {
	user, err := currentUser(ctx, a)
	if err != nil {
		return nil, err
	}
	projects, err := a.env.loader.Load(ctx, user.ID)
	if err != nil {
		return nil, describe(err)
	}
	return projects, nil
}

func newProjectsCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "projects",
		Short: "List projects and their topics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			projects, err := loadTree(cmd.Context(), a)
			if err != nil {
				return err
			}
			writeTree(cmd.OutOrStdout(), projects)
			return nil
		},
	}
}

func writeTree(w io.Writer, projects []model.Project) {
	if len(projects) == 0 {
		fmt.Fprintln(w, "No projects yet")
		return
	}
	for _, s := range nav.Build(projects) {
		fmt.Fprintf(w, "%s\t%s\n", s.Project.Label, s.Project.Path)
		for _, t := range s.Topics {
			fmt.Fprintf(w, "  %s\t%s\n", t.Label, t.Path)
		}
	}
}

func newNavCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "nav",
		Short: "Print every navigable path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			projects, err := loadTree(cmd.Context(), a)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, p := range []string{nav.PathDashboard, nav.PathNotifications, nav.PathSettings} {
				fmt.Fprintln(out, p)
			}
			for _, e := range nav.Flatten(nav.Build(projects)) {
				fmt.Fprintln(out, e.Path)
			}
			return nil
		},
	}
}

func newTasksCmd(a *App) *cobra.Command {
	var filter, sortFlag string

	cmd := &cobra.Command{
		Use:   "tasks <project-slug> <topic-slug>",
		Short: "List the tasks of a topic, board by board",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sort, err := parseSort(sortFlag)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			projects, err := loadTree(ctx, a)
			if err != nil {
				return err
			}
			route := nav.Route{Kind: nav.RouteTopic, ProjectSlug: args[0], TopicSlug: args[1]}
			_, topic, ok := nav.Resolve(projects, route)
			if !ok {
				return fmt.Errorf("no topic at /project/%s/%s", args[0], args[1])
			}

			kanbans, err := tree.LoadKanbans(ctx, a.env.client, topic.ID)
			if err != nil {
				return describe(err)
			}
			writeBoards(cmd.OutOrStdout(), kanbans, filter, sort)
			return nil
		},
	}

	cmd.Flags().StringVar(&filter, "filter", "", "Only tasks whose title or description contains this text")
	cmd.Flags().StringVar(&sortFlag, "sort", "", "Sort by title or completed, optionally suffixed :asc or :desc")
	return cmd
}

// parseSort reads "title", "completed:desc" and the like. Empty keeps the
// board order.
func parseSort(s string) (taskview.SortState, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return taskview.SortState{}, nil
	}

	field, dir, _ := strings.Cut(s, ":")
	key, ok := taskview.ParseSortKey(field)
	if !ok {
		return taskview.SortState{}, fmt.Errorf("unknown sort field %q", field)
	}

	state := taskview.SortState{Key: key, Dir: taskview.Ascending}
	switch strings.ToLower(dir) {
	case "", "asc":
	case "desc":
		state.Dir = taskview.Descending
	default:
		return taskview.SortState{}, fmt.Errorf("unknown sort direction %q", dir)
	}
	return state, nil
}

func writeBoards(w io.Writer, kanbans []model.Kanban, filter string, sort taskview.SortState) {
	if len(kanbans) == 0 {
		fmt.Fprintln(w, "No boards")
		return
	}
	for i, k := range kanbans {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "## %s\n", k.Name)
		tasks := taskview.Apply(k.Tasks, filter, sort.Key, sort.Dir)
		if len(tasks) == 0 {
			fmt.Fprintln(w, "No tasks")
			continue
		}
		for _, t := range tasks {
			mark := " "
			if t.Completed {
				mark = "x"
			}
			fmt.Fprintf(w, "[%s] %s\n", mark, t.Title)
		}
	}
}
