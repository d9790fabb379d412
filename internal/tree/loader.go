// Package tree assembles the project → topic → kanban hierarchy shown in
// the sidebar, dashboard and command palette.
package tree

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/nhle/taskboard/internal/model"
)

// DefaultConcurrency bounds in-flight topic fetches when no limit is given.
const DefaultConcurrency = 8

// Source is the subset of the REST client the loader needs.
type Source interface {
	UserProjects(ctx context.Context, userID model.ID) ([]model.Project, error)
	ProjectTopics(ctx context.Context, projectID model.ID) ([]model.Topic, error)
}

// KanbanSource loads the boards of a single topic.
type KanbanSource interface {
	TopicKanbans(ctx context.Context, topicID model.ID) ([]model.Kanban, error)
}

// Loader builds project trees.
type Loader struct {
	src         Source
	concurrency int
	log         log.FieldLogger
}

// NewLoader creates a Loader that runs at most concurrency topic fetches
// at once.
func NewLoader(src Source, concurrency int) *Loader {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Loader{src: src, concurrency: concurrency, log: log.StandardLogger()}
}

// Load fetches the user's projects, then the topics of every project
// concurrently. The returned projects keep the order of the project fetch.
// A failed topic fetch leaves that project with no topics and is logged;
// only a failed project fetch fails the load.
func (l *Loader) Load(ctx context.Context, userID model.ID) ([]model.Project, error) {
	projects, err := l.src.UserProjects(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading project tree: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.concurrency)

	for i := range projects {
		g.Go(func() error {
			projects[i].Topics = l.topics(gctx, projects[i])
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return projects, nil
}

// topics fetches one project's topics, degrading to an empty list.
func (l *Loader) topics(ctx context.Context, p model.Project) []model.Topic {
	topics, err := l.src.ProjectTopics(ctx, p.ID)
	if err != nil {
		l.log.WithError(err).
			WithField("project_id", p.ID).
			WithField("project", p.Name).
			Warn("topic fetch failed; showing project without topics")
		return []model.Topic{}
	}
	if topics == nil {
		return []model.Topic{}
	}
	for i := range topics {
		if topics[i].Kanbans == nil {
			topics[i].Kanbans = []model.Kanban{}
		}
	}
	return topics
}

// LoadKanbans fetches the boards and tasks of a topic for the topic view.
func LoadKanbans(ctx context.Context, src KanbanSource, topicID model.ID) ([]model.Kanban, error) {
	kanbans, err := src.TopicKanbans(ctx, topicID)
	if err != nil {
		return nil, fmt.Errorf("loading kanbans: %w", err)
	}
	return kanbans, nil
}

// Tasks flattens every task of the given boards in board order.
func Tasks(kanbans []model.Kanban) []model.Task {
	var out []model.Task
	for _, k := range kanbans {
		out = append(out, k.Tasks...)
	}
	return out
}
