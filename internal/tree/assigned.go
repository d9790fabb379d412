package tree

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/nhle/taskboard/internal/model"
)

// AssignedTask is a task together with where it lives in the tree.
type AssignedTask struct {
	Task    model.Task
	Project model.Project
	Topic   model.Topic
	Kanban  string
}

// Assigned loads the boards of every topic in projects and returns the
// tasks assigned to userID, in tree order then board order. A topic whose
// boards fail to load is logged and skipped.
func (l *Loader) Assigned(
	ctx context.Context,
	src KanbanSource,
	projects []model.Project,
	userID model.ID,
) ([]AssignedTask, error) {
	type slot struct {
		project model.Project
		topic   model.Topic
		kanbans []model.Kanban
	}

	var slots []*slot
	for _, p := range projects {
		for _, t := range p.Topics {
			slots = append(slots, &slot{project: p, topic: t})
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.concurrency)
	for _, s := range slots {
		g.Go(func() error {
			kanbans, err := src.TopicKanbans(gctx, s.topic.ID)
			if err != nil {
				l.log.WithError(err).
					WithField("topic_id", s.topic.ID).
					Warn("kanban fetch failed; skipping topic on dashboard")
				return nil
			}
			s.kanbans = kanbans
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := []AssignedTask{}
	for _, s := range slots {
		for _, k := range s.kanbans {
			for _, t := range k.Tasks {
				if t.AssignedTo(userID) {
					out = append(out, AssignedTask{
						Task:    t,
						Project: s.project,
						Topic:   s.topic,
						Kanban:  k.Name,
					})
				}
			}
		}
	}
	return out, nil
}
