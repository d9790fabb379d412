package api

import (
	"context"
	"fmt"

	"github.com/nhle/taskboard/internal/model"
)

// TopicKanbans returns the kanban boards, with tasks, of a topic.
func (c *Client) TopicKanbans(ctx context.Context, topicID model.ID) ([]model.Kanban, error) {
	var kanbans []model.Kanban
	if err := c.Get(ctx, "/kanban/forProject/"+escape(topicID), &kanbans); err != nil {
		return nil, fmt.Errorf("listing kanbans of topic %s: %w", topicID, err)
	}
	for i := range kanbans {
		if kanbans[i].Tasks == nil {
			kanbans[i].Tasks = []model.Task{}
		}
	}
	return kanbans, nil
}

// CreateKanban adds a board to a topic.
func (c *Client) CreateKanban(ctx context.Context, in model.KanbanInput) (*model.Kanban, error) {
	var k model.Kanban
	if err := c.Post(ctx, "/kanban/", in, &k); err != nil {
		return nil, fmt.Errorf("creating kanban %q: %w", in.Name, err)
	}
	return &k, nil
}

// DeleteKanban removes a board and its tasks.
func (c *Client) DeleteKanban(ctx context.Context, id model.ID) error {
	if err := c.Delete(ctx, "/kanban/"+escape(id)); err != nil {
		return fmt.Errorf("deleting kanban %s: %w", id, err)
	}
	return nil
}
