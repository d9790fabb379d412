package api

import (
	"context"
	"fmt"

	"github.com/nhle/taskboard/internal/model"
)

// CreateTask adds a task to a kanban.
func (c *Client) CreateTask(ctx context.Context, in model.TaskInput) (*model.Task, error) {
	var t model.Task
	if err := c.Post(ctx, "/task/", in, &t); err != nil {
		return nil, fmt.Errorf("creating task: %w", err)
	}
	return &t, nil
}

// UpdateTask modifies the fields set in in.
func (c *Client) UpdateTask(ctx context.Context, id model.ID, in model.TaskInput) (*model.Task, error) {
	var t model.Task
	if err := c.Put(ctx, "/task/"+escape(id), in, &t); err != nil {
		return nil, fmt.Errorf("updating task %s: %w", id, err)
	}
	return &t, nil
}

// DeleteTask removes a task.
func (c *Client) DeleteTask(ctx context.Context, id model.ID) error {
	if err := c.Delete(ctx, "/task/"+escape(id)); err != nil {
		return fmt.Errorf("deleting task %s: %w", id, err)
	}
	return nil
}
