package api

import (
	"context"
	"fmt"

	"github.com/nhle/taskboard/internal/model"
)

// TaskComments lists the comments on a task, oldest first.
func (c *Client) TaskComments(ctx context.Context, taskID model.ID) ([]model.Comment, error) {
	var comments []model.Comment
	if err := c.Get(ctx, "/comment/forTask/"+escape(taskID), &comments); err != nil {
		return nil, fmt.Errorf("listing comments of task %s: %w", taskID, err)
	}
	return comments, nil
}

// CreateComment posts a comment on a task.
func (c *Client) CreateComment(ctx context.Context, in model.CommentInput) (*model.Comment, error) {
	var comment model.Comment
	if err := c.Post(ctx, "/comment/", in, &comment); err != nil {
		return nil, fmt.Errorf("creating comment on task %s: %w", in.TaskID, err)
	}
	return &comment, nil
}

// DeleteComment removes a comment.
func (c *Client) DeleteComment(ctx context.Context, id model.ID) error {
	if err := c.Delete(ctx, "/comment/"+escape(id)); err != nil {
		return fmt.Errorf("deleting comment %s: %w", id, err)
	}
	return nil
}
