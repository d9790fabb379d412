package api

import (
	"context"
	"fmt"

	"github.com/nhle/taskboard/internal/model"
)

// Notifications lists a user's notifications.
func (c *Client) Notifications(ctx context.Context, userID model.ID) ([]model.Notification, error) {
	var ns []model.Notification
	if err := c.Get(ctx, "/notification/"+escape(userID), &ns); err != nil {
		return nil, fmt.Errorf("listing notifications for user %s: %w", userID, err)
	}
	return ns, nil
}

// MarkNotificationRead flags a notification as read.
func (c *Client) MarkNotificationRead(ctx context.Context, id model.ID) error {
	if err := c.Put(ctx, "/notification/"+escape(id)+"/read", nil, nil); err != nil {
		return fmt.Errorf("marking notification %s read: %w", id, err)
	}
	return nil
}
