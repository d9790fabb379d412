package api

import (
	"context"
	"fmt"

	"github.com/nhle/taskboard/internal/model"
)

// UserProjects returns the flat list of projects visible to a user.
func (c *Client) UserProjects(ctx context.Context, userID model.ID) ([]model.Project, error) {
	var projects []model.Project
	if err := c.Get(ctx, "/user_projects/"+escape(userID), &projects); err != nil {
		return nil, fmt.Errorf("listing projects for user %s: %w", userID, err)
	}
	return projects, nil
}

// ProjectTopics returns the sub-projects of a project mapped to topics.
func (c *Client) ProjectTopics(ctx context.Context, projectID model.ID) ([]model.Topic, error) {
	var subs []model.Project
	if err := c.Get(ctx, "/project_subprojects/"+escape(projectID), &subs); err != nil {
		return nil, fmt.Errorf("listing topics of project %s: %w", projectID, err)
	}
	topics := make([]model.Topic, len(subs))
	for i, p := range subs {
		topics[i] = model.TopicFromProject(p)
	}
	return topics, nil
}

// CreateProject creates a project, or a topic when ParentProject is set.
func (c *Client) CreateProject(ctx context.Context, in model.ProjectInput) (*model.Project, error) {
	var p model.Project
	if err := c.Post(ctx, "/project/", in, &p); err != nil {
		return nil, fmt.Errorf("creating project %q: %w", in.Name, err)
	}
	return &p, nil
}

// UpdateProject modifies a project.
func (c *Client) UpdateProject(ctx context.Context, id model.ID, in model.ProjectInput) (*model.Project, error) {
	var p model.Project
	if err := c.Put(ctx, "/project/"+escape(id), in, &p); err != nil {
		return nil, fmt.Errorf("updating project %s: %w", id, err)
	}
	return &p, nil
}

// DeleteProject removes a project.
func (c *Client) DeleteProject(ctx context.Context, id model.ID) error {
	if err := c.Delete(ctx, "/project/"+escape(id)); err != nil {
		return fmt.Errorf("deleting project %s: %w", id, err)
	}
	return nil
}

// ProjectUsers lists members and pending invitations of a project.
func (c *Client) ProjectUsers(ctx context.Context, projectID model.ID) ([]model.ProjectUser, error) {
	var users []model.ProjectUser
	if err := c.Get(ctx, "/project_users/"+escape(projectID), &users); err != nil {
		return nil, fmt.Errorf("listing users of project %s: %w", projectID, err)
	}
	return users, nil
}

// AcceptInvitation accepts the current user's invitation to a project.
func (c *Client) AcceptInvitation(ctx context.Context, projectID model.ID) error {
	if err := c.Post(ctx, "/project_users/"+escape(projectID)+"/accept", nil, nil); err != nil {
		return fmt.Errorf("accepting invitation to project %s: %w", projectID, err)
	}
	return nil
}
