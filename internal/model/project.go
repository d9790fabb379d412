package model

// Project is a top-level container owned by the backend. A project whose
// ParentProject is set is a topic of that parent.
type Project struct {
	ID            ID      `json:"id"`
	Name          string  `json:"name"`
	Color         string  `json:"color"`
	Description   string  `json:"description"`
	ParentProject *ID     `json:"parentProject,omitempty"`
	AllowedUsers  []User  `json:"allowedUsers,omitempty"`
	Topics        []Topic `json:"topics"`
}

// IsTopic reports whether the project is nested under another project.
func (p Project) IsTopic() bool {
	return p.ParentProject != nil && !p.ParentProject.IsZero()
}

// Topic is a sub-grouping within a project. Kanbans are loaded per topic
// view and are an empty placeholder inside the project tree.
type Topic struct {
	ID          ID       `json:"id"`
	Name        string   `json:"name"`
	Color       string   `json:"color"`
	Description string   `json:"description"`
	Kanbans     []Kanban `json:"kanbans"`
}

// TopicFromProject maps a sub-project response into a Topic with an empty
// kanban list.
func TopicFromProject(p Project) Topic {
	return Topic{
		ID:          p.ID,
		Name:        p.Name,
		Color:       p.Color,
		Description: p.Description,
		Kanbans:     []Kanban{},
	}
}

// ProjectInput is the create/update payload for projects and topics.
type ProjectInput struct {
	Name          string `json:"name"`
	Color         string `json:"color"`
	Description   string `json:"description"`
	ParentProject *ID    `json:"parentProject,omitempty"`
}

// ProjectUser is a membership row returned by the project users endpoint.
type ProjectUser struct {
	ID       ID   `json:"id"`
	User     User `json:"user"`
	Accepted bool `json:"accepted"`
}
