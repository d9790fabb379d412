package model

// Kanban is a named board holding an ordered list of tasks within a topic.
type Kanban struct {
	ID        ID     `json:"id"`
	Name      string `json:"name"`
	ProjectID ID     `json:"project"`
	Tasks     []Task `json:"tasks"`
}

// KanbanInput is the create payload for a kanban board.
type KanbanInput struct {
	Name      string `json:"name"`
	ProjectID ID     `json:"project"`
}
